/*
 * Copyright (c) 2024. Anton Starikov -- All Rights Reserved
 *
 * This file is part of OPTFEED project.
 *
 * OPTFEED is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as the Free Software Foundation,
 * either version 3 of the License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 */

package internal

import (
	"context"
	"time"

	"github.com/antst/optfeed/internal/forecast"
	"github.com/antst/optfeed/internal/logger"
	"github.com/antst/optfeed/internal/pricestore"
)

// cachedPriceProvider mirrors fetched day-ahead prices into the sqlite cache
// and serves from it when the market API is down. Day-ahead prices do not
// change once published, so cached hours are as good as fetched ones.
type cachedPriceProvider struct {
	inner PriceProvider
	store *pricestore.Store
	area  string
}

func newCachedPriceProvider(inner PriceProvider, store *pricestore.Store, area string) *cachedPriceProvider {
	return &cachedPriceProvider{inner: inner, store: store, area: area}
}

func (c *cachedPriceProvider) FetchPriceSeries(ctx context.Context, start, end time.Time) ([]forecast.PricePoint, error) {
	points, err := c.inner.FetchPriceSeries(ctx, start, end)
	if err == nil {
		if uerr := c.store.Upsert(ctx, c.area, points); uerr != nil {
			logger.L().Warnf("Failed to cache prices: %v", uerr)
		}
		return points, nil
	}

	logger.L().Warnf("Price fetch failed, trying cache: %v", err)
	cached, cerr := c.store.Get(ctx, c.area, start.Truncate(time.Hour), end)
	if cerr != nil {
		logger.L().Warnf("Price cache lookup failed: %v", cerr)
		return nil, err
	}
	if len(cached) == 0 {
		return nil, err
	}

	logger.L().Infof("Serving %d cached price points for area %s", len(cached), c.area)
	return cached, nil
}
