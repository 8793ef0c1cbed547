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

package forecast

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultNordpoolBaseURL = "https://www.vattenfall.se/api/price/spot/pricearea"

	// The API reports wall-clock timestamps for the bidding area.
	nordpoolTimeLayout = "2006-01-02T15:04:05"
)

// NordpoolClient fetches day-ahead spot prices for a single bidding area.
type NordpoolClient struct {
	Area       string
	BaseURL    string
	HTTPClient *http.Client
}

func NewNordpoolClient(area string) *NordpoolClient {
	return &NordpoolClient{
		Area:       area,
		BaseURL:    defaultNordpoolBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type nordpoolEntry struct {
	TimeStamp string  `json:"TimeStamp"`
	Value     float64 `json:"Value"`
}

// FetchPriceSeries returns hourly price points covering [start, end] as far
// as the market has published them. Points before the hour containing start
// are dropped.
func (c *NordpoolClient) FetchPriceSeries(ctx context.Context, start, end time.Time) ([]PricePoint, error) {
	url := fmt.Sprintf(
		"%s/%s/%s/%s",
		c.BaseURL, start.Format("2006-01-02"), end.Format("2006-01-02"), c.Area,
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "nordpool: build request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "nordpool: fetch prices")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("nordpool: unexpected status %s for area %s", resp.Status, c.Area)
	}

	var entries []nordpoolEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, errors.Wrap(err, "nordpool: decode response")
	}

	cutoff := start.Truncate(time.Hour)
	points := make([]PricePoint, 0, len(entries))
	for _, e := range entries {
		ts, err := time.ParseInLocation(nordpoolTimeLayout, e.TimeStamp, time.Local)
		if err != nil {
			return nil, errors.Wrapf(err, "nordpool: bad timestamp %q", e.TimeStamp)
		}
		if ts.Before(cutoff) || ts.After(end) {
			continue
		}
		points = append(points, PricePoint{Time: ts, Price: e.Value})
	}

	return points, nil
}
