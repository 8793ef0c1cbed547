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
	"strconv"
	"time"

	"github.com/pkg/errors"
)

const (
	defaultSMHIBaseURL = "https://opendata-download-metfcst.smhi.se/api/category/pmp3g/version/2/geotype/point"

	smhiTemperatureParam = "t"
)

// SMHIClient fetches the point forecast for a fixed location.
type SMHIClient struct {
	Latitude   float64
	Longitude  float64
	BaseURL    string
	HTTPClient *http.Client
}

func NewSMHIClient(latitude, longitude float64) *SMHIClient {
	return &SMHIClient{
		Latitude:   latitude,
		Longitude:  longitude,
		BaseURL:    defaultSMHIBaseURL,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type smhiResponse struct {
	TimeSeries []struct {
		ValidTime  time.Time `json:"validTime"`
		Parameters []struct {
			Name   string    `json:"name"`
			Values []float64 `json:"values"`
		} `json:"parameters"`
	} `json:"timeSeries"`
}

// FetchForecastSeries returns forecast temperature points within [start, end].
func (c *SMHIClient) FetchForecastSeries(ctx context.Context, start, end time.Time) ([]TempPoint, error) {
	url := fmt.Sprintf(
		"%s/lon/%s/lat/%s/data.json",
		c.BaseURL, formatCoordinate(c.Longitude), formatCoordinate(c.Latitude),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "smhi: build request")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "smhi: fetch forecast")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("smhi: unexpected status %s", resp.Status)
	}

	var payload smhiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, errors.Wrap(err, "smhi: decode response")
	}

	points := make([]TempPoint, 0, len(payload.TimeSeries))
	for _, entry := range payload.TimeSeries {
		if entry.ValidTime.Before(start) || entry.ValidTime.After(end) {
			continue
		}
		for _, param := range entry.Parameters {
			if param.Name == smhiTemperatureParam && len(param.Values) > 0 {
				points = append(points, TempPoint{Time: entry.ValidTime, Temperature: param.Values[0]})
				break
			}
		}
	}

	if len(points) == 0 {
		return nil, errors.New("smhi: no temperature values in forecast")
	}

	return points, nil
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
