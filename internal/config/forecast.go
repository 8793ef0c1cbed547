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

package config

const (
	defaultHorizonHours  = 35
	defaultSolveInterval = 300.0 // seconds
	defaultSensorTimeout = 600.0 // seconds
)

type ForecastConfig struct {
	PriceArea            string   `yaml:"price_area"`
	Latitude             *float64 `yaml:"latitude"`
	Longitude            *float64 `yaml:"longitude"`
	HorizonHours         *int     `yaml:"horizon_hours"`
	SolveIntervalSeconds *float64 `yaml:"solve_interval_seconds"`
	SensorTimeoutSeconds *float64 `yaml:"sensor_timeout_seconds"`
}

func NewForecastConfig() *ForecastConfig {
	cfg := &ForecastConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *ForecastConfig) FillDefaults() {
	if c.HorizonHours == nil {
		c.HorizonHours = GetPTR(defaultHorizonHours)
	}
	if c.SolveIntervalSeconds == nil {
		c.SolveIntervalSeconds = GetPTR(defaultSolveInterval)
	}
	if c.SensorTimeoutSeconds == nil {
		c.SensorTimeoutSeconds = GetPTR(defaultSensorTimeout)
	}
}

func (c *ForecastConfig) Validate() error {
	if c.PriceArea == "" {
		return &ValidationError{Field: "forecast.price_area", Reason: "must not be empty, eg: SE3"}
	}
	if c.Latitude == nil || *c.Latitude < -90 || *c.Latitude > 90 {
		return &ValidationError{Field: "forecast.latitude", Reason: "must be set within [-90, 90]"}
	}
	if c.Longitude == nil || *c.Longitude < -180 || *c.Longitude > 180 {
		return &ValidationError{Field: "forecast.longitude", Reason: "must be set within [-180, 180]"}
	}
	if *c.HorizonHours < 1 {
		return &ValidationError{Field: "forecast.horizon_hours", Reason: "must be at least 1"}
	}
	if *c.SolveIntervalSeconds <= 0 {
		return &ValidationError{Field: "forecast.solve_interval_seconds", Reason: "must be positive"}
	}
	if *c.SensorTimeoutSeconds <= 0 {
		return &ValidationError{Field: "forecast.sensor_timeout_seconds", Reason: "must be positive"}
	}
	return nil
}
