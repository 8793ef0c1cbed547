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
	defaultRequestedIndoor     = 20.0
	defaultBoundLower          = -1.0
	defaultBoundUpper          = 1.0
	defaultFeedMax             = 60.0
	defaultOutdoorTimeConstant = 125.0 // hours
)

// ThermalConfig describes the lumped house model and the comfort band.
// Exactly one of FeedTimeConstant and HeatingCurveSlope must be set.
type ThermalConfig struct {
	RequestedIndoor     *float64 `yaml:"t_indoor_requested"`
	BoundLower          *float64 `yaml:"t_indoor_bound_lower"`
	BoundUpper          *float64 `yaml:"t_indoor_bound_upper"`
	FeedMax             *float64 `yaml:"t_feed_maximum"`
	OutdoorTimeConstant *float64 `yaml:"t_outdoor_time_constant"`
	FeedTimeConstant    *float64 `yaml:"t_feed_time_constant,omitempty"`
	HeatingCurveSlope   *float64 `yaml:"heating_curve_slope,omitempty"`
}

func NewThermalConfig() *ThermalConfig {
	cfg := &ThermalConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *ThermalConfig) FillDefaults() {
	if c.RequestedIndoor == nil {
		c.RequestedIndoor = GetPTR(defaultRequestedIndoor)
	}
	if c.BoundLower == nil {
		c.BoundLower = GetPTR(defaultBoundLower)
	}
	if c.BoundUpper == nil {
		c.BoundUpper = GetPTR(defaultBoundUpper)
	}
	if c.FeedMax == nil {
		c.FeedMax = GetPTR(defaultFeedMax)
	}
	if c.OutdoorTimeConstant == nil {
		c.OutdoorTimeConstant = GetPTR(defaultOutdoorTimeConstant)
	}
}

func (c *ThermalConfig) Validate() error {
	if *c.OutdoorTimeConstant <= 0 {
		return &ValidationError{Field: "thermal.t_outdoor_time_constant", Reason: "must be positive"}
	}
	if c.FeedTimeConstant == nil && c.HeatingCurveSlope == nil {
		return &ValidationError{
			Field:  "thermal.t_feed_time_constant",
			Reason: "either t_feed_time_constant or heating_curve_slope is required",
		}
	}
	if c.FeedTimeConstant != nil && c.HeatingCurveSlope != nil {
		return &ValidationError{
			Field:  "thermal.t_feed_time_constant",
			Reason: "t_feed_time_constant and heating_curve_slope are mutually exclusive",
		}
	}
	if c.FeedTimeConstant != nil && *c.FeedTimeConstant <= 0 {
		return &ValidationError{Field: "thermal.t_feed_time_constant", Reason: "must be positive"}
	}
	if *c.FeedMax <= *c.RequestedIndoor {
		return &ValidationError{
			Field:  "thermal.t_feed_maximum",
			Reason: "must exceed the requested indoor temperature",
		}
	}
	if *c.BoundLower >= *c.BoundUpper {
		return &ValidationError{
			Field:  "thermal.t_indoor_bound_lower",
			Reason: "lower bound offset must be below the upper one",
		}
	}
	return nil
}
