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

// Package forecast merges the day-ahead price feed and the weather forecast
// onto the hourly horizon grid the optimizer works on.
package forecast

import (
	"fmt"
	"time"
)

// PricePoint is one sample of the day-ahead electricity price.
type PricePoint struct {
	Time  time.Time
	Price float64
}

// TempPoint is one sample of the outdoor temperature forecast.
type TempPoint struct {
	Time        time.Time
	Temperature float64
}

// Point is one aligned step of the horizon.
type Point struct {
	Time    time.Time
	Price   float64
	Outdoor float64
}

// Series is an aligned forecast: one Point per horizon step plus the step
// durations. The first step runs from "now" to the next grid boundary, so
// its duration is clipped; all later steps span the full grid interval.
// A Series is built fresh each cycle and never mutated.
type Series struct {
	Points      []Point
	StepSeconds []float64
}

// Prices returns the price column.
func (s *Series) Prices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Outdoor returns the outdoor temperature column.
func (s *Series) Outdoor() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Outdoor
	}
	return out
}

// UnavailableError means one source cannot cover the horizon within the
// fill tolerance. The cycle is skipped and retried on the next tick.
type UnavailableError struct {
	Source string
	Reason string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("forecast: %s source unavailable: %s", e.Source, e.Reason)
}
