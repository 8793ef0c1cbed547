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

// Package optimizer formulates and solves the horizon program: pick the feed
// temperature per step so that the price-weighted feed sum is minimal while
// the simulated indoor temperature stays inside the comfort band.
package optimizer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/antst/optfeed/internal/forecast"
	"github.com/antst/optfeed/internal/thermal"
)

// Problem is one cycle's horizon program. IndoorMin/IndoorMax are absolute
// temperatures; the band is widened to contain the current reading so a
// start outside the band is a recovery, not an infeasibility.
type Problem struct {
	Model         thermal.Parameters
	Prices        []float64
	Outdoor       []float64
	StepSeconds   []float64
	IndoorInitial float64
	IndoorTarget  float64
	IndoorMin     float64
	IndoorMax     float64
	FeedMax       float64
}

// NewProblem binds an aligned forecast and the current indoor reading to a
// solvable program. boundLower/boundUpper are offsets relative to the
// requested indoor temperature.
func NewProblem(
	model thermal.Parameters, series *forecast.Series,
	indoorCurrent, indoorRequested, boundLower, boundUpper, feedMax float64,
) (*Problem, error) {
	if len(series.Points) == 0 {
		return nil, errors.New("optimizer: empty forecast series")
	}
	if len(series.Points) != len(series.StepSeconds) {
		return nil, errors.Errorf(
			"optimizer: series length mismatch: %d points, %d step durations",
			len(series.Points), len(series.StepSeconds),
		)
	}

	return &Problem{
		Model:         model,
		Prices:        series.Prices(),
		Outdoor:       series.Outdoor(),
		StepSeconds:   append([]float64(nil), series.StepSeconds...),
		IndoorInitial: indoorCurrent,
		IndoorTarget:  indoorRequested,
		IndoorMin:     math.Min(indoorRequested+boundLower, indoorCurrent),
		IndoorMax:     math.Max(indoorRequested+boundUpper, indoorCurrent),
		FeedMax:       feedMax,
	}, nil
}

// Horizon returns the number of decision variables.
func (p *Problem) Horizon() int {
	return len(p.Prices)
}

// Trajectory is the solver output: one feed temperature per horizon step.
// Cost is the achieved objective and only meaningful when Feasible.
type Trajectory struct {
	Values   []float64
	Feasible bool
	Cost     float64
}

// WarmStart shifts the previous cycle's trajectory left by one step and
// repeats the last value. Returns nil when the previous trajectory does not
// match the horizon, in which case the caller falls back to a cold guess.
func WarmStart(previous []float64, horizon int) []float64 {
	if horizon == 0 || len(previous) != horizon {
		return nil
	}
	guess := make([]float64, horizon)
	copy(guess, previous[1:])
	guess[horizon-1] = previous[horizon-1]
	return guess
}

// CurveGuess builds a cold-start guess from the legacy heating curve, one
// value per outdoor forecast point, clamped to the feed bounds.
func CurveGuess(slope float64, outdoor []float64, feedMax float64) []float64 {
	guess := make([]float64, len(outdoor))
	for i, t := range outdoor {
		guess[i] = math.Min(math.Max(thermal.HeatingCurve(slope, t), 0), feedMax)
	}
	return guess
}

// FlatGuess builds a constant cold-start guess.
func FlatGuess(value float64, horizon int) []float64 {
	guess := make([]float64, horizon)
	for i := range guess {
		guess[i] = value
	}
	return guess
}
