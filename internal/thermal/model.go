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

// Package thermal holds the lumped single-state house model:
//
//	dT_indoor/dt = K1*(T_outdoor - T_indoor) + K2*(T_feed - T_indoor)
//
// Each horizon step is integrated with the closed-form exponential solution,
// so simulation is exact for piecewise-constant inputs and stable for any
// step size.
package thermal

import (
	"fmt"
	"math"
)

const (
	// DefaultOutdoorRate is the coupling rate (1/s) equivalent to a 125 h
	// house cooldown time constant.
	DefaultOutdoorRate = 1.0 / 450000

	secondsPerHour = 3600.0

	// Heating-curve reference point and shape, IVT490 style:
	// T_feed = 20 + (-0.16*slope)*(T_outdoor - 20).
	curveReferenceIndoor = 20.0
	curveSlopeFactor     = -0.16

	// Fraction of the curve-implied feed coupling attributed to the model.
	// The curve assumes full radiator output; real emitters run below it.
	curveCouplingFactor = 0.8
)

// ParameterError reports an unusable model parametrization.
type ParameterError struct {
	Reason string
}

func (e *ParameterError) Error() string {
	return "thermal: " + e.Reason
}

// Parameters are the coupling rates of the model, in 1/s.
type Parameters struct {
	K1 float64 // indoor <- outdoor
	K2 float64 // indoor <- feed
}

// NewParameters builds Parameters from time constants given in hours.
func NewParameters(outdoorTimeConstantHours, feedTimeConstantHours float64) (Parameters, error) {
	if outdoorTimeConstantHours <= 0 {
		return Parameters{}, &ParameterError{Reason: "outdoor time constant must be positive"}
	}
	if feedTimeConstantHours <= 0 {
		return Parameters{}, &ParameterError{Reason: "feed time constant must be positive"}
	}
	return Parameters{
		K1: 1.0 / (outdoorTimeConstantHours * secondsPerHour),
		K2: 1.0 / (feedTimeConstantHours * secondsPerHour),
	}, nil
}

// ParametersFromHeatingCurve derives the feed coupling rate from a heating
// curve slope. At the curve's reference point (T_outdoor=0, T_indoor=20) the
// model must be in steady state with the feed temperature the curve demands,
// which fixes K2/K1 up to the coupling factor.
func ParametersFromHeatingCurve(slope, outdoorTimeConstantHours float64) (Parameters, error) {
	if slope <= 0 {
		return Parameters{}, &ParameterError{Reason: fmt.Sprintf("heating curve slope must be positive, got %v", slope)}
	}
	if outdoorTimeConstantHours <= 0 {
		return Parameters{}, &ParameterError{Reason: "outdoor time constant must be positive"}
	}

	k1 := 1.0 / (outdoorTimeConstantHours * secondsPerHour)
	refFeed := HeatingCurve(slope, 0)
	k2 := curveCouplingFactor * k1 * curveReferenceIndoor / (refFeed - curveReferenceIndoor)
	if k2 <= 0 || math.IsInf(k2, 0) {
		return Parameters{}, &ParameterError{Reason: fmt.Sprintf("derived feed time constant is not positive for slope %v", slope)}
	}

	return Parameters{K1: k1, K2: k2}, nil
}

// HeatingCurve returns the feed temperature the legacy linear curve would
// command for the given slope and outdoor temperature.
func HeatingCurve(slope, outdoor float64) float64 {
	return curveReferenceIndoor + curveSlopeFactor*slope*(outdoor-curveReferenceIndoor)
}

// step advances the indoor temperature over dt seconds with constant feed
// and outdoor temperatures.
func (p Parameters) step(indoor, feed, outdoor, dt float64) float64 {
	k := p.K1 + p.K2
	if k == 0 {
		return indoor
	}
	equilibrium := (p.K1*outdoor + p.K2*feed) / k
	return equilibrium + (indoor-equilibrium)*math.Exp(-k*dt)
}

// Simulate integrates the model from the given initial indoor temperature.
// feed, outdoor and stepSeconds must have equal length; the result holds the
// indoor temperature at the end of each step. Deterministic: identical
// inputs always produce identical output.
func (p Parameters) Simulate(indoorInitial float64, feed, outdoor, stepSeconds []float64) []float64 {
	indoor := make([]float64, len(feed))
	ti := indoorInitial
	for i := range feed {
		ti = p.step(ti, feed[i], outdoor[i], stepSeconds[i])
		indoor[i] = ti
	}
	return indoor
}
