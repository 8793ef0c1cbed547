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

package thermal

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func curveParams(t *testing.T) Parameters {
	t.Helper()
	p, err := ParametersFromHeatingCurve(4.7, 125)
	require.NoError(t, err)
	return p
}

func TestSimulateSteadyState(t *testing.T) {
	p := curveParams(t)
	out := p.Simulate(20, []float64{20}, []float64{20}, []float64{3600})
	assert.InDelta(t, 20.0, out[0], 1e-12)
}

func TestSimulateCooldown(t *testing.T) {
	p := curveParams(t)
	out := p.Simulate(20, []float64{20}, []float64{0}, []float64{3600})
	assert.Less(t, out[0], 20.0)
}

func TestSimulateHeatup(t *testing.T) {
	p := curveParams(t)
	out := p.Simulate(20, []float64{40}, []float64{20}, []float64{3600})
	assert.Greater(t, out[0], 20.0)
}

func TestSimulateTimeConstant(t *testing.T) {
	// Pure cooldown toward an outdoor temperature of 0: after exactly one
	// time constant the temperature must have decayed by a factor of e.
	p := Parameters{K1: DefaultOutdoorRate, K2: 0}
	out := p.Simulate(20, []float64{0}, []float64{0}, []float64{1 / DefaultOutdoorRate})
	assert.InDelta(t, 20*math.Exp(-1), out[0], 1e-9)
}

func TestSimulateDeterministic(t *testing.T) {
	p := curveParams(t)
	feed := []float64{30, 35, 40, 25}
	outdoor := []float64{5, 4, 3, 2}
	dt := []float64{1800, 3600, 3600, 3600}

	first := p.Simulate(19.5, feed, outdoor, dt)
	second := p.Simulate(19.5, feed, outdoor, dt)
	assert.Equal(t, first, second)
}

func TestSimulateMultiStepMonotoneTowardEquilibrium(t *testing.T) {
	p := curveParams(t)
	feed := []float64{45, 45, 45, 45, 45, 45}
	outdoor := []float64{5, 5, 5, 5, 5, 5}
	dt := []float64{3600, 3600, 3600, 3600, 3600, 3600}

	out := p.Simulate(18, feed, outdoor, dt)
	for i := 1; i < len(out); i++ {
		assert.Greater(t, out[i], out[i-1])
	}
}

func TestHeatingCurve(t *testing.T) {
	assert.InDelta(t, 20+3.2*4.7, HeatingCurve(4.7, 0), 1e-12)
	assert.InDelta(t, 20.0, HeatingCurve(4.7, 20), 1e-12)
	// Warmer outside than the reference indoor flips below it.
	assert.Less(t, HeatingCurve(4.7, 30), 20.0)
}

func TestParametersFromHeatingCurve(t *testing.T) {
	p := curveParams(t)

	assert.InDelta(t, DefaultOutdoorRate, p.K1, 1e-15)

	refFeed := HeatingCurve(4.7, 0)
	wantK2 := 0.8 * p.K1 * 20 / (refFeed - 20)
	assert.InDelta(t, wantK2, p.K2, 1e-15)
	assert.Greater(t, p.K2, 0.0)
}

func TestParametersFromHeatingCurveRejectsBadSlope(t *testing.T) {
	for _, slope := range []float64{0, -1, -4.7} {
		_, err := ParametersFromHeatingCurve(slope, 125)
		require.Error(t, err)

		var perr *ParameterError
		assert.True(t, errors.As(err, &perr))
	}
}

func TestParametersFromHeatingCurveRejectsBadTimeConstant(t *testing.T) {
	_, err := ParametersFromHeatingCurve(4.7, 0)
	require.Error(t, err)

	var perr *ParameterError
	assert.True(t, errors.As(err, &perr))
}

func TestNewParameters(t *testing.T) {
	p, err := NewParameters(125, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.0/450000, p.K1, 1e-15)
	assert.InDelta(t, 1.0/360000, p.K2, 1e-15)

	_, err = NewParameters(0, 100)
	assert.Error(t, err)
	_, err = NewParameters(125, -1)
	assert.Error(t, err)
}
