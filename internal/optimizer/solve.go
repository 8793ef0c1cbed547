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

package optimizer

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// ErrInfeasible accompanies the best trajectory found when no point within
// tolerance of the constraints was reached.
var ErrInfeasible = errors.New("optimizer: no feasible trajectory found")

const (
	// Allowed constraint violation, in degrees.
	defaultTolerance = 1e-2

	// Weight of the soft terminal condition pinning the final indoor
	// temperature to the requested one. Without it the end of the horizon
	// sags to the lower comfort bound.
	terminalWeight = 1.0
)

// penaltySchedule is the fixed sequence of quadratic-penalty weights. Being
// fixed it keeps the whole solve deterministic: identical inputs walk the
// identical sequence of smooth subproblems.
var penaltySchedule = []float64{1e2, 1e3, 1e4, 1e5}

// Solver minimizes the price-weighted feed sum subject to the comfort band
// and feed bounds. Constraints enter as quadratic penalties with increasing
// weight; each subproblem goes to L-BFGS with finite-difference gradients.
type Solver struct {
	// MaxIterations caps the L-BFGS iterations of each penalty stage.
	MaxIterations int
	Tolerance     float64
}

func NewSolver(maxIterations int) *Solver {
	return &Solver{
		MaxIterations: maxIterations,
		Tolerance:     defaultTolerance,
	}
}

// Solve runs the program from the given initial guess. The returned
// trajectory is always usable as the next warm start; when it violates the
// constraints beyond tolerance it is flagged infeasible and accompanied by
// ErrInfeasible.
func (s *Solver) Solve(p *Problem, initial []float64) (*Trajectory, error) {
	n := p.Horizon()
	if len(initial) != n {
		return nil, errors.Errorf("optimizer: initial guess length %d, want %d", len(initial), n)
	}
	if len(p.Outdoor) != n || len(p.StepSeconds) != n {
		return nil, errors.Errorf("optimizer: inconsistent problem dimensions for horizon %d", n)
	}

	weights := priceWeights(p.Prices)
	x := append([]float64(nil), initial...)

	for _, mu := range penaltySchedule {
		mu := mu
		f := func(v []float64) float64 {
			return s.penalized(p, weights, v, mu)
		}
		prob := optimize.Problem{
			Func: f,
			// L-BFGS needs an explicit gradient; finite differences keep
			// the solve deterministic.
			Grad: func(grad, v []float64) {
				fd.Gradient(grad, f, v, nil)
			},
		}
		settings := &optimize.Settings{
			MajorIterations: s.MaxIterations,
		}

		result, err := optimize.Minimize(prob, x, settings, &optimize.LBFGS{})
		if result == nil {
			return nil, errors.Wrap(err, "optimizer: solve failed")
		}
		// Iteration caps and stalled line searches are not fatal here;
		// the violation check below is the arbiter.
		x = result.X
	}

	for _, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.New("optimizer: solve diverged to non-finite values")
		}
	}

	// Snap residual bound excursions; the band check runs on what would
	// actually be published.
	for i, v := range x {
		x[i] = math.Min(math.Max(v, 0), p.FeedMax)
	}

	traj := &Trajectory{
		Values:   x,
		Feasible: s.maxBandViolation(p, x) <= s.Tolerance,
		Cost:     floats.Dot(weights, x),
	}
	if !traj.Feasible {
		return traj, ErrInfeasible
	}
	return traj, nil
}

// penalized is the smooth subproblem objective for penalty weight mu.
// The cost proxy is linear in the feed temperature, weighted by normalized
// prices (the original controller's proxy); it is convex and identical
// across cycles.
func (s *Solver) penalized(p *Problem, weights, x []float64, mu float64) float64 {
	cost := floats.Dot(weights, x)

	indoor := p.Model.Simulate(p.IndoorInitial, x, p.Outdoor, p.StepSeconds)

	pen := 0.0
	for i, ti := range indoor {
		if d := p.IndoorMin - ti; d > 0 {
			pen += d * d
		}
		if d := ti - p.IndoorMax; d > 0 {
			pen += d * d
		}
		if xi := x[i]; xi < 0 {
			pen += xi * xi
		}
		if d := x[i] - p.FeedMax; d > 0 {
			pen += d * d
		}
	}

	d := indoor[len(indoor)-1] - p.IndoorTarget
	pen += terminalWeight * d * d

	return cost + mu*pen
}

// maxBandViolation is the largest comfort-band violation of the simulated
// indoor trajectory, in degrees.
func (s *Solver) maxBandViolation(p *Problem, x []float64) float64 {
	indoor := p.Model.Simulate(p.IndoorInitial, x, p.Outdoor, p.StepSeconds)
	worst := 0.0
	for _, ti := range indoor {
		worst = math.Max(worst, p.IndoorMin-ti)
		worst = math.Max(worst, ti-p.IndoorMax)
	}
	return worst
}

// priceWeights normalizes prices so the objective stays scaled the same way
// regardless of price level. A degenerate all-zero series falls back to
// uniform weights.
func priceWeights(prices []float64) []float64 {
	weights := make([]float64, len(prices))
	sum := floats.Sum(prices)
	if math.Abs(sum) < 1e-12 {
		for i := range weights {
			weights[i] = 1.0 / float64(len(prices))
		}
		return weights
	}
	for i, p := range prices {
		weights[i] = p / sum
	}
	return weights
}
