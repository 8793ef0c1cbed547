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

const defaultMaxIterations = 500

type SolverConfig struct {
	// MaxIterations caps the inner iterations of each penalty stage of a
	// solve, not the whole solve.
	MaxIterations *int `yaml:"max_iterations"`
	// AllowFailingSolutions publishes the best trajectory found even when
	// the solve did not reach a feasible point.
	AllowFailingSolutions bool `yaml:"allow_failing_solutions"`
}

func NewSolverConfig() *SolverConfig {
	cfg := &SolverConfig{}
	cfg.FillDefaults()
	return cfg
}

func (c *SolverConfig) FillDefaults() {
	if c.MaxIterations == nil {
		c.MaxIterations = GetPTR(defaultMaxIterations)
	}
}

func (c *SolverConfig) Validate() error {
	if *c.MaxIterations < 1 {
		return &ValidationError{Field: "solver.max_iterations", Reason: "must be at least 1"}
	}
	return nil
}
