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
	"fmt"
	"sort"
	"time"
)

const (
	// DefaultHorizon matches the usual day-ahead coverage: the rest of
	// today plus the published next day.
	DefaultHorizon = 35

	defaultMaxFill = 2
)

// Aligner resamples two independently-timestamped sources onto one grid of
// Horizon steps. Gaps are forward-filled from the latest older sample as
// long as at most MaxFill grid points are missing in a row.
type Aligner struct {
	Horizon int
	Step    time.Duration
	MaxFill int
}

func NewAligner(horizon int) *Aligner {
	return &Aligner{
		Horizon: horizon,
		Step:    time.Hour,
		MaxFill: defaultMaxFill,
	}
}

type sample struct {
	time  time.Time
	value float64
}

// Align builds the Series for the horizon starting at now. Grid labels are
// the step boundaries of the hour containing now; the first step is clipped
// to run from now to the next boundary (so its duration shrinks as the hour
// progresses). Both sources may be irregular; they only need to reach every
// grid point within the fill tolerance.
func (a *Aligner) Align(now time.Time, prices []PricePoint, temps []TempPoint) (*Series, error) {
	if len(prices) == 0 {
		return nil, &UnavailableError{Source: "price", Reason: "empty series"}
	}
	if len(temps) == 0 {
		return nil, &UnavailableError{Source: "weather", Reason: "empty series"}
	}

	priceSamples := make([]sample, len(prices))
	for i, p := range prices {
		priceSamples[i] = sample{time: p.Time, value: p.Price}
	}
	tempSamples := make([]sample, len(temps))
	for i, t := range temps {
		tempSamples[i] = sample{time: t.Time, value: t.Temperature}
	}

	// Providers deliver ordered series; cached or merged ones may not be.
	sortSamples(priceSamples)
	sortSamples(tempSamples)

	start := now.Truncate(a.Step)
	points := make([]Point, a.Horizon)
	stepSeconds := make([]float64, a.Horizon)

	for i := range points {
		ts := start.Add(time.Duration(i) * a.Step)

		price, err := a.resample(priceSamples, ts, "price")
		if err != nil {
			return nil, err
		}
		outdoor, err := a.resample(tempSamples, ts, "weather")
		if err != nil {
			return nil, err
		}

		points[i] = Point{Time: ts, Price: price, Outdoor: outdoor}
		stepSeconds[i] = a.Step.Seconds()
	}

	// The first step only covers the remainder of the current interval.
	stepSeconds[0] = start.Add(a.Step).Sub(now).Seconds()

	return &Series{Points: points, StepSeconds: stepSeconds}, nil
}

func sortSamples(samples []sample) {
	sort.Slice(samples, func(i, j int) bool {
		return samples[i].time.Before(samples[j].time)
	})
}

// resample picks the latest sample not after ts, tolerating up to MaxFill
// missing grid points between the sample and ts.
func (a *Aligner) resample(samples []sample, ts time.Time, source string) (float64, error) {
	// Latest sample with time <= ts.
	idx := sort.Search(len(samples), func(i int) bool {
		return samples[i].time.After(ts)
	}) - 1

	if idx < 0 {
		return 0, &UnavailableError{
			Source: source,
			Reason: fmt.Sprintf("no sample at or before %v", ts),
		}
	}

	if gap := ts.Sub(samples[idx].time); gap > time.Duration(a.MaxFill)*a.Step {
		return 0, &UnavailableError{
			Source: source,
			Reason: fmt.Sprintf("gap of %v before %v exceeds fill tolerance", gap, ts),
		}
	}

	return samples[idx].value, nil
}
