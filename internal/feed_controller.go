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

package internal

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/antst/optfeed/internal/config"
	"github.com/antst/optfeed/internal/forecast"
	"github.com/antst/optfeed/internal/logger"
	"github.com/antst/optfeed/internal/optimizer"
	"github.com/antst/optfeed/internal/pricestore"
	"github.com/antst/optfeed/internal/thermal"

	"sync"
)

// Phase is the control loop lifecycle state.
type Phase int32

const (
	PhaseWaitingForSensors Phase = iota
	PhaseSolving
	PhasePublishing
)

func (p Phase) String() string {
	switch p {
	case PhaseWaitingForSensors:
		return "waiting-for-sensors"
	case PhaseSolving:
		return "solving"
	case PhasePublishing:
		return "publishing"
	}
	return "unknown"
}

// PriceProvider serves day-ahead prices for the configured bidding area.
type PriceProvider interface {
	FetchPriceSeries(ctx context.Context, start, end time.Time) ([]forecast.PricePoint, error)
}

// WeatherProvider serves the outdoor temperature forecast for the configured
// location.
type WeatherProvider interface {
	FetchForecastSeries(ctx context.Context, start, end time.Time) ([]forecast.TempPoint, error)
}

type cycleResult struct {
	traj *optimizer.Trajectory
	err  error
}

// FeedController is the receding-horizon scheduler. It owns all mutable
// controller state: the sensor readings (through the sensor controllers),
// the warm-start trajectory and the lifecycle phase. At most one solve is in
// flight at any time; ticks arriving during a solve are dropped.
type FeedController struct {
	cfg     *config.Config
	model   thermal.Parameters
	aligner *forecast.Aligner
	solver  *optimizer.Solver
	prices  PriceProvider
	weather WeatherProvider
	indoor  *SensorController
	outdoor *SensorController
	target  *TargetPublisher

	// mu guards phase, solving and warmStart between the message-receiving
	// select loop and the solve worker.
	mu        sync.Mutex
	phase     Phase
	solving   bool
	warmStart []float64

	sensorChan chan bool
	doneChan   chan *cycleResult
	stopChan   chan struct{}
	nowFunc    func() time.Time
}

func NewFeedController() *FeedController {
	cfg := config.Get()

	model, err := modelFromConfig(cfg.Thermal)
	if err != nil {
		logger.L().Panic(err)
	}

	c := &FeedController{
		cfg:        cfg,
		model:      model,
		aligner:    forecast.NewAligner(*cfg.Forecast.HorizonHours),
		solver:     optimizer.NewSolver(*cfg.Solver.MaxIterations),
		phase:      PhaseWaitingForSensors,
		sensorChan: make(chan bool, 8),
		doneChan:   make(chan *cycleResult, 1),
		stopChan:   make(chan struct{}),
		nowFunc:    time.Now,
	}

	var prices PriceProvider = forecast.NewNordpoolClient(cfg.Forecast.PriceArea)
	if cfg.PriceCacheFile != "" {
		store, err := pricestore.Open(cfg.PriceCacheFile)
		if err != nil {
			logger.L().Panic(err)
		}
		prices = newCachedPriceProvider(prices, store, cfg.Forecast.PriceArea)
	}
	c.prices = prices
	c.weather = forecast.NewSMHIClient(*cfg.Forecast.Latitude, *cfg.Forecast.Longitude)

	c.indoor = NewSensorController("indoor", cfg.Indoor, cfg.MQTTConfig, c.sensorChan)
	c.outdoor = NewSensorController("outdoor", cfg.Outdoor, cfg.MQTTConfig, c.sensorChan)
	c.target = NewTargetPublisher(cfg.Target, cfg.MQTTConfig)

	return c
}

func modelFromConfig(tc *config.ThermalConfig) (thermal.Parameters, error) {
	if tc.FeedTimeConstant != nil {
		return thermal.NewParameters(*tc.OutdoorTimeConstant, *tc.FeedTimeConstant)
	}
	return thermal.ParametersFromHeatingCurve(*tc.HeatingCurveSlope, *tc.OutdoorTimeConstant)
}

// Run drives the loop until Stop. Sensor messages land through the sensor
// controllers' own MQTT callbacks; the select loop stays responsive while a
// solve runs on its worker goroutine.
func (c *FeedController) Run() {
	interval := time.Duration(*c.cfg.Forecast.SolveIntervalSeconds * float64(time.Second))
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.sensorChan:
			// Readings are already stored; the next tick picks them up.
		case <-ticker.C:
			c.onTick()
		case res := <-c.doneChan:
			c.finishCycle(res)
		case <-c.stopChan:
			return
		}
	}
}

func (c *FeedController) Stop() {
	close(c.stopChan)
}

// Phase returns the current lifecycle phase.
func (c *FeedController) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// onTick starts one solve cycle unless a solve is already in flight or a
// sensor reading is stale. Staleness is only checked here, never during an
// active solve.
func (c *FeedController) onTick() {
	c.mu.Lock()
	if c.solving {
		c.mu.Unlock()
		logger.L().Debug("Tick during active solve, dropped")
		return
	}
	c.mu.Unlock()

	now := c.nowFunc()
	timeout := time.Duration(*c.cfg.Forecast.SensorTimeoutSeconds * float64(time.Second))

	if !c.indoor.Fresh(now, timeout) || !c.outdoor.Fresh(now, timeout) {
		_, indoorTS := c.indoor.Reading()
		_, outdoorTS := c.outdoor.Reading()
		logger.L().Warnf(
			"Sensor readings stale (indoor %s, outdoor %s), skipping cycle",
			formatAge(now, indoorTS), formatAge(now, outdoorTS),
		)
		return
	}

	indoorNow, _ := c.indoor.Reading()
	outdoorNow, _ := c.outdoor.Reading()

	c.mu.Lock()
	c.solving = true
	c.phase = PhaseSolving
	warm := append([]float64(nil), c.warmStart...)
	c.mu.Unlock()

	go func() {
		// A panic here would otherwise take the whole process down; the
		// loop treats it like any other failed cycle.
		defer func() {
			if r := recover(); r != nil {
				c.doneChan <- &cycleResult{err: errors.Errorf("solve cycle panic: %v", r)}
			}
		}()
		c.doneChan <- c.solveCycle(now, indoorNow, outdoorNow, warm)
	}()
}

// solveCycle runs on the worker goroutine: fetch, align, solve.
func (c *FeedController) solveCycle(now time.Time, indoorNow, outdoorNow float64, warm []float64) *cycleResult {
	ctx := context.Background()
	end := now.Truncate(c.aligner.Step).Add(time.Duration(c.aligner.Horizon) * c.aligner.Step)

	prices, err := c.prices.FetchPriceSeries(ctx, now, end)
	if err != nil {
		return &cycleResult{err: errors.WithMessage(err, "price series")}
	}

	temps, err := c.weather.FetchForecastSeries(ctx, now, end)
	if err != nil {
		return &cycleResult{err: errors.WithMessage(err, "weather series")}
	}

	// The live outdoor reading anchors the first grid point; the forecast
	// covers the rest of the horizon.
	temps = append(
		[]forecast.TempPoint{{Time: now.Truncate(c.aligner.Step), Temperature: outdoorNow}},
		temps...,
	)

	series, err := c.aligner.Align(now, prices, temps)
	if err != nil {
		return &cycleResult{err: err}
	}

	problem, err := optimizer.NewProblem(
		c.model, series, indoorNow,
		*c.cfg.Thermal.RequestedIndoor, *c.cfg.Thermal.BoundLower, *c.cfg.Thermal.BoundUpper,
		*c.cfg.Thermal.FeedMax,
	)
	if err != nil {
		return &cycleResult{err: err}
	}

	traj, err := c.solver.Solve(problem, c.initialGuess(warm, series))
	return &cycleResult{traj: traj, err: err}
}

// initialGuess prefers the shifted previous trajectory; a cold start comes
// from the heating curve when a slope is configured, else a flat guess at
// the requested indoor temperature.
func (c *FeedController) initialGuess(warm []float64, series *forecast.Series) []float64 {
	if g := optimizer.WarmStart(warm, c.aligner.Horizon); g != nil {
		return g
	}
	if slope := c.cfg.Thermal.HeatingCurveSlope; slope != nil {
		return optimizer.CurveGuess(*slope, series.Outdoor(), *c.cfg.Thermal.FeedMax)
	}
	return optimizer.FlatGuess(*c.cfg.Thermal.RequestedIndoor, c.aligner.Horizon)
}

// finishCycle consumes a solve result on the select loop: publish the first
// trajectory element and retain the rest as the next warm start.
func (c *FeedController) finishCycle(res *cycleResult) {
	c.mu.Lock()
	c.solving = false
	c.mu.Unlock()

	switch {
	case res.err == nil:
	case errors.Is(res.err, optimizer.ErrInfeasible):
		if !c.cfg.Solver.AllowFailingSolutions {
			logger.L().Warnf("Optimization infeasible, withholding publish")
			c.setPhase(PhaseWaitingForSensors)
			return
		}
		logger.L().Warnf("Optimization infeasible, publishing best-found trajectory anyway")
	default:
		logger.L().Warnf("Cycle skipped: %v", res.err)
		c.setPhase(PhaseWaitingForSensors)
		return
	}

	c.setPhase(PhasePublishing)
	feed := res.traj.Values[0]
	c.target.Publish(feed)

	c.mu.Lock()
	c.warmStart = res.traj.Values
	c.phase = PhaseWaitingForSensors
	c.mu.Unlock()

	logger.L().Infof(
		"New target feed temperature: %.2f (cost %.4f, feasible %v)",
		feed, res.traj.Cost, res.traj.Feasible,
	)
}

func (c *FeedController) setPhase(p Phase) {
	c.mu.Lock()
	c.phase = p
	c.mu.Unlock()
}

func formatAge(now, ts time.Time) string {
	if !ts.After(zeroTS) {
		return "never seen"
	}
	return now.Sub(ts).Round(time.Second).String()
}
