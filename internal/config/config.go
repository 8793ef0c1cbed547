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

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/antst/optfeed/internal/logger"

	"github.com/pborman/getopt/v2"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigFile = "config.yaml"
)

type Config struct {
	LogLevel   zapcore.Level   `yaml:"log_level"`
	MQTTConfig *MQTTConfig     `yaml:"mqtt"`
	Indoor     *SensorConfig   `yaml:"indoor_sensor"`
	Outdoor    *SensorConfig   `yaml:"outdoor_sensor"`
	Target     *TargetConfig   `yaml:"target"`
	Thermal    *ThermalConfig  `yaml:"thermal"`
	Forecast   *ForecastConfig `yaml:"forecast"`
	Solver     *SolverConfig   `yaml:"solver"`
	// Optional sqlite cache of fetched day-ahead prices. Empty disables it.
	PriceCacheFile string `yaml:"price_cache_file,omitempty"`
}

func defConfig() *Config {
	return &Config{
		MQTTConfig: NewMQTTConfig(),
		Indoor:     NewSensorConfig(),
		Outdoor:    NewSensorConfig(),
		Target:     NewTargetConfig(),
		Thermal:    NewThermalConfig(),
		Forecast:   NewForecastConfig(),
		Solver:     NewSolverConfig(),
	}
}

func prettyPrint(cfg *Config) {
	d, err := yaml.Marshal(cfg)
	if err != nil {
		logger.L().Error("Failed to marshal config for pretty print", err)
		return
	}
	logger.L().Debugf("--- Config ---\n%s\n\n", string(d))
}

func (cfg *Config) FillDefaults() {
	cfg.MQTTConfig.FillDefaults()
	cfg.Indoor.FillDefaults()
	cfg.Outdoor.FillDefaults()
	cfg.Thermal.FillDefaults()
	cfg.Forecast.FillDefaults()
	cfg.Solver.FillDefaults()
}

func Get() *Config {
	cfg := defConfig()
	logLevel := getopt.StringLong("log-level", 'l', "", "log levels: debug, info, warn, error, dpanic, panic, fatal")
	configFile := getopt.StringLong("config", 'c', defaultConfigFile, "config file pathname")
	priceDB := getopt.StringLong("price-db", 'p', "", "sqlite file for the day-ahead price cache")

	getopt.Parse()

	if err := readFile(cfg, *configFile); err != nil {
		log.Panicf("GetConfig: %v", err)
	}
	logger.L().Infof("Using config file `%v`", *configFile)

	if *priceDB != "" {
		cfg.PriceCacheFile = *priceDB
	}

	cfg.FillDefaults()

	if err := cfg.Validate(); err != nil {
		log.Panicf("GetConfig: %v", err)
	}

	if *logLevel != "" {
		if err := cfg.LogLevel.Set(*logLevel); err != nil {
			logger.L().Errorf("Wrong log level `%v`: %v", *logLevel, err)
		}
	}
	logger.SetLogLevel(cfg.LogLevel)

	prettyPrint(cfg)

	return cfg
}

// Validate enforces the startup invariants. Any violation is fatal before
// the control loop starts.
func (cfg *Config) Validate() error {
	if cfg.MQTTConfig.URL == "" {
		return &ValidationError{Field: "mqtt.url", Reason: "must not be empty"}
	}
	if cfg.Indoor.Topic == "" {
		return &ValidationError{Field: "indoor_sensor.topic", Reason: "must not be empty"}
	}
	if cfg.Outdoor.Topic == "" {
		return &ValidationError{Field: "outdoor_sensor.topic", Reason: "must not be empty"}
	}
	if cfg.Target.Topic == "" {
		return &ValidationError{Field: "target.topic", Reason: "must not be empty"}
	}
	if err := cfg.Thermal.Validate(); err != nil {
		return err
	}
	if err := cfg.Forecast.Validate(); err != nil {
		return err
	}
	return cfg.Solver.Validate()
}

func fileExists(filename string) bool {
	info, err := os.Stat(filename)
	return err == nil && !info.IsDir()
}

func readFile(cfg *Config, configFileName string) error {
	if !fileExists(configFileName) {
		return nil
	}

	f, err := os.Open(configFileName)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	return nil
}
