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
	"sync"
	"time"

	"github.com/antst/optfeed/internal/config"
	"github.com/antst/optfeed/internal/logger"
	"github.com/antst/optfeed/internal/safe_mqtt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const sensorClientPrefix = "optfeed-sensor-"

// SensorController keeps the latest value of one temperature topic. There is
// no queue: each message overwrites the previous reading, which is all the
// control loop needs.
type SensorController struct {
	name       string
	lock       sync.RWMutex
	cfg        *config.SensorConfig
	mqtt       safe_mqtt.MqttClient
	value      float64
	timestamp  time.Time
	notifyChan chan<- bool
	nowFunc    func() time.Time
}

func NewSensorController(
	name string, cfg *config.SensorConfig, mqttCfg *config.MQTTConfig, notifyChan chan<- bool,
) *SensorController {
	client := safe_mqtt.InitMQTTClient(
		mqttCfg.URL, sensorClientPrefix+name+"-"+uuid.New().String(),
		mqttCfg.Username, mqttCfg.Password,
	)
	return newSensorController(name, cfg, client, notifyChan)
}

func newSensorController(
	name string, cfg *config.SensorConfig, client safe_mqtt.MqttClient, notifyChan chan<- bool,
) *SensorController {
	s := &SensorController{
		name:       name,
		cfg:        cfg,
		mqtt:       client,
		timestamp:  zeroTS,
		notifyChan: notifyChan,
		nowFunc:    time.Now,
	}
	s.mqtt.SafeSubscribe(cfg.Topic, mqttQoS, s.ValueUpdateHandler)
	return s
}

func (s *SensorController) ValueUpdateHandler(client mqtt.Client, message mqtt.Message) {
	t0, err := extractF64PlainOrJson(message, s.cfg.JSONEntry)
	if err != nil {
		logger.L().Error(err)
		return
	}

	s.lock.Lock()
	s.value = t0*(*s.cfg.Scale) + (*s.cfg.Offset)
	s.timestamp = s.nowFunc()
	value := s.value
	s.lock.Unlock()

	logger.L().Debugf("Got value for sensor %s : %f", s.name, value)

	select {
	case s.notifyChan <- true:
	default:
	}
}

// Reading returns the latest value and its arrival time. The timestamp is
// zeroTS until the first message lands.
func (s *SensorController) Reading() (float64, time.Time) {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.value, s.timestamp
}

// Fresh reports whether the reading can be trusted at the given instant.
func (s *SensorController) Fresh(now time.Time, timeout time.Duration) bool {
	_, ts := s.Reading()
	return ts.After(zeroTS) && now.Sub(ts) <= timeout
}
