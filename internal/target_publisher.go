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
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/antst/optfeed/internal/config"
	"github.com/antst/optfeed/internal/logger"
	"github.com/antst/optfeed/internal/safe_mqtt"
)

// TargetPublisher emits the computed feed-temperature setpoint, one value
// per successful cycle, retained so the heat source picks it up after its
// own reconnects.
type TargetPublisher struct {
	lock sync.Mutex
	cfg  *config.TargetConfig
	mqtt safe_mqtt.MqttClient
}

func NewTargetPublisher(cfg *config.TargetConfig, mqttCfg *config.MQTTConfig) *TargetPublisher {
	client := safe_mqtt.InitMQTTClient(
		mqttCfg.URL, "optfeed-target-"+uuid.New().String(),
		mqttCfg.Username, mqttCfg.Password,
	)
	return newTargetPublisher(cfg, client)
}

func newTargetPublisher(cfg *config.TargetConfig, client safe_mqtt.MqttClient) *TargetPublisher {
	return &TargetPublisher{cfg: cfg, mqtt: client}
}

func (p *TargetPublisher) Publish(feed float64) {
	p.lock.Lock()
	defer p.lock.Unlock()

	if token := p.mqtt.SafePublish(
		p.cfg.Topic, mqttQoS, true, fmt.Sprintf("%.1f", feed),
	); token.Wait() && token.Error() != nil {
		logger.L().Error(token.Error())
	}
}
