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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antst/optfeed/internal/config"
)

var sensorNow = time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

func newTestSensor(t *testing.T, cfg *config.SensorConfig) (*SensorController, *fakeMqttClient, chan bool) {
	t.Helper()
	cfg.FillDefaults()
	client := newFakeMqttClient()
	notify := make(chan bool, 1)
	s := newSensorController("test", cfg, client, notify)
	s.nowFunc = func() time.Time { return sensorNow }
	return s, client, notify
}

func TestSensorPlainPayload(t *testing.T) {
	s, client, notify := newTestSensor(t, &config.SensorConfig{Topic: "home/indoor"})

	client.deliver("home/indoor", "19.5")

	v, ts := s.Reading()
	assert.Equal(t, 19.5, v)
	assert.Equal(t, sensorNow, ts)

	select {
	case <-notify:
	default:
		t.Fatal("expected a notification after the first reading")
	}
}

func TestSensorScaleAndOffset(t *testing.T) {
	s, client, _ := newTestSensor(t, &config.SensorConfig{
		Topic:  "home/indoor",
		Scale:  config.GetPTR(0.5),
		Offset: config.GetPTR(1.0),
	})

	client.deliver("home/indoor", "20")

	v, _ := s.Reading()
	assert.Equal(t, 11.0, v)
}

func TestSensorJSONPayload(t *testing.T) {
	s, client, _ := newTestSensor(t, &config.SensorConfig{
		Topic:     "home/indoor",
		JSONEntry: config.GetPTR("temperature"),
	})

	client.deliver("home/indoor", `{"temperature": 19.25, "humidity": 40}`)

	v, _ := s.Reading()
	assert.Equal(t, 19.25, v)
}

func TestSensorIgnoresBadPayload(t *testing.T) {
	s, client, notify := newTestSensor(t, &config.SensorConfig{Topic: "home/indoor"})

	client.deliver("home/indoor", "warm-ish")

	_, ts := s.Reading()
	assert.Equal(t, zeroTS, ts)
	assert.False(t, s.Fresh(sensorNow, time.Hour))

	select {
	case <-notify:
		t.Fatal("bad payload must not notify")
	default:
	}
}

func TestSensorIgnoresMissingJSONEntry(t *testing.T) {
	s, client, _ := newTestSensor(t, &config.SensorConfig{
		Topic:     "home/indoor",
		JSONEntry: config.GetPTR("temperature"),
	})

	client.deliver("home/indoor", `{"humidity": 40}`)

	_, ts := s.Reading()
	assert.Equal(t, zeroTS, ts)
}

func TestSensorFresh(t *testing.T) {
	s, client, _ := newTestSensor(t, &config.SensorConfig{Topic: "home/indoor"})

	// Never seen a message.
	assert.False(t, s.Fresh(sensorNow, time.Hour))

	client.deliver("home/indoor", "19.5")
	assert.True(t, s.Fresh(sensorNow, 10*time.Minute))
	assert.True(t, s.Fresh(sensorNow.Add(10*time.Minute), 10*time.Minute))
	assert.False(t, s.Fresh(sensorNow.Add(11*time.Minute), 10*time.Minute))
}

func TestSensorNotifyNeverBlocks(t *testing.T) {
	s, client, notify := newTestSensor(t, &config.SensorConfig{Topic: "home/indoor"})

	// Second delivery finds the channel full and must not block.
	client.deliver("home/indoor", "19.5")
	client.deliver("home/indoor", "19.7")

	v, _ := s.Reading()
	assert.Equal(t, 19.7, v)

	require.Len(t, notify, 1)
}
