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
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/antst/optfeed/internal/forecast"
)

type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return mqttQoS }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type publishRecord struct {
	topic    string
	payload  string
	qos      byte
	retained bool
}

// fakeMqttClient satisfies safe_mqtt.MqttClient without a broker. Handlers
// are keyed by topic so several components can share one fake.
type fakeMqttClient struct {
	mu        sync.Mutex
	published []publishRecord
	handlers  map[string]mqtt.MessageHandler
}

func newFakeMqttClient() *fakeMqttClient {
	return &fakeMqttClient{handlers: map[string]mqtt.MessageHandler{}}
}

func (c *fakeMqttClient) SafePublish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, publishRecord{
		topic:    topic,
		payload:  fmt.Sprintf("%v", payload),
		qos:      qos,
		retained: retained,
	})
	return &fakeToken{}
}

func (c *fakeMqttClient) SafeSubscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = callback
	return &fakeToken{}
}

func (c *fakeMqttClient) SafeUnsubscribe(topics ...string) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range topics {
		delete(c.handlers, t)
	}
	return &fakeToken{}
}

// deliver runs the subscribed handler as the paho client would on receive.
func (c *fakeMqttClient) deliver(topic, payload string) {
	c.mu.Lock()
	h := c.handlers[topic]
	c.mu.Unlock()
	if h != nil {
		h(nil, &fakeMessage{topic: topic, payload: []byte(payload)})
	}
}

func (c *fakeMqttClient) publishes() []publishRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]publishRecord(nil), c.published...)
}

type fakePriceProvider struct {
	mu     sync.Mutex
	points []forecast.PricePoint
	err    error
	calls  int
}

func (f *fakePriceProvider) FetchPriceSeries(ctx context.Context, start, end time.Time) ([]forecast.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

type fakeWeatherProvider struct {
	mu     sync.Mutex
	points []forecast.TempPoint
	err    error
}

func (f *fakeWeatherProvider) FetchForecastSeries(ctx context.Context, start, end time.Time) ([]forecast.TempPoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.points, nil
}

func fakeHourlyPrices(start time.Time, n int, price float64) []forecast.PricePoint {
	out := make([]forecast.PricePoint, n)
	for i := range out {
		out[i] = forecast.PricePoint{Time: start.Add(time.Duration(i) * time.Hour), Price: price}
	}
	return out
}

func fakeHourlyTemps(start time.Time, n int, temp float64) []forecast.TempPoint {
	out := make([]forecast.TempPoint, n)
	for i := range out {
		out[i] = forecast.TempPoint{Time: start.Add(time.Duration(i) * time.Hour), Temperature: temp}
	}
	return out
}
