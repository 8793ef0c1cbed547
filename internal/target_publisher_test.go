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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/antst/optfeed/internal/config"
)

func TestPublishRoundsToOneDecimal(t *testing.T) {
	client := newFakeMqttClient()
	p := newTargetPublisher(&config.TargetConfig{Topic: "heatpump/feed_target"}, client)

	p.Publish(34.1337)
	p.Publish(28.0)

	pubs := client.publishes()
	require.Len(t, pubs, 2)

	assert.Equal(t, "heatpump/feed_target", pubs[0].topic)
	assert.Equal(t, "34.1", pubs[0].payload)
	assert.Equal(t, "28.0", pubs[1].payload)

	for _, pub := range pubs {
		assert.True(t, pub.retained)
		assert.Equal(t, byte(mqttQoS), pub.qos)
	}
}
