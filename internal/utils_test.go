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

func TestExtractF64PlainPayload(t *testing.T) {
	v, err := extractF64PlainOrJson(&fakeMessage{topic: "t", payload: []byte("21.5")}, nil)
	require.NoError(t, err)
	assert.Equal(t, 21.5, v)

	_, err = extractF64PlainOrJson(&fakeMessage{topic: "t", payload: []byte("warm")}, nil)
	assert.Error(t, err)
}

func TestExtractF64JSONPayload(t *testing.T) {
	entry := config.GetPTR("temperature")

	v, err := extractF64PlainOrJson(
		&fakeMessage{topic: "t", payload: []byte(`{"temperature": -3.25}`)}, entry,
	)
	require.NoError(t, err)
	assert.Equal(t, -3.25, v)

	_, err = extractF64PlainOrJson(
		&fakeMessage{topic: "t", payload: []byte(`{"humidity": 40}`)}, entry,
	)
	assert.Error(t, err)

	_, err = extractF64PlainOrJson(
		&fakeMessage{topic: "t", payload: []byte(`{"temperature": "cold"}`)}, entry,
	)
	assert.Error(t, err)

	_, err = extractF64PlainOrJson(
		&fakeMessage{topic: "t", payload: []byte(`not json`)}, entry,
	)
	assert.Error(t, err)
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, "never seen", formatAge(now, zeroTS))
	assert.Equal(t, "5m0s", formatAge(now, now.Add(-5*time.Minute)))
}
