// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sigset_test

import (
	"testing"

	"github.com/OpenPSG/sigset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResampleIdentity(t *testing.T) {
	d := dataset(seconds(6))
	out, err := sigset.Resample(d, sigset.ResampleOptions{})
	require.NoError(t, err)
	assert.Equal(t, d, out)

	// The result is a copy.
	out.Groups[0].Signals.Values.Columns[0][0] = 99
	assert.Equal(t, 0.0, d.Groups[0].Signals.Values.Columns[0][0])
}

func TestResampleTrim(t *testing.T) {
	d := dataset(seconds(6))
	out, err := sigset.Resample(d, sigset.ResampleOptions{Trange: &sigset.Range{Start: 1, End: 3}})
	require.NoError(t, err)
	require.True(t, sigset.ValidateDataset(out).Valid)

	assert.Equal(t, []float64{1, 2, 3}, out.TimeVector())
	sensors, _ := out.Group("Sensors")
	assert.Equal(t, []float64{10, 20, 30}, sensors.Values.Columns[1])
	assert.Equal(t, 3, sensors.Values.Rows)
}

func TestResampleRegrid(t *testing.T) {
	d := dataset(seconds(3))
	out, err := sigset.Resample(d, sigset.ResampleOptions{TS: 0.5})
	require.NoError(t, err)
	require.True(t, sigset.ValidateDataset(out).Valid)

	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 1.5, 2}, out.TimeVector(), 1e-12)
	loads, _ := out.Group("Loads")
	assert.InDeltaSlice(t, []float64{0, -0.5, -1, -1.5, -2}, loads.Values.Columns[0], 1e-12)
}

func TestResampleRejectsBadOptions(t *testing.T) {
	d := dataset(seconds(3))
	_, err := sigset.Resample(d, sigset.ResampleOptions{TS: -1})
	assert.ErrorIs(t, err, sigset.ErrInvalidArgument)

	_, err = sigset.Resample(d, sigset.ResampleOptions{Trange: &sigset.Range{Start: 2, End: 1}})
	assert.ErrorIs(t, err, sigset.ErrInvalidArgument)
}
