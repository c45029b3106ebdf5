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
	"math"
	"testing"

	"github.com/OpenPSG/sigset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSignalFromDatasetArray(t *testing.T) {
	short, long := dataset(seconds(2)), dataset(seconds(4))
	long.Source = ""
	a := sigset.DatasetArray{Rows: 2, Cols: 1, Items: []sigset.Dataset{short, long}}

	sg, ids, err := sigset.GroupSignalFromArray(nil, "WindDir", sigset.DatasetArrayValue(a))
	require.NoError(t, err)
	require.True(t, sigset.ValidateSignalGroup(sg).Valid)

	assert.Equal(t, []string{"tag", "2"}, ids)
	assert.Equal(t, 2, sg.Len())
	assert.Equal(t, 4, sg.Values.Rows)
	assert.Equal(t, []string{"WD1", "WD1"}, sg.Names["Tag"])
	assert.Equal(t, []float64{0, 10}, sg.Values.Columns[0][:2])
	assert.True(t, math.IsNaN(sg.Values.Columns[0][3]))
	assert.Equal(t, []float64{0, 10, 20, 30}, sg.Values.Columns[1])
}

func TestGroupSignalFromSignalGroupArray(t *testing.T) {
	items := make([]sigset.SignalGroup, 3)
	for i := range items {
		items[i] = tagged("A", "B").Groups[0].Signals
	}
	a := sigset.NewSignalGroupArray(items...)

	log, logs := observed()
	sg, ids, err := sigset.GroupSignalFromArray(log, "B", sigset.SignalGroupArrayValue(a))
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids)
	assert.Equal(t, 3, sg.Len())
	assert.Equal(t, []string{"V", "V", "V"}, sg.Units)
	assert.Empty(t, warnings(logs, "signal not found in array elements"))

	_, _, err = sigset.GroupSignalFromArray(log, "Z", sigset.SignalGroupArrayValue(a))
	require.NoError(t, err)
	entries := warnings(logs, "signal not found in array elements")
	require.Len(t, entries, 1)
	assert.EqualValues(t, 3, entries[0].ContextMap()["count"])
}

func TestGroupSignalFromArrayErrors(t *testing.T) {
	_, _, err := sigset.GroupSignalFromArray(nil, "A", sigset.DatasetValue(dataset(seconds(2))))
	assert.ErrorIs(t, err, sigset.ErrInvalidArgument)

	for _, v := range []sigset.Value{
		sigset.DatasetArrayValue(sigset.DatasetArray{}),
		sigset.SignalGroupArrayValue(sigset.SignalGroupArray{}),
	} {
		_, _, err = sigset.GroupSignalFromArray(nil, "A", v)
		assert.ErrorIs(t, err, sigset.ErrInvalidArgument, v.Kind().String())
	}

	a := sigset.NewDatasetArray(tagged("A", "B"), tagged("A", "C"))
	_, _, err = sigset.GroupSignalFromArray(nil, "A", sigset.DatasetArrayValue(a))
	assert.ErrorIs(t, err, sigset.ErrInvalid)
}
