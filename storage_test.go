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
	"bytes"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/sigset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSarrayFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run1"+sigset.SarrayExt)
	s := sigset.SArray{
		{Name: "Flow", Data: []float64{1, math.NaN(), 3}, Dt: 0.5, UnitsT: "s", Units: "L/s",
			Trigger: &sigset.Trigger{Absolute: time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC), Offset: 1.5}},
		{Name: "Event", Data: []float64{7}, Time: []float64{12.25}, UnitsT: "s", Description: "marker"},
	}
	require.NoError(t, sigset.WriteSarrayFile(path, s))

	got, err := sigset.ReadSarrayFile(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Flow", got[0].Name)
	assert.True(t, math.IsNaN(got[0].Data[1]))
	assert.Equal(t, 0.5, got[0].Dt)
	require.NotNil(t, got[0].Trigger)
	assert.True(t, s[0].Trigger.Absolute.Equal(got[0].Trigger.Absolute))
	assert.Equal(t, 1.5, got[0].Trigger.Offset)
	assert.Equal(t, s[1], got[1])

	format, err := sigset.DetectFormat(path)
	require.NoError(t, err)
	assert.Equal(t, sigset.FormatSarray, format)
}

func TestDatasetFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "case"+sigset.DatasetExt)
	d := dataset(seconds(4))
	d.SourceType = "scada"
	d.PathNames = []string{"a.csv", "b.csv"}
	d.Groups = append(d.Groups, sigset.Group{Name: "Empty", Signals: sigset.NewSignalGroup([]string{"Tag", "Eng"}, 4)})
	require.NoError(t, sigset.WriteDatasetFile(path, d))

	got, err := sigset.ReadDatasetFile(path)
	require.NoError(t, err)
	assert.Equal(t, d, got)
	assert.True(t, sigset.ValidateDataset(got).Valid)
}

func TestReadBlobErrors(t *testing.T) {
	_, err := sigset.ReadSarrayFile(filepath.Join(t.TempDir(), "missing.sar"))
	assert.ErrorIs(t, err, sigset.ErrFileNotFound)

	var buf bytes.Buffer
	require.NoError(t, sigset.WriteDataset(&buf, dataset(seconds(2))))
	_, err = sigset.ReadSarray(bytes.NewReader(buf.Bytes()))
	assert.ErrorIs(t, err, sigset.ErrUnrecognizedFormat)

	truncated := buf.Bytes()[:len(sigset.DatasetMagic)+4]
	_, err = sigset.ReadDataset(bytes.NewReader(truncated))
	assert.ErrorIs(t, err, sigset.ErrMalformedFile)
}
