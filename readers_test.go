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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OpenPSG/sigset"
	"github.com/OpenPSG/sigset/edf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var start = time.Date(2024, 3, 1, 22, 30, 0, 0, time.UTC)

const sensorsCSV = `Time,WS1,WD1
2024-03-01 22:30:00,10,190
2024-03-01 22:30:01,,200
2024-03-01 22:30:02,30,210
`

func TestReadCSV(t *testing.T) {
	path := writeFile(t, t.TempDir(), "run1.csv", sensorsCSV)

	s, err := sigset.ReadXlsFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	require.Len(t, s, 2)

	assert.Equal(t, []string{"WS1", "WD1"}, s.Names())
	assert.Equal(t, sigset.UnitsDateTime, s[0].UnitsT)
	assert.Zero(t, s[0].Dt)
	assert.Equal(t, []float64{sigset.ToUnixSeconds(start), sigset.ToUnixSeconds(start) + 1, sigset.ToUnixSeconds(start) + 2}, s[0].Time)
	assert.Equal(t, 10.0, s[0].Data[0])
	assert.True(t, math.IsNaN(s[0].Data[1]))
	assert.Equal(t, []float64{190, 200, 210}, s[1].Data)

	format, err := sigset.DetectFormat(path)
	require.NoError(t, err)
	assert.Equal(t, sigset.FormatCSV, format)
}

func TestReadCSVErrors(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		content string
	}{
		{"header identifier", "Time,1WS\n2024-03-01,1\n"},
		{"first column", "Stamp,WS1\n2024-03-01,1\n"},
		{"time value", "Time,WS1\nyesterday,1\n"},
		{"number", "Time,WS1\n2024-03-01,fast\n"},
		{"ragged", "Time,WS1,WD1\n2024-03-01,1\n"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.name+".csv", tt.content)
			_, err := sigset.ReadXlsFile(path)
			assert.ErrorIs(t, err, sigset.ErrMalformedFile)
		})
	}

	_, err := sigset.ReadXlsFile(filepath.Join(dir, "missing.csv"))
	assert.ErrorIs(t, err, sigset.ErrFileNotFound)
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Time", "WS1", "WD1"}))
	for r := 0; r < 3; r++ {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		require.NoError(t, err)
		row := []any{start.Add(time.Duration(r) * time.Minute), 10 * float64(r+1), nil}
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func TestReadXlsx(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run1.xlsx")
	writeWorkbook(t, path)

	format, err := sigset.DetectFormat(path)
	require.NoError(t, err)
	assert.Equal(t, sigset.FormatXlsx, format)

	s, err := sigset.ReadXlsFile(path)
	require.NoError(t, err)
	require.Len(t, s, 2)
	assert.Equal(t, []float64{10, 20, 30}, s[0].Data)
	for _, v := range s[1].Data {
		assert.True(t, math.IsNaN(v))
	}
	require.Len(t, s[0].Time, 3)
	assert.InDelta(t, sigset.ToUnixSeconds(start), s[0].Time[0], 1e-3)
	assert.InDelta(t, sigset.ToUnixSeconds(start)+120, s[0].Time[2], 1e-3)
}

func writeEDF(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	ew, err := edf.Create(f, edf.Header{
		Version:            edf.Version0,
		PatientID:          "X",
		RecordingID:        "Night 1",
		StartTime:          start,
		DataRecordDuration: time.Second,
		Signals: []edf.Signal{
			{Label: "Flow", TransducerType: "Pneumotach", Prefiltering: "HP:0.1Hz", PhysicalDimension: "L/s", PhysicalMin: -100, PhysicalMax: 100, DigitalMin: -32768, DigitalMax: 32767, SamplesPerRecord: 4},
			{Label: "SpO2", TransducerType: "Oximeter", PhysicalDimension: "%", PhysicalMin: 0, PhysicalMax: 100, DigitalMin: 0, DigitalMax: 1000, SamplesPerRecord: 1},
			{Label: edf.AnnotationsLabel, PhysicalMin: -1, PhysicalMax: 1, DigitalMin: -32768, DigitalMax: 32767, SamplesPerRecord: 1},
		},
	})
	require.NoError(t, err)
	for r := 0; r < 2; r++ {
		flow := []float64{float64(4 * r), float64(4*r + 1), float64(4*r + 2), float64(4*r + 3)}
		require.NoError(t, ew.WriteRecord([][]float64{flow, {95 + float64(r)}, {0}}))
	}
	require.NoError(t, ew.Close())
}

func TestReadEDFFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "night1.edf")
	writeEDF(t, path)

	format, err := sigset.DetectFormat(path)
	require.NoError(t, err)
	assert.Equal(t, sigset.FormatEDF, format)

	s, err := sigset.ReadEDFFile(path)
	require.NoError(t, err)
	require.Len(t, s, 2)

	assert.Equal(t, "Flow", s[0].Name)
	assert.Equal(t, 0.25, s[0].Dt)
	assert.Equal(t, "s", s[0].UnitsT)
	assert.Equal(t, "L/s", s[0].Units)
	assert.Equal(t, "Pneumotach (HP:0.1Hz)", s[0].Description)
	require.Len(t, s[0].Data, 8)
	assert.InDelta(t, 7.0, s[0].Data[7], 0.01)
	require.NotNil(t, s[0].Trigger)
	assert.True(t, start.Equal(s[0].Trigger.Absolute))

	assert.Equal(t, 1.0, s[1].Dt)
	assert.Equal(t, "Oximeter", s[1].Description)
	assert.InDelta(t, 96.0, s[1].Data[1], 0.1)
}

func TestReadEDFFileExactInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thirds.edf")
	f, err := os.Create(path)
	require.NoError(t, err)
	ew, err := edf.Create(f, edf.Header{
		Version:            edf.Version0,
		StartTime:          start,
		DataRecordDuration: time.Second,
		Signals: []edf.Signal{
			{Label: "Pleth", PhysicalMin: 0, PhysicalMax: 10, DigitalMin: -32768, DigitalMax: 32767, SamplesPerRecord: 3},
		},
	})
	require.NoError(t, err)
	for r := 0; r < 1000; r++ {
		require.NoError(t, ew.WriteRecord([][]float64{{1, 2, 3}}))
	}
	require.NoError(t, ew.Close())
	require.NoError(t, f.Close())

	s, err := sigset.ReadEDFFile(path)
	require.NoError(t, err)
	require.Len(t, s, 1)
	assert.Equal(t, 1.0/3, s[0].Dt)

	// The last of 3000 samples lands a third of a second before the end.
	instants := s[0].Instants()
	require.Len(t, instants, 3000)
	assert.InDelta(t, 1000-1.0/3, instants[2999], 1e-9)
}
