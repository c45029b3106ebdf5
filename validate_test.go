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
	"errors"
	"testing"

	"github.com/OpenPSG/sigset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestValidateDataset(t *testing.T) {
	r := sigset.ValidateDataset(dataset(seconds(5)))
	assert.True(t, r.Recognized)
	assert.True(t, r.Valid)
	assert.Empty(t, r.Message)
	assert.NoError(t, r.Err())

	// A group with no columns is still valid.
	d := dataset(seconds(5))
	d.Groups = append(d.Groups, sigset.Group{Name: "Empty", Signals: sigset.NewSignalGroup([]string{"Tag", "Eng"}, 5)})
	assert.True(t, sigset.ValidateDataset(d).Valid)
}

func TestValidateDatasetFailsFast(t *testing.T) {
	// Every case breaks its own invariant and every later one.
	breakTime := func(d *sigset.Dataset) {
		d.Time.Append(map[string]string{"Tag": "T2", "Eng": "T2"}, make([]float64, d.Rows()), "s", "")
	}
	breakLayers := func(d *sigset.Dataset) {
		d.Groups[1].Signals.Layers = []string{"Eng", "Tag"}
	}
	breakClass := func(d *sigset.Dataset) {
		d.Groups[1].Signals.Values.Class = sigset.Float32
	}
	breakRows := func(d *sigset.Dataset) {
		g := &d.Groups[1].Signals
		g.Values.Rows = 2
		for c := range g.Values.Columns {
			g.Values.Columns[c] = g.Values.Columns[c][:2]
		}
	}

	tests := []struct {
		name   string
		breaks []func(*sigset.Dataset)
		want   sigset.Violation
	}{
		{"time", []func(*sigset.Dataset){breakTime, breakLayers, breakClass, breakRows}, sigset.ViolationTime},
		{"layers", []func(*sigset.Dataset){breakLayers, breakClass, breakRows}, sigset.ViolationLayers},
		{"class", []func(*sigset.Dataset){breakClass, breakRows}, sigset.ViolationClass},
		{"rows", []func(*sigset.Dataset){breakRows}, sigset.ViolationRows},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := dataset(seconds(4))
			for _, fn := range tt.breaks {
				fn(&d)
			}
			r := sigset.ValidateDataset(d)
			assert.True(t, r.Recognized)
			assert.False(t, r.Valid)
			assert.Equal(t, tt.want, r.Violation, r.Message)
			assert.True(t, errors.Is(r.Err(), sigset.ErrInvalid))
		})
	}

	t.Run("no groups", func(t *testing.T) {
		d := dataset(seconds(4))
		d.Groups = nil
		r := sigset.ValidateDataset(d)
		assert.Equal(t, sigset.ViolationNoGroups, r.Violation)
	})

	t.Run("invalid group before layers", func(t *testing.T) {
		d := dataset(seconds(4))
		d.Groups[0].Signals.Units = d.Groups[0].Signals.Units[:1]
		breakLayers(&d)
		r := sigset.ValidateDataset(d)
		assert.Equal(t, sigset.ViolationGroup, r.Violation)
		assert.Contains(t, r.Message, `"Sensors"`)
	})
}

func TestValidateUnrecognized(t *testing.T) {
	r := sigset.Validate(sigset.Value{})
	assert.False(t, r.Recognized)
	assert.True(t, errors.Is(r.Err(), sigset.ErrUnrecognized))

	r = sigset.ValidateSignalGroup(sigset.SignalGroup{})
	assert.False(t, r.Recognized)

	d := dataset(seconds(3))
	d.Groups[1].Name = sigset.TimeGroup
	assert.False(t, sigset.ValidateDataset(d).Recognized)
}

func TestValidateSignalGroup(t *testing.T) {
	sg := sigset.NewSignalGroup([]string{"Tag"}, 3)
	sg.Append(map[string]string{"Tag": "A"}, []float64{1, 2, 3}, "", "")
	assert.True(t, sigset.ValidateSignalGroup(sg).Valid)

	short := sg.Clone()
	short.Values.Columns[0] = short.Values.Columns[0][:2]
	r := sigset.ValidateSignalGroup(short)
	assert.True(t, r.Recognized)
	assert.Equal(t, sigset.ViolationRows, r.Violation)

	names := sg.Clone()
	names.Names["Tag"] = append(names.Names["Tag"], "B")
	assert.Equal(t, sigset.ViolationColumns, sigset.ValidateSignalGroup(names).Violation)
}

// tagged returns a dataset whose one group names its signals in layer Tag.
func tagged(tags ...string) sigset.Dataset {
	layers := []string{"Tag"}
	sg := sigset.NewSignalGroup(layers, 2)
	for _, tag := range tags {
		sg.Append(map[string]string{"Tag": tag}, []float64{1, 2}, "V", "")
	}
	return sigset.Dataset{
		Time:   sigset.NewTimeGroup(layers, []float64{0, 1}, sigset.Float64, "s"),
		Groups: []sigset.Group{{Name: "Sensors", Signals: sg}},
	}
}

func TestValidateDatasetArray(t *testing.T) {
	ok := sigset.NewDatasetArray(tagged("A", "B", "C"), tagged("A", "B", "C"))
	assert.True(t, sigset.ValidateDatasetArray(ok).Valid)

	a := sigset.NewDatasetArray(tagged("A", "B", "C"), tagged("A", "B", "C"), tagged("A", "B", "D"))
	r := sigset.ValidateDatasetArray(a)
	assert.True(t, r.Recognized)
	assert.False(t, r.Valid)
	assert.Equal(t, sigset.ViolationNames, r.Violation)
	assert.Contains(t, r.Message, "element 3")
	assert.Contains(t, r.Message, `layer "Tag"`)
	assert.Contains(t, r.Message, `column 3 "D"`)

	t.Run("invalid element first", func(t *testing.T) {
		bad := tagged("A", "B", "D")
		bad.Groups = nil
		r := sigset.ValidateDatasetArray(sigset.NewDatasetArray(tagged("A", "B", "C"), bad))
		assert.Equal(t, sigset.ViolationElement, r.Violation)
		assert.Contains(t, r.Message, "element 2")
	})

	t.Run("time units", func(t *testing.T) {
		other := tagged("A", "B", "C")
		other.Time.Units[0] = "ms"
		r := sigset.ValidateDatasetArray(sigset.NewDatasetArray(tagged("A", "B", "C"), other))
		assert.Equal(t, sigset.ViolationTimeUnits, r.Violation)
	})

	t.Run("shape", func(t *testing.T) {
		r := sigset.ValidateDatasetArray(sigset.DatasetArray{Rows: 2, Cols: 2, Items: []sigset.Dataset{tagged("A")}})
		assert.False(t, r.Recognized)
	})
}

func TestValidateSignalGroupArray(t *testing.T) {
	a := tagged("A", "B").Groups[0].Signals
	b := a.Clone()
	b.Units[1] = "mV"
	r := sigset.Validate(sigset.SignalGroupArrayValue(sigset.NewSignalGroupArray(a, b)))
	require.False(t, r.Valid)
	assert.Equal(t, sigset.ViolationUnits, r.Violation)
	assert.Contains(t, r.Message, `column 2 "mV" (expected "V")`)
}

func TestReport(t *testing.T) {
	broken := dataset(seconds(3))
	broken.Groups[1].Signals.Layers = []string{"Eng", "Tag"}

	tests := []struct {
		name  string
		r     sigset.Result
		valid bool
		level zapcore.Level
		msg   string
	}{
		{"unrecognized", sigset.Validate(sigset.Value{}), false, zapcore.ErrorLevel, "unrecognized structure"},
		{"invalid", sigset.ValidateDataset(broken), false, zapcore.WarnLevel, "invalid structure"},
		{"valid", sigset.ValidateDataset(dataset(seconds(3))), true, zapcore.InfoLevel, "valid structure"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, logs := observed()
			assert.Equal(t, tt.valid, sigset.Report(log, "case.sds", tt.r))

			entries := logs.All()
			require.Len(t, entries, 1)
			assert.Equal(t, tt.level, entries[0].Level)
			assert.Equal(t, tt.msg, entries[0].Message)
			fields := entries[0].ContextMap()
			assert.Equal(t, "case.sds", fields["value"])
			if !tt.valid {
				assert.Equal(t, tt.r.Message, fields["reason"])
			}
		})
	}

	assert.True(t, sigset.Report(nil, "quiet", sigset.ValidateDataset(dataset(seconds(2)))))
}
