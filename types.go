// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sigset

import (
	"math"
	"slices"
	"time"
)

// TimeGroup is the name of the mandatory time group of a Dataset.
const TimeGroup = "Time"

// Class is the numeric class of a Matrix.
type Class int

const (
	Float64  Class = iota // Double precision values
	Float32               // Values recorded in single precision
	DateTime              // Absolute instants as Unix seconds (UTC)
)

func (c Class) String() string {
	switch c {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case DateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// Matrix is a column-major value matrix. A matrix with no columns still has
// a row count.
type Matrix struct {
	Class   Class
	Rows    int
	Columns [][]float64
}

// NewMatrix returns a rows x cols matrix filled with NaN.
func NewMatrix(class Class, rows, cols int) Matrix {
	m := Matrix{Class: class, Rows: rows, Columns: make([][]float64, cols)}
	for i := range m.Columns {
		m.Columns[i] = nanColumn(rows)
	}
	return m
}

// Cols returns the number of columns.
func (m Matrix) Cols() int {
	return len(m.Columns)
}

// At returns the value at row r, column c.
func (m Matrix) At(r, c int) float64 {
	return m.Columns[c][r]
}

// Times converts column c of a DateTime matrix to time values.
func (m Matrix) Times(c int) []time.Time {
	out := make([]time.Time, m.Rows)
	for i, v := range m.Columns[c] {
		out[i] = FromUnixSeconds(v)
	}
	return out
}

// Clone returns a deep copy.
func (m Matrix) Clone() Matrix {
	out := Matrix{Class: m.Class, Rows: m.Rows, Columns: make([][]float64, len(m.Columns))}
	for i, col := range m.Columns {
		out.Columns[i] = slices.Clone(col)
	}
	return out
}

// SignalGroup is a uniform-rate container of signal columns sharing one
// sample count. Names holds one name per column for every layer in Layers.
type SignalGroup struct {
	Layers       []string
	Names        map[string][]string
	Values       Matrix
	Units        []string
	Descriptions []string
}

// NewSignalGroup returns an empty group with the given layers and row count.
func NewSignalGroup(layers []string, rows int) SignalGroup {
	sg := SignalGroup{
		Layers:       slices.Clone(layers),
		Names:        make(map[string][]string, len(layers)),
		Values:       Matrix{Rows: rows, Columns: [][]float64{}},
		Units:        []string{},
		Descriptions: []string{},
	}
	for _, l := range layers {
		sg.Names[l] = []string{}
	}
	return sg
}

// Len returns the number of signal columns.
func (sg SignalGroup) Len() int {
	return sg.Values.Cols()
}

// Name returns the name of column c in layer.
func (sg SignalGroup) Name(layer string, c int) string {
	return sg.Names[layer][c]
}

// Append adds a column. names maps layer to the column's name; layers that
// are missing get an empty name.
func (sg *SignalGroup) Append(names map[string]string, values []float64, units, description string) {
	for _, l := range sg.Layers {
		sg.Names[l] = append(sg.Names[l], names[l])
	}
	sg.Values.Columns = append(sg.Values.Columns, values)
	sg.Units = append(sg.Units, units)
	sg.Descriptions = append(sg.Descriptions, description)
}

// Column returns the names of column c keyed by layer.
func (sg SignalGroup) Column(c int) map[string]string {
	out := make(map[string]string, len(sg.Layers))
	for _, l := range sg.Layers {
		out[l] = sg.Names[l][c]
	}
	return out
}

// Clone returns a deep copy.
func (sg SignalGroup) Clone() SignalGroup {
	out := SignalGroup{
		Layers:       slices.Clone(sg.Layers),
		Names:        make(map[string][]string, len(sg.Names)),
		Values:       sg.Values.Clone(),
		Units:        slices.Clone(sg.Units),
		Descriptions: slices.Clone(sg.Descriptions),
	}
	for l, names := range sg.Names {
		out.Names[l] = slices.Clone(names)
	}
	return out
}

// Rename substitutes names in place: every occurrence of from in any layer
// becomes to. It returns the number of substitutions.
func (sg *SignalGroup) Rename(from, to string) int {
	n := 0
	for _, l := range sg.Layers {
		for i, name := range sg.Names[l] {
			if name == from {
				sg.Names[l][i] = to
				n++
			}
		}
	}
	return n
}

// Keep retains, in place, the columns whose mask entry is true.
func (sg *SignalGroup) Keep(mask []bool) {
	keep := func(n int) bool { return n < len(mask) && mask[n] }
	for _, l := range sg.Layers {
		sg.Names[l] = filter(sg.Names[l], keep)
	}
	sg.Values.Columns = filter(sg.Values.Columns, keep)
	sg.Units = filter(sg.Units, keep)
	sg.Descriptions = filter(sg.Descriptions, keep)
}

func filter[T any](in []T, keep func(int) bool) []T {
	out := in[:0]
	for i, v := range in {
		if keep(i) {
			out = append(out, v)
		}
	}
	return out
}

// Group is a named non-Time signal group of a Dataset.
type Group struct {
	Name    string
	Signals SignalGroup
}

// Dataset is the uniform-rate structured container: a mandatory Time group
// plus named signal groups in declaration order.
type Dataset struct {
	CaseName   string   // Free label
	PathNames  []string // Files the dataset was built from
	Source     string   // Source string of the primary name layer
	SourceType string   // Key into the name table's override rules, may be empty
	Time       SignalGroup
	Groups     []Group
}

// Group returns the named group.
func (d *Dataset) Group(name string) (*SignalGroup, bool) {
	for i := range d.Groups {
		if d.Groups[i].Name == name {
			return &d.Groups[i].Signals, true
		}
	}
	return nil, false
}

// GroupNames returns the non-Time group names in order.
func (d Dataset) GroupNames() []string {
	out := make([]string, len(d.Groups))
	for i, g := range d.Groups {
		out[i] = g.Name
	}
	return out
}

// Rows returns the shared sample count.
func (d Dataset) Rows() int {
	return d.Time.Values.Rows
}

// TimeVector returns the time base.
func (d Dataset) TimeVector() []float64 {
	if d.Time.Len() == 0 {
		return nil
	}
	return d.Time.Values.Columns[0]
}

// Clone returns a deep copy.
func (d Dataset) Clone() Dataset {
	out := d
	out.PathNames = slices.Clone(d.PathNames)
	out.Time = d.Time.Clone()
	out.Groups = make([]Group, len(d.Groups))
	for i, g := range d.Groups {
		out.Groups[i] = Group{Name: g.Name, Signals: g.Signals.Clone()}
	}
	return out
}

// NewTimeGroup builds a single-column Time group over the given layers.
func NewTimeGroup(layers []string, t []float64, class Class, units string) SignalGroup {
	sg := NewSignalGroup(layers, len(t))
	sg.Values.Class = class
	names := make(map[string]string, len(layers))
	for _, l := range layers {
		names[l] = TimeGroup
	}
	sg.Append(names, t, units, TimeGroup)
	return sg
}

// SignalGroupArray is a rows x cols array of signal groups stored in
// column-major order.
type SignalGroupArray struct {
	Rows, Cols int
	Items      []SignalGroup
}

// DatasetArray is a rows x cols array of datasets stored in column-major order.
type DatasetArray struct {
	Rows, Cols int
	Items      []Dataset
}

// NewSignalGroupArray returns a 1 x n array.
func NewSignalGroupArray(items ...SignalGroup) SignalGroupArray {
	return SignalGroupArray{Rows: 1, Cols: len(items), Items: items}
}

// NewDatasetArray returns a 1 x n array.
func NewDatasetArray(items ...Dataset) DatasetArray {
	return DatasetArray{Rows: 1, Cols: len(items), Items: items}
}

// At returns element (r, c).
func (a DatasetArray) At(r, c int) Dataset {
	return a.Items[c*a.Rows+r]
}

// At returns element (r, c).
func (a SignalGroupArray) At(r, c int) SignalGroup {
	return a.Items[c*a.Rows+r]
}

// ToUnixSeconds converts t to the DateTime representation.
func ToUnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FromUnixSeconds converts a DateTime value to a time.
func FromUnixSeconds(v float64) time.Time {
	sec, frac := math.Modf(v)
	return time.Unix(int64(sec), int64(math.Round(frac*1e9))).UTC()
}

func nanColumn(n int) []float64 {
	col := make([]float64, n)
	for i := range col {
		col[i] = math.NaN()
	}
	return col
}
