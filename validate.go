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
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"
)

// Violation names the invariant a container breaks.
type Violation int

const (
	ViolationNone      Violation = iota
	ViolationShape               // Not the expected kind of structure
	ViolationColumns             // Names, units or descriptions disagree with the column count
	ViolationRows                // Column lengths or group row counts disagree
	ViolationTime                // The Time group is not a valid single-column group
	ViolationNoGroups            // A dataset has no non-Time group
	ViolationGroup               // A non-Time group is not a valid signal group
	ViolationLayers              // Name layer sets or orders differ
	ViolationClass               // Value classes differ
	ViolationElement             // An array element is invalid
	ViolationGroupSet            // Array elements carry different groups
	ViolationNames               // Array elements carry different names
	ViolationUnits               // Array elements carry different units
	ViolationTimeUnits           // Array elements carry incompatible time bases
)

// Result is the outcome of a structural check. Recognized is false when the
// value is not even the right kind of structure; Valid is false when it is,
// but breaks an invariant. Message describes the first violation found.
type Result struct {
	Recognized bool
	Valid      bool
	Violation  Violation
	Message    string
}

var valid = Result{Recognized: true, Valid: true}

func unrecognized(format string, args ...any) Result {
	return Result{Violation: ViolationShape, Message: fmt.Sprintf(format, args...)}
}

func invalid(v Violation, format string, args ...any) Result {
	return Result{Recognized: true, Violation: v, Message: fmt.Sprintf(format, args...)}
}

// Err returns nil for a valid result, otherwise an error wrapping
// ErrUnrecognized or ErrInvalid.
func (r Result) Err() error {
	switch {
	case !r.Recognized:
		return fmt.Errorf("%w: %s", ErrUnrecognized, r.Message)
	case !r.Valid:
		return fmt.Errorf("%w: %s", ErrInvalid, r.Message)
	default:
		return nil
	}
}

// Report logs a failed result and returns r.Valid. It is the diagnostic
// counterpart to inspecting the result programmatically.
func Report(log *zap.Logger, what string, r Result) bool {
	if log == nil {
		log = zap.NewNop()
	}
	switch {
	case !r.Recognized:
		log.Error("unrecognized structure", zap.String("value", what), zap.String("reason", r.Message))
	case !r.Valid:
		log.Warn("invalid structure", zap.String("value", what), zap.String("reason", r.Message))
	default:
		log.Info("valid structure", zap.String("value", what))
	}
	return r.Valid
}

// Validate dispatches on the kind of v.
func Validate(v Value) Result {
	switch v.Kind() {
	case KindSArray:
		s, _ := v.SArray()
		if err := s.Validate(); err != nil {
			return invalid(ViolationColumns, "%v", err)
		}
		return valid
	case KindDataset:
		d, _ := v.Dataset()
		return ValidateDataset(d)
	case KindSignalGroup:
		sg, _ := v.SignalGroup()
		return ValidateSignalGroup(sg)
	case KindDatasetArray:
		a, _ := v.DatasetArray()
		return ValidateDatasetArray(a)
	case KindSignalGroupArray:
		a, _ := v.SignalGroupArray()
		return ValidateSignalGroupArray(a)
	default:
		return unrecognized("value of kind %s", v.Kind())
	}
}

// ValidateSignalGroup checks a signal group: its layers are declared and
// named, and every layer, the units and the descriptions have one entry per
// column of Values, each Rows long.
func ValidateSignalGroup(sg SignalGroup) Result {
	if len(sg.Layers) == 0 {
		return unrecognized("signal group has no name layers")
	}
	seen := make(map[string]bool, len(sg.Layers))
	for _, l := range sg.Layers {
		if l == "" {
			return unrecognized("signal group has an empty layer name")
		}
		if seen[l] {
			return unrecognized("signal group declares layer %q twice", l)
		}
		seen[l] = true
		if _, ok := sg.Names[l]; !ok {
			return unrecognized("signal group has no names for layer %q", l)
		}
	}
	for l := range sg.Names {
		if !seen[l] {
			return unrecognized("signal group has names for undeclared layer %q", l)
		}
	}
	if sg.Values.Rows < 0 {
		return unrecognized("signal group has a negative row count")
	}
	if sg.Values.Class < Float64 || sg.Values.Class > DateTime {
		return unrecognized("signal group has unknown value class %d", sg.Values.Class)
	}

	cols := sg.Values.Cols()
	for _, l := range sg.Layers {
		if n := len(sg.Names[l]); n != cols {
			return invalid(ViolationColumns, "layer %q has %d names for %d columns", l, n, cols)
		}
	}
	if n := len(sg.Units); n != cols {
		return invalid(ViolationColumns, "%d units for %d columns", n, cols)
	}
	if n := len(sg.Descriptions); n != cols {
		return invalid(ViolationColumns, "%d descriptions for %d columns", n, cols)
	}
	for c, col := range sg.Values.Columns {
		if len(col) != sg.Values.Rows {
			return invalid(ViolationRows, "column %d has %d rows, expected %d", c, len(col), sg.Values.Rows)
		}
	}
	return valid
}

// ValidateDataset checks, in order and failing fast: the Time group is a
// valid single-column group; at least one non-Time group exists; every
// non-Time group is valid; all non-Time groups share one layer list; all
// share one value class; every group has Time's row count.
func ValidateDataset(d Dataset) Result {
	seen := make(map[string]bool, len(d.Groups))
	for _, g := range d.Groups {
		switch {
		case g.Name == "":
			return unrecognized("dataset has an unnamed group")
		case g.Name == TimeGroup:
			return unrecognized("dataset lists %q among its signal groups", TimeGroup)
		case seen[g.Name]:
			return unrecognized("dataset has two groups named %q", g.Name)
		}
		seen[g.Name] = true
	}

	// (a) Time
	if r := ValidateSignalGroup(d.Time); !r.Valid {
		return invalid(ViolationTime, "time group: %s", r.Message)
	}
	if n := d.Time.Len(); n != 1 {
		return invalid(ViolationTime, "time group has %d columns, expected 1", n)
	}

	// (b) at least one signal group
	if len(d.Groups) == 0 {
		return invalid(ViolationNoGroups, "dataset has no signal groups")
	}
	for _, g := range d.Groups {
		if r := ValidateSignalGroup(g.Signals); !r.Valid {
			return invalid(ViolationGroup, "group %q: %s", g.Name, r.Message)
		}
	}

	// (c) identical layer set and order
	first := d.Groups[0]
	for _, g := range d.Groups[1:] {
		if !slices.Equal(g.Signals.Layers, first.Signals.Layers) {
			return invalid(ViolationLayers, "group %q has layers %v, group %q has %v",
				g.Name, g.Signals.Layers, first.Name, first.Signals.Layers)
		}
	}

	// (d) identical value class
	for _, g := range d.Groups[1:] {
		if g.Signals.Values.Class != first.Signals.Values.Class {
			return invalid(ViolationClass, "group %q holds %s values, group %q holds %s",
				g.Name, g.Signals.Values.Class, first.Name, first.Signals.Values.Class)
		}
	}

	// (e) identical row count
	rows := d.Time.Values.Rows
	for _, g := range d.Groups {
		if g.Signals.Values.Rows != rows {
			return invalid(ViolationRows, "group %q has %d rows, time has %d", g.Name, g.Signals.Values.Rows, rows)
		}
	}
	return valid
}

// ValidateSignalGroupArray checks every element, then that all elements
// share layers, names and units with the first.
func ValidateSignalGroupArray(a SignalGroupArray) Result {
	if r := arrayShape(a.Rows, a.Cols, len(a.Items)); !r.Recognized {
		return r
	}
	for i, sg := range a.Items {
		r := ValidateSignalGroup(sg)
		if !r.Recognized {
			return unrecognized("element %d: %s", i+1, r.Message)
		}
		if !r.Valid {
			return invalid(ViolationElement, "element %d: %s", i+1, r.Message)
		}
	}
	for i := 1; i < len(a.Items); i++ {
		if r := sameSignals(a.Items[0], a.Items[i], fmt.Sprintf("element %d", i+1)); !r.Valid {
			return r
		}
	}
	return valid
}

// ValidateDatasetArray checks every element, then that all elements share
// groups, layers, names, units and a compatible time base with the first.
func ValidateDatasetArray(a DatasetArray) Result {
	if r := arrayShape(a.Rows, a.Cols, len(a.Items)); !r.Recognized {
		return r
	}
	for i, d := range a.Items {
		r := ValidateDataset(d)
		if !r.Recognized {
			return unrecognized("element %d: %s", i+1, r.Message)
		}
		if !r.Valid {
			return invalid(ViolationElement, "element %d: %s", i+1, r.Message)
		}
	}
	if len(a.Items) == 0 {
		return valid
	}

	ref := a.Items[0]
	for i := 1; i < len(a.Items); i++ {
		d := a.Items[i]
		where := fmt.Sprintf("element %d", i+1)
		if !slices.Equal(d.GroupNames(), ref.GroupNames()) {
			return invalid(ViolationGroupSet, "%s has groups %v, element 1 has %v", where, d.GroupNames(), ref.GroupNames())
		}
		if d.Time.Values.Class != ref.Time.Values.Class || d.Time.Units[0] != ref.Time.Units[0] {
			return invalid(ViolationTimeUnits, "%s time is %s in %q, element 1 time is %s in %q", where,
				d.Time.Values.Class, d.Time.Units[0], ref.Time.Values.Class, ref.Time.Units[0])
		}
		for gi, g := range d.Groups {
			if r := sameSignals(ref.Groups[gi].Signals, g.Signals, fmt.Sprintf("%s group %q", where, g.Name)); !r.Valid {
				return r
			}
		}
	}
	return valid
}

func arrayShape(rows, cols, n int) Result {
	if rows < 0 || cols < 0 || rows*cols != n {
		return unrecognized("array of %dx%d holds %d elements", rows, cols, n)
	}
	return valid
}

// sameSignals compares layers, names and units of got against ref and names
// the diverging columns.
func sameSignals(ref, got SignalGroup, where string) Result {
	if !slices.Equal(got.Layers, ref.Layers) {
		return invalid(ViolationLayers, "%s has layers %v, expected %v", where, got.Layers, ref.Layers)
	}
	if got.Len() != ref.Len() {
		return invalid(ViolationNames, "%s has %d signals, expected %d", where, got.Len(), ref.Len())
	}
	for _, l := range ref.Layers {
		if diff := diverging(ref.Names[l], got.Names[l]); diff != "" {
			return invalid(ViolationNames, "%s layer %q names differ: %s", where, l, diff)
		}
	}
	if diff := diverging(ref.Units, got.Units); diff != "" {
		return invalid(ViolationUnits, "%s units differ: %s", where, diff)
	}
	return valid
}

// diverging describes the positions where two equal-length lists differ.
func diverging(want, got []string) string {
	var parts []string
	for i := range want {
		if want[i] != got[i] {
			parts = append(parts, fmt.Sprintf("column %d %q (expected %q)", i+1, got[i], want[i]))
		}
	}
	return strings.Join(parts, ", ")
}
