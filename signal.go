// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package sigset normalizes time-series measurement files recorded at
// heterogeneous sample rates, in different formats and under different
// naming schemes into validated uniform-rate datasets.
package sigset

import (
	"fmt"
	"time"
)

// UnitsDateTime is the time unit of absolute sample instants, stored as
// Unix seconds (UTC).
const UnitsDateTime = "datetime"

// Trigger is the start time of a recording. Absolute, when set, anchors the
// time base to a wall-clock instant; Offset shifts it in time units.
type Trigger struct {
	Absolute time.Time
	Offset   float64
}

// Signal is one named sample sequence of a raw recording.
type Signal struct {
	Name        string    // Signal name as recorded
	Data        []float64 // Samples
	Dt          float64   // Sample interval in UnitsT, 0 when Time is set
	Time        []float64 // Explicit sample instants in UnitsT, used when Dt is 0
	UnitsT      string    // Time units
	Units       string    // Engineering units
	Description string    // Free text
	Trigger     *Trigger  // Start time, read from the first signal of an SArray only
}

// Instants returns the sample instants of the signal relative to its start.
func (s Signal) Instants() []float64 {
	if s.Dt <= 0 {
		return s.Time
	}
	t := make([]float64, len(s.Data))
	for i := range t {
		t[i] = float64(i) * s.Dt
	}
	return t
}

// SArray is the variable-rate raw container: an ordered sequence of signals
// with independent time grids.
type SArray []Signal

// Trigger returns the trigger of the array, taken from its first signal.
func (s SArray) Trigger() *Trigger {
	if len(s) == 0 {
		return nil
	}
	return s[0].Trigger
}

// Names returns the signal names in order.
func (s SArray) Names() []string {
	out := make([]string, len(s))
	for i, sig := range s {
		out[i] = sig.Name
	}
	return out
}

// Validate checks that every signal is named and carries a usable time base.
func (s SArray) Validate() error {
	for i, sig := range s {
		if sig.Name == "" {
			return fmt.Errorf("%w: signal %d has no name", ErrInvalid, i)
		}
		switch {
		case sig.Dt > 0:
		case sig.Dt == 0 && len(sig.Time) == len(sig.Data):
		default:
			return fmt.Errorf("%w: signal %q has neither a sample interval nor %d sample instants", ErrInvalid, sig.Name, len(sig.Data))
		}
	}
	return nil
}

// Filter returns the signals whose names are listed, in array order, and
// the listed names that were not found.
func (s SArray) Filter(names []string) (SArray, []string) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	found := map[string]bool{}
	var out SArray
	for _, sig := range s {
		if want[sig.Name] {
			out = append(out, sig)
			found[sig.Name] = true
		}
	}
	// The trigger belongs to the array, not to its first signal.
	if len(out) > 0 && out[0].Trigger == nil {
		out[0].Trigger = s.Trigger()
	}
	var missing []string
	for _, n := range names {
		if !found[n] {
			missing = append(missing, n)
		}
	}
	return out, missing
}
