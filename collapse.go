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

	"github.com/OpenPSG/sigset/names"
	"go.uber.org/zap"
)

const (
	// RawLayer is the layer that keeps every S-array name as recorded.
	RawLayer = "Raw"
	// UnmatchedGroup collects signals that no name table group lists.
	UnmatchedGroup = "Unmatched"
)

// secondsPer converts time units to seconds, for anchoring relative time
// bases to an absolute trigger.
var secondsPer = map[string]float64{
	"s": 1, "sec": 1, "seconds": 1,
	"ms": 1e-3,
	"min": 60,
	"h": 3600, "hr": 3600,
}

// Collapser turns S-arrays into datasets.
type Collapser struct {
	Names *names.Table // May be nil, then every signal is unmatched
	Grid  GridUnifier  // LinearGrid when nil
	Log   *zap.Logger
}

// Collapse resolves a common time base for s, applies the unit and
// description overrides of sourcetype (none when empty) and groups the
// signals by the name table. Names the table does not list are logged
// unless nowarn is set, and are kept in the Unmatched group under RawLayer.
func (c *Collapser) Collapse(s SArray, sourcetype string, nowarn bool) (Dataset, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	if err := s.Validate(); err != nil {
		return Dataset{}, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if sourcetype != "" && (c.Names == nil || !c.Names.HasSourceType(sourcetype)) {
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnsupportedSourceType, sourcetype)
	}

	signals := c.convert(s, sourcetype)

	grid := c.Grid
	if grid == nil {
		grid = LinearGrid{}
	}
	t, columns, err := grid.Unify(signals)
	if err != nil {
		return Dataset{}, fmt.Errorf("error unifying time base: %w", err)
	}
	if len(columns) != len(signals) {
		return Dataset{}, fmt.Errorf("%w: time base unifier returned %d columns for %d signals", ErrInvalidArgument, len(columns), len(signals))
	}

	layers := []string{RawLayer}
	var matchLayers []string
	if c.Names != nil {
		for _, l := range c.Names.Layers() {
			if l != RawLayer {
				layers = append(layers, l)
			}
		}
		if sourcetype != "" {
			matchLayers = c.Names.LayersForSourceType(sourcetype)
		}
	}

	d := Dataset{SourceType: sourcetype}
	d.Time = c.timeGroup(log, s, layers, t)
	if sourcetype != "" && len(matchLayers) > 0 {
		d.Source, _ = c.Names.SourceFor(matchLayers[0])
	}

	claimed := make([]bool, len(signals))
	if c.Names != nil {
		for _, group := range c.Names.Groups() {
			sg, ok := c.group(group, signals, columns, layers, matchLayers, len(t), claimed)
			if ok {
				d.Groups = append(d.Groups, Group{Name: group, Signals: sg})
			}
		}
	}

	unmatched := NewSignalGroup(layers, len(t))
	var missing []string
	for i, sig := range signals {
		if claimed[i] {
			continue
		}
		unmatched.Append(map[string]string{RawLayer: sig.Name}, columns[i], sig.Units, sig.Description)
		missing = append(missing, sig.Name)
	}
	if len(missing) > 0 || len(d.Groups) == 0 {
		d.Groups = append(d.Groups, Group{Name: UnmatchedGroup, Signals: unmatched})
	}
	switch {
	case len(missing) == 0 || nowarn:
	case c.Names == nil:
		log.Info("no name table configured, signals kept unmatched",
			zap.Int("count", len(missing)))
	default:
		log.Warn("signal names not found in name table",
			zap.String("sourcetype", sourcetype),
			zap.Int("count", len(missing)),
			zap.Strings("names", missing))
	}

	if err := ValidateDataset(d).Err(); err != nil {
		return Dataset{}, fmt.Errorf("error collapsing signals: %w", err)
	}
	return d, nil
}

// convert applies the override rules of sourcetype to copies of the signals.
func (c *Collapser) convert(s SArray, sourcetype string) SArray {
	out := slices.Clone(s)
	if sourcetype == "" {
		return out
	}
	for i, sig := range out {
		o, ok := c.Names.Override(sourcetype, sig.Name)
		if !ok {
			continue
		}
		data := make([]float64, len(sig.Data))
		for k, v := range sig.Data {
			data[k] = o.Apply(v)
		}
		out[i].Data = data
		if o.Units != "" {
			out[i].Units = o.Units
		}
		if o.Description != "" {
			out[i].Description = o.Description
		}
	}
	return out
}

// timeGroup builds the Time group, anchoring it to the array's trigger.
func (c *Collapser) timeGroup(log *zap.Logger, s SArray, layers []string, grid []float64) SignalGroup {
	unitsT := ""
	if len(s) > 0 {
		unitsT = s[0].UnitsT
	}
	for _, sig := range s[min(1, len(s)):] {
		if sig.UnitsT != unitsT {
			log.Warn("inconsistent time units", zap.String("signal", sig.Name),
				zap.String("units", sig.UnitsT), zap.String("expected", unitsT))
			break
		}
	}

	t := slices.Clone(grid)
	if unitsT == UnitsDateTime {
		return NewTimeGroup(layers, t, DateTime, UnitsDateTime)
	}
	trig := s.Trigger()
	if trig == nil {
		return NewTimeGroup(layers, t, Float64, unitsT)
	}
	if scale, ok := secondsPer[unitsT]; ok && !trig.Absolute.IsZero() {
		base := ToUnixSeconds(trig.Absolute)
		for i := range t {
			t[i] = base + (t[i]+trig.Offset)*scale
		}
		return NewTimeGroup(layers, t, DateTime, UnitsDateTime)
	}
	for i := range t {
		t[i] += trig.Offset
	}
	return NewTimeGroup(layers, t, Float64, unitsT)
}

// group collects, in name table column order, the signals listed by group.
func (c *Collapser) group(group string, signals SArray, columns [][]float64, layers, matchLayers []string, rows int, claimed []bool) (SignalGroup, bool) {
	width := c.Names.Width(group)
	bySlot := make([]int, width)
	for i := range bySlot {
		bySlot[i] = -1
	}
	for i, sig := range signals {
		if col := c.Names.Match(group, sig.Name, matchLayers...); col >= 0 && bySlot[col] < 0 {
			bySlot[col] = i
		}
	}

	lists := make(map[string][]string, len(layers))
	for _, l := range layers[1:] {
		lists[l], _ = c.Names.NamesFor(group, l)
	}

	sg := NewSignalGroup(layers, rows)
	for col, i := range bySlot {
		if i < 0 {
			continue
		}
		claimed[i] = true
		colNames := map[string]string{RawLayer: signals[i].Name}
		for _, l := range layers[1:] {
			colNames[l] = lists[l][col]
		}
		sg.Append(colNames, slices.Clone(columns[i]), signals[i].Units, signals[i].Description)
	}
	return sg, sg.Len() > 0
}
