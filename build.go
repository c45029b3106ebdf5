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
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BuildRequest describes one multi-file dataset build.
type BuildRequest struct {
	CaseName  string
	PathNames []string // Files, concatenated along the time axis in order
	Groups    []string // Signal groups to include; Time is always first
	Layers    []string // Name layers to populate
	Source    string   // Primary layer, or its source string; defaults to Layers[0]
	TS        float64
	Trange    *Range
	NoWarn    bool
}

// Builder assembles datasets from many files against a name table.
type Builder struct {
	Names *names.Table
	Grid  GridUnifier
	Log   *zap.Logger
}

// column accumulates one output signal across files.
type column struct {
	names       map[string]string
	data        []float64
	units       string
	description string
	carried     bool
}

// Build extracts every file of req with the primary layer's source type and
// lays the requested groups out in name table order, with one name per
// requested layer. Signals a file does not carry are NaN filled. Rows are
// concatenated across files.
func (b *Builder) Build(req BuildRequest) (Dataset, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}
	if b.Names == nil {
		return Dataset{}, fmt.Errorf("%w: no name table", ErrInvalidArgument)
	}
	if len(req.PathNames) == 0 {
		return Dataset{}, fmt.Errorf("%w: no files to build from", ErrInvalidArgument)
	}

	groups := dedup(req.Groups, TimeGroup)
	layers := dedup(req.Layers, "")
	if len(layers) == 0 {
		return Dataset{}, fmt.Errorf("%w: no layers requested", ErrInvalidArgument)
	}
	if bad := unknown(groups[1:], b.Names.HasGroup); len(bad) > 0 {
		return Dataset{}, fmt.Errorf("%w: %q", ErrInvalidGroup, bad)
	}
	if bad := unknown(layers, b.Names.HasLayer); len(bad) > 0 {
		return Dataset{}, fmt.Errorf("%w: %q", ErrInvalidLayer, bad)
	}

	primary, err := b.primaryLayer(log, req.Source, layers)
	if err != nil {
		return Dataset{}, err
	}
	sourcetype, _ := b.Names.SourceTypeFor(primary)
	source, _ := b.Names.SourceFor(primary)

	log = log.With(zap.String("run", uuid.NewString()), zap.String("case", req.CaseName))
	log.Info("building dataset",
		zap.Strings("groups", groups[1:]),
		zap.Strings("layers", layers),
		zap.String("primary", primary),
		zap.Int("files", len(req.PathNames)))

	out := make([][]column, len(groups)-1)
	for gi, g := range groups[1:] {
		if out[gi], err = b.columns(g, primary, layers); err != nil {
			return Dataset{}, err
		}
	}

	e := Extractor{Names: b.Names, Grid: b.Grid, Log: log}
	var (
		t         []float64
		timeClass Class
		timeUnits string
	)
	for fi, path := range req.PathNames {
		d, err := e.Extract(path, ExtractOptions{SourceType: sourcetype, TS: req.TS, Trange: req.Trange, NoWarn: req.NoWarn})
		if err != nil {
			return Dataset{}, err
		}
		if fi == 0 {
			timeClass, timeUnits = d.Time.Values.Class, d.Time.Units[0]
		} else if (d.Time.Values.Class == DateTime) != (timeClass == DateTime) {
			return Dataset{}, fmt.Errorf("%w: %s has %s time, %s has %s time",
				ErrTimeBaseMismatch, path, d.Time.Values.Class, req.PathNames[0], timeClass)
		} else if d.Time.Units[0] != timeUnits {
			return Dataset{}, fmt.Errorf("%w: %s has time in %q, %s has time in %q",
				ErrTimeBaseMismatch, path, d.Time.Units[0], req.PathNames[0], timeUnits)
		}
		t = append(t, d.TimeVector()...)

		master, err := CollectSignals(d)
		if err != nil {
			return Dataset{}, fmt.Errorf("%s: %w", path, err)
		}
		for gi, g := range groups[1:] {
			if missing := fill(out[gi], master, primary, d.Rows()); len(missing) > 0 {
				log.Warn("signals filled with NaN",
					zap.String("path", path),
					zap.String("group", g),
					zap.Int("count", len(missing)),
					zap.Strings("names", missing))
			}
		}
	}

	d := Dataset{
		CaseName:   req.CaseName,
		PathNames:  slices.Clone(req.PathNames),
		Source:     source,
		SourceType: sourcetype,
		Time:       NewTimeGroup(layers, t, timeClass, timeUnits),
	}
	for gi, g := range groups[1:] {
		sg := NewSignalGroup(layers, len(t))
		for _, col := range out[gi] {
			sg.Append(col.names, col.data, col.units, col.description)
		}
		d.Groups = append(d.Groups, Group{Name: g, Signals: sg})
	}
	if err := ValidateDataset(d).Err(); err != nil {
		return Dataset{}, fmt.Errorf("error building dataset %q: %w", req.CaseName, err)
	}
	return d, nil
}

// primaryLayer resolves the layer whose names drive matching.
func (b *Builder) primaryLayer(log *zap.Logger, source string, layers []string) (string, error) {
	if source == "" {
		log.Warn("no source layer given, using the first requested layer", zap.String("layer", layers[0]))
		return layers[0], nil
	}
	if b.Names.HasLayer(source) {
		return source, nil
	}
	layer, err := b.Names.LayerFor(source)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidLayer, err)
	}
	return layer, nil
}

// columns lays out the output columns of group. The primary layer is always
// recorded so files can be matched even when it is not requested.
func (b *Builder) columns(group, primary string, layers []string) ([]column, error) {
	lists := map[string][]string{}
	for _, l := range append(slices.Clone(layers), primary) {
		list, err := b.Names.NamesFor(group, l)
		if err != nil {
			return nil, err
		}
		lists[l] = list
	}
	cols := make([]column, b.Names.Width(group))
	for c := range cols {
		cols[c].names = make(map[string]string, len(lists))
		for l, list := range lists {
			cols[c].names[l] = list[c]
		}
	}
	return cols, nil
}

// fill appends one file's rows to every column, matching on the primary
// layer, and returns the names that had to be NaN filled. An empty primary
// name is reported as "".
func fill(cols []column, master SignalGroup, primary string, rows int) []string {
	var missing []string
	for c := range cols {
		col := &cols[c]
		name := col.names[primary]
		pos := -1
		if name != "" {
			pos = position(master, primary, name)
		}
		if pos < 0 {
			col.data = append(col.data, nanColumn(rows)...)
			missing = append(missing, name)
			continue
		}
		col.data = append(col.data, master.Values.Columns[pos]...)
		if !col.carried {
			col.units, col.description, col.carried = master.Units[pos], master.Descriptions[pos], true
		}
	}
	return missing
}

// position finds name in the primary layer of master, or in any layer when
// master does not carry the primary layer.
func position(master SignalGroup, primary, name string) int {
	list, ok := master.Names[primary]
	if !ok {
		return findName(master, name)
	}
	return slices.Index(list, name)
}

// dedup removes empty and repeated entries, preserving first-seen order.
// A non-empty first is forced to the front.
func dedup(in []string, first string) []string {
	var out []string
	seen := map[string]bool{"": true}
	if first != "" {
		out = append(out, first)
		seen[first] = true
	}
	for _, s := range in {
		if !seen[s] {
			out = append(out, s)
			seen[s] = true
		}
	}
	return out
}

func unknown(in []string, known func(string) bool) []string {
	var out []string
	for _, s := range in {
		if !known(s) {
			out = append(out, s)
		}
	}
	return out
}
