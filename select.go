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
	"strconv"

	"go.uber.org/zap"
)

// Request lists the signals to select, either by name in any layer or by
// 0-based position in the master signal list. Build one with ByName or
// ByIndex; the zero Request selects nothing.
type Request struct {
	names   []string
	indices []int
	byIndex bool
}

// ByName requests signals by name.
func ByName(names ...string) Request { return Request{names: names} }

// ByIndex requests signals by master list position.
func ByIndex(indices ...int) Request { return Request{indices: indices, byIndex: true} }

func (r Request) len() int {
	if r.byIndex {
		return len(r.indices)
	}
	return len(r.names)
}

func (r Request) label(i int) string {
	if r.byIndex {
		return strconv.Itoa(r.indices[i])
	}
	return r.names[i]
}

// Selection is a reduced signal group holding the matched signals in
// request order, with a per-request match mask and master list position
// (-1 when unmatched).
type Selection struct {
	Group   SignalGroup
	Matched []bool
	Index   []int
}

// Missing returns the requests that matched nothing.
func (s Selection) Missing(r Request) []string {
	var out []string
	for i, ok := range s.Matched {
		if !ok {
			out = append(out, r.label(i))
		}
	}
	return out
}

// MergeGroups concatenates the columns of groups that share one layer list
// and row count, in argument order.
func MergeGroups(groups ...SignalGroup) (SignalGroup, error) {
	if len(groups) == 0 {
		return SignalGroup{}, fmt.Errorf("%w: no groups to merge", ErrInvalidArgument)
	}
	out := NewSignalGroup(groups[0].Layers, groups[0].Values.Rows)
	out.Values.Class = groups[0].Values.Class
	for i, g := range groups {
		if !slices.Equal(g.Layers, out.Layers) {
			return SignalGroup{}, fmt.Errorf("%w: group %d has layers %v, expected %v", ErrInvalidArgument, i+1, g.Layers, out.Layers)
		}
		if g.Values.Rows != out.Values.Rows {
			return SignalGroup{}, fmt.Errorf("%w: group %d has %d rows, expected %d", ErrInvalidArgument, i+1, g.Values.Rows, out.Values.Rows)
		}
		for c := 0; c < g.Len(); c++ {
			out.Append(g.Column(c), g.Values.Columns[c], g.Units[c], g.Descriptions[c])
		}
	}
	return out, nil
}

// CollectSignals flattens the non-Time groups of d into one master list:
// groups in declaration order, columns in group order.
func CollectSignals(d Dataset) (SignalGroup, error) {
	groups := make([]SignalGroup, len(d.Groups))
	for i, g := range d.Groups {
		groups[i] = g.Signals
	}
	return MergeGroups(groups...)
}

// Select reduces a dataset or signal group to the requested signals. When
// log is non-nil unmatched requests are logged; pass nil and inspect
// Selection.Matched instead.
func Select(log *zap.Logger, v Value, r Request) (Selection, error) {
	var master SignalGroup
	switch v.Kind() {
	case KindDataset:
		d, _ := v.Dataset()
		var err error
		if master, err = CollectSignals(d); err != nil {
			return Selection{}, err
		}
	case KindSignalGroup:
		master, _ = v.SignalGroup()
	default:
		return Selection{}, fmt.Errorf("%w: cannot select from a %s", ErrInvalidArgument, v.Kind())
	}
	return selectFrom(log, master, r), nil
}

// SelectEach applies Select to every element of a dataset or signal group
// array, in column-major order.
func SelectEach(log *zap.Logger, v Value, r Request) ([]Selection, error) {
	var items []Value
	switch v.Kind() {
	case KindDatasetArray:
		a, _ := v.DatasetArray()
		for _, d := range a.Items {
			items = append(items, DatasetValue(d))
		}
	case KindSignalGroupArray:
		a, _ := v.SignalGroupArray()
		for _, sg := range a.Items {
			items = append(items, SignalGroupValue(sg))
		}
	default:
		return nil, fmt.Errorf("%w: %s is not an array", ErrInvalidArgument, v.Kind())
	}

	out := make([]Selection, len(items))
	for i, item := range items {
		sel, err := Select(log, item, r)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i+1, err)
		}
		out[i] = sel
	}
	return out, nil
}

func selectFrom(log *zap.Logger, master SignalGroup, r Request) Selection {
	sel := Selection{
		Group:   NewSignalGroup(master.Layers, master.Values.Rows),
		Matched: make([]bool, r.len()),
		Index:   make([]int, r.len()),
	}
	sel.Group.Values.Class = master.Values.Class

	for i := range sel.Index {
		pos := -1
		if r.byIndex {
			if idx := r.indices[i]; idx >= 0 && idx < master.Len() {
				pos = idx
			}
		} else {
			pos = findName(master, r.names[i])
		}
		sel.Index[i] = pos
		if pos < 0 {
			continue
		}
		sel.Matched[i] = true
		sel.Group.Append(master.Column(pos), slices.Clone(master.Values.Columns[pos]), master.Units[pos], master.Descriptions[pos])
	}

	if log != nil {
		if missing := sel.Missing(r); len(missing) > 0 {
			log.Warn("requested signals not found", zap.Int("count", len(missing)), zap.Strings("signals", missing))
		}
	}
	return sel
}

// findName returns the first master list position carrying name in any
// layer. The empty name matches only a signal unnamed on every layer.
func findName(master SignalGroup, name string) int {
	for c := 0; c < master.Len(); c++ {
		if name == "" {
			if unnamed(master, c) {
				return c
			}
			continue
		}
		for _, l := range master.Layers {
			if master.Names[l][c] == name {
				return c
			}
		}
	}
	return -1
}

func unnamed(sg SignalGroup, c int) bool {
	for _, l := range sg.Layers {
		if sg.Names[l][c] != "" {
			return false
		}
	}
	return true
}
