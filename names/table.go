// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

// Package names holds the master name table: canonical signal names per
// group and name layer, the mapping between layers, sources and source
// types, and per source type unit/description overrides.
//
// A Table is immutable once loaded and is safe to share between goroutines.
package names

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

var (
	// ErrUnknownGroup is returned when a group is not declared in the table.
	ErrUnknownGroup = errors.New("names: unknown group")
	// ErrUnknownLayer is returned when a name layer is not declared in the table.
	ErrUnknownLayer = errors.New("names: unknown layer")
	// ErrUnknownSource is returned when no layer is bound to a source string.
	ErrUnknownSource = errors.New("names: unknown source")
	// ErrUnknownSourceType is returned when a source type has no entry in the table.
	ErrUnknownSourceType = errors.New("names: unknown source type")
	// ErrMalformedTable is returned when a table resource cannot be interpreted.
	ErrMalformedTable = errors.New("names: malformed table")
)

// Layer declares one naming scheme.
type Layer struct {
	Name       string // Layer name, e.g. "TagNames"
	Source     string // Source string identifying the layer, e.g. "scada"
	SourceType string // Key into the override table, may be empty
}

// Override is a per source type rule applied to a signal during collapse.
// Converted values are v*Scale + Offset. Empty Units or Description keep the
// signal's own.
type Override struct {
	Name        string
	Scale       float64
	Offset      float64
	Units       string
	Description string
}

// Apply converts v according to the rule.
func (o Override) Apply(v float64) float64 {
	return v*o.Scale + o.Offset
}

// Group declares the signals of one group. Names holds, per layer, one name
// per signal column; every layer has the same number of entries.
type Group struct {
	Name  string
	Names map[string][]string
}

// Table is the master lookup table.
type Table struct {
	layers    []Layer
	groups    []Group
	overrides map[string][]Override
}

// New builds a table and checks its internal consistency.
func New(layers []Layer, groups []Group, overrides map[string][]Override) (*Table, error) {
	t := &Table{
		layers:    slices.Clone(layers),
		groups:    make([]Group, 0, len(groups)),
		overrides: make(map[string][]Override, len(overrides)),
	}

	seenLayer := map[string]bool{}
	seenSource := map[string]bool{}
	for _, l := range t.layers {
		if l.Name == "" {
			return nil, fmt.Errorf("%w: empty layer name", ErrMalformedTable)
		}
		if seenLayer[l.Name] {
			return nil, fmt.Errorf("%w: duplicate layer %q", ErrMalformedTable, l.Name)
		}
		seenLayer[l.Name] = true
		if l.Source != "" {
			if seenSource[l.Source] {
				return nil, fmt.Errorf("%w: source %q bound to more than one layer", ErrMalformedTable, l.Source)
			}
			seenSource[l.Source] = true
		}
	}

	seenGroup := map[string]bool{}
	for _, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("%w: empty group name", ErrMalformedTable)
		}
		if seenGroup[g.Name] {
			return nil, fmt.Errorf("%w: duplicate group %q", ErrMalformedTable, g.Name)
		}
		seenGroup[g.Name] = true

		width := -1
		copied := Group{Name: g.Name, Names: make(map[string][]string, len(t.layers))}
		for layer, list := range g.Names {
			if !seenLayer[layer] {
				return nil, fmt.Errorf("%w: group %q uses undeclared layer %q", ErrMalformedTable, g.Name, layer)
			}
			if width >= 0 && len(list) != width {
				return nil, fmt.Errorf("%w: group %q layer %q has %d names, expected %d", ErrMalformedTable, g.Name, layer, len(list), width)
			}
			width = len(list)
			copied.Names[layer] = slices.Clone(list)
		}
		if width < 0 {
			width = 0
		}
		// Layers the group does not mention get empty names.
		for _, l := range t.layers {
			if _, ok := copied.Names[l.Name]; !ok {
				copied.Names[l.Name] = make([]string, width)
			}
		}
		t.groups = append(t.groups, copied)
	}

	for st, rules := range overrides {
		if st == "" {
			return nil, fmt.Errorf("%w: overrides for empty source type", ErrMalformedTable)
		}
		t.overrides[st] = slices.Clone(rules)
	}
	for _, l := range t.layers {
		if l.SourceType != "" {
			if _, ok := t.overrides[l.SourceType]; !ok {
				t.overrides[l.SourceType] = nil
			}
		}
	}

	return t, nil
}

// Layers returns the declared layer names in declaration order.
func (t *Table) Layers() []string {
	out := make([]string, len(t.layers))
	for i, l := range t.layers {
		out[i] = l.Name
	}
	return out
}

// Groups returns the declared group names in declaration order.
func (t *Table) Groups() []string {
	out := make([]string, len(t.groups))
	for i, g := range t.groups {
		out[i] = g.Name
	}
	return out
}

// HasLayer reports whether layer is declared.
func (t *Table) HasLayer(layer string) bool {
	_, ok := t.layer(layer)
	return ok
}

// HasGroup reports whether group is declared.
func (t *Table) HasGroup(group string) bool {
	_, ok := t.group(group)
	return ok
}

// SourceTypes returns every known source type, sorted.
func (t *Table) SourceTypes() []string {
	out := make([]string, 0, len(t.overrides))
	for st := range t.overrides {
		out = append(out, st)
	}
	slices.Sort(out)
	return out
}

// HasSourceType reports whether st is a known source type.
func (t *Table) HasSourceType(st string) bool {
	_, ok := t.overrides[st]
	return ok
}

// NamesFor returns the names of a group in a layer, one per signal column.
func (t *Table) NamesFor(group, layer string) ([]string, error) {
	g, ok := t.group(group)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGroup, group)
	}
	if !t.HasLayer(layer) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return slices.Clone(g.Names[layer]), nil
}

// SourceTypeFor returns the source type bound to a layer, possibly empty.
func (t *Table) SourceTypeFor(layer string) (string, error) {
	l, ok := t.layer(layer)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return l.SourceType, nil
}

// SourceFor returns the source string of a layer.
func (t *Table) SourceFor(layer string) (string, error) {
	l, ok := t.layer(layer)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLayer, layer)
	}
	return l.Source, nil
}

// LayerFor returns the layer bound to a source string.
func (t *Table) LayerFor(source string) (string, error) {
	for _, l := range t.layers {
		if l.Source != "" && strings.EqualFold(l.Source, source) {
			return l.Name, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSource, source)
}

// LayersForSourceType returns, in declaration order, the layers bound to st.
func (t *Table) LayersForSourceType(st string) []string {
	var out []string
	for _, l := range t.layers {
		if l.SourceType == st {
			out = append(out, l.Name)
		}
	}
	return out
}

// Overrides returns the override rules of a source type.
func (t *Table) Overrides(st string) ([]Override, error) {
	rules, ok := t.overrides[st]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, st)
	}
	return slices.Clone(rules), nil
}

// Override returns the rule for a signal name under a source type.
func (t *Table) Override(st, name string) (Override, bool) {
	for _, o := range t.overrides[st] {
		if o.Name == name {
			return o, true
		}
	}
	return Override{}, false
}

// Match finds the first column of group whose name equals name in any of
// the given layers (every layer when none are given). It returns -1 when the
// group does not list the name. Empty names never match.
func (t *Table) Match(group, name string, layers ...string) int {
	g, ok := t.group(group)
	if !ok || name == "" {
		return -1
	}
	if len(layers) == 0 {
		layers = t.Layers()
	}
	width := 0
	for _, list := range g.Names {
		width = len(list)
		break
	}
	for col := 0; col < width; col++ {
		for _, layer := range layers {
			if list, ok := g.Names[layer]; ok && list[col] == name {
				return col
			}
		}
	}
	return -1
}

// Width returns the number of signal columns declared for group.
func (t *Table) Width(group string) int {
	g, ok := t.group(group)
	if !ok {
		return 0
	}
	for _, list := range g.Names {
		return len(list)
	}
	return 0
}

func (t *Table) layer(name string) (Layer, bool) {
	for _, l := range t.layers {
		if l.Name == name {
			return l, true
		}
	}
	return Layer{}, false
}

func (t *Table) group(name string) (Group, bool) {
	for _, g := range t.groups {
		if g.Name == name {
			return g, true
		}
	}
	return Group{}, false
}
