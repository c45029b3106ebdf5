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
	"math"
	"strconv"

	"go.uber.org/zap"
)

// GroupSignalFromArray selects the signal called name from every element of
// a dataset or signal group array and merges the results into one group,
// one column per element in column-major order. Shorter columns are NaN
// padded to the longest; elements without the signal give an all-NaN
// column. It also returns an identifier per element: the element's source
// when recorded, else its zero-padded position.
func GroupSignalFromArray(log *zap.Logger, name string, v Value) (SignalGroup, []string, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if v.Kind() != KindDatasetArray && v.Kind() != KindSignalGroupArray {
		return SignalGroup{}, nil, fmt.Errorf("%w: %s is not an array", ErrInvalidArgument, v.Kind())
	}
	if err := Validate(v).Err(); err != nil {
		return SignalGroup{}, nil, err
	}

	ids := elementIDs(v)
	if len(ids) == 0 {
		return SignalGroup{}, nil, fmt.Errorf("%w: empty %s", ErrInvalidArgument, v.Kind())
	}
	sels, err := SelectEach(nil, v, ByName(name))
	if err != nil {
		return SignalGroup{}, nil, err
	}

	var (
		layers  []string
		rows    int
		ref     = -1
		missing []string
	)
	for i, sel := range sels {
		if i == 0 {
			layers = sel.Group.Layers
		}
		rows = max(rows, sel.Group.Values.Rows)
		if sel.Matched[0] {
			if ref < 0 {
				ref = i
			}
		} else {
			missing = append(missing, ids[i])
		}
	}
	if len(missing) > 0 {
		log.Warn("signal not found in array elements",
			zap.String("signal", name),
			zap.Int("count", len(missing)),
			zap.Strings("elements", missing))
	}

	out := NewSignalGroup(layers, rows)
	for _, sel := range sels {
		if sel.Matched[0] {
			out.Values.Class = sel.Group.Values.Class
			out.Append(sel.Group.Column(0), pad(sel.Group.Values.Columns[0], rows), sel.Group.Units[0], sel.Group.Descriptions[0])
			continue
		}
		colNames := map[string]string{}
		units, desc := "", ""
		if ref >= 0 {
			colNames = sels[ref].Group.Column(0)
			units, desc = sels[ref].Group.Units[0], sels[ref].Group.Descriptions[0]
		} else {
			for _, l := range layers {
				colNames[l] = name
			}
		}
		out.Append(colNames, nanColumn(rows), units, desc)
	}
	return out, ids, nil
}

func elementIDs(v Value) []string {
	var sources []string
	if a, ok := v.DatasetArray(); ok {
		for _, d := range a.Items {
			sources = append(sources, d.Source)
		}
	} else {
		a, _ := v.SignalGroupArray()
		sources = make([]string, len(a.Items))
	}
	width := len(strconv.Itoa(len(sources)))
	ids := make([]string, len(sources))
	for i, s := range sources {
		if s != "" {
			ids[i] = s
		} else {
			ids[i] = fmt.Sprintf("%0*d", width, i+1)
		}
	}
	return ids
}

func pad(col []float64, rows int) []float64 {
	out := make([]float64, rows)
	n := copy(out, col)
	for i := n; i < rows; i++ {
		out[i] = math.NaN()
	}
	return out
}
