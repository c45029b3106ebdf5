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
	"sort"
)

// GridUnifier resolves one common time base for signals recorded on
// independent grids. It returns the grid and one column per signal sampled
// on it. Implementations must be deterministic.
type GridUnifier interface {
	Unify(signals SArray) (grid []float64, columns [][]float64, err error)
}

// LinearGrid is the default GridUnifier.
//
// Signals that share identical sample instants pass through untouched.
// Otherwise the grid spans the union of every signal's own span with the
// finest sample step found, shrunk so that the last instant lands exactly on
// the end of the union. Values are linearly interpolated and are NaN outside
// each signal's own span.
type LinearGrid struct{}

// Unify implements GridUnifier.
func (LinearGrid) Unify(signals SArray) ([]float64, [][]float64, error) {
	if len(signals) == 0 {
		return []float64{}, [][]float64{}, nil
	}

	instants := make([][]float64, len(signals))
	for i, sig := range signals {
		instants[i] = sig.Instants()
	}

	if shared(instants) {
		columns := make([][]float64, len(signals))
		for i, sig := range signals {
			columns[i] = slices.Clone(sig.Data)
		}
		return slices.Clone(instants[0]), columns, nil
	}

	grid := unionGrid(signals, instants)
	columns := make([][]float64, len(signals))
	for i, sig := range signals {
		columns[i] = interpolate(instants[i], sig.Data, grid)
	}
	return grid, columns, nil
}

// shared reports whether every signal has the same sample instants.
func shared(instants [][]float64) bool {
	for _, t := range instants[1:] {
		if !slices.Equal(t, instants[0]) {
			return false
		}
	}
	return true
}

func unionGrid(signals SArray, instants [][]float64) []float64 {
	start, end := math.Inf(1), math.Inf(-1)
	step := math.Inf(1)
	for i, t := range instants {
		if len(t) == 0 {
			continue
		}
		start = math.Min(start, t[0])
		end = math.Max(end, t[len(t)-1])
		if signals[i].Dt > 0 {
			step = math.Min(step, signals[i].Dt)
			continue
		}
		for k := 1; k < len(t); k++ {
			if d := t[k] - t[k-1]; d > 0 {
				step = math.Min(step, d)
			}
		}
	}

	switch {
	case math.IsInf(start, 1):
		return []float64{}
	case end == start:
		return []float64{start}
	case math.IsInf(step, 1):
		return []float64{start, end}
	}

	n := int(math.Ceil((end-start)/step - 1e-9))
	h := (end - start) / float64(n)
	grid := make([]float64, n+1)
	for k := range grid {
		grid[k] = start + float64(k)*h
	}
	grid[n] = end
	return grid
}

// interpolate samples (t, y) at the instants of grid.
func interpolate(t, y, grid []float64) []float64 {
	out := make([]float64, len(grid))
	for k, g := range grid {
		out[k] = math.NaN()
		if len(t) == 0 || g < t[0] || g > t[len(t)-1] {
			continue
		}
		j := sort.SearchFloat64s(t, g)
		switch {
		case j < len(t) && t[j] == g:
			out[k] = y[j]
		case j == 0:
			out[k] = y[0]
		default:
			t0, t1 := t[j-1], t[j]
			w := (g - t0) / (t1 - t0)
			out[k] = y[j-1] + w*(y[j]-y[j-1])
		}
	}
	return out
}
