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
)

// Range is an inclusive time interval in the units of a dataset's time base.
type Range struct {
	Start, End float64
}

// ResampleOptions selects an optional new sample time and trim range.
type ResampleOptions struct {
	TS     float64 // New sample time, 0 to keep the grid
	Trange *Range  // Trim range, nil to keep every row
}

// IsZero reports whether the options leave a dataset unchanged.
func (o ResampleOptions) IsZero() bool {
	return o.TS == 0 && o.Trange == nil
}

// Resample trims d to opts.Trange and then regrids it to opts.TS by linear
// interpolation. With zero options it returns a copy of d.
func Resample(d Dataset, opts ResampleOptions) (Dataset, error) {
	if opts.TS < 0 || math.IsNaN(opts.TS) {
		return Dataset{}, fmt.Errorf("%w: sample time %v", ErrInvalidArgument, opts.TS)
	}
	if opts.Trange != nil && !(opts.Trange.Start <= opts.Trange.End) {
		return Dataset{}, fmt.Errorf("%w: time range [%v, %v]", ErrInvalidArgument, opts.Trange.Start, opts.Trange.End)
	}
	out := d.Clone()
	if opts.IsZero() {
		return out, nil
	}
	if err := ValidateDataset(d).Err(); err != nil {
		return Dataset{}, err
	}

	t := out.TimeVector()
	if opts.Trange != nil {
		keep := make([]bool, len(t))
		for i, v := range t {
			keep[i] = v >= opts.Trange.Start && v <= opts.Trange.End
		}
		apply(&out, func(col []float64) []float64 { return filter(col, func(i int) bool { return keep[i] }) })
		t = out.TimeVector()
	}

	if opts.TS > 0 && len(t) > 0 {
		grid := make([]float64, 0, int((t[len(t)-1]-t[0])/opts.TS)+1)
		for k := 0; ; k++ {
			g := t[0] + float64(k)*opts.TS
			if g > t[len(t)-1]+opts.TS*1e-9 {
				break
			}
			grid = append(grid, math.Min(g, t[len(t)-1]))
		}
		apply(&out, func(col []float64) []float64 { return interpolate(t, col, grid) })
	}
	return out, nil
}

// apply maps every column of every group, including Time, and updates the
// row counts.
func apply(d *Dataset, fn func([]float64) []float64) {
	groups := []*SignalGroup{&d.Time}
	for i := range d.Groups {
		groups = append(groups, &d.Groups[i].Signals)
	}
	for _, sg := range groups {
		for c, col := range sg.Values.Columns {
			sg.Values.Columns[c] = fn(col)
		}
	}
	rows := len(d.Time.Values.Columns[0])
	for _, sg := range groups {
		sg.Values.Rows = rows
	}
}
