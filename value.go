// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sigset

// Kind identifies which container a Value holds.
type Kind int

const (
	KindInvalid Kind = iota
	KindSArray
	KindDataset
	KindSignalGroup
	KindDatasetArray
	KindSignalGroupArray
)

func (k Kind) String() string {
	switch k {
	case KindSArray:
		return "S-array"
	case KindDataset:
		return "dataset"
	case KindSignalGroup:
		return "signal group"
	case KindDatasetArray:
		return "dataset array"
	case KindSignalGroupArray:
		return "signal group array"
	default:
		return "invalid"
	}
}

// Value carries one container together with its kind. The kind is decided
// when the value is constructed and never re-inspected.
type Value struct {
	kind     Kind
	sarray   SArray
	dataset  *Dataset
	group    *SignalGroup
	datasets *DatasetArray
	groups   *SignalGroupArray
}

// SArrayValue wraps an S-array.
func SArrayValue(s SArray) Value { return Value{kind: KindSArray, sarray: s} }

// DatasetValue wraps a dataset.
func DatasetValue(d Dataset) Value { return Value{kind: KindDataset, dataset: &d} }

// SignalGroupValue wraps a signal group.
func SignalGroupValue(sg SignalGroup) Value { return Value{kind: KindSignalGroup, group: &sg} }

// DatasetArrayValue wraps a dataset array.
func DatasetArrayValue(a DatasetArray) Value { return Value{kind: KindDatasetArray, datasets: &a} }

// SignalGroupArrayValue wraps a signal group array.
func SignalGroupArrayValue(a SignalGroupArray) Value {
	return Value{kind: KindSignalGroupArray, groups: &a}
}

// Kind returns the kind of the wrapped container.
func (v Value) Kind() Kind { return v.kind }

// SArray returns the wrapped S-array.
func (v Value) SArray() (SArray, bool) { return v.sarray, v.kind == KindSArray }

// Dataset returns the wrapped dataset.
func (v Value) Dataset() (Dataset, bool) {
	if v.kind != KindDataset || v.dataset == nil {
		return Dataset{}, false
	}
	return *v.dataset, true
}

// SignalGroup returns the wrapped signal group.
func (v Value) SignalGroup() (SignalGroup, bool) {
	if v.kind != KindSignalGroup || v.group == nil {
		return SignalGroup{}, false
	}
	return *v.group, true
}

// DatasetArray returns the wrapped dataset array.
func (v Value) DatasetArray() (DatasetArray, bool) {
	if v.kind != KindDatasetArray || v.datasets == nil {
		return DatasetArray{}, false
	}
	return *v.datasets, true
}

// SignalGroupArray returns the wrapped signal group array.
func (v Value) SignalGroupArray() (SignalGroupArray, bool) {
	if v.kind != KindSignalGroupArray || v.groups == nil {
		return SignalGroupArray{}, false
	}
	return *v.groups, true
}
