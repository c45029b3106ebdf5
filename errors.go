// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sigset

import "errors"

// Input validation errors.
var (
	// ErrInvalidArgument is returned for malformed arguments, before any I/O.
	ErrInvalidArgument = errors.New("sigset: invalid argument")
	// ErrFileNotFound is returned when an input file does not exist.
	ErrFileNotFound = errors.New("sigset: file not found")
	// ErrUnrecognizedFormat is returned when no reader recognizes a file.
	ErrUnrecognizedFormat = errors.New("sigset: unrecognized file format")
	// ErrMalformedFile is returned when a recognized file cannot be decoded.
	ErrMalformedFile = errors.New("sigset: malformed file")
)

// Lookup errors.
var (
	// ErrUnknownSourceType is returned when a requested source type is not
	// listed by the name table.
	ErrUnknownSourceType = errors.New("sigset: unknown source type")
	// ErrUnsupportedSourceType is returned by the collapse pipeline when a
	// source type has no override table.
	ErrUnsupportedSourceType = errors.New("sigset: unsupported source type")
	// ErrInvalidGroup is returned when requested groups are not in the name table.
	ErrInvalidGroup = errors.New("sigset: invalid group")
	// ErrInvalidLayer is returned when requested layers are not in the name table.
	ErrInvalidLayer = errors.New("sigset: invalid layer")
)

// Mismatch errors.
var (
	// ErrSourceTypeMismatch is returned when a native file's recorded source
	// type differs from the requested one.
	ErrSourceTypeMismatch = errors.New("sigset: source type mismatch")
	// ErrTimeBaseMismatch is returned when files with absolute and relative
	// time bases are concatenated.
	ErrTimeBaseMismatch = errors.New("sigset: time base mismatch")
)

// Structural errors, produced by Result.Err.
var (
	// ErrUnrecognized means a value is not the expected kind of structure.
	ErrUnrecognized = errors.New("sigset: unrecognized structure")
	// ErrInvalid means a value violates a structural invariant.
	ErrInvalid = errors.New("sigset: invalid structure")
)
