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
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/sigset/edf"
	"github.com/OpenPSG/sigset/names"
	"go.uber.org/zap"
)

// Format is a recognized input file format.
type Format int

const (
	FormatUnknown Format = iota
	FormatDataset        // Native dataset blob
	FormatSarray         // S-array blob
	FormatEDF            // EDF or EDF+ recording
	FormatXlsx           // Excel workbook
	FormatCSV            // Comma separated text
)

func (f Format) String() string {
	switch f {
	case FormatDataset:
		return "dataset"
	case FormatSarray:
		return "S-array"
	case FormatEDF:
		return "EDF"
	case FormatXlsx:
		return "xlsx"
	case FormatCSV:
		return "CSV"
	default:
		return "unknown"
	}
}

var zipMagic = []byte("PK\x03\x04")

// DetectFormat sniffs the format of the file at path from its leading bytes,
// falling back to the extension for text formats.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, openError(path, err)
	}
	defer f.Close()

	head := make([]byte, 8)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return FormatUnknown, err
	}
	head = head[:n]

	switch {
	case string(head) == DatasetMagic:
		return FormatDataset, nil
	case string(head) == SarrayMagic:
		return FormatSarray, nil
	case string(head) == edf.Magic:
		return FormatEDF, nil
	case bytes.HasPrefix(head, zipMagic):
		return FormatXlsx, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	}
	return FormatUnknown, nil
}

// ReadRaw reads a raw (non-native) file into an S-array.
func ReadRaw(path string, format Format) (SArray, error) {
	switch format {
	case FormatSarray:
		return ReadSarrayFile(path)
	case FormatEDF:
		return ReadEDFFile(path)
	case FormatXlsx, FormatCSV:
		return ReadXlsFile(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnrecognizedFormat, path)
	}
}

// Rootname returns the base name of path without its extension.
func Rootname(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ExtractOptions controls a single extraction.
type ExtractOptions struct {
	SourceType string  // Override rules to apply, empty for none
	TS         float64 // Resample to this sample time, 0 to keep the grid
	Trange     *Range  // Trim to this range, nil to keep every row
	NoWarn     bool    // Suppress unmatched name warnings
}

// Extractor loads files of any recognized format as datasets.
type Extractor struct {
	Names *names.Table
	Grid  GridUnifier
	Log   *zap.Logger
}

// Extract loads the file at path. Native dataset files are returned as
// stored; every other format is read and collapsed with opts.SourceType.
// Resampling and trimming apply last in both cases.
func (e *Extractor) Extract(path string, opts ExtractOptions) (Dataset, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("path", path))

	format, err := DetectFormat(path)
	if err != nil {
		return Dataset{}, err
	}

	var d Dataset
	if format == FormatDataset {
		if d, err = e.native(log, path, opts.SourceType); err != nil {
			return Dataset{}, err
		}
	} else {
		if opts.SourceType != "" && (e.Names == nil || !e.Names.HasSourceType(opts.SourceType)) {
			return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownSourceType, opts.SourceType)
		}
		s, err := ReadRaw(path, format)
		if err != nil {
			return Dataset{}, err
		}
		c := Collapser{Names: e.Names, Grid: e.Grid, Log: log}
		if d, err = c.Collapse(s, opts.SourceType, opts.NoWarn); err != nil {
			return Dataset{}, fmt.Errorf("%s: %w", path, err)
		}
		d.CaseName = Rootname(path)
		d.PathNames = []string{path}
	}

	d, err = Resample(d, ResampleOptions{TS: opts.TS, Trange: opts.Trange})
	if err != nil {
		return Dataset{}, fmt.Errorf("error resampling %s: %w", path, err)
	}
	return d, nil
}

func (e *Extractor) native(log *zap.Logger, path, sourcetype string) (Dataset, error) {
	d, err := ReadDatasetFile(path)
	if err != nil {
		return Dataset{}, err
	}
	if sourcetype != "" && d.SourceType != "" && sourcetype != d.SourceType {
		return Dataset{}, fmt.Errorf("%w: %s was recorded as %q, requested %q",
			ErrSourceTypeMismatch, path, d.SourceType, sourcetype)
	}
	if err := ValidateDataset(d).Err(); err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	log.Info("loaded native dataset, no conversion applied", zap.String("sourcetype", d.SourceType))
	if len(d.PathNames) == 0 {
		d.PathNames = []string{path}
	}
	return d, nil
}
