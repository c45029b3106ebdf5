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
	"bufio"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

// File magics. Both formats are an 8-byte magic followed by a zstd
// compressed gob record.
const (
	SarrayMagic  = "SIGSAR01"
	DatasetMagic = "SIGSDS01"
)

// File extensions written by this package.
const (
	SarrayExt  = ".sar"
	DatasetExt = ".sds"
)

// sarrayRecord is one element of the S blob.
type sarrayRecord struct {
	Name        string
	Data        []float64
	Dt          float64
	Time        []float64
	UnitsT      string
	Units       string
	Description string
	Trigger     *Trigger
}

type sarrayFile struct {
	S []sarrayRecord
}

// datasetFile is the native form of a Dataset. SourceType and Time come first.
type datasetFile struct {
	SourceType string
	Time       SignalGroup
	CaseName   string
	PathNames  []string
	Source     string
	Groups     []Group
}

// WriteSarray encodes s to w.
func WriteSarray(w io.Writer, s SArray) error {
	rec := sarrayFile{S: make([]sarrayRecord, len(s))}
	for i, sig := range s {
		rec.S[i] = sarrayRecord(sig)
	}
	return writeBlob(w, SarrayMagic, rec)
}

// ReadSarray decodes an S-array from r.
func ReadSarray(r io.Reader) (SArray, error) {
	var rec sarrayFile
	if err := readBlob(r, SarrayMagic, &rec); err != nil {
		return nil, err
	}
	s := make(SArray, len(rec.S))
	for i, sig := range rec.S {
		s[i] = Signal(sig)
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return s, nil
}

// WriteSarrayFile writes s to path.
func WriteSarrayFile(path string, s SArray) error {
	return writeFile(path, func(w io.Writer) error { return WriteSarray(w, s) })
}

// ReadSarrayFile reads an S-array file.
func ReadSarrayFile(path string) (SArray, error) {
	var s SArray
	err := readFile(path, func(r io.Reader) (err error) {
		s, err = ReadSarray(r)
		return err
	})
	return s, err
}

// WriteDataset encodes d to w in the native form.
func WriteDataset(w io.Writer, d Dataset) error {
	return writeBlob(w, DatasetMagic, datasetFile{
		SourceType: d.SourceType,
		Time:       d.Time,
		CaseName:   d.CaseName,
		PathNames:  d.PathNames,
		Source:     d.Source,
		Groups:     d.Groups,
	})
}

// ReadDataset decodes a native dataset from r. The result is not validated.
func ReadDataset(r io.Reader) (Dataset, error) {
	var rec datasetFile
	if err := readBlob(r, DatasetMagic, &rec); err != nil {
		return Dataset{}, err
	}
	d := Dataset{
		CaseName:   rec.CaseName,
		PathNames:  rec.PathNames,
		Source:     rec.Source,
		SourceType: rec.SourceType,
		Time:       restore(rec.Time),
		Groups:     rec.Groups,
	}
	for i := range d.Groups {
		d.Groups[i].Signals = restore(d.Groups[i].Signals)
	}
	return d, nil
}

// WriteDatasetFile writes d to path in the native form.
func WriteDatasetFile(path string, d Dataset) error {
	return writeFile(path, func(w io.Writer) error { return WriteDataset(w, d) })
}

// ReadDatasetFile reads a native dataset file.
func ReadDatasetFile(path string) (Dataset, error) {
	var d Dataset
	err := readFile(path, func(r io.Reader) (err error) {
		d, err = ReadDataset(r)
		return err
	})
	return d, err
}

// restore replaces the nil slices and maps gob produces for empty values.
func restore(sg SignalGroup) SignalGroup {
	if sg.Names == nil {
		sg.Names = map[string][]string{}
	}
	for _, l := range sg.Layers {
		if _, ok := sg.Names[l]; ok && sg.Names[l] == nil {
			sg.Names[l] = []string{}
		}
	}
	if sg.Values.Columns == nil {
		sg.Values.Columns = [][]float64{}
	}
	for i, col := range sg.Values.Columns {
		if col == nil {
			sg.Values.Columns[i] = []float64{}
		}
	}
	if sg.Units == nil {
		sg.Units = []string{}
	}
	if sg.Descriptions == nil {
		sg.Descriptions = []string{}
	}
	return sg
}

func writeBlob(w io.Writer, magic string, v any) error {
	if _, err := io.WriteString(w, magic); err != nil {
		return err
	}
	enc, err := zstd.NewWriter(w)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(enc).Encode(v); err != nil {
		enc.Close()
		return fmt.Errorf("error encoding %s: %w", magic, err)
	}
	return enc.Close()
}

func readBlob(r io.Reader, magic string, v any) error {
	head := make([]byte, len(magic))
	if _, err := io.ReadFull(r, head); err != nil {
		return fmt.Errorf("%w: reading magic: %v", ErrMalformedFile, err)
	}
	if string(head) != magic {
		return fmt.Errorf("%w: expected magic %q, found %q", ErrUnrecognizedFormat, magic, head)
	}
	dec, err := zstd.NewReader(r)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	defer dec.Close()
	if err := gob.NewDecoder(dec).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedFile, err)
	}
	return nil
}

// writeFile writes through a temporary file so a failed write never
// leaves a truncated file at path.
func writeFile(path string, fn func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".sigset-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	bw := bufio.NewWriter(tmp)
	if err := fn(bw); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func readFile(path string, fn func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return err
	}
	defer f.Close()
	return fn(bufio.NewReader(f))
}
