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
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/OpenPSG/sigset/edf"
	"github.com/xuri/excelize/v2"
)

var identifier = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// timeLayouts are the text forms accepted for spreadsheet Time cells.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"02.01.2006 15:04:05",
	"02.01.2006",
}

// ReadXlsFile reads a spreadsheet (xlsx) or CSV file. The header row holds
// identifiers, the first column is named Time and holds dates or date-times,
// and every other column holds numbers (empty cells read as NaN).
func ReadXlsFile(path string) (SArray, error) {
	var (
		rows   [][]string
		serial bool
		err    error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		rows, err = readCSV(path)
	default:
		rows, err = readSheet(path)
		serial = true
	}
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrMalformedFile, path)
	}

	header := rows[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
		if !identifier.MatchString(header[i]) {
			return nil, fmt.Errorf("%w: %s header %d %q is not an identifier", ErrMalformedFile, path, i+1, header[i])
		}
	}
	if header[0] != TimeGroup {
		return nil, fmt.Errorf("%w: %s first column is %q, expected %q", ErrMalformedFile, path, header[0], TimeGroup)
	}

	data := rows[1:]
	for len(data) > 0 && blank(data[len(data)-1]) {
		data = data[:len(data)-1]
	}

	t := make([]float64, len(data))
	columns := make([][]float64, len(header)-1)
	for c := range columns {
		columns[c] = make([]float64, len(data))
	}
	for r, row := range data {
		if len(row) > len(header) {
			return nil, fmt.Errorf("%w: %s row %d has %d cells for %d columns", ErrMalformedFile, path, r+2, len(row), len(header))
		}
		at, err := parseInstant(cellAt(row, 0), serial)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %v", ErrMalformedFile, path, r+2, err)
		}
		t[r] = ToUnixSeconds(at)
		for c := range columns {
			v := cellAt(row, c+1)
			if v == "" {
				columns[c][r] = math.NaN()
				continue
			}
			if columns[c][r], err = strconv.ParseFloat(v, 64); err != nil {
				return nil, fmt.Errorf("%w: %s row %d column %q: %q is not a number", ErrMalformedFile, path, r+2, header[c+1], v)
			}
		}
	}

	s := make(SArray, len(columns))
	for c, col := range columns {
		s[c] = Signal{Name: header[c+1], Data: col, Time: t, UnitsT: UnitsDateTime}
	}
	return s, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	return rows, nil
}

func readSheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, openError(path, err)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: %s has no sheets", ErrMalformedFile, path)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	return rows, nil
}

// parseInstant reads a date or date-time cell. Spreadsheet cells may hold
// Excel serial dates.
func parseInstant(s string, serial bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty Time cell")
	}
	if serial {
		if v, err := strconv.ParseFloat(s, 64); err == nil {
			return excelize.ExcelDateToTime(v, false)
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date or date-time", s)
}

func cellAt(row []string, c int) string {
	if c >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[c])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// ReadEDFFile reads an EDF/EDF+ recording. Each signal keeps its own sample
// interval; annotation channels are skipped.
func ReadEDFFile(path string) (SArray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, openError(path, err)
	}
	defer f.Close()

	er, err := edf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedFile, path, err)
	}
	hdr := er.Header()

	var s SArray
	for i, sig := range hdr.Signals {
		if sig.IsAnnotations() {
			continue
		}
		if sig.SamplesPerRecord <= 0 || hdr.DataRecordDuration <= 0 {
			return nil, fmt.Errorf("%w: %s signal %q has no sample interval", ErrMalformedFile, path, sig.Label)
		}
		// Whole-nanosecond intervals drift over long recordings.
		dt := hdr.DataRecordDuration.Seconds() / float64(sig.SamplesPerRecord)
		data, err := er.ReadAll(i)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: %s signal %q: %v", ErrMalformedFile, path, sig.Label, err)
		}
		s = append(s, Signal{
			Name:        sig.Label,
			Data:        data,
			Dt:          dt,
			UnitsT:      "s",
			Units:       sig.PhysicalDimension,
			Description: describe(sig),
		})
	}
	if len(s) > 0 {
		s[0].Trigger = &Trigger{Absolute: hdr.StartTime}
	}
	return s, nil
}

func describe(sig edf.Signal) string {
	switch {
	case sig.Prefiltering == "":
		return sig.TransducerType
	case sig.TransducerType == "":
		return sig.Prefiltering
	default:
		return sig.TransducerType + " (" + sig.Prefiltering + ")"
	}
}

func openError(path string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	return err
}
