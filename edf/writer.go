// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package edf

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// maxRecordBytes is the data record size recommended by the EDF standard.
const maxRecordBytes = 61440

// Writer writes EDF files.
type Writer struct {
	w           io.WriteSeeker
	hdr         *Header
	dataRecords int // Number of data records written so far.
}

// Create creates a new EDF writer that writes to the given writer.
func Create(w io.WriteSeeker, hdr Header) (*Writer, error) {
	hdr.DataRecords = -1 // Unknown number of data records (at this time).
	hdr.SignalCount = len(hdr.Signals)

	ew := &Writer{w: w, hdr: &hdr}
	if err := ew.writeHeader(); err != nil {
		return nil, fmt.Errorf("error writing header: %w", err)
	}

	return ew, nil
}

// Close finalizes the EDF file by updating the header with the total number of data records.
func (ew *Writer) Close() error {
	ew.hdr.DataRecords = ew.dataRecords
	if err := ew.writeHeader(); err != nil {
		return fmt.Errorf("error writing header: %w", err)
	}
	// Leave the writer positioned after the last record.
	_, err := ew.w.Seek(0, io.SeekEnd)
	return err
}

// WriteRecord writes a single data record to the EDF file.
func (ew *Writer) WriteRecord(signals [][]float64) error {
	if len(signals) != ew.hdr.SignalCount {
		return fmt.Errorf("%w: expected %d signals, got %d", ErrSignalCount, ew.hdr.SignalCount, len(signals))
	}

	var totalSamples int
	for i, signal := range signals {
		if want := ew.hdr.Signals[i].SamplesPerRecord; len(signal) != want {
			return fmt.Errorf("%w: signal %d has %d samples, header declares %d", ErrSignalCount, i, len(signal), want)
		}
		totalSamples += len(signal)
	}
	if totalSamples*2 > maxRecordBytes {
		return fmt.Errorf("%w: %d bytes, max is %d bytes", ErrRecordTooLarge, totalSamples*2, maxRecordBytes)
	}

	// Records are appended after the header and any previous record.
	offset := int64(ew.hdr.HeaderBytes) + int64(ew.dataRecords)*int64(totalSamples*2)
	if _, err := ew.w.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	writer := bufio.NewWriter(ew.w)
	for i, samples := range signals {
		signal := ew.hdr.Signals[i]
		for _, sample := range samples {
			digitalValue := convertPhysicalToDigital(sample, signal.PhysicalMin, signal.PhysicalMax, signal.DigitalMin, signal.DigitalMax)
			if err := binary.Write(writer, binary.LittleEndian, digitalValue); err != nil {
				return err
			}
		}
	}
	if err := writer.Flush(); err != nil {
		return err
	}

	ew.dataRecords++
	return nil
}

// writeHeader rewinds and writes the fixed and per-signal header blocks.
func (ew *Writer) writeHeader() error {
	if _, err := ew.w.Seek(0, io.SeekStart); err != nil {
		return err
	}
	ew.hdr.HeaderBytes = 256 + (ew.hdr.SignalCount * 256)

	fixed := []struct {
		width int
		value string
	}{
		{8, string(ew.hdr.Version)},
		{80, ew.hdr.PatientID},
		{80, ew.hdr.RecordingID},
		{8, ew.hdr.StartTime.Format("02.01.06")},
		{8, ew.hdr.StartTime.Format("15.04.05")},
		{8, strconv.Itoa(ew.hdr.HeaderBytes)},
		{44, ""},
		{8, strconv.Itoa(ew.hdr.DataRecords)},
		{8, formatNumber(ew.hdr.DataRecordDuration.Seconds())},
		{4, strconv.Itoa(ew.hdr.SignalCount)},
	}

	writer := bufio.NewWriter(ew.w)
	for _, f := range fixed {
		if _, err := writer.WriteString(pad(f.value, f.width)); err != nil {
			return err
		}
	}

	perSignal := []struct {
		width int
		value func(s Signal) string
	}{
		{16, func(s Signal) string { return s.Label }},
		{80, func(s Signal) string { return s.TransducerType }},
		{8, func(s Signal) string { return s.PhysicalDimension }},
		{8, func(s Signal) string { return formatNumber(s.PhysicalMin) }},
		{8, func(s Signal) string { return formatNumber(s.PhysicalMax) }},
		{8, func(s Signal) string { return strconv.Itoa(s.DigitalMin) }},
		{8, func(s Signal) string { return strconv.Itoa(s.DigitalMax) }},
		{80, func(s Signal) string { return s.Prefiltering }},
		{8, func(s Signal) string { return strconv.Itoa(s.SamplesPerRecord) }},
		{32, func(Signal) string { return "" }},
	}
	for _, f := range perSignal {
		for _, signal := range ew.hdr.Signals {
			if _, err := writer.WriteString(pad(f.value(signal), f.width)); err != nil {
				return err
			}
		}
	}

	return writer.Flush()
}

// pad left-aligns s in a field of the given width, truncating if needed.
func pad(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	return fmt.Sprintf("%-*s", width, s)
}

// convertPhysicalToDigital converts a physical value to a digital value using the calibration factors.
func convertPhysicalToDigital(physical float64, pmin, pmax float64, dmin, dmax int) int16 {
	if pmax == pmin || math.IsNaN(physical) {
		return int16(dmin)
	}
	digital := ((physical - pmin) * (float64(dmax - dmin)) / (pmax - pmin)) + float64(dmin)
	digital = math.Max(float64(dmin), math.Min(float64(dmax), math.Round(digital)))
	return int16(digital)
}

// formatNumber renders a value in at most eight characters.
func formatNumber(val float64) string {
	// Try with 2 decimal places
	s := strconv.FormatFloat(val, 'f', 2, 64)
	if len(s) > 8 {
		// Fall back to no decimal
		s = strconv.FormatFloat(val, 'f', 0, 64)
	}
	return s
}
