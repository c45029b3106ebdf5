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
	"strconv"
	"strings"
	"time"
)

// Reader reads EDF/EDF+ files.
type Reader struct {
	r   io.ReadSeeker
	hdr *Header
}

// signalField describes one per-signal header column: its width and how the
// trimmed text is stored on the signal.
type signalField struct {
	width int
	set   func(s *Signal, v string)
}

var signalFields = []signalField{
	{16, func(s *Signal, v string) { s.Label = v }},
	{80, func(s *Signal, v string) { s.TransducerType = v }},
	{8, func(s *Signal, v string) { s.PhysicalDimension = v }},
	{8, func(s *Signal, v string) { s.PhysicalMin = parseFloat(v) }},
	{8, func(s *Signal, v string) { s.PhysicalMax = parseFloat(v) }},
	{8, func(s *Signal, v string) { s.DigitalMin = parseInt(v) }},
	{8, func(s *Signal, v string) { s.DigitalMax = parseInt(v) }},
	{80, func(s *Signal, v string) { s.Prefiltering = v }},
	{8, func(s *Signal, v string) { s.SamplesPerRecord = parseInt(v) }},
	{32, func(s *Signal, v string) { s.Reserved = v }},
}

// Open opens an EDF/EDF+ file for reading.
func Open(r io.ReadSeeker) (*Reader, error) {
	reader := bufio.NewReader(r)

	b := make([]byte, 256)
	if _, err := io.ReadFull(reader, b); err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	field := func(from, to int) string { return strings.TrimSpace(string(b[from:to])) }

	hdr := &Header{
		Version:     Version(field(0, 8)),
		PatientID:   field(8, 88),
		RecordingID: field(88, 168),
	}

	startDate, err := time.Parse("02.01.06", field(168, 176))
	if err != nil {
		return nil, fmt.Errorf("error parsing start date: %w", err)
	}
	startTime, err := time.Parse("15.04.05", field(176, 184))
	if err != nil {
		return nil, fmt.Errorf("error parsing start time: %w", err)
	}
	hdr.StartTime = time.Date(startDate.Year(), startDate.Month(), startDate.Day(),
		startTime.Hour(), startTime.Minute(), startTime.Second(), 0, time.UTC)

	if hdr.HeaderBytes, err = strconv.Atoi(field(184, 192)); err != nil {
		return nil, fmt.Errorf("error parsing header bytes: %w", err)
	}
	if hdr.DataRecords, err = strconv.Atoi(field(236, 244)); err != nil {
		return nil, fmt.Errorf("error parsing number of data records: %w", err)
	}
	seconds, err := strconv.ParseFloat(field(244, 252), 64)
	if err != nil {
		return nil, fmt.Errorf("error parsing data record duration: %w", err)
	}
	hdr.DataRecordDuration = time.Duration(seconds * float64(time.Second))
	if hdr.SignalCount, err = strconv.Atoi(field(252, 256)); err != nil {
		return nil, fmt.Errorf("error parsing signal count: %w", err)
	}

	// Signal headers are stored column by column: every label, then every
	// transducer type, and so on.
	hdr.Signals = make([]Signal, hdr.SignalCount)
	for _, f := range signalFields {
		buf := make([]byte, f.width)
		for i := range hdr.Signals {
			if _, err := io.ReadFull(reader, buf); err != nil {
				return nil, fmt.Errorf("error reading signal headers: %w", err)
			}
			f.set(&hdr.Signals[i], strings.TrimSpace(string(buf)))
		}
	}

	return &Reader{
		r:   r,
		hdr: hdr,
	}, nil
}

// Header returns the parsed file header.
func (er *Reader) Header() Header {
	return *er.hdr
}

// SignalReader reads continuous signal data from an EDF/EDF+ file.
type SignalReader struct {
	r                io.ReadSeeker
	hdr              *Header
	signalIndex      int // Index of the signal to read
	currentRecord    int // Current record being processed
	currentSample    int // Current sample in the record
	recordSize       int // Total size of one data record
	signalOffset     int // Byte offset of the signal in a record
	samplesPerRecord int // Number of samples per record for the signal
}

// Signal creates a new SignalReader for a specified signal index.
func (er *Reader) Signal(signalIndex int) (*SignalReader, error) {
	if signalIndex < 0 || signalIndex >= len(er.hdr.Signals) {
		return nil, ErrSignalIndex
	}

	recordSize := 0
	signalOffset := 0
	for i, sig := range er.hdr.Signals {
		if i < signalIndex {
			signalOffset += sig.SamplesPerRecord * 2
		}
		recordSize += sig.SamplesPerRecord * 2
	}

	return &SignalReader{
		r:                er.r,
		hdr:              er.hdr,
		signalIndex:      signalIndex,
		recordSize:       recordSize,
		signalOffset:     signalOffset,
		samplesPerRecord: er.hdr.Signals[signalIndex].SamplesPerRecord,
	}, nil
}

// ReadAll returns every physical sample of a signal.
func (er *Reader) ReadAll(signalIndex int) ([]float64, error) {
	sr, err := er.Signal(signalIndex)
	if err != nil {
		return nil, err
	}
	total := sr.samplesPerRecord * er.hdr.DataRecords
	if total <= 0 {
		return []float64{}, nil
	}
	data := make([]float64, total)
	n, err := sr.Read(data)
	if err != nil && err != io.EOF {
		return nil, err
	}
	return data[:n], nil
}

// Read fills the provided float64 slice with the physical values from the signal.
func (sr *SignalReader) Read(data []float64) (int, error) {
	if sr.samplesPerRecord <= 0 {
		return 0, io.EOF
	}
	signal := sr.hdr.Signals[sr.signalIndex]
	buf := make([]byte, 2*sr.samplesPerRecord)

	n := 0
	for n < len(data) {
		if sr.currentRecord >= sr.hdr.DataRecords {
			return n, io.EOF // End of data records
		}

		// Read the remainder of this signal's block in the current record
		// with a single seek.
		remaining := sr.samplesPerRecord - sr.currentSample
		if want := len(data) - n; want < remaining {
			remaining = want
		}
		pos := int64(sr.hdr.HeaderBytes) + int64(sr.currentRecord)*int64(sr.recordSize) + int64(sr.signalOffset) + int64(sr.currentSample*2)
		if _, err := sr.r.Seek(pos, io.SeekStart); err != nil {
			return n, fmt.Errorf("error seeking to position: %w", err)
		}
		block := buf[:remaining*2]
		if _, err := io.ReadFull(sr.r, block); err != nil {
			return n, fmt.Errorf("error reading sample data: %w", err)
		}
		for i := 0; i < remaining; i++ {
			digitalValue := int16(binary.LittleEndian.Uint16(block[2*i:]))
			data[n] = convertDigitalToPhysical(digitalValue, signal.DigitalMin, signal.DigitalMax, signal.PhysicalMin, signal.PhysicalMax)
			n++
		}

		sr.currentSample += remaining
		if sr.currentSample >= sr.samplesPerRecord {
			sr.currentSample = 0
			sr.currentRecord++
		}
	}

	return n, nil
}

// convertDigitalToPhysical converts a digital value from the data record to a physical value using the calibration factors.
func convertDigitalToPhysical(digital int16, dmin, dmax int, pmin, pmax float64) float64 {
	if dmax == dmin {
		return 0 // Avoid division by zero
	}
	return pmin + (float64(digital)-float64(dmin))*(pmax-pmin)/float64(dmax-dmin)
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0.0
	}
	return f
}

func parseInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}
