// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package names

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names of the master workbook.
const (
	SheetMaster    = "MASTER"    // Group | <layer> | <layer> ...
	SheetSources   = "SOURCES"   // Layer | Source | SourceType
	SheetOverrides = "OVERRIDES" // SourceType | Name | Scale | Offset | Units | Description
)

// LoadWorkbook reads a table from an xlsx workbook. SOURCES declares the
// layers in order, MASTER lists one signal per row and OVERRIDES is optional.
func LoadWorkbook(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("error opening name workbook: %w", err)
	}
	defer f.Close()

	sources, err := sheetRows(f, SheetSources, true)
	if err != nil {
		return nil, err
	}
	var layers []Layer
	for i, row := range sources {
		if i == 0 || cell(row, 0) == "" {
			continue
		}
		layers = append(layers, Layer{Name: cell(row, 0), Source: cell(row, 1), SourceType: cell(row, 2)})
	}

	master, err := sheetRows(f, SheetMaster, true)
	if err != nil {
		return nil, err
	}
	header := master[0]
	if !strings.EqualFold(cell(header, 0), "Group") {
		return nil, fmt.Errorf("%w: %s must start with a Group column", ErrMalformedTable, SheetMaster)
	}
	var groups []Group
	index := map[string]int{}
	for _, row := range master[1:] {
		name := cell(row, 0)
		if name == "" {
			continue
		}
		gi, ok := index[name]
		if !ok {
			gi = len(groups)
			index[name] = gi
			groups = append(groups, Group{Name: name, Names: map[string][]string{}})
		}
		for col := 1; col < len(header); col++ {
			layer := cell(header, col)
			groups[gi].Names[layer] = append(groups[gi].Names[layer], cell(row, col))
		}
	}

	overrides := map[string][]Override{}
	rules, err := sheetRows(f, SheetOverrides, false)
	if err != nil {
		return nil, err
	}
	for i, row := range rules {
		if i == 0 || cell(row, 0) == "" {
			continue
		}
		o := Override{Name: cell(row, 1), Scale: 1, Units: cell(row, 4), Description: cell(row, 5)}
		if s := cell(row, 2); s != "" {
			if o.Scale, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%w: %s row %d scale: %v", ErrMalformedTable, SheetOverrides, i+1, err)
			}
		}
		if s := cell(row, 3); s != "" {
			if o.Offset, err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("%w: %s row %d offset: %v", ErrMalformedTable, SheetOverrides, i+1, err)
			}
		}
		overrides[cell(row, 0)] = append(overrides[cell(row, 0)], o)
	}

	return New(layers, groups, overrides)
}

// SaveWorkbook writes t in the form LoadWorkbook reads.
func SaveWorkbook(t *Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	sources := [][]any{{"Layer", "Source", "SourceType"}}
	for _, l := range t.layers {
		sources = append(sources, []any{l.Name, l.Source, l.SourceType})
	}

	master := [][]any{{"Group"}}
	for _, l := range t.layers {
		master[0] = append(master[0], l.Name)
	}
	for _, g := range t.groups {
		for col := 0; col < t.Width(g.Name); col++ {
			row := []any{g.Name}
			for _, l := range t.layers {
				row = append(row, g.Names[l.Name][col])
			}
			master = append(master, row)
		}
	}

	rules := [][]any{{"SourceType", "Name", "Scale", "Offset", "Units", "Description"}}
	for _, st := range t.SourceTypes() {
		for _, o := range t.overrides[st] {
			rules = append(rules, []any{st, o.Name, o.Scale, o.Offset, o.Units, o.Description})
		}
	}

	for _, sheet := range []struct {
		name string
		rows [][]any
	}{{SheetSources, sources}, {SheetMaster, master}, {SheetOverrides, rules}} {
		if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("error creating sheet %s: %w", sheet.name, err)
		}
		for i, row := range sheet.rows {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.name, axis, &row); err != nil {
				return fmt.Errorf("error writing sheet %s: %w", sheet.name, err)
			}
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	return f.SaveAs(path)
}

// sheetRows returns the rows of a sheet. A missing optional sheet yields no rows.
func sheetRows(f *excelize.File, sheet string, required bool) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		if required {
			return nil, fmt.Errorf("%w: missing sheet %s", ErrMalformedTable, sheet)
		}
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("error reading sheet %s: %w", sheet, err)
	}
	if required && len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet %s", ErrMalformedTable, sheet)
	}
	return rows, nil
}

// cell returns the trimmed cell at col, or "" past the end of a short row.
func cell(row []string, col int) string {
	if col >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[col])
}
