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
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ConvertRequest selects the files to convert: either Files, or every file
// in Folder with extension FileType.
type ConvertRequest struct {
	Files    []string
	Folder   string
	FileType string   // Extension, with or without the leading dot
	Names    []string // Keep only these signals, all when empty
	OutDir   string   // Output directory, the input's directory when empty
}

// Converter writes raw files as S-array files.
type Converter struct {
	Log *zap.Logger
}

// Convert converts each input to <rootname>.sar and returns the paths
// written. Only the first file of each rootname is converted. S-array
// inputs need no conversion and native dataset inputs cannot be converted;
// both are skipped.
func (c *Converter) Convert(req ConvertRequest) ([]string, error) {
	log := c.Log
	if log == nil {
		log = zap.NewNop()
	}
	files, err := req.inputs()
	if err != nil {
		return nil, err
	}

	var written []string
	seen := map[string]string{}
	for _, path := range files {
		root := Rootname(path)
		if first, ok := seen[root]; ok {
			log.Info("skipping file with converted rootname", zap.String("path", path), zap.String("converted", first))
			continue
		}
		seen[root] = path

		format, err := DetectFormat(path)
		if err != nil {
			return nil, err
		}
		switch format {
		case FormatSarray:
			log.Info("skipping S-array file", zap.String("path", path))
			continue
		case FormatDataset:
			log.Warn("skipping native dataset file, it cannot be converted to an S-array", zap.String("path", path))
			continue
		}

		s, err := ReadRaw(path, format)
		if err != nil {
			return nil, err
		}
		if len(req.Names) > 0 {
			var missing []string
			if s, missing = s.Filter(req.Names); len(missing) > 0 {
				log.Warn("requested signals not found",
					zap.String("path", path),
					zap.Int("count", len(missing)),
					zap.Strings("names", missing))
			}
		}

		dir := req.OutDir
		if dir == "" {
			dir = filepath.Dir(path)
		}
		out := filepath.Join(dir, root+SarrayExt)
		if err := WriteSarrayFile(out, s); err != nil {
			return nil, fmt.Errorf("error writing %s: %w", out, err)
		}
		log.Info("converted file", zap.String("path", path), zap.String("out", out), zap.Int("signals", len(s)))
		written = append(written, out)
	}
	return written, nil
}

func (r ConvertRequest) inputs() ([]string, error) {
	switch {
	case len(r.Files) > 0 && r.Folder != "":
		return nil, fmt.Errorf("%w: give either files or a folder", ErrInvalidArgument)
	case len(r.Files) > 0:
		return r.Files, nil
	case r.Folder == "":
		return nil, fmt.Errorf("%w: no files to convert", ErrInvalidArgument)
	case r.FileType == "":
		return nil, fmt.Errorf("%w: folder %s given without a file type", ErrInvalidArgument, r.Folder)
	}

	entries, err := os.ReadDir(r.Folder)
	if err != nil {
		return nil, openError(r.Folder, err)
	}
	ext := "." + strings.TrimPrefix(strings.ToLower(r.FileType), ".")
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.ToLower(filepath.Ext(e.Name())) == ext {
			files = append(files, filepath.Join(r.Folder, e.Name()))
		}
	}
	return files, nil
}
