// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenPSG/sigset/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sigset.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
names:
  path: names.xlsx
build:
  groups: [Sensors, Loads]
  layers: [Tag]
  ts: 0.5
convert:
  out_dir: out
`), 0o644))

	cfg, err := config.Load(path, false)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Encoding)
	assert.Equal(t, "names.xlsx", cfg.Names.Path)
	assert.Equal(t, []string{"Sensors", "Loads"}, cfg.Build.Groups)
	assert.Equal(t, []string{"Tag"}, cfg.Build.Layers)
	assert.Equal(t, 0.5, cfg.Build.TS)
	assert.Equal(t, "csv", cfg.Convert.FileType)
	assert.Equal(t, "out", cfg.Convert.OutDir)
}

func TestLoadEnvOnly(t *testing.T) {
	t.Setenv("SIGSET_NAMES_PATH", "/etc/sigset/names.yaml")
	t.Setenv("SIGSET_EXTRACT_SOURCETYPE", "scada")

	cfg, err := config.Load("", true)
	require.NoError(t, err)
	assert.Equal(t, "/etc/sigset/names.yaml", cfg.Names.Path)
	assert.Equal(t, "scada", cfg.Extract.SourceType)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	assert.Error(t, err)
}
