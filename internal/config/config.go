// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Names   NamesConfig   `mapstructure:"names"`
	Build   BuildConfig   `mapstructure:"build"`
	Extract ExtractConfig `mapstructure:"extract"`
	Convert ConvertConfig `mapstructure:"convert"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

// NamesConfig locates the name table, an xlsx workbook or a YAML document.
type NamesConfig struct {
	Path string `mapstructure:"path"`
}

type BuildConfig struct {
	Groups []string `mapstructure:"groups"`
	Layers []string `mapstructure:"layers"`
	Source string   `mapstructure:"source"`
	TS     float64  `mapstructure:"ts"`
	NoWarn bool     `mapstructure:"nowarn"`
}

type ExtractConfig struct {
	SourceType string  `mapstructure:"sourcetype"`
	TS         float64 `mapstructure:"ts"`
	NoWarn     bool    `mapstructure:"nowarn"`
}

type ConvertConfig struct {
	FileType string   `mapstructure:"file_type"`
	Names    []string `mapstructure:"names"`
	OutDir   string   `mapstructure:"out_dir"`
}

// Load reads the YAML file at path, unless envOnly is set, and applies
// SIGSET_ prefixed environment overrides (SIGSET_NAMES_PATH and so on).
func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SIGSET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", false)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", true)
	v.SetDefault("log.disable_stacktrace", true)
	v.SetDefault("names.path", "")
	v.SetDefault("build.groups", []string{})
	v.SetDefault("build.layers", []string{})
	v.SetDefault("build.source", "")
	v.SetDefault("build.ts", 0)
	v.SetDefault("build.nowarn", false)
	v.SetDefault("extract.sourcetype", "")
	v.SetDefault("extract.ts", 0)
	v.SetDefault("extract.nowarn", false)
	v.SetDefault("convert.file_type", "csv")
	v.SetDefault("convert.names", []string{})
	v.SetDefault("convert.out_dir", "")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
