// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/OpenPSG/sigset/internal/config"
	"github.com/OpenPSG/sigset/internal/logger"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "Config file (yaml); environment only when empty")
		namesPath = flag.String("names", "", "Name table, xlsx or yaml (env: SIGSET_NAMES_PATH)")
		level     = flag.String("log-level", "", "Log level (env: SIGSET_LOG_LEVEL)")
	)
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		Usage(os.Stderr)
		os.Exit(2)
	}

	cfg, err := config.Load(*cfgPath, *cfgPath == "")
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}
	if strings.TrimSpace(*namesPath) != "" {
		cfg.Names.Path = strings.TrimSpace(*namesPath)
	}
	if strings.TrimSpace(*level) != "" {
		cfg.Log.Level = strings.TrimSpace(*level)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger error:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := Dispatch(Context{Config: cfg, Log: log}, args); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		_ = log.Sync()
		os.Exit(1)
	}
}
