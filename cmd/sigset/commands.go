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
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenPSG/sigset"
	"github.com/OpenPSG/sigset/internal/config"
	"github.com/OpenPSG/sigset/names"
	"go.uber.org/zap"
)

type Context struct {
	Config config.Config
	Log    *zap.Logger
}

func Usage(w io.Writer) {
	fmt.Fprint(w, `sigset [global flags] <command> [flags] [files...]

Global Flags:
  -config       Config file (yaml)
  -names        Name table, xlsx or yaml (env: SIGSET_NAMES_PATH)
  -log-level    debug|info|warn|error (env: SIGSET_LOG_LEVEL)

Commands:
  build     build one dataset from files: -case NAME [-out FILE] [-groups G,..] [-layers L,..] [-source S] [-ts DT] [-nowarn]
  convert   convert raw files to S-array files: [-folder DIR -type EXT] [-signals N,..] [-out DIR] [files...]
  inspect   load a file and report its structure: [-sourcetype ST] [-ts DT] FILE
`)
}

func Dispatch(ctx Context, args []string) error {
	if len(args) == 0 {
		Usage(os.Stderr)
		return errors.New("missing command")
	}
	switch args[0] {
	case "build":
		return buildCmd(ctx, args[1:])
	case "convert":
		return convertCmd(ctx, args[1:])
	case "inspect":
		return inspectCmd(ctx, args[1:])
	case "help", "-h", "--help":
		Usage(os.Stdout)
		return nil
	default:
		Usage(os.Stderr)
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

func buildCmd(ctx Context, args []string) error {
	bc := ctx.Config.Build
	fs := flag.NewFlagSet("sigset build", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	caseName := fs.String("case", "", "case name")
	out := fs.String("out", "", "output file (default <case>"+sigset.DatasetExt+")")
	groups := fs.String("groups", strings.Join(bc.Groups, ","), "comma separated groups")
	layers := fs.String("layers", strings.Join(bc.Layers, ","), "comma separated layers")
	source := fs.String("source", bc.Source, "primary layer or source string")
	ts := fs.Float64("ts", bc.TS, "resample to this sample time (0 keeps the grid)")
	nowarn := fs.Bool("nowarn", bc.NoWarn, "suppress unmatched name warnings")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if strings.TrimSpace(*caseName) == "" {
		return errors.New("-case required")
	}
	if fs.NArg() == 0 {
		return errors.New("usage: sigset build -case NAME [flags] files...")
	}
	table, err := loadNames(ctx.Config.Names.Path)
	if err != nil {
		return err
	}
	if table == nil {
		return errors.New("a name table is required, set -names or names.path")
	}

	b := sigset.Builder{Names: table, Log: ctx.Log}
	d, err := b.Build(sigset.BuildRequest{
		CaseName:  *caseName,
		PathNames: fs.Args(),
		Groups:    splitList(*groups),
		Layers:    splitList(*layers),
		Source:    *source,
		TS:        *ts,
		NoWarn:    *nowarn,
	})
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = *caseName + sigset.DatasetExt
	}
	if err := sigset.WriteDatasetFile(path, d); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s: %d rows, groups %s\n", path, d.Rows(), strings.Join(d.GroupNames(), ", "))
	return nil
}

func convertCmd(ctx Context, args []string) error {
	cc := ctx.Config.Convert
	fs := flag.NewFlagSet("sigset convert", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	folder := fs.String("folder", "", "convert every file of -type in this folder")
	fileType := fs.String("type", cc.FileType, "file extension used with -folder")
	signals := fs.String("signals", strings.Join(cc.Names, ","), "comma separated signals to keep")
	outDir := fs.String("out", cc.OutDir, "output directory (default alongside each input)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := sigset.ConvertRequest{Files: fs.Args(), Names: splitList(*signals), OutDir: *outDir}
	if *folder != "" {
		req.Folder, req.FileType = *folder, *fileType
	}
	c := sigset.Converter{Log: ctx.Log}
	written, err := c.Convert(req)
	if err != nil {
		return err
	}
	for _, p := range written {
		fmt.Fprintln(os.Stdout, p)
	}
	return nil
}

func inspectCmd(ctx Context, args []string) error {
	ec := ctx.Config.Extract
	fs := flag.NewFlagSet("sigset inspect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	sourcetype := fs.String("sourcetype", ec.SourceType, "source type whose override rules apply")
	ts := fs.Float64("ts", ec.TS, "resample to this sample time (0 keeps the grid)")
	nowarn := fs.Bool("nowarn", ec.NoWarn, "suppress unmatched name warnings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sigset inspect [flags] FILE")
	}

	table, err := loadNames(ctx.Config.Names.Path)
	if err != nil {
		return err
	}
	e := sigset.Extractor{Names: table, Log: ctx.Log}
	d, err := e.Extract(fs.Arg(0), sigset.ExtractOptions{SourceType: *sourcetype, TS: *ts, NoWarn: *nowarn})
	if err != nil {
		return err
	}
	sigset.Report(ctx.Log, fs.Arg(0), sigset.ValidateDataset(d))

	w := os.Stdout
	fmt.Fprintf(w, "case:       %s\n", d.CaseName)
	fmt.Fprintf(w, "source:     %s\n", d.Source)
	fmt.Fprintf(w, "sourcetype: %s\n", d.SourceType)
	fmt.Fprintf(w, "time:       %d rows, %s in %q\n", d.Rows(), d.Time.Values.Class, d.Time.Units[0])
	for _, g := range d.Groups {
		fmt.Fprintf(w, "group %s: %d signals\n", g.Name, g.Signals.Len())
		for c := 0; c < g.Signals.Len(); c++ {
			var parts []string
			for _, l := range g.Signals.Layers {
				parts = append(parts, l+"="+g.Signals.Name(l, c))
			}
			fmt.Fprintf(w, "  %s [%s]\n", strings.Join(parts, " "), g.Signals.Units[c])
		}
	}
	return nil
}

func loadNames(path string) (*names.Table, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return names.LoadYAML(f)
	default:
		return names.LoadWorkbook(path)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
