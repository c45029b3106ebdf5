// SPDX-License-Identifier: MPL-2.0
/*
 * Copyright (C) 2024 Damian Peckett <damian@pecke.tt>.
 *
 * This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/.
 */

package sigset_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/OpenPSG/sigset"
	"github.com/OpenPSG/sigset/names"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// The Sensors group has no Tag name for its third column.
const tableYAML = `
layers:
  - {name: Tag, source: tag, sourcetype: scada}
  - {name: Eng, source: eng}
groups:
  - name: Sensors
    signals:
      - {Tag: WS1, Eng: WindSpeed}
      - {Tag: WD1, Eng: WindDir}
      - {Eng: Power}
  - name: Loads
    signals:
      - {Tag: MX, Eng: BladeRootMx}
overrides:
  scada:
    - {name: WS1, scale: 0.1, units: m/s, description: Hub wind speed}
    - {name: WD1, offset: -180}
  logger: []
`

func loadTable(t *testing.T) *names.Table {
	t.Helper()
	tbl, err := names.LoadYAML(strings.NewReader(tableYAML))
	require.NoError(t, err)
	return tbl
}

// observed returns a logger recording every entry at Info and above.
func observed() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return zap.New(core), logs
}

// warnings returns the Warn entries with the given message.
func warnings(logs *observer.ObservedLogs, msg string) []observer.LoggedEntry {
	return logs.FilterLevelExact(zapcore.WarnLevel).FilterMessage(msg).All()
}

// writeFile writes content to dir/name and returns the path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// dataset returns a valid two-group dataset with the given time base.
func dataset(t []float64) sigset.Dataset {
	layers := []string{"Tag", "Eng"}
	sensors := sigset.NewSignalGroup(layers, len(t))
	loads := sigset.NewSignalGroup(layers, len(t))
	a, b, c := make([]float64, len(t)), make([]float64, len(t)), make([]float64, len(t))
	for i := range t {
		a[i], b[i], c[i] = float64(i), 10*float64(i), -float64(i)
	}
	sensors.Append(map[string]string{"Tag": "WS1", "Eng": "WindSpeed"}, a, "m/s", "Hub wind speed")
	sensors.Append(map[string]string{"Tag": "WD1", "Eng": "WindDir"}, b, "deg", "")
	loads.Append(map[string]string{"Tag": "MX", "Eng": "BladeRootMx"}, c, "kNm", "")
	return sigset.Dataset{
		CaseName: "case",
		Source:   "tag",
		Time:     sigset.NewTimeGroup(layers, t, sigset.Float64, "s"),
		Groups: []sigset.Group{
			{Name: "Sensors", Signals: sensors},
			{Name: "Loads", Signals: loads},
		},
	}
}

func seconds(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = float64(i)
	}
	return t
}
