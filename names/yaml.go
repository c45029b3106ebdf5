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
	"io"

	"gopkg.in/yaml.v3"
)

type yamlTable struct {
	Layers []struct {
		Name       string `yaml:"name"`
		Source     string `yaml:"source"`
		SourceType string `yaml:"sourcetype"`
	} `yaml:"layers"`
	Groups []struct {
		Name    string              `yaml:"name"`
		Signals []map[string]string `yaml:"signals"`
	} `yaml:"groups"`
	Overrides map[string][]struct {
		Name        string   `yaml:"name"`
		Scale       *float64 `yaml:"scale"`
		Offset      float64  `yaml:"offset"`
		Units       string   `yaml:"units"`
		Description string   `yaml:"description"`
	} `yaml:"overrides"`
}

// LoadYAML reads a table from its YAML form:
//
//	layers:
//	  - {name: Tag, source: tag, sourcetype: scada}
//	groups:
//	  - name: Sensors
//	    signals:
//	      - {Tag: WS1, Eng: WindSpeed}
//	overrides:
//	  scada:
//	    - {name: WS1, scale: 0.1, units: m/s}
func LoadYAML(r io.Reader) (*Table, error) {
	var doc yamlTable
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}

	layers := make([]Layer, 0, len(doc.Layers))
	for _, l := range doc.Layers {
		layers = append(layers, Layer{Name: l.Name, Source: l.Source, SourceType: l.SourceType})
	}

	groups := make([]Group, 0, len(doc.Groups))
	for _, g := range doc.Groups {
		group := Group{Name: g.Name, Names: map[string][]string{}}
		for _, l := range layers {
			group.Names[l.Name] = make([]string, len(g.Signals))
		}
		for col, sig := range g.Signals {
			for layer, name := range sig {
				list, ok := group.Names[layer]
				if !ok {
					return nil, fmt.Errorf("%w: group %q uses undeclared layer %q", ErrMalformedTable, g.Name, layer)
				}
				list[col] = name
			}
		}
		groups = append(groups, group)
	}

	overrides := make(map[string][]Override, len(doc.Overrides))
	for st, rules := range doc.Overrides {
		overrides[st] = make([]Override, 0, len(rules))
		for _, o := range rules {
			scale := 1.0
			if o.Scale != nil {
				scale = *o.Scale
			}
			overrides[st] = append(overrides[st], Override{
				Name:        o.Name,
				Scale:       scale,
				Offset:      o.Offset,
				Units:       o.Units,
				Description: o.Description,
			})
		}
	}

	return New(layers, groups, overrides)
}
