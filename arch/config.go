// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// configFile is the YAML schema for an external architecture table.
//
// Example:
//
//	architecture: m68k
//	description: Motorola 68000
//	syntax: motorola
//	memory_style: paren
//	registers:
//	  data: [d0, d1, d2, d3]
//	  address: [a0, a1, a2, a3]
//	register_aliases:
//	  d0: [d0.w, d0.b]
//	instruction_categories:
//	  read_write: [move, add]
//	  read_only: [cmp, tst]
//	  jump: [bra, beq, bne, rts]
//	  read_modify_write: [add]
//	  address_only: [lea]
//	  mask_defining: []
//	mask_registers: []
type configFile struct {
	Architecture string              `yaml:"architecture"`
	Description  string              `yaml:"description"`
	Syntax       string              `yaml:"syntax"`
	MemoryStyle  string              `yaml:"memory_style"`
	Registers    map[string][]string `yaml:"registers"`
	Aliases      map[string][]string `yaml:"register_aliases"`
	Categories   struct {
		ReadWrite       []string `yaml:"read_write"`
		ReadOnly        []string `yaml:"read_only"`
		Jump            []string `yaml:"jump"`
		ReadModifyWrite []string `yaml:"read_modify_write"`
		AddressOnly     []string `yaml:"address_only"`
		MaskDefining    []string `yaml:"mask_defining"`
	} `yaml:"instruction_categories"`
	MaskRegisters []string `yaml:"mask_registers"`
}

// LoadFile loads an architecture table from a YAML file. The returned
// Arch is immutable by convention; callers must not modify it after
// handing it to an analyzer.
func LoadFile(path string) (*Arch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading architecture config: %w", err)
	}
	a, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("architecture config %s: %w", path, err)
	}
	return a, nil
}

// Parse builds an Arch from YAML text.
func Parse(data []byte) (*Arch, error) {
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	if cf.Architecture == "" {
		return nil, fmt.Errorf("missing architecture name")
	}

	var style MemoryStyle
	switch cf.MemoryStyle {
	case "", "bracket":
		style = MemBracket
	case "paren":
		style = MemParen
	default:
		return nil, fmt.Errorf("unknown memory_style %q", cf.MemoryStyle)
	}

	t := newTable()
	for _, regs := range cf.Registers {
		for _, r := range regs {
			t.regs[strings.ToLower(r)] = true
		}
	}
	for base, aliases := range cf.Aliases {
		t.family(strings.ToLower(base), lowerAll(aliases)...)
	}

	return &Arch{
		Name:            cf.Architecture,
		Description:     cf.Description,
		Syntax:          cf.Syntax,
		MemoryStyle:     style,
		Registers:       t.regs,
		Aliases:         t.aliases,
		MaskRegisters:   set(lowerAll(cf.MaskRegisters)...),
		ReadWrite:       set(lowerAll(cf.Categories.ReadWrite)...),
		ReadOnly:        set(lowerAll(cf.Categories.ReadOnly)...),
		Jump:            set(lowerAll(cf.Categories.Jump)...),
		ReadModifyWrite: set(lowerAll(cf.Categories.ReadModifyWrite)...),
		AddressOnly:     set(lowerAll(cf.Categories.AddressOnly)...),
		MaskDefining:    lowerAll(cf.Categories.MaskDefining),
	}, nil
}

func lowerAll(s []string) []string {
	out := make([]string, len(s))
	for i, w := range s {
		out[i] = strings.ToLower(w)
	}
	return out
}
