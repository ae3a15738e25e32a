// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package arch provides descriptions of CPU architectures for
// control-flow and data-flow analysis.
//
// An architecture is pure data: the set of register spellings, the
// mapping from each spelling to the canonical register that names the
// full physical storage it overlaps, and the categorization of opcodes
// that drives read/write effect derivation. The analyzers contain no
// per-architecture code; adding an architecture means supplying a new
// table, either built in or loaded from a YAML file.
package arch

import (
	"fmt"
	"sort"
	"strings"
)

// MemoryStyle describes how an architecture spells memory operands.
type MemoryStyle int

const (
	// MemBracket is bracket-delimited addressing, e.g.
	// [rax + rbx*2 + 8] on x86 or [x0, #8] on AArch64.
	MemBracket MemoryStyle = iota

	// MemParen is displacement(base) addressing, e.g. 8(sp) on RISC-V.
	MemParen
)

// An Arch describes one instruction set to the analyzers.
//
// An Arch must be fully constructed before analysis begins and never
// mutated afterward. All analyzer entry points take it by pointer and
// only read it, so a single Arch is safe for concurrent use.
type Arch struct {
	// Name identifies the architecture, e.g. "x86_64".
	Name string

	// Description is a human-readable summary for CLI listings.
	Description string

	// Syntax is the assembly syntax the tables are written for,
	// e.g. "intel".
	Syntax string

	// MemoryStyle is how memory operands are spelled.
	MemoryStyle MemoryStyle

	// Registers is every concrete register spelling, including all
	// sub-register and vector-register aliases.
	Registers map[string]bool

	// Aliases maps a register spelling to its canonical base
	// register. Spellings absent from the map are their own base.
	// Two spellings name overlapping storage iff they map to the
	// same base.
	Aliases map[string]string

	// MaskRegisters is the subset of Registers usable as a
	// predicate/mask suffix on an operand, e.g. x86 k0..k7.
	MaskRegisters map[string]bool

	// Opcode categories. Opcodes appearing in none of them are
	// treated as having no reads, writes or memory effect.
	ReadWrite       map[string]bool // first operand written, rest read
	ReadOnly        map[string]bool // all operands read (cmp/test family)
	Jump            map[string]bool // control transfer, operands read
	ReadModifyWrite map[string]bool // subset of ReadWrite: dest also read
	AddressOnly     map[string]bool // lea family: no memory access

	// MaskDefining lists opcode prefixes of instructions whose
	// first operand is a written mask register, e.g. "kmov" or
	// "vpcmp". Matching is by prefix against the full opcode.
	MaskDefining []string
}

// CanonReg returns the canonical base register for a register
// spelling. The lookup case-folds first; unknown spellings pass
// through unchanged, so analysis degrades gracefully on registers the
// table does not know. CanonReg is idempotent.
func (a *Arch) CanonReg(name string) string {
	name = strings.ToLower(name)
	if base, ok := a.Aliases[name]; ok {
		return base
	}
	return name
}

// IsRegister reports whether tok spells a register of a.
func (a *Arch) IsRegister(tok string) bool {
	return a.Registers[strings.ToLower(tok)]
}

// IsMaskRegister reports whether tok spells a predicate/mask register.
func (a *Arch) IsMaskRegister(tok string) bool {
	return a.MaskRegisters[strings.ToLower(tok)]
}

// IsMaskDefining reports whether opcode defines a mask register as its
// destination, by prefix match against the MaskDefining table.
func (a *Arch) IsMaskDefining(opcode string) bool {
	for _, p := range a.MaskDefining {
		if strings.HasPrefix(opcode, p) {
			return true
		}
	}
	return false
}

// String returns the architecture name.
func (a *Arch) String() string {
	if a == nil {
		return "<nil>"
	}
	return a.Name
}

var registry = map[string]*Arch{}

func register(a *Arch) {
	registry[a.Name] = a
}

// Load returns the built-in architecture with the given name.
func Load(name string) (*Arch, error) {
	if a, ok := registry[name]; ok {
		return a, nil
	}
	return nil, fmt.Errorf("unknown architecture %q (available: %s)",
		name, strings.Join(Names(), ", "))
}

// Names returns the names of all built-in architectures, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// set builds a string set from words.
func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
