// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dfg finds data dependencies between the instructions of a
// basic block.
//
// Dependencies are the three hazard classes between two accesses to
// the same resource: read-after-write, write-after-read and
// write-after-write. A resource is a canonical register name or a
// memory location identified by its address-expression text. Memory
// aliasing is purely syntactic: two memory operands are the same
// resource iff their normalized address text is identical, so [rax]
// and [rax + 0] are unrelated. That never reports a dependency that
// does not exist, at the cost of missing some that do.
package dfg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mahesh-attarde/bakasur/arch"
	"github.com/mahesh-attarde/bakasur/asm"
)

// DepKind is the hazard class of a dependency.
type DepKind uint8

const (
	// RAW is read-after-write: the target reads what the source
	// wrote.
	RAW DepKind = iota

	// WAR is write-after-read: the target overwrites what the source
	// read.
	WAR

	// WAW is write-after-write: the target overwrites what the
	// source wrote.
	WAW
)

func (k DepKind) String() string {
	switch k {
	case RAW:
		return "RAW"
	case WAR:
		return "WAR"
	case WAW:
		return "WAW"
	}
	return "unknown"
}

// OperandClass distinguishes register resources from memory resources.
type OperandClass uint8

const (
	Register OperandClass = iota
	Memory
)

func (c OperandClass) String() string {
	if c == Memory {
		return "memory"
	}
	return "register"
}

// A Dependency is one hazard between two instructions of a block,
// identified by their indexes within the analyzed stream. Source is
// always less than Target.
type Dependency struct {
	Source   int
	Target   int
	Resource string
	Kind     DepKind
	Class    OperandClass
}

func (d Dependency) String() string {
	return fmt.Sprintf("%d -> %d %s on %s", d.Source, d.Target, d.Kind, d.Resource)
}

// FilterKind returns the dependencies of the given kind, in order.
func FilterKind(deps []Dependency, kind DepKind) []Dependency {
	var out []Dependency
	for _, d := range deps {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

// FilterClass returns the dependencies on the given operand class, in
// order.
func FilterClass(deps []Dependency, class OperandClass) []Dependency {
	var out []Dependency
	for _, d := range deps {
		if d.Class == class {
			out = append(out, d)
		}
	}
	return out
}

// An Analyzer derives instruction effects and dependencies for one
// architecture. It holds no mutable state, so a single Analyzer is
// safe for concurrent use across blocks.
type Analyzer struct {
	arch *arch.Arch
}

// New returns an Analyzer for the given architecture.
func New(a *arch.Arch) *Analyzer {
	return &Analyzer{arch: a}
}

// Arch returns the architecture the analyzer was built for.
func (a *Analyzer) Arch() *arch.Arch {
	return a.arch
}

// classOf classifies a resource key: memory keys carry brackets,
// register names never do.
func classOf(resource string) OperandClass {
	if strings.Contains(resource, "[") && strings.Contains(resource, "]") {
		return Memory
	}
	return Register
}

// Dependencies finds all RAW, WAR and WAW dependencies between the
// instructions of one block, in instruction order.
//
// A last-writer map drives the search: a read of a resource depends on
// its last writer (RAW); a write depends on every read since that
// writer (WAR) and on the writer itself (WAW), and then becomes the
// last writer. Resources within one instruction are visited in sorted
// order, so output is deterministic.
func (a *Analyzer) Dependencies(insts []asm.Instruction) []Dependency {
	effects := make([]Effects, len(insts))
	for i := range insts {
		effects[i] = a.InstructionEffects(&insts[i])
	}

	var deps []Dependency
	lastWriter := map[string]int{}

	for i := range insts {
		for _, resource := range sorted(effects[i].Reads) {
			if w, ok := lastWriter[resource]; ok {
				deps = append(deps, Dependency{
					Source:   w,
					Target:   i,
					Resource: resource,
					Kind:     RAW,
					Class:    classOf(resource),
				})
			}
		}

		for _, resource := range sorted(effects[i].Writes) {
			w, written := lastWriter[resource]
			if !written {
				w = -1
			}
			for j := 0; j < i; j++ {
				if effects[j].Reads[resource] && j > w {
					deps = append(deps, Dependency{
						Source:   j,
						Target:   i,
						Resource: resource,
						Kind:     WAR,
						Class:    classOf(resource),
					})
				}
			}
			if written {
				deps = append(deps, Dependency{
					Source:   w,
					Target:   i,
					Resource: resource,
					Kind:     WAW,
					Class:    classOf(resource),
				})
			}
			lastWriter[resource] = i
		}
	}
	return deps
}

func sorted(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
