// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cfg builds control-flow graphs over basic blocks from an
// instruction stream and analyzes them for reachability and loops.
package cfg

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mahesh-attarde/bakasur/asm"
)

// A Block is a basic block: a maximal straight-line instruction run
// with one entry and one exit.
type Block struct {
	// Label names the block. It is the label attached to the block's
	// first instruction, or a synthetic bb_<index> name when the
	// leader is unlabeled.
	Label string

	// Start and End are the inclusive instruction-index range the
	// block covers within its function's stream.
	Start, End int

	// Insts are the block's instructions, in order.
	Insts []asm.Instruction

	// Preds and Succs are the labels of predecessor and successor
	// blocks.
	Preds, Succs map[string]bool

	// Unreachable is set by MarkUnreachable for blocks no path from
	// the entry reaches. It only affects rendering.
	Unreachable bool
}

// IsEntry reports whether the block has no predecessors.
func (b *Block) IsEntry() bool { return len(b.Preds) == 0 }

// IsExit reports whether the block has no successors.
func (b *Block) IsExit() bool { return len(b.Succs) == 0 }

// Terminator returns the last terminator instruction in the block, or
// nil if the block falls through.
func (b *Block) Terminator() *asm.Instruction {
	for i := len(b.Insts) - 1; i >= 0; i-- {
		if b.Insts[i].IsTerminator() {
			return &b.Insts[i]
		}
	}
	return nil
}

// A Graph is the control-flow graph of one function.
type Graph struct {
	// Func is the function name.
	Func string

	// Entry is the label of the entry block.
	Entry string

	// Blocks maps each label to its block.
	Blocks map[string]*Block

	// Order lists the block labels in textual order.
	Order []string
}

// AddEdge records a directed edge between two blocks. Labels that do
// not name a block in the graph are ignored on that side, so the edge
// sets stay closed over the graph's own blocks.
func (g *Graph) AddEdge(from, to string) {
	if b, ok := g.Blocks[from]; ok {
		b.Succs[to] = true
	}
	if b, ok := g.Blocks[to]; ok {
		b.Preds[from] = true
	}
}

// Build segments a function's instruction stream into basic blocks and
// connects them. A new block starts at instruction 0, at any labeled
// instruction, and after any terminator. Unreachable blocks are marked
// before the graph is returned.
func Build(fn string, insts []asm.Instruction) *Graph {
	g := &Graph{Func: fn, Blocks: map[string]*Block{}}
	if len(insts) == 0 {
		return g
	}

	leaders := map[int]bool{0: true}
	for i := range insts {
		if insts[i].Label != "" {
			leaders[i] = true
		}
		if i > 0 && insts[i-1].IsTerminator() {
			leaders[i] = true
		}
	}
	starts := make([]int, 0, len(leaders))
	for i := range leaders {
		starts = append(starts, i)
	}
	sort.Ints(starts)

	for i, start := range starts {
		end := len(insts) - 1
		if i+1 < len(starts) {
			end = starts[i+1] - 1
		}
		label := insts[start].Label
		if label == "" {
			label = "bb_" + strconv.Itoa(start)
		}
		g.Blocks[label] = &Block{
			Label: label,
			Start: start,
			End:   end,
			Insts: insts[start : end+1],
			Preds: map[string]bool{},
			Succs: map[string]bool{},
		}
		g.Order = append(g.Order, label)
	}
	g.Entry = g.Order[0]

	g.buildEdges()
	g.MarkUnreachable()
	return g
}

// buildEdges connects blocks in textual order, driven by each block's
// terminator.
func (g *Graph) buildEdges() {
	for i, label := range g.Order {
		b := g.Blocks[label]
		term := b.Terminator()

		if term == nil {
			if i+1 < len(g.Order) {
				g.AddEdge(label, g.Order[i+1])
			}
			continue
		}
		switch term.Term {
		case asm.TermJump:
			for _, t := range term.Targets {
				if dst := g.findTarget(t); dst != "" {
					g.AddEdge(label, dst)
				}
			}
		case asm.TermCondJump:
			for _, t := range term.Targets {
				if dst := g.findTarget(t); dst != "" {
					g.AddEdge(label, dst)
				}
			}
			if i+1 < len(g.Order) {
				g.AddEdge(label, g.Order[i+1])
			}
		case asm.TermRet:
			// No successors.
		}
	}
}

// findTarget resolves a jump-target label to a block label: exact
// match first, then with any leading local-label dot stripped. An
// unresolvable target yields "", which produces no edge; disassembly
// routinely references targets outside the analyzed range.
func (g *Graph) findTarget(target string) string {
	if _, ok := g.Blocks[target]; ok {
		return target
	}
	t := strings.TrimPrefix(target, ".")
	if _, ok := g.Blocks[t]; ok {
		return t
	}
	return ""
}

// Succs returns a block's successor labels in sorted order.
func (g *Graph) Succs(label string) []string {
	b, ok := g.Blocks[label]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(b.Succs))
	for s := range b.Succs {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

