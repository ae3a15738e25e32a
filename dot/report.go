// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dot

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mahesh-attarde/bakasur/asm"
	"github.com/mahesh-attarde/bakasur/cfg"
	"github.com/mahesh-attarde/bakasur/dfg"
)

// CFGSummary writes a plain-text overview of a control-flow graph:
// block counts, loop information and the per-block edge lists.
func CFGSummary(w io.Writer, g *cfg.Graph) {
	fmt.Fprintf(w, "Function: %s\n", g.Func)
	fmt.Fprintf(w, "Entry Block: %s\n", g.Entry)
	fmt.Fprintf(w, "Total Blocks: %d\n", len(g.Blocks))

	var exits, unreachable int
	for _, blk := range g.Blocks {
		if blk.IsExit() {
			exits++
		}
		if blk.Unreachable {
			unreachable++
		}
	}
	fmt.Fprintf(w, "Exit Blocks: %d\n", exits)
	fmt.Fprintf(w, "Unreachable Blocks: %d\n", unreachable)

	backEdges := g.BackEdges()
	loops := g.Loops()
	fmt.Fprintf(w, "Back Edges: %d\n", len(backEdges))
	for _, e := range backEdges {
		fmt.Fprintf(w, "  %s -> %s\n", e.From, e.To)
	}
	fmt.Fprintf(w, "Loops: %d\n", len(loops))
	for i, loop := range loops {
		fmt.Fprintf(w, "  Loop %d: {%s}\n", i+1, strings.Join(sortedLabels(loop), ", "))
	}

	fmt.Fprintln(w, "\nBasic Blocks:")
	for _, label := range g.Order {
		blk := g.Blocks[label]
		marker := ""
		if blk.Unreachable {
			marker = " [UNREACHABLE]"
		}
		fmt.Fprintf(w, "  %s: instructions %d-%d%s\n", label, blk.Start, blk.End, marker)
		if term := blk.Terminator(); term != nil {
			fmt.Fprintf(w, "    terminator: %s\n", term.Opcode)
		}
		fmt.Fprintf(w, "    successors: %s\n", strings.Join(g.Succs(label), ", "))
	}
}

// CFGDetailed writes the full per-block instruction listing in
// addition to everything CFGSummary reports.
func CFGDetailed(w io.Writer, g *cfg.Graph) {
	CFGSummary(w, g)
	fmt.Fprintln(w)
	for _, label := range g.Order {
		blk := g.Blocks[label]
		fmt.Fprintf(w, "Basic Block: %s\n", label)
		for i := range blk.Insts {
			marker := "  "
			if blk.Insts[i].IsTerminator() {
				marker = " *"
			}
			fmt.Fprintf(w, "  %3d%s %s\n", blk.Start+i, marker, blk.Insts[i].String())
			if t := blk.Insts[i].Targets; len(t) > 0 {
				fmt.Fprintf(w, "        -> %s\n", strings.Join(t, ", "))
			}
		}
	}
}

// DFGReport writes a plain-text listing of a block's instructions and
// the dependencies between them.
func DFGReport(w io.Writer, insts []asm.Instruction, deps []dfg.Dependency) {
	fmt.Fprintf(w, "Instructions: %d\n", len(insts))
	for i := range insts {
		fmt.Fprintf(w, "  %3d  %s\n", i, insts[i].String())
	}
	fmt.Fprintf(w, "Dependencies: %d\n", len(deps))
	for _, d := range deps {
		fmt.Fprintf(w, "  %3d -> %-3d  %-3s  %-8s  %s\n",
			d.Source, d.Target, d.Kind, d.Class, d.Resource)
	}
}

func sortedLabels(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
