// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dot renders control-flow and data-flow graphs to Graphviz
// DOT and to plain-text reports.
package dot

import (
	"fmt"
	"io"
	"strings"

	"github.com/mahesh-attarde/bakasur/cfg"
)

// WriteCFG renders a control-flow graph as a DOT digraph. Blocks are
// boxes listing their instructions; the entry block is green, exit
// blocks are red, unreachable blocks grey and dashed, and back edges
// are drawn red so loops stand out.
func WriteCFG(w io.Writer, g *cfg.Graph) error {
	back := map[cfg.Edge]bool{}
	for _, e := range g.BackEdges() {
		back[e] = true
	}

	var b strings.Builder
	fmt.Fprintf(&b, "digraph %q {\n", g.Func)
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, fontname=\"Consolas\", fontsize=10, margin=0.1, labeljust=l];\n")
	b.WriteString("  edge [fontname=\"Arial\", fontsize=9];\n\n")

	for _, label := range g.Order {
		blk := g.Blocks[label]
		fmt.Fprintf(&b, "  %q [label=%s, %s];\n",
			label, quote(blockLabel(blk)), blockStyle(g, blk))
	}
	b.WriteString("\n")

	for _, label := range g.Order {
		for _, succ := range g.Succs(label) {
			if back[cfg.Edge{From: label, To: succ}] {
				fmt.Fprintf(&b, "  %q -> %q [color=red, penwidth=2.5, style=bold];\n", label, succ)
			} else {
				fmt.Fprintf(&b, "  %q -> %q;\n", label, succ)
			}
		}
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// quote wraps s in DOT double quotes, escaping embedded quotes but
// leaving backslash sequences like \l for Graphviz to interpret.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func blockLabel(blk *cfg.Block) string {
	var lines []string
	title := "[" + blk.Label + "]"
	switch {
	case blk.Unreachable:
		title += " UNREACHABLE"
	case blk.IsEntry():
		title += " ENTRY"
	case blk.IsExit():
		title += " EXIT"
	}
	lines = append(lines, title)
	for i := range blk.Insts {
		lines = append(lines, blk.Insts[i].String())
	}
	return strings.Join(lines, "\\l") + "\\l"
}

func blockStyle(g *cfg.Graph, blk *cfg.Block) string {
	switch {
	case blk.Unreachable:
		return `style="filled,dashed", fillcolor=lightgrey, color=grey`
	case blk.Label == g.Entry || blk.IsEntry():
		return `style="filled,bold", fillcolor=lightgreen, color=darkgreen`
	case blk.IsExit():
		return `style="filled,bold", fillcolor=lightcoral, color=darkred`
	}
	return "style=filled, fillcolor=white, color=black"
}
