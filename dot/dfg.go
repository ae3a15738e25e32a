// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dot

import (
	"fmt"
	"io"
	"strings"

	"github.com/mahesh-attarde/bakasur/asm"
	"github.com/mahesh-attarde/bakasur/dfg"
)

// WriteDFG renders a block's data dependencies as a DOT digraph. Each
// instruction is a node; edges are labeled with the contested resource
// and hazard kind, colored per kind, and dashed for memory resources.
func WriteDFG(w io.Writer, insts []asm.Instruction, deps []dfg.Dependency) error {
	var b strings.Builder
	b.WriteString("digraph dfg {\n")
	b.WriteString("  rankdir=TB;\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Courier\", fillcolor=white];\n\n")

	for i := range insts {
		fmt.Fprintf(&b, "  %d [label=%s];\n", i,
			quote(fmt.Sprintf("%d: %s", i, insts[i].String())))
	}
	b.WriteString("\n")

	for _, d := range deps {
		attrs := []string{
			"label=" + quote(fmt.Sprintf("%s\\n%s", d.Resource, d.Kind)),
			"color=" + kindColor(d.Kind),
		}
		if d.Class == dfg.Memory {
			attrs = append(attrs, "style=dashed")
		}
		fmt.Fprintf(&b, "  %d -> %d [%s];\n", d.Source, d.Target, strings.Join(attrs, ", "))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func kindColor(k dfg.DepKind) string {
	switch k {
	case dfg.RAW:
		return "red"
	case dfg.WAR:
		return "blue"
	case dfg.WAW:
		return "darkgreen"
	}
	return "black"
}
