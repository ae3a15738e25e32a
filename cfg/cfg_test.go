// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cfg

import (
	"reflect"
	"testing"

	"github.com/mahesh-attarde/bakasur/asm"
)

func build(t *testing.T, src string) *Graph {
	t.Helper()
	return Build("test", asm.Tokenize(src, asm.Intel))
}

func checkSuccs(t *testing.T, g *Graph, label string, want ...string) {
	t.Helper()
	got := g.Succs(label)
	if len(want) == 0 {
		want = nil
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("successors of %s = %v, want %v", label, got, want)
	}
}

func TestBuildSegmentation(t *testing.T) {
	g := build(t, `
f:
	mov eax, 0
.L1:
	add eax, 1
	cmp eax, 10
	jl .L1
	ret
`)
	if want := []string{"f", "L1", "bb_4"}; !reflect.DeepEqual(g.Order, want) {
		t.Fatalf("block order = %v, want %v", g.Order, want)
	}
	if g.Entry != "f" {
		t.Errorf("entry = %q, want %q", g.Entry, "f")
	}

	// Ranges are contiguous and cover the stream.
	check := func(label string, start, end int) {
		t.Helper()
		b := g.Blocks[label]
		if b.Start != start || b.End != end {
			t.Errorf("%s range = [%d,%d], want [%d,%d]", label, b.Start, b.End, start, end)
		}
		if len(b.Insts) != end-start+1 {
			t.Errorf("%s has %d instructions, want %d", label, len(b.Insts), end-start+1)
		}
	}
	check("f", 0, 0)
	check("L1", 1, 3)
	check("bb_4", 4, 4)
}

func TestEdgeRules(t *testing.T) {
	g := build(t, `
f:
	mov eax, 0
cond:
	cmp eax, 10
	jl body
	jmp done
body:
	add eax, 1
	jmp cond
done:
	ret
`)
	// Fallthrough block: exactly the next textual block.
	checkSuccs(t, g, "f", "cond")
	// Conditional jump: target plus fallthrough.
	checkSuccs(t, g, "cond", "bb_3", "body")
	// Unconditional jump: targets only.
	checkSuccs(t, g, "bb_3", "done")
	checkSuccs(t, g, "body", "cond")
	// Return: no successors.
	checkSuccs(t, g, "done")

	// Edges are symmetric.
	if !g.Blocks["cond"].Preds["body"] || !g.Blocks["cond"].Preds["f"] {
		t.Errorf("preds of cond = %v, want body and f", g.Blocks["cond"].Preds)
	}
	if !g.Blocks["done"].IsExit() {
		t.Error("done is not an exit block")
	}
	if !g.Blocks["f"].IsEntry() {
		t.Error("f is not an entry block")
	}
}

func TestUnresolvedTarget(t *testing.T) {
	g := build(t, `
f:
	jmp elsewhere
`)
	// The target is outside the analyzed range: no edge, no error.
	checkSuccs(t, g, "f")
}

func TestUnreachable(t *testing.T) {
	g := build(t, `
f:
	ret
dead:
	mov eax, 1
	ret
`)
	if g.Blocks["f"].Unreachable {
		t.Error("entry block marked unreachable")
	}
	if !g.Blocks["dead"].Unreachable {
		t.Error("dead block not marked unreachable")
	}
}

func TestBackEdges(t *testing.T) {
	g := build(t, `
A:
	mov eax, 0
B:
	add eax, 1
	jnz A
	ret
`)
	want := []Edge{{"B", "A"}}
	if got := g.BackEdges(); !reflect.DeepEqual(got, want) {
		t.Errorf("BackEdges() = %v, want %v", got, want)
	}

	loops := g.Loops()
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	if want := map[string]bool{"A": true, "B": true}; !reflect.DeepEqual(loops[0], want) {
		t.Errorf("loop = %v, want %v", loops[0], want)
	}
}

func TestSelfLoop(t *testing.T) {
	g := build(t, `
L:
	dec eax
	jnz L
	ret
`)
	want := []Edge{{"L", "L"}}
	if got := g.BackEdges(); !reflect.DeepEqual(got, want) {
		t.Errorf("BackEdges() = %v, want %v", got, want)
	}
	loops := g.Loops()
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	if want := map[string]bool{"L": true}; !reflect.DeepEqual(loops[0], want) {
		t.Errorf("loop = %v, want %v", loops[0], want)
	}
}

func TestBackEdgesUnreachableComponent(t *testing.T) {
	g := build(t, `
f:
	ret
X:
	nop
Y:
	jmp X
`)
	// The X-Y cycle is unreachable from the entry but its back edge is
	// still reported.
	want := []Edge{{"Y", "X"}}
	if got := g.BackEdges(); !reflect.DeepEqual(got, want) {
		t.Errorf("BackEdges() = %v, want %v", got, want)
	}
}

func TestEmptyAndSingleBlock(t *testing.T) {
	g := Build("empty", nil)
	if len(g.Blocks) != 0 || len(g.BackEdges()) != 0 || len(g.Loops()) != 0 {
		t.Errorf("empty graph: blocks %d, back edges %d, loops %d, all want 0",
			len(g.Blocks), len(g.BackEdges()), len(g.Loops()))
	}

	g = build(t, "f:\n\tmov eax, 0\n\tret\n")
	if len(g.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(g.Blocks))
	}
	if len(g.BackEdges()) != 0 || len(g.Loops()) != 0 {
		t.Errorf("straight-line function reported loops")
	}
}

func TestTerminator(t *testing.T) {
	g := build(t, `
f:
	mov eax, 0
	jmp f
`)
	term := g.Blocks["f"].Terminator()
	if term == nil || term.Opcode != "jmp" {
		t.Fatalf("Terminator() = %v, want jmp", term)
	}
	g = build(t, "f:\n\tmov eax, 0\n")
	if term := g.Blocks["f"].Terminator(); term != nil {
		t.Errorf("Terminator() = %v, want nil", term)
	}
}
