// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm produces the instruction stream consumed by the cfg and
// dfg analyzers.
//
// Instructions can come from three frontends: tokenizing assembly
// source (Intel or AT&T syntax), tokenizing objdump disassembly
// listings, or decoding raw machine code with golang.org/x/arch. All
// three produce the same Instruction records, so the analyzers do not
// care where their input came from.
package asm

import "strings"

// TermKind classifies a terminator instruction for CFG construction.
type TermKind uint8

const (
	// TermNone marks an instruction that does not end a basic block.
	TermNone TermKind = iota

	// TermJump is an unconditional control transfer: successors are
	// exactly the jump targets.
	TermJump

	// TermCondJump is a conditional control transfer: successors are
	// the jump targets plus the fallthrough block.
	TermCondJump

	// TermRet ends the function: no successors.
	TermRet
)

func (k TermKind) String() string {
	switch k {
	case TermNone:
		return "none"
	case TermJump:
		return "jump"
	case TermCondJump:
		return "conditional"
	case TermRet:
		return "return"
	}
	return "unknown"
}

// An Instruction is one element of the instruction stream. It is
// created by a frontend and never mutated afterward.
type Instruction struct {
	// Index is the ordinal of this instruction within its stream.
	Index int

	// Label is the label attached to this instruction, if the line
	// (or a decoded jump target) carried one. Local-label markers
	// (leading dots) are stripped.
	Label string

	// Opcode is the lower-cased mnemonic.
	Opcode string

	// Operands are the operand texts in order, split on top-level
	// commas.
	Operands []string

	// Raw is the original line or rendered disassembly text.
	Raw string

	// Term classifies the instruction as a block terminator.
	Term TermKind

	// Targets are the jump-target label names, for terminators that
	// transfer control.
	Targets []string
}

// IsTerminator reports whether the instruction ends a basic block.
func (i *Instruction) IsTerminator() bool {
	return i.Term != TermNone
}

// String returns a compact opcode-and-operands rendering.
func (i *Instruction) String() string {
	if len(i.Operands) == 0 {
		return i.Opcode
	}
	return i.Opcode + " " + strings.Join(i.Operands, ", ")
}

// A Function is a named instruction stream extracted from a larger
// listing.
type Function struct {
	Name  string
	Insts []Instruction
}

// SplitOperands splits an operand list on commas that are not nested
// inside brackets or parentheses, so memory expressions like
// [rax + rbx*2] and 8(%rax,%rbx,4) survive intact.
func SplitOperands(s string) []string {
	var out []string
	depth := 0
	cur := strings.Builder{}
	for _, c := range s {
		switch c {
		case '[', '(':
			depth++
		case ']', ')':
			depth--
		case ',':
			if depth == 0 {
				if op := strings.TrimSpace(cur.String()); op != "" {
					out = append(out, op)
				}
				cur.Reset()
				continue
			}
		}
		cur.WriteRune(c)
	}
	if op := strings.TrimSpace(cur.String()); op != "" {
		out = append(out, op)
	}
	return out
}
