// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dfg

import (
	"regexp"
	"strings"

	"github.com/mahesh-attarde/bakasur/arch"
	"github.com/mahesh-attarde/bakasur/asm"
)

// Effects are the resources one instruction touches: registers and
// memory keys read, resources written, and the memory keys accessed.
type Effects struct {
	Reads  map[string]bool
	Writes map[string]bool
	Memory map[string]bool
}

func newEffects() Effects {
	return Effects{
		Reads:  map[string]bool{},
		Writes: map[string]bool{},
		Memory: map[string]bool{},
	}
}

var (
	bracketRe = regexp.MustCompile(`\[([^\]]+)\]`)
	parenRe   = regexp.MustCompile(`(-?[A-Za-z0-9_]*)\(([^)]+)\)`)
	maskRe    = regexp.MustCompile(`\{\s*([A-Za-z][A-Za-z0-9]*)\s*\}`)
	identRe   = regexp.MustCompile(`\b[A-Za-z_][A-Za-z0-9_]*`)
)

// memKey normalizes a memory address expression into a resource key:
// case-folded, whitespace runs collapsed, and bracket-delimited
// regardless of the architecture's own spelling. Two memory operands
// alias iff their keys are byte-equal.
func memKey(expr string) string {
	norm := strings.Join(strings.Fields(strings.ToLower(expr)), " ")
	return "[" + norm + "]"
}

// registersIn returns the canonical registers spelled in an
// expression. Tokens that are not registers of the architecture,
// including immediates and size keywords, contribute nothing.
func (a *Analyzer) registersIn(expr string) []string {
	var regs []string
	for _, tok := range identRe.FindAllString(expr, -1) {
		if a.arch.IsRegister(tok) {
			regs = append(regs, a.arch.CanonReg(tok))
		}
	}
	return regs
}

// maskReads returns the canonical mask registers attached to an
// operand as {k} suffixes. A mask on any operand is a read, even when
// the operand itself is a write destination: masking a write consumes
// the mask. Non-register suffixes like the AVX-512 {z} zeroing marker
// contribute nothing.
func (a *Analyzer) maskReads(operand string) []string {
	var regs []string
	for _, m := range maskRe.FindAllStringSubmatch(operand, -1) {
		if a.arch.IsMaskRegister(m[1]) {
			regs = append(regs, a.arch.CanonReg(m[1]))
		}
	}
	return regs
}

// stripMask removes {k}-style suffixes from an operand, leaving the
// main register component.
func stripMask(operand string) string {
	return strings.TrimSpace(maskRe.ReplaceAllString(operand, ""))
}

// memExpr extracts the memory address expression from an operand, in
// the architecture's own spelling. ok is false for non-memory
// operands.
func (a *Analyzer) memExpr(operand string) (expr, inner string, ok bool) {
	switch a.arch.MemoryStyle {
	case arch.MemParen:
		if m := parenRe.FindStringSubmatch(operand); m != nil {
			return m[0], m[2], true
		}
	default:
		if m := bracketRe.FindStringSubmatch(operand); m != nil {
			return m[1], m[1], true
		}
	}
	return "", "", false
}

// ClassifyOperand analyzes one operand in isolation: the canonical
// registers it reads and, for memory operands, the location key. The
// registers inside an address expression are reads (address
// computation never writes), and a mask suffix is a read. Whether the
// operand as a whole is written is decided per opcode by
// InstructionEffects.
func (a *Analyzer) ClassifyOperand(operand string) (reads map[string]bool, mem string) {
	operand = strings.TrimSpace(operand)
	reads = map[string]bool{}

	if expr, inner, ok := a.memExpr(operand); ok {
		mem = memKey(expr)
		for _, r := range a.registersIn(inner) {
			reads[r] = true
		}
	} else {
		for _, r := range a.registersIn(stripMask(operand)) {
			reads[r] = true
		}
	}
	for _, r := range a.maskReads(operand) {
		reads[r] = true
	}
	return reads, mem
}

// InstructionEffects derives the full read/write/memory effect of one
// instruction from its opcode category.
//
// Unknown opcodes have no effect at all: analysis narrows on input it
// does not understand instead of failing.
func (a *Analyzer) InstructionEffects(inst *asm.Instruction) Effects {
	eff := newEffects()
	if len(inst.Operands) == 0 {
		return eff
	}
	opcode := inst.Opcode

	switch {
	case a.arch.AddressOnly[opcode]:
		a.addressOnlyEffects(inst, &eff)
	case a.arch.ReadWrite[opcode]:
		if a.arch.IsMaskDefining(opcode) {
			a.maskDefiningEffects(inst, &eff)
		} else {
			a.readWriteEffects(inst, &eff)
		}
	case a.arch.ReadOnly[opcode]:
		for _, op := range inst.Operands {
			a.readOperand(op, &eff)
		}
	case a.arch.Jump[opcode]:
		// Only register reads matter here: a jump's address operand
		// may depend on earlier register writes, but the control
		// transfer itself belongs to the CFG.
		for _, op := range inst.Operands {
			reads, _ := a.ClassifyOperand(op)
			for r := range reads {
				eff.Reads[r] = true
			}
		}
	}
	return eff
}

// addressOnlyEffects handles lea-style instructions: the destination
// is written and the registers inside the source address expression
// are read, but no memory is accessed, so no memory key is recorded.
func (a *Analyzer) addressOnlyEffects(inst *asm.Instruction, eff *Effects) {
	destReads, _ := a.ClassifyOperand(inst.Operands[0])
	for r := range destReads {
		eff.Writes[r] = true
	}
	if len(inst.Operands) < 2 {
		return
	}
	src := inst.Operands[1]
	if _, inner, ok := a.memExpr(src); ok {
		for _, r := range a.registersIn(inner) {
			eff.Reads[r] = true
		}
	} else {
		reads, _ := a.ClassifyOperand(src)
		for r := range reads {
			eff.Reads[r] = true
		}
	}
}

// readWriteEffects handles the ordinary destination-first category:
// operand 0 is written, the rest are read, and read-modify-write
// opcodes additionally read the destination's prior value.
func (a *Analyzer) readWriteEffects(inst *asm.Instruction, eff *Effects) {
	dest := inst.Operands[0]
	destReads, destMem := a.ClassifyOperand(dest)

	if destMem != "" {
		eff.Memory[destMem] = true
		eff.Writes[destMem] = true
		// Address registers and any mask are reads.
		for r := range destReads {
			eff.Reads[r] = true
		}
	} else {
		for _, r := range a.maskReads(dest) {
			eff.Reads[r] = true
		}
		for _, r := range a.registersIn(stripMask(dest)) {
			eff.Writes[r] = true
		}
	}

	for _, op := range inst.Operands[1:] {
		a.readOperand(op, eff)
	}

	if a.arch.ReadModifyWrite[inst.Opcode] {
		if destMem != "" {
			eff.Reads[destMem] = true
		} else {
			// The destination's prior value, and any mask, is
			// consumed before being overwritten.
			for r := range destReads {
				eff.Reads[r] = true
			}
		}
	}
}

// maskDefiningEffects handles mask-producing instructions (mask moves
// and logicals, compare-into-mask): the main component of operand 0 is
// write-only, a mask suffix on it is still a read, and the source
// operands are read-only. The destination is never read back, so the
// read-modify-write rule does not apply.
func (a *Analyzer) maskDefiningEffects(inst *asm.Instruction, eff *Effects) {
	dest := inst.Operands[0]
	destReads, destMem := a.ClassifyOperand(dest)

	if destMem != "" {
		eff.Memory[destMem] = true
		eff.Writes[destMem] = true
		for r := range destReads {
			eff.Reads[r] = true
		}
	} else {
		for _, r := range a.maskReads(dest) {
			eff.Reads[r] = true
		}
		for _, r := range a.registersIn(stripMask(dest)) {
			eff.Writes[r] = true
		}
	}

	for _, op := range inst.Operands[1:] {
		a.readOperand(op, eff)
	}
}

// readOperand folds one source operand into the effects: registers
// read, and for memory operands the key both recorded and read.
func (a *Analyzer) readOperand(op string, eff *Effects) {
	reads, mem := a.ClassifyOperand(op)
	for r := range reads {
		eff.Reads[r] = true
	}
	if mem != "" {
		eff.Memory[mem] = true
		eff.Reads[mem] = true
	}
}
