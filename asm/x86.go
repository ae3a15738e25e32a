// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// DecodeX86 decodes raw x86 machine code into an instruction stream.
// pc is the program counter at which code begins and bits is 32 or 64.
//
// Decoded instructions are rendered in Intel syntax and tokenized like
// assembly source, so the same analyzers work on source and binaries.
// Instructions that are the target of a branch get an addr_<hex>
// label, and branch targets are emitted as the same names, so block
// segmentation and edge resolution line up. Undecodable bytes become
// a placeholder with no reads, writes or control effect.
func DecodeX86(code []byte, pc uint64, bits int) []Instruction {
	var out []Instruction
	var pcs []uint64
	targetPCs := map[uint64]bool{}

	for len(code) > 0 {
		inst, err := x86asm.Decode(code, bits)
		size := inst.Len
		if err != nil || size == 0 || inst.Op == 0 {
			inst = x86asm.Inst{}
			size = 1
		}

		rec := Instruction{Index: len(out)}
		if inst.Op == 0 {
			rec.Opcode = "(bad)"
			rec.Raw = "(bad)"
		} else {
			text := x86asm.IntelSyntax(inst, pc, nil)
			rec.Raw = text
			if sp := strings.IndexByte(text, ' '); sp >= 0 {
				rec.Opcode = strings.ToLower(text[:sp])
				rec.Operands = SplitOperands(text[sp+1:])
			} else {
				rec.Opcode = strings.ToLower(text)
			}

			rec.Term = x86TermKind(&inst)
			if rec.Term == TermJump || rec.Term == TermCondJump {
				if rel, ok := inst.Args[0].(x86asm.Rel); ok {
					target := pc + uint64(size) + uint64(int64(rel))
					targetPCs[target] = true
					rec.Targets = []string{addrLabel64(target)}
				}
			}
		}

		out = append(out, rec)
		pcs = append(pcs, pc)
		code = code[size:]
		pc += uint64(size)
	}

	// Second pass: label the instructions branches land on.
	for i := range out {
		if out[i].Label == "" && targetPCs[pcs[i]] {
			out[i].Label = addrLabel64(pcs[i])
		}
	}
	return out
}

func addrLabel64(pc uint64) string {
	return fmt.Sprintf("addr_%x", pc)
}

// x86TermKind classifies the control-flow effect of a decoded
// instruction for block segmentation.
func x86TermKind(inst *x86asm.Inst) TermKind {
	switch inst.Op {
	case x86asm.JMP, x86asm.LJMP:
		return TermJump
	case x86asm.RET, x86asm.LRET, x86asm.SYSRET, x86asm.SYSEXIT,
		x86asm.IRET, x86asm.IRETD, x86asm.IRETQ,
		x86asm.UD1, x86asm.UD2:
		// UD1/UD2 never fall through, so they end the block like a
		// return does.
		return TermRet
	case x86asm.JA, x86asm.JAE, x86asm.JB, x86asm.JBE, x86asm.JCXZ,
		x86asm.JE, x86asm.JECXZ, x86asm.JG, x86asm.JGE, x86asm.JL,
		x86asm.JLE, x86asm.JNE, x86asm.JNO, x86asm.JNP, x86asm.JNS,
		x86asm.JO, x86asm.JP, x86asm.JRCXZ, x86asm.JS,
		x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE, x86asm.XBEGIN:
		return TermCondJump
	}
	return TermNone
}
