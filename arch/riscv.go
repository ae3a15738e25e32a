// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "fmt"

// RISCV64 is the built-in RV64 description.
var RISCV64 = riscv64()

func init() { register(RISCV64) }

// riscvABINames maps each ABI register name to its numbered register.
var riscvABINames = map[string]string{
	"zero": "x0", "ra": "x1", "sp": "x2", "gp": "x3", "tp": "x4",
	"t0": "x5", "t1": "x6", "t2": "x7",
	"s0": "x8", "fp": "x8", "s1": "x9",
	"a0": "x10", "a1": "x11", "a2": "x12", "a3": "x13",
	"a4": "x14", "a5": "x15", "a6": "x16", "a7": "x17",
	"s2": "x18", "s3": "x19", "s4": "x20", "s5": "x21",
	"s6": "x22", "s7": "x23", "s8": "x24", "s9": "x25",
	"s10": "x26", "s11": "x27",
	"t3": "x28", "t4": "x29", "t5": "x30", "t6": "x31",
	"ft0": "f0", "ft1": "f1", "ft2": "f2", "ft3": "f3",
	"ft4": "f4", "ft5": "f5", "ft6": "f6", "ft7": "f7",
	"fs0": "f8", "fs1": "f9",
	"fa0": "f10", "fa1": "f11", "fa2": "f12", "fa3": "f13",
	"fa4": "f14", "fa5": "f15", "fa6": "f16", "fa7": "f17",
	"fs2": "f18", "fs3": "f19", "fs4": "f20", "fs5": "f21",
	"fs6": "f22", "fs7": "f23", "fs8": "f24", "fs9": "f25",
	"fs10": "f26", "fs11": "f27",
	"ft8": "f28", "ft9": "f29", "ft10": "f30", "ft11": "f31",
}

func riscv64() *Arch {
	t := newTable()

	for i := 0; i <= 31; i++ {
		t.family(fmt.Sprintf("x%d", i))
		t.family(fmt.Sprintf("f%d", i))
	}
	for abi, base := range riscvABINames {
		t.regs[abi] = true
		t.aliases[abi] = base
	}

	return &Arch{
		Name:          "riscv64",
		Description:   "RISC-V 64-bit (RV64GC)",
		Syntax:        "riscv",
		MemoryStyle:   MemParen,
		Registers:     t.regs,
		Aliases:       t.aliases,
		MaskRegisters: map[string]bool{},

		ReadWrite: set(
			"mv", "li", "lui", "auipc",
			"add", "addi", "addw", "addiw", "sub", "subw",
			"mul", "mulw", "mulh", "mulhu", "div", "divu", "divw",
			"rem", "remu", "remw",
			"and", "andi", "or", "ori", "xor", "xori",
			"sll", "slli", "sllw", "slliw", "srl", "srli", "srlw", "srliw",
			"sra", "srai", "sraw", "sraiw",
			"slt", "slti", "sltu", "sltiu",
			"lb", "lbu", "lh", "lhu", "lw", "lwu", "ld",
			"flw", "fld",
			"neg", "negw", "not", "seqz", "snez", "sltz", "sgtz",
			"sext.w", "zext.b",
			"fmv.s", "fmv.d", "fmv.w.x", "fmv.x.w",
			"fadd.s", "fadd.d", "fsub.s", "fsub.d",
			"fmul.s", "fmul.d", "fdiv.s", "fdiv.d",
			"fcvt.s.w", "fcvt.w.s", "fcvt.d.l", "fcvt.l.d",
		),

		ReadOnly: set(
			// Stores read every operand; see the AArch64 note.
			"sb", "sh", "sw", "sd", "fsw", "fsd",
		),

		Jump: set(
			"j", "jal", "jalr", "jr", "ret", "call", "tail",
			"beq", "bne", "blt", "bge", "bltu", "bgeu",
			"beqz", "bnez", "blez", "bgez", "bltz", "bgtz",
			"ble", "bgt",
		),

		ReadModifyWrite: map[string]bool{},

		AddressOnly: set("la", "lla"),
	}
}
