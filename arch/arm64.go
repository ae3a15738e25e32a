// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "fmt"

// ARM64 is the built-in AArch64 description.
var ARM64 = arm64()

func init() { register(ARM64) }

func arm64() *Arch {
	t := newTable()

	// General purpose registers: wN is the 32-bit view of xN.
	for i := 0; i <= 30; i++ {
		t.family(fmt.Sprintf("x%d", i), fmt.Sprintf("w%d", i))
	}
	t.family("sp", "wsp")
	t.family("xzr", "wzr")
	t.aliases["lr"] = "x30"
	t.regs["lr"] = true
	t.aliases["fp"] = "x29"
	t.regs["fp"] = true

	// SIMD/FP registers: every narrower view aliases vN.
	for i := 0; i <= 31; i++ {
		v := fmt.Sprintf("v%d", i)
		t.family(v,
			fmt.Sprintf("q%d", i), fmt.Sprintf("d%d", i),
			fmt.Sprintf("s%d", i), fmt.Sprintf("h%d", i),
			fmt.Sprintf("b%d", i))
	}

	return &Arch{
		Name:          "aarch64",
		Description:   "ARM 64-bit (AArch64) with NEON",
		Syntax:        "arm",
		MemoryStyle:   MemBracket,
		Registers:     t.regs,
		Aliases:       t.aliases,
		MaskRegisters: map[string]bool{},

		ReadWrite: set(
			"mov", "movz", "movk", "movn", "mvn",
			"ldr", "ldrb", "ldrh", "ldrsb", "ldrsh", "ldrsw", "ldp",
			"ldur", "ld1",
			"add", "adds", "sub", "subs", "mul", "madd", "msub",
			"smull", "umull", "sdiv", "udiv",
			"and", "ands", "orr", "orn", "eor", "bic",
			"lsl", "lsr", "asr", "ror", "neg", "negs",
			"csel", "csinc", "csinv", "csneg", "cset", "csetm", "cinc",
			"uxtb", "uxth", "sxtb", "sxth", "sxtw",
			"ubfx", "sbfx", "bfi", "bfxil",
			"rev", "rev16", "rev32", "rbit", "clz",
			"fmov", "fadd", "fsub", "fmul", "fdiv", "fneg", "fabs",
			"fsqrt", "fmadd", "fmsub", "fnmadd", "fnmsub",
			"scvtf", "ucvtf", "fcvt", "fcvtzs", "fcvtzu",
			"dup", "ins", "umov", "smov",
		),

		ReadOnly: set(
			"cmp", "cmn", "tst", "fcmp", "fcmpe", "ccmp",
			// Stores read every operand, including the data register;
			// the memory write is not modeled for lack of a
			// destination slot in the two-operand store form.
			"str", "strb", "strh", "stp", "stur", "st1",
		),

		Jump: set(
			"b", "br", "bl", "blr", "ret",
			"cbz", "cbnz", "tbz", "tbnz",
			"b.eq", "b.ne", "b.lt", "b.le", "b.gt", "b.ge",
			"b.lo", "b.ls", "b.hi", "b.hs", "b.mi", "b.pl",
			"b.vs", "b.vc", "b.al",
		),

		ReadModifyWrite: set("bfi", "bfxil", "ins", "movk"),

		AddressOnly: set("adr", "adrp"),
	}
}
