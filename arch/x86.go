// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "fmt"

// X8664 is the built-in x86-64 description (Intel syntax).
var X8664 = x8664()

func init() { register(X8664) }

func x8664() *Arch {
	t := newTable()

	// General purpose registers. Every narrower spelling aliases the
	// containing 64-bit register.
	t.family("rax", "eax", "ax", "al", "ah")
	t.family("rbx", "ebx", "bx", "bl", "bh")
	t.family("rcx", "ecx", "cx", "cl", "ch")
	t.family("rdx", "edx", "dx", "dl", "dh")
	t.family("rsi", "esi", "si", "sil")
	t.family("rdi", "edi", "di", "dil")
	t.family("rbp", "ebp", "bp", "bpl")
	t.family("rsp", "esp", "sp", "spl")
	for i := 8; i <= 15; i++ {
		r := fmt.Sprintf("r%d", i)
		t.family(r, r+"d", r+"w", r+"b")
	}
	t.family("rip", "eip")

	// Vector registers. xmm and ymm alias the containing zmm.
	for i := 0; i <= 31; i++ {
		t.family(fmt.Sprintf("zmm%d", i),
			fmt.Sprintf("xmm%d", i), fmt.Sprintf("ymm%d", i))
	}

	// AVX-512 mask registers.
	masks := make(map[string]bool)
	for i := 0; i <= 7; i++ {
		k := fmt.Sprintf("k%d", i)
		t.family(k)
		masks[k] = true
	}

	return &Arch{
		Name:          "x86_64",
		Description:   "x86-64 with SSE/AVX/AVX-512 extensions",
		Syntax:        "intel",
		MemoryStyle:   MemBracket,
		Registers:     t.regs,
		Aliases:       t.aliases,
		MaskRegisters: masks,

		ReadWrite: set(
			// Moves and conversions.
			"mov", "movq", "movd", "movzx", "movsx", "movsxd", "movbe",
			"movss", "movsd", "movaps", "movapd", "movups", "movupd",
			"movdqa", "movdqu", "lddqu",
			"cvtsi2ss", "cvtsi2sd", "cvtss2sd", "cvtsd2ss",
			"cvttss2si", "cvttsd2si", "cvtss2si", "cvtsd2si",
			// ALU.
			"add", "sub", "adc", "sbb", "imul", "mul",
			"and", "or", "xor", "not", "neg",
			"shl", "shr", "sar", "sal", "rol", "ror", "shld", "shrd",
			"inc", "dec", "xchg", "xadd", "bswap",
			"bsf", "bsr", "popcnt", "lzcnt", "tzcnt",
			"cmove", "cmovne", "cmovz", "cmovnz", "cmovg", "cmovge",
			"cmovl", "cmovle", "cmova", "cmovae", "cmovb", "cmovbe",
			"cmovs", "cmovns",
			// Scalar/packed float.
			"addss", "addsd", "subss", "subsd", "mulss", "mulsd",
			"divss", "divsd", "sqrtss", "sqrtsd",
			"addps", "addpd", "subps", "subpd", "mulps", "mulpd",
			"divps", "divpd",
			// AVX/AVX-512.
			"vmovss", "vmovsd", "vmovaps", "vmovapd", "vmovups", "vmovupd",
			"vmovdqa", "vmovdqu", "vmovdqa32", "vmovdqa64",
			"vmovdqu8", "vmovdqu16", "vmovdqu32", "vmovdqu64",
			"vmovq", "vmovd",
			"vaddss", "vaddsd", "vaddps", "vaddpd",
			"vsubss", "vsubsd", "vsubps", "vsubpd",
			"vmulss", "vmulsd", "vmulps", "vmulpd",
			"vdivss", "vdivsd", "vdivps", "vdivpd",
			"vpaddb", "vpaddw", "vpaddd", "vpaddq",
			"vpsubb", "vpsubw", "vpsubd", "vpsubq",
			"vpmulld", "vpmullq", "vpmaddwd", "vpmaddubsw",
			"vpand", "vpandn", "vpor", "vpxor",
			"vpsllw", "vpslld", "vpsllq", "vpsrlw", "vpsrld", "vpsrlq",
			"vblendps", "vblendpd", "vblendvps", "vblendvpd", "vpblendd",
			"vpermd", "vpermps", "vpermq", "vperm2f128", "vperm2i128",
			"vbroadcastss", "vbroadcastsd", "vpbroadcastb", "vpbroadcastw",
			"vpbroadcastd", "vpbroadcastq",
			"vfmadd132ss", "vfmadd213ss", "vfmadd231ss",
			"vfmadd132sd", "vfmadd213sd", "vfmadd231sd",
			"vfmadd132ps", "vfmadd213ps", "vfmadd231ps",
			"vfmadd132pd", "vfmadd213pd", "vfmadd231pd",
			"vfmsub132ss", "vfmsub213ss", "vfmsub231ss",
			"vfnmadd132ss", "vfnmadd213ss", "vfnmadd231ss",
			"vgatherdps", "vgatherqps", "vgatherdpd", "vgatherqpd",
			"vcompressps", "vexpandps",
			// Mask moves and logic (dispatched as mask-defining).
			"kmovb", "kmovw", "kmovd", "kmovq",
			"kandb", "kandw", "kandd", "kandq",
			"korb", "korw", "kord", "korq",
			"kxorb", "kxorw", "kxord", "kxorq",
			"knotb", "knotw", "knotd", "knotq",
			"kandnb", "kandnw", "kandnd", "kandnq",
			"kunpckbw", "kunpckwd", "kunpckdq",
			"kshiftlb", "kshiftlw", "kshiftrb", "kshiftrw",
			"vpcmpeqb", "vpcmpeqw", "vpcmpeqd", "vpcmpeqq",
			"vpcmpgtb", "vpcmpgtw", "vpcmpgtd", "vpcmpgtq",
			"vpcmpb", "vpcmpw", "vpcmpd", "vpcmpq",
			"vpcmpub", "vpcmpuw", "vpcmpud", "vpcmpuq",
			"vcmpps", "vcmppd", "vcmpss", "vcmpsd",
			"vptestmb", "vptestmw", "vptestmd", "vptestmq",
			"pop",
		),

		ReadOnly: set(
			"cmp", "test", "bt",
			"comiss", "comisd", "ucomiss", "ucomisd",
			"vcomiss", "vcomisd", "vucomiss", "vucomisd",
			"ptest", "vptest",
			"push",
		),

		Jump: set(
			"jmp", "jmpq", "jmpl",
			"je", "jne", "jz", "jnz", "jg", "jge", "jl", "jle",
			"ja", "jae", "jb", "jbe", "js", "jns", "jo", "jno",
			"jc", "jnc", "jp", "jnp", "jpe", "jpo", "jecxz", "jrcxz",
			"loop", "loope", "loopne",
			"call", "callq", "ret", "retq",
		),

		ReadModifyWrite: set(
			"add", "sub", "adc", "sbb", "imul",
			"and", "or", "xor", "not", "neg",
			"shl", "shr", "sar", "sal", "rol", "ror", "shld", "shrd",
			"inc", "dec", "xchg", "xadd",
			"addss", "addsd", "subss", "subsd", "mulss", "mulsd",
			"divss", "divsd",
			"vfmadd132ss", "vfmadd213ss", "vfmadd231ss",
			"vfmadd132sd", "vfmadd213sd", "vfmadd231sd",
			"vfmadd132ps", "vfmadd213ps", "vfmadd231ps",
			"vfmadd132pd", "vfmadd213pd", "vfmadd231pd",
			"vfmsub132ss", "vfmsub213ss", "vfmsub231ss",
			"vfnmadd132ss", "vfnmadd213ss", "vfnmadd231ss",
		),

		AddressOnly: set("lea"),

		MaskDefining: []string{
			"kmov", "kand", "kor", "kxor", "knot", "kunpck", "kshift",
			"vpcmp", "vcmp", "vptestm",
		},
	}
}
