// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import "strings"

// Indicator substrings used to score assembly text against each
// built-in architecture. These are deliberately loose: detection only
// has to pick the most plausible table, and the analyzers degrade
// gracefully if the guess is wrong.
var (
	x86Indicators = []string{
		"rax", "rbx", "rcx", "rdx", "rsi", "rdi",
		"eax", "ebx", "ecx", "edx",
		"xmm", "ymm", "zmm",
		"mov ", "jmp", "call",
	}
	arm64Indicators = []string{
		"x0", "x1", "x2", "x3", "w0", "w1", "w2", "w3",
		"v0", "v1", "v2", "v3",
		"ldr", "str", "ldp", "stp",
		"b.", "bl ", "cbz", "cbnz",
	}
	riscvIndicators = []string{
		"a0", "a1", "a2", "a3", "a4", "a5", "a6", "a7",
		"t0", "t1", "t2", "t3", "t4", "t5", "t6",
		"s0", "s1", "s2", "s3", "sp", "ra", "gp", "tp",
		"li ", "addi", "ble", "bge", "beq", "bne",
		"jal", "jalr", "ret",
	}
)

// Detect guesses the architecture of assembly text and returns its
// name. Detect is a pure function of the text; it never loads a
// table. When nothing matches it defaults to x86_64.
func Detect(text string) string {
	text = strings.ToLower(text)
	score := func(indicators []string) int {
		n := 0
		for _, ind := range indicators {
			if strings.Contains(text, ind) {
				n++
			}
		}
		return n
	}

	best, bestScore := "x86_64", score(x86Indicators)
	if n := score(arm64Indicators); n > bestScore {
		best, bestScore = "aarch64", n
	}
	if n := score(riscvIndicators); n > bestScore {
		best = "riscv64"
	}
	return best
}
