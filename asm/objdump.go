// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"regexp"
	"strings"
)

// Objdump listing structure:
//
//	0000000000000000 <name>:
//	   0:	55                   	push   rbp
//	  1f:	75 f1                	jne    12 <name+0x12>
//	0000000000000040 <.L3>:
//
// Function headers use bare symbol names, local labels a leading dot.
// The raw-byte column is optional (objdump --no-show-raw-insn omits
// it).
var (
	objdumpFuncRe  = regexp.MustCompile(`^([0-9a-fA-F]+)\s+<([^>.][^>]*)>:`)
	objdumpLabelRe = regexp.MustCompile(`^([0-9a-fA-F]+)\s+<\.([^>]+)>:`)
	objdumpInstRe  = regexp.MustCompile(`^\s*([0-9a-fA-F]+):\s+(?:(?:[0-9a-fA-F]{2}\s+)+)?([a-zA-Z][a-zA-Z0-9.]*)\s*(.*)$`)
	objdumpTargRe  = regexp.MustCompile(`\b([0-9a-fA-F]+)\s*<([^>]+)>`)
	objdumpAddrRe  = regexp.MustCompile(`\b([0-9a-fA-F]{2,})\b`)
)

// ParseObjdump tokenizes objdump -d output into per-function
// instruction streams. The instruction dialect (Intel vs AT&T) is
// detected from the listing itself.
func ParseObjdump(text string) []Function {
	lines := strings.Split(text, "\n")
	tab := detectObjdumpSyntax(lines).table()

	// First pass: map addresses to label names so jump targets can be
	// resolved symbolically.
	addrLabel := map[string]string{}
	for _, line := range lines {
		if m := objdumpFuncRe.FindStringSubmatch(line); m != nil {
			addrLabel[strings.TrimLeft(m[1], "0")] = m[2]
		} else if m := objdumpLabelRe.FindStringSubmatch(line); m != nil {
			addrLabel[strings.TrimLeft(m[1], "0")] = m[2]
		}
	}

	var out []Function
	var cur *Function
	pending := ""

	flush := func() {
		if cur != nil {
			out = append(out, *cur)
			cur = nil
		}
	}

	for _, line := range lines {
		if m := objdumpFuncRe.FindStringSubmatch(line); m != nil {
			flush()
			cur = &Function{Name: m[2]}
			pending = m[2]
			continue
		}
		if m := objdumpLabelRe.FindStringSubmatch(line); m != nil {
			pending = m[2]
			continue
		}
		if cur == nil {
			continue
		}
		m := objdumpInstRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		addr, opcode, operands := m[1], strings.ToLower(m[2]), strings.TrimSpace(m[3])

		inst := Instruction{
			Index:    len(cur.Insts),
			Label:    pending,
			Opcode:   opcode,
			Operands: SplitOperands(operands),
			Raw:      line,
			Term:     tab.kind(opcode),
		}
		if inst.Label == "" {
			short := strings.TrimLeft(addr, "0")
			if l, ok := addrLabel[short]; ok {
				inst.Label = l
			} else if n := len(cur.Insts); n > 0 && cur.Insts[n-1].IsTerminator() {
				// The block that starts here can only be named by its
				// address, which is how jump targets refer to it.
				inst.Label = "addr_" + short
			}
		}
		if inst.Term == TermJump || inst.Term == TermCondJump {
			inst.Targets = objdumpTargets(operands, addrLabel)
		}
		cur.Insts = append(cur.Insts, inst)
		pending = ""
	}
	flush()
	return out
}

// objdumpTargets extracts jump targets from objdump operand text.
// Targets are resolved against the address-to-label map first;
// unresolved addresses become synthetic addr_<hex> names.
func objdumpTargets(operands string, addrLabel map[string]string) []string {
	var targets []string
	resolve := func(addr string) string {
		short := strings.TrimLeft(addr, "0")
		if l, ok := addrLabel[short]; ok {
			return l
		}
		return "addr_" + short
	}
	matches := objdumpTargRe.FindAllStringSubmatch(operands, -1)
	for _, m := range matches {
		targets = append(targets, resolve(m[1]))
	}
	if len(matches) > 0 {
		return targets
	}
	for _, m := range objdumpAddrRe.FindAllStringSubmatch(operands, -1) {
		targets = append(targets, resolve(m[1]))
	}
	return targets
}

// detectObjdumpSyntax guesses the dialect of an objdump listing from
// sigil density in the first instructions.
func detectObjdumpSyntax(lines []string) Syntax {
	att, intel := 0, 0
	seen := 0
	for _, line := range lines {
		m := objdumpInstRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		operands := m[3]
		if strings.Contains(operands, "%") {
			att += 2
		}
		if strings.Contains(operands, "$") {
			att++
		}
		if operands != "" && !strings.ContainsAny(operands, "%$") {
			intel++
		}
		if seen++; seen >= 20 {
			break
		}
	}
	if att > intel {
		return ATT
	}
	return Intel
}
