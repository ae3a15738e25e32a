// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"regexp"
	"strings"
)

// Syntax selects the assembly source dialect for tokenizing.
type Syntax int

const (
	// Intel is Intel/NASM-style syntax: destination first, bracketed
	// memory operands, no register sigils.
	Intel Syntax = iota

	// ATT is AT&T/GAS-style syntax: % register prefixes, $ immediate
	// prefixes, displacement(base) memory operands.
	ATT
)

func (s Syntax) String() string {
	switch s {
	case Intel:
		return "intel"
	case ATT:
		return "att"
	}
	return "unknown"
}

// ParseSyntax converts a syntax name, as given on a command line, to a
// Syntax value.
func ParseSyntax(name string) (Syntax, error) {
	switch strings.ToLower(name) {
	case "intel":
		return Intel, nil
	case "att", "at&t", "gas":
		return ATT, nil
	}
	return Intel, fmt.Errorf("unknown assembly syntax %q", name)
}

// DetectSyntax guesses the dialect of assembly text from register and
// immediate sigils. Plain mnemonic-and-operand text with no sigils is
// taken to be Intel.
func DetectSyntax(text string) Syntax {
	att, intel := 0, 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.Contains(line, "%") {
			att += 2
		}
		if strings.Contains(line, "$") {
			att++
		}
		if !strings.ContainsAny(line, "%$") {
			intel++
		}
	}
	if att > intel {
		return ATT
	}
	return Intel
}

// terminators describes one dialect's block-ending mnemonics.
type terminators struct {
	uncond map[string]bool
	cond   map[string]bool
	ret    map[string]bool
}

var intelTerminators = terminators{
	uncond: map[string]bool{"jmp": true, "br": true},
	cond:   condJumps(""),
	ret: map[string]bool{
		"ret": true, "retq": true, "retf": true, "iret": true, "iretq": true,
	},
}

var attTerminators = terminators{
	uncond: map[string]bool{"jmp": true, "jmpq": true, "jmpl": true, "br": true},
	cond:   condJumps("q"),
	ret: map[string]bool{
		"ret": true, "retq": true, "retl": true, "retf": true,
		"iret": true, "iretq": true,
	},
}

// condJumps builds the conditional-jump set, optionally adding a
// dialect suffix variant of each mnemonic.
func condJumps(suffix string) map[string]bool {
	base := []string{
		"je", "jne", "jz", "jnz", "jg", "jge", "jl", "jle",
		"ja", "jae", "jb", "jbe", "js", "jns", "jo", "jno",
		"jc", "jnc", "jp", "jnp", "jpe", "jpo", "jecxz", "jrcxz",
	}
	m := make(map[string]bool, 2*len(base))
	for _, op := range base {
		m[op] = true
		if suffix != "" {
			m[op+suffix] = true
		}
	}
	return m
}

func (t *terminators) kind(opcode string) TermKind {
	switch {
	case t.uncond[opcode]:
		return TermJump
	case t.cond[opcode]:
		return TermCondJump
	case t.ret[opcode]:
		return TermRet
	}
	return TermNone
}

func (s Syntax) table() *terminators {
	if s == ATT {
		return &attTerminators
	}
	return &intelTerminators
}

var (
	labelRe    = regexp.MustCompile(`^(\.?[A-Za-z_][A-Za-z0-9_$.]*):(.*)$`)
	mnemonicRe = regexp.MustCompile(`^([a-zA-Z][a-zA-Z0-9._]*)\s*(.*)$`)
	targetRe   = regexp.MustCompile(`[%$]?\.?[A-Za-z_][A-Za-z0-9_]*`)

	typeFuncRe  = regexp.MustCompile(`^\s*\.type\s+([^,\s]+)\s*,\s*@function`)
	funcEndRe   = regexp.MustCompile(`^\s*\.Lfunc_end`)
	funcLabelRe = regexp.MustCompile(`^\s*([A-Za-z_$.][A-Za-z0-9_$.]*)\s*:`)
)

// Tokenize turns assembly source text into an instruction stream.
// Blank lines, comments and assembler directives are dropped; a label
// line attaches its label (without any leading local-label dot) to the
// next instruction. Index numbers the surviving instructions from 0.
func Tokenize(text string, syn Syntax) []Instruction {
	tab := syn.table()
	var out []Instruction
	pending := ""

	for _, line := range strings.Split(text, "\n") {
		raw := line
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if m := labelRe.FindStringSubmatch(line); m != nil {
			pending = strings.TrimPrefix(m[1], ".")
			line = strings.TrimSpace(m[2])
			if line == "" {
				continue
			}
		}
		if strings.HasPrefix(line, ".") {
			// Directive.
			continue
		}

		m := mnemonicRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		opcode := strings.ToLower(m[1])
		operandText := strings.TrimSpace(m[2])

		inst := Instruction{
			Index:    len(out),
			Label:    pending,
			Opcode:   opcode,
			Operands: SplitOperands(operandText),
			Raw:      raw,
			Term:     tab.kind(opcode),
		}
		if inst.Term == TermJump || inst.Term == TermCondJump {
			inst.Targets = extractTargets(operandText)
		}
		out = append(out, inst)
		pending = ""
	}
	return out
}

// extractTargets pulls jump-target label names out of a terminator's
// operand text. Local-label dots and AT&T immediate sigils are
// stripped; AT&T register operands are ignored. An indirect jump
// through a register yields that register's name, which simply never
// resolves to a block.
func extractTargets(operands string) []string {
	var targets []string
	seen := map[string]bool{}
	for _, m := range targetRe.FindAllString(operands, -1) {
		if strings.HasPrefix(m, "%") {
			continue // AT&T register
		}
		t := strings.TrimPrefix(m, "$")
		t = strings.TrimPrefix(t, ".")
		if t == "" || seen[t] {
			continue
		}
		// In Intel syntax "ptr" and size words can appear around
		// indirect targets; they are never labels.
		switch t {
		case "ptr", "byte", "word", "dword", "qword":
			continue
		}
		seen[t] = true
		targets = append(targets, t)
	}
	return targets
}

// Functions extracts named functions from assembly source, using
// .type name,@function directives and .Lfunc_end markers to find the
// boundaries. The function's own label line is included in the body so
// the entry block carries the function name.
func Functions(text string, syn Syntax) []Function {
	lines := strings.Split(text, "\n")
	var out []Function

	for i := 0; i < len(lines); i++ {
		m := typeFuncRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}
		name := m[1]
		if i+1 >= len(lines) || !isFunctionLabel(lines[i+1], name) {
			continue
		}
		start := i + 1
		end := len(lines)
		for j := start + 1; j < len(lines); j++ {
			if funcEndRe.MatchString(lines[j]) {
				end = j
				break
			}
		}
		body := strings.Join(lines[start:end], "\n")
		out = append(out, Function{Name: name, Insts: Tokenize(body, syn)})
		i = end
	}
	return out
}

func isFunctionLabel(line, name string) bool {
	m := funcLabelRe.FindStringSubmatch(line)
	return m != nil && m[1] == name
}
