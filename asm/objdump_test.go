// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"reflect"
	"testing"
)

const objdumpListing = `
foo.o:     file format elf64-x86-64


Disassembly of section .text:

0000000000000000 <count>:
   0:	55                   	push   rbp
   1:	b9 0a 00 00 00       	mov    ecx,0xa

0000000000000006 <.L2>:
   6:	ff c9                	dec    ecx
   8:	75 fc                	jne    6 <.L2>
   a:	5d                   	pop    rbp
   b:	c3                   	ret

000000000000000c <other>:
   c:	31 c0                	xor    eax,eax
   e:	c3                   	ret
`

func TestParseObjdump(t *testing.T) {
	fns := ParseObjdump(objdumpListing)
	if len(fns) != 2 {
		t.Fatalf("got %d functions, want 2", len(fns))
	}
	fn := fns[0]
	if fn.Name != "count" {
		t.Errorf("Name = %q, want %q", fn.Name, "count")
	}
	if len(fn.Insts) != 6 {
		t.Fatalf("got %d instructions, want 6", len(fn.Insts))
	}

	check := func(i int, label, opcode string, term TermKind) {
		t.Helper()
		in := &fn.Insts[i]
		if in.Label != label {
			t.Errorf("inst %d: Label = %q, want %q", i, in.Label, label)
		}
		if in.Opcode != opcode {
			t.Errorf("inst %d: Opcode = %q, want %q", i, in.Opcode, opcode)
		}
		if in.Term != term {
			t.Errorf("inst %d: Term = %v, want %v", i, in.Term, term)
		}
	}
	check(0, "count", "push", TermNone)
	check(1, "", "mov", TermNone)
	check(2, "L2", "dec", TermNone)
	check(3, "", "jne", TermCondJump)
	// pop follows a terminator with no symbolic label, so it leads a
	// block named by its address.
	check(4, "addr_a", "pop", TermNone)
	check(5, "", "ret", TermRet)

	if want := []string{"L2"}; !reflect.DeepEqual(fn.Insts[3].Targets, want) {
		t.Errorf("jne Targets = %v, want %v", fn.Insts[3].Targets, want)
	}

	if fns[1].Name != "other" || len(fns[1].Insts) != 2 {
		t.Errorf("second function = %q with %d instructions, want other with 2",
			fns[1].Name, len(fns[1].Insts))
	}
}

// A listing with no local-label headers: the jump target is a bare
// address, so the block leader gets a synthetic address label.
const objdumpBareListing = `
0000000000000000 <spin>:
   0:	b9 0a 00 00 00       	mov    ecx,0xa
   5:	ff c9                	dec    ecx
   7:	75 fc                	jne    5 <spin+0x5>
   9:	c3                   	ret
`

func TestParseObjdumpAddressTargets(t *testing.T) {
	fns := ParseObjdump(objdumpBareListing)
	if len(fns) != 1 {
		t.Fatalf("got %d functions, want 1", len(fns))
	}
	insts := fns[0].Insts
	if len(insts) != 4 {
		t.Fatalf("got %d instructions, want 4", len(insts))
	}
	if want := []string{"addr_5"}; !reflect.DeepEqual(insts[2].Targets, want) {
		t.Errorf("jne Targets = %v, want %v", insts[2].Targets, want)
	}
	// The dec at address 5 is not a post-terminator leader, so it
	// keeps no label; the edge stays unresolved, which a CFG treats
	// as no edge at all.
	if insts[1].Label != "" {
		t.Errorf("dec Label = %q, want none", insts[1].Label)
	}
}

const objdumpATTListing = `
0000000000000000 <f>:
   0:	b8 01 00 00 00       	mov    $0x1,%eax
   5:	01 d8                	add    %ebx,%eax
   7:	c3                   	ret
`

func TestParseObjdumpATT(t *testing.T) {
	fns := ParseObjdump(objdumpATTListing)
	if len(fns) != 1 {
		t.Fatalf("got %d functions, want 1", len(fns))
	}
	insts := fns[0].Insts
	if len(insts) != 3 {
		t.Fatalf("got %d instructions, want 3", len(insts))
	}
	if want := []string{"$0x1", "%eax"}; !reflect.DeepEqual(insts[0].Operands, want) {
		t.Errorf("mov Operands = %v, want %v", insts[0].Operands, want)
	}
	if insts[2].Term != TermRet {
		t.Errorf("ret Term = %v, want return", insts[2].Term)
	}
}
