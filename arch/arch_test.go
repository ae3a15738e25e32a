// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCanonRegX86(t *testing.T) {
	check := func(name, want string) {
		t.Helper()
		got := X8664.CanonReg(name)
		if got != want {
			t.Errorf("CanonReg(%q) = %q, want %q", name, got, want)
		}
	}
	// Sub-register aliasing collapses to the containing 64-bit register.
	check("al", "rax")
	check("ah", "rax")
	check("ax", "rax")
	check("eax", "rax")
	check("rax", "rax")
	check("AL", "rax")
	check("r8b", "r8")
	check("r8w", "r8")
	check("r8d", "r8")
	check("r8", "r8")
	check("sil", "rsi")
	check("esp", "rsp")
	// Vector aliasing collapses to the 512-bit register.
	check("xmm0", "zmm0")
	check("ymm0", "zmm0")
	check("zmm0", "zmm0")
	check("xmm31", "zmm31")
	// Mask registers are their own base.
	check("k1", "k1")
	// Unknown spellings pass through unchanged.
	check("bogus7", "bogus7")
}

func TestCanonRegIdempotent(t *testing.T) {
	for _, name := range []string{"al", "eax", "ymm3", "k2", "w17", "a0", "mystery"} {
		for _, a := range []*Arch{X8664, ARM64, RISCV64} {
			once := a.CanonReg(name)
			twice := a.CanonReg(once)
			if once != twice {
				t.Errorf("%s: CanonReg not idempotent on %q: %q then %q",
					a, name, once, twice)
			}
		}
	}
}

func TestCanonRegARM64(t *testing.T) {
	check := func(name, want string) {
		t.Helper()
		if got := ARM64.CanonReg(name); got != want {
			t.Errorf("CanonReg(%q) = %q, want %q", name, got, want)
		}
	}
	check("w0", "x0")
	check("x0", "x0")
	check("lr", "x30")
	check("fp", "x29")
	check("s3", "v3")
	check("d3", "v3")
	check("q3", "v3")
}

func TestCanonRegRISCV(t *testing.T) {
	check := func(name, want string) {
		t.Helper()
		if got := RISCV64.CanonReg(name); got != want {
			t.Errorf("CanonReg(%q) = %q, want %q", name, got, want)
		}
	}
	check("a0", "x10")
	check("ra", "x1")
	check("sp", "x2")
	check("s0", "x8")
	check("fp", "x8")
	check("fa0", "f10")
	check("x7", "x7")
}

func TestLoad(t *testing.T) {
	for _, name := range []string{"x86_64", "aarch64", "riscv64"} {
		a, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if a.Name != name {
			t.Errorf("Load(%q).Name = %q", name, a.Name)
		}
	}
	if _, err := Load("pdp11"); err == nil {
		t.Error("Load(\"pdp11\") succeeded, want error")
	}
}

func TestDetect(t *testing.T) {
	check := func(text, want string) {
		t.Helper()
		if got := Detect(text); got != want {
			t.Errorf("Detect(%q) = %q, want %q", text, got, want)
		}
	}
	check("mov eax, ebx\nadd rax, rcx\njmp .L1", "x86_64")
	check("ldr x0, [x1]\nstr w2, [sp]\ncbz x0, done", "aarch64")
	check("addi a0, a1, 4\nbeq a0, t0, out\njal ra, f", "riscv64")
	check("", "x86_64")
}

func TestIsMaskDefining(t *testing.T) {
	for _, op := range []string{"kmovw", "kandb", "vpcmpeqd", "vcmpps"} {
		if !X8664.IsMaskDefining(op) {
			t.Errorf("IsMaskDefining(%q) = false, want true", op)
		}
	}
	for _, op := range []string{"mov", "vaddps", "vpermd"} {
		if X8664.IsMaskDefining(op) {
			t.Errorf("IsMaskDefining(%q) = true, want false", op)
		}
	}
}

func TestLoadFile(t *testing.T) {
	const config = `
architecture: toy16
description: two-register teaching machine
syntax: intel
memory_style: bracket
registers:
  general: [r0, r1, r0l, r1l]
register_aliases:
  r0: [r0l]
  r1: [r1l]
instruction_categories:
  read_write: [mov, add]
  read_only: [cmp]
  jump: [jmp, jz, ret]
  read_modify_write: [add]
  address_only: []
  mask_defining: []
mask_registers: []
`
	path := filepath.Join(t.TempDir(), "toy16.yaml")
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if a.Name != "toy16" {
		t.Errorf("Name = %q, want toy16", a.Name)
	}
	if got := a.CanonReg("R0L"); got != "r0" {
		t.Errorf("CanonReg(R0L) = %q, want r0", got)
	}
	if !a.ReadWrite["mov"] || !a.ReadModifyWrite["add"] || !a.Jump["ret"] {
		t.Error("instruction categories not loaded")
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadFile of missing file succeeded, want error")
	}
}

func TestLoadFileBadConfig(t *testing.T) {
	dir := t.TempDir()
	bad := map[string]string{
		"noarch.yaml":   "description: nameless\n",
		"badstyle.yaml": "architecture: z\nmemory_style: sideways\n",
		"badyaml.yaml":  "architecture: [unclosed\n",
	}
	for name, content := range bad {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadFile(path); err == nil {
			t.Errorf("%s: LoadFile succeeded, want error", name)
		}
	}
}
