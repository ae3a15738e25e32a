// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package arch

// A table accumulates register spellings and their aliasing while a
// built-in architecture is constructed.
type table struct {
	regs    map[string]bool
	aliases map[string]string
}

func newTable() *table {
	return &table{
		regs:    make(map[string]bool),
		aliases: make(map[string]string),
	}
}

// family records base and every alias as register spellings that all
// canonicalize to base.
func (t *table) family(base string, aliases ...string) {
	t.regs[base] = true
	for _, a := range aliases {
		t.regs[a] = true
		t.aliases[a] = base
	}
}
