// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dfg_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mahesh-attarde/bakasur/arch"
	"github.com/mahesh-attarde/bakasur/asm"
	"github.com/mahesh-attarde/bakasur/dfg"
)

var _ = Describe("Dependencies", func() {
	var a *dfg.Analyzer

	analyze := func(src string) []dfg.Dependency {
		return a.Dependencies(asm.Tokenize(src, asm.Intel))
	}

	BeforeEach(func() {
		a = dfg.New(arch.X8664)
	})

	Context("memory hazards", func() {
		It("reports a RAW between a store and a load of the same address", func() {
			deps := analyze("mov [rax], ebx\nmov ecx, [rax]")
			Expect(deps).To(HaveLen(1))
			Expect(deps[0]).To(Equal(dfg.Dependency{
				Source:   0,
				Target:   1,
				Resource: "[rax]",
				Kind:     dfg.RAW,
				Class:    dfg.Memory,
			}))
		})

		It("treats textually different addresses as unrelated", func() {
			deps := analyze("mov [rax], ebx\nmov ecx, [rax + 0]")
			Expect(dfg.FilterClass(deps, dfg.Memory)).To(BeEmpty())
		})

		It("treats operand order inside an address as significant", func() {
			deps := analyze("mov [rax + rbx], ecx\nmov edx, [rbx + rax]")
			Expect(dfg.FilterClass(deps, dfg.Memory)).To(BeEmpty())
		})

		It("ignores case and spacing inside an address", func() {
			deps := analyze("mov [RAX +  RBX], ecx\nmov edx, [rax + rbx]")
			mem := dfg.FilterClass(deps, dfg.Memory)
			Expect(mem).To(HaveLen(1))
			Expect(mem[0].Resource).To(Equal("[rax + rbx]"))
			Expect(mem[0].Kind).To(Equal(dfg.RAW))
		})
	})

	Context("register hazards", func() {
		It("follows the last-writer rule over a three-instruction chain", func() {
			deps := analyze("mov eax, ebx\nmov ecx, eax\nmov eax, edx")
			Expect(deps).To(Equal([]dfg.Dependency{
				{Source: 0, Target: 1, Resource: "rax", Kind: dfg.RAW, Class: dfg.Register},
				{Source: 1, Target: 2, Resource: "rax", Kind: dfg.WAR, Class: dfg.Register},
				{Source: 0, Target: 2, Resource: "rax", Kind: dfg.WAW, Class: dfg.Register},
			}))
		})

		It("reports exactly one WAW between consecutive writes", func() {
			deps := analyze("mov eax, 1\nmov eax, 2")
			Expect(dfg.FilterKind(deps, dfg.WAW)).To(HaveLen(1))
			Expect(dfg.FilterKind(deps, dfg.RAW)).To(BeEmpty())
		})

		It("sees sub-registers as their containing register", func() {
			deps := analyze("mov al, 1\nmov bl, ah")
			raw := dfg.FilterKind(deps, dfg.RAW)
			Expect(raw).To(HaveLen(1))
			Expect(raw[0].Resource).To(Equal("rax"))
		})

		It("reads the destination of a read-modify-write opcode", func() {
			deps := analyze("mov eax, 1\nadd eax, ebx")
			raw := dfg.FilterKind(deps, dfg.RAW)
			Expect(raw).To(HaveLen(1))
			Expect(raw[0]).To(Equal(dfg.Dependency{
				Source: 0, Target: 1, Resource: "rax",
				Kind: dfg.RAW, Class: dfg.Register,
			}))
		})
	})

	Context("address calculation", func() {
		It("records no memory access for lea", func() {
			deps := analyze("mov [rbx], eax\nlea rcx, [rbx]")
			Expect(dfg.FilterClass(deps, dfg.Memory)).To(BeEmpty())
		})

		It("reads the registers inside a lea address", func() {
			deps := analyze("mov rbx, rax\nlea rcx, [rbx + rdx*2]")
			raw := dfg.FilterKind(deps, dfg.RAW)
			Expect(raw).To(HaveLen(1))
			Expect(raw[0].Resource).To(Equal("rbx"))
		})
	})

	Context("masked vector instructions", func() {
		It("reads a mask attached to a write destination", func() {
			deps := analyze("kmovw k1, eax\nvaddps zmm0 {k1}, zmm1, zmm2")
			raw := dfg.FilterKind(deps, dfg.RAW)
			Expect(raw).To(HaveLen(1))
			Expect(raw[0]).To(Equal(dfg.Dependency{
				Source: 0, Target: 1, Resource: "k1",
				Kind: dfg.RAW, Class: dfg.Register,
			}))
		})

		It("writes the mask destination of a compare-into-mask", func() {
			deps := analyze("vpcmpd k1, zmm1, zmm2\nkandw k3, k1, k2")
			raw := dfg.FilterKind(deps, dfg.RAW)
			Expect(raw).To(HaveLen(1))
			Expect(raw[0].Resource).To(Equal("k1"))
		})
	})

	Context("degradation", func() {
		It("treats unknown opcodes as having no effect", func() {
			deps := analyze("mov eax, 1\nfrobnicate eax, ebx\nmov ebx, eax")
			Expect(deps).To(Equal([]dfg.Dependency{
				{Source: 0, Target: 2, Resource: "rax", Kind: dfg.RAW, Class: dfg.Register},
			}))
		})

		It("yields nothing for an empty block", func() {
			Expect(a.Dependencies(nil)).To(BeEmpty())
		})
	})
})
