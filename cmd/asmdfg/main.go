// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Asmdfg analyzes data dependencies between the instructions of one
// assembly basic block.
//
// Usage:
//
//	asmdfg [-arch name|auto] [-arch-config file.yaml] [-dot out.dot] [-demo] [-list-archs] [file]
//
// The block is read from file, or from stdin when no file is given.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tebeka/atexit"

	"github.com/mahesh-attarde/bakasur/arch"
	"github.com/mahesh-attarde/bakasur/asm"
	"github.com/mahesh-attarde/bakasur/dfg"
	"github.com/mahesh-attarde/bakasur/dot"
)

var (
	archName   = flag.String("arch", "auto", "architecture `name`, or auto to detect from the input")
	archConfig = flag.String("arch-config", "", "load the architecture table from a YAML `file`")
	dotOut     = flag.String("dot", "", "write Graphviz output to `file`")
	demo       = flag.Bool("demo", false, "analyze a built-in example block")
	listArchs  = flag.Bool("list-archs", false, "list built-in architectures and exit")
)

const demoBlock = `mov rax, [rbp - 8]
mov rbx, rax
add rbx, 10
mov [rbp - 16], rbx
mov rcx, [rbp - 16]
cmp rcx, rax
`

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: asmdfg [flags] [file]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *listArchs {
		for _, name := range arch.Names() {
			a, err := arch.Load(name)
			if err != nil {
				continue
			}
			fmt.Printf("%-10s %s\n", name, a.Description)
		}
		atexit.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "asmdfg: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run() error {
	text, err := input()
	if err != nil {
		return err
	}

	a, err := table(text)
	if err != nil {
		return err
	}
	fmt.Printf("Architecture: %s\n\n", a.Name)

	syn := asm.Intel
	if a.Syntax == "att" {
		syn = asm.ATT
	}
	insts := asm.Tokenize(text, syn)
	deps := dfg.New(a).Dependencies(insts)

	dot.DFGReport(os.Stdout, insts, deps)

	if *dotOut != "" {
		f, err := os.Create(*dotOut)
		if err != nil {
			return err
		}
		if err := dot.WriteDFG(f, insts, deps); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", *dotOut)
	}
	return nil
}

func input() (string, error) {
	if *demo {
		return demoBlock, nil
	}
	if flag.NArg() == 0 {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(flag.Arg(0))
	return string(data), err
}

func table(text string) (*arch.Arch, error) {
	if *archConfig != "" {
		return arch.LoadFile(*archConfig)
	}
	name := *archName
	if name == "auto" || name == "" {
		name = arch.Detect(text)
	}
	return arch.Load(name)
}
