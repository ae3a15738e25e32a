// Copyright 2024 The Bakasur Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Asmcfg builds control-flow graphs from assembly source or objdump
// listings and reports their structure and loops.
//
// Usage:
//
//	asmcfg [-f function] [-syntax intel|att|objdump|auto] [-dot out.dot] [-detailed] [-loops] file
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/mahesh-attarde/bakasur/asm"
	"github.com/mahesh-attarde/bakasur/cfg"
	"github.com/mahesh-attarde/bakasur/dot"
)

var (
	funcName = flag.String("f", "", "analyze only this `function`")
	syntax   = flag.String("syntax", "auto", "input `dialect`: intel, att, objdump or auto")
	dotOut   = flag.String("dot", "", "write Graphviz output to `file` (per function)")
	detailed = flag.Bool("detailed", false, "print per-block instruction listings")
	loops    = flag.Bool("loops", false, "print only loop and back-edge information")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: asmcfg [flags] file\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		atexit.Exit(2)
	}

	if err := run(flag.Arg(0)); err != nil {
		fmt.Fprintf(os.Stderr, "asmcfg: %v\n", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func run(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	text := string(data)

	fns, err := parse(path, text)
	if err != nil {
		return err
	}
	if *funcName != "" {
		var keep []asm.Function
		for _, fn := range fns {
			if fn.Name == *funcName {
				keep = append(keep, fn)
			}
		}
		if len(keep) == 0 {
			return fmt.Errorf("function %q not found in %s", *funcName, path)
		}
		fns = keep
	}

	for _, fn := range fns {
		g := cfg.Build(fn.Name, fn.Insts)
		switch {
		case *loops:
			loopReport(g)
		case *detailed:
			dot.CFGDetailed(os.Stdout, g)
		default:
			dot.CFGSummary(os.Stdout, g)
		}
		fmt.Println()

		if *dotOut != "" {
			out := *dotOut
			if len(fns) > 1 {
				ext := filepath.Ext(out)
				out = strings.TrimSuffix(out, ext) + "_" + fn.Name + ext
			}
			if err := writeDot(out, g); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", out)
		}
	}
	return nil
}

// parse turns the input into per-function instruction streams. An
// objdump listing is recognized by its disassembly header; assembly
// source with no function directives is treated as a single function
// named after the file.
func parse(path, text string) ([]asm.Function, error) {
	style := strings.ToLower(*syntax)
	if style == "auto" {
		if strings.Contains(text, "Disassembly of section") {
			style = "objdump"
		}
	}
	if style == "objdump" {
		fns := asm.ParseObjdump(text)
		if len(fns) == 0 {
			return nil, fmt.Errorf("no functions found in objdump listing %s", path)
		}
		return fns, nil
	}

	var syn asm.Syntax
	if style == "auto" {
		syn = asm.DetectSyntax(text)
	} else {
		var err error
		syn, err = asm.ParseSyntax(style)
		if err != nil {
			return nil, err
		}
	}

	if fns := asm.Functions(text, syn); len(fns) > 0 {
		return fns, nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	insts := asm.Tokenize(text, syn)
	if len(insts) == 0 {
		return nil, fmt.Errorf("no instructions found in %s", path)
	}
	return []asm.Function{{Name: name, Insts: insts}}, nil
}

func loopReport(g *cfg.Graph) {
	fmt.Printf("Loop Analysis for %s:\n", g.Func)
	backEdges := g.BackEdges()
	fmt.Printf("  Back edges: %d\n", len(backEdges))
	for _, e := range backEdges {
		fmt.Printf("    %s -> %s\n", e.From, e.To)
	}
	ls := g.Loops()
	fmt.Printf("  Loops: %d\n", len(ls))
	for i, loop := range ls {
		labels := make([]string, 0, len(loop))
		for l := range loop {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		fmt.Printf("    Loop %d: {%s}\n", i+1, strings.Join(labels, ", "))
	}
}

func writeDot(path string, g *cfg.Graph) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dot.WriteCFG(f, g); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
