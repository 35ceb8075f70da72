// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

// Command tealvm is a thin front end over the AVM library: execute an
// already-assembled or freshly-assembled program, assemble TEAL source into
// program bytes, or validate a program without running it.
//
// Usage:
//
//	tealvm execute [--type file|inline|bytecode] [--mode signature|application] [--budget N] [--version N] [--step] [--show-stack] <path>
//	tealvm assemble [--output P] [--format binary|hex|base64] <path>
//	tealvm validate [--version N] <path>
package main

import (
	"encoding/base64"
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"github.com/probechain/goteal/asm/assembler"
	"github.com/probechain/goteal/avm/config"
	"github.com/probechain/goteal/avm/interpreter"
	"github.com/probechain/goteal/avm/ledger"
	"github.com/probechain/goteal/avm/program"
)

// Exit codes per the CLI surface contract: 0 approve/success, 1
// reject/failure, 2 usage error, 3 internal error.
const (
	exitApprove  = 0
	exitReject   = 1
	exitUsage    = 2
	exitInternal = 3
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(exitUsage)
	}

	var code int
	switch os.Args[1] {
	case "execute":
		code = runExecute(os.Args[2:])
	case "assemble":
		code = runAssemble(os.Args[2:])
	case "validate":
		code = runValidate(os.Args[2:])
	default:
		usage()
		code = exitUsage
	}
	os.Exit(code)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: tealvm <execute|assemble|validate> [flags] <path>")
}

// loadProgramBytes resolves the input source per --type: "file" assembles a
// .teal source file, "bytecode" reads raw program bytes, "inline" treats
// path itself as TEAL source text.
func loadProgramBytes(kind, path string) ([]byte, error) {
	switch kind {
	case "inline":
		return assembler.Assemble("<inline>", path)
	case "bytecode":
		return os.ReadFile(path)
	case "file", "":
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return assembler.Assemble(path, string(src))
	default:
		return nil, fmt.Errorf("unknown --type %q", kind)
	}
}

func runExecute(args []string) int {
	fs := flag.NewFlagSet("execute", flag.ContinueOnError)
	typ := fs.String("type", "file", "input kind: file, inline, bytecode")
	mode := fs.String("mode", "signature", "run mode: signature, application")
	budget := fs.Uint64("budget", 0, "cost budget override (0 = mode default)")
	version := fs.Uint("version", config.MaxSupportedVersion, "max program version admitted")
	step := fs.Bool("step", false, "single-step and print each instruction's pc and stack depth")
	showStack := fs.Bool("show-stack", false, "print the operand stack on halt/error")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}
	path := fs.Arg(0)

	raw, err := loadProgramBytes(*typ, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitUsage
	}

	prog, err := program.Decode(raw, uint8(*version))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitInternal
	}

	runMode := config.LogicSig
	if *mode == "application" {
		runMode = config.Application
	}
	cfg := config.New(runMode, uint8(*version), 1)
	if *budget > 0 {
		cfg.CostBudget = *budget
	}

	it := interpreter.New(prog, cfg, ledger.NewMemory())

	var result interpreter.Result
	if *step {
		for {
			fmt.Fprintf(os.Stderr, "pc=%d stack_depth=%d\n", it.PC(), it.Stack().Len())
			res, done := it.Step()
			if done {
				result = res
				break
			}
		}
	} else {
		result = it.Run()
	}
	return reportResult(result, *showStack, it)
}

func reportResult(result interpreter.Result, showStack bool, it *interpreter.Interpreter) int {
	if showStack {
		st := it.Stack()
		fmt.Fprintf(os.Stderr, "final stack depth: %d\n", st.Len())
		for i := 0; i < st.Len(); i++ {
			v, _ := st.Peek(i)
			fmt.Fprintf(os.Stderr, "  [%d] %v\n", i, v)
		}
	}
	switch result.State {
	case interpreter.StateHalted:
		if result.Approved {
			fmt.Println("approve")
			return exitApprove
		}
		fmt.Println("reject")
		return exitReject
	case interpreter.StateErrored:
		fmt.Fprintf(os.Stderr, "error: %v\n", result.Err)
		return exitInternal
	default:
		fmt.Fprintln(os.Stderr, "error: program did not reach a terminal state")
		return exitInternal
	}
}

func runAssemble(args []string) int {
	fs := flag.NewFlagSet("assemble", flag.ContinueOnError)
	output := fs.String("output", "", "output file (default: stdout)")
	format := fs.String("format", "binary", "output format: binary, hex, base64")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}

	src, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitUsage
	}

	raw, err := assembler.Assemble(fs.Arg(0), string(src))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitInternal
	}

	var out []byte
	switch *format {
	case "binary", "":
		out = raw
	case "hex":
		out = []byte(hex.EncodeToString(raw))
	case "base64":
		out = []byte(base64.StdEncoding.EncodeToString(raw))
	default:
		fmt.Fprintf(os.Stderr, "error: unknown --format %q\n", *format)
		return exitUsage
	}

	if *output == "" {
		os.Stdout.Write(out)
		return exitApprove
	}
	if err := os.WriteFile(*output, out, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitInternal
	}
	return exitApprove
}

func runValidate(args []string) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	version := fs.Uint("version", config.MaxSupportedVersion, "max program version admitted")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if fs.NArg() < 1 {
		usage()
		return exitUsage
	}

	raw, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return exitUsage
	}

	if _, err := program.Decode(raw, uint8(*version)); err != nil {
		fmt.Fprintf(os.Stderr, "invalid: %v\n", err)
		return exitReject
	}
	fmt.Println("valid")
	return exitApprove
}
