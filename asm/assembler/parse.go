// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package assembler implements TEAL assembly source -> program bytes
// (spec.md §4.E) and the inverse disassembly operation (SPEC_FULL.md §3's
// disassembly model). parse groups the token stream into source lines;
// Assemble then runs two passes over those lines: pass 1 collects labels and
// the constant pools, pass 2 emits the final byte stream with resolved
// branch offsets.
package assembler

import (
	"strconv"

	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/asm/lexer"
	"github.com/probechain/goteal/asm/token"
)

// line is one parsed source line: a pragma, a label definition, or an
// instruction with its mnemonic and raw argument tokens.
type line struct {
	file string
	no   int

	isPragma bool
	isLabel  bool

	pragmaName string
	pragmaArg  string

	label string

	mnemonic string
	args     []token.Token
}

// parse tokenizes src and groups tokens into logical lines, dropping
// comments and blank lines.
func parse(filename, src string) ([]line, error) {
	toks := lexer.New(filename, src).Tokenize()

	var lines []line
	var cur []token.Token
	flush := func() error {
		if len(cur) == 0 {
			return nil
		}
		l, err := parseLine(cur)
		if err != nil {
			return err
		}
		cur = nil
		if l != nil {
			lines = append(lines, *l)
		}
		return nil
	}

	for _, t := range toks {
		switch t.Type {
		case token.COMMENT:
			// dropped
		case token.NEWLINE, token.EOF:
			if err := flush(); err != nil {
				return nil, err
			}
			if t.Type == token.EOF {
				return lines, nil
			}
		default:
			cur = append(cur, t)
		}
	}
	return lines, nil
}

func parseLine(toks []token.Token) (*line, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	first := toks[0]
	pos := first.Pos

	if first.Type == token.PRAGMA {
		if len(toks) < 2 {
			return nil, &tealerr.AssemblyError{File: pos.File, Line: pos.Line, Message: "empty #pragma directive"}
		}
		name := toks[1].Literal
		arg := ""
		if len(toks) >= 3 {
			arg = toks[2].Literal
		}
		return &line{file: pos.File, no: pos.Line, isPragma: true, pragmaName: name, pragmaArg: arg}, nil
	}

	if first.Type == token.LABEL {
		if len(toks) != 1 {
			return nil, &tealerr.AssemblyError{File: pos.File, Line: pos.Line, Message: "label must be alone on its line"}
		}
		return &line{file: pos.File, no: pos.Line, isLabel: true, label: first.Literal}, nil
	}

	return &line{file: pos.File, no: pos.Line, mnemonic: first.Literal, args: toks[1:]}, nil
}

// parseIntLiteral accepts decimal, "0x", "0o", and "0b" prefixed forms
// (spec.md §4.E literal decoding rules); Go's base-0 integer parsing
// already implements exactly this rule set.
func parseIntLiteral(lit string) (uint64, error) {
	n, err := strconv.ParseUint(lit, 0, 64)
	if err != nil {
		return 0, err
	}
	return n, nil
}
