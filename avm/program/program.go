// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package program decodes the AVM's on-disk byte format: a ULEB128 version
// prefix followed by an instruction stream (spec.md §3/§6).
package program

import (
	"encoding/binary"

	"github.com/probechain/goteal/avm/opcodes"
	tealerr "github.com/probechain/goteal/avm/errors"
)

// Program is a decoded, version-tagged instruction stream ready to run.
type Program struct {
	Version uint8
	Code    []byte // instruction bytes, excluding the version prefix

	// starts is the set of byte offsets where an instruction begins,
	// computed by a single linear scan (spec.md §9's branch-safety note).
	// A branch landing anywhere else is BranchOutOfBounds.
	starts map[int]bool
}

// Decode parses the version prefix and validates it against maxVersion,
// then pre-scans the instruction stream to record every valid branch
// target. Decode does not validate individual opcode operands beyond
// instruction boundaries; that happens lazily during execution so that an
// opcode introduced in a later program version does not block loading a
// program that never reaches it.
func Decode(raw []byte, maxVersion uint8) (*Program, error) {
	version, n := binary.Uvarint(raw)
	if n <= 0 {
		return nil, tealerr.ErrTruncatedProgram
	}
	if version == 0 || version > uint64(maxVersion) {
		return nil, tealerr.ErrUnsupportedVersion
	}

	p := &Program{Version: uint8(version), Code: raw[n:]}
	p.starts = scanInstructionStarts(p.Code, p.Version)
	return p, nil
}

// scanInstructionStarts walks the code once, decoding each instruction's
// immediate length so later random-access branch checks are O(1) set
// membership tests rather than re-walking the program.
func scanInstructionStarts(code []byte, version uint8) map[int]bool {
	starts := make(map[int]bool)
	pc := 0
	for pc < len(code) {
		starts[pc] = true
		op := opcodes.Opcode(code[pc])
		spec, ok := opcodes.Lookup(op)
		if !ok || spec.MinVersion > version {
			// Unknown/too-new opcode: stop the scan here. The interpreter
			// will raise InvalidOpcode if execution ever reaches pc; any
			// branch target beyond this point is simply absent from
			// starts and will be rejected as out of bounds.
			return starts
		}
		size, ok := instructionSize(code, pc, spec)
		if !ok {
			return starts
		}
		pc += size
	}
	return starts
}

// instructionSize returns the total byte length (opcode + immediates) of
// the instruction at pc, or false if the immediate runs past the end of
// code.
func instructionSize(code []byte, pc int, spec opcodes.Spec) (int, bool) {
	rest := code[pc+1:]
	switch spec.Immediates {
	case opcodes.ImmNone:
		return 1, true
	case opcodes.ImmUint8:
		if len(rest) < 1 {
			return 0, false
		}
		return 2, true
	case opcodes.ImmUint8x2:
		if len(rest) < 2 {
			return 0, false
		}
		return 3, true
	case opcodes.ImmLabel:
		if len(rest) < 2 {
			return 0, false
		}
		return 3, true
	case opcodes.ImmVarUint:
		_, n := binary.Uvarint(rest)
		if n <= 0 {
			return 0, false
		}
		return 1 + n, true
	case opcodes.ImmLenBytes:
		length, n := binary.Uvarint(rest)
		if n <= 0 || len(rest) < n+int(length) {
			return 0, false
		}
		return 1 + n + int(length), true
	case opcodes.ImmVarUintArr:
		count, n := binary.Uvarint(rest)
		off := n
		if n <= 0 {
			return 0, false
		}
		for i := uint64(0); i < count; i++ {
			if off >= len(rest) {
				return 0, false
			}
			_, vn := binary.Uvarint(rest[off:])
			if vn <= 0 {
				return 0, false
			}
			off += vn
		}
		return 1 + off, true
	case opcodes.ImmBytesArr:
		count, n := binary.Uvarint(rest)
		off := n
		if n <= 0 {
			return 0, false
		}
		for i := uint64(0); i < count; i++ {
			length, ln := binary.Uvarint(rest[off:])
			if ln <= 0 {
				return 0, false
			}
			off += ln + int(length)
			if off > len(rest) {
				return 0, false
			}
		}
		return 1 + off, true
	case opcodes.ImmLabelArr:
		if len(rest) < 1 {
			return 0, false
		}
		count := int(rest[0])
		need := 1 + count*2
		if len(rest) < need {
			return 0, false
		}
		return 1 + need, true
	default:
		return 1, true
	}
}

// ValidBranchTarget reports whether pc is either an instruction boundary
// or exactly the end of the program (the only two places a branch, and
// end-of-program fallthrough, may land).
func (p *Program) ValidBranchTarget(pc int) bool {
	if pc == len(p.Code) {
		return true
	}
	return p.starts[pc]
}

// Len returns the number of instruction bytes (excluding the version
// prefix).
func (p *Program) Len() int { return len(p.Code) }
