// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package assembler

import (
	"encoding/binary"
	"fmt"

	"github.com/probechain/goteal/asm/token"
	"github.com/probechain/goteal/avm/config"
	"github.com/probechain/goteal/avm/opcodes"
)

// constPool accumulates the deduplicated IntC/ByteC tables that back the
// `int`/`byte`/`addr`/`method` pseudo-ops (spec.md §4.E pass 1).
type constPool struct {
	ints     []uint64
	intIndex map[uint64]int
	bytes    [][]byte
	byteIdx  map[string]int
}

func newConstPool() *constPool {
	return &constPool{intIndex: make(map[uint64]int), byteIdx: make(map[string]int)}
}

func (p *constPool) addInt(v uint64) (int, error) {
	if idx, ok := p.intIndex[v]; ok {
		return idx, nil
	}
	idx := len(p.ints)
	if idx > 255 {
		return 0, fmt.Errorf("int constant pool exceeds 256 entries")
	}
	p.ints = append(p.ints, v)
	p.intIndex[v] = idx
	return idx, nil
}

func (p *constPool) addBytes(b []byte) (int, error) {
	key := string(b)
	if idx, ok := p.byteIdx[key]; ok {
		return idx, nil
	}
	idx := len(p.bytes)
	if idx > 255 {
		return 0, fmt.Errorf("byte constant pool exceeds 256 entries")
	}
	p.bytes = append(p.bytes, b)
	p.byteIdx[key] = idx
	return idx, nil
}

// item is one assembled instruction. bytes is populated immediately for
// every instruction whose encoding does not depend on another item's
// position; branch-carrying instructions instead record opcode/labels and
// are encoded once every label's absolute pc is known.
type item struct {
	bytes  []byte
	opcode opcodes.Opcode
	labels []string // ImmLabel: len 1; ImmLabelArr: len N
	size   int
	pc     int // absolute byte offset, filled in after the header size is known
	file   string
	lineNo int
}

// uleb128 appends x to buf as a ULEB128-encoded unsigned integer.
func uleb128(buf []byte, x uint64) []byte {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], x)
	return append(buf, tmp[:n]...)
}

func encodeIntCBlock(vals []uint64) []byte {
	out := []byte{byte(opcodes.OpIntCBlock)}
	out = uleb128(out, uint64(len(vals)))
	for _, v := range vals {
		out = uleb128(out, v)
	}
	return out
}

func encodeByteCBlock(vals [][]byte) []byte {
	out := []byte{byte(opcodes.OpByteCBlock)}
	out = uleb128(out, uint64(len(vals)))
	for _, b := range vals {
		out = uleb128(out, uint64(len(b)))
		out = append(out, b...)
	}
	return out
}

// Assemble compiles TEAL assembly source into program bytes, matching the
// two-pass scheme of spec.md §4.E: parse/collect, then encode with resolved
// branch offsets. filename is used only for diagnostics.
func Assemble(filename, src string) ([]byte, error) {
	lines, err := parse(filename, src)
	if err != nil {
		return nil, err
	}

	var version uint8
	sawVersion := false
	pool := newConstPool()
	labelPos := make(map[string]int) // label name -> index into items
	var items []*item

	for _, l := range lines {
		switch {
		case l.isPragma:
			switch l.pragmaName {
			case "version":
				v, perr := parseIntLiteral(l.pragmaArg)
				if perr != nil || v == 0 || v > config.MaxSupportedVersion {
					return nil, asmErr(l.file, l.no, "invalid #pragma version %q", l.pragmaArg)
				}
				version = uint8(v)
				sawVersion = true
			case "typetrack":
				// recognized, no-op (spec.md §4.E).
			default:
				return nil, asmErr(l.file, l.no, "unrecognized pragma %q", l.pragmaName)
			}

		case l.isLabel:
			if _, dup := labelPos[l.label]; dup {
				return nil, asmErr(l.file, l.no, "duplicate label %q", l.label)
			}
			labelPos[l.label] = len(items)

		default:
			it, ierr := assembleLine(l, pool)
			if ierr != nil {
				return nil, ierr
			}
			items = append(items, it)
		}
	}

	if !sawVersion {
		return nil, asmErr(filename, 0, "missing required #pragma version")
	}

	// Assign relative (post-header) pcs.
	relPC := 0
	for _, it := range items {
		it.pc = relPC
		relPC += it.size
	}

	// Branch offsets address program.Program.Code, which begins right
	// after the version ULEB128 (program.Decode strips it before pc 0 is
	// ever meaningful). So constant-pool instructions count toward pc,
	// but the version prefix itself must not.
	var codeHeader []byte
	if len(pool.ints) > 0 {
		codeHeader = append(codeHeader, encodeIntCBlock(pool.ints)...)
	}
	if len(pool.bytes) > 0 {
		codeHeader = append(codeHeader, encodeByteCBlock(pool.bytes)...)
	}
	codeHeaderLen := len(codeHeader)

	// Resolve label name -> pc (relative to the start of Code) now that
	// codeHeaderLen is known.
	labelPC := make(map[string]int, len(labelPos))
	for name, idx := range labelPos {
		if idx == len(items) {
			labelPC[name] = codeHeaderLen + relPC // label at end-of-program
			continue
		}
		labelPC[name] = codeHeaderLen + items[idx].pc
	}

	out := uleb128(nil, uint64(version))
	out = append(out, codeHeader...)
	for _, it := range items {
		it.pc += codeHeaderLen
		if len(it.labels) == 0 {
			out = append(out, it.bytes...)
			continue
		}
		b, rerr := encodeBranchInstr(it, labelPC)
		if rerr != nil {
			return nil, rerr
		}
		out = append(out, b...)
	}
	return out, nil
}

func encodeBranchInstr(it *item, labelPC map[string]int) ([]byte, error) {
	nextPC := it.pc + it.size
	out := []byte{byte(it.opcode)}
	if len(it.labels) == 1 && it.size == 3 {
		off, err := signedOffset(it.file, it.lineNo, it.labels[0], labelPC, nextPC)
		if err != nil {
			return nil, err
		}
		return binary.BigEndian.AppendUint16(out, uint16(off)), nil
	}
	// switch/match: count byte then N offsets.
	out = append(out, byte(len(it.labels)))
	for _, name := range it.labels {
		off, err := signedOffset(it.file, it.lineNo, name, labelPC, nextPC)
		if err != nil {
			return nil, err
		}
		out = binary.BigEndian.AppendUint16(out, uint16(off))
	}
	return out, nil
}

func signedOffset(file string, lineNo int, label string, labelPC map[string]int, nextPC int) (int16, error) {
	target, ok := labelPC[label]
	if !ok {
		return 0, asmErr(file, lineNo, "undefined label %q", label)
	}
	delta := target - nextPC
	if delta < -32768 || delta > 32767 {
		return 0, asmErr(file, lineNo, "branch to %q out of int16 range", label)
	}
	return int16(delta), nil
}

// assembleLine compiles one instruction or pseudo-op line into an item.
// Its byte encoding is fully resolved here except for label references.
func assembleLine(l line, pool *constPool) (*item, error) {
	base := &item{file: l.file, lineNo: l.no}

	switch l.mnemonic {
	case "int":
		if len(l.args) != 1 {
			return nil, asmErr(l.file, l.no, "int: expected exactly one argument")
		}
		v, err := parseIntLiteral(l.args[0].Literal)
		if err != nil {
			return nil, asmErr(l.file, l.no, "int: %v", err)
		}
		idx, err := pool.addInt(v)
		if err != nil {
			return nil, asmErr(l.file, l.no, "int: %v", err)
		}
		base.bytes = []byte{byte(opcodes.OpIntC), byte(idx)}
		base.size = 2
		return base, nil

	case "byte":
		data, _, err := parseByteLiteral(l.file, l.no, l.args)
		if err != nil {
			return nil, err
		}
		idx, err := pool.addBytes(data)
		if err != nil {
			return nil, asmErr(l.file, l.no, "byte: %v", err)
		}
		base.bytes = []byte{byte(opcodes.OpByteC), byte(idx)}
		base.size = 2
		return base, nil

	case "addr":
		if len(l.args) != 1 {
			return nil, asmErr(l.file, l.no, "addr: expected exactly one argument")
		}
		data, err := parseAddrLiteral(l.file, l.no, l.args[0].Literal)
		if err != nil {
			return nil, err
		}
		idx, err := pool.addBytes(data)
		if err != nil {
			return nil, asmErr(l.file, l.no, "addr: %v", err)
		}
		base.bytes = []byte{byte(opcodes.OpByteC), byte(idx)}
		base.size = 2
		return base, nil

	case "method":
		if len(l.args) != 1 || l.args[0].Type != token.STRING {
			return nil, asmErr(l.file, l.no, `method: expected a quoted signature, e.g. method "transfer(uint64)void"`)
		}
		data := methodSelector(l.args[0].Literal)
		idx, err := pool.addBytes(data)
		if err != nil {
			return nil, asmErr(l.file, l.no, "method: %v", err)
		}
		base.bytes = []byte{byte(opcodes.OpByteC), byte(idx)}
		base.size = 2
		return base, nil

	case "pushint":
		if len(l.args) != 1 {
			return nil, asmErr(l.file, l.no, "pushint: expected exactly one argument")
		}
		v, err := parseIntLiteral(l.args[0].Literal)
		if err != nil {
			return nil, asmErr(l.file, l.no, "pushint: %v", err)
		}
		out := []byte{byte(opcodes.OpPushInt)}
		out = uleb128(out, v)
		base.bytes = out
		base.size = len(out)
		return base, nil

	case "pushbytes":
		data, _, err := parseByteLiteral(l.file, l.no, l.args)
		if err != nil {
			return nil, err
		}
		out := []byte{byte(opcodes.OpPushBytes)}
		out = uleb128(out, uint64(len(data)))
		out = append(out, data...)
		base.bytes = out
		base.size = len(out)
		return base, nil

	case "intcblock":
		vals := make([]uint64, 0, len(l.args))
		for _, a := range l.args {
			v, err := parseIntLiteral(a.Literal)
			if err != nil {
				return nil, asmErr(l.file, l.no, "intcblock: %v", err)
			}
			vals = append(vals, v)
		}
		base.bytes = encodeIntCBlock(vals)
		base.size = len(base.bytes)
		return base, nil

	case "bytecblock":
		// Each operand is taken one token at a time, so only the
		// single-token literal forms (quoted strings, 0x-hex) are
		// supported here; base64(...)/base32(...) operands should use
		// `byte` on their own line instead.
		vals := make([][]byte, 0, len(l.args))
		for i := range l.args {
			data, _, err := parseByteLiteral(l.file, l.no, l.args[i:i+1])
			if err != nil {
				return nil, asmErr(l.file, l.no, "bytecblock: %v", err)
			}
			vals = append(vals, data)
		}
		base.bytes = encodeByteCBlock(vals)
		base.size = len(base.bytes)
		return base, nil
	}

	op, ok := opcodes.ByName(l.mnemonic)
	if !ok {
		return nil, asmErr(l.file, l.no, "unknown mnemonic %q", l.mnemonic)
	}
	spec, _ := opcodes.Lookup(op)
	base.opcode = op

	switch spec.Immediates {
	case opcodes.ImmNone:
		base.bytes = []byte{byte(op)}
		base.size = 1

	case opcodes.ImmUint8:
		if len(l.args) != 1 {
			return nil, asmErr(l.file, l.no, "%s: expected exactly one argument", l.mnemonic)
		}
		v, ok := resolveField(l.args[0].Literal, fieldTableFor(l.mnemonic, 0))
		if !ok {
			return nil, asmErr(l.file, l.no, "%s: unrecognized field %q", l.mnemonic, l.args[0].Literal)
		}
		base.bytes = []byte{byte(op), byte(v)}
		base.size = 2

	case opcodes.ImmUint8x2:
		if len(l.args) != 2 {
			return nil, asmErr(l.file, l.no, "%s: expected exactly two arguments", l.mnemonic)
		}
		v0, ok0 := resolveField(l.args[0].Literal, fieldTableFor(l.mnemonic, 0))
		v1, ok1 := resolveField(l.args[1].Literal, fieldTableFor(l.mnemonic, 1))
		if !ok0 || !ok1 {
			return nil, asmErr(l.file, l.no, "%s: unrecognized argument", l.mnemonic)
		}
		base.bytes = []byte{byte(op), byte(v0), byte(v1)}
		base.size = 3

	case opcodes.ImmLabel:
		if len(l.args) != 1 {
			return nil, asmErr(l.file, l.no, "%s: expected exactly one label argument", l.mnemonic)
		}
		base.labels = []string{l.args[0].Literal}
		base.size = 3

	case opcodes.ImmLabelArr:
		if len(l.args) == 0 {
			return nil, asmErr(l.file, l.no, "%s: expected at least one label argument", l.mnemonic)
		}
		for _, a := range l.args {
			base.labels = append(base.labels, a.Literal)
		}
		base.size = 1 + 1 + 2*len(l.args)

	default:
		return nil, asmErr(l.file, l.no, "%s: this mnemonic must be written via its pseudo-op", l.mnemonic)
	}

	return base, nil
}

// fieldTableFor resolves which named-field vocabulary, if any, applies to
// argument position argIdx of mnemonic; a nil table means "plain integer
// only".
func fieldTableFor(mnemonic string, argIdx int) map[string]uint64 {
	switch mnemonic {
	case "txn", "txna":
		if argIdx == 0 {
			return txnFields
		}
	case "gtxn":
		if argIdx == 1 {
			return txnFields
		}
	case "gtxna":
		if argIdx == 1 {
			return txnFields
		}
	case "global":
		return globalFields
	case "asset_holding_get":
		return assetHoldingFields
	case "asset_params_get":
		return assetParamsFields
	case "app_params_get":
		return appParamsFields
	}
	return nil
}
