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
	"sort"
	"strings"

	"github.com/probechain/goteal/avm/config"
	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/opcodes"
)

// Disassemble renders program bytes back into TEAL assembly text. Constant
// pools are rendered as explicit intcblock/bytecblock/intc/bytec
// instructions, since the `int`/`byte` pseudo-op convenience forms cannot be
// recovered once folded into a pool index (spec.md §8's round-trip property
// only promises assemble(disassemble(p)) is semantically equivalent to p,
// not textually identical to the original source).
func Disassemble(raw []byte) (string, error) {
	version, n := binary.Uvarint(raw)
	if n <= 0 {
		return "", tealerr.ErrTruncatedProgram
	}
	if version == 0 || version > config.MaxSupportedVersion {
		return "", tealerr.ErrUnsupportedVersion
	}
	code := raw[n:]

	labels, err := synthesizeLabels(code, uint8(version))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#pragma version %d\n", version)

	pc := 0
	for pc < len(code) {
		if name, ok := labels[pc]; ok {
			fmt.Fprintf(&b, "%s:\n", name)
		}
		op := opcodes.Opcode(code[pc])
		spec, ok := opcodes.Lookup(op)
		if !ok || spec.MinVersion > uint8(version) {
			return "", tealerr.ErrInvalidOpcode
		}
		size, ok := instructionSizePublic(code, pc, spec)
		if !ok {
			return "", tealerr.ErrTruncatedProgram
		}
		line, err := disassembleInstr(code, pc, size, spec, labels)
		if err != nil {
			return "", err
		}
		b.WriteString(line)
		b.WriteByte('\n')
		pc += size
	}
	if name, ok := labels[pc]; ok {
		fmt.Fprintf(&b, "%s:\n", name)
	}
	return b.String(), nil
}

// synthesizeLabels pre-scans the instruction stream and assigns a
// deterministic "lbl_<pc>" name to every byte offset any branch-carrying
// instruction targets, so disassembled output is valid, re-assemblable
// source.
func synthesizeLabels(code []byte, version uint8) (map[int]string, error) {
	targets := make(map[int]bool)
	pc := 0
	for pc < len(code) {
		op := opcodes.Opcode(code[pc])
		spec, ok := opcodes.Lookup(op)
		if !ok || spec.MinVersion > version {
			break
		}
		size, ok := instructionSizePublic(code, pc, spec)
		if !ok {
			break
		}
		nextPC := pc + size
		switch spec.Immediates {
		case opcodes.ImmLabel:
			off := int16(binary.BigEndian.Uint16(code[pc+1 : pc+3]))
			targets[nextPC+int(off)] = true
		case opcodes.ImmLabelArr:
			count := int(code[pc+1])
			for i := 0; i < count; i++ {
				off := int16(binary.BigEndian.Uint16(code[pc+2+2*i : pc+4+2*i]))
				targets[nextPC+int(off)] = true
			}
		}
		pc = nextPC
	}

	ordered := make([]int, 0, len(targets))
	for t := range targets {
		ordered = append(ordered, t)
	}
	sort.Ints(ordered)

	names := make(map[int]string, len(ordered))
	for _, t := range ordered {
		names[t] = fmt.Sprintf("lbl_%d", t)
	}
	return names, nil
}

// instructionSizePublic duplicates program's unexported instructionSize: the
// disassembler needs the same byte-accounting logic but program.go keeps it
// private to its own decode pass.
func instructionSizePublic(code []byte, pc int, spec opcodes.Spec) (int, bool) {
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

func disassembleInstr(code []byte, pc, size int, spec opcodes.Spec, labels map[int]string) (string, error) {
	nextPC := pc + size
	switch spec.Immediates {
	case opcodes.ImmNone:
		return spec.Name, nil

	case opcodes.ImmUint8:
		return fmt.Sprintf("%s %d", spec.Name, code[pc+1]), nil

	case opcodes.ImmUint8x2:
		return fmt.Sprintf("%s %d %d", spec.Name, code[pc+1], code[pc+2]), nil

	case opcodes.ImmVarUint:
		v, _ := binary.Uvarint(code[pc+1:])
		return fmt.Sprintf("%s %d", spec.Name, v), nil

	case opcodes.ImmLenBytes:
		length, n := binary.Uvarint(code[pc+1:])
		data := code[pc+1+n : pc+1+n+int(length)]
		return fmt.Sprintf("%s 0x%x", spec.Name, data), nil

	case opcodes.ImmVarUintArr:
		rest := code[pc+1:]
		count, n := binary.Uvarint(rest)
		vals := make([]string, 0, count)
		off := n
		for i := uint64(0); i < count; i++ {
			v, vn := binary.Uvarint(rest[off:])
			vals = append(vals, fmt.Sprintf("%d", v))
			off += vn
		}
		return fmt.Sprintf("%s %s", spec.Name, strings.Join(vals, " ")), nil

	case opcodes.ImmBytesArr:
		rest := code[pc+1:]
		count, n := binary.Uvarint(rest)
		vals := make([]string, 0, count)
		off := n
		for i := uint64(0); i < count; i++ {
			length, ln := binary.Uvarint(rest[off:])
			off += ln
			vals = append(vals, fmt.Sprintf("0x%x", rest[off:off+int(length)]))
			off += int(length)
		}
		return fmt.Sprintf("%s %s", spec.Name, strings.Join(vals, " ")), nil

	case opcodes.ImmLabel:
		off := int16(binary.BigEndian.Uint16(code[pc+1 : pc+3]))
		target := nextPC + int(off)
		name, ok := labels[target]
		if !ok {
			return "", fmt.Errorf("disassemble: branch at pc %d has no synthesized label for target %d", pc, target)
		}
		return fmt.Sprintf("%s %s", spec.Name, name), nil

	case opcodes.ImmLabelArr:
		count := int(code[pc+1])
		names := make([]string, 0, count)
		for i := 0; i < count; i++ {
			off := int16(binary.BigEndian.Uint16(code[pc+2+2*i : pc+4+2*i]))
			target := nextPC + int(off)
			name, ok := labels[target]
			if !ok {
				return "", fmt.Errorf("disassemble: branch at pc %d has no synthesized label for target %d", pc, target)
			}
			names = append(names, name)
		}
		return fmt.Sprintf("%s %s", spec.Name, strings.Join(names, " ")), nil

	default:
		return spec.Name, nil
	}
}
