// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package program

import (
	"encoding/binary"
	"errors"
	"testing"

	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/opcodes"
)

func uleb(x uint64) []byte {
	buf := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(buf, x)
	return buf[:n]
}

func withVersion(version uint8, code ...byte) []byte {
	raw := append([]byte{}, uleb(uint64(version))...)
	return append(raw, code...)
}

func TestDecodeBasic(t *testing.T) {
	raw := withVersion(1, byte(opcodes.OpAdd))
	p, err := Decode(raw, 8)
	if err != nil {
		t.Fatal(err)
	}
	if p.Version != 1 {
		t.Fatalf("Version = %d; want 1", p.Version)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d; want 1", p.Len())
	}
}

func TestDecodeRejectsUnsupportedVersion(t *testing.T) {
	raw := withVersion(9, byte(opcodes.OpAdd))
	if _, err := Decode(raw, 8); !errors.Is(err, tealerr.ErrUnsupportedVersion) {
		t.Fatalf("Decode(version 9, max 8) = %v; want ErrUnsupportedVersion", err)
	}
	raw = withVersion(0, byte(opcodes.OpAdd))
	if _, err := Decode(raw, 8); !errors.Is(err, tealerr.ErrUnsupportedVersion) {
		t.Fatalf("Decode(version 0) = %v; want ErrUnsupportedVersion", err)
	}
}

func TestDecodeTruncatedVersion(t *testing.T) {
	if _, err := Decode(nil, 8); !errors.Is(err, tealerr.ErrTruncatedProgram) {
		t.Fatalf("Decode(empty) = %v; want ErrTruncatedProgram", err)
	}
}

func TestValidBranchTargetAndEndOfProgram(t *testing.T) {
	// intc_0 (ImmNone, size 1), then +, totalling 2 code bytes.
	raw := withVersion(2, byte(opcodes.OpIntC0), byte(opcodes.OpAdd))
	p, err := Decode(raw, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !p.ValidBranchTarget(0) {
		t.Fatal("pc 0 should be a valid instruction start")
	}
	if !p.ValidBranchTarget(1) {
		t.Fatal("pc 1 should be a valid instruction start (the add)")
	}
	if !p.ValidBranchTarget(2) {
		t.Fatal("pc == len(Code) should be a valid fallthrough/end target")
	}
	if p.ValidBranchTarget(99) {
		t.Fatal("pc past the end should not be a valid branch target")
	}
}

func TestScanStopsAtUnknownOpcode(t *testing.T) {
	raw := withVersion(2, byte(opcodes.OpAdd), 0xFE, byte(opcodes.OpAdd))
	p, err := Decode(raw, 8)
	if err != nil {
		t.Fatal(err)
	}
	if !p.ValidBranchTarget(0) {
		t.Fatal("pc 0 should be valid (the first add)")
	}
	if p.ValidBranchTarget(2) {
		t.Fatal("pc 2 should not be registered: the scan stops at the unknown opcode byte")
	}
}

func TestInstructionSizeImmUint8AndLabel(t *testing.T) {
	specU8, _ := opcodes.Lookup(opcodes.OpIntC)
	if n, ok := instructionSize([]byte{byte(opcodes.OpIntC), 0x05}, 0, specU8); !ok || n != 2 {
		t.Fatalf("ImmUint8 size = %d, %v; want 2, true", n, ok)
	}
	specLabel, _ := opcodes.Lookup(opcodes.OpBNZ)
	if n, ok := instructionSize([]byte{byte(opcodes.OpBNZ), 0x00, 0x05}, 0, specLabel); !ok || n != 3 {
		t.Fatalf("ImmLabel size = %d, %v; want 3, true", n, ok)
	}
	if _, ok := instructionSize([]byte{byte(opcodes.OpBNZ), 0x00}, 0, specLabel); ok {
		t.Fatal("truncated ImmLabel operand should report false")
	}
}

func TestInstructionSizeVarUintAndLenBytes(t *testing.T) {
	specPushInt, _ := opcodes.Lookup(opcodes.OpPushInt)
	code := append([]byte{byte(opcodes.OpPushInt)}, uleb(300)...)
	n, ok := instructionSize(code, 0, specPushInt)
	if !ok || n != len(code) {
		t.Fatalf("ImmVarUint size = %d, %v; want %d, true", n, ok, len(code))
	}

	specPushBytes, _ := opcodes.Lookup(opcodes.OpPushBytes)
	payload := []byte("hello")
	code = append([]byte{byte(opcodes.OpPushBytes)}, uleb(uint64(len(payload)))...)
	code = append(code, payload...)
	n, ok = instructionSize(code, 0, specPushBytes)
	if !ok || n != len(code) {
		t.Fatalf("ImmLenBytes size = %d, %v; want %d, true", n, ok, len(code))
	}
}
