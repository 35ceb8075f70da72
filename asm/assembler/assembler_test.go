// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package assembler

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/probechain/goteal/avm/opcodes"
	"github.com/probechain/goteal/avm/program"
)

func TestAssembleSimpleArithmetic(t *testing.T) {
	src := "#pragma version 2\nint 1\nint 2\n+\nreturn\n"
	raw, err := Assemble("t.teal", src)
	if err != nil {
		t.Fatal(err)
	}
	p, err := program.Decode(raw, 8)
	if err != nil {
		t.Fatalf("decode assembled output: %v", err)
	}
	if p.Version != 2 {
		t.Fatalf("Version = %d; want 2", p.Version)
	}
	// intcblock(2 vals) + intc 0 + intc 1 + add + return
	wantOps := []opcodes.Opcode{opcodes.OpIntCBlock, opcodes.OpIntC, opcodes.OpIntC, opcodes.OpAdd, opcodes.OpReturn}
	pc := 0
	for i, want := range wantOps {
		if pc >= len(p.Code) {
			t.Fatalf("instruction %d: ran out of code at pc %d", i, pc)
		}
		got := opcodes.Opcode(p.Code[pc])
		if got != want {
			t.Fatalf("instruction %d at pc %d: opcode %d, want %d", i, pc, got, want)
		}
		spec, _ := opcodes.Lookup(got)
		switch spec.Immediates {
		case opcodes.ImmNone:
			pc++
		case opcodes.ImmUint8:
			pc += 2
		case opcodes.ImmVarUintArr:
			// intcblock: opcode + count(1) + 2 ULEB128 values (each 1 byte: 1, 2)
			pc += 4
		default:
			t.Fatalf("unexpected immediate kind in test opcode list")
		}
	}
}

func TestAssembleMissingVersionPragma(t *testing.T) {
	_, err := Assemble("t.teal", "int 1\nreturn\n")
	if err == nil {
		t.Fatal("expected an error for a missing #pragma version")
	}
}

func TestAssembleConstPoolDeduplicates(t *testing.T) {
	src := "#pragma version 2\nint 5\nint 5\nint 5\n+\n+\nreturn\n"
	raw, err := Assemble("t.teal", src)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := program.Decode(raw, 8)
	// intcblock should carry exactly one value (5), referenced three times.
	if opcodes.Opcode(p.Code[0]) != opcodes.OpIntCBlock {
		t.Fatalf("expected intcblock at pc 0, got opcode %d", p.Code[0])
	}
	count, n := binary.Uvarint(p.Code[1:])
	if count != 1 {
		t.Fatalf("intcblock count = %d; want 1 (deduplicated)", count)
	}
	_ = n
}

func TestAssembleBranchResolvesForwardLabel(t *testing.T) {
	src := "#pragma version 4\nint 1\nbnz done\nint 0\nreturn\ndone:\nint 1\nreturn\n"
	raw, err := Assemble("t.teal", src)
	if err != nil {
		t.Fatal(err)
	}
	p, err := program.Decode(raw, 8)
	if err != nil {
		t.Fatal(err)
	}
	// Find the bnz instruction and confirm its target is a valid branch target.
	pc := 0
	for pc < len(p.Code) {
		op := opcodes.Opcode(p.Code[pc])
		spec, ok := opcodes.Lookup(op)
		if !ok {
			t.Fatalf("unknown opcode %d at pc %d", op, pc)
		}
		if op == opcodes.OpBNZ {
			off := int16(binary.BigEndian.Uint16(p.Code[pc+1 : pc+3]))
			target := pc + 3 + int(off)
			if !p.ValidBranchTarget(target) {
				t.Fatalf("bnz target %d is not a valid branch target", target)
			}
			return
		}
		switch spec.Immediates {
		case opcodes.ImmNone:
			pc++
		case opcodes.ImmUint8:
			pc += 2
		case opcodes.ImmLabel:
			pc += 3
		case opcodes.ImmVarUintArr:
			count, n := binary.Uvarint(p.Code[pc+1:])
			off := pc + 1 + n
			for i := uint64(0); i < count; i++ {
				_, vn := binary.Uvarint(p.Code[off:])
				off += vn
			}
			pc = off
		default:
			t.Fatalf("unexpected immediate kind %v while scanning", spec.Immediates)
		}
	}
	t.Fatal("no bnz instruction found in assembled output")
}

func TestAssembleUndefinedLabelErrors(t *testing.T) {
	_, err := Assemble("t.teal", "#pragma version 4\nint 1\nbnz nowhere\nreturn\n")
	if err == nil {
		t.Fatal("expected an error for a branch to an undefined label")
	}
}

func TestAssembleDuplicateLabelErrors(t *testing.T) {
	_, err := Assemble("t.teal", "#pragma version 4\nloop:\nint 1\nloop:\nreturn\n")
	if err == nil {
		t.Fatal("expected an error for a duplicate label")
	}
}

func TestAssembleByteLiteralForms(t *testing.T) {
	cases := []string{
		`byte "hello"`,
		`byte 0x68656c6c6f`,
		`byte base64(aGVsbG8=)`,
	}
	for _, line := range cases {
		src := "#pragma version 2\n" + line + "\npop\nint 1\nreturn\n"
		if _, err := Assemble("t.teal", src); err != nil {
			t.Errorf("Assemble(%q) failed: %v", line, err)
		}
	}
}

func TestAssembleDisassembleRoundTrip(t *testing.T) {
	src := "#pragma version 4\nint 1\nbnz done\nint 0\nreturn\ndone:\nint 1\nreturn\n"
	raw, err := Assemble("t.teal", src)
	if err != nil {
		t.Fatal(err)
	}
	text, err := Disassemble(raw)
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(text, "#pragma version 4") {
		t.Fatalf("disassembly missing version pragma: %q", text)
	}
	if !strings.Contains(text, "bnz lbl_") {
		t.Fatalf("disassembly missing synthesized branch label: %q", text)
	}

	raw2, err := Assemble("roundtrip.teal", text)
	if err != nil {
		t.Fatalf("re-assembling disassembled text failed: %v", err)
	}
	p1, _ := program.Decode(raw, 8)
	p2, _ := program.Decode(raw2, 8)
	if p1.Len() != p2.Len() {
		t.Fatalf("round trip changed program length: %d vs %d", p1.Len(), p2.Len())
	}
}

func TestDisassembleUnsupportedVersion(t *testing.T) {
	if _, err := Disassemble([]byte{99}); err == nil {
		t.Fatal("expected an error disassembling an unsupported version")
	}
}

func TestResolveFieldNamedAndNumeric(t *testing.T) {
	v, ok := resolveField("Sender", txnFields)
	if !ok || v != 0 {
		t.Fatalf("resolveField(Sender) = %d, %v; want 0, true", v, ok)
	}
	v, ok = resolveField("7", txnFields)
	if !ok || v != 7 {
		t.Fatalf("resolveField(7) = %d, %v; want 7, true", v, ok)
	}
	if _, ok := resolveField("NotAField", txnFields); ok {
		t.Fatal("resolveField should fail for an unrecognized name")
	}
}

func TestAssembleTxnFieldByName(t *testing.T) {
	src := "#pragma version 2\ntxn Sender\npop\nint 1\nreturn\n"
	raw, err := Assemble("t.teal", src)
	if err != nil {
		t.Fatal(err)
	}
	p, _ := program.Decode(raw, 8)
	// `int 1` is pooled, so Code opens with the 3-byte `intcblock 1` header
	// (opcode, count, value) and the `txn` instruction follows at offset 3.
	if opcodes.Opcode(p.Code[3]) != opcodes.OpTxn || p.Code[4] != 0 {
		t.Fatalf("txn Sender should encode as txn(0), got opcode=%d field=%d", p.Code[3], p.Code[4])
	}
}
