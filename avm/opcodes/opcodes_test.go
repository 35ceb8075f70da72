// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package opcodes

import (
	"testing"

	"github.com/probechain/goteal/avm/value"
)

func TestByNameAndLookupRoundTrip(t *testing.T) {
	names := []string{"+", "-", "b+", "txn", "gtxna", "callsub", "retsub", "sha256", "app_global_put"}
	for _, name := range names {
		op, ok := ByName(name)
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		spec, ok := Lookup(op)
		if !ok {
			t.Fatalf("Lookup(%d) for %q not found", op, name)
		}
		if spec.Name != name {
			t.Fatalf("Lookup(ByName(%q)).Name = %q", name, spec.Name)
		}
	}
}

func TestLookupUnknownOpcode(t *testing.T) {
	if _, ok := Lookup(Opcode(255)); ok {
		t.Fatal("Lookup(255) should be undefined")
	}
}

func TestByNameUnknownMnemonic(t *testing.T) {
	if _, ok := ByName("not_a_real_opcode"); ok {
		t.Fatal("ByName of a bogus mnemonic should fail")
	}
}

func TestEveryDefinedOpcodeHasAName(t *testing.T) {
	count := 0
	for op := Opcode(0); int(op) < Count(); op++ {
		spec, ok := Lookup(op)
		if !ok {
			continue
		}
		count++
		if spec.Name == "" {
			t.Errorf("opcode %d has an empty name", op)
		}
		if spec.Op != op {
			t.Errorf("opcode %d: Spec.Op = %d, want %d", op, spec.Op, op)
		}
	}
	if count == 0 {
		t.Fatal("registry appears empty")
	}
}

func TestApplicationOnlyOpcodesAreTagged(t *testing.T) {
	op, ok := ByName("app_global_get")
	if !ok {
		t.Fatal("app_global_get missing")
	}
	spec, _ := Lookup(op)
	if spec.Mode != ApplicationOnly {
		t.Fatalf("app_global_get Mode = %v; want ApplicationOnly", spec.Mode)
	}
}

func TestValueType(t *testing.T) {
	if ValueType(value.Uint(1)) != TypeUint {
		t.Fatal("ValueType(Uint) should be TypeUint")
	}
	if ValueType(value.MustBytes([]byte{1})) != TypeBytes {
		t.Fatal("ValueType(Bytes) should be TypeBytes")
	}
}

func TestImmediateSchemaSpotChecks(t *testing.T) {
	cases := map[string]ImmKind{
		"+":          ImmNone,
		"intc":       ImmUint8,
		"substring":  ImmUint8x2,
		"pushint":    ImmVarUint,
		"pushbytes":  ImmLenBytes,
		"bnz":        ImmLabel,
		"switch":     ImmLabelArr,
		"intcblock":  ImmVarUintArr,
		"bytecblock": ImmBytesArr,
	}
	for name, want := range cases {
		op, ok := ByName(name)
		if !ok {
			t.Fatalf("ByName(%q) not found", name)
		}
		spec, _ := Lookup(op)
		if spec.Immediates != want {
			t.Errorf("%q Immediates = %v; want %v", name, spec.Immediates, want)
		}
	}
}
