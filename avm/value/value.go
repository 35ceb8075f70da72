// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package value implements the AVM's two-shape tagged value: an unsigned
// 64-bit integer or an immutable byte string. Both the operand stack and
// the scratch space hold exactly this type; there is no generalization to
// richer shapes (spec.md §9 is explicit that implementations should not
// widen the variant).
package value

import (
	"bytes"
	"fmt"

	errors "github.com/probechain/goteal/avm/errors"
)

// MaxBytesLength is the largest a Bytes value may be (spec.md §3).
const MaxBytesLength = 4096

// Kind tags which shape a Value holds.
type Kind uint8

const (
	KindUint Kind = iota
	KindBytes
)

func (k Kind) String() string {
	if k == KindUint {
		return "uint64"
	}
	return "[]byte"
}

// Value is the tagged union pushed on the stack and stored in scratch
// space. The zero Value is Uint(0), matching scratch's default fill.
type Value struct {
	kind  Kind
	num   uint64
	bytes []byte // immutable; never mutated in place once constructed
}

// Uint constructs an unsigned-integer Value.
func Uint(n uint64) Value { return Value{kind: KindUint, num: n} }

// Bytes constructs a byte-string Value. The caller must not mutate b after
// passing it in; callers that need to retain ownership should copy first.
func Bytes(b []byte) (Value, error) {
	if len(b) > MaxBytesLength {
		return Value{}, errors.ErrBytesTooLong
	}
	return Value{kind: KindBytes, bytes: b}, nil
}

// MustBytes is Bytes but panics on an oversized slice; only safe for
// constants known at compile time (e.g. in tests).
func MustBytes(b []byte) Value {
	v, err := Bytes(b)
	if err != nil {
		panic(err)
	}
	return v
}

// Kind reports which shape v holds.
func (v Value) Kind() Kind { return v.kind }

// IsUint reports whether v holds an unsigned integer.
func (v Value) IsUint() bool { return v.kind == KindUint }

// IsBytes reports whether v holds a byte string.
func (v Value) IsBytes() bool { return v.kind == KindBytes }

// Uint64 returns the numeric value, or a TypeError if v holds Bytes.
func (v Value) Uint64() (uint64, error) {
	if v.kind != KindUint {
		return 0, errors.ErrTypeError
	}
	return v.num, nil
}

// Slice returns the byte-string value, or a TypeError if v holds Uint.
// The returned slice must not be mutated by the caller.
func (v Value) Slice() ([]byte, error) {
	if v.kind != KindBytes {
		return nil, errors.ErrTypeError
	}
	return v.bytes, nil
}

// Clone returns a Value with the same observable contents. Uint is trivially
// copied; Bytes shares the underlying immutable slice (copy-on-write, per
// spec.md §9 — safe because Value never exposes a mutable view of bytes).
func (v Value) Clone() Value { return v }

// Truthy implements the AVM's "stack top nonzero" verdict rule: a Bytes
// value is never consulted for truthiness by the interpreter (only Uint
// operands reach branch/return/assert), so this only handles Uint.
func (v Value) Truthy() bool { return v.kind == KindUint && v.num != 0 }

// Equal implements structural, type-aware equality: cross-type comparisons
// are defined as "not equal" here, but most opcodes (== / !=) require same
// -type operands and raise TypeError before reaching Equal; this method is
// used internally by match/switch-style comparisons with that check already
// performed by the caller.
func (v Value) Equal(other Value) bool {
	if v.kind != other.kind {
		return false
	}
	if v.kind == KindUint {
		return v.num == other.num
	}
	return bytes.Equal(v.bytes, other.bytes)
}

// Compare orders two same-kind values: numeric for Uint, big-endian
// lexicographic (length-independent) for Bytes. Cross-kind comparison is a
// TypeError.
func (v Value) Compare(other Value) (int, error) {
	if v.kind != other.kind {
		return 0, errors.ErrTypeError
	}
	if v.kind == KindUint {
		switch {
		case v.num < other.num:
			return -1, nil
		case v.num > other.num:
			return 1, nil
		default:
			return 0, nil
		}
	}
	return bytes.Compare(v.bytes, other.bytes), nil
}

func (v Value) String() string {
	if v.kind == KindUint {
		return fmt.Sprintf("Uint(%d)", v.num)
	}
	return fmt.Sprintf("Bytes(%x)", v.bytes)
}
