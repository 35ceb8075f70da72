// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"errors"
	"testing"

	tealerr "github.com/probechain/goteal/avm/errors"
)

func TestValueUint64AndSlice(t *testing.T) {
	u := Uint(42)
	if !u.IsUint() || u.IsBytes() {
		t.Fatalf("Uint(42) has wrong kind: %v", u.Kind())
	}
	n, err := u.Uint64()
	if err != nil || n != 42 {
		t.Fatalf("Uint64() = %d, %v; want 42, nil", n, err)
	}
	if _, err := u.Slice(); !errors.Is(err, tealerr.ErrTypeError) {
		t.Fatalf("Slice() on a Uint = %v; want ErrTypeError", err)
	}

	b := MustBytes([]byte("hello"))
	if !b.IsBytes() || b.IsUint() {
		t.Fatalf("Bytes value has wrong kind: %v", b.Kind())
	}
	s, err := b.Slice()
	if err != nil || string(s) != "hello" {
		t.Fatalf("Slice() = %q, %v; want hello, nil", s, err)
	}
	if _, err := b.Uint64(); !errors.Is(err, tealerr.ErrTypeError) {
		t.Fatalf("Uint64() on Bytes = %v; want ErrTypeError", err)
	}
}

func TestBytesTooLong(t *testing.T) {
	_, err := Bytes(make([]byte, MaxBytesLength+1))
	if !errors.Is(err, tealerr.ErrBytesTooLong) {
		t.Fatalf("Bytes(oversized) = %v; want ErrBytesTooLong", err)
	}
	if _, err := Bytes(make([]byte, MaxBytesLength)); err != nil {
		t.Fatalf("Bytes(max) = %v; want nil", err)
	}
}

func TestTruthy(t *testing.T) {
	if Uint(0).Truthy() {
		t.Fatal("Uint(0) must not be truthy")
	}
	if !Uint(1).Truthy() {
		t.Fatal("Uint(1) must be truthy")
	}
	if MustBytes([]byte{1}).Truthy() {
		t.Fatal("Bytes values are never truthy")
	}
}

func TestEqual(t *testing.T) {
	if !Uint(5).Equal(Uint(5)) {
		t.Fatal("Uint(5) should equal Uint(5)")
	}
	if Uint(5).Equal(Uint(6)) {
		t.Fatal("Uint(5) should not equal Uint(6)")
	}
	if !MustBytes([]byte("x")).Equal(MustBytes([]byte("x"))) {
		t.Fatal("equal byte strings should compare equal")
	}
	if Uint(0).Equal(MustBytes(nil)) {
		t.Fatal("cross-kind values should never be Equal")
	}
}

func TestCompare(t *testing.T) {
	cmp, err := Uint(3).Compare(Uint(5))
	if err != nil || cmp >= 0 {
		t.Fatalf("Compare(3,5) = %d, %v; want <0, nil", cmp, err)
	}
	cmp, err = MustBytes([]byte("ab")).Compare(MustBytes([]byte("ac")))
	if err != nil || cmp >= 0 {
		t.Fatalf("Compare(ab,ac) = %d, %v; want <0, nil", cmp, err)
	}
	if _, err := Uint(1).Compare(MustBytes(nil)); !errors.Is(err, tealerr.ErrTypeError) {
		t.Fatalf("cross-kind Compare = %v; want ErrTypeError", err)
	}
}

func TestStackPushPopOverflow(t *testing.T) {
	s := NewStack()
	for i := 0; i < MaxStackDepth; i++ {
		if err := s.Push(Uint(uint64(i))); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := s.Push(Uint(0)); !errors.Is(err, tealerr.ErrStackOverflow) {
		t.Fatalf("push past MaxStackDepth = %v; want ErrStackOverflow", err)
	}

	for i := MaxStackDepth - 1; i >= 0; i-- {
		v, err := s.Pop()
		if err != nil {
			t.Fatalf("pop: %v", err)
		}
		n, _ := v.Uint64()
		if n != uint64(i) {
			t.Fatalf("pop order wrong: got %d want %d", n, i)
		}
	}
	if _, err := s.Pop(); !errors.Is(err, tealerr.ErrStackUnderflow) {
		t.Fatalf("pop empty = %v; want ErrStackUnderflow", err)
	}
}

func TestStackPeekSetRemoveInsert(t *testing.T) {
	s := NewStack()
	s.Push(Uint(1))
	s.Push(Uint(2))
	s.Push(Uint(3))

	top, err := s.Top()
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := top.Uint64(); n != 3 {
		t.Fatalf("Top() = %d; want 3", n)
	}

	v, err := s.Peek(1)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.Uint64(); n != 2 {
		t.Fatalf("Peek(1) = %d; want 2", n)
	}

	if err := s.Set(0, Uint(99)); err != nil {
		t.Fatal(err)
	}
	top, _ = s.Top()
	if n, _ := top.Uint64(); n != 99 {
		t.Fatalf("after Set(0,99) top = %d; want 99", n)
	}

	removed, err := s.Remove(1)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := removed.Uint64(); n != 2 {
		t.Fatalf("Remove(1) = %d; want 2", n)
	}
	if s.Len() != 2 {
		t.Fatalf("after Remove, Len() = %d; want 2", s.Len())
	}

	if err := s.InsertAt(0, Uint(42)); err != nil {
		t.Fatal(err)
	}
	top, _ = s.Top()
	if n, _ := top.Uint64(); n != 42 {
		t.Fatalf("after InsertAt(0,42) top = %d; want 42", n)
	}
	if s.Len() != 3 {
		t.Fatalf("after InsertAt, Len() = %d; want 3", s.Len())
	}
}

func TestStackTruncateTo(t *testing.T) {
	s := NewStack()
	s.Push(Uint(1))
	s.Push(Uint(2))
	s.Push(Uint(3))
	s.TruncateTo(1)
	if s.Len() != 1 {
		t.Fatalf("TruncateTo(1) left Len() = %d; want 1", s.Len())
	}
	v, _ := s.Top()
	if n, _ := v.Uint64(); n != 1 {
		t.Fatalf("TruncateTo(1) top = %d; want 1", n)
	}
	s.TruncateTo(5) // growing back is a no-op, not an error
	if s.Len() != 1 {
		t.Fatalf("TruncateTo(5) on a shorter stack must be a no-op, got Len() = %d", s.Len())
	}
}

func TestScratchDefaultsAndBounds(t *testing.T) {
	sc := NewScratch()
	v, err := sc.Load(10)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := v.Uint64(); n != 0 {
		t.Fatalf("unwritten scratch slot = %d; want 0", n)
	}

	if err := sc.Store(255, MustBytes([]byte("z"))); err != nil {
		t.Fatal(err)
	}
	v, _ = sc.Load(255)
	b, _ := v.Slice()
	if string(b) != "z" {
		t.Fatalf("scratch slot 255 = %q; want z", b)
	}

	if err := sc.Store(256, Uint(1)); !errors.Is(err, tealerr.ErrScratchIndexInvalid) {
		t.Fatalf("Store(256,...) = %v; want ErrScratchIndexInvalid", err)
	}
	if _, err := sc.Load(256); !errors.Is(err, tealerr.ErrScratchIndexInvalid) {
		t.Fatalf("Load(256) = %v; want ErrScratchIndexInvalid", err)
	}
}

func TestCallStackDepthAndOrder(t *testing.T) {
	cs := NewCallStack()
	for i := 0; i < MaxCallDepth; i++ {
		if err := cs.Push(CallFrame{ReturnPC: i, FramePtr: i * 2}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := cs.Push(CallFrame{}); !errors.Is(err, tealerr.ErrCallStackOverflow) {
		t.Fatalf("push past MaxCallDepth = %v; want ErrCallStackOverflow", err)
	}

	top, err := cs.Top()
	if err != nil || top.ReturnPC != MaxCallDepth-1 {
		t.Fatalf("Top() = %+v, %v; want ReturnPC=%d", top, err, MaxCallDepth-1)
	}

	for i := MaxCallDepth - 1; i >= 0; i-- {
		f, err := cs.Pop()
		if err != nil {
			t.Fatal(err)
		}
		if f.ReturnPC != i {
			t.Fatalf("pop order wrong: got ReturnPC=%d want %d", f.ReturnPC, i)
		}
	}
	if _, err := cs.Pop(); !errors.Is(err, tealerr.ErrCallStackUnderflow) {
		t.Fatalf("pop empty call stack = %v; want ErrCallStackUnderflow", err)
	}
}

func TestConstPoolBounds(t *testing.T) {
	p := &ConstPool{Ints: []uint64{10, 20}, Bytes: [][]byte{[]byte("a")}}
	n, err := p.Int(1)
	if err != nil || n != 20 {
		t.Fatalf("Int(1) = %d, %v; want 20, nil", n, err)
	}
	if _, err := p.Int(2); !errors.Is(err, tealerr.ErrTruncatedProgram) {
		t.Fatalf("Int(2) out of range = %v; want ErrTruncatedProgram", err)
	}
	b, err := p.Byte(0)
	if err != nil || string(b) != "a" {
		t.Fatalf("Byte(0) = %q, %v; want a, nil", b, err)
	}
	if _, err := p.Byte(1); !errors.Is(err, tealerr.ErrTruncatedProgram) {
		t.Fatalf("Byte(1) out of range = %v; want ErrTruncatedProgram", err)
	}
}
