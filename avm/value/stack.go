// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import errors "github.com/probechain/goteal/avm/errors"

// MaxStackDepth is the maximum number of values the operand stack may hold
// at once (spec.md §3).
const MaxStackDepth = 1000

// ScratchSlots is the fixed size of the scratch space (spec.md §3).
const ScratchSlots = 256

// MaxCallDepth is the maximum depth of the subroutine call stack (spec.md §3).
const MaxCallDepth = 8

// Stack is the AVM's LIFO operand stack, bounded to MaxStackDepth.
type Stack struct {
	vals []Value
}

// NewStack returns an empty stack with room for typical programs.
func NewStack() *Stack {
	return &Stack{vals: make([]Value, 0, 16)}
}

// Len reports the current depth.
func (s *Stack) Len() int { return len(s.vals) }

// Push appends v to the top of the stack.
func (s *Stack) Push(v Value) error {
	if len(s.vals) >= MaxStackDepth {
		return errors.ErrStackOverflow
	}
	s.vals = append(s.vals, v)
	return nil
}

// Pop removes and returns the top value.
func (s *Stack) Pop() (Value, error) {
	n := len(s.vals)
	if n == 0 {
		return Value{}, errors.ErrStackUnderflow
	}
	v := s.vals[n-1]
	s.vals = s.vals[:n-1]
	return v, nil
}

// PopUint pops the top value and requires it to be a Uint.
func (s *Stack) PopUint() (uint64, error) {
	v, err := s.Pop()
	if err != nil {
		return 0, err
	}
	return v.Uint64()
}

// PopBytes pops the top value and requires it to be Bytes.
func (s *Stack) PopBytes() ([]byte, error) {
	v, err := s.Pop()
	if err != nil {
		return nil, err
	}
	return v.Slice()
}

// Peek returns the value at depth `fromTop` without removing it; 0 means
// the top of stack.
func (s *Stack) Peek(fromTop int) (Value, error) {
	n := len(s.vals)
	idx := n - 1 - fromTop
	if fromTop < 0 || idx < 0 || idx >= n {
		return Value{}, errors.ErrStackUnderflow
	}
	return s.vals[idx], nil
}

// Set overwrites the value at depth `fromTop`.
func (s *Stack) Set(fromTop int, v Value) error {
	n := len(s.vals)
	idx := n - 1 - fromTop
	if fromTop < 0 || idx < 0 || idx >= n {
		return errors.ErrStackUnderflow
	}
	s.vals[idx] = v
	return nil
}

// Top returns the value at the top of stack without popping, used for the
// verdict rule (stack_top_nonzero).
func (s *Stack) Top() (Value, error) { return s.Peek(0) }

// Remove deletes the value at depth `fromTop`, shifting values above it
// down by one slot; used by `uncover`.
func (s *Stack) Remove(fromTop int) (Value, error) {
	n := len(s.vals)
	idx := n - 1 - fromTop
	if fromTop < 0 || idx < 0 || idx >= n {
		return Value{}, errors.ErrStackUnderflow
	}
	v := s.vals[idx]
	s.vals = append(s.vals[:idx], s.vals[idx+1:]...)
	return v, nil
}

// InsertAt inserts v at depth `fromTop`, counted in the stack as it stands
// after the insertion (so InsertAt(0, v) after popping v is equivalent to
// Push(v)); used by `cover`.
func (s *Stack) InsertAt(fromTop int, v Value) error {
	n := len(s.vals)
	idx := n - fromTop
	if fromTop < 0 || idx < 0 || idx > n {
		return errors.ErrStackUnderflow
	}
	if n >= MaxStackDepth {
		return errors.ErrStackOverflow
	}
	s.vals = append(s.vals, Value{})
	copy(s.vals[idx+1:], s.vals[idx:])
	s.vals[idx] = v
	return nil
}

// TruncateTo drops the stack down to depth n; a stack already at or below
// depth n is left unchanged.
func (s *Stack) TruncateTo(n int) {
	if n < len(s.vals) {
		s.vals = s.vals[:n]
	}
}

// Scratch is the fixed 256-slot scratch space, eagerly initialized to
// Uint(0) in every slot (spec.md §3/§9).
type Scratch struct {
	slots [ScratchSlots]Value
}

// NewScratch returns scratch space with every slot set to Uint(0).
func NewScratch() *Scratch {
	// The zero Value already has kind == KindUint and num == 0, so the
	// zero-valued array already satisfies the "Uint(0) in every slot"
	// invariant; no explicit loop is required.
	return &Scratch{}
}

// Load reads slot i.
func (s *Scratch) Load(i uint64) (Value, error) {
	if i >= ScratchSlots {
		return Value{}, errors.ErrScratchIndexInvalid
	}
	return s.slots[i], nil
}

// Store writes v to slot i.
func (s *Scratch) Store(i uint64, v Value) error {
	if i >= ScratchSlots {
		return errors.ErrScratchIndexInvalid
	}
	s.slots[i] = v
	return nil
}

// CallFrame captures the state needed to resume a caller after `retsub`,
// including the frame pointer used by `frame_dig`/`frame_bury` (spec.md §4.F).
type CallFrame struct {
	ReturnPC int // pc to resume at in the caller
	FramePtr int // stack depth at the moment of callsub, base for frame_dig
}

// CallStack is the bounded stack of pending subroutine returns.
type CallStack struct {
	frames []CallFrame
}

// NewCallStack returns an empty call stack.
func NewCallStack() *CallStack {
	return &CallStack{frames: make([]CallFrame, 0, MaxCallDepth)}
}

// Len reports the current depth.
func (c *CallStack) Len() int { return len(c.frames) }

// Push records a new pending return; fails past MaxCallDepth.
func (c *CallStack) Push(f CallFrame) error {
	if len(c.frames) >= MaxCallDepth {
		return errors.ErrCallStackOverflow
	}
	c.frames = append(c.frames, f)
	return nil
}

// Pop removes and returns the most recent pending return.
func (c *CallStack) Pop() (CallFrame, error) {
	n := len(c.frames)
	if n == 0 {
		return CallFrame{}, errors.ErrCallStackUnderflow
	}
	f := c.frames[n-1]
	c.frames = c.frames[:n-1]
	return f, nil
}

// Top returns the most recent pending return without removing it.
func (c *CallStack) Top() (CallFrame, error) {
	n := len(c.frames)
	if n == 0 {
		return CallFrame{}, errors.ErrCallStackUnderflow
	}
	return c.frames[n-1], nil
}
