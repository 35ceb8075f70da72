// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interpreter

import (
	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/value"
)

// condBranch implements `bz`/`bnz`: branch when the popped condition
// matches wantNonzero, otherwise fall through to nextPC.
func (it *Interpreter) condBranch(nextPC int, offset int16, wantNonzero bool) (outcome, error) {
	cond, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	if (cond != 0) == wantNonzero {
		return branchTo(branchTarget(nextPC, offset))
	}
	return cont()
}

// opSwitch implements `switch`: pop an index and branch to offsets[index],
// or fall through to nextPC if the index is out of range.
func (it *Interpreter) opSwitch(nextPC int, offsets []int16) (outcome, error) {
	idx, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	if idx < uint64(len(offsets)) {
		return branchTo(branchTarget(nextPC, offsets[idx]))
	}
	return cont()
}

// opMatch implements `match`: the stack holds len(offsets) candidate values
// below a match key on top. The key is compared, in order, against each
// candidate; the first equal candidate's offset is taken. No match falls
// through to nextPC.
func (it *Interpreter) opMatch(nextPC int, offsets []int16) (outcome, error) {
	key, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	n := len(offsets)
	candidates := make([]value.Value, n)
	for i := n - 1; i >= 0; i-- {
		candidates[i], err = it.stack.Pop()
		if err != nil {
			return fail(err)
		}
	}
	for i, c := range candidates {
		if c.Kind() == key.Kind() && c.Equal(key) {
			return branchTo(branchTarget(nextPC, offsets[i]))
		}
	}
	return cont()
}

// opCallSub implements `callsub`: push a return frame and jump into the
// subroutine. The frame's FramePtr pins the stack depth `frame_dig`/
// `frame_bury` offsets are relative to.
func (it *Interpreter) opCallSub(nextPC int, offset int16) (outcome, error) {
	if err := it.calls.Push(value.CallFrame{ReturnPC: nextPC, FramePtr: it.stack.Len()}); err != nil {
		return fail(err)
	}
	return branchTo(branchTarget(nextPC, offset))
}

// opRetSub implements `retsub`: pop the most recent return frame and resume
// the caller there.
func (it *Interpreter) opRetSub() (outcome, error) {
	frame, err := it.calls.Pop()
	if err != nil {
		return fail(err)
	}
	return branchTo(frame.ReturnPC)
}

// opProto implements `proto`: it only validates that the enclosing
// subroutine's declared argument/return counts are consistent with the
// frame pointer recorded by callsub; the frame itself was already pushed
// there (spec.md §9 Open Questions: proto carries no independent runtime
// state beyond what callsub already recorded).
func (it *Interpreter) opProto(numArgs, numReturns uint64) (outcome, error) {
	frame, err := it.calls.Top()
	if err != nil {
		return fail(err)
	}
	if frame.FramePtr < int(numArgs) {
		return fail(tealerr.ErrStackUnderflow)
	}
	_ = numReturns
	return cont()
}

// opFrameDig implements `frame_dig`: read a value relative to the current
// frame pointer. The immediate byte is interpreted as signed so negative
// offsets reach arguments pushed before callsub and positive offsets reach
// locals pushed since.
func (it *Interpreter) opFrameDig(immByte uint64) (outcome, error) {
	frame, err := it.calls.Top()
	if err != nil {
		return fail(err)
	}
	idx := frame.FramePtr + int(int8(immByte))
	v, err := it.stack.Peek(it.stack.Len() - 1 - idx)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// opFrameBury implements `frame_bury`: pop the top of stack and store it at
// a position relative to the current frame pointer.
func (it *Interpreter) opFrameBury(immByte uint64) (outcome, error) {
	frame, err := it.calls.Top()
	if err != nil {
		return fail(err)
	}
	v, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	idx := frame.FramePtr + int(int8(immByte))
	return cont2(it.stack.Set(it.stack.Len()-1-idx, v))
}
