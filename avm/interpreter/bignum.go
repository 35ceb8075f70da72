// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interpreter

import (
	"math/big"

	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/opcodes"
	"github.com/probechain/goteal/avm/value"
)

// bigArith implements the `b+`/`b-`/`b*`/`b/`/`b%` family: byte strings read
// as big-endian arbitrary-precision unsigned integers (spec.md §4.F).
func (it *Interpreter) bigArith(op opcodes.Opcode) (outcome, error) {
	bBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	aBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	a := value.BytesToBig(aBytes)
	b := value.BytesToBig(bBytes)

	var r big.Int
	switch op {
	case opcodes.OpBAdd:
		r.Add(a, b)
	case opcodes.OpBSub:
		if a.Cmp(b) < 0 {
			return fail(tealerr.ErrArithmeticOverflow)
		}
		r.Sub(a, b)
	case opcodes.OpBMul:
		r.Mul(a, b)
	case opcodes.OpBDiv:
		if b.Sign() == 0 {
			return fail(tealerr.ErrDivisionByZero)
		}
		r.Div(a, b)
	case opcodes.OpBMod:
		if b.Sign() == 0 {
			return fail(tealerr.ErrDivisionByZero)
		}
		r.Mod(a, b)
	}

	out := value.BigToBytes(&r)
	v, err := value.Bytes(out)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// bigCompare implements the `b<`/`b>`/`b<=`/`b>=`/`b==`/`b!=` family.
func (it *Interpreter) bigCompare(op opcodes.Opcode) (outcome, error) {
	bBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	aBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	cmp := value.BytesToBig(aBytes).Cmp(value.BytesToBig(bBytes))

	var result bool
	switch op {
	case opcodes.OpBLt:
		result = cmp < 0
	case opcodes.OpBGt:
		result = cmp > 0
	case opcodes.OpBLe:
		result = cmp <= 0
	case opcodes.OpBGe:
		result = cmp >= 0
	case opcodes.OpBEq:
		result = cmp == 0
	case opcodes.OpBNeq:
		result = cmp != 0
	}
	return cont2(it.stack.Push(value.Uint(boolUint(result))))
}
