// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interpreter

import (
	"encoding/binary"
	"math/bits"

	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/opcodes"
	"github.com/probechain/goteal/avm/value"
)

// execute dispatches one decoded instruction to its semantics and reports
// the resulting ControlOutcome (spec.md §4.D/§4.F step 7). curPC is the
// opcode's own address; nextPC is the address immediately after the decoded
// immediate, and branch offsets are taken relative to nextPC.
//
//nolint:gocyclo
func (it *Interpreter) execute(op opcodes.Opcode, imm decodedImm, curPC, nextPC int) (outcome, error) {
	switch op {

	// ---- Constant pool prelude ---------------------------------------------

	case opcodes.OpIntCBlock:
		it.pool.Ints = imm.intArr
		return cont()
	case opcodes.OpByteCBlock:
		it.pool.Bytes = imm.byteArr
		return cont()
	case opcodes.OpIntC:
		return it.pushPoolInt(imm.u1)
	case opcodes.OpIntC0:
		return it.pushPoolInt(0)
	case opcodes.OpIntC1:
		return it.pushPoolInt(1)
	case opcodes.OpIntC2:
		return it.pushPoolInt(2)
	case opcodes.OpIntC3:
		return it.pushPoolInt(3)
	case opcodes.OpByteC:
		return it.pushPoolBytes(imm.u1)
	case opcodes.OpByteC0:
		return it.pushPoolBytes(0)
	case opcodes.OpByteC1:
		return it.pushPoolBytes(1)
	case opcodes.OpByteC2:
		return it.pushPoolBytes(2)
	case opcodes.OpByteC3:
		return it.pushPoolBytes(3)
	case opcodes.OpPushInt:
		return cont2(it.stack.Push(value.Uint(imm.u1)))
	case opcodes.OpPushBytes:
		v, err := value.Bytes(append([]byte(nil), imm.bytes...))
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(v))

	// ---- Arithmetic ---------------------------------------------------------

	case opcodes.OpAdd:
		return it.binUint(func(a, b uint64) (uint64, error) {
			sum := a + b
			if sum < a {
				return 0, tealerr.ErrArithmeticOverflow
			}
			return sum, nil
		})
	case opcodes.OpSub:
		return it.binUint(func(a, b uint64) (uint64, error) {
			if b > a {
				return 0, tealerr.ErrArithmeticOverflow
			}
			return a - b, nil
		})
	case opcodes.OpMul:
		return it.binUint(func(a, b uint64) (uint64, error) {
			hi, lo := bits.Mul64(a, b)
			if hi != 0 {
				return 0, tealerr.ErrArithmeticOverflow
			}
			return lo, nil
		})
	case opcodes.OpDiv:
		return it.binUint(func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, tealerr.ErrDivisionByZero
			}
			return a / b, nil
		})
	case opcodes.OpMod:
		return it.binUint(func(a, b uint64) (uint64, error) {
			if b == 0 {
				return 0, tealerr.ErrDivisionByZero
			}
			return a % b, nil
		})

	// ---- Bitwise --------------------------------------------------------------

	case opcodes.OpBitAnd:
		return it.binUint(func(a, b uint64) (uint64, error) { return a & b, nil })
	case opcodes.OpBitOr:
		return it.binUint(func(a, b uint64) (uint64, error) { return a | b, nil })
	case opcodes.OpBitXor:
		return it.binUint(func(a, b uint64) (uint64, error) { return a ^ b, nil })
	case opcodes.OpBitNot:
		return it.unaryUint(func(a uint64) (uint64, error) { return ^a, nil })

	// ---- Logical ----------------------------------------------------------

	case opcodes.OpLogicAnd:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a != 0 && b != 0), nil })
	case opcodes.OpLogicOr:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a != 0 || b != 0), nil })
	case opcodes.OpLogicNot:
		return it.unaryUint(func(a uint64) (uint64, error) { return boolUint(a == 0), nil })

	// ---- Comparison ---------------------------------------------------------

	case opcodes.OpLt:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a < b), nil })
	case opcodes.OpGt:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a > b), nil })
	case opcodes.OpLe:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a <= b), nil })
	case opcodes.OpGe:
		return it.binUint(func(a, b uint64) (uint64, error) { return boolUint(a >= b), nil })
	case opcodes.OpEq:
		return it.compareEq(true)
	case opcodes.OpNeq:
		return it.compareEq(false)

	// ---- Byte-string arbitrary-precision arithmetic ------------------------

	case opcodes.OpBAdd, opcodes.OpBSub, opcodes.OpBMul, opcodes.OpBDiv, opcodes.OpBMod:
		return it.bigArith(op)
	case opcodes.OpBLt, opcodes.OpBGt, opcodes.OpBLe, opcodes.OpBGe, opcodes.OpBEq, opcodes.OpBNeq:
		return it.bigCompare(op)

	// ---- Byte-string helpers ------------------------------------------------

	case opcodes.OpLen:
		b, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(value.Uint(uint64(len(b)))))
	case opcodes.OpItob:
		n, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, n)
		v, _ := value.Bytes(buf)
		return cont2(it.stack.Push(v))
	case opcodes.OpBtoi:
		b, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		if len(b) > 8 {
			return fail(tealerr.ErrTypeError)
		}
		var buf [8]byte
		copy(buf[8-len(b):], b)
		return cont2(it.stack.Push(value.Uint(binary.BigEndian.Uint64(buf[:]))))
	case opcodes.OpConcat:
		b, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		a, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		v, err := value.Bytes(append(append([]byte(nil), a...), b...))
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(v))
	case opcodes.OpSubstring:
		return it.substring(imm.u1, imm.u2)
	case opcodes.OpSubstring3:
		return it.substring3()
	case opcodes.OpGetByte:
		idx, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		b, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		if idx >= uint64(len(b)) {
			return fail(tealerr.ErrTypeError)
		}
		return cont2(it.stack.Push(value.Uint(uint64(b[idx]))))
	case opcodes.OpSetByte:
		newByte, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		idx, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		b, err := it.stack.PopBytes()
		if err != nil {
			return fail(err)
		}
		if idx >= uint64(len(b)) || newByte > 255 {
			return fail(tealerr.ErrTypeError)
		}
		out := append([]byte(nil), b...)
		out[idx] = byte(newByte)
		v, _ := value.Bytes(out)
		return cont2(it.stack.Push(v))

	// ---- Stack manipulation -------------------------------------------------

	case opcodes.OpDup:
		v, err := it.stack.Top()
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(v))
	case opcodes.OpDup2:
		b, err := it.stack.Peek(0)
		if err != nil {
			return fail(err)
		}
		a, err := it.stack.Peek(1)
		if err != nil {
			return fail(err)
		}
		if err := it.stack.Push(a); err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(b))
	case opcodes.OpDupN:
		v, err := it.stack.Top()
		if err != nil {
			return fail(err)
		}
		for i := uint64(0); i < imm.u1; i++ {
			if err := it.stack.Push(v); err != nil {
				return fail(err)
			}
		}
		return cont()
	case opcodes.OpSwap:
		a, err := it.stack.Peek(1)
		if err != nil {
			return fail(err)
		}
		b, err := it.stack.Peek(0)
		if err != nil {
			return fail(err)
		}
		if err := it.stack.Set(1, b); err != nil {
			return fail(err)
		}
		return cont2(it.stack.Set(0, a))
	case opcodes.OpPop:
		_, err := it.stack.Pop()
		return cont2(err)
	case opcodes.OpPopN:
		for i := uint64(0); i < imm.u1; i++ {
			if _, err := it.stack.Pop(); err != nil {
				return fail(err)
			}
		}
		return cont()
	case opcodes.OpBury:
		v, err := it.stack.Pop()
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Set(int(imm.u1), v))
	case opcodes.OpCover:
		v, err := it.stack.Pop()
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.InsertAt(int(imm.u1), v))
	case opcodes.OpUncover:
		v, err := it.stack.Remove(int(imm.u1))
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(v))
	case opcodes.OpSelect:
		cond, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		b, err := it.stack.Pop()
		if err != nil {
			return fail(err)
		}
		a, err := it.stack.Pop()
		if err != nil {
			return fail(err)
		}
		if cond != 0 {
			return cont2(it.stack.Push(a))
		}
		return cont2(it.stack.Push(b))

	// ---- Scratch space -------------------------------------------------------

	case opcodes.OpLoad:
		v, err := it.scratch.Load(imm.u1)
		if err != nil {
			return fail(err)
		}
		return cont2(it.stack.Push(v))
	case opcodes.OpStore:
		v, err := it.stack.Pop()
		if err != nil {
			return fail(err)
		}
		return cont2(it.scratch.Store(imm.u1, v))

	// ---- Branches / subroutines / halts -------------------------------------

	case opcodes.OpB:
		return branchTo(branchTarget(nextPC, imm.offset))
	case opcodes.OpBZ:
		return it.condBranch(nextPC, imm.offset, false)
	case opcodes.OpBNZ:
		return it.condBranch(nextPC, imm.offset, true)
	case opcodes.OpSwitch:
		return it.opSwitch(nextPC, imm.offsets)
	case opcodes.OpMatch:
		return it.opMatch(nextPC, imm.offsets)
	case opcodes.OpCallSub:
		return it.opCallSub(nextPC, imm.offset)
	case opcodes.OpRetSub:
		return it.opRetSub()
	case opcodes.OpProto:
		return it.opProto(imm.u1, imm.u2)
	case opcodes.OpFrameDig:
		return it.opFrameDig(imm.u1)
	case opcodes.OpFrameBury:
		return it.opFrameBury(imm.u1)
	case opcodes.OpReturn:
		top, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		return halt(top != 0)
	case opcodes.OpErr:
		return fail(tealerr.ErrExecutionFailed)
	case opcodes.OpAssert:
		top, err := it.stack.PopUint()
		if err != nil {
			return fail(err)
		}
		if top == 0 {
			return fail(tealerr.ErrAssertFailed)
		}
		return cont()

	// ---- Crypto -------------------------------------------------------------

	case opcodes.OpSHA256, opcodes.OpSHA512_256, opcodes.OpKeccak256:
		return it.opHash(op)
	case opcodes.OpEd25519Verify:
		return it.opEd25519Verify()
	case opcodes.OpEcdsaVerifySecp256k1:
		return it.opEcdsaVerifySecp256k1()
	case opcodes.OpEcdsaVerifyP256:
		return it.opEcdsaVerifyP256()
	case opcodes.OpEcdsaPkRecoverSecp256k1:
		return it.opEcdsaPkRecoverSecp256k1()

	// ---- Introspection / state -----------------------------------------------

	case opcodes.OpTxn:
		return it.opTxn(imm.u1, -1)
	case opcodes.OpGTxn:
		return it.opGTxn(imm.u1, imm.u2, -1)
	case opcodes.OpTxna:
		return it.opTxn(imm.u1, int(imm.u2))
	case opcodes.OpGTxna:
		return it.opGTxna(imm.u1, imm.u2)
	case opcodes.OpGlobal:
		return it.opGlobal(imm.u1)

	case opcodes.OpAppGlobalGet:
		return it.opAppGlobalGet()
	case opcodes.OpAppGlobalGetEx:
		return it.opAppGlobalGetEx()
	case opcodes.OpAppGlobalPut:
		return it.opAppGlobalPut()
	case opcodes.OpAppGlobalDel:
		return it.opAppGlobalDel()
	case opcodes.OpAppLocalGet:
		return it.opAppLocalGet()
	case opcodes.OpAppLocalGetEx:
		return it.opAppLocalGetEx()
	case opcodes.OpAppLocalPut:
		return it.opAppLocalPut()
	case opcodes.OpAppLocalDel:
		return it.opAppLocalDel()
	case opcodes.OpAssetHoldingGet:
		return it.opAssetHoldingGet(imm.u1)
	case opcodes.OpAssetParamsGet:
		return it.opAssetParamsGet(imm.u1)
	case opcodes.OpAppParamsGet:
		return it.opAppParamsGet(imm.u1)
	case opcodes.OpBalance:
		return it.opBalance()
	case opcodes.OpMinBalance:
		return it.opMinBalance()

	default:
		return fail(tealerr.ErrInvalidOpcode)
	}
}

func cont2(err error) (outcome, error) {
	if err != nil {
		return outcome{}, err
	}
	return outcome{kind: outcomeContinue}, nil
}

func boolUint(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func (it *Interpreter) binUint(f func(a, b uint64) (uint64, error)) (outcome, error) {
	b, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	a, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	r, err := f(a, b)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(r)))
}

func (it *Interpreter) unaryUint(f func(a uint64) (uint64, error)) (outcome, error) {
	a, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	r, err := f(a)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(r)))
}

func (it *Interpreter) compareEq(wantEqual bool) (outcome, error) {
	b, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	a, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	if a.Kind() != b.Kind() {
		return fail(tealerr.ErrTypeError)
	}
	eq := a.Equal(b)
	return cont2(it.stack.Push(value.Uint(boolUint(eq == wantEqual))))
}

func (it *Interpreter) pushPoolInt(idx uint64) (outcome, error) {
	n, err := it.pool.Int(idx)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(n)))
}

func (it *Interpreter) pushPoolBytes(idx uint64) (outcome, error) {
	b, err := it.pool.Byte(idx)
	if err != nil {
		return fail(err)
	}
	v, err := value.Bytes(append([]byte(nil), b...))
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

func (it *Interpreter) substring(start, end uint64) (outcome, error) {
	b, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	return it.pushSubstring(b, start, end)
}

func (it *Interpreter) substring3() (outcome, error) {
	end, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	start, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	b, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	return it.pushSubstring(b, start, end)
}

func (it *Interpreter) pushSubstring(b []byte, start, end uint64) (outcome, error) {
	if start > end || end > uint64(len(b)) {
		return fail(tealerr.ErrTypeError)
	}
	v, err := value.Bytes(append([]byte(nil), b[start:end]...))
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// branchTarget resolves a signed 16-bit offset relative to the byte
// immediately after the branch instruction's immediate (spec.md §4.F).
func branchTarget(nextPC int, offset int16) int {
	return nextPC + int(offset)
}
