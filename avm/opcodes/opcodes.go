// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package opcodes is the AVM's opcode spec registry (spec.md §4.D): a
// 256-slot, indexable table mapping opcode byte to name, arity, typing,
// cost, minimum program version, immediate-decode schema, and run-mode
// restriction. Matching the teacher's split between a data table (this
// file) and an execution switch (the interpreter package), actual opcode
// semantics live in avm/interpreter — this package only holds the metadata
// every opcode is dispatched, cost-checked, and type-checked against
// before its semantics run.
package opcodes

import "github.com/probechain/goteal/avm/value"

// Opcode is an 8-bit instruction code.
type Opcode uint8

// Mode restricts which run mode may execute an opcode (spec.md §4.C/§4.F).
type Mode uint8

const (
	Any Mode = iota
	LogicSigOnly
	ApplicationOnly
)

// Type constrains an operand's shape for stack arity/type checking.
type Type uint8

const (
	TypeAny Type = iota
	TypeUint
	TypeBytes
)

// ImmKind tags the immediate-decode schema for an instruction (spec.md §6).
type ImmKind uint8

const (
	ImmNone        ImmKind = iota
	ImmUint8               // one byte: scratch slot, constant index, small field tag
	ImmUint8x2              // two bytes: e.g. txn field + array index
	ImmVarUintArr           // ULEB128 count followed by that many ULEB128 values (intcblock)
	ImmBytesArr             // ULEB128 count followed by that many length-prefixed byte strings (bytecblock)
	ImmVarUint              // single ULEB128 (pushint)
	ImmLenBytes             // ULEB128 length + that many raw bytes (pushbytes)
	ImmLabel                // signed 16-bit branch offset
	ImmLabelArr             // count byte + N signed 16-bit offsets (switch/match)
	ImmUint8AndVals         // count byte + N ULEB128 values (match's compare operands travel on the stack; switch/match immediate is offsets only, see ImmLabelArr)
)

// Spec is one opcode's full dispatch metadata.
type Spec struct {
	Op         Opcode
	Name       string
	MinVersion uint8
	Cost       uint16
	Pops       []Type
	Pushes     []Type
	Immediates ImmKind
	Mode       Mode
}

// Opcode constants. Numbering is internal to this module; it need not
// match the real Algorand AVM's byte assignments (spec.md's Open Questions
// explicitly defer exact per-version tables to the official reference).
const (
	OpIntCBlock Opcode = iota
	OpByteCBlock
	OpIntC
	OpIntC0
	OpIntC1
	OpIntC2
	OpIntC3
	OpByteC
	OpByteC0
	OpByteC1
	OpByteC2
	OpByteC3
	OpPushInt
	OpPushBytes

	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpBitNot
	OpLogicAnd
	OpLogicOr
	OpLogicNot
	OpLt
	OpGt
	OpLe
	OpGe
	OpEq
	OpNeq

	OpBAdd
	OpBSub
	OpBMul
	OpBDiv
	OpBMod
	OpBLt
	OpBGt
	OpBLe
	OpBGe
	OpBEq
	OpBNeq

	OpLen
	OpItob
	OpBtoi
	OpConcat
	OpSubstring
	OpSubstring3
	OpGetByte
	OpSetByte

	OpDup
	OpDup2
	OpDupN
	OpSwap
	OpPop
	OpPopN
	OpBury
	OpCover
	OpUncover
	OpSelect

	OpLoad
	OpStore

	OpB
	OpBZ
	OpBNZ
	OpSwitch
	OpMatch

	OpCallSub
	OpRetSub
	OpProto
	OpFrameDig
	OpFrameBury

	OpReturn
	OpErr
	OpAssert

	OpSHA256
	OpSHA512_256
	OpKeccak256
	OpEd25519Verify
	OpEcdsaVerifySecp256k1
	OpEcdsaVerifyP256
	OpEcdsaPkRecoverSecp256k1

	OpTxn
	OpGTxn
	OpTxna
	OpGTxna
	OpGlobal

	OpAppGlobalGet
	OpAppGlobalGetEx
	OpAppGlobalPut
	OpAppGlobalDel
	OpAppLocalGet
	OpAppLocalGetEx
	OpAppLocalPut
	OpAppLocalDel
	OpAssetHoldingGet
	OpAssetParamsGet
	OpAppParamsGet
	OpBalance
	OpMinBalance

	opcodeCount
)

// table is the 256-slot (here, opcodeCount-slot) registry populated once at
// init, matching the teacher's "build once, read-only after init" pattern
// (spec.md §9).
var table [opcodeCount]Spec

// byName supports the assembler's mnemonic -> opcode resolution.
var byName = make(map[string]Opcode, opcodeCount)

func def(op Opcode, name string, minVersion uint8, cost uint16, pops, pushes []Type, imm ImmKind, mode Mode) {
	table[op] = Spec{
		Op:         op,
		Name:       name,
		MinVersion: minVersion,
		Cost:       cost,
		Pops:       pops,
		Pushes:     pushes,
		Immediates: imm,
		Mode:       mode,
	}
	byName[name] = op
}

func init() {
	u := []Type{TypeUint}
	uu := []Type{TypeUint, TypeUint}
	b := []Type{TypeBytes}
	bb := []Type{TypeBytes, TypeBytes}
	none := []Type(nil)

	def(OpIntCBlock, "intcblock", 1, 1, none, none, ImmVarUintArr, Any)
	def(OpByteCBlock, "bytecblock", 1, 1, none, none, ImmBytesArr, Any)
	def(OpIntC, "intc", 1, 1, none, u, ImmUint8, Any)
	def(OpIntC0, "intc_0", 1, 1, none, u, ImmNone, Any)
	def(OpIntC1, "intc_1", 1, 1, none, u, ImmNone, Any)
	def(OpIntC2, "intc_2", 1, 1, none, u, ImmNone, Any)
	def(OpIntC3, "intc_3", 1, 1, none, u, ImmNone, Any)
	def(OpByteC, "bytec", 1, 1, none, b, ImmUint8, Any)
	def(OpByteC0, "bytec_0", 1, 1, none, b, ImmNone, Any)
	def(OpByteC1, "bytec_1", 1, 1, none, b, ImmNone, Any)
	def(OpByteC2, "bytec_2", 1, 1, none, b, ImmNone, Any)
	def(OpByteC3, "bytec_3", 1, 1, none, b, ImmNone, Any)
	def(OpPushInt, "pushint", 3, 1, none, u, ImmVarUint, Any)
	def(OpPushBytes, "pushbytes", 3, 1, none, b, ImmLenBytes, Any)

	def(OpAdd, "+", 1, 1, uu, u, ImmNone, Any)
	def(OpSub, "-", 1, 1, uu, u, ImmNone, Any)
	def(OpMul, "*", 1, 1, uu, u, ImmNone, Any)
	def(OpDiv, "/", 1, 1, uu, u, ImmNone, Any)
	def(OpMod, "%", 1, 1, uu, u, ImmNone, Any)
	def(OpBitAnd, "&", 1, 1, uu, u, ImmNone, Any)
	def(OpBitOr, "|", 1, 1, uu, u, ImmNone, Any)
	def(OpBitXor, "^", 1, 1, uu, u, ImmNone, Any)
	def(OpBitNot, "~", 1, 1, u, u, ImmNone, Any)
	def(OpLogicAnd, "&&", 1, 1, uu, u, ImmNone, Any)
	def(OpLogicOr, "||", 1, 1, uu, u, ImmNone, Any)
	def(OpLogicNot, "!", 1, 1, u, u, ImmNone, Any)
	def(OpLt, "<", 1, 1, uu, u, ImmNone, Any)
	def(OpGt, ">", 1, 1, uu, u, ImmNone, Any)
	def(OpLe, "<=", 1, 1, uu, u, ImmNone, Any)
	def(OpGe, ">=", 1, 1, uu, u, ImmNone, Any)
	def(OpEq, "==", 1, 1, []Type{TypeAny, TypeAny}, u, ImmNone, Any)
	def(OpNeq, "!=", 1, 1, []Type{TypeAny, TypeAny}, u, ImmNone, Any)

	def(OpBAdd, "b+", 4, 10, bb, b, ImmNone, Any)
	def(OpBSub, "b-", 4, 10, bb, b, ImmNone, Any)
	def(OpBMul, "b*", 4, 20, bb, b, ImmNone, Any)
	def(OpBDiv, "b/", 4, 20, bb, b, ImmNone, Any)
	def(OpBMod, "b%", 4, 20, bb, b, ImmNone, Any)
	def(OpBLt, "b<", 4, 1, bb, u, ImmNone, Any)
	def(OpBGt, "b>", 4, 1, bb, u, ImmNone, Any)
	def(OpBLe, "b<=", 4, 1, bb, u, ImmNone, Any)
	def(OpBGe, "b>=", 4, 1, bb, u, ImmNone, Any)
	def(OpBEq, "b==", 4, 1, bb, u, ImmNone, Any)
	def(OpBNeq, "b!=", 4, 1, bb, u, ImmNone, Any)

	def(OpLen, "len", 1, 1, b, u, ImmNone, Any)
	def(OpItob, "itob", 1, 1, u, b, ImmNone, Any)
	def(OpBtoi, "btoi", 1, 1, b, u, ImmNone, Any)
	def(OpConcat, "concat", 2, 1, bb, b, ImmNone, Any)
	def(OpSubstring, "substring", 2, 1, b, b, ImmUint8x2, Any)
	def(OpSubstring3, "substring3", 2, 1, []Type{TypeBytes, TypeUint, TypeUint}, b, ImmNone, Any)
	def(OpGetByte, "getbyte", 3, 1, []Type{TypeBytes, TypeUint}, u, ImmNone, Any)
	def(OpSetByte, "setbyte", 3, 1, []Type{TypeBytes, TypeUint, TypeUint}, b, ImmNone, Any)

	def(OpDup, "dup", 1, 1, []Type{TypeAny}, []Type{TypeAny, TypeAny}, ImmNone, Any)
	def(OpDup2, "dup2", 1, 1, []Type{TypeAny, TypeAny}, []Type{TypeAny, TypeAny, TypeAny, TypeAny}, ImmNone, Any)
	def(OpDupN, "dupn", 4, 1, []Type{TypeAny}, none, ImmUint8, Any)
	def(OpSwap, "swap", 2, 1, []Type{TypeAny, TypeAny}, []Type{TypeAny, TypeAny}, ImmNone, Any)
	def(OpPop, "pop", 1, 1, []Type{TypeAny}, none, ImmNone, Any)
	def(OpPopN, "popn", 4, 1, none, none, ImmUint8, Any)
	def(OpBury, "bury", 4, 1, []Type{TypeAny}, none, ImmUint8, Any)
	def(OpCover, "cover", 5, 1, none, none, ImmUint8, Any)
	def(OpUncover, "uncover", 5, 1, none, none, ImmUint8, Any)
	def(OpSelect, "select", 3, 1, []Type{TypeAny, TypeAny, TypeUint}, []Type{TypeAny}, ImmNone, Any)

	def(OpLoad, "load", 1, 1, none, []Type{TypeAny}, ImmUint8, Any)
	def(OpStore, "store", 1, 1, []Type{TypeAny}, none, ImmUint8, Any)

	def(OpB, "b", 2, 1, none, none, ImmLabel, Any)
	def(OpBZ, "bz", 1, 1, u, none, ImmLabel, Any)
	def(OpBNZ, "bnz", 1, 1, u, none, ImmLabel, Any)
	def(OpSwitch, "switch", 8, 1, u, none, ImmLabelArr, Any)
	def(OpMatch, "match", 8, 1, none, none, ImmLabelArr, Any)

	def(OpCallSub, "callsub", 4, 1, none, none, ImmLabel, Any)
	def(OpRetSub, "retsub", 4, 1, none, none, ImmNone, Any)
	def(OpProto, "proto", 8, 1, none, none, ImmUint8x2, Any)
	def(OpFrameDig, "frame_dig", 8, 1, none, []Type{TypeAny}, ImmUint8, Any)
	def(OpFrameBury, "frame_bury", 8, 1, []Type{TypeAny}, none, ImmUint8, Any)

	def(OpReturn, "return", 2, 1, u, none, ImmNone, Any)
	def(OpErr, "err", 1, 1, none, none, ImmNone, Any)
	def(OpAssert, "assert", 3, 1, u, none, ImmNone, Any)

	def(OpSHA256, "sha256", 1, 35, b, b, ImmNone, Any)
	def(OpSHA512_256, "sha512_256", 1, 45, b, b, ImmNone, Any)
	def(OpKeccak256, "keccak256", 1, 130, b, b, ImmNone, Any)
	def(OpEd25519Verify, "ed25519verify", 1, 1900, []Type{TypeBytes, TypeBytes, TypeBytes}, u, ImmNone, Any)
	def(OpEcdsaVerifySecp256k1, "ecdsa_verify_secp256k1", 5, 1700, []Type{TypeBytes, TypeBytes, TypeBytes, TypeBytes, TypeBytes}, u, ImmNone, Any)
	def(OpEcdsaVerifyP256, "ecdsa_verify_secp256r1", 7, 2500, []Type{TypeBytes, TypeBytes, TypeBytes, TypeBytes, TypeBytes}, u, ImmNone, Any)
	def(OpEcdsaPkRecoverSecp256k1, "ecdsa_pk_recover_secp256k1", 5, 2000, []Type{TypeBytes, TypeBytes, TypeBytes, TypeUint}, bb, ImmNone, Any)

	def(OpTxn, "txn", 1, 1, none, []Type{TypeAny}, ImmUint8, Any)
	def(OpGTxn, "gtxn", 1, 1, none, []Type{TypeAny}, ImmUint8x2, Any)
	def(OpTxna, "txna", 2, 1, none, []Type{TypeAny}, ImmUint8x2, Any)
	def(OpGTxna, "gtxna", 2, 1, u, []Type{TypeAny}, ImmUint8x2, Any)
	def(OpGlobal, "global", 1, 1, none, []Type{TypeAny}, ImmUint8, Any)

	def(OpAppGlobalGet, "app_global_get", 2, 1, b, []Type{TypeAny}, ImmNone, ApplicationOnly)
	def(OpAppGlobalGetEx, "app_global_get_ex", 2, 1, []Type{TypeUint, TypeBytes}, []Type{TypeAny, TypeUint}, ImmNone, ApplicationOnly)
	def(OpAppGlobalPut, "app_global_put", 2, 1, []Type{TypeBytes, TypeAny}, none, ImmNone, ApplicationOnly)
	def(OpAppGlobalDel, "app_global_del", 2, 1, b, none, ImmNone, ApplicationOnly)
	def(OpAppLocalGet, "app_local_get", 2, 1, []Type{TypeBytes, TypeBytes}, []Type{TypeAny}, ImmNone, ApplicationOnly)
	def(OpAppLocalGetEx, "app_local_get_ex", 2, 1, []Type{TypeBytes, TypeUint, TypeBytes}, []Type{TypeAny, TypeUint}, ImmNone, ApplicationOnly)
	def(OpAppLocalPut, "app_local_put", 2, 1, []Type{TypeBytes, TypeBytes, TypeAny}, none, ImmNone, ApplicationOnly)
	def(OpAppLocalDel, "app_local_del", 2, 1, bb, none, ImmNone, ApplicationOnly)
	def(OpAssetHoldingGet, "asset_holding_get", 2, 1, []Type{TypeBytes, TypeUint}, []Type{TypeAny, TypeUint}, ImmUint8, ApplicationOnly)
	def(OpAssetParamsGet, "asset_params_get", 2, 1, u, []Type{TypeAny, TypeUint}, ImmUint8, ApplicationOnly)
	def(OpAppParamsGet, "app_params_get", 5, 1, u, []Type{TypeAny, TypeUint}, ImmUint8, ApplicationOnly)
	def(OpBalance, "balance", 2, 1, b, u, ImmNone, ApplicationOnly)
	def(OpMinBalance, "min_balance", 3, 1, b, u, ImmNone, ApplicationOnly)
}

// Lookup returns the Spec for a byte opcode and whether it is defined.
func Lookup(op Opcode) (Spec, bool) {
	if int(op) >= len(table) {
		return Spec{}, false
	}
	s := table[op]
	if s.Name == "" {
		return Spec{}, false
	}
	return s, true
}

// ByName resolves a mnemonic to its opcode, for the assembler.
func ByName(name string) (Opcode, bool) {
	op, ok := byName[name]
	return op, ok
}

// Count returns the number of defined opcodes.
func Count() int { return int(opcodeCount) }

// ValueType reports the Type tag corresponding to a concrete Value, used by
// the interpreter's stack-arity/type check (spec.md §4.F step 5).
func ValueType(v value.Value) Type {
	if v.IsUint() {
		return TypeUint
	}
	return TypeBytes
}
