// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package interpreter

import (
	"github.com/probechain/goteal/avm/crypto"
	"github.com/probechain/goteal/avm/opcodes"
	"github.com/probechain/goteal/avm/value"
)

// opHash dispatches the single-argument digest opcodes into avm/crypto.
func (it *Interpreter) opHash(op opcodes.Opcode) (outcome, error) {
	data, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	var digest [32]byte
	switch op {
	case opcodes.OpSHA256:
		digest = crypto.SHA256(data)
	case opcodes.OpSHA512_256:
		digest = crypto.SHA512_256(data)
	case opcodes.OpKeccak256:
		digest = crypto.Keccak256(data)
	}
	v, err := value.Bytes(digest[:])
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// opEd25519Verify implements `ed25519verify`: stack order (bottom to top)
// is data, sig, pubkey.
func (it *Interpreter) opEd25519Verify() (outcome, error) {
	pubkey, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	sig, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	msg, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	ok, err := crypto.Ed25519Verify(msg, sig, pubkey)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

// opEcdsaVerifySecp256k1 implements `ecdsa_verify_secp256k1`: stack order
// (bottom to top) is digest, sigR, sigS, pubkeyX, pubkeyY.
func (it *Interpreter) opEcdsaVerifySecp256k1() (outcome, error) {
	digest, r, s, x, y, err := it.popEcdsaArgs()
	if err != nil {
		return fail(err)
	}
	ok, err := crypto.Secp256k1Verify(digest, r, s, x, y)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

// opEcdsaVerifyP256 implements `ecdsa_verify_secp256r1` with the same
// stack shape as opEcdsaVerifySecp256k1.
func (it *Interpreter) opEcdsaVerifyP256() (outcome, error) {
	digest, r, s, x, y, err := it.popEcdsaArgs()
	if err != nil {
		return fail(err)
	}
	ok, err := crypto.P256Verify(digest, r, s, x, y)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) popEcdsaArgs() (digest, r, s, x, y []byte, err error) {
	if y, err = it.stack.PopBytes(); err != nil {
		return
	}
	if x, err = it.stack.PopBytes(); err != nil {
		return
	}
	if s, err = it.stack.PopBytes(); err != nil {
		return
	}
	if r, err = it.stack.PopBytes(); err != nil {
		return
	}
	digest, err = it.stack.PopBytes()
	return
}

// opEcdsaPkRecoverSecp256k1 implements `ecdsa_pk_recover_secp256k1`: stack
// order (bottom to top) is digest, sigR, sigS, recoveryID; pushes pubkeyX
// then pubkeyY.
func (it *Interpreter) opEcdsaPkRecoverSecp256k1() (outcome, error) {
	recoveryID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	s, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	r, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	digest, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	pk, err := crypto.Secp256k1Recover(digest, r, s, uint8(recoveryID))
	if err != nil {
		return fail(err)
	}
	xv, err := value.Bytes(append([]byte(nil), pk[0:32]...))
	if err != nil {
		return fail(err)
	}
	yv, err := value.Bytes(append([]byte(nil), pk[32:64]...))
	if err != nil {
		return fail(err)
	}
	if err := it.stack.Push(xv); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(yv))
}
