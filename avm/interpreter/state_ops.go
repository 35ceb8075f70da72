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
	"github.com/probechain/goteal/avm/ledger"
	"github.com/probechain/goteal/avm/value"
)

func addressFromBytes(b []byte) (ledger.Address, error) {
	var addr ledger.Address
	if len(b) != len(addr) {
		return addr, tealerr.ErrTypeError
	}
	copy(addr[:], b)
	return addr, nil
}

// opTxn implements `txn`/`txna`: arrayIndex is -1 for a scalar field access.
func (it *Interpreter) opTxn(field uint64, arrayIndex int) (outcome, error) {
	v, err := it.ledger.TxnField(it.cfg.GroupIndex, ledger.TxnField(field), arrayIndex)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// opGTxn implements `gtxn`: an explicit group index replaces the run's own.
func (it *Interpreter) opGTxn(groupIndex, field uint64, arrayIndex int) (outcome, error) {
	v, err := it.ledger.TxnField(int(groupIndex), ledger.TxnField(field), arrayIndex)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// opGTxna implements `gtxna`: the array index travels on the stack rather
// than as a third immediate byte, since the immediate schema here only
// carries two bytes (group index, field).
func (it *Interpreter) opGTxna(groupIndex, field uint64) (outcome, error) {
	idx, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	v, err := it.ledger.TxnField(int(groupIndex), ledger.TxnField(field), int(idx))
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

// opGlobal implements `global`.
func (it *Interpreter) opGlobal(field uint64) (outcome, error) {
	v, err := it.ledger.GlobalField(ledger.GlobalField(field))
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(v))
}

func (it *Interpreter) recordGlobalPut(key []byte, v value.Value) {
	it.delta = append(it.delta, ledger.StateOp{AppID: it.cfg.AppID, Key: append([]byte(nil), key...), Value: v})
}

func (it *Interpreter) recordGlobalDel(key []byte) {
	it.delta = append(it.delta, ledger.StateOp{AppID: it.cfg.AppID, Key: append([]byte(nil), key...), Delete: true})
}

func (it *Interpreter) recordLocalPut(addr ledger.Address, key []byte, v value.Value) {
	a := addr
	it.delta = append(it.delta, ledger.StateOp{AppID: it.cfg.AppID, Account: &a, Key: append([]byte(nil), key...), Value: v})
}

func (it *Interpreter) recordLocalDel(addr ledger.Address, key []byte) {
	a := addr
	it.delta = append(it.delta, ledger.StateOp{AppID: it.cfg.AppID, Account: &a, Key: append([]byte(nil), key...), Delete: true})
}

func (it *Interpreter) opAppGlobalGet() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AppGlobalGet(it.cfg.AppID, key)
	if err != nil {
		return fail(err)
	}
	if !ok {
		v = value.Uint(0)
	}
	return cont2(it.stack.Push(v))
}

func (it *Interpreter) opAppGlobalGetEx() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	appID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AppGlobalGet(appID, key)
	if err != nil {
		return fail(err)
	}
	if !ok {
		v = value.Uint(0)
	}
	if err := it.stack.Push(v); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) opAppGlobalPut() (outcome, error) {
	v, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	if err := it.ledger.AppGlobalPut(it.cfg.AppID, key, v); err != nil {
		return fail(err)
	}
	it.recordGlobalPut(key, v)
	return cont()
}

func (it *Interpreter) opAppGlobalDel() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	if err := it.ledger.AppGlobalDel(it.cfg.AppID, key); err != nil {
		return fail(err)
	}
	it.recordGlobalDel(key)
	return cont()
}

func (it *Interpreter) opAppLocalGet() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AppLocalGet(addr, it.cfg.AppID, key)
	if err != nil {
		return fail(err)
	}
	if !ok {
		v = value.Uint(0)
	}
	return cont2(it.stack.Push(v))
}

func (it *Interpreter) opAppLocalGetEx() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	appID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AppLocalGet(addr, appID, key)
	if err != nil {
		return fail(err)
	}
	if !ok {
		v = value.Uint(0)
	}
	if err := it.stack.Push(v); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) opAppLocalPut() (outcome, error) {
	v, err := it.stack.Pop()
	if err != nil {
		return fail(err)
	}
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	if err := it.ledger.AppLocalPut(addr, it.cfg.AppID, key, v); err != nil {
		return fail(err)
	}
	it.recordLocalPut(addr, key, v)
	return cont()
}

func (it *Interpreter) opAppLocalDel() (outcome, error) {
	key, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	if err := it.ledger.AppLocalDel(addr, it.cfg.AppID, key); err != nil {
		return fail(err)
	}
	it.recordLocalDel(addr, key)
	return cont()
}

func (it *Interpreter) opAssetHoldingGet(field uint64) (outcome, error) {
	assetID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AssetHolding(addr, assetID, ledger.AssetHoldingField(field))
	if err != nil {
		return fail(err)
	}
	if err := it.stack.Push(v); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) opAssetParamsGet(field uint64) (outcome, error) {
	assetID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AssetParams(assetID, ledger.AssetParamsField(field))
	if err != nil {
		return fail(err)
	}
	if err := it.stack.Push(v); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) opAppParamsGet(field uint64) (outcome, error) {
	appID, err := it.stack.PopUint()
	if err != nil {
		return fail(err)
	}
	v, ok, err := it.ledger.AppParams(appID, ledger.AppParamsField(field))
	if err != nil {
		return fail(err)
	}
	if err := it.stack.Push(v); err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(boolUint(ok))))
}

func (it *Interpreter) opBalance() (outcome, error) {
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	bal, err := it.ledger.Balance(addr)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(bal)))
}

func (it *Interpreter) opMinBalance() (outcome, error) {
	addrBytes, err := it.stack.PopBytes()
	if err != nil {
		return fail(err)
	}
	addr, err := addressFromBytes(addrBytes)
	if err != nil {
		return fail(err)
	}
	bal, err := it.ledger.MinBalance(addr)
	if err != nil {
		return fail(err)
	}
	return cont2(it.stack.Push(value.Uint(bal)))
}
