// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package ledger

import (
	tealerr "github.com/probechain/goteal/avm/errors"
	"github.com/probechain/goteal/avm/value"
)

// Memory is a process-local Ledger backed by plain maps: enough to drive
// the CLI's `execute` subcommand and tests without a real host. It answers
// scalar txn field and global field queries with Uint(0) unless explicitly
// seeded; an unseeded array field has no slots, so any txna index is out of
// range. All application state is kept in memory for the run.
type Memory struct {
	Balances map[Address]uint64
	MinBal   uint64

	Txns      []TxnRecord
	GroupIdx  int
	Global    map[GlobalField]value.Value

	globalState map[uint64]map[string]value.Value
	localState  map[Address]map[uint64]map[string]value.Value

	Assets map[uint64]map[AssetParamsField]value.Value
	Apps   map[uint64]map[AppParamsField]value.Value
	Holds  map[Address]map[uint64]map[AssetHoldingField]value.Value
}

// TxnRecord is one transaction's seeded field values, keyed by TxnField.
// Array-valued fields (ApplicationArgs, Accounts, Assets, Applications)
// store one value.Value per array slot.
type TxnRecord struct {
	Scalar map[TxnField]value.Value
	Arrays map[TxnField][]value.Value
}

// NewMemory returns an empty in-memory ledger with a single zero-valued
// transaction in its group, ready for scalar field lookups to default to Uint(0).
func NewMemory() *Memory {
	return &Memory{
		Balances:    make(map[Address]uint64),
		Txns:        []TxnRecord{{Scalar: map[TxnField]value.Value{}, Arrays: map[TxnField][]value.Value{}}},
		Global:      make(map[GlobalField]value.Value),
		globalState: make(map[uint64]map[string]value.Value),
		localState:  make(map[Address]map[uint64]map[string]value.Value),
		Assets:      make(map[uint64]map[AssetParamsField]value.Value),
		Apps:        make(map[uint64]map[AppParamsField]value.Value),
		Holds:       make(map[Address]map[uint64]map[AssetHoldingField]value.Value),
	}
}

func (m *Memory) Balance(addr Address) (uint64, error) { return m.Balances[addr], nil }
func (m *Memory) MinBalance(Address) (uint64, error)    { return m.MinBal, nil }

func (m *Memory) AppGlobalGet(appID uint64, key []byte) (value.Value, bool, error) {
	bucket, ok := m.globalState[appID]
	if !ok {
		return value.Uint(0), false, nil
	}
	v, ok := bucket[string(key)]
	if !ok {
		return value.Uint(0), false, nil
	}
	return v, true, nil
}

func (m *Memory) AppGlobalPut(appID uint64, key []byte, v value.Value) error {
	bucket, ok := m.globalState[appID]
	if !ok {
		bucket = make(map[string]value.Value)
		m.globalState[appID] = bucket
	}
	bucket[string(key)] = v
	return nil
}

func (m *Memory) AppGlobalDel(appID uint64, key []byte) error {
	if bucket, ok := m.globalState[appID]; ok {
		delete(bucket, string(key))
	}
	return nil
}

func (m *Memory) AppLocalGet(addr Address, appID uint64, key []byte) (value.Value, bool, error) {
	perAcct, ok := m.localState[addr]
	if !ok {
		return value.Uint(0), false, nil
	}
	bucket, ok := perAcct[appID]
	if !ok {
		return value.Uint(0), false, nil
	}
	v, ok := bucket[string(key)]
	if !ok {
		return value.Uint(0), false, nil
	}
	return v, true, nil
}

func (m *Memory) AppLocalPut(addr Address, appID uint64, key []byte, v value.Value) error {
	perAcct, ok := m.localState[addr]
	if !ok {
		perAcct = make(map[uint64]map[string]value.Value)
		m.localState[addr] = perAcct
	}
	bucket, ok := perAcct[appID]
	if !ok {
		bucket = make(map[string]value.Value)
		perAcct[appID] = bucket
	}
	bucket[string(key)] = v
	return nil
}

func (m *Memory) AppLocalDel(addr Address, appID uint64, key []byte) error {
	if perAcct, ok := m.localState[addr]; ok {
		if bucket, ok := perAcct[appID]; ok {
			delete(bucket, string(key))
		}
	}
	return nil
}

func (m *Memory) AssetHolding(addr Address, assetID uint64, field AssetHoldingField) (value.Value, bool, error) {
	perAcct, ok := m.Holds[addr]
	if !ok {
		return value.Uint(0), false, nil
	}
	bucket, ok := perAcct[assetID]
	if !ok {
		return value.Uint(0), false, nil
	}
	v, ok := bucket[field]
	return v, ok, nil
}

func (m *Memory) AssetParams(assetID uint64, field AssetParamsField) (value.Value, bool, error) {
	bucket, ok := m.Assets[assetID]
	if !ok {
		return value.Uint(0), false, nil
	}
	v, ok := bucket[field]
	return v, ok, nil
}

func (m *Memory) AppParams(appID uint64, field AppParamsField) (value.Value, bool, error) {
	bucket, ok := m.Apps[appID]
	if !ok {
		return value.Uint(0), false, nil
	}
	v, ok := bucket[field]
	return v, ok, nil
}

func (m *Memory) TxnField(groupIndex int, field TxnField, arrayIndex int) (value.Value, error) {
	if groupIndex < 0 || groupIndex >= len(m.Txns) {
		return value.Value{}, tealerr.ErrNoSuchTxn
	}
	rec := m.Txns[groupIndex]
	if field.IsArray() {
		arr := rec.Arrays[field]
		if arrayIndex < 0 || arrayIndex >= len(arr) {
			return value.Value{}, tealerr.ErrArrayIndexOutOfRange
		}
		return arr[arrayIndex], nil
	}
	v, ok := rec.Scalar[field]
	if !ok {
		return value.Uint(0), nil
	}
	return v, nil
}

func (m *Memory) GlobalField(field GlobalField) (value.Value, error) {
	v, ok := m.Global[field]
	if !ok {
		return value.Uint(0), nil
	}
	return v, nil
}
