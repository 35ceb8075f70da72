// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package ledger defines the abstract host contract the interpreter
// consumes for transaction introspection, global/local application state,
// asset parameters, and account lookups (spec.md §4.C). Concrete storage
// is deliberately out of scope here; only the interface and the field-tag
// vocabularies live in this package, so the interpreter never imports a
// concrete ledger implementation.
package ledger

import "github.com/probechain/goteal/avm/value"

// Address is a 32-byte Algorand-style public key.
type Address [32]byte

// TxnField enumerates the introspectable fields of a transaction reachable
// through `txn`/`gtxn`/`txna`/`gtxna`. The set is a closed, sorted enum
// (spec.md §9: deterministic iteration); ordering here has no semantic
// meaning beyond stable numbering for documentation and tests.
type TxnField int

const (
	Sender TxnField = iota
	Fee
	FirstValid
	LastValid
	Note
	Receiver
	Amount
	Type
	TypeEnum
	GroupIndex
	TxID
	ApplicationID
	OnCompletion
	ApplicationArgs // array-valued
	Accounts        // array-valued
	Assets          // array-valued
	Applications    // array-valued
	ApprovalProgram
	ClearStateProgram
	AssetSender
	AssetReceiver
	AssetAmount
	ConfigAsset
	ConfigAssetTotal
	ConfigAssetDecimals
	Nonparticipation
	RekeyTo
	Lease
)

// IsArray reports whether a field is accessed with an index (txna/gtxna)
// rather than as a scalar (txn/gtxn).
func (f TxnField) IsArray() bool {
	switch f {
	case ApplicationArgs, Accounts, Assets, Applications:
		return true
	default:
		return false
	}
}

// GlobalField enumerates fields reachable through the `global` opcode.
type GlobalField int

const (
	GroupSize GlobalField = iota
	MinTxnFee
	MinBalance
	ZeroAddress
	LatestTimestamp
	CurrentApplicationID
	CreatorAddress
	GroupID
)

// AssetHoldingField, AssetParamsField and AppParamsField enumerate fields reachable through
// `asset_holding_get`, `asset_params_get`, and `app_params_get`.
type AssetHoldingField int

const (
	AssetBalance AssetHoldingField = iota
	AssetFrozen
)

type AssetParamsField int

const (
	AssetTotal AssetParamsField = iota
	AssetDecimals
	AssetDefaultFrozen
	AssetUnitName
	AssetName
	AssetURL
	AssetManager
	AssetReserve
	AssetFreeze
	AssetClawback
)

type AppParamsField int

const (
	AppApprovalProgram AppParamsField = iota
	AppClearStateProgram
	AppGlobalNumUint
	AppGlobalNumByteSlice
	AppLocalNumUint
	AppLocalNumByteSlice
	AppCreator
)

// StateOp records one mutation applied by an `app_*_put`/`app_*_del`
// opcode, so a host can audit the effects of a run after the fact. This
// supplements spec.md's ledger contract (§4.C) with the ordering guarantee
// named in §5: puts/dels are recorded in opcode-execution order.
type StateOp struct {
	AppID   uint64
	Account *Address // nil for global state
	Key     []byte
	Delete  bool
	Value   value.Value // zero value when Delete is true
}

// StateDelta is the append-only changelog of state mutations issued by one
// interpreter run.
type StateDelta []StateOp

// Ledger is the abstract capability set the interpreter dispatches host
// calls through (spec.md §4.C). Implementations are supplied by the host;
// LogicSig-mode runs must reject mutation at the interpreter's mode check
// before any of the Put/Del methods are invoked, but a defensive
// implementation may also reject them itself.
type Ledger interface {
	Balance(addr Address) (uint64, error)
	MinBalance(addr Address) (uint64, error)

	AppGlobalGet(appID uint64, key []byte) (value.Value, bool, error)
	AppGlobalPut(appID uint64, key []byte, v value.Value) error
	AppGlobalDel(appID uint64, key []byte) error

	AppLocalGet(addr Address, appID uint64, key []byte) (value.Value, bool, error)
	AppLocalPut(addr Address, appID uint64, key []byte, v value.Value) error
	AppLocalDel(addr Address, appID uint64, key []byte) error

	AssetHolding(addr Address, assetID uint64, field AssetHoldingField) (value.Value, bool, error)
	AssetParams(assetID uint64, field AssetParamsField) (value.Value, bool, error)
	AppParams(appID uint64, field AppParamsField) (value.Value, bool, error)

	TxnField(groupIndex int, field TxnField, arrayIndex int) (value.Value, error)
	GlobalField(field GlobalField) (value.Value, error)
}
