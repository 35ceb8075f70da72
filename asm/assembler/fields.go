// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package assembler

import "github.com/probechain/goteal/avm/ledger"

var txnFields = map[string]uint64{
	"Sender":             uint64(ledger.Sender),
	"Fee":                uint64(ledger.Fee),
	"FirstValid":         uint64(ledger.FirstValid),
	"LastValid":          uint64(ledger.LastValid),
	"Note":               uint64(ledger.Note),
	"Receiver":           uint64(ledger.Receiver),
	"Amount":             uint64(ledger.Amount),
	"Type":               uint64(ledger.Type),
	"TypeEnum":           uint64(ledger.TypeEnum),
	"GroupIndex":         uint64(ledger.GroupIndex),
	"TxID":               uint64(ledger.TxID),
	"ApplicationID":      uint64(ledger.ApplicationID),
	"OnCompletion":       uint64(ledger.OnCompletion),
	"ApplicationArgs":    uint64(ledger.ApplicationArgs),
	"Accounts":           uint64(ledger.Accounts),
	"Assets":             uint64(ledger.Assets),
	"Applications":       uint64(ledger.Applications),
	"ApprovalProgram":    uint64(ledger.ApprovalProgram),
	"ClearStateProgram":  uint64(ledger.ClearStateProgram),
	"AssetSender":        uint64(ledger.AssetSender),
	"AssetReceiver":      uint64(ledger.AssetReceiver),
	"AssetAmount":        uint64(ledger.AssetAmount),
	"ConfigAsset":        uint64(ledger.ConfigAsset),
	"ConfigAssetTotal":   uint64(ledger.ConfigAssetTotal),
	"ConfigAssetDecimals": uint64(ledger.ConfigAssetDecimals),
	"Nonparticipation":   uint64(ledger.Nonparticipation),
	"RekeyTo":            uint64(ledger.RekeyTo),
	"Lease":              uint64(ledger.Lease),
}

var globalFields = map[string]uint64{
	"GroupSize":            uint64(ledger.GroupSize),
	"MinTxnFee":            uint64(ledger.MinTxnFee),
	"MinBalance":           uint64(ledger.MinBalance),
	"ZeroAddress":          uint64(ledger.ZeroAddress),
	"LatestTimestamp":      uint64(ledger.LatestTimestamp),
	"CurrentApplicationID": uint64(ledger.CurrentApplicationID),
	"CreatorAddress":       uint64(ledger.CreatorAddress),
	"GroupID":              uint64(ledger.GroupID),
}

var assetHoldingFields = map[string]uint64{
	"AssetBalance": uint64(ledger.AssetBalance),
	"AssetFrozen":  uint64(ledger.AssetFrozen),
}

var assetParamsFields = map[string]uint64{
	"AssetTotal":         uint64(ledger.AssetTotal),
	"AssetDecimals":      uint64(ledger.AssetDecimals),
	"AssetDefaultFrozen": uint64(ledger.AssetDefaultFrozen),
	"AssetUnitName":      uint64(ledger.AssetUnitName),
	"AssetName":          uint64(ledger.AssetName),
	"AssetURL":           uint64(ledger.AssetURL),
	"AssetManager":       uint64(ledger.AssetManager),
	"AssetReserve":       uint64(ledger.AssetReserve),
	"AssetFreeze":        uint64(ledger.AssetFreeze),
	"AssetClawback":      uint64(ledger.AssetClawback),
}

var appParamsFields = map[string]uint64{
	"ApprovalProgram":      uint64(ledger.AppApprovalProgram),
	"ClearStateProgram":    uint64(ledger.AppClearStateProgram),
	"GlobalNumUint":        uint64(ledger.AppGlobalNumUint),
	"GlobalNumByteSlice":   uint64(ledger.AppGlobalNumByteSlice),
	"LocalNumUint":         uint64(ledger.AppLocalNumUint),
	"LocalNumByteSlice":    uint64(ledger.AppLocalNumByteSlice),
	"Creator":              uint64(ledger.AppCreator),
}

// resolveField parses a `txn`/`global`/`asset_*`-style argument: either a
// raw integer or one of the named fields in table.
func resolveField(lit string, table map[string]uint64) (uint64, bool) {
	if n, err := parseIntLiteral(lit); err == nil {
		return n, true
	}
	n, ok := table[lit]
	return n, ok
}
