// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import "math/big"

// BytesToBig interprets b as a big-endian unsigned integer, matching the
// `b+`/`b-`/`b*`/`b/`/`b%` opcode family's operand interpretation. An empty
// slice is the value zero.
func BytesToBig(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// BigToBytes renders n as a big-endian byte string with leading zero bytes
// trimmed, except that the zero value renders as a single 0x00 byte
// (spec.md §4.F). holiman/uint256's fixed-width representation cannot
// express this variable-length, arbitrary-precision contract (TEAL byte
// arithmetic operates on strings up to 4096 bytes, far beyond a 256-bit
// word), so math/big is used instead — see DESIGN.md.
func BigToBytes(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) == 0 {
		return []byte{0x00}
	}
	return b
}
