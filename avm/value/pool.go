// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package value

import errors "github.com/probechain/goteal/avm/errors"

// ConstPool holds the two program-scoped constant arrays installed by the
// `intcblock`/`bytecblock` prelude opcodes (spec.md §3).
type ConstPool struct {
	Ints  []uint64
	Bytes [][]byte
}

// Int returns IntC[i].
func (p *ConstPool) Int(i uint64) (uint64, error) {
	if i >= uint64(len(p.Ints)) {
		return 0, errors.ErrTruncatedProgram
	}
	return p.Ints[i], nil
}

// Byte returns ByteC[i].
func (p *ConstPool) Byte(i uint64) ([]byte, error) {
	if i >= uint64(len(p.Bytes)) {
		return nil, errors.ErrTruncatedProgram
	}
	return p.Bytes[i], nil
}
