// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.

package value

import (
	"math/big"
	"testing"
)

func TestBytesToBig(t *testing.T) {
	cases := []struct {
		in   []byte
		want int64
	}{
		{nil, 0},
		{[]byte{}, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x01, 0x00}, 256},
	}
	for _, c := range cases {
		got := BytesToBig(c.in)
		if got.Cmp(big.NewInt(c.want)) != 0 {
			t.Errorf("BytesToBig(%x) = %s; want %d", c.in, got, c.want)
		}
	}
}

func TestBigToBytesZeroRendersSingleByte(t *testing.T) {
	b := BigToBytes(big.NewInt(0))
	if len(b) != 1 || b[0] != 0x00 {
		t.Fatalf("BigToBytes(0) = %x; want single 0x00 byte", b)
	}
}

func TestBigToBytesTrimsLeadingZeros(t *testing.T) {
	b := BigToBytes(big.NewInt(256))
	if len(b) != 2 || b[0] != 0x01 || b[1] != 0x00 {
		t.Fatalf("BigToBytes(256) = %x; want 0100", b)
	}
}

func TestBigRoundTrip(t *testing.T) {
	n := new(big.Int).SetUint64(1<<63 + 12345)
	if got := BytesToBig(BigToBytes(n)); got.Cmp(n) != 0 {
		t.Fatalf("round trip through bytes changed value: got %s want %s", got, n)
	}
}
