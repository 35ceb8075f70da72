// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package crypto is the AVM's cryptographic oracle: pure, deterministic,
// side-effect-free hashing and signature verification (spec.md §4.B).
// Every function here is total — malformed inputs return a TypeError
// rather than panicking, and verification failures are in-band `false`
// results, never errors.
package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/sha256"
	"crypto/sha512"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	btcecdsa "github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	tealerr "github.com/probechain/goteal/avm/errors"
)

// SHA256 computes the 32-byte SHA-256 digest, matching the AVM's `sha256`
// opcode. Grounded on stdlib crypto/sha256, the binding every pack repo
// uses for this exact digest.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA512_256 computes the 32-byte SHA-512/256 digest used by `sha512_256`
// and by Algorand's TxID/address-checksum scheme.
func SHA512_256(data []byte) [32]byte {
	return sha512.Sum512_256(data)
}

// Keccak256 computes the 32-byte legacy Keccak-256 digest used by
// `keccak256` — the pre-standardization padding, not NIST SHA3-256.
func Keccak256(data []byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Ed25519Verify reports whether sig is a valid Ed25519 signature over msg
// under pubkey. Malformed key/signature lengths are a TypeError, not a
// `false` result, since they indicate a programmer/assembly mistake rather
// than a legitimately-failed verification.
func Ed25519Verify(msg, sig, pubkey []byte) (bool, error) {
	if len(pubkey) != ed25519.PublicKeySize {
		return false, tealerr.ErrTypeError
	}
	if len(sig) != ed25519.SignatureSize {
		return false, tealerr.ErrTypeError
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), msg, sig), nil
}

// Secp256k1Verify reports whether (r, s) is a valid ECDSA signature over
// digest under the uncompressed (x, y) public key, matching
// `ecdsa_verify secp256k1`.
func Secp256k1Verify(digest, r, s, pubkeyX, pubkeyY []byte) (bool, error) {
	if len(digest) != 32 || len(r) != 32 || len(s) != 32 {
		return false, tealerr.ErrTypeError
	}
	pk, err := parseUncompressedSecp256k1(pubkeyX, pubkeyY)
	if err != nil {
		return false, tealerr.ErrTypeError
	}
	var sigR, sigS btcec.ModNScalar
	if overflow := sigR.SetByteSlice(r); overflow {
		return false, nil
	}
	if overflow := sigS.SetByteSlice(s); overflow {
		return false, nil
	}
	sig := btcecdsa.NewSignature(&sigR, &sigS)
	return sig.Verify(digest, pk), nil
}

// Secp256k1Recover recovers the 64-byte uncompressed public key (x || y)
// from a digest, signature, and recovery id, matching
// `ecdsa_pk_recover secp256k1`.
func Secp256k1Recover(digest, r, s []byte, recoveryID uint8) ([64]byte, error) {
	var out [64]byte
	if len(digest) != 32 || len(r) != 32 || len(s) != 32 || recoveryID > 3 {
		return out, tealerr.ErrTypeError
	}
	compact := make([]byte, 65)
	compact[0] = 27 + recoveryID
	copy(compact[1:33], r)
	copy(compact[33:65], s)
	pk, _, err := btcecdsa.RecoverCompact(compact, digest)
	if err != nil {
		return out, nil // malformed/unrecoverable signature: AVM semantics push zeros
	}
	raw := pk.SerializeUncompressed() // 0x04 || x (32 bytes) || y (32 bytes)
	copy(out[:], raw[1:65])
	return out, nil
}

func parseUncompressedSecp256k1(x, y []byte) (*btcec.PublicKey, error) {
	if len(x) != 32 || len(y) != 32 {
		return nil, tealerr.ErrTypeError
	}
	uncompressed := make([]byte, 65)
	uncompressed[0] = 0x04
	copy(uncompressed[1:33], x)
	copy(uncompressed[33:65], y)
	return btcec.ParsePubKey(uncompressed)
}

// P256Verify reports whether (r, s) is a valid ECDSA signature over digest
// under the NIST P-256 public key (x, y), matching `ecdsa_verify secp256r1`.
// No pack dependency supplies a P-256 verifier; this is the one oracle
// function grounded on the standard library rather than a pack import —
// see DESIGN.md.
func P256Verify(digest, r, s, pubkeyX, pubkeyY []byte) (bool, error) {
	if len(digest) != 32 || len(r) != 32 || len(s) != 32 || len(pubkeyX) != 32 || len(pubkeyY) != 32 {
		return false, tealerr.ErrTypeError
	}
	curve := elliptic.P256()
	x := new(big.Int).SetBytes(pubkeyX)
	y := new(big.Int).SetBytes(pubkeyY)
	if !curve.IsOnCurve(x, y) {
		return false, nil
	}
	pub := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	return ecdsa.Verify(pub, digest, new(big.Int).SetBytes(r), new(big.Int).SetBytes(s)), nil
}
