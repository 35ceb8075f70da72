// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

package assembler

import (
	"bytes"
	"encoding/base32"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/probechain/goteal/asm/token"
	"github.com/probechain/goteal/avm/crypto"
	tealerr "github.com/probechain/goteal/avm/errors"
)

// base32NoPad matches the padding-free RFC 4648 base32 alphabet Algorand
// addresses and `byte base32 …` literals use.
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// parseByteLiteral decodes one `byte` pseudo-op argument, returning the
// decoded bytes and how many tokens it consumed (spec.md §4.E literal
// decoding rules — all forms must be accepted).
func parseByteLiteral(file string, lineNo int, args []token.Token) ([]byte, int, error) {
	if len(args) == 0 {
		return nil, 0, asmErr(file, lineNo, "byte literal: missing argument")
	}
	first := args[0]

	switch {
	case first.Type == token.STRING:
		return unescapeString(first.Literal), 1, nil

	case first.Type == token.INT && strings.HasPrefix(first.Literal, "0x"):
		b, err := hex.DecodeString(strings.TrimPrefix(first.Literal, "0x"))
		if err != nil {
			return nil, 0, asmErr(file, lineNo, "byte literal: invalid hex: "+err.Error())
		}
		return b, 1, nil

	case first.Literal == "base64" || first.Literal == "b64":
		return parseParenOrSpaced(file, lineNo, args, base64Decode)

	case first.Literal == "base32":
		return parseParenOrSpaced(file, lineNo, args, base32Decode)

	default:
		return nil, 0, asmErr(file, lineNo, "byte literal: unrecognized form %q", first.Literal)
	}
}

// parseParenOrSpaced handles both `byte base64(AAAA==)` and
// `byte base64 AAAA==` forms, returning the decoded bytes and total tokens
// consumed (keyword + parens/data).
func parseParenOrSpaced(file string, lineNo int, args []token.Token, decode func(string) ([]byte, error)) ([]byte, int, error) {
	if len(args) >= 4 && args[1].Type == token.LPAREN && args[3].Type == token.RPAREN {
		b, err := decode(args[2].Literal)
		if err != nil {
			return nil, 0, asmErr(file, lineNo, "byte literal: %v", err)
		}
		return b, 4, nil
	}
	if len(args) >= 2 {
		b, err := decode(args[1].Literal)
		if err != nil {
			return nil, 0, asmErr(file, lineNo, "byte literal: %v", err)
		}
		return b, 2, nil
	}
	return nil, 0, asmErr(file, lineNo, "byte literal: missing encoded data")
}

func base64Decode(s string) ([]byte, error) { return base64.StdEncoding.DecodeString(s) }
func base32Decode(s string) ([]byte, error) { return base32NoPad.DecodeString(strings.ToUpper(s)) }

// unescapeString decodes the small set of backslash escapes TEAL string
// literals support; the lexer preserves escapes verbatim.
func unescapeString(s string) []byte {
	var out []byte
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
			switch s[i] {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			case '\\':
				out = append(out, '\\')
			case '"':
				out = append(out, '"')
			default:
				out = append(out, '\\', s[i])
			}
			continue
		}
		out = append(out, s[i])
	}
	return out
}

// parseAddrLiteral decodes a 32-byte Algorand-style address plus its
// trailing 4-byte sha512/256 checksum.
func parseAddrLiteral(file string, lineNo int, lit string) ([]byte, error) {
	raw, err := base32NoPad.DecodeString(strings.ToUpper(lit))
	if err != nil || len(raw) != 36 {
		return nil, &tealerr.AssemblyError{File: file, Line: lineNo, Message: "invalid address: bad base32 encoding"}
	}
	payload, checksum := raw[:32], raw[32:36]
	digest := crypto.SHA512_256(payload)
	if !bytes.Equal(checksum, digest[28:32]) {
		return nil, &tealerr.AssemblyError{File: file, Line: lineNo, Message: "invalid address: checksum mismatch"}
	}
	return payload, nil
}

// methodSelector computes the ARC-4 selector: the first 4 bytes of the
// sha512/256 digest of the method signature string.
func methodSelector(sig string) []byte {
	digest := crypto.SHA512_256([]byte(sig))
	return append([]byte(nil), digest[:4]...)
}

func asmErr(file string, line int, format string, args ...any) error {
	return &tealerr.AssemblyError{File: file, Line: line, Message: fmt.Sprintf(format, args...)}
}
