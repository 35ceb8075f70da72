// Copyright 2024 The ProbeChain Authors
// This file is part of the ProbeChain.
//
// The ProbeChain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// Package lexer implements a single-pass, no-backtracking tokenizer for
// TEAL assembly source (spec.md §4.E pass 1). Unlike an expression-grammar
// lexer, newlines are significant: one instruction (or label, or pragma)
// occupies one line.
package lexer

import (
	"github.com/probechain/goteal/asm/token"
)

// Lexer holds the state for a single-pass tokenization run.
type Lexer struct {
	filename string
	input    []byte

	pos  int
	line int
	col  int

	ch byte
}

// New creates a Lexer for the given filename and source text.
func New(filename, input string) *Lexer {
	l := &Lexer{filename: filename, input: []byte(input), line: 1, col: 0}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	if l.pos >= len(l.input) {
		l.ch = 0
		return
	}
	l.ch = l.input[l.pos]
	l.pos++
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) currentPos() token.Position {
	return token.Position{File: l.filename, Line: l.line, Col: l.col}
}

func makeToken(typ token.Type, lit string, pos token.Position) token.Token {
	return token.Token{Type: typ, Literal: lit, Pos: pos}
}

// skipInlineSpace consumes spaces, tabs and carriage returns; newlines are tokens.
func (l *Lexer) skipInlineSpace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
		l.advance()
	}
}

// NextToken scans and returns the next token. After EOF, subsequent calls
// keep returning EOF.
func (l *Lexer) NextToken() token.Token {
	l.skipInlineSpace()
	pos := l.currentPos()
	ch := l.ch

	switch {
	case ch == 0:
		return makeToken(token.EOF, "", pos)

	case ch == '\n':
		l.advance()
		return makeToken(token.NEWLINE, "\n", pos)

	case ch == '/' && l.peek() == '/':
		l.advance()
		l.advance()
		var buf []byte
		for l.ch != '\n' && l.ch != 0 {
			buf = append(buf, l.ch)
			l.advance()
		}
		return makeToken(token.COMMENT, string(buf), pos)

	case ch == '"':
		l.advance()
		lit, ok := l.readStringBody()
		if !ok {
			return makeToken(token.ILLEGAL, lit, pos)
		}
		return makeToken(token.STRING, lit, pos)

	case ch == '(':
		l.advance()
		return makeToken(token.LPAREN, "(", pos)

	case ch == ')':
		l.advance()
		return makeToken(token.RPAREN, ")", pos)

	default:
		word := l.readWord()
		return classify(word, pos)
	}
}

// readStringBody reads a double-quoted string's content (with the usual
// backslash escapes preserved verbatim; decoding happens in the assembler).
// The opening quote has already been consumed.
func (l *Lexer) readStringBody() (string, bool) {
	var buf []byte
	for {
		switch l.ch {
		case 0, '\n':
			return string(buf), false
		case '\\':
			buf = append(buf, l.ch)
			l.advance()
			if l.ch == 0 {
				return string(buf), false
			}
			buf = append(buf, l.ch)
			l.advance()
		case '"':
			l.advance()
			return string(buf), true
		default:
			buf = append(buf, l.ch)
			l.advance()
		}
	}
}

// readWord consumes a maximal run of non-whitespace, non-paren, non-quote
// bytes: TEAL mnemonics include symbolic names ("+", "b<=", "!=") that a
// conventional identifier scanner would reject.
func (l *Lexer) readWord() string {
	var buf []byte
	for !isWordBoundary(l.ch) {
		buf = append(buf, l.ch)
		l.advance()
	}
	return string(buf)
}

func isWordBoundary(ch byte) bool {
	switch ch {
	case 0, ' ', '\t', '\r', '\n', '"', '(', ')':
		return true
	default:
		return false
	}
}

// classify tags a scanned word as a pragma, label, integer, or bare
// identifier/mnemonic. Byte-literal hex forms ("byte 0xDEADBEEF") share the
// INT token type with integer literals; the assembler distinguishes them by
// the preceding pseudo-op, not by token type.
func classify(word string, pos token.Position) token.Token {
	switch {
	case word == "":
		return makeToken(token.ILLEGAL, word, pos)
	case word[0] == '#':
		return makeToken(token.PRAGMA, word, pos)
	case len(word) > 1 && word[len(word)-1] == ':' && isLabelBody(word[:len(word)-1]):
		return makeToken(token.LABEL, word[:len(word)-1], pos)
	case isIntLiteral(word):
		return makeToken(token.INT, word, pos)
	default:
		return makeToken(token.IDENT, word, pos)
	}
}

func isLabelBody(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		ok := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !ok {
			return false
		}
	}
	return true
}

func isIntLiteral(s string) bool {
	if s == "" || s[0] < '0' || s[0] > '9' {
		return false
	}
	return true
}

// Tokenize runs NextToken to completion and returns every token, including
// the final EOF.
func (l *Lexer) Tokenize() []token.Token {
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return toks
}
