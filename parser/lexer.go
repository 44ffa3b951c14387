// Copyright 2024 darklua-core contributors.
// Use of this source code is governed by an MIT
// license that can be found in the LICENSE file.

// Package parser implements a deliberately minimal recursive-descent parser
// for the Lua statement/expression subset the pipeline's testable
// properties exercise: local/assignment statements, return/break/continue,
// do-blocks, if-statements and if-expressions, while/repeat/numeric and
// generic for loops, function statements and expressions (including method
// syntax), table constructors, unary/binary operators, and the three call
// argument forms. It is not a conformant full-grammar Lua front end - the
// concrete production grammar is explicitly out of scope - but it is
// sufficient to round-trip the scenarios the bundler and generator need to
// exercise end to end.
package parser

import (
	"fmt"
	"strings"

	"github.com/dark-lua/darklua-core/ast"
)

type tokenKind int

const (
	tkEOF tokenKind = iota
	tkIdentifier
	tkKeyword
	tkNumber
	tkString
	tkSymbol
)

type rawToken struct {
	kind    tokenKind
	content string
	line    int
	leading []ast.Trivia
}

var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "if": true,
	"in": true, "local": true, "nil": true, "not": true, "or": true,
	"repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true, "continue": true,
}

type lexer struct {
	src  string
	pos  int
	line int
	toks []rawToken
}

func lex(src string) ([]rawToken, error) {
	l := &lexer{src: src, line: 1}
	for {
		trivia := l.scanTrivia()
		if l.pos >= len(l.src) {
			l.toks = append(l.toks, rawToken{kind: tkEOF, line: l.line, leading: trivia})
			break
		}
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		tok.leading = trivia
		l.toks = append(l.toks, tok)
	}
	return l.toks, nil
}

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) peekByteAt(offset int) byte {
	if l.pos+offset >= len(l.src) {
		return 0
	}
	return l.src[l.pos+offset]
}

func (l *lexer) scanTrivia() []ast.Trivia {
	var trivia []ast.Trivia
	for l.pos < len(l.src) {
		c := l.peekByte()
		switch {
		case c == ' ' || c == '\t' || c == '\r':
			start := l.pos
			for l.pos < len(l.src) && (l.peekByte() == ' ' || l.peekByte() == '\t' || l.peekByte() == '\r') {
				l.pos++
			}
			trivia = append(trivia, ast.Trivia{Kind: ast.Whitespace, Content: l.src[start:l.pos]})
		case c == '\n':
			l.pos++
			l.line++
			trivia = append(trivia, ast.Trivia{Kind: ast.Whitespace, Content: "\n"})
		case c == '-' && l.peekByteAt(1) == '-':
			start := l.pos
			l.pos += 2
			if l.peekByte() == '[' {
				if level, ok := l.longBracketLevel(); ok {
					l.consumeLongBracket(level)
					trivia = append(trivia, ast.Trivia{Kind: ast.Comment, Content: l.src[start:l.pos]})
					continue
				}
			}
			for l.pos < len(l.src) && l.peekByte() != '\n' {
				l.pos++
			}
			trivia = append(trivia, ast.Trivia{Kind: ast.Comment, Content: l.src[start:l.pos]})
		default:
			return trivia
		}
	}
	return trivia
}

// longBracketLevel checks for a `[=*[` opener at l.pos without consuming
// unless it matches; ok is false if this isn't a long-bracket opener.
func (l *lexer) longBracketLevel() (int, bool) {
	save := l.pos
	if l.peekByte() != '[' {
		return 0, false
	}
	p := l.pos + 1
	level := 0
	for p < len(l.src) && l.src[p] == '=' {
		level++
		p++
	}
	if p < len(l.src) && l.src[p] == '[' {
		l.pos = p + 1
		return level, true
	}
	l.pos = save
	return 0, false
}

func (l *lexer) consumeLongBracket(level int) string {
	closer := "]" + strings.Repeat("=", level) + "]"
	start := l.pos
	idx := strings.Index(l.src[l.pos:], closer)
	if idx < 0 {
		l.line += strings.Count(l.src[l.pos:], "\n")
		l.pos = len(l.src)
		return l.src[start:]
	}
	content := l.src[l.pos : l.pos+idx]
	l.line += strings.Count(content, "\n")
	l.pos += idx + len(closer)
	return content
}

func (l *lexer) scanToken() (rawToken, error) {
	line := l.line
	c := l.peekByte()
	switch {
	case isIdentStart(c):
		start := l.pos
		for l.pos < len(l.src) && isIdentPart(l.peekByte()) {
			l.pos++
		}
		word := l.src[start:l.pos]
		if keywords[word] {
			return rawToken{kind: tkKeyword, content: word, line: line}, nil
		}
		return rawToken{kind: tkIdentifier, content: word, line: line}, nil

	case isDigit(c) || (c == '.' && isDigit(l.peekByteAt(1))):
		start := l.pos
		l.scanNumber()
		return rawToken{kind: tkNumber, content: l.src[start:l.pos], line: line}, nil

	case c == '"' || c == '\'':
		return l.scanQuotedString(line)

	case c == '[' && (l.peekByteAt(1) == '[' || l.peekByteAt(1) == '='):
		save := l.pos
		if level, ok := l.longBracketLevel(); ok {
			l.consumeLongBracket(level)
			return rawToken{kind: tkString, content: l.src[save:l.pos], line: line}, nil
		}
		l.pos++
		return rawToken{kind: tkSymbol, content: "[", line: line}, nil

	default:
		return l.scanSymbol(line)
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (l *lexer) scanNumber() {
	if l.peekByte() == '0' && (l.peekByteAt(1) == 'x' || l.peekByteAt(1) == 'X') {
		l.pos += 2
		for isHex(l.peekByte()) {
			l.pos++
		}
		return
	}
	for isDigit(l.peekByte()) {
		l.pos++
	}
	if l.peekByte() == '.' {
		l.pos++
		for isDigit(l.peekByte()) {
			l.pos++
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		l.pos++
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.pos++
		}
		for isDigit(l.peekByte()) {
			l.pos++
		}
	}
}

func isHex(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

func (l *lexer) scanQuotedString(line int) (rawToken, error) {
	quote := l.peekByte()
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		c := l.peekByte()
		if c == '\\' {
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			return rawToken{kind: tkString, content: l.src[start:l.pos], line: line}, nil
		}
		if c == '\n' {
			return rawToken{}, fmt.Errorf("unterminated string literal at line %d", line)
		}
		l.pos++
	}
	return rawToken{}, fmt.Errorf("unterminated string literal at line %d", line)
}

var multiCharSymbols = []string{
	"...", "..", "==", "~=", "<=", ">=", "::",
}

func (l *lexer) scanSymbol(line int) (rawToken, error) {
	for _, sym := range multiCharSymbols {
		if strings.HasPrefix(l.src[l.pos:], sym) {
			l.pos += len(sym)
			return rawToken{kind: tkSymbol, content: sym, line: line}, nil
		}
	}
	c := l.peekByte()
	switch c {
	case '+', '-', '*', '/', '%', '^', '#', '<', '>', '=', '(', ')', '{', '}',
		'[', ']', ';', ':', ',', '.':
		l.pos++
		return rawToken{kind: tkSymbol, content: string(c), line: line}, nil
	default:
		return rawToken{}, fmt.Errorf("unexpected character %q at line %d", c, line)
	}
}

// decodeString strips the surrounding quotes (or long-bracket delimiters)
// from a raw string token and resolves `\n`, `\t`, `\\`, `\"`, `\'` escapes.
// Long-bracket strings carry no escapes, so their body is returned verbatim.
func decodeString(raw string) string {
	if strings.HasPrefix(raw, "[") {
		open := 1
		for raw[open] == '=' {
			open++
		}
		closeLen := open + 1
		return raw[open+1 : len(raw)-closeLen]
	}
	body := raw[1 : len(raw)-1]
	var out strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case 'n':
				out.WriteByte('\n')
			case 't':
				out.WriteByte('\t')
			case 'r':
				out.WriteByte('\r')
			case '\\':
				out.WriteByte('\\')
			case '"':
				out.WriteByte('"')
			case '\'':
				out.WriteByte('\'')
			default:
				out.WriteByte(body[i])
			}
			continue
		}
		out.WriteByte(c)
	}
	return out.String()
}
