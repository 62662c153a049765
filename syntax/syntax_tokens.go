// Copyright (c) 2024 John Millikin <john@john-millikin.com>
//
// Permission to use, copy, modify, and/or distribute this software for any
// purpose with or without fee is hereby granted.
//
// THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES WITH
// REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF MERCHANTABILITY
// AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY SPECIAL, DIRECT,
// INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES WHATSOEVER RESULTING FROM
// LOSS OF USE, DATA OR PROFITS, WHETHER IN AN ACTION OF CONTRACT, NEGLIGENCE OR
// OTHER TORTIOUS ACTION, ARISING OUT OF OR IN CONNECTION WITH THE USE OR
// PERFORMANCE OF THIS SOFTWARE.
//
// SPDX-License-Identifier: 0BSD

package syntax

import (
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	maxSrcLen   = 0x7FFFFFFF // (2**31)-1
	maxTokenLen = int(math.MaxUint16)

	tokenFlagTextHasNoEscapes uint8 = 0x01
	tokenFlagTextSingleQuote  uint8 = 0x02
)

type Token struct {
	Len   uint16
	Kind  TokenKind
	flags uint8
}

type TokenKind uint8

const (
	T_EOF TokenKind = iota

	T_SPACE
	T_NEWLINE
	T_COMMENT
	T_BLOCK_COMMENT
	T_DOC_COMMENT

	T_COLON
	T_SEMICOLON
	T_COMMA
	T_EQ
	T_STAR
	T_LT
	T_GT

	T_OPEN_CURL
	T_CLOSE_CURL
	T_OPEN_PAREN
	T_CLOSE_PAREN
	T_OPEN_SQUARE
	T_CLOSE_SQUARE

	T_INT_LIT
	T_HEX_INT_LIT
	T_DOUBLE_LIT

	T_TEXT_LIT

	T_IDENT
)

func (k TokenKind) String() string {
	switch k {
	case T_EOF:
		return "EOF"
	case T_SPACE:
		return "SPACE"
	case T_NEWLINE:
		return "NEWLINE"
	case T_COMMENT:
		return "COMMENT"
	case T_BLOCK_COMMENT:
		return "BLOCK_COMMENT"
	case T_DOC_COMMENT:
		return "DOC_COMMENT"
	case T_COLON:
		return "COLON"
	case T_SEMICOLON:
		return "SEMICOLON"
	case T_COMMA:
		return "COMMA"
	case T_EQ:
		return "EQ"
	case T_STAR:
		return "STAR"
	case T_LT:
		return "LT"
	case T_GT:
		return "GT"
	case T_OPEN_CURL:
		return "OPEN_CURL"
	case T_CLOSE_CURL:
		return "CLOSE_CURL"
	case T_OPEN_PAREN:
		return "OPEN_PAREN"
	case T_CLOSE_PAREN:
		return "CLOSE_PAREN"
	case T_OPEN_SQUARE:
		return "OPEN_SQUARE"
	case T_CLOSE_SQUARE:
		return "CLOSE_SQUARE"
	case T_INT_LIT:
		return "INT_LIT"
	case T_HEX_INT_LIT:
		return "HEX_INT_LIT"
	case T_DOUBLE_LIT:
		return "DOUBLE_LIT"
	case T_TEXT_LIT:
		return "TEXT_LIT"
	case T_IDENT:
		return "IDENT"
	default:
		return fmt.Sprintf("TokenKind(%d)", uint8(k))
	}
}

type Tokens struct {
	src    []byte
	offset uint32
}

func NewTokens(src []byte) (*Tokens, error) {
	if len(src) > maxSrcLen {
		return nil, errSourceTooLong(len(src))
	}
	if !utf8.Valid(src) {
		return nil, errInvalidUtf8(src)
	}
	return &Tokens{
		src: src,
	}, nil
}

func (t *Tokens) Next(token *Token) error {
	if len(t.src) == 0 {
		*token = Token{
			Kind: T_EOF,
		}
		return nil
	}

	c := t.src[0]
	var kind TokenKind
	switch c {
	case '\t', ' ':
		return t.nextSpace(token)
	case '\n':
		kind = T_NEWLINE
		goto len1
	case ':':
		kind = T_COLON
		goto len1
	case ';':
		kind = T_SEMICOLON
		goto len1
	case ',':
		kind = T_COMMA
		goto len1
	case '=':
		kind = T_EQ
		goto len1
	case '*':
		kind = T_STAR
		goto len1
	case '<':
		kind = T_LT
		goto len1
	case '>':
		kind = T_GT
		goto len1
	case '{':
		kind = T_OPEN_CURL
		goto len1
	case '}':
		kind = T_CLOSE_CURL
		goto len1
	case '(':
		kind = T_OPEN_PAREN
		goto len1
	case ')':
		kind = T_CLOSE_PAREN
		goto len1
	case '[':
		kind = T_OPEN_SQUARE
		goto len1
	case ']':
		kind = T_CLOSE_SQUARE
		goto len1
	case '#':
		return t.nextComment(token)
	case '/':
		if len(t.src) > 1 && t.src[1] == '/' {
			return t.nextComment(token)
		}
		if len(t.src) > 1 && t.src[1] == '*' {
			return t.nextBlockComment(token)
		}
		return errUnexpectedCharacter(t.offset, '/')
	case '"', '\'':
		return t.nextTextLit(token)
	case '\r':
		if len(t.src) < 2 || t.src[1] != '\n' {
			return errForbiddenControlCharacter(t.offset, c)
		}
		*token = Token{
			Kind: T_NEWLINE,
			Len:  2,
		}
		t.offset += 2
		t.src = t.src[2:]
		return nil
	default:
		goto big
	}

len1:
	*token = Token{
		Kind: kind,
		Len:  1,
	}
	t.offset += 1
	t.src = t.src[1:]
	return nil

big:
	if (c >= '0' && c <= '9') || c == '-' || c == '+' {
		return t.nextNumLit(token)
	}
	if c == '.' && len(t.src) > 1 && t.src[1] >= '0' && t.src[1] <= '9' {
		return t.nextNumLit(token)
	}

	if (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '_' {
		return t.nextIdent(token)
	}

	r, _ := utf8.DecodeRune(t.src)
	if r == '\u00A0' || r == '\uFEFF' {
		return t.nextSpace(token)
	}

	if r < 0x20 || r == 0x7F {
		return errForbiddenControlCharacter(t.offset, c)
	}
	return errUnexpectedCharacter(t.offset, r)
}

func (t *Tokens) nextSpace(token *Token) error {
	src := t.src
	for {
		if src[0] == ' ' || src[0] == '\t' {
			src = src[1:]
		} else if r, runeLen := utf8.DecodeRune(src); r == '\u00A0' || r == '\uFEFF' {
			src = src[runeLen:]
		} else {
			break
		}
		if len(src) == 0 {
			break
		}
	}
	tokenLen, err := t.checkTokenLen(len(t.src) - len(src))
	if err != nil {
		return err
	}
	*token = Token{
		Kind: T_SPACE,
		Len:  tokenLen,
	}
	t.offset += uint32(tokenLen)
	t.src = src
	return nil
}

func (t *Tokens) nextComment(token *Token) error {
	src := t.src
	for ii, c := range src {
		if c == '\n' || c == '\r' {
			src = src[:ii]
			break
		}
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: T_COMMENT,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

// nextBlockComment scans a /* */ comment. Comments opened with /** (but
// not the empty /**/) are documentation.
func (t *Tokens) nextBlockComment(token *Token) error {
	end := -1
	for ii := 2; ii+1 < len(t.src); ii++ {
		if t.src[ii] == '*' && t.src[ii+1] == '/' {
			end = ii + 2
			break
		}
	}
	if end < 0 {
		return errCommentUnterminated(t.offset, uint32(len(t.src)))
	}

	kind := T_BLOCK_COMMENT
	if end > 4 && t.src[2] == '*' {
		kind = T_DOC_COMMENT
	}
	if tokenLen, err := t.checkTokenLen(end); err != nil {
		return err
	} else {
		*token = Token{
			Kind: kind,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(end)
	t.src = t.src[end:]
	return nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentChar(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || isDigit(c) || c == '_'
}

func (t *Tokens) nextNumLit(token *Token) error {
	src := t.src
	ii := 0
	if src[0] == '-' || src[0] == '+' {
		ii++
		if ii == len(src) {
			return errIntLitInvalid(t.offset, src[:1])
		}
	}

	kind := T_INT_LIT
	invalid := false
	if ii+1 < len(src) && src[ii] == '0' && (src[ii+1] == 'x' || src[ii+1] == 'X') {
		kind = T_HEX_INT_LIT
		ii += 2
		start := ii
		for ii < len(src) {
			c := src[ii]
			if isDigit(c) || (c >= 'A' && c <= 'F') || (c >= 'a' && c <= 'f') {
				ii++
				continue
			}
			if isIdentChar(c) {
				invalid = true
				ii++
				continue
			}
			break
		}
		if ii == start {
			invalid = true
		}
	} else {
		digits := 0
		for ii < len(src) && isDigit(src[ii]) {
			ii++
			digits++
		}
		if ii < len(src) && src[ii] == '.' {
			kind = T_DOUBLE_LIT
			ii++
			for ii < len(src) && isDigit(src[ii]) {
				ii++
				digits++
			}
		}
		if ii < len(src) && (src[ii] == 'e' || src[ii] == 'E') {
			kind = T_DOUBLE_LIT
			ii++
			if ii < len(src) && (src[ii] == '-' || src[ii] == '+') {
				ii++
			}
			expDigits := 0
			for ii < len(src) && isDigit(src[ii]) {
				ii++
				expDigits++
			}
			if expDigits == 0 {
				invalid = true
			}
		}
		if digits == 0 {
			invalid = true
		}
		for ii < len(src) && isIdentChar(src[ii]) {
			invalid = true
			ii++
		}
	}

	if invalid {
		return errIntLitInvalid(t.offset, src[:ii])
	}

	if tokenLen, err := t.checkTokenLen(ii); err != nil {
		return err
	} else {
		*token = Token{
			Kind: kind,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(ii)
	t.src = t.src[ii:]
	return nil
}

func (t *Tokens) nextTextLit(token *Token) error {
	quote := t.src[0]
	src := t.src
	escaped := false
	hasEscapes := false
	ok := false
	var flags uint8
	for ii, c := range t.src {
		if ii == 0 {
			continue
		}
		if escaped {
			escaped = false
			continue
		}
		if c == quote {
			src = t.src[:ii+1]
			ok = true
			break
		}
		if (c <= 0x1F || c == 0x7F) && c != 0x09 {
			off := t.offset + uint32(ii)
			if c == 0x0A {
				return errTextLitContainsNewline(off, 1)
			}
			if c == 0x0D && ii+1 < len(t.src) && t.src[ii+1] == 0x0A {
				return errTextLitContainsNewline(off, 2)
			}
			return errForbiddenControlCharacter(off, c)
		}
		if c == '\\' {
			escaped = true
			hasEscapes = true
		}
	}
	if !ok {
		return errTextLitUnterminated(t.offset, uint32(len(src)))
	}

	if !hasEscapes {
		flags |= tokenFlagTextHasNoEscapes
	}
	if quote == '\'' {
		flags |= tokenFlagTextSingleQuote
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind:  T_TEXT_LIT,
			Len:   tokenLen,
			flags: flags,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

// nextIdent scans an identifier. Dots are part of the identifier, so
// qualified names such as "shared.Config" and namespace paths such as
// "com.example.api" are single tokens.
func (t *Tokens) nextIdent(token *Token) error {
	src := t.src
	invalid := false
	for ii, c := range src {
		if ii == 0 {
			continue
		}
		if isIdentChar(c) {
			continue
		}
		if c == '.' {
			if src[ii-1] == '.' {
				invalid = true
			}
			continue
		}
		src = src[:ii]
		break
	}

	if invalid || src[len(src)-1] == '.' {
		return errIdentInvalid(t.offset, src)
	}

	tokenLen := len(src)
	if tokenLen, err := t.checkTokenLen(tokenLen); err != nil {
		return err
	} else {
		*token = Token{
			Kind: T_IDENT,
			Len:  tokenLen,
		}
	}
	t.offset += uint32(tokenLen)
	t.src = t.src[tokenLen:]
	return nil
}

func (t *Tokens) checkTokenLen(len int) (uint16, error) {
	if len > maxTokenLen {
		return 0, errTokenTooLong(t.offset, len)
	}
	return uint16(len), nil
}
