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

package thriftjson

import (
	"encoding/base64"
	"errors"
	"math"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

var unescapes = map[byte]byte{
	'"':  '"',
	'\\': '\\',
	'/':  '/',
	'b':  '\b',
	'f':  '\f',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
}

func (p *Protocol) readByte() (byte, error) {
	if p.peeked {
		p.peeked = false
		return p.peekedVal, nil
	}
	if err := transport.ReadFull(p.t, p.buf[:]); err != nil {
		return 0, err
	}
	return p.buf[0], nil
}

func (p *Protocol) peekByte() (byte, error) {
	if !p.peeked {
		if err := transport.ReadFull(p.t, p.buf[:]); err != nil {
			return 0, err
		}
		p.peeked = true
		p.peekedVal = p.buf[0]
	}
	return p.peekedVal, nil
}

func (p *Protocol) readSyntax(want byte) error {
	got, err := p.readByte()
	if err != nil {
		return err
	}
	if got != want {
		return errUnexpectedChar(want, got)
	}
	return nil
}

func (p *Protocol) readSeparator() error {
	if sep := p.ctx.separator(); sep != 0 {
		return p.readSyntax(sep)
	}
	return nil
}

func (p *Protocol) readJSONString(skipContext bool) ([]byte, error) {
	if !skipContext {
		if err := p.readSeparator(); err != nil {
			return nil, err
		}
	}
	if err := p.readSyntax('"'); err != nil {
		return nil, err
	}

	var out []byte
	var highSurrogate rune
	for {
		if p.stringLimit >= 0 && len(out) > int(p.stringLimit) {
			return nil, errStringLimit(p.stringLimit)
		}
		ch, err := p.readByte()
		if err != nil {
			return nil, err
		}
		if ch == '"' {
			break
		}
		if ch != '\\' {
			if highSurrogate != 0 {
				return nil, errSurrogate("Expected low surrogate char")
			}
			out = append(out, ch)
			continue
		}

		ch, err = p.readByte()
		if err != nil {
			return nil, err
		}
		if ch != 'u' {
			unescaped, ok := unescapes[ch]
			if !ok {
				return nil, errBadEscape(ch)
			}
			if highSurrogate != 0 {
				return nil, errSurrogate("Expected low surrogate char")
			}
			out = append(out, unescaped)
			continue
		}

		unit, err := p.readHex4()
		if err != nil {
			return nil, err
		}
		switch {
		case utf16.IsSurrogate(unit) && unit < 0xdc00:
			if highSurrogate != 0 {
				return nil, errSurrogate("Expected low surrogate char")
			}
			highSurrogate = unit
		case utf16.IsSurrogate(unit):
			if highSurrogate == 0 {
				return nil, errSurrogate("Expected high surrogate char")
			}
			out = utf8.AppendRune(out, utf16.DecodeRune(highSurrogate, unit))
			highSurrogate = 0
		default:
			if highSurrogate != 0 {
				return nil, errSurrogate("Expected low surrogate char")
			}
			out = utf8.AppendRune(out, unit)
		}
	}
	if highSurrogate != 0 {
		return nil, errSurrogate("Expected low surrogate char")
	}
	if err := thrift.CheckSize(int32(len(out)), p.stringLimit, "string"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func (p *Protocol) readHex4() (rune, error) {
	var unit rune
	for ii := 0; ii < 4; ii++ {
		ch, err := p.readByte()
		if err != nil {
			return 0, err
		}
		var digit byte
		switch {
		case ch >= '0' && ch <= '9':
			digit = ch - '0'
		case ch >= 'a' && ch <= 'f':
			digit = ch - 'a' + 10
		case ch >= 'A' && ch <= 'F':
			digit = ch - 'A' + 10
		default:
			return 0, errUnexpectedChar('0', ch)
		}
		unit = unit<<4 | rune(digit)
	}
	return unit, nil
}

func isJSONNumeric(ch byte) bool {
	switch ch {
	case '+', '-', '.', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'E', 'e':
		return true
	}
	return false
}

func (p *Protocol) readJSONNumericChars() (string, error) {
	var out []byte
	for {
		ch, err := p.peekByte()
		if err != nil {
			if errors.Is(err, transport.ErrEndOfStream) && len(out) > 0 {
				break
			}
			return "", err
		}
		if !isJSONNumeric(ch) {
			break
		}
		p.peeked = false
		out = append(out, ch)
	}
	return string(out), nil
}

func (p *Protocol) readJSONInteger() (int64, error) {
	if err := p.readSeparator(); err != nil {
		return 0, err
	}
	quoted := p.ctx.escapeNum()
	if quoted {
		if err := p.readSyntax('"'); err != nil {
			return 0, err
		}
	}
	text, err := p.readJSONNumericChars()
	if err != nil {
		return 0, err
	}
	if quoted {
		if err := p.readSyntax('"'); err != nil {
			return 0, err
		}
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, errBadNumber(text)
	}
	return n, nil
}

func parseDouble(text string) (float64, bool, error) {
	switch text {
	case "NaN":
		return math.NaN(), true, nil
	case "Infinity":
		return math.Inf(1), true, nil
	case "-Infinity":
		return math.Inf(-1), true, nil
	}
	d, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, false, errBadNumber(text)
	}
	return d, false, nil
}

func (p *Protocol) readJSONDouble() (float64, error) {
	if err := p.readSeparator(); err != nil {
		return 0, err
	}
	ch, err := p.peekByte()
	if err != nil {
		return 0, err
	}
	if ch == '"' {
		text, err := p.readJSONString(true)
		if err != nil {
			return 0, err
		}
		d, special, err := parseDouble(string(text))
		if err != nil {
			return 0, err
		}
		if !special && !p.ctx.escapeNum() {
			return 0, errQuotedNumber()
		}
		return d, nil
	}
	if p.ctx.escapeNum() {
		return 0, errUnexpectedChar('"', ch)
	}
	text, err := p.readJSONNumericChars()
	if err != nil {
		return 0, err
	}
	d, _, err := parseDouble(text)
	return d, err
}

func (p *Protocol) readJSONBase64() ([]byte, error) {
	text, err := p.readJSONString(false)
	if err != nil {
		return nil, err
	}
	for len(text) > 0 && text[len(text)-1] == '=' {
		text = text[:len(text)-1]
	}
	out := make([]byte, base64.RawStdEncoding.DecodedLen(len(text)))
	n, err := base64.RawStdEncoding.Decode(out, text)
	if err != nil {
		return nil, errBadBase64(err)
	}
	return out[:n], nil
}

func (p *Protocol) readObjectStart() error {
	if err := p.readSeparator(); err != nil {
		return err
	}
	if err := p.readSyntax('{'); err != nil {
		return err
	}
	p.pushContext(pairContext)
	return nil
}

func (p *Protocol) readObjectEnd() error {
	if err := p.readSyntax('}'); err != nil {
		return err
	}
	p.popContext()
	return nil
}

func (p *Protocol) readArrayStart() error {
	if err := p.readSeparator(); err != nil {
		return err
	}
	if err := p.readSyntax('['); err != nil {
		return err
	}
	p.pushContext(listContext)
	return nil
}

func (p *Protocol) readArrayEnd() error {
	if err := p.readSyntax(']'); err != nil {
		return err
	}
	p.popContext()
	return nil
}

func (p *Protocol) readTypeName() (thrift.TType, error) {
	name, err := p.readJSONString(false)
	if err != nil {
		return 0, err
	}
	t, ok := typesByName[string(name)]
	if !ok {
		return 0, errUnrecognizedType(string(name))
	}
	return t, nil
}

func (p *Protocol) readSize() (int32, error) {
	n, err := p.readJSONInteger()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, errBadNumber(strconv.FormatInt(n, 10))
	}
	if err := thrift.CheckSize(int32(n), p.containerLimit, "container"); err != nil {
		return 0, err
	}
	return int32(n), nil
}

func (p *Protocol) ReadMessageBegin() (thrift.MessageHeader, error) {
	p.Reset()
	if err := p.readArrayStart(); err != nil {
		return thrift.MessageHeader{}, err
	}
	version, err := p.readJSONInteger()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	if version != protocolVersion {
		return thrift.MessageHeader{}, errBadVersion(version)
	}
	name, err := p.readJSONString(false)
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	typeID, err := p.readJSONInteger()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	seqID, err := p.readJSONInteger()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	return thrift.MessageHeader{
		Name:  string(name),
		Type:  thrift.MessageType(typeID),
		SeqID: int32(seqID),
	}, nil
}

func (p *Protocol) ReadMessageEnd() error {
	return p.readArrayEnd()
}

func (p *Protocol) ReadStructBegin() (thrift.StructHeader, error) {
	return thrift.StructHeader{}, p.readObjectStart()
}

func (p *Protocol) ReadStructEnd() error {
	return p.readObjectEnd()
}

func (p *Protocol) ReadFieldBegin() (thrift.FieldHeader, error) {
	ch, err := p.peekByte()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	if ch == '}' {
		return thrift.FieldHeader{Type: thrift.STOP}, nil
	}
	id, err := p.readJSONInteger()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	if err := p.readObjectStart(); err != nil {
		return thrift.FieldHeader{}, err
	}
	t, err := p.readTypeName()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	return thrift.FieldHeader{Type: t, ID: int16(id)}, nil
}

func (p *Protocol) ReadFieldEnd() error {
	return p.readObjectEnd()
}

func (p *Protocol) ReadMapBegin() (thrift.MapHeader, error) {
	if err := p.readArrayStart(); err != nil {
		return thrift.MapHeader{}, err
	}
	keyType, err := p.readTypeName()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	valueType, err := p.readTypeName()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	size, err := p.readSize()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	if err := p.readObjectStart(); err != nil {
		return thrift.MapHeader{}, err
	}
	return thrift.MapHeader{
		KeyType:   keyType,
		ValueType: valueType,
		Size:      size,
	}, nil
}

func (p *Protocol) ReadMapEnd() error {
	if err := p.readObjectEnd(); err != nil {
		return err
	}
	return p.readArrayEnd()
}

func (p *Protocol) readCollectionBegin() (thrift.TType, int32, error) {
	if err := p.readArrayStart(); err != nil {
		return 0, 0, err
	}
	elemType, err := p.readTypeName()
	if err != nil {
		return 0, 0, err
	}
	size, err := p.readSize()
	if err != nil {
		return 0, 0, err
	}
	return elemType, size, nil
}

func (p *Protocol) ReadListBegin() (thrift.ListHeader, error) {
	elemType, size, err := p.readCollectionBegin()
	if err != nil {
		return thrift.ListHeader{}, err
	}
	return thrift.ListHeader{ElemType: elemType, Size: size}, nil
}

func (p *Protocol) ReadListEnd() error {
	return p.readArrayEnd()
}

func (p *Protocol) ReadSetBegin() (thrift.SetHeader, error) {
	elemType, size, err := p.readCollectionBegin()
	if err != nil {
		return thrift.SetHeader{}, err
	}
	return thrift.SetHeader{ElemType: elemType, Size: size}, nil
}

func (p *Protocol) ReadSetEnd() error {
	return p.readArrayEnd()
}

func (p *Protocol) ReadBool() (bool, error) {
	n, err := p.readJSONInteger()
	return n != 0, err
}

func (p *Protocol) ReadI8() (int8, error) {
	n, err := p.readJSONInteger()
	return int8(n), err
}

func (p *Protocol) ReadI16() (int16, error) {
	n, err := p.readJSONInteger()
	return int16(n), err
}

func (p *Protocol) ReadI32() (int32, error) {
	n, err := p.readJSONInteger()
	return int32(n), err
}

func (p *Protocol) ReadI64() (int64, error) {
	return p.readJSONInteger()
}

func (p *Protocol) ReadDouble() (float64, error) {
	return p.readJSONDouble()
}

func (p *Protocol) ReadString() (string, error) {
	s, err := p.readJSONString(false)
	return string(s), err
}

func (p *Protocol) ReadBinary() ([]byte, error) {
	return p.readJSONBase64()
}
