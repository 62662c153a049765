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
	"math"
	"strconv"

	"go.thrift-idl.org/thrift"
)

const hexDigits = "0123456789abcdef"

// escapes maps ASCII control characters and '"' to their short escape. A
// zero entry below 0x20 is written as \u00XX.
var escapes = [0x30]byte{
	'\b': 'b',
	'\t': 't',
	'\n': 'n',
	'\f': 'f',
	'\r': 'r',
	'"':  '"',
}

func (p *Protocol) writeRaw(b []byte) error {
	_, err := p.t.Write(b)
	return err
}

func (p *Protocol) writeSyntax(c byte) error {
	p.buf[0] = c
	return p.writeRaw(p.buf[:])
}

func (p *Protocol) writeSeparator() error {
	if sep := p.ctx.separator(); sep != 0 {
		return p.writeSyntax(sep)
	}
	return nil
}

func appendJSONString(out []byte, s []byte) []byte {
	out = append(out, '"')
	for _, b := range s {
		switch {
		case b >= 0x30:
			if b == '\\' {
				out = append(out, '\\', '\\')
			} else {
				out = append(out, b)
			}
		case escapes[b] != 0:
			out = append(out, '\\', escapes[b])
		case b < 0x20:
			out = append(out, '\\', 'u', '0', '0', hexDigits[b>>4], hexDigits[b&0xf])
		default:
			out = append(out, b)
		}
	}
	return append(out, '"')
}

func (p *Protocol) writeJSONString(s []byte) error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	return p.writeRaw(appendJSONString(make([]byte, 0, len(s)+2), s))
}

func (p *Protocol) writeJSONInteger(n int64) error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	quote := p.ctx.escapeNum()
	out := make([]byte, 0, 24)
	if quote {
		out = append(out, '"')
	}
	out = strconv.AppendInt(out, n, 10)
	if quote {
		out = append(out, '"')
	}
	return p.writeRaw(out)
}

func formatDouble(d float64) (string, bool) {
	switch {
	case math.IsNaN(d):
		return "NaN", true
	case math.IsInf(d, 1):
		return "Infinity", true
	case math.IsInf(d, -1):
		return "-Infinity", true
	}
	return strconv.FormatFloat(d, 'g', -1, 64), false
}

func (p *Protocol) writeJSONDouble(d float64) error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	quote := p.ctx.escapeNum()
	s, special := formatDouble(d)
	if special || quote {
		s = `"` + s + `"`
	}
	return p.writeRaw([]byte(s))
}

func (p *Protocol) writeJSONBase64(b []byte) error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	out := make([]byte, base64.StdEncoding.EncodedLen(len(b))+2)
	out[0] = '"'
	base64.StdEncoding.Encode(out[1:], b)
	out[len(out)-1] = '"'
	return p.writeRaw(out)
}

func (p *Protocol) writeObjectStart() error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	if err := p.writeSyntax('{'); err != nil {
		return err
	}
	p.pushContext(pairContext)
	return nil
}

func (p *Protocol) writeObjectEnd() error {
	p.popContext()
	return p.writeSyntax('}')
}

func (p *Protocol) writeArrayStart() error {
	if err := p.writeSeparator(); err != nil {
		return err
	}
	if err := p.writeSyntax('['); err != nil {
		return err
	}
	p.pushContext(listContext)
	return nil
}

func (p *Protocol) writeArrayEnd() error {
	p.popContext()
	return p.writeSyntax(']')
}

func typeName(t thrift.TType) (string, error) {
	name, ok := typeNames[t]
	if !ok {
		return "", errUnrecognizedType(t.String())
	}
	return name, nil
}

func (p *Protocol) writeTypeName(t thrift.TType) error {
	name, err := typeName(t)
	if err != nil {
		return err
	}
	return p.writeJSONString([]byte(name))
}

func (p *Protocol) WriteMessageBegin(name string, typeID thrift.MessageType, seqID int32) error {
	p.Reset()
	if err := p.writeArrayStart(); err != nil {
		return err
	}
	if err := p.writeJSONInteger(protocolVersion); err != nil {
		return err
	}
	if err := p.writeJSONString([]byte(name)); err != nil {
		return err
	}
	if err := p.writeJSONInteger(int64(typeID)); err != nil {
		return err
	}
	return p.writeJSONInteger(int64(seqID))
}

func (p *Protocol) WriteMessageEnd() error {
	return p.writeArrayEnd()
}

func (p *Protocol) WriteStructBegin(name string) error {
	return p.writeObjectStart()
}

func (p *Protocol) WriteStructEnd() error {
	return p.writeObjectEnd()
}

func (p *Protocol) WriteFieldBegin(name string, typeID thrift.TType, id int16) error {
	if err := p.writeJSONInteger(int64(id)); err != nil {
		return err
	}
	if err := p.writeObjectStart(); err != nil {
		return err
	}
	return p.writeTypeName(typeID)
}

func (p *Protocol) WriteFieldEnd() error {
	return p.writeObjectEnd()
}

func (p *Protocol) WriteFieldStop() error { return nil }

func (p *Protocol) WriteMapBegin(keyType, valueType thrift.TType, size int32) error {
	if err := p.writeArrayStart(); err != nil {
		return err
	}
	if err := p.writeTypeName(keyType); err != nil {
		return err
	}
	if err := p.writeTypeName(valueType); err != nil {
		return err
	}
	if err := p.writeJSONInteger(int64(size)); err != nil {
		return err
	}
	return p.writeObjectStart()
}

func (p *Protocol) WriteMapEnd() error {
	if err := p.writeObjectEnd(); err != nil {
		return err
	}
	return p.writeArrayEnd()
}

func (p *Protocol) writeCollectionBegin(elemType thrift.TType, size int32) error {
	if err := p.writeArrayStart(); err != nil {
		return err
	}
	if err := p.writeTypeName(elemType); err != nil {
		return err
	}
	return p.writeJSONInteger(int64(size))
}

func (p *Protocol) WriteListBegin(elemType thrift.TType, size int32) error {
	return p.writeCollectionBegin(elemType, size)
}

func (p *Protocol) WriteListEnd() error {
	return p.writeArrayEnd()
}

func (p *Protocol) WriteSetBegin(elemType thrift.TType, size int32) error {
	return p.writeCollectionBegin(elemType, size)
}

func (p *Protocol) WriteSetEnd() error {
	return p.writeArrayEnd()
}

func (p *Protocol) WriteBool(value bool) error {
	if value {
		return p.writeJSONInteger(1)
	}
	return p.writeJSONInteger(0)
}

func (p *Protocol) WriteI8(value int8) error {
	return p.writeJSONInteger(int64(value))
}

func (p *Protocol) WriteI16(value int16) error {
	return p.writeJSONInteger(int64(value))
}

func (p *Protocol) WriteI32(value int32) error {
	return p.writeJSONInteger(int64(value))
}

func (p *Protocol) WriteI64(value int64) error {
	return p.writeJSONInteger(value)
}

func (p *Protocol) WriteDouble(value float64) error {
	return p.writeJSONDouble(value)
}

func (p *Protocol) WriteString(value string) error {
	return p.writeJSONString([]byte(value))
}

func (p *Protocol) WriteBinary(value []byte) error {
	return p.writeJSONBase64(value)
}
