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

// Package thriftsimplejson implements a write-only JSON rendering of Thrift
// values for humans and loosely-typed consumers.
//
// Structs become objects keyed by field name in the order fields are
// written. Type tags and field IDs are discarded, so the output cannot be
// read back. Map keys are written as their scalar value; a map with
// non-string keys therefore produces objects such as {1:"a"}, which is not
// strictly valid JSON.
package thriftsimplejson

import (
	"math"
	"strconv"

	"github.com/mailru/easyjson/jwriter"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

type Protocol struct {
	t transport.Transport
	w jwriter.Writer

	contexts []writeContext
}

var _ thrift.Protocol = (*Protocol)(nil)

// New returns a Protocol writing to t. Output is buffered until Flush.
func New(t transport.Transport) *Protocol {
	p := &Protocol{t: t}
	p.w.NoEscapeHTML = true
	return p
}

func (p *Protocol) Transport() transport.Transport {
	return p.t
}

func (p *Protocol) Flush() error {
	if p.w.Error != nil {
		return p.w.Error
	}
	if _, err := p.w.DumpTo(p.t); err != nil {
		return err
	}
	return p.t.Flush()
}

func (p *Protocol) Reset() {
	p.contexts = p.contexts[:0]
}

func (p *Protocol) Close() error {
	if err := p.Flush(); err != nil {
		return err
	}
	return p.t.Close()
}

type writeContext struct {
	object bool
	first  bool
	colon  bool
}

func (p *Protocol) beforeWrite() {
	n := len(p.contexts)
	if n == 0 {
		return
	}
	ctx := &p.contexts[n-1]
	if ctx.first {
		ctx.first = false
		return
	}
	if !ctx.object {
		p.w.RawByte(',')
		return
	}
	if ctx.colon {
		p.w.RawByte(':')
	} else {
		p.w.RawByte(',')
	}
	ctx.colon = !ctx.colon
}

func (p *Protocol) open(delim byte, object bool) {
	p.beforeWrite()
	p.w.RawByte(delim)
	p.contexts = append(p.contexts, writeContext{
		object: object,
		first:  true,
		colon:  true,
	})
}

func (p *Protocol) close(delim byte) {
	if n := len(p.contexts); n > 0 {
		p.contexts = p.contexts[:n-1]
	}
	p.w.RawByte(delim)
}

func messageTypeName(t thrift.MessageType) string {
	switch t {
	case thrift.CALL, thrift.REPLY, thrift.EXCEPTION, thrift.ONEWAY:
		return t.String()
	default:
		return "unknown"
	}
}

func (p *Protocol) WriteMessageBegin(name string, typeID thrift.MessageType, seqID int32) error {
	p.open('[', false)
	p.writeString(name)
	p.writeString(messageTypeName(typeID))
	p.beforeWrite()
	p.w.Int32(seqID)
	return nil
}

func (p *Protocol) WriteMessageEnd() error {
	p.close(']')
	return nil
}

func (p *Protocol) WriteStructBegin(name string) error {
	p.open('{', true)
	return nil
}

func (p *Protocol) WriteStructEnd() error {
	p.close('}')
	return nil
}

func (p *Protocol) WriteFieldBegin(name string, typeID thrift.TType, id int16) error {
	p.writeString(name)
	return nil
}

func (p *Protocol) WriteFieldEnd() error { return nil }
func (p *Protocol) WriteFieldStop() error { return nil }

func (p *Protocol) WriteMapBegin(keyType, valueType thrift.TType, size int32) error {
	p.open('{', true)
	return nil
}

func (p *Protocol) WriteMapEnd() error {
	p.close('}')
	return nil
}

func (p *Protocol) WriteListBegin(elemType thrift.TType, size int32) error {
	p.open('[', false)
	return nil
}

func (p *Protocol) WriteListEnd() error {
	p.close(']')
	return nil
}

func (p *Protocol) WriteSetBegin(elemType thrift.TType, size int32) error {
	p.open('[', false)
	return nil
}

func (p *Protocol) WriteSetEnd() error {
	p.close(']')
	return nil
}

func (p *Protocol) WriteBool(value bool) error {
	p.beforeWrite()
	p.w.Bool(value)
	return nil
}

func (p *Protocol) WriteI8(value int8) error {
	p.beforeWrite()
	p.w.Int8(value)
	return nil
}

func (p *Protocol) WriteI16(value int16) error {
	p.beforeWrite()
	p.w.Int16(value)
	return nil
}

func (p *Protocol) WriteI32(value int32) error {
	p.beforeWrite()
	p.w.Int32(value)
	return nil
}

func (p *Protocol) WriteI64(value int64) error {
	p.beforeWrite()
	p.w.Int64(value)
	return nil
}

// WriteDouble writes non-finite values as the bare words NaN, Infinity and
// -Infinity.
func (p *Protocol) WriteDouble(value float64) error {
	p.beforeWrite()
	switch {
	case math.IsNaN(value):
		p.w.RawString("NaN")
	case math.IsInf(value, 1):
		p.w.RawString("Infinity")
	case math.IsInf(value, -1):
		p.w.RawString("-Infinity")
	default:
		p.w.RawString(strconv.FormatFloat(value, 'g', -1, 64))
	}
	return nil
}

func (p *Protocol) writeString(value string) {
	p.beforeWrite()
	p.w.String(value)
}

func (p *Protocol) WriteString(value string) error {
	p.writeString(value)
	return nil
}

func (p *Protocol) WriteBinary(value []byte) error {
	p.beforeWrite()
	p.w.Base64Bytes(value)
	return nil
}
