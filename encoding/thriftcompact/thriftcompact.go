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

// Package thriftcompact implements the Thrift compact protocol: zigzag
// varint integers, delta-encoded field headers and booleans folded into
// field headers.
package thriftcompact

import (
	"encoding/binary"
	"math"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

const (
	protocolID  byte = 0x82
	version     byte = 1
	versionMask byte = 0x1f
	typeMask    byte = 0xe0
	typeShift        = 5
)

// Compact type codes, as carried in field header and container nibbles.
const (
	ctStop   byte = 0x00
	ctTrue   byte = 0x01
	ctFalse  byte = 0x02
	ctByte   byte = 0x03
	ctI16    byte = 0x04
	ctI32    byte = 0x05
	ctI64    byte = 0x06
	ctDouble byte = 0x07
	ctBinary byte = 0x08
	ctList   byte = 0x09
	ctSet    byte = 0x0a
	ctMap    byte = 0x0b
	ctStruct byte = 0x0c
)

const noBoolField = -1

type Option interface {
	apply(*Protocol)
}

type option func(*Protocol)

func (f option) apply(p *Protocol) { f(p) }

func WithStringLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.stringLimit = limit
	})
}

func WithContainerLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.containerLimit = limit
	})
}

type Protocol struct {
	t transport.Transport

	stringLimit    int32
	containerLimit int32

	lastFieldID int16
	fieldStack  []int16

	// Write side: ID of a BOOL field whose header waits for the value.
	boolFieldID int32

	// Read side: compact type of a BOOL field header that carried the
	// value, or ctStop.
	boolValue byte

	buf [binary.MaxVarintLen64]byte
}

var _ thrift.Protocol = (*Protocol)(nil)

func New(t transport.Transport, opts ...Option) *Protocol {
	p := &Protocol{
		t:              t,
		stringLimit:    thrift.Unlimited,
		containerLimit: thrift.Unlimited,
		boolFieldID:    noBoolField,
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

func (p *Protocol) Transport() transport.Transport {
	return p.t
}

func (p *Protocol) Flush() error {
	return p.t.Flush()
}

func (p *Protocol) Reset() {
	p.lastFieldID = 0
	p.fieldStack = p.fieldStack[:0]
	p.boolFieldID = noBoolField
	p.boolValue = ctStop
}

func (p *Protocol) Close() error {
	return p.t.Close()
}

func compactType(t thrift.TType) (byte, error) {
	switch t {
	case thrift.STOP:
		return ctStop, nil
	case thrift.BOOL:
		return ctTrue, nil
	case thrift.BYTE:
		return ctByte, nil
	case thrift.I16:
		return ctI16, nil
	case thrift.I32:
		return ctI32, nil
	case thrift.I64:
		return ctI64, nil
	case thrift.DOUBLE:
		return ctDouble, nil
	case thrift.STRING:
		return ctBinary, nil
	case thrift.LIST:
		return ctList, nil
	case thrift.SET:
		return ctSet, nil
	case thrift.MAP:
		return ctMap, nil
	case thrift.STRUCT:
		return ctStruct, nil
	default:
		return 0, errUnknownTType(t)
	}
}

// pendingBool fails if a BOOL field header was begun and its value has
// not been written yet.
func (p *Protocol) pendingBool() error {
	if p.boolFieldID != noBoolField {
		return errBoolFieldPending()
	}
	return nil
}

func (p *Protocol) writeByte(b byte) error {
	p.buf[0] = b
	_, err := p.t.Write(p.buf[:1])
	return err
}

func (p *Protocol) writeVarint(v uint64) error {
	_, err := p.t.Write(AppendVarint(p.buf[:0], v))
	return err
}

func (p *Protocol) WriteMessageBegin(name string, typeID thrift.MessageType, seqID int32) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	if err := p.writeByte(protocolID); err != nil {
		return err
	}
	versionAndType := (version & versionMask) | ((byte(typeID) << typeShift) & typeMask)
	if err := p.writeByte(versionAndType); err != nil {
		return err
	}
	if err := p.writeVarint(uint64(uint32(seqID))); err != nil {
		return err
	}
	return p.WriteString(name)
}

func (p *Protocol) WriteMessageEnd() error { return nil }

func (p *Protocol) WriteStructBegin(name string) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	p.fieldStack = append(p.fieldStack, p.lastFieldID)
	p.lastFieldID = 0
	return nil
}

func (p *Protocol) WriteStructEnd() error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	p.popFieldID()
	return nil
}

func (p *Protocol) popFieldID() {
	if n := len(p.fieldStack); n > 0 {
		p.lastFieldID = p.fieldStack[n-1]
		p.fieldStack = p.fieldStack[:n-1]
	} else {
		p.lastFieldID = 0
	}
}

func (p *Protocol) WriteFieldBegin(name string, typeID thrift.TType, id int16) error {
	if p.boolFieldID != noBoolField {
		return errNestedFieldBegin()
	}
	if typeID == thrift.BOOL {
		p.boolFieldID = int32(id)
		return nil
	}
	ct, err := compactType(typeID)
	if err != nil {
		return err
	}
	return p.writeFieldHeader(ct, id)
}

func (p *Protocol) writeFieldHeader(ct byte, id int16) error {
	delta := int32(id) - int32(p.lastFieldID)
	if id > p.lastFieldID && delta <= 15 {
		if err := p.writeByte(byte(delta<<4) | ct); err != nil {
			return err
		}
	} else {
		if err := p.writeByte(ct); err != nil {
			return err
		}
		if err := p.WriteI16(id); err != nil {
			return err
		}
	}
	p.lastFieldID = id
	return nil
}

func (p *Protocol) WriteFieldEnd() error {
	return p.pendingBool()
}

func (p *Protocol) WriteFieldStop() error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	return p.writeByte(ctStop)
}

func (p *Protocol) WriteMapBegin(keyType, valueType thrift.TType, size int32) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	if size == 0 {
		return p.writeByte(0)
	}
	kt, err := compactType(keyType)
	if err != nil {
		return err
	}
	vt, err := compactType(valueType)
	if err != nil {
		return err
	}
	if err := p.writeVarint(uint64(uint32(size))); err != nil {
		return err
	}
	return p.writeByte(kt<<4 | vt)
}

func (p *Protocol) WriteMapEnd() error { return nil }

func (p *Protocol) writeCollectionBegin(elemType thrift.TType, size int32) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	et, err := compactType(elemType)
	if err != nil {
		return err
	}
	if size >= 0 && size <= 14 {
		return p.writeByte(byte(size)<<4 | et)
	}
	if err := p.writeByte(0xf0 | et); err != nil {
		return err
	}
	return p.writeVarint(uint64(uint32(size)))
}

func (p *Protocol) WriteListBegin(elemType thrift.TType, size int32) error {
	return p.writeCollectionBegin(elemType, size)
}

func (p *Protocol) WriteListEnd() error { return nil }

func (p *Protocol) WriteSetBegin(elemType thrift.TType, size int32) error {
	return p.writeCollectionBegin(elemType, size)
}

func (p *Protocol) WriteSetEnd() error { return nil }

func (p *Protocol) WriteBool(value bool) error {
	ct := ctFalse
	if value {
		ct = ctTrue
	}
	if p.boolFieldID != noBoolField {
		id := int16(p.boolFieldID)
		p.boolFieldID = noBoolField
		return p.writeFieldHeader(ct, id)
	}
	return p.writeByte(ct)
}

func (p *Protocol) WriteI8(value int8) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	return p.writeByte(byte(value))
}

func (p *Protocol) WriteI16(value int16) error {
	return p.writeVarint(uint64(ZigzagEncode32(int32(value))))
}

func (p *Protocol) WriteI32(value int32) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	return p.writeVarint(uint64(ZigzagEncode32(value)))
}

func (p *Protocol) WriteI64(value int64) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	return p.writeVarint(ZigzagEncode64(value))
}

func (p *Protocol) WriteDouble(value float64) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(p.buf[:8], math.Float64bits(value))
	_, err := p.t.Write(p.buf[:8])
	return err
}

func (p *Protocol) WriteString(value string) error {
	return p.WriteBinary([]byte(value))
}

func (p *Protocol) WriteBinary(value []byte) error {
	if err := p.pendingBool(); err != nil {
		return err
	}
	if err := p.writeVarint(uint64(len(value))); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	_, err := p.t.Write(value)
	return err
}
