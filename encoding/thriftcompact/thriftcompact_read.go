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

package thriftcompact

import (
	"encoding/binary"
	"math"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

func ttype(ct byte) (thrift.TType, error) {
	switch ct {
	case ctStop:
		return thrift.STOP, nil
	case ctTrue, ctFalse:
		return thrift.BOOL, nil
	case ctByte:
		return thrift.BYTE, nil
	case ctI16:
		return thrift.I16, nil
	case ctI32:
		return thrift.I32, nil
	case ctI64:
		return thrift.I64, nil
	case ctDouble:
		return thrift.DOUBLE, nil
	case ctBinary:
		return thrift.STRING, nil
	case ctList:
		return thrift.LIST, nil
	case ctSet:
		return thrift.SET, nil
	case ctMap:
		return thrift.MAP, nil
	case ctStruct:
		return thrift.STRUCT, nil
	default:
		return 0, errUnknownCompactType(ct)
	}
}

func (p *Protocol) readByte() (byte, error) {
	if err := transport.ReadFull(p.t, p.buf[:1]); err != nil {
		return 0, err
	}
	return p.buf[0], nil
}

func (p *Protocol) readVarint() (uint64, error) {
	var value uint64
	var shift uint
	for ii := 0; ii < maxVarintBytes; ii++ {
		b, err := p.readByte()
		if err != nil {
			return 0, err
		}
		value |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			return value, nil
		}
		shift += 7
	}
	return 0, errVarintTooLong()
}

func (p *Protocol) readVarint32() (uint32, error) {
	v, err := p.readVarint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxUint32 {
		return 0, errVarintRange(v, "i32")
	}
	return uint32(v), nil
}

func (p *Protocol) ReadMessageBegin() (thrift.MessageHeader, error) {
	id, err := p.readByte()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	if id != protocolID {
		return thrift.MessageHeader{}, errProtocolID(id)
	}
	versionAndType, err := p.readByte()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	if v := versionAndType & versionMask; v != version {
		return thrift.MessageHeader{}, errVersion(v)
	}
	typeID := (versionAndType >> typeShift) & 0x07
	seqID, err := p.readVarint32()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	name, err := p.ReadString()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	return thrift.MessageHeader{
		Name:  name,
		Type:  thrift.MessageType(typeID),
		SeqID: int32(seqID),
	}, nil
}

func (p *Protocol) ReadMessageEnd() error { return nil }

func (p *Protocol) ReadStructBegin() (thrift.StructHeader, error) {
	p.fieldStack = append(p.fieldStack, p.lastFieldID)
	p.lastFieldID = 0
	return thrift.StructHeader{}, nil
}

func (p *Protocol) ReadStructEnd() error {
	p.popFieldID()
	return nil
}

func (p *Protocol) ReadFieldBegin() (thrift.FieldHeader, error) {
	b, err := p.readByte()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	ct := b & 0x0f
	if ct == ctStop {
		return thrift.FieldHeader{Type: thrift.STOP}, nil
	}
	t, err := ttype(ct)
	if err != nil {
		return thrift.FieldHeader{}, err
	}

	var id int16
	if delta := int16(b >> 4); delta != 0 {
		id = p.lastFieldID + delta
	} else {
		if id, err = p.ReadI16(); err != nil {
			return thrift.FieldHeader{}, err
		}
	}
	if t == thrift.BOOL {
		p.boolValue = ct
	}
	p.lastFieldID = id
	return thrift.FieldHeader{Type: t, ID: id}, nil
}

func (p *Protocol) ReadFieldEnd() error { return nil }

func (p *Protocol) ReadMapBegin() (thrift.MapHeader, error) {
	size, err := p.readVarint32()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	if err := thrift.CheckSize(int32(size), p.containerLimit, "container"); err != nil {
		return thrift.MapHeader{}, err
	}
	if size == 0 {
		return thrift.MapHeader{}, nil
	}
	kv, err := p.readByte()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	keyType, err := ttype(kv >> 4)
	if err != nil {
		return thrift.MapHeader{}, err
	}
	valueType, err := ttype(kv & 0x0f)
	if err != nil {
		return thrift.MapHeader{}, err
	}
	return thrift.MapHeader{
		KeyType:   keyType,
		ValueType: valueType,
		Size:      int32(size),
	}, nil
}

func (p *Protocol) ReadMapEnd() error { return nil }

func (p *Protocol) readCollectionBegin() (thrift.TType, int32, error) {
	b, err := p.readByte()
	if err != nil {
		return 0, 0, err
	}
	size := int32(b>>4) & 0x0f
	if size == 15 {
		v, err := p.readVarint32()
		if err != nil {
			return 0, 0, err
		}
		size = int32(v)
	}
	if err := thrift.CheckSize(size, p.containerLimit, "container"); err != nil {
		return 0, 0, err
	}
	elemType, err := ttype(b & 0x0f)
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

func (p *Protocol) ReadListEnd() error { return nil }

func (p *Protocol) ReadSetBegin() (thrift.SetHeader, error) {
	elemType, size, err := p.readCollectionBegin()
	if err != nil {
		return thrift.SetHeader{}, err
	}
	return thrift.SetHeader{ElemType: elemType, Size: size}, nil
}

func (p *Protocol) ReadSetEnd() error { return nil }

func (p *Protocol) ReadBool() (bool, error) {
	if p.boolValue != ctStop {
		value := p.boolValue == ctTrue
		p.boolValue = ctStop
		return value, nil
	}
	b, err := p.readByte()
	if err != nil {
		return false, err
	}
	return b == ctTrue, nil
}

func (p *Protocol) ReadI8() (int8, error) {
	b, err := p.readByte()
	return int8(b), err
}

func (p *Protocol) ReadI16() (int16, error) {
	v, err := p.readVarint32()
	if err != nil {
		return 0, err
	}
	n := ZigzagDecode32(v)
	if n < math.MinInt16 || n > math.MaxInt16 {
		return 0, errVarintRange(uint64(v), "i16")
	}
	return int16(n), nil
}

func (p *Protocol) ReadI32() (int32, error) {
	v, err := p.readVarint32()
	if err != nil {
		return 0, err
	}
	return ZigzagDecode32(v), nil
}

func (p *Protocol) ReadI64() (int64, error) {
	v, err := p.readVarint()
	if err != nil {
		return 0, err
	}
	return ZigzagDecode64(v), nil
}

func (p *Protocol) ReadDouble() (float64, error) {
	if err := transport.ReadFull(p.t, p.buf[:8]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p.buf[:8])), nil
}

func (p *Protocol) ReadString() (string, error) {
	body, err := p.readBody("string")
	return string(body), err
}

func (p *Protocol) ReadBinary() ([]byte, error) {
	return p.readBody("binary")
}

func (p *Protocol) readBody(what string) ([]byte, error) {
	size, err := p.readVarint32()
	if err != nil {
		return nil, err
	}
	if err := thrift.CheckSize(int32(size), p.stringLimit, what); err != nil {
		return nil, err
	}
	if size == 0 {
		return []byte{}, nil
	}
	body := make([]byte, size)
	if err := transport.ReadFull(p.t, body); err != nil {
		return nil, err
	}
	return body, nil
}
