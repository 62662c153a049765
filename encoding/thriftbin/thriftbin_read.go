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

package thriftbin

import (
	"encoding/binary"
	"math"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

func (p *Protocol) read(n int) ([]byte, error) {
	if err := transport.ReadFull(p.t, p.buf[:n]); err != nil {
		return nil, err
	}
	return p.buf[:n], nil
}

func (p *Protocol) ReadMessageBegin() (thrift.MessageHeader, error) {
	size, err := p.ReadI32()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	if size < 0 {
		version := uint32(size) & versionMask
		if version != version1 {
			return thrift.MessageHeader{}, errBadVersion(version)
		}
		name, err := p.ReadString()
		if err != nil {
			return thrift.MessageHeader{}, err
		}
		seqID, err := p.ReadI32()
		if err != nil {
			return thrift.MessageHeader{}, err
		}
		return thrift.MessageHeader{
			Name:  name,
			Type:  thrift.MessageType(uint32(size) & 0xff),
			SeqID: seqID,
		}, nil
	}
	if p.strictRead {
		return thrift.MessageHeader{}, errMissingVersion()
	}

	// Legacy header: the leading i32 was the name length.
	if err := thrift.CheckSize(size, p.stringLimit, "string"); err != nil {
		return thrift.MessageHeader{}, err
	}
	name, err := p.readStringBody(size)
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	typeID, err := p.ReadI8()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	seqID, err := p.ReadI32()
	if err != nil {
		return thrift.MessageHeader{}, err
	}
	return thrift.MessageHeader{
		Name:  name,
		Type:  thrift.MessageType(typeID),
		SeqID: seqID,
	}, nil
}

func (p *Protocol) ReadMessageEnd() error { return nil }

func (p *Protocol) ReadStructBegin() (thrift.StructHeader, error) {
	return thrift.StructHeader{}, nil
}

func (p *Protocol) ReadStructEnd() error { return nil }
func (p *Protocol) ReadFieldEnd() error { return nil }
func (p *Protocol) ReadMapEnd() error { return nil }
func (p *Protocol) ReadListEnd() error { return nil }
func (p *Protocol) ReadSetEnd() error { return nil }

func (p *Protocol) ReadFieldBegin() (thrift.FieldHeader, error) {
	typeID, err := p.ReadI8()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	if thrift.TType(typeID) == thrift.STOP {
		return thrift.FieldHeader{Type: thrift.STOP}, nil
	}
	id, err := p.ReadI16()
	if err != nil {
		return thrift.FieldHeader{}, err
	}
	return thrift.FieldHeader{Type: thrift.TType(typeID), ID: id}, nil
}

func (p *Protocol) ReadMapBegin() (thrift.MapHeader, error) {
	b, err := p.read(2)
	if err != nil {
		return thrift.MapHeader{}, err
	}
	keyType, valueType := thrift.TType(b[0]), thrift.TType(b[1])
	size, err := p.ReadI32()
	if err != nil {
		return thrift.MapHeader{}, err
	}
	if err := thrift.CheckSize(size, p.containerLimit, "container"); err != nil {
		return thrift.MapHeader{}, err
	}
	return thrift.MapHeader{
		KeyType:   keyType,
		ValueType: valueType,
		Size:      size,
	}, nil
}

func (p *Protocol) readElemHeader() (thrift.TType, int32, error) {
	elemType, err := p.ReadI8()
	if err != nil {
		return 0, 0, err
	}
	size, err := p.ReadI32()
	if err != nil {
		return 0, 0, err
	}
	if err := thrift.CheckSize(size, p.containerLimit, "container"); err != nil {
		return 0, 0, err
	}
	return thrift.TType(elemType), size, nil
}

func (p *Protocol) ReadListBegin() (thrift.ListHeader, error) {
	elemType, size, err := p.readElemHeader()
	if err != nil {
		return thrift.ListHeader{}, err
	}
	return thrift.ListHeader{ElemType: elemType, Size: size}, nil
}

func (p *Protocol) ReadSetBegin() (thrift.SetHeader, error) {
	elemType, size, err := p.readElemHeader()
	if err != nil {
		return thrift.SetHeader{}, err
	}
	return thrift.SetHeader{ElemType: elemType, Size: size}, nil
}

func (p *Protocol) ReadBool() (bool, error) {
	b, err := p.ReadI8()
	return b == 1, err
}

func (p *Protocol) ReadI8() (int8, error) {
	b, err := p.read(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

func (p *Protocol) ReadI16() (int16, error) {
	b, err := p.read(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (p *Protocol) ReadI32() (int32, error) {
	b, err := p.read(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (p *Protocol) ReadI64() (int64, error) {
	b, err := p.read(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (p *Protocol) ReadDouble() (float64, error) {
	bits, err := p.ReadI64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(uint64(bits)), nil
}

func (p *Protocol) ReadString() (string, error) {
	size, err := p.ReadI32()
	if err != nil {
		return "", err
	}
	if err := thrift.CheckSize(size, p.stringLimit, "string"); err != nil {
		return "", err
	}
	return p.readStringBody(size)
}

func (p *Protocol) readStringBody(size int32) (string, error) {
	body, err := p.readBody(size)
	return string(body), err
}

func (p *Protocol) ReadBinary() ([]byte, error) {
	size, err := p.ReadI32()
	if err != nil {
		return nil, err
	}
	if err := thrift.CheckSize(size, p.stringLimit, "binary"); err != nil {
		return nil, err
	}
	return p.readBody(size)
}

func (p *Protocol) readBody(size int32) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}
	body := make([]byte, size)
	if err := transport.ReadFull(p.t, body); err != nil {
		return nil, err
	}
	return body, nil
}
