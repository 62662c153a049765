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

package thrift

// ProtocolWriter is the encoding half of a Protocol.
type ProtocolWriter interface {
	WriteMessageBegin(name string, typeID MessageType, seqID int32) error
	WriteMessageEnd() error
	WriteStructBegin(name string) error
	WriteStructEnd() error
	WriteFieldBegin(name string, typeID TType, id int16) error
	WriteFieldEnd() error
	WriteFieldStop() error
	WriteMapBegin(keyType, valueType TType, size int32) error
	WriteMapEnd() error
	WriteListBegin(elemType TType, size int32) error
	WriteListEnd() error
	WriteSetBegin(elemType TType, size int32) error
	WriteSetEnd() error
	WriteBool(value bool) error
	WriteI8(value int8) error
	WriteI16(value int16) error
	WriteI32(value int32) error
	WriteI64(value int64) error
	WriteDouble(value float64) error
	WriteString(value string) error
	WriteBinary(value []byte) error
}

// ProtocolReader is the decoding half of a Protocol.
type ProtocolReader interface {
	ReadMessageBegin() (MessageHeader, error)
	ReadMessageEnd() error
	ReadStructBegin() (StructHeader, error)
	ReadStructEnd() error
	ReadFieldBegin() (FieldHeader, error)
	ReadFieldEnd() error
	ReadMapBegin() (MapHeader, error)
	ReadMapEnd() error
	ReadListBegin() (ListHeader, error)
	ReadListEnd() error
	ReadSetBegin() (SetHeader, error)
	ReadSetEnd() error
	ReadBool() (bool, error)
	ReadI8() (int8, error)
	ReadI16() (int16, error)
	ReadI32() (int32, error)
	ReadI64() (int64, error)
	ReadDouble() (float64, error)
	ReadString() (string, error)
	ReadBinary() ([]byte, error)
}

// Protocol is a stateful codec bound to one transport. Implementations are
// not safe for concurrent use; each read or write session needs its own
// instance.
type Protocol interface {
	ProtocolWriter
	ProtocolReader

	// Flush pushes buffered output to the underlying transport.
	Flush() error

	// Reset discards per-message state such as pending booleans, field ID
	// stacks and JSON contexts.
	Reset()

	Close() error
}

// Skip reads and discards one value of type t.
func Skip(p ProtocolReader, t TType) error {
	return skip(p, t, DefaultSkipDepth, DefaultSkipDepth)
}

// SkipDepth is Skip with an explicit nesting limit.
func SkipDepth(p ProtocolReader, t TType, maxDepth int) error {
	return skip(p, t, maxDepth, maxDepth)
}

func skip(p ProtocolReader, t TType, depth, maxDepth int) error {
	if depth <= 0 {
		return errDepthLimit(maxDepth)
	}
	switch t {
	case BOOL:
		_, err := p.ReadBool()
		return err
	case BYTE:
		_, err := p.ReadI8()
		return err
	case I16:
		_, err := p.ReadI16()
		return err
	case I32:
		_, err := p.ReadI32()
		return err
	case I64:
		_, err := p.ReadI64()
		return err
	case DOUBLE:
		_, err := p.ReadDouble()
		return err
	case STRING:
		_, err := p.ReadString()
		return err
	case STRUCT:
		if _, err := p.ReadStructBegin(); err != nil {
			return err
		}
		for {
			field, err := p.ReadFieldBegin()
			if err != nil {
				return err
			}
			if field.Type == STOP {
				break
			}
			if err := skip(p, field.Type, depth-1, maxDepth); err != nil {
				return err
			}
			if err := p.ReadFieldEnd(); err != nil {
				return err
			}
		}
		return p.ReadStructEnd()
	case MAP:
		header, err := p.ReadMapBegin()
		if err != nil {
			return err
		}
		for ii := int32(0); ii < header.Size; ii++ {
			if err := skip(p, header.KeyType, depth-1, maxDepth); err != nil {
				return err
			}
			if err := skip(p, header.ValueType, depth-1, maxDepth); err != nil {
				return err
			}
		}
		return p.ReadMapEnd()
	case SET:
		header, err := p.ReadSetBegin()
		if err != nil {
			return err
		}
		for ii := int32(0); ii < header.Size; ii++ {
			if err := skip(p, header.ElemType, depth-1, maxDepth); err != nil {
				return err
			}
		}
		return p.ReadSetEnd()
	case LIST:
		header, err := p.ReadListBegin()
		if err != nil {
			return err
		}
		for ii := int32(0); ii < header.Size; ii++ {
			if err := skip(p, header.ElemType, depth-1, maxDepth); err != nil {
				return err
			}
		}
		return p.ReadListEnd()
	default:
		return errSkipType(t)
	}
}
