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

// Package thrift holds the contracts shared by every wire protocol: type
// codes, message kinds, container and field headers, and the Protocol
// interface implemented under encoding/.
package thrift

import (
	"fmt"
)

const (
	// Unlimited disables a string or container size limit.
	Unlimited int32 = -1

	// DefaultSkipDepth bounds the nesting that Skip will descend into.
	DefaultSkipDepth = 64
)

// TType is the type code carried on the wire for fields and container
// elements.
type TType uint8

const (
	STOP   TType = 0
	VOID   TType = 1
	BOOL   TType = 2
	BYTE   TType = 3
	DOUBLE TType = 4
	I16    TType = 6
	I32    TType = 8
	I64    TType = 10
	STRING TType = 11
	STRUCT TType = 12
	MAP    TType = 13
	SET    TType = 14
	LIST   TType = 15
)

// I8 is the legacy name of BYTE.
const I8 = BYTE

func (t TType) String() string {
	switch t {
	case STOP:
		return "STOP"
	case VOID:
		return "VOID"
	case BOOL:
		return "BOOL"
	case BYTE:
		return "BYTE"
	case DOUBLE:
		return "DOUBLE"
	case I16:
		return "I16"
	case I32:
		return "I32"
	case I64:
		return "I64"
	case STRING:
		return "STRING"
	case STRUCT:
		return "STRUCT"
	case MAP:
		return "MAP"
	case SET:
		return "SET"
	case LIST:
		return "LIST"
	default:
		return fmt.Sprintf("TType(%d)", uint8(t))
	}
}

// MessageType is the kind of an RPC envelope.
type MessageType uint8

const (
	CALL      MessageType = 1
	REPLY     MessageType = 2
	EXCEPTION MessageType = 3
	ONEWAY    MessageType = 4
)

func (t MessageType) String() string {
	switch t {
	case CALL:
		return "call"
	case REPLY:
		return "reply"
	case EXCEPTION:
		return "exception"
	case ONEWAY:
		return "oneway"
	default:
		return fmt.Sprintf("MessageType(%d)", uint8(t))
	}
}

type MessageHeader struct {
	Name  string
	Type  MessageType
	SeqID int32
}

type StructHeader struct {
	Name string
}

// FieldHeader describes the next field of a struct. A Type of STOP marks
// the end of the struct; ID and Name are then meaningless.
type FieldHeader struct {
	Name string
	Type TType
	ID   int16
}

type MapHeader struct {
	KeyType   TType
	ValueType TType
	Size      int32
}

type ListHeader struct {
	ElemType TType
	Size     int32
}

type SetHeader struct {
	ElemType TType
	Size     int32
}

// CheckSize validates a decoded string or container length against a
// limit. A negative limit means the size is unbounded.
func CheckSize(size int32, limit int32, what string) error {
	if size < 0 {
		return errNegativeSize(what, size)
	}
	if limit >= 0 && size > limit {
		return errSizeLimit(what, size, limit)
	}
	return nil
}
