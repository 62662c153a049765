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

package value

import (
	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/schema"
)

func errWrongType(typ schema.Type, v any) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Expected a value of type %s, got %T",
		typ.Name(), v,
	)
}

func errRequiredUnset(strct *schema.Struct, field *schema.Field) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Required field '%s' of %s is unset",
		field.Name, strct.Name,
	)
}

func errUnionFields(union *schema.Struct, count int) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Union %s has %d fields set; at most one is allowed",
		union.Name, count,
	)
}

func errUnknownField(strct *schema.Struct, id int16) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Struct %s has no field with ID %d",
		strct.Name, id,
	)
}

func errElemType(container string, want, got thrift.TType) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Expected %s element type %v, got %v",
		container, want, got,
	)
}

func errDepthLimit(depth int) error {
	return thrift.NewProtocolError(
		thrift.DepthLimit,
		"Maximum nesting depth (%d) exceeded",
		depth,
	)
}
