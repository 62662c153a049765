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
	"go.thrift-idl.org/thrift"
)

func errVarintTooLong() error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Variable-length int over %d bytes",
		maxVarintBytes,
	)
}

func errVarintRange(v uint64, what string) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Variable-length int %d out of range for %s",
		v, what,
	)
}

func errTruncatedVarint() error {
	return thrift.NewProtocolError(thrift.InvalidData, "Truncated variable-length int")
}

func errProtocolID(got byte) error {
	return thrift.NewProtocolError(
		thrift.BadVersion,
		"Expected protocol id %#x but got %#x",
		protocolID, got,
	)
}

func errVersion(got byte) error {
	return thrift.NewProtocolError(
		thrift.BadVersion,
		"Expected version %d but got %d",
		version, got,
	)
}

func errNestedFieldBegin() error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Nested invocation of writeFieldBegin",
	)
}

func errBoolFieldPending() error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Bool field header is waiting for writeBool",
	)
}

func errUnknownCompactType(ct byte) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Unknown compact type: %d",
		ct,
	)
}

func errUnknownTType(t thrift.TType) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Type %v has no compact encoding",
		t,
	)
}
