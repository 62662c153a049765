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
	"go.thrift-idl.org/thrift"
)

func errUnexpectedChar(want, got byte) error {
	return thrift.NewProtocolError(
		thrift.UnexpectedChar,
		"Unexpected character: %q (expected %q)",
		got, want,
	)
}

func errStringLimit(limit int32) error {
	return thrift.NewProtocolError(
		thrift.SizeLimit,
		"string size exceeds limit (%d)",
		limit,
	)
}

func errUnrecognizedType(name string) error {
	return thrift.NewProtocolError(
		thrift.NotImplemented,
		"Unrecognized type: %s",
		name,
	)
}

func errBadVersion(version int64) error {
	return thrift.NewProtocolError(
		thrift.BadVersion,
		"Message contained bad version: %d",
		version,
	)
}

func errBadNumber(text string) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Bad data encountered in numeric data: %q",
		text,
	)
}

func errQuotedNumber() error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Numeric data unexpectedly quoted",
	)
}

func errBadEscape(ch byte) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Expected control char, got %q",
		ch,
	)
}

func errSurrogate(message string) error {
	return thrift.NewProtocolError(thrift.InvalidData, "%s", message)
}

func errBadBase64(err error) error {
	return thrift.NewProtocolError(
		thrift.InvalidData,
		"Bad base64 data: %v",
		err,
	)
}
