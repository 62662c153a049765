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

import (
	"fmt"
)

type ProtocolErrorKind uint8

const (
	UnknownProtocolError ProtocolErrorKind = iota
	InvalidData
	NegativeSize
	SizeLimit
	BadVersion
	NotImplemented
	DepthLimit
	UnexpectedChar
)

func (k ProtocolErrorKind) String() string {
	switch k {
	case UnknownProtocolError:
		return "unknown"
	case InvalidData:
		return "invalid data"
	case NegativeSize:
		return "negative size"
	case SizeLimit:
		return "size limit"
	case BadVersion:
		return "bad version"
	case NotImplemented:
		return "not implemented"
	case DepthLimit:
		return "depth limit"
	case UnexpectedChar:
		return "unexpected character"
	default:
		return fmt.Sprintf("ProtocolErrorKind(%d)", uint8(k))
	}
}

// ProtocolError reports malformed input or a violated protocol contract.
// Errors of the same kind match under errors.Is, so callers can test
// against the Err* values below.
type ProtocolError struct {
	Kind    ProtocolErrorKind
	Message string
}

var _ error = (*ProtocolError)(nil)

var (
	ErrInvalidData    = &ProtocolError{Kind: InvalidData}
	ErrNegativeSize   = &ProtocolError{Kind: NegativeSize}
	ErrSizeLimit      = &ProtocolError{Kind: SizeLimit}
	ErrBadVersion     = &ProtocolError{Kind: BadVersion}
	ErrNotImplemented = &ProtocolError{Kind: NotImplemented}
	ErrDepthLimit     = &ProtocolError{Kind: DepthLimit}
	ErrUnexpectedChar = &ProtocolError{Kind: UnexpectedChar}
)

func (err *ProtocolError) Error() string {
	if err.Message == "" {
		return "thrift: " + err.Kind.String()
	}
	return "thrift: " + err.Message
}

func (err *ProtocolError) Is(target error) bool {
	other, ok := target.(*ProtocolError)
	if !ok {
		return false
	}
	return other.Kind == err.Kind
}

// NewProtocolError is used by protocol implementations outside this
// package.
func NewProtocolError(kind ProtocolErrorKind, format string, args ...any) error {
	return &ProtocolError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	}
}

func errNegativeSize(what string, size int32) error {
	return NewProtocolError(NegativeSize, "Negative %s size (%d)", what, size)
}

func errSizeLimit(what string, size, limit int32) error {
	return NewProtocolError(
		SizeLimit,
		"%s size (%d) exceeds limit (%d)",
		what, size, limit,
	)
}

func errDepthLimit(depth int) error {
	return NewProtocolError(DepthLimit, "Maximum skip depth (%d) exceeded", depth)
}

func errSkipType(t TType) error {
	return NewProtocolError(InvalidData, "Cannot skip value of type %v", t)
}
