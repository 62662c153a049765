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

// Package transport implements the byte streams that protocols read from
// and write to.
package transport

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Transport is a byte source and sink. Writes may be buffered until Flush.
type Transport interface {
	io.ReadWriteCloser
	Flush() error
}

type ErrorKind uint8

const (
	UnknownError ErrorKind = iota
	NotOpen
	EndOfFile
	InvalidFrame
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownError:
		return "unknown"
	case NotOpen:
		return "not open"
	case EndOfFile:
		return "end of file"
	case InvalidFrame:
		return "invalid frame"
	default:
		return fmt.Sprintf("ErrorKind(%d)", uint8(k))
	}
}

// Error is a transport failure. Premature end of input has kind EndOfFile
// and matches ErrEndOfStream under errors.Is; every other I/O failure is
// wrapped with kind UnknownError.
type Error struct {
	Kind ErrorKind
	Err  error
}

var (
	ErrEndOfStream  = &Error{Kind: EndOfFile}
	ErrNotOpen      = &Error{Kind: NotOpen}
	ErrInvalidFrame = &Error{Kind: InvalidFrame}
)

func (err *Error) Error() string {
	if err.Err == nil {
		return "transport: " + err.Kind.String()
	}
	return "transport: " + err.Err.Error()
}

func (err *Error) Unwrap() error {
	return err.Err
}

func (err *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return other.Kind == err.Kind
}

// ReadFull fills buf from t. A stream that ends before buf is full reports
// ErrEndOfStream.
func ReadFull(t io.Reader, buf []byte) error {
	_, err := io.ReadFull(t, buf)
	if err == nil {
		return nil
	}
	return wrapReadError(err)
}

func wrapReadError(err error) error {
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return err
	}
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return &Error{Kind: EndOfFile, Err: err}
	}
	return &Error{
		Kind: UnknownError,
		Err:  errors.Wrap(err, "read failed"),
	}
}

func wrapWriteError(err error, op string) error {
	if err == nil {
		return nil
	}
	var transportErr *Error
	if errors.As(err, &transportErr) {
		return err
	}
	return &Error{
		Kind: UnknownError,
		Err:  errors.Wrap(err, op+" failed"),
	}
}
