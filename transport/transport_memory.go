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

package transport

import (
	"bytes"
	"io"
)

// MemoryBuffer is an in-memory Transport. Reads consume bytes previously
// written; reading past the end reports io.EOF.
type MemoryBuffer struct {
	buf bytes.Buffer
}

var _ Transport = (*MemoryBuffer)(nil)

func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// NewMemoryBufferBytes returns a buffer whose unread content is a copy of
// data.
func NewMemoryBufferBytes(data []byte) *MemoryBuffer {
	b := &MemoryBuffer{}
	b.buf.Write(data)
	return b
}

func (b *MemoryBuffer) Read(p []byte) (int, error) {
	if b.buf.Len() == 0 && len(p) > 0 {
		return 0, io.EOF
	}
	return b.buf.Read(p)
}

func (b *MemoryBuffer) Write(p []byte) (int, error) {
	return b.buf.Write(p)
}

func (b *MemoryBuffer) Flush() error {
	return nil
}

func (b *MemoryBuffer) Close() error {
	return nil
}

// Bytes returns the unread content. The slice aliases the buffer until the
// next Read, Write or Reset.
func (b *MemoryBuffer) Bytes() []byte {
	return b.buf.Bytes()
}

func (b *MemoryBuffer) Len() int {
	return b.buf.Len()
}

func (b *MemoryBuffer) Reset() {
	b.buf.Reset()
}
