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
	"encoding/binary"
	"fmt"
)

// DefaultMaxFrameSize bounds the length prefix accepted by a
// FramedTransport unless overridden with WithMaxFrameSize.
const DefaultMaxFrameSize = 16384000

// FramedTransport prefixes each flushed write batch with its length as a
// 4-byte big-endian integer, and reads input one frame at a time.
type FramedTransport struct {
	inner        Transport
	maxFrameSize uint32

	wbuf  bytes.Buffer
	frame bytes.Reader
	hdr   [4]byte
}

var _ Transport = (*FramedTransport)(nil)

type FramedOption interface {
	applyFramed(*FramedTransport)
}

type framedOption func(*FramedTransport)

func (f framedOption) applyFramed(t *FramedTransport) { f(t) }

func WithMaxFrameSize(size uint32) FramedOption {
	return framedOption(func(t *FramedTransport) {
		t.maxFrameSize = size
	})
}

func NewFramedTransport(inner Transport, opts ...FramedOption) *FramedTransport {
	t := &FramedTransport{
		inner:        inner,
		maxFrameSize: DefaultMaxFrameSize,
	}
	for _, opt := range opts {
		opt.applyFramed(t)
	}
	return t
}

func (t *FramedTransport) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if t.frame.Len() == 0 {
		if err := t.readFrame(); err != nil {
			return 0, err
		}
	}
	return t.frame.Read(p)
}

func (t *FramedTransport) readFrame() error {
	if err := ReadFull(t.inner, t.hdr[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(t.hdr[:])
	if int32(size) < 0 {
		return &Error{
			Kind: InvalidFrame,
			Err:  fmt.Errorf("negative frame size (%d)", int32(size)),
		}
	}
	if size > t.maxFrameSize {
		return &Error{
			Kind: InvalidFrame,
			Err:  fmt.Errorf("frame size (%d) exceeds limit (%d)", size, t.maxFrameSize),
		}
	}
	payload := make([]byte, size)
	if err := ReadFull(t.inner, payload); err != nil {
		return err
	}
	t.frame.Reset(payload)
	return nil
}

func (t *FramedTransport) Write(p []byte) (int, error) {
	return t.wbuf.Write(p)
}

// Flush emits the pending bytes as a single frame. Flushing with nothing
// pending writes no frame.
func (t *FramedTransport) Flush() error {
	if t.wbuf.Len() == 0 {
		return t.inner.Flush()
	}
	if uint64(t.wbuf.Len()) > uint64(t.maxFrameSize) {
		size := t.wbuf.Len()
		t.wbuf.Reset()
		return &Error{
			Kind: InvalidFrame,
			Err:  fmt.Errorf("frame size (%d) exceeds limit (%d)", size, t.maxFrameSize),
		}
	}
	binary.BigEndian.PutUint32(t.hdr[:], uint32(t.wbuf.Len()))
	if _, err := t.inner.Write(t.hdr[:]); err != nil {
		return wrapWriteError(err, "write frame header")
	}
	if _, err := t.inner.Write(t.wbuf.Bytes()); err != nil {
		return wrapWriteError(err, "write frame")
	}
	t.wbuf.Reset()
	return t.inner.Flush()
}

func (t *FramedTransport) Close() error {
	return t.inner.Close()
}
