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
	"bufio"
	"io"
)

// StreamTransport adapts an io.Reader and io.Writer pair. Either side may
// be nil, in which case that direction reports ErrNotOpen.
type StreamTransport struct {
	r io.Reader
	w *bufio.Writer

	closers []io.Closer
}

var _ Transport = (*StreamTransport)(nil)

func NewStreamTransport(r io.Reader, w io.Writer) *StreamTransport {
	t := &StreamTransport{r: r}
	if w != nil {
		t.w = bufio.NewWriter(w)
	}
	if c, ok := r.(io.Closer); ok {
		t.closers = append(t.closers, c)
	}
	if c, ok := w.(io.Closer); ok && any(w) != any(r) {
		t.closers = append(t.closers, c)
	}
	return t
}

func NewStreamTransportR(r io.Reader) *StreamTransport {
	return NewStreamTransport(r, nil)
}

func NewStreamTransportW(w io.Writer) *StreamTransport {
	return NewStreamTransport(nil, w)
}

func (t *StreamTransport) Read(p []byte) (int, error) {
	if t.r == nil {
		return 0, ErrNotOpen
	}
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		return n, wrapReadError(err)
	}
	return n, err
}

func (t *StreamTransport) Write(p []byte) (int, error) {
	if t.w == nil {
		return 0, ErrNotOpen
	}
	n, err := t.w.Write(p)
	return n, wrapWriteError(err, "write")
}

func (t *StreamTransport) Flush() error {
	if t.w == nil {
		return nil
	}
	return wrapWriteError(t.w.Flush(), "flush")
}

// Close flushes pending output and closes whichever of the underlying
// reader and writer implement io.Closer.
func (t *StreamTransport) Close() error {
	err := t.Flush()
	for _, c := range t.closers {
		if closeErr := c.Close(); err == nil {
			err = wrapWriteError(closeErr, "close")
		}
	}
	t.closers = nil
	return err
}
