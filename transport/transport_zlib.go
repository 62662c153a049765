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
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibTransport compresses writes and decompresses reads. Each Flush ends a
// zlib sync block, so a peer can decode everything written so far.
type ZlibTransport struct {
	inner Transport

	w *zlib.Writer
	r io.ReadCloser
}

var _ Transport = (*ZlibTransport)(nil)

func NewZlibTransport(inner Transport, level int) (*ZlibTransport, error) {
	w, err := zlib.NewWriterLevel(inner, level)
	if err != nil {
		return nil, &Error{Kind: UnknownError, Err: err}
	}
	return &ZlibTransport{
		inner: inner,
		w:     w,
	}, nil
}

func (t *ZlibTransport) Read(p []byte) (int, error) {
	if t.r == nil {
		r, err := zlib.NewReader(t.inner)
		if err != nil {
			return 0, wrapReadError(err)
		}
		t.r = r
	}
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		return n, wrapReadError(err)
	}
	return n, err
}

func (t *ZlibTransport) Write(p []byte) (int, error) {
	n, err := t.w.Write(p)
	return n, wrapWriteError(err, "zlib write")
}

func (t *ZlibTransport) Flush() error {
	if err := t.w.Flush(); err != nil {
		return wrapWriteError(err, "zlib flush")
	}
	return t.inner.Flush()
}

// Close terminates the compressed stream and closes the inner transport.
func (t *ZlibTransport) Close() error {
	err := wrapWriteError(t.w.Close(), "zlib close")
	if err == nil {
		err = t.inner.Flush()
	}
	if t.r != nil {
		t.r.Close()
	}
	if closeErr := t.inner.Close(); err == nil {
		err = closeErr
	}
	return err
}
