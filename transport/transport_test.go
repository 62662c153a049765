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

package transport_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"go.thrift-idl.org/thrift/transport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMemoryBuffer(t *testing.T) {
	t.Parallel()
	buf := transport.NewMemoryBuffer()
	_, err := buf.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, buf.Len())

	out := make([]byte, 3)
	require.NoError(t, transport.ReadFull(buf, out))
	assert.Equal(t, "hel", string(out))

	err = transport.ReadFull(buf, out)
	assert.ErrorIs(t, err, transport.ErrEndOfStream)
}

func TestReadFull_EmptyStream(t *testing.T) {
	t.Parallel()
	err := transport.ReadFull(transport.NewMemoryBuffer(), make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrEndOfStream)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestReadFull_OtherFailure(t *testing.T) {
	t.Parallel()
	err := transport.ReadFull(failingReader{}, make([]byte, 4))
	require.Error(t, err)
	assert.NotErrorIs(t, err, transport.ErrEndOfStream)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestStreamTransport(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	st := transport.NewStreamTransport(bytes.NewReader([]byte{1, 2, 3}), &out)

	_, err := st.Write([]byte{9, 8})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Len(), "writes are buffered until Flush")
	require.NoError(t, st.Flush())
	assert.Equal(t, []byte{9, 8}, out.Bytes())

	in := make([]byte, 3)
	require.NoError(t, transport.ReadFull(st, in))
	assert.Equal(t, []byte{1, 2, 3}, in)
	require.NoError(t, st.Close())
}

func TestStreamTransport_NotOpen(t *testing.T) {
	t.Parallel()
	st := transport.NewStreamTransportW(io.Discard)
	_, err := st.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrNotOpen)
}

func TestFramedTransport_RoundTrip(t *testing.T) {
	t.Parallel()
	mem := transport.NewMemoryBuffer()
	framed := transport.NewFramedTransport(mem)

	_, err := framed.Write([]byte("abc"))
	require.NoError(t, err)
	require.NoError(t, framed.Flush())
	_, err = framed.Write([]byte("de"))
	require.NoError(t, err)
	require.NoError(t, framed.Flush())

	assert.Equal(t, []byte{
		0, 0, 0, 3, 'a', 'b', 'c',
		0, 0, 0, 2, 'd', 'e',
	}, mem.Bytes())

	got, err := io.ReadAll(io.LimitReader(framed, 5))
	require.NoError(t, err)
	assert.Equal(t, "abcde", string(got))
}

func TestFramedTransport_FrameTooLarge(t *testing.T) {
	t.Parallel()
	mem := transport.NewMemoryBufferBytes([]byte{0, 0, 1, 0})
	framed := transport.NewFramedTransport(mem, transport.WithMaxFrameSize(16))

	_, err := framed.Read(make([]byte, 1))
	assert.ErrorIs(t, err, transport.ErrInvalidFrame)
}

func TestFramedTransport_TruncatedFrame(t *testing.T) {
	t.Parallel()
	mem := transport.NewMemoryBufferBytes([]byte{0, 0, 0, 4, 'x'})
	framed := transport.NewFramedTransport(mem)

	err := transport.ReadFull(framed, make([]byte, 4))
	assert.ErrorIs(t, err, transport.ErrEndOfStream)
}

func TestZlibTransport_RoundTrip(t *testing.T) {
	t.Parallel()
	mem := transport.NewMemoryBuffer()
	zw, err := transport.NewZlibTransport(mem, zlib.BestCompression)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte("thrift "), 100)
	_, err = zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	assert.Less(t, mem.Len(), len(payload))

	zr, err := transport.NewZlibTransport(mem, zlib.DefaultCompression)
	require.NoError(t, err)
	got := make([]byte, len(payload))
	require.NoError(t, transport.ReadFull(zr, got))
	assert.Equal(t, payload, got)
}
