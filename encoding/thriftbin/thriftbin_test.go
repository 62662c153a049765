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

package thriftbin_test

import (
	"errors"
	"math"
	"testing"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/encoding/thriftbin"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/transport"
)

func TestMessageHeader_Strict(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf)
	testutil.AssertNoError(t, p.WriteMessageBegin("ping", thrift.CALL, 7))

	testutil.ExpectBytesEq(t, []byte{
		0x80, 0x01, 0x00, 0x01,
		0, 0, 0, 4, 'p', 'i', 'n', 'g',
		0, 0, 0, 7,
	}, buf.Bytes())

	header, err := p.ReadMessageBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.MessageHeader{
		Name:  "ping",
		Type:  thrift.CALL,
		SeqID: 7,
	}, header)
}

func TestMessageHeader_Legacy(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf, thriftbin.WithStrictWrite(false))
	testutil.AssertNoError(t, p.WriteMessageBegin("ab", thrift.REPLY, -1))

	testutil.ExpectBytesEq(t, []byte{
		0, 0, 0, 2, 'a', 'b',
		2,
		0xff, 0xff, 0xff, 0xff,
	}, buf.Bytes())

	header, err := p.ReadMessageBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "ab", header.Name)
	testutil.ExpectEq(t, thrift.REPLY, header.Type)
	testutil.ExpectEq(t, int32(-1), header.SeqID)
}

func TestMessageHeader_StrictReadRejectsLegacy(t *testing.T) {
	buf := transport.NewMemoryBufferBytes([]byte{0, 0, 0, 1, 'x', 1, 0, 0, 0, 0})
	p := thriftbin.New(buf, thriftbin.WithStrictRead(true))
	_, err := p.ReadMessageBegin()
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrBadVersion))
	testutil.ExpectMatch(t, `Missing version`, err.Error())
}

func TestMessageHeader_BadVersion(t *testing.T) {
	buf := transport.NewMemoryBufferBytes([]byte{0x80, 0x02, 0x00, 0x01})
	p := thriftbin.New(buf)
	_, err := p.ReadMessageBegin()
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrBadVersion))
	testutil.ExpectMatch(t, `Bad version in readMessageBegin`, err.Error())
}

func writeEverything(t *testing.T, p thrift.Protocol) {
	t.Helper()
	steps := []error{
		p.WriteStructBegin("Everything"),
		p.WriteFieldBegin("b", thrift.BOOL, 1),
		p.WriteBool(true),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("i8", thrift.BYTE, 2),
		p.WriteI8(-128),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("i16", thrift.I16, 3),
		p.WriteI16(-32768),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("i32", thrift.I32, 4),
		p.WriteI32(math.MinInt32),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("i64", thrift.I64, 5),
		p.WriteI64(math.MinInt64),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("nan", thrift.DOUBLE, 6),
		p.WriteDouble(math.Float64frombits(0x7ff8000000000001)),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("inf", thrift.DOUBLE, 7),
		p.WriteDouble(math.Inf(-1)),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("s", thrift.STRING, 8),
		p.WriteString("héllo"),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("bin", thrift.STRING, 9),
		p.WriteBinary([]byte{0, 1, 0xff}),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("list", thrift.LIST, 10),
		p.WriteListBegin(thrift.I32, 2),
		p.WriteI32(1),
		p.WriteI32(-1),
		p.WriteListEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("set", thrift.SET, 11),
		p.WriteSetBegin(thrift.STRING, 1),
		p.WriteString("x"),
		p.WriteSetEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("map", thrift.MAP, 12),
		p.WriteMapBegin(thrift.I16, thrift.STRUCT, 1),
		p.WriteI16(5),
		p.WriteStructBegin("Inner"),
		p.WriteFieldBegin("flag", thrift.BOOL, 1),
		p.WriteBool(false),
		p.WriteFieldEnd(),
		p.WriteFieldStop(),
		p.WriteStructEnd(),
		p.WriteMapEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldStop(),
		p.WriteStructEnd(),
	}
	for _, err := range steps {
		testutil.AssertNoError(t, err)
	}
}

func expectField(t *testing.T, p thrift.Protocol, typeID thrift.TType, id int16) {
	t.Helper()
	header, err := p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, typeID, header.Type)
	testutil.ExpectEq(t, id, header.ID)
}

func TestRoundTrip(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf)
	writeEverything(t, p)

	_, err := p.ReadStructBegin()
	testutil.AssertNoError(t, err)

	expectField(t, p, thrift.BOOL, 1)
	b, err := p.ReadBool()
	testutil.ExpectEq(t, true, testutil.Must(t, b, err))
	expectField(t, p, thrift.BYTE, 2)
	i8, err := p.ReadI8()
	testutil.ExpectEq(t, int8(-128), testutil.Must(t, i8, err))
	expectField(t, p, thrift.I16, 3)
	i16, err := p.ReadI16()
	testutil.ExpectEq(t, int16(-32768), testutil.Must(t, i16, err))
	expectField(t, p, thrift.I32, 4)
	i32, err := p.ReadI32()
	testutil.ExpectEq(t, int32(math.MinInt32), testutil.Must(t, i32, err))
	expectField(t, p, thrift.I64, 5)
	i64, err := p.ReadI64()
	testutil.ExpectEq(t, int64(math.MinInt64), testutil.Must(t, i64, err))
	expectField(t, p, thrift.DOUBLE, 6)
	nan, err := p.ReadDouble()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, uint64(0x7ff8000000000001), math.Float64bits(nan))
	expectField(t, p, thrift.DOUBLE, 7)
	inf, err := p.ReadDouble()
	testutil.ExpectEq(t, math.Inf(-1), testutil.Must(t, inf, err))
	expectField(t, p, thrift.STRING, 8)
	str, err := p.ReadString()
	testutil.ExpectEq(t, "héllo", testutil.Must(t, str, err))
	expectField(t, p, thrift.STRING, 9)
	bin, err := p.ReadBinary()
	testutil.ExpectBytesEq(t, []byte{0, 1, 0xff}, testutil.Must(t, bin, err))

	expectField(t, p, thrift.LIST, 10)
	list, err := p.ReadListBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.ListHeader{ElemType: thrift.I32, Size: 2}, list)
	for _, want := range []int32{1, -1} {
		got, err := p.ReadI32()
		testutil.ExpectEq(t, want, testutil.Must(t, got, err))
	}

	expectField(t, p, thrift.SET, 11)
	set, err := p.ReadSetBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.SetHeader{ElemType: thrift.STRING, Size: 1}, set)
	str, err = p.ReadString()
	testutil.ExpectEq(t, "x", testutil.Must(t, str, err))

	expectField(t, p, thrift.MAP, 12)
	m, err := p.ReadMapBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.MapHeader{
		KeyType:   thrift.I16,
		ValueType: thrift.STRUCT,
		Size:      1,
	}, m)
	i16, err = p.ReadI16()
	testutil.ExpectEq(t, int16(5), testutil.Must(t, i16, err))
	testutil.AssertNoError(t, thrift.Skip(p, thrift.STRUCT))

	expectField(t, p, thrift.STOP, 0)
	testutil.ExpectEq(t, 0, buf.Len())
}

func TestReadString_Limit(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf, thriftbin.WithStringLimit(3))
	testutil.AssertNoError(t, p.WriteString("abcd"))

	_, err := p.ReadString()
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrSizeLimit))
}

func TestReadList_ContainerLimit(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf, thriftbin.WithContainerLimit(1))
	testutil.AssertNoError(t, p.WriteListBegin(thrift.BYTE, 2))

	_, err := p.ReadListBegin()
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrSizeLimit))
}

func TestReadString_NegativeSize(t *testing.T) {
	buf := transport.NewMemoryBufferBytes([]byte{0xff, 0xff, 0xff, 0xfe})
	p := thriftbin.New(buf)
	_, err := p.ReadString()
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrNegativeSize))
}

func TestReadI64_Truncated(t *testing.T) {
	buf := transport.NewMemoryBufferBytes([]byte{1, 2, 3})
	p := thriftbin.New(buf)
	_, err := p.ReadI64()
	testutil.ExpectTrue(t, errors.Is(err, transport.ErrEndOfStream))
	testutil.ExpectFalse(t, errors.Is(err, thrift.ErrInvalidData))
}

func TestSkip_DepthLimit(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf)
	for ii := 0; ii < 4; ii++ {
		testutil.AssertNoError(t, p.WriteListBegin(thrift.LIST, 1))
	}
	err := thrift.SkipDepth(p, thrift.LIST, 3)
	testutil.ExpectTrue(t, errors.Is(err, thrift.ErrDepthLimit))
}
