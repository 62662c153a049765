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

package thriftjson_test

import (
	"math"
	"testing"

	"github.com/tidwall/gjson"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/encoding/thriftjson"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/transport"
)

func writeSample(t *testing.T, p thrift.Protocol) {
	t.Helper()
	steps := []error{
		p.WriteMessageBegin("ping", thrift.CALL, 9),
		p.WriteStructBegin("Sample"),
		p.WriteFieldBegin("s", thrift.STRING, 1),
		p.WriteString("hi \"there\"\n"),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("l", thrift.LIST, 2),
		p.WriteListBegin(thrift.I32, 2),
		p.WriteI32(1),
		p.WriteI32(-2),
		p.WriteListEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("m", thrift.MAP, 3),
		p.WriteMapBegin(thrift.I32, thrift.DOUBLE, 1),
		p.WriteI32(7),
		p.WriteDouble(0.5),
		p.WriteMapEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("d", thrift.DOUBLE, 4),
		p.WriteDouble(math.NaN()),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("b", thrift.BOOL, 5),
		p.WriteBool(true),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("bin", thrift.STRING, 6),
		p.WriteBinary([]byte{0xff, 0x00}),
		p.WriteFieldEnd(),
		p.WriteFieldStop(),
		p.WriteStructEnd(),
		p.WriteMessageEnd(),
	}
	for _, err := range steps {
		testutil.AssertNoError(t, err)
	}
}

func TestWrite(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	writeSample(t, thriftjson.New(buf))

	want := `[1,"ping",1,9,{` +
		`"1":{"str":"hi \"there\"\n"},` +
		`"2":{"lst":["i32",2,1,-2]},` +
		`"3":{"map":["i32","dbl",1,{"7":0.5}]},` +
		`"4":{"dbl":"NaN"},` +
		`"5":{"tf":1},` +
		`"6":{"str":"/wA="}` +
		`}]`
	testutil.ExpectEq(t, want, string(buf.Bytes()))

	doc := gjson.ParseBytes(buf.Bytes())
	testutil.ExpectEq(t, "ping", doc.Get("1").String())
	testutil.ExpectEq(t, "hi \"there\"\n", doc.Get(`4.1.str`).String())
	testutil.ExpectEq(t, int64(-2), doc.Get(`4.2.lst.3`).Int())
	testutil.ExpectEq(t, 0.5, doc.Get(`4.3.map.3.7`).Float())
}

func TestRoundTrip(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftjson.New(buf)
	writeSample(t, p)

	header, err := p.ReadMessageBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.MessageHeader{Name: "ping", Type: thrift.CALL, SeqID: 9}, header)

	_, err = p.ReadStructBegin()
	testutil.AssertNoError(t, err)

	field, err := p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.FieldHeader{Type: thrift.STRING, ID: 1}, field)
	s, err := p.ReadString()
	testutil.ExpectEq(t, "hi \"there\"\n", testutil.Must(t, s, err))
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.FieldHeader{Type: thrift.LIST, ID: 2}, field)
	list, err := p.ReadListBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.ListHeader{ElemType: thrift.I32, Size: 2}, list)
	for _, want := range []int32{1, -2} {
		got, err := p.ReadI32()
		testutil.ExpectEq(t, want, testutil.Must(t, got, err))
	}
	testutil.AssertNoError(t, p.ReadListEnd())
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.MAP, field.Type)
	m, err := p.ReadMapBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.MapHeader{KeyType: thrift.I32, ValueType: thrift.DOUBLE, Size: 1}, m)
	key, err := p.ReadI32()
	testutil.ExpectEq(t, int32(7), testutil.Must(t, key, err))
	val, err := p.ReadDouble()
	testutil.ExpectEq(t, 0.5, testutil.Must(t, val, err))
	testutil.AssertNoError(t, p.ReadMapEnd())
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.DOUBLE, field.Type)
	nan, err := p.ReadDouble()
	testutil.AssertNoError(t, err)
	testutil.ExpectTrue(t, math.IsNaN(nan))
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.BOOL, field.Type)
	b, err := p.ReadBool()
	testutil.ExpectTrue(t, testutil.Must(t, b, err))
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, int16(6), field.ID)
	bin, err := p.ReadBinary()
	testutil.ExpectBytesEq(t, []byte{0xff, 0x00}, testutil.Must(t, bin, err))
	testutil.AssertNoError(t, p.ReadFieldEnd())

	field, err = p.ReadFieldBegin()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, thrift.STOP, field.Type)
	testutil.AssertNoError(t, p.ReadStructEnd())
	testutil.AssertNoError(t, p.ReadMessageEnd())
}

func TestSkipStruct(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftjson.New(buf)
	writeSample(t, p)

	_, err := p.ReadMessageBegin()
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, thrift.Skip(p, thrift.STRUCT))
	testutil.AssertNoError(t, p.ReadMessageEnd())
}

func TestWriteString_Escapes(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftjson.New(buf)
	testutil.AssertNoError(t, p.WriteString("a\\b\x01\t/é"))
	testutil.ExpectEq(t, `"a\\b\u0001\t/é"`, string(buf.Bytes()))
}

func TestReadString_Surrogates(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`"😀 é\/"`)))
	s, err := p.ReadString()
	testutil.ExpectEq(t, "😀 é/", testutil.Must(t, s, err))
}

func TestReadString_LoneSurrogate(t *testing.T) {
	tests := []string{
		`"\ud83d"`,
		`"\ude00"`,
		`"\ud83dx"`,
	}
	for _, input := range tests {
		p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(input)))
		_, err := p.ReadString()
		testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	}
}

func TestReadBinary_Unpadded(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`"/wA"`)))
	bin, err := p.ReadBinary()
	testutil.ExpectBytesEq(t, []byte{0xff, 0x00}, testutil.Must(t, bin, err))
}

func TestReadDouble_Special(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`"-Infinity"`)))
	d, err := p.ReadDouble()
	testutil.ExpectEq(t, math.Inf(-1), testutil.Must(t, d, err))

	p = thriftjson.New(transport.NewMemoryBufferBytes([]byte(`"1.5"`)))
	_, err = p.ReadDouble()
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectMatch(t, `unexpectedly quoted`, err.Error())
}

func TestRead_UnexpectedChar(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`[1;"ping"`)))
	_, err := p.ReadMessageBegin()
	testutil.ExpectErrorIs(t, err, thrift.ErrUnexpectedChar)
}

func TestRead_BadVersion(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`[2,"ping",1,0]`)))
	_, err := p.ReadMessageBegin()
	testutil.ExpectErrorIs(t, err, thrift.ErrBadVersion)
}

func TestRead_Truncated(t *testing.T) {
	p := thriftjson.New(transport.NewMemoryBufferBytes([]byte(`"abc`)))
	_, err := p.ReadString()
	testutil.ExpectErrorIs(t, err, transport.ErrEndOfStream)
}

func TestReadString_StringLimit(t *testing.T) {
	buf := transport.NewMemoryBufferBytes([]byte(`"abc"`))
	p := thriftjson.New(buf, thriftjson.WithStringLimit(3))
	got, err := p.ReadString()
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, "abc", got)

	buf = transport.NewMemoryBufferBytes([]byte(`"abcdefghijklmnop`))
	p = thriftjson.New(buf, thriftjson.WithStringLimit(3))
	_, err = p.ReadString()
	testutil.ExpectErrorIs(t, err, thrift.ErrSizeLimit)
	testutil.ExpectEq(t, 12, buf.Len())
}

func TestReadList_ContainerLimit(t *testing.T) {
	p := thriftjson.New(
		transport.NewMemoryBufferBytes([]byte(`["i8",3,1,2,3]`)),
		thriftjson.WithContainerLimit(2),
	)
	_, err := p.ReadListBegin()
	testutil.ExpectErrorIs(t, err, thrift.ErrSizeLimit)
}
