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

package thriftsimplejson_test

import (
	"math"
	"testing"

	"github.com/tidwall/gjson"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/encoding/thriftsimplejson"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/transport"
)

func writeAll(t *testing.T, p *thriftsimplejson.Protocol, steps ...error) {
	t.Helper()
	for _, err := range steps {
		testutil.AssertNoError(t, err)
	}
	testutil.AssertNoError(t, p.Flush())
}

func TestWriteStruct(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftsimplejson.New(buf)
	writeAll(t, p,
		p.WriteStructBegin("S"),
		p.WriteFieldBegin("foo", thrift.I32, 1),
		p.WriteI32(1),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("bar", thrift.STRING, 2),
		p.WriteString("x"),
		p.WriteFieldEnd(),
		p.WriteFieldStop(),
		p.WriteStructEnd(),
	)

	testutil.ExpectEq(t, `{"foo":1,"bar":"x"}`, string(buf.Bytes()))
	testutil.ExpectTrue(t, gjson.ValidBytes(buf.Bytes()))
}

func TestWriteNested(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftsimplejson.New(buf)
	writeAll(t, p,
		p.WriteMessageBegin("getUser", thrift.REPLY, 3),
		p.WriteStructBegin("User"),
		p.WriteFieldBegin("tags", thrift.LIST, 1),
		p.WriteListBegin(thrift.STRING, 2),
		p.WriteString("<a>"),
		p.WriteString("b\"c"),
		p.WriteListEnd(),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("ok", thrift.BOOL, 2),
		p.WriteBool(true),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("raw", thrift.STRING, 3),
		p.WriteBinary([]byte("hi")),
		p.WriteFieldEnd(),
		p.WriteFieldBegin("ratio", thrift.DOUBLE, 4),
		p.WriteDouble(0.25),
		p.WriteFieldEnd(),
		p.WriteFieldStop(),
		p.WriteStructEnd(),
		p.WriteMessageEnd(),
	)

	want := `["getUser","reply",3,` +
		`{"tags":["<a>","b\"c"],"ok":true,"raw":"aGk=","ratio":0.25}]`
	testutil.ExpectEq(t, want, string(buf.Bytes()))
	testutil.ExpectEq(t, "b\"c", gjson.GetBytes(buf.Bytes(), "3.tags.1").String())
}

func TestWriteMap_NonStringKeys(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftsimplejson.New(buf)
	writeAll(t, p,
		p.WriteMapBegin(thrift.I32, thrift.STRING, 2),
		p.WriteI32(1),
		p.WriteString("a"),
		p.WriteI32(2),
		p.WriteString("b"),
		p.WriteMapEnd(),
	)

	testutil.ExpectEq(t, `{1:"a",2:"b"}`, string(buf.Bytes()))
	testutil.ExpectFalse(t, gjson.ValidBytes(buf.Bytes()))
}

func TestWriteDouble_NonFinite(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftsimplejson.New(buf)
	writeAll(t, p,
		p.WriteListBegin(thrift.DOUBLE, 3),
		p.WriteDouble(math.NaN()),
		p.WriteDouble(math.Inf(1)),
		p.WriteDouble(math.Inf(-1)),
		p.WriteListEnd(),
	)
	testutil.ExpectEq(t, `[NaN,Infinity,-Infinity]`, string(buf.Bytes()))
}

func TestReadIsNotImplemented(t *testing.T) {
	p := thriftsimplejson.New(transport.NewMemoryBufferBytes([]byte(`{"foo":1}`)))

	var errs []error
	record := func(err error) { errs = append(errs, err) }

	_, err := p.ReadMessageBegin()
	record(err)
	record(p.ReadMessageEnd())
	_, err = p.ReadStructBegin()
	record(err)
	record(p.ReadStructEnd())
	_, err = p.ReadFieldBegin()
	record(err)
	record(p.ReadFieldEnd())
	_, err = p.ReadMapBegin()
	record(err)
	record(p.ReadMapEnd())
	_, err = p.ReadListBegin()
	record(err)
	record(p.ReadListEnd())
	_, err = p.ReadSetBegin()
	record(err)
	record(p.ReadSetEnd())
	_, err = p.ReadBool()
	record(err)
	_, err = p.ReadI8()
	record(err)
	_, err = p.ReadI16()
	record(err)
	_, err = p.ReadI32()
	record(err)
	_, err = p.ReadI64()
	record(err)
	_, err = p.ReadDouble()
	record(err)
	_, err = p.ReadString()
	record(err)
	_, err = p.ReadBinary()
	record(err)

	testutil.ExpectEq(t, 20, len(errs))
	for _, err := range errs {
		testutil.ExpectErrorIs(t, err, thrift.ErrNotImplemented)
	}
	testutil.ExpectEq(t, 9, p.Transport().(*transport.MemoryBuffer).Len())
}
