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

package value_test

import (
	"math"
	"testing"

	"github.com/tidwall/gjson"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/encoding/thriftbin"
	"go.thrift-idl.org/thrift/encoding/thriftcompact"
	"go.thrift-idl.org/thrift/encoding/thriftjson"
	"go.thrift-idl.org/thrift/encoding/thriftsimplejson"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/transport"
	"go.thrift-idl.org/thrift/value"
)

const testSchema = `
enum Color { RED, GREEN, BLUE }
typedef list<string> Names

struct Inner {
	1: i32 id
	2: optional binary blob
}

struct Everything {
	1: bool flag
	2: byte small
	3: i16 medium
	4: i32 number
	5: i64 big
	6: double ratio
	7: string text
	8: binary data
	9: Color color
	10: Names names
	11: set<i64> ids
	12: map<string, Inner> byName
	13: list<map<i32, list<Color>>> nested
	14: Inner inner
}

struct Needs {
	1: required string name
	2: optional i32 age
}

union Choice {
	1: string s
	2: i32 n
}

service Pinger {
	void ping()
}
`

type protocolCase struct {
	name string
	new  func(transport.Transport) thrift.Protocol
}

var protocols = []protocolCase{
	{"binary", func(t transport.Transport) thrift.Protocol { return thriftbin.New(t) }},
	{"compact", func(t transport.Transport) thrift.Protocol { return thriftcompact.New(t) }},
	{"json", func(t transport.Transport) thrift.Protocol { return thriftjson.New(t) }},
}

func encode(t *testing.T, proto protocolCase, typ schema.Type, v any) []byte {
	t.Helper()
	buf := transport.NewMemoryBuffer()
	p := proto.new(buf)
	testutil.AssertNoError(t, value.Write(p, typ, v))
	testutil.AssertNoError(t, p.Flush())
	return buf.Bytes()
}

func decode(t *testing.T, proto protocolCase, typ schema.Type, data []byte) (any, error) {
	t.Helper()
	return value.Read(proto.new(transport.NewMemoryBufferBytes(data)), typ)
}

func structType(t *testing.T, sch *schema.Schema, name string) (schema.Type, *schema.Struct) {
	t.Helper()
	typ := testutil.LookupOrDie(t, sch, name)
	return typ, typ.(*schema.StructType).Struct()
}

func everything(t *testing.T, sch *schema.Schema) (schema.Type, *value.Struct) {
	_, innerSchema := structType(t, sch, "Inner")
	typ, s := structType(t, sch, "Everything")

	inner := func(id int32) *value.Struct {
		return value.NewStruct(innerSchema).Set("id", id)
	}
	v := value.NewStruct(s).
		Set("flag", true).
		Set("small", int8(-3)).
		Set("medium", int16(1000)).
		Set("number", int32(-70000)).
		Set("big", int64(math.MaxInt64)).
		Set("ratio", 1.5).
		Set("text", "héllo \"world\"").
		Set("data", []byte{0, 1, 2, 0xff}).
		Set("color", int32(2)).
		Set("names", []any{"a", "b"}).
		Set("ids", []any{int64(3), int64(1)}).
		Set("byName", []value.MapEntry{
			{Key: "x", Value: inner(1).Set("blob", []byte("z"))},
			{Key: "y", Value: inner(2)},
		}).
		Set("nested", []any{
			[]value.MapEntry{{Key: int32(7), Value: []any{int32(0), int32(1)}}},
			[]value.MapEntry{},
		}).
		Set("inner", inner(9))
	return typ, v
}

func TestRoundTrip(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, v := everything(t, sch)

	for _, proto := range protocols {
		t.Run(proto.name, func(t *testing.T) {
			data := encode(t, proto, typ, v)
			got, err := decode(t, proto, typ, data)
			testutil.AssertNoError(t, err)
			testutil.ExpectTrue(t, value.Equal(typ, v, got))

			text, _ := got.(*value.Struct).Get("text")
			testutil.ExpectEq[any](t, "héllo \"world\"", text)
		})
	}
}

func TestCrossProtocol(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, v := everything(t, sch)

	for _, from := range protocols {
		for _, to := range protocols {
			t.Run(from.name+"_to_"+to.name, func(t *testing.T) {
				src := from.new(transport.NewMemoryBufferBytes(encode(t, from, typ, v)))
				out := transport.NewMemoryBuffer()
				dst := to.new(out)
				testutil.AssertNoError(t, value.Transcode(dst, src, typ))
				testutil.AssertNoError(t, dst.Flush())

				got, err := decode(t, to, typ, out.Bytes())
				testutil.AssertNoError(t, err)
				testutil.ExpectTrue(t, value.Equal(typ, v, got))
			})
		}
	}
}

func TestBinaryLayout(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, s := structType(t, sch, "Inner")
	v := value.NewStruct(s).Set("id", int32(5))

	testutil.ExpectBytesEq(t, []byte{
		byte(thrift.I32), 0, 1, 0, 0, 0, 5,
		byte(thrift.STOP),
	}, encode(t, protocols[0], typ, v))
}

func TestMessageRoundTrip(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, s := structType(t, sch, "Choice")
	v := value.NewStruct(s).Set("n", int32(4))

	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf)
	header := thrift.MessageHeader{Name: "pick", Type: thrift.CALL, SeqID: 12}
	testutil.AssertNoError(t, value.WriteMessage(p, header, typ, v))

	gotHeader, got, err := value.ReadMessage(p, typ)
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, header, gotHeader)
	testutil.ExpectTrue(t, value.Equal(typ, v, got))
}

func TestSkipUnknownFields(t *testing.T) {
	v1 := testutil.LinkOrDie(t, testSchema)
	v2 := testutil.LinkOrDie(t, `
struct Inner {
	1: string id
	2: optional binary blob
	3: list<map<string, i64>> extra
}
`)
	newType, newSchema := structType(t, v2, "Inner")
	written := value.NewStruct(newSchema).
		Set("id", "not a number").
		Set("blob", []byte("b")).
		Set("extra", []any{[]value.MapEntry{{Key: "k", Value: int64(1)}}})

	oldType, _ := structType(t, v1, "Inner")
	for _, proto := range protocols {
		t.Run(proto.name, func(t *testing.T) {
			got, err := decode(t, proto, oldType, encode(t, proto, newType, written))
			testutil.AssertNoError(t, err)

			s := got.(*value.Struct)
			testutil.ExpectEq(t, 1, s.Len())
			blob, ok := s.Get("blob")
			testutil.ExpectTrue(t, ok)
			testutil.ExpectBytesEq(t, []byte("b"), blob.([]byte))
			_, ok = s.Get("id")
			testutil.ExpectFalse(t, ok)
		})
	}
}

func TestRequiredFields(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, s := structType(t, sch, "Needs")

	buf := transport.NewMemoryBuffer()
	err := value.Write(thriftbin.New(buf), typ, value.NewStruct(s).Set("age", int32(3)))
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectEq(t, "thrift: Required field 'name' of Needs is unset", err.Error())
	testutil.ExpectEq(t, 0, buf.Len())

	loose := testutil.LinkOrDie(t, `struct Needs { 2: optional i32 age }`)
	looseType, looseSchema := structType(t, loose, "Needs")
	data := encode(t, protocols[0], looseType, value.NewStruct(looseSchema).Set("age", int32(3)))

	_, err = decode(t, protocols[0], typ, data)
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
}

func TestUnionFields(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, s := structType(t, sch, "Choice")

	v := value.NewStruct(s).Set("s", "x").Set("n", int32(1))
	err := value.Write(thriftbin.New(transport.NewMemoryBuffer()), typ, v)
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectMatch(t, `Union Choice has 2 fields set`, err.Error())

	v.Unset("n")
	testutil.AssertNoError(t, value.Write(thriftbin.New(transport.NewMemoryBuffer()), typ, v))
}

func TestWrongGoType(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	p := thriftbin.New(transport.NewMemoryBuffer())

	err := value.Write(p, schema.I32, "x")
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectEq(t, "thrift: Expected a value of type i32, got string", err.Error())

	everythingType, _ := structType(t, sch, "Everything")
	innerType, inner := structType(t, sch, "Inner")
	err = value.Write(p, everythingType, value.NewStruct(inner))
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)

	err = value.Write(p, innerType, value.NewStruct(inner).SetID(99, int32(1)))
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectEq(t, "thrift: Struct Inner has no field with ID 99", err.Error())
}

func TestElementTypeMismatch(t *testing.T) {
	buf := transport.NewMemoryBuffer()
	p := thriftbin.New(buf)
	testutil.AssertNoError(t, value.Write(p, schema.NewList(schema.String), []any{"a"}))

	_, err := value.Read(p, schema.NewList(schema.I64))
	testutil.ExpectErrorIs(t, err, thrift.ErrInvalidData)
	testutil.ExpectEq(t, "thrift: Expected list element type I64, got STRING", err.Error())
}

func TestDepthLimit(t *testing.T) {
	var typ schema.Type = schema.I32
	var v any = int32(1)
	for ii := 0; ii < thrift.DefaultSkipDepth; ii++ {
		typ = schema.NewList(typ)
		v = []any{v}
	}
	err := value.Write(thriftbin.New(transport.NewMemoryBuffer()), typ, v)
	testutil.ExpectErrorIs(t, err, thrift.ErrDepthLimit)
}

func TestWriteServicePanics(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	service := schema.NewServiceType(sch.LookupService("Pinger"))
	defer func() {
		if recover() == nil {
			t.Error("Expected panic writing a service value")
		}
	}()
	value.Write(thriftbin.New(transport.NewMemoryBuffer()), service, nil)
}

func TestSimpleJSON(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	typ, v := everything(t, sch)
	v.Unset("nested")

	buf := transport.NewMemoryBuffer()
	p := thriftsimplejson.New(buf)
	testutil.AssertNoError(t, value.Write(p, typ, v))
	testutil.AssertNoError(t, p.Flush())

	out := buf.Bytes()
	testutil.ExpectEq(t, "héllo \"world\"", gjson.GetBytes(out, "text").String())
	testutil.ExpectEq(t, int64(-70000), gjson.GetBytes(out, "number").Int())
	testutil.ExpectEq(t, int64(2), gjson.GetBytes(out, "color").Int())
	testutil.ExpectEq(t, "b", gjson.GetBytes(out, "names.1").String())
	testutil.ExpectEq(t, int64(2), gjson.GetBytes(out, "byName.y.id").Int())
	testutil.ExpectEq(t, int64(9), gjson.GetBytes(out, "inner.id").Int())
	testutil.ExpectTrue(t, gjson.ValidBytes(out))
}

func TestEqual(t *testing.T) {
	set := schema.NewSet(schema.I32)
	testutil.ExpectTrue(t, value.Equal(set,
		[]any{int32(1), int32(2), int32(2)},
		[]any{int32(2), int32(1), int32(2)},
	))
	testutil.ExpectFalse(t, value.Equal(set,
		[]any{int32(1), int32(1), int32(2)},
		[]any{int32(2), int32(1), int32(2)},
	))

	list := schema.NewList(schema.I32)
	testutil.ExpectFalse(t, value.Equal(list,
		[]any{int32(1), int32(2)},
		[]any{int32(2), int32(1)},
	))

	m := schema.NewMap(schema.String, schema.Double)
	testutil.ExpectTrue(t, value.Equal(m,
		[]value.MapEntry{{Key: "a", Value: math.NaN()}, {Key: "b", Value: 1.0}},
		[]value.MapEntry{{Key: "b", Value: 1.0}, {Key: "a", Value: math.NaN()}},
	))
	testutil.ExpectFalse(t, value.Equal(m,
		[]value.MapEntry{{Key: "a", Value: 1.0}},
		[]value.MapEntry{{Key: "a", Value: 2.0}},
	))

	testutil.ExpectTrue(t, value.Equal(schema.Binary, []byte("x"), []byte("x")))
	testutil.ExpectFalse(t, value.Equal(schema.I32, int32(1), int64(1)))
}

func TestStructAccessors(t *testing.T) {
	sch := testutil.LinkOrDie(t, testSchema)
	_, s := structType(t, sch, "Needs")

	v := value.NewStruct(s).Set("age", int32(3)).Set("name", "n")
	var names []string
	for field := range v.Fields() {
		names = append(names, field.Name)
	}
	testutil.ExpectSliceEq(t, []string{"name", "age"}, names)

	age, ok := v.GetID(2)
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq[any](t, int32(3), age)

	_, ok = v.Get("missing")
	testutil.ExpectFalse(t, ok)

	defer func() {
		if recover() == nil {
			t.Error("Expected panic setting an unknown field")
		}
	}()
	v.Set("missing", 1)
}
