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

// Package value reads and writes Thrift data whose shape is known only at
// run time, from a linked schema.Type.
//
// Values are represented with plain Go types:
//
//	bool            bool
//	byte, i8        int8
//	i16             int16
//	i32, enum       int32
//	i64             int64
//	double          float64
//	string          string
//	binary          []byte
//	list<T>, set<T> []any
//	map<K,V>        []MapEntry
//	struct          *Struct
//
// Maps are ordered entry lists so that keys of any type, including
// containers and structs, can be represented.
package value

import (
	"bytes"
	"iter"
	"math"

	"go.thrift-idl.org/thrift/schema"
)

type MapEntry struct {
	Key   any
	Value any
}

// Struct is a struct, union or exception value. Fields are identified by
// ID; unset fields are absent.
type Struct struct {
	schema *schema.Struct
	fields map[int16]any
}

func NewStruct(s *schema.Struct) *Struct {
	return &Struct{
		schema: s,
		fields: make(map[int16]any),
	}
}

func (s *Struct) Schema() *schema.Struct {
	return s.schema
}

// Set assigns the named field. It panics if the struct has no such field.
func (s *Struct) Set(name string, v any) *Struct {
	field := s.schema.FieldByName(name)
	if field == nil {
		panic("value: struct " + s.schema.Name + " has no field " + name)
	}
	s.fields[field.ID] = v
	return s
}

func (s *Struct) SetID(id int16, v any) *Struct {
	s.fields[id] = v
	return s
}

func (s *Struct) Unset(name string) {
	if field := s.schema.FieldByName(name); field != nil {
		delete(s.fields, field.ID)
	}
}

func (s *Struct) Get(name string) (any, bool) {
	field := s.schema.FieldByName(name)
	if field == nil {
		return nil, false
	}
	v, ok := s.fields[field.ID]
	return v, ok
}

func (s *Struct) GetID(id int16) (any, bool) {
	v, ok := s.fields[id]
	return v, ok
}

func (s *Struct) Len() int {
	return len(s.fields)
}

// Fields yields the set fields in declaration order.
func (s *Struct) Fields() iter.Seq2[*schema.Field, any] {
	return func(yield func(*schema.Field, any) bool) {
		for _, field := range s.schema.Fields {
			v, ok := s.fields[field.ID]
			if !ok {
				continue
			}
			if !yield(field, v) {
				return
			}
		}
	}
}

// Equal reports whether a and b are the same value of type typ. Sets and
// maps compare without regard to order; doubles compare by bit pattern.
func Equal(typ schema.Type, a, b any) bool {
	switch t := typ.TrueType().(type) {
	case *schema.BuiltinType:
		switch av := a.(type) {
		case []byte:
			bv, ok := b.([]byte)
			return ok && bytes.Equal(av, bv)
		case float64:
			bv, ok := b.(float64)
			return ok && math.Float64bits(av) == math.Float64bits(bv)
		}
		return a == b
	case *schema.EnumType:
		return a == b
	case *schema.ListType:
		av, aok := a.([]any)
		bv, bok := b.([]any)
		if !aok || !bok || len(av) != len(bv) {
			return false
		}
		for ii := range av {
			if !Equal(t.Elem(), av[ii], bv[ii]) {
				return false
			}
		}
		return true
	case *schema.SetType:
		av, aok := a.([]any)
		bv, bok := b.([]any)
		if !aok || !bok || len(av) != len(bv) {
			return false
		}
		return matchAll(len(av), func(ii, jj int) bool {
			return Equal(t.Elem(), av[ii], bv[jj])
		})
	case *schema.MapType:
		av, aok := a.([]MapEntry)
		bv, bok := b.([]MapEntry)
		if !aok || !bok || len(av) != len(bv) {
			return false
		}
		return matchAll(len(av), func(ii, jj int) bool {
			return Equal(t.Key(), av[ii].Key, bv[jj].Key) &&
				Equal(t.Value(), av[ii].Value, bv[jj].Value)
		})
	case *schema.StructType:
		av, aok := a.(*Struct)
		bv, bok := b.(*Struct)
		if !aok || !bok || len(av.fields) != len(bv.fields) {
			return false
		}
		for _, field := range t.Struct().Fields {
			x, xok := av.fields[field.ID]
			y, yok := bv.fields[field.ID]
			if xok != yok {
				return false
			}
			if xok && !Equal(field.Type, x, y) {
				return false
			}
		}
		return true
	}
	return false
}

// matchAll pairs every element of one collection with a distinct equal
// element of the other.
func matchAll(n int, eq func(ii, jj int) bool) bool {
	used := make([]bool, n)
	for ii := 0; ii < n; ii++ {
		found := false
		for jj := 0; jj < n; jj++ {
			if !used[jj] && eq(ii, jj) {
				used[jj] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
