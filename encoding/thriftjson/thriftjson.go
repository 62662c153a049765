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

// Package thriftjson implements the round-trippable Thrift JSON protocol.
//
// Structs are objects keyed by field ID, and every value is tagged with its
// type name, so a reader needs no schema to decode it:
//
//	{"1":{"str":"hello"},"2":{"lst":["i32",2,1,2]}}
package thriftjson

import (
	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

const protocolVersion = 1

var typeNames = map[thrift.TType]string{
	thrift.BOOL:   "tf",
	thrift.BYTE:   "i8",
	thrift.I16:    "i16",
	thrift.I32:    "i32",
	thrift.I64:    "i64",
	thrift.DOUBLE: "dbl",
	thrift.STRING: "str",
	thrift.STRUCT: "rec",
	thrift.MAP:    "map",
	thrift.LIST:   "lst",
	thrift.SET:    "set",
}

var typesByName = func() map[string]thrift.TType {
	out := make(map[string]thrift.TType, len(typeNames))
	for t, name := range typeNames {
		out[name] = t
	}
	return out
}()

type Option interface {
	apply(*Protocol)
}

type option func(*Protocol)

func (f option) apply(p *Protocol) { f(p) }

func WithStringLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.stringLimit = limit
	})
}

func WithContainerLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.containerLimit = limit
	})
}

type Protocol struct {
	t transport.Transport

	stringLimit    int32
	containerLimit int32

	contexts []*jsonContext
	ctx      *jsonContext

	// One byte of lookahead for the reader.
	peeked    bool
	peekedVal byte

	buf [1]byte
}

var _ thrift.Protocol = (*Protocol)(nil)

func New(t transport.Transport, opts ...Option) *Protocol {
	p := &Protocol{
		t:              t,
		stringLimit:    thrift.Unlimited,
		containerLimit: thrift.Unlimited,
		ctx:            &jsonContext{kind: baseContext},
	}
	for _, opt := range opts {
		opt.apply(p)
	}
	return p
}

func (p *Protocol) Transport() transport.Transport {
	return p.t
}

func (p *Protocol) Flush() error {
	return p.t.Flush()
}

func (p *Protocol) Reset() {
	p.contexts = p.contexts[:0]
	p.ctx = &jsonContext{kind: baseContext}
	p.peeked = false
}

func (p *Protocol) Close() error {
	return p.t.Close()
}

type contextKind uint8

const (
	baseContext contextKind = iota
	listContext
	pairContext
)

// jsonContext tracks the separators owed between values of the innermost
// open array or object.
type jsonContext struct {
	kind  contextKind
	first bool
	colon bool
}

// escapeNum reports whether numbers must be quoted, which is the case for
// object keys.
func (c *jsonContext) escapeNum() bool {
	return c.kind == pairContext && c.colon
}

// separator advances the context and returns the byte owed before the next
// value, or 0.
func (c *jsonContext) separator() byte {
	switch c.kind {
	case baseContext:
		return 0
	case listContext:
		if c.first {
			c.first = false
			return 0
		}
		return ','
	case pairContext:
		if c.first {
			c.first = false
			c.colon = true
			return 0
		}
		sep := byte(',')
		if c.colon {
			sep = ':'
		}
		c.colon = !c.colon
		return sep
	default:
		panic("unreachable")
	}
}

func (p *Protocol) pushContext(kind contextKind) {
	p.contexts = append(p.contexts, p.ctx)
	p.ctx = &jsonContext{kind: kind, first: true, colon: true}
}

func (p *Protocol) popContext() {
	n := len(p.contexts)
	if n == 0 {
		p.ctx = &jsonContext{kind: baseContext}
		return
	}
	p.ctx = p.contexts[n-1]
	p.contexts = p.contexts[:n-1]
}
