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

// Package thriftbin implements the Thrift binary protocol: fixed-width
// big-endian integers and length-prefixed strings.
package thriftbin

import (
	"encoding/binary"
	"math"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/transport"
)

const (
	version1    uint32 = 0x80010000
	versionMask uint32 = 0xffff0000
)

type Option interface {
	apply(*Protocol)
}

type option func(*Protocol)

func (f option) apply(p *Protocol) { f(p) }

// WithStrictRead makes ReadMessageBegin reject headers without a version
// marker.
func WithStrictRead(strict bool) Option {
	return option(func(p *Protocol) {
		p.strictRead = strict
	})
}

// WithStrictWrite selects the versioned message header form. It is enabled
// by default.
func WithStrictWrite(strict bool) Option {
	return option(func(p *Protocol) {
		p.strictWrite = strict
	})
}

// WithStringLimit bounds the length of strings and binaries read. Use
// thrift.Unlimited to disable the check.
func WithStringLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.stringLimit = limit
	})
}

// WithContainerLimit bounds the element count of maps, lists and sets
// read. Use thrift.Unlimited to disable the check.
func WithContainerLimit(limit int32) Option {
	return option(func(p *Protocol) {
		p.containerLimit = limit
	})
}

type Protocol struct {
	t transport.Transport

	strictRead     bool
	strictWrite    bool
	stringLimit    int32
	containerLimit int32

	buf [8]byte
}

var _ thrift.Protocol = (*Protocol)(nil)

func New(t transport.Transport, opts ...Option) *Protocol {
	p := &Protocol{
		t:              t,
		strictWrite:    true,
		stringLimit:    thrift.Unlimited,
		containerLimit: thrift.Unlimited,
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

// Reset is a no-op; the binary protocol keeps no per-message state.
func (p *Protocol) Reset() {}

func (p *Protocol) Close() error {
	return p.t.Close()
}

func (p *Protocol) write(b []byte) error {
	_, err := p.t.Write(b)
	return err
}

func (p *Protocol) WriteMessageBegin(name string, typeID thrift.MessageType, seqID int32) error {
	if p.strictWrite {
		if err := p.WriteI32(int32(version1 | uint32(typeID))); err != nil {
			return err
		}
		if err := p.WriteString(name); err != nil {
			return err
		}
		return p.WriteI32(seqID)
	}
	if err := p.WriteString(name); err != nil {
		return err
	}
	if err := p.WriteI8(int8(typeID)); err != nil {
		return err
	}
	return p.WriteI32(seqID)
}

func (p *Protocol) WriteMessageEnd() error { return nil }
func (p *Protocol) WriteStructBegin(name string) error { return nil }
func (p *Protocol) WriteStructEnd() error { return nil }
func (p *Protocol) WriteFieldEnd() error { return nil }
func (p *Protocol) WriteMapEnd() error { return nil }
func (p *Protocol) WriteListEnd() error { return nil }
func (p *Protocol) WriteSetEnd() error { return nil }

func (p *Protocol) WriteFieldBegin(name string, typeID thrift.TType, id int16) error {
	if err := p.WriteI8(int8(typeID)); err != nil {
		return err
	}
	return p.WriteI16(id)
}

func (p *Protocol) WriteFieldStop() error {
	return p.WriteI8(int8(thrift.STOP))
}

func (p *Protocol) WriteMapBegin(keyType, valueType thrift.TType, size int32) error {
	p.buf[0] = byte(keyType)
	p.buf[1] = byte(valueType)
	if err := p.write(p.buf[:2]); err != nil {
		return err
	}
	return p.WriteI32(size)
}

func (p *Protocol) WriteListBegin(elemType thrift.TType, size int32) error {
	if err := p.WriteI8(int8(elemType)); err != nil {
		return err
	}
	return p.WriteI32(size)
}

func (p *Protocol) WriteSetBegin(elemType thrift.TType, size int32) error {
	if err := p.WriteI8(int8(elemType)); err != nil {
		return err
	}
	return p.WriteI32(size)
}

func (p *Protocol) WriteBool(value bool) error {
	if value {
		return p.WriteI8(1)
	}
	return p.WriteI8(0)
}

func (p *Protocol) WriteI8(value int8) error {
	p.buf[0] = byte(value)
	return p.write(p.buf[:1])
}

func (p *Protocol) WriteI16(value int16) error {
	binary.BigEndian.PutUint16(p.buf[:2], uint16(value))
	return p.write(p.buf[:2])
}

func (p *Protocol) WriteI32(value int32) error {
	binary.BigEndian.PutUint32(p.buf[:4], uint32(value))
	return p.write(p.buf[:4])
}

func (p *Protocol) WriteI64(value int64) error {
	binary.BigEndian.PutUint64(p.buf[:8], uint64(value))
	return p.write(p.buf[:8])
}

func (p *Protocol) WriteDouble(value float64) error {
	return p.WriteI64(int64(math.Float64bits(value)))
}

func (p *Protocol) WriteString(value string) error {
	if err := p.WriteI32(int32(len(value))); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	return p.write([]byte(value))
}

func (p *Protocol) WriteBinary(value []byte) error {
	if err := p.WriteI32(int32(len(value))); err != nil {
		return err
	}
	if len(value) == 0 {
		return nil
	}
	return p.write(value)
}
