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

package thriftsimplejson

import (
	"go.thrift-idl.org/thrift"
)

func errWriteOnly() error {
	return thrift.NewProtocolError(
		thrift.NotImplemented,
		"Simple JSON protocol is write-only",
	)
}

func (p *Protocol) ReadMessageBegin() (thrift.MessageHeader, error) {
	return thrift.MessageHeader{}, errWriteOnly()
}

func (p *Protocol) ReadMessageEnd() error { return errWriteOnly() }

func (p *Protocol) ReadStructBegin() (thrift.StructHeader, error) {
	return thrift.StructHeader{}, errWriteOnly()
}

func (p *Protocol) ReadStructEnd() error { return errWriteOnly() }

func (p *Protocol) ReadFieldBegin() (thrift.FieldHeader, error) {
	return thrift.FieldHeader{}, errWriteOnly()
}

func (p *Protocol) ReadFieldEnd() error { return errWriteOnly() }

func (p *Protocol) ReadMapBegin() (thrift.MapHeader, error) {
	return thrift.MapHeader{}, errWriteOnly()
}

func (p *Protocol) ReadMapEnd() error { return errWriteOnly() }

func (p *Protocol) ReadListBegin() (thrift.ListHeader, error) {
	return thrift.ListHeader{}, errWriteOnly()
}

func (p *Protocol) ReadListEnd() error { return errWriteOnly() }

func (p *Protocol) ReadSetBegin() (thrift.SetHeader, error) {
	return thrift.SetHeader{}, errWriteOnly()
}

func (p *Protocol) ReadSetEnd() error { return errWriteOnly() }
func (p *Protocol) ReadBool() (bool, error) { return false, errWriteOnly() }
func (p *Protocol) ReadI8() (int8, error) { return 0, errWriteOnly() }
func (p *Protocol) ReadI16() (int16, error) { return 0, errWriteOnly() }
func (p *Protocol) ReadI32() (int32, error) { return 0, errWriteOnly() }
func (p *Protocol) ReadI64() (int64, error) { return 0, errWriteOnly() }
func (p *Protocol) ReadDouble() (float64, error) { return 0, errWriteOnly() }
func (p *Protocol) ReadString() (string, error) { return "", errWriteOnly() }
func (p *Protocol) ReadBinary() ([]byte, error) { return nil, errWriteOnly() }
