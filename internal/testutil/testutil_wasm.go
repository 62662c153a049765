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

package testutil

import (
	"encoding/binary"
)

// CodegenPlugin assembles a WebAssembly codegen plugin whose generate
// function ignores the request, stores the length-prefixed response
// and returns rc. Allocation is a bump allocator starting at 1024.
func CodegenPlugin(rc uint8, response string) []byte {
	payload := binary.LittleEndian.AppendUint32(nil, uint32(len(response)))
	payload = append(payload, response...)

	const (
		i32     = 0x7f
		funcTyp = 0x60
		end     = 0x0b
	)
	types := vec(
		[]byte{funcTyp, 1, i32, 1, i32},
		[]byte{funcTyp, 2, i32, i32, 1, i32},
	)
	funcs := vec([]byte{0}, []byte{1})
	memory := vec([]byte{0x00, 0x01})
	globals := vec([]byte{i32, 0x01, 0x41, 0x80, 0x08, end})
	exports := vec(
		append(wasmName("memory"), 0x02, 0),
		append(wasmName("thrift_codegen_allocate"), 0x00, 0),
		append(wasmName("thrift_codegen_generate"), 0x00, 1),
	)
	allocate := []byte{
		0,          // locals
		0x23, 0x00, // global.get 0
		0x23, 0x00, // global.get 0
		0x20, 0x00, // local.get 0
		0x6a,       // i32.add
		0x24, 0x00, // global.set 0
		end,
	}
	generate := []byte{
		0,
		0x20, 0x01,       // local.get 1
		0x41, 0x10,       // i32.const 16
		0x36, 0x02, 0x00, // i32.store
		0x41, rc & 0x3f,  // i32.const rc
		end,
	}
	code := vec(sized(allocate), sized(generate))
	data := vec(append([]byte{0x00, 0x41, 0x10, end}, sized(payload)...))

	module := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	module = append(module, section(1, types)...)
	module = append(module, section(3, funcs)...)
	module = append(module, section(5, memory)...)
	module = append(module, section(6, globals)...)
	module = append(module, section(7, exports)...)
	module = append(module, section(10, code)...)
	module = append(module, section(11, data)...)
	return module
}

func uleb(n uint32) []byte {
	var out []byte
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			return append(out, b)
		}
		out = append(out, b|0x80)
	}
}

func sized(b []byte) []byte {
	return append(uleb(uint32(len(b))), b...)
}

func wasmName(s string) []byte {
	return sized([]byte(s))
}

func vec(items ...[]byte) []byte {
	out := uleb(uint32(len(items)))
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func section(id byte, content []byte) []byte {
	return append([]byte{id}, sized(content)...)
}
