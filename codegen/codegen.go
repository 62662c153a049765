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

// Package codegen defines the messages exchanged with WebAssembly code
// generator plugins, and runs plugins with wazero.
//
// A plugin exports three functions:
//
//	thrift_codegen_allocate(len u32) -> ptr u32
//	thrift_codegen_deallocate(ptr u32)
//	thrift_codegen_generate(request_ptr u32, response_ptr_ptr u32) -> u8
//
// The request and response are JSON documents preceded by their length as
// a 4-byte little-endian integer. The host allocates the request buffer
// and a 4-byte slot, then calls generate. The plugin stores the address of
// its response in the slot and returns 0 on success. Deallocation is
// optional.
package codegen

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"go.thrift-idl.org/thrift/schemadump"
)

const (
	AllocateExport   = "thrift_codegen_allocate"
	DeallocateExport = "thrift_codegen_deallocate"
	GenerateExport   = "thrift_codegen_generate"
)

// PluginName returns the file name of the plugin for language.
func PluginName(language string) string {
	return fmt.Sprintf("thrift-codegen-%s.wasm", language)
}

type Request struct {
	Schema  *schemadump.Document `json:"schema"`
	Options map[string]string    `json:"options,omitempty"`
}

type Response struct {
	Error string  `json:"error,omitempty"`
	Files []*File `json:"files,omitempty"`
}

// File is one generated output. Path is relative to the output directory,
// split into components.
type File struct {
	Path    []string `json:"path"`
	Content []byte   `json:"content"`
}

// Validate checks that the path stays inside the output directory.
func (f *File) Validate() error {
	parts := f.Path
	if len(parts) == 0 {
		return fmt.Errorf("Invalid output path %#v: empty", parts)
	}
	for _, part := range parts {
		if part == "" || part == "." || part == ".." {
			return fmt.Errorf("Invalid output path %#v: bad path component %q", parts, part)
		}
		if part[0] == '/' || filepath.IsAbs(part) {
			return fmt.Errorf("Invalid output path %#v: absolute path component %q", parts, part)
		}
		if strings.ContainsAny(part, `/\`) {
			return fmt.Errorf("Invalid output path %#v: component %q contains a path separator", parts, part)
		}
	}
	return nil
}

// Join returns the file's path under dir.
func (f *File) Join(dir string) string {
	return filepath.Join(append([]string{dir}, f.Path...)...)
}

// Marshal encodes v as a length-prefixed JSON message.
func Marshal(v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if uint64(len(body)) > math.MaxUint32-4 {
		return nil, fmt.Errorf("message too large (%d bytes)", len(body))
	}
	buf := make([]byte, 4, 4+len(body))
	binary.LittleEndian.PutUint32(buf, uint32(len(body)))
	return append(buf, body...), nil
}

// Unmarshal decodes a length-prefixed JSON message into v. Bytes after the
// message are ignored.
func Unmarshal(buf []byte, v any) error {
	if len(buf) < 4 {
		return fmt.Errorf("message truncated: missing length")
	}
	size := binary.LittleEndian.Uint32(buf)
	if uint64(size) > uint64(len(buf)-4) {
		return fmt.Errorf("message truncated: length %d, have %d bytes", size, len(buf)-4)
	}
	return json.Unmarshal(buf[4:4+size], v)
}
