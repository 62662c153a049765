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
	"testing"

	"go.thrift-idl.org/thrift/linker"
	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/syntax"
)

// LinkOrDie parses and links a single self-contained source file.
func LinkOrDie(t *testing.T, src string) *schema.Schema {
	t.Helper()
	doc := ParseOrDie(t, src, syntax.WithLocation("/src", "test.thrift"))
	env := linker.NewEnvironment()
	result := env.Link(env.AddProgram(doc))
	for _, err := range result.Errors {
		t.Errorf("link error: %v", err)
	}
	if result.Schema == nil {
		t.FailNow()
	}
	return result.Schema
}

// LookupOrDie finds a named type in sch.
func LookupOrDie(t *testing.T, sch *schema.Schema, name string) schema.Type {
	t.Helper()
	typ, ok := sch.LookupType(name)
	if !ok {
		t.Fatalf("type %q not found", name)
	}
	return typ
}
