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

	"go.thrift-idl.org/thrift/syntax"
)

func ParseOrDie(t *testing.T, src string, opts ...syntax.ParseOption) *syntax.Document {
	t.Helper()
	doc, err := syntax.Parse([]byte(src), opts...)
	if err != nil {
		t.Fatalf("syntax.Parse(%q): %v", src, err)
	}
	return doc
}

// ExpectSyntaxError checks that err is a *syntax.Error with the given code
// and span.
func ExpectSyntaxError(t *testing.T, err error, code uint32, span syntax.Span) {
	t.Helper()
	if err == nil {
		t.Fatal("Expected (err != nil), got: nil")
	}
	synErr, ok := err.(*syntax.Error)
	if !ok {
		t.Fatalf("Expected *syntax.Error, got: %T (%v)", err, err)
	}
	if synErr.Code() != code {
		t.Errorf("Expected code %d, got: %d (%s)", code, synErr.Code(), synErr.Message())
	}
	if synErr.Span() != span {
		t.Errorf("Expected span %v, got: %v", span, synErr.Span())
	}
}
