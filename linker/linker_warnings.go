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

package linker

import (
	"fmt"

	"go.thrift-idl.org/thrift/syntax"
)

type Warning struct {
	code     uint32
	message  string
	location syntax.Location
}

func (w *Warning) String() string {
	if w.location.Path == "" {
		return fmt.Sprintf("W%d: %s", w.code, w.message)
	}
	return fmt.Sprintf("%s: W%d: %s", w.location, w.code, w.message)
}

func (w *Warning) Code() uint32 {
	return w.code
}

func (w *Warning) Message() string {
	return w.message
}

func (w *Warning) Location() syntax.Location {
	return w.location
}

func warnImplicitFieldID(name string, id int16, loc syntax.Location) *Warning {
	return &Warning{
		code:     6000,
		message:  fmt.Sprintf("Field '%s' has no explicit ID; assigned %d", name, id),
		location: loc,
	}
}

func warnUnusedInclude(path string, loc syntax.Location) *Warning {
	return &Warning{
		code:     6001,
		message:  fmt.Sprintf("Include %q is unused", path),
		location: loc,
	}
}
