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
	"strings"

	"go.thrift-idl.org/thrift/syntax"
)

type Error struct {
	code     uint32
	message  string
	location syntax.Location
}

var _ error = (*Error)(nil)

func (err *Error) Error() string {
	if err.location.Path == "" {
		return fmt.Sprintf("E%d: %s", err.code, err.message)
	}
	return fmt.Sprintf("%s: E%d: %s", err.location, err.code, err.message)
}

func (err *Error) Code() uint32 {
	return err.code
}

func (err *Error) Message() string {
	return err.message
}

func (err *Error) Location() syntax.Location {
	return err.location
}

func errCircularLink(loc syntax.Location) *Error {
	return &Error{
		code:     5000,
		message:  "Circular link detected; file transitively includes itself",
		location: loc,
	}
}

func errUnknownInclude(path string, loc syntax.Location) *Error {
	return &Error{
		code:     5001,
		message:  fmt.Sprintf("Included file %q was not loaded", path),
		location: loc,
	}
}

func errIncludeFailed(path string, loc syntax.Location) *Error {
	return &Error{
		code:     5002,
		message:  fmt.Sprintf("Included file %q failed to link", path),
		location: loc,
	}
}

func errIncludePrefixConflict(prefix, path, prevPath string, loc syntax.Location) *Error {
	return &Error{
		code: 5003,
		message: fmt.Sprintf(
			"Include of %q conflicts with include of %q (both named '%s')",
			path, prevPath, prefix,
		),
		location: loc,
	}
}

func errDuplicateName(name string, loc, prevLoc syntax.Location) *Error {
	return &Error{
		code: 5004,
		message: fmt.Sprintf(
			"Duplicate declaration of '%s' (previously declared at %s)",
			name, prevLoc,
		),
		location: loc,
	}
}

func errUnresolvableTypedef(name string, loc syntax.Location) *Error {
	return &Error{
		code:     5005,
		message:  fmt.Sprintf("Unresolvable typedef '%s'", name),
		location: loc,
	}
}

func errFailedToResolve(name string, loc syntax.Location) *Error {
	return &Error{
		code:     5006,
		message:  fmt.Sprintf("Failed to resolve type '%s'", name),
		location: loc,
	}
}

func errDuplicateFieldID(prev, dup string, id int16, loc syntax.Location) *Error {
	return &Error{
		code: 5007,
		message: fmt.Sprintf(
			"Duplicate field IDs: %s and %s both have the same ID (%d)",
			prev, dup, id,
		),
		location: loc,
	}
}

func errDuplicateFieldName(owner, name string, loc syntax.Location) *Error {
	return &Error{
		code:     5008,
		message:  fmt.Sprintf("Duplicate field name '%s' in %s", name, owner),
		location: loc,
	}
}

func errUnionRequiredField(union, field string, loc syntax.Location) *Error {
	return &Error{
		code:     5009,
		message:  fmt.Sprintf("Union %s field '%s' cannot be required", union, field),
		location: loc,
	}
}

func errUnionMultipleDefaults(union string, loc syntax.Location) *Error {
	return &Error{
		code:     5010,
		message:  fmt.Sprintf("Union %s has more than one field with a default value", union),
		location: loc,
	}
}

func errCircularInheritance(chain []string, loc syntax.Location) *Error {
	return &Error{
		code:     5011,
		message:  "Circular inheritance detected: " + strings.Join(chain, " -> "),
		location: loc,
	}
}

func errBaseNotService(name string, loc syntax.Location) *Error {
	return &Error{
		code:     5012,
		message:  fmt.Sprintf("Base type '%s' is not a service", name),
		location: loc,
	}
}

func errDuplicateMethod(service, method string, loc syntax.Location) *Error {
	return &Error{
		code:     5013,
		message:  fmt.Sprintf("Duplicate method '%s' in service %s", method, service),
		location: loc,
	}
}

func errMethodOverridesBase(service, method, base string, loc syntax.Location) *Error {
	return &Error{
		code: 5014,
		message: fmt.Sprintf(
			"Method '%s' in service %s conflicts with method in base service %s",
			method, service, base,
		),
		location: loc,
	}
}

func errOnewayReturn(method string, loc syntax.Location) *Error {
	return &Error{
		code:     5015,
		message:  fmt.Sprintf("Oneway method '%s' must return void", method),
		location: loc,
	}
}

func errOnewayThrows(method string, loc syntax.Location) *Error {
	return &Error{
		code:     5016,
		message:  fmt.Sprintf("Oneway method '%s' cannot declare exceptions", method),
		location: loc,
	}
}

func errThrowsNotException(method, field, typeName string, loc syntax.Location) *Error {
	return &Error{
		code: 5017,
		message: fmt.Sprintf(
			"Throws field '%s' of method '%s' has non-exception type %s",
			field, method, typeName,
		),
		location: loc,
	}
}

func errConstTypeMismatch(typeName string, value syntax.ConstValue) *Error {
	return &Error{
		code: 5018,
		message: fmt.Sprintf(
			"Expected a value of type %s, got %s",
			typeName, value,
		),
		location: value.Location(),
	}
}

func errConstOutOfRange(typeName string, value *syntax.IntValue) *Error {
	return &Error{
		code: 5019,
		message: fmt.Sprintf(
			"value '%d' out of range for type %s",
			value.Value, typeName,
		),
		location: value.Location(),
	}
}

func errNotEnumMember(member, enum string, loc syntax.Location) *Error {
	return &Error{
		code:     5020,
		message:  fmt.Sprintf("'%s' is not a member of enum type %s", member, enum),
		location: loc,
	}
}

func errNotStructField(field, strct string, loc syntax.Location) *Error {
	return &Error{
		code:     5021,
		message:  fmt.Sprintf("'%s' is not a field of %s", field, strct),
		location: loc,
	}
}

func errDuplicateEnumMember(enum, member string, loc syntax.Location) *Error {
	return &Error{
		code:     5022,
		message:  fmt.Sprintf("Duplicate member '%s' in enum %s", member, enum),
		location: loc,
	}
}

func errDuplicateEnumValue(enum, member, prev string, value int32, loc syntax.Location) *Error {
	return &Error{
		code: 5023,
		message: fmt.Sprintf(
			"Enum %s members %s and %s have the same value (%d)",
			enum, prev, member, value,
		),
		location: loc,
	}
}

func errNotAType(name string, loc syntax.Location) *Error {
	return &Error{
		code:     5024,
		message:  fmt.Sprintf("'%s' is a service and cannot be used as a value type", name),
		location: loc,
	}
}
