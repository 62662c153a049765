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

package linker_test

import (
	"testing"

	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/linker"
	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/syntax"
)

type testFile struct {
	path string
	src  string
}

// linkFiles parses every file, connects includes by path, and links the
// first file.
func linkFiles(t *testing.T, files ...testFile) (*linker.Environment, linker.LinkResult) {
	t.Helper()
	env := linker.NewEnvironment()
	programs := make(map[string]*linker.Program)
	var root *linker.Program
	for _, file := range files {
		doc := testutil.ParseOrDie(t, file.src, syntax.WithLocation("/src", file.path))
		program := env.AddProgram(doc)
		programs[file.path] = program
		if root == nil {
			root = program
		}
	}
	for _, program := range programs {
		for _, include := range program.Document().Includes {
			if included, ok := programs[include.Path]; ok {
				program.AddInclude(include.Path, included)
			}
		}
	}
	return env, env.Link(root)
}

func linkOK(t *testing.T, files ...testFile) linker.LinkResult {
	t.Helper()
	_, result := linkFiles(t, files...)
	for _, err := range result.Errors {
		testutil.ExpectNoError(t, err)
	}
	if result.Schema == nil {
		t.FailNow()
	}
	return result
}

type expectedError struct {
	code    uint32
	message string
}

func expectErrors(t *testing.T, result linker.LinkResult, expect ...expectedError) {
	t.Helper()
	if result.Schema != nil {
		t.Error("Expected no schema from a failed link")
	}
	if len(result.Errors) != len(expect) {
		for _, err := range result.Errors {
			t.Logf("got error: %v", err)
		}
		t.Fatalf("Expected %d errors, got %d", len(expect), len(result.Errors))
	}
	for ii, err := range result.Errors {
		testutil.ExpectEq(t, expect[ii].code, err.Code())
		if expect[ii].message != "" {
			testutil.ExpectEq(t, expect[ii].message, err.Message())
		}
	}
}

func TestTypedefChain(t *testing.T) {
	result := linkOK(t, testFile{"main.thrift", `
typedef B A
typedef C B
typedef i32 C
struct S { 1: A a }
`})
	sch := result.Schema
	testutil.ExpectEq(t, 3, len(sch.Typedefs))
	testutil.ExpectEq(t, "A", sch.Typedefs[0].Name)

	field := sch.Structs[0].Fields[0]
	testutil.ExpectEq(t, "A", field.Type.Name())
	testutil.ExpectTrue(t, schema.IsTypedef(field.Type))
	testutil.ExpectTrue(t, schema.Equal(schema.I32, field.Type.TrueType()))
}

func TestTypedefCycle(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
typedef B A
typedef A B
typedef i32 C
`})
	expectErrors(t, result,
		expectedError{5005, "Unresolvable typedef 'A'"},
		expectedError{5005, "Unresolvable typedef 'B'"},
	)
}

func TestTypedefUnknownName(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `typedef Missing A`})
	expectErrors(t, result, expectedError{5005, "Unresolvable typedef 'A'"})
}

func TestContainerTypes(t *testing.T) {
	result := linkOK(t, testFile{"main.thrift", `
struct S {
	1: list<i32> a
	2: map<string, set<i64>> b
	3: list<i32> (python.immutable = "") c
}
`})
	fields := result.Schema.Structs[0].Fields
	testutil.ExpectEq(t, "list<i32>", fields[0].Type.Name())
	testutil.ExpectEq(t, "map<string,set<i64>>", fields[1].Type.Name())
	testutil.ExpectTrue(t, schema.IsMap(fields[1].Type))

	testutil.ExpectTrue(t, schema.Equal(fields[0].Type, fields[2].Type))
	testutil.ExpectEq(t, 0, len(fields[0].Type.Annotations()))
	testutil.ExpectEq(t, "", fields[2].Type.Annotations()["python.immutable"])
	testutil.ExpectEq(t, 1, len(fields[2].Type.Annotations()))
}

func TestIncludes(t *testing.T) {
	result := linkOK(t,
		testFile{"main.thrift", `
include "shared.thrift"
struct S { 1: shared.Tag tag }
const i32 TOTAL = shared.LIMIT
const shared.Kind KIND = shared.Kind.B
`},
		testFile{"shared.thrift", `
struct Tag { 1: string name }
const i32 LIMIT = 10
enum Kind { A, B }
`},
	)
	testutil.ExpectEq(t, 0, len(result.Warnings))

	sch := result.Schema
	testutil.ExpectEq(t, 2, len(sch.Structs))
	testutil.ExpectEq(t, "Tag", sch.Structs[0].Name)
	testutil.ExpectEq(t, "S", sch.Structs[1].Name)

	tagType, ok := sch.LookupType("shared.Tag")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectTrue(t, schema.Equal(tagType, sch.Structs[1].Fields[0].Type))
}

func TestIncludeNotTransitive(t *testing.T) {
	_, result := linkFiles(t,
		testFile{"main.thrift", `
include "a.thrift"
struct S { 1: a.b.T t }
`},
		testFile{"a.thrift", `
include "b.thrift"
typedef b.T AT
`},
		testFile{"b.thrift", `struct T {}`},
	)
	expectErrors(t, result, expectedError{5006, "Failed to resolve type 'a.b.T'"})
}

func TestCircularInclude(t *testing.T) {
	env, result := linkFiles(t,
		testFile{"a.thrift", `
include "b.thrift"
struct A {}
`},
		testFile{"b.thrift", `
include "a.thrift"
struct B {}
`},
	)
	expectErrors(t, result, expectedError{code: 5000})
	testutil.ExpectEq(t, "/src/a.thrift", result.Errors[0].Location().File())
	testutil.ExpectFalse(t, env.Program("/src/a.thrift").Linked())
	testutil.ExpectFalse(t, env.Program("/src/b.thrift").Linked())
}

func TestUnknownInclude(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `include "missing.thrift"`})
	expectErrors(t, result, expectedError{code: 5001})
}

func TestIncludeFailedEarlier(t *testing.T) {
	env := linker.NewEnvironment()
	bad := env.AddProgram(testutil.ParseOrDie(
		t, `typedef Missing M`,
		syntax.WithLocation("/src", "bad.thrift"),
	))
	main := env.AddProgram(testutil.ParseOrDie(
		t, `include "bad.thrift"`,
		syntax.WithLocation("/src", "main.thrift"),
	))
	main.AddInclude("bad.thrift", bad)

	first := env.Link(bad)
	expectErrors(t, first, expectedError{code: 5005})

	second := env.Link(main)
	expectErrors(t, second, expectedError{code: 5002})
	testutil.ExpectEq(t, 2, len(env.Errors()))
}

func TestLinkTwice(t *testing.T) {
	env := linker.NewEnvironment()
	program := env.AddProgram(testutil.ParseOrDie(
		t, `struct S { 1: i32 x }`,
		syntax.WithLocation("/src", "main.thrift"),
	))
	first := env.Link(program)
	testutil.ExpectTrue(t, first.Schema != nil)
	second := env.Link(program)
	testutil.ExpectTrue(t, second.Schema != nil)
	testutil.ExpectEq(t, first.Schema.Structs[0], second.Schema.Structs[0])
	testutil.ExpectEq(t, 1, len(env.Programs()))
}

func TestWarnings(t *testing.T) {
	result := linkOK(t,
		testFile{"main.thrift", `
include "shared.thrift"
struct S {
	1: i32 a
	string b
}
`},
		testFile{"shared.thrift", `struct Unused {}`},
	)
	warnings := result.Warnings
	if len(warnings) != 2 {
		t.Fatalf("Expected 2 warnings, got %d", len(warnings))
	}
	testutil.ExpectEq(t, 6000, warnings[0].Code())
	testutil.ExpectEq(t, "Field 'b' has no explicit ID; assigned 2", warnings[0].Message())
	testutil.ExpectEq(t, 6001, warnings[1].Code())
	testutil.ExpectEq(t, `Include "shared.thrift" is unused`, warnings[1].Message())

	testutil.ExpectEq(t, int16(2), result.Schema.Structs[0].Fields[1].ID)
}

func TestDuplicateNames(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
struct S {}
enum S { A }
`})
	expectErrors(t, result, expectedError{code: 5004})
}

func TestDuplicateFieldID(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
struct S {
	1: i32 a
	1: string b
}
struct T { 1: S s }
`})
	expectErrors(t, result, expectedError{
		5007,
		"Duplicate field IDs: a and b both have the same ID (1)",
	})
}

func TestDuplicateFieldName(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
struct S {
	1: i32 a
	2: string a
}
`})
	expectErrors(t, result, expectedError{code: 5008})
}

func TestUnionConstraints(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
union U {
	1: required i32 a
	2: i32 b = 1
	3: i32 c = 2
}
`})
	expectErrors(t, result,
		expectedError{code: 5009},
		expectedError{code: 5010},
	)
}

func TestServiceInheritance(t *testing.T) {
	result := linkOK(t, testFile{"main.thrift", `
service Child extends Base {
	void pong()
}
service Base {
	void ping()
}
`})
	services := result.Schema.Services
	testutil.ExpectEq(t, "Child", services[0].Name)
	testutil.ExpectEq(t, services[1], services[0].Base())
	testutil.ExpectTrue(t, services[1].Base() == nil)
}

func TestCircularInheritance(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
service A extends B {}
service B extends A {}
service C extends A {}
`})
	expectErrors(t, result, expectedError{
		5011,
		"Circular inheritance detected: A -> B -> A",
	})
}

func TestServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   uint32
		errMsg string
	}{
		{
			name:   "base not a service",
			src:    "struct S {}\nservice A extends S {}",
			code:   5012,
			errMsg: "Base type 'S' is not a service",
		},
		{
			name:   "unknown base",
			src:    "service A extends Missing {}",
			code:   5006,
			errMsg: "Failed to resolve type 'Missing'",
		},
		{
			name: "duplicate method",
			src:  "service A {\n\tvoid f()\n\tvoid f()\n}",
			code: 5013,
		},
		{
			name: "override base method",
			src:  "service Base { void f() }\nservice A extends Base { void f() }",
			code: 5014,
		},
		{
			name: "oneway returns value",
			src:  "service A { oneway i32 f() }",
			code: 5015,
		},
		{
			name: "oneway throws",
			src:  "exception E {}\nservice A { oneway void f() throws (1: E e) }",
			code: 5016,
		},
		{
			name: "throws non-exception",
			src:  "struct S {}\nservice A { void f() throws (1: S s) }",
			code: 5017,
		},
		{
			name: "service as field type",
			src:  "service A {}\nstruct S { 1: A a }",
			code: 5024,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, result := linkFiles(t, testFile{"main.thrift", test.src})
			expectErrors(t, result, expectedError{test.code, test.errMsg})
		})
	}
}

func TestOverrideReportsDerived(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", `
service Base { void f() }
service Mid extends Base {}
service Leaf extends Mid { void f() }
`})
	expectErrors(t, result, expectedError{code: 5014})
	testutil.ExpectEq(t, 4, result.Errors[0].Location().Line)
}

func TestConstValues(t *testing.T) {
	result := linkOK(t, testFile{"main.thrift", `
enum Color { RED, GREEN = 5 }
struct Point { 1: i32 x, 2: i32 y }
typedef i64 Timestamp

const bool FLAG = true
const bool BIT = 1
const i8 SMALL = -128
const i16 MEDIUM = 32767
const double RATIO = 1
const string NAME = "n"
const Timestamp EPOCH = 0
const Color C1 = Color.GREEN
const Color C2 = RED
const Color C3 = 5
const Color C4 = main.Color.RED
const Color C5 = C1
const list<Color> COLORS = [RED, C1]
const map<string, list<i32>> NESTED = {"a": [1, 2], "b": []}
const Point ORIGIN = {"x": 0, "y": 0}
const Timestamp LATER = EPOCH
`})
	testutil.ExpectEq(t, 16, len(result.Schema.Constants))
}

func TestConstTypedefAlias(t *testing.T) {
	result := linkOK(t, testFile{"main.thrift", `
typedef i64 Timestamp
typedef i32 Count
enum E { A, B }
typedef E E2

const Timestamp T0 = 0
const i64 START = T0
const Count N = 1
const list<i32> COUNTS = [N, 2]
const map<i32, i64> TIMES = {N: T0}
const E2 FIRST = E.A
const E SAME = FIRST

struct S {
  1: i64 t = T0
  2: Timestamp u = START
}
`})
	testutil.ExpectEq(t, 7, len(result.Schema.Constants))
}

func TestConstErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		code   uint32
		errMsg string
	}{
		{
			name:   "i16 range",
			src:    "const i16 X = 70000",
			code:   5019,
			errMsg: "value '70000' out of range for type i16",
		},
		{
			name:   "i8 range",
			src:    "const i8 X = -129",
			code:   5019,
			errMsg: "value '-129' out of range for type i8",
		},
		{
			name:   "typedef range",
			src:    "typedef byte Small\nconst Small X = 200",
			code:   5019,
			errMsg: "value '200' out of range for type byte",
		},
		{
			name:   "not an enum member",
			src:    "enum Color { RED, GREEN }\nconst Color X = Color.BLUE",
			code:   5020,
			errMsg: "'BLUE' is not a member of enum type Color",
		},
		{
			name:   "enum value",
			src:    "enum Color { RED, GREEN }\nconst Color X = 7",
			code:   5020,
			errMsg: "'7' is not a member of enum type Color",
		},
		{
			name:   "wrong kind",
			src:    "const string X = 1",
			code:   5018,
			errMsg: "Expected a value of type string, got 1",
		},
		{
			name: "bool from int",
			src:  "const bool X = 2",
			code: 5018,
		},
		{
			name: "list element",
			src:  `const list<i32> X = [1, "two"]`,
			code: 5018,
		},
		{
			name: "map value",
			src:  `const map<string, i16> X = {"a": 100000}`,
			code: 5019,
		},
		{
			name: "unknown struct field",
			src:  "struct P { 1: i32 x }\nconst P X = {\"z\": 1}",
			code: 5021,
		},
		{
			name: "field default",
			src:  "struct P { 1: i16 x = 40000 }",
			code: 5019,
		},
		{
			name:   "typedef container constant",
			src:    "typedef list<i32> Counts\nconst Counts N = [1]\nconst list<i32> X = N",
			code:   5018,
			errMsg: "Expected a value of type list<i32>, got N",
		},
		{
			name: "scalar constant of another type",
			src:  "typedef i32 Count\nconst Count N = 1\nconst string X = N",
			code: 5018,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, result := linkFiles(t, testFile{"main.thrift", test.src})
			expectErrors(t, result, expectedError{test.code, test.errMsg})
		})
	}
}

func TestErrorLocation(t *testing.T) {
	_, result := linkFiles(t, testFile{"main.thrift", "struct S {\n\t1: Missing m\n}"})
	expectErrors(t, result, expectedError{code: 5006})
	testutil.ExpectEq(
		t,
		"/src/main.thrift:2:5: E5006: Failed to resolve type 'Missing'",
		result.Errors[0].Error(),
	)
}

func TestProgramNotLinked(t *testing.T) {
	env := linker.NewEnvironment()
	program := env.AddProgram(testutil.ParseOrDie(
		t, `struct S {}`,
		syntax.WithLocation("/src", "main.thrift"),
	))
	defer func() {
		if recover() == nil {
			t.Error("Expected panic reading an unlinked program")
		}
	}()
	program.Structs()
}
