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

package main

import (
	"encoding/binary"
	"strings"
	"testing"
	"unsafe"

	"github.com/spf13/afero"

	"go.thrift-idl.org/thrift/codegen"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/loader"
	"go.thrift-idl.org/thrift/schemadump"
)

const mainSchema = `
include "shared.thrift"

/** A point on the canvas. */
struct Point {
	1: i32 x
	2: required shared.Label label
}

struct Old {
	1: i32 unused
} (deprecated)

service Canvas {
	/** Draws a point. */
	void draw(1: Point point) throws (1: shared.Oops oops)
	oneway void clear()
}
`

const sharedSchema = `
typedef string Label

exception Oops {
	1: string message
}
`

func expectContains(t *testing.T, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected output to contain %q, got:\n%s", substr, s)
	}
}

func loadDocument(t *testing.T) *schemadump.Document {
	t.Helper()
	fs := afero.NewMemMapFs()
	testutil.AssertNoError(t, afero.WriteFile(fs, "/src/main.thrift", []byte(mainSchema), 0o644))
	testutil.AssertNoError(t, afero.WriteFile(fs, "/src/shared.thrift", []byte(sharedSchema), 0o644))
	result, err := loader.New(loader.WithFs(fs)).Load("/src/main.thrift")
	testutil.AssertNoError(t, err)
	for _, err := range result.Errors {
		t.Fatal(err)
	}
	return schemadump.Build(result.Schema)
}

func TestGenerate(t *testing.T) {
	resp, err := generate(&codegen.Request{Schema: loadDocument(t)})
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 2, len(resp.Files))
	testutil.ExpectSliceEq(t, []string{"main.md"}, resp.Files[0].Path)
	testutil.ExpectSliceEq(t, []string{"shared.md"}, resp.Files[1].Path)

	testutil.ExpectNoDiff(t, `# shared

## Typedefs

| Name | Type |
|---|---|
| <a id="label"></a>`+"`Label`"+` | `+"`string`"+` |

## Exceptions

<a id="oops"></a>

### exception `+"`Oops`"+`

| ID | Name | Type | Requiredness | Default | Description |
|---|---|---|---|---|---|
| 1 | `+"`message`"+` | `+"`string`"+` | default |  |  |
`, string(resp.Files[1].Content))

	out := string(resp.Files[0].Content)
	for _, want := range []string{
		"### struct `Point`\n\nA point on the canvas.\n",
		"| 2 | `label` | [`shared.Label`](shared.md#label) | required |  |  |\n",
		"### struct `Old`\n\n**Deprecated.**\n",
		"#### `void draw(1: Point point)`\n\nDraws a point.\n",
		"- [`shared.Oops`](shared.md#oops) `oops`\n",
		"#### `oneway void clear()`\n",
	} {
		expectContains(t, out, want)
	}
}

func TestGenerate_HideDeprecated(t *testing.T) {
	resp, err := generate(&codegen.Request{
		Schema:  loadDocument(t),
		Options: map[string]string{"hide-deprecated": "true"},
	})
	testutil.AssertNoError(t, err)
	out := string(resp.Files[0].Content)
	expectContains(t, out, "struct `Point`")
	testutil.ExpectFalse(t, strings.Contains(out, "`Old`"))
}

func TestGenerate_Errors(t *testing.T) {
	doc := loadDocument(t)
	tests := []struct {
		req  *codegen.Request
		want string
	}{
		{&codegen.Request{}, "request has no schema"},
		{&codegen.Request{Schema: &schemadump.Document{}}, "schema declares nothing to document"},
		{
			&codegen.Request{Schema: doc, Options: map[string]string{"style": "fancy"}},
			`unsupported option "style"`,
		},
		{
			&codegen.Request{Schema: doc, Options: map[string]string{"hide-deprecated": "maybe"}},
			`option "hide-deprecated": `,
		},
	}
	for _, test := range tests {
		_, err := generate(test.req)
		testutil.AssertError(t, err)
		expectContains(t, err.Error(), test.want)
	}
}

func callPlugin(t *testing.T, req *codegen.Request) (uint8, *codegen.Response) {
	t.Helper()
	requestBuf, err := codegen.Marshal(req)
	testutil.AssertNoError(t, err)
	requestPtr := thriftCodegenAllocate(uint32(len(requestBuf)))
	copy(unsafe.Slice(requestPtr, len(requestBuf)), requestBuf)
	defer thriftCodegenDeallocate(requestPtr)

	var responsePtr *uint8
	rc := thriftCodegenGenerate(requestPtr, &responsePtr)
	defer thriftCodegenDeallocate(responsePtr)

	responseLen := binary.LittleEndian.Uint32(unsafe.Slice(responsePtr, 4))
	response := &codegen.Response{}
	testutil.AssertNoError(t, codegen.Unmarshal(unsafe.Slice(responsePtr, 4+int(responseLen)), response))
	return rc, response
}

func TestExports(t *testing.T) {
	rc, resp := callPlugin(t, &codegen.Request{Schema: loadDocument(t)})
	testutil.ExpectEq(t, uint8(0), rc)
	testutil.ExpectEq(t, "", resp.Error)
	testutil.ExpectEq(t, 2, len(resp.Files))

	rc, resp = callPlugin(t, &codegen.Request{
		Schema:  loadDocument(t),
		Options: map[string]string{"style": "fancy"},
	})
	testutil.ExpectEq(t, uint8(1), rc)
	testutil.ExpectEq(t, `unsupported option "style"`, resp.Error)
	testutil.ExpectEq(t, 0, len(buffers))
}
