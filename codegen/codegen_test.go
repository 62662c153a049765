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

package codegen_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"go.thrift-idl.org/thrift/codegen"
	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/schemadump"
)

func testRequest(t *testing.T) *codegen.Request {
	sch := testutil.LinkOrDie(t, `
struct Point {
	1: i32 x
	2: i32 y
}
`)
	return &codegen.Request{
		Schema:  schemadump.Build(sch),
		Options: map[string]string{"package": "geo"},
	}
}

func TestMarshal(t *testing.T) {
	buf, err := codegen.Marshal(&codegen.File{
		Path:    []string{"a", "b.txt"},
		Content: []byte("hi"),
	})
	testutil.AssertNoError(t, err)
	body := `{"path":["a","b.txt"],"content":"aGk="}`
	testutil.ExpectBytesEq(t, append([]byte{byte(len(body)), 0, 0, 0}, body...), buf)

	var file codegen.File
	testutil.AssertNoError(t, codegen.Unmarshal(append(buf, 0xff), &file))
	testutil.ExpectSliceEq(t, []string{"a", "b.txt"}, file.Path)
	testutil.ExpectBytesEq(t, []byte("hi"), file.Content)
}

func TestUnmarshal_Truncated(t *testing.T) {
	var file codegen.File
	err := codegen.Unmarshal([]byte{1, 0}, &file)
	testutil.ExpectMatch(t, `missing length`, err.Error())

	err = codegen.Unmarshal([]byte{9, 0, 0, 0, '{', '}'}, &file)
	testutil.ExpectMatch(t, `length 9, have 2 bytes`, err.Error())
}

func TestRequestRoundTrip(t *testing.T) {
	req := testRequest(t)
	buf, err := codegen.Marshal(req)
	testutil.AssertNoError(t, err)

	var decoded codegen.Request
	testutil.AssertNoError(t, codegen.Unmarshal(buf, &decoded))
	testutil.ExpectEq(t, "geo", decoded.Options["package"])
	testutil.ExpectEq(t, 1, len(decoded.Schema.Structs))
	testutil.ExpectEq(t, "Point", decoded.Schema.Structs[0].Name)
}

func TestFileValidate(t *testing.T) {
	tests := []struct {
		path []string
		err  string
	}{
		{[]string{"gen", "point.txt"}, ""},
		{nil, `empty`},
		{[]string{"gen", ".."}, `bad path component ".."`},
		{[]string{"", "x"}, `bad path component ""`},
		{[]string{"/etc"}, `absolute path component "/etc"`},
		{[]string{"a/b"}, `contains a path separator`},
		{[]string{`a\b`}, `contains a path separator`},
	}
	for _, test := range tests {
		file := &codegen.File{Path: test.path}
		err := file.Validate()
		if test.err == "" {
			testutil.ExpectNoError(t, err)
			continue
		}
		testutil.AssertError(t, err)
		testutil.ExpectMatch(t, test.err, err.Error())
	}
}

func TestFileJoin(t *testing.T) {
	file := &codegen.File{Path: []string{"gen", "point.txt"}}
	testutil.ExpectEq(t, filepath.Join("out", "gen", "point.txt"), file.Join("out"))
}

func TestRun(t *testing.T) {
	plugin := testutil.CodegenPlugin(0, `{"files":[{"path":["gen","out.txt"],"content":"aGk="}]}`)
	resp, err := codegen.Run(context.Background(), plugin, testRequest(t))
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 1, len(resp.Files))
	testutil.ExpectSliceEq(t, []string{"gen", "out.txt"}, resp.Files[0].Path)
	testutil.ExpectBytesEq(t, []byte("hi"), resp.Files[0].Content)
}

func TestRun_PluginError(t *testing.T) {
	plugin := testutil.CodegenPlugin(1, `{"error":"unsupported option \"package\"\n"}`)
	_, err := codegen.Run(context.Background(), plugin, testRequest(t))
	var pluginErr *codegen.PluginError
	testutil.ExpectTrue(t, errors.As(err, &pluginErr))
	testutil.ExpectEq(t, `unsupported option "package"`, err.Error())
}

func TestRun_PluginErrorWithoutMessage(t *testing.T) {
	plugin := testutil.CodegenPlugin(3, `{}`)
	_, err := codegen.Run(context.Background(), plugin, testRequest(t))
	testutil.ExpectEq(t, "plugin failed with status 3", err.Error())
}

func TestRun_NoFiles(t *testing.T) {
	plugin := testutil.CodegenPlugin(0, `{"files":[]}`)
	_, err := codegen.Run(context.Background(), plugin, testRequest(t))
	testutil.ExpectMatch(t, `did not generate any output files`, err.Error())
}

func TestRun_BadOutputPath(t *testing.T) {
	plugin := testutil.CodegenPlugin(0, `{"files":[{"path":["..","x"],"content":""}]}`)
	_, err := codegen.Run(context.Background(), plugin, testRequest(t))
	testutil.ExpectMatch(t, `bad path component "\.\."`, err.Error())
}

func TestRun_BadResponse(t *testing.T) {
	plugin := testutil.CodegenPlugin(0, `{"files":`)
	_, err := codegen.Run(context.Background(), plugin, testRequest(t))
	testutil.ExpectMatch(t, `^decoding response: `, err.Error())
}

func TestRun_InvalidModule(t *testing.T) {
	_, err := codegen.Run(context.Background(), []byte("not wasm"), testRequest(t))
	testutil.ExpectMatch(t, `^compiling plugin: `, err.Error())
}

func TestRun_MissingExports(t *testing.T) {
	empty := []byte{0x00, 'a', 's', 'm', 0x01, 0x00, 0x00, 0x00}
	_, err := codegen.Run(context.Background(), empty, testRequest(t))
	testutil.ExpectEq(t, "plugin does not export thrift_codegen_allocate", err.Error())
}
