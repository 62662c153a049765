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

package loader_test

import (
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"

	"go.thrift-idl.org/thrift/internal/testutil"
	"go.thrift-idl.org/thrift/loader"
	"go.thrift-idl.org/thrift/syntax"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for name, src := range files {
		testutil.AssertNoError(t, afero.WriteFile(fs, name, []byte(src), 0o644))
	}
	return fs
}

func TestLoadWithIncludePaths(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/main.thrift": `
include "shared/common.thrift"
include "local.thrift"
struct Req {
	1: common.Tag tag
	2: local.Id id
}
`,
		"/proj/local.thrift":        `typedef i64 Id`,
		"/inc/shared/common.thrift": `struct Tag { 1: string name }`,
	})
	l := loader.New(loader.WithFs(fs), loader.WithIncludePaths("/inc"))
	result, err := l.Load("/proj/main.thrift")
	testutil.AssertNoError(t, err)
	for _, linkErr := range result.Errors {
		testutil.ExpectNoError(t, linkErr)
	}
	if result.Schema == nil {
		t.FailNow()
	}

	_, ok := result.Schema.LookupType("common.Tag")
	testutil.ExpectTrue(t, ok)
	testutil.ExpectEq(t, 3, len(l.Environment().Programs()))

	common := l.Environment().Program("/inc/shared/common.thrift")
	testutil.ExpectTrue(t, common != nil)
	testutil.ExpectEq(t, "common", common.Name())
}

func TestRelativeIncludeWins(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/main.thrift":  `include "types.thrift"` + "\nconst types.Near N = 1",
		"/proj/types.thrift": `typedef i32 Near`,
		"/inc/types.thrift":  `typedef i32 Far`,
	})
	l := loader.New(loader.WithFs(fs), loader.WithIncludePaths("/inc"))
	result, err := l.Load("/proj/main.thrift")
	testutil.AssertNoError(t, err)
	testutil.ExpectEq(t, 0, len(result.Errors))
	testutil.ExpectTrue(t, l.Environment().Program("/inc/types.thrift") == nil)
}

func TestMissingInclude(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/main.thrift": `include "gone.thrift"`,
	})
	result, err := loader.New(loader.WithFs(fs)).Load("/proj/main.thrift")
	testutil.AssertNoError(t, err)
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}
	testutil.ExpectEq(t, 5001, result.Errors[0].Code())
	testutil.ExpectEq(t, "/proj/main.thrift", result.Errors[0].Location().File())
}

func TestCircularInclude(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/a.thrift": `include "b.thrift"`,
		"/b.thrift": `include "a.thrift"`,
	})
	result, err := loader.New(loader.WithFs(fs)).Load("/a.thrift")
	testutil.AssertNoError(t, err)
	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(result.Errors))
	}
	testutil.ExpectEq(t, 5000, result.Errors[0].Code())
}

func TestReadError(t *testing.T) {
	_, err := loader.New(loader.WithFs(afero.NewMemMapFs())).Load("/missing.thrift")
	testutil.ExpectTrue(t, errors.Is(err, os.ErrNotExist))
	testutil.ExpectMatch(t, `^reading /missing.thrift: `, err.Error())
}

func TestParseError(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/proj/main.thrift": `include "bad.thrift"`,
		"/proj/bad.thrift":  "struct S {\n\t1: i32 @\n}",
	})
	_, err := loader.New(loader.WithFs(fs)).Load("/proj/main.thrift")
	var synErr *syntax.Error
	if !errors.As(err, &synErr) {
		t.Fatalf("Expected *syntax.Error, got %T (%v)", err, err)
	}
	testutil.ExpectEq(t, "/proj/bad.thrift", synErr.Location().File())
	testutil.ExpectEq(t, 2, synErr.Location().Line)
}

func TestSharedEnvironment(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/one.thrift":    `include "shared.thrift"` + "\nstruct One { 1: shared.S s }",
		"/two.thrift":    `include "shared.thrift"` + "\nstruct Two { 1: shared.S s }",
		"/shared.thrift": `struct S {}`,
	})
	l := loader.New(loader.WithFs(fs))
	for _, file := range []string{"/one.thrift", "/two.thrift"} {
		result, err := l.Load(file)
		testutil.AssertNoError(t, err)
		testutil.ExpectEq(t, 0, len(result.Errors))
	}
	testutil.ExpectEq(t, 3, len(l.Environment().Programs()))
}
