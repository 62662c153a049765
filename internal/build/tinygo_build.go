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

// Command build compiles a codegen plugin package to a WebAssembly
// reactor module with TinyGo, for use by `thriftc codegen`.
//
//	go run ./internal/build --output=thrift-codegen-markdown.wasm ./bin/thrift-codegen-markdown
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/pflag"
)

var (
	tinygo  = pflag.String("tinygo", "tinygo", "TinyGo compiler to run")
	output  = pflag.String("output", "", "path of the .wasm file to write")
	chdir   = pflag.String("chdir", "", "directory to run the build in")
	wasmOpt = pflag.String("wasm-opt", "", "wasm-opt binary (default: from $PATH)")
)

func main() {
	pflag.Parse()
	if *output == "" {
		fmt.Fprintln(os.Stderr, "No output file specified (set --output=)")
		os.Exit(1)
	}
	pwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	outPath := *output
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(pwd, outPath)
	}

	tinygoArgs := []string{
		"build",
		"-target=wasip1",
		"-buildmode=c-shared",
		"-no-debug",
		"-o=" + outPath,
	}
	tinygoArgs = append(tinygoArgs, pflag.Args()...)

	cmd := exec.Command(*tinygo, tinygoArgs...)
	cmd.Env = os.Environ()
	if *wasmOpt != "" {
		cmd.Env = append(cmd.Env, "WASMOPT="+*wasmOpt)
	}
	if *chdir != "" {
		cmd.Dir = *chdir
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
