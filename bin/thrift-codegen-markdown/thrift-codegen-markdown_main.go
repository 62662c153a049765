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

//go:generate go run ../../internal/build --output=thrift-codegen-markdown.wasm .

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"go.thrift-idl.org/thrift/codegen"
	"go.thrift-idl.org/thrift/schemadump"
)

func main() {
	flags := pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	pluginOptions := flags.StringToString("option", nil, "plugin option KEY=VALUE (repeatable)")
	flags.Parse(os.Args[1:])

	args := flags.Args()
	if len(args) != 2 {
		log.Fatalf("usage: %s [--option KEY=VALUE]... SCHEMA_JSON OUTPUT_DIR", os.Args[0])
	}
	schemaPath, outDir := args[0], args[1]

	f, err := os.Open(schemaPath)
	if err != nil {
		log.Fatal(err)
	}
	doc, err := schemadump.DecodeJSON(f)
	f.Close()
	if err != nil {
		log.Fatalf("DecodeJSON(%q): %v", schemaPath, err)
	}

	response, err := generate(&codegen.Request{
		Schema:  doc,
		Options: *pluginOptions,
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, file := range response.Files {
		if err := file.Validate(); err != nil {
			log.Fatal(err)
		}
		outPath := file.Join(outDir)
		if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(outPath, file.Content, 0o644); err != nil {
			log.Fatal(err)
		}
	}
}
