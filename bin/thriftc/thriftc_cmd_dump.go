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
	"bytes"
	"context"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.thrift-idl.org/thrift/loader"
	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/schemadump"
)

type cmdDump struct {
	outPath string
	format  string
}

func (*cmdDump) help() *commandHelp {
	return &commandHelp{
		usage:   "dump FILE",
		summary: "Print the linked schema of a Thrift file",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdDump) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.outPath, "output", "o", "", "write to this file instead of stdout")
	flags.StringVarP(&cmd.format, "format", "f", "text", "output format (text, yaml or json)")
}

// loadSchema loads and links file, printing diagnostics. It returns nil if
// the file could not be linked.
func loadSchema(app *app, file string) *schema.Schema {
	out := newPrinter(app.stderr, app.config.Color)
	l := loader.New(app.config.loaderOptions(app.fs)...)
	result, err := l.Load(file)
	if err != nil {
		out.errorf("%v", err)
		return nil
	}
	if out.linkResult(result) {
		return nil
	}
	return result.Schema
}

func (cmd *cmdDump) run(ctx context.Context, app *app, argv []string) int {
	out := newPrinter(app.stderr, app.config.Color)
	format, err := schemadump.ParseFormat(cmd.format)
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	sch := loadSchema(app, argv[0])
	if sch == nil {
		return 1
	}

	var buf bytes.Buffer
	if err := schemadump.Encode(&buf, sch, format); err != nil {
		out.errorf("%v", err)
		return 1
	}
	if cmd.outPath == "" {
		if _, err := app.stdout.Write(buf.Bytes()); err != nil {
			out.errorf("%v", err)
			return 1
		}
		return 0
	}
	if err := afero.WriteFile(app.fs, cmd.outPath, buf.Bytes(), 0o666); err != nil {
		out.errorf("%v", err)
		return 1
	}
	return 0
}
