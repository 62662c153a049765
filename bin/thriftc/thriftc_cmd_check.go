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
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.thrift-idl.org/thrift/loader"
)

type cmdCheck struct {
	werror bool
}

func (*cmdCheck) help() *commandHelp {
	return &commandHelp{
		usage:   "check FILE...",
		summary: "Parse and link Thrift files, reporting any problems",
		args:    cobra.MinimumNArgs(1),
	}
}

func (cmd *cmdCheck) flags(flags *pflag.FlagSet) {
	flags.BoolVar(&cmd.werror, "werror", false, "treat warnings as errors")
}

func (cmd *cmdCheck) run(ctx context.Context, app *app, argv []string) int {
	cfg := app.config
	out := newPrinter(app.stderr, cfg.Color)
	l := loader.New(cfg.loaderOptions(app.fs)...)

	failed := false
	for _, file := range argv {
		result, err := l.Load(file)
		if err != nil {
			out.errorf("%v", err)
			failed = true
			continue
		}
		if out.linkResult(result) {
			failed = true
		}
		if cmd.werror && len(result.Warnings) > 0 {
			failed = true
		}
	}
	if failed {
		return 1
	}
	fmt.Fprintf(app.stdout, "%d file(s) OK\n", len(argv))
	return 0
}
