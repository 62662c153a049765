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
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.thrift-idl.org/thrift/codegen"
	"go.thrift-idl.org/thrift/schemadump"
)

type cmdCodegen struct {
	language string
	outDir   string
	options  map[string]string
}

func (*cmdCodegen) help() *commandHelp {
	return &commandHelp{
		usage:   "codegen FILE --language LANG --output DIR",
		summary: "Run a WebAssembly code generator plugin on a Thrift file",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdCodegen) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.language, "language", "l", "", "plugin language; runs thrift-codegen-LANG.wasm")
	flags.StringVarP(&cmd.outDir, "output", "o", "", "directory to write generated files to")
	flags.StringToStringVar(&cmd.options, "option", nil, "plugin option KEY=VALUE (repeatable)")
}

func (cmd *cmdCodegen) run(ctx context.Context, app *app, argv []string) int {
	out := newPrinter(app.stderr, app.config.Color)
	if cmd.language == "" {
		out.errorf("No plugin language specified (set --language=)")
		return 1
	}
	if cmd.outDir == "" {
		out.errorf("No output directory specified (set --output=)")
		return 1
	}

	pluginPath, err := locatePlugin(app.fs, app.config.PluginPath, cmd.language)
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	pluginBin, err := afero.ReadFile(app.fs, pluginPath)
	if err != nil {
		out.errorf("%v", errors.Wrapf(err, "reading plugin %s", pluginPath))
		return 1
	}

	sch := loadSchema(app, argv[0])
	if sch == nil {
		return 1
	}
	request := &codegen.Request{
		Schema:  schemadump.Build(sch),
		Options: cmd.options,
	}

	log := app.config.logger.WithField("plugin", pluginPath)
	log.Info("running codegen plugin")
	response, err := codegen.Run(
		ctx,
		pluginBin,
		request,
		codegen.WithStderr(app.stderr),
		codegen.WithLogger(log),
	)
	if err != nil {
		out.errorf("%v", err)
		return 1
	}

	if err := app.fs.MkdirAll(cmd.outDir, 0o755); err != nil {
		out.errorf("%v", err)
		return 1
	}
	for _, file := range response.Files {
		outPath := file.Join(cmd.outDir)
		if err := app.fs.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
			out.errorf("%v", err)
			return 1
		}
		if err := afero.WriteFile(app.fs, outPath, file.Content, 0o644); err != nil {
			out.errorf("%v", err)
			return 1
		}
		log.WithField("path", outPath).Debug("wrote generated file")
	}
	return 0
}

// locatePlugin searches each directory of the colon-separated pluginPath
// for the plugin for language.
func locatePlugin(fs afero.Fs, pluginPath, language string) (string, error) {
	if pluginPath == "" {
		return "", fmt.Errorf("No plugin path set, use --plugin-path= or $THRIFTC_PLUGIN_PATH")
	}
	basename := codegen.PluginName(language)
	for _, dir := range strings.Split(pluginPath, ":") {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, basename)
		if info, err := fs.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("Codegen plugin %s not found in plugin path", basename)
}
