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

// Command thriftc checks Thrift IDL files, dumps their linked schema,
// transcodes values between wire protocols, and runs codegen plugins.
package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type command interface {
	help() *commandHelp
	flags(flags *pflag.FlagSet)
	run(ctx context.Context, app *app, argv []string) int
}

type commandHelp struct {
	usage   string
	summary string
	args    cobra.PositionalArgs
}

// app is the process environment commands run in.
type app struct {
	fs     afero.Fs
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	config *config
}

func main() {
	a := &app{
		fs:     afero.NewOsFs(),
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	os.Exit(execute(context.Background(), a, os.Args[1:]))
}

// execute runs one command line and returns the process exit status.
func execute(ctx context.Context, a *app, args []string) int {
	v := viper.New()
	v.SetFs(a.fs)

	exitCode := 0
	thriftcCmd := &cobra.Command{
		Use:           "thriftc [options] COMMAND",
		Short:         "Thrift IDL compiler tools",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v, a.stderr)
			if err != nil {
				return err
			}
			a.config = cfg
			return nil
		},
	}
	thriftcCmd.SetIn(a.stdin)
	thriftcCmd.SetOut(a.stdout)
	thriftcCmd.SetErr(a.stderr)
	thriftcCmd.RunE = func(cmd *cobra.Command, args []string) error {
		cmd.SetOut(a.stderr)
		cmd.Usage()
		exitCode = 1
		return nil
	}
	configFlags(thriftcCmd.PersistentFlags())
	if err := v.BindPFlags(thriftcCmd.PersistentFlags()); err != nil {
		panic(err)
	}

	commands := []command{
		&cmdCheck{},
		&cmdDump{},
		&cmdTranscode{},
		&cmdCodegen{},
	}
	for _, cmd := range commands {
		help := cmd.help()
		cobraCmd := &cobra.Command{
			Use:   help.usage,
			Short: help.summary,
			Args:  help.args,
			RunE: func(_ *cobra.Command, args []string) error {
				exitCode = cmd.run(ctx, a, args)
				return nil
			},
		}
		thriftcCmd.AddCommand(cobraCmd)
		cmd.flags(cobraCmd.Flags())
	}

	if args == nil {
		args = []string{}
	}
	thriftcCmd.SetArgs(args)
	if err := thriftcCmd.ExecuteContext(ctx); err != nil {
		newPrinter(a.stderr, colorAuto).errorf("%v", err)
		return 1
	}
	return exitCode
}
