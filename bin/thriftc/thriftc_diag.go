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
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"go.thrift-idl.org/thrift/linker"
)

const (
	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// printer writes diagnostics, colored when w is a terminal or color is
// forced.
type printer struct {
	w         io.Writer
	errColor  *color.Color
	warnColor *color.Color
}

func newPrinter(w io.Writer, mode string) *printer {
	p := &printer{
		w:         w,
		errColor:  color.New(color.FgRed, color.Bold),
		warnColor: color.New(color.FgYellow),
	}
	if useColor(w, mode) {
		p.errColor.EnableColor()
		p.warnColor.EnableColor()
	} else {
		p.errColor.DisableColor()
		p.warnColor.DisableColor()
	}
	return p
}

func useColor(w io.Writer, mode string) bool {
	switch mode {
	case colorAlways:
		return true
	case colorNever:
		return false
	}
	if _, noColor := os.LookupEnv("NO_COLOR"); noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) errorf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.errColor.Sprint("error:"), fmt.Sprintf(format, args...))
}

func (p *printer) warnf(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.warnColor.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// linkResult prints every diagnostic and reports whether there were
// errors.
func (p *printer) linkResult(result linker.LinkResult) bool {
	for _, warning := range result.Warnings {
		p.warnf("%s", warning)
	}
	for _, err := range result.Errors {
		p.errorf("%s", err)
	}
	return len(result.Errors) > 0
}
