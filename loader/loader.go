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

// Package loader reads Thrift source files and their includes from a file
// system and links them.
//
// An include path is looked up first relative to the directory of the
// file that includes it, then in each configured include directory in
// order. Includes that cannot be found are left unconnected and reported
// by the linker.
package loader

import (
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.thrift-idl.org/thrift/linker"
	"go.thrift-idl.org/thrift/syntax"
)

type Option interface {
	apply(*Options)
}

type option func(*Options)

func (f option) apply(opts *Options) { f(opts) }

type Options struct {
	fs           afero.Fs
	includePaths []string
	logger       logrus.FieldLogger
}

// WithFs sets the file system sources are read from. The default is the
// operating system's.
func WithFs(fs afero.Fs) Option {
	return option(func(opts *Options) {
		opts.fs = fs
	})
}

// WithIncludePaths appends directories to search for included files.
func WithIncludePaths(paths ...string) Option {
	return option(func(opts *Options) {
		opts.includePaths = append(opts.includePaths, paths...)
	})
}

// WithLogger sets the logger used by the loader and its linker.
func WithLogger(logger logrus.FieldLogger) Option {
	return option(func(opts *Options) {
		opts.logger = logger
	})
}

func NewOptions(opts ...Option) *Options {
	loaderOptions := &Options{}
	for _, opt := range opts {
		opt.apply(loaderOptions)
	}
	if loaderOptions.fs == nil {
		loaderOptions.fs = afero.NewOsFs()
	}
	if loaderOptions.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		loaderOptions.logger = discard
	}
	return loaderOptions
}

// Loader is one load session. Files are read and parsed at most once, and
// every file loaded shares one linker.Environment.
type Loader struct {
	opts     *Options
	env      *linker.Environment
	programs map[string]*linker.Program
}

func New(opts ...Option) *Loader {
	loaderOpts := NewOptions(opts...)
	return &Loader{
		opts:     loaderOpts,
		env:      linker.NewEnvironment(linker.WithLogger(loaderOpts.logger)),
		programs: make(map[string]*linker.Program),
	}
}

func (l *Loader) Environment() *linker.Environment {
	return l.env
}

// Load reads file and everything it transitively includes, then links
// it. The returned error reports a file that could not be read or parsed;
// link diagnostics are in the LinkResult.
func (l *Loader) Load(file string) (linker.LinkResult, error) {
	root, err := l.LoadProgram(file)
	if err != nil {
		return linker.LinkResult{}, err
	}
	return l.env.Link(root), nil
}

// LoadProgram reads and parses file and its includes without linking.
func (l *Loader) LoadProgram(file string) (*linker.Program, error) {
	return l.load(filepath.Dir(file), filepath.Base(file))
}

func (l *Loader) load(base, relPath string) (*linker.Program, error) {
	file := filepath.Join(base, relPath)
	if program, ok := l.programs[file]; ok {
		return program, nil
	}

	log := l.opts.logger.WithField("file", file)
	log.Debug("loading file")
	src, err := afero.ReadFile(l.opts.fs, file)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", file)
	}
	doc, err := syntax.Parse(src, syntax.WithLocation(base, relPath))
	if err != nil {
		return nil, err
	}
	program := l.env.AddProgram(doc)
	l.programs[file] = program

	dir := filepath.Dir(file)
	for _, include := range doc.Includes {
		includeBase, found, err := l.resolve(dir, include.Path)
		if err != nil {
			return nil, err
		}
		if !found {
			log.WithField("include", include.Path).Debug("include not found")
			continue
		}
		included, err := l.load(includeBase, include.Path)
		if err != nil {
			return nil, err
		}
		program.AddInclude(include.Path, included)
	}
	return program, nil
}

// resolve returns the directory in which includePath exists.
func (l *Loader) resolve(dir, includePath string) (string, bool, error) {
	if filepath.IsAbs(includePath) {
		ok, err := afero.Exists(l.opts.fs, includePath)
		if err != nil {
			return "", false, errors.Wrapf(err, "resolving include %q", includePath)
		}
		return "", ok, nil
	}
	for _, candidate := range append([]string{dir}, l.opts.includePaths...) {
		ok, err := afero.Exists(l.opts.fs, filepath.Join(candidate, includePath))
		if err != nil {
			return "", false, errors.Wrapf(err, "resolving include %q", includePath)
		}
		if ok {
			return candidate, true, nil
		}
	}
	return "", false, nil
}
