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

// Package linker resolves the names in a set of parsed Thrift documents
// and checks the result, producing a schema.Schema.
//
// Each document becomes a Program. Programs are registered with an
// Environment, their includes are connected with AddInclude, and then a
// root program is linked:
//
//	env := linker.NewEnvironment()
//	shared := env.AddProgram(sharedDoc)
//	main := env.AddProgram(mainDoc)
//	main.AddInclude("shared.thrift", shared)
//	result := env.Link(main)
package linker

import (
	"io"
	"maps"
	"slices"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"go.thrift-idl.org/thrift/schema"
	"go.thrift-idl.org/thrift/syntax"
)

type LinkOption interface {
	apply(*LinkOptions)
}

type linkOption func(*LinkOptions)

func (f linkOption) apply(opts *LinkOptions) { f(opts) }

type LinkOptions struct {
	logger logrus.FieldLogger
}

// WithLogger sets where link progress is logged, at debug level.
func WithLogger(logger logrus.FieldLogger) LinkOption {
	return linkOption(func(opts *LinkOptions) {
		opts.logger = logger
	})
}

func NewLinkOptions(opts ...LinkOption) *LinkOptions {
	linkOptions := &LinkOptions{}
	for _, opt := range opts {
		opt.apply(linkOptions)
	}
	if linkOptions.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		linkOptions.logger = discard
	}
	return linkOptions
}

// Environment is one load session. It owns its Programs, the link state
// of each, and every diagnostic reported while linking them.
//
// An Environment must not be used from more than one goroutine at a time.
// Concurrent calls to Link panic. Independent sets of files can be linked
// in parallel with one Environment each.
type Environment struct {
	opts  *LinkOptions
	inUse atomic.Bool

	programs map[string]*Program
	order    []*Program
	linkers  map[*Program]*programLinker

	errors   []*Error
	warnings []*Warning
}

func NewEnvironment(opts ...LinkOption) *Environment {
	return &Environment{
		opts:     NewLinkOptions(opts...),
		programs: make(map[string]*Program),
		linkers:  make(map[*Program]*programLinker),
	}
}

// AddProgram registers a parsed document. Documents are identified by
// their location; adding a second document with the same location
// returns the existing Program.
func (env *Environment) AddProgram(doc *syntax.Document) *Program {
	env.enter()
	defer env.exit()

	key := doc.Location.File()
	if program, ok := env.programs[key]; ok {
		return program
	}
	program := &Program{
		doc:      doc,
		includes: make(map[string]*Program),
	}
	env.programs[key] = program
	env.order = append(env.order, program)
	return program
}

// Program returns the program loaded from file, as returned by
// syntax.Location.File.
func (env *Environment) Program(file string) *Program {
	return env.programs[file]
}

func (env *Environment) Programs() []*Program {
	return slices.Clone(env.order)
}

func (env *Environment) Errors() []*Error {
	return slices.Clone(env.errors)
}

func (env *Environment) Warnings() []*Warning {
	return slices.Clone(env.warnings)
}

func (env *Environment) enter() {
	if !env.inUse.CompareAndSwap(false, true) {
		panic("linker: concurrent use of Environment")
	}
}

func (env *Environment) exit() {
	env.inUse.Store(false)
}

func (env *Environment) err(err *Error) {
	env.errors = append(env.errors, err)
}

func (env *Environment) warn(warning *Warning) {
	env.warnings = append(env.warnings, warning)
}

func (env *Environment) linkerFor(program *Program) *programLinker {
	l, ok := env.linkers[program]
	if !ok {
		l = &programLinker{
			env:     env,
			program: program,
			log: env.opts.logger.WithField(
				"program",
				program.doc.Location.File(),
			),
		}
		env.linkers[program] = l
	}
	return l
}

// LinkResult holds the diagnostics reported by one call to Link. Schema
// is set only if there were no errors.
type LinkResult struct {
	Schema *schema.Schema

	Errors   []*Error
	Warnings []*Warning
}

// Link links root and everything it transitively includes. Programs
// linked by an earlier call are not linked again.
func (env *Environment) Link(root *Program) LinkResult {
	env.enter()
	defer env.exit()

	errorsBefore := len(env.errors)
	warningsBefore := len(env.warnings)

	ok := env.linkerFor(root).link()

	result := LinkResult{
		Errors:   slices.Clone(env.errors[errorsBefore:]),
		Warnings: slices.Clone(env.warnings[warningsBefore:]),
	}
	if ok && len(result.Errors) == 0 {
		result.Schema = collectSchema(root)
	}
	return result
}

// collectSchema merges root and its includes, included programs first.
func collectSchema(root *Program) *schema.Schema {
	merged := &schema.Schema{}
	seen := make(map[*Program]bool)
	var visit func(*Program)
	visit = func(p *Program) {
		if seen[p] {
			return
		}
		seen[p] = true
		for _, path := range p.includeOrder() {
			visit(p.includes[path])
		}
		merged.Merge(p.Schema())
	}
	visit(root)
	return merged
}

// Program is one source file. Its linked elements are available once it
// has been linked without errors; reading them earlier panics.
type Program struct {
	doc      *syntax.Document
	includes map[string]*Program
	linked   bool

	namespaces map[string]string
	structs    []*schema.Struct
	unions     []*schema.Struct
	exceptions []*schema.Struct
	enums      []*schema.Enum
	typedefs   []*schema.Typedef
	constants  []*schema.Constant
	services   []*schema.Service
	types      map[string]schema.Type
	consts     map[string]*schema.Constant
}

func (p *Program) Document() *syntax.Document {
	return p.doc
}

func (p *Program) Location() syntax.Location {
	return p.doc.Location
}

// Name is the prefix other programs use to refer to this program's
// declarations.
func (p *Program) Name() string {
	return schema.ProgramName(p.doc.Location.Path)
}

// AddInclude records that the include statement for path in this
// program's document refers to included.
func (p *Program) AddInclude(path string, included *Program) {
	p.includes[path] = included
}

// Includes returns the programs included by this one, in the order of
// their include statements.
func (p *Program) Includes() []*Program {
	var out []*Program
	for _, path := range p.includeOrder() {
		out = append(out, p.includes[path])
	}
	return out
}

func (p *Program) includeOrder() []string {
	var paths []string
	for _, include := range p.doc.Includes {
		if _, ok := p.includes[include.Path]; ok && !slices.Contains(paths, include.Path) {
			paths = append(paths, include.Path)
		}
	}
	return paths
}

func (p *Program) Linked() bool {
	return p.linked
}

func (p *Program) mustBeLinked() {
	if !p.linked {
		panic("linker: program " + p.doc.Location.File() + " has not been linked")
	}
}

func (p *Program) Namespaces() map[string]string {
	p.mustBeLinked()
	return maps.Clone(p.namespaces)
}

func (p *Program) Structs() []*schema.Struct {
	p.mustBeLinked()
	return p.structs
}

func (p *Program) Unions() []*schema.Struct {
	p.mustBeLinked()
	return p.unions
}

func (p *Program) Exceptions() []*schema.Struct {
	p.mustBeLinked()
	return p.exceptions
}

func (p *Program) Enums() []*schema.Enum {
	p.mustBeLinked()
	return p.enums
}

func (p *Program) Typedefs() []*schema.Typedef {
	p.mustBeLinked()
	return p.typedefs
}

func (p *Program) Constants() []*schema.Constant {
	p.mustBeLinked()
	return p.constants
}

func (p *Program) Services() []*schema.Service {
	p.mustBeLinked()
	return p.services
}

// Types returns the program's own named types, keyed by name.
func (p *Program) Types() map[string]schema.Type {
	p.mustBeLinked()
	return maps.Clone(p.types)
}

// Consts returns the program's own constants, keyed by name.
func (p *Program) Consts() map[string]*schema.Constant {
	p.mustBeLinked()
	return maps.Clone(p.consts)
}

// Schema returns this program's entities, without those of its includes.
func (p *Program) Schema() *schema.Schema {
	p.mustBeLinked()
	return &schema.Schema{
		Structs:    p.structs,
		Unions:     p.unions,
		Exceptions: p.exceptions,
		Enums:      p.enums,
		Typedefs:   p.typedefs,
		Constants:  p.constants,
		Services:   p.services,
	}
}
