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

package codegen

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
	wasm "github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// DefaultMemoryLimitPages caps plugin memory at 1 GiB.
const DefaultMemoryLimitPages = 16384

type Option interface {
	apply(*Options)
}

type option func(*Options)

func (f option) apply(opts *Options) { f(opts) }

type Options struct {
	memoryLimitPages uint32
	stderr           io.Writer
	logger           logrus.FieldLogger
}

// WithMemoryLimitPages bounds plugin memory, in 64 KiB pages.
func WithMemoryLimitPages(pages uint32) Option {
	return option(func(opts *Options) {
		opts.memoryLimitPages = pages
	})
}

// WithStderr sets where the plugin's stdout and stderr go. The default
// discards them.
func WithStderr(w io.Writer) Option {
	return option(func(opts *Options) {
		opts.stderr = w
	})
}

func WithLogger(logger logrus.FieldLogger) Option {
	return option(func(opts *Options) {
		opts.logger = logger
	})
}

func NewOptions(opts ...Option) *Options {
	hostOpts := &Options{
		memoryLimitPages: DefaultMemoryLimitPages,
		stderr:           io.Discard,
	}
	for _, opt := range opts {
		opt.apply(hostOpts)
	}
	if hostOpts.logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		hostOpts.logger = discard
	}
	return hostOpts
}

// PluginError is an error reported by the plugin itself.
type PluginError struct {
	Message string
}

func (err *PluginError) Error() string {
	return err.Message
}

// Run executes the compiled plugin in pluginBin on req. Every file in a
// successful response has a valid path.
func Run(ctx context.Context, pluginBin []byte, req *Request, opts ...Option) (*Response, error) {
	hostOpts := NewOptions(opts...)
	log := hostOpts.logger

	requestBuf, err := Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter()
	runtimeConfig = runtimeConfig.WithMemoryLimitPages(hostOpts.memoryLimitPages)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	pluginExe, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, fmt.Errorf("compiling plugin: %w", err)
	}
	exports := pluginExe.ExportedFunctions()
	for _, name := range []string{AllocateExport, GenerateExport} {
		if _, ok := exports[name]; !ok {
			return nil, fmt.Errorf("plugin does not export %s", name)
		}
	}
	for _, imp := range pluginExe.ImportedFunctions() {
		moduleName, _, _ := imp.Import()
		if moduleName == wasi_snapshot_preview1.ModuleName {
			log.Debug("instantiating WASI for plugin")
			if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
				return nil, err
			}
			break
		}
	}

	moduleConfig := wasm.NewModuleConfig().
		WithStdout(hostOpts.stderr).
		WithStderr(hostOpts.stderr).
		WithStartFunctions("_initialize")
	plugin, err := runtime.InstantiateModule(ctx, pluginExe, moduleConfig)
	if err != nil {
		return nil, fmt.Errorf("instantiating plugin: %w", err)
	}
	mem := plugin.Memory()
	if mem == nil {
		return nil, fmt.Errorf("plugin does not export a memory")
	}

	wasmAlloc := plugin.ExportedFunction(AllocateExport)
	wasmGenerate := plugin.ExportedFunction(GenerateExport)

	requestPtr, err := call(ctx, wasmAlloc, uint64(len(requestBuf)))
	if err != nil {
		return nil, err
	}
	if requestPtr == 0 || !mem.Write(requestPtr, requestBuf) {
		return nil, fmt.Errorf("plugin failed to allocate %d bytes for the request", len(requestBuf))
	}
	responsePtrPtr, err := call(ctx, wasmAlloc, 4)
	if err != nil {
		return nil, err
	}
	if responsePtrPtr == 0 {
		return nil, fmt.Errorf("plugin failed to allocate the response slot")
	}

	log.WithField("request_bytes", len(requestBuf)).Debug("calling plugin")
	results, err := wasmGenerate.Call(ctx, uint64(requestPtr), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message length")
	}
	responseBuf, ok := mem.Read(responsePtr, responseLen+4)
	if !ok {
		return nil, fmt.Errorf("Failed to read response message")
	}
	response := &Response{}
	if err := Unmarshal(responseBuf, response); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if wasmDealloc := plugin.ExportedFunction(DeallocateExport); wasmDealloc != nil {
		for _, ptr := range []uint32{requestPtr, responsePtrPtr, responsePtr} {
			if _, err := wasmDealloc.Call(ctx, uint64(ptr)); err != nil {
				return nil, err
			}
		}
	}

	if rc != 0 {
		msg := strings.TrimRight(response.Error, "\n")
		if msg == "" {
			msg = fmt.Sprintf("plugin failed with status %d", rc)
		}
		return nil, &PluginError{Message: strings.ToValidUTF8(msg, "�")}
	}
	if len(response.Files) == 0 {
		return nil, fmt.Errorf("Plugin did not generate any output files")
	}
	for _, file := range response.Files {
		if err := file.Validate(); err != nil {
			return nil, err
		}
	}
	return response, nil
}

func call(ctx context.Context, fn api.Function, arg uint64) (uint32, error) {
	results, err := fn.Call(ctx, arg)
	if err != nil {
		return 0, err
	}
	return uint32(results[0]), nil
}
