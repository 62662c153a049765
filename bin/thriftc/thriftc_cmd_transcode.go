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

	"github.com/klauspost/compress/zlib"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.thrift-idl.org/thrift"
	"go.thrift-idl.org/thrift/encoding/thriftbin"
	"go.thrift-idl.org/thrift/encoding/thriftcompact"
	"go.thrift-idl.org/thrift/encoding/thriftjson"
	"go.thrift-idl.org/thrift/encoding/thriftsimplejson"
	"go.thrift-idl.org/thrift/transport"
	"go.thrift-idl.org/thrift/value"
)

type cmdTranscode struct {
	typeName      string
	from          string
	to            string
	fromTransport string
	toTransport   string
	message       bool
}

func (*cmdTranscode) help() *commandHelp {
	return &commandHelp{
		usage:   "transcode FILE --type NAME",
		summary: "Convert a value read from stdin to another protocol on stdout",
		args:    cobra.ExactArgs(1),
	}
}

func (cmd *cmdTranscode) flags(flags *pflag.FlagSet) {
	flags.StringVarP(&cmd.typeName, "type", "t", "", "struct, enum or typedef name of the value")
	flags.StringVar(&cmd.from, "from", "binary", "input protocol (binary, compact or json)")
	flags.StringVar(&cmd.to, "to", "simplejson", "output protocol (binary, compact, json or simplejson)")
	flags.StringVar(&cmd.fromTransport, "from-transport", "plain", "input transport (plain, framed or zlib)")
	flags.StringVar(&cmd.toTransport, "to-transport", "plain", "output transport (plain, framed or zlib)")
	flags.BoolVar(&cmd.message, "message", false, "the value is the body of a message envelope")
}

func (cmd *cmdTranscode) run(ctx context.Context, app *app, argv []string) int {
	out := newPrinter(app.stderr, app.config.Color)
	if cmd.typeName == "" {
		out.errorf("No value type specified (set --type=)")
		return 1
	}
	sch := loadSchema(app, argv[0])
	if sch == nil {
		return 1
	}
	typ, ok := sch.LookupType(cmd.typeName)
	if !ok {
		out.errorf("Type %q not found in %s", cmd.typeName, argv[0])
		return 1
	}

	in, err := wrapTransport(cmd.fromTransport, transport.NewStreamTransportR(app.stdin))
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	src, err := newProtocol(cmd.from, in, app.config, false)
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	outT, err := wrapTransport(cmd.toTransport, transport.NewStreamTransportW(app.stdout))
	if err != nil {
		out.errorf("%v", err)
		return 1
	}
	dst, err := newProtocol(cmd.to, outT, app.config, true)
	if err != nil {
		out.errorf("%v", err)
		return 1
	}

	log := app.config.logger.WithField("type", cmd.typeName)
	log.Debug("transcoding value")
	if cmd.message {
		header, v, err := value.ReadMessage(src, typ)
		if err != nil {
			out.errorf("reading %s: %v", cmd.from, err)
			return 1
		}
		log.WithField("message", header.Name).Debug("read message")
		if err := value.WriteMessage(dst, header, typ, v); err != nil {
			out.errorf("writing %s: %v", cmd.to, err)
			return 1
		}
	} else if err := value.Transcode(dst, src, typ); err != nil {
		out.errorf("%v", err)
		return 1
	}
	if err := dst.Flush(); err != nil {
		out.errorf("%v", err)
		return 1
	}
	if err := dst.Close(); err != nil {
		out.errorf("%v", err)
		return 1
	}
	return 0
}

func wrapTransport(name string, t transport.Transport) (transport.Transport, error) {
	switch name {
	case "plain":
		return t, nil
	case "framed":
		return transport.NewFramedTransport(t), nil
	case "zlib":
		return transport.NewZlibTransport(t, zlib.DefaultCompression)
	}
	return nil, fmt.Errorf("unknown transport %q (expected plain, framed or zlib)", name)
}

func newProtocol(
	name string,
	t transport.Transport,
	cfg *config,
	output bool,
) (thrift.Protocol, error) {
	stringLimit := int32(cfg.StringLimit)
	containerLimit := int32(cfg.ContainerLimit)
	switch name {
	case "binary":
		return thriftbin.New(
			t,
			thriftbin.WithStrictRead(cfg.StrictRead),
			thriftbin.WithStrictWrite(cfg.StrictWrite),
			thriftbin.WithStringLimit(stringLimit),
			thriftbin.WithContainerLimit(containerLimit),
		), nil
	case "compact":
		return thriftcompact.New(
			t,
			thriftcompact.WithStringLimit(stringLimit),
			thriftcompact.WithContainerLimit(containerLimit),
		), nil
	case "json":
		return thriftjson.New(
			t,
			thriftjson.WithStringLimit(stringLimit),
			thriftjson.WithContainerLimit(containerLimit),
		), nil
	case "simplejson":
		if !output {
			return nil, fmt.Errorf("protocol simplejson is write-only")
		}
		return thriftsimplejson.New(t), nil
	}
	return nil, fmt.Errorf("unknown protocol %q (expected binary, compact, json or simplejson)", name)
}
