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
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"go.thrift-idl.org/thrift/loader"
)

const envPrefix = "THRIFTC"

// config is the merged result of flags, THRIFTC_* environment variables
// and the config file, in that order of precedence.
type config struct {
	IncludePaths   []string `mapstructure:"include"`
	LogLevel       string   `mapstructure:"log-level"`
	LogFormat      string   `mapstructure:"log-format"`
	Color          string   `mapstructure:"color"`
	StrictRead     bool     `mapstructure:"strict-read"`
	StrictWrite    bool     `mapstructure:"strict-write"`
	StringLimit    int      `mapstructure:"string-limit"`
	ContainerLimit int      `mapstructure:"container-limit"`
	PluginPath     string   `mapstructure:"plugin-path"`

	logger *logrus.Logger
}

func configFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default: ./thriftc.yaml or ~/.config/thriftc/thriftc.yaml)")
	flags.StringSliceP("include", "I", nil, "directories to search for included files")
	flags.String("log-level", "warning", "log level (debug, info, warning, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.String("color", colorAuto, "colorize diagnostics (auto, always, never)")
	flags.Bool("strict-read", false, "reject binary protocol messages without a version header")
	flags.Bool("strict-write", true, "write binary protocol messages with a version header")
	flags.Int("string-limit", -1, "maximum string or binary length to decode (-1 for no limit)")
	flags.Int("container-limit", -1, "maximum container size to decode (-1 for no limit)")
	flags.String("plugin-path", "", "colon-separated directories to search for codegen plugins")
}

func loadConfig(v *viper.Viper, stderr io.Writer) (*config, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	explicit := v.GetString("config")
	if explicit != "" {
		v.SetConfigFile(explicit)
	} else {
		v.SetConfigName("thriftc")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "thriftc"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "reading config")
		}
	}

	cfg := &config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "parsing log-level")
	}
	cfg.logger = logrus.New()
	cfg.logger.SetOutput(stderr)
	cfg.logger.SetLevel(level)
	switch cfg.LogFormat {
	case "text":
		cfg.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	case "json":
		cfg.logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		return nil, fmt.Errorf("unknown log-format %q (expected text or json)", cfg.LogFormat)
	}
	if used := v.ConfigFileUsed(); used != "" {
		cfg.logger.WithField("file", used).Debug("loaded config")
	}
	return cfg, nil
}

func (cfg *config) validate() error {
	switch cfg.Color {
	case colorAuto, colorAlways, colorNever:
	default:
		return fmt.Errorf("unknown color mode %q (expected auto, always or never)", cfg.Color)
	}
	for name, limit := range map[string]int{
		"string-limit":    cfg.StringLimit,
		"container-limit": cfg.ContainerLimit,
	} {
		if limit < -1 || limit > math.MaxInt32 {
			return fmt.Errorf("%s %d out of range", name, limit)
		}
	}
	return nil
}

func (cfg *config) loaderOptions(fs afero.Fs) []loader.Option {
	return []loader.Option{
		loader.WithFs(fs),
		loader.WithIncludePaths(cfg.IncludePaths...),
		loader.WithLogger(cfg.logger),
	}
}
