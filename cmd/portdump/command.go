// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Rudiarius/ignite/core/log"
	"github.com/mattn/go-isatty"
	"github.com/mstoykov/envconfig"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// config holds the settings that can come from the environment. Flags
// override them.
type config struct {
	Schema   string `envconfig:"PORTDUMP_SCHEMA"`
	Format   string `envconfig:"PORTDUMP_FORMAT" default:"json"`
	Mode     string `envconfig:"PORTDUMP_MODE" default:"FullDeserialize"`
	LogLevel string `envconfig:"PORTDUMP_LOG_LEVEL" default:"Info"`
	LogStyle string `envconfig:"PORTDUMP_LOG_STYLE"`
}

// env is the outside world the command runs in.
type env struct {
	stdout io.Writer
	stderr io.Writer
	// lookup replaces os.LookupEnv when set.
	lookup func(string) (string, bool)
	// fs replaces the operating system filesystem when set.
	fs afero.Fs
}

type flags struct {
	config
	root   string
	offset int
	all    bool
}

func loadConfig(e env) (config, error) {
	cfg := config{}
	var lookups []func(string) (string, bool)
	if e.lookup != nil {
		lookups = append(lookups, e.lookup)
	}
	if err := envconfig.Process("", &cfg, lookups...); err != nil {
		return cfg, errors.Wrap(err, "Invalid environment")
	}
	return cfg, nil
}

func newCommand(ctx context.Context, e env) *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "portdump [flags] <file>",
		Short: "Decode a portable binary object stream",
		Long: "portdump decodes every value of a portable binary object stream and " +
			"writes them as json, yaml, pbtxt or pbjson records.\n" +
			"gzip and zstd compressed inputs are detected by their magic bytes.",
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				cmd.PrintErrln(err)
				return err
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, err := setupLog(ctx, e, f.config)
			if err != nil {
				fmt.Fprintln(e.stderr, err)
				return err
			}
			fs, err := f.filesystem(e)
			if err != nil {
				log.E(ctx, "%v", err)
				return err
			}
			if err := dump(ctx, fs, args[0], f, e.stdout); err != nil {
				log.E(ctx, "%v", err)
				return err
			}
			return nil
		},
	}
	cmd.SetOut(e.stdout)
	cmd.SetErr(e.stderr)

	cfg, err := loadConfig(e)
	if err != nil {
		cmd.RunE = func(*cobra.Command, []string) error {
			fmt.Fprintln(e.stderr, err)
			return err
		}
	}
	f.config = cfg

	f.register(cmd.Flags())
	return cmd
}

func (f *flags) register(set *pflag.FlagSet) {
	set.StringVar(&f.root, "root", "", "directory the input and schema paths are relative to")
	set.StringVar(&f.Schema, "schema", f.Schema, "yaml or toml file describing the user types")
	set.StringVar(&f.Format, "format", f.Format, "output format: json, yaml, pbtxt or pbjson")
	set.StringVar(&f.Mode, "mode", f.Mode, "decode mode: FullDeserialize, KeepWrapped or ForceWrapped")
	set.IntVar(&f.offset, "offset", 0, "byte offset of the first value")
	set.BoolVar(&f.all, "all", true, "decode values until the end of the input")
	set.StringVar(&f.LogLevel, "log-level", f.LogLevel, "lowest severity logged")
	set.StringVar(&f.LogStyle, "log-style", f.LogStyle, "log style: raw, brief, normal or detailed")
}

func (f *flags) filesystem(e env) (afero.Fs, error) {
	fs := e.fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if f.root == "" {
		return fs, nil
	}
	if ok, err := afero.DirExists(fs, f.root); err != nil {
		return nil, err
	} else if !ok {
		return nil, fmt.Errorf("Root directory %s does not exist", f.root)
	}
	return afero.NewBasePathFs(fs, f.root), nil
}

// setupLog installs a handler writing to the command's stderr. Terminals
// get the normal style, everything else the brief one.
func setupLog(ctx context.Context, e env, cfg config) (context.Context, error) {
	severity, err := log.ParseSeverity(cfg.LogLevel)
	if err != nil {
		return ctx, err
	}
	style := log.Brief
	if file, ok := e.stderr.(*os.File); ok {
		if fd := file.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
			style = log.Normal
		}
	}
	if cfg.LogStyle != "" {
		s, ok := log.StyleByName(cfg.LogStyle)
		if !ok {
			return ctx, fmt.Errorf("Unknown log style %q", cfg.LogStyle)
		}
		style = s
	}
	ctx = log.PutHandler(ctx, style.Handler(log.Stream(e.stderr)))
	ctx = log.PutFilter(ctx, log.SeverityFilter(severity))
	return log.Enter(ctx, "portdump"), nil
}
