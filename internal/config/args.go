// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

// Args is the parsed command line. Only flags the operator actually passed
// override lower-precedence sources.
type Args struct {
	ConfigPath  string
	ShowVersion bool
	Help        bool

	installLocation string
	dst             string
	tcpPort         string
	logLevel        string

	flags *pflag.FlagSet
}

// ParseArgs parses argv (without the program name). Flags it does not know
// are skipped instead of rejected, so the installer can be launched with the
// caller's full argument list.
func ParseArgs(name string, argv []string) (*Args, error) {
	a := &Args{}
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.ParseErrorsAllowlist.UnknownFlags = true
	fs.SetOutput(io.Discard)

	fs.StringVar(&a.installLocation, "install-location", "", "install hostname (e.g. devserver); empty installs locally")
	fs.StringVar(&a.dst, "dst", DefaultDst, "destination rsync target folder")
	fs.StringVar(&a.tcpPort, "tcp-port", "", "tcp port for the installer to listen on (required)")
	fs.StringVar(&a.logLevel, "log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&a.ConfigPath, "config", "", "path to config file (YAML)")
	fs.BoolVar(&a.ShowVersion, "version", false, "print version and exit")
	fs.BoolVarP(&a.Help, "help", "h", false, "show help")
	a.flags = fs

	if err := fs.Parse(argv); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	return a, nil
}

// Apply overlays explicitly passed flags onto cfg.
func (a *Args) Apply(cfg *Config) error {
	if a == nil || a.flags == nil {
		return nil
	}
	if a.flags.Changed("install-location") {
		cfg.InstallLocation = a.installLocation
	}
	if a.flags.Changed("dst") {
		cfg.Dst = a.dst
	}
	if a.flags.Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if a.flags.Changed("tcp-port") {
		port, err := strconv.Atoi(strings.TrimSpace(a.tcpPort))
		if err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidPort, a.tcpPort)
		}
		cfg.TCPPort = port
	}
	return nil
}

// Usage writes the flag help text.
func (a *Args) Usage(w io.Writer) {
	fmt.Fprintf(w, "usage: %s --tcp-port PORT [--dst DIR] [--install-location HOST] [--config FILE]\n\n", a.flags.Name())
	fmt.Fprint(w, a.flags.FlagUsages())
}

// Load resolves the full configuration from argv, the environment and the
// optional config file, then validates it.
func Load(name string, argv []string) (Config, *Args, error) {
	args, err := ParseArgs(name, argv)
	if err != nil {
		return Config{}, nil, err
	}
	if args.Help || args.ShowVersion {
		return Config{}, args, nil
	}

	cfg, err := NewLoader(args.ConfigPath).Load()
	if err != nil {
		return cfg, args, err
	}
	if err := args.Apply(&cfg); err != nil {
		return cfg, args, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, args, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, args, nil
}
