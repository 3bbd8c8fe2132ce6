// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command installd receives files from a build tool over gRPC and copies
// them into a fixed destination with rsync.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/installd/internal/config"
	"github.com/ManuGH/installd/internal/daemon"
	"github.com/ManuGH/installd/internal/health"
	xglog "github.com/ManuGH/installd/internal/log"
	"github.com/ManuGH/installd/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(argv []string, stdout, stderr io.Writer) int {
	cfg, args, err := config.Load("installd", argv)
	if err != nil {
		fmt.Fprintf(stderr, "installd: %v\n", err)
		if args != nil {
			args.Usage(stderr)
		}
		return 1
	}
	if args.Help {
		args.Usage(stdout)
		return 0
	}
	if args.ShowVersion {
		fmt.Fprintln(stdout, version.String())
		return 0
	}

	xglog.Configure(xglog.Config{
		Level:   cfg.LogLevel,
		Output:  stdout,
		Service: "installd",
		Version: version.Version,
	})
	logger := xglog.WithComponent("main")

	ctx, stop := interruptContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health.PerformStartupChecks(ctx, cfg)

	d, err := daemon.New(ctx, cfg, version.Version)
	if err != nil {
		logger.Error().Err(err).Str(xglog.FieldEvent, "startup.failed").Msg("failed to build installer")
		return 1
	}

	if err := d.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("installer exited with error")
		return 1
	}
	return 0
}

// interruptContext is cancelled by the first of sigs. The handler is released
// right after, so a second signal gets the default behaviour and kills a
// process stuck in shutdown.
func interruptContext(parent context.Context, sigs ...os.Signal) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, sigs...)
	context.AfterFunc(ctx, stop)
	return ctx, stop
}
