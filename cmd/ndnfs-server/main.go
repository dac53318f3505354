// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// ndnfs-server serves an ndnfs tree under a name prefix. Interests
// arrive on a Unix socket; each is answered with a signed data packet
// assembled from the metadata database and the content root, or
// dropped when nothing matches.
//
// The -p, -d and -f flags select the prefix, database and content root
// and override any value from the configuration file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/config"
	"github.com/remap/ndnfs-port/lib/face"
	"github.com/remap/ndnfs-port/lib/instance"
	"github.com/remap/ndnfs-port/lib/logging"
	"github.com/remap/ndnfs-port/lib/process"
	"github.com/remap/ndnfs-port/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("ndnfs-server", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("ndnfs-server")
		return nil
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	cfg, err := config.FromFlags(flagSet)
	if err != nil {
		return err
	}
	logger, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := instance.Open(cfg, clock.Real(), logger)
	if err != nil {
		return err
	}
	defer tree.Close()

	server, err := face.NewServer(face.ServerConfig{
		SocketPath: cfg.Paths.Socket,
		Responder:  tree.Responder,
		Logger:     logger.With("component", "face"),
	})
	if err != nil {
		return err
	}

	logger.Info("serving",
		"prefix", cfg.Prefix,
		"database", cfg.Paths.Database,
		"root", cfg.Paths.Root,
		"socket", cfg.Paths.Socket,
		"version", version.Info(),
	)
	return server.Serve(ctx)
}
