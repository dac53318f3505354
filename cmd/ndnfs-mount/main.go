// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// ndnfs-mount mounts an ndnfs content root with FUSE. Files written
// through the mount are versioned and signed segment by segment, ready
// for ndnfs-server to serve.
//
// Usage:
//
//	ndnfs-mount [flags] <mountpoint>
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
	"github.com/remap/ndnfs-port/lib/fsmount"
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
	flagSet := pflag.NewFlagSet("ndnfs-mount", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	allowOther := flagSet.Bool("allow-other", false, "let other users access the mount")
	debug := flagSet.Bool("debug", false, "log every FUSE request")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("ndnfs-mount")
		return nil
	}

	cfg, err := config.FromFlags(flagSet)
	if err != nil {
		return err
	}
	switch flagSet.NArg() {
	case 0:
	case 1:
		cfg.Mount.Point = flagSet.Arg(0)
	default:
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(1))
	}
	if cfg.Mount.Point == "" {
		return fmt.Errorf("a mountpoint is required (argument or mount.point)")
	}
	if flagSet.Changed("allow-other") {
		cfg.Mount.AllowOther = *allowOther
	}
	if flagSet.Changed("debug") {
		cfg.Mount.Debug = *debug
	}

	logger, closeLog, err := logging.New(cfg.Logging())
	if err != nil {
		return err
	}
	defer closeLog()

	tree, err := instance.Open(cfg, clock.Real(), logger)
	if err != nil {
		return err
	}
	defer tree.Close()

	server, err := fsmount.Mount(fsmount.Options{
		Mountpoint: cfg.Mount.Point,
		Root:       cfg.Paths.Root,
		Volume:     tree.Volume,
		AllowOther: cfg.Mount.AllowOther,
		Debug:      cfg.Mount.Debug,
		Logger:     logger.With("component", "fsmount"),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := server.Unmount(); err != nil {
			logger.Error("unmount failed", "mountpoint", cfg.Mount.Point, "error", err)
		}
	}()

	server.Wait()
	logger.Info("unmounted", "mountpoint", cfg.Mount.Point)
	return nil
}
