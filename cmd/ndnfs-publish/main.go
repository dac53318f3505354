// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// ndnfs-publish copies local files into an ndnfs tree through the
// write path, committing a new signed version of each.
//
// Usage:
//
//	ndnfs-publish [flags] <local-file> <tree-path>
//	ndnfs-publish [flags] - <tree-path>     (content from stdin)
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/config"
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
	flagSet := pflag.NewFlagSet("ndnfs-publish", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	mode := flagSet.Uint32("mode", 0o644, "permission bits for a newly created file")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("ndnfs-publish")
		return nil
	}
	if flagSet.NArg() != 2 {
		return fmt.Errorf("usage: ndnfs-publish [flags] <local-file> <tree-path>")
	}
	source, treePath := flagSet.Arg(0), path.Clean("/"+flagSet.Arg(1))
	if treePath == "/" {
		return fmt.Errorf("tree path must name a file")
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

	var reader io.Reader = os.Stdin
	if source != "-" {
		file, err := os.Open(source)
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
	}

	if err := os.MkdirAll(filepath.Dir(tree.Volume.RealPath(treePath)), 0o755); err != nil {
		return fmt.Errorf("creating parent directories of %s: %w", treePath, err)
	}
	committed, err := tree.Volume.Publish(ctx, treePath, syscall.S_IFREG|(*mode&0o7777), reader)
	if err != nil {
		return fmt.Errorf("publishing %s: %w", treePath, err)
	}

	entry, err := tree.Versions.Entry(ctx, treePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "%s%s version %d, %d bytes, %s\n", cfg.Prefix, treePath, committed, entry.Size, entry.MimeType)
	return nil
}
