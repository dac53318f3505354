// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// ndnfs-fetch browses and downloads an ndnfs tree from a running
// ndnfs-server. Every answer is checked against the server's public
// key.
//
// Usage:
//
//	ndnfs-fetch [flags] show <name>       print a directory listing or file info
//	ndnfs-fetch [flags] get <name>        write the file's content to --output
//	ndnfs-fetch [flags]                   read commands from stdin
//
// A name is either a full name URI under the served prefix or a path
// relative to it.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/remap/ndnfs-port/lib/config"
	"github.com/remap/ndnfs-port/lib/face"
	"github.com/remap/ndnfs-port/lib/process"
	"github.com/remap/ndnfs-port/lib/signing"
	"github.com/remap/ndnfs-port/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flagSet := pflag.NewFlagSet("ndnfs-fetch", pflag.ContinueOnError)
	config.AddFlags(flagSet)
	publicKey := flagSet.String("public-key", "", "server public key (default: the key file with a .pub suffix)")
	output := flagSet.StringP("output", "o", "", "write fetched content to this file")
	showVersion := flagSet.Bool("version", false, "print version information and exit")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if *showVersion {
		version.Print("ndnfs-fetch")
		return nil
	}

	cfg, err := config.FromFlags(flagSet)
	if err != nil {
		return err
	}
	keyPath := *publicKey
	if keyPath == "" {
		keyPath = cfg.Paths.KeyFile + signing.PublicKeySuffix
	}
	verifier, err := signing.LoadVerifier(keyPath)
	if err != nil {
		return err
	}

	f := &fetcher{
		client:      face.NewClient(cfg.Paths.Socket),
		verifier:    verifier,
		prefix:      cfg.PrefixName(),
		compression: cfg.Compression(),
		lifetime:    cfg.Lifetime(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	args := flagSet.Args()
	switch {
	case len(args) == 0:
		return interactive(ctx, f)
	case len(args) == 2 && args[0] == "show":
		return f.show(ctx, args[1], os.Stdout)
	case len(args) == 2 && args[0] == "get":
		return download(ctx, f, args[1], *output)
	default:
		return fmt.Errorf("usage: ndnfs-fetch [flags] [show|get <name>]")
	}
}

// download writes the file at target to outputPath, or to stdout when
// stdout is not a terminal.
func download(ctx context.Context, f *fetcher, target, outputPath string) error {
	var out io.Writer = os.Stdout
	if outputPath == "" {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("refusing to write file content to a terminal; use --output or redirect stdout")
		}
	} else {
		file, err := os.Create(outputPath)
		if err != nil {
			return err
		}
		defer file.Close()
		out = file
	}

	written, err := f.get(ctx, target, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "fetched %d bytes, every segment verified\n", written)
	return nil
}

// interactive reads commands from stdin until EOF or quit. The prompt
// is shown only when stdin is a terminal.
func interactive(ctx context.Context, f *fetcher) error {
	prompt := term.IsTerminal(int(os.Stdin.Fd()))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if prompt {
			fmt.Fprint(os.Stdout, "ndnfs> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		err := f.command(ctx, scanner.Text(), os.Stdout)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stdout, "error: %v\n", err)
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}
