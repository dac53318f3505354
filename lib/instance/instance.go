// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package instance assembles the components of one ndnfs tree from a
// validated configuration: metadata store, signer, segment codec,
// version manager, write-path volume and response assembler.
package instance

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/config"
	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/mimetype"
	"github.com/remap/ndnfs-port/lib/responder"
	"github.com/remap/ndnfs-port/lib/segment"
	"github.com/remap/ndnfs-port/lib/signing"
	"github.com/remap/ndnfs-port/lib/versioning"
	"github.com/remap/ndnfs-port/lib/volume"
)

// Instance is an opened tree.
type Instance struct {
	Store     *metastore.Store
	Signer    *signing.Signer
	Codec     *segment.Codec
	Versions  *versioning.Manager
	Volume    *volume.Volume
	Responder *responder.Responder
}

// Open creates the configured directories and opens every component.
// The signing key is generated on first use. Close releases the store.
func Open(cfg *config.Config, clk clock.Clock, logger *slog.Logger) (*Instance, error) {
	if err := cfg.EnsurePaths(); err != nil {
		return nil, err
	}
	prefix := cfg.PrefixName()

	signer, created, err := signing.LoadOrCreate(cfg.Paths.KeyFile, prefix)
	if err != nil {
		return nil, fmt.Errorf("loading signing key: %w", err)
	}
	if created {
		logger.Info("signing key generated",
			"key_file", cfg.Paths.KeyFile,
			"public_key", cfg.Paths.KeyFile+signing.PublicKeySuffix,
		)
	}

	types := mimetype.Default()
	if cfg.Paths.MimeTypes != "" {
		types, err = mimetype.Load(cfg.Paths.MimeTypes)
		if err != nil {
			return nil, err
		}
	}

	store, err := metastore.Open(metastore.Config{
		Path:   cfg.Paths.Database,
		Logger: logger.With("component", "metastore"),
	})
	if err != nil {
		return nil, err
	}

	instance, err := assemble(cfg, store, signer, types, clk, logger)
	if err != nil {
		store.Close()
		return nil, err
	}
	return instance, nil
}

func assemble(cfg *config.Config, store *metastore.Store, signer *signing.Signer, types *mimetype.Table, clk clock.Clock, logger *slog.Logger) (*Instance, error) {
	prefix := cfg.PrefixName()
	if info, err := os.Stat(cfg.Paths.Root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", cfg.Paths.Root)
	}

	codec, err := segment.New(segment.Config{
		Root:   cfg.Paths.Root,
		Prefix: prefix,
		Store:  store,
		Signer: signer,
		Logger: logger.With("component", "segment"),
	})
	if err != nil {
		return nil, err
	}
	versions, err := versioning.New(versioning.Config{
		Store:  store,
		Clock:  clk,
		Logger: logger.With("component", "versioning"),
	})
	if err != nil {
		return nil, err
	}
	vol, err := volume.New(volume.Config{
		Store:    store,
		Versions: versions,
		Codec:    codec,
		Types:    types,
		Logger:   logger.With("component", "volume"),
	})
	if err != nil {
		return nil, err
	}
	assembler, err := responder.New(responder.Config{
		Prefix: prefix,
		Store:  store,
		Codec:  codec,
		Signer: signer,
		Logger: logger.With("component", "responder"),
	})
	if err != nil {
		return nil, err
	}

	return &Instance{
		Store:     store,
		Signer:    signer,
		Codec:     codec,
		Versions:  versions,
		Volume:    vol,
		Responder: assembler,
	}, nil
}

// Close closes the metadata store.
func (i *Instance) Close() error {
	return i.Store.Close()
}
