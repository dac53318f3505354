// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package volume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"

	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/mimetype"
	"github.com/remap/ndnfs-port/lib/segment"
	"github.com/remap/ndnfs-port/lib/versioning"
)

// Config holds the dependencies of a Volume.
type Config struct {
	Store    *metastore.Store
	Versions *versioning.Manager
	Codec    *segment.Codec

	// Types infers the MIME type recorded for new files. Nil means
	// mimetype.Default().
	Types *mimetype.Table

	Logger *slog.Logger
}

// Volume is the write path: it keeps the real files under the codec's
// root and the metadata store in step. Safe for concurrent use across
// paths; per path, only one writer is admitted at a time.
type Volume struct {
	store    *metastore.Store
	versions *versioning.Manager
	codec    *segment.Codec
	types    *mimetype.Table
	logger   *slog.Logger
}

// New validates cfg and returns a Volume.
func New(cfg Config) (*Volume, error) {
	if cfg.Store == nil || cfg.Versions == nil || cfg.Codec == nil {
		return nil, fmt.Errorf("volume: Store, Versions and Codec are required")
	}
	types := cfg.Types
	if types == nil {
		types = mimetype.Default()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Volume{
		store:    cfg.Store,
		versions: cfg.Versions,
		codec:    cfg.Codec,
		types:    types,
		logger:   logger,
	}, nil
}

// RealPath returns where path's content lives on disk.
func (v *Volume) RealPath(filePath string) string {
	return v.codec.RealPath(filePath)
}

// Create makes an empty real file at path and registers it. Fails with
// versioning.ErrConflict if the file or its entry already exists.
func (v *Volume) Create(ctx context.Context, filePath string, mode uint32) error {
	file, err := os.OpenFile(v.RealPath(filePath), os.O_WRONLY|os.O_CREATE|os.O_EXCL, os.FileMode(mode&0o7777))
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%w: %s", versioning.ErrConflict, filePath)
		}
		return fmt.Errorf("%w: creating %s: %w", segment.ErrIO, filePath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("%w: creating %s: %w", segment.ErrIO, filePath, err)
	}
	if err := v.Register(ctx, filePath, mode); err != nil {
		os.Remove(v.RealPath(filePath))
		return err
	}
	return nil
}

// Register records metadata for a real file that already exists (the
// FUSE adapter creates the file itself). The kind comes from the S_IFMT
// bits of mode, the MIME type from the extension.
func (v *Volume) Register(ctx context.Context, filePath string, mode uint32) error {
	kind := metastore.KindFromMode(mode)
	mimeType := v.types.Infer(filePath)
	if _, err := v.versions.Create(ctx, filePath, mode, kind, mimeType); err != nil {
		return err
	}
	v.logger.Info("file registered", "path", filePath, "kind", kind, "mime_type", mimeType)
	return nil
}

// OpenWrite admits a writer on path and returns its version. Fails with
// versioning.ErrBusy if another writer is open.
func (v *Volume) OpenWrite(ctx context.Context, filePath string) (int64, error) {
	return v.versions.AdmitWriter(ctx, filePath)
}

// Write writes buf at offset into the admitted version and returns the
// number of bytes written.
func (v *Volume) Write(ctx context.Context, filePath string, version int64, buf []byte, offset int64) (int, error) {
	if _, err := v.codec.WriteVersion(ctx, filePath, version, buf, offset); err != nil {
		return 0, err
	}
	return len(buf), nil
}

// Truncate shrinks the admitted version to length.
func (v *Volume) Truncate(ctx context.Context, filePath string, version, length int64) error {
	return v.codec.TruncateVersion(ctx, filePath, version, length)
}

// TruncatePath truncates path outside an open write. If a writer is
// already admitted the truncation applies to its version; otherwise a
// writer is admitted, the version truncated and released.
func (v *Volume) TruncatePath(ctx context.Context, filePath string, length int64) error {
	entry, err := v.store.GetEntry(ctx, filePath)
	if err != nil {
		return err
	}
	if entry.TempVersion != metastore.NoVersion {
		return v.Truncate(ctx, filePath, entry.TempVersion, length)
	}

	version, err := v.OpenWrite(ctx, filePath)
	if err != nil {
		return err
	}
	if err := v.Truncate(ctx, filePath, version, length); err != nil {
		if abortErr := v.versions.AbortWriter(ctx, filePath); abortErr != nil {
			v.logger.Error("aborting writer after failed truncate", "path", filePath, "error", abortErr)
		}
		return err
	}
	return v.Release(ctx, filePath)
}

// Release signs every unsigned segment of the admitted version, commits
// it and marks the entry's signatures ready. If signing fails the
// writer is aborted.
func (v *Volume) Release(ctx context.Context, filePath string) error {
	entry, err := v.store.GetEntry(ctx, filePath)
	if err != nil {
		return err
	}
	if entry.TempVersion == metastore.NoVersion {
		return fmt.Errorf("%w: %s", versioning.ErrNoWriter, filePath)
	}

	signed, err := v.codec.SealVersion(ctx, filePath, entry.TempVersion)
	if err != nil {
		if abortErr := v.versions.AbortWriter(ctx, filePath); abortErr != nil {
			v.logger.Error("aborting writer after failed seal", "path", filePath, "error", abortErr)
		}
		return err
	}

	version, err := v.versions.CommitWriter(ctx, filePath)
	if err != nil {
		return err
	}
	if err := v.versions.SetSignatureState(ctx, filePath, metastore.SignatureReady); err != nil {
		return err
	}
	v.logger.Info("version committed", "path", filePath, "version", version, "sealed_segments", signed)
	return nil
}

// Abort discards the admitted version.
func (v *Volume) Abort(ctx context.Context, filePath string) error {
	return v.versions.AbortWriter(ctx, filePath)
}

// Remove drops path's metadata. The real file is left to the caller.
func (v *Volume) Remove(ctx context.Context, filePath string) error {
	if err := v.versions.Remove(ctx, filePath); err != nil {
		return err
	}
	v.logger.Info("file removed", "path", filePath)
	return nil
}

// Rename moves path's metadata from one path to another and re-signs
// the current version, whose segment names changed. Any entry at to is
// replaced. A source without an entry (a directory, or a file never
// registered) is not an error. The real file is left to the caller.
func (v *Volume) Rename(ctx context.Context, from, to string) error {
	if err := v.versions.Remove(ctx, to); err != nil {
		return err
	}
	err := v.store.RenamePath(ctx, from, to, path.Dir(to))
	if errors.Is(err, metastore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	entry, err := v.store.GetEntry(ctx, to)
	if err != nil {
		return err
	}
	if entry.CurrentVersion != metastore.NoVersion {
		if err := v.codec.ResignVersion(ctx, to, entry.CurrentVersion); err != nil {
			return err
		}
	}
	v.logger.Info("file renamed", "from", from, "to", to, "version", entry.CurrentVersion)
	return nil
}

// Publish copies content from reader into path through the write path,
// creating the file if it does not exist, and commits it. Returns the
// committed version.
func (v *Volume) Publish(ctx context.Context, filePath string, mode uint32, reader io.Reader) (int64, error) {
	err := v.Create(ctx, filePath, mode)
	if err != nil && !errors.Is(err, versioning.ErrConflict) {
		return 0, err
	}
	if errors.Is(err, versioning.ErrConflict) {
		if _, lookupErr := v.store.GetEntry(ctx, filePath); errors.Is(lookupErr, metastore.ErrNotFound) {
			if err := v.Register(ctx, filePath, mode); err != nil {
				return 0, err
			}
		}
	}

	version, err := v.OpenWrite(ctx, filePath)
	if err != nil {
		return 0, err
	}

	buffer := make([]byte, v.codec.Layout().Size()*16)
	var offset int64
	for {
		n, readErr := io.ReadFull(reader, buffer)
		if n > 0 {
			if _, err := v.Write(ctx, filePath, version, buffer[:n], offset); err != nil {
				v.abortQuietly(ctx, filePath)
				return 0, err
			}
			offset += int64(n)
		}
		if errors.Is(readErr, io.EOF) || errors.Is(readErr, io.ErrUnexpectedEOF) {
			break
		}
		if readErr != nil {
			v.abortQuietly(ctx, filePath)
			return 0, fmt.Errorf("volume: reading content for %s: %w", filePath, readErr)
		}
	}

	row, err := v.versions.Version(ctx, filePath, version)
	if err != nil {
		v.abortQuietly(ctx, filePath)
		return 0, err
	}
	if offset < row.Size {
		if err := v.Truncate(ctx, filePath, version, offset); err != nil {
			v.abortQuietly(ctx, filePath)
			return 0, err
		}
	}
	if err := v.Release(ctx, filePath); err != nil {
		return 0, err
	}
	return version, nil
}

func (v *Volume) abortQuietly(ctx context.Context, filePath string) {
	if err := v.versions.AbortWriter(ctx, filePath); err != nil {
		v.logger.Error("aborting writer failed", "path", filePath, "error", err)
	}
}
