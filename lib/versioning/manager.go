// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package versioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/metastore"
)

var (
	// ErrBusy is returned by AdmitWriter when another writer is
	// already admitted on the path.
	ErrBusy = errors.New("versioning: writer already admitted")

	// ErrConflict is returned by Create for a path that exists.
	ErrConflict = errors.New("versioning: path exists")

	// ErrNoWriter is returned by CommitWriter and AbortWriter when no
	// writer is admitted.
	ErrNoWriter = errors.New("versioning: no writer admitted")
)

// Config holds the dependencies of a Manager.
type Config struct {
	Store *metastore.Store

	// Clock supplies version timestamps. Nil means the real clock.
	Clock clock.Clock

	Logger *slog.Logger
}

// Manager owns the current/temp version transitions of file entries.
type Manager struct {
	store  *metastore.Store
	clock  clock.Clock
	logger *slog.Logger
}

// New returns a Manager over cfg.Store.
func New(cfg Config) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("versioning: Store is required")
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{store: cfg.Store, clock: clk, logger: logger}, nil
}

// nextVersion is max(now, current+1), so versions strictly increase even
// when two commits land in the same second or the clock steps back.
func (m *Manager) nextVersion(current int64) int64 {
	return max(m.clock.Now().Unix(), current+1)
}

// AdmitWriter admits a writer on path and returns its temp version.
// Fails immediately with ErrBusy if a writer is already admitted; there
// is no waiting. The new version starts as a metadata copy of the
// current one (size and segment count, no signatures); content is not
// duplicated.
func (m *Manager) AdmitWriter(ctx context.Context, filePath string) (int64, error) {
	entry, err := m.store.GetEntry(ctx, filePath)
	if err != nil {
		return 0, err
	}
	if entry.TempVersion != metastore.NoVersion {
		return 0, fmt.Errorf("%w: %s (version %d)", ErrBusy, filePath, entry.TempVersion)
	}

	version := m.nextVersion(entry.CurrentVersion)
	if err := m.store.ClaimWriter(ctx, filePath, version); err != nil {
		if errors.Is(err, metastore.ErrClaimed) {
			return 0, fmt.Errorf("%w: %s", ErrBusy, filePath)
		}
		return 0, err
	}

	row := metastore.Version{Path: filePath, Version: version}
	if entry.CurrentVersion != metastore.NoVersion {
		current, err := m.store.GetVersion(ctx, filePath, entry.CurrentVersion)
		switch {
		case err == nil:
			row.Size = current.Size
			row.TotalSegments = current.TotalSegments
		case errors.Is(err, metastore.ErrNotFound):
			m.logger.Warn("current version row missing, starting empty",
				"path", filePath, "version", entry.CurrentVersion)
		default:
			m.release(ctx, filePath, version)
			return 0, err
		}
	}
	if err := m.store.PutVersion(ctx, row); err != nil {
		m.release(ctx, filePath, version)
		return 0, err
	}

	if entry.SignatureState == metastore.SignatureReady {
		if err := m.store.SetSignatureState(ctx, filePath, metastore.SignatureReadyOld); err != nil {
			m.logger.Warn("marking signatures old failed", "path", filePath, "error", err)
		}
	}

	m.logger.Debug("writer admitted", "path", filePath, "version", version, "current", entry.CurrentVersion)
	return version, nil
}

// release undoes a claim after a failed admission.
func (m *Manager) release(ctx context.Context, filePath string, version int64) {
	if err := m.store.ReleaseWriter(ctx, filePath, version); err != nil {
		m.logger.Error("releasing writer claim failed", "path", filePath, "version", version, "error", err)
	}
}

// CommitWriter makes the admitted temp version current and drops the
// superseded version's rows. Returns the committed version.
//
// The entry update and the deletion of the old rows are separate
// statements. A reader between them can see the new current version
// alongside the old version's rows, and a crash between them leaves the
// old rows orphaned.
func (m *Manager) CommitWriter(ctx context.Context, filePath string) (int64, error) {
	entry, err := m.store.GetEntry(ctx, filePath)
	if err != nil {
		return 0, err
	}
	if entry.TempVersion == metastore.NoVersion {
		return 0, fmt.Errorf("%w: %s", ErrNoWriter, filePath)
	}
	version := entry.TempVersion

	row, err := m.store.GetVersion(ctx, filePath, version)
	if err != nil {
		return 0, err
	}
	if err := m.store.CommitEntry(ctx, filePath, version, row.Size, m.clock.Now()); err != nil {
		if errors.Is(err, metastore.ErrNotClaimed) {
			return 0, fmt.Errorf("%w: %s", ErrNoWriter, filePath)
		}
		return 0, err
	}

	previous := entry.CurrentVersion
	if previous != metastore.NoVersion && previous != version {
		if err := m.dropVersion(ctx, filePath, previous); err != nil {
			return version, err
		}
	}

	m.logger.Debug("writer committed", "path", filePath, "version", version, "size", row.Size, "previous", previous)
	return version, nil
}

// AbortWriter discards the admitted temp version without committing
// it. Bytes already written to the real file are not rolled back.
func (m *Manager) AbortWriter(ctx context.Context, filePath string) error {
	entry, err := m.store.GetEntry(ctx, filePath)
	if err != nil {
		return err
	}
	if entry.TempVersion == metastore.NoVersion {
		return fmt.Errorf("%w: %s", ErrNoWriter, filePath)
	}
	if err := m.dropVersion(ctx, filePath, entry.TempVersion); err != nil {
		return err
	}
	if err := m.store.ReleaseWriter(ctx, filePath, entry.TempVersion); err != nil {
		if errors.Is(err, metastore.ErrNotClaimed) {
			return fmt.Errorf("%w: %s", ErrNoWriter, filePath)
		}
		return err
	}
	if entry.SignatureState == metastore.SignatureReadyOld {
		if err := m.store.SetSignatureState(ctx, filePath, metastore.SignatureReady); err != nil {
			return err
		}
	}
	m.logger.Debug("writer aborted", "path", filePath, "version", entry.TempVersion)
	return nil
}

// Create adds an entry for a new file with an empty current version.
// Returns the version, or ErrConflict if the path exists.
func (m *Manager) Create(ctx context.Context, filePath string, mode uint32, kind metastore.Kind, mimeType string) (int64, error) {
	now := m.clock.Now()
	version := now.Unix()

	err := m.store.InsertEntry(ctx, metastore.Entry{
		Path:           filePath,
		ParentPath:     path.Dir(filePath),
		Kind:           kind,
		Mode:           mode,
		Atime:          now,
		Mtime:          now,
		CurrentVersion: version,
		TempVersion:    metastore.NoVersion,
		MimeType:       mimeType,
		SignatureState: metastore.SignatureNotReady,
	})
	if err != nil {
		if errors.Is(err, metastore.ErrExists) {
			return 0, fmt.Errorf("%w: %s", ErrConflict, filePath)
		}
		return 0, err
	}
	if err := m.store.PutVersion(ctx, metastore.Version{Path: filePath, Version: version}); err != nil {
		return 0, err
	}

	m.logger.Debug("entry created", "path", filePath, "version", version, "kind", kind, "mime_type", mimeType)
	return version, nil
}

// Remove deletes the entry and the rows of its current and temp
// versions. Removing a missing path is not an error.
func (m *Manager) Remove(ctx context.Context, filePath string) error {
	entry, err := m.store.GetEntry(ctx, filePath)
	if errors.Is(err, metastore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, version := range []int64{entry.CurrentVersion, entry.TempVersion} {
		if version == metastore.NoVersion {
			continue
		}
		if err := m.dropVersion(ctx, filePath, version); err != nil {
			return err
		}
	}
	if err := m.store.DeleteEntry(ctx, filePath); err != nil {
		return err
	}
	m.logger.Debug("entry removed", "path", filePath)
	return nil
}

func (m *Manager) dropVersion(ctx context.Context, filePath string, version int64) error {
	if _, err := m.store.DeleteSegmentsFrom(ctx, filePath, version, 0); err != nil {
		return err
	}
	return m.store.DeleteVersion(ctx, filePath, version)
}

// Entry returns the entry for path.
func (m *Manager) Entry(ctx context.Context, filePath string) (metastore.Entry, error) {
	return m.store.GetEntry(ctx, filePath)
}

// Version returns the (path, version) row.
func (m *Manager) Version(ctx context.Context, filePath string, version int64) (metastore.Version, error) {
	return m.store.GetVersion(ctx, filePath, version)
}

// SetSignatureState records whether the current version's signatures
// are servable.
func (m *Manager) SetSignatureState(ctx context.Context, filePath string, state metastore.SignatureState) error {
	return m.store.SetSignatureState(ctx, filePath, state)
}
