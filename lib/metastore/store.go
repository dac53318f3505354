// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package metastore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/remap/ndnfs-port/lib/sqlitepool"
)

// NoVersion is the stored value of an absent current or temp version.
const NoVersion int64 = -1

var (
	// ErrNotFound is returned when the keyed row does not exist.
	ErrNotFound = errors.New("metastore: not found")

	// ErrExists is returned by InsertEntry for a path that already
	// has an entry.
	ErrExists = errors.New("metastore: already exists")

	// ErrClaimed is returned by ClaimWriter when the entry already has
	// a temp version.
	ErrClaimed = errors.New("metastore: writer already claimed")

	// ErrNotClaimed is returned by ReleaseWriter and CommitEntry when
	// the entry's temp version is not the one given.
	ErrNotClaimed = errors.New("metastore: writer not claimed")
)

const schema = `
CREATE TABLE IF NOT EXISTS file_system (
	path            TEXT PRIMARY KEY,
	parent_path     TEXT NOT NULL,
	kind            INTEGER NOT NULL,
	mode            INTEGER NOT NULL,
	atime           INTEGER NOT NULL,
	mtime           INTEGER NOT NULL,
	size            INTEGER NOT NULL DEFAULT 0,
	current_version INTEGER NOT NULL DEFAULT -1,
	temp_version    INTEGER NOT NULL DEFAULT -1,
	mime_type       TEXT NOT NULL DEFAULT '',
	signature_state INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS file_system_parent ON file_system (parent_path);

CREATE TABLE IF NOT EXISTS file_versions (
	path           TEXT NOT NULL,
	version        INTEGER NOT NULL,
	size           INTEGER NOT NULL,
	total_segments INTEGER NOT NULL,
	PRIMARY KEY (path, version)
);

CREATE TABLE IF NOT EXISTS file_segments (
	path      TEXT NOT NULL,
	version   INTEGER NOT NULL,
	segment   INTEGER NOT NULL,
	signature BLOB NOT NULL,
	PRIMARY KEY (path, version, segment)
);
`

// Entry is a file_system row.
type Entry struct {
	Path           string
	ParentPath     string
	Kind           Kind
	Mode           uint32
	Atime          time.Time
	Mtime          time.Time
	Size           int64
	CurrentVersion int64
	TempVersion    int64
	MimeType       string
	SignatureState SignatureState
}

// Version is a file_versions row.
type Version struct {
	Path          string
	Version       int64
	Size          int64
	TotalSegments int64
}

// Segment is a file_segments row.
type Segment struct {
	Path      string
	Version   int64
	Index     int64
	Signature []byte
}

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the SQLite database file.
	Path string

	// PoolSize is passed to sqlitepool. Zero means its default.
	PoolSize int

	// Logger receives store lifecycle messages. Nil discards them.
	Logger *slog.Logger
}

// Store is the metadata store. Safe for concurrent use.
type Store struct {
	pool   *sqlitepool.Pool
	logger *slog.Logger
}

// Open opens (creating if needed) the database at cfg.Path and applies
// the schema.
func Open(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("metastore: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     cfg.Path,
		PoolSize: cfg.PoolSize,
		Schema:   schema,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("metastore: %w", err)
	}

	// Take one connection so schema errors surface here.
	store := &Store{pool: pool, logger: logger}
	if err := pool.With(context.Background(), func(*sqlite.Conn) error { return nil }); err != nil {
		pool.Close()
		return nil, fmt.Errorf("metastore: preparing %s: %w", cfg.Path, err)
	}
	return store, nil
}

// Close closes the underlying pool.
func (s *Store) Close() error {
	return s.pool.Close()
}

// exec runs one statement with args on a pooled connection and returns
// the number of rows it changed.
func (s *Store) exec(ctx context.Context, query string, args []any, result func(*sqlite.Stmt) error) (int, error) {
	var changes int
	err := s.pool.With(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args:       args,
			ResultFunc: result,
		}); err != nil {
			return err
		}
		changes = conn.Changes()
		return nil
	})
	return changes, err
}

func unixTime(seconds int64) time.Time {
	return time.Unix(seconds, 0)
}

// --- file_system ---

const entryColumns = `path, parent_path, kind, mode, atime, mtime, size,
	current_version, temp_version, mime_type, signature_state`

func scanEntry(stmt *sqlite.Stmt) Entry {
	return Entry{
		Path:           stmt.ColumnText(0),
		ParentPath:     stmt.ColumnText(1),
		Kind:           Kind(stmt.ColumnInt64(2)),
		Mode:           uint32(stmt.ColumnInt64(3)),
		Atime:          unixTime(stmt.ColumnInt64(4)),
		Mtime:          unixTime(stmt.ColumnInt64(5)),
		Size:           stmt.ColumnInt64(6),
		CurrentVersion: stmt.ColumnInt64(7),
		TempVersion:    stmt.ColumnInt64(8),
		MimeType:       stmt.ColumnText(9),
		SignatureState: SignatureState(stmt.ColumnInt64(10)),
	}
}

// GetEntry returns the entry for path, or ErrNotFound.
func (s *Store) GetEntry(ctx context.Context, path string) (Entry, error) {
	var entry Entry
	found := false
	_, err := s.exec(ctx, "SELECT "+entryColumns+" FROM file_system WHERE path = ?", []any{path},
		func(stmt *sqlite.Stmt) error {
			entry = scanEntry(stmt)
			found = true
			return nil
		})
	if err != nil {
		return Entry{}, fmt.Errorf("metastore: get entry %s: %w", path, err)
	}
	if !found {
		return Entry{}, fmt.Errorf("metastore: entry %s: %w", path, ErrNotFound)
	}
	return entry, nil
}

// InsertEntry adds a new entry. Returns ErrExists if the path is taken.
func (s *Store) InsertEntry(ctx context.Context, entry Entry) error {
	changes, err := s.exec(ctx, `INSERT INTO file_system (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (path) DO NOTHING`,
		[]any{
			entry.Path, entry.ParentPath, int64(entry.Kind), int64(entry.Mode),
			entry.Atime.Unix(), entry.Mtime.Unix(), entry.Size,
			entry.CurrentVersion, entry.TempVersion, entry.MimeType, int64(entry.SignatureState),
		}, nil)
	if err != nil {
		return fmt.Errorf("metastore: insert entry %s: %w", entry.Path, err)
	}
	if changes == 0 {
		return fmt.Errorf("metastore: entry %s: %w", entry.Path, ErrExists)
	}
	return nil
}

// UpdateEntry overwrites every attribute of an existing entry except
// the path. Returns ErrNotFound if the entry is absent.
func (s *Store) UpdateEntry(ctx context.Context, entry Entry) error {
	changes, err := s.exec(ctx, `UPDATE file_system SET
		parent_path = ?, kind = ?, mode = ?, atime = ?, mtime = ?, size = ?,
		current_version = ?, temp_version = ?, mime_type = ?, signature_state = ?
		WHERE path = ?`,
		[]any{
			entry.ParentPath, int64(entry.Kind), int64(entry.Mode),
			entry.Atime.Unix(), entry.Mtime.Unix(), entry.Size,
			entry.CurrentVersion, entry.TempVersion, entry.MimeType, int64(entry.SignatureState),
			entry.Path,
		}, nil)
	if err != nil {
		return fmt.Errorf("metastore: update entry %s: %w", entry.Path, err)
	}
	if changes == 0 {
		return fmt.Errorf("metastore: entry %s: %w", entry.Path, ErrNotFound)
	}
	return nil
}

// DeleteEntry removes the entry for path. Deleting a missing entry is
// not an error.
func (s *Store) DeleteEntry(ctx context.Context, path string) error {
	if _, err := s.exec(ctx, "DELETE FROM file_system WHERE path = ?", []any{path}, nil); err != nil {
		return fmt.Errorf("metastore: delete entry %s: %w", path, err)
	}
	return nil
}

// ListChildren returns the entries whose parent_path is parent, ordered
// by path.
func (s *Store) ListChildren(ctx context.Context, parent string) ([]Entry, error) {
	var children []Entry
	_, err := s.exec(ctx, "SELECT "+entryColumns+" FROM file_system WHERE parent_path = ? ORDER BY path",
		[]any{parent},
		func(stmt *sqlite.Stmt) error {
			children = append(children, scanEntry(stmt))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("metastore: list children of %s: %w", parent, err)
	}
	return children, nil
}

// SetSignatureState updates only the signature state of path.
func (s *Store) SetSignatureState(ctx context.Context, path string, state SignatureState) error {
	changes, err := s.exec(ctx, "UPDATE file_system SET signature_state = ? WHERE path = ?",
		[]any{int64(state), path}, nil)
	if err != nil {
		return fmt.Errorf("metastore: set signature state of %s: %w", path, err)
	}
	if changes == 0 {
		return fmt.Errorf("metastore: entry %s: %w", path, ErrNotFound)
	}
	return nil
}

// ClaimWriter sets temp_version to version if and only if no writer is
// currently claimed. Returns ErrClaimed if one is, ErrNotFound if the
// entry is absent. The check and the update are one statement.
func (s *Store) ClaimWriter(ctx context.Context, path string, version int64) error {
	changes, err := s.exec(ctx,
		"UPDATE file_system SET temp_version = ? WHERE path = ? AND temp_version = -1",
		[]any{version, path}, nil)
	if err != nil {
		return fmt.Errorf("metastore: claim writer on %s: %w", path, err)
	}
	if changes == 1 {
		return nil
	}
	if _, err := s.GetEntry(ctx, path); err != nil {
		return err
	}
	return fmt.Errorf("metastore: entry %s: %w", path, ErrClaimed)
}

// ReleaseWriter clears temp_version if it still equals version.
func (s *Store) ReleaseWriter(ctx context.Context, path string, version int64) error {
	changes, err := s.exec(ctx,
		"UPDATE file_system SET temp_version = -1 WHERE path = ? AND temp_version = ?",
		[]any{path, version}, nil)
	if err != nil {
		return fmt.Errorf("metastore: release writer on %s: %w", path, err)
	}
	if changes == 0 {
		return fmt.Errorf("metastore: entry %s version %d: %w", path, version, ErrNotClaimed)
	}
	return nil
}

// CommitEntry promotes the claimed temp version to current, clears the
// claim and records size and mtime. Fails with ErrNotClaimed if
// temp_version is no longer version.
func (s *Store) CommitEntry(ctx context.Context, path string, version, size int64, mtime time.Time) error {
	changes, err := s.exec(ctx, `UPDATE file_system SET
		current_version = temp_version, temp_version = -1, size = ?, mtime = ?
		WHERE path = ? AND temp_version = ?`,
		[]any{size, mtime.Unix(), path, version}, nil)
	if err != nil {
		return fmt.Errorf("metastore: commit %s version %d: %w", path, version, err)
	}
	if changes == 0 {
		return fmt.Errorf("metastore: entry %s version %d: %w", path, version, ErrNotClaimed)
	}
	return nil
}

// --- file_versions ---

// GetVersion returns the (path, version) row, or ErrNotFound.
func (s *Store) GetVersion(ctx context.Context, path string, version int64) (Version, error) {
	var row Version
	found := false
	_, err := s.exec(ctx,
		"SELECT size, total_segments FROM file_versions WHERE path = ? AND version = ?",
		[]any{path, version},
		func(stmt *sqlite.Stmt) error {
			row = Version{
				Path:          path,
				Version:       version,
				Size:          stmt.ColumnInt64(0),
				TotalSegments: stmt.ColumnInt64(1),
			}
			found = true
			return nil
		})
	if err != nil {
		return Version{}, fmt.Errorf("metastore: get version %s@%d: %w", path, version, err)
	}
	if !found {
		return Version{}, fmt.Errorf("metastore: version %s@%d: %w", path, version, ErrNotFound)
	}
	return row, nil
}

// PutVersion inserts or replaces a version row.
func (s *Store) PutVersion(ctx context.Context, row Version) error {
	_, err := s.exec(ctx, `INSERT INTO file_versions (path, version, size, total_segments)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path, version) DO UPDATE SET size = excluded.size, total_segments = excluded.total_segments`,
		[]any{row.Path, row.Version, row.Size, row.TotalSegments}, nil)
	if err != nil {
		return fmt.Errorf("metastore: put version %s@%d: %w", row.Path, row.Version, err)
	}
	return nil
}

// DeleteVersion removes a version row. Missing rows are not an error.
func (s *Store) DeleteVersion(ctx context.Context, path string, version int64) error {
	_, err := s.exec(ctx, "DELETE FROM file_versions WHERE path = ? AND version = ?",
		[]any{path, version}, nil)
	if err != nil {
		return fmt.Errorf("metastore: delete version %s@%d: %w", path, version, err)
	}
	return nil
}

// --- file_segments ---

// GetSegment returns the (path, version, index) row, or ErrNotFound.
func (s *Store) GetSegment(ctx context.Context, path string, version, index int64) (Segment, error) {
	var row Segment
	found := false
	_, err := s.exec(ctx,
		"SELECT signature FROM file_segments WHERE path = ? AND version = ? AND segment = ?",
		[]any{path, version, index},
		func(stmt *sqlite.Stmt) error {
			signature := make([]byte, stmt.ColumnLen(0))
			stmt.ColumnBytes(0, signature)
			row = Segment{Path: path, Version: version, Index: index, Signature: signature}
			found = true
			return nil
		})
	if err != nil {
		return Segment{}, fmt.Errorf("metastore: get segment %s@%d/%d: %w", path, version, index, err)
	}
	if !found {
		return Segment{}, fmt.Errorf("metastore: segment %s@%d/%d: %w", path, version, index, ErrNotFound)
	}
	return row, nil
}

// PutSegment inserts or replaces a segment row.
func (s *Store) PutSegment(ctx context.Context, row Segment) error {
	_, err := s.exec(ctx, `INSERT INTO file_segments (path, version, segment, signature)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (path, version, segment) DO UPDATE SET signature = excluded.signature`,
		[]any{row.Path, row.Version, row.Index, row.Signature}, nil)
	if err != nil {
		return fmt.Errorf("metastore: put segment %s@%d/%d: %w", row.Path, row.Version, row.Index, err)
	}
	return nil
}

// DeleteSegment removes one segment row. Missing rows are not an error.
func (s *Store) DeleteSegment(ctx context.Context, path string, version, index int64) error {
	_, err := s.exec(ctx, "DELETE FROM file_segments WHERE path = ? AND version = ? AND segment = ?",
		[]any{path, version, index}, nil)
	if err != nil {
		return fmt.Errorf("metastore: delete segment %s@%d/%d: %w", path, version, index, err)
	}
	return nil
}

// DeleteSegmentsFrom removes every segment row of (path, version) with
// index >= start and returns how many were removed.
func (s *Store) DeleteSegmentsFrom(ctx context.Context, path string, version, start int64) (int, error) {
	changes, err := s.exec(ctx, "DELETE FROM file_segments WHERE path = ? AND version = ? AND segment >= ?",
		[]any{path, version, start}, nil)
	if err != nil {
		return 0, fmt.Errorf("metastore: delete segments of %s@%d from %d: %w", path, version, start, err)
	}
	return changes, nil
}

// SegmentIndices returns the indices of the stored segment rows of
// (path, version) in ascending order.
func (s *Store) SegmentIndices(ctx context.Context, path string, version int64) ([]int64, error) {
	var indices []int64
	_, err := s.exec(ctx, "SELECT segment FROM file_segments WHERE path = ? AND version = ? ORDER BY segment",
		[]any{path, version},
		func(stmt *sqlite.Stmt) error {
			indices = append(indices, stmt.ColumnInt64(0))
			return nil
		})
	if err != nil {
		return nil, fmt.Errorf("metastore: list segments of %s@%d: %w", path, version, err)
	}
	return indices, nil
}

// --- rename ---

// RenamePath moves every row keyed by from to the key to, and sets the
// entry's parent_path to parent. Rows already stored under to are
// replaced. Returns ErrNotFound if from has no entry. Runs in one
// IMMEDIATE transaction so a reader never sees the entry under both
// paths.
func (s *Store) RenamePath(ctx context.Context, from, to, parent string) (err error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("metastore: rename %s: %w", from, err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return fmt.Errorf("metastore: rename %s: begin transaction: %w", from, err)
	}
	defer endTransaction(&err)

	for _, query := range []string{
		"DELETE FROM file_system WHERE path = ?",
		"DELETE FROM file_versions WHERE path = ?",
		"DELETE FROM file_segments WHERE path = ?",
	} {
		if err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: []any{to}}); err != nil {
			return fmt.Errorf("metastore: rename %s: clearing %s: %w", from, to, err)
		}
	}

	if err = sqlitex.Execute(conn, "UPDATE file_system SET path = ?, parent_path = ? WHERE path = ?",
		&sqlitex.ExecOptions{Args: []any{to, parent, from}}); err != nil {
		return fmt.Errorf("metastore: rename %s to %s: %w", from, to, err)
	}
	if conn.Changes() == 0 {
		err = fmt.Errorf("metastore: entry %s: %w", from, ErrNotFound)
		return err
	}

	for _, query := range []string{
		"UPDATE file_versions SET path = ? WHERE path = ?",
		"UPDATE file_segments SET path = ? WHERE path = ?",
	} {
		if err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{Args: []any{to, from}}); err != nil {
			return fmt.Errorf("metastore: rename %s to %s: %w", from, to, err)
		}
	}

	s.logger.Debug("metadata renamed", "from", from, "to", to)
	return nil
}
