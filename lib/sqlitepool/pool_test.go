// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/remap/ndnfs-port/lib/sqlitepool"
)

const testSchema = `
CREATE TABLE IF NOT EXISTS numbers (value INTEGER NOT NULL);
`

func openTestPool(t *testing.T) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		PoolSize: 4,
		Schema:   testSchema,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}

func TestJournalModeIsWAL(t *testing.T) {
	pool := openTestPool(t)

	var journalMode string
	err := pool.With(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				journalMode = stmt.ColumnText(0)
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("journal_mode = %q, want %q", journalMode, "wal")
	}
}

func TestSchemaApplied(t *testing.T) {
	pool := openTestPool(t)

	err := pool.With(context.Background(), func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "INSERT INTO numbers (value) VALUES (?)", &sqlitex.ExecOptions{
			Args: []any{7},
		})
	})
	if err != nil {
		t.Fatalf("INSERT into schema table: %v", err)
	}
}

func TestConcurrentReaders(t *testing.T) {
	pool := openTestPool(t)
	ctx := context.Background()

	err := pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.ExecuteScript(conn, "INSERT INTO numbers (value) VALUES (1), (2), (3);", nil)
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	const readers = 8
	var waitGroup sync.WaitGroup
	sums := make(chan int64, readers)
	errs := make(chan error, readers)
	for range readers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			var sum int64
			err := pool.With(ctx, func(conn *sqlite.Conn) error {
				return sqlitex.Execute(conn, "SELECT value FROM numbers", &sqlitex.ExecOptions{
					ResultFunc: func(stmt *sqlite.Stmt) error {
						sum += stmt.ColumnInt64(0)
						return nil
					},
				})
			})
			if err != nil {
				errs <- err
				return
			}
			sums <- sum
		}()
	}
	waitGroup.Wait()
	close(sums)
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	for sum := range sums {
		if sum != 6 {
			t.Errorf("sum = %d, want 6", sum)
		}
	}
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("Open with empty Path succeeded")
	}
}
