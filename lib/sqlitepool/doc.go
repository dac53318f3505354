// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool opens the SQLite database that holds ndnfs
// metadata.
//
// The FUSE mount (writer) and the face server (reader) are separate
// processes sharing one database file, so every connection runs in WAL
// mode: readers never block the writer and the writer never blocks
// readers. The pool wraps zombiezen.com/go/sqlite's sqlitex.Pool and
// exposes its connections directly; callers write SQL and use
// sqlitex.Execute with cached statements.
//
//	pool, err := sqlitepool.Open(sqlitepool.Config{
//	    Path:   "/tmp/ndnfs.db",
//	    Schema: schema,
//	    Logger: logger,
//	})
//	...
//	err = pool.With(ctx, func(conn *sqlite.Conn) error {
//	    return sqlitex.Execute(conn, "SELECT ...", &sqlitex.ExecOptions{...})
//	})
//
// # Pragmas
//
//   - journal_mode=WAL
//   - synchronous=NORMAL: survives process crashes, not power loss. The
//     real files on disk are the source of truth for content; metadata
//     loss at worst forces a resign.
//   - busy_timeout=5000: the two processes contend for the write lock
//     on every commit.
//   - foreign_keys=OFF: the three ndnfs relations are keyed by path and
//     have no declared references.
package sqlitepool
