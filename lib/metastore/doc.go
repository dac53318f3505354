// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package metastore persists the three ndnfs metadata relations in
// SQLite:
//
//	file_system    one row per path (Entry)
//	file_versions  one row per (path, version) (Version)
//	file_segments  one row per (path, version, segment) (Segment)
//
// Every operation is a point lookup, insert, update or delete keyed by
// those identities; there are no joins. Directory rows are never
// stored: directories are listed from the real filesystem.
//
// The store does not coordinate writers. The single compare-and-set it
// offers, ClaimWriter, is the primitive on which the versioning package
// builds write admission. Multi-row updates (commit, remove) are issued
// as separate statements and can be observed half-applied by a
// concurrent reader; only RenamePath runs in a transaction.
//
// Times are stored as Unix seconds.
package metastore
