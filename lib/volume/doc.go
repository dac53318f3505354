// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package volume is the write path of ndnfs. It combines the versioning
// manager and the segment codec into the operations a filesystem
// adapter performs: create, open for writing, write, truncate, release,
// unlink and rename.
//
// A write session on one path:
//
//	version, err := vol.OpenWrite(ctx, "/doc.txt")   // ErrBusy if taken
//	_, err = vol.Write(ctx, "/doc.txt", version, data, 0)
//	err = vol.Release(ctx, "/doc.txt")                 // seal, commit
//
// Release signs any segment of the new version that no write touched
// (its content carried over from the previous version), commits the
// version and marks the entry's signatures ready.
//
// Volume does not unlink or rename real files; the FUSE adapter does
// that through the loopback filesystem and then calls Remove or Rename
// for the metadata. Renaming a directory does not re-key the entries
// beneath it.
package volume
