// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package fsmount exposes an ndnfs content root as a FUSE filesystem.
//
// The mount is a loopback over the real directory: lookups, reads,
// directories, links and attributes pass straight through to the
// underlying files. The operations that change file content or
// identity are routed through [volume.Volume] so the metadata store
// and segment signatures stay in step with the bytes on disk:
//
//   - create and mknod register the new file
//   - opening for write admits a writer and fixes its version
//   - write goes through the segment codec, signing as it goes
//   - setattr with a size truncates the version
//   - release of a write handle seals and commits the version
//   - unlink and rename move or drop the metadata
//
// Write-path errors are reported as errno values: ENOENT, EBUSY,
// EEXIST, EINVAL, EIO and ENOTSUP.
package fsmount
