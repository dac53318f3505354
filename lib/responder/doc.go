// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package responder answers read requests. It classifies a request name
// with name.Parse and assembles one of four responses:
//
//	segment    stored signature, segment bytes, final block ID
//	versioned  FileInfo of the version, named path/FileTag/version
//	generic    FileInfo of the current version for a file entry,
//	           otherwise a DirListing of the real directory, named
//	           path/DirTag/version(directory mtime)
//	meta       MIME type string, named path/version/meta
//
// Segment responses reuse the signature recorded when the segment was
// written; the other three are signed when built. Every miss is an
// error and the request goes unanswered; the requester's own timeout
// governs retry.
package responder
