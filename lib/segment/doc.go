// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package segment converts between byte offsets and fixed-size
// segments of a file, reads and writes segment-aligned content against
// the real file on disk, and keeps one signature per segment in the
// metadata store.
//
// A signature covers a whole segment. Writing part of a segment
// therefore reads the segment, overlays the new bytes and rewrites and
// re-signs all of it; truncation re-signs the new last segment over its
// shortened content. Signing at write time means serving a segment
// costs one row lookup and one read, with no cryptography.
//
// Versions do not snapshot content. Every version of a path reads the
// same real file; a version is only the size, segment count and
// signatures recorded for it. Requesting an old version after the file
// changed returns current bytes with the old signatures, which will not
// verify.
package segment
