// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package name implements hierarchical content names and the request
// classifier that turns an incoming name into a path, a version and a
// segment.
//
// A Name is an ordered list of opaque byte-string components. The
// first byte of a component is its type marker:
//
//	0xFD  version     big-endian non-negative integer payload
//	0x00  segment     big-endian non-negative integer payload
//	0xC1  structural  opaque tag (FileTag, DirTag), never part of a path
//	other plain       UTF-8 path element, or the "meta" literal
//
// None of the marker bytes can start a valid UTF-8 file name (0x00 is
// NUL, 0xC1 and 0xFD are never UTF-8 lead bytes), so plain path
// components and typed components never collide.
//
// The URI form escapes every byte outside [A-Za-z0-9+._-] as %XX, and
// writes a component made only of periods with three extra leading
// periods, so "..." is the empty component:
//
//	/ndn/broadcast/ndnfs/doc.txt/%FD%05/%00%02
//
// Parse applies the ordering rules: path components first, then at
// most one version, then either at most one segment or the "meta"
// literal. Any deviation is ErrInvalidRequest and nothing extracted
// from the name is trusted.
package name
