// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package packet defines the Data packet returned for every satisfied
// request and the payloads carried in its content.
//
// A Data packet is a CBOR map of name, content, final block ID, key
// locator and signature. The signature covers only the deterministic
// CBOR encoding of {name, content}, so a segment signature computed at
// commit time stays valid when the responder later attaches the final
// block ID.
//
// Content payloads:
//
//   - segment: raw file bytes
//   - file attributes: FileInfo (size, version, total segments,
//     optional MIME type and kind)
//   - directory listing: DirListing, an ordered list of {path, kind}
//   - meta: the MIME type string as raw bytes
package packet
