// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the single CBOR configuration shared by every ndnfs
// wire format: face envelopes, Data packets, and the file-attribute and
// directory-listing payloads carried inside them.
//
// Encoding uses Core Deterministic Encoding (RFC 8949 §4.2). Signatures
// are computed over encoded bytes, so the same logical packet must
// always produce the same bytes on the server that signs it and the
// client that verifies it.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Stream forms (NewEncoder, NewDecoder) are used on face connections,
// where CBOR's self-delimiting items remove the need for framing.
//
// Types that only ever travel as CBOR use `cbor` struct tags. Types that
// are also printed as JSON by the command-line tools use `json` tags;
// fxamacker/cbor falls back to them.
package codec
