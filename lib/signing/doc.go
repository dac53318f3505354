// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package signing produces and checks the per-packet signatures that
// accompany every ndnfs response.
//
// A signature is Ed25519 over the keyed BLAKE3 digest of the packet's
// signed portion (see the packet package). The Ed25519 key is not
// stored directly: a 32-byte random secret lives in a key file and the
// key is derived from it with HKDF-SHA256, bound to the identity name
// the packets carry as their key locator. Changing the identity prefix
// therefore changes the key without touching the secret.
//
// Clients verify with the public key written next to the secret.
package signing
