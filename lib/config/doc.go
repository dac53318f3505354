// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads ndnfs configuration.
//
// Configuration comes from at most one file, named by the --config flag
// or the NDNFS_CONFIG environment variable. Files ending in .json or
// .jsonc are read as JSON with comments and trailing commas; anything
// else is read as YAML. Without a file the defaults apply, which serve
// /ndn/broadcast/ndnfs from /tmp/ndnfs with the database at
// /tmp/ndnfs.db.
//
// Command-line flags registered with [AddFlags] override file values
// when they are set explicitly. The resulting [Config] is passed to
// constructors; nothing in ndnfs reads configuration from globals.
package config
