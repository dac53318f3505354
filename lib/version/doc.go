// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package version carries build information for ndnfs binaries.
//
// Values are injected at build time:
//
//	go build -ldflags "-X github.com/remap/ndnfs-port/lib/version.GitCommit=$(git rev-parse --short HEAD)"
package version
