// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package process holds the shared entrypoint helpers for ndnfs
// binaries.
package process
