// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable wall clock.
//
// Versions in ndnfs are Unix timestamps, so every component that mints
// a version (the version manager, the volume) takes a Clock instead of
// calling time.Now directly. Production code passes Real(); tests pass
// Fake() and move time explicitly:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	manager := versioning.New(versioning.Config{Clock: c, ...})
//	c.Advance(time.Second)
package clock
