// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package versioning manages the lifecycle of a file's versions and
// the single-writer admission that guards it.
//
// Every entry has a current version (the one served) and, while a
// writer is open, a temp version. The temp version doubles as the
// write lock: AdmitWriter sets it with a compare-and-set against -1 and
// fails with ErrBusy when it is already set. Admission never waits.
//
//	AdmitWriter   temp := max(now, current+1); copy size/segments
//	  ... segment writes against temp ...
//	CommitWriter  current := temp; temp := -1; drop old version rows
//
// Version numbers are Unix seconds, bumped past the current version
// when the clock has not advanced.
package versioning
