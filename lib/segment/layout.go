// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package segment

// DefaultShift gives the standard 8192-byte segment.
const DefaultShift = 13

// Layout maps byte offsets to segment indices. Segment i covers
// [i<<Shift, (i+1)<<Shift).
type Layout struct {
	Shift uint
}

// DefaultLayout returns the 8192-byte layout.
func DefaultLayout() Layout {
	return Layout{Shift: DefaultShift}
}

// Size is the segment size in bytes.
func (l Layout) Size() int64 {
	return 1 << l.Shift
}

// ToSegment returns the index of the segment containing offset.
func (l Layout) ToSegment(offset int64) int64 {
	return offset >> l.Shift
}

// Base returns the offset of the first byte of segment index.
func (l Layout) Base(index int64) int64 {
	return index << l.Shift
}

// Count returns the number of segments needed for size bytes,
// ceil(size / Size()).
func (l Layout) Count(size int64) int64 {
	if size <= 0 {
		return 0
	}
	return l.ToSegment(size-1) + 1
}
