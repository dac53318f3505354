// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"bytes"
	"fmt"
	"math"
)

// Type markers. These are wire constants shared with every client.
const (
	MarkerSegment    byte = 0x00
	MarkerVersion    byte = 0xFD
	MarkerStructural byte = 0xC1
)

// MetaLiteral is the plain component that, placed after a version,
// asks for the metadata (MIME type) of that version.
const MetaLiteral = "meta"

// Reserved structural components. They tag a response name as carrying
// file attributes or a directory listing.
var (
	FileTag = Component("\xC1.FS.file")
	DirTag  = Component("\xC1.FS.dir")
)

// Component is one element of a Name.
type Component []byte

// ComponentKind is the decoded type of a component.
type ComponentKind uint8

const (
	KindPlain ComponentKind = iota
	KindVersion
	KindSegment
	KindStructural
)

func (kind ComponentKind) String() string {
	switch kind {
	case KindPlain:
		return "plain"
	case KindVersion:
		return "version"
	case KindSegment:
		return "segment"
	case KindStructural:
		return "structural"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(kind))
	}
}

// Decoded is a component decoded into its tagged form: a number for
// version and segment components, text for plain components, and
// nothing for structural ones.
type Decoded struct {
	Kind   ComponentKind
	Number int64
	Text   string
}

// Version returns a version component for v.
func Version(v int64) Component {
	return numberWithMarker(MarkerVersion, v)
}

// Segment returns a segment component for index.
func Segment(index int64) Component {
	return numberWithMarker(MarkerSegment, index)
}

// Plain returns a plain component holding text.
func Plain(text string) Component {
	return Component(text)
}

// Kind classifies the component by its first byte. The empty component
// is plain.
func (c Component) Kind() ComponentKind {
	if len(c) == 0 {
		return KindPlain
	}
	switch c[0] {
	case MarkerVersion:
		return KindVersion
	case MarkerSegment:
		return KindSegment
	case MarkerStructural:
		return KindStructural
	default:
		return KindPlain
	}
}

// Decode returns the tagged form of c. Version and segment components
// must carry a 1 to 8 byte payload that fits in an int64.
func Decode(c Component) (Decoded, error) {
	kind := c.Kind()
	switch kind {
	case KindVersion, KindSegment:
		number, err := decodeNumber(c[1:])
		if err != nil {
			return Decoded{}, fmt.Errorf("%s component %s: %w", kind, c, err)
		}
		return Decoded{Kind: kind, Number: number}, nil
	case KindStructural:
		return Decoded{Kind: kind}, nil
	default:
		return Decoded{Kind: KindPlain, Text: string(c)}, nil
	}
}

// Equal reports whether two components hold the same bytes.
func (c Component) Equal(other Component) bool {
	return bytes.Equal(c, other)
}

// String returns the escaped URI form of the component.
func (c Component) String() string {
	return escapeComponent(c)
}

// numberWithMarker encodes value as marker followed by the shortest of
// 1, 2, 4 or 8 big-endian bytes (the non-negative integer encoding).
func numberWithMarker(marker byte, value int64) Component {
	if value < 0 {
		panic(fmt.Sprintf("name: negative number %d for marker 0x%02X", value, marker))
	}
	unsigned := uint64(value)
	var width int
	switch {
	case unsigned <= math.MaxUint8:
		width = 1
	case unsigned <= math.MaxUint16:
		width = 2
	case unsigned <= math.MaxUint32:
		width = 4
	default:
		width = 8
	}
	component := make(Component, 1+width)
	component[0] = marker
	for i := width; i >= 1; i-- {
		component[i] = byte(unsigned)
		unsigned >>= 8
	}
	return component
}

// decodeNumber accepts any payload length from 1 to 8 bytes; older
// clients emit minimal-length encodings rather than 1/2/4/8.
func decodeNumber(payload []byte) (int64, error) {
	if len(payload) == 0 {
		return 0, fmt.Errorf("missing number payload")
	}
	if len(payload) > 8 {
		return 0, fmt.Errorf("number payload of %d bytes exceeds 8", len(payload))
	}
	var value uint64
	for _, b := range payload {
		value = value<<8 | uint64(b)
	}
	if value > math.MaxInt64 {
		return 0, fmt.Errorf("number %d overflows int64", value)
	}
	return int64(value), nil
}
