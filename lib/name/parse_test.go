// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"errors"
	"testing"
)

var testPrefix = MustParse("/ndn/broadcast/ndnfs")

func TestParseClassification(t *testing.T) {
	base := FromPath(testPrefix, "/a/b")

	tests := []struct {
		name        string
		request     Name
		wantClass   Class
		wantPath    string
		wantVersion int64
		wantSegment int64
	}{
		{
			name:        "generic",
			request:     base,
			wantClass:   Generic,
			wantPath:    "/a/b",
			wantVersion: NoNumber,
			wantSegment: NoNumber,
		},
		{
			name:        "root",
			request:     testPrefix,
			wantClass:   Generic,
			wantPath:    "/",
			wantVersion: NoNumber,
			wantSegment: NoNumber,
		},
		{
			name:        "versioned",
			request:     base.Append(Version(5)),
			wantClass:   Versioned,
			wantPath:    "/a/b",
			wantVersion: 5,
			wantSegment: NoNumber,
		},
		{
			name:        "segment",
			request:     base.Append(Version(5), Segment(2)),
			wantClass:   SegmentRequest,
			wantPath:    "/a/b",
			wantVersion: 5,
			wantSegment: 2,
		},
		{
			name:        "meta",
			request:     base.Append(Version(5), Plain(MetaLiteral)),
			wantClass:   Meta,
			wantPath:    "/a/b",
			wantVersion: 5,
			wantSegment: NoNumber,
		},
		{
			name:        "file tag skipped",
			request:     base.Append(FileTag, Version(1700000000)),
			wantClass:   Versioned,
			wantPath:    "/a/b",
			wantVersion: 1700000000,
			wantSegment: NoNumber,
		},
		{
			name:        "dir tag on root",
			request:     testPrefix.Append(DirTag),
			wantClass:   Generic,
			wantPath:    "/",
			wantVersion: NoNumber,
			wantSegment: NoNumber,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(testPrefix, test.request)
			if err != nil {
				t.Fatalf("Parse(%s): %v", test.request, err)
			}
			if got.Class != test.wantClass {
				t.Errorf("Class = %s, want %s", got.Class, test.wantClass)
			}
			if got.Path != test.wantPath {
				t.Errorf("Path = %q, want %q", got.Path, test.wantPath)
			}
			if got.Version != test.wantVersion {
				t.Errorf("Version = %d, want %d", got.Version, test.wantVersion)
			}
			if got.Segment != test.wantSegment {
				t.Errorf("Segment = %d, want %d", got.Segment, test.wantSegment)
			}
		})
	}
}

func TestParseRejects(t *testing.T) {
	base := FromPath(testPrefix, "/a/b")

	tests := []struct {
		name    string
		request Name
	}{
		{"segment without version", base.Append(Segment(2))},
		{"meta after segment", base.Append(Version(5), Segment(2), Plain(MetaLiteral))},
		{"two versions", base.Append(Version(5), Version(6))},
		{"two segments", base.Append(Version(5), Segment(2), Segment(3))},
		{"segment after meta", base.Append(Version(5), Plain(MetaLiteral), Segment(1))},
		{"meta twice", base.Append(Version(5), Plain(MetaLiteral), Plain(MetaLiteral))},
		{"other text after version", base.Append(Version(5), Plain("data"))},
		{"outside prefix", MustParse("/other/a/b")},
		{"short of prefix", MustParse("/ndn/broadcast")},
		{"dot-dot path element", testPrefix.Append(Plain(".."), Plain("etc"))},
		{"empty path element", testPrefix.Append(Plain(""))},
		{"slash inside element", testPrefix.Append(Plain("a/b"))},
		{"empty version payload", base.Append(Component{MarkerVersion})},
		{"oversized version payload", base.Append(Component{MarkerVersion, 1, 2, 3, 4, 5, 6, 7, 8, 9})},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := Parse(testPrefix, test.request)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("Parse(%s) = %+v, %v; want ErrInvalidRequest", test.request, got, err)
			}
			if got != (Request{}) {
				t.Errorf("Parse returned partial result %+v on failure", got)
			}
		})
	}
}

func TestParseEmptyPrefix(t *testing.T) {
	got, err := Parse(Name{}, MustParse("/doc.txt/%FD%05/%00%01"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got.Class != SegmentRequest || got.Path != "/doc.txt" || got.Version != 5 || got.Segment != 1 {
		t.Errorf("Parse = %+v, want segment /doc.txt v5 s1", got)
	}
}
