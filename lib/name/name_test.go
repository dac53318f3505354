// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"bytes"
	"math"
	"testing"
)

func TestNumberEncoding(t *testing.T) {
	tests := []struct {
		value int64
		want  []byte
	}{
		{0, []byte{MarkerVersion, 0x00}},
		{5, []byte{MarkerVersion, 0x05}},
		{255, []byte{MarkerVersion, 0xFF}},
		{256, []byte{MarkerVersion, 0x01, 0x00}},
		{65536, []byte{MarkerVersion, 0x00, 0x01, 0x00, 0x00}},
		{1700000000, []byte{MarkerVersion, 0x65, 0x53, 0xF1, 0x00}},
		{1 << 32, []byte{MarkerVersion, 0, 0, 0, 1, 0, 0, 0, 0}},
	}
	for _, test := range tests {
		got := Version(test.value)
		if !bytes.Equal(got, test.want) {
			t.Errorf("Version(%d) = % X, want % X", test.value, []byte(got), test.want)
		}
		decoded, err := Decode(got)
		if err != nil {
			t.Fatalf("Decode(% X): %v", []byte(got), err)
		}
		if decoded.Kind != KindVersion || decoded.Number != test.value {
			t.Errorf("Decode(Version(%d)) = %+v", test.value, decoded)
		}
	}
}

func TestDecodeMinimalLengthPayload(t *testing.T) {
	// Three-byte payloads are not produced by Segment but are accepted.
	decoded, err := Decode(Component{MarkerSegment, 0x01, 0x00, 0x00})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Kind != KindSegment || decoded.Number != 65536 {
		t.Errorf("Decode = %+v, want segment 65536", decoded)
	}
}

func TestDecodeOverflow(t *testing.T) {
	component := Component{MarkerSegment, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
	if _, err := Decode(component); err == nil {
		t.Error("Decode of a number above MaxInt64 succeeded")
	}
	largest := Segment(math.MaxInt64)
	decoded, err := Decode(largest)
	if err != nil || decoded.Number != math.MaxInt64 {
		t.Errorf("Decode(Segment(MaxInt64)) = %+v, %v", decoded, err)
	}
}

func TestComponentKind(t *testing.T) {
	tests := []struct {
		component Component
		want      ComponentKind
	}{
		{Version(1), KindVersion},
		{Segment(1), KindSegment},
		{FileTag, KindStructural},
		{DirTag, KindStructural},
		{Plain("doc.txt"), KindPlain},
		{Plain(MetaLiteral), KindPlain},
		{Component{}, KindPlain},
	}
	for _, test := range tests {
		if got := test.component.Kind(); got != test.want {
			t.Errorf("Kind(%s) = %s, want %s", test.component, got, test.want)
		}
	}
}

func TestURIRoundTrip(t *testing.T) {
	original := FromPath(MustParse("/ndn/broadcast/ndnfs"), "/dir/my file.txt").
		Append(DirTag, Version(5), Segment(300), Component{}, Plain(".."))

	uri := original.String()
	want := "/ndn/broadcast/ndnfs/dir/my%20file.txt/%C1.FS.dir/%FD%05/%00%01%2C/.../....."
	if uri != want {
		t.Errorf("String() = %q, want %q", uri, want)
	}

	parsed, err := FromURI(uri)
	if err != nil {
		t.Fatalf("FromURI(%q): %v", uri, err)
	}
	if !parsed.Equal(original) {
		t.Errorf("FromURI(String()) = %s, want %s", parsed, original)
	}
}

func TestFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want Name
	}{
		{"/", Name{}},
		{"", Name{}},
		{"ndn:/a/b", New(Plain("a"), Plain("b"))},
		{"/a//b/", New(Plain("a"), Plain("b"))},
		{"/%7e", New(Component("~"))},
		{"/....", New(Plain("."))},
	}
	for _, test := range tests {
		got, err := FromURI(test.uri)
		if err != nil {
			t.Errorf("FromURI(%q): %v", test.uri, err)
			continue
		}
		if !got.Equal(test.want) {
			t.Errorf("FromURI(%q) = %s, want %s", test.uri, got, test.want)
		}
	}

	for _, bad := range []string{"/a/%G0", "/a/%4", "/..", "/."} {
		if _, err := FromURI(bad); err == nil {
			t.Errorf("FromURI(%q) succeeded, want error", bad)
		}
	}
}

func TestNameHelpers(t *testing.T) {
	prefix := MustParse("/ndn/broadcast/ndnfs")
	full := FromPath(prefix, "/a/b")

	if !full.HasPrefix(prefix) {
		t.Error("HasPrefix(prefix) = false")
	}
	if prefix.HasPrefix(full) {
		t.Error("prefix.HasPrefix(longer) = true")
	}
	if got := string(full.At(-1)); got != "b" {
		t.Errorf("At(-1) = %q, want %q", got, "b")
	}

	appended := prefix.Append(Plain("x"))
	if len(prefix) != 3 {
		t.Errorf("Append modified receiver: len = %d", len(prefix))
	}
	if len(appended) != 4 {
		t.Errorf("len(appended) = %d, want 4", len(appended))
	}

	clone := full.Clone()
	clone[0][0] = 'X'
	if full[0][0] == 'X' {
		t.Error("Clone shares component storage")
	}

	if !FromWire(full.Wire()).Equal(full) {
		t.Error("FromWire(Wire()) differs")
	}

	if got := (Name{}).String(); got != "/" {
		t.Errorf("empty name String() = %q, want %q", got, "/")
	}
}

func TestTextMarshaling(t *testing.T) {
	var n Name
	if err := n.UnmarshalText([]byte("/ndn/x/%FD%01")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	text, err := n.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	if string(text) != "/ndn/x/%FD%01" {
		t.Errorf("MarshalText = %q", text)
	}
}
