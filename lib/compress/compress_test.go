// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package compress

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	text := bytes.Repeat([]byte("segment content compresses well "), 256)

	for _, tag := range []Tag{None, LZ4, Zstd, Auto} {
		t.Run(tag.String(), func(t *testing.T) {
			compressed, used, err := Compress(text, tag)
			if err != nil {
				t.Fatalf("Compress: %v", err)
			}
			if tag != None && used == None {
				t.Errorf("repetitive text was not compressed with %s", tag)
			}
			if used == Auto {
				t.Fatal("Compress reported Auto as the used tag")
			}
			restored, err := Decompress(compressed, used, len(text))
			if err != nil {
				t.Fatalf("Decompress: %v", err)
			}
			if !bytes.Equal(restored, text) {
				t.Error("round trip changed the data")
			}
		})
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	random := make([]byte, 4096)
	if _, err := rand.Read(random); err != nil {
		t.Fatal(err)
	}
	for _, tag := range []Tag{LZ4, Zstd, Auto} {
		output, used, err := Compress(random, tag)
		if err != nil {
			t.Fatalf("Compress(%s): %v", tag, err)
		}
		if used != None {
			t.Errorf("Compress(%s) of random data used %s, want none", tag, used)
		}
		if !bytes.Equal(output, random) {
			t.Errorf("Compress(%s) fallback altered the data", tag)
		}
	}
}

func TestDecompressSizeMismatch(t *testing.T) {
	compressed, used, err := Compress(bytes.Repeat([]byte{'a'}, 1000), Zstd)
	if err != nil || used != Zstd {
		t.Fatalf("Compress = %s, %v", used, err)
	}
	if _, err := Decompress(compressed, Zstd, 999); err == nil {
		t.Error("Decompress with wrong size succeeded")
	}
	if _, err := Decompress([]byte("abc"), None, 4); err == nil {
		t.Error("Decompress(None) with wrong size succeeded")
	}
}

func TestParseTag(t *testing.T) {
	for _, tag := range []Tag{None, LZ4, Zstd, Auto} {
		parsed, err := ParseTag(tag.String())
		if err != nil || parsed != tag {
			t.Errorf("ParseTag(%q) = %s, %v", tag.String(), parsed, err)
		}
	}
	if _, err := ParseTag("brotli"); err == nil {
		t.Error("ParseTag accepted an unknown algorithm")
	}
}
