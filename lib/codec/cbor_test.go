// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type samplePacket struct {
	Name    [][]byte `cbor:"name"`
	Content []byte   `cbor:"content,omitempty"`
	Final   []byte   `cbor:"final_block_id,omitempty"`
}

func TestMarshalDeterministic(t *testing.T) {
	packet := samplePacket{
		Name:    [][]byte{[]byte("ndn"), []byte("doc.txt"), {0xFD, 0x05}},
		Content: []byte("hello"),
	}

	first, err := Marshal(packet)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(packet)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestMapKeysSorted(t *testing.T) {
	// Core deterministic encoding sorts map keys, so insertion order
	// must not change the output.
	a, err := Marshal(map[string]int{"size": 1, "version": 2, "kind": 3})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Marshal(map[string]int{"kind": 3, "version": 2, "size": 1})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("map encodings differ: %x vs %x", a, b)
	}
}

func TestStreamDecodesConsecutiveItems(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, name := range []string{"a", "b"} {
		if err := encoder.Encode(samplePacket{Name: [][]byte{[]byte(name)}}); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}

	decoder := NewDecoder(&buffer)
	for _, want := range []string{"a", "b"} {
		var got samplePacket
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if string(got.Name[0]) != want {
			t.Errorf("decoded name %q, want %q", got.Name[0], want)
		}
	}
}

func TestUnmarshalInvalid(t *testing.T) {
	var packet samplePacket
	if err := Unmarshal([]byte{0xFF, 0x00}, &packet); err == nil {
		t.Error("Unmarshal of garbage succeeded")
	}
}

func TestDiagnose(t *testing.T) {
	data, err := Marshal(map[string]int{"size": 10})
	if err != nil {
		t.Fatal(err)
	}
	text, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(text, `"size"`) {
		t.Errorf("Diagnose = %q, want it to mention the size key", text)
	}
}
