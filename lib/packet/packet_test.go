// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/signing"
)

func testSigner(t *testing.T) *signing.Signer {
	t.Helper()
	signer, err := signing.NewSigner(bytes.Repeat([]byte{3}, signing.SecretSize), name.MustParse("/ndn/test"))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return signer
}

func TestSignEncodeDecodeVerify(t *testing.T) {
	signer := testSigner(t)
	verifier, err := signing.NewVerifier(signer.PublicKey())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	data := &Data{
		Name:    name.MustParse("/ndn/test/doc.txt/%FD%05/%00%01"),
		Content: []byte("segment content"),
	}
	if err := data.Sign(signer); err != nil {
		t.Fatalf("Sign: %v", err)
	}
	data.FinalBlockID = name.Segment(1)

	encoded, err := data.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !decoded.Name.Equal(data.Name) {
		t.Errorf("Name = %s, want %s", decoded.Name, data.Name)
	}
	if !bytes.Equal(decoded.Content, data.Content) {
		t.Errorf("Content = %q, want %q", decoded.Content, data.Content)
	}
	if !decoded.KeyLocator.Equal(signer.KeyLocator()) {
		t.Errorf("KeyLocator = %s, want %s", decoded.KeyLocator, signer.KeyLocator())
	}
	final, ok := decoded.FinalBlock()
	if !ok || final != 1 {
		t.Errorf("FinalBlock = %d, %v; want 1, true", final, ok)
	}
	if err := decoded.Verify(verifier); err != nil {
		t.Errorf("Verify after attaching final block: %v", err)
	}

	decoded.Content[0] ^= 0xFF
	if err := decoded.Verify(verifier); !errors.Is(err, signing.ErrBadSignature) {
		t.Errorf("Verify of tampered content = %v, want ErrBadSignature", err)
	}
}

func TestVerifyUnsigned(t *testing.T) {
	data := &Data{Name: name.MustParse("/a")}
	verifier, _ := signing.NewVerifier(testSigner(t).PublicKey())
	if err := data.Verify(verifier); !errors.Is(err, ErrUnsigned) {
		t.Errorf("Verify = %v, want ErrUnsigned", err)
	}
}

func TestSignedPortionIgnoresNilContent(t *testing.T) {
	n := name.MustParse("/a")
	withNil, err := SignedPortion(n, nil)
	if err != nil {
		t.Fatalf("SignedPortion(nil): %v", err)
	}
	withEmpty, err := SignedPortion(n, []byte{})
	if err != nil {
		t.Fatalf("SignedPortion(empty): %v", err)
	}
	if !bytes.Equal(withNil, withEmpty) {
		t.Error("nil and empty content produce different signed portions")
	}
}

func TestFileInfoPayload(t *testing.T) {
	kind := metastore.KindRegular
	info := FileInfo{Size: 10000, Version: 1700000000, TotalSegments: 2, MimeType: "text/plain", Kind: &kind}
	content, err := EncodeFileInfo(info)
	if err != nil {
		t.Fatalf("EncodeFileInfo: %v", err)
	}
	got, err := DecodeFileInfo(content)
	if err != nil {
		t.Fatalf("DecodeFileInfo: %v", err)
	}
	if !reflect.DeepEqual(got, info) {
		t.Errorf("DecodeFileInfo = %+v, want %+v", got, info)
	}

	bare, _ := EncodeFileInfo(FileInfo{Size: 1, Version: 2, TotalSegments: 1})
	got, err = DecodeFileInfo(bare)
	if err != nil {
		t.Fatalf("DecodeFileInfo bare: %v", err)
	}
	if got.Kind != nil || got.MimeType != "" {
		t.Errorf("optional fields present: %+v", got)
	}
}

func TestDirListingPayload(t *testing.T) {
	listing := DirListing{Entries: []DirEntry{
		{Path: "/dir/a.txt", Kind: metastore.KindRegular},
		{Path: "/dir/sub", Kind: metastore.KindDirectory},
	}}
	content, err := EncodeDirListing(listing)
	if err != nil {
		t.Fatalf("EncodeDirListing: %v", err)
	}
	got, err := DecodeDirListing(content)
	if err != nil {
		t.Fatalf("DecodeDirListing: %v", err)
	}
	if !reflect.DeepEqual(got, listing) {
		t.Errorf("DecodeDirListing = %+v, want %+v", got, listing)
	}
}
