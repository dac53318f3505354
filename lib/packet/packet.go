// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package packet

import (
	"errors"
	"fmt"

	"github.com/remap/ndnfs-port/lib/codec"
	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
)

// ErrUnsigned is returned by Verify for a packet with no signature.
var ErrUnsigned = errors.New("packet: no signature")

// Signer produces a signature over a signed portion.
type Signer interface {
	Sign(signedPortion []byte) []byte
	KeyLocator() name.Name
}

// Verifier checks a signature over a signed portion.
type Verifier interface {
	Verify(signedPortion, signature []byte) error
}

// Data is a named, signed response packet.
type Data struct {
	Name    name.Name
	Content []byte

	// FinalBlockID is the segment component of the last segment of
	// the version, or nil when unknown.
	FinalBlockID name.Component

	KeyLocator name.Name
	Signature  []byte
}

type wireData struct {
	Name         [][]byte `cbor:"name"`
	Content      []byte   `cbor:"content"`
	FinalBlockID []byte   `cbor:"final_block_id,omitempty"`
	KeyLocator   [][]byte `cbor:"key_locator,omitempty"`
	Signature    []byte   `cbor:"signature,omitempty"`
}

type signedPortion struct {
	Name    [][]byte `cbor:"name"`
	Content []byte   `cbor:"content"`
}

// SignedPortion returns the bytes a signature covers: the deterministic
// CBOR encoding of the name and content. The final block ID and key
// locator are not covered.
func SignedPortion(packetName name.Name, content []byte) ([]byte, error) {
	if content == nil {
		content = []byte{}
	}
	encoded, err := codec.Marshal(signedPortion{Name: packetName.Wire(), Content: content})
	if err != nil {
		return nil, fmt.Errorf("packet: encoding signed portion: %w", err)
	}
	return encoded, nil
}

// Sign fills in KeyLocator and Signature using signer.
func (d *Data) Sign(signer Signer) error {
	portion, err := SignedPortion(d.Name, d.Content)
	if err != nil {
		return err
	}
	d.KeyLocator = signer.KeyLocator()
	d.Signature = signer.Sign(portion)
	return nil
}

// Verify checks the packet's signature.
func (d *Data) Verify(verifier Verifier) error {
	if len(d.Signature) == 0 {
		return ErrUnsigned
	}
	portion, err := SignedPortion(d.Name, d.Content)
	if err != nil {
		return err
	}
	if err := verifier.Verify(portion, d.Signature); err != nil {
		return fmt.Errorf("packet %s: %w", d.Name, err)
	}
	return nil
}

// FinalBlock decodes FinalBlockID. ok is false if it is absent or not a
// segment component.
func (d *Data) FinalBlock() (index int64, ok bool) {
	if len(d.FinalBlockID) == 0 {
		return 0, false
	}
	decoded, err := name.Decode(d.FinalBlockID)
	if err != nil || decoded.Kind != name.KindSegment {
		return 0, false
	}
	return decoded.Number, true
}

// Encode returns the wire form of d.
func (d *Data) Encode() ([]byte, error) {
	wire := wireData{
		Name:         d.Name.Wire(),
		Content:      d.Content,
		FinalBlockID: d.FinalBlockID,
		Signature:    d.Signature,
	}
	if wire.Content == nil {
		wire.Content = []byte{}
	}
	if len(d.KeyLocator) > 0 {
		wire.KeyLocator = d.KeyLocator.Wire()
	}
	encoded, err := codec.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("packet: encoding %s: %w", d.Name, err)
	}
	return encoded, nil
}

// Decode parses the wire form produced by Encode.
func Decode(encoded []byte) (*Data, error) {
	var wire wireData
	if err := codec.Unmarshal(encoded, &wire); err != nil {
		return nil, fmt.Errorf("packet: decoding: %w", err)
	}
	d := &Data{
		Name:      name.FromWire(wire.Name),
		Content:   wire.Content,
		Signature: wire.Signature,
	}
	if d.Content == nil {
		d.Content = []byte{}
	}
	if len(wire.FinalBlockID) > 0 {
		d.FinalBlockID = name.Component(wire.FinalBlockID)
	}
	if len(wire.KeyLocator) > 0 {
		d.KeyLocator = name.FromWire(wire.KeyLocator)
	}
	return d, nil
}

// FileInfo is the content of a file-attributes response.
type FileInfo struct {
	Size          int64           `cbor:"size"`
	Version       int64           `cbor:"version"`
	TotalSegments int64           `cbor:"total_segments"`
	MimeType      string          `cbor:"mime_type,omitempty"`
	Kind          *metastore.Kind `cbor:"kind,omitempty"`
}

// DirEntry is one element of a directory-listing response.
type DirEntry struct {
	Path string         `cbor:"path"`
	Kind metastore.Kind `cbor:"kind"`
}

// DirListing is the content of a directory-listing response.
type DirListing struct {
	Entries []DirEntry `cbor:"entries"`
}

// EncodeFileInfo returns the content bytes for info.
func EncodeFileInfo(info FileInfo) ([]byte, error) {
	encoded, err := codec.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("packet: encoding file info: %w", err)
	}
	return encoded, nil
}

// DecodeFileInfo parses file-attributes content.
func DecodeFileInfo(content []byte) (FileInfo, error) {
	var info FileInfo
	if err := codec.Unmarshal(content, &info); err != nil {
		return FileInfo{}, fmt.Errorf("packet: decoding file info: %w", err)
	}
	return info, nil
}

// EncodeDirListing returns the content bytes for listing.
func EncodeDirListing(listing DirListing) ([]byte, error) {
	if listing.Entries == nil {
		listing.Entries = []DirEntry{}
	}
	encoded, err := codec.Marshal(listing)
	if err != nil {
		return nil, fmt.Errorf("packet: encoding directory listing: %w", err)
	}
	return encoded, nil
}

// DecodeDirListing parses directory-listing content.
func DecodeDirListing(content []byte) (DirListing, error) {
	var listing DirListing
	if err := codec.Unmarshal(content, &listing); err != nil {
		return DirListing{}, fmt.Errorf("packet: decoding directory listing: %w", err)
	}
	return listing, nil
}
