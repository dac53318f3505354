// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package face

import (
	"errors"
	"fmt"

	"github.com/remap/ndnfs-port/lib/compress"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/packet"
)

// ErrNoData is returned by Express when the server closed the
// connection without answering.
var ErrNoData = errors.New("face: no data for interest")

// Interest is the request envelope. Name is the wire form of the
// requested name (one byte string per component).
type Interest struct {
	Name [][]byte `cbor:"name"`

	// LifetimeMs bounds how long the requester waits for the answer.
	// Zero means the client default.
	LifetimeMs int64 `cbor:"lifetime_ms,omitempty"`

	// Compression is the algorithm the requester accepts for the
	// response frame. The server may still answer uncompressed.
	Compression compress.Tag `cbor:"compression,omitempty"`

	// Selectors are accepted for compatibility and ignored.
	Selectors map[string]any `cbor:"selectors,omitempty"`
}

// NewInterest returns an interest for requestName with default
// lifetime and no compression.
func NewInterest(requestName name.Name) Interest {
	return Interest{Name: requestName.Wire()}
}

// RequestName returns the interest's name.
func (i Interest) RequestName() name.Name {
	return name.FromWire(i.Name)
}

// Frame is the response envelope. Packet holds the encoded data packet
// compressed with Compression; Size is its uncompressed length.
type Frame struct {
	Compression compress.Tag `cbor:"compression"`
	Size        int          `cbor:"size"`
	Packet      []byte       `cbor:"packet"`
}

// newFrame encodes data and compresses it with the requested tag.
func newFrame(data *packet.Data, tag compress.Tag) (Frame, error) {
	encoded, err := data.Encode()
	if err != nil {
		return Frame{}, err
	}
	compressed, used, err := compress.Compress(encoded, tag)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Compression: used, Size: len(encoded), Packet: compressed}, nil
}

// Data decompresses and decodes the frame's packet.
func (f Frame) Data() (*packet.Data, error) {
	if f.Size < 0 || f.Size > maxFrameSize {
		return nil, fmt.Errorf("face: frame declares %d bytes", f.Size)
	}
	encoded, err := compress.Decompress(f.Packet, f.Compression, f.Size)
	if err != nil {
		return nil, fmt.Errorf("face: decompressing frame: %w", err)
	}
	return packet.Decode(encoded)
}
