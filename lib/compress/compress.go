// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package compress compresses encoded response packets on the face
// transport. A requester states which algorithm it accepts; the server
// compresses only when the result is smaller and otherwise sends the
// packet as is, tagged CompressionNone.
package compress

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Tag identifies the compression applied to a frame. Tags are sent on
// the wire; changing the values breaks existing clients.
type Tag uint8

const (
	// None is uncompressed.
	None Tag = 0

	// LZ4 is LZ4 block compression.
	LZ4 Tag = 1

	// Zstd is zstd at the default level.
	Zstd Tag = 2

	// Auto is only valid in a request: the server probes the packet
	// and picks Zstd, LZ4 or None. It never appears on a response.
	Auto Tag = 255
)

func (tag Tag) String() string {
	switch tag {
	case None:
		return "none"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	case Auto:
		return "auto"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(tag))
	}
}

// ParseTag parses the String form of a tag.
func ParseTag(text string) (Tag, error) {
	switch text {
	case "", "none":
		return None, nil
	case "lz4":
		return LZ4, nil
	case "zstd":
		return Zstd, nil
	case "auto":
		return Auto, nil
	default:
		return None, fmt.Errorf("compress: unknown algorithm %q", text)
	}
}

// errIncompressible marks output that is not smaller than its input.
var errIncompressible = errors.New("compress: data is incompressible")

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("compress: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("compress: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress applies tag to data and returns the output together with the
// tag actually used. When compression does not shrink data, data is
// returned unchanged with None.
func Compress(data []byte, tag Tag) ([]byte, Tag, error) {
	if tag == Auto {
		tag = selectTag(data)
	}

	var (
		compressed []byte
		err        error
	)
	switch tag {
	case None:
		return data, None, nil
	case LZ4:
		compressed, err = compressLZ4(data)
	case Zstd:
		compressed, err = compressZstd(data)
	default:
		return nil, None, fmt.Errorf("compress: unsupported tag %s", tag)
	}
	if errors.Is(err, errIncompressible) {
		return data, None, nil
	}
	if err != nil {
		return nil, None, err
	}
	return compressed, tag, nil
}

// Decompress reverses Compress. size must equal the original length.
func Decompress(compressed []byte, tag Tag, size int) ([]byte, error) {
	switch tag {
	case None:
		if len(compressed) != size {
			return nil, fmt.Errorf("compress: uncompressed frame has %d bytes, expected %d", len(compressed), size)
		}
		return compressed, nil
	case LZ4:
		destination := make([]byte, size)
		read, err := lz4.UncompressBlock(compressed, destination)
		if err != nil {
			return nil, fmt.Errorf("compress: lz4: %w", err)
		}
		if read != size {
			return nil, fmt.Errorf("compress: lz4 produced %d bytes, expected %d", read, size)
		}
		return destination, nil
	case Zstd:
		result, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
		if err != nil {
			return nil, fmt.Errorf("compress: zstd: %w", err)
		}
		if len(result) != size {
			return nil, fmt.Errorf("compress: zstd produced %d bytes, expected %d", len(result), size)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("compress: unsupported tag %s", tag)
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	destination := make([]byte, lz4.CompressBlockBound(len(data)))
	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("compress: lz4: %w", err)
	}
	// CompressBlock returns 0 for incompressible input.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func compressZstd(data []byte) ([]byte, error) {
	compressed := zstdEncoder.EncodeAll(data, nil)
	if len(compressed) >= len(data) {
		return nil, errIncompressible
	}
	return compressed, nil
}

// selectTag probes data with zstd: ratio >= 1.5 picks Zstd, >= 1.1
// picks LZ4 (cheaper to decode at a similar size), below that None.
func selectTag(data []byte) Tag {
	if len(data) == 0 {
		return None
	}
	compressed := zstdEncoder.EncodeAll(data, nil)
	ratio := float64(len(data)) / float64(len(compressed))
	switch {
	case ratio >= 1.5:
		return Zstd
	case ratio >= 1.1:
		return LZ4
	default:
		return None
	}
}
