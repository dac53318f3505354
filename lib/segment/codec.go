// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package segment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/packet"
)

var (
	// ErrUnsupported is returned for operations the codec does not
	// implement, such as growing a version by truncation.
	ErrUnsupported = errors.New("segment: unsupported operation")

	// ErrIO wraps failures of the real file underlying a path.
	ErrIO = errors.New("segment: I/O failure")
)

// Config holds the dependencies of a Codec.
type Config struct {
	// Root is the directory holding the real files. Store paths are
	// resolved beneath it.
	Root string

	// Prefix is the name prefix under which segments are published.
	// Segment signatures cover prefix + path + version + segment.
	Prefix name.Name

	// Layout defaults to DefaultLayout when Shift is zero.
	Layout Layout

	Store  *metastore.Store
	Signer packet.Signer
	Logger *slog.Logger
}

// Codec reads, writes and signs segment-aligned content. It owns the
// file_segments rows and shares file_versions size bookkeeping with
// the versioning package.
type Codec struct {
	root   string
	prefix name.Name
	layout Layout
	store  *metastore.Store
	signer packet.Signer
	logger *slog.Logger
}

// New validates cfg and returns a Codec.
func New(cfg Config) (*Codec, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("segment: Root is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("segment: Store is required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("segment: Signer is required")
	}
	layout := cfg.Layout
	if layout.Shift == 0 {
		layout = DefaultLayout()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Codec{
		root:   cfg.Root,
		prefix: cfg.Prefix.Clone(),
		layout: layout,
		store:  cfg.Store,
		signer: cfg.Signer,
		logger: logger,
	}, nil
}

// Layout returns the codec's segment layout.
func (c *Codec) Layout() Layout {
	return c.layout
}

// RealPath returns the location of path's content on disk.
func (c *Codec) RealPath(path string) string {
	return filepath.Join(c.root, filepath.FromSlash(path))
}

// SegmentName is the published name of one segment, and the name its
// signature covers.
func (c *Codec) SegmentName(path string, version, index int64) name.Name {
	return name.FromPath(c.prefix, path).Append(name.Version(version), name.Segment(index))
}

// Read fills dest with bytes of segment index starting intra bytes into
// the segment, never crossing the segment's end. Returns the number of
// bytes read; a short count means the file ends inside the segment.
// version is informational: all versions of a path share one file.
func (c *Codec) Read(path string, version, index int64, dest []byte, intra int64) (int, error) {
	if intra < 0 || intra >= c.layout.Size() {
		return 0, fmt.Errorf("segment: intra-segment offset %d out of range", intra)
	}
	limit := c.layout.Size() - intra
	if int64(len(dest)) > limit {
		dest = dest[:limit]
	}

	file, err := os.Open(c.RealPath(path))
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s: %w", ErrIO, path, err)
	}
	defer file.Close()

	n, err := file.ReadAt(dest, c.layout.Base(index)+intra)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("%w: reading %s@%d segment %d: %w", ErrIO, path, version, index, err)
	}
	return n, nil
}

// ReadVersion reassembles length bytes at offset, clipped to the
// version's recorded size.
func (c *Codec) ReadVersion(ctx context.Context, path string, version, offset, length int64) ([]byte, error) {
	row, err := c.store.GetVersion(ctx, path, version)
	if err != nil {
		return nil, err
	}
	if offset >= row.Size || length <= 0 {
		return []byte{}, nil
	}
	end := min(offset+length, row.Size)

	result := make([]byte, 0, end-offset)
	buffer := make([]byte, c.layout.Size())
	for position := offset; position < end; {
		index := c.layout.ToSegment(position)
		intra := position - c.layout.Base(index)
		want := min(c.layout.Size()-intra, end-position)
		n, err := c.Read(path, version, index, buffer[:want], intra)
		if err != nil {
			return nil, err
		}
		result = append(result, buffer[:n]...)
		if int64(n) < want {
			break
		}
		position += want
	}
	return result, nil
}

// Write stores data as the content of segment index and records its
// signature. data must be the segment's entire content: the signature
// covers exactly these bytes, so a short data for a segment that has
// bytes beyond it on disk leaves a signature that does not match.
func (c *Codec) Write(ctx context.Context, path string, version, index int64, data []byte) (int, error) {
	if int64(len(data)) > c.layout.Size() {
		return 0, fmt.Errorf("segment: %d bytes exceed the segment size %d", len(data), c.layout.Size())
	}

	file, err := os.OpenFile(c.RealPath(path), os.O_WRONLY, 0)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s for writing: %w", ErrIO, path, err)
	}
	n, err := file.WriteAt(data, c.layout.Base(index))
	closeErr := file.Close()
	if err != nil {
		return n, fmt.Errorf("%w: writing %s segment %d: %w", ErrIO, path, index, err)
	}
	if closeErr != nil {
		return n, fmt.Errorf("%w: closing %s: %w", ErrIO, path, closeErr)
	}

	if err := c.sign(ctx, path, version, index, data); err != nil {
		return n, err
	}
	return n, nil
}

// sign records the signature of data as segment index of version.
func (c *Codec) sign(ctx context.Context, path string, version, index int64, data []byte) error {
	portion, err := packet.SignedPortion(c.SegmentName(path, version, index), data)
	if err != nil {
		return err
	}
	return c.store.PutSegment(ctx, metastore.Segment{
		Path:      path,
		Version:   version,
		Index:     index,
		Signature: c.signer.Sign(portion),
	})
}

// WriteVersion writes buf at offset into version. Segments the write
// covers only partially are read, overlaid and rewritten whole so each
// signature still covers its entire segment. Returns the version's new
// size, max(old size, offset+len(buf)).
func (c *Codec) WriteVersion(ctx context.Context, path string, version int64, buf []byte, offset int64) (int64, error) {
	if offset < 0 {
		return 0, fmt.Errorf("segment: negative offset %d", offset)
	}
	row, err := c.store.GetVersion(ctx, path, version)
	if err != nil {
		return 0, err
	}
	if len(buf) == 0 {
		return row.Size, nil
	}

	size := c.layout.Size()
	end := offset + int64(len(buf))
	scratch := make([]byte, size)

	for position := offset; position < end; {
		index := c.layout.ToSegment(position)
		intra := position - c.layout.Base(index)
		span := min(size-intra, end-position)
		source := buf[position-offset : position-offset+span]

		content := source
		if intra != 0 || span != size {
			existing, err := c.Read(path, version, index, scratch, 0)
			if err != nil {
				return 0, err
			}
			length := max(int64(existing), intra+span)
			clear(scratch[existing:length])
			content = scratch[:length]
			copy(content[intra:], source)
		}

		if _, err := c.Write(ctx, path, version, index, content); err != nil {
			return 0, err
		}
		position += span
	}

	row.Size = max(row.Size, end)
	row.TotalSegments = max(row.TotalSegments, c.layout.ToSegment(end-1)+1)
	if err := c.store.PutVersion(ctx, row); err != nil {
		return 0, err
	}
	return row.Size, nil
}

// TruncateVersion shrinks version to length bytes: the real file is
// truncated, the new last segment is re-signed over its shortened
// content (or dropped if it is now empty) and every later segment row
// is removed. Growing returns ErrUnsupported.
func (c *Codec) TruncateVersion(ctx context.Context, path string, version, length int64) error {
	row, err := c.store.GetVersion(ctx, path, version)
	if err != nil {
		return err
	}
	if length == row.Size {
		return nil
	}
	if length > row.Size {
		return fmt.Errorf("%w: growing %s from %d to %d bytes", ErrUnsupported, path, row.Size, length)
	}
	if length < 0 {
		return fmt.Errorf("segment: negative length %d", length)
	}

	if err := os.Truncate(c.RealPath(path), length); err != nil {
		return fmt.Errorf("%w: truncating %s: %w", ErrIO, path, err)
	}

	boundary := c.layout.ToSegment(length)
	tail := length - c.layout.Base(boundary)
	if tail == 0 {
		if err := c.store.DeleteSegment(ctx, path, version, boundary); err != nil {
			return err
		}
	} else {
		content := make([]byte, tail)
		n, err := c.Read(path, version, boundary, content, 0)
		if err != nil {
			return err
		}
		if err := c.sign(ctx, path, version, boundary, content[:n]); err != nil {
			return err
		}
	}
	if err := c.RemoveSegments(ctx, path, version, boundary+1); err != nil {
		return err
	}

	row.Size = length
	row.TotalSegments = c.layout.Count(length)
	return c.store.PutVersion(ctx, row)
}

// RemoveSegments deletes the segment rows of version at or above start.
func (c *Codec) RemoveSegments(ctx context.Context, path string, version, start int64) error {
	removed, err := c.store.DeleteSegmentsFrom(ctx, path, version, start)
	if err != nil {
		return err
	}
	if removed > 0 {
		c.logger.Debug("segments removed", "path", path, "version", version, "from", start, "count", removed)
	}
	return nil
}

// SealVersion signs every segment of version that has no signature row
// yet, reading its content from disk. Returns how many were signed.
func (c *Codec) SealVersion(ctx context.Context, path string, version int64) (int, error) {
	row, err := c.store.GetVersion(ctx, path, version)
	if err != nil {
		return 0, err
	}
	existing, err := c.store.SegmentIndices(ctx, path, version)
	if err != nil {
		return 0, err
	}
	signed := make(map[int64]bool, len(existing))
	for _, index := range existing {
		signed[index] = true
	}

	buffer := make([]byte, c.layout.Size())
	count := 0
	for index := int64(0); index < row.TotalSegments; index++ {
		if signed[index] {
			continue
		}
		want := min(c.layout.Size(), row.Size-c.layout.Base(index))
		if want <= 0 {
			break
		}
		n, err := c.Read(path, version, index, buffer[:want], 0)
		if err != nil {
			return count, err
		}
		if err := c.sign(ctx, path, version, index, buffer[:n]); err != nil {
			return count, err
		}
		count++
	}
	if count > 0 {
		c.logger.Debug("version sealed", "path", path, "version", version, "signed", count)
	}
	return count, nil
}

// ResignVersion drops every signature of version and signs all of its
// segments again. Used when the published name of the segments
// changes.
func (c *Codec) ResignVersion(ctx context.Context, path string, version int64) error {
	if err := c.RemoveSegments(ctx, path, version, 0); err != nil {
		return err
	}
	_, err := c.SealVersion(ctx, path, version)
	return err
}
