// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package responder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"

	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/packet"
	"github.com/remap/ndnfs-port/lib/segment"
)

var (
	// ErrNotDirectory is returned for a generic request on a path that
	// has no entry and is not a directory on disk.
	ErrNotDirectory = errors.New("responder: not a directory")

	// ErrEmptyDirectory is returned for a directory with no entries.
	// Empty directories are not answered.
	ErrEmptyDirectory = errors.New("responder: empty directory")
)

// Config holds the dependencies of a Responder.
type Config struct {
	// Prefix is the served name prefix.
	Prefix name.Name

	Store  *metastore.Store
	Codec  *segment.Codec
	Signer packet.Signer
	Logger *slog.Logger
}

// Responder builds the Data packet answering a request name.
type Responder struct {
	prefix name.Name
	store  *metastore.Store
	codec  *segment.Codec
	signer packet.Signer
	logger *slog.Logger
}

// New validates cfg and returns a Responder.
func New(cfg Config) (*Responder, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("responder: Store is required")
	}
	if cfg.Codec == nil {
		return nil, fmt.Errorf("responder: Codec is required")
	}
	if cfg.Signer == nil {
		return nil, fmt.Errorf("responder: Signer is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Responder{
		prefix: cfg.Prefix.Clone(),
		store:  cfg.Store,
		codec:  cfg.Codec,
		signer: cfg.Signer,
		logger: logger,
	}, nil
}

// Prefix returns the served name prefix.
func (r *Responder) Prefix() name.Name {
	return r.prefix
}

// Respond classifies requestName and assembles its response. Any error
// means the request goes unanswered; callers log it and send nothing.
func (r *Responder) Respond(ctx context.Context, requestName name.Name) (*packet.Data, error) {
	request, err := name.Parse(r.prefix, requestName)
	if err != nil {
		return nil, err
	}

	switch request.Class {
	case name.SegmentRequest:
		return r.segment(ctx, request.Path, request.Version, request.Segment)
	case name.Versioned:
		return r.fileInfo(ctx, request.Path, request.Version)
	case name.Meta:
		return r.meta(ctx, request.Path, request.Version)
	default:
		return r.generic(ctx, request.Path)
	}
}

// segment serves stored-signature segment content.
func (r *Responder) segment(ctx context.Context, filePath string, version, index int64) (*packet.Data, error) {
	stored, err := r.store.GetSegment(ctx, filePath, version, index)
	if err != nil {
		return nil, err
	}
	row, err := r.store.GetVersion(ctx, filePath, version)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, r.codec.Layout().Size())
	n, err := r.codec.Read(filePath, version, index, buffer, 0)
	if err != nil {
		return nil, err
	}

	data := &packet.Data{
		Name:       r.codec.SegmentName(filePath, version, index),
		Content:    buffer[:n],
		KeyLocator: r.signer.KeyLocator(),
		Signature:  stored.Signature,
	}
	if row.TotalSegments > 0 {
		data.FinalBlockID = name.Segment(row.TotalSegments - 1)
	}
	return data, nil
}

// fileInfo serves the attributes of one version of a file.
func (r *Responder) fileInfo(ctx context.Context, filePath string, version int64) (*packet.Data, error) {
	row, err := r.store.GetVersion(ctx, filePath, version)
	if err != nil {
		return nil, err
	}

	info := packet.FileInfo{
		Size:          row.Size,
		Version:       row.Version,
		TotalSegments: row.TotalSegments,
	}
	entry, err := r.store.GetEntry(ctx, filePath)
	switch {
	case err == nil:
		info.MimeType = entry.MimeType
		kind := entry.Kind
		info.Kind = &kind
	case !errors.Is(err, metastore.ErrNotFound):
		return nil, err
	}

	content, err := packet.EncodeFileInfo(info)
	if err != nil {
		return nil, err
	}
	return r.signed(name.FromPath(r.prefix, filePath).Append(name.FileTag, name.Version(version)), content)
}

// meta serves the MIME type of a version.
func (r *Responder) meta(ctx context.Context, filePath string, version int64) (*packet.Data, error) {
	entry, err := r.store.GetEntry(ctx, filePath)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.GetVersion(ctx, filePath, version); err != nil {
		return nil, err
	}
	responseName := name.FromPath(r.prefix, filePath).Append(name.Version(version), name.Plain(name.MetaLiteral))
	return r.signed(responseName, []byte(entry.MimeType))
}

// generic serves a path without a version: the current version's
// attributes for a file entry, otherwise a listing of the real
// directory. Directories are never stored, so an absent entry is the
// normal case for them.
func (r *Responder) generic(ctx context.Context, filePath string) (*packet.Data, error) {
	entry, err := r.store.GetEntry(ctx, filePath)
	switch {
	case errors.Is(err, metastore.ErrNotFound):
		return r.directory(filePath)
	case err != nil:
		return nil, err
	case entry.Kind == metastore.KindDirectory:
		return r.directory(filePath)
	default:
		return r.fileInfo(ctx, filePath, entry.CurrentVersion)
	}
}

// directory lists the real directory at dirPath.
func (r *Responder) directory(dirPath string) (*packet.Data, error) {
	realPath := r.codec.RealPath(dirPath)
	info, err := os.Stat(realPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotDirectory, dirPath, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, dirPath)
	}

	children, err := os.ReadDir(realPath)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %w", segment.ErrIO, dirPath, err)
	}
	if len(children) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDirectory, dirPath)
	}

	listing := packet.DirListing{Entries: make([]packet.DirEntry, 0, len(children))}
	for _, child := range children {
		listing.Entries = append(listing.Entries, packet.DirEntry{
			Path: path.Join(dirPath, child.Name()),
			Kind: metastore.KindFromFileMode(child.Type()),
		})
	}
	content, err := packet.EncodeDirListing(listing)
	if err != nil {
		return nil, err
	}

	responseName := name.FromPath(r.prefix, dirPath).Append(name.DirTag, name.Version(info.ModTime().Unix()))
	return r.signed(responseName, content)
}

// signed builds a packet signed at response time.
func (r *Responder) signed(responseName name.Name, content []byte) (*packet.Data, error) {
	data := &packet.Data{Name: responseName, Content: content}
	if err := data.Sign(r.signer); err != nil {
		return nil, err
	}
	return data, nil
}
