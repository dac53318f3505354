// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/remap/ndnfs-port/lib/compress"
	"github.com/remap/ndnfs-port/lib/face"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/packet"
)

// expresser is the part of face.Client the fetcher uses.
type expresser interface {
	Express(ctx context.Context, interest face.Interest) (*packet.Data, error)
}

// fetcher requests names under one prefix and checks every answer.
type fetcher struct {
	client      expresser
	verifier    packet.Verifier
	prefix      name.Name
	compression compress.Tag
	lifetime    time.Duration
}

// resolve turns a full name URI, or a tree path relative to the
// prefix, into a request name.
func (f *fetcher) resolve(target string) (name.Name, error) {
	parsed, err := name.FromURI(target)
	if err != nil {
		return nil, err
	}
	if parsed.HasPrefix(f.prefix) {
		return parsed, nil
	}
	return f.prefix.Append(parsed...), nil
}

// express sends one interest and verifies the answer's signature.
func (f *fetcher) express(ctx context.Context, requestName name.Name) (*packet.Data, error) {
	interest := face.NewInterest(requestName)
	interest.Compression = f.compression
	interest.LifetimeMs = f.lifetime.Milliseconds()
	data, err := f.client.Express(ctx, interest)
	if err != nil {
		return nil, err
	}
	if err := data.Verify(f.verifier); err != nil {
		return nil, err
	}
	return data, nil
}

// show prints what the tree holds at target: a directory listing, file
// attributes, or the raw content of any other answer.
func (f *fetcher) show(ctx context.Context, target string, out io.Writer) error {
	requestName, err := f.resolve(target)
	if err != nil {
		return err
	}
	data, err := f.express(ctx, requestName)
	if err != nil {
		return err
	}

	switch marker(data.Name) {
	case string(name.DirTag):
		listing, err := packet.DecodeDirListing(data.Content)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "directory %s\n", data.Name)
		for _, entry := range listing.Entries {
			fmt.Fprintf(out, "  %-10s %s\n", entry.Kind, entry.Path)
		}
	case string(name.FileTag):
		info, err := packet.DecodeFileInfo(data.Content)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "file %s\n", data.Name)
		fmt.Fprintf(out, "  size:           %d\n", info.Size)
		fmt.Fprintf(out, "  version:        %d\n", info.Version)
		fmt.Fprintf(out, "  total segments: %d\n", info.TotalSegments)
		if info.MimeType != "" {
			fmt.Fprintf(out, "  mime type:      %s\n", info.MimeType)
		}
	default:
		fmt.Fprintf(out, "data %s\n", data.Name)
		fmt.Fprintf(out, "  content: %q\n", data.Content)
		if final, ok := data.FinalBlock(); ok {
			fmt.Fprintf(out, "  final block: %d\n", final)
		}
	}
	return nil
}

// get fetches the current version of the file at target segment by
// segment up to its final block and writes the content to out.
// Returns the number of bytes written.
func (f *fetcher) get(ctx context.Context, target string, out io.Writer) (int64, error) {
	requestName, err := f.resolve(target)
	if err != nil {
		return 0, err
	}
	data, err := f.express(ctx, requestName)
	if err != nil {
		return 0, err
	}
	if marker(data.Name) != string(name.FileTag) {
		return 0, fmt.Errorf("%s is not a file", requestName)
	}
	info, err := packet.DecodeFileInfo(data.Content)
	if err != nil {
		return 0, err
	}

	var written int64
	for index := int64(0); index < info.TotalSegments; index++ {
		segmentName := requestName.Append(name.Version(info.Version), name.Segment(index))
		segment, err := f.express(ctx, segmentName)
		if err != nil {
			return written, fmt.Errorf("segment %d: %w", index, err)
		}
		if !segment.Name.Equal(segmentName) {
			return written, fmt.Errorf("segment %d: answer named %s", index, segment.Name)
		}
		n, err := out.Write(segment.Content)
		written += int64(n)
		if err != nil {
			return written, err
		}
		if final, ok := segment.FinalBlock(); ok && final == index {
			break
		}
	}
	if written != info.Size {
		return written, fmt.Errorf("fetched %d bytes, file info records %d", written, info.Size)
	}
	return written, nil
}

// marker returns the structural marker preceding the version of a
// file-info or directory-listing answer, or "".
func marker(dataName name.Name) string {
	if len(dataName) < 2 {
		return ""
	}
	candidate := dataName.At(-2)
	if candidate.Kind() != name.KindStructural {
		return ""
	}
	return string(candidate)
}

// errQuit ends the interactive loop.
var errQuit = errors.New("quit")

// command runs one line of the interactive client.
func (f *fetcher) command(ctx context.Context, line string, out io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "show", "ls":
		if len(fields) != 2 {
			return fmt.Errorf("usage: show <name>")
		}
		return f.show(ctx, fields[1], out)
	case "fetch", "get":
		if len(fields) != 2 {
			return fmt.Errorf("usage: fetch <name>")
		}
		written, err := f.get(ctx, fields[1], io.Discard)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "fetched %d bytes, every segment verified\n", written)
		return nil
	case "help":
		fmt.Fprintln(out, "commands: show <name>, fetch <name>, help, quit")
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("%s: command unknown", fields[0])
	}
}
