// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

// Package mimetype infers a file's MIME type from its extension.
//
// A Table starts from a small built-in set and can be extended from a
// mime.types file (the "type ext1 ext2 ..." format of /etc/mime.types).
// Extensions missing from the table fall back to the standard library's
// registry, which itself reads the system mime.types files.
package mimetype

import (
	"bufio"
	"fmt"
	"mime"
	"os"
	"path"
	"strings"
)

var builtin = map[string]string{
	"txt":  "text/plain",
	"html": "text/html",
	"htm":  "text/html",
	"css":  "text/css",
	"js":   "application/javascript",
	"json": "application/json",
	"xml":  "application/xml",
	"pdf":  "application/pdf",
	"zip":  "application/zip",
	"gz":   "application/gzip",
	"tar":  "application/x-tar",
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"svg":  "image/svg+xml",
	"mp3":  "audio/mpeg",
	"ogg":  "audio/ogg",
	"wav":  "audio/wav",
	"mp4":  "video/mp4",
	"webm": "video/webm",
	"md":   "text/markdown",
	"go":   "text/x-go",
	"c":    "text/x-c",
	"cc":   "text/x-c++",
	"h":    "text/x-c",
}

// Table maps lowercase extensions (without the dot) to MIME types.
type Table struct {
	types map[string]string
}

// Default returns a table holding only the built-in types.
func Default() *Table {
	types := make(map[string]string, len(builtin))
	for extension, mimeType := range builtin {
		types[extension] = mimeType
	}
	return &Table{types: types}
}

// Load returns the built-in table extended with the entries of the
// mime.types file at filePath. Later lines override earlier ones and
// the built-in set.
func Load(filePath string) (*Table, error) {
	table := Default()
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("mimetype: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		for _, extension := range fields[1:] {
			table.types[strings.ToLower(extension)] = fields[0]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("mimetype: reading %s: %w", filePath, err)
	}
	return table, nil
}

// Infer returns the MIME type for filePath's extension, or "" if it is
// unknown. Parameters such as charset are stripped.
func (t *Table) Infer(filePath string) string {
	extension := strings.ToLower(strings.TrimPrefix(path.Ext(filePath), "."))
	if extension == "" {
		return ""
	}
	if mimeType, ok := t.types[extension]; ok {
		return mimeType
	}
	mimeType := mime.TypeByExtension("." + extension)
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	return ""
}
