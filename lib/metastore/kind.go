// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package metastore

import (
	"fmt"
	"io/fs"

	"golang.org/x/sys/unix"
)

// Kind is the file type of an entry. The numeric values are persisted
// and sent to clients in directory listings and file attributes.
type Kind uint8

const (
	KindDoor Kind = iota
	KindSymbolicLink
	KindBlockSpecial
	KindCharacterSpecial
	KindFifo
	KindEventPort
	KindUnixSocket
	KindRegular
	KindDirectory
)

var kindNames = [...]string{
	KindDoor:             "door",
	KindSymbolicLink:     "symlink",
	KindBlockSpecial:     "block",
	KindCharacterSpecial: "char",
	KindFifo:             "fifo",
	KindEventPort:        "event-port",
	KindUnixSocket:       "socket",
	KindRegular:          "regular",
	KindDirectory:        "directory",
}

func (kind Kind) String() string {
	if int(kind) < len(kindNames) {
		return kindNames[kind]
	}
	return fmt.Sprintf("kind(%d)", uint8(kind))
}

// Valid reports whether kind is one of the defined constants.
func (kind Kind) Valid() bool {
	return int(kind) < len(kindNames)
}

// KindFromMode maps the S_IFMT bits of a raw st_mode (as passed to
// mknod and create) to a Kind. Unknown types map to KindRegular.
func KindFromMode(mode uint32) Kind {
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		return KindDirectory
	case unix.S_IFLNK:
		return KindSymbolicLink
	case unix.S_IFBLK:
		return KindBlockSpecial
	case unix.S_IFCHR:
		return KindCharacterSpecial
	case unix.S_IFIFO:
		return KindFifo
	case unix.S_IFSOCK:
		return KindUnixSocket
	default:
		return KindRegular
	}
}

// KindFromFileMode maps a Go fs.FileMode (from os.Stat or os.ReadDir)
// to a Kind.
func KindFromFileMode(mode fs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode&fs.ModeSymlink != 0:
		return KindSymbolicLink
	case mode&fs.ModeDevice != 0 && mode&fs.ModeCharDevice != 0:
		return KindCharacterSpecial
	case mode&fs.ModeDevice != 0:
		return KindBlockSpecial
	case mode&fs.ModeNamedPipe != 0:
		return KindFifo
	case mode&fs.ModeSocket != 0:
		return KindUnixSocket
	default:
		return KindRegular
	}
}

// SignatureState records whether the segment signatures of an entry's
// current version can be served.
type SignatureState uint8

const (
	// SignatureReady means every segment of the current version is
	// signed.
	SignatureReady SignatureState = iota

	// SignatureNotReady means the entry has never been signed (created
	// but not yet released).
	SignatureNotReady

	// SignatureReadyOld means a writer is admitted; the current version
	// is still served from its existing signatures.
	SignatureReadyOld
)

func (state SignatureState) String() string {
	switch state {
	case SignatureReady:
		return "ready"
	case SignatureNotReady:
		return "not-ready"
	case SignatureReadyOld:
		return "ready-old"
	default:
		return fmt.Sprintf("signature-state(%d)", uint8(state))
	}
}
