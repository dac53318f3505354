// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package fsmount

import (
	"errors"
	"syscall"

	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/segment"
	"github.com/remap/ndnfs-port/lib/versioning"
)

// toErrno maps a write-path error to the errno reported to the kernel.
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, metastore.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, versioning.ErrBusy), errors.Is(err, metastore.ErrClaimed):
		return syscall.EBUSY
	case errors.Is(err, versioning.ErrConflict), errors.Is(err, metastore.ErrExists):
		return syscall.EEXIST
	case errors.Is(err, name.ErrInvalidRequest), errors.Is(err, versioning.ErrNoWriter):
		return syscall.EINVAL
	case errors.Is(err, segment.ErrUnsupported):
		return syscall.ENOTSUP
	case errors.Is(err, segment.ErrIO):
		return syscall.EIO
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
