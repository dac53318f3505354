// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package fsmount

import (
	"context"
	"sync"
	"syscall"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// fileHandle wraps the loopback file. Reads and attribute calls go to
// the real file; writes on a writable handle go through the volume into
// the handle's version, which is committed on Release.
type fileHandle struct {
	inner gofuse.FileHandle
	node  *node

	// writable handles hold the writer admitted at open.
	writable bool
	version  int64

	mu       sync.Mutex
	released bool
}

var _ gofuse.FileReader = (*fileHandle)(nil)
var _ gofuse.FileWriter = (*fileHandle)(nil)
var _ gofuse.FileFlusher = (*fileHandle)(nil)
var _ gofuse.FileReleaser = (*fileHandle)(nil)
var _ gofuse.FileFsyncer = (*fileHandle)(nil)
var _ gofuse.FileGetattrer = (*fileHandle)(nil)
var _ gofuse.FileLseeker = (*fileHandle)(nil)

func (h *fileHandle) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	reader, ok := h.inner.(gofuse.FileReader)
	if !ok {
		return nil, syscall.ENOTSUP
	}
	return reader.Read(ctx, dest, off)
}

func (h *fileHandle) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	if !h.writable {
		return 0, syscall.EBADF
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	written, err := h.node.tree.volume.Write(ctx, h.node.treePath(), h.version, data, off)
	if err != nil {
		h.node.tree.logger.Error("write failed", "path", h.node.treePath(), "offset", off, "error", err)
		return 0, toErrno(err)
	}
	return uint32(written), 0
}

func (h *fileHandle) Flush(ctx context.Context) syscall.Errno {
	if flusher, ok := h.inner.(gofuse.FileFlusher); ok {
		return flusher.Flush(ctx)
	}
	return 0
}

func (h *fileHandle) Fsync(ctx context.Context, flags uint32) syscall.Errno {
	if syncer, ok := h.inner.(gofuse.FileFsyncer); ok {
		return syncer.Fsync(ctx, flags)
	}
	return 0
}

func (h *fileHandle) Getattr(ctx context.Context, out *fuse.AttrOut) syscall.Errno {
	if getattrer, ok := h.inner.(gofuse.FileGetattrer); ok {
		return getattrer.Getattr(ctx, out)
	}
	return syscall.ENOTSUP
}

func (h *fileHandle) Lseek(ctx context.Context, off uint64, whence uint32) (uint64, syscall.Errno) {
	if seeker, ok := h.inner.(gofuse.FileLseeker); ok {
		return seeker.Lseek(ctx, off, whence)
	}
	return 0, syscall.ENOTSUP
}

// Release closes the real file and, for a writable handle, seals and
// commits the version. Only the first call has any effect.
func (h *fileHandle) Release(ctx context.Context) syscall.Errno {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.released {
		return 0
	}
	h.released = true

	errno := releaseInner(ctx, h.inner)
	if !h.writable {
		return errno
	}
	filePath := h.node.treePath()
	if err := h.node.tree.volume.Release(ctx, filePath); err != nil {
		h.node.tree.logger.Error("committing version on release", "path", filePath, "version", h.version, "error", err)
		return toErrno(err)
	}
	return errno
}

func releaseInner(ctx context.Context, inner gofuse.FileHandle) syscall.Errno {
	if releaser, ok := inner.(gofuse.FileReleaser); ok {
		return releaser.Release(ctx)
	}
	return 0
}
