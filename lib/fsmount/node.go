// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package fsmount

import (
	"context"
	"errors"
	"path"
	"syscall"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"golang.org/x/sys/unix"

	"github.com/remap/ndnfs-port/lib/metastore"
)

// node is a loopback node whose content-changing operations go through
// the volume.
type node struct {
	gofuse.LoopbackNode
	tree *tree
}

var _ gofuse.InodeEmbedder = (*node)(nil)
var _ gofuse.NodeCreater = (*node)(nil)
var _ gofuse.NodeMknoder = (*node)(nil)
var _ gofuse.NodeOpener = (*node)(nil)
var _ gofuse.NodeSetattrer = (*node)(nil)
var _ gofuse.NodeUnlinker = (*node)(nil)
var _ gofuse.NodeRenamer = (*node)(nil)

// treePath returns the node's path in the tree: "/" for the root,
// "/a/b" below it.
func (n *node) treePath() string {
	return "/" + n.Path(n.Root())
}

func (n *node) childPath(childName string) string {
	return path.Join(n.treePath(), childName)
}

func (n *node) Create(ctx context.Context, childName string, flags uint32, mode uint32, out *fuse.EntryOut) (*gofuse.Inode, gofuse.FileHandle, uint32, syscall.Errno) {
	inode, inner, fuseFlags, errno := n.LoopbackNode.Create(ctx, childName, flags, mode, out)
	if errno != 0 {
		return nil, nil, 0, errno
	}

	filePath := n.childPath(childName)
	if mode&syscall.S_IFMT == 0 {
		mode |= syscall.S_IFREG
	}
	if err := n.tree.volume.Register(ctx, filePath, mode); err != nil {
		n.tree.logger.Error("registering created file", "path", filePath, "error", err)
		releaseInner(ctx, inner)
		n.LoopbackNode.Unlink(ctx, childName)
		return nil, nil, 0, toErrno(err)
	}

	child, ok := inode.Operations().(*node)
	if !ok {
		releaseInner(ctx, inner)
		return nil, nil, 0, syscall.EIO
	}
	handle := &fileHandle{inner: inner, node: child}
	if isWrite(flags) {
		version, err := n.tree.volume.OpenWrite(ctx, filePath)
		if err != nil {
			releaseInner(ctx, inner)
			return nil, nil, 0, toErrno(err)
		}
		handle.writable = true
		handle.version = version
	}
	return inode, handle, fuseFlags, 0
}

func (n *node) Mknod(ctx context.Context, childName string, mode, rdev uint32, out *fuse.EntryOut) (*gofuse.Inode, syscall.Errno) {
	inode, errno := n.LoopbackNode.Mknod(ctx, childName, mode, rdev, out)
	if errno != 0 {
		return nil, errno
	}
	filePath := n.childPath(childName)
	if err := n.tree.volume.Register(ctx, filePath, mode); err != nil {
		n.tree.logger.Error("registering mknod entry", "path", filePath, "error", err)
		n.LoopbackNode.Unlink(ctx, childName)
		return nil, toErrno(err)
	}
	return inode, 0
}

func (n *node) Open(ctx context.Context, flags uint32) (gofuse.FileHandle, uint32, syscall.Errno) {
	if !isWrite(flags) {
		inner, fuseFlags, errno := n.LoopbackNode.Open(ctx, flags)
		if errno != 0 {
			return nil, 0, errno
		}
		return &fileHandle{inner: inner, node: n}, fuseFlags, 0
	}

	filePath := n.treePath()
	version, err := n.admit(ctx, filePath)
	if err != nil {
		return nil, 0, toErrno(err)
	}

	// The volume truncates the version itself so the segment rows
	// follow the real file.
	inner, fuseFlags, errno := n.LoopbackNode.Open(ctx, flags&^syscall.O_TRUNC)
	if errno != 0 {
		n.abort(ctx, filePath)
		return nil, 0, errno
	}
	if flags&syscall.O_TRUNC != 0 {
		if err := n.tree.volume.Truncate(ctx, filePath, version, 0); err != nil {
			releaseInner(ctx, inner)
			n.abort(ctx, filePath)
			return nil, 0, toErrno(err)
		}
	}
	return &fileHandle{inner: inner, node: n, writable: true, version: version}, fuseFlags, 0
}

// admit opens a writer on filePath, registering files that exist on
// disk but were never seen by the volume.
func (n *node) admit(ctx context.Context, filePath string) (int64, error) {
	version, err := n.tree.volume.OpenWrite(ctx, filePath)
	if !errors.Is(err, metastore.ErrNotFound) {
		return version, err
	}
	var st syscall.Stat_t
	if err := syscall.Lstat(n.tree.volume.RealPath(filePath), &st); err != nil {
		return 0, err
	}
	if err := n.tree.volume.Register(ctx, filePath, st.Mode); err != nil {
		return 0, err
	}
	return n.tree.volume.OpenWrite(ctx, filePath)
}

func (n *node) abort(ctx context.Context, filePath string) {
	if err := n.tree.volume.Abort(ctx, filePath); err != nil {
		n.tree.logger.Error("aborting writer", "path", filePath, "error", err)
	}
}

func (n *node) Setattr(ctx context.Context, f gofuse.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	if size, ok := in.GetSize(); ok {
		filePath := n.treePath()
		var err error
		if handle, isHandle := f.(*fileHandle); isHandle && handle.writable {
			err = n.tree.volume.Truncate(ctx, filePath, handle.version, int64(size))
		} else {
			err = n.tree.volume.TruncatePath(ctx, filePath, int64(size))
		}
		switch {
		case errors.Is(err, metastore.ErrNotFound):
			// Not a tracked file; let the loopback truncate it.
		case err != nil:
			return toErrno(err)
		default:
			in.Valid &^= fuse.FATTR_SIZE
		}
	}
	return n.LoopbackNode.Setattr(ctx, nil, in, out)
}

func (n *node) Unlink(ctx context.Context, childName string) syscall.Errno {
	if errno := n.LoopbackNode.Unlink(ctx, childName); errno != 0 {
		return errno
	}
	filePath := n.childPath(childName)
	if err := n.tree.volume.Remove(ctx, filePath); err != nil {
		n.tree.logger.Error("removing metadata after unlink", "path", filePath, "error", err)
		return toErrno(err)
	}
	return 0
}

func (n *node) Rename(ctx context.Context, childName string, newParent gofuse.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	if flags&unix.RENAME_EXCHANGE != 0 {
		return syscall.ENOTSUP
	}
	if errno := n.LoopbackNode.Rename(ctx, childName, newParent, newName, flags); errno != 0 {
		return errno
	}

	from := n.childPath(childName)
	to := path.Join("/"+newParent.EmbeddedInode().Path(n.Root()), newName)
	if err := n.tree.volume.Rename(ctx, from, to); err != nil {
		n.tree.logger.Error("renaming metadata", "from", from, "to", to, "error", err)
		return toErrno(err)
	}
	return 0
}

func isWrite(flags uint32) bool {
	accessMode := flags & syscall.O_ACCMODE
	return accessMode == syscall.O_WRONLY || accessMode == syscall.O_RDWR
}
