// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package fsmount

import (
	"fmt"
	"log/slog"
	"os"
	"syscall"
	"time"

	gofuse "github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"

	"github.com/remap/ndnfs-port/lib/volume"
)

// Options configures the FUSE mount.
type Options struct {
	// Mountpoint is the directory the tree is mounted on. It is
	// created if it does not exist.
	Mountpoint string

	// Root is the directory holding the real file contents. It must
	// be the root the volume's codec was built with.
	Root string

	// Volume is the write path every content change goes through.
	Volume *volume.Volume

	// AllowOther permits other users to access the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool

	// Debug logs every FUSE request and reply.
	Debug bool

	Logger *slog.Logger
}

// Mount mounts the tree at the configured mountpoint. The caller must
// call Unmount on the returned server when done.
func Mount(options Options) (*fuse.Server, error) {
	if options.Mountpoint == "" {
		return nil, fmt.Errorf("fsmount: mountpoint is required")
	}
	if options.Root == "" {
		return nil, fmt.Errorf("fsmount: root is required")
	}
	if options.Volume == nil {
		return nil, fmt.Errorf("fsmount: volume is required")
	}
	if options.Logger == nil {
		options.Logger = slog.New(slog.DiscardHandler)
	}

	if err := os.MkdirAll(options.Mountpoint, 0o755); err != nil {
		return nil, fmt.Errorf("fsmount: creating mountpoint %s: %w", options.Mountpoint, err)
	}

	rootNode, err := newRoot(options.Root, options.Volume, options.Logger)
	if err != nil {
		return nil, err
	}

	// Attributes change underneath the kernel when the version is
	// committed, so cache them only briefly.
	entryTimeout := 1 * time.Second
	attrTimeout := 1 * time.Second
	negativeTimeout := 100 * time.Millisecond

	server, err := gofuse.Mount(options.Mountpoint, rootNode, &gofuse.Options{
		EntryTimeout:    &entryTimeout,
		AttrTimeout:     &attrTimeout,
		NegativeTimeout: &negativeTimeout,
		MountOptions: fuse.MountOptions{
			FsName:     options.Root,
			Name:       "ndnfs",
			AllowOther: options.AllowOther,
			Debug:      options.Debug,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("fsmount: mounting at %s: %w", options.Mountpoint, err)
	}

	options.Logger.Info("ndnfs mounted", "mountpoint", options.Mountpoint, "root", options.Root)
	return server, nil
}

// newRoot builds the loopback root over rootPath with every node
// created as a *node bound to vol.
func newRoot(rootPath string, vol *volume.Volume, logger *slog.Logger) (gofuse.InodeEmbedder, error) {
	var st syscall.Stat_t
	if err := syscall.Stat(rootPath, &st); err != nil {
		return nil, fmt.Errorf("fsmount: stat %s: %w", rootPath, err)
	}

	tree := &tree{volume: vol, logger: logger}
	loopback := &gofuse.LoopbackRoot{
		Path:    rootPath,
		Dev:     uint64(st.Dev),
		NewNode: tree.newNode,
	}
	rootNode := tree.newNode(loopback, nil, "", &st)
	loopback.RootNode = rootNode
	return rootNode, nil
}

// tree holds what every node of one mount shares.
type tree struct {
	volume *volume.Volume
	logger *slog.Logger
}

func (t *tree) newNode(rootData *gofuse.LoopbackRoot, _ *gofuse.Inode, _ string, _ *syscall.Stat_t) gofuse.InodeEmbedder {
	return &node{
		LoopbackNode: gofuse.LoopbackNode{RootData: rootData},
		tree:         t,
	}
}
