// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package fsmount

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/metastore"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/segment"
	"github.com/remap/ndnfs-port/lib/signing"
	"github.com/remap/ndnfs-port/lib/versioning"
	"github.com/remap/ndnfs-port/lib/volume"
)

func TestToErrno(t *testing.T) {
	tests := []struct {
		err  error
		want syscall.Errno
	}{
		{nil, 0},
		{fmt.Errorf("%w: /a", metastore.ErrNotFound), syscall.ENOENT},
		{fmt.Errorf("%w: /a", versioning.ErrBusy), syscall.EBUSY},
		{fmt.Errorf("%w: /a", versioning.ErrConflict), syscall.EEXIST},
		{metastore.ErrExists, syscall.EEXIST},
		{name.ErrInvalidRequest, syscall.EINVAL},
		{versioning.ErrNoWriter, syscall.EINVAL},
		{fmt.Errorf("%w: growing", segment.ErrUnsupported), syscall.ENOTSUP},
		{fmt.Errorf("%w: /a: %w", segment.ErrIO, syscall.ENOSPC), syscall.EIO},
		{&os.PathError{Op: "open", Path: "/x", Err: syscall.EACCES}, syscall.EACCES},
		{errors.New("anything else"), syscall.EIO},
	}
	for _, test := range tests {
		if got := toErrno(test.err); got != test.want {
			t.Errorf("toErrno(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}

func TestIsWrite(t *testing.T) {
	if isWrite(syscall.O_RDONLY) {
		t.Error("O_RDONLY reported as a write")
	}
	if !isWrite(syscall.O_WRONLY|syscall.O_TRUNC) || !isWrite(syscall.O_RDWR) {
		t.Error("write access modes not reported as writes")
	}
}

func TestMountValidation(t *testing.T) {
	if _, err := Mount(Options{Root: "/tmp", Volume: &volume.Volume{}}); err == nil {
		t.Error("Mount accepted an empty mountpoint")
	}
	if _, err := Mount(Options{Mountpoint: "/tmp/m", Volume: &volume.Volume{}}); err == nil {
		t.Error("Mount accepted an empty root")
	}
	if _, err := Mount(Options{Mountpoint: "/tmp/m", Root: "/tmp"}); err == nil {
		t.Error("Mount accepted a nil volume")
	}
}

type mounted struct {
	mountpoint string
	store      *metastore.Store
	codec      *segment.Codec
	verifier   *signing.Verifier
}

// testMount mounts a fresh tree. It skips when FUSE is unavailable or
// the process may not mount.
func testMount(t *testing.T) *mounted {
	t.Helper()
	if _, err := os.Stat("/dev/fuse"); err != nil {
		t.Skip("skipping: /dev/fuse not available")
	}

	dir := t.TempDir()
	root := filepath.Join(dir, "root")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := metastore.Open(metastore.Config{Path: filepath.Join(dir, "ndnfs.db")})
	if err != nil {
		t.Fatalf("metastore.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	prefix := name.MustParse("/ndn/broadcast/ndnfs")
	signer, err := signing.NewSigner(bytes.Repeat([]byte{6}, signing.SecretSize), prefix)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	verifier, _ := signing.NewVerifier(signer.PublicKey())
	codec, err := segment.New(segment.Config{Root: root, Prefix: prefix, Store: store, Signer: signer})
	if err != nil {
		t.Fatalf("segment.New: %v", err)
	}
	versions, err := versioning.New(versioning.Config{Store: store, Clock: clock.Fake(time.Unix(1700000000, 0))})
	if err != nil {
		t.Fatalf("versioning.New: %v", err)
	}
	vol, err := volume.New(volume.Config{Store: store, Versions: versions, Codec: codec})
	if err != nil {
		t.Fatalf("volume.New: %v", err)
	}

	mountpoint := filepath.Join(dir, "mount")
	server, err := Mount(Options{Mountpoint: mountpoint, Root: root, Volume: vol})
	if err != nil {
		t.Skipf("skipping: cannot mount: %v", err)
	}
	t.Cleanup(func() {
		if err := server.Unmount(); err != nil {
			t.Errorf("Unmount: %v", err)
		}
	})
	return &mounted{mountpoint: mountpoint, store: store, codec: codec, verifier: verifier}
}

func TestMountWriteCommitsVersion(t *testing.T) {
	m := testMount(t)
	ctx := context.Background()

	content := bytes.Repeat([]byte("mounted "), 2000)
	if err := os.WriteFile(filepath.Join(m.mountpoint, "doc.txt"), content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// Release arrives asynchronously after close.
	var entry metastore.Entry
	deadline := time.Now().Add(5 * time.Second)
	for {
		var err error
		entry, err = m.store.GetEntry(ctx, "/doc.txt")
		if err == nil && entry.TempVersion == metastore.NoVersion && entry.Size == int64(len(content)) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("version not committed: entry %+v, err %v", entry, err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	read, err := os.ReadFile(filepath.Join(m.mountpoint, "doc.txt"))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(read, content) {
		t.Error("content read through the mount differs")
	}

	row, err := m.store.GetVersion(ctx, "/doc.txt", entry.CurrentVersion)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if row.TotalSegments != 2 {
		t.Errorf("TotalSegments = %d, want 2", row.TotalSegments)
	}
	if entry.MimeType != "text/plain" {
		t.Errorf("MimeType = %q", entry.MimeType)
	}
}

func TestMountUnlinkRemovesEntry(t *testing.T) {
	m := testMount(t)
	ctx := context.Background()
	filePath := filepath.Join(m.mountpoint, "gone.bin")

	if err := os.WriteFile(filePath, []byte("bye"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := os.Remove(filePath); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := m.store.GetEntry(ctx, "/gone.bin"); !errors.Is(err, metastore.ErrNotFound) {
		t.Errorf("entry after unlink: %v", err)
	}
}
