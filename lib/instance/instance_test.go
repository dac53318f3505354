// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package instance

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/remap/ndnfs-port/lib/clock"
	"github.com/remap/ndnfs-port/lib/config"
	"github.com/remap/ndnfs-port/lib/name"
	"github.com/remap/ndnfs-port/lib/signing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.Root = filepath.Join(dir, "content")
	cfg.Paths.Database = filepath.Join(dir, "state", "ndnfs.db")
	cfg.Paths.KeyFile = filepath.Join(dir, "keys", "ndnfs.key")
	cfg.Paths.Socket = filepath.Join(dir, "ndnfs.sock")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

func TestOpenPublishRespond(t *testing.T) {
	cfg := testConfig(t)
	logger := slog.New(slog.DiscardHandler)
	ctx := context.Background()

	instance, err := Open(cfg, clock.Fake(time.Unix(1700000000, 0)), logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer instance.Close()

	content := bytes.Repeat([]byte{'n'}, 9000)
	version, err := instance.Volume.Publish(ctx, "/data.bin", 0o100644, bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	verifier, err := signing.LoadVerifier(cfg.Paths.KeyFile + signing.PublicKeySuffix)
	if err != nil {
		t.Fatalf("LoadVerifier: %v", err)
	}
	request := name.FromPath(cfg.PrefixName(), "/data.bin").Append(name.Version(version), name.Segment(1))
	data, err := instance.Responder.Respond(ctx, request)
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if err := data.Verify(verifier); err != nil {
		t.Errorf("Verify: %v", err)
	}
	if len(data.Content) != 9000-8192 {
		t.Errorf("segment 1 has %d bytes", len(data.Content))
	}
	if !data.KeyLocator.Equal(cfg.PrefixName()) {
		t.Errorf("KeyLocator = %s", data.KeyLocator)
	}
}

func TestOpenReusesKey(t *testing.T) {
	cfg := testConfig(t)
	logger := slog.New(slog.DiscardHandler)

	first, err := Open(cfg, clock.Real(), logger)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	firstKey := first.Signer.PublicKey()
	first.Close()

	second, err := Open(cfg, clock.Real(), logger)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()
	if !bytes.Equal(firstKey, second.Signer.PublicKey()) {
		t.Error("reopening generated a new signing key")
	}
}

func TestOpenBadMimeTypes(t *testing.T) {
	cfg := testConfig(t)
	cfg.Paths.MimeTypes = filepath.Join(t.TempDir(), "absent.types")
	if _, err := Open(cfg, clock.Real(), slog.New(slog.DiscardHandler)); err == nil {
		t.Error("Open succeeded with a missing mime.types file")
	}
	if _, err := os.Stat(cfg.Paths.Database); err == nil {
		t.Error("database opened despite the configuration error")
	}
}
