// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/remap/ndnfs-port/lib/name"
)

var testIdentity = name.MustParse("/ndn/broadcast/ndnfs")

func TestSignVerify(t *testing.T) {
	signer, err := NewSigner(bytes.Repeat([]byte{7}, SecretSize), testIdentity)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	verifier, err := NewVerifier(signer.PublicKey())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	message := []byte("segment bytes")
	signature := signer.Sign(message)
	if len(signature) != SignatureSize {
		t.Fatalf("signature length = %d, want %d", len(signature), SignatureSize)
	}
	if err := verifier.Verify(message, signature); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if err := verifier.Verify([]byte("segment bytez"), signature); !errors.Is(err, ErrBadSignature) {
		t.Errorf("Verify of altered message = %v, want ErrBadSignature", err)
	}
	if !signer.KeyLocator().Equal(testIdentity) {
		t.Errorf("KeyLocator = %s, want %s", signer.KeyLocator(), testIdentity)
	}
}

func TestKeyBoundToIdentity(t *testing.T) {
	secret := bytes.Repeat([]byte{1}, SecretSize)
	first, err := NewSigner(secret, testIdentity)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	again, _ := NewSigner(secret, testIdentity)
	other, _ := NewSigner(secret, name.MustParse("/ndn/other"))

	if !bytes.Equal(first.PublicKey(), again.PublicKey()) {
		t.Error("same secret and identity produced different keys")
	}
	if bytes.Equal(first.PublicKey(), other.PublicKey()) {
		t.Error("different identities produced the same key")
	}
}

func TestNewSignerRejectsShortSecret(t *testing.T) {
	if _, err := NewSigner([]byte("short"), testIdentity); err == nil {
		t.Fatal("NewSigner accepted a 5-byte secret")
	}
}

func TestLoadOrCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ndnfs.key")

	created, isNew, err := LoadOrCreate(path, testIdentity)
	if err != nil {
		t.Fatalf("LoadOrCreate (create): %v", err)
	}
	if !isNew {
		t.Error("first LoadOrCreate reported an existing secret")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat secret: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("secret mode = %o, want 600", info.Mode().Perm())
	}

	loaded, isNew, err := LoadOrCreate(path, testIdentity)
	if err != nil {
		t.Fatalf("LoadOrCreate (load): %v", err)
	}
	if isNew {
		t.Error("second LoadOrCreate generated a new secret")
	}
	if !bytes.Equal(created.PublicKey(), loaded.PublicKey()) {
		t.Error("reloaded signer has a different key")
	}

	verifier, err := LoadVerifier(path + PublicKeySuffix)
	if err != nil {
		t.Fatalf("LoadVerifier: %v", err)
	}
	message := []byte("hello")
	if err := verifier.Verify(message, loaded.Sign(message)); err != nil {
		t.Errorf("Verify with loaded public key: %v", err)
	}
}

func TestDigestIsKeyed(t *testing.T) {
	a := Digest([]byte("x"))
	b := Digest([]byte("x"))
	c := Digest([]byte("y"))
	if a != b {
		t.Error("Digest is not deterministic")
	}
	if a == c {
		t.Error("Digest collides for different input")
	}
}
