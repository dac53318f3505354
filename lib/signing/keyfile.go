// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/remap/ndnfs-port/lib/name"
)

// PublicKeySuffix is appended to the secret file path to name the
// public key file written next to it.
const PublicKeySuffix = ".pub"

// LoadOrCreate reads the identity secret at path, or generates and
// saves one if the file does not exist. The secret file is 0600; the
// derived public key is written to path+PublicKeySuffix (0644) for
// clients. Returns the signer and whether the secret was newly created.
func LoadOrCreate(path string, identity name.Name) (*Signer, bool, error) {
	secret, err := os.ReadFile(path)
	created := false
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		secret = make([]byte, SecretSize)
		if _, err := rand.Read(secret); err != nil {
			return nil, false, fmt.Errorf("signing: generating secret: %w", err)
		}
		if err := os.WriteFile(path, secret, 0o600); err != nil {
			return nil, false, fmt.Errorf("signing: writing secret %s: %w", path, err)
		}
		created = true
	default:
		return nil, false, fmt.Errorf("signing: reading secret %s: %w", path, err)
	}

	signer, err := NewSigner(secret, identity)
	if err != nil {
		return nil, false, fmt.Errorf("signing: %s: %w", path, err)
	}

	publicPath := path + PublicKeySuffix
	if err := os.WriteFile(publicPath, signer.PublicKey(), 0o644); err != nil {
		return nil, false, fmt.Errorf("signing: writing public key %s: %w", publicPath, err)
	}
	return signer, created, nil
}

// LoadVerifier reads a public key file written by LoadOrCreate.
func LoadVerifier(path string) (*Verifier, error) {
	public, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("signing: reading public key: %w", err)
	}
	verifier, err := NewVerifier(ed25519.PublicKey(public))
	if err != nil {
		return nil, fmt.Errorf("signing: %s: %w", path, err)
	}
	return verifier, nil
}
