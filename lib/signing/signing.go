// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package signing

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/hkdf"

	"github.com/remap/ndnfs-port/lib/name"
)

// SecretSize is the length of the identity secret kept in the key file.
const SecretSize = 32

// DigestSize is the length of a signed-portion digest.
const DigestSize = 32

// SignatureSize is the length of every signature produced by a Signer.
const SignatureSize = ed25519.SignatureSize

// ErrBadSignature is returned by Verifier.Verify on mismatch.
var ErrBadSignature = errors.New("signing: signature does not verify")

// digestDomainKey keys the BLAKE3 digest of signed portions so a
// segment signature cannot be replayed as a signature over any other
// BLAKE3-hashed message.
var digestDomainKey = [32]byte{
	'n', 'd', 'n', 'f', 's', '.', 's', 'i', 'g', 'n', 'e', 'd', '-', 'p', 'o', 'r',
	't', 'i', 'o', 'n', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Digest returns the keyed BLAKE3 digest of a signed portion. This is
// the message that is actually signed.
func Digest(signedPortion []byte) [DigestSize]byte {
	hasher, err := blake3.NewKeyed(digestDomainKey[:])
	if err != nil {
		panic("signing: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(signedPortion)
	var digest [DigestSize]byte
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// Signer signs packets under one fixed identity.
type Signer struct {
	identity name.Name
	private  ed25519.PrivateKey
	public   ed25519.PublicKey
}

// NewSigner derives the identity's Ed25519 key from secret with
// HKDF-SHA256, using the identity name as the info parameter. The same
// secret yields unrelated keys for different identities.
func NewSigner(secret []byte, identity name.Name) (*Signer, error) {
	if len(secret) != SecretSize {
		return nil, fmt.Errorf("signing: secret has %d bytes, want %d", len(secret), SecretSize)
	}
	reader := hkdf.New(sha256.New, secret, nil, []byte("ndnfs identity "+identity.String()))
	seed := make([]byte, ed25519.SeedSize)
	if _, err := io.ReadFull(reader, seed); err != nil {
		return nil, fmt.Errorf("signing: HKDF key derivation failed: %w", err)
	}
	private := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		identity: identity.Clone(),
		private:  private,
		public:   private.Public().(ed25519.PublicKey),
	}, nil
}

// Sign returns the signature over the digest of signedPortion.
func (s *Signer) Sign(signedPortion []byte) []byte {
	digest := Digest(signedPortion)
	return ed25519.Sign(s.private, digest[:])
}

// KeyLocator returns the identity name placed in signed packets.
func (s *Signer) KeyLocator() name.Name {
	return s.identity
}

// PublicKey returns the verification key for this identity.
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.public
}

// Verifier checks signatures made by one identity.
type Verifier struct {
	public ed25519.PublicKey
}

// NewVerifier returns a verifier for public.
func NewVerifier(public ed25519.PublicKey) (*Verifier, error) {
	if len(public) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("signing: public key has %d bytes, want %d", len(public), ed25519.PublicKeySize)
	}
	return &Verifier{public: public}, nil
}

// Verify returns nil if signature is valid for signedPortion.
func (v *Verifier) Verify(signedPortion, signature []byte) error {
	digest := Digest(signedPortion)
	if !ed25519.Verify(v.public, digest[:], signature) {
		return ErrBadSignature
	}
	return nil
}
