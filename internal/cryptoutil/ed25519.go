// Package cryptoutil implements the three crypto primitives the protocol
// depends on: Ed25519 sign/verify over canonical bytes, and BLS12-381
// register-key derivation from the shared base secret.
package cryptoutil

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

// ErrBadSignature is returned by Verify for any signature rejection: wrong
// length, malformed encoding, or cryptographic failure. Callers never need
// to distinguish these cases — all of them mean "treat this entry as spam".
var ErrBadSignature = errors.New("cryptoutil: signature verification failed")

// ErrBadPublicKey is returned when a public key is not a valid Ed25519 key.
var ErrBadPublicKey = errors.New("cryptoutil: malformed ed25519 public key")

// Sign produces a 64-byte Ed25519 signature over data using the standard
// EdDSA construction (crypto.Hash(0) — Ed25519 hashes internally).
func Sign(priv ed25519.PrivateKey, data []byte) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("cryptoutil: private key must be %d bytes, got %d", ed25519.PrivateKeySize, len(priv))
	}
	signer := crypto.Signer(priv)
	sig, err := signer.Sign(rand.Reader, data, crypto.Hash(0))
	if err != nil {
		return nil, fmt.Errorf("cryptoutil: sign: %w", err)
	}
	return sig, nil
}

// Verify checks sig against data under pub. A public key of the wrong
// length yields ErrBadPublicKey; every signature rejection — bad length or
// cryptographic failure — collapses to ErrBadSignature, with no more
// detailed reason.
func Verify(pub ed25519.PublicKey, data, sig []byte) error {
	if len(pub) != ed25519.PublicKeySize {
		return ErrBadPublicKey
	}
	if len(sig) != ed25519.SignatureSize {
		return ErrBadSignature
	}
	if !ed25519.Verify(pub, data, sig) {
		return ErrBadSignature
	}
	return nil
}

// GenerateKeypair creates a fresh Ed25519 domain keypair, used at
// registration time.
func GenerateKeypair() (ed25519.PublicKey, ed25519.PrivateKey, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("cryptoutil: generate keypair: %w", err)
	}
	return pub, priv, nil
}
