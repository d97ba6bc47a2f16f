package cryptoutil

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	bls12 "github.com/herumi/bls-eth-go-binary/bls"
)

var blsInitOnce sync.Once

func ensureBLSInit() {
	blsInitOnce.Do(func() {
		if err := bls12.Init(bls12.BLS12_381); err != nil {
			panic(fmt.Sprintf("cryptoutil: bls12.Init failed: %v", err))
		}
		bls12.SetETHmode(1)
	})
}

// BaseSecretLen is the fixed width of the shared BLS base secret.
const BaseSecretLen = 32

// RegisterKey is the per-domain BLS12-381 keypair derived from the shared
// base secret and a domain name. Its public key feeds the register address
// hash (AddressOf); the protocol never signs anything with it directly —
// signing of record documents is always Ed25519 over canonical bytes.
type RegisterKey struct {
	secret bls12.SecretKey
	public bls12.PublicKey
}

// DeriveRegisterKey derives the child secret bound to the UTF-8 bytes of
// name from the shared base secret. The derivation must be identical
// across implementations: base secret bytes and name bytes are
// concatenated and hashed into the BLS scalar field via the library's
// standard hash-to-secret-key routine, so any two implementations linking
// the same BLS library derive the same child key for the same inputs.
func DeriveRegisterKey(baseSecret [BaseSecretLen]byte, name string) (*RegisterKey, error) {
	ensureBLSInit()

	seed := make([]byte, 0, BaseSecretLen+len(name))
	seed = append(seed, baseSecret[:]...)
	seed = append(seed, []byte(name)...)

	var sk bls12.SecretKey
	sk.SetHashOf(seed)

	rk := &RegisterKey{secret: sk}
	rk.public = *sk.GetPublicKey()
	return rk, nil
}

// PublicKeyBytes returns the serialized (compressed) BLS public key.
func (k *RegisterKey) PublicKeyBytes() []byte {
	return k.public.Serialize()
}

// RegisterAddress is the network-defined hash of the register's BLS
// public key: SHA-256, rendered as 32 raw bytes. Implementations that
// consume a different CAS hash function must substitute theirs here; the
// contract for this protocol is address determinism given the same
// public key, not a specific hash algorithm.
func (k *RegisterKey) RegisterAddress() [32]byte {
	return sha256.Sum256(k.PublicKeyBytes())
}

// RegisterAddressHex renders the register address as 64-char lowercase hex,
// matching the wire convention used for CAS chunk addresses (§6).
func (k *RegisterKey) RegisterAddressHex() string {
	addr := k.RegisterAddress()
	return hex.EncodeToString(addr[:])
}

// ParseBaseSecret decodes the 64-char lowercase hex SHARED_BASE_SECRET_HEX
// constant into its raw 32-byte form.
func ParseBaseSecret(hexStr string) ([BaseSecretLen]byte, error) {
	var out [BaseSecretLen]byte
	raw, err := hex.DecodeString(hexStr)
	if err != nil {
		return out, fmt.Errorf("cryptoutil: decode base secret: %w", err)
	}
	if len(raw) != BaseSecretLen {
		return out, fmt.Errorf("cryptoutil: base secret must be %d bytes, got %d", BaseSecretLen, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}
