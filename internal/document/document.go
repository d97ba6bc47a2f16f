// Package document parses and emits the two JSON document shapes that live
// on the CAS as register entries: the Owner Document (register entry 0)
// and the Signed Records Document (every subsequent entry). It enforces
// the schema described for each shape, preserving unknown record type
// tags verbatim rather than rejecting them.
package document

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ant-dns/antdns/internal/canonical"
)

// ErrMalformed is returned for any document that fails schema enforcement:
// missing fields, wrong hex length, or an oversize record array. At
// resolution time callers treat this as a single spam entry; at publish
// time it is fatal.
var ErrMalformed = errors.New("document: malformed")

const (
	pubKeyHexLen = 64  // 32 bytes, Ed25519 public key
	sigHexLen    = 128 // 64 bytes, Ed25519 signature
)

// Owner is the single register entry 0 payload: the domain's Ed25519
// public key, fixed for the lifetime of the domain.
type Owner struct {
	PublicKeyHex string `json:"publicKey"`
}

// ParseOwner decodes raw bytes as an Owner Document, validating that
// publicKey is present and exactly 64 hex characters (either case).
func ParseOwner(raw []byte) (*Owner, error) {
	var o Owner
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(o.PublicKeyHex) != pubKeyHexLen {
		return nil, fmt.Errorf("%w: publicKey must be %d hex chars, got %d", ErrMalformed, pubKeyHexLen, len(o.PublicKeyHex))
	}
	if _, err := hex.DecodeString(o.PublicKeyHex); err != nil {
		return nil, fmt.Errorf("%w: publicKey not valid hex: %v", ErrMalformed, err)
	}
	return &o, nil
}

// PublicKey decodes the hex-encoded public key into raw bytes.
func (o *Owner) PublicKey() ([]byte, error) {
	return hex.DecodeString(o.PublicKeyHex)
}

// Bytes emits the owner document as its canonical UTF-8 JSON chunk
// payload. The exact wire encoding of the owner document is unconstrained
// by the protocol (only the signed records array needs canonicalization),
// so a plain compact json.Marshal is sufficient here.
func (o *Owner) Bytes() ([]byte, error) {
	return json.Marshal(o)
}

// NewOwner builds an Owner Document for a raw Ed25519 public key.
func NewOwner(pub []byte) *Owner {
	return &Owner{PublicKeyHex: hex.EncodeToString(pub)}
}

// SignedRecords is a single register entry carrying a complete
// replacement of the domain's record set plus the Ed25519 signature over
// its canonical serialization.
type SignedRecords struct {
	Records      []canonical.Record `json:"records"`
	SignatureHex string              `json:"signature"`
}

// ParseSignedRecords decodes raw bytes as a Signed Records Document,
// enforcing field presence, signature hex length, and the record-array
// bound. It does not verify the signature — that is the resolver's job,
// since verification requires the owner's public key.
func ParseSignedRecords(raw []byte, maxRecords int) (*SignedRecords, error) {
	var doc SignedRecords
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.SignatureHex) != sigHexLen {
		return nil, fmt.Errorf("%w: signature must be %d hex chars, got %d", ErrMalformed, sigHexLen, len(doc.SignatureHex))
	}
	if _, err := hex.DecodeString(doc.SignatureHex); err != nil {
		return nil, fmt.Errorf("%w: signature not valid hex: %v", ErrMalformed, err)
	}
	if maxRecords <= 0 {
		maxRecords = canonical.DefaultMaxRecords
	}
	if len(doc.Records) > maxRecords {
		return nil, fmt.Errorf("%w: %d records > bound %d", ErrMalformed, len(doc.Records), maxRecords)
	}
	for _, r := range doc.Records {
		if r.Type == "" || r.Name == "" {
			return nil, fmt.Errorf("%w: record missing type or name", ErrMalformed)
		}
	}
	return &doc, nil
}

// Signature decodes the hex-encoded signature into raw bytes.
func (d *SignedRecords) Signature() ([]byte, error) {
	return hex.DecodeString(d.SignatureHex)
}

// CanonicalRecords re-serializes d.Records through the canonicalizer. The
// resolver verifies signatures against this, never against the raw bytes
// the document arrived in — wire transport may use any equivalent JSON
// encoding.
func (d *SignedRecords) CanonicalRecords(maxRecords int) ([]byte, error) {
	return canonical.Marshal(d.Records, maxRecords)
}

// NewSignedRecords builds a Signed Records Document from an already
// computed Ed25519 signature over canonical.Marshal(records).
func NewSignedRecords(records []canonical.Record, sig []byte) *SignedRecords {
	return &SignedRecords{
		Records:      records,
		SignatureHex: hex.EncodeToString(sig),
	}
}

// Bytes emits the signed records document as UTF-8 JSON. Like the owner
// document, the outer wire encoding is unconstrained; only d.Records must
// survive a round trip through the canonicalizer identical to the bytes
// that were signed, which CanonicalRecords guarantees regardless of how
// this outer envelope is encoded.
func (d *SignedRecords) Bytes() ([]byte, error) {
	return json.Marshal(d)
}
