// Package register adapts the CAS client to the three register
// operations the protocol needs: deterministic address derivation,
// append, and history iteration. Because the signing key behind
// derive_register_key is shared, append is open to all; ownership is
// never enforced at append time, only at resolution time by signature
// verification.
package register

import (
	"context"
	"errors"
	"fmt"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/cryptoutil"
)

// CASClient is the external content-addressable storage network this
// protocol is hosted on. It is consumed only — its own implementation
// (payment, transport, chunk storage) is out of scope for this module.
type CASClient interface {
	// ChunkPut uploads an immutable byte blob and returns its address.
	ChunkPut(ctx context.Context, data []byte) (addr [32]byte, err error)
	// ChunkGet fetches a chunk by address.
	ChunkGet(ctx context.Context, addr [32]byte) ([]byte, error)
	// RegisterCreate creates a register addressed by the public key
	// derived from signingSecret, with its first entry set to
	// initialEntry.
	RegisterCreate(ctx context.Context, signingSecret *cryptoutil.RegisterKey, initialEntry [32]byte) (addr [32]byte, err error)
	// RegisterAppend appends entry to the register signed by
	// signingSecret. Because the base secret is shared, any caller that
	// knows the domain name can compute signingSecret and append.
	RegisterAppend(ctx context.Context, signingSecret *cryptoutil.RegisterKey, entry [32]byte) error
	// RegisterHistory streams a register's entries in on-register order,
	// starting at index 0. Each call produces a fresh, non-restartable
	// stream; it may fail mid-iteration with a transient error.
	RegisterHistory(ctx context.Context, addr [32]byte) HistoryIterator
}

// HistoryIterator yields register entries lazily. Next advances to the
// next entry and reports whether one was available; Err reports any
// terminal iteration error (including a mid-stream CAS failure), to be
// checked after Next returns false.
type HistoryIterator interface {
	Next(ctx context.Context) bool
	Entry() [32]byte
	Err() error
}

// KeyStore is the external per-name private key store (§6, consumed
// only). Storage-on-disk layout is out of scope for this module; callers
// get a concrete implementation such as internal/keystore.
type KeyStore interface {
	Put(name string, priv []byte) error
	Get(name string) ([]byte, bool, error)
	List() ([]string, error)
}

// Adapter wraps a CASClient with the name-addressed register operations
// the rest of the protocol needs.
type Adapter struct {
	cas        CASClient
	baseSecret [cryptoutil.BaseSecretLen]byte
}

// NewAdapter builds an Adapter over cas, deriving per-name register keys
// from baseSecret (the SHARED_BASE_SECRET_HEX constant, decoded).
func NewAdapter(cas CASClient, baseSecret [cryptoutil.BaseSecretLen]byte) *Adapter {
	return &Adapter{cas: cas, baseSecret: baseSecret}
}

// AddressOf is pure: it depends only on name and the fixed base secret.
func (a *Adapter) AddressOf(name string) ([32]byte, error) {
	rk, err := cryptoutil.DeriveRegisterKey(a.baseSecret, name)
	if err != nil {
		return [32]byte{}, fmt.Errorf("register: derive key for %q: %w", name, err)
	}
	return rk.RegisterAddress(), nil
}

func (a *Adapter) registerKey(name string) (*cryptoutil.RegisterKey, error) {
	return cryptoutil.DeriveRegisterKey(a.baseSecret, name)
}

// Create creates the register for name with its first entry equal to
// chunkAddr. Used exactly once, at registration time, for the owner
// document chunk.
func (a *Adapter) Create(ctx context.Context, name string, chunkAddr [32]byte) ([32]byte, error) {
	rk, err := a.registerKey(name)
	if err != nil {
		return [32]byte{}, err
	}
	addr, err := a.cas.RegisterCreate(ctx, rk, chunkAddr)
	if err != nil {
		return [32]byte{}, fmt.Errorf("register: create %q: %w", name, err)
	}
	return addr, nil
}

// Append submits chunkAddr as the next register entry for name.
// Ownership is not checked here — any caller that knows name can append,
// by design (§4.4): only resolution-time signature verification decides
// whether an entry affects state.
func (a *Adapter) Append(ctx context.Context, name string, chunkAddr [32]byte) error {
	rk, err := a.registerKey(name)
	if err != nil {
		return err
	}
	if err := a.cas.RegisterAppend(ctx, rk, chunkAddr); err != nil {
		return fmt.Errorf("register: append %q: %w", name, err)
	}
	return nil
}

// History returns the on-register-order entry stream for name. The
// returned iterator yields zero entries (with Err() == nil) when the
// register has never been created, which callers distinguish from a
// transient failure by checking Err() after Next() returns false.
func (a *Adapter) History(ctx context.Context, name string) (HistoryIterator, error) {
	addr, err := a.AddressOf(name)
	if err != nil {
		return nil, err
	}
	return a.cas.RegisterHistory(ctx, addr), nil
}

// ChunkGet fetches a chunk, wrapping transport failures as
// antdnserr.ErrUnavailable.
func (a *Adapter) ChunkGet(ctx context.Context, addr [32]byte) ([]byte, error) {
	data, err := a.cas.ChunkGet(ctx, addr)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk_get: %v", antdnserr.ErrUnavailable, err)
	}
	return data, nil
}

// ChunkPut uploads data and returns its address. A payment failure is
// returned unchanged; other failures are wrapped as
// antdnserr.ErrUnavailable.
func (a *Adapter) ChunkPut(ctx context.Context, data []byte) ([32]byte, error) {
	addr, err := a.cas.ChunkPut(ctx, data)
	if errors.Is(err, antdnserr.ErrPaymentFailed) {
		return [32]byte{}, err
	}
	if err != nil {
		return [32]byte{}, fmt.Errorf("%w: chunk_put: %v", antdnserr.ErrUnavailable, err)
	}
	return addr, nil
}
