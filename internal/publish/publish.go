// Package publish implements registration and update (§4.6): the
// write-side counterpart to internal/resolver. Both operations build a
// document, upload it as a CAS chunk, and append its address to the
// domain's register; neither is transactional across those steps, so
// partial failures are designed to be self-healing on the next call.
package publish

import (
	"context"
	"fmt"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/document"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/ant-dns/antdns/internal/resolver"
)

// Result is returned by Register.
type Result struct {
	PublicKey []byte
	OwnerAddr [32]byte
	RecAddr   [32]byte
}

// Publisher drives registration and update against a register.Adapter, a
// resolver (used only to check for a pre-existing non-empty history), and
// a KeyStore for persisting/retrieving the domain's private key.
type Publisher struct {
	adapter  *register.Adapter
	resolver *resolver.Resolver
	keys     register.KeyStore
}

// New builds a Publisher.
func New(adapter *register.Adapter, res *resolver.Resolver, keys register.KeyStore) *Publisher {
	return &Publisher{adapter: adapter, resolver: res, keys: keys}
}

// Register performs the full registration sequence (§4.6 steps 1-7).
func (p *Publisher) Register(ctx context.Context, name string, initial []canonical.Record) (*Result, error) {
	if _, err := p.resolver.Resolve(ctx, name); err == nil {
		return nil, antdnserr.ErrAlreadyRegistered
	} else if err != antdnserr.ErrNotRegistered {
		// Corrupt/Unavailable both mean we cannot safely determine
		// whether the name is already registered.
		return nil, err
	}

	pub, priv, err := cryptoutil.GenerateKeypair()
	if err != nil {
		return nil, err
	}
	if err := p.keys.Put(name, priv); err != nil {
		return nil, fmt.Errorf("publish: persist key for %q: %w", name, err)
	}

	ownerRaw, err := document.NewOwner(pub).Bytes()
	if err != nil {
		return nil, fmt.Errorf("publish: encode owner document: %w", err)
	}
	ownerAddr, err := p.adapter.ChunkPut(ctx, ownerRaw)
	if err != nil {
		return nil, err
	}
	if _, err := p.adapter.Create(ctx, name, ownerAddr); err != nil {
		return nil, err
	}

	recAddr, err := p.publishRecords(ctx, name, priv, initial)
	if err != nil {
		// Step 4 already succeeded: the domain is registered but empty,
		// and a later update will complete it.
		return nil, err
	}

	return &Result{PublicKey: pub, OwnerAddr: ownerAddr, RecAddr: recAddr}, nil
}

// Update performs the update sequence: load the local private key, build
// and publish a new Signed Records Document, append it. Refuses when the
// key is absent locally (ErrNotOwner) — append itself never checks
// ownership, only the caller's ability to sign does.
func (p *Publisher) Update(ctx context.Context, name string, records []canonical.Record) ([32]byte, error) {
	priv, ok, err := p.keys.Get(name)
	if err != nil {
		return [32]byte{}, fmt.Errorf("publish: load key for %q: %w", name, err)
	}
	if !ok {
		return [32]byte{}, antdnserr.ErrNotOwner
	}
	return p.publishRecords(ctx, name, priv, records)
}

func (p *Publisher) publishRecords(ctx context.Context, name string, priv []byte, records []canonical.Record) ([32]byte, error) {
	canon, err := canonical.Marshal(records, 0)
	if err != nil {
		return [32]byte{}, fmt.Errorf("publish: canonicalize records for %q: %w", name, err)
	}
	sig, err := cryptoutil.Sign(priv, canon)
	if err != nil {
		return [32]byte{}, err
	}
	raw, err := document.NewSignedRecords(records, sig).Bytes()
	if err != nil {
		return [32]byte{}, fmt.Errorf("publish: encode records document for %q: %w", name, err)
	}
	addr, err := p.adapter.ChunkPut(ctx, raw)
	if err != nil {
		return [32]byte{}, err
	}
	if err := p.adapter.Append(ctx, name, addr); err != nil {
		return [32]byte{}, err
	}
	return addr, nil
}
