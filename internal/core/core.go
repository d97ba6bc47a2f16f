// Package core assembles the register adapter, resolver, publisher and
// key store into the operation surface named by §6: register, lookup,
// update, history, list. Argument parsing and a command dispatcher are
// explicitly out of scope (§1) — this package exposes plain Go methods
// for whatever front end calls them (antdnsd's daemon, or a test).
package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/document"
	"github.com/ant-dns/antdns/internal/publish"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/ant-dns/antdns/internal/resolver"
)

// Exit codes per §6.
const (
	ExitOK             = 0
	ExitUserError      = 1
	ExitCryptoOrFormat = 2
	ExitUnavailable    = 3
)

// ExitCode classifies err into one of the four CLI exit codes. A nil err
// is ExitOK.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, antdnserr.ErrBadName),
		errors.Is(err, antdnserr.ErrNotRegistered),
		errors.Is(err, antdnserr.ErrAlreadyRegistered),
		errors.Is(err, antdnserr.ErrNotOwner),
		errors.Is(err, antdnserr.ErrPaymentFailed):
		return ExitUserError
	case errors.Is(err, antdnserr.ErrCorrupt):
		return ExitCryptoOrFormat
	case errors.Is(err, antdnserr.ErrUnavailable):
		return ExitUnavailable
	default:
		return ExitUserError
	}
}

// HistoryEntryStatus classifies a single history entry per §7.
type HistoryEntryStatus string

const (
	StatusOwner HistoryEntryStatus = "owner"
	StatusValid HistoryEntryStatus = "valid"
	StatusSpam  HistoryEntryStatus = "spam"
)

// SpamReason distinguishes why an entry was classified spam.
type SpamReason string

const (
	ReasonParse     SpamReason = "parse"
	ReasonSignature SpamReason = "signature"
)

// HistoryEntry is one row of the history(name) CLI operation (§C).
type HistoryEntry struct {
	Index   int
	Addr    [32]byte
	Status  HistoryEntryStatus
	Reason  SpamReason
	Records []canonical.Record
}

// DomainStatus is one row of the list() CLI operation (§C): a locally
// known key plus a best-effort resolution snapshot.
type DomainStatus struct {
	Name      string
	Resolves  bool
	Records   []canonical.Record
	LookupErr error
}

// Core bundles the register adapter, resolver, publisher and key store
// behind the §6 operation names.
type Core struct {
	Adapter   *register.Adapter
	Resolver  *resolver.Resolver
	Publisher *publish.Publisher
	Keys      register.KeyStore
}

// New wires a Core over cas using baseSecret for register-key
// derivation, maxRecords bounding any single entry's record array during
// Lookup (0 for canonical.DefaultMaxRecords). History always applies
// canonical.DefaultMaxRecords.
func New(cas register.CASClient, baseSecret [cryptoutil.BaseSecretLen]byte, maxRecords int, keys register.KeyStore) *Core {
	adapter := register.NewAdapter(cas, baseSecret)
	res := resolver.New(adapter, maxRecords)
	pub := publish.New(adapter, res, keys)
	return &Core{Adapter: adapter, Resolver: res, Publisher: pub, Keys: keys}
}

// Register implements the register(name) operation.
func (c *Core) Register(ctx context.Context, name string, initial []canonical.Record) (*publish.Result, error) {
	return c.Publisher.Register(ctx, name, initial)
}

// Lookup implements the lookup(name) operation.
func (c *Core) Lookup(ctx context.Context, name string) (*resolver.Resolved, error) {
	return c.Resolver.Resolve(ctx, name)
}

// Update implements the update(name, records) operation.
func (c *Core) Update(ctx context.Context, name string, records []canonical.Record) ([32]byte, error) {
	return c.Publisher.Update(ctx, name, records)
}

// History implements the history(name) operation (§6, §C): it walks the
// same register the resolver does but keeps every entry's classification
// instead of collapsing to current state.
func (c *Core) History(ctx context.Context, name string) ([]HistoryEntry, error) {
	hist, err := c.Adapter.History(ctx, name)
	if err != nil {
		return nil, err
	}

	if !hist.Next(ctx) {
		if err := hist.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", antdnserr.ErrUnavailable, err)
		}
		return nil, antdnserr.ErrNotRegistered
	}

	var entries []HistoryEntry

	ownerAddr := hist.Entry()
	ownerRaw, err := c.Adapter.ChunkGet(ctx, ownerAddr)
	if err != nil {
		return nil, err
	}
	owner, err := document.ParseOwner(ownerRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", antdnserr.ErrCorrupt, err)
	}
	ownerPub, err := owner.PublicKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", antdnserr.ErrCorrupt, err)
	}
	entries = append(entries, HistoryEntry{Index: 0, Addr: ownerAddr, Status: StatusOwner})

	idx := 1
	for hist.Next(ctx) {
		addr := hist.Entry()
		entry := HistoryEntry{Index: idx, Addr: addr}
		idx++

		raw, err := c.Adapter.ChunkGet(ctx, addr)
		if err != nil {
			return nil, err
		}

		doc, err := document.ParseSignedRecords(raw, 0)
		if err != nil {
			entry.Status = StatusSpam
			entry.Reason = ReasonParse
			entries = append(entries, entry)
			continue
		}
		canon, err := doc.CanonicalRecords(0)
		if err != nil {
			entry.Status = StatusSpam
			entry.Reason = ReasonParse
			entries = append(entries, entry)
			continue
		}
		sig, err := doc.Signature()
		if err != nil {
			entry.Status = StatusSpam
			entry.Reason = ReasonParse
			entries = append(entries, entry)
			continue
		}
		if err := cryptoutil.Verify(ownerPub, canon, sig); err != nil {
			entry.Status = StatusSpam
			entry.Reason = ReasonSignature
			entries = append(entries, entry)
			continue
		}

		entry.Status = StatusValid
		entry.Records = doc.Records
		entries = append(entries, entry)
	}

	if err := hist.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", antdnserr.ErrUnavailable, err)
	}

	return entries, nil
}

// List implements the list() operation: every name in the local key
// store plus a best-effort resolution snapshot for each.
func (c *Core) List(ctx context.Context) ([]DomainStatus, error) {
	names, err := c.Keys.List()
	if err != nil {
		return nil, fmt.Errorf("core: list key store: %w", err)
	}

	statuses := make([]DomainStatus, 0, len(names))
	for _, name := range names {
		resolved, err := c.Resolver.Resolve(ctx, name)
		if err != nil {
			statuses = append(statuses, DomainStatus{Name: name, LookupErr: err})
			continue
		}
		statuses = append(statuses, DomainStatus{Name: name, Resolves: true, Records: resolved.Records})
	}
	return statuses, nil
}
