// Package resolver walks a domain's register history and replays it into
// current state under the "last valid entry wins" rule: any prefix of
// spam is irrelevant, and any suffix of spam after a valid entry is
// irrelevant, because each entry re-states the complete record set.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/document"
	"github.com/ant-dns/antdns/internal/metrics"
	"github.com/ant-dns/antdns/internal/register"
)

// Resolved is the output of resolution.
type Resolved struct {
	OwnerPubKey     []byte
	Records         []canonical.Record
	EntriesInspected int
	ValidCount      int
	SpamCount       int
}

// Resolver replays a name's register history into current state.
type Resolver struct {
	adapter    *register.Adapter
	maxRecords int
}

// New builds a Resolver over adapter. maxRecords bounds records arrays
// accepted from any single entry; pass 0 for canonical.DefaultMaxRecords.
func New(adapter *register.Adapter, maxRecords int) *Resolver {
	return &Resolver{adapter: adapter, maxRecords: maxRecords}
}

// Resolve runs the full history-walk algorithm (§4.5) for name, recording
// the outcome and any spam entries seen to internal/metrics.
func (r *Resolver) Resolve(ctx context.Context, name string) (res *Resolved, err error) {
	defer func() {
		metrics.ResolutionsTotal.WithLabelValues(resolutionOutcome(err)).Inc()
		if res != nil && res.SpamCount > 0 {
			metrics.SpamEntriesTotal.Add(float64(res.SpamCount))
		}
	}()

	hist, err := r.adapter.History(ctx, name)
	if err != nil {
		return nil, err
	}

	if !hist.Next(ctx) {
		if err := hist.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", antdnserr.ErrUnavailable, err)
		}
		return nil, antdnserr.ErrNotRegistered
	}

	ownerAddr := hist.Entry()
	ownerRaw, err := r.adapter.ChunkGet(ctx, ownerAddr)
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

	res = &Resolved{OwnerPubKey: ownerPub, EntriesInspected: 1}

	for hist.Next(ctx) {
		res.EntriesInspected++
		addr := hist.Entry()

		raw, err := r.adapter.ChunkGet(ctx, addr)
		if err != nil {
			return nil, err
		}

		doc, err := document.ParseSignedRecords(raw, r.maxRecords)
		if err != nil {
			res.SpamCount++
			continue
		}

		canon, err := doc.CanonicalRecords(r.maxRecords)
		if err != nil {
			res.SpamCount++
			continue
		}
		sig, err := doc.Signature()
		if err != nil {
			res.SpamCount++
			continue
		}
		if err := cryptoutil.Verify(ownerPub, canon, sig); err != nil {
			res.SpamCount++
			continue
		}

		res.Records = doc.Records
		res.ValidCount++
	}

	if err := hist.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", antdnserr.ErrUnavailable, err)
	}

	if res.Records == nil {
		res.Records = []canonical.Record{}
	}
	return res, nil
}

// resolutionOutcome classifies err into the label values
// ResolutionsTotal is tracked under.
func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, antdnserr.ErrNotRegistered):
		return "not_registered"
	case errors.Is(err, antdnserr.ErrCorrupt):
		return "corrupt"
	case errors.Is(err, antdnserr.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
