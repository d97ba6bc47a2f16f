// Package proxy implements the HTTP proxy (§4.9) that resolves a
// request's Host header via the cache+resolver and streams back the
// content-addressed chunk the domain's "ant" record points to.
package proxy

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/cache"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/metrics"
	"github.com/ant-dns/antdns/internal/reqid"
	"github.com/ant-dns/antdns/internal/register"
)

// TLD is the suffix every served Host header must end in.
const TLD = ".ant"

// ChunkFetcher fetches a chunk by its hex address, as published by the
// registration/update path.
type ChunkFetcher interface {
	ChunkGetHex(ctx context.Context, hexAddr string) ([]byte, error)
}

// adapterFetcher adapts a register.Adapter to ChunkFetcher.
type adapterFetcher struct {
	adapter *register.Adapter
}

func (f adapterFetcher) ChunkGetHex(ctx context.Context, hexAddr string) ([]byte, error) {
	addr, err := decodeAddr(hexAddr)
	if err != nil {
		return nil, err
	}
	return f.adapter.ChunkGet(ctx, addr)
}

// NewAdapterFetcher wraps a register.Adapter as a ChunkFetcher.
func NewAdapterFetcher(adapter *register.Adapter) ChunkFetcher {
	return adapterFetcher{adapter: adapter}
}

// Proxy is the loopback HTTP server resolving .ant Host headers.
type Proxy struct {
	cache      *cache.Cache
	chunks     ChunkFetcher
	maxConns   int64
	activeConn int64
}

// New builds a Proxy. maxConns is the per-process connection limit
// beyond which requests receive 503 (§5 Backpressure); 0 disables the
// limit.
func New(c *cache.Cache, chunks ChunkFetcher, maxConns int64) *Proxy {
	return &Proxy{cache: c, chunks: chunks, maxConns: maxConns}
}

// Handler returns the http.Handler implementing the proxy's request flow.
func (p *Proxy) Handler() http.Handler {
	return http.HandlerFunc(p.serveHTTP)
}

func (p *Proxy) serveHTTP(rw http.ResponseWriter, req *http.Request) {
	if p.maxConns > 0 {
		n := atomic.AddInt64(&p.activeConn, 1)
		defer atomic.AddInt64(&p.activeConn, -1)
		if n > p.maxConns {
			p.respond(rw, http.StatusServiceUnavailable)
			return
		}
	}

	id := reqid.New()
	host := hostOnly(req.Host)

	if !strings.HasSuffix(host, TLD) {
		log.Printf("[proxy] %s: host %q not under %s", id, host, TLD)
		p.respond(rw, http.StatusMisdirectedRequest)
		return
	}

	resolved, err := p.cache.Lookup(req.Context(), host)
	if err != nil {
		switch {
		case errors.Is(err, antdnserr.ErrNotRegistered):
			p.respond(rw, http.StatusNotFound)
		case errors.Is(err, antdnserr.ErrUnavailable), errors.Is(err, antdnserr.ErrCorrupt):
			p.respond(rw, http.StatusBadGateway)
		default:
			p.respond(rw, http.StatusBadGateway)
		}
		log.Printf("[proxy] %s: lookup %q failed: %s", id, host, err)
		return
	}

	target, ok := findAntRecord(resolved.Records)
	if !ok {
		log.Printf("[proxy] %s: %q has no apex ant record", id, host)
		p.respond(rw, http.StatusNotFound)
		return
	}

	data, err := p.chunks.ChunkGetHex(req.Context(), target)
	if err != nil {
		log.Printf("[proxy] %s: chunk fetch for %q failed: %s", id, host, err)
		p.respond(rw, http.StatusBadGateway)
		return
	}

	rw.Header().Set("Content-Type", "application/octet-stream")
	rw.WriteHeader(http.StatusOK)
	rw.Write(data)
	metrics.ProxyResponsesTotal.WithLabelValues("200").Inc()
}

func (p *Proxy) respond(rw http.ResponseWriter, status int) {
	http.Error(rw, http.StatusText(status), status)
	metrics.ProxyResponsesTotal.WithLabelValues(fmt.Sprint(status)).Inc()
}

func hostOnly(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return host
}

func decodeAddr(hexAddr string) ([32]byte, error) {
	var addr [32]byte
	raw, err := hex.DecodeString(hexAddr)
	if err != nil {
		return addr, fmt.Errorf("proxy: decode chunk address: %w", err)
	}
	if len(raw) != 32 {
		return addr, fmt.Errorf("proxy: chunk address must be 32 bytes, got %d", len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}

// findAntRecord picks the apex "ant" record per §4.9 step 2: name=".",
// type="ant".
func findAntRecord(records []canonical.Record) (string, bool) {
	for _, r := range records {
		if r.Name == "." && r.Type == "ant" {
			return r.Value, true
		}
	}
	return "", false
}
