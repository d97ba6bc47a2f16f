package main

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/KarpelesLab/rndstr"
	"github.com/ant-dns/antdns/internal/cache"
	"github.com/ant-dns/antdns/internal/core"
)

// debugAPI implements server_status() (§C) as a bearer-token-gated HTTP
// endpoint served on the metrics listener, the way the teacher's handleApi "export-all" route exposes
// debug state behind a random bearer token (dnsd/api.go getApiKey).
type debugAPI struct {
	started   time.Time
	dnsAddr   string
	proxyAddr string
	core      *core.Core
	cache     *cache.Cache
	bearerKey string
}

func newDebugAPI(dnsAddr, proxyAddr string, c *core.Core, ch *cache.Cache) (*debugAPI, error) {
	key, err := rndstr.SimpleReader(24, rndstr.Alnum, rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("httpapi: generate bearer key: %w", err)
	}
	return &debugAPI{
		started:   time.Now(),
		dnsAddr:   dnsAddr,
		proxyAddr: proxyAddr,
		core:      c,
		cache:     ch,
		bearerKey: key,
	}, nil
}

func (d *debugAPI) checkAuth(req *http.Request) bool {
	got := req.Header.Get("Authorization")
	want := "Bearer " + d.bearerKey
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

// ServeHTTP answers server_status(): listener addresses, uptime, and the
// locally known domain count, mirroring the teacher's export-all debug
// view in spirit rather than format.
func (d *debugAPI) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	if !d.checkAuth(req) {
		http.Error(rw, "unauthorized", http.StatusUnauthorized)
		return
	}

	names, err := d.core.Keys.List()
	if err != nil {
		http.Error(rw, err.Error(), http.StatusInternalServerError)
		return
	}

	rw.Header().Set("Content-Type", "text/plain")
	fmt.Fprintf(rw, "dns_addr: %s\n", d.dnsAddr)
	fmt.Fprintf(rw, "proxy_addr: %s\n", d.proxyAddr)
	fmt.Fprintf(rw, "uptime: %s\n", time.Since(d.started).Round(time.Second))
	fmt.Fprintf(rw, "known_domains: %d\n", len(names))
	for _, name := range names {
		fmt.Fprintf(rw, "  %s\n", name)
	}
}
