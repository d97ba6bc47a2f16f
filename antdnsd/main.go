package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ant-dns/antdns/internal/cache"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/core"
	"github.com/ant-dns/antdns/internal/dnsserver"
	"github.com/ant-dns/antdns/internal/keystore"
	"github.com/ant-dns/antdns/internal/localcas"
	"github.com/ant-dns/antdns/internal/proxy"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var shutdownChannel = make(chan struct{})

func shutdown() {
	log.Println("[main] shutting down...")
	close(shutdownChannel)
}

func setupSignals() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	go func() {
		<-c
		shutdown()
	}()
}

func openCAS(endpoint string) (register.CASClient, error) {
	dir, ok := strings.CutPrefix(endpoint, "local:")
	if !ok {
		return nil, fmt.Errorf("unsupported CAS endpoint %q: only local:<dir> is implemented", endpoint)
	}
	return localcas.Open(dir)
}

func main() {
	setupSignals()
	log.Printf("[main] initializing antdnsd...")

	cfg := loadConfig()

	if cfg.BaseSecretHex == "" {
		log.Printf("[main] no -base-secret given, refusing to start")
		os.Exit(1)
	}
	baseSecret, err := cryptoutil.ParseBaseSecret(cfg.BaseSecretHex)
	if err != nil {
		log.Printf("[main] invalid base secret: %s", err)
		os.Exit(1)
	}

	cas, err := openCAS(cfg.CASEndpoint)
	if err != nil {
		log.Printf("[main] CAS init failed: %s", err)
		os.Exit(1)
	}

	keys, err := keystore.Open(cfg.KeyStoreDir)
	if err != nil {
		log.Printf("[main] keystore init failed: %s", err)
		os.Exit(1)
	}

	c := core.New(cas, baseSecret, 0, keys)

	cacheOpts := []cache.Option{
		cache.WithTTL(cfg.CacheTTL),
		cache.WithNegativeTTL(cfg.CacheNegativeTTL),
		cache.WithCapacity(cfg.CacheCapacity),
	}
	ctx := context.Background()
	if cfg.RedisAddr != "" {
		bus := cache.NewRedisBus(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		cacheOpts = append(cacheOpts, cache.WithInvalidationBus(ctx, bus))
	}
	resolveCache := cache.New(func(ctx context.Context, name string) (*cache.Resolved, error) {
		resolved, err := c.Lookup(ctx, name)
		if err != nil {
			return nil, err
		}
		return &cache.Resolved{OwnerPubKey: resolved.OwnerPubKey, Records: resolved.Records}, nil
	}, cacheOpts...)

	dns := dnsserver.New(dnsserver.Config{RedirectIP: cfg.RedirectIP, TTL: cfg.DNSTTL})

	errch := make(chan error, 4)
	go dns.ListenUDP(errch)
	go dns.ListenTCP(errch)

	p := proxy.New(resolveCache, proxy.NewAdapterFetcher(c.Adapter), cfg.MaxProxyConns)
	go func() {
		log.Printf("[main] proxy listening on %s", cfg.ProxyBindAddr)
		if err := http.ListenAndServe(cfg.ProxyBindAddr, p.Handler()); err != nil {
			errch <- err
		}
	}()

	debug, err := newDebugAPI(cfg.DNSBindAddr, cfg.ProxyBindAddr, c, resolveCache)
	if err != nil {
		log.Printf("[main] debug API init failed: %s", err)
		os.Exit(1)
	}
	log.Printf("[main] debug API bearer key for this instance is: %s", debug.bearerKey)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/debug/status", debug)
	go func() {
		log.Printf("[main] metrics listening on %s", cfg.MetricsAddr)
		if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
			errch <- err
		}
	}()

	select {
	case err := <-errch:
		log.Printf("[main] init failed: %s", err)
		os.Exit(1)
	case <-shutdownChannel:
	}

	log.Printf("[main] bye bye")
}
