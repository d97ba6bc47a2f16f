// Command antdnsd runs the ANT-DNS server: the DNS responder (§4.8,
// .ant A-record redirection), the HTTP proxy (§4.9), and the cache and
// metrics that front the resolver. Registration, update, history and
// list are exposed as a library surface (internal/core) rather than a
// command dispatcher, which is explicitly out of scope (§1).
package main

import (
	"flag"
	"net"
	"os"
	"time"
)

// Config is antdnsd's full runtime configuration, loaded from flags and
// environment in the style of the teacher's small package-level
// accessors rather than a generic config framework.
type Config struct {
	// CASEndpoint selects the CAS backend. "local:<dir>" uses the
	// embedded pebble-backed internal/localcas reference implementation;
	// any other value is reserved for a real network client, which this
	// module does not implement (§1, out of scope).
	CASEndpoint string

	DNSBindAddr   string
	ProxyBindAddr string
	MetricsAddr   string

	RedirectIP net.IP
	DNSTTL     time.Duration

	CacheTTL         time.Duration
	CacheNegativeTTL time.Duration
	CacheCapacity    int
	MaxProxyConns    int64

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KeyStoreDir string

	BaseSecretHex string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// loadConfig parses flags and environment variables into a Config. Flag
// parsing itself is the one piece of "CLI dispatcher" this binary needs
// (it starts a server, it does not dispatch register/lookup/update/etc.
// subcommands — those remain a library surface per §1's Non-goal).
func loadConfig() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.CASEndpoint, "cas", envOr("ANTDNSD_CAS", "local:./user_data/cas"), "CAS backend (local:<dir>; no network client is implemented)")
	flag.StringVar(&cfg.DNSBindAddr, "dns-addr", envOr("ANTDNSD_DNS_ADDR", ":53"), "DNS listener address (informational; actual bind falls back to :8053)")
	flag.StringVar(&cfg.ProxyBindAddr, "proxy-addr", envOr("ANTDNSD_PROXY_ADDR", ":80"), "HTTP proxy listener address")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", envOr("ANTDNSD_METRICS_ADDR", ":9100"), "Prometheus metrics listener address")

	redirect := flag.String("redirect-ip", envOr("ANTDNSD_REDIRECT_IP", "127.0.0.1"), "IP returned for .ant A queries")
	dnsTTL := flag.Duration("dns-ttl", 60*time.Second, "TTL applied to DNS answers, capped at 60s")

	cacheTTL := flag.Duration("cache-ttl", 60*time.Minute, "successful resolution cache TTL")
	cacheNegTTL := flag.Duration("cache-negative-ttl", 60*time.Second, "not-registered cache TTL")
	flag.IntVar(&cfg.CacheCapacity, "cache-capacity", 100_000, "maximum cache entries before LRU eviction")
	flag.Int64Var(&cfg.MaxProxyConns, "max-proxy-conns", 0, "maximum concurrent proxy requests, 0 disables the limit")

	flag.StringVar(&cfg.RedisAddr, "redis-addr", envOr("ANTDNSD_REDIS_ADDR", ""), "optional Redis address for cross-process cache invalidation")
	flag.StringVar(&cfg.RedisPassword, "redis-password", envOr("ANTDNSD_REDIS_PASSWORD", ""), "Redis password")
	flag.IntVar(&cfg.RedisDB, "redis-db", 0, "Redis logical database")

	flag.StringVar(&cfg.KeyStoreDir, "keystore-dir", envOr("ANTDNSD_KEYSTORE_DIR", ""), "domain private-key directory; empty tries the built-in candidate paths")
	flag.StringVar(&cfg.BaseSecretHex, "base-secret", envOr("ANTDNSD_BASE_SECRET", ""), "hex-encoded 32-byte shared base secret (SHARED_BASE_SECRET_HEX)")

	flag.Parse()

	cfg.RedirectIP = net.ParseIP(*redirect)
	cfg.DNSTTL = *dnsTTL
	cfg.CacheTTL = *cacheTTL
	cfg.CacheNegativeTTL = *cacheNegTTL

	return cfg
}
