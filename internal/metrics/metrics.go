// Package metrics exposes the process-wide Prometheus instrumentation for
// resolution outcomes, cache behavior, and proxy responses.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ResolutionsTotal tracks resolver outcomes by result kind (ok,
	// not_registered, corrupt, unavailable).
	ResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antdns_resolutions_total",
		Help: "Total number of name resolutions, by outcome",
	}, []string{"outcome"})

	// SpamEntriesTotal counts per-entry spam rejections observed across
	// all resolutions.
	SpamEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "antdns_spam_entries_total",
		Help: "Total number of register entries rejected as spam",
	})

	// CacheOperationsTotal tracks cache hits (including cached
	// NotRegistered results), misses, and lookups coalesced onto an
	// in-flight resolution.
	CacheOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antdns_cache_operations_total",
		Help: "Total number of cache lookups, by result",
	}, []string{"result"})

	// CacheEntries tracks the current number of entries held across all
	// cache shards.
	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "antdns_cache_entries",
		Help: "Current number of entries held in the resolution cache",
	})

	// ProxyResponsesTotal tracks HTTP proxy responses by status code.
	ProxyResponsesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antdns_proxy_responses_total",
		Help: "Total number of HTTP proxy responses, by status code",
	}, []string{"status"})

	// DNSQueriesTotal tracks DNS server responses by qtype and rcode.
	DNSQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "antdns_dns_queries_total",
		Help: "Total number of DNS queries answered, by qtype and rcode",
	}, []string{"qtype", "rcode"})
)
