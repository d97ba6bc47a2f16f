// Package dnsserver implements the minimal authoritative responder for
// the .ant zone (§4.8). It never resolves record sets itself; its only
// job is to route *.ant traffic to the local HTTP proxy by answering A
// queries with a loopback address.
package dnsserver

import (
	"net"
	"time"

	"github.com/ant-dns/antdns/dnsmsg"
	"github.com/ant-dns/antdns/internal/metrics"
)

// TLD is the zone this server answers for.
const TLD = ".ant"

// Config configures a Server.
type Config struct {
	// RedirectIP is the address returned for A queries; defaults to
	// 127.0.0.1.
	RedirectIP net.IP
	// TTL is the answer TTL; the effective TTL is min(60s, TTL).
	TTL time.Duration
}

// Server answers DNS queries for the .ant zone.
type Server struct {
	redirectIP net.IP
	ttl        uint32
}

// New builds a Server from cfg, applying defaults for zero values.
func New(cfg Config) *Server {
	ip := cfg.RedirectIP
	if ip == nil {
		ip = net.IPv4(127, 0, 0, 1)
	}
	ttl := uint32(60)
	if cfg.TTL > 0 && cfg.TTL < 60*time.Second {
		ttl = uint32(cfg.TTL.Seconds())
	}
	return &Server{redirectIP: ip, ttl: ttl}
}

// handleQuery builds the response for a single query message. It answers
// only the first question, matching the teacher's single-question
// handling; additional questions in one message are not supported by the
// wire format in practice.
func (s *Server) handleQuery(req *dnsmsg.Message) (*dnsmsg.Message, error) {
	if req.Bits.IsResponse() || req.Bits.OpCode() != dnsmsg.Query {
		return nil, errNotAQuery
	}

	resp := dnsmsg.New()
	resp.ID = req.ID
	resp.Bits.SetResponse(true)
	resp.Bits.SetRecDesired(req.Bits.IsRecDesired())
	resp.Bits.SetAuth(true)
	resp.Question = req.Question

	if len(req.Question) == 0 {
		resp.Bits.SetRCode(dnsmsg.ErrFormat)
		metrics.DNSQueriesTotal.WithLabelValues("none", resp.Bits.GetRCode().String()).Inc()
		return resp, nil
	}

	q := req.Question[0]
	if !isUnderTLD(q.Name) {
		resp.Bits.SetRCode(dnsmsg.ErrRefused)
		metrics.DNSQueriesTotal.WithLabelValues(q.Type.String(), resp.Bits.GetRCode().String()).Inc()
		return resp, nil
	}

	switch q.Type {
	case dnsmsg.A:
		resp.Answer = append(resp.Answer, &dnsmsg.Resource{
			Name:  q.Name,
			Type:  dnsmsg.A,
			Class: q.Class,
			TTL:   s.ttl,
			Data:  &dnsmsg.RDataIP{IP: s.redirectIP, Type: dnsmsg.A},
		})
		resp.Bits.SetRCode(dnsmsg.NoError)
	case dnsmsg.AAAA:
		// NOERROR, no answer: the redirect is IPv4-only.
		resp.Bits.SetRCode(dnsmsg.NoError)
	default:
		resp.Bits.SetRCode(dnsmsg.ErrRefused)
	}

	metrics.DNSQueriesTotal.WithLabelValues(q.Type.String(), resp.Bits.GetRCode().String()).Inc()
	return resp, nil
}

func isUnderTLD(name string) bool {
	n := len(name)
	if n == 0 {
		return false
	}
	// Names on the wire carry a trailing dot; tolerate both forms.
	if name[n-1] == '.' {
		name = name[:n-1]
	}
	return len(name) > len(TLD) && name[len(name)-len(TLD):] == TLD
}

var errNotAQuery = dnsNotAQueryError{}

type dnsNotAQueryError struct{}

func (dnsNotAQueryError) Error() string { return "dnsserver: not a query" }
