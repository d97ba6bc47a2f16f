package dnsserver

import (
	"net"
	"testing"
	"time"

	"github.com/ant-dns/antdns/dnsmsg"
	"github.com/stretchr/testify/require"
)

func TestHandleQueryAAnswersLoopback(t *testing.T) {
	s := New(Config{RedirectIP: net.IPv4(127, 0, 0, 1), TTL: 30 * time.Second})

	req := dnsmsg.NewQuery("example.ant.", dnsmsg.IN, dnsmsg.A)
	resp, err := s.handleQuery(req)
	require.NoError(t, err)

	require.Equal(t, dnsmsg.NoError, resp.Bits.GetRCode())
	require.Len(t, resp.Answer, 1)
	ip, ok := resp.Answer[0].Data.(*dnsmsg.RDataIP)
	require.True(t, ok)
	require.True(t, ip.IP.Equal(net.IPv4(127, 0, 0, 1)))
	require.EqualValues(t, 30, resp.Answer[0].TTL)
}

func TestHandleQueryAAAAEmptyNoError(t *testing.T) {
	s := New(Config{})
	req := dnsmsg.NewQuery("example.ant.", dnsmsg.IN, dnsmsg.AAAA)
	resp, err := s.handleQuery(req)
	require.NoError(t, err)
	require.Equal(t, dnsmsg.NoError, resp.Bits.GetRCode())
	require.Empty(t, resp.Answer)
}

func TestHandleQueryOtherTypeRefused(t *testing.T) {
	s := New(Config{})
	req := dnsmsg.NewQuery("example.ant.", dnsmsg.IN, dnsmsg.MX)
	resp, err := s.handleQuery(req)
	require.NoError(t, err)
	require.Equal(t, dnsmsg.ErrRefused, resp.Bits.GetRCode())
}

func TestHandleQueryOutsideTLDRefused(t *testing.T) {
	s := New(Config{})
	req := dnsmsg.NewQuery("example.com.", dnsmsg.IN, dnsmsg.A)
	resp, err := s.handleQuery(req)
	require.NoError(t, err)
	require.Equal(t, dnsmsg.ErrRefused, resp.Bits.GetRCode())
}

func TestHandleQueryDefaultTTLCapAt60(t *testing.T) {
	s := New(Config{TTL: 5 * time.Minute})
	req := dnsmsg.NewQuery("example.ant.", dnsmsg.IN, dnsmsg.A)
	resp, err := s.handleQuery(req)
	require.NoError(t, err)
	require.EqualValues(t, 60, resp.Answer[0].TTL)
}
