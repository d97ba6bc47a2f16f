package dnsserver

import (
	"context"
	"fmt"
	"log"
	"net"
	"runtime"

	"github.com/ant-dns/antdns/dnsmsg"
)

// ListenUDP binds a UDP listener for s, falling back to :8053 when :53
// is unavailable (commonly because the process is not running as root),
// and spawns two reader goroutines per CPU.
func (s *Server) ListenUDP(errch chan<- error) {
	cfg := &net.ListenConfig{Control: udpControl}

	l, err := cfg.ListenPacket(context.Background(), "udp", ":53")
	if err != nil {
		l, err = cfg.ListenPacket(context.Background(), "udp", ":8053")
		if err != nil {
			errch <- fmt.Errorf("dnsserver: failed to listen udp: %w", err)
			return
		}
	}

	cnt := runtime.NumCPU() * 2
	for i := 0; i < cnt; i++ {
		go s.udpThread(l)
	}
	log.Printf("[dnsserver] listening on udp %s with %d goroutines", l.LocalAddr(), cnt)
}

func (s *Server) udpThread(l net.PacketConn) {
	buf := make([]byte, 1500)

	for {
		n, addr, err := l.ReadFrom(buf)
		if err != nil {
			log.Printf("[dnsserver] udp read failed: %s", err)
			return
		}
		s.handleUDPPacket(buf[:n], l, addr)
	}
}

func (s *Server) handleUDPPacket(buf []byte, l net.PacketConn, raddr net.Addr) {
	msg, err := dnsmsg.Parse(buf)
	if err != nil {
		log.Printf("[dnsserver] failed to parse msg from %s: %s", raddr, err)
		return
	}

	resp, err := s.handleQuery(msg)
	if err != nil {
		log.Printf("[dnsserver] failed to respond to %s: %s", raddr, err)
		return
	}
	if resp == nil {
		return
	}

	out, err := resp.MarshalBinary()
	if err != nil {
		log.Printf("[dnsserver] failed to marshal response to %s: %s", raddr, err)
		return
	}
	l.WriteTo(out, raddr)
}
