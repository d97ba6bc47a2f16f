package dnsserver

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"net"
	"runtime"

	"github.com/ant-dns/antdns/dnsmsg"
)

// ListenTCP binds a TCP listener for s, falling back to :8053 when :53 is
// unavailable, spawning one accept goroutine per CPU and one client
// goroutine per connection.
func (s *Server) ListenTCP(errch chan<- error) {
	l, err := net.ListenTCP("tcp", &net.TCPAddr{Port: 53})
	if err != nil {
		l, err = net.ListenTCP("tcp", &net.TCPAddr{Port: 8053})
		if err != nil {
			errch <- fmt.Errorf("dnsserver: failed to listen tcp: %w", err)
			return
		}
	}

	cnt := runtime.NumCPU()
	for i := 0; i < cnt; i++ {
		go s.tcpThread(l)
	}
	log.Printf("[dnsserver] listening on tcp %s with %d goroutines", l.Addr(), cnt)
}

func (s *Server) tcpThread(l *net.TCPListener) {
	for {
		c, err := l.AcceptTCP()
		if err != nil {
			log.Printf("[dnsserver] tcp accept failed: %s", err)
			return
		}
		go s.tcpClient(c)
	}
}

func (s *Server) tcpClient(c *net.TCPConn) {
	defer c.Close()

	for {
		var l uint16
		if err := binary.Read(c, binary.BigEndian, &l); err != nil {
			if err != io.EOF {
				log.Printf("[dnsserver] failed to read packet len from %s: %s", c.RemoteAddr(), err)
			}
			return
		}

		buf := make([]byte, l)
		if _, err := io.ReadFull(c, buf); err != nil {
			log.Printf("[dnsserver] failed to read packet from %s: %s", c.RemoteAddr(), err)
			return
		}

		s.handleTCPPacket(buf, c)
	}
}

func (s *Server) handleTCPPacket(buf []byte, c *net.TCPConn) {
	msg, err := dnsmsg.Parse(buf)
	if err != nil {
		log.Printf("[dnsserver] failed to parse msg from %s: %s", c.RemoteAddr(), err)
		return
	}

	resp, err := s.handleQuery(msg)
	if err != nil {
		log.Printf("[dnsserver] failed to respond to %s: %s", c.RemoteAddr(), err)
		return
	}
	if resp == nil {
		return
	}

	out, err := resp.MarshalBinary()
	if err != nil {
		log.Printf("[dnsserver] failed to marshal response to %s: %s", c.RemoteAddr(), err)
		return
	}
	if len(out) > 65535 {
		log.Printf("[dnsserver] response too big for %s", c.RemoteAddr())
		return
	}

	binary.Write(c, binary.BigEndian, uint16(len(out)))
	if _, err := c.Write(out); err != nil {
		log.Printf("[dnsserver] failed to write to %s: %s", c.RemoteAddr(), err)
	}
}
