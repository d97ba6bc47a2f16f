package dnsmsg

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"strings"
)

type Message struct {
	// Header
	ID   uint16
	Bits HeaderBits

	Question   []*Question // QD
	Answer     []*Resource // AN
	Authority  []*Resource // NS
	Additional []*Resource // AR
}

func (m *Message) MarshalBinary() ([]byte, error) {
	c := &context{
		labelMap: make(map[string]uint16),
	}

	err := binary.Write(c, binary.BigEndian, m.ID)
	if err != nil {
		return nil, err
	}
	err = binary.Write(c, binary.BigEndian, m.Bits)
	if err != nil {
		return nil, err
	}
	err = binary.Write(c, binary.BigEndian, uint16(len(m.Question)))
	if err != nil {
		return nil, err
	}
	err = binary.Write(c, binary.BigEndian, uint16(len(m.Answer)))
	if err != nil {
		return nil, err
	}
	err = binary.Write(c, binary.BigEndian, uint16(len(m.Authority)))
	if err != nil {
		return nil, err
	}
	err = binary.Write(c, binary.BigEndian, uint16(len(m.Additional)))
	if err != nil {
		return nil, err
	}

	for _, q := range m.Question {
		if err = q.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Answer {
		if err = r.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Authority {
		if err = r.encode(c); err != nil {
			return nil, err
		}
	}
	for _, r := range m.Additional {
		if err = r.encode(c); err != nil {
			return nil, err
		}
	}

	return c.rawMsg, nil
}

// New returns an empty Message ready to have its Question/Answer/Authority/
// Additional sections populated directly.
func New() *Message {
	return &Message{}
}

// NewQuery builds a single-question query Message with the recursion
// desired bit set, as a client would send one.
func NewQuery(name string, class Class, typ Type) *Message {
	var idBuf [2]byte
	rand.Read(idBuf[:])

	m := &Message{
		ID: binary.BigEndian.Uint16(idBuf[:]),
	}
	m.Bits.SetRecDesired(true)
	m.Question = []*Question{{Name: name, Type: typ, Class: class}}
	return m
}

// String returns a compact human-readable summary of the message, used
// for logging.
func (m *Message) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %d %s", m.ID, m.Bits.String())

	if len(m.Question) > 0 {
		parts := make([]string, len(m.Question))
		for i, q := range m.Question {
			parts[i] = fmt.Sprintf("%s %s %s", q.Name, q.Class.String(), q.Type.String())
		}
		fmt.Fprintf(&b, " QD: %s", strings.Join(parts, ", "))
	}

	if len(m.Answer) > 0 {
		parts := make([]string, len(m.Answer))
		for i, r := range m.Answer {
			parts[i] = fmt.Sprintf("%s %s %s %d %s", r.Name, r.Class.String(), r.Type.String(), r.TTL, r.Data.String())
		}
		fmt.Fprintf(&b, " AN: %s", strings.Join(parts, ", "))
	}

	for _, r := range m.Additional {
		opt, ok := r.Data.(*RDataOPT)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, " ReqUDPSize=%d", uint16(r.Class))
		for _, o := range opt.Opts {
			fmt.Fprintf(&b, " %s", o.String())
		}
	}

	return b.String()
}
