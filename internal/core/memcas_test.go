package core

import (
	"context"

	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/register"
)

// coreMemCAS is a package-local in-memory CASClient fake, mirroring the
// fakes in internal/resolver and internal/publish: each package keeps its
// own small test double rather than sharing one across package
// boundaries for a test-only dependency.
type coreMemCAS struct {
	chunks    map[[32]byte][]byte
	registers map[[32]byte][][32]byte
	nextAddr  byte
}

func newCoreMemCAS() *coreMemCAS {
	return &coreMemCAS{
		chunks:    make(map[[32]byte][]byte),
		registers: make(map[[32]byte][][32]byte),
	}
}

func (m *coreMemCAS) ChunkPut(_ context.Context, data []byte) ([32]byte, error) {
	m.nextAddr++
	var addr [32]byte
	addr[0] = m.nextAddr
	m.chunks[addr] = data
	return addr, nil
}

func (m *coreMemCAS) ChunkGet(_ context.Context, addr [32]byte) ([]byte, error) {
	data, ok := m.chunks[addr]
	if !ok {
		return nil, coreNotFoundErr{}
	}
	return data, nil
}

func (m *coreMemCAS) RegisterCreate(_ context.Context, rk *cryptoutil.RegisterKey, initial [32]byte) ([32]byte, error) {
	addr := rk.RegisterAddress()
	m.registers[addr] = [][32]byte{initial}
	return addr, nil
}

func (m *coreMemCAS) RegisterAppend(_ context.Context, rk *cryptoutil.RegisterKey, entry [32]byte) error {
	addr := rk.RegisterAddress()
	m.registers[addr] = append(m.registers[addr], entry)
	return nil
}

func (m *coreMemCAS) RegisterHistory(_ context.Context, addr [32]byte) register.HistoryIterator {
	return &coreMemHistIter{entries: m.registers[addr]}
}

type coreMemHistIter struct {
	entries [][32]byte
	pos     int
}

func (it *coreMemHistIter) Next(_ context.Context) bool {
	if it.pos >= len(it.entries) {
		return false
	}
	it.pos++
	return true
}

func (it *coreMemHistIter) Entry() [32]byte { return it.entries[it.pos-1] }
func (it *coreMemHistIter) Err() error      { return nil }

type coreNotFoundErr struct{}

func (coreNotFoundErr) Error() string { return "not found" }
