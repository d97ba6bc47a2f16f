package publish

import (
	"context"
	"errors"

	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/register"
)

// memCASForPublishTests is a minimal in-memory CASClient fake, mirroring
// the one in internal/resolver's tests, kept local to avoid a test-only
// cross-package dependency.
type memCASForPublishTests struct {
	chunks    map[[32]byte][]byte
	registers map[[32]byte][][32]byte
	nextAddr  byte
}

func newMemCASForPublishTests() *memCASForPublishTests {
	return &memCASForPublishTests{
		chunks:    make(map[[32]byte][]byte),
		registers: make(map[[32]byte][][32]byte),
	}
}

func (m *memCASForPublishTests) ChunkPut(_ context.Context, data []byte) ([32]byte, error) {
	m.nextAddr++
	var addr [32]byte
	addr[0] = m.nextAddr
	m.chunks[addr] = data
	return addr, nil
}

func (m *memCASForPublishTests) ChunkGet(_ context.Context, addr [32]byte) ([]byte, error) {
	data, ok := m.chunks[addr]
	if !ok {
		return nil, errors.New("not found")
	}
	return data, nil
}

func (m *memCASForPublishTests) RegisterCreate(_ context.Context, rk *cryptoutil.RegisterKey, initial [32]byte) ([32]byte, error) {
	addr := rk.RegisterAddress()
	m.registers[addr] = [][32]byte{initial}
	return addr, nil
}

func (m *memCASForPublishTests) RegisterAppend(_ context.Context, rk *cryptoutil.RegisterKey, entry [32]byte) error {
	addr := rk.RegisterAddress()
	m.registers[addr] = append(m.registers[addr], entry)
	return nil
}

type publishTestHistIter struct {
	entries [][32]byte
	pos     int
}

func (it *publishTestHistIter) Next(_ context.Context) bool {
	if it.pos >= len(it.entries) {
		return false
	}
	it.pos++
	return true
}

func (it *publishTestHistIter) Entry() [32]byte { return it.entries[it.pos-1] }
func (it *publishTestHistIter) Err() error       { return nil }

func (m *memCASForPublishTests) RegisterHistory(_ context.Context, addr [32]byte) register.HistoryIterator {
	return &publishTestHistIter{entries: m.registers[addr]}
}
