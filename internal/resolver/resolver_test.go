package resolver

import (
	"context"
	"crypto/ed25519"
	"testing"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/document"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/stretchr/testify/require"
)

// memCAS is a minimal in-memory CASClient fake used only to exercise the
// resolver's history-walk algorithm against hand-assembled registers.
type memCAS struct {
	chunks    map[[32]byte][]byte
	registers map[[32]byte][][32]byte
	nextAddr  byte
}

func newMemCAS() *memCAS {
	return &memCAS{
		chunks:    make(map[[32]byte][]byte),
		registers: make(map[[32]byte][][32]byte),
	}
}

func (m *memCAS) ChunkPut(_ context.Context, data []byte) ([32]byte, error) {
	m.nextAddr++
	var addr [32]byte
	addr[0] = m.nextAddr
	m.chunks[addr] = data
	return addr, nil
}

func (m *memCAS) ChunkGet(_ context.Context, addr [32]byte) ([]byte, error) {
	data, ok := m.chunks[addr]
	if !ok {
		return nil, errNotFound
	}
	return data, nil
}

func (m *memCAS) RegisterCreate(_ context.Context, rk *cryptoutil.RegisterKey, initial [32]byte) ([32]byte, error) {
	addr := rk.RegisterAddress()
	m.registers[addr] = [][32]byte{initial}
	return addr, nil
}

func (m *memCAS) RegisterAppend(_ context.Context, rk *cryptoutil.RegisterKey, entry [32]byte) error {
	addr := rk.RegisterAddress()
	m.registers[addr] = append(m.registers[addr], entry)
	return nil
}

type memHistIter struct {
	entries [][32]byte
	pos     int
}

func (it *memHistIter) Next(_ context.Context) bool {
	if it.pos >= len(it.entries) {
		return false
	}
	it.pos++
	return true
}

func (it *memHistIter) Entry() [32]byte { return it.entries[it.pos-1] }
func (it *memHistIter) Err() error      { return nil }

func (m *memCAS) RegisterHistory(_ context.Context, addr [32]byte) register.HistoryIterator {
	return &memHistIter{entries: m.registers[addr]}
}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "not found" }

var errNotFound = notFoundErr{}

var testBase = mustBase("055f218d56343b8ff7f4ebf5ba8f137c27a634add32c6174c63fab7df204271a")

func mustBase(s string) [cryptoutil.BaseSecretLen]byte {
	b, err := cryptoutil.ParseBaseSecret(s)
	if err != nil {
		panic(err)
	}
	return b
}

// fixture builds a register for name with an owner document and then
// appends the given signed-records payloads in order (some may be spam).
type fixture struct {
	cas     *memCAS
	adapter *register.Adapter
	pub     ed25519.PublicKey
	priv    ed25519.PrivateKey
	name    string
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()
	pub, priv, err := cryptoutil.GenerateKeypair()
	require.NoError(t, err)

	cas := newMemCAS()
	adapter := register.NewAdapter(cas, testBase)

	ownerRaw, err := document.NewOwner(pub).Bytes()
	require.NoError(t, err)

	ownerAddr, err := adapter.ChunkPut(context.Background(), ownerRaw)
	require.NoError(t, err)

	_, err = adapter.Create(context.Background(), name, ownerAddr)
	require.NoError(t, err)

	return &fixture{cas: cas, adapter: adapter, pub: pub, priv: priv, name: name}
}

func (f *fixture) appendValid(t *testing.T, value string) {
	t.Helper()
	records := []canonical.Record{{Type: "ant", Name: ".", Value: value}}
	canon, err := canonical.Marshal(records, 0)
	require.NoError(t, err)
	sig, err := cryptoutil.Sign(f.priv, canon)
	require.NoError(t, err)
	doc := document.NewSignedRecords(records, sig)
	raw, err := doc.Bytes()
	require.NoError(t, err)
	addr, err := f.adapter.ChunkPut(context.Background(), raw)
	require.NoError(t, err)
	require.NoError(t, f.adapter.Append(context.Background(), f.name, addr))
}

func (f *fixture) appendSpamWrongKey(t *testing.T, value string) {
	t.Helper()
	_, otherPriv, err := cryptoutil.GenerateKeypair()
	require.NoError(t, err)
	records := []canonical.Record{{Type: "ant", Name: ".", Value: value}}
	canon, err := canonical.Marshal(records, 0)
	require.NoError(t, err)
	sig, err := cryptoutil.Sign(otherPriv, canon)
	require.NoError(t, err)
	raw, err := document.NewSignedRecords(records, sig).Bytes()
	require.NoError(t, err)
	addr, err := f.adapter.ChunkPut(context.Background(), raw)
	require.NoError(t, err)
	require.NoError(t, f.adapter.Append(context.Background(), f.name, addr))
}

func (f *fixture) appendGarbage(t *testing.T) {
	t.Helper()
	addr, err := f.adapter.ChunkPut(context.Background(), []byte("not json"))
	require.NoError(t, err)
	require.NoError(t, f.adapter.Append(context.Background(), f.name, addr))
}

func TestResolveEmptyAfterOwner(t *testing.T) {
	// Invariant 6 / scenario E6.
	f := newFixture(t, "example.ant")
	r := New(f.adapter, 0)

	res, err := r.Resolve(context.Background(), f.name)
	require.NoError(t, err)
	require.Empty(t, res.Records)
	require.Equal(t, 0, res.ValidCount)
	require.Equal(t, 0, res.SpamCount)
}

func TestResolveLastValidWins(t *testing.T) {
	// Invariant 5.
	f := newFixture(t, "example.ant")
	f.appendValid(t, "v1")
	f.appendValid(t, "v2")
	f.appendValid(t, "v3")

	r := New(f.adapter, 0)
	res, err := r.Resolve(context.Background(), f.name)
	require.NoError(t, err)
	require.Equal(t, "v3", res.Records[0].Value)
	require.Equal(t, 3, res.ValidCount)
}

func TestResolveSpamImmunity(t *testing.T) {
	// Invariant 4: spam before, between, and after a valid entry never
	// changes the resolved records, only spam_count.
	f := newFixture(t, "example.ant")
	f.appendSpamWrongKey(t, "prefix-spam")
	f.appendGarbage(t)
	f.appendValid(t, "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf")
	f.appendSpamWrongKey(t, "suffix-spam")
	f.appendGarbage(t)

	r := New(f.adapter, 0)
	res, err := r.Resolve(context.Background(), f.name)
	require.NoError(t, err)
	require.Equal(t, "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf", res.Records[0].Value)
	require.Equal(t, 1, res.ValidCount)
	require.Equal(t, 4, res.SpamCount)
}

func TestResolveNotRegistered(t *testing.T) {
	cas := newMemCAS()
	adapter := register.NewAdapter(cas, testBase)
	r := New(adapter, 0)

	_, err := r.Resolve(context.Background(), "nobody.ant")
	require.ErrorIs(t, err, antdnserr.ErrNotRegistered)
}

func TestResolveCorruptOwner(t *testing.T) {
	cas := newMemCAS()
	adapter := register.NewAdapter(cas, testBase)

	addr, err := adapter.ChunkPut(context.Background(), []byte("not an owner doc"))
	require.NoError(t, err)
	_, err = adapter.Create(context.Background(), "bad.ant", addr)
	require.NoError(t, err)

	r := New(adapter, 0)
	_, err = r.Resolve(context.Background(), "bad.ant")
	require.ErrorIs(t, err, antdnserr.ErrCorrupt)
}
