package publish

import (
	"context"
	"testing"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/ant-dns/antdns/internal/resolver"
	"github.com/stretchr/testify/require"
)

type memKeyStore struct {
	keys map[string][]byte
}

func newMemKeyStore() *memKeyStore { return &memKeyStore{keys: make(map[string][]byte)} }

func (m *memKeyStore) Put(name string, priv []byte) error {
	m.keys[name] = priv
	return nil
}

func (m *memKeyStore) Get(name string) ([]byte, bool, error) {
	v, ok := m.keys[name]
	return v, ok, nil
}

func (m *memKeyStore) List() ([]string, error) {
	names := make([]string, 0, len(m.keys))
	for n := range m.keys {
		names = append(names, n)
	}
	return names, nil
}

func newTestEnv(t *testing.T) (*register.Adapter, *resolver.Resolver, register.KeyStore) {
	t.Helper()
	base, err := cryptoutil.ParseBaseSecret("055f218d56343b8ff7f4ebf5ba8f137c27a634add32c6174c63fab7df204271a")
	require.NoError(t, err)
	cas := newMemCASForPublishTests()
	adapter := register.NewAdapter(cas, base)
	res := resolver.New(adapter, 0)
	return adapter, res, newMemKeyStore()
}

func TestRegisterAndResolve(t *testing.T) {
	adapter, res, keys := newTestEnv(t)
	pub := New(adapter, res, keys)

	records := []canonical.Record{{Type: "ant", Name: ".", Value: "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf"}}
	result, err := pub.Register(context.Background(), "example.ant", records)
	require.NoError(t, err)
	require.NotEmpty(t, result.PublicKey)

	resolved, err := res.Resolve(context.Background(), "example.ant")
	require.NoError(t, err)
	require.Equal(t, "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf", resolved.Records[0].Value)
}

func TestRegisterTwiceFails(t *testing.T) {
	adapter, res, keys := newTestEnv(t)
	pub := New(adapter, res, keys)

	records := []canonical.Record{{Type: "ant", Name: ".", Value: "x"}}
	_, err := pub.Register(context.Background(), "example.ant", records)
	require.NoError(t, err)

	_, err = pub.Register(context.Background(), "example.ant", records)
	require.ErrorIs(t, err, antdnserr.ErrAlreadyRegistered)
}

func TestUpdateWithoutKeyFails(t *testing.T) {
	adapter, res, keys := newTestEnv(t)
	pub := New(adapter, res, keys)

	_, err := pub.Update(context.Background(), "nope.ant", []canonical.Record{})
	require.ErrorIs(t, err, antdnserr.ErrNotOwner)
}

func TestUpdateChangesResolvedValue(t *testing.T) {
	adapter, res, keys := newTestEnv(t)
	pub := New(adapter, res, keys)

	_, err := pub.Register(context.Background(), "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "old"}})
	require.NoError(t, err)

	_, err = pub.Update(context.Background(), "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "new"}})
	require.NoError(t, err)

	resolved, err := res.Resolve(context.Background(), "example.ant")
	require.NoError(t, err)
	require.Equal(t, "new", resolved.Records[0].Value)
}
