package core

import (
	"context"
	"testing"

	"github.com/ant-dns/antdns/internal/antdnserr"
	"github.com/ant-dns/antdns/internal/canonical"
	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/stretchr/testify/require"
)

type coreMemKeyStore struct {
	keys map[string][]byte
}

func newCoreMemKeyStore() *coreMemKeyStore { return &coreMemKeyStore{keys: make(map[string][]byte)} }

func (m *coreMemKeyStore) Put(name string, priv []byte) error {
	m.keys[name] = priv
	return nil
}

func (m *coreMemKeyStore) Get(name string) ([]byte, bool, error) {
	v, ok := m.keys[name]
	return v, ok, nil
}

func (m *coreMemKeyStore) List() ([]string, error) {
	names := make([]string, 0, len(m.keys))
	for n := range m.keys {
		names = append(names, n)
	}
	return names, nil
}

func newTestCore(t *testing.T) *Core {
	t.Helper()
	base, err := cryptoutil.ParseBaseSecret("055f218d56343b8ff7f4ebf5ba8f137c27a634add32c6174c63fab7df204271a")
	require.NoError(t, err)
	return New(newCoreMemCAS(), base, 0, newCoreMemKeyStore())
}

func TestExitCodeClassification(t *testing.T) {
	require.Equal(t, ExitOK, ExitCode(nil))
	require.Equal(t, ExitUserError, ExitCode(antdnserr.ErrNotRegistered))
	require.Equal(t, ExitUserError, ExitCode(antdnserr.ErrAlreadyRegistered))
	require.Equal(t, ExitCryptoOrFormat, ExitCode(antdnserr.ErrCorrupt))
	require.Equal(t, ExitUnavailable, ExitCode(antdnserr.ErrUnavailable))
}

func TestCoreRegisterLookupUpdate(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	records := []canonical.Record{{Type: "ant", Name: ".", Value: "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf"}}
	_, err := c.Register(ctx, "example.ant", records)
	require.NoError(t, err)

	resolved, err := c.Lookup(ctx, "example.ant")
	require.NoError(t, err)
	require.Equal(t, "a33082163be512fb471a1cca385332b32c19917deec3989a97e100d827f97baf", resolved.Records[0].Value)

	_, err = c.Update(ctx, "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "new"}})
	require.NoError(t, err)

	resolved, err = c.Lookup(ctx, "example.ant")
	require.NoError(t, err)
	require.Equal(t, "new", resolved.Records[0].Value)
}

func TestCoreHistoryClassifiesEntries(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "v1"}})
	require.NoError(t, err)
	_, err = c.Update(ctx, "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "v2"}})
	require.NoError(t, err)

	entries, err := c.History(ctx, "example.ant")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, StatusOwner, entries[0].Status)
	require.Equal(t, StatusValid, entries[1].Status)
	require.Equal(t, StatusValid, entries[2].Status)
	require.Equal(t, "v2", entries[2].Records[0].Value)
}

func TestCoreHistoryNotRegistered(t *testing.T) {
	c := newTestCore(t)
	_, err := c.History(context.Background(), "nobody.ant")
	require.ErrorIs(t, err, antdnserr.ErrNotRegistered)
}

func TestCoreListReportsResolutionStatus(t *testing.T) {
	c := newTestCore(t)
	ctx := context.Background()

	_, err := c.Register(ctx, "example.ant", []canonical.Record{{Type: "ant", Name: ".", Value: "v1"}})
	require.NoError(t, err)

	statuses, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, statuses, 1)
	require.Equal(t, "example.ant", statuses[0].Name)
	require.True(t, statuses[0].Resolves)
	require.Equal(t, "v1", statuses[0].Records[0].Value)
}
