package localcas

import (
	"context"
	"testing"

	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/stretchr/testify/require"
)

func TestChunkPutGetRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	addr, err := s.ChunkPut(context.Background(), []byte("hello"))
	require.NoError(t, err)

	got, err := s.ChunkGet(context.Background(), addr)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), got)
}

func TestRegisterCreateAppendHistory(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	base, err := cryptoutil.ParseBaseSecret("055f218d56343b8ff7f4ebf5ba8f137c27a634add32c6174c63fab7df204271a")
	require.NoError(t, err)
	rk, err := cryptoutil.DeriveRegisterKey(base, "example.ant")
	require.NoError(t, err)

	var e0, e1, e2 [32]byte
	e0[0] = 1
	e1[0] = 2
	e2[0] = 3

	addr, err := s.RegisterCreate(context.Background(), rk, e0)
	require.NoError(t, err)
	require.NoError(t, s.RegisterAppend(context.Background(), rk, e1))
	require.NoError(t, s.RegisterAppend(context.Background(), rk, e2))

	it := s.RegisterHistory(context.Background(), addr)
	var got [][32]byte
	for it.Next(context.Background()) {
		got = append(got, it.Entry())
	}
	require.NoError(t, it.Err())
	require.Equal(t, [][32]byte{e0, e1, e2}, got)
}
