package keystore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put("example.ant", []byte("secret-key-bytes")))

	got, ok, err := s.Get("example.ant")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("secret-key-bytes"), got)
}

func TestGetMissingReturnsNotOk(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	_, ok, err := s.Get("nobody.ant")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListEnumeratesNames(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put("a.ant", []byte("1")))
	require.NoError(t, s.Put("b.ant", []byte("2")))

	names, err := s.List()
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"a.ant", "b.ant"}, names)
}

func TestPutRejectsPathTraversal(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)

	err = s.Put("../escape", []byte("x"))
	require.Error(t, err)
}
