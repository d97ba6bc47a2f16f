// Package localcas is a reference/test-only implementation of the
// register.CASClient interface, backed by an embedded pebble key-value
// store. It exists so the rest of the module can be exercised end to end
// without a real CAS network: chunks are stored as content-hash keyed
// values, and registers as a sequence of big-endian-indexed keys under
// the register's address prefix. It is not a production CAS — payment,
// replication, and network transport are all absent.
package localcas

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/ant-dns/antdns/internal/cryptoutil"
	"github.com/ant-dns/antdns/internal/register"
	"github.com/cockroachdb/pebble"
)

const (
	chunkPrefix    = "c:"
	registerPrefix = "r:"
)

// Store is a pebble-backed CASClient.
type Store struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a localcas store at dir.
func Open(dir string) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("localcas: open %s: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying pebble handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func chunkKey(addr [32]byte) []byte {
	return append([]byte(chunkPrefix), addr[:]...)
}

// ChunkPut stores data under its SHA-256 content address.
func (s *Store) ChunkPut(_ context.Context, data []byte) ([32]byte, error) {
	addr := sha256.Sum256(data)
	if err := s.db.Set(chunkKey(addr), data, pebble.Sync); err != nil {
		return [32]byte{}, fmt.Errorf("localcas: chunk_put: %w", err)
	}
	return addr, nil
}

// ChunkGet fetches a chunk by address.
func (s *Store) ChunkGet(_ context.Context, addr [32]byte) ([]byte, error) {
	v, closer, err := s.db.Get(chunkKey(addr))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, fmt.Errorf("localcas: chunk %x: %w", addr, os.ErrNotExist)
		}
		return nil, fmt.Errorf("localcas: chunk_get: %w", err)
	}
	out := make([]byte, len(v))
	copy(out, v)
	closer.Close()
	return out, nil
}

func registerEntryKey(addr [32]byte, index uint64) []byte {
	key := make([]byte, 0, len(registerPrefix)+32+8)
	key = append(key, []byte(registerPrefix)...)
	key = append(key, addr[:]...)
	var idx [8]byte
	binary.BigEndian.PutUint64(idx[:], index)
	return append(key, idx[:]...)
}

// RegisterCreate writes entry 0 of the register addressed by
// signingSecret's public key.
func (s *Store) RegisterCreate(_ context.Context, signingSecret *cryptoutil.RegisterKey, initialEntry [32]byte) ([32]byte, error) {
	addr := signingSecret.RegisterAddress()
	if err := s.db.Set(registerEntryKey(addr, 0), initialEntry[:], pebble.Sync); err != nil {
		return [32]byte{}, fmt.Errorf("localcas: register_create: %w", err)
	}
	return addr, nil
}

// RegisterAppend writes the next sequential entry for the register
// addressed by signingSecret's public key.
func (s *Store) RegisterAppend(ctx context.Context, signingSecret *cryptoutil.RegisterKey, entry [32]byte) error {
	addr := signingSecret.RegisterAddress()
	n, err := s.registerLen(addr)
	if err != nil {
		return err
	}
	if err := s.db.Set(registerEntryKey(addr, n), entry[:], pebble.Sync); err != nil {
		return fmt.Errorf("localcas: register_append: %w", err)
	}
	return nil
}

func (s *Store) registerLen(addr [32]byte) (uint64, error) {
	prefix := append([]byte(registerPrefix), addr[:]...)
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return 0, fmt.Errorf("localcas: register_len: %w", err)
	}
	defer iter.Close()

	var n uint64
	for iter.First(); iter.Valid(); iter.Next() {
		n++
	}
	return n, iter.Error()
}

func prefixUpperBound(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)
	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}
	return nil // prefix was all 0xff, no upper bound needed
}

type iterator struct {
	it  *pebble.Iterator
	err error
	cur [32]byte
}

func (it *iterator) Next(_ context.Context) bool {
	if it.err != nil {
		return false
	}
	if !it.it.Valid() {
		return false
	}
	copy(it.cur[:], it.it.Value())
	it.it.Next()
	return true
}

func (it *iterator) Entry() [32]byte { return it.cur }

func (it *iterator) Err() error {
	if it.err != nil {
		return it.err
	}
	return it.it.Error()
}

// RegisterHistory streams entries for the register at addr in ascending
// index order. Each call opens a fresh pebble iterator.
func (s *Store) RegisterHistory(_ context.Context, addr [32]byte) register.HistoryIterator {
	prefix := append([]byte(registerPrefix), addr[:]...)
	it, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixUpperBound(prefix),
	})
	if err != nil {
		return &iterator{err: fmt.Errorf("localcas: register_history: %w", err)}
	}
	it.First()
	return &iterator{it: it}
}
