// Package keystore implements the external per-name private key store
// (§6) as one file per domain name under a directory, matching the
// "user_data/domain-keys/" layout. Storage-on-disk format is otherwise
// opaque to the rest of the protocol, which only ever sees it through
// the register.KeyStore interface.
package keystore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Store is a file-per-name Ed25519 private key store.
type Store struct {
	dir string
}

// candidateDirs are tried in order when Open is called without an
// explicit directory, mirroring the fallback-path idiom of trying
// several candidate locations before giving up.
var candidateDirs = []string{
	"/var/lib/antdnsd/domain-keys",
	"./user_data/domain-keys",
}

// Open opens (creating if necessary) a key store at dir. If dir is empty,
// each of candidateDirs is tried in turn and the first one that can be
// created/stat'd is used.
func Open(dir string) (*Store, error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("keystore: open %s: %w", dir, err)
		}
		return &Store{dir: dir}, nil
	}

	var lastErr error
	for _, d := range candidateDirs {
		if err := os.MkdirAll(d, 0o700); err == nil {
			log.Printf("[keystore] opened domain-keys directory %s", d)
			return &Store{dir: d}, nil
		} else {
			lastErr = err
		}
	}
	return nil, fmt.Errorf("keystore: no candidate directory usable: %w", lastErr)
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("keystore: invalid name %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// Put writes priv to the file for name, overwriting any existing key.
func (s *Store) Put(name string, priv []byte) error {
	p, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, priv, 0o600); err != nil {
		return fmt.Errorf("keystore: write %q: %w", name, err)
	}
	return nil
}

// Get reads the private key for name. ok is false (with a nil error) if
// no key file exists for name.
func (s *Store) Get(name string) (priv []byte, ok bool, err error) {
	p, err := s.path(name)
	if err != nil {
		return nil, false, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("keystore: read %q: %w", name, err)
	}
	return data, true, nil
}

// List enumerates all names currently holding a key.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("keystore: list %s: %w", s.dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}
