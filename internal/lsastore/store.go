// Package lsastore implements a process-scoped cache of raw encoded LSA
// TLV blocks, adapted from the reference repo's badger-backed object
// store (std/object/storage/store_badger.go). It exists purely to serve
// a re-fetch of an LSA this router already holds without re-encoding it
// every time; it is opened against a fresh temporary directory on every
// start and is never the LSDB's system of record, so it does not
// constitute the cross-restart LSDB persistence spec §1 rules out.
package lsastore

import (
	"errors"
	"os"

	"github.com/dgraph-io/badger/v4"
)

// Store caches raw LSA TLV blocks keyed by an opaque string (the LSDB
// uses lsa.Key.Origin + a type tag).
type Store struct {
	db   *badger.DB
	dir  string
	temp bool
}

// Open opens (or creates) a badger store at dir. If dir is empty, a
// fresh temporary directory is created and removed on Close.
func Open(dir string) (*Store, error) {
	temp := dir == ""
	if temp {
		d, err := os.MkdirTemp("", "nlsr-lsastore-*")
		if err != nil {
			return nil, err
		}
		dir = d
	}

	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		if temp {
			os.RemoveAll(dir)
		}
		return nil, err
	}

	return &Store{db: db, dir: dir, temp: temp}, nil
}

// Close closes the underlying database, removing its backing directory
// if it was a temporary one.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.temp {
		os.RemoveAll(s.dir)
	}
	return err
}

// Put stores the raw TLV block for key.
func (s *Store) Put(key string, block []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), block)
	})
}

// Get retrieves the raw TLV block for key, returning (nil, false) if
// absent.
func (s *Store) Get(key string) ([]byte, bool) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if err != nil || out == nil {
		return nil, false
	}
	return out, true
}

// Delete removes the cached block for key, if any.
func (s *Store) Delete(key string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}
