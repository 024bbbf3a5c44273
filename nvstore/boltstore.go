// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package nvstore

import (
	"encoding/binary"
	"sync"

	"go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"github.com/chromiumos/vboot-sync/bootctx"
)

var nvBucket = []byte("nv")

// BoltStore is a bbolt-backed implementation of bootctx.NVStore. Get
// reads a cached snapshot taken at Open (or after the last Commit);
// Set only updates that snapshot. Commit is the only operation that
// touches disk, matching the spec's explicit "commit flushes pending
// sets to persistent backing" contract (spec.md §5).
type BoltStore struct {
	db *bbolt.DB

	mu      sync.Mutex
	pending map[bootctx.NVKey]uint32
}

// OpenBoltStore opens (creating if necessary) a bbolt database at path
// and loads its current contents.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, xerrors.Errorf("open nv store: %w", err)
	}
	s := &BoltStore{db: db, pending: make(map[bootctx.NVKey]uint32)}
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(nvBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, xerrors.Errorf("init nv bucket: %w", err)
	}
	if err := s.load(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *BoltStore) load() error {
	return s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(nvBucket)
		return b.ForEach(func(k, v []byte) error {
			if len(k) != 4 || len(v) != 4 {
				return nil
			}
			key := bootctx.NVKey(binary.BigEndian.Uint32(k))
			s.pending[key] = binary.BigEndian.Uint32(v)
			return nil
		})
	})
}

// Get implements bootctx.NVStore.
func (s *BoltStore) Get(key bootctx.NVKey) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key]
}

// Set implements bootctx.NVStore.
func (s *BoltStore) Set(key bootctx.NVKey, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = value
}

// Commit implements bootctx.NVStore, flushing all pending values in a
// single bbolt transaction.
func (s *BoltStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(nvBucket)
		for k, v := range s.pending {
			kb := make([]byte, 4)
			vb := make([]byte, 4)
			binary.BigEndian.PutUint32(kb, uint32(k))
			binary.BigEndian.PutUint32(vb, v)
			if err := b.Put(kb, vb); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the underlying bbolt database handle.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

var _ bootctx.NVStore = (*BoltStore)(nil)
