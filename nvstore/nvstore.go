// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package nvstore provides concrete backends for the bootctx.NVStore
// collaborator contract (spec.md §6): MemStore for unit tests, and
// BoltStore/EFIStore as alternative persistent backings for a running
// helper.
package nvstore

import (
	"sync"

	"github.com/chromiumos/vboot-sync/bootctx"
)

// MemStore is an in-memory bootctx.NVStore, used by unit tests in
// place of real persistent media. Commit is a no-op observation point:
// tests assert against CommitCount to check commit discipline.
type MemStore struct {
	mu          sync.Mutex
	values      map[bootctx.NVKey]uint32
	CommitCount int
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[bootctx.NVKey]uint32)}
}

// Get implements bootctx.NVStore.
func (m *MemStore) Get(key bootctx.NVKey) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// Set implements bootctx.NVStore.
func (m *MemStore) Set(key bootctx.NVKey, value uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

// Commit implements bootctx.NVStore.
func (m *MemStore) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CommitCount++
	return nil
}

// Snapshot returns a copy of all currently-set keys, for assertions.
func (m *MemStore) Snapshot() map[bootctx.NVKey]uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[bootctx.NVKey]uint32, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

var _ bootctx.NVStore = (*MemStore)(nil)
