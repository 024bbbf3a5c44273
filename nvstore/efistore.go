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
	"fmt"
	"sync"

	efi "github.com/canonical/go-efilib"
	"golang.org/x/xerrors"

	"github.com/chromiumos/vboot-sync/bootctx"
)

// vendorGUID namespaces the UEFI authenticated variables this store
// uses, distinct from any standard UEFI global variable.
var vendorGUID = efi.MakeGUID(0x6e6cbd1a, 0x9b27, 0x4b27, 0x9a3e, [6]byte{0x4c, 0x2c, 0x1d, 0x8f, 0x5a, 0x01})

// EFIStore is an alternative bootctx.NVStore backing that persists
// each NV key as its own UEFI variable, for platforms whose natural
// NV medium is UEFI variable storage rather than flash/CMOS (spec.md
// §6 "NV store").
type EFIStore struct {
	mu      sync.Mutex
	pending map[bootctx.NVKey]uint32
}

// OpenEFIStore reads the current value of every known NV key from
// UEFI variable storage. Missing variables default to 0, matching the
// "small unsigned integers" contract in spec.md §6.
func OpenEFIStore() (*EFIStore, error) {
	s := &EFIStore{pending: make(map[bootctx.NVKey]uint32)}
	for _, key := range allNVKeys {
		data, _, err := efi.ReadVariable(efiVarName(key), vendorGUID)
		if err != nil {
			if err == efi.ErrVarNotExist {
				continue
			}
			return nil, xerrors.Errorf("read nv variable %s: %w", efiVarName(key), err)
		}
		if len(data) != 4 {
			continue
		}
		s.pending[key] = binary.LittleEndian.Uint32(data)
	}
	return s, nil
}

var allNVKeys = []bootctx.NVKey{
	bootctx.NVRecoveryRequest,
	bootctx.NVRecoverySubcode,
	bootctx.NVTryROSync,
	bootctx.NVBatteryCutoffRequest,
	bootctx.NVDevBootUSB,
	bootctx.NVDevBootLegacy,
	bootctx.NVDevDefaultBoot,
	bootctx.NVDisableDevRequest,
}

func efiVarName(key bootctx.NVKey) string {
	return fmt.Sprintf("VbootSyncNV%d", int(key))
}

// Get implements bootctx.NVStore.
func (s *EFIStore) Get(key bootctx.NVKey) uint32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[key]
}

// Set implements bootctx.NVStore.
func (s *EFIStore) Set(key bootctx.NVKey, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = value
}

// Commit implements bootctx.NVStore, writing every key back as a
// non-volatile, non-bootservice-only UEFI variable.
func (s *EFIStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attrs := efi.AttributeNonVolatile | efi.AttributeBootserviceAccess | efi.AttributeRuntimeAccess
	for key, value := range s.pending {
		data := make([]byte, 4)
		binary.LittleEndian.PutUint32(data, value)
		if err := efi.WriteVariable(efiVarName(key), vendorGUID, attrs, data); err != nil {
			return xerrors.Errorf("write nv variable %s: %w", efiVarName(key), err)
		}
	}
	return nil
}

var _ bootctx.NVStore = (*EFIStore)(nil)
