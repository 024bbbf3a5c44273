// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package kernelloader

import (
	"github.com/canonical/go-tpm2"
	"github.com/snapcore/secboot"
	"golang.org/x/xerrors"
)

// SealedVolumeLoader builds a DiskScanner.Load function that unlocks
// an encrypted kernel partition with a TPM-sealed key before handing
// it off to the real kernel-verification path (out of scope here; see
// spec.md §1 Non-goals).
func SealedVolumeLoader(tpm *tpm2.TPMContext, keyPath string, mapperName string) func(partition string) error {
	return func(partition string) error {
		_, err := secboot.ActivateVolumeWithTPMSealedKey(tpm, mapperName, partition, keyPath, nil)
		if err != nil {
			return xerrors.Errorf("activate sealed volume %s: %w", partition, err)
		}
		return nil
	}
}
