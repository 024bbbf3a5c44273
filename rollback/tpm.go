// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package rollback

import (
	"github.com/canonical/go-tpm2"
	"github.com/canonical/go-tpm2/linux"
	"golang.org/x/xerrors"
)

// kernelRollbackNVIndex is the well-known NV index holding the kernel
// anti-rollback version, matching the platform's TCG-reserved range
// for firmware rollback state.
const kernelRollbackNVIndex = tpm2.Handle(0x01400001)

// virtualDevModeNVIndex similarly holds the one-byte virtual
// developer-mode latch.
const virtualDevModeNVIndex = tpm2.Handle(0x01400002)

// TPMRollback is a Collaborator backed by a real TPM 2.0 device,
// talking to it through go-tpm2's transport and issuing NV commands
// without an authorization session.
type TPMRollback struct {
	tpm *tpm2.TPMContext
}

// OpenTPMRollback opens the platform's default TPM device
// (linux.DefaultRawDevice); devicePath is not used.
func OpenTPMRollback(devicePath string) (*TPMRollback, error) {
	device, err := linux.DefaultRawDevice()
	if err != nil {
		return nil, xerrors.Errorf("open tpm device: %w", err)
	}
	tcti, err := linux.NewTctiFromDevice(device)
	if err != nil {
		return nil, xerrors.Errorf("open tpm transport: %w", err)
	}
	return &TPMRollback{tpm: tpm2.NewTPMContext(tcti)}, nil
}

// RollbackKernelLock implements Collaborator by incrementing the
// kernel anti-rollback NV counter, unless recovery is true (a recovery
// boot must not advance the lock, since its kernel version may be
// older than the one already latched).
func (r *TPMRollback) RollbackKernelLock(recovery bool) error {
	if recovery {
		return nil
	}
	index, err := r.tpm.NewResourceContext(kernelRollbackNVIndex)
	if err != nil {
		return xerrors.Errorf("load kernel rollback nv index: %w", err)
	}
	nvIndex, ok := index.(tpm2.ResourceContext)
	if !ok {
		return xerrors.New("kernel rollback nv index has unexpected resource type")
	}
	return r.tpm.NVIncrement(nvIndex, nvIndex, nil)
}

// SetVirtualDevMode implements Collaborator by writing a single-byte
// latch to its NV index under the index's own authorization.
func (r *TPMRollback) SetVirtualDevMode(on bool) error {
	index, err := r.tpm.NewResourceContext(virtualDevModeNVIndex)
	if err != nil {
		return xerrors.Errorf("load virtual dev mode nv index: %w", err)
	}
	nvIndex, ok := index.(tpm2.ResourceContext)
	if !ok {
		return xerrors.New("virtual dev mode nv index has unexpected resource type")
	}
	value := byte(0)
	if on {
		value = 1
	}
	return r.tpm.NVWrite(nvIndex, nvIndex, tpm2.MaxNVBuffer{value}, 0, nil)
}

// Close releases the underlying TPM transport.
func (r *TPMRollback) Close() error {
	return r.tpm.Close()
}

var _ Collaborator = (*TPMRollback)(nil)
