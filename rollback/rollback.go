// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package rollback defines the TPM/rollback collaborator contract
// (spec.md §6 "Rollback/TPM") the recovery flow uses to lock the
// kernel anti-rollback counter and to flip virtual developer mode.
package rollback

// Collaborator is the TPM/rollback contract.
type Collaborator interface {
	// RollbackKernelLock advances the kernel anti-rollback version
	// lock, taking whether the current boot is in recovery mode.
	RollbackKernelLock(recovery bool) error
	// SetVirtualDevMode flips the TPM-backed virtual developer-mode
	// latch on or off.
	SetVirtualDevMode(on bool) error
}
