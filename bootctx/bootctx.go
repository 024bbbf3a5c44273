// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package bootctx holds the shared per-boot state (spec.md §3): the
// BootContext structure the EC Sync Engine mutates and the Boot-mode
// UI reads, plus the NV store key vocabulary and recovery-reason
// tags every fatal error records.
package bootctx

import "github.com/chromiumos/vboot-sync/ecdriver"

// RecoveryReason is a small integer tag recorded to NV on a
// fatal-to-this-boot error; a non-zero value on the following boot
// means that boot starts in recovery mode (spec.md §7).
type RecoveryReason uint32

// Recovery reasons the EC Sync Engine can record (spec.md §6).
const (
	RecoveryNone RecoveryReason = iota
	RecoveryECProtect
	RecoveryECHashFailed
	RecoveryECExpectedHash
	RecoveryECHashSize
	RecoveryECExpectedImage
	RecoveryECUpdate
	RecoveryECJumpRW
	RecoveryECSoftwareSync
	RecoveryECUnknownImage
	RecoveryECHashImage
)

// FirmwareSlot selects which of the two AP RW firmware slots is
// active (shared_flags.firmware_index, spec.md §3).
type FirmwareSlot int

const (
	SlotA FirmwareSlot = 0
	SlotB FirmwareSlot = 1
)

// ScratchFlags is the per-boot mutable state the EC Sync Engine owns
// (spec.md §3 scratch_flags). It replaces the original bitset and its
// IN_RW()/WHICH_EC() macros with named fields and methods (Design
// Notes §9).
type ScratchFlags struct {
	ECRONeedsUpdate bool
	ECRWNeedsUpdate bool
	PDRWNeedsUpdate bool
	ECInRW          bool
	PDInRW          bool
}

// InRW reports whether dev is currently believed to be executing its
// RW image (replaces the IN_RW(devidx) macro).
func (f *ScratchFlags) InRW(dev ecdriver.Device) bool {
	if dev == ecdriver.PD {
		return f.PDInRW
	}
	return f.ECInRW
}

// SetInRW records whether dev is currently executing its RW image.
func (f *ScratchFlags) SetInRW(dev ecdriver.Device, v bool) {
	if dev == ecdriver.PD {
		f.PDInRW = v
	} else {
		f.ECInRW = v
	}
}

// NeedsUpdate reports whether dev's sel image is flagged for update
// (replaces the WHICH_EC(devidx, select) macro read side). RO updates
// are only tracked for EC; callers must not ask for PD RO.
func (f *ScratchFlags) NeedsUpdate(dev ecdriver.Device, sel ecdriver.Select) bool {
	if sel == ecdriver.SelectRO {
		return f.ECRONeedsUpdate
	}
	if dev == ecdriver.PD {
		return f.PDRWNeedsUpdate
	}
	return f.ECRWNeedsUpdate
}

// SetNeedsUpdate marks dev's sel image as needing (or not needing) an
// update (replaces the WHICH_EC(devidx, select) macro write side).
func (f *ScratchFlags) SetNeedsUpdate(dev ecdriver.Device, sel ecdriver.Select, v bool) {
	if sel == ecdriver.SelectRO {
		f.ECRONeedsUpdate = v
		return
	}
	if dev == ecdriver.PD {
		f.PDRWNeedsUpdate = v
	} else {
		f.ECRWNeedsUpdate = v
	}
}

// AnyRWNeedsUpdate reports whether any configured device has a pending
// RW update (replaces VB2_SD_FLAG_ECSYNC_RW).
func (f *ScratchFlags) AnyRWNeedsUpdate() bool {
	return f.ECRWNeedsUpdate || f.PDRWNeedsUpdate
}

// AnyInRW reports whether any configured device is currently in RW
// (replaces VB2_SD_FLAG_ECSYNC_IN_RW).
func (f *ScratchFlags) AnyInRW() bool {
	return f.ECInRW || f.PDInRW
}

// AnyUpdatePending reports whether any RO or RW update is pending
// (replaces VB2_SD_FLAG_ECSYNC_ANY), used to gate the slow-update hint.
func (f *ScratchFlags) AnyUpdatePending() bool {
	return f.ECRONeedsUpdate || f.AnyRWNeedsUpdate()
}

// SharedFlags is the read-only policy carried in the signed firmware
// header (VbSharedDataHeader in the original) for this boot (spec.md §3).
type SharedFlags struct {
	ECSoftwareSyncEnabled bool
	ECSlowUpdate          bool
	FWWriteProtectEnabled bool
	BootDevSwitchOn       bool
	BootRecSwitchOn       bool
	BootRecSwitchVirtual  bool
	HonorVirtDevSwitch    bool
	FirmwareIndex         FirmwareSlot
}

// ActiveRWSelect returns the Select that EC/PD RW sync targets,
// matching ec_sync.c's "select_rw" local. It returns SelectRW for both
// FirmwareIndex values: Select does not distinguish AP RW slot A from
// slot B.
func (s SharedFlags) ActiveRWSelect() ecdriver.Select {
	return ecdriver.SelectRW
}

// GBBFlags is the read-only build-time platform policy carried in the
// signed GBB header (spec.md §3).
type GBBFlags struct {
	DisableECSoftwareSync bool
	DisablePDSoftwareSync bool
	DisableLidShutdown    bool
	ForceDevBootUSB       bool
	ForceDevBootLegacy    bool
	DefaultDevBootLegacy  bool
	ForceDevSwitchOn      bool
}

// Context is the per-boot shared state handed to both the EC Sync
// Engine and the Boot-mode UI (spec.md §3 BootContext). RecoveryReason
// is immutable for the duration of phase selection per the spec's
// invariant.
type Context struct {
	RecoveryReason RecoveryReason
	Scratch        ScratchFlags
	Shared         SharedFlags
	GBB            GBBFlags

	// NV is the handle onto non-volatile storage (spec.md §6); it is
	// an interface so ecsync/bootui depend only on its contract, never
	// a concrete backend. Declared here (not imported from nvstore) to
	// avoid an import cycle, since nvstore imports bootctx for the NVKey
	// constants it stores.
	NV NVStore `json:"-"`
}

// InRecovery reports whether this boot entered recovery mode
// (RecoveryReason != 0, spec.md §3 invariant: "exactly one of recovery
// or normal mode is active").
func (c *Context) InRecovery() bool {
	return c.RecoveryReason != RecoveryNone
}

// NVStore is the NV collaborator contract (spec.md §6): a serializing
// get/set/commit interface over a small set of recognized integer-valued
// keys.
type NVStore interface {
	Get(key NVKey) uint32
	Set(key NVKey, value uint32)
	Commit() error
}

// NVKey enumerates the NV keys spec.md §6 requires at minimum.
type NVKey int

const (
	NVRecoveryRequest NVKey = iota
	NVRecoverySubcode
	NVTryROSync
	NVBatteryCutoffRequest
	NVDevBootUSB
	NVDevBootLegacy
	NVDevDefaultBoot
	NVDisableDevRequest
)
