// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package ecsync implements the three-phase EC Software Sync engine
// (spec.md §4.1): diagnose what EC/PD firmware needs updating, execute
// the update and the RW jump, then finalize. The algorithm is ported
// from 3rdparty/vboot/firmware/lib/ec_sync.c, re-expressed with an
// explicit configured device list and a tagged result.Result instead
// of the original's compile-time PD_SYNC macro and overloaded
// VBERROR_EC_REBOOT_TO_RO_REQUIRED return (Design Notes §9).
package ecsync

import (
	"crypto/subtle"

	"golang.org/x/xerrors"

	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/ecdriver"
	"github.com/chromiumos/vboot-sync/logger"
	"github.com/chromiumos/vboot-sync/result"
)

// roRetries is the maximum number of attempts at flashing RO
// (spec.md §4.1 Phase 2 step 3, §7).
const roRetries = 2

// Engine drives EC Software Sync for a configured set of devices.
type Engine struct {
	// Devices lists which EC-like devices to sync, in sync order
	// (EC must precede PD if both are present). An empty list means
	// this platform has no EC (or sync is otherwise never driven).
	Devices []ecdriver.Device
	Driver  ecdriver.Driver
}

// NewEngine constructs an Engine for the given device list and driver.
func NewEngine(devices []ecdriver.Device, driver ecdriver.Driver) *Engine {
	return &Engine{Devices: devices, Driver: driver}
}

func requestRecovery(nv bootctx.NVStore, reason bootctx.RecoveryReason) {
	logger.Debugf("ecsync: request_recovery(%d)", reason)
	nv.Set(bootctx.NVRecoveryRequest, uint32(reason))
}

// syncEnabled reports whether software sync should run at all
// (spec.md §4.1 Phase 1 step 1 / Phase 2 guard).
func (e *Engine) syncEnabled(ctx *bootctx.Context) bool {
	return ctx.Shared.ECSoftwareSyncEnabled && !ctx.GBB.DisableECSoftwareSync
}

// activeDevices returns e.Devices filtered by the PD-sync GBB disable
// flag (spec.md §4.1 step 2: "PD inclusion gated by ... DISABLE_PD_SOFTWARE_SYNC").
func (e *Engine) activeDevices(ctx *bootctx.Context) []ecdriver.Device {
	if !ctx.GBB.DisablePDSoftwareSync {
		return e.Devices
	}
	out := make([]ecdriver.Device, 0, len(e.Devices))
	for _, d := range e.Devices {
		if d != ecdriver.PD {
			out = append(out, d)
		}
	}
	return out
}

// Phase1 diagnoses what work is needed (spec.md §4.1 Phase 1).
func (e *Engine) Phase1(ctx *bootctx.Context) result.Result {
	if !e.syncEnabled(ctx) {
		return result.OK()
	}

	for _, dev := range e.activeDevices(ctx) {
		if r := e.checkECActive(ctx, dev); !r.IsOK() {
			return r
		}
	}

	if ctx.InRecovery() {
		// Recovery mode: only verify the EC is in RO; no hash checks,
		// no updates (spec.md §4.1 Phase 1 step b, invariant 2).
		return result.OK()
	}

	selRW := ctx.Shared.ActiveRWSelect()
	for _, dev := range e.activeDevices(ctx) {
		if r := e.checkECHash(ctx, dev, selRW); !r.IsOK() {
			return r
		}
	}

	// RO software sync is EC-only (spec.md §4.1 Phase 1 step d).
	if ctx.NV.Get(bootctx.NVTryROSync) != 0 && !ctx.Shared.FWWriteProtectEnabled {
		if r := e.checkECHash(ctx, ecdriver.EC, ecdriver.SelectRO); !r.IsOK() {
			return r
		}
	}

	// RW can't be rewritten from within itself (spec.md §4.1 step 3).
	if ctx.Scratch.AnyRWNeedsUpdate() && ctx.Scratch.AnyInRW() {
		return result.NeedsReboot("rw update needed while ec is running rw")
	}

	return result.OK()
}

// checkECActive queries dev's running image and reconciles it with
// recovery-mode expectations (spec.md §4.1 Phase 1 step a; ports
// check_ec_active()).
func (e *Engine) checkECActive(ctx *bootctx.Context, dev ecdriver.Device) result.Result {
	inRW, err := e.Driver.RunningRW(dev)
	if err == nil {
		ctx.Scratch.SetInRW(dev, inRW)
	}

	if ctx.InRecovery() {
		if err == nil && inRW {
			// EC is definitely in RW; we want RO, so preserve the
			// existing recovery reason and reboot (spec.md §4.1: "this
			// exists to force the EC into a trusted base before
			// recovery completes").
			logger.Debugf("ecsync: want recovery but got EC-RW on %s", dev)
			requestRecovery(ctx.NV, ctx.RecoveryReason)
			return result.NeedsReboot("recovery mode but ec is in rw")
		}
		logger.Debugf("ecsync: in recovery; %s-RO", dev)
		return result.OK()
	}

	if err != nil {
		logger.Debugf("ecsync: RunningRW(%s) failed: %v", dev, err)
		requestRecovery(ctx.NV, bootctx.RecoveryECUnknownImage)
		return result.Fatal(uint32(bootctx.RecoveryECUnknownImage), err)
	}

	return result.OK()
}

// checkECHash compares dev's sel image against its expected digest
// using a constant-time comparison (spec.md §4.1 Phase 1 step c, §9
// "constant-time comparison"; ports check_ec_hash()).
func (e *Engine) checkECHash(ctx *bootctx.Context, dev ecdriver.Device, sel ecdriver.Select) result.Result {
	have, err := e.Driver.HashImage(dev, sel)
	if err != nil {
		requestRecovery(ctx.NV, bootctx.RecoveryECHashFailed)
		return result.Fatal(uint32(bootctx.RecoveryECHashFailed), xerrors.Errorf("hash image %s/%s: %w", dev, sel, err))
	}

	want, err := e.Driver.ExpectedHash(dev, sel)
	if err != nil {
		requestRecovery(ctx.NV, bootctx.RecoveryECExpectedHash)
		return result.Fatal(uint32(bootctx.RecoveryECExpectedHash), xerrors.Errorf("expected hash %s/%s: %w", dev, sel, err))
	}

	if len(have) != len(want) {
		requestRecovery(ctx.NV, bootctx.RecoveryECHashSize)
		return result.Fatal(uint32(bootctx.RecoveryECHashSize), xerrors.Errorf("%s/%s: ec hash is %d bytes, ap expects %d", dev, sel, len(have), len(want)))
	}

	if subtle.ConstantTimeCompare(have, want) != 1 {
		ctx.Scratch.SetNeedsUpdate(dev, sel, true)
	}

	return result.OK()
}

// Phase2 executes pending updates, RW jumps, RO updates, and
// protection for each configured device, in order (spec.md §4.1 Phase 2).
func (e *Engine) Phase2(ctx *bootctx.Context) result.Result {
	if !e.syncEnabled(ctx) {
		return result.OK()
	}
	if ctx.InRecovery() {
		return result.OK()
	}

	for _, dev := range e.activeDevices(ctx) {
		if r := e.syncOneDevice(ctx, dev); !r.IsOK() {
			return r
		}
	}

	return result.OK()
}

// syncOneDevice updates, jumps, RO-syncs, and protects a single
// device (ports sync_one_ec()).
func (e *Engine) syncOneDevice(ctx *bootctx.Context, dev ecdriver.Device) result.Result {
	selRW := ctx.Shared.ActiveRWSelect()

	if ctx.Scratch.NeedsUpdate(dev, selRW) {
		if r := e.updateImage(ctx, dev, selRW, bootctx.RecoveryECUpdate); !r.IsOK() {
			if r.IsFatal() {
				return r
			}
			return result.NeedsReboot("rw update needs reboot")
		}
	}

	if !ctx.Scratch.InRW(dev) {
		logger.Debugf("ecsync: jumping to %s-RW", dev)
		if err := e.Driver.JumpToRW(dev); err != nil {
			if err == ecdriver.ErrRebootToRORequired {
				return result.NeedsReboot("jump to rw needs reboot (stay-in-ro latch)")
			}
			requestRecovery(ctx.NV, bootctx.RecoveryECJumpRW)
			return result.Fatal(uint32(bootctx.RecoveryECJumpRW), xerrors.Errorf("jump to rw %s: %w", dev, err))
		}
	}

	// RO update is EC-only (spec.md §4.1 Phase 2 step 3).
	if dev == ecdriver.EC && ctx.Scratch.NeedsUpdate(dev, ecdriver.SelectRO) {
		if r := e.syncROWithRetry(ctx, dev); !r.IsOK() {
			return r
		}
	}

	if err := e.Driver.Protect(dev, ecdriver.SelectRO); err != nil {
		if err == ecdriver.ErrRebootToRORequired {
			return result.NeedsReboot("protect ro needs reboot")
		}
		requestRecovery(ctx.NV, bootctx.RecoveryECProtect)
		return result.Fatal(uint32(bootctx.RecoveryECProtect), xerrors.Errorf("protect %s/RO: %w", dev, err))
	}
	if err := e.Driver.Protect(dev, selRW); err != nil {
		if err == ecdriver.ErrRebootToRORequired {
			return result.NeedsReboot("protect rw needs reboot")
		}
		requestRecovery(ctx.NV, bootctx.RecoveryECProtect)
		return result.Fatal(uint32(bootctx.RecoveryECProtect), xerrors.Errorf("protect %s/RW: %w", dev, err))
	}

	if err := e.Driver.DisableJump(dev); err != nil {
		requestRecovery(ctx.NV, bootctx.RecoveryECSoftwareSync)
		return result.Fatal(uint32(bootctx.RecoveryECSoftwareSync), xerrors.Errorf("disable jump %s: %w", dev, err))
	}

	return result.OK()
}

// syncROWithRetry implements the bounded RO-update retry policy
// (spec.md §4.1 Phase 2 step 3, §7, §8 invariant 4), using
// gopkg.in/retry.v1's LimitCount strategy for the bounded loop and
// restoring the pre-attempt NV RECOVERY_REQUEST value if a later try
// succeeds after an earlier one polluted it.
func (e *Engine) syncROWithRetry(ctx *bootctx.Context, dev ecdriver.Device) result.Result {
	ctx.NV.Set(bootctx.NVTryROSync, 0)

	savedRecoveryRequest := ctx.NV.Get(bootctx.NVRecoveryRequest)

	succeeded := false
	attempts := 0
	for attempt := retryStrategy().Start(); attempt.Next(nil); {
		attempts++
		r := e.updateImage(ctx, dev, ecdriver.SelectRO, bootctx.RecoveryECUpdate)
		if r.IsOK() {
			succeeded = true
			break
		}
	}

	if !succeeded {
		return result.NeedsReboot("ro update retries exhausted")
	}
	if attempts > 1 {
		// A prior failed attempt may have overwritten RECOVERY_REQUEST;
		// since we ultimately succeeded, restore whatever it held
		// before we started (possibly "no request").
		requestRecovery(ctx.NV, bootctx.RecoveryReason(savedRecoveryRequest))
	}
	return result.OK()
}

// updateImage fetches the expected image for dev/sel and offers it to
// the driver, re-hashing to verify on success (ports update_ec()).
func (e *Engine) updateImage(ctx *bootctx.Context, dev ecdriver.Device, sel ecdriver.Select, onFailure bootctx.RecoveryReason) result.Result {
	logger.Debugf("ecsync: updating %s/%s", dev, sel)

	want, err := e.Driver.ExpectedImage(dev, sel)
	if err != nil {
		requestRecovery(ctx.NV, bootctx.RecoveryECExpectedImage)
		return result.Fatal(uint32(bootctx.RecoveryECExpectedImage), xerrors.Errorf("expected image %s/%s: %w", dev, sel, err))
	}

	if err := e.Driver.UpdateImage(dev, sel, want); err != nil {
		if err == ecdriver.ErrRebootToRORequired {
			return result.NeedsReboot("update image needs reboot")
		}
		requestRecovery(ctx.NV, onFailure)
		return result.Fatal(uint32(onFailure), xerrors.Errorf("update image %s/%s: %w", dev, sel, err))
	}

	ctx.Scratch.SetNeedsUpdate(dev, sel, false)
	if r := e.checkECHash(ctx, dev, sel); !r.IsOK() {
		return result.NeedsReboot("post-update hash check failed")
	}
	if ctx.Scratch.NeedsUpdate(dev, sel) {
		logger.Debugf("ecsync: %s/%s failed to update", dev, sel)
		requestRecovery(ctx.NV, onFailure)
		return result.Fatal(uint32(onFailure), xerrors.Errorf("%s/%s still mismatched after update", dev, sel))
	}

	return result.OK()
}

// Phase3 finalizes software sync: notifies the EC and handles any
// pending battery cutoff request (spec.md §4.1 Phase 3).
func (e *Engine) Phase3(ctx *bootctx.Context) result.Result {
	if err := e.Driver.VbootDone(ctx.InRecovery()); err != nil {
		return result.Fatal(0, xerrors.Errorf("vboot done notification: %w", err))
	}

	if ctx.NV.Get(bootctx.NVBatteryCutoffRequest) != 0 {
		logger.Debugf("ecsync: battery cutoff requested")
		ctx.NV.Set(bootctx.NVBatteryCutoffRequest, 0)
		if err := e.Driver.BatteryCutoff(); err != nil {
			return result.Fatal(0, xerrors.Errorf("battery cutoff: %w", err))
		}
		return result.Shutdown()
	}

	return result.OK()
}

// WillUpdateSlowly reports whether any pending update combined with
// the platform's "slow update" hint should inform UI pacing (ports
// ec_will_update_slowly()).
func (e *Engine) WillUpdateSlowly(ctx *bootctx.Context) bool {
	return ctx.Scratch.AnyUpdatePending() && ctx.Shared.ECSlowUpdate
}
