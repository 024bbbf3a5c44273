// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package bootui

import (
	"time"

	"github.com/juju/ratelimit"

	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/display"
	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/kernelloader"
	"github.com/chromiumos/vboot-sync/menu"
	"github.com/chromiumos/vboot-sync/result"
)

// diskScanInterval is the manual-recovery disk-scan cadence (spec.md
// §4.2 "Manual recovery mode": "1000 ms disk-scan cadence interleaved
// with 20 ms keyboard polls").
const diskScanInterval = 1000 * time.Millisecond

// keyPollInterval and keyPollsPerDiskScan port the original's
// REC_KEY_DELAY/REC_DISK_DELAY nested loop: between disk rescans, the
// keyboard and shutdown state are polled every 20 ms rather than once
// per second.
const keyPollInterval = 20 * time.Millisecond
const keyPollsPerDiskScan = diskScanInterval / keyPollInterval

// RunRecoveryMode drives the recovery-mode flow (spec.md §4.2
// "Recovery flow"), choosing between the automatic/broken sub-mode and
// the manual sub-mode based on the dev and recovery switches.
func RunRecoveryMode(ctx *bootctx.Context, collab Collaborators) result.Result {
	devSwitch := ctx.Shared.BootDevSwitchOn
	recSwitch := ctx.Shared.BootRecSwitchOn

	if !devSwitch && !recSwitch {
		return runAutomaticBrokenRecovery(ctx, collab)
	}
	return runManualRecovery(ctx, collab)
}

// runAutomaticBrokenRecovery implements spec.md §4.2 "Automatic /
// broken mode": persist the recovery reason, commit immediately
// (defending against loss on a three-finger-salute reboot), show the
// broken screen, and poll only for keyboard/shutdown — no kernel load
// attempts.
func runAutomaticBrokenRecovery(ctx *bootctx.Context, collab Collaborators) result.Result {
	ctx.NV.Set(bootctx.NVRecoverySubcode, uint32(ctx.RecoveryReason))
	if err := ctx.NV.Commit(); err != nil {
		return result.Fatal(0, err)
	}

	if err := collab.Display.ShowScreen(display.ScreenOSBroken, uint32(ctx.RecoveryReason)); err != nil {
		return result.Fatal(0, err)
	}

	for {
		if shutdown, err := menu.ShutdownPoll(collab.Input, ctx.GBB.DisableLidShutdown); err != nil {
			return result.Fatal(0, err)
		} else if shutdown {
			return result.Shutdown()
		}

		if _, err := collab.Input.ReadKey(); err != nil {
			return result.Fatal(0, err)
		}
	}
}

// runManualRecovery implements spec.md §4.2 "Manual recovery mode".
func runManualRecovery(ctx *bootctx.Context, collab Collaborators) result.Result {
	st := menu.NewState(menu.Recovery)
	diskBucket := ratelimit.NewBucket(diskScanInterval, 1)
	showingDebugInfo := false

	for {
		outcome, err := collab.Loader.TryLoadKernel(kernelloader.MediaRemovable)
		if err != nil {
			return result.Fatal(0, err)
		}
		if outcome == kernelloader.OutcomeSuccess {
			return result.OK()
		}

		ctx.NV.Set(bootctx.NVRecoveryRequest, 0)

		if !(st.Current == menu.Recovery && showingDebugInfo) {
			if err := redrawRecoveryMenu(collab, st); err != nil {
				return result.Fatal(0, err)
			}
		}

		if r, done := waitAndPollKeyboard(ctx, collab, st, &showingDebugInfo, diskBucket.Take(1)); done {
			return r
		}
	}
}

// waitAndPollKeyboard spends wait (the delay until the next disk
// rescan is due) polling the keyboard and shutdown state every
// keyPollInterval instead of sleeping through it, mirroring the
// original's nested REC_DISK_DELAY/REC_KEY_DELAY loop. The very first
// disk scan has no wait (the rate-limit bucket starts full), so at
// least one poll always runs before the next scan.
func waitAndPollKeyboard(ctx *bootctx.Context, collab Collaborators, st *menu.State, showingDebugInfo *bool, wait time.Duration) (result.Result, bool) {
	polls := int(wait / keyPollInterval)
	if polls < 1 {
		polls = 1
	}
	if polls > int(keyPollsPerDiskScan) {
		polls = int(keyPollsPerDiskScan)
	}

	for i := 0; i < polls; i++ {
		if r, done := pollRecoveryKeyboard(ctx, collab, st, showingDebugInfo); done {
			return r, true
		}
		if shutdown, err := menu.ShutdownPoll(collab.Input, ctx.GBB.DisableLidShutdown); err != nil {
			return result.Fatal(0, err), true
		} else if shutdown {
			return result.Shutdown(), true
		}
		if i < polls-1 {
			<-time.After(keyPollInterval)
		}
	}
	return result.Result{}, false
}

func redrawRecoveryMenu(collab Collaborators, st *menu.State) error {
	screenFor := map[menu.ID]display.ScreenID{
		menu.Recovery:  display.ScreenRecoveryMenu,
		menu.ToDev:     display.ScreenToDev,
		menu.Languages: display.ScreenLanguages,
	}
	if err := collab.Display.ShowScreen(screenFor[st.Current], 0); err != nil {
		return err
	}
	for i, label := range menu.Items(st.Current) {
		if err := collab.Display.ShowText(2, i+2, label, i == st.Index); err != nil {
			return err
		}
	}
	return nil
}

// pollRecoveryKeyboard reads one keyboard event and applies step 4 of
// spec.md §4.2 "Manual recovery mode". It returns (result, true) when
// the flow should return immediately.
func pollRecoveryKeyboard(ctx *bootctx.Context, collab Collaborators, st *menu.State, showingDebugInfo *bool) (result.Result, bool) {
	key, err := collab.Input.ReadKey()
	if err != nil {
		return result.Fatal(0, err), true
	}

	switch key {
	case input.KeyArrowUp, input.KeyVolUp:
		st.Up()
		return result.Result{}, false
	case input.KeyArrowDown, input.KeyVolDown:
		st.Down()
		return result.Result{}, false
	case input.KeyEnter, input.KeyPower:
		// fall through to commit handling below
	default:
		return result.Result{}, false
	}

	item := st.CurrentItem()
	onToDev := st.Current == menu.ToDev
	out := st.Commit(0)

	switch out.Kind {
	case menu.OutcomeShutdown:
		return result.Shutdown(), true
	case menu.OutcomeDispatch:
		switch {
		case item == "Debug Info":
			*showingDebugInfo = true
			collab.Display.ShowDebugInfo("recovery reason, retry counts, flags")
		case onToDev && item == "Confirm":
			return enableDeveloperModeFromRecovery(ctx, collab)
		}
		return result.Result{}, false
	case menu.OutcomeSwitchedMenu:
		*showingDebugInfo = false
	}

	return result.Result{}, false
}

// enableDeveloperModeFromRecovery implements spec.md §4.2 step 4's
// TO_DEV/Confirm special case: HONOR_VIRT_DEV_SWITCH set, dev switch
// off, recovery switch on, and the EC trusted, all four ANDed
// together (ports the VbExTrustEC(0) check alongside the switch
// checks).
func enableDeveloperModeFromRecovery(ctx *bootctx.Context, collab Collaborators) (result.Result, bool) {
	if !ctx.Shared.HonorVirtDevSwitch || ctx.Shared.BootDevSwitchOn || !ctx.Shared.BootRecSwitchOn {
		return result.Result{}, false
	}

	trusted, err := collab.EC.TrustEC()
	if err != nil {
		return result.Fatal(0, err), true
	}
	if !trusted {
		return result.Result{}, false
	}

	if !ctx.Shared.BootRecSwitchVirtual {
		pressed, err := collab.Input.SwitchesPressed(input.SwitchRecovery)
		if err != nil {
			return result.Fatal(0, err), true
		}
		if pressed {
			collab.Audio.Beep(400, 120)
			return result.Result{}, false
		}
	}

	if err := collab.Rollback.SetVirtualDevMode(true); err != nil {
		return result.Result{Code: result.TPMSetBootModeState, Err: err}, true
	}

	ctx.NV.Set(bootctx.NVDevBootUSB, 1)
	return result.Reboot("virtual dev mode enabled from recovery"), true
}
