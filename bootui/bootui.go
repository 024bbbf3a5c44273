// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package bootui implements the two Boot-mode UI flows (spec.md
// §4.2): the developer-mode menu and the recovery-mode menu. Both
// drive the shared menu state machine and Confirm primitive from
// package menu, and both end by returning a result.Result: a
// kernel-load success, a reboot request, or a shutdown request.
package bootui

import (
	"github.com/chromiumos/vboot-sync/audio"
	"github.com/chromiumos/vboot-sync/display"
	"github.com/chromiumos/vboot-sync/ecdriver"
	"github.com/chromiumos/vboot-sync/fwmp"
	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/kernelloader"
	"github.com/chromiumos/vboot-sync/rollback"
)

// Collaborators bundles every external dependency a flow needs
// (spec.md §6). None of these are optional; callers wire in real or
// fake implementations depending on context (production vs. test).
type Collaborators struct {
	Display      display.Display
	Input        input.Source
	Audio        audio.Device
	AudioPattern audio.Pattern
	Loader       kernelloader.Loader
	Rollback     rollback.Collaborator
	FWMP         fwmp.Source
	// EC is consulted only for its TrustEC() precondition when
	// enabling developer mode from the recovery menu; the EC Sync
	// Engine owns the rest of this interface.
	EC ecdriver.Driver
}

func openAudioContext(collab Collaborators) *audio.Context {
	return audio.Open(collab.Audio, collab.AudioPattern)
}

func beepTwice(dev audio.Device) {
	dev.Beep(400, 120)
	dev.Sleep(120)
	dev.Beep(400, 120)
}

// tryLegacy implements the shared "Try-legacy" procedure (spec.md
// §4.2): if not allowed, beep twice; else lock kernel rollback and
// invoke the legacy payload, beeping if it returns (a successful
// legacy payload never returns control to this process).
func tryLegacy(collab Collaborators, allowLegacy, recovery bool) bool {
	if !allowLegacy {
		beepTwice(collab.Audio)
		return false
	}
	if err := collab.Rollback.RollbackKernelLock(recovery); err != nil {
		collab.Audio.Beep(400, 120)
		return false
	}
	if err := collab.Loader.TryLegacy(); err != nil {
		collab.Audio.Beep(400, 120)
		return false
	}
	return true
}

// tryUSB implements the shared "Try-USB" procedure (spec.md §4.2): on
// failure, beep once (250 Hz, 200 ms) and clear NV RECOVERY_REQUEST so
// a subsequent power-off does not relatch recovery.
func tryUSB(collab Collaborators, clearRecoveryRequest func()) bool {
	outcome, err := collab.Loader.TryLoadKernel(kernelloader.MediaRemovable)
	if err != nil || outcome != kernelloader.OutcomeSuccess {
		collab.Audio.Beep(250, 200)
		clearRecoveryRequest()
		return false
	}
	return true
}

// tryDisk attempts to load a kernel from fixed media.
func tryDisk(collab Collaborators) bool {
	outcome, err := collab.Loader.TryLoadKernel(kernelloader.MediaFixed)
	return err == nil && outcome == kernelloader.OutcomeSuccess
}
