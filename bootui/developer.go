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
	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/display"
	"github.com/chromiumos/vboot-sync/firmware"
	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/menu"
	"github.com/chromiumos/vboot-sync/result"
)

// RunDeveloperMode drives the developer-mode menu flow (spec.md §4.2
// "Developer flow") to completion, returning a kernel-load success, a
// reboot request, or a shutdown request.
func RunDeveloperMode(ctx *bootctx.Context, collab Collaborators) result.Result {
	fwmpFlags, err := collab.FWMP.Flags()
	if err != nil {
		return result.Fatal(0, err)
	}
	policy := computeDevPolicy(ctx, fwmpFlags)

	if policy.DisableDevBoot {
		return runDisableDevBootScreen(ctx, collab)
	}

	return runDeveloperLoop(ctx, collab, policy)
}

// runDisableDevBootScreen implements spec.md §4.2: "If disable_dev_boot:
// display the to-normal screen with a policy message, run Confirm."
func runDisableDevBootScreen(ctx *bootctx.Context, collab Collaborators) result.Result {
	for {
		if err := collab.Display.ShowScreen(display.ScreenToNorm, uint32(ctx.RecoveryReason)); err != nil {
			return result.Fatal(0, err)
		}

		answer, err := menu.Confirm(collab.Input, collab.Audio, menu.ConfirmFlags{}, ctx.GBB.DisableLidShutdown)
		if err != nil {
			return result.Fatal(0, err)
		}

		switch answer {
		case menu.Yes:
			ctx.NV.Set(bootctx.NVDisableDevRequest, 1)
			if err := ctx.NV.Commit(); err != nil {
				return result.Fatal(0, err)
			}
			if err := collab.Display.ShowScreen(display.ScreenToNorm, 0); err != nil {
				return result.Fatal(0, err)
			}
			collab.Audio.Sleep(5000)
			return result.Reboot("dev boot disabled, returning to normal mode")
		case menu.Shutdown:
			return result.Shutdown()
		}
		// NO: loop and redisplay.
	}
}

// runDeveloperLoop implements the main developer-mode loop, bounded
// by an audio warning context, with shortcut keys honored alongside
// normal menu navigation (spec.md §4.2).
func runDeveloperLoop(ctx *bootctx.Context, collab Collaborators, policy devPolicy) result.Result {
	audioCtx := openAudioContext(collab)
	defer audioCtx.Close()

	st := menu.NewState(menu.DevWarning)
	ctrlDPressed := false

	for audioCtx.Looping() {
		if shutdown, err := menu.ShutdownPoll(collab.Input, ctx.GBB.DisableLidShutdown); err != nil {
			return result.Fatal(0, err)
		} else if shutdown {
			return result.Shutdown()
		}

		if err := redrawDevMenu(collab, st); err != nil {
			return result.Fatal(0, err)
		}

		key, err := collab.Input.ReadKey()
		if err != nil {
			return result.Fatal(0, err)
		}

		switch key {
		case input.KeyCtrlD:
			ctrlDPressed = true
			return fallout(ctx, collab, policy, ctrlDPressed)
		case input.KeyCtrlL:
			tryLegacy(collab, policy.AllowLegacy, ctx.InRecovery())
			continue
		case input.KeyCtrlU:
			if policy.AllowUSB {
				if tryUSB(collab, clearRecoveryRequest(ctx)) {
					return result.OK()
				}
			} else {
				beepTwice(collab.Audio)
			}
			continue
		case input.KeyArrowUp, input.KeyVolUp:
			st.Up()
			continue
		case input.KeyArrowDown, input.KeyVolDown:
			st.Down()
			continue
		case input.KeyEnter, input.KeyPower:
			// fall through to commit handling below
		default:
			continue
		}

		out := st.Commit(policy.DefaultBoot)
		switch out.Kind {
		case menu.OutcomeShutdown:
			return result.Shutdown()
		case menu.OutcomeSwitchedMenu:
			continue
		case menu.OutcomeDispatch:
			switch out.Item {
			case "Legacy":
				tryLegacy(collab, policy.AllowLegacy, ctx.InRecovery())
			case "USB":
				if policy.AllowUSB {
					if tryUSB(collab, clearRecoveryRequest(ctx)) {
						return result.OK()
					}
				} else {
					beepTwice(collab.Audio)
				}
			case "Disk":
				ctrlDPressed = true
				return fallout(ctx, collab, policy, ctrlDPressed)
			case "Network":
				// Network boot is out of scope for this helper
				// (spec.md §1 Non-goals: "bootloader image parsing").
			}
		}
	}

	return fallout(ctx, collab, policy, ctrlDPressed)
}

func redrawDevMenu(collab Collaborators, st *menu.State) error {
	screenFor := map[menu.ID]display.ScreenID{
		menu.DevWarning: display.ScreenDevWarning,
		menu.Dev:        display.ScreenDevMenu,
		menu.ToNorm:     display.ScreenToNorm,
		menu.Languages:  display.ScreenLanguages,
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

func clearRecoveryRequest(ctx *bootctx.Context) func() {
	return func() {
		ctx.NV.Set(bootctx.NVRecoveryRequest, 0)
	}
}

// fallout implements spec.md §4.2 "Fallout", resolving the ambiguity
// in "beeps on failure, returns here" by always falling closed to a
// fixed-disk attempt rather than silently retrying forever: every
// other bounded operation in this module (e.g. the EC RO-update retry)
// fails closed rather than spinning, and an unbounded retry here would
// hang the boot path with no operator escape besides power-off.
func fallout(ctx *bootctx.Context, collab Collaborators, policy devPolicy, ctrlDPressed bool) result.Result {
	switch {
	case policy.DefaultBoot == firmware.DefaultBootLegacy && !ctrlDPressed:
		if tryLegacy(collab, policy.AllowLegacy, ctx.InRecovery()) {
			return result.OK()
		}
	case policy.DefaultBoot == firmware.DefaultBootUSB && !ctrlDPressed && policy.AllowUSB:
		if tryUSB(collab, clearRecoveryRequest(ctx)) {
			return result.OK()
		}
	}

	if tryDisk(collab) {
		return result.OK()
	}
	return result.NoDiskFoundResult()
}
