// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package menu

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/chromiumos/vboot-sync/audio"
	"github.com/chromiumos/vboot-sync/input"
)

// pollInterval is the Confirm/ShutdownPoll cadence (spec.md §4.2
// "polls the keyboard and the recovery button at 20 ms cadence").
const pollInterval = 20 * time.Millisecond

// Answer is the outcome of Confirm.
type Answer int

const (
	No Answer = iota
	Yes
	Shutdown
)

// ConfirmFlags configures Confirm's keypress policy (spec.md §4.2).
type ConfirmFlags struct {
	MustTrustKeyboard   bool
	SpaceMeansNo        bool
	RecoverySwitchIsReal bool
}

// ShutdownPoll queries src's shutdown-request bits, masking lid
// closure when disableLidShutdown is set and always masking the power
// button (spec.md §4.2 "ShutdownPoll"; the power button is repurposed
// as select).
func ShutdownPoll(src input.Source, disableLidShutdown bool) (bool, error) {
	bits, err := src.ShutdownRequested()
	if err != nil {
		return false, err
	}
	bits &^= input.ShutdownPowerButton
	if disableLidShutdown {
		bits &^= input.ShutdownLidClosed
	}
	return bits != 0, nil
}

// Confirm blocks, polling src and beeping through dev, until the user
// answers YES, NO, or a shutdown is requested (spec.md §4.2 "Confirm(flags)").
func Confirm(src input.Source, dev audio.Device, flags ConfirmFlags, disableLidShutdown bool) (Answer, error) {
	recoveryWasPressed := false

	limiter := rate.NewLimiter(rate.Every(pollInterval), 1)
	ctx := context.Background()

	for {
		if err := limiter.Wait(ctx); err != nil {
			return No, err
		}

		if shutdown, err := ShutdownPoll(src, disableLidShutdown); err != nil {
			return No, err
		} else if shutdown {
			return Shutdown, nil
		}

		key, keyFlags, err := src.ReadKeyWithFlags()
		if err != nil {
			return No, err
		}

		switch key {
		case input.KeyEnter:
			if flags.MustTrustKeyboard && !keyFlags.Trusted {
				_ = dev.Beep(400, 120)
				continue
			}
			return Yes, nil
		case input.KeySpace:
			if flags.SpaceMeansNo {
				return No, nil
			}
		case input.KeyEsc:
			return No, nil
		}

		if flags.RecoverySwitchIsReal {
			pressed, err := src.SwitchesPressed(input.SwitchRecovery)
			if err != nil {
				return No, err
			}
			if pressed {
				recoveryWasPressed = true
			} else if recoveryWasPressed {
				return Yes, nil
			}
		}
	}
}
