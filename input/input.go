// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package input defines the keyboard/switch/shutdown collaborator
// contract the boot-mode UI polls (spec.md §6 "Input"), plus the key
// and switch vocabulary the UI dispatches on.
package input

// Key codes. ENTER/SPACE/ESC/Ctrl+D/Ctrl+L/Ctrl+U use their real ASCII
// control-code values (spec.md §6); the symbolic keys have no ASCII
// representation and are assigned values outside the ASCII range so
// they can never collide with a character code.
type Key int

const (
	KeyNone Key = 0

	KeyEnter Key = 0x0D
	KeySpace Key = 0x20
	KeyEsc   Key = 0x1B
	KeyCtrlD Key = 0x04
	KeyCtrlL Key = 0x0C
	KeyCtrlU Key = 0x15

	KeyVolUp Key = 0x100 + iota
	KeyVolDown
	KeyArrowUp
	KeyArrowDown
	KeyPower
)

// SwitchMask bits for SwitchesPressed.
type SwitchMask uint32

const (
	SwitchRecovery SwitchMask = 1 << iota
	SwitchDeveloper
)

// ShutdownBit bits for ShutdownRequested.
type ShutdownBit uint32

const (
	ShutdownLidClosed ShutdownBit = 1 << iota
	ShutdownPowerButton
)

// Flags carried alongside a key event (spec.md §4.2 Confirm: "TRUSTED_KEYBOARD").
type Flags struct {
	Trusted bool
}

// Source is the keyboard/switch/power collaborator contract (spec.md
// §6 "Input"). All methods may block briefly and are polled, never
// pushed.
type Source interface {
	// ReadKey returns the next pending key, or KeyNone if none is pending.
	ReadKey() (Key, error)
	// ReadKeyWithFlags is like ReadKey but also reports the event's flags.
	ReadKeyWithFlags() (Key, Flags, error)
	// SwitchesPressed reports whether all bits in mask are currently asserted.
	SwitchesPressed(mask SwitchMask) (bool, error)
	// ShutdownRequested returns the current shutdown-request bitset.
	ShutdownRequested() (ShutdownBit, error)
}
