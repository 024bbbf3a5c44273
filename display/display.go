// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package display defines the display collaborator contract (spec.md
// §6 "Display") and a terminal-backed implementation used in place of
// the real firmware's framebuffer rasterizer.
package display

// ScreenID names a full-screen layout the UI can request.
type ScreenID int

const (
	ScreenBlank ScreenID = iota
	ScreenDevWarning
	ScreenDevMenu
	ScreenToNorm
	ScreenRecoveryMenu
	ScreenToDev
	ScreenLanguages
	ScreenOSBroken
)

// Display is the display collaborator contract.
type Display interface {
	ShowScreen(id ScreenID, reason uint32) error
	ShowText(x, y int, text string, highlighted bool) error
	ShowDebugInfo(info string) error
	GetDimensions() (cols, rows int, err error)
	DebugLog(msg string)
}
