// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package menu implements the fixed menu model shared by the
// developer-mode and recovery-mode flows (spec.md §4.2 "Menu model"):
// the six menus, their item lists, cursor navigation, and the item
// commit transition table.
package menu

import "github.com/chromiumos/vboot-sync/firmware"

// ID names one of the six menus.
type ID int

const (
	DevWarning ID = iota
	Dev
	ToNorm
	Recovery
	ToDev
	Languages
)

// items lists each menu's entries in order, exactly as spec.md §4.2's
// table gives them.
var items = map[ID][]string{
	DevWarning: {"Options", "Debug Info", "Enable Verified", "Power Off", "Language"},
	Dev:        {"Network", "Legacy", "USB", "Disk", "Cancel", "Power Off", "Language"},
	ToNorm:     {"Confirm", "Cancel", "Power Off", "Language"},
	Recovery:   {"To Dev", "Debug Info", "Power Off", "Language"},
	ToDev:      {"Confirm", "Cancel", "Power Off", "Language"},
	Languages:  {"US English"},
}

// Items returns id's item labels in display order.
func Items(id ID) []string {
	return items[id]
}

// indexOf returns the ordinal of label within id's item list, or -1.
func indexOf(id ID, label string) int {
	for i, it := range items[id] {
		if it == label {
			return i
		}
	}
	return -1
}

// State is the menu cursor and history the boot-mode UI owns for the
// lifetime of one flow invocation (spec.md §3 "Menu state").
type State struct {
	Current  ID
	Previous ID
	Index    int
	Selected bool
}

// NewState starts a flow on the given menu at index 0.
func NewState(start ID) *State {
	return &State{Current: start}
}

// Up moves the cursor up, clamped at 0 (spec.md §4.2 "Navigation...
// clamped to [0, size-1]").
func (s *State) Up() {
	if s.Index > 0 {
		s.Index--
	}
}

// Down moves the cursor down, clamped at the last item.
func (s *State) Down() {
	if s.Index < len(items[s.Current])-1 {
		s.Index++
	}
}

// CurrentItem returns the label of the currently selected item.
func (s *State) CurrentItem() string {
	list := items[s.Current]
	if s.Index < 0 || s.Index >= len(list) {
		return ""
	}
	return list[s.Index]
}

// OutcomeKind classifies what Commit did.
type OutcomeKind int

const (
	// OutcomeNone means the menu did not change and nothing needs
	// further handling (used for unresolvable commits, e.g. an
	// out-of-range index).
	OutcomeNone OutcomeKind = iota
	// OutcomeSwitchedMenu means State now reflects a new current menu.
	OutcomeSwitchedMenu
	// OutcomeShutdown means the "Power Off" item was committed.
	OutcomeShutdown
	// OutcomeDispatch means an item with flow-specific behavior (not a
	// pure menu transition) was committed; the caller must interpret
	// Item itself (spec.md §4.2: "Selecting items dispatches
	// identically to the Ctrl-shortcut paths where applicable").
	OutcomeDispatch
)

// Outcome is the result of committing the currently selected item.
type Outcome struct {
	Kind OutcomeKind
	Item string
}

// Commit runs the transition table for the currently selected item
// (spec.md §4.2 "Transition table"). defaultBoot is only consulted
// when committing DevWarning/Options.
func (s *State) Commit(defaultBoot firmware.DefaultBoot) Outcome {
	item := s.CurrentItem()
	s.Selected = true

	if item == "Power Off" {
		return Outcome{Kind: OutcomeShutdown, Item: item}
	}
	if item == "Language" {
		s.switchTo(Languages, 0)
		return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
	}

	switch s.Current {
	case DevWarning:
		switch item {
		case "Options":
			s.switchTo(Dev, devDefaultIndex(defaultBoot))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		case "Enable Verified":
			s.switchTo(ToNorm, indexOf(ToNorm, "Power Off"))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		case "Debug Info":
			return Outcome{Kind: OutcomeDispatch, Item: item}
		}
	case Dev:
		switch item {
		case "Network", "Legacy", "USB", "Disk":
			return Outcome{Kind: OutcomeDispatch, Item: item}
		case "Cancel":
			s.switchTo(DevWarning, indexOf(DevWarning, "Power Off"))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		}
	case ToNorm:
		switch item {
		case "Confirm":
			return Outcome{Kind: OutcomeDispatch, Item: item}
		case "Cancel":
			s.switchTo(DevWarning, indexOf(DevWarning, "Power Off"))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		}
	case Recovery:
		switch item {
		case "To Dev":
			s.switchTo(ToDev, indexOf(ToDev, "Power Off"))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		case "Debug Info":
			return Outcome{Kind: OutcomeDispatch, Item: item}
		}
	case ToDev:
		switch item {
		case "Confirm":
			return Outcome{Kind: OutcomeDispatch, Item: item}
		case "Cancel":
			s.switchTo(Recovery, indexOf(Recovery, "Power Off"))
			return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
		}
	case Languages:
		// Any item returns to previous_menu at index 0 (spec.md §4.2:
		// "LANGUAGES/any -> return to previous_menu at index 0"). Go's
		// switch does not fall through, so there is no ambiguity
		// between this rule and the per-menu cases above: only one
		// case body ever executes.
		s.switchTo(s.Previous, 0)
		return Outcome{Kind: OutcomeSwitchedMenu, Item: item}
	}

	return Outcome{Kind: OutcomeNone, Item: item}
}

func (s *State) switchTo(id ID, index int) {
	s.Previous = s.Current
	s.Current = id
	s.Index = index
	s.Selected = false
}

func devDefaultIndex(defaultBoot firmware.DefaultBoot) int {
	switch defaultBoot {
	case firmware.DefaultBootUSB:
		return indexOf(Dev, "USB")
	case firmware.DefaultBootLegacy:
		return indexOf(Dev, "Legacy")
	default:
		return indexOf(Dev, "Disk")
	}
}
