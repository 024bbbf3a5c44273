// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package input

import (
	"github.com/gvalkov/golang-evdev"
	"golang.org/x/xerrors"
)

// EvdevSource implements Source by reading raw key and switch events
// off a Linux input device node (/dev/input/eventN), standing in for
// the real firmware's direct keyboard controller access.
type EvdevSource struct {
	dev *evdev.InputDevice

	ctrlHeld      bool
	recoveryHeld  bool
	developerHeld bool
	lidClosed     bool
}

// OpenEvdevSource opens the input device at path.
func OpenEvdevSource(path string) (*EvdevSource, error) {
	dev, err := evdev.Open(path)
	if err != nil {
		return nil, xerrors.Errorf("open input device %s: %w", path, err)
	}
	return &EvdevSource{dev: dev}, nil
}

// ReadKey implements Source.
func (s *EvdevSource) ReadKey() (Key, error) {
	k, _, err := s.ReadKeyWithFlags()
	return k, err
}

// ReadKeyWithFlags implements Source. Every event read from the device
// is reported as trusted: it originates from the kernel's own input
// subsystem, not from a USB HID device that could be spoofed over a
// debug link.
func (s *EvdevSource) ReadKeyWithFlags() (Key, Flags, error) {
	for {
		ev, err := s.dev.ReadOne()
		if err != nil {
			return KeyNone, Flags{}, xerrors.Errorf("read input event: %w", err)
		}

		switch ev.Type {
		case evdev.EV_KEY:
			key, ok := s.translateKeyEvent(ev)
			if !ok {
				continue
			}
			return key, Flags{Trusted: true}, nil
		case evdev.EV_SW:
			s.applySwitchEvent(ev)
			continue
		default:
			continue
		}
	}
}

// translateKeyEvent updates modifier state and maps a raw key event to
// this module's Key vocabulary. It returns ok=false for events that
// carry no meaning here (key releases other than modifiers, repeats
// of tracked modifiers, or keys outside the vocabulary).
func (s *EvdevSource) translateKeyEvent(ev *evdev.InputEvent) (Key, bool) {
	pressed := ev.Value == 1

	switch ev.Code {
	case evdev.KEY_LEFTCTRL, evdev.KEY_RIGHTCTRL:
		s.ctrlHeld = ev.Value != 0
		return KeyNone, false
	case evdev.KEY_POWER:
		if pressed {
			return KeyPower, true
		}
		return KeyNone, false
	case evdev.KEY_UP:
		if pressed {
			return KeyArrowUp, true
		}
	case evdev.KEY_DOWN:
		if pressed {
			return KeyArrowDown, true
		}
	case evdev.KEY_VOLUMEUP:
		if pressed {
			return KeyVolUp, true
		}
	case evdev.KEY_VOLUMEDOWN:
		if pressed {
			return KeyVolDown, true
		}
	case evdev.KEY_ENTER, evdev.KEY_KPENTER:
		if pressed {
			return KeyEnter, true
		}
	case evdev.KEY_SPACE:
		if pressed {
			return KeySpace, true
		}
	case evdev.KEY_ESC:
		if pressed {
			return KeyEsc, true
		}
	case evdev.KEY_D:
		if pressed && s.ctrlHeld {
			return KeyCtrlD, true
		}
	case evdev.KEY_L:
		if pressed && s.ctrlHeld {
			return KeyCtrlL, true
		}
	case evdev.KEY_U:
		if pressed && s.ctrlHeld {
			return KeyCtrlU, true
		}
	}
	return KeyNone, false
}

// applySwitchEvent tracks the lid, recovery, and developer switch
// states reported via EV_SW.
func (s *EvdevSource) applySwitchEvent(ev *evdev.InputEvent) {
	held := ev.Value != 0
	switch ev.Code {
	case evdev.SW_LID:
		s.lidClosed = held
	case evdev.SW_RECOVERY:
		s.recoveryHeld = held
	case evdev.SW_DEVELOPER:
		s.developerHeld = held
	}
}

// SwitchesPressed implements Source.
func (s *EvdevSource) SwitchesPressed(mask SwitchMask) (bool, error) {
	if mask&SwitchRecovery != 0 && !s.recoveryHeld {
		return false, nil
	}
	if mask&SwitchDeveloper != 0 && !s.developerHeld {
		return false, nil
	}
	return true, nil
}

// ShutdownRequested implements Source. The power button is never
// reported here: ShutdownPoll always masks ShutdownPowerButton, since
// the power button is repurposed as the menu select key.
func (s *EvdevSource) ShutdownRequested() (ShutdownBit, error) {
	var bits ShutdownBit
	if s.lidClosed {
		bits |= ShutdownLidClosed
	}
	return bits, nil
}

func (s *EvdevSource) Close() error {
	return s.dev.File.Close()
}

var _ Source = (*EvdevSource)(nil)
