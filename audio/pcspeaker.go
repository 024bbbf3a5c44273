// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package audio

import (
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// kiocsound is the console ioctl request number for driving the PC
// speaker directly (include/uapi/linux/kd.h KIOCSOUND).
const kiocsound = 0x4B2F

// PCSpeakerBeeper drives the PC speaker through the console tty,
// matching the real firmware's direct-hardware beep collaborator
// (spec.md §6 "Audio: beep(hz, ms), sleep(ms)").
type PCSpeakerBeeper struct {
	console *os.File
}

// OpenPCSpeaker opens the console device used for KIOCSOUND ioctls.
func OpenPCSpeaker() (*PCSpeakerBeeper, error) {
	f, err := os.OpenFile("/dev/console", os.O_WRONLY, 0)
	if err != nil {
		return nil, err
	}
	return &PCSpeakerBeeper{console: f}, nil
}

// Beep sounds the speaker at hz for ms milliseconds, then silences it.
func (p *PCSpeakerBeeper) Beep(hz, ms int) error {
	var divisor uintptr
	if hz > 0 {
		divisor = uintptr(1193180 / hz)
	}
	if err := unix.IoctlSetInt(int(p.console.Fd()), kiocsound, int(divisor)); err != nil {
		return err
	}
	time.Sleep(time.Duration(ms) * time.Millisecond)
	return unix.IoctlSetInt(int(p.console.Fd()), kiocsound, 0)
}

// Sleep pauses for ms milliseconds without sounding the speaker.
func (p *PCSpeakerBeeper) Sleep(ms int) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}

// Close releases the console handle.
func (p *PCSpeakerBeeper) Close() error {
	return p.console.Close()
}

var _ Device = (*PCSpeakerBeeper)(nil)
