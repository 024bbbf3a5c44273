// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package ecdriver

import (
	"bytes"
	"os/exec"
	"strconv"

	"golang.org/x/xerrors"
)

// ToolDriver implements Driver by shelling out to the ectool userspace
// utility, the same program FAFT test harnesses and flashing scripts
// use to talk to a running EC. It only covers the subset of Driver
// operations ectool itself exposes a stable command for; the image
// hashing and update path (HashImage/ExpectedHash/ExpectedImage/
// UpdateImage/RunningRW) talks to the EC's
// firmware-update host commands directly over /dev/cros_ec, which is
// out of scope for a CLI wrapper — a real deployment supplies its own
// Driver for that path and can embed ToolDriver for the rest.
type ToolDriver struct {
	// ECToolPath is the ectool binary to invoke; defaults to "ectool"
	// on $PATH when empty.
	ECToolPath string
}

func (d *ToolDriver) binary() string {
	if d.ECToolPath != "" {
		return d.ECToolPath
	}
	return "ectool"
}

func (d *ToolDriver) run(args ...string) error {
	cmd := exec.Command(d.binary(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return xerrors.Errorf("ectool %v: %w (output: %s)", args, err, out)
	}
	return nil
}

func deviceArgs(dev Device) []string {
	if dev == PD {
		return []string{"--dev", strconv.Itoa(int(PD))}
	}
	return nil
}

// Protect implements Driver via "ectool flashprotect".
func (d *ToolDriver) Protect(dev Device, sel Select) error {
	args := append(deviceArgs(dev), "flashprotect", "enable")
	return d.run(args...)
}

// BatteryCutoff implements Driver via "ectool batterycutoff".
func (d *ToolDriver) BatteryCutoff() error {
	return d.run("batterycutoff")
}

var errNotSupportedByToolDriver = xerrors.New("ectool does not expose this operation; a real deployment must inject a driver that talks the EC firmware-update host commands directly")

// RunningRW implements Driver. Not supported by ToolDriver; see the
// type doc comment.
func (d *ToolDriver) RunningRW(dev Device) (bool, error) { return false, errNotSupportedByToolDriver }

// HashImage implements Driver. Not supported by ToolDriver.
func (d *ToolDriver) HashImage(dev Device, sel Select) ([]byte, error) {
	return nil, errNotSupportedByToolDriver
}

// ExpectedHash implements Driver. Not supported by ToolDriver.
func (d *ToolDriver) ExpectedHash(dev Device, sel Select) ([]byte, error) {
	return nil, errNotSupportedByToolDriver
}

// ExpectedImage implements Driver. Not supported by ToolDriver.
func (d *ToolDriver) ExpectedImage(dev Device, sel Select) ([]byte, error) {
	return nil, errNotSupportedByToolDriver
}

// UpdateImage implements Driver. Not supported by ToolDriver.
func (d *ToolDriver) UpdateImage(dev Device, sel Select, image []byte) error {
	return errNotSupportedByToolDriver
}

// JumpToRW implements Driver via "ectool reboot_ec RW at-shutdown".
func (d *ToolDriver) JumpToRW(dev Device) error {
	args := append(deviceArgs(dev), "reboot_ec", "RW", "at-shutdown")
	return d.run(args...)
}

// DisableJump implements Driver via "ectool reboot_ec cancel".
func (d *ToolDriver) DisableJump(dev Device) error {
	args := append(deviceArgs(dev), "reboot_ec", "cancel")
	return d.run(args...)
}

// VbootDone implements Driver as a no-op: ToolDriver runs no ectool
// command for it and returns nil rather than an error, since failing
// to notify is not itself fatal to this boot.
func (d *ToolDriver) VbootDone(inRecovery bool) error { return nil }

// TrustEC implements Driver via "ectool flashprotect": the EC is
// trusted when its status does not report currently running RW, i.e.
// this boot entered from RO.
func (d *ToolDriver) TrustEC() (bool, error) {
	out, err := exec.Command(d.binary(), "flashprotect").CombinedOutput()
	if err != nil {
		return false, xerrors.Errorf("ectool flashprotect: %w (output: %s)", err, out)
	}
	return !bytes.Contains(out, []byte("EC_IN_RW")), nil
}

var _ Driver = (*ToolDriver)(nil)
