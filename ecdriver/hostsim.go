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
	"sync"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/xerrors"
)

type slotKey struct {
	dev Device
	sel Select
}

// HostSimDriver is an in-memory Driver for boards with no real EC
// attached (dev boards, CI): RO/RW images and their expected digests
// are held entirely in memory and hashed with blake2b rather than
// asking real hardware, mirroring the image vocabulary (AP/EC/PD,
// RO/RW) a real provisioning tool works with.
type HostSimDriver struct {
	mu sync.Mutex

	images   map[slotKey][]byte
	expected map[slotKey][]byte
	runningRW map[Device]bool
	jumpLocked map[Device]bool
}

// NewHostSimDriver returns a HostSimDriver with every configured
// device starting in RO, jump unlocked.
func NewHostSimDriver() *HostSimDriver {
	return &HostSimDriver{
		images:     make(map[slotKey][]byte),
		expected:   make(map[slotKey][]byte),
		runningRW:  make(map[Device]bool),
		jumpLocked: make(map[Device]bool),
	}
}

// SetImage seeds the image currently resident in dev's sel slot.
func (d *HostSimDriver) SetImage(dev Device, sel Select, image []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.images[slotKey{dev, sel}] = image
}

// SetExpectedImage seeds the image the AP firmware expects for dev/sel,
// independently of what is currently resident (so tests can force a
// hash mismatch without mutating the resident image directly).
func (d *HostSimDriver) SetExpectedImage(dev Device, sel Select, image []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expected[slotKey{dev, sel}] = image
}

func (d *HostSimDriver) RunningRW(dev Device) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.runningRW[dev], nil
}

func (d *HostSimDriver) HashImage(dev Device, sel Select) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	sum := blake2b.Sum256(d.images[slotKey{dev, sel}])
	return sum[:], nil
}

func (d *HostSimDriver) ExpectedHash(dev Device, sel Select) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	image, ok := d.expected[slotKey{dev, sel}]
	if !ok {
		image = d.images[slotKey{dev, sel}]
	}
	sum := blake2b.Sum256(image)
	return sum[:], nil
}

func (d *HostSimDriver) ExpectedImage(dev Device, sel Select) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if image, ok := d.expected[slotKey{dev, sel}]; ok {
		return image, nil
	}
	return d.images[slotKey{dev, sel}], nil
}

func (d *HostSimDriver) UpdateImage(dev Device, sel Select, image []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.jumpLocked[dev] {
		return xerrors.Errorf("update %s/%s: jump disabled, device must reboot first", dev, sel)
	}
	d.images[slotKey{dev, sel}] = image
	return nil
}

func (d *HostSimDriver) JumpToRW(dev Device) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.jumpLocked[dev] {
		return ErrRebootToRORequired
	}
	d.runningRW[dev] = true
	return nil
}

func (d *HostSimDriver) DisableJump(dev Device) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.jumpLocked[dev] = true
	return nil
}

func (d *HostSimDriver) Protect(dev Device, sel Select) error {
	return nil
}

func (d *HostSimDriver) VbootDone(inRecovery bool) error {
	return nil
}

func (d *HostSimDriver) BatteryCutoff() error {
	return nil
}

// TrustEC reports the EC trusted as long as it has not jumped to RW.
func (d *HostSimDriver) TrustEC() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.runningRW[EC], nil
}

var _ Driver = (*HostSimDriver)(nil)
