// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package fwmp defines the firmware management parameters policy-blob
// collaborator contract (spec.md §6 "Policy blob (FWMP)") and a
// YAML-backed implementation used for fixtures and local testing, in
// place of the real TPM-space-backed blob.
package fwmp

import (
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// Flags is the policy bit vector the boot-mode UI consults (spec.md
// §4.2 Developer flow: "FWMP DEV_ENABLE_USB", "DEV_ENABLE_LEGACY",
// and the disable-boot policy).
type Flags struct {
	DevEnableUSB    bool
	DevEnableLegacy bool
	DisableBoot     bool
}

// Source is the FWMP collaborator contract.
type Source interface {
	Flags() (Flags, error)
}

// yamlDoc is the on-disk shape of a YAMLPolicy fixture file.
type yamlDoc struct {
	DevEnableUSB    bool `yaml:"dev_enable_usb"`
	DevEnableLegacy bool `yaml:"dev_enable_legacy"`
	DisableBoot     bool `yaml:"disable_boot"`
}

// YAMLPolicy reads FWMP flags from a YAML file, standing in for the
// real implementation's TPM NV space read.
type YAMLPolicy struct {
	path string
}

// NewYAMLPolicy returns a Source backed by the YAML file at path. A
// missing file is treated as "no policy set" (all flags false),
// matching an un-provisioned FWMP space.
func NewYAMLPolicy(path string) *YAMLPolicy {
	return &YAMLPolicy{path: path}
}

// Flags implements Source.
func (p *YAMLPolicy) Flags() (Flags, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Flags{}, nil
		}
		return Flags{}, xerrors.Errorf("read fwmp policy %s: %w", p.path, err)
	}
	var doc yamlDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Flags{}, xerrors.Errorf("parse fwmp policy %s: %w", p.path, err)
	}
	return Flags{
		DevEnableUSB:    doc.DevEnableUSB,
		DevEnableLegacy: doc.DevEnableLegacy,
		DisableBoot:     doc.DisableBoot,
	}, nil
}

var _ Source = (*YAMLPolicy)(nil)
