// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package kernelloader

import (
	"os"
	"sort"
	"syscall"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/xerrors"

	"github.com/chromiumos/vboot-sync/dirs"
)

// DiskScanner implements Loader by globbing for kernel partitions
// under the configured fixed or removable media roots and loading the
// first match, in deterministic (lexical) order, that Load accepts; a
// match Load rejects is skipped.
type DiskScanner struct {
	// Load is called with the discovered kernel partition path; it
	// performs the actual signature/manifest verification, which is
	// out of scope for this module (spec.md §1 Non-goals: "kernel
	// verification").
	Load func(partition string) error

	// Exec replaces the current process image with the legacy payload
	// binary found by TryLegacy, mirroring the original's VbExLegacy()
	// "will not return if successful" contract. Defaults to
	// syscall.Exec; overridable in tests, which can never let it
	// actually succeed without replacing the test binary itself.
	Exec func(argv0 string, argv []string, envv []string) error
}

// TryLoadKernel implements Loader.
func (d *DiskScanner) TryLoadKernel(media Media) (Outcome, error) {
	patterns := rootsFor(media)

	var matches []string
	for _, pattern := range patterns {
		found, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return OutcomeInvalid, xerrors.Errorf("scan %s: %w", pattern, err)
		}
		matches = append(matches, found...)
	}
	sort.Strings(matches)

	for _, partition := range matches {
		info, err := os.Stat(partition)
		if err != nil || info.IsDir() {
			continue
		}
		if d.Load == nil {
			return OutcomeSuccess, nil
		}
		if err := d.Load(partition); err != nil {
			continue
		}
		return OutcomeSuccess, nil
	}

	return OutcomeNotFound, nil
}

// TryLegacy implements Loader by exec'ing the legacy payload binary,
// distinct from loading a ChromeOS kernel from fixed media: a
// successful handoff replaces this process and never returns.
func (d *DiskScanner) TryLegacy() error {
	payload := dirs.LegacyPayloadFile()
	if _, err := os.Stat(payload); err != nil {
		return xerrors.Errorf("legacy payload: %w", err)
	}

	exec := d.Exec
	if exec == nil {
		exec = syscall.Exec
	}
	return exec(payload, []string{payload}, os.Environ())
}

func rootsFor(media Media) []string {
	if media == MediaRemovable {
		return dirs.RemovableMediaRoots()
	}
	return []string{dirs.FixedMediaRoot()}
}

var _ Loader = (*DiskScanner)(nil)
