// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 */

// Package dirs centralizes the filesystem paths the helper and its
// collaborator implementations use, so tests can redirect everything
// under a temporary root with a single call.
package dirs

import "path/filepath"

// GlobalRootDir is prepended to every path this package returns. It
// defaults to "/" and is only ever overridden by SetRootDir, normally
// from tests.
var GlobalRootDir = "/"

// SetRootDir overrides GlobalRootDir. Passing "" resets it to "/".
func SetRootDir(root string) {
	if root == "" {
		root = "/"
	}
	GlobalRootDir = root
}

// NVStoreDB returns the path to the bbolt-backed NV store database.
func NVStoreDB() string {
	return filepath.Join(GlobalRootDir, "var/lib/vboot-sync/nvstore.db")
}

// FWMPPolicyFile returns the path to the YAML FWMP policy fixture.
func FWMPPolicyFile() string {
	return filepath.Join(GlobalRootDir, "etc/vboot-sync/fwmp.yaml")
}

// BoardConfigFile returns the path to the ini-style board defaults file.
func BoardConfigFile() string {
	return filepath.Join(GlobalRootDir, "etc/vboot-sync/board.conf")
}

// RemovableMediaRoots returns the glob roots scanned for removable
// kernel media by the kernelloader collaborator.
func RemovableMediaRoots() []string {
	return []string{
		filepath.Join(GlobalRootDir, "media/removable/**"),
		filepath.Join(GlobalRootDir, "run/removable-media/**"),
	}
}

// FixedMediaRoot returns the glob root scanned for the fixed-disk
// kernel partition by the kernelloader collaborator.
func FixedMediaRoot() string {
	return filepath.Join(GlobalRootDir, "dev/disk/by-partlabel/KERN-**")
}

// LegacyPayloadFile returns the path to the legacy (non-ChromeOS) boot
// payload the kernelloader collaborator hands off to on Ctrl+L /
// legacy fallback.
func LegacyPayloadFile() string {
	return filepath.Join(GlobalRootDir, "boot/legacy/bootloader")
}
