// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package bootui

import (
	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/firmware"
	"github.com/chromiumos/vboot-sync/fwmp"
)

// devPolicy is the developer-flow entry policy computed once per
// invocation (spec.md §4.2 "Developer flow").
type devPolicy struct {
	AllowUSB       bool
	AllowLegacy    bool
	DefaultBoot    firmware.DefaultBoot
	DisableDevBoot bool
}

func computeDevPolicy(ctx *bootctx.Context, f fwmp.Flags) devPolicy {
	p := devPolicy{
		AllowUSB:    ctx.NV.Get(bootctx.NVDevBootUSB) != 0 || ctx.GBB.ForceDevBootUSB || f.DevEnableUSB,
		AllowLegacy: ctx.NV.Get(bootctx.NVDevBootLegacy) != 0 || ctx.GBB.ForceDevBootLegacy || f.DevEnableLegacy,
	}

	switch firmware.DefaultBoot(ctx.NV.Get(bootctx.NVDevDefaultBoot)) {
	case firmware.DefaultBootUSB:
		p.DefaultBoot = firmware.DefaultBootUSB
	case firmware.DefaultBootLegacy:
		p.DefaultBoot = firmware.DefaultBootLegacy
	default:
		p.DefaultBoot = firmware.DefaultBootDisk
	}

	// DEFAULT_DEV_BOOT_LEGACY overrides the NV default to LEGACY and
	// clears a USB default, matching spec.md §4.2's "(and USB default
	// is cleared by the same flag)".
	if ctx.GBB.DefaultDevBootLegacy {
		p.DefaultBoot = firmware.DefaultBootLegacy
	}

	p.DisableDevBoot = f.DisableBoot && !ctx.GBB.ForceDevSwitchOn

	return p
}
