// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

//go:build legacytrusty

// Old trusty builds only: the upstream seccomp/libseccomp-golang binding
// requires a libseccomp newer than what ships on those images, so this
// build tag switches to the mvo5 fork pinned for that platform.
package main

import (
	seccomp "github.com/mvo5/libseccomp-golang"
	"golang.org/x/xerrors"
)

func installSeccompFilter(allowedSyscalls []string) error {
	filter, err := seccomp.NewFilter(seccomp.ActKill)
	if err != nil {
		return xerrors.Errorf("create seccomp filter: %w", err)
	}
	for _, name := range allowedSyscalls {
		call, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			return xerrors.Errorf("unknown syscall %s: %w", name, err)
		}
		if err := filter.AddRule(call, seccomp.ActAllow); err != nil {
			return xerrors.Errorf("allow syscall %s: %w", name, err)
		}
	}
	if err := filter.Load(); err != nil {
		return xerrors.Errorf("load seccomp filter: %w", err)
	}
	return nil
}
