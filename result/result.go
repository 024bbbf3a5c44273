// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package result defines the tagged outcome type shared by the EC Sync
// Engine and the Boot-mode UI, replacing the original C code's
// overload of VBERROR_EC_REBOOT_TO_RO_REQUIRED as both a transient
// signal and a fatal error (Design Notes §9).
package result

import "golang.org/x/xerrors"

// Code enumerates the exit codes a caller of this module's top-level
// entry points reacts to (spec.md §6 "Exit codes").
type Code int

const (
	// Success means the caller should proceed (to kernel load, or past
	// software sync into the rest of verified boot).
	Success Code = iota
	// RebootRequired means the caller should perform a normal reboot.
	RebootRequired
	// RebootToRORequired means the caller must reboot so the EC (or PD)
	// re-enters its RO image before anything else can proceed.
	RebootToRORequired
	// ShutdownRequested means the caller should power off.
	ShutdownRequested
	// TPMSetBootModeState means a TPM boot-mode state update failed.
	TPMSetBootModeState
	// NoDiskFound means no kernel could be located on any configured
	// media.
	NoDiskFound
)

func (c Code) String() string {
	switch c {
	case Success:
		return "SUCCESS"
	case RebootRequired:
		return "REBOOT_REQUIRED"
	case RebootToRORequired:
		return "REBOOT_TO_RO_REQUIRED"
	case ShutdownRequested:
		return "SHUTDOWN_REQUESTED"
	case TPMSetBootModeState:
		return "TPM_SET_BOOT_MODE_STATE"
	case NoDiskFound:
		return "NO_DISK_FOUND"
	default:
		return "UNKNOWN"
	}
}

// Result is the tagged outcome of a phase or UI flow step. Exactly one
// of the following holds:
//   - Code == Success and Err == nil: everything is fine.
//   - Code == RebootToRORequired and RecordedReason == 0: a transient
//     signal ("recoverable-by-reboot" per spec.md §7); no recovery
//     reason has been written to NV.
//   - Code == RebootToRORequired (or another non-success code) and
//     RecordedReason != 0: fatal-to-this-boot; a recovery reason has
//     already been written to NV by the code that produced this Result.
//   - Code == ShutdownRequested: an explicit shutdown request.
//   - Code == RebootRequired, TPMSetBootModeState or NoDiskFound and
//     RecordedReason == 0: a UI-flow outcome (normal reboot, failed TPM
//     boot-mode update, no kernel found); no recovery reason written.
type Result struct {
	Code           Code
	RecordedReason uint32
	Err            error
}

// OK is the zero-error, no-work-needed outcome.
func OK() Result { return Result{Code: Success} }

// NeedsReboot reports a transient, non-fatal need to reboot so the EC
// (or PD) can re-enter its RO image — the caller should simply retry
// phase 1 after rebooting. why is used only for debug logging, never
// recorded to NV.
func NeedsReboot(why string) Result {
	return Result{Code: RebootToRORequired, Err: xerrors.New(why)}
}

// Reboot reports a normal reboot request, distinct from NeedsReboot's
// EC-RO-specific one (spec.md's REBOOT_REQUIRED vs
// REBOOT_TO_RO_REQUIRED exit codes). why is used only for debug
// logging, never recorded to NV.
func Reboot(why string) Result {
	return Result{Code: RebootRequired, Err: xerrors.New(why)}
}

// Fatal reports a fatal condition for this boot: reason has already
// been recorded to NV by the caller, and the next boot will enter
// recovery mode because of it.
func Fatal(reason uint32, err error) Result {
	return Result{Code: RebootToRORequired, RecordedReason: reason, Err: xerrors.Errorf("fatal ec sync error: %w", err)}
}

// Shutdown reports an explicit shutdown request.
func Shutdown() Result {
	return Result{Code: ShutdownRequested}
}

// NoDiskFoundResult reports that no kernel could be located on any
// configured media.
func NoDiskFoundResult() Result {
	return Result{Code: NoDiskFound}
}

// IsOK reports whether r represents unconditional success.
func (r Result) IsOK() bool {
	return r.Code == Success && r.Err == nil
}

// IsFatal reports whether a recovery reason was recorded for this result.
func (r Result) IsFatal() bool {
	return r.RecordedReason != 0
}
