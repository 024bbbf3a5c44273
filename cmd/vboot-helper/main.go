// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Command vboot-helper is the thin executable wiring every collaborator
// package into a runnable program: it drives EC Software Sync Phase
// 1/2/3, then dispatches into the boot-mode UI when the boot context
// says this is not a normal boot.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/jessevdk/go-flags"

	"github.com/chromiumos/vboot-sync/audio"
	"github.com/chromiumos/vboot-sync/boardcfg"
	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/bootui"
	"github.com/chromiumos/vboot-sync/diagdebug"
	"github.com/chromiumos/vboot-sync/dirs"
	"github.com/chromiumos/vboot-sync/display"
	"github.com/chromiumos/vboot-sync/ecdriver"
	"github.com/chromiumos/vboot-sync/ecsync"
	"github.com/chromiumos/vboot-sync/fwmp"
	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/kernelloader"
	"github.com/chromiumos/vboot-sync/logger"
	"github.com/chromiumos/vboot-sync/nvstore"
	"github.com/chromiumos/vboot-sync/result"
	"github.com/chromiumos/vboot-sync/rollback"
)

// allowedSyscalls is the fixed set this process may use once
// installSeccompFilter runs, which happens before any collaborator is
// opened: file and ioctl I/O (including openat for the collaborators'
// own files), the socket calls the optional --debug-addr listener
// uses, plus the handful of syscalls the runtime itself uses.
var allowedSyscalls = []string{
	"read", "write", "close", "fstat", "lseek", "mmap", "munmap",
	"ioctl", "poll", "nanosleep", "clock_gettime", "rt_sigaction",
	"rt_sigprocmask", "rt_sigreturn", "sigaltstack", "futex",
	"sched_yield", "exit", "exit_group", "openat", "epoll_create1",
	"epoll_ctl", "epoll_wait", "getrandom", "socket", "connect",
	"bind", "listen", "accept4", "setsockopt", "fcntl",
}

type options struct {
	RootDir        string `long:"root-dir" description:"root directory every collaborator path is resolved under" default:"/"`
	RecoveryReason uint32 `long:"recovery-reason" description:"non-zero recovery reason this boot started with"`

	DevSwitchOn        bool `long:"dev-switch-on" description:"physical developer-mode switch is on"`
	RecSwitchOn        bool `long:"rec-switch-on" description:"recovery switch is asserted"`
	RecSwitchVirtual   bool `long:"rec-switch-virtual" description:"recovery switch state is software-latched, not physical"`
	HonorVirtDevSwitch bool `long:"honor-virtual-dev-switch" description:"allow enabling developer mode from the recovery menu"`
	ECSyncEnabled      bool `long:"ec-sync-enabled" description:"EC software sync is enabled for this board"`
	ECSlowUpdate       bool `long:"ec-slow-update" description:"warn that the pending EC update will be slow"`
	WriteProtectOn     bool `long:"write-protect-on" description:"firmware write-protect is asserted"`
	FirmwareSlotB      bool `long:"firmware-slot-b" description:"the active AP RW firmware slot is B, not A"`

	DisableECSync        bool `long:"disable-ec-sync" description:"GBB: disable EC software sync"`
	DisablePDSync        bool `long:"disable-pd-sync" description:"GBB: disable PD software sync"`
	DisableLidShutdown   bool `long:"disable-lid-shutdown" description:"GBB: ignore lid-close as a shutdown request"`
	ForceDevBootUSB      bool `long:"force-dev-boot-usb" description:"GBB: always allow USB boot in developer mode"`
	ForceDevBootLegacy   bool `long:"force-dev-boot-legacy" description:"GBB: always allow legacy boot in developer mode"`
	DefaultDevBootLegacy bool `long:"default-dev-boot-legacy" description:"GBB: default developer boot source is legacy"`
	ForceDevSwitchOn     bool `long:"force-dev-switch-on" description:"GBB: treat the developer switch as always on"`

	WithPD     bool   `long:"with-pd" description:"this board has a PD controller to sync in addition to the EC"`
	ECToolPath string `long:"ectool-path" description:"path to the ectool binary" default:"ectool"`

	NVBackend string `long:"nv-backend" description:"non-volatile store backend: bolt or efi" default:"bolt" choice:"bolt" choice:"efi"`

	TPMDevice string `long:"tpm-device" description:"TPM character device for rollback/virtual-dev-mode state (not used: the platform's default TPM device is always opened)" default:"/dev/tpm0"`

	InputDevice string `long:"input-device" description:"evdev input device to read keys and switches from" required:"true"`

	DebugAddr string `long:"debug-addr" description:"if set, serve a read-only JSON introspection endpoint on this address"`
}

func main() {
	if err := run(); err != nil {
		logger.Noticef("%v", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}

	if err := logger.SimpleSetup(); err != nil {
		return err
	}
	dirs.SetRootDir(opts.RootDir)

	if err := installSeccompFilter(allowedSyscalls); err != nil {
		return fmt.Errorf("install seccomp filter: %w", err)
	}

	collab, ctx, engine, err := wire(opts)
	if err != nil {
		return err
	}
	if closer, ok := collab.Display.(interface{ Close() error }); ok {
		defer func() {
			if err := closer.Close(); err != nil {
				logger.Debugf("restore console terminal state: %v", err)
			}
		}()
	}

	if opts.DebugAddr != "" {
		srv := diagdebug.NewServer()
		go func() {
			if err := srv.ListenAndServe(opts.DebugAddr); err != nil {
				logger.Noticef("diagdebug server exited: %v", err)
			}
		}()
	}

	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logger.Debugf("sd_notify READY=1 failed (not running under systemd?): %v", err)
	}

	res := drive(ctx, engine, collab)
	return react(res)
}

// wire constructs every collaborator and the shared boot context from
// opts, matching §6's external interfaces to their concrete,
// non-test implementations.
func wire(opts options) (bootui.Collaborators, *bootctx.Context, *ecsync.Engine, error) {
	boardCfg, err := boardcfg.Load(dirs.BoardConfigFile())
	if err != nil {
		return bootui.Collaborators{}, nil, nil, err
	}

	var nv bootctx.NVStore
	switch opts.NVBackend {
	case "efi":
		store, err := nvstore.OpenEFIStore()
		if err != nil {
			return bootui.Collaborators{}, nil, nil, fmt.Errorf("open efi nv store: %w", err)
		}
		nv = store
	default:
		store, err := nvstore.OpenBoltStore(dirs.NVStoreDB())
		if err != nil {
			return bootui.Collaborators{}, nil, nil, fmt.Errorf("open bolt nv store: %w", err)
		}
		nv = store
	}

	firmwareSlot := bootctx.SlotA
	if opts.FirmwareSlotB {
		firmwareSlot = bootctx.SlotB
	}

	ctx := &bootctx.Context{
		RecoveryReason: bootctx.RecoveryReason(opts.RecoveryReason),
		Shared: bootctx.SharedFlags{
			ECSoftwareSyncEnabled: opts.ECSyncEnabled,
			ECSlowUpdate:          opts.ECSlowUpdate,
			FWWriteProtectEnabled: opts.WriteProtectOn,
			BootDevSwitchOn:       opts.DevSwitchOn,
			BootRecSwitchOn:       opts.RecSwitchOn,
			BootRecSwitchVirtual:  opts.RecSwitchVirtual,
			HonorVirtDevSwitch:    opts.HonorVirtDevSwitch,
			FirmwareIndex:         firmwareSlot,
		},
		GBB: bootctx.GBBFlags{
			DisableECSoftwareSync: opts.DisableECSync,
			DisablePDSoftwareSync: opts.DisablePDSync,
			DisableLidShutdown:    opts.DisableLidShutdown,
			ForceDevBootUSB:       opts.ForceDevBootUSB,
			ForceDevBootLegacy:    opts.ForceDevBootLegacy,
			DefaultDevBootLegacy:  opts.DefaultDevBootLegacy,
			ForceDevSwitchOn:      opts.ForceDevSwitchOn,
		},
		NV: nv,
	}

	devices := []ecdriver.Device{ecdriver.EC}
	if opts.WithPD {
		devices = append(devices, ecdriver.PD)
	}
	ecDriver := &ecdriver.ToolDriver{ECToolPath: opts.ECToolPath}
	engine := ecsync.NewEngine(devices, ecDriver)

	rb, err := rollback.OpenTPMRollback(opts.TPMDevice)
	if err != nil {
		return bootui.Collaborators{}, nil, nil, fmt.Errorf("open tpm rollback: %w", err)
	}

	in, err := input.OpenEvdevSource(opts.InputDevice)
	if err != nil {
		return bootui.Collaborators{}, nil, nil, fmt.Errorf("open input device: %w", err)
	}

	beeper, err := audio.OpenPCSpeaker()
	if err != nil {
		return bootui.Collaborators{}, nil, nil, fmt.Errorf("open pc speaker: %w", err)
	}

	console, err := display.NewConsoleDisplayFile(os.Stdout, boardCfg.ConsoleCols, boardCfg.ConsoleRows)
	if err != nil {
		return bootui.Collaborators{}, nil, nil, fmt.Errorf("put console in raw mode: %w", err)
	}

	collab := bootui.Collaborators{
		Display: console,
		Input:   in,
		Audio:   beeper,
		AudioPattern: audio.Pattern{
			Notes: []audio.Note{
				{HzZeroIsSilence: boardCfg.AudioWarningBeepHz, DurationMS: boardCfg.AudioWarningBeepMS},
				{HzZeroIsSilence: 0, DurationMS: boardCfg.AudioWarningBeepMS},
			},
			Duration: time.Duration(boardCfg.AudioWarningTimeoutS) * time.Second,
		},
		Loader:   &kernelloader.DiskScanner{},
		Rollback: rb,
		FWMP:     fwmp.NewYAMLPolicy(dirs.FWMPPolicyFile()),
		EC:       ecDriver,
	}

	return collab, ctx, engine, nil
}

// drive runs EC Software Sync through to completion, then dispatches
// to the boot-mode UI flow matching ctx (§4.1 "State implications",
// §4.2).
func drive(ctx *bootctx.Context, engine *ecsync.Engine, collab bootui.Collaborators) result.Result {
	if res := engine.Phase1(ctx); !res.IsOK() {
		return res
	}

	if !ctx.InRecovery() {
		if res := engine.Phase2(ctx); !res.IsOK() {
			return res
		}
	}

	if res := engine.Phase3(ctx); res.Code != result.Success {
		return res
	}

	switch {
	case ctx.InRecovery():
		return bootui.RunRecoveryMode(ctx, collab)
	case ctx.Shared.BootDevSwitchOn:
		return bootui.RunDeveloperMode(ctx, collab)
	default:
		outcome, err := collab.Loader.TryLoadKernel(kernelloader.MediaFixed)
		if err != nil {
			return result.Fatal(0, err)
		}
		if outcome != kernelloader.OutcomeSuccess {
			return result.NoDiskFoundResult()
		}
		return result.OK()
	}
}

const (
	rebootExitCode   = 2
	shutdownExitCode = 3
)

// react turns a terminal result.Result into the process exit behavior
// a caller (normally the firmware's init sequence) expects.
func react(res result.Result) error {
	if res.Code == result.Success {
		return nil
	}
	code, ok := exitCodeFor(res.Code)
	if !ok {
		return fmt.Errorf("unhandled result code %s", res.Code)
	}
	if res.Err != nil {
		logger.Noticef("%s: %v", res.Code, res.Err)
	}
	os.Exit(code)
	return nil
}

// exitCodeFor maps every non-success result.Code this helper can
// terminate with to a process exit code, separated out from react so
// the mapping can be tested without the os.Exit call it guards.
func exitCodeFor(c result.Code) (code int, ok bool) {
	switch c {
	case result.ShutdownRequested:
		return shutdownExitCode, true
	case result.RebootRequired, result.RebootToRORequired, result.TPMSetBootModeState, result.NoDiskFound:
		return rebootExitCode, true
	default:
		return 0, false
	}
}
