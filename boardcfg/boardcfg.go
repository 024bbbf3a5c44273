// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package boardcfg reads per-board platform defaults from an
// ini-style config file, standing in for the board-specific constants
// the real firmware would compile in.
package boardcfg

import (
	"os"

	"github.com/mvo5/goconfigparser"
	"golang.org/x/xerrors"
)

// Config is the board default values a caller may want when no NV or
// GBB value overrides them.
type Config struct {
	AudioWarningBeepHz   int
	AudioWarningBeepMS   int
	AudioWarningTimeoutS int
	ConsoleCols          int
	ConsoleRows          int
}

var defaults = Config{
	AudioWarningBeepHz:   400,
	AudioWarningBeepMS:   250,
	AudioWarningTimeoutS: 30,
	ConsoleCols:          80,
	ConsoleRows:          25,
}

// Load reads board defaults from path, an ini file with a single
// unnamed section (no "[section]" header, matching the grub-editenv
// style flat key=value format this helper's board configs use).
// A missing file yields the built-in defaults.
func Load(path string) (Config, error) {
	cfg := defaults

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, xerrors.Errorf("stat board config %s: %w", path, err)
	}

	parser := goconfigparser.New()
	parser.AllowNoSectionHeader = true
	if err := parser.ReadFile(path); err != nil {
		return cfg, xerrors.Errorf("read board config %s: %w", path, err)
	}

	getInt := func(key string, dst *int) error {
		v, err := parser.Get("", key)
		if err != nil || v == "" {
			return nil
		}
		n, err := parser.GetInt("", key)
		if err != nil {
			return xerrors.Errorf("parse %s: %w", key, err)
		}
		*dst = n
		return nil
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{"audio_warning_beep_hz", &cfg.AudioWarningBeepHz},
		{"audio_warning_beep_ms", &cfg.AudioWarningBeepMS},
		{"audio_warning_timeout_s", &cfg.AudioWarningTimeoutS},
		{"console_cols", &cfg.ConsoleCols},
		{"console_rows", &cfg.ConsoleRows},
	} {
		if err := getInt(f.key, f.dst); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}
