// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

package display

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/chromiumos/vboot-sync/logger"
)

// screenTitles gives a short human-readable label for each ScreenID,
// used as a stand-in for the real bitmap each screen would show.
var screenTitles = map[ScreenID]string{
	ScreenBlank:        "",
	ScreenDevWarning:   "DEVELOPER MODE WARNING",
	ScreenDevMenu:      "DEVELOPER OPTIONS",
	ScreenToNorm:       "RETURN TO NORMAL MODE",
	ScreenRecoveryMenu: "CHROME OS IS MISSING OR DAMAGED",
	ScreenToDev:        "ENABLE DEVELOPER MODE",
	ScreenLanguages:    "SELECT LANGUAGE",
	ScreenOSBroken:     "CHROME OS IS MISSING OR DAMAGED",
}

// ConsoleDisplay implements Display over a plain terminal, sizing text
// with go-runewidth since the menu layout must account for East Asian
// wide characters and zero-width combining marks the same way the
// real firmware's bitmap font renderer does.
type ConsoleDisplay struct {
	out  io.Writer
	cols int
	rows int

	rawFd    int
	rawState *term.State
}

// NewConsoleDisplay returns a Display writing to out, with a fixed
// character grid of cols by rows.
func NewConsoleDisplay(out io.Writer, cols, rows int) *ConsoleDisplay {
	return &ConsoleDisplay{out: out, cols: cols, rows: rows}
}

// NewConsoleDisplayFile is like NewConsoleDisplay, but additionally
// puts the console file descriptor into raw mode for the lifetime of
// the returned Display, so the menu's own highlighting/redraw logic
// controls the screen instead of the tty line discipline echoing
// keystrokes back. Callers must Close the result to restore the
// console's original terminal state.
func NewConsoleDisplayFile(f *os.File, cols, rows int) (*ConsoleDisplay, error) {
	fd := int(f.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}
	return &ConsoleDisplay{out: f, cols: cols, rows: rows, rawFd: fd, rawState: state}, nil
}

// Close restores the console's original terminal state, if this
// Display was constructed with NewConsoleDisplayFile.
func (d *ConsoleDisplay) Close() error {
	if d.rawState == nil {
		return nil
	}
	return term.Restore(d.rawFd, d.rawState)
}

// ShowScreen implements Display.
func (d *ConsoleDisplay) ShowScreen(id ScreenID, reason uint32) error {
	title := screenTitles[id]
	if reason != 0 {
		title = fmt.Sprintf("%s (reason %d)", title, reason)
	}
	_, err := fmt.Fprintf(d.out, "\n=== %s ===\n", padCenter(title, d.cols))
	return err
}

// ShowText implements Display, truncating to the console width by
// display cells rather than byte or rune count.
func (d *ConsoleDisplay) ShowText(x, y int, text string, highlighted bool) error {
	visible := runewidth.Truncate(text, d.cols-x, "…")
	marker := "  "
	if highlighted {
		marker = "> "
	}
	_, err := fmt.Fprintf(d.out, "%s%s\n", marker, visible)
	return err
}

// ShowDebugInfo implements Display.
func (d *ConsoleDisplay) ShowDebugInfo(info string) error {
	_, err := fmt.Fprintf(d.out, "--- debug info ---\n%s\n------------------\n", info)
	return err
}

// GetDimensions implements Display.
func (d *ConsoleDisplay) GetDimensions() (int, int, error) {
	return d.cols, d.rows, nil
}

// DebugLog implements Display by routing through the shared logger
// rather than the screen itself.
func (d *ConsoleDisplay) DebugLog(msg string) {
	logger.Debugf("display: %s", msg)
}

func padCenter(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	left := (width - w) / 2
	right := width - w - left
	return fmt.Sprintf("%s%s%s", spaces(left), s, spaces(right))
}

func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

var _ Display = (*ConsoleDisplay)(nil)
