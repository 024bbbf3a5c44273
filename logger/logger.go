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

// Package logger is a small leveled logger in the spirit of snapd's
// logger package: a single package-scoped Logger that callers install
// once at process start, with Debugf/Noticef helpers and a MockLogger
// test hook so package tests never touch the real log destination.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Logger is the minimal interface the package-level helpers dispatch to.
type Logger interface {
	Notice(msg string)
	Debug(msg string)
}

type logger struct {
	log   *log.Logger
	debug bool
}

// Notice outputs a message, always.
func (l *logger) Notice(msg string) {
	l.log.Print("vboot-sync: " + msg)
}

// Debug outputs a message only when debugging is enabled.
func (l *logger) Debug(msg string) {
	if l.debug {
		l.log.Print("vboot-sync DEBUG: " + msg)
	}
}

// nullLogger discards everything; used by tests and by callers that
// have not opted into logging.
type nullLogger struct{}

func (nullLogger) Notice(string) {}
func (nullLogger) Debug(string)  {}

// NullLogger discards all log output.
var NullLogger Logger = nullLogger{}

var (
	loggerLock sync.Mutex
	loggerCur  Logger = NullLogger
)

// New creates a Logger that writes to w, with debug output gated by debug.
func New(w io.Writer, debug bool) Logger {
	return &logger{log: log.New(w, "", log.LstdFlags), debug: debug}
}

// SetLogger sets the global logger to l.
func SetLogger(l Logger) {
	loggerLock.Lock()
	defer loggerLock.Unlock()
	loggerCur = l
}

// SimpleSetup installs a logger writing to stderr, with debug output
// enabled when the VBOOT_SYNC_DEBUG environment variable is set.
func SimpleSetup() error {
	debug := os.Getenv("VBOOT_SYNC_DEBUG") != ""
	SetLogger(New(os.Stderr, debug))
	return nil
}

// MockLogger replaces the global logger with one that writes to an
// in-memory buffer, returning the buffer and a restore function.
func MockLogger() (buf *mockBuffer, restore func()) {
	buf = &mockBuffer{}
	old := loggerCur
	SetLogger(New(buf, true))
	return buf, func() { SetLogger(old) }
}

type mockBuffer struct {
	mu   sync.Mutex
	data []byte
}

func (b *mockBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *mockBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

// Noticef formats and logs a message via Notice.
func Noticef(format string, args ...interface{}) {
	loggerLock.Lock()
	l := loggerCur
	loggerLock.Unlock()
	l.Notice(fmt.Sprintf(format, args...))
}

// Debugf formats and logs a message via Debug.
func Debugf(format string, args ...interface{}) {
	loggerLock.Lock()
	l := loggerCur
	loggerLock.Unlock()
	l.Debug(fmt.Sprintf(format, args...))
}

// Panicf formats a message, logs it, and panics with it.
func Panicf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	Noticef(msg)
	panic(msg)
}
