// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package baseutil provides the small SetUpTest/AddCleanup fixture base
// that snapd's own (internal, non-importable) testutil package gives
// its check.v1 suites. It is reimplemented here rather than imported,
// since snapd's testutil package is not a published third-party module.
package baseutil

import . "gopkg.in/check.v1"

// BaseTest is embedded by check.v1 Suite types that need ordered
// cleanup functions run in LIFO order after each test.
type BaseTest struct {
	cleanups []func()
}

// SetUpTest resets the cleanup list; call from the embedding suite's
// own SetUpTest.
func (b *BaseTest) SetUpTest(c *C) {
	b.cleanups = nil
}

// TearDownTest runs cleanups in reverse registration order; call from
// the embedding suite's own TearDownTest.
func (b *BaseTest) TearDownTest(c *C) {
	for i := len(b.cleanups) - 1; i >= 0; i-- {
		b.cleanups[i]()
	}
	b.cleanups = nil
}

// AddCleanup registers f to run at TearDownTest.
func (b *BaseTest) AddCleanup(f func()) {
	b.cleanups = append(b.cleanups, f)
}
