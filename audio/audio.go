// -*- Mode: Go; indent-tabs-mode: t -*-

/*
 * Copyright (C) 2025 The ChromiumOS Authors.
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License version 3 as
 * published by the Free Software Foundation.
 */

// Package audio defines the beep/sleep collaborator contract (spec.md
// §6 "Audio") and the audio-context helper the developer-mode flow
// uses to bound its warning-beep loop. The context is the one place
// in this module that runs a background goroutine; its lifecycle is
// supervised by a tomb.v2.Tomb rather than a bare go statement, so a
// Close always observes a clean goroutine exit (spec.md §5
// "Cancellation/timeouts").
package audio

import (
	"time"

	"gopkg.in/tomb.v2"
)

// Device is the beep/sleep collaborator contract.
type Device interface {
	Beep(hz, ms int) error
	Sleep(ms int)
}

// Note is a single beep or silent gap in a Pattern.
type Note struct {
	HzZeroIsSilence int
	DurationMS      int
}

// Pattern is a platform-provided warning sound, looped for Duration
// before the context stops looping on its own (spec.md §4.2 "driven by
// an audio context that defines the warning beep pattern and an
// overall timeout").
type Pattern struct {
	Notes    []Note
	Duration time.Duration
}

// Context plays Pattern in a loop on a supervised goroutine until
// either Duration elapses or Close is called, whichever comes first.
// Looping reports whether the context is still within its timeout.
type Context struct {
	dev     Device
	pattern Pattern
	t       tomb.Tomb
	done    chan struct{}
}

// Open starts playing pattern on dev in the background and returns
// immediately; the developer-mode loop polls Looping() each iteration.
func Open(dev Device, pattern Pattern) *Context {
	c := &Context{dev: dev, pattern: pattern, done: make(chan struct{})}
	c.t.Go(func() error {
		defer close(c.done)
		deadline := time.Now().Add(pattern.Duration)
		for time.Now().Before(deadline) {
			select {
			case <-c.t.Dying():
				return nil
			default:
			}
			for _, n := range pattern.Notes {
				select {
				case <-c.t.Dying():
					return nil
				default:
				}
				if n.HzZeroIsSilence == 0 {
					c.dev.Sleep(n.DurationMS)
				} else {
					_ = c.dev.Beep(n.HzZeroIsSilence, n.DurationMS)
				}
			}
		}
		return nil
	})
	return c
}

// Looping reports whether the warning pattern has not yet timed out
// and Close has not been called.
func (c *Context) Looping() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Close stops the background goroutine and waits for it to exit.
func (c *Context) Close() error {
	c.t.Kill(nil)
	return c.t.Wait()
}
