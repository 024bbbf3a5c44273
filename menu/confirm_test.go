// -*- Mode: Go; indent-tabs-mode: t -*-

package menu_test

import (
	"sync"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/menu"
)

// scriptedInput replays a fixed sequence of key events, repeating
// KeyNone forever once the script is exhausted, and never reports a
// shutdown or switch press unless configured to.
type scriptedInput struct {
	mu       sync.Mutex
	keys     []input.Key
	trusted  []bool
	pos      int
	shutdown input.ShutdownBit
	switches input.SwitchMask
}

func (s *scriptedInput) ReadKey() (input.Key, error) {
	k, _, err := s.ReadKeyWithFlags()
	return k, err
}

func (s *scriptedInput) ReadKeyWithFlags() (input.Key, input.Flags, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.keys) {
		return input.KeyNone, input.Flags{}, nil
	}
	k := s.keys[s.pos]
	trusted := false
	if s.pos < len(s.trusted) {
		trusted = s.trusted[s.pos]
	}
	s.pos++
	return k, input.Flags{Trusted: trusted}, nil
}

func (s *scriptedInput) SwitchesPressed(mask input.SwitchMask) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.switches&mask == mask, nil
}

func (s *scriptedInput) ShutdownRequested() (input.ShutdownBit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown, nil
}

type fakeAudio struct {
	beeps int
}

func (f *fakeAudio) Beep(hz, ms int) error {
	f.beeps++
	return nil
}

func (f *fakeAudio) Sleep(ms int) {}

func (s *menuSuite) TestConfirmEnterYieldsYes(c *C) {
	src := &scriptedInput{keys: []input.Key{input.KeyEnter}}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.Yes)
}

func (s *menuSuite) TestConfirmEscYieldsNo(c *C) {
	src := &scriptedInput{keys: []input.Key{input.KeyEsc}}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.No)
}

func (s *menuSuite) TestConfirmUntrustedEnterBeepsAndRepolls(c *C) {
	src := &scriptedInput{
		keys:    []input.Key{input.KeyEnter, input.KeyEnter},
		trusted: []bool{false, true},
	}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{MustTrustKeyboard: true}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.Yes)
	c.Check(dev.beeps, Equals, 1)
}

func (s *menuSuite) TestConfirmSpaceIgnoredUnlessConfigured(c *C) {
	src := &scriptedInput{keys: []input.Key{input.KeySpace, input.KeyEnter}}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.Yes)
}

func (s *menuSuite) TestConfirmSpaceMeansNo(c *C) {
	src := &scriptedInput{keys: []input.Key{input.KeySpace}}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{SpaceMeansNo: true}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.No)
}

func (s *menuSuite) TestConfirmShutdownPollWins(c *C) {
	src := &scriptedInput{shutdown: input.ShutdownLidClosed}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.Shutdown)
}

func (s *menuSuite) TestShutdownPollMasksPowerButtonAlways(c *C) {
	src := &scriptedInput{shutdown: input.ShutdownPowerButton}
	shutdown, err := menu.ShutdownPoll(src, false)
	c.Assert(err, IsNil)
	c.Check(shutdown, Equals, false)
}

func (s *menuSuite) TestShutdownPollMasksLidWhenDisabled(c *C) {
	src := &scriptedInput{shutdown: input.ShutdownLidClosed}
	shutdown, err := menu.ShutdownPoll(src, true)
	c.Assert(err, IsNil)
	c.Check(shutdown, Equals, false)
}

func (s *menuSuite) TestConfirmRecoveryButtonPressThenRelease(c *C) {
	src := &pressReleaseInput{pressedSequence: []bool{true, false}}
	dev := &fakeAudio{}
	answer, err := menu.Confirm(src, dev, menu.ConfirmFlags{RecoverySwitchIsReal: true}, false)
	c.Assert(err, IsNil)
	c.Check(answer, Equals, menu.Yes)
}

type pressReleaseInput struct {
	pressedSequence []bool
	pos             int
}

func (p *pressReleaseInput) ReadKey() (input.Key, error) { return input.KeyNone, nil }
func (p *pressReleaseInput) ReadKeyWithFlags() (input.Key, input.Flags, error) {
	return input.KeyNone, input.Flags{}, nil
}
func (p *pressReleaseInput) ShutdownRequested() (input.ShutdownBit, error) { return 0, nil }
func (p *pressReleaseInput) SwitchesPressed(mask input.SwitchMask) (bool, error) {
	if p.pos >= len(p.pressedSequence) {
		return false, nil
	}
	v := p.pressedSequence[p.pos]
	p.pos++
	return v, nil
}
