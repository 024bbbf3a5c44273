// -*- Mode: Go; indent-tabs-mode: t -*-

package input

import (
	"testing"

	"github.com/gvalkov/golang-evdev"
	. "gopkg.in/check.v1"
)

func Test(t *testing.T) { TestingT(t) }

type evdevSuite struct{}

var _ = Suite(&evdevSuite{})

func keyEvent(code uint16, value int32) *evdev.InputEvent {
	return &evdev.InputEvent{Type: evdev.EV_KEY, Code: code, Value: value}
}

func (s *evdevSuite) TestCtrlDRequiresCtrlHeld(c *C) {
	src := &EvdevSource{}

	_, ok := src.translateKeyEvent(keyEvent(evdev.KEY_D, 1))
	c.Check(ok, Equals, false)

	src.translateKeyEvent(keyEvent(evdev.KEY_LEFTCTRL, 1))
	key, ok := src.translateKeyEvent(keyEvent(evdev.KEY_D, 1))
	c.Check(ok, Equals, true)
	c.Check(key, Equals, KeyCtrlD)
}

func (s *evdevSuite) TestCtrlReleaseClearsModifier(c *C) {
	src := &EvdevSource{}
	src.translateKeyEvent(keyEvent(evdev.KEY_LEFTCTRL, 1))
	src.translateKeyEvent(keyEvent(evdev.KEY_LEFTCTRL, 0))

	_, ok := src.translateKeyEvent(keyEvent(evdev.KEY_U, 1))
	c.Check(ok, Equals, false)
}

func (s *evdevSuite) TestPlainKeysMapWithoutCtrl(c *C) {
	src := &EvdevSource{}

	key, ok := src.translateKeyEvent(keyEvent(evdev.KEY_ENTER, 1))
	c.Check(ok, Equals, true)
	c.Check(key, Equals, KeyEnter)

	key, ok = src.translateKeyEvent(keyEvent(evdev.KEY_ESC, 1))
	c.Check(ok, Equals, true)
	c.Check(key, Equals, KeyEsc)
}

func (s *evdevSuite) TestKeyReleaseIsIgnoredForNonModifiers(c *C) {
	src := &EvdevSource{}
	_, ok := src.translateKeyEvent(keyEvent(evdev.KEY_ENTER, 0))
	c.Check(ok, Equals, false)
}

func (s *evdevSuite) TestSwitchEventsTrackRecoveryAndDeveloper(c *C) {
	src := &EvdevSource{}
	src.applySwitchEvent(&evdev.InputEvent{Type: evdev.EV_SW, Code: evdev.SW_RECOVERY, Value: 1})

	pressed, err := src.SwitchesPressed(SwitchRecovery)
	c.Assert(err, IsNil)
	c.Check(pressed, Equals, true)

	pressed, err = src.SwitchesPressed(SwitchDeveloper)
	c.Assert(err, IsNil)
	c.Check(pressed, Equals, false)
}

func (s *evdevSuite) TestLidCloseReportsShutdownBitUntilReopened(c *C) {
	src := &EvdevSource{}
	src.applySwitchEvent(&evdev.InputEvent{Type: evdev.EV_SW, Code: evdev.SW_LID, Value: 1})

	bits, err := src.ShutdownRequested()
	c.Assert(err, IsNil)
	c.Check(bits&ShutdownLidClosed, Equals, ShutdownLidClosed)

	src.applySwitchEvent(&evdev.InputEvent{Type: evdev.EV_SW, Code: evdev.SW_LID, Value: 0})
	bits, err = src.ShutdownRequested()
	c.Assert(err, IsNil)
	c.Check(bits&ShutdownLidClosed, Equals, ShutdownBit(0))
}

func (s *evdevSuite) TestPowerButtonNeverReportedAsShutdown(c *C) {
	src := &EvdevSource{}
	key, ok := src.translateKeyEvent(keyEvent(evdev.KEY_POWER, 1))
	c.Check(ok, Equals, true)
	c.Check(key, Equals, KeyPower)

	bits, err := src.ShutdownRequested()
	c.Assert(err, IsNil)
	c.Check(bits&ShutdownPowerButton, Equals, ShutdownBit(0))
}
