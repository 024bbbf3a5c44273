// -*- Mode: Go; indent-tabs-mode: t -*-

package ecdriver_test

import (
	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/ecdriver"
)

type hostsimSuite struct{}

var _ = Suite(&hostsimSuite{})

func (s *hostsimSuite) TestHashMatchesExpectedWhenImagesAgree(c *C) {
	d := ecdriver.NewHostSimDriver()
	d.SetImage(ecdriver.EC, ecdriver.SelectRW, []byte("rw-v1"))

	got, err := d.HashImage(ecdriver.EC, ecdriver.SelectRW)
	c.Assert(err, IsNil)
	want, err := d.ExpectedHash(ecdriver.EC, ecdriver.SelectRW)
	c.Assert(err, IsNil)
	c.Check(got, DeepEquals, want)
}

func (s *hostsimSuite) TestHashMismatchWhenExpectedDiffers(c *C) {
	d := ecdriver.NewHostSimDriver()
	d.SetImage(ecdriver.EC, ecdriver.SelectRW, []byte("rw-v1"))
	d.SetExpectedImage(ecdriver.EC, ecdriver.SelectRW, []byte("rw-v2"))

	got, err := d.HashImage(ecdriver.EC, ecdriver.SelectRW)
	c.Assert(err, IsNil)
	want, err := d.ExpectedHash(ecdriver.EC, ecdriver.SelectRW)
	c.Assert(err, IsNil)
	c.Check(got, Not(DeepEquals), want)
}

func (s *hostsimSuite) TestUpdateImageRefusedAfterJumpDisabled(c *C) {
	d := ecdriver.NewHostSimDriver()
	c.Assert(d.DisableJump(ecdriver.EC), IsNil)

	err := d.UpdateImage(ecdriver.EC, ecdriver.SelectRW, []byte("new"))
	c.Check(err, NotNil)
}

func (s *hostsimSuite) TestJumpToRWFailsAfterDisableJump(c *C) {
	d := ecdriver.NewHostSimDriver()
	c.Assert(d.DisableJump(ecdriver.EC), IsNil)

	err := d.JumpToRW(ecdriver.EC)
	c.Check(err, Equals, ecdriver.ErrRebootToRORequired)
}

func (s *hostsimSuite) TestRunningRWReflectsJump(c *C) {
	d := ecdriver.NewHostSimDriver()
	inRW, err := d.RunningRW(ecdriver.EC)
	c.Assert(err, IsNil)
	c.Check(inRW, Equals, false)

	c.Assert(d.JumpToRW(ecdriver.EC), IsNil)
	inRW, err = d.RunningRW(ecdriver.EC)
	c.Assert(err, IsNil)
	c.Check(inRW, Equals, true)
}
