// -*- Mode: Go; indent-tabs-mode: t -*-

package bootctx_test

import (
	"testing"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/ecdriver"
)

func Test(t *testing.T) { TestingT(t) }

type bootctxSuite struct{}

var _ = Suite(&bootctxSuite{})

func (s *bootctxSuite) TestInRWPerDevice(c *C) {
	var f bootctx.ScratchFlags
	c.Check(f.InRW(ecdriver.EC), Equals, false)
	c.Check(f.InRW(ecdriver.PD), Equals, false)

	f.SetInRW(ecdriver.EC, true)
	c.Check(f.InRW(ecdriver.EC), Equals, true)
	c.Check(f.InRW(ecdriver.PD), Equals, false)
}

func (s *bootctxSuite) TestNeedsUpdateRODoesNotDistinguishDevice(c *C) {
	var f bootctx.ScratchFlags
	f.SetNeedsUpdate(ecdriver.EC, ecdriver.SelectRO, true)
	c.Check(f.NeedsUpdate(ecdriver.EC, ecdriver.SelectRO), Equals, true)
	// RO tracking is EC-only in the data model; PD RO is unsupported,
	// and the shared flag reads back the same regardless of dev.
	c.Check(f.NeedsUpdate(ecdriver.PD, ecdriver.SelectRO), Equals, true)
}

func (s *bootctxSuite) TestNeedsUpdateRWPerDevice(c *C) {
	var f bootctx.ScratchFlags
	f.SetNeedsUpdate(ecdriver.EC, ecdriver.SelectRW, true)
	c.Check(f.NeedsUpdate(ecdriver.EC, ecdriver.SelectRW), Equals, true)
	c.Check(f.NeedsUpdate(ecdriver.PD, ecdriver.SelectRW), Equals, false)

	f.SetNeedsUpdate(ecdriver.PD, ecdriver.SelectRW, true)
	c.Check(f.AnyRWNeedsUpdate(), Equals, true)
}

func (s *bootctxSuite) TestAnyInRWAndAnyUpdatePending(c *C) {
	var f bootctx.ScratchFlags
	c.Check(f.AnyInRW(), Equals, false)
	c.Check(f.AnyUpdatePending(), Equals, false)

	f.SetInRW(ecdriver.PD, true)
	c.Check(f.AnyInRW(), Equals, true)

	f.SetNeedsUpdate(ecdriver.EC, ecdriver.SelectRO, true)
	c.Check(f.AnyUpdatePending(), Equals, true)
}

func (s *bootctxSuite) TestInRecovery(c *C) {
	ctx := &bootctx.Context{}
	c.Check(ctx.InRecovery(), Equals, false)
	ctx.RecoveryReason = bootctx.RecoveryECUnknownImage
	c.Check(ctx.InRecovery(), Equals, true)
}
