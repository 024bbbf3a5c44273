// -*- Mode: Go; indent-tabs-mode: t -*-

package diagdebug_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/diagdebug"
	"github.com/chromiumos/vboot-sync/menu"
	"github.com/chromiumos/vboot-sync/nvstore"
)

func Test(t *testing.T) { TestingT(t) }

type diagdebugSuite struct{}

var _ = Suite(&diagdebugSuite{})

func (s *diagdebugSuite) TestBootctxEndpointReturnsCurrentSnapshot(c *C) {
	srv := diagdebug.NewServer()
	ctx := &bootctx.Context{NV: nvstore.NewMemStore(), RecoveryReason: bootctx.RecoveryECUpdate}
	st := menu.NewState(menu.Recovery)
	srv.Update(ctx, st)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/bootctx")
	c.Assert(err, IsNil)
	defer resp.Body.Close()
	c.Check(resp.StatusCode, Equals, http.StatusOK)

	var got bootctx.Context
	c.Assert(json.NewDecoder(resp.Body).Decode(&got), IsNil)
	c.Check(got.RecoveryReason, Equals, bootctx.RecoveryECUpdate)
}

func (s *diagdebugSuite) TestMenuEndpointReturnsCurrentState(c *C) {
	srv := diagdebug.NewServer()
	ctx := &bootctx.Context{NV: nvstore.NewMemStore()}
	st := menu.NewState(menu.ToDev)
	srv.Update(ctx, st)

	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/menu")
	c.Assert(err, IsNil)
	defer resp.Body.Close()
	c.Check(resp.StatusCode, Equals, http.StatusOK)

	var got menu.State
	c.Assert(json.NewDecoder(resp.Body).Decode(&got), IsNil)
	c.Check(got.Current, Equals, menu.ToDev)
}

func (s *diagdebugSuite) TestBootctxBeforeUpdateReportsUnavailable(c *C) {
	srv := diagdebug.NewServer()
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/bootctx")
	c.Assert(err, IsNil)
	defer resp.Body.Close()
	c.Check(resp.StatusCode, Equals, http.StatusServiceUnavailable)
}
