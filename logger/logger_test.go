// -*- Mode: Go; indent-tabs-mode: t -*-

package logger_test

import (
	"strings"
	"testing"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/logger"
)

func Test(t *testing.T) { TestingT(t) }

type loggerSuite struct{}

var _ = Suite(&loggerSuite{})

func (s *loggerSuite) TestNoticefWritesThroughMockLogger(c *C) {
	buf, restore := logger.MockLogger()
	defer restore()

	logger.Noticef("hello %s", "world")
	c.Check(strings.Contains(buf.String(), "hello world"), Equals, true)
}

func (s *loggerSuite) TestDebugfRespectsDebugFlag(c *C) {
	buf, restore := logger.MockLogger()
	defer restore()

	logger.Debugf("verbose detail")
	c.Check(strings.Contains(buf.String(), "verbose detail"), Equals, true)
}

func (s *loggerSuite) TestNullLoggerDiscards(c *C) {
	logger.SetLogger(logger.NullLogger)
	defer logger.SetLogger(logger.NullLogger)

	// Must not panic and has nowhere observable to write to.
	logger.Noticef("discarded")
}

func (s *loggerSuite) TestPanicfPanics(c *C) {
	_, restore := logger.MockLogger()
	defer restore()

	c.Assert(func() { logger.Panicf("boom %d", 1) }, PanicMatches, "boom 1")
}
