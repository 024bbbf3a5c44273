// -*- Mode: Go; indent-tabs-mode: t -*-

package audio_test

import (
	"sync"
	"testing"
	"time"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/audio"
)

func Test(t *testing.T) { TestingT(t) }

type audioSuite struct{}

var _ = Suite(&audioSuite{})

type fakeDevice struct {
	mu    sync.Mutex
	beeps int
}

func (f *fakeDevice) Beep(hz, ms int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beeps++
	return nil
}

func (f *fakeDevice) Sleep(ms int) {}

func (s *audioSuite) TestLoopingStopsAfterDuration(c *C) {
	dev := &fakeDevice{}
	ctx := audio.Open(dev, audio.Pattern{
		Notes:    []audio.Note{{HzZeroIsSilence: 400, DurationMS: 1}},
		Duration: 10 * time.Millisecond,
	})
	defer ctx.Close()

	deadline := time.Now().Add(2 * time.Second)
	for ctx.Looping() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	c.Check(ctx.Looping(), Equals, false)
}

func (s *audioSuite) TestCloseStopsEarly(c *C) {
	dev := &fakeDevice{}
	ctx := audio.Open(dev, audio.Pattern{
		Notes:    []audio.Note{{HzZeroIsSilence: 400, DurationMS: 50}},
		Duration: time.Hour,
	})
	c.Check(ctx.Looping(), Equals, true)
	c.Assert(ctx.Close(), IsNil)
	c.Check(ctx.Looping(), Equals, false)
}
