// -*- Mode: Go; indent-tabs-mode: t -*-

package bootui_test

import (
	"testing"
	"time"

	. "gopkg.in/check.v1"

	"github.com/chromiumos/vboot-sync/audio"
	"github.com/chromiumos/vboot-sync/bootctx"
	"github.com/chromiumos/vboot-sync/bootui"
	"github.com/chromiumos/vboot-sync/display"
	"github.com/chromiumos/vboot-sync/ecdriver"
	"github.com/chromiumos/vboot-sync/fwmp"
	"github.com/chromiumos/vboot-sync/input"
	"github.com/chromiumos/vboot-sync/kernelloader"
	"github.com/chromiumos/vboot-sync/nvstore"
	"github.com/chromiumos/vboot-sync/result"
)

func Test(t *testing.T) { TestingT(t) }

type bootuiSuite struct{}

var _ = Suite(&bootuiSuite{})

// fakeDisplay records every call instead of rendering anything.
type fakeDisplay struct {
	screens []display.ScreenID
}

func (d *fakeDisplay) ShowScreen(id display.ScreenID, reason uint32) error {
	d.screens = append(d.screens, id)
	return nil
}
func (d *fakeDisplay) ShowText(x, y int, text string, highlighted bool) error { return nil }
func (d *fakeDisplay) ShowDebugInfo(info string) error                        { return nil }
func (d *fakeDisplay) GetDimensions() (int, int, error)                       { return 80, 24, nil }
func (d *fakeDisplay) DebugLog(msg string)                                    {}

// fakeInput replays a scripted key sequence; everything else reports
// zero/false.
type fakeInput struct {
	keys      []input.Key
	pos       int
	readCalls int
	shutdown  input.ShutdownBit
	switchRec bool

	// shutdownAfterReads, when non-zero, overrides the default
	// keys-exhausted shutdown trigger: shutdown is reported once
	// readCalls reaches it, regardless of how many scripted keys
	// remain. Used to exercise multiple keyboard polls within a single
	// disk-scan cycle.
	shutdownAfterReads int
}

func (i *fakeInput) ReadKey() (input.Key, error) {
	i.readCalls++
	if i.pos >= len(i.keys) {
		return input.KeyNone, nil
	}
	k := i.keys[i.pos]
	i.pos++
	return k, nil
}
func (i *fakeInput) ReadKeyWithFlags() (input.Key, input.Flags, error) {
	k, err := i.ReadKey()
	return k, input.Flags{Trusted: true}, err
}
func (i *fakeInput) SwitchesPressed(mask input.SwitchMask) (bool, error) {
	if mask == input.SwitchRecovery {
		return i.switchRec, nil
	}
	return false, nil
}
// ShutdownRequested only reports a pending shutdown once the scripted
// key sequence has been fully replayed, so loops under test terminate
// deterministically instead of spinning on KeyNone forever.
func (i *fakeInput) ShutdownRequested() (input.ShutdownBit, error) {
	if i.shutdownAfterReads > 0 {
		if i.readCalls >= i.shutdownAfterReads {
			return i.shutdown, nil
		}
		return 0, nil
	}
	if i.pos >= len(i.keys) {
		return i.shutdown, nil
	}
	return 0, nil
}

// fakeAudio counts beeps; Sleep is a no-op so tests run instantly.
type fakeAudio struct {
	beeps int
}

func (a *fakeAudio) Beep(hz, ms int) error { a.beeps++; return nil }
func (a *fakeAudio) Sleep(ms int)          {}

// fakeLoader returns a scripted outcome regardless of media.
type fakeLoader struct {
	outcome kernelloader.Outcome
	err     error
	calls   int

	legacyErr   error
	legacyCalls int
}

func (l *fakeLoader) TryLoadKernel(media kernelloader.Media) (kernelloader.Outcome, error) {
	l.calls++
	return l.outcome, l.err
}

func (l *fakeLoader) TryLegacy() error {
	l.legacyCalls++
	return l.legacyErr
}

// fakeRollback records calls and never fails unless told to.
type fakeRollback struct {
	lockErr    error
	devModeErr error
	locked     []bool
	devMode    bool
}

func (r *fakeRollback) RollbackKernelLock(recovery bool) error {
	r.locked = append(r.locked, recovery)
	return r.lockErr
}
func (r *fakeRollback) SetVirtualDevMode(on bool) error {
	if r.devModeErr != nil {
		return r.devModeErr
	}
	r.devMode = on
	return nil
}

// fakeFWMP returns a fixed set of flags.
type fakeFWMP struct {
	flags fwmp.Flags
	err   error
}

func (f fakeFWMP) Flags() (fwmp.Flags, error) { return f.flags, f.err }

// fakeECDriver implements ecdriver.Driver with every method beyond
// TrustEC a no-op; bootui only ever calls TrustEC on its EC
// collaborator.
type fakeECDriver struct {
	trusted    bool
	trustedErr error
}

func (d fakeECDriver) RunningRW(ecdriver.Device) (bool, error)      { return false, nil }
func (d fakeECDriver) HashImage(ecdriver.Device, ecdriver.Select) ([]byte, error) {
	return nil, nil
}
func (d fakeECDriver) ExpectedHash(ecdriver.Device, ecdriver.Select) ([]byte, error) {
	return nil, nil
}
func (d fakeECDriver) ExpectedImage(ecdriver.Device, ecdriver.Select) ([]byte, error) {
	return nil, nil
}
func (d fakeECDriver) UpdateImage(ecdriver.Device, ecdriver.Select, []byte) error { return nil }
func (d fakeECDriver) JumpToRW(ecdriver.Device) error                            { return nil }
func (d fakeECDriver) DisableJump(ecdriver.Device) error                         { return nil }
func (d fakeECDriver) Protect(ecdriver.Device, ecdriver.Select) error            { return nil }
func (d fakeECDriver) VbootDone(bool) error                                      { return nil }
func (d fakeECDriver) BatteryCutoff() error                                      { return nil }
func (d fakeECDriver) TrustEC() (bool, error)                                    { return d.trusted, d.trustedErr }

func newCtx() *bootctx.Context {
	return &bootctx.Context{NV: nvstore.NewMemStore()}
}

func baseCollab(keys []input.Key) (bootui.Collaborators, *fakeDisplay, *fakeInput, *fakeAudio, *fakeLoader, *fakeRollback) {
	disp := &fakeDisplay{}
	in := &fakeInput{keys: keys}
	aud := &fakeAudio{}
	loader := &fakeLoader{outcome: kernelloader.OutcomeNotFound}
	rb := &fakeRollback{}
	collab := bootui.Collaborators{
		Display:      disp,
		Input:        in,
		Audio:        aud,
		AudioPattern: audio.Pattern{Duration: time.Hour},
		Loader:       loader,
		Rollback:     rb,
		FWMP:         fakeFWMP{},
		EC:           fakeECDriver{trusted: true},
	}
	return collab, disp, in, aud, loader, rb
}

func (s *bootuiSuite) TestDeveloperModeNoDiskFoundWhenAllAttemptsFail(c *C) {
	collab, _, in, _, loader, _ := baseCollab([]input.Key{input.KeyCtrlD})
	in.shutdown = 0
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.NoDiskFound)
}

func (s *bootuiSuite) TestDeveloperModeDisableDevBootScreenConfirmYes(c *C) {
	collab, disp, _, aud, _, _ := baseCollab([]input.Key{input.KeyEnter})
	collab.FWMP = fakeFWMP{flags: fwmp.Flags{DisableBoot: true}}
	ctx := newCtx()

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.RebootRequired)
	c.Check(ctx.NV.Get(bootctx.NVDisableDevRequest), Equals, uint32(1))
	c.Check(aud.beeps, Equals, 0)
	found := false
	for _, id := range disp.screens {
		if id == display.ScreenToNorm {
			found = true
		}
	}
	c.Check(found, Equals, true)
}

func (s *bootuiSuite) TestDeveloperModeDisableDevBootScreenShutdown(c *C) {
	collab, _, in, _, _, _ := baseCollab(nil)
	in.shutdown = input.ShutdownLidClosed
	collab.FWMP = fakeFWMP{flags: fwmp.Flags{DisableBoot: true}}
	ctx := newCtx()

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.ShutdownRequested)
}

func (s *bootuiSuite) TestDeveloperModeForceDevSwitchOnOverridesFWMPDisable(c *C) {
	collab, _, _, _, loader, _ := baseCollab([]input.Key{input.KeyCtrlD})
	loader.outcome = kernelloader.OutcomeSuccess
	collab.FWMP = fakeFWMP{flags: fwmp.Flags{DisableBoot: true}}
	ctx := newCtx()
	ctx.GBB.ForceDevSwitchOn = true

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.Success)
}

func (s *bootuiSuite) TestDeveloperModeCtrlLTriesLegacyDistinctFromDisk(c *C) {
	collab, _, in, _, loader, _ := baseCollab([]input.Key{input.KeyCtrlL})
	in.shutdown = input.ShutdownLidClosed
	ctx := newCtx()
	ctx.NV.Set(bootctx.NVDevBootLegacy, 1)

	bootui.RunDeveloperMode(ctx, collab)
	c.Check(loader.legacyCalls, Equals, 1)
	c.Check(loader.calls, Equals, 0)
}

func (s *bootuiSuite) TestDeveloperModeCtrlUTriesUSBWhenAllowed(c *C) {
	collab, _, _, _, loader, _ := baseCollab([]input.Key{input.KeyCtrlU})
	loader.outcome = kernelloader.OutcomeSuccess
	ctx := newCtx()
	ctx.NV.Set(bootctx.NVDevBootUSB, 1)

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.Success)
}

func (s *bootuiSuite) TestDeveloperModeCtrlUBeepsWhenUSBDisallowed(c *C) {
	collab, _, in, aud, loader, _ := baseCollab([]input.Key{input.KeyCtrlU})
	in.shutdown = input.ShutdownLidClosed
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(aud.beeps > 0, Equals, true)
	c.Check(r.Code, Equals, result.ShutdownRequested)
}

func (s *bootuiSuite) TestDeveloperModeCtrlDGoesStraightToFallout(c *C) {
	collab, _, _, _, loader, rb := baseCollab([]input.Key{input.KeyCtrlD})
	loader.outcome = kernelloader.OutcomeSuccess
	ctx := newCtx()

	r := bootui.RunDeveloperMode(ctx, collab)
	c.Check(r.Code, Equals, result.Success)
	// fallout's default-boot=disk branch never calls RollbackKernelLock.
	c.Check(len(rb.locked), Equals, 0)
}

func (s *bootuiSuite) TestRecoveryModeAutomaticBrokenPersistsSubcodeAndPolls(c *C) {
	collab, disp, in, _, _, _ := baseCollab(nil)
	in.shutdown = input.ShutdownLidClosed
	ctx := newCtx()
	ctx.RecoveryReason = bootctx.RecoveryECUpdate

	r := bootui.RunRecoveryMode(ctx, collab)
	c.Check(r.Code, Equals, result.ShutdownRequested)
	c.Check(ctx.NV.Get(bootctx.NVRecoverySubcode), Equals, uint32(bootctx.RecoveryECUpdate))
	c.Check(disp.screens[0], Equals, display.ScreenOSBroken)
}

func (s *bootuiSuite) TestRecoveryModeManualFindsRemovableKernel(c *C) {
	collab, _, _, _, loader, _ := baseCollab(nil)
	loader.outcome = kernelloader.OutcomeSuccess
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = true

	r := bootui.RunRecoveryMode(ctx, collab)
	c.Check(r.Code, Equals, result.Success)
}

func (s *bootuiSuite) TestRecoveryModeManualClearsRecoveryRequestEachIteration(c *C) {
	collab, _, in, _, loader, _ := baseCollab(nil)
	in.shutdown = input.ShutdownLidClosed
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = true
	ctx.NV.Set(bootctx.NVRecoveryRequest, 1)

	bootui.RunRecoveryMode(ctx, collab)
	c.Check(ctx.NV.Get(bootctx.NVRecoveryRequest), Equals, uint32(0))
}

func (s *bootuiSuite) TestRecoveryModeManualShutdownViaPowerOffItem(c *C) {
	// Recovery items: To Dev(0), Debug Info(1), Power Off(2), Language(3).
	collab, _, _, _, loader, _ := baseCollab([]input.Key{input.KeyArrowDown, input.KeyArrowDown, input.KeyEnter})
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = true

	r := bootui.RunRecoveryMode(ctx, collab)
	c.Check(r.Code, Equals, result.ShutdownRequested)
}

func (s *bootuiSuite) TestRecoveryModeManualPollsKeyboardManyTimesBetweenDiskScans(c *C) {
	collab, _, in, _, loader, _ := baseCollab(nil)
	in.shutdownAfterReads = 10
	in.shutdown = input.ShutdownLidClosed
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = true

	r := bootui.RunRecoveryMode(ctx, collab)
	c.Check(r.Code, Equals, result.ShutdownRequested)
	// Reaching 10 keyboard reads at a 20ms cadence takes well under one
	// full 1000ms disk-scan interval. If polling only happened once per
	// scan (the old cadence), this would have needed 10 disk scans; with
	// interleaved 20ms polling it needs at most two.
	c.Check(in.readCalls >= 10, Equals, true)
	c.Check(loader.calls <= 2, Equals, true)
}

func (s *bootuiSuite) TestRecoveryModeToDevConfirmEnablesVirtualDevMode(c *C) {
	keys := []input.Key{
		input.KeyEnter,     // Recovery: "To Dev" is index 0 already -> switches to ToDev menu at "Power Off"
		input.KeyArrowUp,   // ToDev: "Power Off" -> "Cancel"
		input.KeyArrowUp,   // ToDev: "Cancel" -> "Confirm"
		input.KeyEnter,     // commits "Confirm"
	}
	collab, _, _, _, loader, rb := baseCollab(keys)
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = false
	ctx.Shared.BootRecSwitchOn = true
	ctx.Shared.HonorVirtDevSwitch = true
	ctx.Shared.BootRecSwitchVirtual = true

	r := bootui.RunRecoveryMode(ctx, collab)
	c.Check(r.Code, Equals, result.RebootRequired)
	c.Check(rb.devMode, Equals, true)
	c.Check(ctx.NV.Get(bootctx.NVDevBootUSB), Equals, uint32(1))
}

func (s *bootuiSuite) TestRecoveryModeToDevConfirmRefusedWithoutHonorFlag(c *C) {
	keys := []input.Key{
		input.KeyEnter,
		input.KeyArrowUp,
		input.KeyArrowUp,
		input.KeyEnter,
	}
	collab, _, in, _, loader, rb := baseCollab(keys)
	in.shutdown = input.ShutdownLidClosed
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = false
	ctx.Shared.BootRecSwitchOn = true
	ctx.Shared.HonorVirtDevSwitch = false

	bootui.RunRecoveryMode(ctx, collab)
	c.Check(rb.devMode, Equals, false)
}

func (s *bootuiSuite) TestRecoveryModeToDevConfirmRefusedWhenECNotTrusted(c *C) {
	keys := []input.Key{
		input.KeyEnter,
		input.KeyArrowUp,
		input.KeyArrowUp,
		input.KeyEnter,
	}
	collab, _, in, _, loader, rb := baseCollab(keys)
	collab.EC = fakeECDriver{trusted: false}
	in.shutdown = input.ShutdownLidClosed
	loader.outcome = kernelloader.OutcomeNotFound
	ctx := newCtx()
	ctx.Shared.BootDevSwitchOn = false
	ctx.Shared.BootRecSwitchOn = true
	ctx.Shared.HonorVirtDevSwitch = true
	ctx.Shared.BootRecSwitchVirtual = true

	bootui.RunRecoveryMode(ctx, collab)
	c.Check(rb.devMode, Equals, false)
}
