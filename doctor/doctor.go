// Package doctor checks that global shortcuts can work on this machine.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/atotto/clipboard"

	"hotkeyd/hotkey"
	"hotkeyd/hotkey/platform"
	"hotkeyd/synth"
)

// DefaultProbe is unlikely to be taken by a desktop environment.
const DefaultProbe = "Ctrl+Alt+Shift+F9"

const selfTestTimeout = 10 * time.Second

type Options struct {
	Backend   string // empty picks the platform default
	Probe     string
	SelfTest  bool // synthesize the probe and wait for it to fire
	Clipboard bool // round-trip the clipboard used by copy actions
	Out       io.Writer

	newBackend func(name string) (hotkey.Backend, error)
	press      func(hotkey.Combo) error
}

type doctor struct {
	opts  Options
	out   io.Writer
	reg   *hotkey.Registry
	combo hotkey.Combo
	step  int
	steps int

	synthesized bool
}

// Run executes the diagnostic checks and returns an exit code (0=all pass, 1=any fail).
func Run(opts Options) int {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Probe == "" {
		opts.Probe = DefaultProbe
	}
	if opts.newBackend == nil {
		opts.newBackend = platform.New
	}
	synthesized := opts.press == nil
	if synthesized {
		opts.press = synth.Tap
	}

	restore := saveTerminal()
	defer restore()
	setupInterruptHandler(restore)

	d := &doctor{opts: opts, out: opts.Out, steps: 4, synthesized: synthesized}
	if opts.Clipboard {
		d.steps++
	}
	if opts.SelfTest {
		d.steps++
	}

	fmt.Fprintln(d.out, "hotkeyd doctor - system diagnostics")
	fmt.Fprintln(d.out, "===================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer func() {
		cancel()
		if d.reg != nil {
			<-d.reg.Done()
		}
	}()

	checks := []func(context.Context) bool{d.checkBackend, d.checkTranslate, d.checkRegister, d.checkCaptured}
	if opts.Clipboard {
		checks = append(checks, d.checkClipboard)
	}
	if opts.SelfTest {
		checks = append(checks, d.checkSelfTest)
	}

	allPass := true
	for _, check := range checks {
		if !check(ctx) {
			allPass = false
			break
		}
	}

	fmt.Fprintln(d.out)
	if allPass {
		fmt.Fprintln(d.out, "All checks passed!")
		return 0
	}
	fmt.Fprintln(d.out, "Some checks failed. See details above.")
	return 1
}

func (d *doctor) header(title string) {
	d.step++
	fmt.Fprintln(d.out)
	fmt.Fprintf(d.out, "[%d/%d] %s\n", d.step, d.steps, title)
}

func (d *doctor) pass(format string, args ...any) bool {
	fmt.Fprintf(d.out, "  PASS: "+format+"\n", args...)
	return true
}

func (d *doctor) fail(format string, args ...any) bool {
	fmt.Fprintf(d.out, "  FAIL: "+format+"\n", args...)
	return false
}

func (d *doctor) checkBackend(ctx context.Context) bool {
	d.header("Native backend")
	c, err := hotkey.ParseCombo(d.opts.Probe)
	if err != nil {
		return d.fail("probe combo %q: %v", d.opts.Probe, err)
	}
	d.combo = c

	b, err := d.opts.newBackend(d.opts.Backend)
	if err != nil {
		return d.fail("%v", err)
	}
	reg := hotkey.NewRegistry(b)
	if err := reg.Start(ctx); err != nil {
		return d.fail("open %s backend: %v", b.Name(), err)
	}
	d.reg = reg
	return d.pass("%s backend opened", b.Name())
}

func (d *doctor) checkTranslate(context.Context) bool {
	d.header("Key translation")
	first, err := d.reg.Translate(d.combo.Key, d.combo.Mods)
	if err != nil {
		return d.fail("%s: %v", d.combo, err)
	}
	if !first.Valid() {
		return d.fail("%s translated to an invalid shortcut", d.combo)
	}
	second, err := d.reg.Translate(d.combo.Key, d.combo.Mods)
	if err != nil || second != first {
		return d.fail("%s is not stable: %s then %s (%v)", d.combo, first, second, err)
	}
	return d.pass("%s -> %s", d.combo, first)
}

func (d *doctor) checkRegister(context.Context) bool {
	d.header("Register and unregister")
	h, err := d.reg.Bind(d.combo.Key, d.combo.Mods)
	if err != nil {
		return d.fail("register %s: %v (another program may own it; try -probe)", d.combo, err)
	}
	defer h.Close()
	if !h.IsRegistered() {
		return d.fail("%s is %s after registering", d.combo, h.Status())
	}
	if err := h.SetRegistered(false); err != nil {
		return d.fail("unregister %s: %v", d.combo, err)
	}
	return d.pass("%s grabbed and released", d.combo)
}

func (d *doctor) checkCaptured(context.Context) bool {
	d.header("Capture query")
	if d.reg.IsKeyCaptured(d.combo.Key, d.combo.Mods) {
		return d.fail("%s reported captured with no handle", d.combo)
	}
	h, err := d.reg.Bind(d.combo.Key, d.combo.Mods)
	if err != nil {
		return d.fail("register %s: %v", d.combo, err)
	}
	captured := d.reg.IsKeyCaptured(d.combo.Key, d.combo.Mods)
	h.Close()
	if !captured {
		return d.fail("%s not reported captured while registered", d.combo)
	}
	if d.reg.IsKeyCaptured(d.combo.Key, d.combo.Mods) {
		return d.fail("%s still reported captured after close", d.combo)
	}
	return d.pass("capture state follows registration")
}

func (d *doctor) checkClipboard(context.Context) bool {
	d.header("Clipboard (copy actions)")
	if clipboard.Unsupported {
		return d.fail("no clipboard utility found (install xclip, xsel or wl-clipboard)")
	}
	prev, _ := clipboard.ReadAll()
	defer clipboard.WriteAll(prev)

	const probe = "hotkeyd-doctor-test"
	if err := clipboard.WriteAll(probe); err != nil {
		return d.fail("write: %v", err)
	}
	got, err := clipboard.ReadAll()
	if err != nil {
		return d.fail("read: %v", err)
	}
	if got != probe {
		return d.fail("read back %q, want %q", got, probe)
	}
	return d.pass("clipboard round trip")
}

func (d *doctor) checkSelfTest(context.Context) bool {
	d.header("Self-test (synthesized key press)")
	if d.synthesized && !synth.Supported(d.combo) {
		return d.fail("%s cannot be synthesized", d.combo)
	}
	h, err := d.reg.Bind(d.combo.Key, d.combo.Mods)
	if err != nil {
		return d.fail("register %s: %v", d.combo, err)
	}
	defer h.Close()
	// Skip the RegisteredChanged event.
	<-h.Events()

	fmt.Fprintf(d.out, "  Sending %s...\n", d.combo)
	if err := d.opts.press(d.combo); err != nil {
		return d.fail("synthesize %s: %v", d.combo, err)
	}

	timeout := time.After(selfTestTimeout)
	for {
		select {
		case ev, ok := <-h.Events():
			if !ok {
				return d.fail("handle closed")
			}
			if ev.Kind() == hotkey.EventActivated {
				return d.pass("%s activated", d.combo)
			}
		case <-timeout:
			return d.fail("timeout waiting for %s", d.combo)
		}
	}
}
