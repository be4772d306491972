package doctor

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"hotkeyd/hotkey"
)

func fakeOptions(f *hotkey.FakeBackend, out *bytes.Buffer) Options {
	return Options{
		Out:        out,
		newBackend: func(string) (hotkey.Backend, error) { return f, nil },
		press: func(c hotkey.Combo) error {
			f.SimActivate(f.Shortcut(c.Key, c.Mods))
			return nil
		},
	}
}

func TestRunPasses(t *testing.T) {
	var out bytes.Buffer
	opts := fakeOptions(hotkey.NewFake(), &out)
	opts.SelfTest = true
	if code := Run(opts); code != 0 {
		t.Fatalf("exit code %d\n%s", code, out.String())
	}
	for _, want := range []string{"[1/5] Native backend", "PASS: fake backend opened", "[5/5] Self-test", "All checks passed!"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q\n%s", want, out.String())
		}
	}
}

func TestRunBackendUnavailable(t *testing.T) {
	var out bytes.Buffer
	opts := fakeOptions(hotkey.NewFake(), &out)
	opts.newBackend = func(string) (hotkey.Backend, error) {
		return nil, hotkey.ErrUnsupported
	}
	if code := Run(opts); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if strings.Contains(out.String(), "[2/4]") {
		t.Errorf("checks continued after backend failure\n%s", out.String())
	}
}

func TestRunProbeTaken(t *testing.T) {
	var out bytes.Buffer
	f := hotkey.NewFake()
	c, err := hotkey.ParseCombo(DefaultProbe)
	if err != nil {
		t.Fatal(err)
	}
	f.Refuse(f.Shortcut(c.Key, c.Mods), errors.New("BadAccess"))
	if code := Run(fakeOptions(f, &out)); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
	if !strings.Contains(out.String(), "FAIL: register "+c.String()) {
		t.Errorf("missing register failure\n%s", out.String())
	}
}

func TestRunBadProbe(t *testing.T) {
	var out bytes.Buffer
	opts := fakeOptions(hotkey.NewFake(), &out)
	opts.Probe = "Ctrl+Nope"
	if code := Run(opts); code != 1 {
		t.Fatalf("exit code %d, want 1", code)
	}
}
