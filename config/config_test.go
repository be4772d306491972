package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"hotkeyd/hotkey"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "bindings.yaml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Bindings) != len(Default().Bindings) {
		t.Fatalf("got %d bindings", len(cfg.Bindings))
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Bindings[0].Name != cfg.Bindings[0].Name {
		t.Fatal("saved defaults did not load back")
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
bindings:
  - name: terminal
    keys: Ctrl+Alt+T
    command: xterm
  - name: stamp
    keys: meta+f5
    copy: "2026-01-01"
    hold: date
    long_press: 600ms
    enabled: false
`))
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Bindings) != 2 {
		t.Fatalf("got %d bindings", len(cfg.Bindings))
	}
	term, stamp := cfg.Bindings[0], cfg.Bindings[1]
	if !term.IsEnabled() || stamp.IsEnabled() {
		t.Error("enabled defaults wrong")
	}
	if stamp.LongPress != 600*time.Millisecond || stamp.Hold != "date" {
		t.Errorf("stamp = %+v", stamp)
	}
	c, err := stamp.Combo()
	if err != nil {
		t.Fatal(err)
	}
	if c != (hotkey.Combo{Key: hotkey.KeyF5, Mods: hotkey.ModMeta}) {
		t.Errorf("combo = %v", c)
	}
}

func TestValidate(t *testing.T) {
	_, err := Parse([]byte(`
bindings:
  - name: a
    keys: Ctrl+A
  - name: a
    keys: Ctrl+B
  - name: chord
    keys: Ctrl+K, Ctrl+C
  - keys: Ctrl+D
`))
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"duplicate name", "binding 4: missing name"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
	if !errors.Is(err, hotkey.ErrMultiChord) {
		t.Errorf("multi-chord binding not reported: %v", err)
	}
}

func TestResolvePath(t *testing.T) {
	t.Setenv("HOTKEYD_CONFIG", "/tmp/env.yaml")
	if p, _ := ResolvePath("/tmp/flag.yaml"); p != "/tmp/flag.yaml" {
		t.Errorf("flag: got %q", p)
	}
	if p, _ := ResolvePath(""); p != "/tmp/env.yaml" {
		t.Errorf("env: got %q", p)
	}
	t.Setenv("HOTKEYD_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	p, err := ResolvePath("")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(p, filepath.Join("hotkeyd", "bindings.yaml")) {
		t.Errorf("default: got %q", p)
	}
}

func TestWatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bindings.yaml")
	if err := Default().Save(path); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { got <- c }); err != nil {
		t.Fatal(err)
	}

	// Broken files are skipped.
	if err := os.WriteFile(path, []byte("bindings: [{name: x, keys: Ctrl+Nope}]"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(3 * settle)

	next := &Config{Bindings: []Binding{{Name: "only", Keys: "Alt+O"}}}
	if err := next.Save(path); err != nil {
		t.Fatal(err)
	}
	select {
	case c := <-got:
		if len(c.Bindings) != 1 || c.Bindings[0].Name != "only" {
			t.Fatalf("reloaded %+v", c.Bindings)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload after save")
	}
}
