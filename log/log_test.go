package log

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func setupLogDir(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	SetDir(tmp)
	t.Cleanup(func() { Close(); SetDir("") })
	return tmp
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestResolveDirFlag(t *testing.T) {
	got, err := ResolveDir("/tmp/hotkeyd-log")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hotkeyd-log" {
		t.Errorf("got %q, want /tmp/hotkeyd-log", got)
	}
}

func TestResolveDirFlagRelative(t *testing.T) {
	got, err := ResolveDir("logs")
	if err != nil {
		t.Fatal(err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join(wd, "logs")
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveDirEnv(t *testing.T) {
	t.Setenv("HOTKEYD_LOG_PATH", "/tmp/hotkeyd-env-log")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/hotkeyd-env-log" {
		t.Errorf("got %q, want /tmp/hotkeyd-env-log", got)
	}
}

func TestResolveDirFlagBeatsEnv(t *testing.T) {
	t.Setenv("HOTKEYD_LOG_PATH", "/tmp/from-env")
	got, err := ResolveDir("/tmp/from-flag")
	if err != nil {
		t.Fatal(err)
	}
	if got != "/tmp/from-flag" {
		t.Errorf("got %q, want /tmp/from-flag", got)
	}
}

func TestResolveDirDefault(t *testing.T) {
	t.Setenv("HOTKEYD_LOG_PATH", "")
	got, err := ResolveDir("")
	if err != nil {
		t.Fatal(err)
	}
	if got == "" {
		t.Error("expected non-empty default directory")
	}
}

func TestInitCreatesFiles(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"diagnostics_log.txt", "activations_log.txt"} {
		path := filepath.Join(tmp, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("%s not created: %v", name, err)
		}
	}
}

func TestActivationLine(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Activation("terminal", "Ctrl+Alt+T")

	line := readFile(t, filepath.Join(tmp, "activations_log.txt"))
	if !strings.Contains(line, "terminal\tCtrl+Alt+T") {
		t.Errorf("activations_log.txt missing binding, got: %q", line)
	}
	if strings.Count(line, "\t") != 3 {
		t.Errorf("expected 4 tab-separated fields, got: %q", line)
	}
}

func TestRegistrationAndLeak(t *testing.T) {
	tmp := setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}

	Registration("grab", 0x26, 0x4, nil)
	Registration("grab", 0x27, 0x4, errors.New("BadAccess"))
	Leak(0x26, 0x4, 2)
	Close()

	diag := readFile(t, filepath.Join(tmp, "diagnostics_log.txt"))
	for _, want := range []string{"native_shortcut", "keycode=0x26", "BadAccess", "leaked_shortcut", "handles=2"} {
		if !strings.Contains(diag, want) {
			t.Errorf("diagnostics_log.txt missing %q:\n%s", want, diag)
		}
	}
}

func TestLoggingBeforeInitIsNoop(t *testing.T) {
	setupLogDir(t)
	Warnf("dropped %d", 1)
	Activation("x", "y")
	Leak(1, 2, 3)
}

func TestCloseIdempotent(t *testing.T) {
	setupLogDir(t)

	if err := Init(); err != nil {
		t.Fatal(err)
	}
	Close()
	Close() // should not panic
}
