// Package platform installs the native hotkey backend for the build target
// as the process-wide default. Import it for its side effect, or call New to
// pick a backend by name.
package platform

import (
	"fmt"
	"os"
	"runtime"
	"slices"
	"strings"

	"hotkeyd/hotkey"
)

func init() {
	hotkey.UseBackend(func() (hotkey.Backend, error) { return New("") })
}

// New returns the named backend. An empty name falls back to
// HOTKEYD_BACKEND and then to the target's default.
func New(name string) (hotkey.Backend, error) {
	if name == "" {
		name = os.Getenv("HOTKEYD_BACKEND")
	}
	if name == "" {
		name = defaultBackend
	}
	if name == "fake" {
		return hotkey.NewFake(), nil
	}
	ctor, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: no %q backend on %s (available: %s)",
			hotkey.ErrUnsupported, name, runtime.GOOS, strings.Join(Names(), ", "))
	}
	b := ctor()
	if err := b.Supported(); err != nil {
		return nil, err
	}
	return b, nil
}

// Names lists the backends New accepts on this target.
func Names() []string {
	names := []string{"fake"}
	for n := range backends {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
