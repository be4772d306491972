package hotkey

import (
	"context"
	"sync"

	"hotkeyd/log"
)

// BackendFactory opens the platform backend for the process-wide registry.
type BackendFactory func() (Backend, error)

var (
	defaultMu      sync.Mutex
	defaultFactory BackendFactory
	defaultReg     *Registry
	defaultCancel  context.CancelFunc
)

// UseBackend installs the factory Default uses to create the process-wide
// registry. The platform package calls it from init.
func UseBackend(f BackendFactory) {
	defaultMu.Lock()
	defaultFactory = f
	defaultMu.Unlock()
}

// SetDefault makes r the process-wide registry. r must already be running.
func SetDefault(r *Registry) {
	defaultMu.Lock()
	defaultReg = r
	defaultMu.Unlock()
}

// Default returns the process-wide registry, creating and starting it on
// first use. Without an installed backend no hotkey can ever work, so this
// panics instead of returning an error.
func Default() *Registry {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg != nil {
		return defaultReg
	}
	if defaultFactory == nil {
		panic("hotkey: no native backend installed; import hotkeyd/hotkey/platform or call SetDefault")
	}
	b, err := defaultFactory()
	if err != nil {
		panic("hotkey: creating native backend: " + err.Error())
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRegistry(b)
	if err := r.Start(ctx); err != nil {
		// Calls on this registry report ErrLoopNotRunning.
		log.Errorf("hotkey: %v", err)
	}
	defaultReg, defaultCancel = r, cancel
	return r
}

// New creates a handle on the process-wide registry.
func New() *Handle {
	return Default().NewHandle()
}

// IsKeyCaptured asks the process-wide registry.
func IsKeyCaptured(key Key, mods Modifier) bool {
	return Default().IsKeyCaptured(key, mods)
}

// Shutdown stops the process-wide registry created by Default and waits for
// its teardown.
func Shutdown() {
	defaultMu.Lock()
	r, cancel := defaultReg, defaultCancel
	defaultReg, defaultCancel = nil, nil
	defaultMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-r.Done()
}
