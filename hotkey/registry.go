package hotkey

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"hotkeyd/log"
)

// Registry owns the native side: the backend, the reference-counted table,
// the dispatcher and the owning loop. Use one per process.
type Registry struct {
	backend    Backend
	loop       *Loop
	table      *Table
	dispatcher *Dispatcher
	buffer     int

	ready    chan struct{}
	done     chan struct{}
	startErr error
	runOnce  sync.Once
}

type Option func(*Registry, *options)

type options struct {
	debounce time.Duration
}

// WithDebounce sets the release debounce window for press/release backends.
func WithDebounce(d time.Duration) Option {
	return func(_ *Registry, o *options) { o.debounce = d }
}

// WithEventBuffer sets the capacity of every handle's event channel.
func WithEventBuffer(n int) Option {
	return func(r *Registry, _ *options) {
		if n > 0 {
			r.buffer = n
		}
	}
}

func NewRegistry(b Backend, opts ...Option) *Registry {
	r := &Registry{
		backend: b,
		buffer:  DefaultEventBuffer,
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
	}
	o := options{debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(r, &o)
	}
	r.loop = newLoop(b.Wake)
	r.table = NewTable(b)
	r.dispatcher = newDispatcher(r.table, r.loop, o.debounce)
	return r
}

func (r *Registry) Backend() string { return r.backend.Name() }

// Run makes the calling goroutine the owning thread and pumps native events
// until ctx is done. On return every grab left in the table has been
// released and logged as a leak.
func (r *Registry) Run(ctx context.Context) error {
	err := ErrLoopNotRunning
	r.runOnce.Do(func() { err = r.run(ctx) })
	return err
}

func (r *Registry) run(ctx context.Context) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(r.done)

	r.loop.bind()
	defer r.loop.unbind()
	if err := r.backend.Open(); err != nil {
		r.startErr = fmt.Errorf("open %s backend: %w", r.backend.Name(), err)
		r.loop.stop()
		close(r.ready)
		return r.startErr
	}
	r.loop.start()
	close(r.ready)
	log.Infof("hotkey loop started (backend %s)", r.backend.Name())

	err := r.backend.Pump(ctx, r.dispatcher.OnNativeEvent, r.loop.drain)

	r.loop.stop()
	r.dispatcher.debouncer.Stop()
	if n := r.table.Teardown(); n > 0 {
		log.Warnf("hotkey registry shut down with %d registered shortcut(s)", n)
	}
	if cerr := r.backend.Close(); cerr != nil && err == nil {
		err = cerr
	}
	log.Info("hotkey loop stopped")
	return err
}

// Start runs the registry on a new goroutine and returns once the backend
// is open and calls can be marshalled.
func (r *Registry) Start(ctx context.Context) error {
	go func() {
		if err := r.Run(ctx); err != nil {
			log.Errorf("hotkey loop: %v", err)
		}
	}()
	<-r.ready
	return r.startErr
}

// Done is closed once Run has returned.
func (r *Registry) Done() <-chan struct{} { return r.done }

// waitStopped blocks until a registry that got past Start has torn down.
// A registry that was never started has nothing to wait for.
func (r *Registry) waitStopped() {
	select {
	case <-r.ready:
		<-r.done
	default:
	}
}

// NewHandle creates an unresolved, unregistered handle.
func (r *Registry) NewHandle() *Handle {
	return newHandle(r, r.buffer)
}

// Bind creates a handle for key+mods and registers it.
func (r *Registry) Bind(key Key, mods Modifier) (*Handle, error) {
	h := r.NewHandle()
	if err := h.SetShortcut(key, mods, true); err != nil {
		h.Close()
		return nil, err
	}
	return h, nil
}

// Translate resolves key+mods on the owning thread without registering.
func (r *Registry) Translate(key Key, mods Modifier) (NativeShortcut, error) {
	var s NativeShortcut
	err := r.do(func() error {
		var err error
		s, err = r.backend.Translate(key, mods)
		return err
	})
	return s, err
}

// IsKeyCaptured reports whether key+mods is currently grabbed by any handle
// of this registry.
func (r *Registry) IsKeyCaptured(key Key, mods Modifier) bool {
	captured := false
	r.do(func() error {
		s, err := r.backend.Translate(key, mods)
		if err != nil || !s.Valid() {
			return err
		}
		captured = r.table.Contains(s)
		return nil
	})
	return captured
}

// Captured returns every grabbed shortcut with its handle count.
func (r *Registry) Captured() (map[NativeShortcut]int, error) {
	var out map[NativeShortcut]int
	err := r.do(func() error {
		out = r.table.Captured()
		return nil
	})
	return out, err
}

func (r *Registry) do(fn func() error) error {
	var err error
	if cerr := r.loop.Call(func() { err = fn() }); cerr != nil {
		return cerr
	}
	return err
}

func (r *Registry) add(h *Handle) error {
	if err := r.table.Add(h); err != nil {
		return err
	}
	h.deliver(Event{kind: EventRegisteredChanged, registered: true, at: time.Now()})
	return nil
}

func (r *Registry) remove(h *Handle) error {
	was := h.Status() == StatusRegistered
	err := r.table.Remove(h)
	if was && h.Status() != StatusRegistered {
		h.deliver(Event{kind: EventRegisteredChanged, registered: false, at: time.Now()})
	}
	return err
}
