package hotkey

import "context"

// RawKind classifies a native event as reported by a backend.
type RawKind uint8

const (
	// RawPress and RawRelease come from event streams that report every key
	// transition (X11). They are filtered through the Debouncer.
	RawPress RawKind = iota + 1
	RawRelease
	// RawActivate and RawDeactivate come from APIs that already report a
	// "hotkey fired" event (Win32 WM_HOTKEY, Carbon hotkey events).
	RawActivate
	RawDeactivate
)

func (k RawKind) String() string {
	switch k {
	case RawPress:
		return "press"
	case RawRelease:
		return "release"
	case RawActivate:
		return "activate"
	case RawDeactivate:
		return "deactivate"
	}
	return "unknown"
}

// RawEvent is one native key event, already reduced to the shortcut it
// matches. Time is the OS event timestamp when the platform provides one.
type RawEvent struct {
	Kind     RawKind
	Shortcut NativeShortcut
	Time     uint32
}

type Translator interface {
	Translate(key Key, mods Modifier) (NativeShortcut, error)
}

// Registrar performs exactly one native grab or ungrab per call. Callers are
// responsible for deduplication.
type Registrar interface {
	Register(s NativeShortcut) error
	Unregister(s NativeShortcut) error
}

// Backend is the native side of a Registry. Open, Translate, Register,
// Unregister, Pump and Close are only ever called on the owning thread; Wake
// may be called from any goroutine.
type Backend interface {
	Translator
	Registrar

	Name() string
	// Supported reports whether the backend can work in this session.
	Supported() error
	Open() error
	// Pump runs the native event loop until ctx is done. It passes every
	// native key event to handle and calls drain whenever Wake was called.
	// Wakes issued after Open but before Pump starts must not be lost.
	Pump(ctx context.Context, handle func(RawEvent) bool, drain func()) error
	Wake()
	Close() error
}

// ChanPump is a Pump for backends whose native events already arrive on a
// Go channel.
type ChanPump struct {
	wake chan struct{}
}

func NewChanPump() *ChanPump {
	return &ChanPump{wake: make(chan struct{}, 1)}
}

func (p *ChanPump) Wake() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *ChanPump) Run(ctx context.Context, events <-chan RawEvent, handle func(RawEvent) bool, drain func()) error {
	drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.wake:
			drain()
		case ev, ok := <-events:
			if !ok {
				return ErrLoopNotRunning
			}
			handle(ev)
		}
	}
}
