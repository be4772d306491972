package hotkey

import "time"

// DefaultDebounce is the window a release waits for a matching press before
// it is treated as a real key-up.
const DefaultDebounce = 50 * time.Millisecond

type debounceState int

const (
	stIdle debounceState = iota
	stPressed
	stReleasePending
)

type keyState struct {
	state    debounceState
	last     RawKind
	lastTime uint32
	gen      uint64
	timer    *time.Timer
}

func (k *keyState) cancel() {
	k.gen++
	if k.timer != nil {
		k.timer.Stop()
		k.timer = nil
	}
}

// Debouncer turns a raw press/release stream into activated/released
// notifications. Auto-repeat on a held key produces release+press pairs
// with identical timestamps; those must not look like the key going up.
// State is kept per native shortcut and is only touched on the owning thread.
type Debouncer struct {
	window time.Duration
	post   func(func()) error
	emit   func(NativeShortcut, EventKind)
	keys   map[NativeShortcut]*keyState
}

// NewDebouncer creates a debouncer. post schedules work back onto the owning
// thread and emit receives the filtered notifications.
func NewDebouncer(window time.Duration, post func(func()) error, emit func(NativeShortcut, EventKind)) *Debouncer {
	if window <= 0 {
		window = DefaultDebounce
	}
	return &Debouncer{
		window: window,
		post:   post,
		emit:   emit,
		keys:   make(map[NativeShortcut]*keyState),
	}
}

func (d *Debouncer) key(s NativeShortcut) *keyState {
	k, ok := d.keys[s]
	if !ok {
		k = &keyState{}
		d.keys[s] = k
	}
	return k
}

func (d *Debouncer) Press(s NativeShortcut, t uint32) {
	k := d.key(s)
	noise := k.last == RawRelease && k.lastTime == t
	k.cancel()
	k.last, k.lastTime = RawPress, t
	k.state = stPressed
	if noise {
		return
	}
	d.emit(s, EventActivated)
}

func (d *Debouncer) Release(s NativeShortcut, t uint32) {
	k := d.key(s)
	k.cancel()
	k.last, k.lastTime = RawRelease, t
	k.state = stReleasePending
	gen := k.gen
	k.timer = time.AfterFunc(d.window, func() {
		// A stopped loop drops the pending release along with everything else.
		_ = d.post(func() { d.fire(s, gen) })
	})
}

func (d *Debouncer) fire(s NativeShortcut, gen uint64) {
	k, ok := d.keys[s]
	if !ok || k.gen != gen || k.state != stReleasePending {
		return
	}
	k.timer = nil
	delete(d.keys, s)
	d.emit(s, EventReleased)
}

// Pending reports whether a release for s is waiting out the window.
func (d *Debouncer) Pending(s NativeShortcut) bool {
	k, ok := d.keys[s]
	return ok && k.state == stReleasePending
}

func (d *Debouncer) Stop() {
	for s, k := range d.keys {
		k.cancel()
		delete(d.keys, s)
	}
}
