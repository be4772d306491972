package hotkey

import (
	"testing"
	"time"
)

type debounceRig struct {
	posted chan func()
	got    []EventKind
	d      *Debouncer
}

func newDebounceRig(window time.Duration) *debounceRig {
	r := &debounceRig{posted: make(chan func(), 8)}
	r.d = NewDebouncer(window, func(fn func()) error {
		r.posted <- fn
		return nil
	}, func(_ NativeShortcut, k EventKind) {
		r.got = append(r.got, k)
	})
	return r
}

// runPosted runs the next task the debouncer scheduled onto the loop.
func (r *debounceRig) runPosted(t *testing.T) {
	t.Helper()
	select {
	case fn := <-r.posted:
		fn()
	case <-time.After(time.Second):
		t.Fatal("debounce timer never fired")
	}
}

func (r *debounceRig) expectQuiet(t *testing.T, d time.Duration) {
	t.Helper()
	select {
	case fn := <-r.posted:
		fn()
		if len(r.got) > 0 {
			t.Fatalf("unexpected events %v", r.got)
		}
	case <-time.After(d):
	}
}

var debounceKey = NativeShortcut{Key: 0x1c, Mods: 0x4}

func TestDebouncePressRelease(t *testing.T) {
	r := newDebounceRig(10 * time.Millisecond)
	r.d.Press(debounceKey, 100)
	if len(r.got) != 1 || r.got[0] != EventActivated {
		t.Fatalf("press: got %v", r.got)
	}
	r.d.Release(debounceKey, 180)
	if !r.d.Pending(debounceKey) {
		t.Fatal("release should be pending")
	}
	r.runPosted(t)
	if len(r.got) != 2 || r.got[1] != EventReleased {
		t.Fatalf("release: got %v", r.got)
	}
	if r.d.Pending(debounceKey) {
		t.Fatal("still pending after release fired")
	}
}

func TestDebounceAutoRepeat(t *testing.T) {
	r := newDebounceRig(20 * time.Millisecond)
	r.d.Press(debounceKey, 100)
	// Held key: X11 reports release+press pairs sharing a timestamp.
	for ts := uint32(130); ts < 300; ts += 30 {
		r.d.Release(debounceKey, ts)
		r.d.Press(debounceKey, ts)
	}
	r.got = r.got[1:]
	r.expectQuiet(t, 60*time.Millisecond)

	r.d.Release(debounceKey, 400)
	r.runPosted(t)
	if len(r.got) != 1 || r.got[0] != EventReleased {
		t.Fatalf("got %v, want a single release", r.got)
	}
}

func TestDebounceQuickRepress(t *testing.T) {
	r := newDebounceRig(50 * time.Millisecond)
	r.d.Press(debounceKey, 100)
	r.d.Release(debounceKey, 150)
	r.d.Press(debounceKey, 160)
	want := []EventKind{EventActivated, EventActivated}
	if len(r.got) != len(want) || r.got[0] != want[0] || r.got[1] != want[1] {
		t.Fatalf("got %v, want %v", r.got, want)
	}
	if r.d.Pending(debounceKey) {
		t.Fatal("re-press should cancel the pending release")
	}
}

func TestDebounceStaleTimer(t *testing.T) {
	r := newDebounceRig(5 * time.Millisecond)
	r.d.Press(debounceKey, 1)
	r.d.Release(debounceKey, 2)
	fire := func() func() {
		select {
		case fn := <-r.posted:
			return fn
		case <-time.After(time.Second):
			t.Fatal("timer never fired")
		}
		return nil
	}()
	// A press lands between the timer firing and the loop running it.
	r.d.Press(debounceKey, 2)
	fire()
	if len(r.got) != 1 {
		t.Fatalf("stale release emitted: %v", r.got)
	}
}

func TestDebounceKeysIndependent(t *testing.T) {
	r := newDebounceRig(10 * time.Millisecond)
	other := NativeShortcut{Key: 0x1d}
	r.d.Press(debounceKey, 1)
	r.d.Press(other, 1)
	r.d.Release(debounceKey, 5)
	r.d.Press(other, 5)
	if r.d.Pending(other) || !r.d.Pending(debounceKey) {
		t.Fatal("state leaked between shortcuts")
	}
	if len(r.got) != 3 {
		t.Fatalf("got %v, want three activations", r.got)
	}
}

func TestDebounceStop(t *testing.T) {
	r := newDebounceRig(5 * time.Millisecond)
	r.d.Press(debounceKey, 1)
	r.d.Release(debounceKey, 2)
	r.d.Stop()
	r.got = nil
	r.expectQuiet(t, 30*time.Millisecond)
}
