package hotkey

import (
	"time"

	"hotkeyd/log"
)

// Dispatcher receives native events on the owning thread, matches them
// against the table and queues notifications for every enabled handle.
type Dispatcher struct {
	table     *Table
	loop      *Loop
	debouncer *Debouncer
	seq       uint64
}

func newDispatcher(table *Table, loop *Loop, window time.Duration) *Dispatcher {
	d := &Dispatcher{table: table, loop: loop}
	d.debouncer = NewDebouncer(window, loop.Post, d.notify)
	return d
}

// OnNativeEvent handles one raw event. It never consumes the event, so it
// always returns false.
func (d *Dispatcher) OnNativeEvent(ev RawEvent) bool {
	if !ev.Shortcut.Valid() || !d.table.Contains(ev.Shortcut) {
		return false
	}
	switch ev.Kind {
	case RawPress:
		d.debouncer.Press(ev.Shortcut, ev.Time)
	case RawRelease:
		d.debouncer.Release(ev.Shortcut, ev.Time)
	case RawActivate:
		d.notify(ev.Shortcut, EventActivated)
	case RawDeactivate:
		d.notify(ev.Shortcut, EventReleased)
	}
	return false
}

// notify queues delivery instead of sending inline, so a handle with a full
// buffer cannot hold up the pump or the handles after it.
func (d *Dispatcher) notify(s NativeShortcut, kind EventKind) {
	at := time.Now()
	for _, h := range d.table.Handles(s) {
		if !h.Enabled() {
			continue
		}
		d.seq++
		ev := Event{kind: kind, registered: true, at: at, seq: d.seq}
		if err := d.loop.Post(func() { h.deliver(ev) }); err != nil {
			log.Warnf("dropping %s for %s: %v", kind, s, err)
		}
	}
}
