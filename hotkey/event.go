package hotkey

import "time"

type EventKind uint8

const (
	EventActivated EventKind = iota + 1
	EventReleased
	EventRegisteredChanged
)

func (k EventKind) String() string {
	switch k {
	case EventActivated:
		return "activated"
	case EventReleased:
		return "released"
	case EventRegisteredChanged:
		return "registered_changed"
	}
	return "unknown"
}

// Event is a notification delivered on Handle.Events. Its fields are
// unexported so only this package can produce one.
type Event struct {
	kind       EventKind
	registered bool
	at         time.Time
	seq        uint64 // dispatch order within a registry
}

func (e Event) Kind() EventKind { return e.kind }

// Registered is the handle's registration state when the event was produced.
func (e Event) Registered() bool { return e.registered }

func (e Event) Time() time.Time { return e.at }
