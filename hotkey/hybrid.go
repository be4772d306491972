package hotkey

import (
	"time"

	"hotkeyd/log"
)

type Gesture string

const (
	GestureTap  Gesture = "tap"
	GestureHold Gesture = "hold"
)

// DefaultLongPress is the hold threshold used when none is configured.
const DefaultLongPress = 400 * time.Millisecond

// Hybrid classifies the presses of one handle as taps or holds, so a single
// key combination can carry two actions. A press released before longPress
// is a tap; one still held when longPress elapses is a hold, reported as
// soon as the threshold passes.
type Hybrid struct {
	gestures chan Gesture
}

// NewHybrid consumes events until the channel is closed, then closes
// Gestures. Registration changes are ignored.
func NewHybrid(events <-chan Event, longPress time.Duration) *Hybrid {
	if longPress <= 0 {
		longPress = DefaultLongPress
	}
	h := &Hybrid{gestures: make(chan Gesture, 4)}
	go h.run(events, longPress)
	return h
}

func (h *Hybrid) Gestures() <-chan Gesture { return h.gestures }

type hybridState int

const (
	hyIdle hybridState = iota
	hyDown
	hyHeld
)

func (h *Hybrid) run(events <-chan Event, longPress time.Duration) {
	defer close(h.gestures)
	state := hyIdle
	timer := time.NewTimer(longPress)
	if !timer.Stop() {
		<-timer.C
	}
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				timer.Stop()
				return
			}
			switch ev.Kind() {
			case EventActivated:
				if state == hyIdle {
					state = hyDown
					timer.Reset(longPress)
				}
			case EventReleased:
				if state == hyDown {
					timer.Stop()
					h.emit(GestureTap)
				}
				state = hyIdle
			}
		case <-timer.C:
			if state == hyDown {
				state = hyHeld
				h.emit(GestureHold)
			}
		}
	}
}

func (h *Hybrid) emit(g Gesture) {
	select {
	case h.gestures <- g:
	default:
		log.Warnf("gesture buffer full, dropping %s", g)
	}
}
