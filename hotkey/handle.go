package hotkey

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"hotkeyd/log"
)

type Status int

const (
	StatusUnresolved Status = iota
	StatusResolved
	StatusRegistered
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusRegistered:
		return "registered"
	}
	return "unresolved"
}

// DefaultEventBuffer is the capacity of a handle's event channel.
const DefaultEventBuffer = 16

// Handle is one logical hotkey. It is safe for concurrent use; every
// mutating call runs on the registry's owning thread.
type Handle struct {
	reg *Registry

	mu       sync.RWMutex
	key      Key
	mods     Modifier
	shortcut NativeShortcut
	status   Status

	enabled atomic.Bool
	closed  atomic.Bool
	events  chan Event
}

func newHandle(r *Registry, buffer int) *Handle {
	h := &Handle{
		reg:    r,
		events: make(chan Event, buffer),
	}
	h.enabled.Store(true)
	return h
}

// Events delivers activations, releases and registration changes. The
// channel is closed by Close.
func (h *Handle) Events() <-chan Event { return h.events }

func (h *Handle) Key() Key {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key
}

func (h *Handle) Modifiers() Modifier {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.mods
}

func (h *Handle) Combo() Combo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Combo{Key: h.key, Mods: h.mods}
}

func (h *Handle) Shortcut() NativeShortcut {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.shortcut
}

func (h *Handle) Status() Status {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.status
}

func (h *Handle) IsRegistered() bool { return h.Status() == StatusRegistered }

func (h *Handle) Enabled() bool { return h.enabled.Load() }

// SetEnabled toggles delivery. A disabled handle stays registered and keeps
// its grab; it just receives nothing.
func (h *Handle) SetEnabled(on bool) { h.enabled.Store(on) }

func (h *Handle) setStatus(s Status) {
	h.mu.Lock()
	h.status = s
	h.mu.Unlock()
}

func (h *Handle) set(key Key, mods Modifier, s NativeShortcut, st Status) {
	h.mu.Lock()
	h.key, h.mods, h.shortcut, h.status = key, mods, s, st
	h.mu.Unlock()
}

// SetShortcut binds the handle to key+mods. A registered handle is only
// rebound when autoRegister is set; it is then removed from its old entry
// before the new one is resolved. With autoRegister the new shortcut is
// registered right away. KeyUnknown clears the shortcut.
func (h *Handle) SetShortcut(key Key, mods Modifier, autoRegister bool) error {
	return h.reg.do(func() error { return h.setShortcut(key, mods, autoRegister) })
}

func (h *Handle) SetCombo(c Combo, autoRegister bool) error {
	return h.SetShortcut(c.Key, c.Mods, autoRegister)
}

func (h *Handle) setShortcut(key Key, mods Modifier, autoRegister bool) error {
	if h.closed.Load() {
		return ErrClosed
	}
	if h.Status() == StatusRegistered {
		if !autoRegister {
			return ErrAlreadyRegistered
		}
		if err := h.reg.remove(h); err != nil && !errors.Is(err, ErrUnregister) {
			return err
		}
	}

	if key == KeyUnknown {
		h.set(KeyUnknown, ModNone, NativeShortcut{}, StatusUnresolved)
		return nil
	}

	s, err := h.reg.backend.Translate(key, mods)
	if err == nil && !s.Valid() {
		err = ErrTranslation
	}
	if err != nil {
		log.Warnf("unable to map %s to native keys: %v", Combo{Key: key, Mods: mods}, err)
		h.set(KeyUnknown, ModNone, NativeShortcut{}, StatusUnresolved)
		if !errors.Is(err, ErrTranslation) {
			err = fmt.Errorf("%w: %w", ErrTranslation, err)
		}
		return err
	}

	h.set(key, mods, s, StatusResolved)
	if autoRegister {
		return h.reg.add(h)
	}
	return nil
}

// ResetShortcut unregisters the handle if needed and clears its shortcut.
func (h *Handle) ResetShortcut() error {
	return h.reg.do(func() error {
		if h.Status() == StatusRegistered {
			if err := h.reg.remove(h); err != nil && !errors.Is(err, ErrUnregister) {
				return err
			}
		}
		h.set(KeyUnknown, ModNone, NativeShortcut{}, StatusUnresolved)
		return nil
	})
}

// SetRegistered adds or removes the handle. Asking for the current state
// is a no-op.
func (h *Handle) SetRegistered(on bool) error {
	return h.reg.do(func() error {
		if h.closed.Load() {
			return ErrClosed
		}
		registered := h.Status() == StatusRegistered
		switch {
		case registered && !on:
			return h.reg.remove(h)
		case !registered && on:
			if !h.Shortcut().Valid() {
				return ErrInvalidShortcut
			}
			return h.reg.add(h)
		}
		return nil
	})
}

// Close removes the handle from the registry and closes its event channel.
func (h *Handle) Close() error {
	err := h.reg.do(h.close)
	if errors.Is(err, ErrLoopNotRunning) {
		// Teardown resolves every handle and releases the grabs; once it has
		// finished only the channel is left.
		h.reg.waitStopped()
		h.closeEvents()
		return nil
	}
	return err
}

func (h *Handle) close() error {
	if h.closed.Load() {
		return nil
	}
	var err error
	if h.Status() == StatusRegistered {
		err = h.reg.remove(h)
	}
	h.closeEvents()
	return err
}

func (h *Handle) closeEvents() {
	if h.closed.CompareAndSwap(false, true) {
		close(h.events)
	}
}

// deliver runs on the owning thread. A subscriber that stopped reading
// loses events rather than stalling the loop.
func (h *Handle) deliver(ev Event) {
	if h.closed.Load() {
		return
	}
	select {
	case h.events <- ev:
	default:
		log.Warnf("event buffer full for %s, dropping %s", h.Combo(), ev.kind)
	}
}
