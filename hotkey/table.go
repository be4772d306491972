package hotkey

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"hotkeyd/log"
)

type entry struct {
	handles []*Handle
}

// Table is the reference-counted registry of native shortcuts. An entry
// exists iff at least one handle is bound to it and the native grab
// succeeded. Only the owning thread touches a Table.
type Table struct {
	registrar Registrar
	entries   map[NativeShortcut]*entry
}

func NewTable(r Registrar) *Table {
	return &Table{
		registrar: r,
		entries:   make(map[NativeShortcut]*entry),
	}
}

// Add binds h to its resolved shortcut, grabbing it natively if h is the
// first handle asking for it. On grab failure the table is left untouched.
func (t *Table) Add(h *Handle) error {
	if h.Status() == StatusRegistered {
		return ErrAlreadyRegistered
	}
	s := h.Shortcut()
	if !s.Valid() {
		return ErrInvalidShortcut
	}

	e, ok := t.entries[s]
	if !ok {
		err := t.registrar.Register(s)
		log.Registration("grab", s.Key, s.Mods, err)
		if err != nil {
			return err
		}
		e = &entry{}
		t.entries[s] = e
	}
	e.handles = append(e.handles, h)
	h.setStatus(StatusRegistered)
	return nil
}

// Remove unbinds h. When the last handle leaves, the native grab is released
// and the entry dropped. A failed release is reported but the bookkeeping is
// still dropped, so h always ends up unregistered.
func (t *Table) Remove(h *Handle) error {
	if h.Status() != StatusRegistered {
		return ErrNotRegistered
	}
	s := h.Shortcut()
	h.setStatus(StatusResolved)

	e, ok := t.entries[s]
	if !ok {
		return ErrNotRegistered
	}
	i := slices.Index(e.handles, h)
	if i < 0 {
		return ErrNotRegistered
	}
	e.handles = slices.Delete(e.handles, i, i+1)
	if len(e.handles) > 0 {
		return nil
	}

	delete(t.entries, s)
	err := t.registrar.Unregister(s)
	log.Registration("ungrab", s.Key, s.Mods, err)
	if err != nil && !errors.Is(err, ErrUnregister) {
		return fmt.Errorf("%w: %w", ErrUnregister, err)
	}
	return err
}

func (t *Table) Contains(s NativeShortcut) bool {
	_, ok := t.entries[s]
	return ok
}

// Handles returns the handles bound to s in the order they were added.
func (t *Table) Handles(s NativeShortcut) []*Handle {
	e, ok := t.entries[s]
	if !ok {
		return nil
	}
	return slices.Clone(e.handles)
}

func (t *Table) Len() int { return len(t.entries) }

// Captured lists every grabbed shortcut with the number of handles bound to it.
func (t *Table) Captured() map[NativeShortcut]int {
	out := make(map[NativeShortcut]int, len(t.entries))
	for s, e := range t.entries {
		out[s] = len(e.handles)
	}
	return out
}

// Teardown force-releases every remaining entry. Anything left at this point
// was never removed by its owner, so each entry is logged as a leak and its
// handles are told they are no longer registered.
func (t *Table) Teardown() int {
	n := 0
	for s, e := range t.entries {
		log.Leak(s.Key, s.Mods, len(e.handles))
		for _, h := range e.handles {
			h.setStatus(StatusResolved)
			h.deliver(Event{kind: EventRegisteredChanged, registered: false, at: time.Now()})
		}
		if err := t.registrar.Unregister(s); err != nil {
			log.Registration("ungrab", s.Key, s.Mods, err)
		}
		delete(t.entries, s)
		n++
	}
	return n
}
