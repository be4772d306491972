package hotkey

import (
	"errors"
	"testing"
)

func resolved(t *testing.T, f *FakeBackend, key Key, mods Modifier) *Handle {
	t.Helper()
	s, err := f.Translate(key, mods)
	if err != nil {
		t.Fatal(err)
	}
	h := newHandle(nil, 4)
	h.set(key, mods, s, StatusResolved)
	return h
}

func TestTableSharedShortcutGrabbedOnce(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	a := resolved(t, f, KeyT, ModCtrl|ModAlt)
	b := resolved(t, f, KeyT, ModCtrl|ModAlt)
	s := a.Shortcut()

	for _, h := range []*Handle{a, b} {
		if err := tbl.Add(h); err != nil {
			t.Fatal(err)
		}
	}
	if n := f.Registers(s); n != 1 {
		t.Fatalf("registers = %d, want 1", n)
	}
	if got := tbl.Handles(s); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("handles not in insertion order: %v", got)
	}

	if err := tbl.Remove(a); err != nil {
		t.Fatal(err)
	}
	if !tbl.Contains(s) || f.Unregisters(s) != 0 {
		t.Fatal("entry released while a handle is still bound")
	}
	if err := tbl.Remove(b); err != nil {
		t.Fatal(err)
	}
	if tbl.Contains(s) || f.Grabbed(s) || f.Unregisters(s) != 1 {
		t.Fatal("last remove did not release the grab exactly once")
	}
	if a.Status() != StatusResolved || b.Status() != StatusResolved {
		t.Error("removed handles should be resolved, not registered")
	}
}

func TestTableAddTwice(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	h := resolved(t, f, KeyA, ModMeta)
	if err := tbl.Add(h); err != nil {
		t.Fatal(err)
	}
	if err := tbl.Add(h); !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("got %v, want ErrAlreadyRegistered", err)
	}
	if got := len(tbl.Handles(h.Shortcut())); got != 1 {
		t.Fatalf("handle listed %d times", got)
	}
}

func TestTableAddInvalid(t *testing.T) {
	tbl := NewTable(NewFake())
	h := newHandle(nil, 1)
	if err := tbl.Add(h); !errors.Is(err, ErrInvalidShortcut) {
		t.Fatalf("got %v, want ErrInvalidShortcut", err)
	}
	if tbl.Len() != 0 {
		t.Fatal("invalid shortcut entered the table")
	}
}

func TestTableGrabRefusedLeavesNoEntry(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	h := resolved(t, f, KeyP, ModCtrl)
	f.Refuse(h.Shortcut(), errors.New("BadAccess"))

	err := tbl.Add(h)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("got %v, want ErrConflict", err)
	}
	if tbl.Contains(h.Shortcut()) || h.Status() != StatusResolved {
		t.Fatal("failed grab mutated the table")
	}
}

func TestTableRemoveNotRegistered(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	h := resolved(t, f, KeyP, ModCtrl)
	if err := tbl.Remove(h); !errors.Is(err, ErrNotRegistered) {
		t.Fatalf("got %v, want ErrNotRegistered", err)
	}
}

func TestTableUngrabFailureDropsBookkeeping(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	h := resolved(t, f, KeyN, ModAlt)
	if err := tbl.Add(h); err != nil {
		t.Fatal(err)
	}
	f.Stick(h.Shortcut(), errors.New("BadWindow"))

	err := tbl.Remove(h)
	if !errors.Is(err, ErrUnregister) {
		t.Fatalf("got %v, want ErrUnregister", err)
	}
	if tbl.Contains(h.Shortcut()) || h.IsRegistered() {
		t.Fatal("bookkeeping kept after failed ungrab")
	}
}

func TestTableTeardown(t *testing.T) {
	f := NewFake()
	tbl := NewTable(f)
	a := resolved(t, f, KeyA, ModCtrl)
	b := resolved(t, f, KeyB, ModCtrl)
	c := resolved(t, f, KeyB, ModCtrl)
	for _, h := range []*Handle{a, b, c} {
		if err := tbl.Add(h); err != nil {
			t.Fatal(err)
		}
	}
	captured := tbl.Captured()
	if captured[b.Shortcut()] != 2 || captured[a.Shortcut()] != 1 {
		t.Fatalf("captured = %v", captured)
	}

	if n := tbl.Teardown(); n != 2 {
		t.Fatalf("teardown released %d entries, want 2", n)
	}
	if tbl.Len() != 0 || f.Grabbed(a.Shortcut()) || f.Grabbed(b.Shortcut()) {
		t.Fatal("teardown left grabs behind")
	}
	for _, h := range []*Handle{a, b, c} {
		if h.IsRegistered() {
			t.Fatal("handle still registered after teardown")
		}
		select {
		case ev := <-h.Events():
			if ev.Kind() != EventRegisteredChanged || ev.Registered() {
				t.Fatalf("got %s registered=%v, want an unregister", ev.Kind(), ev.Registered())
			}
		default:
			t.Fatal("teardown did not notify the handle")
		}
	}
}
