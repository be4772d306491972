package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"hotkeyd/config"
	"hotkeyd/hotkey"
)

type recordSink struct {
	mu     sync.Mutex
	rows   []BindingRow
	events []string
	errs   []string
}

func (s *recordSink) add(ev string) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordSink) BindingsChanged(rows []BindingRow) {
	s.mu.Lock()
	s.rows = rows
	s.mu.Unlock()
}

func (s *recordSink) Activated(name, _, gesture string) { s.add(name + " " + gesture) }
func (s *recordSink) Released(name, _ string)           { s.add(name + " released") }

func (s *recordSink) RegistrationChanged(name, _ string, registered bool) {
	if registered {
		s.add(name + " registered")
	} else {
		s.add(name + " unregistered")
	}
}

func (s *recordSink) Error(name string, err error) {
	s.mu.Lock()
	s.errs = append(s.errs, name+": "+err.Error())
	s.mu.Unlock()
}

func (s *recordSink) lastRows() []BindingRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows
}

type binderRig struct {
	binder *Binder
	fake   *hotkey.FakeBackend
	sink   *recordSink
	ran    chan string
	copied chan string
}

func newBinderRig(t *testing.T) *binderRig {
	t.Helper()
	f := hotkey.NewFake()
	reg := hotkey.NewRegistry(f)
	ctx, cancel := context.WithCancel(context.Background())
	if err := reg.Start(ctx); err != nil {
		t.Fatal(err)
	}
	r := &binderRig{
		fake:   f,
		sink:   &recordSink{},
		ran:    make(chan string, 16),
		copied: make(chan string, 16),
	}
	r.binder = NewBinder(reg, r.sink)
	r.binder.exec = func(command string) error {
		r.ran <- command
		return nil
	}
	r.binder.copy = func(text string) error {
		r.copied <- text
		return nil
	}
	t.Cleanup(func() {
		r.binder.Close()
		cancel()
		<-reg.Done()
	})
	return r
}

func (r *binderRig) shortcut(t *testing.T, keys string) hotkey.NativeShortcut {
	t.Helper()
	c, err := hotkey.ParseCombo(keys)
	if err != nil {
		t.Fatal(err)
	}
	return r.fake.Shortcut(c.Key, c.Mods)
}

func receive(t *testing.T, ch <-chan string) string {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("timeout")
		return ""
	}
}

func quiet(t *testing.T, ch <-chan string) {
	t.Helper()
	select {
	case s := <-ch:
		t.Fatalf("unexpected %q", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func off() *bool { v := false; return &v }

func TestBinderApplyRegisters(t *testing.T) {
	r := newBinderRig(t)
	err := r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "term", Keys: "Ctrl+Alt+T", Command: "xterm"},
		{Name: "sig", Keys: "Ctrl+Alt+S", Copy: "-- sent from my desk"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	for _, keys := range []string{"Ctrl+Alt+T", "Ctrl+Alt+S"} {
		if !r.fake.Grabbed(r.shortcut(t, keys)) {
			t.Errorf("%s not grabbed", keys)
		}
	}
	rows := r.sink.lastRows()
	if len(rows) != 2 || rows[0].Name != "sig" || rows[1].Name != "term" {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[1].Status != hotkey.StatusRegistered || rows[1].Combo != "Ctrl+Alt+T" {
		t.Errorf("term row = %+v", rows[1])
	}
}

func TestBinderActivationRunsAction(t *testing.T) {
	r := newBinderRig(t)
	r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "both", Keys: "Ctrl+Alt+B", Command: "notify-send hi", Copy: "hi"},
	}})
	r.fake.SimActivate(r.shortcut(t, "Ctrl+Alt+B"))
	if got := receive(t, r.copied); got != "hi" {
		t.Errorf("copied %q", got)
	}
	if got := receive(t, r.ran); got != "notify-send hi" {
		t.Errorf("ran %q", got)
	}
	if n := r.binder.Activations(); n != 1 {
		t.Errorf("activations = %d, want 1", n)
	}
}

func TestBinderRebind(t *testing.T) {
	r := newBinderRig(t)
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1", Command: "one"}}})
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+2", Command: "two"}}})

	if r.fake.Grabbed(r.shortcut(t, "Ctrl+1")) {
		t.Error("old combo still grabbed")
	}
	if !r.fake.Grabbed(r.shortcut(t, "Ctrl+2")) {
		t.Fatal("new combo not grabbed")
	}
	r.fake.SimActivate(r.shortcut(t, "Ctrl+2"))
	if got := receive(t, r.ran); got != "two" {
		t.Errorf("ran %q, want two", got)
	}
}

func TestBinderActionChangeKeepsGrab(t *testing.T) {
	r := newBinderRig(t)
	s := r.shortcut(t, "Ctrl+1")
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1", Command: "one"}}})
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "ctrl+1", Command: "uno"}}})
	if n := r.fake.Registers(s); n != 1 {
		t.Errorf("registered %d times, want 1", n)
	}
	r.fake.SimActivate(s)
	if got := receive(t, r.ran); got != "uno" {
		t.Errorf("ran %q, want uno", got)
	}
}

func TestBinderRemove(t *testing.T) {
	r := newBinderRig(t)
	r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "a", Keys: "Ctrl+1"},
		{Name: "b", Keys: "Ctrl+2"},
	}})
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "b", Keys: "Ctrl+2"}}})
	if r.fake.Grabbed(r.shortcut(t, "Ctrl+1")) {
		t.Error("removed binding still grabbed")
	}
	if rows := r.sink.lastRows(); len(rows) != 1 || rows[0].Name != "b" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestBinderDisabled(t *testing.T) {
	r := newBinderRig(t)
	s := r.shortcut(t, "Ctrl+1")
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1", Enabled: off()}}})
	if r.fake.Grabbed(s) {
		t.Fatal("disabled binding grabbed")
	}
	if rows := r.sink.lastRows(); rows[0].Status != hotkey.StatusResolved {
		t.Errorf("status = %s, want resolved", rows[0].Status)
	}

	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1"}}})
	if !r.fake.Grabbed(s) {
		t.Fatal("enabled binding not grabbed")
	}
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1", Enabled: off()}}})
	if r.fake.Grabbed(s) {
		t.Fatal("binding still grabbed after disabling")
	}
}

func TestBinderSharedCombo(t *testing.T) {
	r := newBinderRig(t)
	s := r.shortcut(t, "Ctrl+Alt+X")
	r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "a", Keys: "Ctrl+Alt+X", Command: "a"},
		{Name: "b", Keys: "Ctrl+Alt+X", Command: "b"},
	}})
	if n := r.fake.Registers(s); n != 1 {
		t.Errorf("grabbed %d times, want 1", n)
	}
	for _, row := range r.sink.lastRows() {
		if !row.Shared {
			t.Errorf("%s not marked shared", row.Name)
		}
	}
	r.fake.SimActivate(s)
	got := map[string]bool{receive(t, r.ran): true, receive(t, r.ran): true}
	if !got["a"] || !got["b"] {
		t.Errorf("ran %v, want a and b", got)
	}
}

func TestBinderBadBindingDoesNotBlockOthers(t *testing.T) {
	r := newBinderRig(t)
	r.fake.Refuse(r.shortcut(t, "Ctrl+Alt+Q"), errors.New("taken"))
	err := r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "taken", Keys: "Ctrl+Alt+Q"},
		{Name: "fine", Keys: "Ctrl+Alt+W"},
	}})
	if !errors.Is(err, hotkey.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if !r.fake.Grabbed(r.shortcut(t, "Ctrl+Alt+W")) {
		t.Error("good binding not grabbed")
	}
	if len(r.sink.errs) != 1 {
		t.Errorf("errors = %v", r.sink.errs)
	}

	// Once the other program lets go, the next reload picks it up.
	r.fake.Refuse(r.shortcut(t, "Ctrl+Alt+Q"), nil)
	err = r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "taken", Keys: "Ctrl+Alt+Q"},
		{Name: "fine", Keys: "Ctrl+Alt+W"},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !r.fake.Grabbed(r.shortcut(t, "Ctrl+Alt+Q")) {
		t.Error("retry did not grab")
	}
}

func TestBinderTapAndHold(t *testing.T) {
	r := newBinderRig(t)
	s := r.shortcut(t, "Ctrl+Alt+H")
	r.binder.Apply(&config.Config{Bindings: []config.Binding{
		{Name: "h", Keys: "Ctrl+Alt+H", Command: "tap", Hold: "hold", LongPress: 100 * time.Millisecond},
	}})

	r.fake.SimActivate(s)
	r.fake.SimDeactivate(s)
	if got := receive(t, r.ran); got != "tap" {
		t.Errorf("ran %q, want tap", got)
	}

	r.fake.SimActivate(s)
	if got := receive(t, r.ran); got != "hold" {
		t.Errorf("ran %q, want hold", got)
	}
	r.fake.SimDeactivate(s)
	quiet(t, r.ran)
}

func TestBinderClose(t *testing.T) {
	r := newBinderRig(t)
	s := r.shortcut(t, "Ctrl+1")
	r.binder.Apply(&config.Config{Bindings: []config.Binding{{Name: "a", Keys: "Ctrl+1"}}})
	if err := r.binder.Close(); err != nil {
		t.Fatal(err)
	}
	if r.fake.Grabbed(s) {
		t.Error("still grabbed after Close")
	}
	if n := r.fake.Unregisters(s); n != 1 {
		t.Errorf("ungrabbed %d times, want 1", n)
	}
}
