package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"hotkeyd/hotkey"
)

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and headless mode receive the same binding events.
type EventSink interface {
	BindingsChanged(rows []BindingRow)
	Activated(name, combo, gesture string)
	Released(name, combo string)
	RegistrationChanged(name, combo string, registered bool)
	Error(name string, err error)
}

// BindingRow is one line of the bindings table.
type BindingRow struct {
	Name   string
	Combo  string
	Action string
	Status hotkey.Status
	Shared bool // another binding uses the same native shortcut
}

// lineSink writes one line per event, for headless and -test runs.
type lineSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newLineSink(out io.Writer) *lineSink { return &lineSink{out: out} }

func (s *lineSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, "%s "+format+"\n", append([]any{time.Now().Format("15:04:05")}, args...)...)
}

func (s *lineSink) BindingsChanged(rows []BindingRow) {
	for _, r := range rows {
		shared := ""
		if r.Shared {
			shared = " shared"
		}
		s.printf("binding %-16s %-20s %-10s%s  %s", r.Name, r.Combo, r.Status, shared, r.Action)
	}
}

func (s *lineSink) Activated(name, combo, gesture string) {
	s.printf("ACTIVATED %s %s %s", name, combo, gesture)
}

func (s *lineSink) Released(name, combo string) {
	s.printf("RELEASED %s %s", name, combo)
}

func (s *lineSink) RegistrationChanged(name, combo string, registered bool) {
	state := "UNREGISTERED"
	if registered {
		state = "REGISTERED"
	}
	s.printf("%s %s %s", state, name, combo)
}

func (s *lineSink) Error(name string, err error) {
	s.printf("ERROR %s: %v", name, err)
}
