package hotkey

import (
	"context"
	"fmt"
	"sync"
	"unicode"
)

// FakeBackend is an in-memory Backend for tests and the daemon's -test mode.
// Native codes are derived from the abstract key so translation is stable;
// Sim* methods inject OS events as a real pump would see them.
type FakeBackend struct {
	mu          sync.Mutex
	grabbed     map[NativeShortcut]bool
	registers   map[NativeShortcut]int
	unregisters map[NativeShortcut]int
	refuse      map[NativeShortcut]error
	stuck       map[NativeShortcut]error
	unmapped    map[Key]bool
	owner       func() bool
	offThread   int

	events chan RawEvent
	pump   *ChanPump
}

func NewFake() *FakeBackend {
	return &FakeBackend{
		grabbed:     make(map[NativeShortcut]bool),
		registers:   make(map[NativeShortcut]int),
		unregisters: make(map[NativeShortcut]int),
		refuse:      make(map[NativeShortcut]error),
		stuck:       make(map[NativeShortcut]error),
		unmapped:    make(map[Key]bool),
		events:      make(chan RawEvent, 64),
		pump:        NewChanPump(),
	}
}

func (f *FakeBackend) Name() string     { return "fake" }
func (f *FakeBackend) Supported() error { return nil }
func (f *FakeBackend) Open() error      { return nil }
func (f *FakeBackend) Close() error     { return nil }
func (f *FakeBackend) Wake()            { f.pump.Wake() }

func (f *FakeBackend) Pump(ctx context.Context, handle func(RawEvent) bool, drain func()) error {
	return f.pump.Run(ctx, f.events, handle, drain)
}

// CheckThread makes the backend count native calls for which onOwner
// reports false.
func (f *FakeBackend) CheckThread(onOwner func() bool) {
	f.mu.Lock()
	f.owner = onOwner
	f.mu.Unlock()
}

func (f *FakeBackend) checkThreadLocked() {
	if f.owner != nil && !f.owner() {
		f.offThread++
	}
}

// OffThreadCalls is the number of native calls made off the owning thread.
func (f *FakeBackend) OffThreadCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.offThread
}

const fakeSpecialBase = 0x10000

func (f *FakeBackend) Translate(key Key, mods Modifier) (NativeShortcut, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkThreadLocked()
	if f.unmapped[key] {
		return NativeShortcut{}, fmt.Errorf("%w: %s not in layout", ErrTranslation, key)
	}
	var code uint32
	switch {
	case key.IsPrintable():
		code = uint32(unicode.ToUpper(key.Rune()))
	case key != KeyUnknown:
		code = fakeSpecialBase + uint32(key-keySpecial)
	}
	if code == 0 {
		return NativeShortcut{}, fmt.Errorf("%w: %s", ErrTranslation, key)
	}
	known := ModShift | ModCtrl | ModAlt | ModMeta | ModKeypad
	return NativeShortcut{Key: code, Mods: uint32(mods & known)}, nil
}

func (f *FakeBackend) Register(s NativeShortcut) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkThreadLocked()
	if err := f.refuse[s]; err != nil {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if f.grabbed[s] {
		return fmt.Errorf("%w: %s grabbed twice", ErrConflict, s)
	}
	f.grabbed[s] = true
	f.registers[s]++
	return nil
}

func (f *FakeBackend) Unregister(s NativeShortcut) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkThreadLocked()
	f.unregisters[s]++
	if err := f.stuck[s]; err != nil {
		return fmt.Errorf("%w: %w", ErrUnregister, err)
	}
	if !f.grabbed[s] {
		return fmt.Errorf("%w: %s not grabbed", ErrUnregister, s)
	}
	delete(f.grabbed, s)
	return nil
}

// Refuse makes the next grabs of s fail as if another process owned it.
// A nil err clears the refusal.
func (f *FakeBackend) Refuse(s NativeShortcut, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.refuse, s)
		return
	}
	f.refuse[s] = err
}

// Stick makes ungrabs of s fail.
func (f *FakeBackend) Stick(s NativeShortcut, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stuck[s] = err
}

// Unmap removes key from the fake keyboard layout.
func (f *FakeBackend) Unmap(key Key) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unmapped[key] = true
}

func (f *FakeBackend) Grabbed(s NativeShortcut) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grabbed[s]
}

func (f *FakeBackend) Registers(s NativeShortcut) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.registers[s]
}

func (f *FakeBackend) Unregisters(s NativeShortcut) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unregisters[s]
}

// Shortcut translates without going through a registry.
func (f *FakeBackend) Shortcut(key Key, mods Modifier) NativeShortcut {
	s, _ := f.Translate(key, mods)
	return s
}

func (f *FakeBackend) SimPress(s NativeShortcut, t uint32) {
	f.events <- RawEvent{Kind: RawPress, Shortcut: s, Time: t}
}

func (f *FakeBackend) SimRelease(s NativeShortcut, t uint32) {
	f.events <- RawEvent{Kind: RawRelease, Shortcut: s, Time: t}
}

func (f *FakeBackend) SimActivate(s NativeShortcut) {
	f.events <- RawEvent{Kind: RawActivate, Shortcut: s}
}

func (f *FakeBackend) SimDeactivate(s NativeShortcut) {
	f.events <- RawEvent{Kind: RawDeactivate, Shortcut: s}
}
