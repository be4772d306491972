//go:build darwin || windows

// Package portable grabs global shortcuts through golang.design/x/hotkey. On
// macOS the process must run its main thread through mainthread.Init.
package portable

import (
	"context"
	"fmt"

	xhotkey "golang.design/x/hotkey"

	"hotkeyd/hotkey"
)

type grab struct {
	hk   *xhotkey.Hotkey
	stop chan struct{}
}

// Backend implements hotkey.Backend. The library reports key-down and
// key-up on channels; they are forwarded as activate and deactivate.
type Backend struct {
	grabs  map[hotkey.NativeShortcut]*grab
	events chan hotkey.RawEvent
	pump   *hotkey.ChanPump
}

func New() *Backend {
	return &Backend{
		grabs:  make(map[hotkey.NativeShortcut]*grab),
		events: make(chan hotkey.RawEvent, 32),
		pump:   hotkey.NewChanPump(),
	}
}

func (b *Backend) Name() string     { return "portable" }
func (b *Backend) Supported() error { return nil }
func (b *Backend) Open() error      { return nil }
func (b *Backend) Wake()            { b.pump.Wake() }

func (b *Backend) Translate(key hotkey.Key, mods hotkey.Modifier) (hotkey.NativeShortcut, error) {
	code, ok := keyCodes[key]
	if !ok {
		return hotkey.NativeShortcut{}, fmt.Errorf("%w: %s has no key code here", hotkey.ErrTranslation, key)
	}
	var m uint32
	for _, mm := range modifierMap {
		if mods.Has(mm.mod) {
			m |= uint32(mm.native)
		}
	}
	return pack(uint32(code), m), nil
}

func nativeMods(mask uint32) []xhotkey.Modifier {
	var out []xhotkey.Modifier
	for _, mm := range modifierMap {
		if mask&uint32(mm.native) != 0 {
			out = append(out, mm.native)
		}
	}
	return out
}

func (b *Backend) Register(s hotkey.NativeShortcut) error {
	hk := xhotkey.New(nativeMods(s.Mods), xhotkey.Key(unpack(s)))
	if err := hk.Register(); err != nil {
		return fmt.Errorf("%w: %s: %v", hotkey.ErrConflict, s, err)
	}
	g := &grab{hk: hk, stop: make(chan struct{})}
	b.grabs[s] = g
	go b.forward(s, g)
	return nil
}

func (b *Backend) forward(s hotkey.NativeShortcut, g *grab) {
	for {
		var kind hotkey.RawKind
		select {
		case <-g.stop:
			return
		case <-g.hk.Keydown():
			kind = hotkey.RawActivate
		case <-g.hk.Keyup():
			kind = hotkey.RawDeactivate
		}
		select {
		case b.events <- hotkey.RawEvent{Kind: kind, Shortcut: s}:
		case <-g.stop:
			return
		}
	}
}

func (b *Backend) Unregister(s hotkey.NativeShortcut) error {
	g, ok := b.grabs[s]
	if !ok {
		return fmt.Errorf("%w: %s was never registered", hotkey.ErrUnregister, s)
	}
	delete(b.grabs, s)
	close(g.stop)
	if err := g.hk.Unregister(); err != nil {
		return fmt.Errorf("%w: %s: %v", hotkey.ErrUnregister, s, err)
	}
	return nil
}

func (b *Backend) Pump(ctx context.Context, handle func(hotkey.RawEvent) bool, drain func()) error {
	return b.pump.Run(ctx, b.events, handle, drain)
}

func (b *Backend) Close() error {
	for s, g := range b.grabs {
		close(g.stop)
		g.hk.Unregister()
		delete(b.grabs, s)
	}
	return nil
}
