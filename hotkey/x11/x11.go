// Package x11 grabs global shortcuts on the X server's root window using the
// pure-Go X protocol bindings, so it needs no cgo or Xlib.
package x11

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"hotkeyd/hotkey"
	"hotkeyd/log"
)

type xevent struct {
	ev  xgb.Event
	err xgb.Error
}

// Backend implements hotkey.Backend for X11.
type Backend struct {
	conn   *xgb.Conn
	root   xproto.Window
	keymap *keymap

	events chan xevent
	wake   chan struct{}
	quit   chan struct{}
}

func New() *Backend {
	return &Backend{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
	}
}

func (b *Backend) Name() string { return "x11" }

func (b *Backend) Supported() error {
	if os.Getenv("DISPLAY") == "" {
		if os.Getenv("WAYLAND_DISPLAY") != "" {
			return fmt.Errorf("%w: Wayland session without XWayland (DISPLAY unset)", hotkey.ErrUnsupported)
		}
		return fmt.Errorf("%w: DISPLAY is not set", hotkey.ErrUnsupported)
	}
	return nil
}

func (b *Backend) Open() error {
	if err := b.Supported(); err != nil {
		return err
	}
	conn, err := xgb.NewConn()
	if err != nil {
		return fmt.Errorf("connect to X server: %w", err)
	}
	b.conn = conn
	b.root = xproto.Setup(conn).DefaultScreen(conn).Root
	if os.Getenv("XDG_SESSION_TYPE") == "wayland" {
		log.Warn("running under XWayland: shortcuts only fire while an X11 window has focus")
	}
	if err := b.refreshKeymap(); err != nil {
		conn.Close()
		b.conn = nil
		return err
	}
	b.events = make(chan xevent, 32)
	go b.read()
	return nil
}

// read forwards X events to the pump. The connection is safe for concurrent
// use; only dispatch needs the owning thread.
func (b *Backend) read() {
	defer close(b.events)
	for {
		ev, err := b.conn.WaitForEvent()
		if ev == nil && err == nil {
			return
		}
		select {
		case b.events <- xevent{ev, err}:
		case <-b.quit:
			return
		}
	}
}

func (b *Backend) refreshKeymap() error {
	setup := xproto.Setup(b.conn)
	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	reply, err := xproto.GetKeyboardMapping(b.conn, setup.MinKeycode, count).Reply()
	if err != nil {
		return fmt.Errorf("get keyboard mapping: %w", err)
	}
	b.keymap = newKeymap(setup.MinKeycode, int(reply.KeysymsPerKeycode), reply.Keysyms)
	return nil
}

func (b *Backend) Translate(key hotkey.Key, mods hotkey.Modifier) (hotkey.NativeShortcut, error) {
	ks, ok := keysymFor(key, mods)
	if !ok {
		return hotkey.NativeShortcut{}, fmt.Errorf("%w: no keysym for %s", hotkey.ErrTranslation, key)
	}
	if b.keymap == nil {
		return hotkey.NativeShortcut{}, fmt.Errorf("%w: keyboard mapping not loaded", hotkey.ErrTranslation)
	}
	kc, ok := b.keymap.keycode(ks)
	if !ok {
		return hotkey.NativeShortcut{}, fmt.Errorf("%w: keysym 0x%x not on this keyboard", hotkey.ErrTranslation, uint32(ks))
	}
	return hotkey.NativeShortcut{Key: uint32(kc), Mods: uint32(nativeMods(mods))}, nil
}

// Register grabs s once per lock-key variant so the shortcut still fires
// with NumLock or CapsLock on. Either every variant is grabbed or none is.
func (b *Backend) Register(s hotkey.NativeShortcut) error {
	kc := xproto.Keycode(s.Key)
	mods := uint16(s.Mods)
	for i, v := range lockVariants {
		err := xproto.GrabKeyChecked(b.conn, true, b.root, mods|v, kc,
			xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
		if err != nil {
			for _, g := range lockVariants[:i] {
				xproto.UngrabKeyChecked(b.conn, kc, b.root, mods|g).Check()
			}
			return fmt.Errorf("%w: %s: %v", hotkey.ErrConflict, s, err)
		}
	}
	return nil
}

func (b *Backend) Unregister(s hotkey.NativeShortcut) error {
	kc := xproto.Keycode(s.Key)
	mods := uint16(s.Mods)
	var errs []error
	for _, v := range lockVariants {
		if err := xproto.UngrabKeyChecked(b.conn, kc, b.root, mods|v).Check(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s: %w", hotkey.ErrUnregister, s, errors.Join(errs...))
	}
	return nil
}

func (b *Backend) Wake() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Backend) Pump(ctx context.Context, handle func(hotkey.RawEvent) bool, drain func()) error {
	drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-b.wake:
			drain()
		case xe, ok := <-b.events:
			if !ok {
				return fmt.Errorf("x11: connection closed: %w", hotkey.ErrLoopNotRunning)
			}
			if xe.err != nil {
				// Errors for grabs arrive through their checked cookies.
				log.Warnf("x11: %v", xe.err)
				continue
			}
			b.dispatch(xe.ev, handle)
		}
	}
}

func (b *Backend) dispatch(ev xgb.Event, handle func(hotkey.RawEvent) bool) {
	switch e := ev.(type) {
	case xproto.KeyPressEvent:
		handle(rawEvent(hotkey.RawPress, e.Detail, e.State, e.Time))
	case xproto.KeyReleaseEvent:
		handle(rawEvent(hotkey.RawRelease, e.Detail, e.State, e.Time))
	case xproto.MappingNotifyEvent:
		if e.Request != xproto.MappingKeyboard {
			return
		}
		if err := b.refreshKeymap(); err != nil {
			log.Warnf("x11: %v", err)
			return
		}
		log.Info("x11: keyboard mapping changed")
	}
}

func rawEvent(kind hotkey.RawKind, kc xproto.Keycode, state uint16, t xproto.Timestamp) hotkey.RawEvent {
	return hotkey.RawEvent{
		Kind:     kind,
		Shortcut: hotkey.NativeShortcut{Key: uint32(kc), Mods: uint32(state & relevantMods)},
		Time:     uint32(t),
	}
}

func (b *Backend) Close() error {
	if b.conn == nil {
		return nil
	}
	close(b.quit)
	b.conn.Close()
	b.conn = nil
	return nil
}
