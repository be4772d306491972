//go:build windows

// Package win32 registers global shortcuts with RegisterHotKey and pumps the
// owning thread's message queue.
package win32

import (
	"context"
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"hotkeyd/hotkey"
	"hotkeyd/log"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey           = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey         = user32.NewProc("UnregisterHotKey")
	procGetMessageW              = user32.NewProc("GetMessageW")
	procPeekMessageW             = user32.NewProc("PeekMessageW")
	procPostThreadMessageW       = user32.NewProc("PostThreadMessageW")
	procVkKeyScanExW             = user32.NewProc("VkKeyScanExW")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetAsyncKeyState         = user32.NewProc("GetAsyncKeyState")
	procSetTimer                 = user32.NewProc("SetTimer")
	procKillTimer                = user32.NewProc("KillTimer")
)

const (
	wmQuit   = 0x0012
	wmTimer  = 0x0113
	wmHotkey = 0x0312
	wmUser   = 0x0400
	wmApp    = 0x8000

	pmNoRemove = 0x0000

	// Ids below 0xC000 are reserved for applications.
	maxHotkeyID = 0xbfff

	releasePollMs = 25
)

type point struct{ x, y int32 }

type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      point
	private uint32
}

// Backend implements hotkey.Backend with the Win32 hotkey API. WM_HOTKEY
// only reports the press; the release is found by polling the key state
// while the shortcut is held.
type Backend struct {
	thread atomic.Uint32

	nextID int32
	ids    map[hotkey.NativeShortcut]int32
	byID   map[int32]hotkey.NativeShortcut

	held  hotkey.NativeShortcut
	timer uintptr
}

func New() *Backend {
	return &Backend{
		ids:  make(map[hotkey.NativeShortcut]int32),
		byID: make(map[int32]hotkey.NativeShortcut),
	}
}

func (b *Backend) Name() string     { return "win32" }
func (b *Backend) Supported() error { return procRegisterHotKey.Find() }

// Open creates the calling thread's message queue so that wakes posted
// before the pump starts are kept.
func (b *Backend) Open() error {
	if err := b.Supported(); err != nil {
		return fmt.Errorf("%w: %v", hotkey.ErrUnsupported, err)
	}
	var m msg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, wmUser, wmUser, pmNoRemove)
	b.thread.Store(windows.GetCurrentThreadId())
	return nil
}

func (b *Backend) Translate(key hotkey.Key, mods hotkey.Modifier) (hotkey.NativeShortcut, error) {
	vk, ok := fixedVK(key, mods)
	if !ok {
		var err error
		if vk, err = scanVK(key); err != nil {
			return hotkey.NativeShortcut{}, err
		}
	}
	return hotkey.NativeShortcut{Key: vk, Mods: nativeMods(mods)}, nil
}

// scanVK resolves a printable key through the layout of the foreground
// window's thread, which is the layout the user is typing with.
func scanVK(key hotkey.Key) (uint32, error) {
	if !key.IsPrintable() || key.Rune() > 0xffff {
		return 0, fmt.Errorf("%w: %s has no virtual key", hotkey.ErrTranslation, key)
	}
	fg, _, _ := procGetForegroundWindow.Call()
	tid, _, _ := procGetWindowThreadProcessId.Call(fg, 0)
	layout, _, _ := procGetKeyboardLayout.Call(tid)
	r, _, _ := procVkKeyScanExW.Call(uintptr(key.Rune()), layout)
	vk, ok := scanResult(uint16(r))
	if !ok {
		return 0, fmt.Errorf("%w: %s is not on the active layout", hotkey.ErrTranslation, key)
	}
	return vk, nil
}

func (b *Backend) Register(s hotkey.NativeShortcut) error {
	id, err := b.allocID()
	if err != nil {
		return err
	}
	r, _, callErr := procRegisterHotKey.Call(0, uintptr(id), uintptr(s.Mods|modNoRepeat), uintptr(s.Key))
	if r == 0 {
		return fmt.Errorf("%w: %s: %v", hotkey.ErrConflict, s, callErr)
	}
	b.ids[s] = id
	b.byID[id] = s
	return nil
}

func (b *Backend) allocID() (int32, error) {
	for range maxHotkeyID {
		b.nextID = b.nextID%maxHotkeyID + 1
		if _, used := b.byID[b.nextID]; !used {
			return b.nextID, nil
		}
	}
	return 0, fmt.Errorf("%w: out of hotkey ids", hotkey.ErrConflict)
}

func (b *Backend) Unregister(s hotkey.NativeShortcut) error {
	id, ok := b.ids[s]
	if !ok {
		return fmt.Errorf("%w: %s was never registered", hotkey.ErrUnregister, s)
	}
	delete(b.ids, s)
	delete(b.byID, id)
	if b.held == s {
		b.stopPolling()
	}
	r, _, callErr := procUnregisterHotKey.Call(0, uintptr(id))
	if r == 0 {
		return fmt.Errorf("%w: %s: %v", hotkey.ErrUnregister, s, callErr)
	}
	return nil
}

func (b *Backend) Wake() {
	if tid := b.thread.Load(); tid != 0 {
		procPostThreadMessageW.Call(uintptr(tid), wmApp, 0, 0)
	}
}

func (b *Backend) Pump(ctx context.Context, handle func(hotkey.RawEvent) bool, drain func()) error {
	tid := b.thread.Load()
	stop := context.AfterFunc(ctx, func() {
		procPostThreadMessageW.Call(uintptr(tid), wmQuit, 0, 0)
	})
	defer stop()

	drain()
	var m msg
	for {
		r, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		switch int32(r) {
		case 0:
			return nil
		case -1:
			return fmt.Errorf("GetMessageW: %v", err)
		}
		switch m.message {
		case wmApp:
			drain()
		case wmHotkey:
			b.onHotkey(int32(m.wParam), handle)
		case wmTimer:
			if m.wParam == b.timer {
				b.pollRelease(handle)
			}
		}
	}
}

func (b *Backend) onHotkey(id int32, handle func(hotkey.RawEvent) bool) {
	s, ok := b.byID[id]
	if !ok {
		return
	}
	if b.held.Valid() && b.held != s {
		prev := b.held
		b.stopPolling()
		handle(hotkey.RawEvent{Kind: hotkey.RawDeactivate, Shortcut: prev})
	}
	handle(hotkey.RawEvent{Kind: hotkey.RawActivate, Shortcut: s})
	if b.held == s {
		return
	}
	t, _, err := procSetTimer.Call(0, 0, releasePollMs, 0)
	if t == 0 {
		log.Warnf("win32: SetTimer: %v", err)
		return
	}
	b.held, b.timer = s, t
}

func (b *Backend) pollRelease(handle func(hotkey.RawEvent) bool) {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(b.held.Key))
	if int16(state) < 0 {
		return
	}
	s := b.held
	b.stopPolling()
	handle(hotkey.RawEvent{Kind: hotkey.RawDeactivate, Shortcut: s})
}

func (b *Backend) stopPolling() {
	if b.timer != 0 {
		procKillTimer.Call(0, b.timer)
	}
	b.held, b.timer = hotkey.NativeShortcut{}, 0
}

func (b *Backend) Close() error {
	b.stopPolling()
	b.thread.Store(0)
	return nil
}
