// Package synth injects key combinations through the OS input layer
// (uinput on Linux, CGEvent on macOS, SendInput on Windows).
package synth

import (
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/micmonay/keybd_event"

	"hotkeyd/hotkey"
)

var ErrNoKey = errors.New("synth: key cannot be synthesized")

var (
	kb     keybd_event.KeyBonding
	kbOnce sync.Once
	kbErr  error
	kbMu   sync.Mutex
)

func Init() error {
	kbOnce.Do(func() {
		kb, kbErr = keybd_event.NewKeyBonding()
		if kbErr == nil && runtime.GOOS == "linux" {
			// The new uinput device is invisible to the X server until udev
			// has set it up.
			time.Sleep(2 * time.Second)
		}
	})
	return kbErr
}

var letterVK = [26]int{
	keybd_event.VK_A, keybd_event.VK_B, keybd_event.VK_C, keybd_event.VK_D,
	keybd_event.VK_E, keybd_event.VK_F, keybd_event.VK_G, keybd_event.VK_H,
	keybd_event.VK_I, keybd_event.VK_J, keybd_event.VK_K, keybd_event.VK_L,
	keybd_event.VK_M, keybd_event.VK_N, keybd_event.VK_O, keybd_event.VK_P,
	keybd_event.VK_Q, keybd_event.VK_R, keybd_event.VK_S, keybd_event.VK_T,
	keybd_event.VK_U, keybd_event.VK_V, keybd_event.VK_W, keybd_event.VK_X,
	keybd_event.VK_Y, keybd_event.VK_Z,
}

var functionVK = [12]int{
	keybd_event.VK_F1, keybd_event.VK_F2, keybd_event.VK_F3, keybd_event.VK_F4,
	keybd_event.VK_F5, keybd_event.VK_F6, keybd_event.VK_F7, keybd_event.VK_F8,
	keybd_event.VK_F9, keybd_event.VK_F10, keybd_event.VK_F11, keybd_event.VK_F12,
}

var specialVK = map[hotkey.Key]int{
	hotkey.KeySpace:  keybd_event.VK_SPACE,
	hotkey.KeyTab:    keybd_event.VK_TAB,
	hotkey.KeyEscape: keybd_event.VK_ESC,
}

// vk maps k to a keybd_event key code.
func vk(k hotkey.Key) (int, bool) {
	switch {
	case k >= 'A' && k <= 'Z':
		return letterVK[k-'A'], true
	case k >= hotkey.KeyF1 && k <= hotkey.KeyF12:
		return functionVK[k-hotkey.KeyF1], true
	}
	code, ok := specialVK[k]
	return code, ok
}

// Supported reports whether c can be synthesized.
func Supported(c hotkey.Combo) bool {
	_, ok := vk(c.Key)
	return ok
}

func prepare(c hotkey.Combo) error {
	code, ok := vk(c.Key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoKey, c.Key)
	}
	if err := Init(); err != nil {
		return err
	}
	kb.Clear()
	kb.SetKeys(code)
	kb.HasCTRL(c.Mods.Has(hotkey.ModCtrl))
	kb.HasALT(c.Mods.Has(hotkey.ModAlt))
	kb.HasSHIFT(c.Mods.Has(hotkey.ModShift))
	kb.HasSuper(c.Mods.Has(hotkey.ModMeta))
	return nil
}

// Tap presses and releases c.
func Tap(c hotkey.Combo) error {
	kbMu.Lock()
	defer kbMu.Unlock()
	if err := prepare(c); err != nil {
		return err
	}
	return kb.Launching()
}

// Hold keeps c pressed for d.
func Hold(c hotkey.Combo, d time.Duration) error {
	kbMu.Lock()
	defer kbMu.Unlock()
	if err := prepare(c); err != nil {
		return err
	}
	if err := kb.Press(); err != nil {
		return err
	}
	time.Sleep(d)
	return kb.Release()
}
