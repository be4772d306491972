// Package hotkey registers system-wide keyboard shortcuts and delivers their
// activations to the application.
//
// A Handle describes one logical hotkey. Any number of handles may ask for the
// same key combination: the Registry grabs the native combination with the OS
// once, keeps a reference-counted table of the handles bound to it and fans
// every activation out to all of them. All native work happens on a single
// owning goroutine locked to its OS thread; calls from other goroutines are
// marshalled onto it and block until they complete.
//
// The native side is supplied by a Backend (see the x11, win32 and portable
// subpackages, selected per target by the platform subpackage).
package hotkey

import (
	"fmt"
	"strings"
)

// Key identifies a key independently of the platform. Printable keys use
// their Unicode code point (KeyA == 'A'); everything else lives above
// keySpecial.
type Key uint32

const KeyUnknown Key = 0

const keySpecial Key = 0x01000000

const (
	KeyEscape Key = keySpecial + iota
	KeyTab
	KeyBackspace
	KeyReturn
	KeyEnter // keypad enter
	KeyInsert
	KeyDelete
	KeyPause
	KeyPrint
	KeyHome
	KeyEnd
	KeyLeft
	KeyUp
	KeyRight
	KeyDown
	KeyPageUp
	KeyPageDown
	KeyCapsLock
	KeyNumLock
	KeyScrollLock
	KeyMenu
	KeyHelp
	KeyVolumeUp
	KeyVolumeDown
	KeyVolumeMute
	KeyMediaPlay
	KeyMediaStop
	KeyMediaPrevious
	KeyMediaNext
	KeyMediaRecord
)

// Function keys F1..F24 are contiguous.
const (
	KeyF1 Key = keySpecial + 0x100 + iota
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20
	KeyF21
	KeyF22
	KeyF23
	KeyF24
)

const (
	KeySpace Key = ' '
	Key0     Key = '0'
	Key1     Key = '1'
	Key2     Key = '2'
	Key3     Key = '3'
	Key4     Key = '4'
	Key5     Key = '5'
	Key6     Key = '6'
	Key7     Key = '7'
	Key8     Key = '8'
	Key9     Key = '9'
	KeyA     Key = 'A'
	KeyB     Key = 'B'
	KeyC     Key = 'C'
	KeyD     Key = 'D'
	KeyE     Key = 'E'
	KeyF     Key = 'F'
	KeyG     Key = 'G'
	KeyH     Key = 'H'
	KeyI     Key = 'I'
	KeyJ     Key = 'J'
	KeyK     Key = 'K'
	KeyL     Key = 'L'
	KeyM     Key = 'M'
	KeyN     Key = 'N'
	KeyO     Key = 'O'
	KeyP     Key = 'P'
	KeyQ     Key = 'Q'
	KeyR     Key = 'R'
	KeyS     Key = 'S'
	KeyT     Key = 'T'
	KeyU     Key = 'U'
	KeyV     Key = 'V'
	KeyW     Key = 'W'
	KeyX     Key = 'X'
	KeyY     Key = 'Y'
	KeyZ     Key = 'Z'
)

// IsPrintable reports whether k is a character key resolved through the
// active keyboard layout rather than a fixed native constant.
func (k Key) IsPrintable() bool {
	return k != KeyUnknown && k < keySpecial
}

// IsFunction reports whether k is one of F1..F24.
func (k Key) IsFunction() bool {
	return k >= KeyF1 && k <= KeyF24
}

// Rune returns the character of a printable key.
func (k Key) Rune() rune {
	if !k.IsPrintable() {
		return 0
	}
	return rune(k)
}

func (k Key) String() string {
	if name, ok := specialNames[k]; ok {
		return name
	}
	if k.IsFunction() {
		return fmt.Sprintf("F%d", k-KeyF1+1)
	}
	if k.IsPrintable() {
		return strings.ToUpper(string(rune(k)))
	}
	return fmt.Sprintf("Key(0x%x)", uint32(k))
}

// Modifier is a set of abstract modifier bits.
type Modifier uint32

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
	ModMeta
	ModKeypad

	ModNone Modifier = 0
)

func (m Modifier) Has(o Modifier) bool { return m&o == o }

func (m Modifier) String() string {
	var parts []string
	if m.Has(ModCtrl) {
		parts = append(parts, "Ctrl")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "Alt")
	}
	if m.Has(ModShift) {
		parts = append(parts, "Shift")
	}
	if m.Has(ModMeta) {
		parts = append(parts, "Meta")
	}
	if m.Has(ModKeypad) {
		parts = append(parts, "Keypad")
	}
	return strings.Join(parts, "+")
}

var specialNames = map[Key]string{
	KeySpace:         "Space",
	KeyEscape:        "Escape",
	KeyTab:           "Tab",
	KeyBackspace:     "Backspace",
	KeyReturn:        "Return",
	KeyEnter:         "KPEnter",
	KeyInsert:        "Insert",
	KeyDelete:        "Delete",
	KeyPause:         "Pause",
	KeyPrint:         "Print",
	KeyHome:          "Home",
	KeyEnd:           "End",
	KeyLeft:          "Left",
	KeyUp:            "Up",
	KeyRight:         "Right",
	KeyDown:          "Down",
	KeyPageUp:        "PageUp",
	KeyPageDown:      "PageDown",
	KeyCapsLock:      "CapsLock",
	KeyNumLock:       "NumLock",
	KeyScrollLock:    "ScrollLock",
	KeyMenu:          "Menu",
	KeyHelp:          "Help",
	KeyVolumeUp:      "VolumeUp",
	KeyVolumeDown:    "VolumeDown",
	KeyVolumeMute:    "VolumeMute",
	KeyMediaPlay:     "MediaPlay",
	KeyMediaStop:     "MediaStop",
	KeyMediaPrevious: "MediaPrevious",
	KeyMediaNext:     "MediaNext",
	KeyMediaRecord:   "MediaRecord",
}
