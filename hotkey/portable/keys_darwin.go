package portable

import (
	xhotkey "golang.design/x/hotkey"

	"hotkeyd/hotkey"
)

var modifierMap = []struct {
	mod    hotkey.Modifier
	native xhotkey.Modifier
}{
	{hotkey.ModCtrl, xhotkey.ModCtrl},
	{hotkey.ModShift, xhotkey.ModShift},
	{hotkey.ModAlt, xhotkey.ModOption},
	{hotkey.ModMeta, xhotkey.ModCmd},
}

// Carbon virtual key codes follow the ANSI layout. Reading the active layout
// takes UCKeyTranslate, which is not reachable without cgo.
var keyCodes = map[hotkey.Key]xhotkey.Key{
	hotkey.KeySpace:  xhotkey.KeySpace,
	hotkey.KeyReturn: xhotkey.KeyReturn,
	hotkey.KeyEscape: xhotkey.KeyEscape,
	hotkey.KeyTab:    xhotkey.KeyTab,
	hotkey.KeyLeft:   xhotkey.KeyLeft,
	hotkey.KeyRight:  xhotkey.KeyRight,
	hotkey.KeyUp:     xhotkey.KeyUp,
	hotkey.KeyDown:   xhotkey.KeyDown,

	hotkey.KeyBackspace:  0x33,
	hotkey.KeyEnter:      0x4c,
	hotkey.KeyDelete:     0x75,
	hotkey.KeyHome:       0x73,
	hotkey.KeyEnd:        0x77,
	hotkey.KeyPageUp:     0x74,
	hotkey.KeyPageDown:   0x79,
	hotkey.KeyHelp:       0x72,
	hotkey.KeyCapsLock:   0x39,
	hotkey.KeyVolumeUp:   0x48,
	hotkey.KeyVolumeDown: 0x49,
	hotkey.KeyVolumeMute: 0x4a,

	'-': 0x1b, '=': 0x18, '[': 0x21, ']': 0x1e, '\\': 0x2a,
	';': 0x29, '\'': 0x27, ',': 0x2b, '.': 0x2f, '/': 0x2c, '`': 0x32,
}

func init() {
	letters := []xhotkey.Key{
		xhotkey.KeyA, xhotkey.KeyB, xhotkey.KeyC, xhotkey.KeyD, xhotkey.KeyE, xhotkey.KeyF,
		xhotkey.KeyG, xhotkey.KeyH, xhotkey.KeyI, xhotkey.KeyJ, xhotkey.KeyK, xhotkey.KeyL,
		xhotkey.KeyM, xhotkey.KeyN, xhotkey.KeyO, xhotkey.KeyP, xhotkey.KeyQ, xhotkey.KeyR,
		xhotkey.KeyS, xhotkey.KeyT, xhotkey.KeyU, xhotkey.KeyV, xhotkey.KeyW, xhotkey.KeyX,
		xhotkey.KeyY, xhotkey.KeyZ,
	}
	for i, k := range letters {
		keyCodes[hotkey.KeyA+hotkey.Key(i)] = k
	}
	digits := []xhotkey.Key{
		xhotkey.Key0, xhotkey.Key1, xhotkey.Key2, xhotkey.Key3, xhotkey.Key4,
		xhotkey.Key5, xhotkey.Key6, xhotkey.Key7, xhotkey.Key8, xhotkey.Key9,
	}
	for i, k := range digits {
		keyCodes[hotkey.Key0+hotkey.Key(i)] = k
	}
	fkeys := []xhotkey.Key{
		xhotkey.KeyF1, xhotkey.KeyF2, xhotkey.KeyF3, xhotkey.KeyF4, xhotkey.KeyF5,
		xhotkey.KeyF6, xhotkey.KeyF7, xhotkey.KeyF8, xhotkey.KeyF9, xhotkey.KeyF10,
		xhotkey.KeyF11, xhotkey.KeyF12, xhotkey.KeyF13, xhotkey.KeyF14, xhotkey.KeyF15,
		xhotkey.KeyF16, xhotkey.KeyF17, xhotkey.KeyF18, xhotkey.KeyF19, xhotkey.KeyF20,
	}
	for i, k := range fkeys {
		keyCodes[hotkey.KeyF1+hotkey.Key(i)] = k
	}
}
