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
	{hotkey.ModAlt, xhotkey.ModAlt},
	{hotkey.ModMeta, xhotkey.ModWin},
}

// Virtual-key codes. Letters and digits use the library constants below.
var keyCodes = map[hotkey.Key]xhotkey.Key{
	hotkey.KeySpace:  xhotkey.KeySpace,
	hotkey.KeyReturn: xhotkey.KeyReturn,
	hotkey.KeyEscape: xhotkey.KeyEscape,
	hotkey.KeyDelete: xhotkey.KeyDelete,
	hotkey.KeyTab:    xhotkey.KeyTab,
	hotkey.KeyLeft:   xhotkey.KeyLeft,
	hotkey.KeyRight:  xhotkey.KeyRight,
	hotkey.KeyUp:     xhotkey.KeyUp,
	hotkey.KeyDown:   xhotkey.KeyDown,

	hotkey.KeyBackspace:     0x08,
	hotkey.KeyEnter:         0x0d,
	hotkey.KeyInsert:        0x2d,
	hotkey.KeyHome:          0x24,
	hotkey.KeyEnd:           0x23,
	hotkey.KeyPageUp:        0x21,
	hotkey.KeyPageDown:      0x22,
	hotkey.KeyPause:         0x13,
	hotkey.KeyPrint:         0x2c,
	hotkey.KeyVolumeUp:      0xaf,
	hotkey.KeyVolumeDown:    0xae,
	hotkey.KeyVolumeMute:    0xad,
	hotkey.KeyMediaPlay:     0xb3,
	hotkey.KeyMediaStop:     0xb2,
	hotkey.KeyMediaPrevious: 0xb1,
	hotkey.KeyMediaNext:     0xb0,
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
