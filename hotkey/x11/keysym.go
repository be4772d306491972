package x11

import (
	"unicode"

	"github.com/BurntSushi/xgb/xproto"

	"hotkeyd/hotkey"
)

const unicodeKeysym = 0x01000000

var specialKeysyms = map[hotkey.Key]xproto.Keysym{
	hotkey.KeyEscape:     0xff1b,
	hotkey.KeyTab:        0xff09,
	hotkey.KeyBackspace:  0xff08,
	hotkey.KeyReturn:     0xff0d,
	hotkey.KeyEnter:      0xff8d,
	hotkey.KeyInsert:     0xff63,
	hotkey.KeyDelete:     0xffff,
	hotkey.KeyPause:      0xff13,
	hotkey.KeyPrint:      0xff61,
	hotkey.KeyHome:       0xff50,
	hotkey.KeyEnd:        0xff57,
	hotkey.KeyLeft:       0xff51,
	hotkey.KeyUp:         0xff52,
	hotkey.KeyRight:      0xff53,
	hotkey.KeyDown:       0xff54,
	hotkey.KeyPageUp:     0xff55,
	hotkey.KeyPageDown:   0xff56,
	hotkey.KeyCapsLock:   0xffe5,
	hotkey.KeyNumLock:    0xff7f,
	hotkey.KeyScrollLock: 0xff14,
	hotkey.KeyMenu:       0xff67,
	hotkey.KeyHelp:       0xff6a,

	hotkey.KeyVolumeUp:      0x1008ff13,
	hotkey.KeyVolumeDown:    0x1008ff11,
	hotkey.KeyVolumeMute:    0x1008ff12,
	hotkey.KeyMediaPlay:     0x1008ff14,
	hotkey.KeyMediaStop:     0x1008ff15,
	hotkey.KeyMediaPrevious: 0x1008ff16,
	hotkey.KeyMediaNext:     0x1008ff17,
	hotkey.KeyMediaRecord:   0x1008ff1c,
}

const (
	xkF1   xproto.Keysym = 0xffbe
	xkKP0  xproto.Keysym = 0xffb0
	xkKPSp xproto.Keysym = 0xff80
)

var keypadKeysyms = map[rune]xproto.Keysym{
	'*': 0xffaa,
	'+': 0xffab,
	'-': 0xffad,
	'.': 0xffae,
	'/': 0xffaf,
	'=': 0xffbd,
	' ': xkKPSp,
}

// keysymFor maps an abstract key to the keysym that names it. Letters use
// the lowercase keysym, which is what column 0 of a keyboard mapping holds.
func keysymFor(key hotkey.Key, mods hotkey.Modifier) (xproto.Keysym, bool) {
	if key.IsFunction() {
		return xkF1 + xproto.Keysym(key-hotkey.KeyF1), true
	}
	if ks, ok := specialKeysyms[key]; ok {
		return ks, true
	}
	if !key.IsPrintable() {
		return 0, false
	}
	r := key.Rune()
	if mods.Has(hotkey.ModKeypad) {
		if r >= '0' && r <= '9' {
			return xkKP0 + xproto.Keysym(r-'0'), true
		}
		if ks, ok := keypadKeysyms[r]; ok {
			return ks, true
		}
	}
	r = unicode.ToLower(r)
	// Latin-1 keysyms equal their code points.
	if (r >= 0x20 && r <= 0x7e) || (r >= 0xa0 && r <= 0xff) {
		return xproto.Keysym(r), true
	}
	return xproto.Keysym(unicodeKeysym | r), true
}

// nativeMods maps abstract modifiers onto X modifier bits. Keypad has no
// X modifier; it only selects a different keysym.
func nativeMods(mods hotkey.Modifier) uint16 {
	var m uint16
	if mods.Has(hotkey.ModShift) {
		m |= xproto.ModMaskShift
	}
	if mods.Has(hotkey.ModCtrl) {
		m |= xproto.ModMaskControl
	}
	if mods.Has(hotkey.ModAlt) {
		m |= xproto.ModMask1
	}
	if mods.Has(hotkey.ModMeta) {
		m |= xproto.ModMask4
	}
	return m
}

// relevantMods are the bits that tell shortcuts apart in incoming events.
// NumLock (Mod2) and CapsLock (Lock) are covered by grabbing every variant.
const relevantMods = xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMask4

var lockVariants = []uint16{
	0,
	xproto.ModMask2,
	xproto.ModMaskLock,
	xproto.ModMask2 | xproto.ModMaskLock,
}
