package win32

import "hotkeyd/hotkey"

// RegisterHotKey modifier flags.
const (
	modAlt      = 0x0001
	modControl  = 0x0002
	modShift    = 0x0004
	modWin      = 0x0008
	modNoRepeat = 0x4000
)

const (
	vkSpace   = 0x20
	vkF1      = 0x70
	vkNumpad0 = 0x60
)

var specialVK = map[hotkey.Key]uint32{
	hotkey.KeyEscape:     0x1b,
	hotkey.KeyTab:        0x09,
	hotkey.KeyBackspace:  0x08,
	hotkey.KeyReturn:     0x0d,
	hotkey.KeyEnter:      0x0d,
	hotkey.KeyInsert:     0x2d,
	hotkey.KeyDelete:     0x2e,
	hotkey.KeyPause:      0x13,
	hotkey.KeyPrint:      0x2c,
	hotkey.KeyHome:       0x24,
	hotkey.KeyEnd:        0x23,
	hotkey.KeyLeft:       0x25,
	hotkey.KeyUp:         0x26,
	hotkey.KeyRight:      0x27,
	hotkey.KeyDown:       0x28,
	hotkey.KeyPageUp:     0x21,
	hotkey.KeyPageDown:   0x22,
	hotkey.KeyCapsLock:   0x14,
	hotkey.KeyNumLock:    0x90,
	hotkey.KeyScrollLock: 0x91,
	hotkey.KeyMenu:       0x5d,
	hotkey.KeyHelp:       0x2f,

	hotkey.KeyVolumeUp:      0xaf,
	hotkey.KeyVolumeDown:    0xae,
	hotkey.KeyVolumeMute:    0xad,
	hotkey.KeyMediaPlay:     0xb3,
	hotkey.KeyMediaStop:     0xb2,
	hotkey.KeyMediaPrevious: 0xb1,
	hotkey.KeyMediaNext:     0xb0,
}

var numpadVK = map[rune]uint32{
	'*': 0x6a,
	'+': 0x6b,
	'-': 0x6d,
	'.': 0x6e,
	'/': 0x6f,
}

// fixedVK returns the virtual-key code for keys that do not depend on the
// keyboard layout. Printable characters report false and must be resolved
// with VkKeyScanExW.
func fixedVK(key hotkey.Key, mods hotkey.Modifier) (uint32, bool) {
	if key.IsFunction() {
		return vkF1 + uint32(key-hotkey.KeyF1), true
	}
	if vk, ok := specialVK[key]; ok {
		return vk, true
	}
	if key == hotkey.KeySpace {
		return vkSpace, true
	}
	if mods.Has(hotkey.ModKeypad) && key.IsPrintable() {
		r := key.Rune()
		if r >= '0' && r <= '9' {
			return vkNumpad0 + uint32(r-'0'), true
		}
		if vk, ok := numpadVK[r]; ok {
			return vk, true
		}
	}
	return 0, false
}

func nativeMods(mods hotkey.Modifier) uint32 {
	var m uint32
	if mods.Has(hotkey.ModAlt) {
		m |= modAlt
	}
	if mods.Has(hotkey.ModCtrl) {
		m |= modControl
	}
	if mods.Has(hotkey.ModShift) {
		m |= modShift
	}
	if mods.Has(hotkey.ModMeta) {
		m |= modWin
	}
	return m
}

// scanResult decodes a VkKeyScanExW result: the low byte is the virtual key,
// the high byte the shift state the layout needs to produce the character.
// Only the virtual key matters for a grab.
func scanResult(r uint16) (uint32, bool) {
	if r == 0xffff {
		return 0, false
	}
	vk := uint32(r & 0xff)
	return vk, vk != 0 && vk != 0xff
}
