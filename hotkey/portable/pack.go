package portable

import "hotkeyd/hotkey"

// keyTag is set on every native key code. macOS numbers the A key 0, which
// would otherwise collide with the invalid zero shortcut.
const keyTag = 1 << 16

func pack(code, mods uint32) hotkey.NativeShortcut {
	return hotkey.NativeShortcut{Key: code | keyTag, Mods: mods}
}

func unpack(s hotkey.NativeShortcut) uint32 {
	return s.Key &^ keyTag
}
