package x11

import "github.com/BurntSushi/xgb/xproto"

// keymap is a snapshot of the server's keysym to keycode mapping.
type keymap struct {
	index map[xproto.Keysym]xproto.Keycode
}

// newKeymap indexes a GetKeyboardMapping reply whose first row belongs to
// keycode first and which has per keysyms per keycode.
func newKeymap(first xproto.Keycode, per int, keysyms []xproto.Keysym) *keymap {
	km := &keymap{index: make(map[xproto.Keysym]xproto.Keycode)}
	if per <= 0 {
		return km
	}
	// Lower columns win, then lower keycodes, so lookups are stable for a
	// given mapping.
	for col := 0; col < per; col++ {
		for i := col; i < len(keysyms); i += per {
			ks := keysyms[i]
			if ks == 0 {
				continue
			}
			if _, ok := km.index[ks]; !ok {
				km.index[ks] = first + xproto.Keycode(i/per)
			}
		}
	}
	return km
}

func (km *keymap) keycode(ks xproto.Keysym) (xproto.Keycode, bool) {
	kc, ok := km.index[ks]
	return kc, ok
}
