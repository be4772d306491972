package hotkey

import "fmt"

// NativeShortcut is a platform key code plus modifier mask as understood by
// the backend's grab API. It is comparable and used directly as a map key.
// A zero Key marks a failed translation and is never registered.
type NativeShortcut struct {
	Key  uint32
	Mods uint32
}

func (s NativeShortcut) Valid() bool { return s.Key != 0 }

func (s NativeShortcut) String() string {
	if !s.Valid() {
		return "native(invalid)"
	}
	return fmt.Sprintf("native(0x%x, mods=0x%x)", s.Key, s.Mods)
}

// Combo is an abstract key plus modifiers, as parsed from a binding string.
type Combo struct {
	Key  Key
	Mods Modifier
}

func (c Combo) String() string {
	if c.Key == KeyUnknown {
		return ""
	}
	if m := c.Mods.String(); m != "" {
		return m + "+" + c.Key.String()
	}
	return c.Key.String()
}
