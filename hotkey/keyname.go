package hotkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"hotkeyd/log"
)

var (
	ErrEmptyCombo  = errors.New("hotkey: empty key combination")
	ErrMultiChord  = errors.New("hotkey: only single-chord combinations are supported")
	ErrUnknownName = errors.New("hotkey: unknown key name")
)

var modifierNames = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"meta":    ModMeta,
	"super":   ModMeta,
	"win":     ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
	"keypad":  ModKeypad,
	"kp":      ModKeypad,
}

var keyAliases = map[string]Key{
	"esc":         KeyEscape,
	"enter":       KeyReturn,
	"ins":         KeyInsert,
	"del":         KeyDelete,
	"pgup":        KeyPageUp,
	"pgdn":        KeyPageDown,
	"pagedown":    KeyPageDown,
	"printscreen": KeyPrint,
	"prtsc":       KeyPrint,
	"break":       KeyPause,
	"plus":        '+',
	"minus":       '-',
	"comma":       ',',
	"period":      '.',

	// X11 names for media keys.
	"xf86audioraisevolume": KeyVolumeUp,
	"xf86audiolowervolume": KeyVolumeDown,
	"xf86audiomute":        KeyVolumeMute,
	"xf86audioplay":        KeyMediaPlay,
	"xf86audiostop":        KeyMediaStop,
	"xf86audioprev":        KeyMediaPrevious,
	"xf86audionext":        KeyMediaNext,
	"xf86audiorecord":      KeyMediaRecord,
}

var namedKeys map[string]Key

func init() {
	namedKeys = make(map[string]Key, len(specialNames)+len(keyAliases))
	for k, name := range specialNames {
		namedKeys[strings.ToLower(name)] = k
	}
	for name, k := range keyAliases {
		namedKeys[name] = k
	}
}

// ParseCombo parses strings like "Ctrl+Alt+T", "meta+space" or "F12".
// Names are case-insensitive. A sequence of several chords ("Ctrl+K, Ctrl+C")
// cannot be grabbed natively and is rejected.
func ParseCombo(s string) (Combo, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Combo{}, ErrEmptyCombo
	}
	if strings.Contains(s, ",") && s != "," && !strings.HasSuffix(s, "+,") {
		log.Warnf("key sequence %q has more than one chord", s)
		return Combo{}, fmt.Errorf("%w: %q", ErrMultiChord, s)
	}

	parts := splitCombo(s)
	var c Combo
	for i, p := range parts {
		last := i == len(parts)-1
		if m, ok := modifierNames[strings.ToLower(p)]; ok && !last {
			c.Mods |= m
			continue
		}
		if !last {
			return Combo{}, fmt.Errorf("%w: %q is not a modifier", ErrUnknownName, p)
		}
		k, err := ParseKey(p)
		if err != nil {
			return Combo{}, err
		}
		c.Key = k
	}
	return c, nil
}

// splitCombo splits on '+' while allowing '+' itself as the final key.
func splitCombo(s string) []string {
	if s == "+" {
		return []string{"+"}
	}
	trailingPlus := strings.HasSuffix(s, "++")
	if trailingPlus {
		s = strings.TrimSuffix(s, "++")
	}
	var parts []string
	for _, p := range strings.Split(s, "+") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if trailingPlus {
		parts = append(parts, "+")
	}
	return parts
}

// ParseKey resolves a single key name.
func ParseKey(name string) (Key, error) {
	if utf8.RuneCountInString(name) == 1 {
		r, _ := utf8.DecodeRuneInString(name)
		if unicode.IsPrint(r) {
			return Key(unicode.ToUpper(r)), nil
		}
	}
	lower := strings.ToLower(name)
	if k, ok := namedKeys[lower]; ok {
		return k, nil
	}
	if len(lower) > 1 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 24 {
			return KeyF1 + Key(n-1), nil
		}
	}
	return KeyUnknown, fmt.Errorf("%w: %q", ErrUnknownName, name)
}
