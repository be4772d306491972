//go:build !windows && !darwin

package platform

import (
	"hotkeyd/hotkey"
	"hotkeyd/hotkey/x11"
)

const defaultBackend = "x11"

var backends = map[string]func() hotkey.Backend{
	"x11": func() hotkey.Backend { return x11.New() },
}
