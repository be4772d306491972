package platform

import (
	"hotkeyd/hotkey"
	"hotkeyd/hotkey/portable"
	"hotkeyd/hotkey/win32"
)

const defaultBackend = "win32"

var backends = map[string]func() hotkey.Backend{
	"win32":    func() hotkey.Backend { return win32.New() },
	"portable": func() hotkey.Backend { return portable.New() },
}
