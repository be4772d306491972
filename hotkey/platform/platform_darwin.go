package platform

import (
	"hotkeyd/hotkey"
	"hotkeyd/hotkey/portable"
)

const defaultBackend = "portable"

var backends = map[string]func() hotkey.Backend{
	"portable": func() hotkey.Backend { return portable.New() },
}
