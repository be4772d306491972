package beep

import "golang.org/x/sys/windows"

var procMessageBeep = windows.NewLazySystemDLL("user32.dll").NewProc("MessageBeep")

const (
	mbOK        = 0x00000000
	mbIconError = 0x00000010
)

// Windows plays the system sounds instead of synthesized tones.
func play(s Sound) {
	kind := uintptr(mbOK)
	switch s {
	case Release:
		return
	case Error:
		kind = mbIconError
	}
	go procMessageBeep.Call(kind)
}
