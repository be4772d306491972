package hotkey

import "errors"

var (
	// ErrTranslation means the combination has no native representation
	// under the active layout.
	ErrTranslation = errors.New("hotkey: no native key for combination")
	// ErrConflict means the OS refused the grab.
	ErrConflict = errors.New("hotkey: shortcut already grabbed")
	// ErrUnregister means the OS refused to release a grab. Bookkeeping is
	// dropped regardless.
	ErrUnregister = errors.New("hotkey: failed to release shortcut")
	// ErrLoopNotRunning is returned when a call cannot be marshalled onto the
	// owning thread.
	ErrLoopNotRunning = errors.New("hotkey: owning loop not running")

	ErrAlreadyRegistered = errors.New("hotkey: handle already registered")
	ErrNotRegistered     = errors.New("hotkey: handle not registered")
	ErrInvalidShortcut   = errors.New("hotkey: invalid native shortcut")
	ErrClosed            = errors.New("hotkey: handle closed")
	ErrUnsupported       = errors.New("hotkey: platform not supported")
)
