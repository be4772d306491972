//go:build !linux && !windows

package hotkey

import (
	"bytes"
	"runtime"
	"strconv"
)

// There is no portable thread id here, so use the goroutine id instead. The
// owning goroutine is locked to its thread, which makes the two equivalent.
func currentThreadID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// "goroutine 18 [running]: ..."
	field := bytes.TrimPrefix(buf[:n], []byte("goroutine "))
	if i := bytes.IndexByte(field, ' '); i > 0 {
		field = field[:i]
	}
	id, err := strconv.ParseUint(string(field), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
