//go:build !linux

package main

import (
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

// The portable backend's Cocoa calls must reach the process main thread.
func main() {
	mainthread.Init(run)
}
