//go:build linux

package main

// X11 grabs run on the registry's own locked thread; nothing needs the
// process main thread.
func main() {
	run()
}
