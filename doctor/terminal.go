package doctor

import (
	"os"

	"golang.org/x/term"

	"hotkeyd/shutdown"
)

// saveTerminal returns a func that puts stdin back the way it was. Key
// synthesis and grabs can leave the terminal in raw mode.
func saveTerminal() func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	state, err := term.GetState(fd)
	if err != nil {
		return func() {}
	}
	return func() { term.Restore(fd, state) }
}

func setupInterruptHandler(restore func()) {
	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		<-sigChan
		restore()
		println("\nInterrupted")
		os.Exit(1)
	}()
}
