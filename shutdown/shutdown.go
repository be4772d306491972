// Package shutdown routes the platform's termination signals to the daemon.
package shutdown

import (
	"context"
	"os"
	"os/signal"
)

// Notify relays the termination signals to ch.
func Notify(ch chan os.Signal) {
	signal.Notify(ch, signals...)
}

// Context is cancelled on the first termination signal.
func Context(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, signals...)
}
