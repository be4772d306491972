package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"hotkeyd/beep"
	"hotkeyd/config"
	"hotkeyd/hotkey"
	"hotkeyd/log"
)

// waitSink lets WAIT block until the next activation.
type waitSink struct {
	*lineSink
	activated chan struct{}
}

func (s waitSink) Activated(name, combo, gesture string) {
	s.lineSink.Activated(name, combo, gesture)
	select {
	case s.activated <- struct{}{}:
	default:
	}
}

// runTestMode drives the daemon from stdin against the fake backend.
// Commands, one per line:
//
//	PRESS <combo> [t]     key press as an X server reports it
//	RELEASE <combo> [t]   key release
//	ACTIVATE <combo>      press from a backend that reports hotkeys directly
//	DEACTIVATE <combo>
//	WAIT                  block until the next activation
//	SLEEP <ms>
//	QUIT
func runTestMode(configPath string, debounce time.Duration) int {
	beep.Disable()

	cfg := config.Default()
	if configPath != "" {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	f := hotkey.NewFake()
	reg := hotkey.NewRegistry(f, hotkey.WithDebounce(debounce))
	ctx, cancel := context.WithCancel(context.Background())
	if err := reg.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		return 1
	}
	hotkey.SetDefault(reg)

	sink := waitSink{lineSink: newLineSink(os.Stdout), activated: make(chan struct{}, 1)}
	binder := NewBinder(reg, sink)
	binder.copy = func(text string) error {
		sink.printf("COPY %q", text)
		return nil
	}
	binder.Apply(cfg)
	log.SessionStart(reg.Backend(), configPath, len(cfg.Bindings))

	defer func() {
		binder.Close()
		cancel()
		<-reg.Done()
		log.SessionEnd(binder.Activations())
	}()

	start := time.Now()
	stamp := func(args []string) uint32 {
		if len(args) > 0 {
			if t, err := strconv.ParseUint(args[0], 10, 32); err == nil {
				return uint32(t)
			}
		}
		return uint32(time.Since(start).Milliseconds())
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, args := strings.ToUpper(fields[0]), fields[1:]
		switch cmd {
		case "QUIT":
			return 0
		case "WAIT":
			select {
			case <-sink.activated:
			case <-time.After(5 * time.Second):
				fmt.Fprintln(os.Stderr, "WAIT: timed out")
				return 1
			}
			continue
		case "SLEEP":
			if len(args) > 0 {
				if ms, err := strconv.Atoi(args[0]); err == nil {
					time.Sleep(time.Duration(ms) * time.Millisecond)
				}
			}
			continue
		}

		if len(args) == 0 {
			fmt.Fprintf(os.Stderr, "%s: missing combo\n", cmd)
			continue
		}
		c, err := hotkey.ParseCombo(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", cmd, err)
			continue
		}
		s := f.Shortcut(c.Key, c.Mods)
		switch cmd {
		case "PRESS":
			f.SimPress(s, stamp(args[1:]))
		case "RELEASE":
			f.SimRelease(s, stamp(args[1:]))
		case "ACTIVATE":
			f.SimActivate(s)
		case "DEACTIVATE":
			f.SimDeactivate(s)
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", cmd)
		}
	}
	return 0
}
