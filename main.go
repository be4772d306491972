package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"golang.org/x/term"

	"hotkeyd/beep"
	"hotkeyd/config"
	"hotkeyd/doctor"
	"hotkeyd/hotkey"
	"hotkeyd/hotkey/platform"
	"hotkeyd/log"
	"hotkeyd/shutdown"
)

var version = "dev"

type daemon struct {
	reg     *hotkey.Registry
	cancel  context.CancelFunc
	binder  *Binder
	tuiDone chan struct{}
}

var shutdownOnce sync.Once

func (d *daemon) gracefulShutdown() {
	shutdownOnce.Do(func() {
		if err := d.binder.Close(); err != nil {
			log.Warnf("unbind: %v", err)
		}
		d.cancel()
		<-d.reg.Done()
		log.SessionEnd(d.binder.Activations())
		log.Close()
		if d.tuiDone != nil {
			tuiProgram.Quit()
			<-d.tuiDone
		}
	})
}

func initCrashLog() {
	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}
}

func run() {
	configFlag := flag.String("config", "", "bindings file (default: $HOTKEYD_CONFIG or the user config dir)")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	backendFlag := flag.String("backend", "", "hotkey backend: "+strings.Join(platform.Names(), ", ")+" (default: $HOTKEYD_BACKEND or the platform default)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	beepFlag := flag.Bool("beep", true, "Play a sound on activation")
	debounceFlag := flag.Duration("debounce", hotkey.DefaultDebounce, "Release debounce window for backends that report raw key events")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	probeFlag := flag.String("probe", doctor.DefaultProbe, "Combo the doctor registers")
	selfTestFlag := flag.Bool("selftest", false, "With -doctor, synthesize the probe combo and wait for it")
	testFlag := flag.Bool("test", false, "Test mode (fake backend, stdin-driven)")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}
	initCrashLog()

	if *versionFlag {
		fmt.Printf("hotkeyd %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run(doctor.Options{
			Backend:   *backendFlag,
			Probe:     *probeFlag,
			SelfTest:  *selfTestFlag,
			Clipboard: true,
		}))
	}

	if !*beepFlag {
		beep.Disable()
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
	}

	if *testFlag {
		code := runTestMode(*configFlag, *debounceFlag)
		log.Close()
		os.Exit(code)
	}

	cfgPath, err := config.ResolvePath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	backend, err := platform.New(*backendFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run hotkeyd -doctor for details.")
		os.Exit(1)
	}
	reg := hotkey.NewRegistry(backend, hotkey.WithDebounce(*debounceFlag))
	ctx, cancel := context.WithCancel(context.Background())
	if err := reg.Start(ctx); err != nil {
		log.Errorf("start %s backend: %v", backend.Name(), err)
		fmt.Fprintf(os.Stderr, "Error: %s backend: %v\n", backend.Name(), err)
		cancel()
		os.Exit(1)
	}
	hotkey.SetDefault(reg)

	d := &daemon{reg: reg, cancel: cancel}

	var sink EventSink = newLineSink(os.Stdout)
	if *tuiFlag && term.IsTerminal(int(os.Stdout.Fd())) {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()
		d.tuiDone = make(chan struct{})
		go func() {
			defer close(d.tuiDone)
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("tui: %v", err)
			}
		}()
		sink = tuiSink{}
	} else {
		fmt.Printf("hotkeyd %s: %s backend, %d bindings from %s\n", version, reg.Backend(), len(cfg.Bindings), cfgPath)
	}

	d.binder = NewBinder(reg, sink)
	if err := d.binder.Apply(cfg); err != nil {
		beep.Play(beep.Error)
	}
	log.SessionStart(reg.Backend(), cfgPath, len(cfg.Bindings))
	tuiSend(BackendLineMsg{Text: fmt.Sprintf("%s backend · %s", reg.Backend(), cfgPath)})

	err = config.Watch(ctx, cfgPath, func(c *config.Config) {
		log.Infof("config reloaded: %d bindings", len(c.Bindings))
		if err := d.binder.Apply(c); err != nil {
			beep.Play(beep.Error)
		}
	})
	if err != nil {
		log.Warnf("config watch: %v", err)
	}

	sigCtx, stop := shutdown.Context(context.Background())
	defer stop()
	select {
	case <-sigCtx.Done():
	case <-d.tuiDone:
	case <-reg.Done():
		log.Error("hotkey loop stopped unexpectedly")
	}
	d.gracefulShutdown()
}
