package main

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/atotto/clipboard"

	"hotkeyd/beep"
	"hotkeyd/config"
	"hotkeyd/hotkey"
	"hotkeyd/log"
)

// binding is one live config entry: its handle and the goroutine reading
// the handle's events.
type binding struct {
	cfg    atomic.Pointer[config.Binding]
	combo  hotkey.Combo // guarded by Binder.mu
	handle *hotkey.Handle
	done   chan struct{}
}

// Binder keeps the registry in step with the bindings file.
type Binder struct {
	reg  *hotkey.Registry
	sink EventSink

	// Swapped out by tests.
	exec func(command string) error
	copy func(text string) error

	mu          sync.Mutex
	bindings    map[string]*binding
	closed      bool
	activations atomic.Int64
}

func NewBinder(reg *hotkey.Registry, sink EventSink) *Binder {
	return &Binder{
		reg:      reg,
		sink:     sink,
		exec:     startCommand,
		copy:     clipboard.WriteAll,
		bindings: make(map[string]*binding),
	}
}

// Apply adds new bindings, rebinds changed ones and closes the ones no
// longer in cfg. Failures for one binding do not stop the others.
func (b *Binder) Apply(cfg *config.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}

	var errs []error
	seen := make(map[string]bool, len(cfg.Bindings))
	for _, c := range cfg.Bindings {
		seen[c.Name] = true
		if err := b.apply(c); err != nil {
			log.Warnf("binding %s: %v", c.Name, err)
			b.sink.Error(c.Name, err)
			errs = append(errs, fmt.Errorf("%s: %w", c.Name, err))
		}
	}
	for name, bd := range b.bindings {
		if seen[name] {
			continue
		}
		if err := b.drop(bd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		delete(b.bindings, name)
		log.Infof("binding %s removed", name)
	}
	b.sink.BindingsChanged(b.rows())
	return errors.Join(errs...)
}

func (b *Binder) apply(c config.Binding) error {
	combo, err := c.Combo()
	if err != nil {
		return err
	}
	bd, ok := b.bindings[c.Name]
	if ok && needsListener(*bd.cfg.Load(), c) {
		// The listener shape changed; start over with a fresh handle.
		if err := b.drop(bd); err != nil {
			log.Warnf("binding %s: %v", c.Name, err)
		}
		delete(b.bindings, c.Name)
		ok = false
	}
	if !ok {
		bd = &binding{handle: b.reg.NewHandle(), done: make(chan struct{})}
		bd.cfg.Store(&c)
		b.bindings[c.Name] = bd
		go b.listen(bd)
	} else {
		bd.cfg.Store(&c)
	}

	enabled := c.IsEnabled()
	if !enabled {
		if err := bd.handle.SetRegistered(false); err != nil && !errors.Is(err, hotkey.ErrUnregister) {
			return err
		}
	}
	if combo == bd.combo && bd.handle.Shortcut().Valid() {
		if enabled {
			return bd.handle.SetRegistered(true)
		}
		return nil
	}

	if enabled && b.reg.IsKeyCaptured(combo.Key, combo.Mods) {
		log.Warnf("binding %s: %s is already captured by another binding; both will fire", c.Name, combo)
	}
	bd.combo = combo
	if err := bd.handle.SetCombo(combo, enabled); err != nil {
		return err
	}
	log.Infof("binding %s bound to %s (%s)", c.Name, combo, bd.handle.Status())
	return nil
}

// needsListener reports whether moving from old to c changes how presses
// are classified, which the running listener cannot pick up.
func needsListener(old, c config.Binding) bool {
	return (old.Hold == "") != (c.Hold == "") || old.LongPress != c.LongPress
}

func (b *Binder) drop(bd *binding) error {
	err := bd.handle.Close()
	<-bd.done
	return err
}

func (b *Binder) listen(bd *binding) {
	defer close(bd.done)
	c := bd.cfg.Load()
	if c.Hold != "" {
		long := c.LongPress
		if long <= 0 {
			long = hotkey.DefaultLongPress
		}
		hy := hotkey.NewHybrid(bd.handle.Events(), long)
		for g := range hy.Gestures() {
			c := bd.cfg.Load()
			switch g {
			case hotkey.GestureTap:
				b.fire(c, bd.handle.Combo(), string(g), c.Command, c.Copy)
			case hotkey.GestureHold:
				b.fire(c, bd.handle.Combo(), string(g), c.Hold, "")
			}
		}
		return
	}
	for ev := range bd.handle.Events() {
		c := bd.cfg.Load()
		switch ev.Kind() {
		case hotkey.EventActivated:
			b.fire(c, bd.handle.Combo(), "press", c.Command, c.Copy)
		case hotkey.EventReleased:
			beep.Play(beep.Release)
			b.sink.Released(c.Name, bd.handle.Combo().String())
		case hotkey.EventRegisteredChanged:
			b.sink.RegistrationChanged(c.Name, bd.handle.Combo().String(), ev.Registered())
		}
	}
}

func (b *Binder) fire(c *config.Binding, combo hotkey.Combo, gesture, command, text string) {
	b.activations.Add(1)
	log.Activation(c.Name, combo.String())
	beep.Play(beep.Activate)
	b.sink.Activated(c.Name, combo.String(), gesture)

	if text != "" {
		if err := b.copy(text); err != nil {
			log.Errorf("binding %s: copy: %v", c.Name, err)
			b.sink.Error(c.Name, err)
		}
	}
	if command != "" {
		if err := b.exec(command); err != nil {
			log.Errorf("binding %s: run %q: %v", c.Name, command, err)
			beep.Play(beep.Error)
			b.sink.Error(c.Name, err)
		}
	}
}

// Activations is the number of actions fired so far.
func (b *Binder) Activations() int { return int(b.activations.Load()) }

// Rows snapshots the bindings for display, sorted by name.
func (b *Binder) Rows() []BindingRow {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows()
}

func (b *Binder) rows() []BindingRow {
	captured, err := b.reg.Captured()
	if err != nil {
		captured = nil
	}
	rows := make([]BindingRow, 0, len(b.bindings))
	for name, bd := range b.bindings {
		c := bd.cfg.Load()
		rows = append(rows, BindingRow{
			Name:   name,
			Combo:  bd.combo.String(),
			Action: actionText(c),
			Status: bd.handle.Status(),
			Shared: captured[bd.handle.Shortcut()] > 1,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Name < rows[j].Name })
	return rows
}

func actionText(c *config.Binding) string {
	var s string
	switch {
	case c.Command != "":
		s = c.Command
	case c.Copy != "":
		s = fmt.Sprintf("copy %q", c.Copy)
	default:
		s = "log only"
	}
	if c.Hold != "" {
		s += " | hold: " + c.Hold
	}
	return s
}

// Close unbinds everything and waits for the listeners to finish.
func (b *Binder) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	var errs []error
	for name, bd := range b.bindings {
		if err := b.drop(bd); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
		delete(b.bindings, name)
	}
	return errors.Join(errs...)
}

// startCommand runs command through the platform shell without waiting for
// it to finish.
func startCommand(command string) error {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			log.Warnf("command %q: %v", command, err)
		}
	}()
	return nil
}
