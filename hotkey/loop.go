package hotkey

import (
	"sync"
	"sync/atomic"
)

type loopState int

const (
	loopIdle loopState = iota
	loopRunning
	loopStopped
)

// Loop is the owning thread's task queue. Work posted from any goroutine is
// executed by the backend pump between native events.
type Loop struct {
	mu    sync.Mutex
	state loopState
	queue []func()
	wake  func()
	owner atomic.Uint64
}

func newLoop(wake func()) *Loop {
	return &Loop{wake: wake}
}

// bind records the calling OS thread as the owner. The caller must hold
// runtime.LockOSThread for as long as the loop runs.
func (l *Loop) bind() {
	l.owner.Store(currentThreadID())
}

// unbind forgets the owner once its thread is about to be released.
func (l *Loop) unbind() {
	l.owner.Store(0)
}

func (l *Loop) start() {
	l.mu.Lock()
	l.state = loopRunning
	l.mu.Unlock()
}

// stop refuses further work and runs whatever was queued before it.
func (l *Loop) stop() {
	l.mu.Lock()
	l.state = loopStopped
	tasks := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}

func (l *Loop) Running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == loopRunning
}

// OnOwner reports whether the caller is running on the owning thread.
func (l *Loop) OnOwner() bool {
	owner := l.owner.Load()
	return owner != 0 && owner == currentThreadID()
}

// Post queues fn without waiting for it.
func (l *Loop) Post(fn func()) error {
	l.mu.Lock()
	if l.state != loopRunning {
		l.mu.Unlock()
		return ErrLoopNotRunning
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()
	l.wake()
	return nil
}

// Call runs fn on the owning thread and blocks until it returns. On the
// owning thread itself fn runs in place.
func (l *Loop) Call(fn func()) error {
	if l.OnOwner() {
		fn()
		return nil
	}
	done := make(chan struct{})
	if err := l.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return err
	}
	<-done
	return nil
}

func (l *Loop) drain() {
	l.mu.Lock()
	tasks := l.queue
	l.queue = nil
	l.mu.Unlock()
	for _, fn := range tasks {
		fn()
	}
}
