package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/inline-edit/internal/ports"
)

// stateLock serializes every state transition of one session. Callbacks
// registered with afterUnlock while it is held run, in order, once it is
// released, so observers never run under the lock.
type stateLock struct {
	mu      sync.Mutex
	pending []func()
}

func (l *stateLock) Lock() {
	l.mu.Lock()
}

func (l *stateLock) Unlock() {
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	for _, f := range pending {
		f()
	}
}

func (l *stateLock) afterUnlock(f func()) {
	l.pending = append(l.pending, f)
}

// saveSink receives the outcome of persistence attempts. Every method is
// called with the session lock held.
type saveSink[T any] interface {
	saveStarted()
	saveSucceeded(content T)
	saveFailed(err error)
	savedDisplayElapsed()
}

// saveScheduler decides when content is persisted and guarantees that at most
// one Persist call is outstanding. All fields are guarded by lock; the lock is
// released only while Persist runs.
type saveScheduler[T any] struct {
	lock         *stateLock
	clock        ports.Clock
	persister    ports.Persister[T]
	sink         saveSink[T]
	savedDisplay time.Duration

	debounce    ports.Timer
	debounceGen uint64
	clearTimer  ports.Timer
	clearGen    uint64

	inFlight  bool
	queued    T
	hasQueued bool
	idle      chan struct{}
	closed    bool
}

func newSaveScheduler[T any](lock *stateLock, clock ports.Clock, persister ports.Persister[T], sink saveSink[T], savedDisplay time.Duration) *saveScheduler[T] {
	if persister == nil {
		persister = ports.PersistFunc[T](func(context.Context, T) error { return nil })
	}

	return &saveScheduler[T]{
		lock:         lock,
		clock:        clock,
		persister:    persister,
		sink:         sink,
		savedDisplay: savedDisplay,
	}
}

// scheduleDebounced replaces any pending timer with one that saves content,
// as captured now, after delay.
func (s *saveScheduler[T]) scheduleDebounced(ctx context.Context, content T, delay time.Duration) {
	if s.closed {
		return
	}

	s.cancelPending()
	gen := s.debounceGen
	s.debounce = s.clock.AfterFunc(delay, func() {
		s.lock.Lock()
		defer s.lock.Unlock()

		if gen != s.debounceGen || s.closed {
			return
		}
		s.debounce = nil
		s.performSave(ctx, content)
	})
}

func (s *saveScheduler[T]) saveNow(ctx context.Context, content T) {
	s.cancelPending()
	s.performSave(ctx, content)
}

// cancelPending drops the debounced save, if any. An in-flight save is not
// affected.
func (s *saveScheduler[T]) cancelPending() {
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	s.debounceGen++
}

func (s *saveScheduler[T]) hasPending() bool {
	return s.debounce != nil
}

// performSave persists content unless a save is already in flight, in which
// case content replaces whatever was queued. After a successful save the
// queued value, if any, is saved next. A failure discards the queued value.
func (s *saveScheduler[T]) performSave(ctx context.Context, content T) {
	if s.inFlight {
		s.queued = content
		s.hasQueued = true
		return
	}

	s.inFlight = true
	idle := make(chan struct{})
	s.idle = idle
	defer func() {
		s.inFlight = false
		s.idle = nil
		close(idle)
	}()

	ctx = context.WithoutCancel(ctx)
	for {
		s.stopClearTimer()
		s.sink.saveStarted()

		s.lock.Unlock()
		err := s.persist(ctx, content)
		s.lock.Lock()

		if err != nil {
			var zero T
			s.queued = zero
			s.hasQueued = false
			s.sink.saveFailed(err)
			return
		}

		s.sink.saveSucceeded(content)
		if !s.hasQueued {
			s.startClearTimer()
			return
		}

		content = s.queued
		var zero T
		s.queued = zero
		s.hasQueued = false
	}
}

func (s *saveScheduler[T]) persist(ctx context.Context, content T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("persist panicked: %v", r)
		}
	}()

	return s.persister.Persist(ctx, content)
}

func (s *saveScheduler[T]) startClearTimer() {
	s.stopClearTimer()
	if s.closed {
		return
	}

	gen := s.clearGen
	s.clearTimer = s.clock.AfterFunc(s.savedDisplay, func() {
		s.lock.Lock()
		defer s.lock.Unlock()

		if gen != s.clearGen || s.closed {
			return
		}
		s.clearTimer = nil
		s.sink.savedDisplayElapsed()
	})
}

func (s *saveScheduler[T]) stopClearTimer() {
	if s.clearTimer != nil {
		s.clearTimer.Stop()
		s.clearTimer = nil
	}
	s.clearGen++
}

// idleSignal returns a channel closed when the current save run finishes,
// or nil when nothing is in flight.
func (s *saveScheduler[T]) idleSignal() <-chan struct{} {
	if !s.inFlight {
		return nil
	}
	return s.idle
}

func (s *saveScheduler[T]) close() {
	s.cancelPending()
	s.stopClearTimer()
	s.closed = true
}
