package application

import (
	"context"
	"log/slog"
	"reflect"
	"time"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/google/uuid"
)

const (
	DefaultDebounce     = 2 * time.Second
	DefaultSavedDisplay = 2 * time.Second
)

type SessionConfig struct {
	// Debounce is the quiet period between the last edit and an automatic save.
	Debounce time.Duration
	// DisableAutosave buffers and records edits without ever scheduling a
	// save; only SaveNow and StopEditing persist.
	DisableAutosave bool
	MaxHistorySize  int
	// SavedDisplay is how long the saved state is reported before reverting to idle.
	SavedDisplay time.Duration
	// HistoryCoalesce folds edits arriving within this window into one history
	// entry. Zero records one entry per UpdateContent call.
	HistoryCoalesce time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		Debounce:       DefaultDebounce,
		MaxHistorySize: domain.DefaultMaxHistorySize,
		SavedDisplay:   DefaultSavedDisplay,
	}
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.Debounce <= 0 {
		c.Debounce = DefaultDebounce
	}
	if c.MaxHistorySize <= 0 {
		c.MaxHistorySize = domain.DefaultMaxHistorySize
	}
	if c.SavedDisplay <= 0 {
		c.SavedDisplay = DefaultSavedDisplay
	}
	if c.HistoryCoalesce < 0 {
		c.HistoryCoalesce = 0
	}
	return c
}

type SessionOptions[T any] struct {
	// ID identifies the session in logs and snapshots. A random id is used when empty.
	ID             string
	InitialContent T
	Persister      ports.Persister[T]
	Config         SessionConfig
	Clock          ports.Clock
	Logger         *slog.Logger
	// Equal compares content structurally. reflect.DeepEqual is used when nil.
	Equal            func(a, b T) bool
	OnEditModeChange func(editing bool)
	// OnChange receives a snapshot after every state transition. It is never
	// called with the session lock held, so calls made from different
	// goroutines may arrive out of order. Snapshot.Version increases with each
	// transition; observers keep the highest one they have seen.
	OnChange func(Snapshot[T])
}

// Snapshot is a consistent view of a session. Content values are shared with
// the session and must not be mutated.
type Snapshot[T any] struct {
	SessionID        string
	Content          T
	LastSavedContent T
	Editing          bool
	Dirty            bool
	SaveState        domain.SaveState
	Error            string
	CanUndo          bool
	CanRedo          bool
	LastSavedAt      time.Time
	// Version increases on every state transition.
	Version uint64
	// ContentEpoch increases whenever the session replaces content on its own
	// (undo, redo, cancel, reset, external sync), as opposed to UpdateContent.
	ContentEpoch uint64
}

// Session is one editable unit's autosave editing session: buffered content,
// bounded undo history, debounced save scheduling and save-state reporting.
// All methods are safe for concurrent use.
type Session[T any] struct {
	lock  stateLock
	id    string
	cfg   SessionConfig
	clock ports.Clock
	log   *slog.Logger
	equal func(a, b T) bool

	onEditModeChange func(bool)
	onChange         func(Snapshot[T])

	initial     T
	content     T
	lastSaved   T
	lastSavedAt time.Time
	editing     bool
	state       domain.SaveState
	errMsg      string
	history     *domain.History[T]
	scheduler   *saveScheduler[T]

	lastEditAt time.Time
	coalescing bool
	version    uint64
	epoch      uint64
	closed     bool

	// pendingInitial marks an initial value that arrived while edits were in
	// progress and is adopted once the session is clean and not editing.
	pendingInitial bool
}

func NewSession[T any](opts SessionOptions[T]) *Session[T] {
	clock := opts.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	equal := opts.Equal
	if equal == nil {
		equal = func(a, b T) bool { return reflect.DeepEqual(a, b) }
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	cfg := opts.Config.withDefaults()

	s := &Session[T]{
		id:               id,
		cfg:              cfg,
		clock:            clock,
		log:              logger.With("session", id),
		equal:            equal,
		onEditModeChange: opts.OnEditModeChange,
		onChange:         opts.OnChange,
		initial:          opts.InitialContent,
		content:          opts.InitialContent,
		lastSaved:        opts.InitialContent,
		state:            domain.SaveStateIdle,
		history:          domain.NewHistory(opts.InitialContent, cfg.MaxHistorySize, clock.Now()),
	}
	s.scheduler = newSaveScheduler[T](&s.lock, clock, opts.Persister, s, cfg.SavedDisplay)

	return s
}

func (s *Session[T]) ID() string {
	return s.id
}

func (s *Session[T]) Config() SessionConfig {
	return s.cfg
}

func (s *Session[T]) Snapshot() Snapshot[T] {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.snapshotLocked()
}

func (s *Session[T]) Content() T {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.content
}

func (s *Session[T]) LastSavedContent() T {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.lastSaved
}

func (s *Session[T]) IsEditing() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.editing
}

// IsDirty reports whether content differs from the last successfully saved value.
func (s *Session[T]) IsDirty() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.dirtyLocked()
}

func (s *Session[T]) SaveState() domain.SaveState {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.state
}

// ErrorMessage is the last save failure message; empty unless SaveState is error.
func (s *Session[T]) ErrorMessage() string {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.errMsg
}

func (s *Session[T]) CanUndo() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.history.CanUndo()
}

func (s *Session[T]) CanRedo() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.history.CanRedo()
}

// HasPendingSave reports whether a debounced save is scheduled and not yet fired.
func (s *Session[T]) HasPendingSave() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.scheduler.hasPending()
}

func (s *Session[T]) StartEditing() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed || s.editing {
		return
	}
	s.setEditingLocked(true)
	s.epoch++
	s.changedLocked()
}

// StopEditing leaves edit mode and saves immediately when content is dirty.
// Like SaveNow it blocks while that save runs.
func (s *Session[T]) StopEditing(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}
	if s.editing {
		s.setEditingLocked(false)
		s.changedLocked()
	}
	if s.dirtyLocked() {
		s.scheduler.saveNow(ctx, s.content)
		return
	}
	if s.adoptPendingLocked() {
		s.changedLocked()
	}
}

// UpdateContent replaces the buffered content, records it in history and,
// when autosave is on and the session is editing, restarts the debounce.
func (s *Session[T]) UpdateContent(content T) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	s.content = content
	s.recordLocked(content)
	s.changedLocked()
	s.scheduleLocked()
}

// SaveNow cancels the debounce and persists the current content on the calling
// goroutine. When a save is already in flight the content is queued behind it
// and SaveNow returns at once. Clean content is not saved.
func (s *Session[T]) SaveNow(ctx context.Context) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed || !s.dirtyLocked() {
		return
	}
	s.scheduler.saveNow(ctx, s.content)
}

// Cancel drops pending work and reverts to the last saved content.
func (s *Session[T]) Cancel() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	s.scheduler.cancelPending()
	s.scheduler.stopClearTimer()
	s.content = s.lastSaved
	s.history.Reset(s.lastSaved, s.clock.Now())
	s.state = domain.SaveStateIdle
	s.errMsg = ""
	s.coalescing = false
	s.epoch++
	s.setEditingLocked(false)
	s.adoptPendingLocked()
	s.changedLocked()
}

func (s *Session[T]) Undo() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return false
	}
	content, ok := s.history.Undo()
	if !ok {
		return false
	}

	s.applyHistoryLocked(content)
	return true
}

func (s *Session[T]) Redo() bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return false
	}
	content, ok := s.history.Redo()
	if !ok {
		return false
	}

	s.applyHistoryLocked(content)
	return true
}

// Reset reinitializes the session to the externally supplied initial content
// regardless of dirty state. Edit mode is left as it is.
func (s *Session[T]) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}

	s.scheduler.cancelPending()
	s.scheduler.stopClearTimer()
	s.pendingInitial = false
	s.reseedLocked(s.initial)
	s.lastSavedAt = time.Time{}
	s.state = domain.SaveStateIdle
	s.errMsg = ""
	s.changedLocked()
}

// SyncInitialContent records a new externally supplied initial value. The
// session adopts it only while it is neither editing nor dirty, so a refresh
// never clobbers in-progress edits. A value that arrives during edits is held
// and adopted when StopEditing or Cancel leaves the session clean, unless a
// save of local content lands first. It reports whether content was replaced.
func (s *Session[T]) SyncInitialContent(content T) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return false
	}

	s.initial = content
	if s.editing || s.dirtyLocked() {
		s.pendingInitial = true
		s.log.Debug("external content deferred", "editing", s.editing, "dirty", s.dirtyLocked())
		return false
	}

	s.pendingInitial = false
	if s.equal(content, s.content) {
		return false
	}
	s.reseedLocked(content)
	s.changedLocked()
	return true
}

// WaitIdle blocks until no save is in flight or ctx is done.
func (s *Session[T]) WaitIdle(ctx context.Context) error {
	for {
		s.lock.Lock()
		idle := s.scheduler.idleSignal()
		s.lock.Unlock()

		if idle == nil {
			return nil
		}

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close disposes the session: pending timers are cancelled and later commands
// are ignored. A save already in flight runs to completion.
func (s *Session[T]) Close() {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.scheduler.close()
}

func (s *Session[T]) saveStarted() {
	s.state = domain.SaveStateSaving
	s.errMsg = ""
	s.log.Debug("save started")
	s.changedLocked()
}

func (s *Session[T]) saveSucceeded(content T) {
	// The write replaced whatever external value was waiting.
	s.pendingInitial = false
	s.lastSaved = content
	s.lastSavedAt = s.clock.Now()
	s.state = domain.SaveStateSaved
	s.errMsg = ""
	s.log.Debug("save succeeded", "dirty", s.dirtyLocked())
	s.changedLocked()
}

func (s *Session[T]) saveFailed(err error) {
	msg := err.Error()
	if msg == "" {
		msg = domain.DefaultSaveErrorMessage
	}
	s.state = domain.SaveStateError
	s.errMsg = msg
	s.log.Warn("save failed", "error", err)
	s.changedLocked()
}

func (s *Session[T]) savedDisplayElapsed() {
	if s.state != domain.SaveStateSaved {
		return
	}
	s.state = domain.SaveStateIdle
	s.changedLocked()
}

func (s *Session[T]) recordLocked(content T) {
	now := s.clock.Now()
	window := s.cfg.HistoryCoalesce
	if window > 0 && s.coalescing && s.history.CanUndo() && now.Sub(s.lastEditAt) < window {
		s.history.Amend(content, now)
	} else {
		s.history.Push(content, now)
	}
	s.coalescing = true
	s.lastEditAt = now
}

func (s *Session[T]) applyHistoryLocked(content T) {
	s.content = content
	s.coalescing = false
	s.epoch++
	s.changedLocked()
	s.scheduleLocked()
}

func (s *Session[T]) scheduleLocked() {
	if s.cfg.DisableAutosave || !s.editing {
		return
	}
	s.scheduler.scheduleDebounced(context.Background(), s.content, s.cfg.Debounce)
}

func (s *Session[T]) reseedLocked(content T) {
	s.content = content
	s.lastSaved = content
	s.history.Reset(content, s.clock.Now())
	s.coalescing = false
	s.epoch++
}

// adoptPendingLocked reseeds from a deferred initial value. The caller emits
// the change notification.
func (s *Session[T]) adoptPendingLocked() bool {
	if !s.pendingInitial || s.editing || s.dirtyLocked() {
		return false
	}
	s.pendingInitial = false
	if s.equal(s.initial, s.content) {
		return false
	}
	s.log.Debug("deferred external content adopted")
	s.reseedLocked(s.initial)
	return true
}

func (s *Session[T]) dirtyLocked() bool {
	return !s.equal(s.content, s.lastSaved)
}

func (s *Session[T]) setEditingLocked(editing bool) {
	if s.editing == editing {
		return
	}
	s.editing = editing
	if s.onEditModeChange != nil {
		notify := s.onEditModeChange
		s.lock.afterUnlock(func() { notify(editing) })
	}
}

func (s *Session[T]) changedLocked() {
	s.version++
	if s.onChange == nil {
		return
	}
	snap := s.snapshotLocked()
	notify := s.onChange
	s.lock.afterUnlock(func() { notify(snap) })
}

func (s *Session[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		SessionID:        s.id,
		Content:          s.content,
		LastSavedContent: s.lastSaved,
		Editing:          s.editing,
		Dirty:            s.dirtyLocked(),
		SaveState:        s.state,
		Error:            s.errMsg,
		CanUndo:          s.history.CanUndo(),
		CanRedo:          s.history.CanRedo(),
		LastSavedAt:      s.lastSavedAt,
		Version:          s.version,
		ContentEpoch:     s.epoch,
	}
}
