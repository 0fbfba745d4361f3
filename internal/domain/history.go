package domain

import "time"

const (
	// DefaultMaxHistorySize is the undo depth used when none is configured.
	DefaultMaxHistorySize = 50
	// MaxHistorySize is the absolute maximum number of entries allowed.
	MaxHistorySize = 10000
)

type HistoryEntry[T any] struct {
	Content   T
	Timestamp time.Time
}

// History is a bounded linear undo/redo log of content snapshots.
//
// entries[cursor] always holds the current content. Pushing discards the redo
// branch; there is no branching history. History is not safe for concurrent
// use: it is owned by exactly one session, which serializes access.
type History[T any] struct {
	entries []HistoryEntry[T]
	cursor  int
	maxSize int
}

// NewHistory creates a history seeded with a single entry.
// If maxSize is 0 or negative, DefaultMaxHistorySize is used.
// If maxSize exceeds MaxHistorySize, it is clamped to MaxHistorySize.
func NewHistory[T any](seed T, maxSize int, at time.Time) *History[T] {
	if maxSize <= 0 {
		maxSize = DefaultMaxHistorySize
	}
	if maxSize > MaxHistorySize {
		maxSize = MaxHistorySize
	}

	h := &History[T]{maxSize: maxSize}
	h.Reset(seed, at)
	return h
}

// Push drops the redo branch, appends content and advances the cursor.
// When capacity is exceeded the oldest entry is evicted.
func (h *History[T]) Push(content T, at time.Time) {
	h.entries = append(h.entries[:h.cursor+1], HistoryEntry[T]{Content: content, Timestamp: at})
	h.cursor = len(h.entries) - 1

	if over := len(h.entries) - h.maxSize; over > 0 {
		clear(h.entries[:over])
		h.entries = h.entries[over:]
		h.cursor -= over
	}
}

// Amend replaces the entry under the cursor and drops the redo branch.
// It is used to fold a rapid edit into the previous history entry.
func (h *History[T]) Amend(content T, at time.Time) {
	h.entries = h.entries[:h.cursor+1]
	h.entries[h.cursor] = HistoryEntry[T]{Content: content, Timestamp: at}
}

// Undo moves the cursor back one entry. When there is nothing to undo it
// returns the current content and false.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		return h.entries[h.cursor].Content, false
	}

	h.cursor--
	return h.entries[h.cursor].Content, true
}

// Redo moves the cursor forward one entry. When there is nothing to redo it
// returns the current content and false.
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		return h.entries[h.cursor].Content, false
	}

	h.cursor++
	return h.entries[h.cursor].Content, true
}

func (h *History[T]) CanUndo() bool {
	return h.cursor > 0
}

func (h *History[T]) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}

// Reset clears the history to a single entry.
func (h *History[T]) Reset(content T, at time.Time) {
	h.entries = make([]HistoryEntry[T], 1, min(h.maxSize, 16))
	h.entries[0] = HistoryEntry[T]{Content: content, Timestamp: at}
	h.cursor = 0
}

func (h *History[T]) Current() HistoryEntry[T] {
	return h.entries[h.cursor]
}

func (h *History[T]) Len() int {
	return len(h.entries)
}

func (h *History[T]) Cursor() int {
	return h.cursor
}

func (h *History[T]) MaxSize() int {
	return h.maxSize
}
