package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
)

// Surface binds a view's editable region to one session.
//
// The session owns the canonical value; the surface keeps a mirror of what the
// view shows. The mirror is replaced wholesale only when the session changes
// content on its own (undo, redo, cancel, reset, entering edit mode, external
// sync, selection edits) and never to echo the view's own input, which would
// move the cursor under the user.
type Surface[T any] struct {
	session *Session[T]

	mu      sync.Mutex
	mirror  T
	epoch   uint64
	replace bool
}

func NewSurface[T any](session *Session[T]) *Surface[T] {
	snap := session.Snapshot()
	return &Surface[T]{session: session, mirror: snap.Content, epoch: snap.ContentEpoch}
}

func (f *Surface[T]) Session() *Session[T] {
	return f.session
}

// Mirror returns the content the view is currently showing.
func (f *Surface[T]) Mirror() T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mirror
}

// Input forwards content typed into the view.
func (f *Surface[T]) Input(content T) {
	f.mu.Lock()
	f.mirror = content
	f.mu.Unlock()

	f.session.UpdateContent(content)
}

func (f *Surface[T]) Enter() {
	f.session.StartEditing()
}

func (f *Surface[T]) Commit(ctx context.Context) {
	f.session.StopEditing(ctx)
}

func (f *Surface[T]) Undo() bool {
	return f.session.Undo()
}

func (f *Surface[T]) Redo() bool {
	return f.session.Redo()
}

func (f *Surface[T]) Cancel() {
	f.session.Cancel()
}

func (f *Surface[T]) Save(ctx context.Context) {
	f.session.SaveNow(ctx)
}

// Refresh reports whether the view must replace its region, returning the
// content to show. It returns false while the mirror is current.
func (f *Surface[T]) Refresh() (T, bool) {
	snap := f.session.Snapshot()

	f.mu.Lock()
	defer f.mu.Unlock()

	if snap.ContentEpoch == f.epoch && !f.replace {
		return f.mirror, false
	}
	f.epoch = snap.ContentEpoch
	f.replace = false
	f.mirror = snap.Content
	return f.mirror, true
}

func (f *Surface[T]) replaceContent(content T) {
	f.mu.Lock()
	f.mirror = content
	f.replace = true
	f.mu.Unlock()

	f.session.UpdateContent(content)
}

type SelectionResult struct {
	Outcome domain.SelectionOutcome
	Content string
}

// ReplaceSelection replaces sel in the surface's current content with
// replacement, feeds the result to the session and saves immediately. When
// neither the captured range nor its text can be found the edit is dropped and
// the outcome says so.
func ReplaceSelection(ctx context.Context, surface *Surface[string], sel domain.Selection, replacement string) SelectionResult {
	current := surface.Mirror()
	next, outcome := sel.Apply(current, replacement)
	if outcome == domain.SelectionDropped {
		return SelectionResult{Outcome: outcome, Content: current}
	}

	surface.replaceContent(next)
	surface.Save(ctx)
	return SelectionResult{Outcome: outcome, Content: next}
}

// TransformSelection rewrites the captured selection with transformer, then
// applies the result like ReplaceSelection. The surface may change while the
// transform runs; the captured range is re-validated afterwards.
func TransformSelection(ctx context.Context, surface *Surface[string], sel domain.Selection, transformer ports.SelectionTransformer) (SelectionResult, error) {
	if transformer == nil {
		return SelectionResult{}, fmt.Errorf("no selection transformer configured")
	}

	replacement, err := transformer.Transform(ctx, sel.Text)
	if err != nil {
		return SelectionResult{Outcome: domain.SelectionDropped, Content: surface.Mirror()}, fmt.Errorf("transform selection: %w", err)
	}

	return ReplaceSelection(ctx, surface, sel, replacement), nil
}
