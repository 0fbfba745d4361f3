package editor

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/bnema/inline-edit/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type savedBodies struct {
	mu     sync.Mutex
	bodies []string
}

func (s *savedBodies) Persist(_ context.Context, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bodies = append(s.bodies, body)
	return nil
}

func (s *savedBodies) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}

func newTestModel(t *testing.T, body string, persister ports.Persister[string]) (Model, *application.Session[string]) {
	t.Helper()

	notifier := NewNotifier()
	session := application.NewSession(application.SessionOptions[string]{
		ID:             "notes",
		InitialContent: body,
		Persister:      persister,
		Clock:          testutil.NewManualClock(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		OnChange:       notifier.Notify,
	})
	t.Cleanup(session.Close)

	m := New(context.Background(), Options{
		Document: domain.Document{ID: "notes", Title: "Notes", Kind: domain.ContentKindRichText, Body: body},
		Session:  session,
		Notifier: notifier,
	})
	return m, session
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	updated, ok := next.(Model)
	require.True(t, ok)
	return updated, cmd
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()

	for _, r := range text {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestEditorIgnoresTypingUntilEditing(t *testing.T) {
	m, session := newTestModel(t, "hello", nil)

	m = typeText(t, m, "x")
	assert.Equal(t, "hello", session.Content())
	assert.Contains(t, m.View(), "read-only")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, session.IsEditing())

	m = typeText(t, m, "!")
	assert.Equal(t, "hello!", session.Content())
	assert.Equal(t, "hello!", m.Content())
	assert.True(t, session.IsDirty())
	assert.NotContains(t, m.View(), "read-only")
}

func TestEditorUndoRedoReplaceTextarea(t *testing.T) {
	m, session := newTestModel(t, "", nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "ab")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	assert.Equal(t, "a", session.Content())
	assert.Equal(t, "a", m.Content())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "ab", m.Content())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, "nothing to redo", m.flash.text)
}

func TestEditorEscDiscardsEdits(t *testing.T) {
	m, session := newTestModel(t, "saved text", nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, " plus typing")
	require.True(t, session.IsDirty())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, session.IsEditing())
	assert.False(t, session.IsDirty())
	assert.Equal(t, "saved text", m.Content())
	assert.Equal(t, "edits discarded", m.flash.text)
}

func TestEditorSaveKeyPersists(t *testing.T) {
	persister := &savedBodies{}
	m, session := newTestModel(t, "", persister)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "draft")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, saveDoneMsg{}, msg)
	m, _ = update(t, m, msg)

	assert.Equal(t, []string{"draft"}, persister.all())
	assert.Equal(t, domain.SaveStateSaved, session.SaveState())
	assert.Contains(t, m.View(), "saved")
}

func TestEditorShowsSaveFailure(t *testing.T) {
	persister := ports.PersistFunc[string](func(context.Context, string) error { return errors.New("disk full") })
	m, _ := newTestModel(t, "", persister)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "x")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	m, _ = update(t, m, cmd())

	view := m.View()
	assert.Contains(t, view, "failed to save: disk full")
	assert.Contains(t, view, "ctrl+s to retry")
}

func TestEditorReplaceCurrentLine(t *testing.T) {
	persister := &savedBodies{}
	m, session := newTestModel(t, "first\nsecond", persister)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, m.selection)
	assert.Equal(t, "second", m.selection.Text)

	m.prompt.SetValue("2nd")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.selection)
	assert.Empty(t, persister.all(), "replace runs outside the update loop")

	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, replaceDoneMsg{}, msg)
	m, _ = update(t, m, msg)

	assert.Equal(t, "first\n2nd", session.Content())
	assert.Equal(t, "first\n2nd", m.Content())
	assert.Equal(t, []string{"first\n2nd"}, persister.all())
	assert.Equal(t, "line replaced", m.flash.text)
}

func TestEditorReplacePromptEscCancels(t *testing.T) {
	m, session := newTestModel(t, "only", nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, m.selection)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.Nil(t, m.selection)
	assert.Equal(t, "only", session.Content())
}

func TestEditorAssistWithoutTransformer(t *testing.T) {
	m, _ := newTestModel(t, "text", nil)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlA})
	assert.Equal(t, "no assist command configured", m.flash.text)
}

func TestEditorAssistDoneRefreshesContent(t *testing.T) {
	m, session := newTestModel(t, "teh cat", nil)
	surface := m.surface
	sel, err := domain.FindSelection(surface.Mirror(), "teh cat")
	require.NoError(t, err)
	result := application.ReplaceSelection(context.Background(), surface, sel, "the cat")

	m, _ = update(t, m, assistDoneMsg{result: result})

	assert.Equal(t, "the cat", session.Content())
	assert.Equal(t, "the cat", m.Content())
	assert.Equal(t, "line replaced", m.flash.text)
}

func TestEditorCopyUsesClipboard(t *testing.T) {
	m, _ := newTestModel(t, "copy me", nil)
	var copied string
	m.copy = func(text string) error {
		copied = text
		return nil
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlO})
	assert.Equal(t, "copy me", copied)
	assert.Equal(t, "copied to clipboard", m.flash.text)
}

func TestEditorFlashClearsOnlyLatest(t *testing.T) {
	m, _ := newTestModel(t, "", nil)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlZ})
	first := m.flash.id
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlY})

	m, _ = update(t, m, flashClearMsg{id: first})
	assert.Equal(t, "nothing to redo", m.flash.text)

	m, _ = update(t, m, flashClearMsg{id: m.flash.id})
	assert.Empty(t, m.flash.text)
}

func TestEditorQuitCommitsBeforeQuitting(t *testing.T) {
	persister := &savedBodies{}
	m, session := newTestModel(t, "", persister)
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = typeText(t, m, "bye")

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlQ})
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, quitReadyMsg{}, msg)
	assert.Equal(t, []string{"bye"}, persister.all())
	assert.False(t, session.IsEditing())

	_, cmd = update(t, m, msg)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestEditorSessionChangeFromOutsideReplacesContent(t *testing.T) {
	m, session := newTestModel(t, "v1", nil)

	require.True(t, session.SyncInitialContent("v2 from disk"))
	m, cmd := update(t, m, sessionChangedMsg{snap: session.Snapshot()})

	assert.NotNil(t, cmd)
	assert.Equal(t, "v2 from disk", m.Content())
}

func TestNotifierKeepsLatestSnapshot(t *testing.T) {
	notifier := NewNotifier()

	notifier.Notify(application.Snapshot[string]{Version: 1})
	notifier.Notify(application.Snapshot[string]{Version: 2})
	notifier.Notify(application.Snapshot[string]{Version: 3})

	assert.Equal(t, uint64(3), notifier.wait().snap.Version)
}

func TestNotifierDropsOlderSnapshot(t *testing.T) {
	notifier := NewNotifier()

	notifier.Notify(application.Snapshot[string]{Version: 3, Content: "new"})
	notifier.Notify(application.Snapshot[string]{Version: 2, Content: "old"})

	msg := notifier.wait()
	assert.Equal(t, uint64(3), msg.snap.Version)
	assert.Equal(t, "new", msg.snap.Content)
}

func TestEditorKeepsNewerSnapshotOverStaleMessage(t *testing.T) {
	m, session := newTestModel(t, "v1", nil)
	stale := session.Snapshot()

	session.StartEditing()
	session.UpdateContent("v2")
	m, _ = update(t, m, sessionChangedMsg{snap: session.Snapshot()})
	require.True(t, m.snap.Dirty)

	m, cmd := update(t, m, sessionChangedMsg{snap: stale})

	assert.NotNil(t, cmd)
	assert.True(t, m.snap.Dirty)
	assert.Equal(t, session.Snapshot().Version, m.snap.Version)
}

func TestEditorStartsWithNotice(t *testing.T) {
	notifier := NewNotifier()
	session := application.NewSession(application.SessionOptions[string]{ID: "notes", InitialContent: "x", OnChange: notifier.Notify})
	t.Cleanup(session.Close)

	m := New(context.Background(), Options{
		Document: domain.Document{ID: "notes", Title: "Notes", Kind: domain.ContentKindRichText},
		Session:  session,
		Notifier: notifier,
		Notice:   "restored unsaved draft",
	})

	assert.NotNil(t, m.Init())
	assert.Contains(t, m.View(), "restored unsaved draft")

	m, _ = update(t, m, flashClearMsg{id: m.flash.id})
	assert.NotContains(t, m.View(), "restored unsaved draft")
}
