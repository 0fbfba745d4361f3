// Package editor is the terminal editing surface: a textarea bound to one
// document session.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/bnema/inline-edit/internal/adapters/render/status"
	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const flashTimeout = 3 * time.Second

type Options struct {
	Document domain.Document
	Session  *application.Session[string]
	// Notifier must be the session's OnChange receiver.
	Notifier *Notifier
	// Transformer backs the assist key; assist is disabled when nil.
	Transformer ports.SelectionTransformer
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
	Logger    *slog.Logger
	// Notice is flashed once when the editor starts.
	Notice string
}

type flash struct {
	id   int
	text string
}

type Model struct {
	ctx         context.Context
	document    domain.Document
	surface     *application.Surface[string]
	notifier    *Notifier
	transformer ports.SelectionTransformer
	copy        func(string) error
	log         *slog.Logger

	keys     KeyMap
	help     help.Model
	textarea textarea.Model
	prompt   textinput.Model
	styles   styles

	snap      application.Snapshot[string]
	selection *domain.Selection
	flash     flash
	width     int
	quitting  bool
}

type styles struct {
	title  lipgloss.Style
	meta   lipgloss.Style
	hint   lipgloss.Style
	flash  lipgloss.Style
	prompt lipgloss.Style
	frame  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		hint:   lipgloss.NewStyle().Faint(true),
		flash:  lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("221")),
		frame:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")),
	}
}

func New(ctx context.Context, opts Options) Model {
	copyFn := opts.Clipboard
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NewNotifier()
	}

	surface := application.NewSurface(opts.Session)

	ta := textarea.New()
	ta.CharLimit = 0
	ta.ShowLineNumbers = true
	ta.Placeholder = "Empty document. Press enter to start writing."
	ta.SetValue(surface.Mirror())
	if opts.Session.IsEditing() {
		ta.Focus()
	} else {
		ta.Blur()
	}

	prompt := textinput.New()
	prompt.Prompt = "replace line with: "

	m := Model{
		ctx:         ctx,
		document:    opts.Document,
		surface:     surface,
		notifier:    notifier,
		transformer: opts.Transformer,
		copy:        copyFn,
		log:         logger,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		textarea:    ta,
		prompt:      prompt,
		styles:      newStyles(),
		snap:        opts.Session.Snapshot(),
	}
	if opts.Notice != "" {
		m.flash = flash{id: 1, text: opts.Notice}
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.flash.text != "" {
		return tea.Batch(m.waitForChange(), clearFlashAfter(m.flash.id))
	}
	return m.waitForChange()
}

func (m Model) waitForChange() tea.Cmd {
	notifier := m.notifier
	return func() tea.Msg {
		return notifier.wait()
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.textarea.SetWidth(max(msg.Width-2, 10))
		m.textarea.SetHeight(max(msg.Height-8, 3))
		return m, nil

	case sessionChangedMsg:
		if msg.snap.Version >= m.snap.Version {
			m.snap = msg.snap
		}
		m.syncMirror()
		return m, m.waitForChange()

	case flashClearMsg:
		if msg.id == m.flash.id {
			m.flash.text = ""
		}
		return m, nil

	case saveDoneMsg:
		m.refreshSnapshot()
		return m, nil

	case quitReadyMsg:
		return m, tea.Quit

	case replaceDoneMsg:
		m.refreshSnapshot()
		m.syncMirror()
		return m, m.setFlash(outcomeText(msg.result.Outcome))

	case assistDoneMsg:
		m.refreshSnapshot()
		m.syncMirror()
		if msg.err != nil {
			return m, m.setFlash(fmt.Sprintf("assist failed: %v", msg.err))
		}
		return m, m.setFlash(outcomeText(msg.result.Outcome))

	case tea.KeyMsg:
		if m.selection != nil {
			return m.updatePrompt(msg)
		}
		return m.updateKey(msg)
	}

	return m, nil
}

func (m Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	editing := m.surface.Session().IsEditing()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		surface, ctx := m.surface, m.ctx
		return m, func() tea.Msg {
			surface.Commit(ctx)
			return quitReadyMsg{}
		}

	case !editing && key.Matches(msg, m.keys.Edit):
		m.surface.Enter()
		m.refreshSnapshot()
		m.syncMirror()
		return m, m.textarea.Focus()

	case key.Matches(msg, m.keys.Undo):
		if !m.surface.Undo() {
			return m, m.setFlash("nothing to undo")
		}
		m.refreshSnapshot()
		m.syncMirror()
		return m, nil

	case key.Matches(msg, m.keys.Redo):
		if !m.surface.Redo() {
			return m, m.setFlash("nothing to redo")
		}
		m.refreshSnapshot()
		m.syncMirror()
		return m, nil

	case key.Matches(msg, m.keys.Save):
		surface, ctx := m.surface, m.ctx
		return m, func() tea.Msg {
			surface.Save(ctx)
			return saveDoneMsg{}
		}

	case key.Matches(msg, m.keys.Cancel):
		if !editing && !m.snap.Dirty {
			return m, nil
		}
		m.surface.Cancel()
		m.textarea.Blur()
		m.refreshSnapshot()
		m.syncMirror()
		return m, m.setFlash("edits discarded")

	case key.Matches(msg, m.keys.Copy):
		if err := m.copy(m.textarea.Value()); err != nil {
			return m, m.setFlash(fmt.Sprintf("copy failed: %v", err))
		}
		return m, m.setFlash("copied to clipboard")

	case key.Matches(msg, m.keys.Replace):
		sel, err := m.currentLine()
		if err != nil {
			return m, m.setFlash(err.Error())
		}
		m.selection = &sel
		m.prompt.SetValue(sel.Text)
		m.prompt.CursorEnd()
		return m, m.prompt.Focus()

	case key.Matches(msg, m.keys.Assist):
		if m.transformer == nil {
			return m, m.setFlash("no assist command configured")
		}
		sel, err := m.currentLine()
		if err != nil {
			return m, m.setFlash(err.Error())
		}
		if strings.TrimSpace(sel.Text) == "" {
			return m, m.setFlash("nothing to assist on an empty line")
		}
		surface, ctx, transformer := m.surface, m.ctx, m.transformer
		return m, tea.Batch(m.setFlash("assisting…"), func() tea.Msg {
			result, err := application.TransformSelection(ctx, surface, sel, transformer)
			return assistDoneMsg{result: result, err: err}
		})
	}

	if !editing {
		return m, nil
	}

	before := m.textarea.Value()
	var cmd tea.Cmd
	m.textarea, cmd = m.textarea.Update(msg)
	if after := m.textarea.Value(); after != before {
		m.surface.Input(after)
		m.refreshSnapshot()
	}
	return m, cmd
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.selection = nil
		m.prompt.Blur()
		return m, nil

	case tea.KeyEnter:
		sel := *m.selection
		m.selection = nil
		m.prompt.Blur()

		surface, ctx, replacement := m.surface, m.ctx, m.prompt.Value()
		return m, func() tea.Msg {
			return replaceDoneMsg{result: application.ReplaceSelection(ctx, surface, sel, replacement)}
		}
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

// syncMirror replaces the textarea value only when the session changed the
// content on its own; typed input is never echoed back.
func (m *Model) syncMirror() {
	content, replace := m.surface.Refresh()
	if !replace {
		return
	}
	m.textarea.SetValue(content)
	m.log.Debug("editor content replaced", "document", m.document.ID, "epoch", m.snap.ContentEpoch)
}

func (m *Model) refreshSnapshot() {
	m.snap = m.surface.Session().Snapshot()
}

// currentLine captures the cursor's line of the textarea as a selection.
func (m Model) currentLine() (domain.Selection, error) {
	value := m.textarea.Value()
	lines := strings.Split(value, "\n")
	row := m.textarea.Line()
	if row < 0 || row >= len(lines) {
		return domain.Selection{}, fmt.Errorf("cursor outside content")
	}

	start := 0
	for _, line := range lines[:row] {
		start += len(line) + 1
	}
	return domain.CaptureSelection(value, start, start+len(lines[row]))
}

func (m *Model) setFlash(text string) tea.Cmd {
	m.flash.id++
	m.flash.text = text
	return clearFlashAfter(m.flash.id)
}

func clearFlashAfter(id int) tea.Cmd {
	return tea.Tick(flashTimeout, func(time.Time) tea.Msg {
		return flashClearMsg{id: id}
	})
}

func outcomeText(outcome domain.SelectionOutcome) string {
	switch outcome {
	case domain.SelectionApplied:
		return "line replaced"
	case domain.SelectionFallback:
		return "line moved; replaced its first match"
	default:
		return "line no longer present; nothing replaced"
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	header := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.styles.title.Render(m.document.Title),
		" ",
		m.styles.meta.Render(fmt.Sprintf("(%s · %s)", m.document.ID, m.document.Kind)),
	)

	state := []string{}
	if marker := status.DirtyMarker(m.snap.Dirty); marker != "" {
		state = append(state, marker)
	}
	if indicator := status.Indicator(m.snap.SaveState, m.snap.Error, m.width/2); indicator != "" {
		state = append(state, indicator)
	}
	if !m.snap.Editing {
		state = append(state, m.styles.hint.Render("read-only"))
	}
	if m.flash.text != "" {
		state = append(state, m.styles.flash.Render(m.flash.text))
	}

	parts := []string{header, m.frameView(), strings.Join(state, "  ")}
	if m.selection != nil {
		parts = append(parts, m.styles.prompt.Render(m.prompt.View()))
	}
	parts = append(parts, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) frameView() string {
	return m.styles.frame.Render(m.textarea.View())
}

// Content is the text currently shown in the editor.
func (m Model) Content() string {
	return m.textarea.Value()
}
