package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/inline-edit/internal/adapters/tui/editor"
	"github.com/bnema/inline-edit/internal/adapters/watch"
	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// flushTimeout bounds the wait for the final save after the editor exits.
const flushTimeout = 10 * time.Second

func newEditCmd(app *app) *cobra.Command {
	var noWatch bool

	cmd := &cobra.Command{
		Use:         "edit <id>",
		Short:       "Edit a document in the terminal",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			id := domain.DocumentID(args[0])

			document, err := app.service.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			notifier := editor.NewNotifier()
			session, err := app.service.Open(cmd.Context(), id, application.OpenOptions{OnChange: notifier.Notify})
			if err != nil {
				return err
			}
			defer app.service.Close(id)

			notice := app.restoreDraft(cmd.Context(), id, session)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			if !noWatch {
				stop, err := app.watchDocument(ctx, id)
				if err != nil {
					app.logger.Warn("external changes will not be picked up", "document", id, "error", err)
				} else {
					defer stop()
				}
			}

			var transformer ports.SelectionTransformer
			if app.config.AssistCommand != "" {
				transformer, err = app.newTransformer(app.config.AssistCommand)
				if err != nil {
					return fmt.Errorf("assist: %w", err)
				}
			}

			model := editor.New(ctx, editor.Options{
				Document:    document,
				Session:     session,
				Notifier:    notifier,
				Transformer: transformer,
				Logger:      app.logger,
				Notice:      notice,
			})

			p := tea.NewProgram(
				model,
				tea.WithAltScreen(),
				tea.WithContext(ctx),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, runErr := p.Run()

			// The editor commits on quit; an interrupted program still gets
			// its buffered edits saved here.
			flushCtx, flushCancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), flushTimeout)
			defer flushCancel()
			session.StopEditing(flushCtx)
			if err := session.WaitIdle(flushCtx); err != nil {
				runErr = errors.Join(runErr, fmt.Errorf("wait for final save: %w", err))
			}
			if err := app.keepDraft(flushCtx, id, session.Snapshot()); err != nil {
				runErr = errors.Join(runErr, err)
			}

			if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload the document when it changes on disk")
	return cmd
}

// watchDocument refreshes the open session for id whenever its file changes
// on disk. The returned func stops watching.
func (a *app) watchDocument(ctx context.Context, id domain.DocumentID) (func(), error) {
	if a.watchDir == "" {
		return nil, errors.New("backend does not support watching")
	}

	w, err := watch.New(a.watchDir, watch.Options{
		LastSelfWrite: a.lastSelfWrite,
		Logger:        a.logger,
	})
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx, func(ids []domain.DocumentID) {
			for _, changed := range ids {
				if changed != id {
					continue
				}
				adopted, err := a.service.Refresh(ctx, id)
				if err != nil {
					a.logger.Warn("refresh document", "document", id, "error", err)
					continue
				}
				a.logger.Debug("external change", "document", id, "adopted", adopted)
			}
		})
	}()

	return func() {
		_ = w.Close()
		<-done
	}, nil
}

// restoreDraft loads edits left behind by an earlier failed save into the
// session, which then saves them like any other edit.
func (a *app) restoreDraft(ctx context.Context, id domain.DocumentID, session *application.Session[string]) string {
	draft, ok, err := a.drafts.Get(ctx, id)
	if err != nil {
		a.logger.Warn("read draft", "document", id, "error", err)
		return ""
	}
	if !ok || draft == session.Content() {
		return ""
	}

	session.StartEditing()
	session.UpdateContent(draft)
	a.logger.Info("draft restored", "document", id)
	return "restored unsaved draft"
}

// keepDraft stores content that is still unsaved when the editor exits and
// drops the draft once everything is saved.
func (a *app) keepDraft(ctx context.Context, id domain.DocumentID, snap application.Snapshot[string]) error {
	if !snap.Dirty && snap.SaveState != domain.SaveStateError {
		if err := a.drafts.Delete(ctx, id); err != nil {
			a.logger.Warn("delete draft", "document", id, "error", err)
		}
		return nil
	}

	reason := snap.Error
	if reason == "" {
		reason = "edits not saved"
	}
	saveErr := fmt.Errorf("%w: %s", domain.ErrSaveFailed, reason)
	if err := a.drafts.Put(ctx, id, snap.Content); err != nil {
		return errors.Join(saveErr, fmt.Errorf("keep draft: %w", err))
	}
	return fmt.Errorf("%w; unsaved edits kept as a draft and restored by the next edit", saveErr)
}
