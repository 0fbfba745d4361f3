package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
	"github.com/google/uuid"
)

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// DocumentService runs one editing session per open document and persists
// session saves as new document revisions.
type DocumentService struct {
	repo     ports.DocumentRepository
	clock    ports.Clock
	logger   *slog.Logger
	config   SessionConfig
	sessions *Registry[string]
}

func NewDocumentService(repo ports.DocumentRepository, clock ports.Clock, logger *slog.Logger, config SessionConfig) *DocumentService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &DocumentService{
		repo:     repo,
		clock:    clock,
		logger:   logger,
		config:   config.withDefaults(),
		sessions: NewRegistry[string](),
	}
}

func (s *DocumentService) Create(ctx context.Context, cmd CreateDocumentCommand) (domain.Document, error) {
	id := cmd.ID
	if id == "" {
		id = slugFromTitle(cmd.Title)
	}
	kind := cmd.Kind
	if kind == "" {
		kind = domain.ContentKindRichText
	}

	document := domain.Document{
		ID:        id,
		Title:     strings.TrimSpace(cmd.Title),
		Kind:      kind,
		Body:      cmd.Body,
		Revision:  1,
		UpdatedAt: s.clock.Now(),
	}
	if err := document.Validate(); err != nil {
		return domain.Document{}, fmt.Errorf("validate document: %w", err)
	}

	_, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return domain.Document{}, fmt.Errorf("create document %q: %w", id, domain.ErrDocumentExists)
	}
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		return domain.Document{}, fmt.Errorf("get document by id: %w", err)
	}

	if err := s.repo.Save(ctx, document); err != nil {
		return domain.Document{}, fmt.Errorf("save document: %w", err)
	}

	s.logger.Info("document created", "document", id, "kind", kind)
	return document, nil
}

func (s *DocumentService) Get(ctx context.Context, id domain.DocumentID) (domain.Document, error) {
	if err := id.Validate(); err != nil {
		return domain.Document{}, err
	}

	document, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Document{}, fmt.Errorf("get document by id: %w", err)
	}
	return document, nil
}

func (s *DocumentService) List(ctx context.Context) ([]DocumentSummary, error) {
	documents, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	summaries := make([]DocumentSummary, 0, len(documents))
	for _, document := range documents {
		summary := summaryFromDocument(document)
		if session, ok := s.sessions.Get(string(document.ID)); ok {
			snap := session.Snapshot()
			summary.Open = true
			summary.Dirty = snap.Dirty
			summary.SaveState = snap.SaveState
		}
		summaries = append(summaries, summary)
	}

	slices.SortFunc(summaries, func(a, b DocumentSummary) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})
	return summaries, nil
}

// Open returns the editing session for id, loading the document when no
// session exists yet. Options only apply to a newly created session.
func (s *DocumentService) Open(ctx context.Context, id domain.DocumentID, opts OpenOptions) (*Session[string], error) {
	if session, ok := s.sessions.Get(string(id)); ok {
		return session, nil
	}

	document, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	session, created := s.sessions.Open(string(id), func() *Session[string] {
		return NewSession(SessionOptions[string]{
			ID:               string(id),
			InitialContent:   document.Body,
			Persister:        s.bodyPersister(id),
			Config:           s.config,
			Clock:            s.clock,
			Logger:           s.logger.With("document", id),
			Equal:            func(a, b string) bool { return a == b },
			OnEditModeChange: opts.OnEditModeChange,
			OnChange:         opts.OnChange,
		})
	})
	if created {
		s.logger.Debug("session opened", "document", id, "revision", document.Revision)
	}
	return session, nil
}

// Refresh reloads the stored body of an open document and offers it to its
// session as the new initial content. It reports whether the session adopted it.
func (s *DocumentService) Refresh(ctx context.Context, id domain.DocumentID) (bool, error) {
	session, ok := s.sessions.Get(string(id))
	if !ok {
		return false, nil
	}

	document, err := s.Get(ctx, id)
	if err != nil {
		return false, err
	}

	adopted := session.SyncInitialContent(document.Body)
	if adopted {
		s.logger.Info("document reloaded", "document", id, "revision", document.Revision)
	}
	return adopted, nil
}

func (s *DocumentService) Close(id domain.DocumentID) bool {
	return s.sessions.Close(string(id))
}

func (s *DocumentService) CloseAll() {
	s.sessions.CloseAll()
}

// Write replaces the whole body through an editing session and waits for the
// save to finish.
func (s *DocumentService) Write(ctx context.Context, cmd WriteDocumentCommand) (domain.Document, error) {
	err := s.withSurface(ctx, cmd.ID, func(surface *Surface[string]) error {
		surface.Enter()
		surface.Input(cmd.Body)
		surface.Commit(ctx)
		return s.settle(ctx, surface.Session())
	})
	if err != nil {
		return domain.Document{}, fmt.Errorf("write document: %w", err)
	}

	return s.Get(ctx, cmd.ID)
}

// ReplaceText replaces the first occurrence of cmd.Find with cmd.With.
func (s *DocumentService) ReplaceText(ctx context.Context, cmd ReplaceTextCommand) (SelectionResult, error) {
	var result SelectionResult
	err := s.withSurface(ctx, cmd.ID, func(surface *Surface[string]) error {
		sel, err := domain.FindSelection(surface.Mirror(), cmd.Find)
		if err != nil {
			return err
		}

		result = ReplaceSelection(ctx, surface, sel, cmd.With)
		return s.settle(ctx, surface.Session())
	})
	if err != nil {
		return result, fmt.Errorf("replace text: %w", err)
	}
	return result, nil
}

// AssistText rewrites the first occurrence of cmd.Find with transformer.
func (s *DocumentService) AssistText(ctx context.Context, cmd AssistTextCommand, transformer ports.SelectionTransformer) (SelectionResult, error) {
	var result SelectionResult
	err := s.withSurface(ctx, cmd.ID, func(surface *Surface[string]) error {
		sel, err := domain.FindSelection(surface.Mirror(), cmd.Find)
		if err != nil {
			return err
		}

		result, err = TransformSelection(ctx, surface, sel, transformer)
		if err != nil {
			return err
		}
		return s.settle(ctx, surface.Session())
	})
	if err != nil {
		return result, fmt.Errorf("assist text: %w", err)
	}
	return result, nil
}

// withSurface runs fn against the document's session, opening a temporary one
// when the document is not already open.
func (s *DocumentService) withSurface(ctx context.Context, id domain.DocumentID, fn func(*Surface[string]) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, existed := s.sessions.Get(string(id))
	session, err := s.Open(ctx, id, OpenOptions{})
	if err != nil {
		return err
	}
	if !existed {
		defer s.Close(id)
	}

	return fn(NewSurface(session))
}

func (s *DocumentService) settle(ctx context.Context, session *Session[string]) error {
	if err := session.WaitIdle(ctx); err != nil {
		return err
	}

	snap := session.Snapshot()
	if snap.SaveState == domain.SaveStateError {
		return fmt.Errorf("%w: %s", domain.ErrSaveFailed, snap.Error)
	}
	return nil
}

func (s *DocumentService) bodyPersister(id domain.DocumentID) ports.Persister[string] {
	return ports.PersistFunc[string](func(ctx context.Context, body string) error {
		document, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get document by id: %w", err)
		}

		if err := s.repo.Save(ctx, document.WithBody(body, s.clock.Now())); err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		return nil
	})
}

func slugFromTitle(title string) domain.DocumentID {
	slug := strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = uuid.NewString()[:8]
	}
	return domain.DocumentID(slug)
}
