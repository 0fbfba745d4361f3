// Package drafts keeps unsaved document bodies as plain files, one per
// document, next to the configured documents.
package drafts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/bnema/inline-edit/internal/ports"
)

const (
	storeDirMode  = 0o700
	draftFileMode = 0o600
	draftExt      = ".draft"
)

type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.DraftStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, id domain.DocumentID, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.root, storeDirMode); err != nil {
		return fmt.Errorf("create drafts directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(body), draftFileMode); err != nil {
		return fmt.Errorf("write draft %q: %w", id, err)
	}

	return nil
}

func (s *Store) Get(ctx context.Context, id domain.DocumentID) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	path, err := s.Path(id)
	if err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read draft %q: %w", id, err)
	}

	return string(data), true, nil
}

func (s *Store) Delete(ctx context.Context, id domain.DocumentID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := s.Path(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete draft %q: %w", id, err)
	}

	return nil
}

// Path is where the draft for id is kept.
func (s *Store) Path(id domain.DocumentID) (string, error) {
	if err := id.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(id)+draftExt), nil
}
