package ports

import (
	"context"

	"github.com/bnema/inline-edit/internal/domain"
)

// DraftStore keeps edits that could not be saved so they survive the process.
type DraftStore interface {
	Put(ctx context.Context, id domain.DocumentID, body string) error
	// Get reports false when no draft exists for id.
	Get(ctx context.Context, id domain.DocumentID) (string, bool, error)
	Delete(ctx context.Context, id domain.DocumentID) error
}
