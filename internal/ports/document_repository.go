package ports

import (
	"context"

	"github.com/bnema/inline-edit/internal/domain"
)

type DocumentRepository interface {
	GetByID(ctx context.Context, id domain.DocumentID) (domain.Document, error)
	List(ctx context.Context) ([]domain.Document, error)
	Save(ctx context.Context, document domain.Document) error
}
