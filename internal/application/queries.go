package application

import (
	"time"

	"github.com/bnema/inline-edit/internal/domain"
)

type DocumentSummary struct {
	ID        domain.DocumentID
	Title     string
	Kind      domain.ContentKind
	Revision  int
	UpdatedAt time.Time
	Size      int
	// Open is set when an editing session exists for the document; SaveState
	// and Dirty are only meaningful then.
	Open      bool
	Dirty     bool
	SaveState domain.SaveState
}

func summaryFromDocument(document domain.Document) DocumentSummary {
	return DocumentSummary{
		ID:        document.ID,
		Title:     document.Title,
		Kind:      document.Kind,
		Revision:  document.Revision,
		UpdatedAt: document.UpdatedAt,
		Size:      len(document.Body),
		SaveState: domain.SaveStateIdle,
	}
}
