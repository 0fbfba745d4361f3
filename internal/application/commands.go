package application

import "github.com/bnema/inline-edit/internal/domain"

type CreateDocumentCommand struct {
	// ID is derived from Title when empty.
	ID    domain.DocumentID
	Title string
	Kind  domain.ContentKind
	Body  string
}

type WriteDocumentCommand struct {
	ID   domain.DocumentID
	Body string
}

type ReplaceTextCommand struct {
	ID   domain.DocumentID
	Find string
	With string
}

type AssistTextCommand struct {
	ID   domain.DocumentID
	Find string
}

type OpenOptions struct {
	OnChange         func(Snapshot[string])
	OnEditModeChange func(editing bool)
}
