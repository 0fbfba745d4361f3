package toml

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bnema/inline-edit/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version   int              `toml:"version"`
	Documents []documentSchema `toml:"documents"`
}

type documentSchema struct {
	ID        string `toml:"id"`
	Title     string `toml:"title"`
	Kind      string `toml:"kind"`
	Revision  int    `toml:"revision"`
	UpdatedAt string `toml:"updated_at,omitempty"`
	Body      string `toml:"body,multiline"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
	for i := range s.Documents {
		if s.Documents[i].Kind == "" {
			s.Documents[i].Kind = string(domain.ContentKindRichText)
		}
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported documents schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

func (s fileSchema) find(id domain.DocumentID) (documentSchema, bool) {
	i := slices.IndexFunc(s.Documents, func(entry documentSchema) bool { return entry.ID == string(id) })
	if i < 0 {
		return documentSchema{}, false
	}
	return s.Documents[i], true
}

// put replaces the entry with the same id or inserts it, keeping entries
// ordered by id so the file diffs cleanly.
func (s *fileSchema) put(entry documentSchema) {
	i, found := slices.BinarySearchFunc(s.Documents, entry.ID, func(e documentSchema, id string) int {
		return strings.Compare(e.ID, id)
	})
	if found {
		s.Documents[i] = entry
		return
	}
	s.Documents = slices.Insert(s.Documents, i, entry)
}

func (s *fileSchema) sort() {
	slices.SortStableFunc(s.Documents, func(a, b documentSchema) int {
		return strings.Compare(a.ID, b.ID)
	})
}

func encodeDocument(document domain.Document) documentSchema {
	entry := documentSchema{
		ID:       string(document.ID),
		Title:    document.Title,
		Kind:     string(document.Kind),
		Revision: document.Revision,
		Body:     document.Body,
	}
	if !document.UpdatedAt.IsZero() {
		entry.UpdatedAt = document.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return entry
}

func decodeDocument(entry documentSchema) (domain.Document, error) {
	kind, err := domain.ParseContentKind(entry.Kind)
	if err != nil {
		return domain.Document{}, fmt.Errorf("decode document %q: %w", entry.ID, err)
	}

	var updated time.Time
	if entry.UpdatedAt != "" {
		// An unreadable timestamp is dropped rather than hiding the body.
		if parsed, err := time.Parse(time.RFC3339Nano, entry.UpdatedAt); err == nil {
			updated = parsed
		}
	}

	return domain.Document{
		ID:        domain.DocumentID(entry.ID),
		Title:     entry.Title,
		Kind:      kind,
		Body:      entry.Body,
		Revision:  entry.Revision,
		UpdatedAt: updated,
	}, nil
}
