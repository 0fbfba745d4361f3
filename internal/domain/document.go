package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

type DocumentID string
type ContentKind string

const (
	ContentKindRichText ContentKind = "richtext"
	ContentKindTable    ContentKind = "table"
	ContentKindChart    ContentKind = "chart"
	ContentKindMetric   ContentKind = "metric"
)

var documentIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

type Document struct {
	ID        DocumentID
	Title     string
	Kind      ContentKind
	Body      string
	Revision  int
	UpdatedAt time.Time
}

func (k ContentKind) Valid() bool {
	switch k {
	case ContentKindRichText, ContentKindTable, ContentKindChart, ContentKindMetric:
		return true
	default:
		return false
	}
}

func ParseContentKind(raw string) (ContentKind, error) {
	kind := ContentKind(strings.ToLower(strings.TrimSpace(raw)))
	if kind == "" {
		return ContentKindRichText, nil
	}
	if !kind.Valid() {
		return "", fmt.Errorf("unsupported content kind %q", raw)
	}
	return kind, nil
}

func (id DocumentID) Validate() error {
	if !documentIDPattern.MatchString(string(id)) || strings.Contains(string(id), "..") {
		return fmt.Errorf("%w %q", ErrInvalidDocumentID, string(id))
	}
	return nil
}

func (d Document) Validate() error {
	if err := d.ID.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if !d.Kind.Valid() {
		return fmt.Errorf("unsupported content kind %q", d.Kind)
	}
	if d.Revision < 0 {
		return fmt.Errorf("revision must not be negative")
	}

	return nil
}

// WithBody returns a copy of d carrying body as a new revision.
func (d Document) WithBody(body string, at time.Time) Document {
	d.Body = body
	d.Revision++
	d.UpdatedAt = at
	return d
}
