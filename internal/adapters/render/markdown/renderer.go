// Package markdown previews documents in the terminal with glamour.
package markdown

import (
	"fmt"
	"strings"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/charmbracelet/glamour"
)

const (
	DefaultStyle = "dark"
	minWidth     = 20
)

type Options struct {
	// Style is a glamour standard style name such as dark, light or notty.
	Style string
	Width int
}

type Renderer struct {
	renderer *glamour.TermRenderer
}

func NewRenderer(opts Options) (*Renderer, error) {
	style := opts.Style
	if style == "" {
		style = DefaultStyle
	}
	width := opts.Width
	if width < minWidth {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("create markdown renderer: %w", err)
	}

	return &Renderer{renderer: r}, nil
}

func (r *Renderer) Render(document domain.Document) (string, error) {
	rendered, err := r.renderer.Render(Source(document))
	if err != nil {
		return "", fmt.Errorf("render document %q: %w", document.ID, err)
	}
	return rendered, nil
}

// Source is the markdown shown for a document. Rich text and tables are
// markdown already; chart specs are fenced and metrics are emphasized.
func Source(document domain.Document) string {
	var b strings.Builder
	if !strings.HasPrefix(strings.TrimSpace(document.Body), "# ") {
		fmt.Fprintf(&b, "# %s\n\n", document.Title)
	}

	switch document.Kind {
	case domain.ContentKindChart:
		b.WriteString("```json\n")
		b.WriteString(strings.TrimRight(document.Body, "\n"))
		b.WriteString("\n```\n")
	case domain.ContentKindMetric:
		fmt.Fprintf(&b, "**%s**\n", strings.TrimSpace(document.Body))
	default:
		b.WriteString(document.Body)
	}

	return b.String()
}
