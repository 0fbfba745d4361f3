package status

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/inline-edit/internal/application"
	"github.com/bnema/inline-edit/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type RenderOptions struct {
	Now time.Time
	// Width truncates titles when positive.
	Width int
}

func renderView(documents []application.DocumentSummary, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Documents"),
		s.header.Render(fmt.Sprintf("documents: %d", len(documents))),
	}

	if len(documents) == 0 {
		lines = append(lines, s.empty.Render("No documents yet. Create one with `ie doc create`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, document := range documents {
		lines = append(lines, s.section.Render(renderDocument(document, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderDocument(document application.DocumentSummary, opts RenderOptions, s styles) string {
	title := documentTitle(document.Title, opts.Width)
	heading := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.document.Render(title),
		" ",
		s.id.Render(fmt.Sprintf("(%s)", document.ID)),
	)
	if document.Open {
		if marker := DirtyMarker(document.Dirty); marker != "" {
			heading += " " + marker
		}
		if indicator := Indicator(document.SaveState, "", 0); indicator != "" {
			heading += " " + indicator
		}
	}

	updated := lipgloss.NewStyle().
		Foreground(ageColor(document.UpdatedAt, opts.Now)).
		Render(formatUpdatedRelative(document.UpdatedAt, opts.Now))

	detail := lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.kind.Render(kindLabel(document.Kind)),
		s.detail.Render(fmt.Sprintf(" · rev %d · %s · ", document.Revision, formatSize(document.Size))),
		updated,
	)

	return lipgloss.JoinVertical(lipgloss.Left, heading, detail)
}

func documentTitle(title string, width int) string {
	trimmed := strings.TrimSpace(title)
	if width <= 0 {
		return trimmed
	}
	return truncate.StringWithTail(trimmed, uint(width), "…")
}

func kindLabel(kind domain.ContentKind) string {
	switch kind {
	case domain.ContentKindTable:
		return "table"
	case domain.ContentKindChart:
		return "chart"
	case domain.ContentKindMetric:
		return "metric"
	default:
		return "rich text"
	}
}

func formatSize(bytes int) string {
	if bytes == 1 {
		return "1 byte"
	}
	if bytes < 1024 {
		return fmt.Sprintf("%d bytes", bytes)
	}
	return fmt.Sprintf("%.1f KiB", float64(bytes)/1024)
}

func formatUpdatedRelative(updatedAt, now time.Time) string {
	if updatedAt.IsZero() {
		return "never saved"
	}
	if now.IsZero() {
		return "updated " + updatedAt.Format("15:04 on 02 Jan")
	}

	elapsed := now.Sub(updatedAt)
	if elapsed < time.Minute {
		return "updated just now"
	}
	if elapsed < time.Hour {
		return "updated " + plural(int(elapsed.Minutes()), "minute") + " ago"
	}
	if elapsed < 24*time.Hour {
		return "updated " + plural(int(elapsed.Hours()), "hour") + " ago"
	}

	days := int(math.Floor(elapsed.Hours() / 24))
	return fmt.Sprintf("updated %s ago (%s)", plural(days, "day"), updatedAt.Format("02 Jan"))
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp: 240 faded at min, 255 bright at max.
	baseColor := 240.0
	targetColor := 255.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}

// ageColor fades from bright for fresh edits to grey for week-old ones.
func ageColor(updatedAt, now time.Time) lipgloss.Color {
	if now.IsZero() || updatedAt.IsZero() || updatedAt.After(now) {
		return lipgloss.Color("255")
	}

	window := 7 * 24 * time.Hour
	fresh := window.Seconds() - now.Sub(updatedAt).Seconds()
	return interpolateColor(fresh, 0, window.Seconds())
}
