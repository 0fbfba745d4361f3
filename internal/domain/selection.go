package domain

import (
	"fmt"
	"strings"
)

// Selection is a range of text captured from a surface at invocation time.
// Start and End are byte offsets into the content the selection was taken from.
type Selection struct {
	Start int
	End   int
	Text  string
}

type SelectionOutcome string

const (
	// SelectionApplied means the captured range was still valid and was replaced.
	SelectionApplied SelectionOutcome = "applied"
	// SelectionFallback means the range had moved and the first occurrence of
	// the captured text was replaced instead.
	SelectionFallback SelectionOutcome = "fallback"
	// SelectionDropped means neither the range nor the text could be found;
	// the content is returned unchanged.
	SelectionDropped SelectionOutcome = "dropped"
)

// CaptureSelection records the text between start and end of content.
func CaptureSelection(content string, start, end int) (Selection, error) {
	if start < 0 || end < start || end > len(content) {
		return Selection{}, fmt.Errorf("selection [%d:%d] out of range for content of length %d", start, end, len(content))
	}

	return Selection{Start: start, End: end, Text: content[start:end]}, nil
}

// FindSelection captures the first occurrence of text in content.
func FindSelection(content, text string) (Selection, error) {
	if text == "" {
		return Selection{}, fmt.Errorf("selection text is empty")
	}

	idx := strings.Index(content, text)
	if idx < 0 {
		return Selection{}, fmt.Errorf("find %q: %w", text, ErrSelectionLost)
	}

	return Selection{Start: idx, End: idx + len(text), Text: text}, nil
}

// Valid reports whether the captured range still holds the captured text in content.
func (s Selection) Valid(content string) bool {
	if s.Start < 0 || s.End < s.Start || s.End > len(content) {
		return false
	}
	return content[s.Start:s.End] == s.Text
}

// Apply replaces the selection in content with replacement. It prefers the
// captured range and falls back to a search for the captured text.
func (s Selection) Apply(content, replacement string) (string, SelectionOutcome) {
	if s.Valid(content) {
		return content[:s.Start] + replacement + content[s.End:], SelectionApplied
	}

	if s.Text == "" {
		return content, SelectionDropped
	}

	idx := strings.Index(content, s.Text)
	if idx < 0 {
		return content, SelectionDropped
	}

	return content[:idx] + replacement + content[idx+len(s.Text):], SelectionFallback
}
