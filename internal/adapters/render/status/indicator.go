package status

import (
	"fmt"

	"github.com/bnema/inline-edit/internal/domain"
	"github.com/muesli/reflow/truncate"
)

const (
	savingText = "saving…"
	savedText  = "saved"
	retryHint  = "(ctrl+s to retry)"
)

// IndicatorText is the plain save indicator for a state; empty while idle.
func IndicatorText(state domain.SaveState, errMsg string) string {
	switch state {
	case domain.SaveStateSaving:
		return savingText
	case domain.SaveStateSaved:
		return savedText
	case domain.SaveStateError:
		if errMsg == "" {
			errMsg = domain.DefaultSaveErrorMessage
		}
		return fmt.Sprintf("failed to save: %s %s", errMsg, retryHint)
	default:
		return ""
	}
}

// Indicator renders the styled save indicator, truncated to width when width
// is positive. Long error messages are cut but the retry hint is kept.
func Indicator(state domain.SaveState, errMsg string, width int) string {
	s := newStyles()

	text := IndicatorText(state, errMsg)
	if width > 0 && len([]rune(text)) > width {
		if state == domain.SaveStateError {
			room := width - len([]rune(retryHint)) - 1
			if room < 1 {
				room = 1
			}
			text = truncate.StringWithTail(text[:len(text)-len(retryHint)-1], uint(room), "…") + " " + retryHint
		} else {
			text = truncate.StringWithTail(text, uint(width), "…")
		}
	}

	switch state {
	case domain.SaveStateSaving:
		return s.saving.Render(text)
	case domain.SaveStateSaved:
		return s.saved.Render(text)
	case domain.SaveStateError:
		return s.failed.Render(text)
	default:
		return text
	}
}

// DirtyMarker flags content that differs from the last save.
func DirtyMarker(dirty bool) string {
	if !dirty {
		return ""
	}
	return newStyles().unsaved.Render("●")
}
