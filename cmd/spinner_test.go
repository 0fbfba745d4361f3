package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpinnerModelShowsLabelUntilDone(t *testing.T) {
	m := newSpinnerModel("Running assist command...", nil)
	assert.Contains(t, m.View(), "Running assist command...")

	next, cmd := m.Update(taskDoneMsg{err: errors.New("boom")})
	done, ok := next.(spinnerModel)
	require.True(t, ok)
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, done.View())
	assert.EqualError(t, done.err, "boom")
}

func TestRunWithSpinnerReturnsTaskError(t *testing.T) {
	var out bytes.Buffer
	err := runWithSpinner(context.Background(), &out, "working", func() error {
		return errors.New("task failed")
	})
	assert.EqualError(t, err, "task failed")
}
