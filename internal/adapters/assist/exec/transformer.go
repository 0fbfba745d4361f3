// Package exec rewrites selected text by piping it through a shell command.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"strings"

	"github.com/bnema/inline-edit/internal/ports"
)

var (
	ErrUnavailable  = errors.New("shell unavailable")
	ErrEmptyCommand = errors.New("assist command is empty")
	ErrEmptyOutput  = errors.New("assist command produced no output")
)

type runFunc func(ctx context.Context, input string, command string) (stdout string, stderr string, err error)

// Transformer runs command through sh with the selected text on stdin and
// uses its stdout as the replacement.
type Transformer struct {
	command string
	run     runFunc
}

var _ ports.SelectionTransformer = (*Transformer)(nil)

func NewTransformer(command string) (*Transformer, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return nil, ErrEmptyCommand
	}

	return &Transformer{command: command, run: runShellCommand}, nil
}

func (t *Transformer) Transform(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := t.run(ctx, text, t.command)
	if err != nil {
		return "", formatError(t.command, err, stderr)
	}

	stdout = strings.TrimSuffix(stdout, "\n")
	stdout = strings.TrimSuffix(stdout, "\r")
	if stdout == "" {
		return "", fmt.Errorf("run %q: %w", t.command, ErrEmptyOutput)
	}

	return stdout, nil
}

func runShellCommand(ctx context.Context, input string, command string) (string, string, error) {
	path, err := osexec.LookPath("sh")
	if err != nil {
		if errors.Is(err, osexec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate shell: %w", err)
	}

	cmd := osexec.CommandContext(ctx, path, "-c", command)
	cmd.Stdin = strings.NewReader(input)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(command string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("run %q: %w", command, err)
	}

	return fmt.Errorf("run %q: %w: %s", command, err, stderr)
}
