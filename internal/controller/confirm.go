package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// ErrNoInput is returned when the input stream ends before an answer was given.
var ErrNoInput = errors.New("no input available")

// PromptConfirmer asks on the command's output and reads answers from its input.
type PromptConfirmer struct {
	out    io.Writer
	reader *bufio.Reader
}

// NewPromptConfirmer creates a confirmer bound to cmd's streams.
func NewPromptConfirmer(cmd *cobra.Command) *PromptConfirmer {
	return &PromptConfirmer{out: cmd.OutOrStdout(), reader: bufio.NewReader(cmd.InOrStdin())}
}

// Confirm asks a yes/no question. Anything but y or yes declines.
func (p *PromptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	answer, err := p.Prompt(ctx, prompt+" [y/N]")
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// Prompt reads one trimmed line.
func (p *PromptConfirmer) Prompt(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	_, _ = fmt.Fprintf(p.out, "%s: ", prompt)

	line, err := p.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}

		return "", fmt.Errorf("read answer: %w", err)
	}

	return strings.TrimSpace(line), nil
}

// StaticConfirmer answers from flags, for scripted runs.
type StaticConfirmer struct {
	Approve bool
	Phrase  string
}

// Confirm returns the preset approval.
func (s StaticConfirmer) Confirm(ctx context.Context, _ string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	return s.Approve, nil
}

// Prompt returns the preset phrase.
func (s StaticConfirmer) Prompt(ctx context.Context, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	return s.Phrase, nil
}
