// Package controller provides the output adapters that render assetmaid reports and
// collect confirmations from the user.
package controller

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeReport StartMode = iota
	ModeInteractive
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode  StartMode
	title string
}

// WithReportMode renders static reports.
func WithReportMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeReport
	}
}

// WithInteractiveMode lets listings be browsed and re-sorted.
func WithInteractiveMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeInteractive
	}
}

// WithTitle sets the heading printed when the UI starts.
func WithTitle(title string) StartOption {
	return func(c *StartConfig) {
		c.title = title
	}
}

func newStartConfig(options []StartOption) StartConfig {
	config := StartConfig{mode: ModeReport}
	for _, option := range options {
		option(&config)
	}

	return config
}

// Listing is a ranked set of entries. Resort, when set, recomputes the full order for a
// new key and direction.
type Listing struct {
	Title   string
	Entries []m.WeightedEntry
	Key     m.RankKey
	Order   m.SortOrder
	Resort  func(key m.RankKey, order m.SortOrder) []m.WeightedEntry
}

// UI defines the interface for displaying scan reports.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context) // Wait for UI to finish (user closes it)
	DisplayScanSummary(ctx context.Context, scan *m.ScanResult)
	DisplayWarnings(ctx context.Context, warnings []m.Warning)
	DisplayListing(ctx context.Context, listing Listing) error
	DisplayTopLists(ctx context.Context, lists m.TopLists, summary m.Summary) error
	DisplayRelocationPlan(ctx context.Context, plan m.RelocationPlan)
	DisplayRelocationResult(ctx context.Context, result m.RelocationResult)
	DisplayBatchResult(ctx context.Context, result m.BatchResult)
	DisplayHistory(ctx context.Context, records []m.HistoryRecord) error
	DisplayMessage(ctx context.Context, format string, args ...any)
}

// Confirmer asks the user to approve destructive actions.
type Confirmer interface {
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, prompt string) (bool, error)
	// Prompt asks for a line of text, such as a confirmation phrase.
	Prompt(ctx context.Context, prompt string) (string, error)
}

// IsTTY reports whether w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewUI returns the interactive UI on a terminal and the plain text UI otherwise.
func NewUI(cmd *cobra.Command, isTTY bool) UI {
	if isTTY {
		return NewTUI(cmd)
	}

	return NewSimpleUI(cmd)
}
