package controller

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	// Lines kept free around the table: title, blank, header, border, blank, totals, help.
	reservedListingLines = 8
	defaultPageSize      = 10
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
	tableStyle = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

// resortKeys maps key presses to the ranking column they select.
var resortKeys = map[string]m.RankKey{
	"s": m.RankByCost,
	"p": m.RankByPath,
	"c": m.RankByCategory,
	"r": m.RankByCreator,
}

// TUI implements UI using Bubble Tea for listings that do not fit on screen.
type TUI struct {
	*SimpleUI

	output io.Writer
	mode   StartMode
}

// NewTUI creates a new TUI.
func NewTUI(cmd *cobra.Command) *TUI {
	return &TUI{SimpleUI: NewSimpleUI(cmd), output: cmd.OutOrStdout()}
}

// Start records the mode and prints a styled title.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newStartConfig(options)
	t.mode = config.mode

	if config.title != "" {
		_, _ = fmt.Fprintf(t.output, "%s\n\n", titleStyle.Render(config.title))
	}

	return nil
}

// DisplayListing opens a scrollable, re-sortable table when the listing is larger than
// the terminal and interactive mode was requested.
func (t *TUI) DisplayListing(ctx context.Context, listing Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	height := 0

	if f, ok := t.output.(*os.File); ok {
		if _, h, err := term.GetSize(int(f.Fd())); err == nil {
			height = h
		}
	}

	model := newListingModel(listing, height)

	if t.mode != ModeInteractive || !model.needsPagination() {
		return t.SimpleUI.DisplayListing(ctx, listing)
	}

	program := tea.NewProgram(model, tea.WithOutput(t.output), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return err
	}

	return nil
}

// listingModel is the Bubble Tea model of an interactive listing.
type listingModel struct {
	listing  Listing
	table    table.Model
	height   int
	quitting bool
}

func newListingModel(listing Listing, height int) listingModel {
	pageSize := defaultPageSize
	if height > reservedListingLines {
		pageSize = height - reservedListingLines
	}

	tbl := table.New(
		table.WithColumns(listingColumns()),
		table.WithRows(listingRows(listing.Entries)),
		table.WithFocused(true),
		table.WithHeight(pageSize),
	)

	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	tbl.SetStyles(styles)

	return listingModel{listing: listing, table: tbl, height: height}
}

func listingColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Cost", Width: 10},
		{Title: "Size", Width: 10},
		{Title: "Category", Width: 9},
		{Title: "Path", Width: 60},
		{Title: "Flags", Width: 20},
		{Title: "Creator", Width: 18},
		{Title: "Reach", Width: 5},
	}
}

func listingRows(entries []m.WeightedEntry) []table.Row {
	rows := make([]table.Row, 0, len(entries))
	for i, entry := range entries {
		rows = append(rows, table.Row(entryRow(i+1, entry)))
	}

	return rows
}

func (lm listingModel) needsPagination() bool {
	if lm.height == 0 || len(lm.listing.Entries) == 0 {
		return false
	}

	return len(lm.listing.Entries) > lm.height-reservedListingLines
}

func (lm listingModel) Init() tea.Cmd {
	return nil
}

func (lm listingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		lm.height = msg.Height
		if msg.Height > reservedListingLines {
			lm.table.SetHeight(msg.Height - reservedListingLines)
		}

		return lm, nil

	case tea.KeyMsg:
		return lm.handleKeyPress(msg)
	}

	return lm, nil
}

func (lm listingModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	//nolint:exhaustive // We only handle quit keys here
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		lm.quitting = true
		return lm, tea.Quit
	default:
		// Handle other key types in the string switch below
	}

	if msg.String() == "q" {
		lm.quitting = true
		return lm, tea.Quit
	}

	if key, ok := resortKeys[msg.String()]; ok {
		return lm.resort(key), nil
	}

	var cmd tea.Cmd

	lm.table, cmd = lm.table.Update(msg)

	return lm, cmd
}

// resort reverses the direction when key is already active and starts a new key
// descending.
func (lm listingModel) resort(key m.RankKey) listingModel {
	if lm.listing.Resort == nil {
		return lm
	}

	order := m.Descending
	if key == lm.listing.Key {
		order = lm.listing.Order.Reverse()
	}

	lm.listing.Key = key
	lm.listing.Order = order
	lm.listing.Entries = lm.listing.Resort(key, order)

	lm.table.SetRows(listingRows(lm.listing.Entries))
	lm.table.GotoTop()

	return lm
}

func (lm listingModel) View() string {
	if lm.quitting {
		return ""
	}

	var b strings.Builder

	title := lm.listing.Title
	if title == "" {
		title = "Resources"
	}

	fmt.Fprintf(&b, "%s\n", titleStyle.Render(fmt.Sprintf("%s (by %s, %s)", title, lm.listing.Key, lm.listing.Order)))
	b.WriteString(tableStyle.Render(lm.table.View()))
	b.WriteString("\n")

	var totalCost int64
	for _, entry := range lm.listing.Entries {
		totalCost += entry.CostBytes
	}

	fmt.Fprintf(&b, "  %d entries | row %d | total %s\n",
		len(lm.listing.Entries), lm.table.Cursor()+1, FormatBytes(totalCost))
	b.WriteString(helpStyle.Render("  ↑/k ↓/j: move | s: cost | p: path | c: category | r: creator | q: quit"))
	b.WriteString("\n")

	return b.String()
}
