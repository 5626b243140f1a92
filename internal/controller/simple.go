package controller

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	reachableLabel   = "yes"
	unreachableLabel = "no"
	noFlagsLabel     = "-"
	timeLayout       = "2006-01-02 15:04:05"
)

// SimpleUI implements UI using cobra Command's output writer.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start prints the optional title.
func (s *SimpleUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	config := newStartConfig(options)
	if config.title != "" {
		s.printf("%s\n\n", config.title)
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
	// SimpleUI doesn't block - it just prints and continues
}

// DisplayScanSummary prints the aggregate totals of a scan.
func (s *SimpleUI) DisplayScanSummary(ctx context.Context, scan *m.ScanResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", RenderSummary(scan))
}

// DisplayWarnings prints the non-fatal problems of a batch.
func (s *SimpleUI) DisplayWarnings(ctx context.Context, warnings []m.Warning) {
	if err := ctx.Err(); err != nil {
		return
	}

	if len(warnings) == 0 {
		return
	}

	s.printf("\nWarnings (%d):\n", len(warnings))

	for _, warning := range warnings {
		s.printf("  [%s] %s: %s\n", warning.Kind, warning.Path, warning.Reason)
	}
}

// DisplayListing prints a ranked table.
func (s *SimpleUI) DisplayListing(ctx context.Context, listing Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", RenderListing(listing))

	return nil
}

// DisplayTopLists prints the per-category top lists and the full-scan totals.
func (s *SimpleUI) DisplayTopLists(ctx context.Context, lists m.TopLists, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", RenderTopLists(lists, summary))

	return nil
}

// DisplayRelocationPlan prints what a relocation would move.
func (s *SimpleUI) DisplayRelocationPlan(ctx context.Context, plan m.RelocationPlan) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", RenderRelocationPlan(plan))
}

// DisplayRelocationResult prints the outcome of a relocation or restore.
func (s *SimpleUI) DisplayRelocationResult(ctx context.Context, result m.RelocationResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", RenderRelocationResult(result))
}

// DisplayBatchResult prints the outcome of a batch edit, with diffs on dry runs.
func (s *SimpleUI) DisplayBatchResult(ctx context.Context, result m.BatchResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("%s", RenderBatchResult(result))
}

// DisplayHistory prints persisted history records.
func (s *SimpleUI) DisplayHistory(ctx context.Context, records []m.HistoryRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("%s", RenderHistory(records))

	return nil
}

// DisplayMessage prints a single line.
func (s *SimpleUI) DisplayMessage(ctx context.Context, format string, args ...any) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf(format+"\n", args...)
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// FormatBytes renders a byte count for humans.
func FormatBytes(n int64) string {
	if n < 0 {
		return "-" + humanize.IBytes(uint64(-n))
	}

	return humanize.IBytes(uint64(n))
}

func flagsLabel(flags m.ClassificationFlags) string {
	labels := flags.Labels()
	if len(labels) == 0 {
		return noFlagsLabel
	}

	return strings.Join(labels, ",")
}

func reachLabel(reachable bool) string {
	if reachable {
		return reachableLabel
	}

	return unreachableLabel
}

func newTable(buffer *bytes.Buffer, header []string, alignment []int) *tablewriter.Table {
	table := tablewriter.NewWriter(buffer)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment(alignment)

	return table
}

// RenderSummary renders the aggregate totals of a scan.
func RenderSummary(scan *m.ScanResult) string {
	var buffer bytes.Buffer

	summary := scan.Summary

	fmt.Fprintf(&buffer, "Project %s (scan %s, %s)\n", scan.ProjectName, scan.ID, scan.StartedAt.Format(timeLayout))
	fmt.Fprintf(&buffer, "Roots: %d\n\n", len(scan.Roots))

	table := newTable(&buffer, []string{"Metric", "Value"}, []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})
	table.Append([]string{"Resources", strconv.Itoa(summary.Count)})
	table.Append([]string{"Textures", strconv.Itoa(summary.TextureCount)})
	table.Append([]string{"Materials", strconv.Itoa(summary.MaterialCount)})
	table.Append([]string{"Other", strconv.Itoa(summary.OtherCount)})
	table.Append([]string{"Reachable", strconv.Itoa(summary.ReachableCount)})
	table.Append([]string{"Unreachable", strconv.Itoa(summary.UnreachableCount)})
	table.Append([]string{"Missing", strconv.Itoa(summary.MissingCount)})
	table.Append([]string{"Metadata unavailable", strconv.Itoa(summary.MetadataUnavailableCount)})
	table.Append([]string{"Flagged", strconv.Itoa(summary.FlaggedCount)})
	table.Append([]string{"Total size", FormatBytes(summary.TotalRawBytes)})
	table.Append([]string{"Estimated texture memory", FormatBytes(summary.TotalTextureBytes)})
	table.Append([]string{"Unreachable size", FormatBytes(summary.UnreachableRawBytes)})
	table.Render()

	return buffer.String()
}

// RenderListing renders a ranked table of entries.
func RenderListing(listing Listing) string {
	var buffer bytes.Buffer

	if listing.Title != "" {
		fmt.Fprintf(&buffer, "%s (by %s, %s)\n\n", listing.Title, listing.Key, listing.Order)
	}

	if len(listing.Entries) == 0 {
		buffer.WriteString("No entries.\n")
		return buffer.String()
	}

	table := newTable(&buffer,
		[]string{"#", "Cost", "Size", "Category", "Path", "Flags", "Creator", "Reachable"},
		[]int{
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		},
	)

	var totalCost, totalRaw int64

	for i, entry := range listing.Entries {
		table.Append(entryRow(i+1, entry))

		totalCost += entry.CostBytes
		totalRaw += entry.Node.RawSizeBytes
	}

	table.SetFooter([]string{
		"", FormatBytes(totalCost), FormatBytes(totalRaw), "",
		fmt.Sprintf("Total %d", len(listing.Entries)), "", "", "",
	})
	table.Render()

	return buffer.String()
}

func entryRow(rank int, entry m.WeightedEntry) []string {
	return []string{
		strconv.Itoa(rank),
		FormatBytes(entry.CostBytes),
		FormatBytes(entry.Node.RawSizeBytes),
		string(m.CategoryOf(entry.Node)),
		string(entry.Node.Path),
		flagsLabel(entry.Flags),
		entry.Node.Creator,
		reachLabel(entry.Reachable),
	}
}

// RenderTopLists renders the texture and general top lists and the full-scan totals.
func RenderTopLists(lists m.TopLists, summary m.Summary) string {
	var buffer bytes.Buffer

	renderTop := func(title string, entries []m.WeightedEntry) {
		fmt.Fprintf(&buffer, "%s (top %d)\n", title, lists.Limit)

		if len(entries) == 0 {
			buffer.WriteString("  none\n\n")
			return
		}

		table := newTable(&buffer, []string{"#", "Cost", "Path", "Flags"},
			[]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

		for i, entry := range entries {
			table.Append([]string{
				strconv.Itoa(i + 1), FormatBytes(entry.CostBytes), string(entry.Node.Path), flagsLabel(entry.Flags),
			})
		}

		table.Render()
		buffer.WriteString("\n")
	}

	renderTop("Textures by estimated memory", lists.Textures)
	renderTop("Other resources by size", lists.General)

	fmt.Fprintf(&buffer, "Scanned %d resources: %s on disk, %s estimated texture memory\n",
		summary.Count, FormatBytes(summary.TotalRawBytes), FormatBytes(summary.TotalTextureBytes))

	return buffer.String()
}

// RenderRelocationPlan renders the moves of a plan.
func RenderRelocationPlan(plan m.RelocationPlan) string {
	var buffer bytes.Buffer

	if plan.Len() == 0 {
		buffer.WriteString("Nothing to relocate.\n")
		return buffer.String()
	}

	table := newTable(&buffer, []string{"Source", "Size"}, []int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, move := range plan.Moves {
		table.Append([]string{string(move.Source), FormatBytes(move.RawBytes)})
	}

	table.SetFooter([]string{fmt.Sprintf("Total %d", plan.Len()), FormatBytes(plan.TotalRaw)})
	table.Render()

	fmt.Fprintf(&buffer, "\nBackup folder: %s\n", plan.BackupPath)

	return buffer.String()
}

// RenderRelocationResult renders the counts and per-item problems of a relocation.
func RenderRelocationResult(result m.RelocationResult) string {
	var buffer bytes.Buffer

	fmt.Fprintf(&buffer, "Moved %d of %d item(s) (%s) to %s\n",
		result.Succeeded(), result.Planned, FormatBytes(result.MovedRawBytes), result.BackupPath)

	if len(result.Missing) > 0 {
		fmt.Fprintf(&buffer, "Missing (%d):\n", len(result.Missing))

		for _, path := range result.Missing {
			fmt.Fprintf(&buffer, "  %s\n", path)
		}
	}

	renderFailures(&buffer, "Failed", result.Failed)
	renderFailures(&buffer, "Sidecar failures", result.SidecarFailures)

	return buffer.String()
}

// RenderBatchResult renders a shrink or shader fix batch.
func RenderBatchResult(result m.BatchResult) string {
	var buffer bytes.Buffer

	if result.DryRun {
		fmt.Fprintf(&buffer, "Dry run: %d edit(s) planned for %d selected item(s), target %s\n",
			len(result.Edits), result.Selected, result.Target)

		for _, edit := range result.Edits {
			buffer.WriteString(RenderEditDiff(edit))
		}
	} else {
		fmt.Fprintf(&buffer, "Applied %d edit(s) for %d selected item(s), target %s\n",
			len(result.Applied), result.Selected, result.Target)
	}

	renderFailures(&buffer, "Skipped", result.Skipped)
	renderFailures(&buffer, "Failed", result.Failed)

	return buffer.String()
}

// RenderEditDiff renders a unified diff of a planned edit.
func RenderEditDiff(edit m.FileEdit) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(edit.Before)),
		B:        difflib.SplitLines(string(edit.After)),
		FromFile: string(edit.File),
		ToFile:   string(edit.File),
		Context:  1,
	})
	if err != nil {
		return fmt.Sprintf("%s: %v\n", edit.File, err)
	}

	return diff
}

// RenderHistory renders history records.
func RenderHistory(records []m.HistoryRecord) string {
	var buffer bytes.Buffer

	if len(records) == 0 {
		buffer.WriteString("No history yet.\n")
		return buffer.String()
	}

	table := newTable(&buffer,
		[]string{"ID", "When", "Kind", "Project", "Resources", "Unreachable", "Moved", "Failed", "Backup"},
		[]int{
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_LEFT,
		},
	)

	for _, record := range records {
		table.Append([]string{
			strconv.FormatInt(record.ID, 10),
			record.CreatedAt.Format(timeLayout),
			string(record.Kind),
			record.ProjectName,
			strconv.Itoa(record.Count),
			strconv.Itoa(record.Unreachable),
			strconv.Itoa(record.Succeeded),
			strconv.Itoa(record.Failed),
			string(record.BackupPath),
		})
	}

	table.Render()

	return buffer.String()
}

func renderFailures(buffer *bytes.Buffer, title string, failures []m.ItemFailure) {
	if len(failures) == 0 {
		return
	}

	fmt.Fprintf(buffer, "%s (%d):\n", title, len(failures))

	for _, failure := range failures {
		fmt.Fprintf(buffer, "  %s: %s\n", failure.Path, failure.Reason)
	}
}
