package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	"assetmaid.dev/pkg/assetmaid/internal/controller"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// DefaultTopLimit is the size of each top list when none is configured.
const DefaultTopLimit = 20

// ListArgs contains the arguments for ranked listings.
type ListArgs struct {
	Title       string
	Key         m.RankKey
	Order       m.SortOrder
	Limit       int
	Filter      EntryFilter
	Interactive bool
}

// TopArgs contains the arguments for the per-category top lists.
type TopArgs struct {
	Limit int
}

// AuditArgs contains the arguments for the optimization audit.
type AuditArgs struct {
	Limit       int
	Interactive bool
}

// ShrinkArgs contains the arguments for a batch max size change.
type ShrinkArgs struct {
	Target int
	Only   []string
	Skip   []string
	DryRun bool
}

// FixShadersArgs contains the arguments for a batch shader replacement.
type FixShadersArgs struct {
	Target string
	Only   []string
	Skip   []string
	DryRun bool
}

// CleanArgs contains the arguments for relocating unreferenced resources.
type CleanArgs struct {
	Only   []string
	Skip   []string
	DryRun bool
}

// RestoreArgs contains the arguments for undoing a relocation.
type RestoreArgs struct {
	BackupPath m.Path
}

// HistoryArgs contains the arguments for listing history.
type HistoryArgs struct {
	Limit int
}

// Workflow is the set of user-facing actions. Every action starts from a fresh scan.
type Workflow interface {
	// Analyze runs a scan without displaying or persisting anything.
	Analyze(ctx context.Context) (*m.ScanResult, error)
	Scan(ctx context.Context) error
	List(ctx context.Context, args ListArgs) error
	Top(ctx context.Context, args TopArgs) error
	Audit(ctx context.Context, args AuditArgs) error
	Shrink(ctx context.Context, args ShrinkArgs) error
	FixShaders(ctx context.Context, args FixShadersArgs) error
	Clean(ctx context.Context, args CleanArgs) error
	Restore(ctx context.Context, args RestoreArgs) error
	History(ctx context.Context, args HistoryArgs) error
}

type workflow struct {
	controller.UI
	Scanner

	reports   adapter.ReportStore
	provider  adapter.ContentProvider
	confirmer controller.Confirmer
	relocator *Relocator
	restorer  *Restorer
}

// NewWorkflow creates a new Workflow instance with the provided dependencies.
func NewWorkflow(
	provider adapter.ContentProvider,
	reportStore adapter.ReportStore,
	ui controller.UI,
	confirmer controller.Confirmer,
	scanner Scanner,
	relocator *Relocator,
	restorer *Restorer,
) Workflow {
	return &workflow{
		UI:        ui,
		Scanner:   scanner,
		reports:   reportStore,
		provider:  provider,
		confirmer: confirmer,
		relocator: relocator,
		restorer:  restorer,
	}
}

func (w *workflow) Analyze(ctx context.Context) (*m.ScanResult, error) {
	scan, err := w.Scanner.Scan(ctx)
	if err != nil {
		slog.Error("Scan failed", "error", err)
		return nil, fmt.Errorf("scan: %w", err)
	}

	return scan, nil
}

// Scan displays the summary of a fresh scan and records it in history.
func (w *workflow) Scan(ctx context.Context) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	w.DisplayScanSummary(ctx, scan)
	w.DisplayWarnings(ctx, scan.Warnings)
	w.saveHistory(ctx, scanRecord(scan))

	return nil
}

// List displays the filtered entries of a fresh scan in ranked order.
func (w *workflow) List(ctx context.Context, args ListArgs) error {
	if err := w.Start(ctx, startMode(args.Interactive)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	entries := Filter(scan.Entries, args.Filter)

	if err := w.DisplayListing(ctx, newListing(args.Title, entries, args.Key, args.Order, args.Limit)); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	w.DisplayWarnings(ctx, scan.Warnings)
	w.Wait(ctx)

	return nil
}

// Top displays the per-category top lists next to the full-scan totals.
func (w *workflow) Top(ctx context.Context, args TopArgs) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	limit := args.Limit
	if limit <= 0 {
		limit = DefaultTopLimit
	}

	if err := w.DisplayTopLists(ctx, TopK(scan.Entries, limit), scan.Summary); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	return nil
}

// Audit lists the entries carrying at least one optimization flag.
func (w *workflow) Audit(ctx context.Context, args AuditArgs) error {
	if err := w.Start(ctx, startMode(args.Interactive)); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	flagged := Filter(scan.Entries, EntryFilter{FlaggedOnly: true})
	listing := newListing("Optimization candidates", flagged, m.RankByCost, m.Descending, args.Limit)

	if err := w.DisplayListing(ctx, listing); err != nil {
		return fmt.Errorf("display: %w", err)
	}

	counts := CountFlags(flagged)
	w.DisplayMessage(ctx, "%d unoptimized texture(s), %d deprecated shader(s), %d manual-fix-only shader(s)",
		counts.UnoptimizedFormat, counts.DeprecatedShader, counts.ManualFixOnlyShader)
	w.Wait(ctx)

	return nil
}

// Shrink lowers the max size setting of the selected textures.
func (w *workflow) Shrink(ctx context.Context, args ShrinkArgs) error {
	if err := ValidateMaxSize(args.Target); err != nil {
		return err
	}

	editor, ok := w.provider.(adapter.ImportSettingsEditor)
	if !ok {
		return fmt.Errorf("shrink: %w", adapter.ErrUnsupported)
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	selection, err := SelectionFromPatterns(scan.Entries, args.Only, args.Skip)
	if err != nil {
		return err
	}

	shrinker := NewShrinker(editor)

	result, err := shrinker.Plan(ctx, scan.Entries, selection, args.Target)
	if err != nil {
		return fmt.Errorf("plan shrink: %w", err)
	}

	return w.applyBatch(ctx, &result, args.DryRun, "max size", shrinker.Apply)
}

// FixShaders points the selected deprecated-shader materials at a target shader.
func (w *workflow) FixShaders(ctx context.Context, args FixShadersArgs) error {
	editor, ok := w.provider.(adapter.MaterialEditor)
	if !ok {
		return fmt.Errorf("fix shaders: %w", adapter.ErrUnsupported)
	}

	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	selection, err := SelectionFromPatterns(scan.Entries, args.Only, args.Skip)
	if err != nil {
		return err
	}

	fixer := NewShaderFixer(editor)

	result, err := fixer.Plan(ctx, scan.Entries, selection, args.Target)
	if err != nil {
		slog.Error("Shader fix aborted", "target", args.Target, "error", err)
		return err
	}

	return w.applyBatch(ctx, &result, args.DryRun, "shader", fixer.Apply)
}

func (w *workflow) applyBatch(
	ctx context.Context,
	result *m.BatchResult,
	dryRun bool,
	what string,
	apply func(context.Context, *m.BatchResult),
) error {
	result.DryRun = dryRun

	if dryRun || len(result.Edits) == 0 {
		w.DisplayBatchResult(ctx, *result)
		return nil
	}

	ok, err := w.confirmer.Confirm(ctx, fmt.Sprintf("Apply %d %s edit(s) (target %s)?", len(result.Edits), what, result.Target))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}

	if !ok {
		w.DisplayMessage(ctx, "Aborted, nothing was changed.")
		return ErrConfirmationDeclined
	}

	apply(ctx, result)

	slog.Info("Batch edit finished",
		"kind", what,
		"target", result.Target,
		"applied", len(result.Applied),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
	)

	w.DisplayBatchResult(ctx, *result)

	return nil
}

// Clean moves the selected unreachable resources into a backup folder after two
// confirmations, the second one requiring ConfirmationPhrase.
func (w *workflow) Clean(ctx context.Context, args CleanArgs) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	scan, err := w.Analyze(ctx)
	if err != nil {
		return err
	}

	selection, err := SelectionFromPatterns(scan.Unreachable(), args.Only, args.Skip)
	if err != nil {
		return err
	}

	plan, err := w.relocator.Prepare(scan, selection)
	if err != nil {
		return fmt.Errorf("prepare relocation: %w", err)
	}

	w.DisplayRelocationPlan(ctx, plan)

	if plan.Len() == 0 || args.DryRun {
		return w.relocator.Cancel()
	}

	if err := w.confirmRelocation(ctx, plan); err != nil {
		_ = w.relocator.Cancel()
		return err
	}

	result, err := w.relocator.Execute(ctx)
	if err != nil {
		slog.Error("Relocation failed", "backup", plan.BackupPath, "error", err)
		w.DisplayRelocationResult(ctx, result)

		return fmt.Errorf("relocate: %w", err)
	}

	w.saveHistory(ctx, relocationRecord(m.HistoryRelocation, scan.ProjectName, scan.ID, result))
	w.DisplayRelocationResult(ctx, result)

	return nil
}

func (w *workflow) confirmRelocation(ctx context.Context, plan m.RelocationPlan) error {
	ok, err := w.confirmer.Confirm(ctx, fmt.Sprintf("Move %d unreferenced item(s) (%s) to %s?",
		plan.Len(), controller.FormatBytes(plan.TotalRaw), plan.BackupPath))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}

	if !ok {
		w.DisplayMessage(ctx, "Aborted, nothing was moved.")
		return ErrConfirmationDeclined
	}

	if err := w.relocator.ConfirmFirst(); err != nil {
		return err
	}

	phrase, err := w.confirmer.Prompt(ctx, fmt.Sprintf("Type %s to move the files", ConfirmationPhrase))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}

	if err := w.relocator.ConfirmSecond(phrase); err != nil {
		if errors.Is(err, ErrConfirmationDeclined) {
			w.DisplayMessage(ctx, "Aborted, nothing was moved.")
		}

		return err
	}

	return nil
}

// Restore moves the items journaled in a backup folder back into their project.
func (w *workflow) Restore(ctx context.Context, args RestoreArgs) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	journal, err := w.restorer.Load(ctx, args.BackupPath)
	if err != nil {
		return err
	}

	count := 0

	for _, item := range journal.Items {
		if !item.Sidecar {
			count++
		}
	}

	ok, err := w.confirmer.Confirm(ctx, fmt.Sprintf("Restore %d item(s) from %s into %s?", count, args.BackupPath, journal.ProjectRoot))
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}

	if !ok {
		w.DisplayMessage(ctx, "Aborted, nothing was restored.")
		return ErrConfirmationDeclined
	}

	result := w.restorer.Restore(ctx, args.BackupPath, journal)

	w.saveHistory(ctx, relocationRecord(m.HistoryRestore, journal.Project, journal.ScanID, result))
	w.DisplayRelocationResult(ctx, result)

	return nil
}

// History displays the most recent history records.
func (w *workflow) History(ctx context.Context, args HistoryArgs) error {
	if err := w.Start(ctx, controller.WithReportMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	if w.reports == nil {
		return fmt.Errorf("history: %w", adapter.ErrUnsupported)
	}

	records, err := w.reports.ListHistory(ctx, args.Limit)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	return w.DisplayHistory(ctx, records)
}

func (w *workflow) saveHistory(ctx context.Context, record m.HistoryRecord) {
	if w.reports == nil {
		return
	}

	if _, err := w.reports.SaveHistory(ctx, record); err != nil {
		slog.Warn("Failed to save history", "kind", record.Kind, "error", err)
	}
}

func startMode(interactive bool) controller.StartOption {
	if interactive {
		return controller.WithInteractiveMode()
	}

	return controller.WithReportMode()
}

func newListing(title string, entries []m.WeightedEntry, key m.RankKey, order m.SortOrder, limit int) controller.Listing {
	return controller.Listing{
		Title:   title,
		Entries: Rank(entries, key, order, limit),
		Key:     key,
		Order:   order,
		Resort: func(key m.RankKey, order m.SortOrder) []m.WeightedEntry {
			return Rank(entries, key, order, limit)
		},
	}
}

// FlagCounts counts entries per classification flag.
type FlagCounts struct {
	UnoptimizedFormat   int
	DeprecatedShader    int
	ManualFixOnlyShader int
}

// CountFlags tallies the flags of entries.
func CountFlags(entries []m.WeightedEntry) FlagCounts {
	var counts FlagCounts

	for _, entry := range entries {
		if entry.Flags.UnoptimizedFormat {
			counts.UnoptimizedFormat++
		}

		if entry.Flags.DeprecatedShader {
			counts.DeprecatedShader++
		}

		if entry.Flags.ManualFixOnlyShader {
			counts.ManualFixOnlyShader++
		}
	}

	return counts
}

func scanRecord(scan *m.ScanResult) m.HistoryRecord {
	return m.HistoryRecord{
		Kind:         m.HistoryScan,
		ProjectName:  scan.ProjectName,
		ScanID:       scan.ID,
		CreatedAt:    scan.StartedAt,
		Count:        scan.Summary.Count,
		Unreachable:  scan.Summary.UnreachableCount,
		RawBytes:     scan.Summary.TotalRawBytes,
		TextureBytes: scan.Summary.TotalTextureBytes,
	}
}

func relocationRecord(kind m.HistoryKind, project, scanID string, result m.RelocationResult) m.HistoryRecord {
	created := result.FinishedAt
	if created.IsZero() {
		created = time.Now()
	}

	return m.HistoryRecord{
		Kind:        kind,
		ProjectName: project,
		ScanID:      scanID,
		CreatedAt:   created,
		Count:       result.Planned,
		RawBytes:    result.MovedRawBytes,
		Succeeded:   result.Succeeded(),
		Failed:      result.Unsuccessful(),
		BackupPath:  result.BackupPath,
	}
}
