package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// ConfirmationPhrase must be typed to pass the second relocation confirmation.
const ConfirmationPhrase = "CLEAN"

const (
	backupFolderSuffix = "_RemovedAssets_"
	backupTimeLayout   = "20060102_150405"
	sidecarExtension   = ".meta"
)

// RelocationState is a state of the relocation state machine.
type RelocationState int

// Relocation states, in the order a relocation passes through them.
const (
	StateIdle RelocationState = iota
	StateScanned
	StateConfirmedOnce
	StateConfirmedTwice
	StateExecuting
)

func (s RelocationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanned:
		return "scanned"
	case StateConfirmedOnce:
		return "confirmed-once"
	case StateConfirmedTwice:
		return "confirmed-twice"
	case StateExecuting:
		return "executing"
	}

	return fmt.Sprintf("state(%d)", int(s))
}

// BackupFolderName returns `<project>_RemovedAssets_<yyyyMMdd_HHmmss>`.
func BackupFolderName(project string, at time.Time) string {
	return project + backupFolderSuffix + at.Format(backupTimeLayout)
}

// Relocator moves unreachable resources into a backup folder behind two confirmations.
type Relocator struct {
	fs         adapter.ProjectFSAdapter
	journal    adapter.JournalStore
	backupRoot m.Path
	now        func() time.Time

	mu          sync.Mutex
	state       RelocationState
	plan        *m.RelocationPlan
	projectRoot m.Path
}

// RelocatorOption configures a Relocator.
type RelocatorOption func(*Relocator)

// WithClock overrides the clock used for backup folder names.
func WithClock(now func() time.Time) RelocatorOption {
	return func(r *Relocator) {
		r.now = now
	}
}

// NewRelocator creates a relocator writing backups below backupRoot.
func NewRelocator(
	fs adapter.ProjectFSAdapter,
	journal adapter.JournalStore,
	backupRoot m.Path,
	options ...RelocatorOption,
) *Relocator {
	relocator := &Relocator{
		fs:         fs,
		journal:    journal,
		backupRoot: backupRoot,
		now:        time.Now,
	}

	for _, option := range options {
		option(relocator)
	}

	return relocator
}

// State returns the current state.
func (r *Relocator) State() RelocationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state
}

// Plan returns the pending plan, if any.
func (r *Relocator) Plan() (m.RelocationPlan, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plan == nil {
		return m.RelocationPlan{}, false
	}

	return *r.plan, true
}

// Prepare computes the plan for the selected unreachable, non-missing entries of scan.
// Entries absent from selection are selected. Nothing is written.
func (r *Relocator) Prepare(scan *m.ScanResult, selection m.SelectionState) (m.RelocationPlan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateIdle && r.state != StateScanned {
		return m.RelocationPlan{}, fmt.Errorf("prepare from %s: %w", r.state, ErrInvalidTransition)
	}

	if scan == nil {
		return m.RelocationPlan{}, errors.New("prepare requires a scan")
	}

	created := r.now()
	folder := BackupFolderName(scan.ProjectName, created)
	backupPath := r.fs.JoinPath(string(r.backupRoot), folder)

	plan := m.RelocationPlan{
		ScanID:       scan.ID,
		ProjectName:  scan.ProjectName,
		BackupFolder: folder,
		BackupPath:   backupPath,
		CreatedAt:    created,
	}

	seen := make(map[m.Path]struct{})

	for _, entry := range scan.Entries {
		if entry.Reachable || entry.Node.Missing || !selection.IsSelected(entry.Node.Path, true) {
			continue
		}

		destination := r.fs.JoinPath(string(backupPath), filepath.FromSlash(string(entry.Node.Path)))
		if _, dup := seen[destination]; dup {
			continue
		}

		seen[destination] = struct{}{}

		plan.Moves = append(plan.Moves, m.RelocationMove{
			Source:      entry.Node.Path,
			Destination: destination,
			CostBytes:   entry.CostBytes,
			RawBytes:    entry.Node.RawSizeBytes,
		})
		plan.TotalCost += entry.CostBytes
		plan.TotalRaw += entry.Node.RawSizeBytes
	}

	r.plan = &plan
	r.projectRoot = scan.ProjectRoot
	r.state = StateScanned

	return plan, nil
}

// ConfirmFirst records the first approval.
func (r *Relocator) ConfirmFirst() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateScanned {
		return fmt.Errorf("first confirmation from %s: %w", r.state, ErrInvalidTransition)
	}

	r.state = StateConfirmedOnce

	return nil
}

// ConfirmSecond records the second approval, which requires ConfirmationPhrase. Any
// other phrase cancels the relocation.
func (r *Relocator) ConfirmSecond(phrase string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateConfirmedOnce {
		return fmt.Errorf("second confirmation from %s: %w", r.state, ErrInvalidTransition)
	}

	if strings.TrimSpace(phrase) != ConfirmationPhrase {
		r.reset()
		return fmt.Errorf("expected %q: %w", ConfirmationPhrase, ErrConfirmationDeclined)
	}

	r.state = StateConfirmedTwice

	return nil
}

// Cancel abandons the pending plan.
func (r *Relocator) Cancel() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateExecuting {
		return fmt.Errorf("cancel while executing: %w", ErrInvalidTransition)
	}

	r.reset()

	return nil
}

func (r *Relocator) reset() {
	r.state = StateIdle
	r.plan = nil
	r.projectRoot = ""
}

// Execute moves every planned item in isolation. A missing source is a warning, a failed
// move is an item error; neither stops the batch. Each sidecar follows its resource.
// The relocator returns to Idle and the plan is discarded.
func (r *Relocator) Execute(ctx context.Context) (m.RelocationResult, error) {
	r.mu.Lock()
	if r.state != StateConfirmedTwice {
		state := r.state
		r.mu.Unlock()

		return m.RelocationResult{}, fmt.Errorf("execute from %s: %w", state, ErrInvalidTransition)
	}

	r.state = StateExecuting
	plan := *r.plan
	projectRoot := r.projectRoot
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.reset()
		r.mu.Unlock()
	}()

	result := m.RelocationResult{
		BackupFolder: plan.BackupFolder,
		BackupPath:   plan.BackupPath,
		Planned:      plan.Len(),
		StartedAt:    r.now(),
	}

	if err := r.fs.MkdirAll(ctx, plan.BackupPath); err != nil {
		for _, move := range plan.Moves {
			result.Failed = append(result.Failed, m.ItemFailure{Path: move.Source, Reason: err.Error()})
		}

		result.FinishedAt = r.now()

		return result, fmt.Errorf("create backup folder %s: %w", plan.BackupPath, err)
	}

	journal := m.Journal{
		Project:      plan.ProjectName,
		ProjectRoot:  projectRoot,
		BackupFolder: plan.BackupFolder,
		ScanID:       plan.ScanID,
		CreatedAt:    result.StartedAt,
	}

	for _, move := range plan.Moves {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, m.ItemFailure{Path: move.Source, Reason: err.Error()})
			continue
		}

		source := r.fs.JoinPath(string(projectRoot), filepath.FromSlash(string(move.Source)))

		exists, err := r.fs.Exists(ctx, source)
		if err == nil && !exists {
			warning := &MissingResourceWarning{Path: move.Source}
			slog.Warn("relocation source missing", "path", move.Source, "warning", warning)

			result.Missing = append(result.Missing, move.Source)

			continue
		}

		if err == nil {
			err = r.fs.MoveFile(ctx, source, move.Destination)
		}

		if err != nil {
			itemErr := &RelocationItemError{Path: move.Source, Err: err}
			slog.Error("relocation failed", "path", move.Source, "reason", itemErr.Err)

			result.Failed = append(result.Failed, m.ItemFailure{Path: move.Source, Reason: err.Error()})

			continue
		}

		result.Moved = append(result.Moved, move)
		result.MovedCostBytes += move.CostBytes
		result.MovedRawBytes += move.RawBytes
		journal.Items = append(journal.Items, m.JournalItem{Source: move.Source, Destination: move.Source})

		if item, ok := r.moveSidecar(ctx, source, move, &result); ok {
			journal.Items = append(journal.Items, item)
		}
	}

	result.FinishedAt = r.now()

	slog.Info("relocation finished",
		"backup", result.BackupPath,
		"planned", result.Planned,
		"moved", result.Succeeded(),
		"missing", len(result.Missing),
		"failed", len(result.Failed),
	)

	if len(journal.Items) > 0 && r.journal != nil {
		if err := r.journal.WriteJournal(ctx, plan.BackupPath, journal); err != nil {
			return result, err
		}
	}

	return result, nil
}

func (r *Relocator) moveSidecar(ctx context.Context, source m.Path, move m.RelocationMove, result *m.RelocationResult) (m.JournalItem, bool) {
	sidecar := source + sidecarExtension
	destination := move.Destination + sidecarExtension

	exists, err := r.fs.Exists(ctx, sidecar)
	if err == nil && !exists {
		return m.JournalItem{}, false
	}

	if err == nil {
		err = r.fs.MoveFile(ctx, sidecar, destination)
	}

	if err != nil {
		slog.Error("sidecar relocation failed", "path", move.Source+sidecarExtension, "reason", err)
		result.SidecarFailures = append(result.SidecarFailures, m.ItemFailure{
			Path:   move.Source + sidecarExtension,
			Reason: err.Error(),
		})

		return m.JournalItem{}, false
	}

	return m.JournalItem{
		Source:      move.Source + sidecarExtension,
		Destination: move.Source + sidecarExtension,
		Sidecar:     true,
	}, true
}
