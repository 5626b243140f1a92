package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// Restorer moves journaled items out of a backup folder back into their project.
type Restorer struct {
	fs      adapter.ProjectFSAdapter
	journal adapter.JournalStore
}

// NewRestorer creates a Restorer.
func NewRestorer(fs adapter.ProjectFSAdapter, journal adapter.JournalStore) *Restorer {
	return &Restorer{fs: fs, journal: journal}
}

// Load reads the journal of backupPath.
func (r *Restorer) Load(ctx context.Context, backupPath m.Path) (m.Journal, error) {
	journal, err := r.journal.ReadJournal(ctx, backupPath)
	if err != nil {
		return m.Journal{}, fmt.Errorf("load journal from %s: %w", backupPath, err)
	}

	return journal, nil
}

// Restore moves every journaled item back from backupPath, each in isolation. Items
// already present in the project are not overwritten.
func (r *Restorer) Restore(ctx context.Context, backupPath m.Path, journal m.Journal) m.RelocationResult {
	result := m.RelocationResult{
		BackupFolder: journal.BackupFolder,
		BackupPath:   backupPath,
		StartedAt:    time.Now(),
	}

	for _, item := range journal.Items {
		if !item.Sidecar {
			result.Planned++
		}

		stored := r.fs.JoinPath(string(backupPath), filepath.FromSlash(string(item.Destination)))

		err := r.restoreItem(ctx, journal.ProjectRoot, stored, item)
		if err == nil {
			if !item.Sidecar {
				result.Moved = append(result.Moved, m.RelocationMove{Source: stored, Destination: item.Source})
			}

			continue
		}

		var missing *MissingResourceWarning
		if errors.As(err, &missing) {
			if item.Sidecar {
				slog.Debug("backup sidecar missing", "path", item.Source)
				continue
			}

			slog.Warn("backup item missing", "path", item.Source)
			result.Missing = append(result.Missing, item.Source)

			continue
		}

		slog.Error("restore failed", "path", item.Source, "reason", err)

		failure := m.ItemFailure{Path: item.Source, Reason: err.Error()}
		if item.Sidecar {
			result.SidecarFailures = append(result.SidecarFailures, failure)
		} else {
			result.Failed = append(result.Failed, failure)
		}
	}

	result.FinishedAt = time.Now()

	slog.Info("restore finished",
		"backup", backupPath,
		"planned", result.Planned,
		"restored", result.Succeeded(),
		"missing", len(result.Missing),
		"failed", len(result.Failed),
	)

	return result
}

func (r *Restorer) restoreItem(ctx context.Context, projectRoot, stored m.Path, item m.JournalItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	exists, err := r.fs.Exists(ctx, stored)
	if err != nil {
		return err
	}

	if !exists {
		return &MissingResourceWarning{Path: item.Source}
	}

	target := r.fs.JoinPath(string(projectRoot), filepath.FromSlash(string(item.Source)))

	occupied, err := r.fs.Exists(ctx, target)
	if err != nil {
		return err
	}

	if occupied {
		return fmt.Errorf("%s already exists in the project", item.Source)
	}

	return r.fs.MoveFile(ctx, stored, target)
}
