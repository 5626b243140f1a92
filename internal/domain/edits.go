package domain

import (
	"context"
	"log/slog"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

type editApplier interface {
	ApplyEdit(ctx context.Context, edit m.FileEdit) error
}

// applyEdits writes every planned edit in isolation.
func applyEdits(ctx context.Context, applier editApplier, result *m.BatchResult) {
	for _, edit := range result.Edits {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, m.ItemFailure{Path: edit.Path, Reason: err.Error()})
			continue
		}

		if !edit.Changed() {
			result.Skipped = append(result.Skipped, m.ItemFailure{Path: edit.Path, Reason: "already up to date"})
			continue
		}

		if err := applier.ApplyEdit(ctx, edit); err != nil {
			slog.Error("edit failed", "path", edit.Path, "file", edit.File, "reason", err)
			result.Failed = append(result.Failed, m.ItemFailure{Path: edit.Path, Reason: err.Error()})

			continue
		}

		result.Applied = append(result.Applied, edit.Path)
	}
}
