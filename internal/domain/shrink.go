package domain

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// AllowedMaxSizes are the max size settings a batch shrink may apply.
var AllowedMaxSizes = []int{2048, 1024, 512, 256, 128}

// ValidateMaxSize rejects sizes outside AllowedMaxSizes.
func ValidateMaxSize(size int) error {
	if slices.Contains(AllowedMaxSizes, size) {
		return nil
	}

	return fmt.Errorf("%d (allowed: %v): %w", size, AllowedMaxSizes, ErrInvalidMaxSize)
}

// Shrinker lowers the max size import setting of textures.
type Shrinker struct {
	editor adapter.ImportSettingsEditor
}

// NewShrinker creates a Shrinker.
func NewShrinker(editor adapter.ImportSettingsEditor) *Shrinker {
	return &Shrinker{editor: editor}
}

// Plan computes the sidecar edits for the selected textures. Textures already at or
// below target are skipped. Nothing is written.
func (s *Shrinker) Plan(ctx context.Context, entries []m.WeightedEntry, selection m.SelectionState, target int) (m.BatchResult, error) {
	if err := ValidateMaxSize(target); err != nil {
		return m.BatchResult{}, err
	}

	result := m.BatchResult{Target: strconv.Itoa(target)}

	for _, entry := range entries {
		node := entry.Node
		if !node.IsTexture() || node.Missing || !selection.IsSelected(node.Path, true) {
			continue
		}

		result.Selected++

		if node.MaxSizeSetting > 0 && node.MaxSizeSetting <= target {
			result.Skipped = append(result.Skipped, m.ItemFailure{
				Path:   node.Path,
				Reason: fmt.Sprintf("max size already %d", node.MaxSizeSetting),
			})

			continue
		}

		edit, err := s.editor.PlanMaxSize(ctx, node.Path, target)
		if err != nil {
			result.Failed = append(result.Failed, m.ItemFailure{Path: node.Path, Reason: err.Error()})
			continue
		}

		result.Edits = append(result.Edits, edit)
	}

	return result, nil
}

// Apply writes the planned edits.
func (s *Shrinker) Apply(ctx context.Context, result *m.BatchResult) {
	applyEdits(ctx, s.editor, result)
}
