package domain

import (
	"context"
	"strings"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// ShaderFixer replaces deprecated shaders on materials.
type ShaderFixer struct {
	editor adapter.MaterialEditor
}

// NewShaderFixer creates a ShaderFixer.
func NewShaderFixer(editor adapter.MaterialEditor) *ShaderFixer {
	return &ShaderFixer{editor: editor}
}

// Plan resolves target and computes the material edits. An unresolvable target aborts
// with ShaderTargetMissingError before anything is planned. Manual-fix-only materials
// are reported as skipped.
func (f *ShaderFixer) Plan(ctx context.Context, entries []m.WeightedEntry, selection m.SelectionState, target string) (m.BatchResult, error) {
	target = strings.TrimSpace(target)

	shader, err := f.editor.ResolveShader(ctx, target)
	if err != nil {
		return m.BatchResult{}, &ShaderTargetMissingError{Target: target, Err: err}
	}

	result := m.BatchResult{Target: target}

	for _, entry := range entries {
		node := entry.Node
		if !node.IsMaterial() || node.Missing || !selection.IsSelected(node.Path, true) {
			continue
		}

		if entry.Flags.ManualFixOnlyShader {
			result.Skipped = append(result.Skipped, m.ItemFailure{
				Path:   node.Path,
				Reason: "manual fix only: " + node.ShaderID,
			})

			continue
		}

		if !entry.Flags.DeprecatedShader {
			continue
		}

		result.Selected++

		edit, err := f.editor.PlanShader(ctx, node.Path, shader)
		if err != nil {
			result.Failed = append(result.Failed, m.ItemFailure{Path: node.Path, Reason: err.Error()})
			continue
		}

		result.Edits = append(result.Edits, edit)
	}

	return result, nil
}

// Apply writes the planned edits.
func (f *ShaderFixer) Apply(ctx context.Context, result *m.BatchResult) {
	applyEdits(ctx, f.editor, result)
}
