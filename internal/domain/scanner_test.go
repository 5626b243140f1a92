package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

func TestScanner_TwoScenes(t *testing.T) {
	provider := scenarioProvider()
	scan := scanWith(t, provider)

	assert.NotEmpty(t, scan.ID)
	assert.Equal(t, "Demo", scan.ProjectName)
	assert.Equal(t, m.Path("/projects/Demo"), scan.ProjectRoot)
	assert.Equal(t, 1, provider.refreshes)
	assert.Equal(t, []m.Path{"Assets/V.png"}, paths(scan.Unreachable()))
	assert.Len(t, scan.Reachable(), 6)

	z, ok := scan.Lookup("Assets/Z.png")
	require.True(t, ok)
	assert.Equal(t, int64(2_097_152), z.CostBytes)
	assert.Equal(t, CreatorGenericPath, z.Node.Creator)

	x, ok := scan.Lookup("Assets/X.mat")
	require.True(t, ok)
	assert.True(t, x.Flags.DeprecatedShader)
	assert.Equal(t, int64(100), x.CostBytes)

	v, ok := scan.Lookup("Assets/V.png")
	require.True(t, ok)
	assert.True(t, v.Flags.UnoptimizedFormat)
	assert.Equal(t, int64(64*32*4), v.CostBytes)
	assert.False(t, v.Reachable)

	assert.Equal(t, m.Summary{
		Count:                7,
		TextureCount:         2,
		MaterialCount:        1,
		OtherCount:           4,
		ReachableCount:       6,
		UnreachableCount:     1,
		FlaggedCount:         2,
		TotalRawBytes:        2880,
		TotalTextureBytes:    2_097_152 + 8192,
		UnreachableRawBytes:  400,
		UnreachableCostBytes: 8192,
	}, scan.Summary)
	assert.Empty(t, scan.Warnings)
}

func TestScanner_PartitionInvariant(t *testing.T) {
	scan := scanWith(t, scenarioProvider())

	reachable := paths(scan.Reachable())
	unreachable := paths(scan.Unreachable())

	assert.Len(t, scan.Entries, len(reachable)+len(unreachable))

	for _, path := range unreachable {
		assert.NotContains(t, reachable, path)
	}

	seen := make(map[m.Path]bool)
	for i, entry := range scan.Entries {
		assert.False(t, seen[entry.Node.Path], "duplicate node %s", entry.Node.Path)
		assert.Equal(t, i, entry.Node.Order)

		seen[entry.Node.Path] = true
	}
}

func TestScanner_Idempotent(t *testing.T) {
	provider := scenarioProvider()

	first := scanWith(t, provider)
	second := scanWith(t, provider)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, first.Roots, second.Roots)
	assert.Equal(t, first.Entries, second.Entries)
	assert.Equal(t, first.Summary, second.Summary)
	assert.Equal(t, first.Warnings, second.Warnings)
}

func TestScanner_Warnings(t *testing.T) {
	provider := scenarioProvider()
	provider.deps["Assets/Scenes/SceneB.unity"] = append(provider.deps["Assets/Scenes/SceneB.unity"], "Assets/gone.png")
	provider.add(m.ResourceMetadata{Path: "Assets/blank.png", Kind: m.KindTexture, RawSizeBytes: 77})

	scan := scanWith(t, provider)

	gone, ok := scan.Lookup("Assets/gone.png")
	require.True(t, ok)
	assert.True(t, gone.Node.Missing)
	assert.True(t, gone.Reachable)
	assert.Zero(t, gone.CostBytes)

	blank, ok := scan.Lookup("Assets/blank.png")
	require.True(t, ok)
	assert.True(t, blank.Node.MetadataUnavailable)
	assert.Zero(t, blank.CostBytes)

	assert.Equal(t, []m.Warning{
		{Kind: m.WarningMissingResource, Path: "Assets/gone.png", Reason: "no backing file"},
		{Kind: m.WarningMetadataUnavailable, Path: "Assets/blank.png", Reason: "pixel format or dimensions unknown"},
	}, scan.Warnings)
	assert.Equal(t, 1, scan.Summary.MissingCount)
	assert.Equal(t, 1, scan.Summary.MetadataUnavailableCount)

	assert.NotContains(t, paths(Rank(scan.Entries, m.RankByCost, m.Descending, 0)), m.Path("Assets/gone.png"))
	assert.NotContains(t, paths(TopK(scan.Entries, 10).Textures), m.Path("Assets/blank.png"))
}

func TestScanner_NoRoots(t *testing.T) {
	provider := scenarioProvider()
	provider.roots = nil

	_, err := NewScanner(provider, mustFilter(t), DefaultFormatPolicy(), DefaultShaderPolicy()).Scan(context.Background())
	assert.ErrorIs(t, err, ErrUnresolvableRoot)
}

func TestScanner_DependencyFailureAbortsScan(t *testing.T) {
	provider := scenarioProvider()
	provider.depErrs["Assets/Y.fbx"] = errors.New("index corrupted")

	_, err := NewScanner(provider, mustFilter(t), DefaultFormatPolicy(), DefaultShaderPolicy()).Scan(context.Background())
	assert.Error(t, err)
}
