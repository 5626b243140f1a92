package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

func shrinkEntries() []m.WeightedEntry {
	tex := func(order int, path m.Path, maxSize int) m.WeightedEntry {
		return m.WeightedEntry{Node: m.ResourceNode{
			Path: path, Order: order, Kind: m.KindTexture, PixelFormat: "DXT5",
			Dimensions: m.Dimensions{Width: 4096, Height: 4096}, MaxSizeSetting: maxSize,
		}}
	}

	return []m.WeightedEntry{
		tex(0, "Assets/big.png", 4096),
		tex(1, "Assets/medium.png", 1024),
		tex(2, "Assets/small.png", 512),
		tex(3, "Assets/unknown.png", 0),
		{Node: m.ResourceNode{Path: "Assets/model.fbx", Order: 4, Kind: m.KindOther}},
	}
}

func TestValidateMaxSize(t *testing.T) {
	for _, size := range AllowedMaxSizes {
		assert.NoError(t, ValidateMaxSize(size))
	}

	for _, size := range []int{0, 64, 300, 4096} {
		assert.ErrorIs(t, ValidateMaxSize(size), ErrInvalidMaxSize)
	}
}

func TestShrinker_PlanSkipsTexturesAtOrBelowTarget(t *testing.T) {
	editor := newFakeEditor()
	shrinker := NewShrinker(editor)

	result, err := shrinker.Plan(context.Background(), shrinkEntries(), nil, 1024)
	require.NoError(t, err)

	assert.Equal(t, "1024", result.Target)
	assert.Equal(t, 4, result.Selected)
	assert.Equal(t, []m.ItemFailure{
		{Path: "Assets/medium.png", Reason: "max size already 1024"},
		{Path: "Assets/small.png", Reason: "max size already 512"},
	}, result.Skipped)

	planned := make([]m.Path, 0, len(result.Edits))
	for _, edit := range result.Edits {
		planned = append(planned, edit.Path)
	}

	assert.Equal(t, []m.Path{"Assets/big.png", "Assets/unknown.png"}, planned)
	assert.Empty(t, editor.applied)
}

func TestShrinker_PlanHonorsSelection(t *testing.T) {
	shrinker := NewShrinker(newFakeEditor())

	result, err := shrinker.Plan(context.Background(), shrinkEntries(), m.SelectionState{"Assets/big.png": false}, 256)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Selected)
	assert.Empty(t, result.Skipped)
	require.Len(t, result.Edits, 3)
	assert.Equal(t, m.Path("Assets/medium.png"), result.Edits[0].Path)
}

func TestShrinker_PlanRejectsInvalidTarget(t *testing.T) {
	_, err := NewShrinker(newFakeEditor()).Plan(context.Background(), shrinkEntries(), nil, 300)
	assert.ErrorIs(t, err, ErrInvalidMaxSize)
}

func TestShrinker_Apply(t *testing.T) {
	ctx := context.Background()
	editor := newFakeEditor()
	editor.files["Assets/big.png.meta"] = "maxTextureSize: 4096\n"
	editor.files["Assets/unknown.png.meta"] = "maxTextureSize: 2048\n"
	editor.planErr["Assets/medium.png"] = errors.New("sidecar unreadable")
	editor.applyErr["Assets/unknown.png"] = errors.New("read-only file")

	shrinker := NewShrinker(editor)

	result, err := shrinker.Plan(ctx, shrinkEntries(), nil, 512)
	require.NoError(t, err)

	shrinker.Apply(ctx, &result)

	assert.Equal(t, []m.Path{"Assets/big.png"}, result.Applied)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, m.Path("Assets/medium.png"), result.Failed[0].Path)
	assert.Equal(t, m.Path("Assets/unknown.png"), result.Failed[1].Path)
	assert.Equal(t, "maxTextureSize: 512\n", editor.files["Assets/big.png.meta"])
	assert.Equal(t, "maxTextureSize: 2048\n", editor.files["Assets/unknown.png.meta"])
}

func TestShrinker_ApplySkipsUnchangedEdits(t *testing.T) {
	ctx := context.Background()
	editor := newFakeEditor()
	editor.files["Assets/unknown.png.meta"] = "maxTextureSize: 128\n"

	shrinker := NewShrinker(editor)

	result, err := shrinker.Plan(ctx, shrinkEntries()[3:4], nil, 128)
	require.NoError(t, err)

	shrinker.Apply(ctx, &result)

	assert.Empty(t, result.Applied)
	assert.Equal(t, []m.ItemFailure{{Path: "Assets/unknown.png", Reason: "already up to date"}}, result.Skipped)
	assert.Empty(t, editor.applied)
}
