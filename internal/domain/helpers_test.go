package domain

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"assetmaid.dev/pkg/assetmaid/internal/adapter"
	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// fakeProvider is an in-memory content database.
type fakeProvider struct {
	name      string
	root      m.Path
	roots     []m.Path
	deps      map[m.Path][]m.Path
	resources map[m.Path]m.ResourceMetadata
	depErrs   map[m.Path]error
	refreshes int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		name:      "Demo",
		root:      "/projects/Demo",
		deps:      make(map[m.Path][]m.Path),
		resources: make(map[m.Path]m.ResourceMetadata),
		depErrs:   make(map[m.Path]error),
	}
}

func (p *fakeProvider) add(meta m.ResourceMetadata) *fakeProvider {
	if meta.Kind == "" {
		meta.Kind = m.KindOther
	}

	p.resources[meta.Path] = meta

	return p
}

func (p *fakeProvider) ProjectName() string { return p.name }

func (p *fakeProvider) ProjectRoot() m.Path { return p.root }

func (p *fakeProvider) Refresh(context.Context) error {
	p.refreshes++
	return nil
}

func (p *fakeProvider) ListRootDocuments(context.Context) ([]m.Path, error) {
	return append([]m.Path(nil), p.roots...), nil
}

func (p *fakeProvider) ResolveDependencies(_ context.Context, path m.Path) ([]m.Path, error) {
	if err := p.depErrs[path]; err != nil {
		return nil, err
	}

	return append([]m.Path(nil), p.deps[path]...), nil
}

func (p *fakeProvider) ListAllProjectResources(context.Context) ([]m.Path, error) {
	paths := make([]m.Path, 0, len(p.resources))
	for path := range p.resources {
		paths = append(paths, path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths, nil
}

func (p *fakeProvider) GetMetadata(_ context.Context, path m.Path) (m.ResourceMetadata, error) {
	meta, ok := p.resources[path]
	if !ok {
		return m.ResourceMetadata{}, fmt.Errorf("%s: %w", path, adapter.ErrResourceMissing)
	}

	return meta, nil
}

// scenarioProvider models two scenes referencing {X,Y,Z} and {Y,W} with an unused V.
func scenarioProvider() *fakeProvider {
	p := newFakeProvider()
	p.roots = []m.Path{"Assets/Scenes/SceneB.unity", "Assets/Scenes/SceneA.unity"}
	p.deps["Assets/Scenes/SceneA.unity"] = []m.Path{"Assets/Z.png", "Assets/X.mat", "Assets/Y.fbx"}
	p.deps["Assets/Scenes/SceneB.unity"] = []m.Path{"Assets/Y.fbx", "Assets/W.wav"}

	p.add(m.ResourceMetadata{Path: "Assets/Scenes/SceneA.unity", RawSizeBytes: 10})
	p.add(m.ResourceMetadata{Path: "Assets/Scenes/SceneB.unity", RawSizeBytes: 20})
	p.add(m.ResourceMetadata{Path: "Assets/X.mat", RawSizeBytes: 100, Kind: m.KindMaterial, ShaderID: "Legacy/Bumped Diffuse"})
	p.add(m.ResourceMetadata{Path: "Assets/Y.fbx", RawSizeBytes: 2000})
	p.add(m.ResourceMetadata{
		Path: "Assets/Z.png", RawSizeBytes: 50, Kind: m.KindTexture, PixelFormat: "DXT1",
		Dimensions: m.Dimensions{Width: 4096, Height: 4096}, MaxSizeSetting: 2048,
	})
	p.add(m.ResourceMetadata{Path: "Assets/W.wav", RawSizeBytes: 300})
	p.add(m.ResourceMetadata{
		Path: "Assets/V.png", RawSizeBytes: 400, Kind: m.KindTexture, PixelFormat: "RGBA32",
		Dimensions: m.Dimensions{Width: 64, Height: 32}, MaxSizeSetting: 2048,
	})

	return p
}

func mustFilter(t *testing.T, patterns ...string) *PathFilter {
	t.Helper()

	filter, err := NewPathFilter(DefaultContentPrefix, patterns)
	require.NoError(t, err)

	return filter
}

func scanWith(t *testing.T, provider adapter.ContentProvider) *m.ScanResult {
	t.Helper()

	scan, err := NewScanner(provider, mustFilter(t), DefaultFormatPolicy(), DefaultShaderPolicy()).Scan(context.Background())
	require.NoError(t, err)

	return scan
}

func paths(entries []m.WeightedEntry) []m.Path {
	out := make([]m.Path, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Node.Path)
	}

	return out
}

// fakeEditor plans edits as text replacements and records what it applied.
type fakeEditor struct {
	files    map[m.Path]string
	shaders  map[string]m.ShaderRef
	applied  []m.FileEdit
	planErr  map[m.Path]error
	applyErr map[m.Path]error
}

func newFakeEditor() *fakeEditor {
	return &fakeEditor{
		files:    make(map[m.Path]string),
		shaders:  make(map[string]m.ShaderRef),
		planErr:  make(map[m.Path]error),
		applyErr: make(map[m.Path]error),
	}
}

func (e *fakeEditor) PlanMaxSize(_ context.Context, path m.Path, maxSize int) (m.FileEdit, error) {
	if err := e.planErr[path]; err != nil {
		return m.FileEdit{}, err
	}

	sidecar := path + ".meta"

	return m.FileEdit{
		Path:   path,
		File:   sidecar,
		Before: []byte(e.files[sidecar]),
		After:  []byte(fmt.Sprintf("maxTextureSize: %d\n", maxSize)),
	}, nil
}

func (e *fakeEditor) ResolveShader(_ context.Context, name string) (m.ShaderRef, error) {
	ref, ok := e.shaders[name]
	if !ok {
		return m.ShaderRef{}, fmt.Errorf("%q: %w", name, adapter.ErrShaderNotFound)
	}

	return ref, nil
}

func (e *fakeEditor) PlanShader(_ context.Context, path m.Path, shader m.ShaderRef) (m.FileEdit, error) {
	if err := e.planErr[path]; err != nil {
		return m.FileEdit{}, err
	}

	return m.FileEdit{
		Path:   path,
		File:   path,
		Before: []byte(e.files[path]),
		After:  []byte("shader: " + shader.Name + "\n"),
	}, nil
}

func (e *fakeEditor) ApplyEdit(_ context.Context, edit m.FileEdit) error {
	if err := e.applyErr[edit.Path]; err != nil {
		return err
	}

	e.files[edit.File] = string(edit.After)
	e.applied = append(e.applied, edit)

	return nil
}
