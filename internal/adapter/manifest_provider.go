package adapter

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// Manifest is a content database export produced by a host editor.
type Manifest struct {
	Project      string              `yaml:"project"`
	Root         string              `yaml:"root,omitempty"`
	Roots        []m.Path            `yaml:"roots"`
	Dependencies map[m.Path][]m.Path `yaml:"dependencies"`
	Resources    []ManifestResource  `yaml:"resources"`
}

// ManifestResource is the exported metadata of one resource.
type ManifestResource struct {
	Path    m.Path         `yaml:"path"`
	Size    int64          `yaml:"size"`
	Kind    m.ResourceKind `yaml:"kind,omitempty"`
	Format  string         `yaml:"format,omitempty"`
	Width   int            `yaml:"width,omitempty"`
	Height  int            `yaml:"height,omitempty"`
	MaxSize int            `yaml:"max_size,omitempty"`
	Shader  string         `yaml:"shader,omitempty"`
	Missing bool           `yaml:"missing,omitempty"`
}

// ManifestProvider serves a scan from a Manifest file. It is read-only: it implements
// neither ImportSettingsEditor nor MaterialEditor.
type ManifestProvider struct {
	fs   ProjectFSAdapter
	path m.Path

	mu        sync.Mutex
	manifest  *Manifest
	resources map[m.Path]ManifestResource
}

// NewManifestProvider loads the manifest at path.
func NewManifestProvider(ctx context.Context, fs ProjectFSAdapter, path m.Path) (*ManifestProvider, error) {
	provider := &ManifestProvider{fs: fs, path: path}
	if err := provider.Refresh(ctx); err != nil {
		return nil, err
	}

	return provider, nil
}

// ParseManifest decodes a manifest document.
func ParseManifest(content []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(content, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	seen := make(map[m.Path]struct{}, len(manifest.Resources))

	for i, resource := range manifest.Resources {
		if strings.TrimSpace(string(resource.Path)) == "" {
			return nil, fmt.Errorf("manifest resource %d has no path", i)
		}

		if _, ok := seen[resource.Path]; ok {
			return nil, fmt.Errorf("manifest lists %s twice", resource.Path)
		}

		seen[resource.Path] = struct{}{}
	}

	return &manifest, nil
}

// Refresh re-reads the manifest file.
func (p *ManifestProvider) Refresh(ctx context.Context) error {
	content, err := p.fs.ReadFile(ctx, p.path)
	if err != nil {
		return fmt.Errorf("read manifest %s: %w", p.path, err)
	}

	manifest, err := ParseManifest(content)
	if err != nil {
		return err
	}

	resources := make(map[m.Path]ManifestResource, len(manifest.Resources))
	for _, resource := range manifest.Resources {
		if resource.Kind == "" {
			resource.Kind = kindOf(resource.Path)
		}

		resources[resource.Path] = resource
	}

	p.mu.Lock()
	p.manifest = manifest
	p.resources = resources
	p.mu.Unlock()

	return nil
}

func (p *ManifestProvider) current() (*Manifest, map[m.Path]ManifestResource) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.manifest, p.resources
}

// ProjectName returns the exported project name, or the name of the project root.
func (p *ManifestProvider) ProjectName() string {
	manifest, _ := p.current()
	if manifest.Project != "" {
		return manifest.Project
	}

	return filepath.Base(filepath.Clean(string(p.ProjectRoot())))
}

// ProjectRoot returns the exported root, or the directory holding the manifest.
func (p *ManifestProvider) ProjectRoot() m.Path {
	manifest, _ := p.current()
	if manifest.Root != "" {
		return m.Path(manifest.Root)
	}

	return m.Path(filepath.Dir(string(p.path)))
}

// ListRootDocuments returns the exported roots.
func (p *ManifestProvider) ListRootDocuments(ctx context.Context) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, _ := p.current()
	roots := make([]m.Path, len(manifest.Roots))
	copy(roots, manifest.Roots)

	return roots, nil
}

// ResolveDependencies returns the exported references of path, sorted.
func (p *ManifestProvider) ResolveDependencies(ctx context.Context, path m.Path) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, _ := p.current()
	deps := append([]m.Path(nil), manifest.Dependencies[path]...)
	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })

	return deps, nil
}

// ListAllProjectResources returns every exported resource in lexical order.
func (p *ManifestProvider) ListAllProjectResources(ctx context.Context) ([]m.Path, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	manifest, _ := p.current()

	paths := make([]m.Path, 0, len(manifest.Resources))
	for _, resource := range manifest.Resources {
		paths = append(paths, resource.Path)
	}

	sort.Slice(paths, func(i, j int) bool { return paths[i] < paths[j] })

	return paths, nil
}

// GetMetadata returns the exported metadata. Roots that were not exported as resources
// are empty documents. Other resources that are not exported, or are exported as
// missing, report ErrResourceMissing.
func (p *ManifestProvider) GetMetadata(ctx context.Context, path m.Path) (m.ResourceMetadata, error) {
	if err := ctx.Err(); err != nil {
		return m.ResourceMetadata{}, err
	}

	manifest, resources := p.current()

	resource, ok := resources[path]
	if !ok && slices.Contains(manifest.Roots, path) {
		return m.ResourceMetadata{Path: path, Kind: kindOf(path)}, nil
	}

	if !ok || resource.Missing {
		return m.ResourceMetadata{}, fmt.Errorf("%s: %w", path, ErrResourceMissing)
	}

	return m.ResourceMetadata{
		Path:           resource.Path,
		RawSizeBytes:   resource.Size,
		Kind:           resource.Kind,
		PixelFormat:    m.PixelFormat(resource.Format),
		Dimensions:     m.Dimensions{Width: resource.Width, Height: resource.Height},
		MaxSizeSetting: resource.MaxSize,
		ShaderID:       resource.Shader,
	}, nil
}
