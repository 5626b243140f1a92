package adapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	assetsFolder   = "Assets"
	packagesFolder = "Packages"
	metaExtension  = ".meta"
	yamlHeader     = "%YAML"

	defaultPlatform  = "DefaultTexturePlatform"
	defaultCacheSize = 4096
)

var (
	guidPattern     = regexp.MustCompile(`guid:\s*([0-9a-fA-F]{32})`)
	ownGUIDPattern  = regexp.MustCompile(`(?m)^guid:\s*([0-9a-fA-F]{32})`)
	shaderNameRegex = regexp.MustCompile(`(?m)^\s*Shader\s+"([^"]+)"`)
)

// textureExtensions are the image files treated as textures.
var textureExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tga":  true,
	".bmp":  true,
	".dds":  true,
}

// UnityProjectOptions configures a UnityProject provider.
type UnityProjectOptions struct {
	// Root is the filesystem directory that contains Assets/.
	Root string
	// Roots overrides root document discovery (project-relative paths).
	Roots []m.Path
	// Platform selects the importer platform settings used for format and max size.
	Platform string
	// Parallel bounds the number of sidecars parsed concurrently while indexing.
	Parallel int
	// CacheSize bounds the number of parsed importer settings kept in memory.
	CacheSize int
}

// UnityProject reads an on-disk project: `.meta` sidecars provide guids and import
// settings, YAML assets provide guid references, image headers provide dimensions.
type UnityProject struct {
	fs   ProjectFSAdapter
	opts UnityProjectOptions

	mu    sync.Mutex
	index *guidIndex

	importers *lru.Cache[m.Path, textureImporterSettings]
}

// NewUnityProject constructs a provider rooted at opts.Root.
func NewUnityProject(fs ProjectFSAdapter, opts UnityProjectOptions) (*UnityProject, error) {
	if strings.TrimSpace(opts.Root) == "" {
		return nil, errors.New("project root is required")
	}

	if opts.Platform == "" {
		opts.Platform = defaultPlatform
	}

	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}

	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}

	cache, err := lru.New[m.Path, textureImporterSettings](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create importer cache: %w", err)
	}

	return &UnityProject{
		fs:        fs,
		opts:      opts,
		importers: cache,
	}, nil
}

// ProjectName returns the name of the project directory.
func (p *UnityProject) ProjectName() string {
	return filepath.Base(filepath.Clean(p.opts.Root))
}

// ProjectRoot returns the filesystem directory of the project.
func (p *UnityProject) ProjectRoot() m.Path {
	return m.Path(p.opts.Root)
}

// Refresh drops the guid index and every cached importer so the next call re-reads disk.
func (p *UnityProject) Refresh(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.Lock()
	p.index = nil
	p.mu.Unlock()

	p.importers.Purge()

	return nil
}

// ListRootDocuments returns the configured roots, or every scene and prefab in Assets/.
func (p *UnityProject) ListRootDocuments(ctx context.Context) ([]m.Path, error) {
	if len(p.opts.Roots) > 0 {
		roots := make([]m.Path, len(p.opts.Roots))
		copy(roots, p.opts.Roots)

		return roots, nil
	}

	index, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	var roots []m.Path

	for _, resource := range index.inventory {
		switch strings.ToLower(path.Ext(string(resource))) {
		case ".unity", ".prefab":
			roots = append(roots, resource)
		}
	}

	return roots, nil
}

// ResolveDependencies returns the resources referenced by guid from the asset itself
// (when it is a YAML asset) and from its sidecar.
func (p *UnityProject) ResolveDependencies(ctx context.Context, resource m.Path) ([]m.Path, error) {
	index, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	content, err := p.readYAMLAsset(ctx, resource)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", resource, ErrResourceMissing)
		}

		return nil, fmt.Errorf("read %s: %w", resource, err)
	}

	refs := make(map[m.Path]struct{})

	if content != nil {
		index.collectRefs(content, resource, refs)
	}

	meta, err := p.fs.ReadFile(ctx, p.fsPath(resource+metaExtension))
	if err == nil {
		index.collectRefs(meta, resource, refs)
	}

	deps := make([]m.Path, 0, len(refs))
	for dep := range refs {
		deps = append(deps, dep)
	}

	sort.Slice(deps, func(i, j int) bool { return deps[i] < deps[j] })

	return deps, nil
}

// readYAMLAsset returns the content of a YAML asset, or nil for any other file.
// Only the header of a binary asset is read.
func (p *UnityProject) readYAMLAsset(ctx context.Context, resource m.Path) ([]byte, error) {
	file, err := p.fs.Open(ctx, p.fsPath(resource))
	if err != nil {
		return nil, err
	}

	defer func() { _ = file.Close() }()

	header := make([]byte, len(yamlHeader))

	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}

	if n < len(header) || string(header) != yamlHeader {
		return nil, nil
	}

	rest, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return append(header, rest...), nil
}

// ListAllProjectResources returns every file under Assets/ in lexical order.
func (p *UnityProject) ListAllProjectResources(ctx context.Context) ([]m.Path, error) {
	index, err := p.ensureIndex(ctx)
	if err != nil {
		return nil, err
	}

	resources := make([]m.Path, len(index.inventory))
	copy(resources, index.inventory)

	return resources, nil
}

// GetMetadata stats the resource and reads kind specific metadata.
func (p *UnityProject) GetMetadata(ctx context.Context, resource m.Path) (m.ResourceMetadata, error) {
	info, err := p.fs.FileInfo(ctx, p.fsPath(resource))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.ResourceMetadata{}, fmt.Errorf("%s: %w", resource, ErrResourceMissing)
		}

		return m.ResourceMetadata{}, fmt.Errorf("stat %s: %w", resource, err)
	}

	metadata := m.ResourceMetadata{
		Path:         resource,
		RawSizeBytes: info.Size(),
		Kind:         kindOf(resource),
	}

	switch metadata.Kind {
	case m.KindTexture:
		p.fillTextureMetadata(ctx, &metadata)
	case m.KindMaterial:
		p.fillMaterialMetadata(ctx, &metadata)
	case m.KindOther:
	}

	return metadata, nil
}

func (p *UnityProject) fillTextureMetadata(ctx context.Context, metadata *m.ResourceMetadata) {
	settings, err := p.importerSettings(ctx, metadata.Path)
	if err != nil {
		slog.Debug("texture importer settings unavailable", "path", metadata.Path, "error", err)
	} else {
		metadata.PixelFormat = settings.Format
		metadata.MaxSizeSetting = settings.MaxSize
	}

	dims, err := p.readDimensions(ctx, metadata.Path)
	if err != nil {
		slog.Debug("texture dimensions unavailable", "path", metadata.Path, "error", err)
		return
	}

	metadata.Dimensions = dims
}

func (p *UnityProject) fillMaterialMetadata(ctx context.Context, metadata *m.ResourceMetadata) {
	index, err := p.ensureIndex(ctx)
	if err != nil {
		return
	}

	content, err := p.fs.ReadFile(ctx, p.fsPath(metadata.Path))
	if err != nil {
		slog.Debug("material unreadable", "path", metadata.Path, "error", err)
		return
	}

	ref, ok := parseShaderRef(content)
	if !ok {
		return
	}

	metadata.ShaderID = index.shaderName(ref)
}

// fsPath maps a project-relative resource path onto the filesystem.
func (p *UnityProject) fsPath(resource m.Path) m.Path {
	return p.fs.JoinPath(p.opts.Root, filepath.FromSlash(string(resource)))
}

func kindOf(resource m.Path) m.ResourceKind {
	ext := strings.ToLower(path.Ext(string(resource)))

	switch {
	case textureExtensions[ext]:
		return m.KindTexture
	case ext == ".mat":
		return m.KindMaterial
	default:
		return m.KindOther
	}
}

// guidIndex maps guids to project paths and shader guids to shader names.
type guidIndex struct {
	byGUID      map[string]m.Path
	shaderNames map[string]string // guid -> shader name
	shaderGUIDs map[string]string // shader name -> guid
	inventory   []m.Path          // every file under Assets/, sorted
}

func (idx *guidIndex) collectRefs(content []byte, self m.Path, refs map[m.Path]struct{}) {
	for _, match := range guidPattern.FindAllSubmatch(content, -1) {
		guid := strings.ToLower(string(match[1]))
		if isBuiltinGUID(guid) {
			continue
		}

		target, ok := idx.byGUID[guid]
		if !ok || target == self {
			continue
		}

		refs[target] = struct{}{}
	}
}

func (p *UnityProject) ensureIndex(ctx context.Context) (*guidIndex, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.index != nil {
		return p.index, nil
	}

	index, err := p.buildIndex(ctx)
	if err != nil {
		return nil, err
	}

	p.index = index

	return index, nil
}

type indexedFile struct {
	resource m.Path
	isMeta   bool
	isShader bool
}

func (p *UnityProject) buildIndex(ctx context.Context) (*guidIndex, error) {
	index := &guidIndex{
		byGUID:      make(map[string]m.Path),
		shaderNames: make(map[string]string),
		shaderGUIDs: make(map[string]string),
	}

	var files []indexedFile

	for _, folder := range []string{assetsFolder, packagesFolder} {
		collected, err := p.collectFiles(ctx, folder)
		if err != nil {
			return nil, err
		}

		for _, file := range collected {
			if !file.isMeta && strings.HasPrefix(string(file.resource), assetsFolder+"/") {
				index.inventory = append(index.inventory, file.resource)
			}
		}

		files = append(files, collected...)
	}

	sort.Slice(index.inventory, func(i, j int) bool { return index.inventory[i] < index.inventory[j] })

	shaderSources := make(map[m.Path]string)

	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(p.opts.Parallel)

	for _, file := range files {
		if !file.isMeta && !file.isShader {
			continue
		}

		current := file

		group.Go(func() error {
			content, err := p.fs.ReadFile(groupCtx, p.fsPath(current.resource))
			if err != nil {
				slog.Warn("skipping unreadable file while indexing", "path", current.resource, "error", err)
				return nil
			}

			mu.Lock()
			defer mu.Unlock()

			if current.isShader {
				if match := shaderNameRegex.FindSubmatch(content); match != nil {
					shaderSources[current.resource] = string(match[1])
				}

				return nil
			}

			if match := ownGUIDPattern.FindSubmatch(content); match != nil {
				asset := m.Path(strings.TrimSuffix(string(current.resource), metaExtension))
				index.byGUID[strings.ToLower(string(match[1]))] = asset
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("index project: %w", err)
	}

	for guid, asset := range index.byGUID {
		if name, ok := shaderSources[asset]; ok {
			index.shaderNames[guid] = name
			index.shaderGUIDs[name] = guid
		}
	}

	slog.Debug("project indexed", "root", p.opts.Root, "resources", len(index.inventory), "guids", len(index.byGUID))

	return index, nil
}

func (p *UnityProject) collectFiles(ctx context.Context, folder string) ([]indexedFile, error) {
	rootPath := p.fsPath(m.Path(folder))

	exists, err := p.fs.Exists(ctx, rootPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", folder, err)
	}

	if !exists {
		return nil, nil
	}

	var files []indexedFile

	err = p.fs.Walk(ctx, rootPath, func(walked string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(p.opts.Root, walked)
		if err != nil {
			return err
		}

		resource := m.Path(filepath.ToSlash(rel))
		ext := strings.ToLower(path.Ext(string(resource)))

		files = append(files, indexedFile{
			resource: resource,
			isMeta:   ext == metaExtension,
			isShader: ext == ".shader",
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", folder, err)
	}

	return files, nil
}
