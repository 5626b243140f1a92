package adapter

import (
	"context"
	"errors"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

var (
	// ErrResourceMissing is returned when a path has no backing file.
	ErrResourceMissing = errors.New("resource missing")
	// ErrUnsupported is returned when a provider cannot perform an edit.
	ErrUnsupported = errors.New("operation not supported by provider")
	// ErrShaderNotFound is returned when a shader name cannot be resolved.
	ErrShaderNotFound = errors.New("shader not found")
	// ErrEditConflict is returned when a file changed between planning and applying an edit.
	ErrEditConflict = errors.New("file changed since the edit was planned")
)

// DependencyProvider is the host content database view of the dependency graph.
type DependencyProvider interface {
	// ListRootDocuments returns the scenes and templates treated as entry points.
	ListRootDocuments(ctx context.Context) ([]m.Path, error)
	// ResolveDependencies returns the resources referenced by path. Implementations may
	// return direct references or the full closure; cycles are allowed.
	ResolveDependencies(ctx context.Context, path m.Path) ([]m.Path, error)
}

// MetadataProvider supplies the full inventory and per-resource metadata.
type MetadataProvider interface {
	ListAllProjectResources(ctx context.Context) ([]m.Path, error)
	// GetMetadata returns ErrResourceMissing (wrapped) when the resource has no file.
	GetMetadata(ctx context.Context, path m.Path) (m.ResourceMetadata, error)
}

// ContentProvider is the combined host view used by a scan.
type ContentProvider interface {
	DependencyProvider
	MetadataProvider
	// ProjectName is used to name backup folders and history records.
	ProjectName() string
	// ProjectRoot is the filesystem directory resource paths are relative to.
	ProjectRoot() m.Path
}

// Refresher is implemented by providers that cache project state between calls.
// Scans call Refresh first so that every scan starts from the current disk state.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// ImportSettingsEditor rewrites texture import settings.
type ImportSettingsEditor interface {
	PlanMaxSize(ctx context.Context, path m.Path, maxSize int) (m.FileEdit, error)
	ApplyEdit(ctx context.Context, edit m.FileEdit) error
}

// MaterialEditor rewrites the shader reference of materials.
type MaterialEditor interface {
	ResolveShader(ctx context.Context, name string) (m.ShaderRef, error)
	PlanShader(ctx context.Context, path m.Path, shader m.ShaderRef) (m.FileEdit, error)
	ApplyEdit(ctx context.Context, edit m.FileEdit) error
}
