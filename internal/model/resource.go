// Package model defines the data structures shared by the scanner, the ranking engine
// and the relocation planner.
package model

// Path represents a project-relative resource path (e.g. "Assets/Textures/wall.png").
type Path string

// ResourceKind is the broad category of a content resource.
type ResourceKind string

const (
	// KindTexture represents image resources whose cost is their in-memory footprint.
	KindTexture ResourceKind = "texture"
	// KindMaterial represents material resources that reference a shader.
	KindMaterial ResourceKind = "material"
	// KindOther represents every other content resource (models, audio, animations...).
	KindOther ResourceKind = "other"
)

// PixelFormat is the importer pixel format name of a texture (e.g. "DXT1", "RGBA32").
type PixelFormat string

// Dimensions holds the source pixel size of a texture.
type Dimensions struct {
	Width  int
	Height int
}

// Valid reports whether both axes are known.
func (d Dimensions) Valid() bool {
	return d.Width > 0 && d.Height > 0
}

// ResourceMetadata is what a metadata provider knows about a single resource.
type ResourceMetadata struct {
	Path           Path
	RawSizeBytes   int64
	Kind           ResourceKind
	PixelFormat    PixelFormat
	Dimensions     Dimensions
	MaxSizeSetting int
	ShaderID       string
}

// ResourceNode is the immutable per-scan snapshot of a resource.
type ResourceNode struct {
	Path           Path
	Order          int // position in scan order, used as the ranking tie breaker
	RawSizeBytes   int64
	Kind           ResourceKind
	PixelFormat    PixelFormat
	Dimensions     Dimensions
	MaxSizeSetting int
	ShaderID       string
	Creator        string

	// Missing is set when the node has no backing file.
	Missing bool
	// MetadataUnavailable is set for textures without format or dimension metadata.
	MetadataUnavailable bool
}

// IsTexture reports whether the node is a texture.
func (n ResourceNode) IsTexture() bool {
	return n.Kind == KindTexture
}

// IsMaterial reports whether the node is a material.
func (n ResourceNode) IsMaterial() bool {
	return n.Kind == KindMaterial
}

// Category is the ranking bucket of an entry. Top-K lists are computed per category.
type Category string

const (
	// CategoryTexture groups textures, ranked by estimated memory footprint.
	CategoryTexture Category = "texture"
	// CategoryGeneral groups every non-texture resource, ranked by raw size.
	CategoryGeneral Category = "general"
)

// CategoryOf returns the ranking category of a node.
func CategoryOf(node ResourceNode) Category {
	if node.IsTexture() {
		return CategoryTexture
	}

	return CategoryGeneral
}

// ShaderRef identifies a shader the way a material serializes it.
type ShaderRef struct {
	Name   string
	FileID int64
	GUID   string
	Type   int
}
