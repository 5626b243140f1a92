package domain

import (
	"math"
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// FormatClass groups pixel formats that share a bytes-per-pixel cost.
type FormatClass string

// Known format classes.
const (
	FormatCompressed4bpp FormatClass = "compressed_4bpp"
	FormatCompressed8bpp FormatClass = "compressed_8bpp"
	FormatUncompressed32 FormatClass = "uncompressed_32bit"
)

// DefaultBytesPerPixel is the cost of a pixel in a format missing from the table.
const DefaultBytesPerPixel = 1.0

// DefaultFormatClasses is the built-in format table.
func DefaultFormatClasses() map[FormatClass][]string {
	return map[FormatClass][]string{
		FormatCompressed4bpp: {
			"DXT1", "DXT1Crunched", "ETC_RGB4", "ETC_RGB4Crunched", "ETC2_RGB4",
			"ETC2_RGB4_PUNCHTHROUGH_ALPHA", "PVRTC_RGB4", "PVRTC_RGBA4", "BC4",
		},
		FormatCompressed8bpp: {
			"DXT5", "DXT5Crunched", "ETC2_RGBA8", "ETC2_RGBA8Crunched", "BC5", "BC6H", "BC7", "ASTC_4x4",
		},
		FormatUncompressed32: {"RGBA32", "ARGB32", "BGRA32"},
	}
}

// DefaultBytesPerPixelTable is the built-in cost of each class.
func DefaultBytesPerPixelTable() map[FormatClass]float64 {
	return map[FormatClass]float64{
		FormatCompressed4bpp: 0.5,
		FormatCompressed8bpp: 1.0,
		FormatUncompressed32: 4.0,
	}
}

// FormatPolicy maps pixel formats to their in-memory cost. Unknown formats cost the
// default bytes per pixel, which is an approximation.
type FormatPolicy struct {
	classes       map[string]FormatClass
	bytesPerPixel map[FormatClass]float64
	defaultBPP    float64
}

// DefaultFormatPolicy returns the built-in policy.
func DefaultFormatPolicy() FormatPolicy {
	return NewFormatPolicy(DefaultFormatClasses(), DefaultBytesPerPixelTable(), DefaultBytesPerPixel)
}

// NewFormatPolicy builds a policy. Format names are matched case-insensitively; a
// non-positive defaultBPP falls back to DefaultBytesPerPixel.
func NewFormatPolicy(classes map[FormatClass][]string, bytesPerPixel map[FormatClass]float64, defaultBPP float64) FormatPolicy {
	if defaultBPP <= 0 {
		defaultBPP = DefaultBytesPerPixel
	}

	policy := FormatPolicy{
		classes:       make(map[string]FormatClass),
		bytesPerPixel: make(map[FormatClass]float64, len(bytesPerPixel)),
		defaultBPP:    defaultBPP,
	}

	for class, formats := range classes {
		for _, format := range formats {
			policy.classes[strings.ToUpper(strings.TrimSpace(format))] = class
		}
	}

	for class, bpp := range bytesPerPixel {
		policy.bytesPerPixel[class] = bpp
	}

	return policy
}

// ClassOf returns the class of format.
func (p FormatPolicy) ClassOf(format m.PixelFormat) (FormatClass, bool) {
	class, ok := p.classes[strings.ToUpper(string(format))]
	return class, ok
}

// BytesPerPixel returns the cost of one pixel in format.
func (p FormatPolicy) BytesPerPixel(format m.PixelFormat) float64 {
	if class, ok := p.ClassOf(format); ok {
		if bpp, ok := p.bytesPerPixel[class]; ok {
			return bpp
		}
	}

	return p.defaultBPP
}

// IsUncompressed32 reports whether format is an uncompressed 32-bit format.
func (p FormatPolicy) IsUncompressed32(format m.PixelFormat) bool {
	class, ok := p.ClassOf(format)
	return ok && class == FormatUncompressed32
}

// EffectiveDimensions returns the size a texture is imported at. When the larger axis
// exceeds maxSize both axes are scaled by the same ratio, rounded, raised to the next
// power of two and clamped to the source size. Otherwise the source size is kept.
func EffectiveDimensions(dims m.Dimensions, maxSize int) m.Dimensions {
	largest := max(dims.Width, dims.Height)
	if maxSize <= 0 || largest <= maxSize {
		return dims
	}

	ratio := float64(maxSize) / float64(largest)

	return m.Dimensions{
		Width:  min(nextPowerOfTwo(int(math.RoundToEven(float64(dims.Width)*ratio))), dims.Width),
		Height: min(nextPowerOfTwo(int(math.RoundToEven(float64(dims.Height)*ratio))), dims.Height),
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}

	return power
}

// HasTextureMetadata reports whether a texture node can be costed.
func HasTextureMetadata(node m.ResourceNode) bool {
	return node.PixelFormat != "" && node.Dimensions.Valid()
}

// EstimateCost returns the comparable byte cost of node: the estimated in-memory
// footprint for textures, the stored size for everything else. Missing nodes and
// textures without metadata cost 0.
func (p FormatPolicy) EstimateCost(node m.ResourceNode) int64 {
	if node.Missing {
		return 0
	}

	if !node.IsTexture() {
		return node.RawSizeBytes
	}

	if node.MetadataUnavailable || !HasTextureMetadata(node) {
		return 0
	}

	dims := EffectiveDimensions(node.Dimensions, node.MaxSizeSetting)

	return int64(math.Round(float64(dims.Width) * float64(dims.Height) * p.BytesPerPixel(node.PixelFormat)))
}
