package domain

import (
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

// ShaderPolicy lists the shader identifier substrings that flag a material.
type ShaderPolicy struct {
	// ManualFixFamilies may only be reported, never rewritten automatically.
	ManualFixFamilies []string
	// DeprecatedKeywords mark legacy shaders that can be replaced.
	DeprecatedKeywords []string
}

// DefaultShaderPolicy returns the built-in shader policy.
func DefaultShaderPolicy() ShaderPolicy {
	return ShaderPolicy{
		ManualFixFamilies:  []string{"Poiyomi"},
		DeprecatedKeywords: []string{"Legacy", "Bumped", "Reflective", "Self-Illumin"},
	}
}

// Classifier derives classification flags from a node.
type Classifier struct {
	formats FormatPolicy
	shaders ShaderPolicy
}

// NewClassifier creates a classifier from the two policy tables.
func NewClassifier(formats FormatPolicy, shaders ShaderPolicy) *Classifier {
	return &Classifier{formats: formats, shaders: shaders}
}

// Classify flags uncompressed textures and materials using deprecated or manual-fix-only
// shaders. The manual-fix-only check takes precedence, so a material never carries both
// shader flags.
func (c *Classifier) Classify(node m.ResourceNode) m.ClassificationFlags {
	var flags m.ClassificationFlags

	switch node.Kind {
	case m.KindTexture:
		flags.UnoptimizedFormat = c.formats.IsUncompressed32(node.PixelFormat)
	case m.KindMaterial:
		switch {
		case containsAnyFold(node.ShaderID, c.shaders.ManualFixFamilies):
			flags.ManualFixOnlyShader = true
		case containsAnyFold(node.ShaderID, c.shaders.DeprecatedKeywords):
			flags.DeprecatedShader = true
		}
	case m.KindOther:
	}

	return flags
}

func containsAnyFold(value string, needles []string) bool {
	if value == "" {
		return false
	}

	lower := strings.ToLower(value)

	for _, needle := range needles {
		if needle != "" && strings.Contains(lower, strings.ToLower(needle)) {
			return true
		}
	}

	return false
}
