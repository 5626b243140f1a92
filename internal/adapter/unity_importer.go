package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	formatAutomatic      = -1
	defaultMaxSize       = 2048
	uncompressedSetting  = 0
	automaticFormatLabel = "Automatic"
)

var maxSizeLinePattern = regexp.MustCompile(`(?m)^(\s*maxTextureSize:\s*)\d+`)

// importerFormats maps serialized TextureImporterFormat values to format names.
var importerFormats = map[int]m.PixelFormat{
	1:  "Alpha8",
	2:  "ARGB16",
	3:  "RGB24",
	4:  "RGBA32",
	5:  "ARGB32",
	7:  "RGB16",
	10: "DXT1",
	12: "DXT5",
	13: "RGBA16",
	24: "BC6H",
	25: "BC7",
	26: "BC4",
	27: "BC5",
	28: "DXT1Crunched",
	29: "DXT5Crunched",
	32: "PVRTC_RGB4",
	33: "PVRTC_RGBA4",
	34: "ETC_RGB4",
	45: "ETC2_RGB4",
	47: "ETC2_RGBA8",
	48: "ASTC_4x4",
	50: "ASTC_6x6",
	51: "ASTC_8x8",
}

type textureMetaFile struct {
	GUID            string                 `yaml:"guid"`
	TextureImporter *textureImporterConfig `yaml:"TextureImporter"`
}

type textureImporterConfig struct {
	MaxTextureSize     int                     `yaml:"maxTextureSize"`
	TextureFormat      *int                    `yaml:"textureFormat"`
	TextureCompression *int                    `yaml:"textureCompression"`
	PlatformSettings   []texturePlatformConfig `yaml:"platformSettings"`
}

type texturePlatformConfig struct {
	BuildTarget        string `yaml:"buildTarget"`
	MaxTextureSize     int    `yaml:"maxTextureSize"`
	TextureFormat      int    `yaml:"textureFormat"`
	TextureCompression int    `yaml:"textureCompression"`
	Overridden         int    `yaml:"overridden"`
}

// textureImporterSettings is the resolved view of a texture sidecar.
type textureImporterSettings struct {
	Format  m.PixelFormat
	MaxSize int
}

func (p *UnityProject) importerSettings(ctx context.Context, resource m.Path) (textureImporterSettings, error) {
	if cached, ok := p.importers.Get(resource); ok {
		return cached, nil
	}

	content, err := p.fs.ReadFile(ctx, p.fsPath(resource+metaExtension))
	if err != nil {
		return textureImporterSettings{}, fmt.Errorf("read sidecar: %w", err)
	}

	settings, err := parseImporterSettings(content, p.opts.Platform)
	if err != nil {
		return textureImporterSettings{}, err
	}

	p.importers.Add(resource, settings)

	return settings, nil
}

func parseImporterSettings(content []byte, platform string) (textureImporterSettings, error) {
	var meta textureMetaFile
	if err := yaml.Unmarshal(content, &meta); err != nil {
		return textureImporterSettings{}, fmt.Errorf("parse sidecar: %w", err)
	}

	importer := meta.TextureImporter
	if importer == nil {
		return textureImporterSettings{}, errors.New("sidecar has no texture importer")
	}

	settings := textureImporterSettings{MaxSize: importer.MaxTextureSize}

	format := formatAutomatic
	if importer.TextureFormat != nil {
		format = *importer.TextureFormat
	}

	compression := 1
	if importer.TextureCompression != nil {
		compression = *importer.TextureCompression
	}

	if selected, ok := selectPlatform(importer.PlatformSettings, platform); ok {
		if selected.MaxTextureSize > 0 {
			settings.MaxSize = selected.MaxTextureSize
		}

		format = selected.TextureFormat
		compression = selected.TextureCompression
	}

	if settings.MaxSize <= 0 {
		settings.MaxSize = defaultMaxSize
	}

	settings.Format = formatName(format, compression)

	return settings, nil
}

// selectPlatform prefers an overridden entry for platform, then the default entry.
func selectPlatform(platforms []texturePlatformConfig, platform string) (texturePlatformConfig, bool) {
	var fallback *texturePlatformConfig

	for i := range platforms {
		candidate := platforms[i]

		if candidate.BuildTarget == platform && (platform == defaultPlatform || candidate.Overridden == 1) {
			return candidate, true
		}

		if candidate.BuildTarget == defaultPlatform {
			fallback = &platforms[i]
		}
	}

	if fallback != nil {
		return *fallback, true
	}

	return texturePlatformConfig{}, false
}

func formatName(format, compression int) m.PixelFormat {
	if format == formatAutomatic {
		if compression == uncompressedSetting {
			return "RGBA32"
		}

		return automaticFormatLabel
	}

	if name, ok := importerFormats[format]; ok {
		return name
	}

	return m.PixelFormat("Format" + strconv.Itoa(format))
}

// PlanMaxSize computes the sidecar rewrite that sets every max size entry to maxSize.
func (p *UnityProject) PlanMaxSize(ctx context.Context, resource m.Path, maxSize int) (m.FileEdit, error) {
	sidecar := resource + metaExtension

	before, err := p.fs.ReadFile(ctx, p.fsPath(sidecar))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.FileEdit{}, fmt.Errorf("%s: %w", sidecar, ErrResourceMissing)
		}

		return m.FileEdit{}, fmt.Errorf("read %s: %w", sidecar, err)
	}

	if !maxSizeLinePattern.Match(before) {
		return m.FileEdit{}, fmt.Errorf("%s has no max texture size setting", sidecar)
	}

	after := maxSizeLinePattern.ReplaceAll(before, []byte("${1}"+strconv.Itoa(maxSize)))

	return m.FileEdit{Path: resource, File: sidecar, Before: before, After: after}, nil
}

// ApplyEdit writes a planned edit if the file still has the content it was planned on.
func (p *UnityProject) ApplyEdit(ctx context.Context, edit m.FileEdit) error {
	target := p.fsPath(edit.File)

	current, err := p.fs.ReadFile(ctx, target)
	if err != nil {
		return fmt.Errorf("read %s: %w", edit.File, err)
	}

	if !bytes.Equal(current, edit.Before) {
		return fmt.Errorf("%s: %w", edit.File, ErrEditConflict)
	}

	info, err := p.fs.FileInfo(ctx, target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", edit.File, err)
	}

	if err := p.fs.WriteFile(ctx, target, edit.After, info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", edit.File, err)
	}

	p.importers.Remove(edit.Path)

	return nil
}
