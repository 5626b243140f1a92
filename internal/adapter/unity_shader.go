package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	builtinExtraGUID    = "0000000000000000f000000000000000"
	builtinDefaultGUID  = "0000000000000000e000000000000000"
	shaderAssetFileID   = 4800000
	shaderAssetRefType  = 3
	builtinShaderRefTyp = 0
)

var shaderRefPattern = regexp.MustCompile(
	`m_Shader:\s*\{fileID:\s*(-?\d+)(?:,\s*guid:\s*([0-9a-fA-F]{32}),\s*type:\s*(\d+))?\}`,
)

// builtinShaders names the shaders serialized with the built-in resources guid.
var builtinShaders = map[int64]string{
	45: "Standard (Specular setup)",
	46: "Standard",
}

func isBuiltinGUID(guid string) bool {
	return guid == builtinExtraGUID || guid == builtinDefaultGUID
}

func parseShaderRef(content []byte) (m.ShaderRef, bool) {
	match := shaderRefPattern.FindSubmatch(content)
	if match == nil {
		return m.ShaderRef{}, false
	}

	fileID, err := strconv.ParseInt(string(match[1]), 10, 64)
	if err != nil || fileID == 0 {
		return m.ShaderRef{}, false
	}

	ref := m.ShaderRef{FileID: fileID, GUID: strings.ToLower(string(match[2]))}
	if len(match[3]) > 0 {
		ref.Type, _ = strconv.Atoi(string(match[3]))
	}

	return ref, true
}

// shaderName resolves a serialized reference to a readable shader identifier.
func (idx *guidIndex) shaderName(ref m.ShaderRef) string {
	if isBuiltinGUID(ref.GUID) {
		if name, ok := builtinShaders[ref.FileID]; ok {
			return name
		}

		return "Builtin/" + strconv.FormatInt(ref.FileID, 10)
	}

	if name, ok := idx.shaderNames[ref.GUID]; ok {
		return name
	}

	return "guid:" + ref.GUID
}

// ResolveShader finds a shader by name among project shaders and built-in shaders.
func (p *UnityProject) ResolveShader(ctx context.Context, name string) (m.ShaderRef, error) {
	index, err := p.ensureIndex(ctx)
	if err != nil {
		return m.ShaderRef{}, err
	}

	if guid, ok := index.shaderGUIDs[name]; ok {
		return m.ShaderRef{Name: name, FileID: shaderAssetFileID, GUID: guid, Type: shaderAssetRefType}, nil
	}

	for fileID, builtin := range builtinShaders {
		if builtin == name {
			return m.ShaderRef{Name: name, FileID: fileID, GUID: builtinExtraGUID, Type: builtinShaderRefTyp}, nil
		}
	}

	return m.ShaderRef{}, fmt.Errorf("%q: %w", name, ErrShaderNotFound)
}

// PlanShader computes the material rewrite that points it at shader.
func (p *UnityProject) PlanShader(ctx context.Context, resource m.Path, shader m.ShaderRef) (m.FileEdit, error) {
	before, err := p.fs.ReadFile(ctx, p.fsPath(resource))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m.FileEdit{}, fmt.Errorf("%s: %w", resource, ErrResourceMissing)
		}

		return m.FileEdit{}, fmt.Errorf("read %s: %w", resource, err)
	}

	loc := shaderRefPattern.FindIndex(before)
	if loc == nil {
		return m.FileEdit{}, fmt.Errorf("%s has no shader reference", resource)
	}

	replacement := fmt.Sprintf("m_Shader: {fileID: %d, guid: %s, type: %d}", shader.FileID, shader.GUID, shader.Type)

	after := make([]byte, 0, len(before)+len(replacement))
	after = append(after, before[:loc[0]]...)
	after = append(after, replacement...)
	after = append(after, before[loc[1]:]...)

	return m.FileEdit{Path: resource, File: resource, Before: before, After: after}, nil
}
