package adapter

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "assetmaid.dev/pkg/assetmaid/internal/model"
)

const (
	testProjectRoot = "/work/Demo"

	sceneGUID  = "a1000000000000000000000000000001"
	matGUID    = "b2000000000000000000000000000002"
	shaderGUID = "c3000000000000000000000000000003"
	texGUID    = "d4000000000000000000000000000004"
	oldGUID    = "e5000000000000000000000000000005"
)

func metaFor(guid string) string {
	return "fileFormatVersion: 2\nguid: " + guid + "\n"
}

func textureMeta(guid string) string {
	return `fileFormatVersion: 2
guid: ` + guid + `
TextureImporter:
  serializedVersion: 12
  maxTextureSize: 2048
  textureFormat: 1
  textureCompression: 1
  platformSettings:
  - serializedVersion: 3
    buildTarget: DefaultTexturePlatform
    maxTextureSize: 1024
    textureFormat: -1
    textureCompression: 0
    overridden: 0
  - serializedVersion: 3
    buildTarget: Standalone
    maxTextureSize: 512
    textureFormat: 12
    textureCompression: 1
    overridden: 1
`
}

func pngBytes(t *testing.T, width, height int) string {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))))

	return buf.String()
}

func demoProjectFiles(t *testing.T) map[string]string {
	t.Helper()

	return map[string]string{
		"Assets/Scenes/Main.unity": "%YAML 1.1\n--- !u!23 &1\nMeshRenderer:\n  m_Materials:\n  - {fileID: 2100000, guid: " +
			matGUID + ", type: 2}\n",
		"Assets/Scenes/Main.unity.meta": metaFor(sceneGUID),
		"Assets/Materials/Wall.mat": "%YAML 1.1\n--- !u!21 &2100000\nMaterial:\n  m_Name: Wall\n" +
			"  m_Shader: {fileID: 4800000, guid: " + shaderGUID + ", type: 3}\n" +
			"  m_SavedProperties:\n    m_TexEnvs:\n    - _MainTex:\n        m_Texture: {fileID: 2800000, guid: " +
			texGUID + ", type: 3}\n",
		"Assets/Materials/Wall.mat.meta":       metaFor(matGUID),
		"Assets/Shaders/Legacy.shader":         "Shader \"Legacy Shaders/Bumped Diffuse\" {\n}\n",
		"Assets/Shaders/Legacy.shader.meta":    metaFor(shaderGUID),
		"Assets/Textures/wall.png":             pngBytes(t, 64, 32),
		"Assets/Textures/wall.png.meta":        textureMeta(texGUID),
		"Assets/Unused/old.png":                pngBytes(t, 16, 16),
		"Assets/Unused/old.png.meta":           textureMeta(oldGUID),
		"Packages/com.demo/Runtime/readme.txt": "not part of the inventory",
	}
}

func newTestProject(t *testing.T, files map[string]string, opts UnityProjectOptions) (*UnityProject, *BillyProjectFSAdapter) {
	t.Helper()

	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, testProjectRoot+"/"+name, []byte(content), 0o644))
	}

	adapter := NewProjectFSAdapter(fs)

	opts.Root = testProjectRoot

	project, err := NewUnityProject(adapter, opts)
	require.NoError(t, err)

	return project, adapter
}

func TestNewUnityProject_RequiresRoot(t *testing.T) {
	_, err := NewUnityProject(NewProjectFSAdapter(memfs.New()), UnityProjectOptions{})
	require.Error(t, err)
}

func TestUnityProject_Inventory(t *testing.T) {
	ctx := context.Background()
	project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{Parallel: 4})

	assert.Equal(t, "Demo", project.ProjectName())
	assert.Equal(t, m.Path(testProjectRoot), project.ProjectRoot())

	resources, err := project.ListAllProjectResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []m.Path{
		"Assets/Materials/Wall.mat",
		"Assets/Scenes/Main.unity",
		"Assets/Shaders/Legacy.shader",
		"Assets/Textures/wall.png",
		"Assets/Unused/old.png",
	}, resources)

	roots, err := project.ListRootDocuments(ctx)
	require.NoError(t, err)
	assert.Equal(t, []m.Path{"Assets/Scenes/Main.unity"}, roots)
}

func TestUnityProject_ConfiguredRoots(t *testing.T) {
	project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{
		Roots: []m.Path{"Assets/Materials/Wall.mat"},
	})

	roots, err := project.ListRootDocuments(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []m.Path{"Assets/Materials/Wall.mat"}, roots)
}

func TestUnityProject_ResolveDependencies(t *testing.T) {
	ctx := context.Background()
	project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

	deps, err := project.ResolveDependencies(ctx, "Assets/Scenes/Main.unity")
	require.NoError(t, err)
	assert.Equal(t, []m.Path{"Assets/Materials/Wall.mat"}, deps)

	deps, err = project.ResolveDependencies(ctx, "Assets/Materials/Wall.mat")
	require.NoError(t, err)
	assert.Equal(t, []m.Path{"Assets/Shaders/Legacy.shader", "Assets/Textures/wall.png"}, deps)

	deps, err = project.ResolveDependencies(ctx, "Assets/Textures/wall.png")
	require.NoError(t, err)
	assert.Empty(t, deps, "a texture's own guid is not a dependency")

	_, err = project.ResolveDependencies(ctx, "Assets/Gone.prefab")
	require.ErrorIs(t, err, ErrResourceMissing)
}

func TestUnityProject_GetMetadata(t *testing.T) {
	ctx := context.Background()

	t.Run("texture uses the default platform", func(t *testing.T) {
		project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

		metadata, err := project.GetMetadata(ctx, "Assets/Textures/wall.png")
		require.NoError(t, err)
		assert.Equal(t, m.KindTexture, metadata.Kind)
		assert.Equal(t, m.Dimensions{Width: 64, Height: 32}, metadata.Dimensions)
		assert.Equal(t, 1024, metadata.MaxSizeSetting)
		assert.Equal(t, m.PixelFormat("RGBA32"), metadata.PixelFormat)
		assert.Positive(t, metadata.RawSizeBytes)
	})

	t.Run("texture uses an overridden platform", func(t *testing.T) {
		project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{Platform: "Standalone"})

		metadata, err := project.GetMetadata(ctx, "Assets/Textures/wall.png")
		require.NoError(t, err)
		assert.Equal(t, 512, metadata.MaxSizeSetting)
		assert.Equal(t, m.PixelFormat("DXT5"), metadata.PixelFormat)
	})

	t.Run("material resolves its shader name", func(t *testing.T) {
		project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

		metadata, err := project.GetMetadata(ctx, "Assets/Materials/Wall.mat")
		require.NoError(t, err)
		assert.Equal(t, m.KindMaterial, metadata.Kind)
		assert.Equal(t, "Legacy Shaders/Bumped Diffuse", metadata.ShaderID)
	})

	t.Run("other resources only carry their size", func(t *testing.T) {
		project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

		metadata, err := project.GetMetadata(ctx, "Assets/Shaders/Legacy.shader")
		require.NoError(t, err)
		assert.Equal(t, m.KindOther, metadata.Kind)
		assert.Equal(t, int64(len("Shader \"Legacy Shaders/Bumped Diffuse\" {\n}\n")), metadata.RawSizeBytes)
	})

	t.Run("texture without sidecar has no format", func(t *testing.T) {
		files := demoProjectFiles(t)
		delete(files, "Assets/Unused/old.png.meta")
		project, _ := newTestProject(t, files, UnityProjectOptions{})

		metadata, err := project.GetMetadata(ctx, "Assets/Unused/old.png")
		require.NoError(t, err)
		assert.Empty(t, metadata.PixelFormat)
		assert.Equal(t, m.Dimensions{Width: 16, Height: 16}, metadata.Dimensions)
	})

	t.Run("missing file", func(t *testing.T) {
		project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

		_, err := project.GetMetadata(ctx, "Assets/Textures/none.png")
		require.ErrorIs(t, err, ErrResourceMissing)
	})
}

func TestUnityProject_Refresh(t *testing.T) {
	ctx := context.Background()
	project, fs := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

	before, err := project.ListAllProjectResources(ctx)
	require.NoError(t, err)

	require.NoError(t, fs.WriteFile(ctx, testProjectRoot+"/Assets/Audio/hit.wav", []byte("RIFF"), 0o644))

	cached, err := project.ListAllProjectResources(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, cached)

	require.NoError(t, project.Refresh(ctx))

	after, err := project.ListAllProjectResources(ctx)
	require.NoError(t, err)
	assert.Contains(t, after, m.Path("Assets/Audio/hit.wav"))
}

func TestUnityProject_MaxSizeEdit(t *testing.T) {
	ctx := context.Background()
	project, fs := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

	_, err := project.GetMetadata(ctx, "Assets/Textures/wall.png")
	require.NoError(t, err)

	edit, err := project.PlanMaxSize(ctx, "Assets/Textures/wall.png", 256)
	require.NoError(t, err)
	assert.True(t, edit.Changed())
	assert.Equal(t, m.Path("Assets/Textures/wall.png.meta"), edit.File)
	assert.Equal(t, 3, strings.Count(string(edit.After), "maxTextureSize: 256"))

	require.NoError(t, project.ApplyEdit(ctx, edit))

	metadata, err := project.GetMetadata(ctx, "Assets/Textures/wall.png")
	require.NoError(t, err)
	assert.Equal(t, 256, metadata.MaxSizeSetting)

	content, err := fs.ReadFile(ctx, testProjectRoot+"/Assets/Textures/wall.png.meta")
	require.NoError(t, err)
	assert.Equal(t, edit.After, content)

	err = project.ApplyEdit(ctx, edit)
	require.ErrorIs(t, err, ErrEditConflict)

	_, err = project.PlanMaxSize(ctx, "Assets/Textures/none.png", 256)
	require.ErrorIs(t, err, ErrResourceMissing)
}

func TestUnityProject_ShaderEdit(t *testing.T) {
	ctx := context.Background()
	project, _ := newTestProject(t, demoProjectFiles(t), UnityProjectOptions{})

	ref, err := project.ResolveShader(ctx, "Legacy Shaders/Bumped Diffuse")
	require.NoError(t, err)
	assert.Equal(t, shaderGUID, ref.GUID)
	assert.Equal(t, int64(4800000), ref.FileID)

	standard, err := project.ResolveShader(ctx, "Standard")
	require.NoError(t, err)
	assert.Equal(t, int64(46), standard.FileID)
	assert.Equal(t, builtinExtraGUID, standard.GUID)

	_, err = project.ResolveShader(ctx, "Nope/Unlit")
	require.ErrorIs(t, err, ErrShaderNotFound)

	edit, err := project.PlanShader(ctx, "Assets/Materials/Wall.mat", standard)
	require.NoError(t, err)
	assert.Contains(t, string(edit.After), "m_Shader: {fileID: 46, guid: "+builtinExtraGUID+", type: 0}")
	assert.Contains(t, string(edit.After), texGUID, "texture references are untouched")

	require.NoError(t, project.ApplyEdit(ctx, edit))

	metadata, err := project.GetMetadata(ctx, "Assets/Materials/Wall.mat")
	require.NoError(t, err)
	assert.Equal(t, "Standard", metadata.ShaderID)
}

func TestParseShaderRef(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    m.ShaderRef
		ok      bool
	}{
		{"project shader", "m_Shader: {fileID: 4800000, guid: " + strings.ToUpper(shaderGUID) + ", type: 3}",
			m.ShaderRef{FileID: 4800000, GUID: shaderGUID, Type: 3}, true},
		{"builtin shader", "m_Shader: {fileID: 46, guid: " + builtinExtraGUID + ", type: 0}",
			m.ShaderRef{FileID: 46, GUID: builtinExtraGUID}, true},
		{"no shader", "m_Shader: {fileID: 0}", m.ShaderRef{}, false},
		{"not a material", "m_Name: Wall", m.ShaderRef{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseShaderRef([]byte(tt.content))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestShaderName(t *testing.T) {
	idx := &guidIndex{shaderNames: map[string]string{shaderGUID: "Custom/Toon"}}

	assert.Equal(t, "Standard", idx.shaderName(m.ShaderRef{FileID: 46, GUID: builtinExtraGUID}))
	assert.Equal(t, "Builtin/7", idx.shaderName(m.ShaderRef{FileID: 7, GUID: builtinDefaultGUID}))
	assert.Equal(t, "Custom/Toon", idx.shaderName(m.ShaderRef{FileID: 4800000, GUID: shaderGUID}))
	assert.Equal(t, "guid:"+oldGUID, idx.shaderName(m.ShaderRef{FileID: 4800000, GUID: oldGUID}))
}

func TestFormatName(t *testing.T) {
	assert.Equal(t, m.PixelFormat("RGBA32"), formatName(-1, 0))
	assert.Equal(t, m.PixelFormat("Automatic"), formatName(-1, 1))
	assert.Equal(t, m.PixelFormat("DXT1"), formatName(10, 1))
	assert.Equal(t, m.PixelFormat("Format99"), formatName(99, 1))
}

func TestReadImageHeaders(t *testing.T) {
	t.Run("tga", func(t *testing.T) {
		header := make([]byte, tgaHeaderSize)
		binary.LittleEndian.PutUint16(header[12:], 300)
		binary.LittleEndian.PutUint16(header[14:], 200)

		dims, err := readTGADimensions(bytes.NewReader(header))
		require.NoError(t, err)
		assert.Equal(t, m.Dimensions{Width: 300, Height: 200}, dims)
	})

	t.Run("dds", func(t *testing.T) {
		header := make([]byte, ddsHeaderSize)
		copy(header, ddsMagic)
		binary.LittleEndian.PutUint32(header[12:], 128)
		binary.LittleEndian.PutUint32(header[16:], 512)

		dims, err := readDDSDimensions(bytes.NewReader(header))
		require.NoError(t, err)
		assert.Equal(t, m.Dimensions{Width: 512, Height: 128}, dims)
	})

	t.Run("dds with bad magic", func(t *testing.T) {
		_, err := readDDSDimensions(bytes.NewReader(make([]byte, ddsHeaderSize)))
		require.ErrorIs(t, err, errUnknownImageHeader)
	})

	t.Run("truncated tga", func(t *testing.T) {
		_, err := readTGADimensions(bytes.NewReader([]byte{0, 1}))
		require.Error(t, err)
	})
}

// countingFS records how many bytes are read from each path.
type countingFS struct {
	*BillyProjectFSAdapter

	mu   sync.Mutex
	read map[m.Path]int
}

func (c *countingFS) add(path m.Path, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.read[path] += n
}

func (c *countingFS) Open(ctx context.Context, path m.Path) (io.ReadCloser, error) {
	file, err := c.BillyProjectFSAdapter.Open(ctx, path)
	if err != nil {
		return nil, err
	}

	return &countingReader{ReadCloser: file, fs: c, path: path}, nil
}

func (c *countingFS) ReadFile(ctx context.Context, path m.Path) ([]byte, error) {
	content, err := c.BillyProjectFSAdapter.ReadFile(ctx, path)
	c.add(path, len(content))

	return content, err
}

type countingReader struct {
	io.ReadCloser

	fs   *countingFS
	path m.Path
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.fs.add(r.path, n)

	return n, err
}

func TestUnityProject_ResolveDependenciesReadsOnlyHeaderOfBinaryAssets(t *testing.T) {
	ctx := context.Background()

	files := demoProjectFiles(t)
	files["Assets/Textures/big.png"] = "\x89PNG" + strings.Repeat("x", 1<<20)

	fs := memfs.New()
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, testProjectRoot+"/"+name, []byte(content), 0o644))
	}

	counting := &countingFS{BillyProjectFSAdapter: NewProjectFSAdapter(fs), read: make(map[m.Path]int)}

	project, err := NewUnityProject(counting, UnityProjectOptions{Root: testProjectRoot})
	require.NoError(t, err)

	deps, err := project.ResolveDependencies(ctx, "Assets/Textures/big.png")
	require.NoError(t, err)
	assert.Empty(t, deps)
	assert.LessOrEqual(t, counting.read[testProjectRoot+"/Assets/Textures/big.png"], len(yamlHeader))

	deps, err = project.ResolveDependencies(ctx, "Assets/Materials/Wall.mat")
	require.NoError(t, err)
	assert.Equal(t, []m.Path{"Assets/Shaders/Legacy.shader", "Assets/Textures/wall.png"}, deps)

	_, err = project.ResolveDependencies(ctx, "Assets/Textures/gone.png")
	require.ErrorIs(t, err, ErrResourceMissing)
}
