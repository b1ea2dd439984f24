package hclscript_test

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/scenegridgo/internal/ctxlog"
	"github.com/vk/scenegridgo/internal/datapath"
	"github.com/vk/scenegridgo/internal/hclscript"
	"github.com/vk/scenegridgo/internal/importer"
	"github.com/vk/scenegridgo/internal/scene"
	"github.com/vk/scenegridgo/internal/testutil"
)

type fixture struct {
	root    string
	dirs    *datapath.Directories
	imp     *importer.Importer
	builder *scene.Builder
}

func newFixture(t *testing.T, files map[string]string) *fixture {
	t.Helper()

	dirs := datapath.NewDirectories()
	return &fixture{
		root:    testutil.WriteFiles(t, files),
		dirs:    dirs,
		imp:     importer.New(hclscript.New(dirs), dirs, importer.WithActiveBuilderHook(func(*scene.Builder) {})),
		builder: scene.NewBuilder(scene.DefaultSettings()),
	}
}

func (f *fixture) path(name string) string {
	return filepath.Join(f.root, filepath.FromSlash(name))
}

func (f *fixture) run(t *testing.T, name string, bindings *importer.Bindings) (*importer.Session, error) {
	t.Helper()

	sess := f.imp.NewSession()
	ctx := importer.WithSession(context.Background(), sess)
	return sess, f.imp.ImportScene(ctx, f.path(name), f.builder, bindings)
}

func TestEngine_BuildsSceneAcrossImports(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene": `
material "stone" {
  base_color = [0.5, 0.5, 0.5]
  roughness  = 0.9
}

import "props/chair.scene" {
  bindings = { paint = "red" }
}

node "floor" {
  material    = "stone"
  translation = [0, -1, 0]
}
`,
		"props/chair.scene": `
node "props.chair[0]" {
  mesh     = "models/chair.obj"
  material = format("%s_paint", paint)
  scale    = 2
}
`,
		"props/models/chair.obj": "o chair\n",
	})

	// --- Act ---
	sess, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.NoError(t, err)
	assert.True(t, sess.Empty())
	assert.Empty(t, f.dirs.List(), "script directories must not outlive the import")

	chair, ok := f.builder.Node("props.chair[0]")
	require.True(t, ok)
	assert.Equal(t, f.path("props/models/chair.obj"), chair.Mesh)
	assert.Equal(t, "red_paint", chair.Material)
	assert.Equal(t, 2.0, chair.Scale)
	assert.Equal(t, f.path("props/chair.scene"), chair.Source)

	floor, ok := f.builder.Node("floor")
	require.True(t, ok)
	assert.Equal(t, "stone", floor.Material)
	assert.Equal(t, [3]float64{0, -1, 0}, floor.Translation)

	mats := f.builder.Materials()
	require.Len(t, mats, 1)
	assert.Equal(t, [3]float64{0.5, 0.5, 0.5}, mats[0].BaseColor)
	assert.Equal(t, 0.9, mats[0].Roughness)
}

func TestEngine_RelativeImportsPreferNearestScript(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene": `
import "lib/b.scene" {}
import "common.scene" {}
`,
		"lib/b.scene":      `import "common.scene" {}`,
		"lib/common.scene": `node "lib_common" {}`,
		"common.scene":     `node "top_common" {}`,
	})

	// --- Act ---
	_, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.NoError(t, err)
	_, ok := f.builder.Node("lib_common")
	assert.True(t, ok, "nested script must resolve against its own directory first")
	_, ok = f.builder.Node("top_common")
	assert.True(t, ok, "parent script must resolve against its own directory after the nested import")
}

func TestEngine_CycleIsRejectedAndUnwound(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene":     `import "sub/b.scene" {}`,
		"sub/b.scene": `import "../a.scene" {}`,
	})

	// --- Act ---
	sess, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.Error(t, err)
	assert.ErrorIs(t, err, importer.ErrRecursiveImport)
	assert.Contains(t, err.Error(), "a.scene")
	assert.True(t, sess.Empty())
	assert.Empty(t, f.dirs.List())
}

func TestEngine_SettingsAreScopedToTheImport(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene": `
import "child.scene" {}
node "after" {
  translation = [1, 0, 0]
}
`,
		"child.scene": `
settings {
  unit_scale       = 0.01
  default_material = "clay"
  flags            = { lod = true }
}
node "inside" {
  translation = [100, 0, 0]
}
`,
	})

	// --- Act ---
	_, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.NoError(t, err)

	inside, ok := f.builder.Node("inside")
	require.True(t, ok)
	assert.InDelta(t, 0.01, inside.Scale, 1e-9)
	assert.InDelta(t, 1.0, inside.Translation[0], 1e-9)
	assert.Equal(t, "clay", inside.Material)

	after, ok := f.builder.Node("after")
	require.True(t, ok)
	assert.Equal(t, 1.0, after.Scale)
	assert.Equal(t, "default", after.Material)
	assert.Equal(t, scene.DefaultSettings(), f.builder.Settings())
}

func TestEngine_BuilderStateIsVisibleToScripts(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene": `
settings {
  default_material = upper(quality)
}
node "first" {}
node "second" {
  material = "${scene_builder.settings.default_material}_${scene_builder.node_count}"
}
`,
	})
	bindings := importer.NewBindings()
	bindings.Set("quality", "high")

	// --- Act ---
	_, err := f.run(t, "a.scene", bindings)

	// --- Assert ---
	require.NoError(t, err)
	second, ok := f.builder.Node("second")
	require.True(t, ok)
	assert.Equal(t, "HIGH_1", second.Material)
}

func TestEngine_DataPathFunction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene":        `node "box" { mesh = data_path("models/box.obj") }`,
		"models/box.obj": "o box\n",
	})

	// --- Act ---
	_, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.NoError(t, err)
	box, ok := f.builder.Node("box")
	require.True(t, ok)
	assert.Equal(t, f.path("models/box.obj"), box.Mesh)
}

func TestEngine_PreflightRejectsBeforeExecution(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		script  string
		wantErr string
	}{
		{
			name:    "unknown function",
			script:  "node \"a\" {}\nnode \"b\" { material = shout(\"x\") }",
			wantErr: "Call to unknown function",
		},
		{
			name:    "unknown variable",
			script:  "node \"a\" {}\nnode \"b\" { material = palette.primary }",
			wantErr: "Unknown variable",
		},
		{
			name:    "unsupported block",
			script:  "node \"a\" {}\ncamera \"main\" {}",
			wantErr: "Unsupported block type",
		},
		{
			name:    "top-level attribute",
			script:  "unit_scale = 2\nnode \"a\" {}",
			wantErr: "Unexpected top-level attribute",
		},
		{
			name:    "missing label",
			script:  "node \"a\" {}\nmaterial {}",
			wantErr: "Wrong number of block labels",
		},
		{
			name:    "syntax error",
			script:  "node \"a\" {",
			wantErr: "a.scene",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			f := newFixture(t, map[string]string{"a.scene": tc.script})

			// --- Act ---
			sess, err := f.run(t, "a.scene", nil)

			// --- Assert ---
			require.Error(t, err)
			assert.ErrorIs(t, err, importer.ErrScriptExecution)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.Zero(t, f.builder.NodeCount(), "no block may run when the script is rejected")
			assert.True(t, sess.Empty())
		})
	}
}

func TestEngine_BlockErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:    "missing import",
			files:   map[string]string{"a.scene": `import "nowhere.scene" {}`},
			wantErr: datapath.ErrNotFound.Error(),
		},
		{
			name:    "missing mesh",
			files:   map[string]string{"a.scene": `node "a" { mesh = "missing.obj" }`},
			wantErr: "mesh",
		},
		{
			name:    "bad vector",
			files:   map[string]string{"a.scene": `node "a" { translation = [1, 2] }`},
			wantErr: "translation must have 3 elements",
		},
		{
			name:    "bad address",
			files:   map[string]string{"a.scene": `node "a..b" {}`},
			wantErr: "empty segment",
		},
		{
			name:    "invalid settings",
			files:   map[string]string{"a.scene": `settings { up_axis = "w" }`},
			wantErr: "up_axis",
		},
		{
			name:    "duplicate node",
			files:   map[string]string{"a.scene": "node \"a\" {}\nnode \"a\" {}"},
			wantErr: "already defined",
		},
		{
			name:    "bindings not an object",
			files:   map[string]string{"a.scene": `import "b.scene" { bindings = "x" }`, "b.scene": ""},
			wantErr: "bindings must be an object",
		},
		{
			name:    "empty binding name",
			files:   map[string]string{"a.scene": `import "b.scene" { bindings = { "" = "x" } }`, "b.scene": ""},
			wantErr: "bindings: name must not be empty",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			f := newFixture(t, tc.files)

			// --- Act ---
			sess, err := f.run(t, "a.scene", nil)

			// --- Assert ---
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
			assert.True(t, sess.Empty())
		})
	}
}

func TestEngine_PrintBlockLogs(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	var buf bytes.Buffer
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))
	engine := hclscript.New(datapath.NewDirectories())
	bindings := importer.NewBindings()
	bindings.Set(importer.BuilderBinding, scene.NewBuilder(scene.DefaultSettings()))

	// --- Act ---
	err := engine.Execute(ctx, nil, importer.Script{
		Path: "/virtual/a.scene",
		Source: []byte(`
node "a" {}
print {
  message = "Built ${scene_builder.node_count} node(s)."
  values  = { axis = scene_builder.settings.up_axis }
}
`),
	}, bindings)

	// --- Assert ---
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="Built 1 node(s)."`)
	assert.Contains(t, buf.String(), "script=/virtual/a.scene axis=y")
}

// The following tests touch process-wide state and must not run in
// parallel.

func TestEngine_EnvFunction(t *testing.T) {
	// --- Arrange ---
	t.Setenv("SCENEGRID_TEST_MATERIAL", "brass")
	f := newFixture(t, map[string]string{
		"a.scene": `
node "set" { material = env("SCENEGRID_TEST_MATERIAL") }
node "fallback" { material = env("SCENEGRID_TEST_UNSET", "tin") }
`,
	})

	// --- Act ---
	_, err := f.run(t, "a.scene", nil)

	// --- Assert ---
	require.NoError(t, err)
	set, _ := f.builder.Node("set")
	assert.Equal(t, "brass", set.Material)
	fallback, _ := f.builder.Node("fallback")
	assert.Equal(t, "tin", fallback.Material)
}

func TestEngine_FallsBackToActiveBuilder(t *testing.T) {
	// --- Arrange ---
	dirs := datapath.NewDirectories()
	engine := hclscript.New(dirs)
	active := scene.NewBuilder(scene.DefaultSettings())
	scene.SetActive(active)
	t.Cleanup(func() { scene.SetActive(nil) })

	// --- Act ---
	err := engine.Execute(context.Background(), nil, importer.Script{
		Path:   "/virtual/a.scene",
		Source: []byte(`node "legacy" {}`),
	}, importer.NewBindings())

	// --- Assert ---
	require.NoError(t, err)
	_, ok := active.Node("legacy")
	assert.True(t, ok)
}

func TestEngine_NoBuilder(t *testing.T) {
	// --- Arrange ---
	engine := hclscript.New(datapath.NewDirectories())
	scene.SetActive(nil)

	// --- Act ---
	err := engine.Execute(context.Background(), nil, importer.Script{
		Path:   "/virtual/a.scene",
		Source: []byte(`node "orphan" {}`),
	}, nil)

	// --- Assert ---
	require.ErrorIs(t, err, hclscript.ErrNoBuilder)
}

func TestEngine_EmptyBindingNameIsAnExecutionError(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	f := newFixture(t, map[string]string{
		"a.scene": `import "b.scene" { bindings = { "" = "x" } }`,
		"b.scene": `node "b" {}`,
	})

	// --- Act ---
	var (
		sess *importer.Session
		err  error
	)
	require.NotPanics(t, func() { sess, err = f.run(t, "a.scene", nil) })

	// --- Assert ---
	require.ErrorIs(t, err, importer.ErrScriptExecution)
	assert.Contains(t, err.Error(), "name must not be empty")
	assert.Zero(t, f.builder.NodeCount())
	assert.True(t, sess.Empty())
}

func TestEngine_PreludeRunsInEveryScope(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	root := testutil.WriteFiles(t, map[string]string{
		"a.scene": "import \"b.scene\" {}\nnode \"a\" {}",
		"b.scene": `node "b" {}`,
	})
	dirs := datapath.NewDirectories()
	prelude := []byte(`
settings { default_material = "stone" }
print { message = "prelude" }
`)
	imp := importer.New(hclscript.New(dirs), dirs,
		importer.WithActiveBuilderHook(func(*scene.Builder) {}),
		importer.WithPrelude(prelude),
	)
	builder := scene.NewBuilder(scene.DefaultSettings())

	// --- Act ---
	err := imp.ImportScene(context.Background(), filepath.Join(root, "a.scene"), builder, nil)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, builder.Nodes(), 2)
	for _, n := range builder.Nodes() {
		assert.Equal(t, "stone", n.Material, "node %s", n.Address.String())
	}
	assert.Equal(t, "default", builder.Settings().DefaultMaterial)
}

func TestEngine_PreludeRejectsPopulatingBlocks(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		prelude string
	}{
		{name: "node", prelude: `node "shared" {}`},
		{name: "material", prelude: `material "shared" {}`},
		{name: "import", prelude: `import "b.scene" {}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			root := testutil.WriteFiles(t, map[string]string{
				"a.scene": `node "a" {}`,
				"b.scene": "",
			})
			dirs := datapath.NewDirectories()
			imp := importer.New(hclscript.New(dirs), dirs,
				importer.WithActiveBuilderHook(func(*scene.Builder) {}),
				importer.WithPrelude([]byte(tc.prelude)),
			)
			builder := scene.NewBuilder(scene.DefaultSettings())

			// --- Act ---
			err := imp.ImportScene(context.Background(), filepath.Join(root, "a.scene"), builder, nil)

			// --- Assert ---
			require.ErrorIs(t, err, importer.ErrScriptExecution)
			assert.Contains(t, err.Error(), "Block not allowed in prelude")
			assert.Zero(t, builder.NodeCount())
			assert.Zero(t, builder.MaterialCount())
		})
	}
}
