package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newRepo creates a temp directory marked as a repository root, changes
// into it for the duration of the test and returns its path.
func newRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(root, ".git"), 0o755))
	t.Chdir(root)
	return root
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// samePath compares paths after resolving symlinks (macOS /var -> /private/var).
func samePath(t *testing.T, want, got string) {
	t.Helper()
	w, _ := filepath.EvalSymlinks(want)
	g, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, w, g)
}

func TestFindConfigFile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "schema: test.yaml")

	got, err := findConfigFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, got)

	_, err = findConfigFile("/nonexistent/path/config.yaml")
	assert.ErrorContains(t, err, "config file not found")
}

func TestFindConfigFile_Discovery(t *testing.T) {
	t.Run("walks up from a nested directory", func(t *testing.T) {
		root := newRepo(t)
		configPath := filepath.Join(root, "minazuki.yaml")
		writeFile(t, configPath, "schema: test.yaml")

		nested := filepath.Join(root, "deep", "nested")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		t.Chdir(nested)

		got, err := findConfigFile("")
		require.NoError(t, err)
		samePath(t, configPath, got)
	})

	t.Run("prefers .yaml over .yml", func(t *testing.T) {
		root := newRepo(t)
		yamlPath := filepath.Join(root, "minazuki.yaml")
		writeFile(t, yamlPath, "schema: a.yaml")
		writeFile(t, filepath.Join(root, "minazuki.yml"), "schema: b.yaml")

		got, err := findConfigFile("")
		require.NoError(t, err)
		samePath(t, yamlPath, got)
	})

	t.Run("finds .yml", func(t *testing.T) {
		root := newRepo(t)
		ymlPath := filepath.Join(root, "minazuki.yml")
		writeFile(t, ymlPath, "schema: b.yaml")

		got, err := findConfigFile("")
		require.NoError(t, err)
		samePath(t, ymlPath, got)
	})

	t.Run("stops at the repository root", func(t *testing.T) {
		outer := t.TempDir()
		writeFile(t, filepath.Join(outer, "minazuki.yaml"), "schema: above.yaml")
		project := filepath.Join(outer, "project")
		require.NoError(t, os.MkdirAll(filepath.Join(project, ".git"), 0o755))
		t.Chdir(project)

		got, err := findConfigFile("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("no config", func(t *testing.T) {
		newRepo(t)
		got, err := findConfigFile("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoadConfig_Defaults(t *testing.T) {
	newRepo(t)

	cfg, configPath, err := LoadConfig("")
	require.NoError(t, err)
	assert.Empty(t, configPath)

	assert.Equal(t, "schema.yaml", cfg.Schema)
	assert.Equal(t, "go", cfg.Generate.Runtime)
	assert.Equal(t, "templates", cfg.Generate.Templates)
	assert.Equal(t, "models", cfg.Generate.Package)
	assert.Equal(t, "20342034", cfg.Generate.IDPrefix)
	assert.Zero(t, cfg.Generate.Workers)
	assert.False(t, cfg.Generate.Watch)
	assert.False(t, cfg.Doctor.Verbose)
}

func TestLoadConfig_FromFile(t *testing.T) {
	root := newRepo(t)
	configPath := filepath.Join(root, "minazuki.yaml")
	writeFile(t, configPath, `
schema: catalogue/schema.yaml
generate:
  runtime: template
  templates: generators
  output: out
  workers: 4
  irregular:
    remix: remixen
doctor:
  verbose: true
`)

	cfg, found, err := LoadConfig("")
	require.NoError(t, err)
	samePath(t, configPath, found)

	assert.Equal(t, "catalogue/schema.yaml", cfg.Schema)
	assert.Equal(t, "template", cfg.Generate.Runtime)
	assert.Equal(t, "generators", cfg.Generate.Templates)
	assert.Equal(t, "out", cfg.Generate.Output)
	assert.Equal(t, 4, cfg.Generate.Workers)
	assert.Equal(t, map[string]string{"remix": "remixen"}, cfg.Generate.Irregular)
	assert.True(t, cfg.Doctor.Verbose)

	// Unset values keep their defaults.
	assert.Equal(t, "models", cfg.Generate.Package)
	assert.Equal(t, "20342034", cfg.Generate.IDPrefix)
}

func TestLoadConfig_Environment(t *testing.T) {
	root := newRepo(t)
	writeFile(t, filepath.Join(root, "minazuki.yaml"), "schema: file.yaml")

	t.Setenv("MINAZUKI_SCHEMA", "env.yaml")
	t.Setenv("MINAZUKI_GENERATE_RUNTIME", "template")
	t.Setenv("MINAZUKI_GENERATE_WORKERS", "3")

	cfg, _, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "env.yaml", cfg.Schema)
	assert.Equal(t, "template", cfg.Generate.Runtime)
	assert.Equal(t, 3, cfg.Generate.Workers)
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	root := newRepo(t)
	writeFile(t, filepath.Join(root, "minazuki.yaml"), "schema: [unterminated")

	_, _, err := LoadConfig("")
	assert.ErrorContains(t, err, "reading config file")
}

func TestResolvedSchema(t *testing.T) {
	cfg := &Config{
		Schema:   "top-level.yaml",
		Generate: GenerateConfig{Schema: "generate-specific.yaml"},
	}
	assert.Equal(t, "generate-specific.yaml", cfg.ResolvedSchema())

	cfg.Generate.Schema = ""
	assert.Equal(t, "top-level.yaml", cfg.ResolvedSchema())
}
