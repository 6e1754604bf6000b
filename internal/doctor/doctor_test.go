package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const healthySchema = `
entities:
  - name: artist
    fields:
      - {name: name, type: string}
    has_many: [song]
  - name: song
    fields:
      - {name: name, type: string}
      - {name: writer, type: artist}
    has_many: [artist]
    collections:
      - name: lyric
        fields: [{name: text, type: string}]
`

func writeSchema(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_HealthySchema(t *testing.T) {
	path := writeSchema(t, healthySchema)

	report, err := New(path, Options{Runtime: "go"}).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, report.HasErrors())
	assert.Equal(t, 0, report.Warnings)

	valid, ok := report.Check("valid")
	require.True(t, ok)
	assert.Equal(t, "Schema is valid (2 entities, 4 fields)", valid.Message)

	resolves, ok := report.Check("resolves")
	require.True(t, ok)
	assert.Equal(t, "Resolved 4 entities in 2 levels", resolves.Message)
	assert.Contains(t, resolves.Details, "level 0: artist, song")

	junctions, ok := report.Check("junctions")
	require.True(t, ok)
	assert.Equal(t, "1 junction entities synthesized", junctions.Message)
	assert.Equal(t, "artist_song (artist ↔ song)", junctions.Details)
}

func TestRun_MissingSchema(t *testing.T) {
	report, err := New(filepath.Join(t.TempDir(), "nope.yaml"), Options{}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, report.Checks, 1)
	assert.Equal(t, StatusFail, report.Checks[0].Status)
	assert.True(t, report.HasErrors())
}

func TestRun_InvalidSchema(t *testing.T) {
	path := writeSchema(t, `
entities:
  - name: song
    fields:
      - {name: _id, type: integer}
`)
	report, err := New(path, Options{}).Run(context.Background())
	require.NoError(t, err)

	valid, ok := report.Check("valid")
	require.True(t, ok)
	assert.Equal(t, StatusFail, valid.Status)
	_, ok = report.Check("resolves")
	assert.False(t, ok, "resolution is skipped after a parse failure")
}

func TestRun_Cycle(t *testing.T) {
	path := writeSchema(t, `
entities:
  - name: a
    extends: b
  - name: b
    extends: a
`)
	report, err := New(path, Options{}).Run(context.Background())
	require.NoError(t, err)

	resolves, ok := report.Check("resolves")
	require.True(t, ok)
	assert.Equal(t, StatusFail, resolves.Status)
	assert.Equal(t, "Break the cycle between the listed entities", resolves.FixHint)
}

func TestRun_Warnings(t *testing.T) {
	path := writeSchema(t, `
entities:
  - name: sheep
    fields:
      - {name: owner, type: farmer}
`)
	report, err := New(path, Options{}).Run(context.Background())
	require.NoError(t, err)

	refs, ok := report.Check("references")
	require.True(t, ok)
	assert.Equal(t, StatusWarn, refs.Status)
	assert.Equal(t, "sheep.owner → farmer", refs.Details)

	plurals, ok := report.Check("plurals")
	require.True(t, ok)
	assert.Equal(t, StatusWarn, plurals.Status)
	assert.Equal(t, "sheep", plurals.Details)

	assert.False(t, report.HasErrors())
	assert.Equal(t, 2, report.Warnings)
}

func TestRun_Runtime(t *testing.T) {
	path := writeSchema(t, healthySchema)

	t.Run("unknown runtime", func(t *testing.T) {
		report, err := New(path, Options{Runtime: "cobol"}).Run(context.Background())
		require.NoError(t, err)

		check, ok := report.Check("registered")
		require.True(t, ok)
		assert.Equal(t, StatusFail, check.Status)
		assert.Contains(t, check.FixHint, "go")
	})

	t.Run("missing template dir", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "templates")
		report, err := New(path, Options{Runtime: "template", TemplateDir: dir}).Run(context.Background())
		require.NoError(t, err)

		check, ok := report.Check("template_dir")
		require.True(t, ok)
		assert.Equal(t, StatusFail, check.Status)
	})

	t.Run("empty template dir", func(t *testing.T) {
		dir := t.TempDir()
		report, err := New(path, Options{Runtime: "template", TemplateDir: dir}).Run(context.Background())
		require.NoError(t, err)

		check, ok := report.Check("template_dir")
		require.True(t, ok)
		assert.Equal(t, StatusWarn, check.Status)
	})

	t.Run("templates found", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "-resourcename-.go.tmpl"), []byte("x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("x"), 0o644))

		report, err := New(path, Options{Runtime: "template", TemplateDir: dir}).Run(context.Background())
		require.NoError(t, err)

		check, ok := report.Check("template_dir")
		require.True(t, ok)
		assert.Equal(t, StatusPass, check.Status)
		assert.Equal(t, "models/-resourcename-.go.tmpl", check.Details)
	})
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(writeSchema(t, healthySchema), Options{}).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Print(t *testing.T) {
	r := &Report{}
	r.AddCheck(CheckResult{Category: "Schema File", Name: "exists", Status: StatusPass, Message: "ok"})
	r.AddCheck(CheckResult{Category: "Naming", Name: "plurals", Status: StatusWarn, Message: "same",
		Details: "sheep\nfish", FixHint: "add irregulars"})

	var quiet, verbose bytes.Buffer
	r.Print(&quiet, false)
	r.Print(&verbose, true)

	assert.Contains(t, quiet.String(), "\nSchema File\n  ✓ ok\n")
	assert.Contains(t, quiet.String(), "      Fix: add irregulars\n")
	assert.NotContains(t, quiet.String(), "sheep")
	assert.Contains(t, verbose.String(), "      sheep\n      fish\n")
	assert.Contains(t, quiet.String(), "Summary: 1 passed, 1 warnings, 0 errors")
}
