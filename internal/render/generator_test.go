package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/minazuki/internal/resolve"
)

type fakeGenerator struct {
	got *Config
}

func (f *fakeGenerator) Name() string { return "fake" }

func (f *fakeGenerator) DefaultConfig() *Config {
	return &Config{Package: "fakepkg", IDPrefix: "99", Options: map[string]any{"style": "plain"}}
}

func (f *fakeGenerator) Generate(_ context.Context, m *resolve.Model, cfg *Config) (map[string][]byte, error) {
	f.got = cfg
	return map[string][]byte{"out.txt": []byte(cfg.Package)}, nil
}

func TestRegistry(t *testing.T) {
	fake := &fakeGenerator{}
	Register(fake)
	t.Cleanup(func() { delete(registry, "fake") })

	assert.True(t, Registered("fake"))
	assert.Same(t, fake, Get("fake"))
	assert.Contains(t, List(), "fake")
	assert.Nil(t, Get("nope"))

	assert.Panics(t, func() { Register(&fakeGenerator{}) })
}

func TestGenerate_MergesDefaults(t *testing.T) {
	fake := &fakeGenerator{}
	Register(fake)
	t.Cleanup(func() { delete(registry, "fake") })

	files, err := Generate(context.Background(), "fake", &resolve.Model{}, &Config{IDPrefix: "42", Options: map[string]any{"extra": 1}})
	require.NoError(t, err)
	assert.Equal(t, "fakepkg", string(files["out.txt"]))
	assert.Equal(t, "42", fake.got.IDPrefix)
	assert.Equal(t, map[string]any{"extra": 1, "style": "plain"}, fake.got.Options)

	_, err = Generate(context.Background(), "fake", &resolve.Model{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "99", fake.got.IDPrefix)

	_, err = Generate(context.Background(), "nope", &resolve.Model{}, nil)
	assert.ErrorContains(t, err, `unknown runtime "nope"`)
}

func TestWriteFiles(t *testing.T) {
	dir := t.TempDir()
	written, err := WriteFiles(dir, map[string][]byte{
		"b/c.txt": []byte("c"),
		"a.txt":   []byte("a"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b", "c.txt")}, written)

	got, err := os.ReadFile(filepath.Join(dir, "b", "c.txt"))
	require.NoError(t, err)
	assert.Equal(t, "c", string(got))

	_, err = WriteFiles(dir, map[string][]byte{"../escape.txt": nil})
	assert.ErrorContains(t, err, "refusing to write")
}
