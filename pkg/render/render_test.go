package render_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/minazuki/pkg/compiler"
	"github.com/pthm/minazuki/pkg/render"
	"github.com/pthm/minazuki/pkg/schema"
)

func TestListRuntimes(t *testing.T) {
	assert.Equal(t, []string{"go", "sql", "template"}, render.ListRuntimes())
	assert.True(t, render.Registered("go"))
	assert.False(t, render.Registered("ruby"))
}

func TestGenerate_Go(t *testing.T) {
	m, err := compiler.Resolve(schema.MustNew(
		schema.NewEntity("name").HasMany("thing").MustBuild(),
		schema.NewEntity("thing").HasMany("name").MustBuild(),
	))
	require.NoError(t, err)

	files, err := render.Generate(context.Background(), "go", m, nil)
	require.NoError(t, err)
	assert.Contains(t, files, "name_thing.go")
	assert.Contains(t, string(files["name.go"]), "package models")
}

func TestGenerate_SQL(t *testing.T) {
	m, err := compiler.Resolve(schema.MustNew(
		schema.NewEntity("name").HasMany("thing").MustBuild(),
		schema.NewEntity("thing").HasMany("name").MustBuild(),
	))
	require.NoError(t, err)

	files, err := render.Generate(context.Background(), "sql", m, nil)
	require.NoError(t, err)
	assert.Contains(t, string(files["schema.sql"]), "CREATE TABLE IF NOT EXISTS name_things (")
	assert.Contains(t, string(files["drop.sql"]), "DROP TABLE IF EXISTS names CASCADE;")
}
