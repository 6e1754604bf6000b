package sqlgen_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/minazuki/internal/render"
	"github.com/pthm/minazuki/internal/render/sqlgen"
	"github.com/pthm/minazuki/internal/resolve"
	"github.com/pthm/minazuki/pkg/schema"
)

func testModel(t *testing.T) *resolve.Model {
	t.Helper()
	m, err := resolve.Resolve(schema.MustNew(
		schema.NewEntity("artist").
			FieldWithOptions("name", schema.TypeString, map[string]any{"required": true}).
			HasMany("song").
			MustBuild(),
		schema.NewEntity("song").
			FieldWithOptions("name", schema.TypeString, map[string]any{"index": true}).
			HasMany("artist").
			Collection(schema.NewEntity("lyric").Field("text", schema.TypeString)).
			MustBuild(),
		schema.NewEntity("tag").
			FieldWithOptions("label", schema.TypeString, map[string]any{"unique": true}).
			HasMany("tag").
			MustBuild(),
		schema.NewEntity("derivation").Extends("song").Field("original", "song").MustBuild(),
		schema.NewEntity("remix").Extends("derivation").Field("remixer", schema.TypeString).MustBuild(),
	))
	require.NoError(t, err)
	return m
}

func generate(t *testing.T, cfg *render.Config) (string, string) {
	t.Helper()
	files, err := (&sqlgen.Generator{}).Generate(context.Background(), testModel(t), cfg)
	require.NoError(t, err)
	require.Len(t, files, 2)
	return string(files["schema.sql"]), string(files["drop.sql"])
}

func TestGenerator_Interface(t *testing.T) {
	gen := &sqlgen.Generator{}
	assert.Equal(t, "sql", gen.Name())
	assert.True(t, render.Registered("sql"))
}

func TestGenerate_TableOrder(t *testing.T) {
	ddl, _ := generate(t, nil)

	pos := func(table string) int {
		i := strings.Index(ddl, "CREATE TABLE IF NOT EXISTS "+table+" (")
		require.GreaterOrEqual(t, i, 0, table)
		return i
	}
	assert.Less(t, pos("songs"), pos("derivations"))
	assert.Less(t, pos("derivations"), pos("remixes"))
	assert.Less(t, pos("songs"), pos("song_lyrics"))
	assert.Less(t, pos("artists"), pos("artist_songs"))
	assert.Less(t, pos("tags"), pos("tag_tags"))

	lastCreate := strings.LastIndex(ddl, "CREATE TABLE")
	firstAlter := strings.Index(ddl, "ALTER TABLE")
	require.GreaterOrEqual(t, firstAlter, 0)
	assert.Less(t, lastCreate, firstAlter, "foreign keys are added after every table exists")
}

func TestGenerate_Columns(t *testing.T) {
	ddl, _ := generate(t, nil)

	for _, want := range []string{
		"    name TEXT NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_songs_name ON songs (name);",
		"    label TEXT UNIQUE",
		"    _owner_id BIGINT NOT NULL REFERENCES songs (_id) ON DELETE CASCADE",
		"CREATE INDEX IF NOT EXISTS idx_song_lyrics__owner_id ON song_lyrics (_owner_id);",
		"CREATE TABLE IF NOT EXISTS derivations (\n    _id BIGINT PRIMARY KEY REFERENCES songs (_id) ON DELETE CASCADE,\n    original_id BIGINT\n);",
		"CREATE TABLE IF NOT EXISTS artists (\n    _id BIGSERIAL PRIMARY KEY,",
		"COMMENT ON TABLE song_lyrics IS 'Song Lyric';",
	} {
		assert.Contains(t, ddl, want)
	}
}

func TestGenerate_Junctions(t *testing.T) {
	ddl, _ := generate(t, nil)

	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS artist_songs (
    artist_id BIGINT NOT NULL REFERENCES artists (_id) ON DELETE CASCADE,
    song_id BIGINT NOT NULL REFERENCES songs (_id) ON DELETE CASCADE,
    PRIMARY KEY (artist_id, song_id)
);`)
	assert.Contains(t, ddl, "CREATE INDEX IF NOT EXISTS idx_artist_songs_song_id ON artist_songs (song_id);")
	assert.Contains(t, ddl, "    PRIMARY KEY (source_tag_id, target_tag_id)")
}

func TestGenerate_ReferenceForeignKeys(t *testing.T) {
	ddl, _ := generate(t, nil)

	assert.Contains(t, ddl, `ALTER TABLE derivations
    ADD CONSTRAINT fk_derivations_original_id
    FOREIGN KEY (original_id) REFERENCES songs (_id) ON DELETE SET NULL;`)
}

func TestGenerate_ComposedViews(t *testing.T) {
	ddl, _ := generate(t, nil)

	assert.Contains(t, ddl, `CREATE OR REPLACE VIEW remixes_composed AS
SELECT
    c._id,
    a0.name AS song_name,
    a1.original_id AS derivation_original_id,
    c.remixer
FROM remixes AS c
INNER JOIN songs AS a0 ON a0._id = c._id
INNER JOIN derivations AS a1 ON a1._id = c._id;`)
	assert.Contains(t, ddl, "CREATE OR REPLACE VIEW derivations_composed AS")
	assert.NotContains(t, ddl, "songs_composed")
}

func TestGenerate_Drop(t *testing.T) {
	_, drop := generate(t, &render.Config{Version: "v0.1.0", SourcePath: "schema.yaml"})

	want := `-- Code generated by minazuki v0.1.0. DO NOT EDIT.
-- Source: schema.yaml

DROP VIEW IF EXISTS remixes_composed;

DROP VIEW IF EXISTS derivations_composed;

DROP TABLE IF EXISTS remixes CASCADE;
`
	assert.True(t, strings.HasPrefix(drop, want), drop)
	assert.True(t, strings.HasSuffix(drop, "DROP TABLE IF EXISTS artists CASCADE;\n"), drop)
}

func TestGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&sqlgen.Generator{}).Generate(ctx, testModel(t), nil)
	assert.ErrorIs(t, err, context.Canceled)
}
