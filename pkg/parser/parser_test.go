package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/minazuki/pkg/schema"
)

const exampleSchema = `
entities:
  - name: song
    fields:
      - {name: name, type: string}
      - {name: length_seconds, type: integer, index: true}
    has_many: [artist]
    collections:
      - name: lyric
        fields: [{name: timestamp_seconds, type: integer}]
        collections:
          - name: line
            fields:
              - {name: content, type: string}
  - name: artist
    fields: [{name: name, type: string}]
  - name: derivation
    extends: song
    fields: [{name: original, type: song}]
`

func TestParseSchemaString_Example(t *testing.T) {
	s, err := ParseSchemaString(exampleSchema)
	require.NoError(t, err)
	assert.Equal(t, []string{"song", "artist", "derivation"}, s.Names())

	song, ok := s.Entity("song")
	require.True(t, ok)
	require.Len(t, song.Fields, 2)
	assert.Equal(t, schema.Field{Name: "name", Type: schema.TypeString}, song.Fields[0])
	assert.Equal(t, "length_seconds", song.Fields[1].Name)
	idx, ok := song.Fields[1].Option("index")
	require.True(t, ok)
	assert.Equal(t, true, idx)
	assert.Equal(t, []string{"artist"}, song.HasMany)

	lyric, ok := song.Collection("lyric")
	require.True(t, ok)
	line, ok := lyric.Collection("line")
	require.True(t, ok)
	assert.Equal(t, "content", line.Fields[0].Name)

	derivation, ok := s.Entity("derivation")
	require.True(t, ok)
	assert.Equal(t, "song", derivation.Parent)
	assert.True(t, derivation.Fields[0].IsReference())
}

func TestParseSchemaString_JSON(t *testing.T) {
	s, err := ParseSchemaString(`{"entities": [{"name": "name"}, {"name": "thing", "has_many": ["name"]}]}`)
	require.NoError(t, err)
	thing, ok := s.Entity("thing")
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, thing.HasMany)
}

func TestParseSchemaString_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name:    "malformed yaml",
			content: "entities: [",
			wantMsg: "invalid schema",
		},
		{
			name:    "unknown entity key",
			content: "entities:\n  - name: song\n    parent: x\n",
			wantMsg: "invalid schema",
		},
		{
			name:    "reserved field prefix",
			content: "entities:\n  - name: song\n    fields: [{name: _id, type: string}]\n",
			wantMsg: "cannot start with",
		},
		{
			name:    "reserved prefix in nested collection",
			content: "entities:\n  - name: song\n    collections:\n      - name: lyric\n        fields: [{name: _x, type: string}]\n",
			wantMsg: `collection "lyric" of "song"`,
		},
		{
			name:    "missing field type",
			content: "entities:\n  - name: song\n    fields: [{name: title}]\n",
			wantMsg: "missing type",
		},
		{
			name:    "non-string field name",
			content: "entities:\n  - name: song\n    fields: [{name: 3, type: string}]\n",
			wantMsg: "name must be a string",
		},
		{
			name:    "duplicate entity",
			content: "entities:\n  - name: song\n  - name: song\n",
			wantMsg: "entity defined more than once",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSchemaString(tt.content)
			require.Error(t, err)
			assert.True(t, schema.IsInvalidSchemaErr(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseSchema_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	require.NoError(t, os.WriteFile(path, []byte(exampleSchema), 0o600))

	s, err := ParseSchema(path)
	require.NoError(t, err)
	assert.Len(t, s.Entities, 3)

	_, err = ParseSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading schema file")
}
