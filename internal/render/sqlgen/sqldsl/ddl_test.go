package sqldsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdent_SQL(t *testing.T) {
	tests := []struct {
		ident Ident
		want  string
	}{
		{"songs", "songs"},
		{"_owner_id", "_owner_id"},
		{"song_lyric_lines", "song_lyric_lines"},
		{"order", `"order"`},
		{"user", `"user"`},
		{"Song", `"Song"`},
		{"has space", `"has space"`},
		{`we"ird`, `"we""ird"`},
	}
	for _, tt := range tests {
		t.Run(string(tt.ident), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ident.SQL())
		})
	}
}

func TestName_Truncates(t *testing.T) {
	long := strings.Repeat("a", 40)
	got := Name("idx", long, long)
	assert.Len(t, string(got), MaxIdentLen)
	assert.Equal(t, Ident("idx_songs_name"), Name("idx", "songs", "name"))
}

func TestExpressions(t *testing.T) {
	assert.Equal(t, "c._id", Col{Table: "c", Column: "_id"}.SQL())
	assert.Equal(t, `"order"`, Col{Column: "order"}.SQL())
	assert.Equal(t, "'it''s'", Lit("it's").SQL())
	assert.Equal(t, "a0.name AS song_name", Alias{Expr: Col{Table: "a0", Column: "name"}, Name: "song_name"}.SQL())
	assert.Equal(t, "a = b", Eq{Left: Raw("a"), Right: Raw("b")}.SQL())
	assert.Equal(t, "(a AND b)", And(Raw("a"), Raw("b")).SQL())
	assert.Equal(t, "a", And(Raw("a")).SQL())
}

func TestCreateTable_SQL(t *testing.T) {
	stmt := CreateTable{
		Name: "song_lyrics",
		Columns: []ColumnDef{
			{Name: "_id", Type: BigSerial, PrimaryKey: true},
			{Name: "_owner_id", Type: BigInt, NotNull: true,
				References: &Reference{Table: "songs", Column: "_id", OnDelete: "CASCADE"}},
			{Name: "text", Type: Text, Unique: true},
		},
	}
	want := `CREATE TABLE IF NOT EXISTS song_lyrics (
    _id BIGSERIAL PRIMARY KEY,
    _owner_id BIGINT NOT NULL REFERENCES songs (_id) ON DELETE CASCADE,
    text TEXT UNIQUE
)`
	assert.Equal(t, want, stmt.SQL())
}

func TestCreateTable_CompositeKey(t *testing.T) {
	stmt := CreateTable{
		Name: "artist_songs",
		Columns: []ColumnDef{
			{Name: "artist_id", Type: BigInt, NotNull: true},
			{Name: "song_id", Type: BigInt, NotNull: true},
		},
		PrimaryKey: []string{"artist_id", "song_id"},
	}
	assert.Contains(t, stmt.SQL(), "    PRIMARY KEY (artist_id, song_id)\n)")
}

func TestCreateIndex_SQL(t *testing.T) {
	assert.Equal(t,
		"CREATE INDEX IF NOT EXISTS idx_songs_name ON songs (name)",
		CreateIndex{Table: "songs", Columns: []string{"name"}}.SQL())
	assert.Equal(t,
		"CREATE UNIQUE INDEX IF NOT EXISTS by_title ON songs (title)",
		CreateIndex{Name: "by_title", Table: "songs", Columns: []string{"title"}, Unique: true}.SQL())
}

func TestAddForeignKey_SQL(t *testing.T) {
	stmt := AddForeignKey{
		Table:  "derivations",
		Column: "original_id",
		Ref:    Reference{Table: "songs", Column: "_id", OnDelete: "SET NULL"},
	}
	want := `ALTER TABLE derivations
    ADD CONSTRAINT fk_derivations_original_id
    FOREIGN KEY (original_id) REFERENCES songs (_id) ON DELETE SET NULL`
	assert.Equal(t, want, stmt.SQL())
}

func TestCommentOn_SQL(t *testing.T) {
	assert.Equal(t, "COMMENT ON TABLE songs IS 'Song'", CommentOn{Kind: "TABLE", Name: "songs", Text: "Song"}.SQL())
	assert.Equal(t, `COMMENT ON COLUMN songs."order" IS 'Track order'`,
		CommentOn{Kind: "COLUMN", Name: "songs.order", Text: "Track order"}.SQL())
}

func TestCreateView_SQL(t *testing.T) {
	view := CreateView{
		Name: "remixes_composed",
		Query: SelectStmt{
			Columns: []Expr{
				Col{Table: "c", Column: "_id"},
				Alias{Expr: Col{Table: "a0", Column: "name"}, Name: "song_name"},
			},
			From: TableRef{Name: "remixes", Alias: "c"},
			Joins: []JoinClause{{
				Type:  "INNER",
				Table: TableRef{Name: "songs", Alias: "a0"},
				On:    Eq{Left: Col{Table: "a0", Column: "_id"}, Right: Col{Table: "c", Column: "_id"}},
			}},
		},
	}
	want := `CREATE OR REPLACE VIEW remixes_composed AS
SELECT
    c._id,
    a0.name AS song_name
FROM remixes AS c
INNER JOIN songs AS a0 ON a0._id = c._id`
	assert.Equal(t, want, view.SQL())
}

func TestDrop_SQL(t *testing.T) {
	assert.Equal(t, "DROP TABLE IF EXISTS songs CASCADE", DropTable{Name: "songs", IfExists: true, Cascade: true}.SQL())
	assert.Equal(t, "DROP TABLE songs", DropTable{Name: "songs"}.SQL())
	assert.Equal(t, "DROP VIEW IF EXISTS remixes_composed", DropView{Name: "remixes_composed"}.SQL())
}

func TestScript_SQL(t *testing.T) {
	var s Script
	s.Header = []string{"generated"}
	s.Add(DropView{Name: "v"}, DropTable{Name: "t"})
	assert.Equal(t, "-- generated\n\nDROP VIEW IF EXISTS v;\n\nDROP TABLE t;\n", s.SQL())

	assert.Equal(t, "DROP TABLE t;\n", Script{Stmts: []Stmt{DropTable{Name: "t"}}}.SQL())
}

func TestSqlf(t *testing.T) {
	got := Sqlf(`
		SELECT 1
		    FROM x

		%s`, Optf(false, "WHERE y"))
	assert.Equal(t, "SELECT 1\n    FROM x", got)
}
