// Package sqldsl provides typed building blocks for PostgreSQL DDL.
//
// Rather than concatenating statements, generators assemble values that
// render themselves. Every type implements Expr or Stmt, both of which
// define a SQL() method.
//
// # Expressions
//
//	Ident("song_lyrics")              // song_lyrics
//	Ident("order")                    // "order" (reserved words are quoted)
//	Col{Table: "c", Column: "_id"}    // c._id
//	Lit("it's")                       // 'it''s'
//	Raw("now()")                      // escape hatch
//	Eq{Left: a, Right: b}             // a = b
//	Alias{Expr: col, Name: "song_name"}
//
// # Statements
//
//	CreateTable{
//	    Name: "songs",
//	    Columns: []ColumnDef{
//	        {Name: "_id", Type: BigSerial, PrimaryKey: true},
//	        {Name: "name", Type: Text},
//	    },
//	}
//
//	CreateIndex{Table: "songs", Columns: []string{"name"}}
//	AddForeignKey{Table: "songs", Column: "writer_id", Ref: Reference{Table: "artists", Column: "_id"}}
//	CreateView{Name: "remixes_composed", Query: SelectStmt{...}}
//	DropTable{Name: "songs", IfExists: true, Cascade: true}
//
// Script joins statements into a file, terminating each with a semicolon.
package sqldsl
