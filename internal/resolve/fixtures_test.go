package resolve

import "github.com/pthm/minazuki/pkg/schema"

// musicSchema is the catalogue used across the resolver tests.
func musicSchema() schema.Schema {
	return schema.MustNew(
		schema.NewEntity("band").
			Field("name", schema.TypeString).
			MustBuild(),
		schema.NewEntity("artist").
			Field("name", schema.TypeString).
			MustBuild(),
		schema.NewEntity("album").
			Field("name", schema.TypeString).
			MustBuild(),
		schema.NewEntity("song").
			Field("name", schema.TypeString).
			Field("url", schema.TypeString).
			Field("length_seconds", schema.TypeInteger).
			Collection(schema.NewEntity("lyric").
				Field("timestamp_seconds", schema.TypeInteger).
				Collection(schema.NewEntity("line").
					Field("content", schema.TypeString).
					Field("lang_code", schema.TypeString).
					Collection(schema.NewEntity("annotation").
						Field("content", schema.TypeString).
						Field("tag", schema.TypeString)))).
			MustBuild(),
		schema.NewEntity("derivation").
			Extends("song").
			Field("original", "song").
			MustBuild(),
		schema.NewEntity("remix").Extends("derivation").MustBuild(),
		schema.NewEntity("cover").Extends("derivation").MustBuild(),
		schema.NewEntity("instrumental").Extends("derivation").MustBuild(),
		schema.NewEntity("arrange").Extends("derivation").MustBuild(),
	)
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
