package schema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/minazuki/pkg/schema"
)

func TestField_TypePredicates(t *testing.T) {
	tests := []struct {
		typ       string
		basic     bool
		indexable bool
		reference bool
	}{
		{schema.TypeString, true, true, false},
		{schema.TypeInteger, true, true, false},
		{schema.TypeBoolean, true, false, false},
		{"song", false, false, true},
		{"", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			f := schema.Field{Name: "f", Type: tt.typ}
			assert.Equal(t, tt.basic, f.IsBasic())
			assert.Equal(t, tt.indexable, f.IsIndexable())
			assert.Equal(t, tt.reference, f.IsReference())
		})
	}
}

func TestNew_RejectsDuplicateNames(t *testing.T) {
	_, err := schema.New(
		schema.NewEntity("song").MustBuild(),
		schema.NewEntity("song").MustBuild(),
	)
	require.Error(t, err)
	assert.True(t, schema.IsInvalidSchemaErr(err))
	assert.Contains(t, err.Error(), "entity defined more than once")
}

func TestSchema_Lookup(t *testing.T) {
	s := schema.MustNew(
		schema.NewEntity("band").MustBuild(),
		schema.NewEntity("artist").MustBuild(),
	)

	assert.Equal(t, []string{"band", "artist"}, s.Names())

	d, ok := s.Entity("artist")
	require.True(t, ok)
	assert.Equal(t, "artist", d.Name)

	_, ok = s.Entity("album")
	assert.False(t, ok)
}
