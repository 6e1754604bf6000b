package schema_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pthm/minazuki/pkg/schema"
)

func TestDefinitionError(t *testing.T) {
	t.Run("Error message with all fields", func(t *testing.T) {
		cause := errors.New("underlying error")
		err := schema.NewDefinitionError("song", "name", "invalid", cause)

		assert.Contains(t, err.Error(), "minazuki: definition error")
		assert.Contains(t, err.Error(), "entity song")
		assert.Contains(t, err.Error(), "field name")
		assert.Contains(t, err.Error(), "invalid")
		assert.Contains(t, err.Error(), "underlying error")
	})

	t.Run("Error message with entity only", func(t *testing.T) {
		err := &schema.DefinitionError{Entity: "song"}
		assert.Contains(t, err.Error(), "entity song")
		assert.NotContains(t, err.Error(), "field")
	})

	t.Run("Is matches ErrInvalidSchema and the cause", func(t *testing.T) {
		err := schema.NewDefinitionError("song", "", "cycle", schema.ErrCyclicSchema)
		assert.True(t, schema.IsInvalidSchemaErr(err))
		assert.True(t, schema.IsCyclicSchemaErr(err))
		assert.True(t, schema.IsDefinitionError(fmt.Errorf("wrapped: %w", err)))
	})
}

func TestResolutionError(t *testing.T) {
	err := schema.NewResolutionError("sort", "dependency cycle", schema.ErrCyclicSchema)

	assert.Contains(t, err.Error(), "phase sort")
	assert.Contains(t, err.Error(), "dependency cycle")
	assert.True(t, errors.Is(err, schema.ErrResolution))
	assert.True(t, schema.IsCyclicSchemaErr(err))
	assert.True(t, schema.IsResolutionError(err))
	assert.False(t, schema.IsInvalidSchemaErr(err))
}

func TestErrorHelpers(t *testing.T) {
	t.Run("IsUnknownEntityErr", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", schema.ErrUnknownEntity)
		assert.True(t, schema.IsUnknownEntityErr(err))
		assert.False(t, schema.IsUnknownEntityErr(errors.New("other error")))
	})

	t.Run("IsCyclicSchemaErr", func(t *testing.T) {
		assert.True(t, schema.IsCyclicSchemaErr(fmt.Errorf("wrapped: %w", schema.ErrCyclicSchema)))
		assert.False(t, schema.IsCyclicSchemaErr(schema.ErrInvalidSchema))
	})
}
