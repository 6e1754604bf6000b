package resolve

import (
	"errors"

	"github.com/pthm/minazuki/internal/naming"
)

// Option configures Resolve.
type Option func(*config) error

type config struct {
	inflector naming.Inflector
}

// WithInflector sets the inflector used for the naming forms of each
// entity. The default is naming.Default.
func WithInflector(inf naming.Inflector) Option {
	return func(c *config) error {
		if inf == nil {
			return errors.New("resolve: inflector cannot be nil")
		}
		c.inflector = inf
		return nil
	}
}

// WithIrregular registers extra singular/plural pairs on a fresh English
// inflector.
func WithIrregular(pairs map[string]string) Option {
	return func(c *config) error {
		irregular := make([][2]string, 0, len(pairs))
		for _, s := range sortedKeys(pairs) {
			irregular = append(irregular, [2]string{s, pairs[s]})
		}
		c.inflector = naming.NewEnglish(irregular...)
		return nil
	}
}
