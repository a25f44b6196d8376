package btree

import "github.com/pkg/errors"

// Options configures a tree at Open time. Unlike most of the ambient
// config in this module, a tree's degree is baked into every node it ever
// writes, so it cannot be changed by reopening with different Options —
// ReadHeader enforces that via ErrSchemaMismatch.
type Options struct {
	// Degree is t, the tree's minimum degree: every non-root node holds
	// between t-1 and 2t-1 keys. Must be >= 2.
	Degree int

	// InitialFileBytes is a hint passed straight through to the backing
	// mapped file's initial allocation; it does not affect wire layout.
	InitialFileBytes int64
}

// Option mutates Options. Follows the functional-options shape used
// throughout this module's configuration surface.
type Option func(*Options)

// WithDegree sets the tree's minimum degree t.
func WithDegree(t int) Option {
	return func(o *Options) { o.Degree = t }
}

// WithInitialFileBytes sets the initial mapped-file allocation hint.
func WithInitialFileBytes(n int64) Option {
	return func(o *Options) { o.InitialFileBytes = n }
}

func defaultOptions() Options {
	return Options{Degree: 2}
}

func (o Options) validate() error {
	if o.Degree < 2 {
		return errors.Errorf("btree: degree must be >= 2, got %d", o.Degree)
	}
	return nil
}
