// Package volume binds a BTree to one file path, enforcing that no path
// is opened twice in the same process and, in Shared mode, serializing
// concurrent access with a single reader/writer lock.
package volume

import (
	"cmp"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"

	"github.com/oba-storage/mtree/btree"
	"github.com/oba-storage/mtree/codec"
	"github.com/oba-storage/mtree/internal/logging"
)

// Volume is an opened BTree bound to one file path.
type Volume[K cmp.Ordered, V any] struct {
	path string
	tree *btree.BTree[K, V]
	mode Mode
	mu   sync.RWMutex
	log  logging.Logger
}

// OpenOption configures a Volume: either a Volume-level concern (its
// logger) or a btree.Option forwarded to the underlying tree.
type OpenOption func(*openConfig)

type openConfig struct {
	log      logging.Logger
	treeOpts []btree.Option
}

// WithLogger attaches a structured logger to the volume. Defaults to a
// no-op logger.
func WithLogger(l logging.Logger) OpenOption {
	return func(c *openConfig) { c.log = l }
}

// WithTreeOption forwards a btree.Option (e.g. WithDegree) to the
// underlying BTree's Open call.
func WithTreeOption(o btree.Option) OpenOption {
	return func(c *openConfig) { c.treeOpts = append(c.treeOpts, o) }
}

// Open opens path as a Volume. It fails with ErrAlreadyOpen if path is
// already open elsewhere in this process.
func Open[K cmp.Ordered, V any](path string, keyCodec codec.KeyCodec[K], valCodec codec.ValueCodec[V], mode Mode, opts ...OpenOption) (*Volume[K, V], error) {
	cfg := openConfig{log: logging.NewNop()}
	for _, apply := range opts {
		apply(&cfg)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "volume: resolve path %s", path)
	}
	log := cfg.log.WithFields("path", absPath)

	if !registryAcquire(absPath) {
		log.Warn("open rejected: already open in this process")
		return nil, ErrAlreadyOpen
	}

	tree, err := btree.Open[K, V](path, keyCodec, valCodec, cfg.treeOpts...)
	if err != nil {
		registryRelease(absPath)
		log.Error("open failed", "err", err)
		return nil, err
	}

	log.Info("opened")
	return &Volume[K, V]{path: absPath, tree: tree, mode: mode, log: log}, nil
}

// Close releases the underlying BTree and frees this path in the process
// registry, allowing a subsequent Open to succeed.
func (v *Volume[K, V]) Close() error {
	defer registryRelease(v.path)
	v.log.Info("closing")
	return v.tree.Close()
}

// Set inserts or overwrites key/value.
func (v *Volume[K, V]) Set(key K, value V) error {
	if v.mode == Shared {
		v.mu.Lock()
		defer v.mu.Unlock()
	}
	return v.tree.Set(key, value)
}

// Get returns the value stored under key, if any.
func (v *Volume[K, V]) Get(key K) (V, bool, error) {
	if v.mode == Shared {
		v.mu.RLock()
		defer v.mu.RUnlock()
	}
	return v.tree.Get(key)
}

// Exist reports whether key is present.
func (v *Volume[K, V]) Exist(key K) (bool, error) {
	if v.mode == Shared {
		v.mu.RLock()
		defer v.mu.RUnlock()
	}
	return v.tree.Exist(key)
}

// Remove deletes key if present and reports whether it was found.
func (v *Volume[K, V]) Remove(key K) (bool, error) {
	if v.mode == Shared {
		v.mu.Lock()
		defer v.mu.Unlock()
	}
	return v.tree.Remove(key)
}
