package btree

import (
	"cmp"

	"github.com/oba-storage/mtree/codec"
	"github.com/oba-storage/mtree/mappedfile"
)

// BTree is an offset-based B-tree over a single memory-mapped file. K must
// be orderable (its codec is always a fixed-width primitive codec); V may
// be a fixed-width primitive or a variable-length blob, per the value
// codec supplied at Open.
type BTree[K cmp.Ordered, V any] struct {
	io   *IOManager[K, V]
	root *Node
	t    int
}

func less[K cmp.Ordered](a, b K) bool { return a < b }

// Open opens (creating if necessary) the file at path as a B-tree keyed
// with keyCodec and valued with valCodec. If the file already holds a
// header, its (t, key_size, value_type_code, element_size) must match this
// call's configuration or Open fails with ErrSchemaMismatch.
func Open[K cmp.Ordered, V any](path string, keyCodec codec.KeyCodec[K], valCodec codec.ValueCodec[V], opts ...Option) (*BTree[K, V], error) {
	o := defaultOptions()
	for _, apply := range opts {
		apply(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	mf, err := mappedfile.Open(path, o.InitialFileBytes)
	if err != nil {
		return nil, err
	}

	iom := newIOManager[K, V](mf, o.Degree, keyCodec, valCodec)
	bt := &BTree[K, V]{io: iom, t: o.Degree}

	if mf.IsEmpty() {
		return bt, nil
	}

	rootPos, err := iom.ReadHeader()
	if err != nil {
		mf.Close()
		return nil, err
	}
	if rootPos == InvalidRootPos {
		return bt, nil
	}

	root, err := iom.ReadNode(rootPos)
	if err != nil {
		mf.Close()
		return nil, err
	}
	bt.root = root
	return bt, nil
}

// Close releases the underlying mapped file, shrinking it to its
// high-water mark first.
func (bt *BTree[K, V]) Close() error {
	return bt.io.file.Close()
}

// Degree returns t, the tree's minimum degree.
func (bt *BTree[K, V]) Degree() int { return bt.t }

// IsEmpty reports whether the tree currently holds a root.
func (bt *BTree[K, V]) IsEmpty() bool { return bt.root == nil }
