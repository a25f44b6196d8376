// Package btree implements an offset-based, single-file, memory-mapped
// B-tree: a classic CLRS-style B-tree whose pointers are byte offsets into
// one backing file rather than in-memory addresses.
package btree

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/oba-storage/mtree/codec"
	"github.com/oba-storage/mtree/mappedfile"
)

// IOManager translates between the tree's logical operations (read/write a
// node, an entry, the header) and the underlying mapped file's raw byte
// accessors. It knows the wire layout; BTree knows the algorithm.
type IOManager[K comparable, V any] struct {
	file     *mappedfile.MappedFile
	t        int
	keyCodec codec.KeyCodec[K]
	valCodec codec.ValueCodec[V]
}

func newIOManager[K comparable, V any](file *mappedfile.MappedFile, t int, keyCodec codec.KeyCodec[K], valCodec codec.ValueCodec[V]) *IOManager[K, V] {
	return &IOManager[K, V]{file: file, t: t, keyCodec: keyCodec, valCodec: valCodec}
}

// FileEndPos is the append point: every fresh node or entry this manager
// writes without an explicit position lands here.
func (m *IOManager[K, V]) FileEndPos() int64 { return m.file.EndPos() }

// WriteFlag rewrites just the one-byte leaf/deleted flag of a node record,
// without touching its key/child tables.
func (m *IOManager[K, V]) WriteFlag(pos int64, flag uint8) error {
	return m.file.WriteUint8(pos, flag)
}

// WriteNode serializes node at pos (growing the file if pos is at or past
// EndPos) and records pos as the node's own position.
func (m *IOManager[K, V]) WriteNode(node *Node, pos int64) error {
	node.Pos = pos

	var flag uint8
	if node.IsLeaf {
		flag |= flagIsLeaf
	}
	if node.IsDeleted {
		flag |= flagIsDeleted
	}
	if err := m.file.WriteUint8(pos, flag); err != nil {
		return err
	}
	if err := m.file.WriteUint16(pos+1, node.UsedKeys); err != nil {
		return err
	}

	keyBuf := make([]byte, 8*len(node.KeyPos))
	for i, p := range node.KeyPos {
		binary.LittleEndian.PutUint64(keyBuf[i*8:], uint64(p))
	}
	keyOff := pos + 3
	if err := m.file.WriteVectorRaw(keyOff, keyBuf); err != nil {
		return err
	}

	childBuf := make([]byte, 8*len(node.ChildPos))
	for i, p := range node.ChildPos {
		binary.LittleEndian.PutUint64(childBuf[i*8:], uint64(p))
	}
	childOff := keyOff + int64(len(keyBuf))
	return m.file.WriteVectorRaw(childOff, childBuf)
}

// ReadNode deserializes the node record at pos. It fails with
// ErrCorruptNode if used_keys exceeds the capacity implied by this
// manager's configured degree, or ErrCorruptOffset if pos itself does not
// name a valid record within the file (a stored offset pointing past
// end-of-file is a structural inconsistency, not a user input error).
func (m *IOManager[K, V]) ReadNode(pos int64) (*Node, error) {
	flag, err := m.file.ReadUint8(pos)
	if err != nil {
		return nil, wrapOffsetErr(err, pos)
	}
	usedKeys, err := m.file.ReadUint16(pos + 1)
	if err != nil {
		return nil, wrapOffsetErr(err, pos)
	}

	t := m.t
	if int(usedKeys) > 2*t-1 {
		return nil, errors.Wrapf(ErrCorruptNode, "used_keys=%d exceeds capacity for t=%d at pos=%d", usedKeys, t, pos)
	}

	keyOff := pos + 3
	keyBuf, err := m.file.ReadVectorRaw(keyOff, 8*(2*t-1))
	if err != nil {
		return nil, wrapOffsetErr(err, pos)
	}
	childOff := keyOff + int64(len(keyBuf))
	childBuf, err := m.file.ReadVectorRaw(childOff, 8*(2*t))
	if err != nil {
		return nil, wrapOffsetErr(err, pos)
	}

	node := newNode(t, flag&flagIsLeaf != 0)
	node.Pos = pos
	node.IsDeleted = flag&flagIsDeleted != 0
	node.UsedKeys = usedKeys
	for i := 0; i < 2*t-1; i++ {
		node.KeyPos[i] = int64(binary.LittleEndian.Uint64(keyBuf[i*8:]))
	}
	for i := 0; i < 2*t; i++ {
		node.ChildPos[i] = int64(binary.LittleEndian.Uint64(childBuf[i*8:]))
	}
	return node, nil
}

// WriteEntry serializes key and value at pos (key bytes followed by either
// a fixed-width value or a length-prefixed blob, per the value codec's
// type code) and returns the offset just past it.
func (m *IOManager[K, V]) WriteEntry(pos int64, key K, value V) (int64, error) {
	keyBytes := m.keyCodec.Encode(key)
	if err := m.file.WriteAt(pos, keyBytes); err != nil {
		return 0, err
	}
	valuePos := pos + int64(len(keyBytes))

	if m.valCodec.TypeCode() == codec.ValueTypeBlob {
		return m.file.WriteBlob(valuePos, m.valCodec.Encode(value))
	}
	valBytes := m.valCodec.Encode(value)
	if err := m.file.WriteAt(valuePos, valBytes); err != nil {
		return 0, err
	}
	return valuePos + int64(len(valBytes)), nil
}

// AppendEntry writes key/value at FileEndPos and returns the offset it was
// written at.
func (m *IOManager[K, V]) AppendEntry(key K, value V) (int64, error) {
	pos := m.FileEndPos()
	if _, err := m.WriteEntry(pos, key, value); err != nil {
		return 0, err
	}
	return pos, nil
}

// ReadEntry decodes the key/value pair at pos.
func (m *IOManager[K, V]) ReadEntry(pos int64) (K, V, error) {
	var zeroK K
	var zeroV V

	keySize := m.keyCodec.ElementSize()
	keyBytes, err := m.file.ReadAt(pos, keySize)
	if err != nil {
		return zeroK, zeroV, wrapOffsetErr(err, pos)
	}
	key := m.keyCodec.Decode(keyBytes)
	valuePos := pos + int64(keySize)

	if m.valCodec.TypeCode() == codec.ValueTypeBlob {
		payload, _, err := m.file.ReadBlob(valuePos)
		if err != nil {
			return zeroK, zeroV, wrapOffsetErr(err, valuePos)
		}
		return key, m.valCodec.Decode(payload), nil
	}

	valBytes, err := m.file.ReadAt(valuePos, m.valCodec.ElementSize())
	if err != nil {
		return zeroK, zeroV, wrapOffsetErr(err, valuePos)
	}
	return key, m.valCodec.Decode(valBytes), nil
}

// ReadKey decodes only the key at pos, skipping the value payload.
func (m *IOManager[K, V]) ReadKey(pos int64) (K, error) {
	var zero K
	keyBytes, err := m.file.ReadAt(pos, m.keyCodec.ElementSize())
	if err != nil {
		return zero, wrapOffsetErr(err, pos)
	}
	return m.keyCodec.Decode(keyBytes), nil
}

// wrapOffsetErr promotes a mappedfile.ErrOutOfBounds encountered while
// resolving a stored key_pos/child_pos/root_pos offset into ErrCorruptOffset:
// during algorithmic traversal, an offset the tree itself wrote should
// never point past the file's end, so hitting one means the on-disk
// structure is inconsistent rather than that the caller passed a bad
// position. Errors unrelated to bounds (e.g. ErrClosed) pass through
// unchanged.
func wrapOffsetErr(err error, pos int64) error {
	if errors.Is(err, mappedfile.ErrOutOfBounds) {
		return errors.Wrapf(ErrCorruptOffset, "offset %d: %v", pos, err)
	}
	return err
}

// findKeyPos returns the first index in [0, node.UsedKeys] whose stored key
// is >= key, and whether that index is an exact match. This is the single
// binary search every lookup, insert, and delete path is built on.
func (m *IOManager[K, V]) findKeyPos(node *Node, key K, less func(a, b K) bool) (int, bool, error) {
	lo, hi := 0, int(node.UsedKeys)
	for lo < hi {
		mid := (lo + hi) / 2
		midKey, err := m.ReadKey(node.KeyPos[mid])
		if err != nil {
			return 0, false, err
		}
		switch {
		case less(midKey, key):
			lo = mid + 1
		case less(key, midKey):
			hi = mid
		default:
			return mid, true, nil
		}
	}
	return lo, false, nil
}
