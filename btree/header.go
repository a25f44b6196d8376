package btree

import (
	"github.com/pkg/errors"

	"github.com/oba-storage/mtree/codec"
)

// HeaderSize is the fixed size, in bytes, of the file header written once
// at offset 0.
const HeaderSize = 13

// InvalidRootPos is the sentinel root_pos value recorded in the header
// while the tree is empty (no root node has ever been written).
const InvalidRootPos int64 = -1

// rootPosOffset is the byte offset of the 8-byte root_pos field within the
// header, used when only that field needs rewriting.
const rootPosOffset = 5

// WriteHeader writes the 13-byte header with root_pos = InvalidRootPos and
// returns the offset just past it (always HeaderSize).
func (m *IOManager[K, V]) WriteHeader() (int64, error) {
	if err := m.file.WriteUint16(0, uint16(m.t)); err != nil {
		return 0, err
	}
	if err := m.file.WriteUint8(2, uint8(m.keyCodec.ElementSize())); err != nil {
		return 0, err
	}
	if err := m.file.WriteUint8(3, uint8(m.valCodec.TypeCode())); err != nil {
		return 0, err
	}
	if err := m.file.WriteUint8(4, uint8(m.valCodec.ElementSize())); err != nil {
		return 0, err
	}
	if err := m.file.WriteInt64(rootPosOffset, InvalidRootPos); err != nil {
		return 0, err
	}
	return HeaderSize, nil
}

// ReadHeader reads the header and returns root_pos. It fails with
// ErrSchemaMismatch if the stored (t, key_size, value_type_code,
// element_size) disagree with this handle's configuration.
func (m *IOManager[K, V]) ReadHeader() (int64, error) {
	t, err := m.file.ReadUint16(0)
	if err != nil {
		return 0, err
	}
	keySize, err := m.file.ReadUint8(2)
	if err != nil {
		return 0, err
	}
	valType, err := m.file.ReadUint8(3)
	if err != nil {
		return 0, err
	}
	elemSize, err := m.file.ReadUint8(4)
	if err != nil {
		return 0, err
	}
	rootPos, err := m.file.ReadInt64(rootPosOffset)
	if err != nil {
		return 0, err
	}

	if int(t) != m.t ||
		int(keySize) != m.keyCodec.ElementSize() ||
		codec.ValueTypeCode(valType) != m.valCodec.TypeCode() ||
		int(elemSize) != m.valCodec.ElementSize() {
		return 0, errors.Wrapf(ErrSchemaMismatch,
			"file has t=%d key_size=%d value_type=%d element_size=%d, handle wants t=%d key_size=%d value_type=%d element_size=%d",
			t, keySize, valType, elemSize, m.t, m.keyCodec.ElementSize(), m.valCodec.TypeCode(), m.valCodec.ElementSize())
	}

	return rootPos, nil
}

// WriteRootPos rewrites only the 8-byte root_pos field of the header.
func (m *IOManager[K, V]) WriteRootPos(pos int64) error {
	return m.file.WriteInt64(rootPosOffset, pos)
}

// InvalidateRoot rewrites root_pos to InvalidRootPos.
func (m *IOManager[K, V]) InvalidateRoot() error {
	return m.WriteRootPos(InvalidRootPos)
}
