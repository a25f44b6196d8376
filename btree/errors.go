package btree

import "github.com/pkg/errors"

var (
	// ErrSchemaMismatch is returned when a file's header disagrees with the
	// degree or codec configuration a caller opened it with.
	ErrSchemaMismatch = errors.New("btree: schema mismatch")

	// ErrCorruptNode is returned when a node record fails a basic shape
	// check on read (used_keys exceeds capacity for the configured degree).
	ErrCorruptNode = errors.New("btree: corrupt node")

	// ErrCorruptOffset is returned when a stored offset falls outside the
	// file's written extent.
	ErrCorruptOffset = errors.New("btree: corrupt offset")
)
