// Package codec provides the fixed-width and blob encodings used to turn
// tree keys and values into the bytes the on-disk B-tree actually stores.
//
// A KeyCodec always produces a fixed number of bytes per key (the header's
// key_size field records that width). A ValueCodec is selected once, when a
// tree is opened, and is either a fixed-width primitive codec or a
// length-prefixed blob codec; the header's value_type_code records which
// variant the file was created with so a later reopen can refuse a
// mismatched schema instead of silently misreading the file.
package codec
