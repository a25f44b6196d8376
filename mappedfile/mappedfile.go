package mappedfile

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
)

// MappedFile owns a single backing file and a memory mapping over it. All
// access is positional: callers pass an explicit byte offset on every
// call, there is no shared read/write cursor.
type MappedFile struct {
	path     string
	fp       *os.File
	data     []byte // current mapping, len == capacity
	capacity int64  // mapped capacity; a multiple of BlockSize, except after ShrinkToFit sets it to size
	size     int64  // high-water mark of bytes actually written
	cache    *blockCache
	closed   bool

	mapHandle uintptr // Windows file mapping handle; unused on Unix
}

// Open creates the file at path (sized to initialBytes) if it does not
// exist, or opens it and queries its size if it does. A brand-new empty
// file is not mapped until the first write grows it.
func Open(path string, initialBytes int64) (*MappedFile, error) {
	fp, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, errors.Wrapf(ErrIoError, "open %s: %v", path, err)
	}

	info, err := fp.Stat()
	if err != nil {
		fp.Close()
		return nil, errors.Wrapf(ErrIoError, "stat %s: %v", path, err)
	}

	mf := &MappedFile{
		path:  path,
		fp:    fp,
		cache: newBlockCache(MaxCachedBlocks),
	}

	size := info.Size()
	if size == 0 && initialBytes <= 0 {
		mf.size = 0
		mf.capacity = 0
		return mf, nil
	}

	want := size
	if initialBytes > want {
		want = initialBytes
	}
	want = alignUp(want, BlockSize)

	if info.Size() != want {
		if err := fp.Truncate(want); err != nil {
			fp.Close()
			return nil, errors.Wrapf(ErrIoError, "truncate %s: %v", path, err)
		}
	}

	if want > 0 {
		if err := mf.mapFile(want); err != nil {
			fp.Close()
			return nil, err
		}
	}

	mf.capacity = want
	mf.size = size

	return mf, nil
}

func alignUp(n int64, align int64) int64 {
	if n%align == 0 {
		return n
	}
	return ((n / align) + 1) * align
}

// IsEmpty reports whether any bytes have ever been written to the file.
func (mf *MappedFile) IsEmpty() bool { return mf.size == 0 }

// EndPos returns the append point: the offset one past the last byte
// written so far.
func (mf *MappedFile) EndPos() int64 { return mf.size }

// ensure grows the mapping, doubling capacity (or growing to end,
// whichever is larger) and aligning up to BlockSize, then remaps.
func (mf *MappedFile) ensure(end int64) error {
	if end <= mf.capacity {
		return nil
	}

	newCap := mf.capacity * 2
	if newCap < end {
		newCap = end
	}
	newCap = alignUp(newCap, BlockSize)

	if err := mf.fp.Truncate(newCap); err != nil {
		return errors.Wrapf(ErrIoError, "resize %s: %v", mf.path, err)
	}

	if mf.data != nil {
		if err := mf.unmapFile(); err != nil {
			return err
		}
	}
	if err := mf.mapFile(newCap); err != nil {
		return err
	}

	mf.capacity = newCap
	mf.cache.clear()
	return nil
}

func (mf *MappedFile) bumpSize(end int64) {
	if end > mf.size {
		mf.size = end
	}
}

// blockFor returns the cached block covering file-level byte offset pos,
// mapping it into the cache on a miss. The returned block's data slice
// aliases the live mapping, so writes through it are writes to the file.
func (mf *MappedFile) blockFor(pos int64) *block {
	idx := blockIndex(pos / BlockSize)
	if blk, ok := mf.cache.get(idx); ok {
		return blk
	}
	start := int64(idx) * BlockSize
	end := start + BlockSize
	if end > int64(len(mf.data)) {
		end = int64(len(mf.data))
	}
	blk := &block{index: idx, data: mf.data[start:end]}
	mf.cache.put(blk)
	return blk
}

// forEachBlock walks the block-aligned segments covering [pos, pos+n) and
// invokes fn with the destination slice within each block's window.
func (mf *MappedFile) forEachBlock(pos int64, n int, fn func(dst []byte, blockOff int)) {
	remaining := n
	cur := pos
	for remaining > 0 {
		blk := mf.blockFor(cur)
		blockOff := int(cur % BlockSize)
		chunk := len(blk.data) - blockOff
		if chunk > remaining {
			chunk = remaining
		}
		fn(blk.data[blockOff:blockOff+chunk], blockOff)
		cur += int64(chunk)
		remaining -= chunk
	}
}

// WriteAt writes data at pos, growing the file if necessary.
func (mf *MappedFile) WriteAt(pos int64, data []byte) error {
	if mf.closed {
		return ErrClosed
	}
	end := pos + int64(len(data))
	if err := mf.ensure(end); err != nil {
		return err
	}
	written := 0
	mf.forEachBlock(pos, len(data), func(dst []byte, _ int) {
		written += copy(dst, data[written:])
	})
	mf.bumpSize(end)
	return nil
}

// ReadAt reads length bytes at pos. Reading past EndPos is OutOfBounds.
func (mf *MappedFile) ReadAt(pos int64, length int) ([]byte, error) {
	if mf.closed {
		return nil, ErrClosed
	}
	end := pos + int64(length)
	if pos < 0 || end > mf.size {
		return nil, errors.Wrapf(ErrOutOfBounds, "read [%d,%d) size=%d", pos, end, mf.size)
	}
	out := make([]byte, length)
	read := 0
	mf.forEachBlock(pos, length, func(src []byte, _ int) {
		read += copy(out[read:], src)
	})
	return out, nil
}

// Append writes data at EndPos and returns the offset it was written at.
func (mf *MappedFile) Append(data []byte) (int64, error) {
	pos := mf.size
	if err := mf.WriteAt(pos, data); err != nil {
		return 0, err
	}
	return pos, nil
}

// WriteUint8 writes a single byte at pos.
func (mf *MappedFile) WriteUint8(pos int64, v uint8) error {
	return mf.WriteAt(pos, []byte{v})
}

// ReadUint8 reads a single byte at pos.
func (mf *MappedFile) ReadUint8(pos int64) (uint8, error) {
	b, err := mf.ReadAt(pos, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteUint16 writes a little-endian uint16 at pos.
func (mf *MappedFile) WriteUint16(pos int64, v uint16) error {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return mf.WriteAt(pos, buf)
}

// ReadUint16 reads a little-endian uint16 at pos.
func (mf *MappedFile) ReadUint16(pos int64) (uint16, error) {
	buf, err := mf.ReadAt(pos, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// WriteInt64 writes a little-endian int64 at pos.
func (mf *MappedFile) WriteInt64(pos int64, v int64) error {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return mf.WriteAt(pos, buf)
}

// ReadInt64 reads a little-endian int64 at pos.
func (mf *MappedFile) ReadInt64(pos int64) (int64, error) {
	buf, err := mf.ReadAt(pos, 8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// WriteVectorRaw writes raw bytes at pos with no length prefix — used for
// the node's key-offset/child-offset tables, whose length the caller
// always knows from the tree's degree.
func (mf *MappedFile) WriteVectorRaw(pos int64, raw []byte) error {
	return mf.WriteAt(pos, raw)
}

// ReadVectorRaw reads totalLen raw bytes at pos with no length prefix.
func (mf *MappedFile) ReadVectorRaw(pos int64, totalLen int) ([]byte, error) {
	return mf.ReadAt(pos, totalLen)
}

// WriteBlob writes a 4-byte little-endian length prefix followed by
// payload, and returns the offset just past it.
func (mf *MappedFile) WriteBlob(pos int64, payload []byte) (int64, error) {
	header := make([]byte, 4)
	binary.LittleEndian.PutUint32(header, uint32(len(payload)))
	if err := mf.WriteAt(pos, header); err != nil {
		return 0, err
	}
	if err := mf.WriteAt(pos+4, payload); err != nil {
		return 0, err
	}
	return pos + 4 + int64(len(payload)), nil
}

// ReadBlob reads a length-prefixed blob at pos and returns it along with
// the offset just past it.
func (mf *MappedFile) ReadBlob(pos int64) ([]byte, int64, error) {
	header, err := mf.ReadAt(pos, 4)
	if err != nil {
		return nil, 0, err
	}
	length := int(binary.LittleEndian.Uint32(header))
	payload, err := mf.ReadAt(pos+4, length)
	if err != nil {
		return nil, 0, err
	}
	return payload, pos + 4 + int64(length), nil
}

// ResetSize lowers the tracked high-water mark to n without touching the
// file on disk. Only meaningful immediately before ShrinkToFit: once a
// b-tree empties entirely, every byte beyond the header is dead, and the
// tree is allowed to reclaim all of it rather than just the capacity slack.
func (mf *MappedFile) ResetSize(n int64) {
	mf.size = n
}

// ShrinkToFit truncates the backing file down to EndPos, discarding any
// slack left over from capacity doubling.
func (mf *MappedFile) ShrinkToFit() error {
	if mf.closed {
		return ErrClosed
	}
	if mf.data != nil {
		if err := mf.unmapFile(); err != nil {
			return err
		}
	}
	if err := mf.fp.Truncate(mf.size); err != nil {
		return errors.Wrapf(ErrIoError, "shrink %s: %v", mf.path, err)
	}
	mf.capacity = mf.size
	mf.cache.clear()
	if mf.size > 0 {
		return mf.mapFile(mf.size)
	}
	return nil
}

// Close shrinks the file to its high-water mark, unmaps it, and closes
// the file descriptor. A failure to shrink the file is ignored: it is
// neither returned nor logged, and the file may keep its capacity slack.
func (mf *MappedFile) Close() error {
	if mf.closed {
		return nil
	}
	if err := mf.ShrinkToFit(); err != nil {
		// best-effort: still unmap/close the descriptor below.
		_ = err
	}
	if mf.data != nil {
		_ = mf.unmapFile()
	}
	mf.closed = true
	return mf.fp.Close()
}
