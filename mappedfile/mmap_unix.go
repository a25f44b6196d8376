//go:build unix || darwin || linux

package mappedfile

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

// mapFile maps the first size bytes of the backing file into mf.data.
func (mf *MappedFile) mapFile(size int64) error {
	data, err := syscall.Mmap(int(mf.fp.Fd()), 0, int(size), syscall.PROT_READ|syscall.PROT_WRITE, syscall.MAP_SHARED)
	if err != nil {
		return errors.Wrapf(ErrIoError, "mmap %s: %v", mf.path, err)
	}
	mf.data = data
	return nil
}

// unmapFile releases the current mapping.
func (mf *MappedFile) unmapFile() error {
	if mf.data == nil {
		return nil
	}
	err := syscall.Munmap(mf.data)
	mf.data = nil
	if err != nil {
		return errors.Wrapf(ErrIoError, "munmap %s: %v", mf.path, err)
	}
	return nil
}

// sync flushes the mapping to disk via msync(MS_SYNC). Not part of the
// public contract — close does not promise an fsync — but kept available
// for callers that want a durability point mid-session.
func (mf *MappedFile) sync() error {
	if mf.data == nil {
		return nil
	}
	_, _, errno := syscall.Syscall(syscall.SYS_MSYNC,
		uintptr(unsafe.Pointer(&mf.data[0])),
		uintptr(len(mf.data)),
		uintptr(syscall.MS_SYNC))
	if errno != 0 {
		return errors.Wrapf(ErrIoError, "msync %s: %v", mf.path, errno)
	}
	return nil
}
