//go:build windows

package mappedfile

import (
	"syscall"
	"unsafe"

	"github.com/pkg/errors"
)

var (
	modkernel32           = syscall.NewLazyDLL("kernel32.dll")
	procCreateFileMapping = modkernel32.NewProc("CreateFileMappingW")
	procMapViewOfFile     = modkernel32.NewProc("MapViewOfFile")
	procUnmapViewOfFile   = modkernel32.NewProc("UnmapViewOfFile")
	procFlushViewOfFile   = modkernel32.NewProc("FlushViewOfFile")
)

const (
	pageReadWrite = 0x04
	fileMapRead   = 0x04
	fileMapWrite  = 0x02
)

// mapFile maps the first size bytes of the backing file using the Windows
// file-mapping API.
func (mf *MappedFile) mapFile(size int64) error {
	handle := syscall.Handle(mf.fp.Fd())

	sizeLow := uint32(size)
	sizeHigh := uint32(size >> 32)

	mapHandle, _, callErr := procCreateFileMapping.Call(
		uintptr(handle), 0, uintptr(pageReadWrite), uintptr(sizeHigh), uintptr(sizeLow), 0,
	)
	if mapHandle == 0 {
		return errors.Wrapf(ErrIoError, "CreateFileMapping %s: %v", mf.path, callErr)
	}

	addr, _, callErr := procMapViewOfFile.Call(mapHandle, uintptr(fileMapWrite|fileMapRead), 0, 0, uintptr(size))
	if addr == 0 {
		syscall.CloseHandle(syscall.Handle(mapHandle))
		return errors.Wrapf(ErrIoError, "MapViewOfFile %s: %v", mf.path, callErr)
	}

	mf.mapHandle = mapHandle
	mf.data = unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	return nil
}

// unmapFile releases the current mapping.
func (mf *MappedFile) unmapFile() error {
	if mf.data == nil {
		return nil
	}

	addr := uintptr(unsafe.Pointer(&mf.data[0]))
	if ret, _, callErr := procUnmapViewOfFile.Call(addr); ret == 0 {
		return errors.Wrapf(ErrIoError, "UnmapViewOfFile %s: %v", mf.path, callErr)
	}

	if mf.mapHandle != 0 {
		syscall.CloseHandle(syscall.Handle(mf.mapHandle))
		mf.mapHandle = 0
	}

	mf.data = nil
	return nil
}

// sync flushes the mapping to disk.
func (mf *MappedFile) sync() error {
	if mf.data == nil {
		return nil
	}
	addr := uintptr(unsafe.Pointer(&mf.data[0]))
	if ret, _, callErr := procFlushViewOfFile.Call(addr, uintptr(len(mf.data))); ret == 0 {
		return errors.Wrapf(ErrIoError, "FlushViewOfFile %s: %v", mf.path, callErr)
	}
	return nil
}
