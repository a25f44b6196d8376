package mappedfile

import "errors"

// Sentinel errors. Callers should match against these with errors.Is; the
// wrapped cause (if any) is attached via github.com/pkg/errors at the
// boundary that first observed the underlying os/syscall failure.
var (
	// ErrIoError reports that creating, resizing, or mapping the backing
	// file failed.
	ErrIoError = errors.New("mappedfile: io error")

	// ErrOutOfBounds reports a positional read/write past the current
	// file size.
	ErrOutOfBounds = errors.New("mappedfile: out of bounds")

	// ErrClosed reports an operation attempted after Close.
	ErrClosed = errors.New("mappedfile: already closed")
)
