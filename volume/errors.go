package volume

import "github.com/pkg/errors"

// ErrAlreadyOpen is returned when a path already has an open Volume in
// this process. Volumes are never shared between handles: the second
// open must fail, not silently alias the first.
var ErrAlreadyOpen = errors.New("volume: path already open in this process")
