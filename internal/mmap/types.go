package mmap

import "errors"

// AccessPattern provides hints to the kernel about how the data will be accessed.
type AccessPattern int

const (
	// AccessDefault is the default access pattern (no specific advice).
	AccessDefault AccessPattern = iota
	// AccessSequential expects data to be accessed sequentially.
	AccessSequential
	// AccessRandom expects data to be accessed randomly.
	AccessRandom
	// AccessDontNeed expects data to not be accessed in the near future.
	AccessDontNeed
)

var (
	// ErrClosed is returned when attempting to access a closed segment.
	ErrClosed = errors.New("mmap: segment is closed")
	// ErrInvalidSize is returned for non-positive segment sizes.
	ErrInvalidSize = errors.New("mmap: invalid segment size")
	// ErrOutOfBounds is returned when accessing a range outside the segment.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
)
