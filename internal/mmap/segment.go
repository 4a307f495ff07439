package mmap

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
)

// Segment is a fixed size scratch file mapped into memory for reading and writing.
type Segment struct {
	f      *os.File
	path   string
	data   []byte
	closed atomic.Bool
	unmap  func([]byte) error
}

// CreateSegment creates a scratch file of size bytes in dir and maps it.
//
// Parameters:
//   - dir: Directory for the backing file, os.TempDir() when empty
//   - size: Segment size in bytes, must be positive
//
// Returns:
//   - *Segment: The mapped segment
//   - error: ErrInvalidSize, or the file system or mmap error
func CreateSegment(dir string, size int) (*Segment, error) {
	if size <= 0 {
		return nil, ErrInvalidSize
	}

	f, err := os.CreateTemp(dir, "mzarray-spill-*.seg")
	if err != nil {
		return nil, fmt.Errorf("mmap: create segment file: %w", err)
	}

	cleanup := func(cause error) (*Segment, error) {
		_ = f.Close()
		_ = os.Remove(f.Name())

		return nil, cause
	}

	if err := f.Truncate(int64(size)); err != nil {
		return cleanup(fmt.Errorf("mmap: size segment file: %w", err))
	}

	data, unmapFunc, err := osMapRW(f, size)
	if err != nil {
		return cleanup(fmt.Errorf("mmap: map segment file: %w", err))
	}

	return &Segment{
		f:     f,
		path:  f.Name(),
		data:  data,
		unmap: unmapFunc,
	}, nil
}

// Bytes returns the mapped memory.
// The slice is valid only until Close is called.
func (s *Segment) Bytes() []byte {
	if s.closed.Load() {
		return nil
	}

	return s.data
}

// Slice returns the mapped bytes in [off, off+n).
func (s *Segment) Slice(off, n int) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	if off < 0 || n < 0 || off+n > len(s.data) {
		return nil, ErrOutOfBounds
	}

	return s.data[off : off+n : off+n], nil
}

// Size returns the segment size in bytes.
func (s *Segment) Size() int {
	return len(s.data)
}

// Path returns the backing file path.
func (s *Segment) Path() string {
	return s.path
}

// Advise provides hints to the kernel about how the range [off, off+n) will be accessed.
func (s *Segment) Advise(off, n int, pattern AccessPattern) error {
	b, err := s.Slice(off, n)
	if err != nil {
		return err
	}

	return osAdvise(b, pattern)
}

// Close unmaps the memory, closes and removes the backing file. It is idempotent.
func (s *Segment) Close() error {
	if s.closed.Swap(true) {
		return nil
	}

	var errList []error
	if s.unmap != nil && s.data != nil {
		errList = append(errList, s.unmap(s.data))
	}
	s.data = nil
	errList = append(errList, s.f.Close(), os.Remove(s.path))

	return errors.Join(errList...)
}
