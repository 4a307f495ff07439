package pool

import "sync"

// Typed scratch slices for decode paths that need an intermediate numeric array.
var (
	float64SlicePool = sync.Pool{
		New: func() any { return &[]float64{} },
	}
	float32SlicePool = sync.Pool{
		New: func() any { return &[]float32{} },
	}
)

// GetFloat64Slice retrieves a float64 slice of exactly size elements from the pool.
//
// If the pooled slice has insufficient capacity, a new slice is allocated.
// Contents are not cleared. The caller must call the returned cleanup function
// to return the slice to the pool.
//
// Parameters:
//   - size: The desired length of the slice
//
// Returns:
//   - []float64: A slice with length equal to size
//   - func(): Cleanup function that must be called (typically with defer)
//
// Example:
//
//	scratch, cleanup := pool.GetFloat64Slice(n)
//	defer cleanup()
func GetFloat64Slice(size int) ([]float64, func()) {
	ptr, _ := float64SlicePool.Get().(*[]float64)
	if cap(*ptr) < size {
		*ptr = make([]float64, size)
	} else {
		*ptr = (*ptr)[:size]
	}

	return *ptr, func() { float64SlicePool.Put(ptr) }
}

// GetFloat32Slice retrieves a float32 slice of exactly size elements from the pool.
// See GetFloat64Slice.
func GetFloat32Slice(size int) ([]float32, func()) {
	ptr, _ := float32SlicePool.Get().(*[]float32)
	if cap(*ptr) < size {
		*ptr = make([]float32, size)
	} else {
		*ptr = (*ptr)[:size]
	}

	return *ptr, func() { float32SlicePool.Put(ptr) }
}
