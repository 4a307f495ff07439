package store

import "fmt"

// Handle is an opaque reference to an array in a Store.
type Handle uint64

// InvalidHandle is the zero Handle. No store ever issues it.
const InvalidHandle Handle = 0

func newHandle(index, gen uint32) Handle {
	return Handle(uint64(index)<<32 | uint64(gen))
}

func (h Handle) index() uint32 {
	return uint32(h >> 32)
}

func (h Handle) gen() uint32 {
	return uint32(h) //nolint:gosec // low 32 bits
}

// IsValid reports whether h could have been issued by a store.
// It does not check that the array is still live.
func (h Handle) IsValid() bool {
	return h.gen() != 0
}

func (h Handle) String() string {
	if !h.IsValid() {
		return "Handle(invalid)"
	}

	return fmt.Sprintf("Handle(%d@%d)", h.index(), h.gen())
}
