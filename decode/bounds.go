package decode

import (
	"io"
	"io/fs"
	"math"

	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/numpress"
)

const (
	// maxDeflateRatio bounds the expansion of a deflate stream: a 258 byte
	// match costs at least two bits.
	maxDeflateRatio = 1032

	// maxHalfBytesPerInt is the longest half-byte encoding of a 32-bit integer.
	maxHalfBytesPerInt = 9

	linearHeaderSize = numpress.FixedPointSize + 8
)

// mulInt returns a*b for non-negative operands, or false on overflow.
func mulInt(a, b int) (int, bool) {
	if a != 0 && b > math.MaxInt/a {
		return 0, false
	}

	return a * b, true
}

// addInt returns a+b for non-negative operands, or false on overflow.
func addInt(a, b int) (int, bool) {
	if a > math.MaxInt-b {
		return 0, false
	}

	return a + b, true
}

// rawSize returns the exact decompressed size of a non-numpress block.
func rawSize(desc Descriptor) (int, bool) {
	return mulInt(desc.ElementCount, desc.BitLength.Size())
}

// maxNumpressSize returns the largest stream a numpress encoder can produce
// for count values.
func maxNumpressSize(np format.NumpressScheme, count int) (int, bool) {
	switch np { //nolint: exhaustive
	case format.NumpressShortLog:
		n, ok := mulInt(count, 2)
		if !ok {
			return 0, false
		}

		return addInt(n, numpress.FixedPointSize)
	case format.NumpressLinear:
		n, ok := halfBytesSize(count)
		if !ok {
			return 0, false
		}

		return addInt(n, linearHeaderSize)
	default:
		return halfBytesSize(count)
	}
}

func halfBytesSize(count int) (int, bool) {
	n, ok := mulInt(count, maxHalfBytesPerInt)
	if !ok {
		return 0, false
	}

	return n/2 + 1, true
}

// maxNumpressCount returns the most values a numpress stream of size bytes can hold.
func maxNumpressCount(np format.NumpressScheme, size int) int {
	switch np { //nolint: exhaustive
	case format.NumpressShortLog:
		return max(size-numpress.FixedPointSize, 0) / 2
	case format.NumpressLinear:
		return 2 + 2*max(size-linearHeaderSize, 0)
	default:
		return 2 * size
	}
}

// inflateLimit returns the most bytes a zlib block described by desc may
// inflate to.
func inflateLimit(desc Descriptor) (int, bool) {
	if np := desc.Compression.Numpress(); np != format.NumpressNone {
		return maxNumpressSize(np, desc.ElementCount)
	}

	return rawSize(desc)
}

// sourceSize reports the size of r when r can tell it cheaply.
func sourceSize(r io.ReaderAt) (int64, bool) {
	switch src := r.(type) {
	case interface{ Size() int64 }:
		return src.Size(), true
	case interface{ Stat() (fs.FileInfo, error) }:
		fi, err := src.Stat()
		if err != nil || !fi.Mode().IsRegular() {
			return 0, false
		}

		return fi.Size(), true
	default:
		return 0, false
	}
}
