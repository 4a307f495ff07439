package compress

import (
	"errors"
	"sync"

	"github.com/pierrec/lz4/v4"
)

// maxBlockSize bounds the output of a single decompression.
const maxBlockSize = 128 * 1024 * 1024

var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// LZ4Compressor compresses spilled arrays with the LZ4 block format.
//
// LZ4 blocks do not record their decompressed size. DecompressAppend uses the
// spare capacity of dst as the size hint, which the spill tier sets from the
// record header.
type LZ4Compressor struct{}

var (
	_ Codec              = (*LZ4Compressor)(nil)
	_ AppendDecompressor = (*LZ4Compressor)(nil)
)

// NewLZ4Compressor creates a new LZ4 compressor.
func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

// Compress compresses data into one LZ4 block.
//
// Incompressible input yields an empty result with a nil error; callers store
// such blocks raw.
func (c LZ4Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	dst := make([]byte, lz4.CompressBlockBound(len(data)))

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(data, dst)
	if err != nil {
		return nil, err
	}

	return dst[:n], nil
}

// Decompress decompresses one LZ4 block of unknown raw size.
//
// The output buffer starts at four times the block size and doubles on
// ErrInvalidSourceShortBuffer, up to 128MiB.
func (c LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	for size := len(data) * 4; size <= maxBlockSize; size *= 2 {
		buf := make([]byte, size)
		n, err := lz4.UncompressBlock(data, buf)
		if err == nil {
			return buf[:n], nil
		}
		if !errors.Is(err, lz4.ErrInvalidSourceShortBuffer) {
			return nil, err
		}
	}

	return nil, lz4.ErrInvalidSourceShortBuffer
}

// DecompressAppend decompresses data into the spare capacity of dst and
// returns the extended slice. Without spare capacity it falls back to
// Decompress and appends the result.
func (c LZ4Compressor) DecompressAppend(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	spare := dst[len(dst):cap(dst)]
	if len(spare) == 0 {
		out, err := c.Decompress(data)
		if err != nil {
			return dst, err
		}

		return append(dst, out...), nil
	}

	n, err := lz4.UncompressBlock(data, spare)
	if err != nil {
		return dst, err
	}

	return dst[:len(dst)+n], nil
}
