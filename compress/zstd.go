package compress

// ZstdCompressor provides Zstandard compression for spilled data point arrays.
//
// It trades compression speed for ratio, which suits arrays that are spilled once
// and read back rarely:
//   - Compression: ~5-20 ns/byte
//   - Decompression: ~2-5 ns/byte
//   - Typical ratio on float64 m/z arrays: 1.3:1 to 2:1
//
// The default build uses the pure Go implementation from klauspost/compress.
// Building with the gozstd tag (and cgo) switches to the libzstd bindings.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
