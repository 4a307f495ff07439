package compress

// NoOpCompressor stores blocks unchanged. It backs format.CodecNone, the
// default spill codec.
type NoOpCompressor struct{}

var (
	_ Codec              = (*NoOpCompressor)(nil)
	_ AppendDecompressor = (*NoOpCompressor)(nil)
)

// NewNoOpCompressor creates a new no-op compressor.
func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

// Compress returns data itself. The result aliases the input.
func (c NoOpCompressor) Compress(data []byte) ([]byte, error) {
	return data, nil
}

// Decompress returns data itself. The result aliases the input.
func (c NoOpCompressor) Decompress(data []byte) ([]byte, error) {
	return data, nil
}

// DecompressAppend appends a copy of data to dst.
func (c NoOpCompressor) DecompressAppend(dst, data []byte) ([]byte, error) {
	return append(dst, data...), nil
}
