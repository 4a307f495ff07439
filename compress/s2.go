package compress

import "github.com/klauspost/compress/s2"

// S2Compressor compresses spilled arrays with S2, the fastest codec available
// to the spill tier.
type S2Compressor struct{}

var (
	_ Codec              = (*S2Compressor)(nil)
	_ AppendDecompressor = (*S2Compressor)(nil)
)

// NewS2Compressor creates a new S2 compressor.
func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

// Compress compresses data into one S2 block.
func (c S2Compressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Encode(nil, data), nil
}

// Decompress decompresses one S2 block.
func (c S2Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	return s2.Decode(nil, data)
}

// DecompressAppend decompresses one S2 block and appends it to dst.
func (c S2Compressor) DecompressAppend(dst, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return dst, nil
	}

	n, err := s2.DecodedLen(data)
	if err != nil {
		return dst, err
	}

	start := len(dst)
	if cap(dst)-start < n {
		grown := make([]byte, start, start+n)
		copy(grown, dst)
		dst = grown
	}

	out, err := s2.Decode(dst[start:start+n], data)
	if err != nil {
		return dst, err
	}

	return dst[:start+len(out)], nil
}
