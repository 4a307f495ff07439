package compress

import (
	"fmt"

	"github.com/arloliu/mzarray/format"
)

// Compressor compresses one block of bytes.
//
// Blocks handled by mzarray are either the zlib stage of an mzML binary array
// (typically 1KB-1MB) or a spilled data point array written to a scratch segment.
type Compressor interface {
	// Compress compresses the input data and returns the compressed result.
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	//   - Internal buffers may be reused for efficiency
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses one block of bytes.
//
// Example:
//
//	decompressor := compress.NewZlibCompressor()
//	original, err := decompressor.Decompress(block)
//	if err != nil {
//	    return fmt.Errorf("decompression failed: %w", err)
//	}
//
// Thread Safety: Decompressor implementations are safe for concurrent use.
type Decompressor interface {
	// Decompress decompresses the input data and returns the original result.
	//
	// Error conditions:
	//   - Returns error if input data is corrupted or truncated
	//   - Returns error if data was compressed with an incompatible algorithm
	//
	// Memory management:
	//   - Returned slice is newly allocated and owned by the caller
	//   - Input slice is not modified
	Decompress(data []byte) ([]byte, error)
}

// AppendDecompressor is implemented by decompressors that can write into a
// caller supplied buffer, which lets the decoder reuse pooled scratch memory.
type AppendDecompressor interface {
	// DecompressAppend decompresses data, appends the result to dst and returns
	// the extended slice.
	DecompressAppend(dst, data []byte) ([]byte, error)
}

// Codec combines both compression and decompression capabilities.
type Codec interface {
	Compressor
	Decompressor
}

// CompressionStats describes one compression operation.
//
// The data point store reports these for spilled arrays.
type CompressionStats struct {
	// Algorithm identifies the codec used
	Algorithm format.CodecType

	// OriginalSize is the size of input data before compression
	OriginalSize int64

	// CompressedSize is the size of data after compression
	CompressedSize int64
}

// CompressionRatio returns the compression ratio (compressed size / original size).
//
// Returns:
//   - float64: Compression ratio (0.0 if original size is zero)
func (s CompressionStats) CompressionRatio() float64 {
	if s.OriginalSize == 0 {
		return 0.0
	}

	return float64(s.CompressedSize) / float64(s.OriginalSize)
}

// SpaceSavings returns the space savings as a percentage (0-100%).
func (s CompressionStats) SpaceSavings() float64 {
	return (1.0 - s.CompressionRatio()) * 100.0
}

// CreateCodec is a factory function that creates a Codec based on the specified codec type.
//
// Parameters:
//   - codecType: Type of compression (None, Zlib, Zstd, S2 or LZ4)
//   - target: Description of target usage (for error messages)
//
// Returns:
//   - Codec: Codec instance for the specified type
//   - error: Invalid codec type error
func CreateCodec(codecType format.CodecType, target string) (Codec, error) {
	switch codecType {
	case format.CodecNone:
		return NewNoOpCompressor(), nil
	case format.CodecZlib:
		return NewZlibCompressor(), nil
	case format.CodecZstd:
		return NewZstdCompressor(), nil
	case format.CodecS2:
		return NewS2Compressor(), nil
	case format.CodecLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s codec: %s", target, codecType)
	}
}

var builtinCodecs = map[format.CodecType]Codec{
	format.CodecNone: NewNoOpCompressor(),
	format.CodecZlib: NewZlibCompressor(),
	format.CodecZstd: NewZstdCompressor(),
	format.CodecS2:   NewS2Compressor(),
	format.CodecLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves a built-in Codec for the specified codec type.
func GetCodec(codecType format.CodecType) (Codec, error) {
	if codec, ok := builtinCodecs[codecType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported codec type: %s", codecType)
}
