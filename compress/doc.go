// Package compress provides the block codecs used by mzarray.
//
// Two parts of the system compress blocks:
//
//  1. The array decoder inflates the zlib stage of mzML binary data arrays
//     (MS:1000574 and the zlib numpress variants) with ZlibCompressor.
//  2. The data point store can compress arrays it spills to scratch segments
//     with any of the codecs below, selected by format.CodecType.
//
// # Architecture
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// ZlibCompressor additionally implements AppendDecompressor, so the decoder can
// inflate straight into a pooled scratch buffer.
//
// # Supported Algorithms
//
//   - None (format.CodecNone): returns data unchanged
//   - Zlib (format.CodecZlib): klauspost/compress/zlib, RFC 1950 with Adler-32
//   - Zstd (format.CodecZstd): klauspost/compress/zstd, or libzstd with the gozstd tag
//   - S2 (format.CodecS2): klauspost/compress/s2
//   - LZ4 (format.CodecLZ4): pierrec/lz4 block format
//
// # Thread Safety
//
// All codecs are stateless values; encoder and decoder state is pooled with
// sync.Pool, so every codec is safe for concurrent use.
package compress
