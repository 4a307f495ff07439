package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/mzarray/errs"
)

// zlibWriterPool pools zlib writers; Reset makes them reusable for every block.
var zlibWriterPool = sync.Pool{
	New: func() any {
		return zlib.NewWriter(nil)
	},
}

// zlibReaderPool pools zlib readers. A pooled reader is reinitialized with
// zlib.Resetter before each use.
var zlibReaderPool sync.Pool

// ZlibCompressor implements RFC 1950 zlib streams, the compression used by mzML
// binary data arrays (MS:1000574) and by the zlib numpress variants.
type ZlibCompressor struct{}

var (
	_ Codec              = (*ZlibCompressor)(nil)
	_ AppendDecompressor = (*ZlibCompressor)(nil)
)

// NewZlibCompressor creates a new zlib compressor.
func NewZlibCompressor() ZlibCompressor {
	return ZlibCompressor{}
}

// Compress compresses the input data into a zlib stream with the default level.
func (c ZlibCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, _ := zlibWriterPool.Get().(*zlib.Writer)
	defer zlibWriterPool.Put(w)

	w.Reset(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decompress inflates a zlib stream.
//
// A truncated stream, a bad header or an Adler-32 mismatch is reported as
// errs.ErrCorruptData.
func (c ZlibCompressor) Decompress(data []byte) ([]byte, error) {
	return c.DecompressAppend(nil, data)
}

// DecompressAppend inflates a zlib stream and appends the result to dst.
//
// Parameters:
//   - dst: Destination buffer, may be nil or a pooled buffer with length zero
//   - data: Complete zlib stream
//
// Returns:
//   - []byte: dst extended with the inflated bytes
//   - error: errs.ErrCorruptData for damaged or truncated streams
func (c ZlibCompressor) DecompressAppend(dst, data []byte) ([]byte, error) {
	return c.inflate(dst, data, -1)
}

// DecompressAppendLimit is DecompressAppend for streams whose inflated size is
// known up front. Inflation stops once more than limit bytes are produced.
//
// Parameters:
//   - dst: Destination buffer, may be nil or a pooled buffer with length zero
//   - data: Complete zlib stream
//   - limit: Maximum number of inflated bytes; must not be negative
//
// Returns:
//   - []byte: dst extended with at most limit inflated bytes
//   - error: errs.ErrCorruptData for damaged streams or streams that inflate
//     past limit
func (c ZlibCompressor) DecompressAppendLimit(dst, data []byte, limit int) ([]byte, error) {
	if limit < 0 {
		return dst, fmt.Errorf("compress: negative zlib inflate limit %d", limit)
	}

	return c.inflate(dst, data, limit)
}

// inflate decompresses data into dst; a negative limit means unbounded.
func (c ZlibCompressor) inflate(dst, data []byte, limit int) ([]byte, error) {
	if len(data) == 0 {
		return dst, fmt.Errorf("%w: empty zlib stream", errs.ErrCorruptData)
	}

	src := bytes.NewReader(data)

	var (
		r   io.ReadCloser
		err error
	)
	if pooled, ok := zlibReaderPool.Get().(io.ReadCloser); ok {
		r = pooled
		err = r.(zlib.Resetter).Reset(src, nil)
	} else {
		r, err = zlib.NewReader(src)
	}
	if err != nil {
		return dst, corruptZlib(err)
	}
	defer zlibReaderPool.Put(r)

	var in io.Reader = r
	if limit >= 0 {
		// one byte past the limit tells an exact fit from an overflow
		in = io.LimitReader(r, int64(limit)+1)
	}

	out := bytes.NewBuffer(dst)
	n, err := out.ReadFrom(in)
	if err != nil {
		return dst, corruptZlib(err)
	}

	if limit >= 0 && n > int64(limit) {
		return dst, fmt.Errorf("%w: zlib: stream inflates beyond %d bytes", errs.ErrCorruptData, limit)
	}

	// the checksum is verified when the reader reaches EOF, which ReadFrom guarantees
	if err := r.Close(); err != nil {
		return dst, corruptZlib(err)
	}

	return out.Bytes(), nil
}

func corruptZlib(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}

	return fmt.Errorf("%w: zlib: %w", errs.ErrCorruptData, err)
}
