package decode

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/compress"
	"github.com/arloliu/mzarray/endian"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/numpress"
)

// Binary array payloads are always little-endian.
var le = endian.GetLittleEndianEngine()

// Decoder decodes binary array blocks. It is safe for concurrent use.
type Decoder struct {
	*DecoderConfig
	zlib compress.ZlibCompressor
}

// NewDecoder creates a Decoder.
//
// Parameters:
//   - opts: Optional configuration (buffer pool, logger, recorder, IO controller)
//
// Returns:
//   - *Decoder: The decoder
//   - error: Configuration error if an option is invalid
func NewDecoder(opts ...DecoderOption) (*Decoder, error) {
	cfg := newDecoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Decoder{DecoderConfig: cfg, zlib: compress.NewZlibCompressor()}, nil
}

// Decode decodes one encoded block.
//
// Parameters:
//   - desc: Descriptor of the block
//   - encoded: The encoded block, exactly as found in the file
//
// Returns:
//   - Array: The decoded array with desc.ElementCount elements in the role's precision
//   - error: ErrInvalidDescriptor, ErrUnsupportedCompression, ErrUnsupportedBitLength
//     or ErrCorruptData; no array is produced on error
func (d *Decoder) Decode(desc Descriptor, encoded []byte) (Array, error) {
	start := time.Now()
	arr, err := d.decode(desc, encoded)
	d.recorder.ObserveDecode(desc.Compression, len(encoded), desc.ElementCount, time.Since(start), err)

	if err != nil {
		d.logger.Debug("binary array decode failed",
			zap.Int64("offset", desc.Offset),
			zap.Int("encoded_length", len(encoded)),
			zap.Int("element_count", desc.ElementCount),
			zap.Stringer("compression", desc.Compression),
			zap.Stringer("role", desc.Role),
			zap.Error(err),
		)

		return Array{}, err
	}

	return arr, nil
}

// ReadAndDecode reads the block described by desc from r and decodes it.
//
// A descriptor with zero elements yields an empty array without reading.
// A block that extends past the end of r is reported as ErrCorruptData; when r
// can report its size this is detected before any buffer is allocated.
func (d *Decoder) ReadAndDecode(ctx context.Context, r io.ReaderAt, desc Descriptor) (Array, error) {
	if err := desc.Validate(); err != nil {
		return Array{}, err
	}

	if desc.ElementCount == 0 {
		return emptyArray(desc.Precision()), nil
	}

	if err := ctx.Err(); err != nil {
		return Array{}, err
	}

	size, sized := sourceSize(r)
	if sized && (desc.Offset > size || int64(desc.EncodedLength) > size-desc.Offset) {
		return Array{}, fmt.Errorf("%w: block at offset %d: %d bytes extend past the %d byte source",
			errs.ErrCorruptData, desc.Offset, desc.EncodedLength, size)
	}

	if err := d.io.AcquireIO(ctx, desc.EncodedLength); err != nil {
		return Array{}, err
	}

	var (
		buf *pool.ByteBuffer
		n   int
		err error
	)
	if sized {
		buf = d.pool.AcquireSize(desc.EncodedLength)
		buf.SetLength(desc.EncodedLength)
		n, err = r.ReadAt(buf.B, desc.Offset)
	} else {
		// unknown source size: grow with the data actually read
		buf = d.pool.Acquire()
		var read int64
		read, err = buf.ReadFrom(io.NewSectionReader(r, desc.Offset, int64(desc.EncodedLength)))
		n = int(read)
	}
	defer d.pool.Release(buf)

	if n < desc.EncodedLength {
		if err == nil || errors.Is(err, io.EOF) {
			return Array{}, fmt.Errorf("%w: block at offset %d: read %d of %d bytes",
				errs.ErrCorruptData, desc.Offset, n, desc.EncodedLength)
		}

		return Array{}, fmt.Errorf("read block at offset %d: %w", desc.Offset, err)
	}

	return d.Decode(desc, buf.B[:desc.EncodedLength])
}

func (d *Decoder) decode(desc Descriptor, encoded []byte) (Array, error) {
	if err := desc.Validate(); err != nil {
		return Array{}, err
	}

	if desc.ElementCount == 0 {
		return emptyArray(desc.Precision()), nil
	}

	if len(encoded) != desc.EncodedLength {
		return Array{}, fmt.Errorf("%w: block at offset %d: got %d bytes, descriptor says %d",
			errs.ErrCorruptData, desc.Offset, len(encoded), desc.EncodedLength)
	}

	raw := encoded

	if desc.framing() == format.FramingBase64 {
		buf := d.pool.AcquireSize(base64.StdEncoding.DecodedLen(len(encoded)))
		defer d.pool.Release(buf)

		n, err := base64.StdEncoding.Decode(buf.B[:cap(buf.B)], encoded)
		if err != nil {
			return Array{}, fmt.Errorf("%w: base64 at offset %d: %w", errs.ErrCorruptData, desc.Offset, err)
		}
		raw = buf.B[:n]
	}

	if desc.Compression.IsZlib() {
		limit, ok := inflateLimit(desc)
		if !ok {
			return Array{}, fmt.Errorf("%w: block at offset %d: %d elements overflow the decoded size",
				errs.ErrCorruptData, desc.Offset, desc.ElementCount)
		}

		var buf *pool.ByteBuffer
		if desc.Compression.Numpress() == format.NumpressNone {
			if bound, ok := mulInt(len(raw), maxDeflateRatio); ok && limit > bound {
				return Array{}, fmt.Errorf("%w: block at offset %d: %d zlib bytes cannot inflate to %d",
					errs.ErrCorruptData, desc.Offset, len(raw), limit)
			}
			buf = d.pool.AcquireSize(limit)
		} else {
			buf = d.pool.Acquire()
		}
		defer d.pool.Release(buf)

		out, err := d.zlib.DecompressAppendLimit(buf.B[:0], raw, limit)
		if err != nil {
			return Array{}, fmt.Errorf("block at offset %d: %w", desc.Offset, err)
		}
		buf.B = out
		raw = out
	}

	if desc.Compression.Numpress() != format.NumpressNone {
		return decodeNumpress(desc, raw)
	}

	return decodeRaw(desc, raw)
}

// decodeRaw reinterprets raw as ElementCount little-endian values of desc.BitLength.
func decodeRaw(desc Descriptor, raw []byte) (Array, error) {
	count := desc.ElementCount
	if want, ok := rawSize(desc); !ok || len(raw) != want {
		return Array{}, fmt.Errorf("%w: block at offset %d: %d bytes do not hold %d %s elements",
			errs.ErrCorruptData, desc.Offset, len(raw), count, desc.BitLength)
	}

	if desc.Precision() == format.PrecisionFloat32 {
		out := make([]float32, count)

		switch desc.BitLength { //nolint: exhaustive
		case format.BitLengthFloat32:
			endian.DecodeFloat32s(le, out, raw)
		case format.BitLengthFloat16:
			endian.DecodeFloat16s(le, out, raw)
		default:
			wide, cleanup := pool.GetFloat64Slice(count)
			defer cleanup()
			decodeWide(desc.BitLength, wide, raw)
			Narrow(out, wide)
		}

		return NewFloat32Array(out), nil
	}

	out := make([]float64, count)

	switch desc.BitLength { //nolint: exhaustive
	case format.BitLengthFloat32, format.BitLengthFloat16:
		narrow, cleanup := pool.GetFloat32Slice(count)
		defer cleanup()
		if desc.BitLength == format.BitLengthFloat32 {
			endian.DecodeFloat32s(le, narrow, raw)
		} else {
			endian.DecodeFloat16s(le, narrow, raw)
		}
		widen(out, narrow)
	default:
		decodeWide(desc.BitLength, out, raw)
	}

	return NewFloat64Array(out), nil
}

// decodeWide decodes the 64-bit float and integer representations.
func decodeWide(b format.BitLength, dst []float64, raw []byte) {
	switch b { //nolint: exhaustive
	case format.BitLengthFloat64:
		endian.DecodeFloat64s(le, dst, raw)
	case format.BitLengthInt32:
		endian.DecodeInt32s(le, dst, raw)
	case format.BitLengthInt64:
		endian.DecodeInt64s(le, dst, raw)
	}
}

func decodeNumpress(desc Descriptor, raw []byte) (Array, error) {
	count := desc.ElementCount
	if limit := maxNumpressCount(desc.Compression.Numpress(), len(raw)); count > limit {
		return Array{}, fmt.Errorf("%w: block at offset %d: %d %s bytes hold at most %d elements, want %d",
			errs.ErrCorruptData, desc.Offset, len(raw), desc.Compression, limit, count)
	}

	var decodeFn func([]float64, []byte) ([]float64, error)
	switch desc.Compression.Numpress() { //nolint: exhaustive
	case format.NumpressLinear:
		decodeFn = numpress.DecodeLinear
	case format.NumpressPositiveInteger:
		decodeFn = numpress.DecodePositiveInteger
	case format.NumpressShortLog:
		decodeFn = numpress.DecodeShortLog
	}

	var (
		values  []float64
		cleanup = func() {}
	)
	if desc.Precision() == format.PrecisionFloat32 {
		values, cleanup = pool.GetFloat64Slice(count)
		values = values[:0]
	} else {
		values = make([]float64, 0, count)
	}
	defer cleanup()

	values, err := decodeFn(values, raw)
	if err != nil {
		return Array{}, fmt.Errorf("block at offset %d: %w", desc.Offset, err)
	}

	if len(values) != count {
		return Array{}, fmt.Errorf("%w: block at offset %d: %s decoded %d elements, want %d",
			errs.ErrCorruptData, desc.Offset, desc.Compression, len(values), count)
	}

	if desc.Precision() == format.PrecisionFloat32 {
		out := make([]float32, count)
		Narrow(out, values)

		return NewFloat32Array(out), nil
	}

	return NewFloat64Array(values), nil
}
