package compress

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/endian"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
)

func rampPayload(n int) []byte {
	values := make([]float64, n)
	for i := range values {
		values[i] = 100.0 + float64(i%32)*0.25
	}

	return endian.AppendFloat64s(endian.GetLittleEndianEngine(), nil, values)
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CodecType{format.CodecNone, format.CodecZlib, format.CodecZstd, format.CodecS2, format.CodecLZ4} {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err, ct.String())
		require.NotNil(t, codec)

		builtin, err := GetCodec(ct)
		require.NoError(t, err)
		require.Equal(t, codec, builtin)
	}

	_, err := CreateCodec(format.CodecType(0xFF), "spill")
	require.ErrorContains(t, err, "invalid spill codec")

	_, err = GetCodec(format.CodecType(0xFF))
	require.Error(t, err)
}

func TestCodec_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"ramp": rampPayload(1000),
		"text": bytes.Repeat([]byte("mass spectrometry "), 200),
	}

	for _, ct := range []format.CodecType{format.CodecNone, format.CodecZlib, format.CodecZstd, format.CodecS2, format.CodecLZ4} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				compressed, err := codec.Compress(payload)
				require.NoError(t, err)

				decompressed, err := codec.Decompress(compressed)
				require.NoError(t, err)
				require.Equal(t, payload, decompressed)
			})
		}
	}
}

func TestZlib_KnownPlaintext(t *testing.T) {
	plain := endian.AppendFloat64s(endian.GetLittleEndianEngine(), nil, []float64{1.0, 2.0, 3.0})

	c := NewZlibCompressor()
	stream, err := c.Compress(plain)
	require.NoError(t, err)
	// zlib header: CM=8 (deflate)
	require.Equal(t, byte(0x78), stream[0])

	out, err := c.Decompress(stream)
	require.NoError(t, err)

	values := make([]float64, 3)
	endian.DecodeFloat64s(endian.GetLittleEndianEngine(), values, out)
	require.Equal(t, []float64{1.0, 2.0, 3.0}, values)
}

func TestZlib_DecompressAppend_ReusesBuffer(t *testing.T) {
	c := NewZlibCompressor()
	payload := rampPayload(64)

	stream, err := c.Compress(payload)
	require.NoError(t, err)

	scratch := make([]byte, 0, 4096)
	out, err := c.DecompressAppend(scratch, stream)
	require.NoError(t, err)
	require.Equal(t, payload, out)
	require.Same(t, &scratch[:1][0], &out[0], "should inflate into the supplied buffer")
}

func TestZlib_Corrupt(t *testing.T) {
	c := NewZlibCompressor()
	stream, err := c.Compress(rampPayload(256))
	require.NoError(t, err)

	t.Run("empty", func(t *testing.T) {
		_, err := c.Decompress(nil)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := c.Decompress(stream[:len(stream)/2])
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("bad checksum", func(t *testing.T) {
		damaged := bytes.Clone(stream)
		damaged[len(damaged)-1] ^= 0xFF
		_, err := c.Decompress(damaged)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	t.Run("bad header", func(t *testing.T) {
		damaged := bytes.Clone(stream)
		damaged[0] = 0x00
		_, err := c.Decompress(damaged)
		require.ErrorIs(t, err, errs.ErrCorruptData)
	})

	// the pooled reader must still work after failures
	out, err := c.Decompress(stream)
	require.NoError(t, err)
	require.Equal(t, rampPayload(256), out)
}

func TestZlib_DecompressAppendLimit(t *testing.T) {
	c := NewZlibCompressor()

	// 8MiB of zeros deflates to a few KiB
	zeros := make([]byte, 8<<20)
	stream, err := c.Compress(zeros)
	require.NoError(t, err)
	require.Less(t, len(stream), 64<<10)

	out, err := c.DecompressAppendLimit(nil, stream, 8)
	require.ErrorIs(t, err, errs.ErrCorruptData)
	require.ErrorContains(t, err, "beyond 8 bytes")
	require.Empty(t, out)

	out, err = c.DecompressAppendLimit(nil, stream, len(zeros))
	require.NoError(t, err, "an exact fit is accepted")
	require.Len(t, out, len(zeros))

	_, err = c.DecompressAppendLimit(nil, stream, -1)
	require.Error(t, err)

	// the pooled reader must still work after an overflow
	payload := rampPayload(32)
	small, err := c.Compress(payload)
	require.NoError(t, err)
	out, err = c.DecompressAppendLimit(nil, small, len(payload))
	require.NoError(t, err)
	require.Equal(t, payload, out)
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name:            "good compression",
			stats:           CompressionStats{Algorithm: format.CodecZstd, OriginalSize: 1000, CompressedSize: 250},
			expectedRatio:   0.25,
			expectedSavings: 75.0,
		},
		{
			name:            "no compression",
			stats:           CompressionStats{Algorithm: format.CodecNone, OriginalSize: 1000, CompressedSize: 1000},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name:            "zero original size",
			stats:           CompressionStats{Algorithm: format.CodecS2},
			expectedRatio:   0.0,
			expectedSavings: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), math.SmallestNonzeroFloat64)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 1e-9)
		})
	}
}

func TestAppendDecompressor(t *testing.T) {
	payload := rampPayload(512)

	for _, ct := range []format.CodecType{format.CodecNone, format.CodecZlib, format.CodecZstd, format.CodecS2, format.CodecLZ4} {
		t.Run(ct.String(), func(t *testing.T) {
			codec, err := GetCodec(ct)
			require.NoError(t, err)

			ad, ok := codec.(AppendDecompressor)
			require.True(t, ok)

			compressed, err := codec.Compress(payload)
			require.NoError(t, err)

			prefix := []byte{0xAA, 0xBB}
			dst := append(make([]byte, 0, len(prefix)+len(payload)), prefix...)
			out, err := ad.DecompressAppend(dst, compressed)
			require.NoError(t, err)
			require.Equal(t, prefix, out[:2])
			require.Equal(t, payload, out[2:])
			require.Same(t, &dst[0], &out[0], "sized dst is filled in place")

			// no spare capacity
			out, err = ad.DecompressAppend(nil, compressed)
			require.NoError(t, err)
			require.Equal(t, payload, out)
		})
	}
}
