package numpress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/errs"
)

func TestHalfByte_RoundTrip(t *testing.T) {
	values := []uint32{
		0, 1, 7, 15, 16, 0x12345678, 0x0fffffff, 0xf0000000,
		0xffffffff, 0xfffffff0, 0xffffff00, uint32(0x80000000),
	}

	w := halfByteWriter{}
	for _, v := range values {
		w.encodeInt(v)
	}

	r := halfByteReader{data: w.buf}
	got := make([]uint32, 0, len(values))
	for !r.done() {
		v, err := r.decodeInt()
		require.NoError(t, err)
		got = append(got, v)
	}

	require.Equal(t, values, got)
}

func TestHalfByte_Encoding(t *testing.T) {
	tests := []struct {
		name  string
		value uint32
		want  []byte
	}{
		{"zero is a single half-byte", 0, []byte{0x80}},
		{"small value", 3, []byte{0x73}},
		{"minus one", 0xffffffff, []byte{0xff}},
		{"full width", 0x12345678, []byte{0x08, 0x76, 0x54, 0x32, 0x10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := halfByteWriter{}
			w.encodeInt(tt.value)
			require.Equal(t, tt.want, w.buf)
		})
	}
}

func TestPositiveInteger_KnownBytes(t *testing.T) {
	encoded, err := EncodePositiveInteger(nil, []float64{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []byte{0x71, 0x72, 0x73}, encoded)

	got, err := DecodePositiveInteger(nil, encoded)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 2, 3}, got)
}

func TestPositiveInteger_RoundTrip(t *testing.T) {
	values := []float64{0, 0, 1.4, 1.6, 12345, 0, 2147483647, 99.5}
	want := []float64{0, 0, 1, 2, 12345, 0, 2147483647, 100}

	encoded, err := EncodePositiveInteger(nil, values)
	require.NoError(t, err)

	got, err := DecodePositiveInteger(make([]float64, 0, len(values)), encoded)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestPositiveInteger_Errors(t *testing.T) {
	_, err := EncodePositiveInteger(nil, []float64{-3})
	require.Error(t, err)

	_, err = EncodePositiveInteger(nil, []float64{math.NaN()})
	require.Error(t, err)

	// header 0 promises 8 more half-bytes
	_, err = DecodePositiveInteger(nil, []byte{0x0f})
	require.ErrorIs(t, err, errs.ErrCorruptData)

	got, err := DecodePositiveInteger(nil, nil)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLinear_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
	}{
		{"three close values", []float64{100.0, 100.001, 100.002}},
		{"single", []float64{445.12}},
		{"pair", []float64{445.12, 445.13}},
		{"decreasing", []float64{500, 400, 350, 349, 10}},
		{"mz ladder", mzLadder(2000)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := OptimalLinearFixedPoint(tt.values)
			require.Positive(t, fp)

			encoded, err := EncodeLinear(nil, tt.values, fp)
			require.NoError(t, err)

			got, err := DecodeLinear(nil, encoded)
			require.NoError(t, err)
			require.Len(t, got, len(tt.values))
			for i := range tt.values {
				require.InDelta(t, tt.values[i], got[i], 1e-4, "index %d", i)
			}
		})
	}
}

func TestLinear_Framing(t *testing.T) {
	fp := AppendFixedPoint(nil, 1000)

	got, err := DecodeLinear(nil, fp)
	require.NoError(t, err)
	require.Empty(t, got)

	one := append(append([]byte{}, fp...), 0x10, 0x27, 0x00, 0x00) // 10000
	got, err = DecodeLinear(nil, one)
	require.NoError(t, err)
	require.Equal(t, []float64{10}, got)

	for _, size := range []int{0, 7, 10, 14} {
		data := make([]byte, size)
		copy(data, append(append([]byte{}, one...), 0, 0, 0, 0))
		_, err := DecodeLinear(nil, data)
		require.ErrorIs(t, err, errs.ErrCorruptData, "size %d", size)
	}
}

func TestLinear_TruncatedResidual(t *testing.T) {
	values := mzLadder(50)
	encoded, err := EncodeLinear(nil, values, OptimalLinearFixedPoint(values))
	require.NoError(t, err)

	// append a header promising a full width residual that never arrives
	_, err = DecodeLinear(nil, append(encoded, 0x00))
	require.ErrorIs(t, err, errs.ErrCorruptData)
}

func TestLinear_Overflow(t *testing.T) {
	_, err := EncodeLinear(nil, []float64{-5, 1}, 1000)
	require.Error(t, err)

	_, err = EncodeLinear(nil, []float64{0, 1, 1e9}, 1e6)
	require.Error(t, err)
}

func TestOptimalLinearFixedPoint(t *testing.T) {
	require.Zero(t, OptimalLinearFixedPoint(nil))
	require.Equal(t, math.Floor(math.MaxInt32/100.0), OptimalLinearFixedPoint([]float64{100}))
	require.Equal(t, float64(math.MaxInt32), OptimalLinearFixedPoint([]float64{0}))
	require.Equal(t, float64(math.MaxInt32), OptimalLinearFixedPoint([]float64{0, 0}))
}

func TestShortLog_RoundTrip(t *testing.T) {
	values := []float64{0, 1, 10, 1000, 1e6}

	fp := OptimalShortLogFixedPoint(values)
	require.Positive(t, fp)

	encoded, err := EncodeShortLog(nil, values, fp)
	require.NoError(t, err)
	require.Len(t, encoded, FixedPointSize+2*len(values))

	got, err := DecodeShortLog(nil, encoded)
	require.NoError(t, err)
	require.Len(t, got, len(values))
	for i, v := range values {
		require.InDelta(t, v, got[i], (v+1)*2e-4, "index %d", i)
	}
}

func TestShortLog_Errors(t *testing.T) {
	encoded, err := EncodeShortLog(nil, []float64{1, 2}, 1000)
	require.NoError(t, err)

	_, err = DecodeShortLog(nil, encoded[:len(encoded)-1])
	require.ErrorIs(t, err, errs.ErrCorruptData)

	_, err = DecodeShortLog(nil, encoded[:4])
	require.ErrorIs(t, err, errs.ErrCorruptData)

	_, err = DecodeShortLog(nil, make([]byte, FixedPointSize))
	require.ErrorIs(t, err, errs.ErrCorruptData, "zero fixed point")

	_, err = EncodeShortLog(nil, []float64{1e300}, 1000)
	require.Error(t, err)
}

func TestDecode_AppendsToDst(t *testing.T) {
	encoded, err := EncodePositiveInteger(nil, []float64{4, 5})
	require.NoError(t, err)

	got, err := DecodePositiveInteger([]float64{1}, encoded)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 4, 5}, got)
}

func mzLadder(n int) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = 200 + float64(i)*0.0125 + float64(i%7)*0.0001
	}

	return values
}
