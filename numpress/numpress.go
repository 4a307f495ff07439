package numpress

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/arloliu/mzarray/errs"
)

// FixedPointSize is the size of the fixed point prefix of the linear and short log schemes.
const FixedPointSize = 8

const (
	linearHeaderSize = FixedPointSize + 8
	maxInt32         = float64(math.MaxInt32)
)

// AppendFixedPoint appends the 8-byte big-endian encoding of fixedPoint to dst.
func AppendFixedPoint(dst []byte, fixedPoint float64) []byte {
	return binary.BigEndian.AppendUint64(dst, math.Float64bits(fixedPoint))
}

// DecodeFixedPoint reads the fixed point prefix of a numpress stream.
func DecodeFixedPoint(data []byte) (float64, error) {
	if len(data) < FixedPointSize {
		return 0, fmt.Errorf("%w: numpress: %d bytes, not enough to read fixed point", errs.ErrCorruptData, len(data))
	}

	fp := math.Float64frombits(binary.BigEndian.Uint64(data))
	if fp == 0 || math.IsNaN(fp) || math.IsInf(fp, 0) {
		return 0, fmt.Errorf("%w: numpress: invalid fixed point %v", errs.ErrCorruptData, fp)
	}

	return fp, nil
}

// OptimalLinearFixedPoint returns the largest fixed point that keeps every linear
// prediction residual of data within a signed 32-bit integer.
func OptimalLinearFixedPoint(data []float64) float64 {
	switch len(data) {
	case 0:
		return 0
	case 1:
		if data[0] == 0 {
			return maxInt32
		}

		return math.Floor(maxInt32 / math.Abs(data[0]))
	}

	maxDouble := math.Max(math.Abs(data[0]), math.Abs(data[1]))
	for i := 2; i < len(data); i++ {
		extrapol := data[i-1] + (data[i-1] - data[i-2])
		diff := data[i] - extrapol
		maxDouble = math.Max(maxDouble, math.Ceil(math.Abs(diff)+1))
	}

	if maxDouble == 0 {
		return maxInt32
	}

	return math.Floor(maxInt32 / maxDouble)
}

// EncodeLinear appends the linear prediction encoding of data to dst.
//
// Parameters:
//   - dst: Destination buffer
//   - data: Non-negative values, ideally monotonic
//   - fixedPoint: Scaling factor, see OptimalLinearFixedPoint
//
// Returns:
//   - []byte: dst extended with the encoded stream
//   - error: If a value or residual does not fit the 32-bit representation
func EncodeLinear(dst []byte, data []float64, fixedPoint float64) ([]byte, error) {
	dst = AppendFixedPoint(dst, fixedPoint)

	var ints [3]int64
	for i := 0; i < 2 && i < len(data); i++ {
		v := data[i]*fixedPoint + 0.5
		if v < 0 || v > math.MaxUint32 {
			return dst, fmt.Errorf("numpress: linear value %v overflows with fixed point %v", data[i], fixedPoint)
		}
		ints[i+1] = int64(v)
		dst = binary.LittleEndian.AppendUint32(dst, uint32(ints[i+1])) //nolint:gosec // range checked above
	}

	if len(data) <= 2 {
		return dst, nil
	}

	w := halfByteWriter{buf: dst}
	for i := 2; i < len(data); i++ {
		ints[0] = ints[1]
		ints[1] = ints[2]

		v := data[i]*fixedPoint + 0.5
		if v > math.MaxInt64 || v < math.MinInt64 {
			return w.buf, fmt.Errorf("numpress: linear value %v overflows with fixed point %v", data[i], fixedPoint)
		}
		ints[2] = int64(v)

		extrapol := ints[1] + (ints[1] - ints[0])
		diff := ints[2] - extrapol
		if diff > math.MaxInt32 || diff < math.MinInt32 {
			return w.buf, fmt.Errorf("numpress: linear residual %d at index %d overflows int32", diff, i)
		}

		w.encodeInt(uint32(int32(diff))) //nolint:gosec // range checked above
	}

	return w.buf, nil
}

// DecodeLinear decodes a linear prediction stream and appends the values to dst.
//
// Returns:
//   - []float64: dst extended with the decoded values
//   - error: errs.ErrCorruptData for short framing or truncated residuals
func DecodeLinear(dst []float64, data []byte) ([]float64, error) {
	fixedPoint, err := DecodeFixedPoint(data)
	if err != nil {
		return dst, err
	}

	size := len(data)
	switch {
	case size == FixedPointSize:
		return dst, nil
	case size < FixedPointSize+4:
		return dst, fmt.Errorf("%w: numpress: %d bytes, not enough to read first linear value", errs.ErrCorruptData, size)
	}

	var ints [3]int64
	ints[1] = int64(binary.LittleEndian.Uint32(data[FixedPointSize:]))
	dst = append(dst, float64(ints[1])/fixedPoint)

	switch {
	case size == FixedPointSize+4:
		return dst, nil
	case size < linearHeaderSize:
		return dst, fmt.Errorf("%w: numpress: %d bytes, not enough to read second linear value", errs.ErrCorruptData, size)
	}

	ints[2] = int64(binary.LittleEndian.Uint32(data[FixedPointSize+4:]))
	dst = append(dst, float64(ints[2])/fixedPoint)

	r := halfByteReader{data: data, pos: linearHeaderSize}
	for !r.done() {
		ints[0] = ints[1]
		ints[1] = ints[2]

		buf, err := r.decodeInt()
		if err != nil {
			return dst, err
		}

		extrapol := ints[1] + (ints[1] - ints[0])
		y := extrapol + int64(int32(buf)) //nolint:gosec // residuals are signed 32-bit
		dst = append(dst, float64(y)/fixedPoint)
		ints[2] = y
	}

	return dst, nil
}

// EncodePositiveInteger appends the positive integer encoding of data to dst.
// Values are rounded to the nearest integer.
func EncodePositiveInteger(dst []byte, data []float64) ([]byte, error) {
	w := halfByteWriter{buf: dst}
	for i, v := range data {
		if v < -0.5 || v > maxInt32 || math.IsNaN(v) {
			return w.buf, fmt.Errorf("numpress: positive integer value %v at index %d out of range", v, i)
		}
		w.encodeInt(uint32(v + 0.5))
	}

	return w.buf, nil
}

// DecodePositiveInteger decodes a positive integer stream and appends the values to dst.
func DecodePositiveInteger(dst []float64, data []byte) ([]float64, error) {
	r := halfByteReader{data: data}
	for !r.done() {
		x, err := r.decodeInt()
		if err != nil {
			return dst, err
		}
		dst = append(dst, float64(x))
	}

	return dst, nil
}

// OptimalShortLogFixedPoint returns the largest fixed point that keeps
// log(v+1)*fixedPoint within an unsigned 16-bit integer for every value.
func OptimalShortLogFixedPoint(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}

	maxDouble := 1.0
	for _, v := range data {
		maxDouble = math.Max(maxDouble, math.Log(v+1))
	}

	return math.Floor(math.MaxUint16 / maxDouble)
}

// EncodeShortLog appends the short logged float encoding of data to dst.
func EncodeShortLog(dst []byte, data []float64, fixedPoint float64) ([]byte, error) {
	dst = AppendFixedPoint(dst, fixedPoint)
	for i, v := range data {
		temp := math.Log(v+1) * fixedPoint
		if temp < 0 || temp > math.MaxUint16 || math.IsNaN(temp) {
			return dst, fmt.Errorf("numpress: short log value %v at index %d out of range", v, i)
		}
		dst = binary.LittleEndian.AppendUint16(dst, uint16(temp+0.5))
	}

	return dst, nil
}

// DecodeShortLog decodes a short logged float stream and appends the values to dst.
func DecodeShortLog(dst []float64, data []byte) ([]float64, error) {
	fixedPoint, err := DecodeFixedPoint(data)
	if err != nil {
		return dst, err
	}

	if (len(data)-FixedPointSize)%2 != 0 {
		return dst, fmt.Errorf("%w: numpress: short log payload of %d bytes is not a multiple of 2", errs.ErrCorruptData, len(data)-FixedPointSize)
	}

	for i := FixedPointSize; i < len(data); i += 2 {
		x := binary.LittleEndian.Uint16(data[i:])
		dst = append(dst, math.Exp(float64(x)/fixedPoint)-1)
	}

	return dst, nil
}
