package endian

import (
	"math"
	"unsafe"

	"github.com/x448/float16"
)

// DecodeFloat64s decodes len(dst) IEEE-754 binary64 values from src.
//
// Panics if src holds fewer than len(dst)*8 bytes.
//
// Parameters:
//   - engine: Byte order of src
//   - dst: Destination slice, its length is the number of values decoded
//   - src: Encoded bytes
func DecodeFloat64s(engine EndianEngine, dst []float64, src []byte) {
	n := len(dst)
	if n == 0 {
		return
	}

	_ = src[n*8-1]

	if CompareNativeEndian(engine) {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), n*8), src)
		return
	}

	for i := range dst {
		dst[i] = math.Float64frombits(engine.Uint64(src[i*8:]))
	}
}

// DecodeFloat32s decodes len(dst) IEEE-754 binary32 values from src.
//
// Panics if src holds fewer than len(dst)*4 bytes.
func DecodeFloat32s(engine EndianEngine, dst []float32, src []byte) {
	n := len(dst)
	if n == 0 {
		return
	}

	_ = src[n*4-1]

	if CompareNativeEndian(engine) {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(&dst[0])), n*4), src)
		return
	}

	for i := range dst {
		dst[i] = math.Float32frombits(engine.Uint32(src[i*4:]))
	}
}

// DecodeFloat16s decodes len(dst) IEEE-754 binary16 values from src, widening them to float32.
func DecodeFloat16s(engine EndianEngine, dst []float32, src []byte) {
	if len(dst) == 0 {
		return
	}

	_ = src[len(dst)*2-1]

	for i := range dst {
		dst[i] = float16.Frombits(engine.Uint16(src[i*2:])).Float32()
	}
}

// DecodeInt32s decodes len(dst) two's complement 32-bit integers from src as float64.
func DecodeInt32s(engine EndianEngine, dst []float64, src []byte) {
	if len(dst) == 0 {
		return
	}

	_ = src[len(dst)*4-1]

	for i := range dst {
		dst[i] = float64(int32(engine.Uint32(src[i*4:]))) //nolint:gosec // bit reinterpretation
	}
}

// DecodeInt64s decodes len(dst) two's complement 64-bit integers from src as float64.
func DecodeInt64s(engine EndianEngine, dst []float64, src []byte) {
	if len(dst) == 0 {
		return
	}

	_ = src[len(dst)*8-1]

	for i := range dst {
		dst[i] = float64(int64(engine.Uint64(src[i*8:]))) //nolint:gosec // bit reinterpretation
	}
}

// AppendFloat64s appends the binary64 encoding of values to dst and returns the extended slice.
func AppendFloat64s(engine EndianEngine, dst []byte, values []float64) []byte {
	if len(values) == 0 {
		return dst
	}

	if CompareNativeEndian(engine) {
		return append(dst, unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*8)...)
	}

	for _, v := range values {
		dst = engine.AppendUint64(dst, math.Float64bits(v))
	}

	return dst
}

// AppendFloat32s appends the binary32 encoding of values to dst and returns the extended slice.
func AppendFloat32s(engine EndianEngine, dst []byte, values []float32) []byte {
	if len(values) == 0 {
		return dst
	}

	if CompareNativeEndian(engine) {
		return append(dst, unsafe.Slice((*byte)(unsafe.Pointer(&values[0])), len(values)*4)...)
	}

	for _, v := range values {
		dst = engine.AppendUint32(dst, math.Float32bits(v))
	}

	return dst
}

// AppendFloat16s appends the binary16 encoding of values to dst, rounding to nearest even.
func AppendFloat16s(engine EndianEngine, dst []byte, values []float32) []byte {
	for _, v := range values {
		dst = engine.AppendUint16(dst, float16.Fromfloat32(v).Bits())
	}

	return dst
}
