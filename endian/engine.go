// Package endian converts between little-endian byte streams and numeric slices.
//
// mzML binary arrays and mzarray spill records are always little-endian. The
// EndianEngine interface bundles binary.ByteOrder with binary.AppendByteOrder
// so one value serves both in-place decoding and appending encoders.
//
// # Basic Usage
//
//	import "github.com/arloliu/mzarray/endian"
//
//	le := endian.GetLittleEndianEngine()
//	values := make([]float64, len(raw)/8)
//	endian.DecodeFloat64s(le, values, raw)
//
//	raw = endian.AppendFloat32s(le, raw[:0], intensities)
//
// # Performance
//
// When the engine matches the host byte order, the bulk conversions copy
// memory directly instead of converting element by element.
//
// All functions are safe for concurrent use.
package endian

import "encoding/binary"

// EndianEngine is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// hostLittle is true on little-endian hosts.
var hostLittle = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// CheckEndianness returns the byte order of the host.
func CheckEndianness() binary.ByteOrder {
	if hostLittle {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return hostLittle
}

// CompareNativeEndian reports whether engine matches the host byte order, in
// which case a byte stream can be reinterpreted as numbers without conversion.
func CompareNativeEndian(engine EndianEngine) bool {
	switch engine {
	case binary.LittleEndian:
		return hostLittle
	case binary.BigEndian:
		return !hostLittle
	default:
		return false
	}
}

// GetLittleEndianEngine returns the engine for mzML and spill data.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine. It is used in tests to
// exercise the element by element conversion path on little-endian hosts.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
