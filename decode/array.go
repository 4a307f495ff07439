package decode

import (
	"math"

	"github.com/arloliu/mzarray/format"
)

// Array is a decoded numeric array, either float64 or float32.
//
// Arrays are immutable once produced; callers must not modify the slices
// returned by Float64s and Float32s.
type Array struct {
	precision format.Precision
	f64       []float64
	f32       []float32
}

// NewFloat64Array wraps values as a float64 array without copying.
func NewFloat64Array(values []float64) Array {
	return Array{precision: format.PrecisionFloat64, f64: values}
}

// NewFloat32Array wraps values as a float32 array without copying.
func NewFloat32Array(values []float32) Array {
	return Array{precision: format.PrecisionFloat32, f32: values}
}

func emptyArray(p format.Precision) Array {
	if p == format.PrecisionFloat32 {
		return NewFloat32Array([]float32{})
	}

	return NewFloat64Array([]float64{})
}

// Precision returns the element precision.
func (a Array) Precision() format.Precision {
	return a.precision
}

// Len returns the number of elements.
func (a Array) Len() int {
	if a.precision == format.PrecisionFloat32 {
		return len(a.f32)
	}

	return len(a.f64)
}

// Float64s returns the values as float64, widening a float32 array into a new slice.
func (a Array) Float64s() []float64 {
	if a.precision != format.PrecisionFloat32 {
		return a.f64
	}

	out := make([]float64, len(a.f32))
	for i, v := range a.f32 {
		out[i] = float64(v)
	}

	return out
}

// Float32s returns the values as float32, narrowing a float64 array into a new slice.
func (a Array) Float32s() []float32 {
	if a.precision == format.PrecisionFloat32 {
		return a.f32
	}

	out := make([]float32, len(a.f64))
	Narrow(out, a.f64)

	return out
}

// Narrow converts src to float32 into dst, clipping finite values outside the
// float32 range to ±math.MaxFloat32. Infinities and NaN are preserved.
//
// Panics if dst is shorter than src.
func Narrow(dst []float32, src []float64) {
	_ = dst[:len(src)]

	for i, v := range src {
		switch {
		case v > math.MaxFloat32 && !math.IsInf(v, 1):
			dst[i] = math.MaxFloat32
		case v < -math.MaxFloat32 && !math.IsInf(v, -1):
			dst[i] = -math.MaxFloat32
		default:
			dst[i] = float32(v)
		}
	}
}

func widen(dst []float64, src []float32) {
	_ = dst[:len(src)]

	for i, v := range src {
		dst[i] = float64(v)
	}
}
