// Package decode turns encoded mzML binary array blocks into numeric arrays.
//
// A Descriptor names one block in the source file: where it is, how long it
// is, how many elements it holds and how it was encoded. The Decoder runs the
// block through up to four stages:
//
//  1. base64 unframing (mzML stores binary arrays as base64 text)
//  2. zlib inflation, for the zlib and numpress+zlib schemes
//  3. numpress decoding, or little-endian reinterpretation at the declared bit length
//  4. conversion to the role's precision
//
// Coordinate axes (m/z, retention time) and arrays of unknown role decode to
// float64; intensities decode to float32, clipping finite values outside the
// float32 range to ±math.MaxFloat32.
//
// The decoded element count must equal the declared one; the decoder never
// pads or truncates. Scratch memory for the intermediate stages comes from a
// pool.ByteBufferPool and is released before Decode returns.
//
// Example:
//
//	dec, err := decode.NewDecoder(decode.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	arr, err := dec.ReadAndDecode(ctx, file, desc)
//	if errors.Is(err, errs.ErrCorruptData) {
//	    // skip the array
//	}
package decode
