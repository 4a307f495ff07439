// Package numpress implements the MS-Numpress compression schemes for mass
// spectrometry numeric arrays.
//
// Numpress is a family of lossy, scale-and-quantize codecs. Decoding a given
// byte stream is deterministic; encoding then decoding reproduces the input only
// within the quantization tolerance of the chosen fixed point.
//
// # Schemes
//
// Linear prediction (MS:1002312), for monotonic series such as m/z or retention time:
//
//	| fixed point (8, big-endian float64) | v0 (4, LE) | v1 (4, LE) | residuals (half-byte packed) |
//
// Every value after the first two is predicted as 2*v[i-1] - v[i-2] and only the
// integer residual is stored.
//
// Positive integer (MS:1002313), for counts and rounded intensities:
//
//	| values (half-byte packed) |
//
// The reference wire format has no fixed point prefix for this scheme; values
// are rounded to the nearest non-negative integer.
//
// Short logged float (MS:1002314), for intensities:
//
//	| fixed point (8, big-endian float64) | uint16 LE per value |
//
// Each value is stored as round(log(v+1) * fixedPoint).
//
// # Half-byte integer packing
//
// Linear residuals and positive integers are written as variable length integers
// made of 4-bit half-bytes. The first half-byte h gives the number of leading
// zero half-bytes (h <= 8) or leading 0xf half-bytes (h-8, for h > 8) that are
// omitted; the remaining half-bytes follow, least significant first. Two
// half-bytes share one byte, high nibble first. An odd final half-byte is
// padded with a zero low nibble.
//
// All decoders append to a caller supplied slice and report malformed input as
// errs.ErrCorruptData.
package numpress
