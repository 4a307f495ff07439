package decode

import (
	"fmt"

	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
)

// Descriptor is the immutable metadata of one encoded binary array.
type Descriptor struct {
	// Offset is the byte offset of the encoded block in the source file.
	Offset int64
	// EncodedLength is the size of the encoded block in bytes, as found in the file.
	EncodedLength int
	// ElementCount is the number of values the block decodes to.
	ElementCount int
	// Compression is the compression scheme of the block.
	Compression format.Compression
	// BitLength is the element representation after decompression.
	// Ignored by the numpress schemes, which always yield float64.
	BitLength format.BitLength
	// Role is the semantic role of the array.
	Role format.ArrayRole
	// Framing is the outer framing of the block; the zero value means base64.
	Framing format.Framing
}

// NewDescriptor builds a base64 framed descriptor from PSI-MS accessions.
//
// Parameters:
//   - offset: Byte offset of the block in the source file
//   - encodedLength: Size of the block in bytes
//   - elementCount: Number of encoded values
//   - compressionAcc: Compression accession, e.g. "MS:1000574"
//   - bitLengthAcc: Binary data type accession, e.g. "MS:1000523"
//   - roleAcc: Array type accession, e.g. "MS:1000514"; unknown accessions are kept
//
// Returns:
//   - Descriptor: The validated descriptor
//   - error: ErrUnsupportedCompression, ErrUnsupportedBitLength or ErrInvalidDescriptor
func NewDescriptor(offset int64, encodedLength, elementCount int, compressionAcc, bitLengthAcc, roleAcc string) (Descriptor, error) {
	compression, err := format.ParseCompression(compressionAcc)
	if err != nil {
		return Descriptor{}, err
	}

	var bitLength format.BitLength
	if bitLengthAcc != "" || compression.Numpress() == format.NumpressNone {
		if bitLength, err = format.ParseBitLength(bitLengthAcc); err != nil {
			return Descriptor{}, err
		}
	}

	desc := Descriptor{
		Offset:        offset,
		EncodedLength: encodedLength,
		ElementCount:  elementCount,
		Compression:   compression,
		BitLength:     bitLength,
		Role:          format.ParseArrayRole(roleAcc),
		Framing:       format.FramingBase64,
	}

	return desc, desc.Validate()
}

// Validate checks the descriptor's ranges and enumerations.
func (d Descriptor) Validate() error {
	if d.Offset < 0 || d.EncodedLength < 0 || d.ElementCount < 0 {
		return fmt.Errorf("%w: offset=%d encodedLength=%d elementCount=%d",
			errs.ErrInvalidDescriptor, d.Offset, d.EncodedLength, d.ElementCount)
	}

	if !d.Compression.IsValid() {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedCompression, d.Compression)
	}

	if d.Compression.Numpress() == format.NumpressNone && d.BitLength.Size() == 0 {
		return fmt.Errorf("%w: %s", errs.ErrUnsupportedBitLength, d.BitLength)
	}

	switch d.Framing {
	case 0, format.FramingBase64, format.FramingBinary:
	default:
		return fmt.Errorf("%w: framing %s", errs.ErrInvalidDescriptor, d.Framing)
	}

	return nil
}

// Precision returns the precision the array decodes to.
func (d Descriptor) Precision() format.Precision {
	return d.Role.Precision()
}

func (d Descriptor) framing() format.Framing {
	if d.Framing == 0 {
		return format.FramingBase64
	}

	return d.Framing
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s array @%d (%d bytes, %d elements, %s, %s)",
		d.Role, d.Offset, d.EncodedLength, d.ElementCount, d.Compression, d.BitLength)
}
