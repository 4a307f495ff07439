package format

import (
	"fmt"
	"strings"

	"github.com/arloliu/mzarray/errs"
)

// PSI-MS controlled vocabulary accessions used by mzML binary data arrays.
const (
	AccessionNoCompression               = "MS:1000576"
	AccessionZlib                        = "MS:1000574"
	AccessionNumpressLinear              = "MS:1002312"
	AccessionNumpressPositiveInteger     = "MS:1002313"
	AccessionNumpressShortLog            = "MS:1002314"
	AccessionNumpressLinearZlib          = "MS:1002746"
	AccessionNumpressPositiveIntegerZlib = "MS:1002747"
	AccessionNumpressShortLogZlib        = "MS:1002748"
	AccessionFloat16                     = "MS:1000520"
	AccessionFloat32                     = "MS:1000521"
	AccessionFloat64                     = "MS:1000523"
	AccessionInt32                       = "MS:1000519"
	AccessionInt64                       = "MS:1000522"
	AccessionMZArray                     = "MS:1000514"
	AccessionIntensityArray              = "MS:1000515"
	AccessionTimeArray                   = "MS:1000595"
)

var compressionByAccession = map[string]Compression{
	AccessionNoCompression:               CompressionNone,
	AccessionZlib:                        CompressionZlib,
	AccessionNumpressLinear:              CompressionNumpressLinear,
	AccessionNumpressPositiveInteger:     CompressionNumpressPositiveInteger,
	AccessionNumpressShortLog:            CompressionNumpressShortLog,
	AccessionNumpressLinearZlib:          CompressionNumpressLinearZlib,
	AccessionNumpressPositiveIntegerZlib: CompressionNumpressPositiveIntegerZlib,
	AccessionNumpressShortLogZlib:        CompressionNumpressShortLogZlib,
}

var bitLengthByAccession = map[string]BitLength{
	AccessionFloat16: BitLengthFloat16,
	AccessionFloat32: BitLengthFloat32,
	AccessionFloat64: BitLengthFloat64,
	AccessionInt32:   BitLengthInt32,
	AccessionInt64:   BitLengthInt64,
}

var roleKindByAccession = map[string]RoleKind{
	AccessionMZArray:        RoleMZ,
	AccessionIntensityArray: RoleIntensity,
	AccessionTimeArray:      RoleTime,
}

var codecByName = map[string]CodecType{
	"none": CodecNone,
	"zlib": CodecZlib,
	"zstd": CodecZstd,
	"s2":   CodecS2,
	"lz4":  CodecLZ4,
}

// ParseCompression maps a compression accession to its Compression.
//
// Returns:
//   - Compression: The matching scheme
//   - error: errs.ErrUnsupportedCompression if the accession is outside the closed set
func ParseCompression(accession string) (Compression, error) {
	if c, ok := compressionByAccession[accession]; ok {
		return c, nil
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedCompression, accession)
}

// IsCompressionAccession reports whether accession names a supported compression scheme.
func IsCompressionAccession(accession string) bool {
	_, ok := compressionByAccession[accession]
	return ok
}

// Accession returns the accession of the compression scheme, or "" for an invalid value.
func (c Compression) Accession() string {
	for acc, v := range compressionByAccession {
		if v == c {
			return acc
		}
	}

	return ""
}

// ParseBitLength maps a binary data type accession to its BitLength.
func ParseBitLength(accession string) (BitLength, error) {
	if b, ok := bitLengthByAccession[accession]; ok {
		return b, nil
	}

	return 0, fmt.Errorf("%w: %q", errs.ErrUnsupportedBitLength, accession)
}

// IsBitLengthAccession reports whether accession names a supported binary data type.
func IsBitLengthAccession(accession string) bool {
	_, ok := bitLengthByAccession[accession]
	return ok
}

// ParseArrayRole maps an array type accession to an ArrayRole.
//
// It never fails: accessions that are not recognized produce a RoleUnknown role
// that preserves the accession.
func ParseArrayRole(accession string) ArrayRole {
	return ArrayRole{Kind: roleKindByAccession[accession], Accession: accession}
}

// IsArrayRoleAccession reports whether accession names a recognized array role.
func IsArrayRoleAccession(accession string) bool {
	_, ok := roleKindByAccession[accession]
	return ok
}

// ParseCodecType maps a codec name ("none", "zlib", "zstd", "s2", "lz4") to a CodecType.
// Matching is case-insensitive. An empty name selects CodecNone.
func ParseCodecType(name string) (CodecType, error) {
	if name == "" {
		return CodecNone, nil
	}

	if c, ok := codecByName[strings.ToLower(name)]; ok {
		return c, nil
	}

	return 0, fmt.Errorf("invalid codec name: %q", name)
}
