package format

type (
	Compression uint8
	BitLength   uint8
	RoleKind    uint8
	Precision   uint8
	Framing     uint8
	CodecType   uint8
)

// Compression schemes of an encoded binary array. The set is closed: an accession
// outside of it is rejected by ParseCompression.
const (
	CompressionNone                        Compression = 0x1 // CompressionNone represents an uncompressed array.
	CompressionZlib                        Compression = 0x2 // CompressionZlib represents a zlib (RFC 1950) stream.
	CompressionNumpressLinear              Compression = 0x3 // CompressionNumpressLinear represents numpress linear prediction.
	CompressionNumpressPositiveInteger     Compression = 0x4 // CompressionNumpressPositiveInteger represents numpress positive integer.
	CompressionNumpressShortLog            Compression = 0x5 // CompressionNumpressShortLog represents numpress short logged float.
	CompressionNumpressLinearZlib          Compression = 0x6 // CompressionNumpressLinearZlib represents numpress linear followed by zlib.
	CompressionNumpressPositiveIntegerZlib Compression = 0x7 // CompressionNumpressPositiveIntegerZlib represents numpress positive integer followed by zlib.
	CompressionNumpressShortLogZlib        Compression = 0x8 // CompressionNumpressShortLogZlib represents numpress short logged float followed by zlib.
)

// Element representations of the (decompressed, non-numpress) byte stream.
const (
	BitLengthFloat16 BitLength = 0x1 // BitLengthFloat16 represents IEEE-754 binary16 values.
	BitLengthFloat32 BitLength = 0x2 // BitLengthFloat32 represents IEEE-754 binary32 values.
	BitLengthFloat64 BitLength = 0x3 // BitLengthFloat64 represents IEEE-754 binary64 values.
	BitLengthInt32   BitLength = 0x4 // BitLengthInt32 represents two's complement 32-bit integers.
	BitLengthInt64   BitLength = 0x5 // BitLengthInt64 represents two's complement 64-bit integers.
)

// Semantic array roles. RoleUnknown carries the original accession in ArrayRole.
const (
	RoleUnknown   RoleKind = 0x0
	RoleMZ        RoleKind = 0x1
	RoleIntensity RoleKind = 0x2
	RoleTime      RoleKind = 0x3
)

const (
	PrecisionFloat64 Precision = 0x1 // PrecisionFloat64 is used by coordinate axis arrays.
	PrecisionFloat32 Precision = 0x2 // PrecisionFloat32 is used by signal arrays.
)

const (
	FramingBase64 Framing = 0x1 // FramingBase64 means the block is base64 text, as found in mzML.
	FramingBinary Framing = 0x2 // FramingBinary means the block is already raw bytes.
)

// Block codecs used by the compress package.
const (
	CodecNone CodecType = 0x1 // CodecNone represents no compression.
	CodecZlib CodecType = 0x2 // CodecZlib represents zlib (RFC 1950) compression.
	CodecZstd CodecType = 0x3 // CodecZstd represents Zstandard compression.
	CodecS2   CodecType = 0x4 // CodecS2 represents S2 compression.
	CodecLZ4  CodecType = 0x5 // CodecLZ4 represents LZ4 block compression.
)

// NumpressScheme identifies the numpress stage of a compression scheme.
type NumpressScheme uint8

const (
	NumpressNone            NumpressScheme = 0x0
	NumpressLinear          NumpressScheme = 0x1
	NumpressPositiveInteger NumpressScheme = 0x2
	NumpressShortLog        NumpressScheme = 0x3
)

// ArrayRole is the semantic role of a binary array.
//
// Known roles are identified by Kind. Unknown roles keep the accession they were
// parsed from so that they can be written back or reported unchanged.
type ArrayRole struct {
	Kind      RoleKind
	Accession string
}

var (
	RoleMZArray        = ArrayRole{Kind: RoleMZ, Accession: AccessionMZArray}
	RoleIntensityArray = ArrayRole{Kind: RoleIntensity, Accession: AccessionIntensityArray}
	RoleTimeArray      = ArrayRole{Kind: RoleTime, Accession: AccessionTimeArray}
)

// Precision returns the decoded element precision for the role.
//
// Coordinate axes (m/z, time) and unknown roles decode to float64, signal arrays
// (intensity) decode to float32.
func (r ArrayRole) Precision() Precision {
	if r.Kind == RoleIntensity {
		return PrecisionFloat32
	}

	return PrecisionFloat64
}

// IsKnown reports whether the role is one of the recognized roles.
func (r ArrayRole) IsKnown() bool {
	return r.Kind != RoleUnknown
}

func (r ArrayRole) String() string {
	switch r.Kind {
	case RoleMZ:
		return "MZ"
	case RoleIntensity:
		return "Intensity"
	case RoleTime:
		return "Time"
	default:
		if r.Accession == "" {
			return "Unknown"
		}

		return "Unknown(" + r.Accession + ")"
	}
}

// IsZlib reports whether the scheme has a zlib stage.
func (c Compression) IsZlib() bool {
	switch c { //nolint: exhaustive
	case CompressionZlib, CompressionNumpressLinearZlib,
		CompressionNumpressPositiveIntegerZlib, CompressionNumpressShortLogZlib:
		return true
	default:
		return false
	}
}

// Numpress returns the numpress stage of the scheme, or NumpressNone.
func (c Compression) Numpress() NumpressScheme {
	switch c { //nolint: exhaustive
	case CompressionNumpressLinear, CompressionNumpressLinearZlib:
		return NumpressLinear
	case CompressionNumpressPositiveInteger, CompressionNumpressPositiveIntegerZlib:
		return NumpressPositiveInteger
	case CompressionNumpressShortLog, CompressionNumpressShortLogZlib:
		return NumpressShortLog
	default:
		return NumpressNone
	}
}

// IsValid reports whether c is a member of the closed compression set.
func (c Compression) IsValid() bool {
	return c >= CompressionNone && c <= CompressionNumpressShortLogZlib
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZlib:
		return "Zlib"
	case CompressionNumpressLinear:
		return "NumpressLinear"
	case CompressionNumpressPositiveInteger:
		return "NumpressPositiveInteger"
	case CompressionNumpressShortLog:
		return "NumpressShortLog"
	case CompressionNumpressLinearZlib:
		return "NumpressLinearZlib"
	case CompressionNumpressPositiveIntegerZlib:
		return "NumpressPositiveIntegerZlib"
	case CompressionNumpressShortLogZlib:
		return "NumpressShortLogZlib"
	default:
		return "Unknown"
	}
}

// Bits returns the width of one element in bits.
func (b BitLength) Bits() int {
	switch b {
	case BitLengthFloat16:
		return 16
	case BitLengthFloat32, BitLengthInt32:
		return 32
	case BitLengthFloat64, BitLengthInt64:
		return 64
	default:
		return 0
	}
}

// Size returns the width of one element in bytes.
func (b BitLength) Size() int {
	return b.Bits() / 8
}

// IsInteger reports whether elements are stored as integers.
func (b BitLength) IsInteger() bool {
	return b == BitLengthInt32 || b == BitLengthInt64
}

func (b BitLength) String() string {
	switch b {
	case BitLengthFloat16:
		return "Float16"
	case BitLengthFloat32:
		return "Float32"
	case BitLengthFloat64:
		return "Float64"
	case BitLengthInt32:
		return "Int32"
	case BitLengthInt64:
		return "Int64"
	default:
		return "Unknown"
	}
}

func (p Precision) String() string {
	switch p {
	case PrecisionFloat64:
		return "Float64"
	case PrecisionFloat32:
		return "Float32"
	default:
		return "Unknown"
	}
}

func (f Framing) String() string {
	switch f {
	case FramingBase64:
		return "Base64"
	case FramingBinary:
		return "Binary"
	default:
		return "Unknown"
	}
}

func (c CodecType) String() string {
	switch c {
	case CodecNone:
		return "None"
	case CodecZlib:
		return "Zlib"
	case CodecZstd:
		return "Zstd"
	case CodecS2:
		return "S2"
	case CodecLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

func (s NumpressScheme) String() string {
	switch s {
	case NumpressNone:
		return "None"
	case NumpressLinear:
		return "Linear"
	case NumpressPositiveInteger:
		return "PositiveInteger"
	case NumpressShortLog:
		return "ShortLog"
	default:
		return "Unknown"
	}
}
