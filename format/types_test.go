package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/errs"
)

func TestParseCompression(t *testing.T) {
	tests := []struct {
		accession string
		want      Compression
		zlib      bool
		numpress  NumpressScheme
	}{
		{AccessionNoCompression, CompressionNone, false, NumpressNone},
		{AccessionZlib, CompressionZlib, true, NumpressNone},
		{AccessionNumpressLinear, CompressionNumpressLinear, false, NumpressLinear},
		{AccessionNumpressPositiveInteger, CompressionNumpressPositiveInteger, false, NumpressPositiveInteger},
		{AccessionNumpressShortLog, CompressionNumpressShortLog, false, NumpressShortLog},
		{AccessionNumpressLinearZlib, CompressionNumpressLinearZlib, true, NumpressLinear},
		{AccessionNumpressPositiveIntegerZlib, CompressionNumpressPositiveIntegerZlib, true, NumpressPositiveInteger},
		{AccessionNumpressShortLogZlib, CompressionNumpressShortLogZlib, true, NumpressShortLog},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			got, err := ParseCompression(tt.accession)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.zlib, got.IsZlib())
			assert.Equal(t, tt.numpress, got.Numpress())
			assert.True(t, got.IsValid())
			assert.Equal(t, tt.accession, got.Accession())
			assert.True(t, IsCompressionAccession(tt.accession))
		})
	}
}

func TestParseCompression_Unsupported(t *testing.T) {
	for _, acc := range []string{"", "MS:1000000", "zlib", "MS:1000574 "} {
		_, err := ParseCompression(acc)
		require.ErrorIs(t, err, errs.ErrUnsupportedCompression, acc)
		assert.False(t, IsCompressionAccession(acc))
	}

	assert.False(t, Compression(0).IsValid())
	assert.False(t, Compression(0x9).IsValid())
	assert.Equal(t, "Unknown", Compression(0x9).String())
	assert.Empty(t, Compression(0x9).Accession())
}

func TestParseBitLength(t *testing.T) {
	tests := []struct {
		accession string
		want      BitLength
		bits      int
		integer   bool
	}{
		{AccessionFloat16, BitLengthFloat16, 16, false},
		{AccessionFloat32, BitLengthFloat32, 32, false},
		{AccessionFloat64, BitLengthFloat64, 64, false},
		{AccessionInt32, BitLengthInt32, 32, true},
		{AccessionInt64, BitLengthInt64, 64, true},
	}

	for _, tt := range tests {
		got, err := ParseBitLength(tt.accession)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, tt.bits, got.Bits())
		assert.Equal(t, tt.bits/8, got.Size())
		assert.Equal(t, tt.integer, got.IsInteger())
		assert.True(t, IsBitLengthAccession(tt.accession))
	}

	_, err := ParseBitLength("MS:1000524")
	require.ErrorIs(t, err, errs.ErrUnsupportedBitLength)
	assert.Equal(t, 0, BitLength(0).Bits())
}

func TestParseArrayRole(t *testing.T) {
	mz := ParseArrayRole(AccessionMZArray)
	assert.Equal(t, RoleMZArray, mz)
	assert.Equal(t, PrecisionFloat64, mz.Precision())

	intensity := ParseArrayRole(AccessionIntensityArray)
	assert.Equal(t, RoleIntensityArray, intensity)
	assert.Equal(t, PrecisionFloat32, intensity.Precision())

	tm := ParseArrayRole(AccessionTimeArray)
	assert.Equal(t, RoleTimeArray, tm)
	assert.Equal(t, PrecisionFloat64, tm.Precision())

	// unknown roles are preserved, not rejected
	charge := ParseArrayRole("MS:1000516")
	assert.False(t, charge.IsKnown())
	assert.Equal(t, "MS:1000516", charge.Accession)
	assert.Equal(t, PrecisionFloat64, charge.Precision())
	assert.Equal(t, "Unknown(MS:1000516)", charge.String())
	assert.False(t, IsArrayRoleAccession("MS:1000516"))
}

func TestParseCodecType(t *testing.T) {
	for name, want := range map[string]CodecType{
		"":     CodecNone,
		"none": CodecNone,
		"ZLIB": CodecZlib,
		"zstd": CodecZstd,
		"S2":   CodecS2,
		"lz4":  CodecLZ4,
	} {
		got, err := ParseCodecType(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	_, err := ParseCodecType("brotli")
	require.Error(t, err)
}
