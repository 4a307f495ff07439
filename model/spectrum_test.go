package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/mzarray/errs"
)

func TestSpectrum_SetDataPoints(t *testing.T) {
	s := newTestStore(t)
	sp, err := NewSpectrum(s, 42, WithSpectrumType(SpectrumCentroided))
	require.NoError(t, err)

	mz := []float64{150.1, 200.2, 175.5, 300.3}
	intensity := []float32{1000, 250.5, 10, 4}
	require.NoError(t, sp.SetDataPoints(mz, intensity, 4))

	require.Equal(t, 4, sp.NumberOfDataPoints())
	require.InDelta(t, 1264.5, sp.TIC(), 1e-3)

	r, ok := sp.MzRange()
	require.True(t, ok)
	require.Equal(t, Range[float64]{Min: 150.1, Max: 300.3}, r)

	gotMz, err := sp.MzValues(nil)
	require.NoError(t, err)
	require.Equal(t, mz, gotMz)

	gotInt, err := sp.IntensityValues(make([]float32, 2))
	require.NoError(t, err)
	require.Equal(t, intensity, gotInt)

	// replace with fewer points
	require.NoError(t, sp.SetDataPoints(mz, intensity, 1))
	require.Equal(t, 2, s.Len())
	require.InDelta(t, 1000, sp.TIC(), 0)

	r, ok = sp.MzRange()
	require.True(t, ok)
	require.Equal(t, Range[float64]{Min: 150.1, Max: 150.1}, r)
}

func TestSpectrum_Empty(t *testing.T) {
	s := newTestStore(t)
	sp, err := NewSpectrum(s, 1)
	require.NoError(t, err)

	require.Zero(t, sp.TIC())
	_, ok := sp.MzRange()
	require.False(t, ok)

	mz, err := sp.MzValues(nil)
	require.NoError(t, err)
	require.Empty(t, mz)

	require.NoError(t, sp.SetDataPoints([]float64{1}, []float32{2}, 1))
	require.NoError(t, sp.SetDataPoints(nil, nil, 0))
	_, ok = sp.MzRange()
	require.False(t, ok)

	require.NoError(t, sp.Clear())
	require.Zero(t, s.Len())
}

func TestSpectrum_InconsistentArrays(t *testing.T) {
	s := newTestStore(t)
	sp, err := NewSpectrum(s, 9)
	require.NoError(t, err)

	err = sp.SetDataPoints([]float64{1, 2}, []float32{1}, 2)
	require.ErrorIs(t, err, errs.ErrInconsistentArrays)
	require.ErrorContains(t, err, "spectrum #9")

	err = sp.SetDataPoints(nil, []float32{1}, 1)
	require.ErrorIs(t, err, errs.ErrInconsistentArrays, "m/z is required for spectra")
	require.Zero(t, s.Len())
}

func TestSpectrum_Metadata(t *testing.T) {
	s := newTestStore(t)
	energy := 35.0
	charge := 2
	precursor := 622.03

	sp, err := NewSpectrum(s, 1207,
		WithSpectrumType(SpectrumProfile),
		WithMsFunction(MsFunction{Name: "ms", MsLevel: 2}),
		WithScanType(ScanFull),
		WithPolarity(PolarityPositive),
		WithScanDefinition("FTMS + p ESI d Full ms2 622.03@hcd35.00 [100.00-1255.00]"),
		WithScanningRange(Range[float64]{Min: 100, Max: 1255}),
		WithRetentionTime(1830.25),
		WithIsolations(IsolationInfo{
			MzRange:         NewRange(621.03, 623.03),
			PrecursorMz:     &precursor,
			PrecursorCharge: &charge,
			Activation:      &ActivationInfo{Type: ActivationHCD, Energy: &energy},
		}),
		WithSourceInducedFragmentation(ActivationInfo{Type: ActivationCID}),
		WithSpectrumRawDataFile("run7.mzML"),
	)
	require.NoError(t, err)

	require.Equal(t, 1207, sp.ScanNumber())
	require.Equal(t, SpectrumProfile, sp.SpectrumType())
	require.Equal(t, "ms2", sp.MsFunction().String())
	require.Equal(t, ScanFull, sp.ScanType())
	require.Equal(t, PolarityPositive, sp.Polarity())
	require.Contains(t, sp.ScanDefinition(), "hcd35.00")
	require.Equal(t, "run7.mzML", sp.RawDataFile())
	require.Equal(t, ActivationCID, sp.SourceInducedFragmentation().Type)
	require.Equal(t, "Scan #1207 (ms2, +)", sp.String())

	r, ok := sp.ScanningRange()
	require.True(t, ok)
	require.InDelta(t, 1255.0, r.Max, 0)

	rt, ok := sp.RetentionTime()
	require.True(t, ok)
	require.InDelta(t, 1830.25, rt, 0)

	isolations := sp.Isolations()
	require.Len(t, isolations, 1)
	require.Equal(t, 2, *isolations[0].PrecursorCharge)
	require.InDelta(t, 35.0, *isolations[0].Activation.Energy, 0)
}

func TestSpectrum_Defaults(t *testing.T) {
	s := newTestStore(t)
	sp, err := NewSpectrum(s, 1)
	require.NoError(t, err)

	require.Equal(t, MsFunction{Name: "ms", MsLevel: 1}, sp.MsFunction())
	require.Nil(t, sp.SourceInducedFragmentation())
	_, ok := sp.RetentionTime()
	require.False(t, ok)
	_, ok = sp.ScanningRange()
	require.False(t, ok)
}

func TestSpectrum_InvalidOptions(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name string
		opt  SpectrumOption
	}{
		{name: "negative retention time", opt: WithRetentionTime(-1)},
		{name: "NaN retention time", opt: WithRetentionTime(float32(math.NaN()))},
		{name: "inverted scanning range", opt: WithScanningRange(Range[float64]{Min: 10, Max: 5})},
		{name: "negative MS level", opt: WithMsFunction(MsFunction{Name: "ms", MsLevel: -1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSpectrum(s, 5, tt.opt)
			require.ErrorContains(t, err, "spectrum #5")
		})
	}
}
