package model

import (
	"fmt"
	"math"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/store"
)

type spectrumPoints struct {
	mz        store.Handle
	intensity store.Handle
	size      int
	tic       float32
	mzRange   *Range[float64]
}

var noSpectrumPoints = &spectrumPoints{}

// Spectrum is a mass spectrum, one scan, whose m/z (float64) and intensity
// (float32) arrays live in a DataPointStore.
//
// Scan metadata is fixed at construction. Data points follow the same
// publishing rules as Chromatogram.
type Spectrum struct {
	ds store.DataPointStore

	mu     sync.Mutex
	points atomic.Pointer[spectrumPoints]

	scanNumber     int
	spectrumType   SpectrumType
	msFunction     MsFunction
	scanType       ScanType
	polarity       Polarity
	scanDefinition string
	scanningRange  *Range[float64]
	retentionTime  *float32
	isolations     []IsolationInfo
	activation     *ActivationInfo
	rawDataFile    string
}

// SpectrumOption configures the metadata of a Spectrum.
type SpectrumOption = options.Option[*Spectrum]

// NewSpectrum creates a spectrum with zero data points.
//
// Parameters:
//   - ds: Store holding the arrays, usually a store.Session
//   - scanNumber: Scan number within the raw data file
//   - opts: Scan metadata
//
// Returns:
//   - *Spectrum: The spectrum
//   - error: An invalid metadata option
func NewSpectrum(ds store.DataPointStore, scanNumber int, opts ...SpectrumOption) (*Spectrum, error) {
	s := &Spectrum{ds: ds, scanNumber: scanNumber, msFunction: MsFunction{Name: "ms", MsLevel: 1}}
	if err := options.Apply(s, opts...); err != nil {
		return nil, fmt.Errorf("spectrum #%d: %w", scanNumber, err)
	}
	s.points.Store(noSpectrumPoints)

	return s, nil
}

// WithSpectrumType sets the spectrum type. The default is SpectrumUnknown.
func WithSpectrumType(t SpectrumType) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.spectrumType = t })
}

// WithMsFunction sets the acquisition function. The default is MS level 1.
func WithMsFunction(f MsFunction) SpectrumOption {
	return options.New(func(s *Spectrum) error {
		if f.MsLevel < 0 {
			return fmt.Errorf("negative MS level %d", f.MsLevel)
		}
		s.msFunction = f

		return nil
	})
}

// WithScanType sets the scan type.
func WithScanType(t ScanType) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.scanType = t })
}

// WithPolarity sets the ionization polarity.
func WithPolarity(p Polarity) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.polarity = p })
}

// WithScanDefinition sets the vendor scan filter string.
func WithScanDefinition(def string) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.scanDefinition = def })
}

// WithScanningRange sets the m/z range the instrument scanned.
func WithScanningRange(r Range[float64]) SpectrumOption {
	return options.New(func(s *Spectrum) error {
		if r.Min > r.Max || math.IsNaN(r.Min) || math.IsNaN(r.Max) {
			return fmt.Errorf("invalid scanning range %s", r)
		}
		s.scanningRange = &r

		return nil
	})
}

// WithRetentionTime sets the retention time in seconds.
func WithRetentionTime(rt float32) SpectrumOption {
	return options.New(func(s *Spectrum) error {
		if rt < 0 || math.IsNaN(float64(rt)) {
			return fmt.Errorf("invalid retention time %v", rt)
		}
		s.retentionTime = &rt

		return nil
	})
}

// WithIsolations appends precursor isolation windows.
func WithIsolations(infos ...IsolationInfo) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.isolations = append(s.isolations, infos...) })
}

// WithSourceInducedFragmentation sets the in-source activation.
func WithSourceInducedFragmentation(a ActivationInfo) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.activation = &a })
}

// WithSpectrumRawDataFile sets the name of the raw data file.
func WithSpectrumRawDataFile(name string) SpectrumOption {
	return options.NoError(func(s *Spectrum) { s.rawDataFile = name })
}

// SetDataPoints replaces the arrays of the spectrum and recomputes the total
// ion current and the m/z range.
//
// Parameters:
//   - mz: m/z values, at least size values
//   - intensity: Intensities, at least size values
//   - size: Number of data points
//
// Returns:
//   - error: errs.ErrInconsistentArrays if an array is shorter than size,
//     or the store error; on a store error the spectrum is left empty
func (s *Spectrum) SetDataPoints(mz []float64, intensity []float32, size int) error {
	if err := checkSize(size, len(mz), len(intensity)); err != nil {
		return fmt.Errorf("spectrum #%d: %w", s.scanNumber, err)
	}

	mz, intensity = mz[:size], intensity[:size]

	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.points.Load()
	if err := removeHandles(s.ds, old.mz, old.intensity); err != nil {
		s.points.Store(noSpectrumPoints)
		return err
	}

	handles, err := storeAll(s.ds, func(ds store.DataPointStore) (store.Handle, error) {
		return ds.StoreFloat64(mz)
	}, putFloat32(intensity))
	if err != nil {
		s.points.Store(noSpectrumPoints)
		return err
	}

	next := &spectrumPoints{mz: handles[0], intensity: handles[1], size: size, tic: totalIonCurrent(intensity)}
	if size > 0 {
		r := NewRange(slices.Min(mz), slices.Max(mz))
		next.mzRange = &r
	}
	s.points.Store(next)

	return nil
}

func totalIonCurrent(intensity []float32) float32 {
	var sum float64
	for _, v := range intensity {
		sum += float64(v)
	}

	return float32(sum)
}

// Clear removes the arrays of the spectrum from the store.
func (s *Spectrum) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.points.Swap(noSpectrumPoints)

	return removeHandles(s.ds, old.mz, old.intensity)
}

// NumberOfDataPoints returns the number of data points.
func (s *Spectrum) NumberOfDataPoints() int {
	return s.points.Load().size
}

// TIC returns the total ion current, the sum of all intensities.
func (s *Spectrum) TIC() float32 {
	return s.points.Load().tic
}

// MzRange returns the range of the m/z values. ok is false for an empty spectrum.
func (s *Spectrum) MzRange() (r Range[float64], ok bool) {
	p := s.points.Load().mzRange
	if p == nil {
		return Range[float64]{}, false
	}

	return *p, true
}

// MzValues loads the m/z values into buf, allocating when buf is shorter
// than the point count.
func (s *Spectrum) MzValues(buf []float64) ([]float64, error) {
	return resolve(&s.points, &s.mu,
		func(p *spectrumPoints) (store.Handle, int) { return p.mz, p.size },
		s.ds.LoadFloat64, buf)
}

// IntensityValues loads the intensities into buf. See MzValues.
func (s *Spectrum) IntensityValues(buf []float32) ([]float32, error) {
	return resolve(&s.points, &s.mu,
		func(p *spectrumPoints) (store.Handle, int) { return p.intensity, p.size },
		s.ds.LoadFloat32, buf)
}

// ScanNumber returns the scan number within the raw data file.
func (s *Spectrum) ScanNumber() int { return s.scanNumber }

// SpectrumType returns the spectrum type.
func (s *Spectrum) SpectrumType() SpectrumType { return s.spectrumType }

// MsFunction returns the acquisition function.
func (s *Spectrum) MsFunction() MsFunction { return s.msFunction }

// ScanType returns the scan type.
func (s *Spectrum) ScanType() ScanType { return s.scanType }

// Polarity returns the ionization polarity.
func (s *Spectrum) Polarity() Polarity { return s.polarity }

// ScanDefinition returns the vendor scan filter string.
func (s *Spectrum) ScanDefinition() string { return s.scanDefinition }

// RawDataFile returns the name of the raw data file the spectrum belongs to.
func (s *Spectrum) RawDataFile() string { return s.rawDataFile }

// Isolations returns a copy of the precursor isolation windows.
func (s *Spectrum) Isolations() []IsolationInfo { return slices.Clone(s.isolations) }

// ScanningRange returns the scanned m/z range, if reported.
func (s *Spectrum) ScanningRange() (Range[float64], bool) {
	if s.scanningRange == nil {
		return Range[float64]{}, false
	}

	return *s.scanningRange, true
}

// RetentionTime returns the retention time in seconds, if reported.
func (s *Spectrum) RetentionTime() (float32, bool) {
	if s.retentionTime == nil {
		return 0, false
	}

	return *s.retentionTime, true
}

// SourceInducedFragmentation returns the in-source activation, or nil.
func (s *Spectrum) SourceInducedFragmentation() *ActivationInfo {
	if s.activation == nil {
		return nil
	}
	a := *s.activation

	return &a
}

// String returns a short label such as "Scan #12 (ms1, +)".
func (s *Spectrum) String() string {
	return fmt.Sprintf("Scan #%d (%s, %s)", s.scanNumber, s.msFunction, s.polarity)
}
