package model

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/arloliu/mzarray/store"
)

// chromatogramPoints is an immutable published handle set.
type chromatogramPoints struct {
	rt        store.Handle
	mz        store.Handle // InvalidHandle when the chromatogram has no m/z array
	intensity store.Handle
	size      int
	rtRange   *Range[float32]
}

var noChromatogramPoints = &chromatogramPoints{}

// Chromatogram is a chromatogram whose arrays live in a DataPointStore.
//
// Retention times and intensities are float32, the optional m/z array is float64.
// All methods are safe for concurrent use.
type Chromatogram struct {
	ds store.DataPointStore

	mu     sync.Mutex // serializes SetDataPoints and Clear
	points atomic.Pointer[chromatogramPoints]

	meta        sync.RWMutex
	number      int
	typ         ChromatogramType
	separation  SeparationType
	precursorMz *float64
	annotation  *IonAnnotation
	rawDataFile string
	isolations  []IsolationInfo
}

// NewChromatogram creates a chromatogram with zero data points.
//
// Parameters:
//   - ds: Store holding the arrays, usually a store.Session
//   - number: Chromatogram number within its raw data file
//   - typ: Chromatogram type
//   - separation: Separation the chromatogram was recorded from
//
// Returns:
//   - *Chromatogram: The chromatogram
func NewChromatogram(ds store.DataPointStore, number int, typ ChromatogramType, separation SeparationType) *Chromatogram {
	c := &Chromatogram{
		ds:         ds,
		number:     number,
		typ:        typ,
		separation: separation,
	}
	c.points.Store(noChromatogramPoints)

	return c
}

// SetDataPoints replaces the arrays of the chromatogram.
//
// The first size values of each array are stored. The previous arrays are
// removed from the store first, and the new handle set is published
// atomically together with the recomputed retention time range.
//
// Parameters:
//   - rt: Retention times, at least size values
//   - mz: m/z values, nil when the chromatogram has no m/z array
//   - intensity: Intensities, at least size values
//   - size: Number of data points
//
// Returns:
//   - error: errs.ErrInconsistentArrays if an array is shorter than size,
//     or the store error; on a store error the chromatogram is left empty
func (c *Chromatogram) SetDataPoints(rt []float32, mz []float64, intensity []float32, size int) error {
	lengths := []int{len(rt), len(intensity)}
	if mz != nil {
		lengths = append(lengths, len(mz))
	}
	if err := checkSize(size, lengths...); err != nil {
		return fmt.Errorf("chromatogram #%d: %w", c.Number(), err)
	}

	if mz != nil {
		mz = mz[:size]
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.points.Load()
	if err := removeHandles(c.ds, old.rt, old.mz, old.intensity); err != nil {
		c.points.Store(noChromatogramPoints)
		return err
	}

	handles, err := storeAll(c.ds, putFloat32(rt[:size]), putFloat64(mz), putFloat32(intensity[:size]))
	if err != nil {
		c.points.Store(noChromatogramPoints)
		return err
	}

	next := &chromatogramPoints{rt: handles[0], mz: handles[1], intensity: handles[2], size: size}
	if size > 0 {
		r := Range[float32]{Min: rt[0], Max: rt[size-1]}
		next.rtRange = &r
	}
	c.points.Store(next)

	return nil
}

// Clear removes the arrays of the chromatogram from the store.
func (c *Chromatogram) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.points.Swap(noChromatogramPoints)

	return removeHandles(c.ds, old.rt, old.mz, old.intensity)
}

// NumberOfDataPoints returns the number of data points.
func (c *Chromatogram) NumberOfDataPoints() int {
	return c.points.Load().size
}

// RtRange returns the retention time range spanned by the first and last
// data points. ok is false when the chromatogram has no data points.
func (c *Chromatogram) RtRange() (r Range[float32], ok bool) {
	p := c.points.Load().rtRange
	if p == nil {
		return Range[float32]{}, false
	}

	return *p, true
}

// HasMzValues reports whether the chromatogram holds an m/z array.
func (c *Chromatogram) HasMzValues() bool {
	return c.points.Load().mz.IsValid()
}

// RetentionTimes loads the retention times into buf, allocating when buf is
// shorter than the point count. The result has exactly one value per point.
func (c *Chromatogram) RetentionTimes(buf []float32) ([]float32, error) {
	return resolve(&c.points, &c.mu,
		func(p *chromatogramPoints) (store.Handle, int) { return p.rt, p.size },
		c.ds.LoadFloat32, buf)
}

// MzValues loads the m/z values. It returns an empty slice when the
// chromatogram has no m/z array.
func (c *Chromatogram) MzValues() ([]float64, error) {
	return resolve(&c.points, &c.mu,
		func(p *chromatogramPoints) (store.Handle, int) { return p.mz, p.size },
		c.ds.LoadFloat64, nil)
}

// IntensityValues loads the intensities into buf. See RetentionTimes.
func (c *Chromatogram) IntensityValues(buf []float32) ([]float32, error) {
	return resolve(&c.points, &c.mu,
		func(p *chromatogramPoints) (store.Handle, int) { return p.intensity, p.size },
		c.ds.LoadFloat32, buf)
}

// Number returns the chromatogram index within its raw data file.
func (c *Chromatogram) Number() int {
	c.meta.RLock()
	defer c.meta.RUnlock()

	return c.number
}

// SetNumber sets the chromatogram index.
func (c *Chromatogram) SetNumber(number int) {
	c.meta.Lock()
	c.number = number
	c.meta.Unlock()
}

// Type returns the chromatogram type.
func (c *Chromatogram) Type() ChromatogramType {
	c.meta.RLock()
	defer c.meta.RUnlock()

	return c.typ
}

// SetType sets the chromatogram type.
func (c *Chromatogram) SetType(typ ChromatogramType) {
	c.meta.Lock()
	c.typ = typ
	c.meta.Unlock()
}

// SeparationType returns the separation technique the chromatogram was acquired with.
func (c *Chromatogram) SeparationType() SeparationType {
	c.meta.RLock()
	defer c.meta.RUnlock()

	return c.separation
}

// SetSeparationType sets the separation technique.
func (c *Chromatogram) SetSeparationType(separation SeparationType) {
	c.meta.Lock()
	c.separation = separation
	c.meta.Unlock()
}

// PrecursorMz returns the precursor m/z of a SIC or SRM chromatogram.
func (c *Chromatogram) PrecursorMz() (float64, bool) {
	c.meta.RLock()
	defer c.meta.RUnlock()

	if c.precursorMz == nil {
		return 0, false
	}

	return *c.precursorMz, true
}

// SetPrecursorMz sets the precursor m/z. A nil mz clears it.
func (c *Chromatogram) SetPrecursorMz(mz *float64) {
	c.meta.Lock()
	defer c.meta.Unlock()

	if mz == nil {
		c.precursorMz = nil
		return
	}
	v := *mz
	c.precursorMz = &v
}

// IonAnnotation returns a copy of the ion annotation, or nil.
func (c *Chromatogram) IonAnnotation() *IonAnnotation {
	c.meta.RLock()
	defer c.meta.RUnlock()

	if c.annotation == nil {
		return nil
	}
	a := *c.annotation

	return &a
}

// SetIonAnnotation replaces the ion annotation with a copy of a.
func (c *Chromatogram) SetIonAnnotation(a IonAnnotation) {
	c.meta.Lock()
	c.annotation = &a
	c.meta.Unlock()
}

// RawDataFile returns the name of the raw data file the chromatogram belongs to.
func (c *Chromatogram) RawDataFile() string {
	c.meta.RLock()
	defer c.meta.RUnlock()

	return c.rawDataFile
}

// SetRawDataFile sets the name of the raw data file.
func (c *Chromatogram) SetRawDataFile(name string) {
	c.meta.Lock()
	c.rawDataFile = name
	c.meta.Unlock()
}

// Isolations returns a copy of the isolation windows.
func (c *Chromatogram) Isolations() []IsolationInfo {
	c.meta.RLock()
	defer c.meta.RUnlock()

	return slices.Clone(c.isolations)
}

// AddIsolation appends an isolation window.
func (c *Chromatogram) AddIsolation(info IsolationInfo) {
	c.meta.Lock()
	c.isolations = append(c.isolations, info)
	c.meta.Unlock()
}

// String returns a short label such as "Chromatogram #3 (TIC)".
func (c *Chromatogram) String() string {
	return fmt.Sprintf("Chromatogram #%d (%s)", c.Number(), c.Type())
}
