package ingest

import (
	"context"
	"fmt"

	"github.com/arloliu/mzarray/decode"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/model"
)

// Task ingests the arrays of one entity.
type Task interface {
	fmt.Stringer

	// ingest decodes the arrays and publishes them on the entity,
	// returning the number of data points.
	ingest(ctx context.Context, in *Ingestor) (int, error)
}

// ChromatogramTask loads retention time, optional m/z and intensity arrays
// into a Chromatogram.
type ChromatogramTask struct {
	Chromatogram *model.Chromatogram
	RT           decode.Descriptor
	Mz           *decode.Descriptor // nil when the chromatogram has no m/z array
	Intensity    decode.Descriptor
}

func (t *ChromatogramTask) String() string {
	return t.Chromatogram.String()
}

func (t *ChromatogramTask) ingest(ctx context.Context, in *Ingestor) (int, error) {
	rt, err := in.read(ctx, t.RT)
	if err != nil {
		return 0, fmt.Errorf("retention times: %w", err)
	}

	var mz []float64
	if t.Mz != nil {
		arr, err := in.read(ctx, *t.Mz)
		if err != nil {
			return 0, fmt.Errorf("m/z values: %w", err)
		}
		mz = arr.Float64s()
	}

	intensity, err := in.read(ctx, t.Intensity)
	if err != nil {
		return 0, fmt.Errorf("intensities: %w", err)
	}

	n := rt.Len()
	if err := sameLength(n, intensity.Len()); err != nil {
		return 0, err
	}
	if mz != nil {
		if err := sameLength(n, len(mz)); err != nil {
			return 0, err
		}
	}

	return n, t.Chromatogram.SetDataPoints(rt.Float32s(), mz, intensity.Float32s(), n)
}

// SpectrumTask loads the m/z and intensity arrays into a Spectrum.
type SpectrumTask struct {
	Spectrum  *model.Spectrum
	Mz        decode.Descriptor
	Intensity decode.Descriptor
}

func (t *SpectrumTask) String() string {
	return t.Spectrum.String()
}

func (t *SpectrumTask) ingest(ctx context.Context, in *Ingestor) (int, error) {
	mz, err := in.read(ctx, t.Mz)
	if err != nil {
		return 0, fmt.Errorf("m/z values: %w", err)
	}

	intensity, err := in.read(ctx, t.Intensity)
	if err != nil {
		return 0, fmt.Errorf("intensities: %w", err)
	}

	n := mz.Len()
	if err := sameLength(n, intensity.Len()); err != nil {
		return 0, err
	}

	return n, t.Spectrum.SetDataPoints(mz.Float64s(), intensity.Float32s(), n)
}

func sameLength(want, got int) error {
	if want != got {
		return fmt.Errorf("%w: %d and %d values", errs.ErrInconsistentArrays, want, got)
	}

	return nil
}
