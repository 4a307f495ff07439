package decode

import (
	"time"

	"github.com/arloliu/mzarray/format"
)

// Recorder observes decode calls, typically to export metrics.
type Recorder interface {
	// ObserveDecode is called once per Decode with the encoded block size,
	// the declared element count, the elapsed time and the resulting error.
	ObserveDecode(compression format.Compression, encodedBytes, elements int, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDecode(format.Compression, int, int, time.Duration, error) {}
