// Package metrics exports decoder, store and buffer pool metrics to Prometheus.
//
// # Basic Usage
//
//	reg := prometheus.NewRegistry()
//	collector := metrics.NewCollector(reg, "mzarray")
//
//	dec, _ := decode.NewDecoder(decode.WithRecorder(collector))
//	collector.WatchStore(st)
//	collector.WatchBufferPool(pool.Default())
//
// Decode calls are counted and timed per compression scheme. Store and pool
// gauges are read from their Stats snapshots at scrape time.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/arloliu/mzarray/decode"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/store"
)

// Collector records decode metrics and registers store and pool collectors.
type Collector struct {
	reg       prometheus.Registerer
	namespace string

	decodes        *prometheus.CounterVec   // by compression and result
	encodedBytes   *prometheus.CounterVec   // by compression
	decodedValues  *prometheus.CounterVec   // by compression
	decodeDuration *prometheus.HistogramVec // by compression
}

var _ decode.Recorder = (*Collector)(nil)

// NewCollector creates a collector registering its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		reg:       reg,
		namespace: namespace,
		decodes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "arrays_total",
				Help:      "Binary arrays decoded, by compression scheme and result",
			},
			[]string{"compression", "result"},
		),
		encodedBytes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "encoded_bytes_total",
				Help:      "Encoded bytes passed to the decoder",
			},
			[]string{"compression"},
		),
		decodedValues: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "values_total",
				Help:      "Values produced by successful decodes",
			},
			[]string{"compression"},
		),
		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "decoder",
				Name:      "duration_seconds",
				Help:      "Time spent decoding one binary array",
				Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10), // 1us to ~260ms
			},
			[]string{"compression"},
		),
	}
}

// ObserveDecode implements decode.Recorder.
func (c *Collector) ObserveDecode(compression format.Compression, encodedBytes, elements int, elapsed time.Duration, err error) {
	label := compression.String()

	c.decodes.WithLabelValues(label, result(err)).Inc()
	c.encodedBytes.WithLabelValues(label).Add(float64(encodedBytes))
	c.decodeDuration.WithLabelValues(label).Observe(elapsed.Seconds())
	if err == nil {
		c.decodedValues.WithLabelValues(label).Add(float64(elements))
	}
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, errs.ErrCorruptData):
		return "corrupt"
	case errors.Is(err, errs.ErrUnsupportedCompression):
		return "unsupported_compression"
	case errors.Is(err, errs.ErrUnsupportedBitLength):
		return "unsupported_bit_length"
	case errors.Is(err, errs.ErrInvalidDescriptor):
		return "invalid_descriptor"
	default:
		return "error"
	}
}

// WatchStore registers gauges reporting the Stats of s.
func (c *Collector) WatchStore(s *store.Store) error {
	return c.reg.Register(newStoreCollector(c.namespace, s))
}

// WatchBufferPool registers gauges and counters reporting the Stats of p.
func (c *Collector) WatchBufferPool(p *pool.ByteBufferPool) error {
	return c.reg.Register(newPoolCollector(c.namespace, p))
}
