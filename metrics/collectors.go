package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/store"
)

// storeCollector takes one store.Stats snapshot per scrape.
type storeCollector struct {
	s *store.Store

	liveArrays    *prometheus.Desc
	heapBytes     *prometheus.Desc
	spilledArrays *prometheus.Desc
	segments      *prometheus.Desc
	segmentBytes  *prometheus.Desc
	retiredSlots  *prometheus.Desc
	spillRatio    *prometheus.Desc
}

func newStoreCollector(namespace string, s *store.Store) *storeCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "store", name), help, nil, nil)
	}

	return &storeCollector{
		s:             s,
		liveArrays:    desc("live_arrays", "Arrays currently held by the store"),
		heapBytes:     desc("heap_bytes", "Bytes of arrays held on the heap"),
		spilledArrays: desc("spilled_arrays", "Arrays currently held in spill segments"),
		segments:      desc("spill_segments", "Spill segment files currently mapped"),
		segmentBytes:  desc("spill_segment_bytes", "Total size of the mapped spill segments"),
		retiredSlots:  desc("retired_slots", "Slots retired after their generation wrapped"),
		spillRatio:    desc("spill_compression_ratio", "Stored to original size of spilled records"),
	}
}

func (c *storeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.liveArrays
	ch <- c.heapBytes
	ch <- c.spilledArrays
	ch <- c.segments
	ch <- c.segmentBytes
	ch <- c.retiredSlots
	ch <- c.spillRatio
}

func (c *storeCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.s.Stats()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	gauge(c.liveArrays, float64(st.LiveArrays))
	gauge(c.heapBytes, float64(st.HeapBytes))
	gauge(c.spilledArrays, float64(st.SpilledArrays))
	gauge(c.segments, float64(st.SpillSegments))
	gauge(c.segmentBytes, float64(st.SegmentBytes))
	gauge(c.retiredSlots, float64(st.RetiredSlots))
	gauge(c.spillRatio, st.SpillCompression.CompressionRatio())
}

type poolCollector struct {
	p *pool.ByteBufferPool

	acquired    *prometheus.Desc
	released    *prometheus.Desc
	allocated   *prometheus.Desc
	discarded   *prometheus.Desc
	defaultSize *prometheus.Desc
}

func newPoolCollector(namespace string, p *pool.ByteBufferPool) *poolCollector {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "buffer_pool", name), help, nil, nil)
	}

	return &poolCollector{
		p:           p,
		acquired:    desc("acquired_total", "Scratch buffers handed out"),
		released:    desc("released_total", "Scratch buffers returned"),
		allocated:   desc("allocated_total", "Scratch buffers or backing arrays allocated"),
		discarded:   desc("discarded_total", "Returned buffers dropped for exceeding the retention limit"),
		defaultSize: desc("default_size_bytes", "Current default scratch buffer size"),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.acquired
	ch <- c.released
	ch <- c.allocated
	ch <- c.discarded
	ch <- c.defaultSize
}

func (c *poolCollector) Collect(ch chan<- prometheus.Metric) {
	st := c.p.Stats()

	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.CounterValue, float64(st.Acquired))
	ch <- prometheus.MustNewConstMetric(c.released, prometheus.CounterValue, float64(st.Released))
	ch <- prometheus.MustNewConstMetric(c.allocated, prometheus.CounterValue, float64(st.Allocated))
	ch <- prometheus.MustNewConstMetric(c.discarded, prometheus.CounterValue, float64(st.Discarded))
	ch <- prometheus.MustNewConstMetric(c.defaultSize, prometheus.GaugeValue, float64(st.DefaultSize))
}
