// Package mzarray decodes the binary data arrays of mzML mass spectrometry files
// and keeps the decoded values in an out-of-core data point store.
//
// mzML files carry each spectrum and chromatogram as base64 text blocks,
// optionally zlib compressed or MS-Numpress encoded. Whole-run files easily
// hold more values than fit on the heap, so decoded arrays are handed to a
// store that keeps them in memory up to a budget and spills the rest to
// memory-mapped segment files.
//
// # Core Features
//
//   - Decoding of raw, zlib and the three MS-Numpress schemes, alone or with zlib
//   - 16, 32 and 64-bit floats and 32/64-bit integers, little-endian
//   - A handle based store with a memory budget and compressed spill segments
//   - Sessions that release every array of an import in one call
//   - Chromatogram and Spectrum entities safe for concurrent readers
//   - Parallel ingestion with fail-fast or continue-on-error policies
//   - zap logging, Prometheus metrics and YAML configuration
//
// # Basic Usage
//
// Wiring a runtime from a configuration file:
//
//	import "github.com/arloliu/mzarray"
//
//	cfg, _ := config.Load("mzarray.yaml")
//	engine, _ := mzarray.New(cfg)
//	defer engine.Close()
//
//	// One session per imported file
//	session := engine.NewSession()
//	defer session.Release()
//
//	chrom := model.NewChromatogram(session, 1, model.ChromatogramTIC, model.SeparationLC)
//	rt, _ := mzarray.NewDescriptor(1024, 88, 10, format.AccessionZlib, format.AccessionFloat64, format.AccessionTimeArray)
//	intensity, _ := mzarray.NewDescriptor(1200, 56, 10, format.AccessionNoCompression, format.AccessionFloat32, format.AccessionIntensityArray)
//
//	f, _ := os.Open("run.mzML")
//	in, _ := engine.NewIngestor(f)
//	summary, err := in.RunAll(ctx, &ingest.ChromatogramTask{
//	    Chromatogram: chrom,
//	    RT:           rt,
//	    Intensity:    intensity,
//	})
//
// Decoding a single block already in memory:
//
//	arr, err := mzarray.DecodeBlock(desc, encoded)
//	fmt.Println(arr.Float64s())
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the decode, store
// and ingest packages. For fine-grained control, use those packages directly.
package mzarray

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/arloliu/mzarray/config"
	"github.com/arloliu/mzarray/decode"
	"github.com/arloliu/mzarray/ingest"
	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/internal/resource"
	"github.com/arloliu/mzarray/logging"
	"github.com/arloliu/mzarray/metrics"
	"github.com/arloliu/mzarray/store"
)

// EngineConfig holds the collaborators that do not come from a config.Config.
type EngineConfig struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// EngineOption represents a functional option for configuring an Engine.
type EngineOption = options.Option[*EngineConfig]

// WithLogger uses logger instead of building one from the logging section.
func WithLogger(logger *zap.Logger) EngineOption {
	return options.NoError(func(c *EngineConfig) {
		c.logger = logger
	})
}

// WithRegisterer registers metrics with reg instead of prometheus.DefaultRegisterer.
// It has no effect unless metrics are enabled.
func WithRegisterer(reg prometheus.Registerer) EngineOption {
	return options.NoError(func(c *EngineConfig) {
		c.registerer = reg
	})
}

// Engine owns the shared runtime of an application: the logger, the resource
// controller, the scratch buffer pool, the data point store and the decoder.
type Engine struct {
	cfg     *config.Config
	logger  *zap.Logger
	ctrl    *resource.Controller
	pool    *pool.ByteBufferPool
	store   *store.Store
	decoder *decode.Decoder
	metrics *metrics.Collector // nil when metrics are disabled

	closeOnce sync.Once
	closeErr  error
}

// New creates an Engine from cfg.
//
// Parameters:
//   - cfg: Configuration; nil uses config.Default()
//   - opts: Optional logger and metrics registerer
//
// Returns:
//   - *Engine: The engine; Close releases its store
//   - error: Validation error, logger or spill directory setup failure
func New(cfg *config.Config, opts ...EngineOption) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ec := &EngineConfig{}
	if err := options.Apply(ec, opts...); err != nil {
		return nil, err
	}

	logger := ec.logger
	if logger == nil {
		var err error
		if logger, err = logging.New(cfg.Logging); err != nil {
			return nil, err
		}
	}

	e := &Engine{
		cfg:    cfg,
		logger: logger,
		ctrl:   cfg.NewResourceController(),
		pool:   cfg.NewBufferPool(),
	}

	st, err := store.NewStore(cfg.StoreOptions(e.ctrl, logger)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}
	e.store = st

	decOpts := cfg.DecoderOptions(e.ctrl, e.pool, logger)
	if cfg.Metrics.Enabled {
		e.metrics = metrics.NewCollector(ec.registerer, cfg.Metrics.Namespace)
		if err := errors.Join(e.metrics.WatchStore(st), e.metrics.WatchBufferPool(e.pool)); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		decOpts = append(decOpts, decode.WithRecorder(e.metrics))
	}

	if e.decoder, err = decode.NewDecoder(decOpts...); err != nil {
		_ = st.Close()
		return nil, err
	}

	logger.Info("engine started",
		zap.Int("memory_limit_mb", cfg.Store.MemoryLimitMB),
		zap.Bool("spill", cfg.Store.Spill),
		zap.String("spill_codec", cfg.Store.SpillCodec),
		zap.Bool("metrics", cfg.Metrics.Enabled),
	)

	return e, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() *config.Config { return e.cfg }

// Logger returns the engine logger.
func (e *Engine) Logger() *zap.Logger { return e.logger }

// Store returns the data point store.
func (e *Engine) Store() *store.Store { return e.store }

// Decoder returns the shared decoder.
func (e *Engine) Decoder() *decode.Decoder { return e.decoder }

// Metrics returns the metrics collector, or nil when metrics are disabled.
func (e *Engine) Metrics() *metrics.Collector { return e.metrics }

// NewSession opens a session on the store. Releasing the session removes every
// array stored through it.
func (e *Engine) NewSession() *store.Session {
	return e.store.NewSession()
}

// NewIngestor creates an Ingestor reading from src with the engine decoder.
// opts are applied after the ingest section of the configuration.
func (e *Engine) NewIngestor(src io.ReaderAt, opts ...ingest.IngestorOption) (*ingest.Ingestor, error) {
	return ingest.NewIngestor(src, e.decoder, append(e.cfg.IngestorOptions(e.logger), opts...)...)
}

// Close closes the store and removes its spill segments. It is safe to call
// more than once.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.store.Close()
		e.logger.Info("engine closed")
		_ = e.logger.Sync()
	})

	return e.closeErr
}

// NewStore creates a standalone data point store. See store.NewStore.
func NewStore(opts ...store.StoreOption) (*store.Store, error) {
	return store.NewStore(opts...)
}

// NewDecoder creates a decoder. See decode.NewDecoder.
func NewDecoder(opts ...decode.DecoderOption) (*decode.Decoder, error) {
	return decode.NewDecoder(opts...)
}

// NewDescriptor builds a block descriptor from PSI-MS accessions.
// See decode.NewDescriptor.
func NewDescriptor(offset int64, encodedLength, elementCount int, compressionAcc, bitLengthAcc, roleAcc string) (decode.Descriptor, error) {
	return decode.NewDescriptor(offset, encodedLength, elementCount, compressionAcc, bitLengthAcc, roleAcc)
}

var defaultDecoder = sync.OnceValue(func() *decode.Decoder {
	dec, _ := decode.NewDecoder()
	return dec
})

// DecodeBlock decodes one encoded block with a process-wide default decoder.
//
// Parameters:
//   - desc: Descriptor of the block
//   - encoded: The encoded block, exactly as found in the file
//
// Returns:
//   - decode.Array: The decoded values
//   - error: Any error of decode.Decoder.Decode
func DecodeBlock(desc decode.Descriptor, encoded []byte) (decode.Array, error) {
	return defaultDecoder().Decode(desc, encoded)
}
