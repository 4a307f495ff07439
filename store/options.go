package store

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/internal/resource"
)

// DefaultSegmentSize is the default size of a spill segment file.
const DefaultSegmentSize = 64 * 1024 * 1024 // 64MiB

// StoreConfig holds the configuration of a Store.
type StoreConfig struct {
	memoryLimit  int64
	controller   *resource.Controller
	spillEnabled bool
	spillDir     string
	segmentSize  int
	spillCodec   format.CodecType
	logger       *zap.Logger
}

func newStoreConfig() *StoreConfig {
	return &StoreConfig{
		spillEnabled: true,
		segmentSize:  DefaultSegmentSize,
		spillCodec:   format.CodecNone,
		logger:       zap.NewNop(),
	}
}

// StoreOption represents a functional option for configuring a Store.
type StoreOption = options.Option[*StoreConfig]

// WithMemoryLimit bounds the bytes of arrays kept on the heap.
// 0, the default, keeps every array on the heap.
func WithMemoryLimit(bytes int64) StoreOption {
	return options.New(func(c *StoreConfig) error {
		if bytes < 0 {
			return fmt.Errorf("store: negative memory limit %d", bytes)
		}
		c.memoryLimit = bytes

		return nil
	})
}

// WithResourceController shares a resource controller's memory budget with the store.
// It takes precedence over WithMemoryLimit.
func WithResourceController(ctrl *resource.Controller) StoreOption {
	return options.NoError(func(c *StoreConfig) {
		c.controller = ctrl
	})
}

// WithSpill enables or disables spilling to segment files. Enabled by default.
func WithSpill(enabled bool) StoreOption {
	return options.NoError(func(c *StoreConfig) {
		c.spillEnabled = enabled
	})
}

// WithSpillDir sets the directory for spill segment files. os.TempDir() by default.
func WithSpillDir(dir string) StoreOption {
	return options.NoError(func(c *StoreConfig) {
		c.spillDir = dir
	})
}

// WithSegmentSize sets the size of spill segment files.
// Arrays larger than a segment get a dedicated segment of their own size.
func WithSegmentSize(size int) StoreOption {
	return options.New(func(c *StoreConfig) error {
		if size <= 0 {
			return errors.New("store: segment size must be positive")
		}
		c.segmentSize = size

		return nil
	})
}

// WithSpillCodec sets the codec used to compress spill records. None by default.
func WithSpillCodec(codec format.CodecType) StoreOption {
	return options.NoError(func(c *StoreConfig) {
		c.spillCodec = codec
	})
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return options.NoError(func(c *StoreConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}
