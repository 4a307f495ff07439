package decode

import (
	"errors"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/internal/options"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/internal/resource"
)

// DecoderConfig holds the collaborators of a Decoder.
type DecoderConfig struct {
	pool     *pool.ByteBufferPool
	logger   *zap.Logger
	recorder Recorder
	io       *resource.Controller
}

func newDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		pool:     pool.Default(),
		logger:   zap.NewNop(),
		recorder: nopRecorder{},
	}
}

// DecoderOption represents a functional option for configuring a Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithBufferPool sets the scratch buffer pool. The process-wide pool is used by default.
func WithBufferPool(p *pool.ByteBufferPool) DecoderOption {
	return options.New(func(c *DecoderConfig) error {
		if p == nil {
			return errors.New("decode: nil buffer pool")
		}
		c.pool = p

		return nil
	})
}

// WithLogger sets the logger. Decode failures are logged at debug level.
func WithLogger(logger *zap.Logger) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}

// WithRecorder sets the recorder that observes every decode call.
func WithRecorder(r Recorder) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		if r != nil {
			c.recorder = r
		}
	})
}

// WithIOController paces ReadAndDecode reads with the controller's IO limit.
func WithIOController(ctrl *resource.Controller) DecoderOption {
	return options.NoError(func(c *DecoderConfig) {
		c.io = ctrl
	})
}
