package ingest

import (
	"fmt"
	"runtime"

	"go.uber.org/zap"

	"github.com/arloliu/mzarray/internal/options"
)

// IngestorConfig holds the configuration of an Ingestor.
type IngestorConfig struct {
	workers         int
	continueOnError bool
	logger          *zap.Logger
}

func newIngestorConfig() *IngestorConfig {
	return &IngestorConfig{
		workers: runtime.GOMAXPROCS(0),
		logger:  zap.NewNop(),
	}
}

// IngestorOption represents a functional option for configuring an Ingestor.
type IngestorOption = options.Option[*IngestorConfig]

// WithWorkers sets the number of entities ingested in parallel.
// The default is GOMAXPROCS.
func WithWorkers(n int) IngestorOption {
	return options.New(func(c *IngestorConfig) error {
		if n <= 0 {
			return fmt.Errorf("ingest: workers must be positive, got %d", n)
		}
		c.workers = n

		return nil
	})
}

// WithContinueOnError keeps ingesting the remaining entities when one fails.
// Failures are collected and returned together. errs.ErrStorageExhausted
// always stops the run.
func WithContinueOnError(enabled bool) IngestorOption {
	return options.NoError(func(c *IngestorConfig) {
		c.continueOnError = enabled
	})
}

func WithLogger(logger *zap.Logger) IngestorOption {
	return options.NoError(func(c *IngestorConfig) {
		if logger != nil {
			c.logger = logger
		}
	})
}
