// Package config provides file configuration for mzarray.
//
// A Config is read from YAML. ${VAR} references are replaced with the
// environment value before parsing, and every field missing from the file
// keeps its Default value.
//
// Example:
//
//	cfg, err := config.Load("mzarray.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctrl := cfg.NewResourceController()
//	st, err := store.NewStore(cfg.StoreOptions(ctrl, logger)...)
package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/mzarray/decode"
	"github.com/arloliu/mzarray/format"
	"github.com/arloliu/mzarray/ingest"
	"github.com/arloliu/mzarray/internal/pool"
	"github.com/arloliu/mzarray/internal/resource"
	"github.com/arloliu/mzarray/logging"
	"github.com/arloliu/mzarray/store"
)

// Config is the complete configuration of an mzarray runtime.
type Config struct {
	Store   StoreConfig    `yaml:"store"`
	Decode  DecodeConfig   `yaml:"decode"`
	Ingest  IngestConfig   `yaml:"ingest"`
	Logging logging.Config `yaml:"logging"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// StoreConfig configures the data point store.
type StoreConfig struct {
	// MemoryLimitMB bounds the arrays kept on the heap; 0 keeps everything on the heap
	MemoryLimitMB int `yaml:"memory_limit_mb"`
	// Spill moves arrays beyond the memory limit to segment files
	Spill bool `yaml:"spill"`
	// SpillDir holds the segment files; empty means os.TempDir()
	SpillDir string `yaml:"spill_dir"`
	// SegmentSizeMB is the size of one segment file
	SegmentSizeMB int `yaml:"segment_size_mb"`
	// SpillCodec compresses spilled arrays: none, zlib, zstd, s2 or lz4
	SpillCodec string `yaml:"spill_codec"`
}

// DecodeConfig configures the array decoder and its scratch buffers.
type DecodeConfig struct {
	// BufferSizeKB is the initial scratch buffer size
	BufferSizeKB int `yaml:"buffer_size_kb"`
	// MaxRetainedBufferMB drops released scratch buffers larger than this
	MaxRetainedBufferMB int `yaml:"max_retained_buffer_mb"`
	// IOLimitMBPerSec paces raw block reads; 0 disables pacing
	IOLimitMBPerSec int `yaml:"io_limit_mb_per_sec"`
}

// IngestConfig configures ingestion runs.
type IngestConfig struct {
	// Workers is the number of entities ingested in parallel
	Workers int `yaml:"workers"`
	// ContinueOnError keeps ingesting when one entity fails
	ContinueOnError bool `yaml:"continue_on_error"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			MemoryLimitMB: 1024,
			Spill:         true,
			SegmentSizeMB: 64,
			SpillCodec:    "none",
		},
		Decode: DecodeConfig{
			BufferSizeKB:        pool.DefaultBufferSize / 1024,
			MaxRetainedBufferMB: pool.MaxRetainedBufferSize >> 20,
		},
		Ingest: IngestConfig{
			Workers: runtime.NumCPU(),
		},
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			Namespace: "mzarray",
		},
	}
}

// Load reads, parses and validates a YAML configuration file.
func Load(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath) //nolint:gosec // path is chosen by the caller
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return Parse(data)
}

// Parse parses and validates a YAML configuration.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes cfg to a YAML file.
func Save(filePath string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values.
func substituteEnvVars(content string) string {
	var b strings.Builder
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		b.WriteString(content[:start])
		b.WriteString(os.Getenv(content[start+2 : end]))
		content = content[end+1:]
	}
	b.WriteString(content)

	return b.String()
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Store.MemoryLimitMB < 0 {
		return fmt.Errorf("store.memory_limit_mb cannot be negative")
	}
	if c.Store.SegmentSizeMB <= 0 {
		return fmt.Errorf("store.segment_size_mb must be positive")
	}
	if _, err := format.ParseCodecType(c.Store.SpillCodec); err != nil {
		return fmt.Errorf("store.spill_codec: %w", err)
	}
	if c.Decode.BufferSizeKB <= 0 {
		return fmt.Errorf("decode.buffer_size_kb must be positive")
	}
	if c.Decode.MaxRetainedBufferMB < 0 {
		return fmt.Errorf("decode.max_retained_buffer_mb cannot be negative")
	}
	if c.Decode.IOLimitMBPerSec < 0 {
		return fmt.Errorf("decode.io_limit_mb_per_sec cannot be negative")
	}
	if c.Ingest.Workers <= 0 {
		return fmt.Errorf("ingest.workers must be positive")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

// NewResourceController creates the controller shared by the store (memory
// budget) and the decoder (read pacing).
func (c *Config) NewResourceController() *resource.Controller {
	return resource.NewController(resource.Config{
		MemoryLimitBytes:   int64(c.Store.MemoryLimitMB) << 20,
		IOLimitBytesPerSec: int64(c.Decode.IOLimitMBPerSec) << 20,
	})
}

// NewBufferPool creates the scratch buffer pool of the decoder.
func (c *Config) NewBufferPool() *pool.ByteBufferPool {
	return pool.NewByteBufferPool(c.Decode.BufferSizeKB*1024, c.Decode.MaxRetainedBufferMB<<20)
}

// StoreOptions converts the store section to store options.
func (c *Config) StoreOptions(ctrl *resource.Controller, logger *zap.Logger) []store.StoreOption {
	codec, _ := format.ParseCodecType(c.Store.SpillCodec)

	return []store.StoreOption{
		store.WithResourceController(ctrl),
		store.WithSpill(c.Store.Spill),
		store.WithSpillDir(c.Store.SpillDir),
		store.WithSegmentSize(c.Store.SegmentSizeMB << 20),
		store.WithSpillCodec(codec),
		store.WithLogger(logger),
	}
}

// DecoderOptions converts the decode section to decoder options.
func (c *Config) DecoderOptions(ctrl *resource.Controller, bufPool *pool.ByteBufferPool, logger *zap.Logger) []decode.DecoderOption {
	return []decode.DecoderOption{
		decode.WithIOController(ctrl),
		decode.WithBufferPool(bufPool),
		decode.WithLogger(logger),
	}
}

// IngestorOptions converts the ingest section to ingestor options.
func (c *Config) IngestorOptions(logger *zap.Logger) []ingest.IngestorOption {
	return []ingest.IngestorOption{
		ingest.WithWorkers(c.Ingest.Workers),
		ingest.WithContinueOnError(c.Ingest.ContinueOnError),
		ingest.WithLogger(logger),
	}
}
