package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/arloliu/mzarray/decode"
	"github.com/arloliu/mzarray/errs"
	"github.com/arloliu/mzarray/internal/options"
)

// Summary describes a finished run.
type Summary struct {
	Scheduled int
	Completed int
	Failed    int
	Points    int64
	Elapsed   time.Duration
}

// Ingestor runs ingestion tasks against one source file.
type Ingestor struct {
	*IngestorConfig
	src io.ReaderAt
	dec *decode.Decoder
}

// NewIngestor creates an Ingestor reading encoded blocks from src.
//
// Parameters:
//   - src: Source file, usually an *os.File
//   - dec: Decoder shared by all tasks
//   - opts: Optional configuration (workers, error policy, logger)
//
// Returns:
//   - *Ingestor: The ingestor
//   - error: Configuration error if an option is invalid
func NewIngestor(src io.ReaderAt, dec *decode.Decoder, opts ...IngestorOption) (*Ingestor, error) {
	if src == nil || dec == nil {
		return nil, errors.New("ingest: source and decoder are required")
	}

	cfg := newIngestorConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Ingestor{IngestorConfig: cfg, src: src, dec: dec}, nil
}

// RunAll runs the given tasks. See Run.
func (in *Ingestor) RunAll(ctx context.Context, tasks ...Task) (Summary, error) {
	return in.Run(ctx, slices.Values(tasks))
}

// Run schedules one goroutine per task, at most the configured number at a time.
//
// Scheduling stops when ctx is cancelled or, unless WithContinueOnError is
// set, when a task fails. Running tasks always complete.
//
// Returns:
//   - Summary: Counts of scheduled, completed and failed tasks
//   - error: The first failure, all failures joined with WithContinueOnError,
//     or the context error when the run was cancelled
func (in *Ingestor) Run(ctx context.Context, tasks iter.Seq[Task]) (Summary, error) {
	start := time.Now()
	in.logger.Info("ingestion started", zap.Int("workers", in.workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.workers)

	// running tasks are not interrupted by cancellation
	taskCtx := context.WithoutCancel(gctx)

	var (
		mu      sync.Mutex
		summary Summary
		failed  []error
	)

	for task := range tasks {
		if gctx.Err() != nil {
			break
		}

		summary.Scheduled++
		g.Go(func() error {
			n, err := task.ingest(taskCtx, in)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				err = fmt.Errorf("%s: %w", task, err)
				summary.Failed++
				in.logger.Warn("entity ingestion failed", zap.Stringer("entity", task), zap.Error(err))

				if in.continueOnError && !errors.Is(err, errs.ErrStorageExhausted) {
					failed = append(failed, err)
					return nil
				}

				return err
			}

			summary.Completed++
			summary.Points += int64(n)

			return nil
		})
	}

	err := g.Wait()
	if err == nil {
		err = errors.Join(failed...)
	}
	if err == nil {
		err = ctx.Err()
	}

	summary.Elapsed = time.Since(start)

	fields := []zap.Field{
		zap.Int("scheduled", summary.Scheduled),
		zap.Int("completed", summary.Completed),
		zap.Int("failed", summary.Failed),
		zap.Int64("points", summary.Points),
		zap.Duration("elapsed", summary.Elapsed),
	}
	if err != nil {
		in.logger.Error("ingestion finished with errors", append(fields, zap.Error(err))...)
	} else {
		in.logger.Info("ingestion finished", fields...)
	}

	return summary, err
}

// read reads and decodes one block.
func (in *Ingestor) read(ctx context.Context, desc decode.Descriptor) (decode.Array, error) {
	arr, err := in.dec.ReadAndDecode(ctx, in.src, desc)
	if err != nil {
		return decode.Array{}, err
	}
	if arr.Len() != desc.ElementCount {
		return decode.Array{}, fmt.Errorf("%w: decoded %d of %d values at offset %d",
			errs.ErrCorruptData, arr.Len(), desc.ElementCount, desc.Offset)
	}

	return arr, nil
}
