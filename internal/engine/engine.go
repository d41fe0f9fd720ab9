// Package engine runs the classifier over large address lists in fixed-size chunks, reporting
// progress and yielding between chunks so callers stay responsive.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/Veraticus/mailvet/internal/classification"
	"github.com/Veraticus/mailvet/internal/common"
	"github.com/Veraticus/mailvet/internal/model"
	"github.com/google/uuid"
)

// Options configures a batch run.
type Options struct {
	BatchSize int           // Addresses classified per chunk
	Pause     time.Duration // Pause after each chunk; zero only yields the scheduler
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() Options {
	return Options{
		BatchSize: 10,
		Pause:     10 * time.Millisecond,
	}
}

// Runner classifies address lists chunk by chunk.
type Runner struct {
	classifier Classifier
}

// NewRunner creates a runner. A nil classifier selects the default rule set.
func NewRunner(classifier Classifier) *Runner {
	if classifier == nil {
		classifier = classification.NewClassifier()
	}
	return &Runner{classifier: classifier}
}

// RunBatches classifies addresses with the default classifier.
func RunBatches(ctx context.Context, addresses []string, opts Options, onProgress ProgressFunc) ([]model.Verdict, error) {
	return NewRunner(nil).Run(ctx, addresses, opts, onProgress)
}

// Run classifies addresses in contiguous chunks. Verdict i always belongs to address i. When ctx
// is cancelled the verdicts of every completed chunk are returned together with ctx.Err().
func (r *Runner) Run(ctx context.Context, addresses []string, opts Options, onProgress ProgressFunc) ([]model.Verdict, error) {
	return r.RunSource(ctx, SliceSource(addresses), opts, onProgress)
}

// RunSource is Run over a source that may fail mid-stream. A source error is returned wrapped,
// alongside the verdicts of all chunks completed before it.
func (r *Runner) RunSource(ctx context.Context, src AddressSource, opts Options, onProgress ProgressFunc) ([]model.Verdict, error) {
	if opts.BatchSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", common.ErrInvalidBatchSize, opts.BatchSize)
	}

	runID := uuid.New().String()
	ctx = common.WithLogger(ctx, common.Logger(ctx).With("run_id", runID))
	startTime := time.Now()
	total := src.Total()

	verdicts := make([]model.Verdict, 0, max(total, 0))
	batches := 0

	common.LogInfo(ctx, "Starting batch validation", common.Fields{
		"total":      total,
		"batch_size": opts.BatchSize,
		"pause":      opts.Pause,
	})

	for {
		if err := ctx.Err(); err != nil {
			logStopped(ctx, len(verdicts), err)
			return verdicts, err
		}

		chunk, err := src.Next(ctx, opts.BatchSize)
		if len(chunk) > 0 {
			for _, address := range chunk {
				verdicts = append(verdicts, r.classifier.Classify(address))
			}
			batches++

			reportedTotal := total
			if reportedTotal < len(verdicts) {
				reportedTotal = len(verdicts)
			}
			if onProgress != nil {
				onProgress(min(len(verdicts), reportedTotal), reportedTotal)
			}
			common.LogDebug(ctx, "Batch classified", common.Fields{
				"batch":     batches,
				"size":      len(chunk),
				"processed": len(verdicts),
			})
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			logStopped(ctx, len(verdicts), err)
			return verdicts, fmt.Errorf("address source failed after %d addresses: %w", len(verdicts), err)
		}

		if err := yield(ctx, opts.Pause); err != nil {
			logStopped(ctx, len(verdicts), err)
			return verdicts, err
		}
	}

	common.LogInfo(ctx, "Batch validation complete", common.Fields{
		"processed": len(verdicts),
		"batches":   batches,
		"duration":  time.Since(startTime),
	})

	return verdicts, nil
}

// yield lets other goroutines run and then waits out pause unless ctx ends first.
func yield(ctx context.Context, pause time.Duration) error {
	runtime.Gosched()
	if pause <= 0 {
		return nil
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func logStopped(ctx context.Context, processed int, err error) {
	common.Logger(ctx).Warn("Batch validation stopped early",
		"processed", processed,
		"error", err)
}
