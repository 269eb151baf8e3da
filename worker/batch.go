package worker

import (
	"context"
	"time"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/pkg/logger"
)

// BatchValidator checks many sources in parallel.
type BatchValidator struct {
	validator Validator
	opts      []fw.Option
	workers   int
}

// NewBatchValidator creates a batch validator that checks sources with v.
func NewBatchValidator(v Validator, opts ...fw.Option) *BatchValidator {
	return &BatchValidator{
		validator: v,
		opts:      opts,
		workers:   fw.Apply(opts...).WorkerCount,
	}
}

// ValidateBatch checks every job and returns the reports in input order.
//
// No new job is started once a source has failed, and the reports end at
// the first failed source in input order. Job indices are assigned from
// the position in jobs.
func (bv *BatchValidator) ValidateBatch(ctx context.Context, jobs []Job) *BatchResult {
	start := time.Now()
	result := &BatchResult{
		Reports:   make([]*fw.Report, 0, len(jobs)),
		TotalJobs: len(jobs),
	}
	if len(jobs) == 0 {
		return result
	}

	workers := bv.workers
	if workers > len(jobs) {
		workers = len(jobs)
	}
	opts := append(append([]fw.Option{}, bv.opts...), fw.WithWorkerCount(workers))
	pool := NewPool(bv.validator, opts...)

	reports := make([]*fw.Report, len(jobs))
	failed := make(chan struct{})
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		signalled := false
		for r := range pool.Results() {
			reports[r.Index] = r.Report
			result.CompletedJobs++
			if !r.Report.Valid() {
				result.FailedJobs++
				if !signalled {
					signalled = true
					close(failed)
				}
			}
		}
	}()

feed:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
			break feed
		case <-failed:
			logger.Debug("Skipping %d remaining sources after a failure", len(jobs)-i)
			break feed
		default:
		}
		job.Index = i
		pool.Submit(job)
	}
	pool.Wait()
	<-collected

	for _, r := range reports {
		if r == nil {
			break
		}
		result.Reports = append(result.Reports, r)
		if !r.Valid() {
			break
		}
	}
	result.TotalDuration = time.Since(start)
	return result
}

// ValidateBatchSimple is a convenience function for batch validation with
// default options.
func ValidateBatchSimple(ctx context.Context, v Validator, jobs []Job) *BatchResult {
	return NewBatchValidator(v).ValidateBatch(ctx, jobs)
}
