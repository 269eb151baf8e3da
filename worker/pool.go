package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	fw "github.com/collmot/flockwave-spec"
)

// Pool manages a pool of worker goroutines that check jobs.
//
// Jobs are handed to workers one at a time: Submit blocks until a worker
// accepts the job, so nothing is queued that could not be withdrawn.
type Pool struct {
	workers       int
	allowMultiple bool
	jobsChan      chan Job
	resultChan    chan *JobResult
	validator     Validator
	metrics       *fw.Metrics
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	closed        atomic.Bool

	jobsSubmitted atomic.Uint64
	jobsCompleted atomic.Uint64
	totalDuration atomic.Uint64
}

// NewPool creates a pool that checks jobs with validator. The worker
// count and batch handling come from opts.
func NewPool(validator Validator, opts ...fw.Option) *Pool {
	o := fw.Apply(opts...)
	workers := o.WorkerCount
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &Pool{
		workers:       workers,
		allowMultiple: o.AllowMultiple,
		jobsChan:      make(chan Job),
		resultChan:    make(chan *JobResult, workers),
		validator:     validator,
		metrics:       o.Metrics,
		ctx:           ctx,
		cancel:        cancel,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}

	return p
}

// Submit hands a job to a worker, blocking until one is free.
// It returns false if the pool is closed.
func (p *Pool) Submit(job Job) bool {
	if p.closed.Load() {
		return false
	}

	select {
	case <-p.ctx.Done():
		return false
	case p.jobsChan <- job:
		p.jobsSubmitted.Add(1)
		return true
	}
}

// Results returns the channel for receiving job results. It is closed
// once the pool is closed and every accepted job has been reported.
func (p *Pool) Results() <-chan *JobResult {
	return p.resultChan
}

// Close stops the pool without waiting for results. Results that nobody
// receives are discarded.
func (p *Pool) Close() {
	if p.closed.Swap(true) {
		return
	}

	p.cancel()
	close(p.jobsChan)

	done := make(chan struct{})
	go func() {
		for range p.resultChan {
			// Discard results
		}
		close(done)
	}()

	p.wg.Wait()
	close(p.resultChan)
	<-done
}

// Wait stops accepting jobs and closes the result channel after every
// accepted job has been reported. The caller must keep receiving from
// Results until it is closed.
func (p *Pool) Wait() {
	if p.closed.Swap(true) {
		return
	}

	close(p.jobsChan)
	go func() {
		p.wg.Wait()
		close(p.resultChan)
		p.cancel()
	}()
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:       p.workers,
		JobsSubmitted: p.jobsSubmitted.Load(),
		JobsCompleted: p.jobsCompleted.Load(),
		AvgDuration:   p.averageDuration(),
	}
}

// PoolStats contains pool statistics.
type PoolStats struct {
	Workers       int
	JobsSubmitted uint64
	JobsCompleted uint64
	AvgDuration   time.Duration
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for job := range p.jobsChan {
		result := p.processJob(job)
		p.jobsCompleted.Add(1)
		p.totalDuration.Add(uint64(result.Report.Duration)) //nolint:gosec // Safe: durations are positive

		select {
		case <-p.ctx.Done():
			return
		case p.resultChan <- result:
		}
	}
}

func (p *Pool) processJob(job Job) *JobResult {
	start := time.Now()
	report := &fw.Report{Source: job.Name}

	if p.validator == nil {
		report.Err = ErrNoValidator
	} else {
		report.Count, report.Err = CheckBytes(job.Data, p.validator, p.allowMultiple)
	}
	report.Duration = time.Since(start)

	if p.metrics != nil && report.Err == nil {
		p.metrics.RecordSource(report.Count)
	}
	return &JobResult{Index: job.Index, Report: report}
}

func (p *Pool) averageDuration() time.Duration {
	completed := p.jobsCompleted.Load()
	if completed == 0 {
		return 0
	}
	return time.Duration(p.totalDuration.Load() / completed) //nolint:gosec // Safe: average of positive durations
}

// ErrNoValidator is reported when the pool has no validator configured.
var ErrNoValidator = poolError("no validator configured")

type poolError string

func (e poolError) Error() string {
	return string(e)
}
