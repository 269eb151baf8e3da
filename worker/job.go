package worker

import (
	"time"

	fw "github.com/collmot/flockwave-spec"
)

// Job is a source of messages to be checked by a worker.
type Job struct {
	// Index is the position of the job in its batch.
	Index int

	// Name identifies the source in reports, e.g. a file name.
	Name string

	// Data is the raw JSON content of the source.
	Data []byte
}

// JobResult is the outcome of a job.
type JobResult struct {
	// Index matches the Job.Index that produced this result.
	Index int

	// Report describes the checked source.
	Report *fw.Report
}

// BatchResult aggregates the reports of a batch.
type BatchResult struct {
	// Reports holds the reports in input order. It ends at the first
	// failed source; later sources are not reported.
	Reports []*fw.Report

	// TotalJobs is the number of jobs in the batch.
	TotalJobs int

	// CompletedJobs is the number of jobs that were checked.
	CompletedJobs int

	// FailedJobs is the number of checked jobs that failed.
	FailedJobs int

	// TotalDuration is the wall time of the batch.
	TotalDuration time.Duration

	// Err is set if the batch was cancelled before completion.
	Err error
}

// HasErrors returns true if any reported source failed.
func (br *BatchResult) HasErrors() bool {
	return br.FirstFailure() != nil
}

// FirstFailure returns the report of the first failed source in input
// order, or nil if there is none.
func (br *BatchResult) FirstFailure() *fw.Report {
	for _, r := range br.Reports {
		if !r.Valid() {
			return r
		}
	}
	return nil
}

// MessageCount returns the number of messages in the reported sources.
func (br *BatchResult) MessageCount() int {
	count := 0
	for _, r := range br.Reports {
		count += r.Count
	}
	return count
}

// Complete returns true if every job of the batch was reported and none
// failed.
func (br *BatchResult) Complete() bool {
	return br.Err == nil && len(br.Reports) == br.TotalJobs && !br.HasErrors()
}
