// Package worker validates documents that may hold several Flockwave
// messages, and runs such checks over many sources in parallel.
//
// Check validates one decoded document. A JSON array is treated as a batch
// of messages when allowed, and validation stops at the first invalid one:
//
//	n, err := worker.Check(doc, v, true)
//	if err != nil {
//	    // err is a *flockwave.ValidationError if a message was invalid
//	}
//
// BatchValidator checks many named sources with a bounded number of
// workers and reports them in input order:
//
//	bv := worker.NewBatchValidator(v, fw.WithWorkerCount(4))
//	result := bv.ValidateBatch(ctx, jobs)
//	for _, report := range result.Reports {
//	    fmt.Println(report.Summary())
//	}
package worker
