package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	fw "github.com/collmot/flockwave-spec"
)

// mockValidator rejects objects with "invalid": true and sleeps for
// "delay" milliseconds before answering.
type mockValidator struct {
	callCount atomic.Int32

	mu   sync.Mutex
	seen []any
}

func (m *mockValidator) Validate(candidate any) error {
	m.callCount.Add(1)
	m.mu.Lock()
	m.seen = append(m.seen, candidate)
	m.mu.Unlock()

	obj, ok := candidate.(map[string]any)
	if !ok {
		return nil
	}
	if d, ok := obj["delay"].(json.Number); ok {
		ms, _ := d.Int64()
		time.Sleep(time.Duration(ms) * time.Millisecond)
	}
	if obj["invalid"] == true {
		return &fw.ValidationError{Message: "object is invalid"}
	}
	return nil
}

func TestPool_NewPool(t *testing.T) {
	validator := &mockValidator{}
	pool := NewPool(validator, fw.WithWorkerCount(2))
	defer pool.Close()

	if pool == nil {
		t.Fatal("expected non-nil pool")
	}
	if pool.workers != 2 {
		t.Errorf("workers = %d; want 2", pool.workers)
	}
	if !pool.allowMultiple {
		t.Error("batches should be allowed by default")
	}
}

func TestPool_DefaultWorkers(t *testing.T) {
	pool := NewPool(&mockValidator{})
	defer pool.Close()

	if pool.workers <= 0 {
		t.Errorf("workers = %d; want > 0", pool.workers)
	}
}

func TestPool_SubmitAndReceive(t *testing.T) {
	validator := &mockValidator{}
	pool := NewPool(validator, fw.WithWorkerCount(2))
	defer pool.Close()

	submitted := pool.Submit(Job{Index: 7, Name: "test-1", Data: []byte(`[{}, {}]`)})
	if !submitted {
		t.Error("expected job to be submitted")
	}

	select {
	case result := <-pool.Results():
		if result.Index != 7 {
			t.Errorf("Index = %d; want 7", result.Index)
		}
		if result.Report.Source != "test-1" {
			t.Errorf("Source = %q; want %q", result.Report.Source, "test-1")
		}
		if result.Report.Count != 2 {
			t.Errorf("Count = %d; want 2", result.Report.Count)
		}
		if result.Report.Err != nil {
			t.Errorf("Err = %v; want nil", result.Report.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
	}
}

func TestPool_SingleMessageMode(t *testing.T) {
	validator := &mockValidator{}
	pool := NewPool(validator, fw.WithWorkerCount(1), fw.WithAllowMultiple(false))
	defer pool.Close()

	pool.Submit(Job{Name: "array", Data: []byte(`[{"invalid": true}]`)})

	select {
	case result := <-pool.Results():
		if result.Report.Count != 1 {
			t.Errorf("Count = %d; want 1", result.Report.Count)
		}
		if validator.callCount.Load() != 1 {
			t.Errorf("callCount = %d; want 1", validator.callCount.Load())
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
	}
}

func TestPool_SubmitToClosedPool(t *testing.T) {
	pool := NewPool(&mockValidator{}, fw.WithWorkerCount(2))
	pool.Close()

	if pool.Submit(Job{Name: "after-close"}) {
		t.Error("expected submit to fail after close")
	}
}

func TestPool_DoubleClose(t *testing.T) {
	pool := NewPool(&mockValidator{}, fw.WithWorkerCount(2))

	pool.Close()
	pool.Close() // Should not panic
}

func TestPool_Wait(t *testing.T) {
	pool := NewPool(&mockValidator{}, fw.WithWorkerCount(2))

	go func() {
		for i := 0; i < 5; i++ {
			pool.Submit(Job{Index: i, Data: []byte(`{}`)})
		}
		pool.Wait()
	}()

	seen := map[int]bool{}
	for result := range pool.Results() {
		seen[result.Index] = true
	}
	if len(seen) != 5 {
		t.Errorf("received %d results; want 5", len(seen))
	}
	if pool.Submit(Job{}) {
		t.Error("expected submit to fail after Wait")
	}
}

func TestPool_NilValidator(t *testing.T) {
	pool := NewPool(nil, fw.WithWorkerCount(2))
	defer pool.Close()

	pool.Submit(Job{Name: "nil-validator"})

	select {
	case result := <-pool.Results():
		if !errors.Is(result.Report.Err, ErrNoValidator) {
			t.Errorf("Err = %v; want ErrNoValidator", result.Report.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
	}
}

func TestPool_Stats(t *testing.T) {
	pool := NewPool(&mockValidator{}, fw.WithWorkerCount(2))
	defer pool.Close()

	pool.Submit(Job{Name: "stats-test", Data: []byte(`{}`)})

	select {
	case <-pool.Results():
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
	}

	stats := pool.Stats()
	if stats.Workers != 2 {
		t.Errorf("Workers = %d; want 2", stats.Workers)
	}
	if stats.JobsSubmitted != 1 {
		t.Errorf("JobsSubmitted = %d; want 1", stats.JobsSubmitted)
	}
	if stats.JobsCompleted != 1 {
		t.Errorf("JobsCompleted = %d; want 1", stats.JobsCompleted)
	}
}

func jobs(data ...string) []Job {
	out := make([]Job, len(data))
	for i, d := range data {
		out[i] = Job{Name: fmt.Sprintf("source-%d.json", i), Data: []byte(d)}
	}
	return out
}

func TestBatchValidator_EmptyBatch(t *testing.T) {
	bv := NewBatchValidator(&mockValidator{}, fw.WithWorkerCount(2))

	result := bv.ValidateBatch(context.Background(), nil)
	if result.TotalJobs != 0 {
		t.Errorf("TotalJobs = %d; want 0", result.TotalJobs)
	}
	if !result.Complete() {
		t.Error("an empty batch is complete")
	}
}

func TestBatchValidator_InputOrder(t *testing.T) {
	validator := &mockValidator{}
	bv := NewBatchValidator(validator, fw.WithWorkerCount(4))

	// Earlier sources finish last.
	batch := jobs(
		`{"delay": 40}`,
		`{"delay": 30}`,
		`[{"delay": 20}, {}]`,
		`{"delay": 10}`,
		`[]`,
		`{}`,
	)
	result := bv.ValidateBatch(context.Background(), batch)

	if !result.Complete() {
		t.Fatalf("batch should be complete: %+v", result)
	}
	if len(result.Reports) != len(batch) {
		t.Fatalf("len(Reports) = %d; want %d", len(result.Reports), len(batch))
	}
	for i, r := range result.Reports {
		if r.Source != batch[i].Name {
			t.Errorf("Reports[%d].Source = %q; want %q", i, r.Source, batch[i].Name)
		}
	}
	if result.Reports[2].Count != 2 {
		t.Errorf("Reports[2].Count = %d; want 2", result.Reports[2].Count)
	}
	if result.Reports[4].Count != 0 {
		t.Errorf("Reports[4].Count = %d; want 0", result.Reports[4].Count)
	}
	if result.MessageCount() != 6 {
		t.Errorf("MessageCount() = %d; want 6", result.MessageCount())
	}
	if result.CompletedJobs != 6 || result.FailedJobs != 0 {
		t.Errorf("CompletedJobs = %d, FailedJobs = %d; want 6, 0", result.CompletedJobs, result.FailedJobs)
	}
}

func TestBatchValidator_StopsAfterFailure(t *testing.T) {
	validator := &mockValidator{}
	bv := NewBatchValidator(validator, fw.WithWorkerCount(1))

	data := make([]string, 20)
	for i := range data {
		data[i] = `{"delay": 5}`
	}
	data[3] = `{"invalid": true}`
	result := bv.ValidateBatch(context.Background(), jobs(data...))

	if len(result.Reports) != 4 {
		t.Fatalf("len(Reports) = %d; want 4", len(result.Reports))
	}
	failure := result.FirstFailure()
	if failure == nil || failure.Source != "source-3.json" {
		t.Fatalf("FirstFailure() = %+v; want source-3.json", failure)
	}
	if !failure.Invalid() {
		t.Errorf("failure should be a validation error: %v", failure.Err)
	}
	if !result.HasErrors() || result.Complete() {
		t.Error("batch should report the failure")
	}
	if result.CompletedJobs >= result.TotalJobs {
		t.Errorf("CompletedJobs = %d; expected work to stop early", result.CompletedJobs)
	}
}

func TestBatchValidator_EarlierFailureWins(t *testing.T) {
	bv := NewBatchValidator(&mockValidator{}, fw.WithWorkerCount(4))

	// The second source fails first, but the first failure in input order
	// is reported.
	result := bv.ValidateBatch(context.Background(), jobs(
		`{"delay": 5}`,
		`[{}, {"delay": 30, "invalid": true}]`,
		`{"invalid": true}`,
	))

	if len(result.Reports) != 2 {
		t.Fatalf("len(Reports) = %d; want 2", len(result.Reports))
	}
	if result.FirstFailure().Source != "source-1.json" {
		t.Errorf("FirstFailure().Source = %q; want source-1.json", result.FirstFailure().Source)
	}
}

func TestBatchValidator_ParseError(t *testing.T) {
	bv := NewBatchValidator(&mockValidator{})

	result := bv.ValidateBatch(context.Background(), jobs(`{}`, `{"broken": `))
	failure := result.FirstFailure()
	if failure == nil {
		t.Fatal("expected a failure")
	}
	if failure.Invalid() {
		t.Error("a parse error is not a validation error")
	}
}

func TestBatchValidator_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	validator := &mockValidator{}
	result := NewBatchValidator(validator).ValidateBatch(ctx, jobs(`{}`, `{}`))
	if !errors.Is(result.Err, context.Canceled) {
		t.Errorf("Err = %v; want context.Canceled", result.Err)
	}
	if len(result.Reports) != 0 {
		t.Errorf("len(Reports) = %d; want 0", len(result.Reports))
	}
	if validator.callCount.Load() != 0 {
		t.Errorf("callCount = %d; want 0", validator.callCount.Load())
	}
}

func TestBatchValidator_Metrics(t *testing.T) {
	metrics := fw.NewMetrics()
	bv := NewBatchValidator(&mockValidator{}, fw.WithMetrics(metrics), fw.WithWorkerCount(2))

	bv.ValidateBatch(context.Background(), jobs(`{}`, `[{}, {}, {}]`, `[]`))

	if metrics.SourcesChecked() != 3 {
		t.Errorf("SourcesChecked() = %d; want 3", metrics.SourcesChecked())
	}
	if metrics.MessagesChecked() != 4 {
		t.Errorf("MessagesChecked() = %d; want 4", metrics.MessagesChecked())
	}
}

func TestValidateBatchSimple(t *testing.T) {
	validator := &mockValidator{}

	result := ValidateBatchSimple(context.Background(), validator, jobs(`{}`, `{}`, `{}`))
	if result.TotalJobs != 3 {
		t.Errorf("TotalJobs = %d; want 3", result.TotalJobs)
	}
	if int(validator.callCount.Load()) != 3 {
		t.Errorf("callCount = %d; want 3", validator.callCount.Load())
	}
}
