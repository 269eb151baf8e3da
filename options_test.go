package flockwave

import (
	"runtime"
	"testing"
	"testing/fstest"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Version != V1 {
		t.Errorf("Version = %q; want %q", opts.Version, V1)
	}
	if opts.Backend != BackendSanthosh {
		t.Errorf("Backend = %q; want %q", opts.Backend, BackendSanthosh)
	}
	if opts.WorkerCount != runtime.NumCPU() {
		t.Errorf("WorkerCount = %d; want %d", opts.WorkerCount, runtime.NumCPU())
	}
	if !opts.AllowMultiple {
		t.Error("AllowMultiple should be true by default")
	}
	if opts.AssertFormat {
		t.Error("AssertFormat should be false by default")
	}
	if opts.CacheSize != 0 {
		t.Errorf("CacheSize = %d; want 0", opts.CacheSize)
	}
	if opts.FS != nil || opts.Metrics != nil {
		t.Error("FS and Metrics should be nil by default")
	}
}

func TestApply(t *testing.T) {
	fsys := fstest.MapFS{}
	m := NewMetrics()

	opts := Apply(
		WithBackend(BackendGoJSONSchema),
		WithFS(fsys),
		WithCacheSize(16),
		WithWorkerCount(3),
		WithAllowMultiple(false),
		WithMetrics(m),
	)

	if opts.Backend != BackendGoJSONSchema {
		t.Errorf("Backend = %q", opts.Backend)
	}
	if opts.FS == nil {
		t.Error("FS was not applied")
	}
	if opts.CacheSize != 16 {
		t.Errorf("CacheSize = %d; want 16", opts.CacheSize)
	}
	if opts.WorkerCount != 3 {
		t.Errorf("WorkerCount = %d; want 3", opts.WorkerCount)
	}
	if opts.AllowMultiple {
		t.Error("AllowMultiple should be false")
	}
	if opts.Metrics != m {
		t.Error("Metrics was not applied")
	}
}

func TestWithWorkerCount_IgnoresNonPositive(t *testing.T) {
	opts := Apply(WithWorkerCount(0), WithWorkerCount(-2))
	if opts.WorkerCount != runtime.NumCPU() {
		t.Errorf("WorkerCount = %d; want default", opts.WorkerCount)
	}
}

func TestStrictOptions(t *testing.T) {
	opts := Apply(StrictOptions()...)
	if !opts.AssertFormat {
		t.Error("strict options should assert formats")
	}
	if opts.AllowMultiple {
		t.Error("strict options should reject batches")
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		name    string
		want    Backend
		wantErr bool
	}{
		{"", BackendSanthosh, false},
		{"santhosh", BackendSanthosh, false},
		{"gojsonschema", BackendGoJSONSchema, false},
		{"ajv", "", true},
	}

	for _, tt := range tests {
		got, err := ParseBackend(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBackend(%q) error = %v; wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBackend(%q) = %q; want %q", tt.name, got, tt.want)
		}
	}
}
