package flockwave

import (
	"fmt"
	"io/fs"
	"runtime"
)

// Backend selects the JSON Schema implementation that compiles validators.
type Backend string

// Supported back ends.
const (
	// BackendSanthosh compiles with github.com/santhosh-tekuri/jsonschema.
	BackendSanthosh Backend = "santhosh"
	// BackendGoJSONSchema compiles with github.com/xeipuuv/gojsonschema.
	BackendGoJSONSchema Backend = "gojsonschema"
)

// IsValid returns true if this is a supported back end.
func (b Backend) IsValid() bool {
	switch b {
	case BackendSanthosh, BackendGoJSONSchema:
		return true
	default:
		return false
	}
}

// ParseBackend converts a back end name into a Backend.
// The empty string selects the default back end.
func ParseBackend(name string) (Backend, error) {
	if name == "" {
		return BackendSanthosh, nil
	}
	b := Backend(name)
	if !b.IsValid() {
		return "", fmt.Errorf("unsupported validator backend: %s", name)
	}
	return b, nil
}

// Option configures loading, resolution and validation.
type Option func(*Options)

// Options holds all configuration shared by the loader, the resolution
// engine and the validator compiler.
type Options struct {
	// Version is the protocol version whose schemas are used
	Version ProtocolVersion

	// Backend compiles resolved schemas into validators
	Backend Backend

	// FS overrides the embedded schema bundle when non-nil
	FS fs.FS

	// AssertFormat makes the "format" keyword an assertion
	AssertFormat bool

	// CacheSize bounds the compiled validator caches (0 = unbounded)
	CacheSize int

	// WorkerCount is the number of workers for batch validation
	WorkerCount int

	// AllowMultiple accepts a JSON array of messages as a batch
	AllowMultiple bool

	// Metrics receives validation and cache statistics when non-nil
	Metrics *Metrics
}

// DefaultOptions returns the default configuration.
func DefaultOptions() *Options {
	return &Options{
		Version:       V1,
		Backend:       BackendSanthosh,
		CacheSize:     0, // unbounded, the bundle is finite
		WorkerCount:   runtime.NumCPU(),
		AllowMultiple: true,
	}
}

// Apply returns the default options modified by opts.
func Apply(opts ...Option) *Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithVersion selects the protocol version.
func WithVersion(v ProtocolVersion) Option {
	return func(o *Options) {
		o.Version = v
	}
}

// WithBackend selects the validator back end.
func WithBackend(b Backend) Option {
	return func(o *Options) {
		o.Backend = b
	}
}

// WithFS loads schema documents from fsys instead of the embedded bundle.
// Resource paths are resolved relative to the root of fsys.
func WithFS(fsys fs.FS) Option {
	return func(o *Options) {
		o.FS = fsys
	}
}

// WithFormatAssertion enables validation of the "format" keyword.
func WithFormatAssertion(enable bool) Option {
	return func(o *Options) {
		o.AssertFormat = enable
	}
}

// WithCacheSize bounds the compiled validator caches.
// Use 0 for unbounded caches.
func WithCacheSize(size int) Option {
	return func(o *Options) {
		if size >= 0 {
			o.CacheSize = size
		}
	}
}

// WithWorkerCount sets the number of workers for batch validation.
// Defaults to runtime.NumCPU().
func WithWorkerCount(count int) Option {
	return func(o *Options) {
		if count > 0 {
			o.WorkerCount = count
		}
	}
}

// WithAllowMultiple controls whether a top-level JSON array is treated as
// a batch of messages.
func WithAllowMultiple(allow bool) Option {
	return func(o *Options) {
		o.AllowMultiple = allow
	}
}

// WithMetrics records statistics into m.
func WithMetrics(m *Metrics) Option {
	return func(o *Options) {
		o.Metrics = m
	}
}

// StrictOptions returns options for strict validation.
func StrictOptions() []Option {
	return []Option{
		WithFormatAssertion(true),
		WithAllowMultiple(false),
	}
}
