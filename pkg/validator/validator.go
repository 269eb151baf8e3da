// Package validator provides the validation entry point for Flockwave
// messages.
//
// A Validator owns every cache involved in validation: parsed documents,
// resolved schemas and compiled validators. Create one at startup, share
// it, and discard it as a unit (or call Reset) when the caches are no
// longer needed.
package validator

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/cache"
	"github.com/collmot/flockwave-spec/engine"
	"github.com/collmot/flockwave-spec/loader"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/registry"
	"github.com/collmot/flockwave-spec/schema"
	"github.com/collmot/flockwave-spec/specs"
	"github.com/collmot/flockwave-spec/stream"
	"github.com/collmot/flockwave-spec/worker"
)

// Validator validates documents against the schemas of the bundle.
// It is safe for concurrent use.
type Validator struct {
	opts     []fw.Option
	options  *fw.Options
	metrics  *fw.Metrics
	loader   *loader.Loader
	resolver *registry.Resolver
	schemas  *schema.Engine
	compiler *engine.Compiler

	compiled        *cache.Func2[string, string, *engine.Validator]
	compiledSchemas *cache.FuncSerialized[schema.Schema, *engine.Validator]
}

// New creates a Validator with the given options.
func New(opts ...fw.Option) (*Validator, error) {
	startTime := time.Now()

	options := fw.Apply(opts...)
	if !options.Version.IsValid() {
		return nil, fmt.Errorf("unsupported protocol version: %s", options.Version)
	}
	if !options.Backend.IsValid() {
		return nil, fmt.Errorf("unsupported validator backend: %s", options.Backend)
	}

	opts = append([]fw.Option{}, opts...)
	if options.Metrics == nil {
		options.Metrics = fw.NewMetrics()
		opts = append(opts, fw.WithMetrics(options.Metrics))
	}

	logger.Debug("Initializing Flockwave validator for protocol %s", options.Version)

	l, err := loader.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema bundle: %w", err)
	}
	r := registry.NewResolver(l, opts...)

	v := &Validator{
		opts:     opts,
		options:  options,
		metrics:  options.Metrics,
		loader:   l,
		resolver: r,
		schemas:  schema.NewEngine(l, r, opts...),
		compiler: engine.NewCompiler(r, opts...),
	}

	pairOpts := []cache.Option[cache.Pair[string, string], *engine.Validator]{
		cache.WithObserver[cache.Pair[string, string], *engine.Validator](v.metrics.RecordCache),
	}
	keyOpts := []cache.Option[string, *engine.Validator]{
		cache.WithObserver[string, *engine.Validator](v.metrics.RecordCache),
	}
	if options.CacheSize > 0 {
		pairOpts = append(pairOpts, cache.WithStore[cache.Pair[string, string], *engine.Validator](
			cache.NewLRU[cache.Pair[string, string], *engine.Validator](options.CacheSize)))
		keyOpts = append(keyOpts, cache.WithStore[string, *engine.Validator](
			cache.NewLRU[string, *engine.Validator](options.CacheSize)))
	}
	v.compiled = cache.Memoize2(v.compile, pairOpts...)
	v.compiledSchemas = cache.MemoizeSerialized(v.compiler.Compile, keyOpts...)

	logger.Debug("Validator ready in %v (backend %s, %d workers)",
		time.Since(startTime).Round(time.Microsecond), options.Backend, options.WorkerCount)
	return v, nil
}

// Schema returns the resolved schema found at pointer in the resource at
// path.
func (v *Validator) Schema(path, pointer string) (schema.Schema, error) {
	return v.schemas.Get(path, pointer)
}

// Schemas returns the schema resolution engine of the validator.
func (v *Validator) Schemas() *schema.Engine {
	return v.schemas
}

// Compile returns the compiled validator of the schema found at pointer in
// the resource at path.
func (v *Validator) Compile(path, pointer string) (*engine.Validator, error) {
	return v.compiled.Call(path, pointer)
}

// CompileSchema returns a compiled validator for s. Schemas with equal
// content share one compiled validator.
func (v *Validator) CompileSchema(s schema.Schema) (*engine.Validator, error) {
	return v.compiledSchemas.Call(s)
}

// Validate validates candidate against the whole document at path.
// It returns nil or a *flockwave.ValidationError if the schema could be
// compiled, and the setup error otherwise.
func (v *Validator) Validate(path string, candidate any) error {
	compiled, err := v.Compile(path, "")
	if err != nil {
		return err
	}
	return compiled.Validate(candidate)
}

// ValidateMessage validates a complete Flockwave message.
func (v *Validator) ValidateMessage(candidate any) error {
	return v.Validate(specs.Files.Message, candidate)
}

// ValidateSchema validates candidate against s.
func (v *Validator) ValidateSchema(s schema.Schema, candidate any) error {
	compiled, err := v.CompileSchema(s)
	if err != nil {
		return err
	}
	return compiled.Validate(candidate)
}

// Check validates doc against the document at path and returns the number
// of messages it held. See worker.Check for the handling of arrays.
func (v *Validator) Check(path string, doc any, allowMultiple bool) (int, error) {
	compiled, err := v.Compile(path, "")
	if err != nil {
		return 0, err
	}
	return worker.Check(doc, compiled, allowMultiple)
}

// CheckBytes parses data and checks it like Check.
func (v *Validator) CheckBytes(path string, data []byte, allowMultiple bool) (int, error) {
	compiled, err := v.Compile(path, "")
	if err != nil {
		return 0, err
	}
	return worker.CheckBytes(data, compiled, allowMultiple)
}

// Batch checks many sources against the schema at pointer in the resource
// at path, in parallel, and reports them in input order.
func (v *Validator) Batch(ctx context.Context, path, pointer string, jobs []worker.Job) (*worker.BatchResult, error) {
	compiled, err := v.Compile(path, pointer)
	if err != nil {
		return nil, err
	}
	return worker.NewBatchValidator(compiled, v.opts...).ValidateBatch(ctx, jobs), nil
}

// Stream validates every message read from r against the schema at
// pointer in the resource at path. Unlike Batch it does not stop at the
// first invalid message. Results are emitted in stream order.
func (v *Validator) Stream(ctx context.Context, path, pointer string, r io.Reader) (<-chan *stream.MessageResult, error) {
	compiled, err := v.Compile(path, pointer)
	if err != nil {
		return nil, err
	}
	return stream.NewMessageValidator(compiled, v.opts...).ValidateStreamParallel(ctx, r), nil
}

// Options returns the configuration of the validator.
func (v *Validator) Options() *fw.Options {
	return v.options
}

// Metrics returns the statistics collected by the validator.
func (v *Validator) Metrics() *fw.Metrics {
	return v.metrics
}

// Version returns the protocol version of the schemas.
func (v *Validator) Version() fw.ProtocolVersion {
	return v.options.Version
}

// Stats holds the sizes of the caches owned by a Validator.
type Stats struct {
	Documents       int
	Schemas         int
	Compiled        int
	CompiledSchemas int
}

// Stats returns the sizes of the caches owned by the validator.
func (v *Validator) Stats() Stats {
	return Stats{
		Documents:       v.loader.Cached(),
		Schemas:         v.schemas.Resolved(),
		Compiled:        v.compiled.Len(),
		CompiledSchemas: v.compiledSchemas.Len(),
	}
}

// Reset discards every cache owned by the validator.
func (v *Validator) Reset() {
	v.compiled.Reset()
	v.compiledSchemas.Reset()
	v.schemas.Reset()
	v.loader.Reset()
	logger.Debug("Validator caches cleared (memory in use: %s)", formatBytes(getMemUsage()))
}

func (v *Validator) compile(path, pointer string) (*engine.Validator, error) {
	s, err := v.schemas.Get(path, pointer)
	if err != nil {
		return nil, err
	}
	return v.compiler.Compile(s)
}

// getMemUsage returns the current memory allocation in bytes.
func getMemUsage() uint64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return m.Alloc
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
