// Package engine compiles resolved Flockwave schemas into validators.
//
// Two JSON Schema implementations are available as back ends. Whichever is
// used, a failed validation is always reported as a *flockwave.ValidationError
// carrying a message, so callers never see the native error types of the
// back end.
package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/loader"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/registry"
	"github.com/collmot/flockwave-spec/schema"
)

// Compiler turns resolved schemas into Validators.
type Compiler struct {
	opts   *fw.Options
	loader jsonschema.URLLoader
}

// NewCompiler creates a Compiler. References left in a schema are loaded
// through l, which should only ever reach bundled documents.
func NewCompiler(l jsonschema.URLLoader, opts ...fw.Option) *Compiler {
	return &Compiler{opts: fw.Apply(opts...), loader: l}
}

// Compile compiles s with a Compiler over the schema bundle selected by
// opts.
func Compile(s schema.Schema, opts ...fw.Option) (*Validator, error) {
	l, err := loader.New(opts...)
	if err != nil {
		return nil, err
	}
	return NewCompiler(registry.NewResolver(l, opts...), opts...).Compile(s)
}

// Compile compiles s into a Validator.
func (c *Compiler) Compile(s schema.Schema) (*Validator, error) {
	if s == nil {
		return nil, errors.New("cannot compile a nil schema")
	}

	start := time.Now()
	url := schemaURL(s, c.opts.Version.Prefix())

	var (
		impl checker
		err  error
	)
	switch c.opts.Backend {
	case fw.BackendSanthosh:
		impl, err = compileSanthosh(url, s, c.loader, c.opts.AssertFormat)
	case fw.BackendGoJSONSchema:
		impl, err = compileGoJSONSchema(s)
	default:
		err = fmt.Errorf("unsupported validator backend: %s", c.opts.Backend)
	}

	if c.opts.Metrics != nil {
		c.opts.Metrics.RecordStage(fw.StageCompile, time.Since(start), err != nil)
	}
	if err != nil {
		logger.Debug("Could not compile %s: %v", url, err)
		return nil, fmt.Errorf("failed to compile schema %s: %w", url, err)
	}
	logger.Debug("Compiled %s with %s in %v", url, c.opts.Backend, time.Since(start))

	return &Validator{
		url:     url,
		backend: c.opts.Backend,
		impl:    impl,
		metrics: c.opts.Metrics,
	}, nil
}

// schemaURL returns the URL under which s is registered with the back end:
// its own absolute "$id", or a URL under prefix reserved for anonymous
// schemas.
func schemaURL(s schema.Schema, prefix string) string {
	if id, ok := s["$id"].(string); ok && strings.Contains(id, "://") {
		return strings.TrimSuffix(id, "#")
	}
	return prefix + "/__anonymous__.json"
}
