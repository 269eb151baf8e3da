// Package schema resolves Flockwave schemas into self-contained schema
// objects.
//
// A resolved schema has every "$ref" of the bundle replaced by a copy of its
// target. Recursive schemas keep a local "$ref" that points back into the
// resolved tree itself, so the result can be compiled without access to any
// other document.
package schema

import (
	"errors"
	"fmt"
	"time"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/cache"
	"github.com/collmot/flockwave-spec/pkg/logger"
	"github.com/collmot/flockwave-spec/specs"
	"github.com/collmot/flockwave-spec/walker"
)

// Schema is a resolved JSON Schema object. Schemas returned by an Engine
// are shared between callers and must not be modified.
type Schema = map[string]any

// ComplexObjects lists the complex objects of the definitions document.
var ComplexObjects = []string{
	"beaconBasicProperties",
	"beaconStatusInfo",
	"commandExecutionStatus",
	"connectionInfo",
	"deviceTreeNode",
	"flightLog",
	"flightLogMetadata",
	"logMessage",
	"preflightCheckInfo",
	"preflightCheckItem",
	"transportOptions",
	"uavStatusInfo",
	"weather",
}

// DocumentLoader loads parsed documents by resource path.
type DocumentLoader interface {
	Load(path string) (any, error)
}

// Resolver maps URIs of the schema namespace to documents.
type Resolver interface {
	walker.Fetcher
	URIFor(path string) string
}

// Engine resolves schemas of the bundle. Each (path, pointer) pair is
// resolved at most once per Engine.
type Engine struct {
	loader   DocumentLoader
	resolver Resolver
	inliner  *walker.Inliner
	metrics  *fw.Metrics

	resolved *cache.Func2[string, string, Schema]
}

// NewEngine creates an Engine that reads documents with l and follows
// references through r.
func NewEngine(l DocumentLoader, r Resolver, opts ...fw.Option) *Engine {
	o := fw.Apply(opts...)
	e := &Engine{
		loader:   l,
		resolver: r,
		inliner:  walker.NewInliner(r),
		metrics:  o.Metrics,
	}
	e.resolved = cache.Memoize2(e.resolve)
	return e
}

// Get returns the resolved schema found at pointer in the resource at
// path. The empty pointer selects the whole document.
func (e *Engine) Get(path, pointer string) (Schema, error) {
	return e.resolved.Call(path, pointer)
}

// Message returns the schema of a complete Flockwave message.
func (e *Engine) Message() (Schema, error) {
	return e.Get(specs.Files.Message, "")
}

// MessageBody returns the schema of a message body of any kind.
func (e *Engine) MessageBody() (Schema, error) {
	return e.Get(specs.Files.MessageBody, "")
}

// NotificationBody returns the schema of notification bodies.
func (e *Engine) NotificationBody() (Schema, error) {
	return e.Get(specs.Files.NotificationBody, "")
}

// RequestBody returns the schema of request bodies.
func (e *Engine) RequestBody() (Schema, error) {
	return e.Get(specs.Files.RequestBody, "")
}

// ResponseBody returns the schema of response bodies.
func (e *Engine) ResponseBody() (Schema, error) {
	return e.Get(specs.Files.ResponseBody, "")
}

// ComplexObject returns the schema of a named member of the definitions
// document, e.g. "uavStatusInfo".
func (e *Engine) ComplexObject(name string) (Schema, error) {
	return e.Get(specs.Files.Definitions, walker.Append("", name))
}

// Enum returns the values allowed by a named string enumeration of the
// definitions document.
func (e *Engine) Enum(name string) ([]string, error) {
	s, err := e.ComplexObject(name)
	if err != nil {
		return nil, err
	}

	items, ok := s["enum"].([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not an enum", name)
	}
	values := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%s is not a string enum", name)
		}
		values = append(values, str)
	}
	return values, nil
}

// Resolved returns the number of cached schemas.
func (e *Engine) Resolved() int {
	return e.resolved.Len()
}

// Reset discards every resolved schema.
func (e *Engine) Reset() {
	e.resolved.Reset()
}

func (e *Engine) resolve(path, pointer string) (Schema, error) {
	start := time.Now()
	s, err := e.inline(path, pointer)
	if e.metrics != nil {
		e.metrics.RecordStage(fw.StageResolve, time.Since(start), err != nil)
	}
	if err != nil {
		logger.Debug("Could not resolve %s%s: %v", path, walker.LocalRef(pointer), err)
		return nil, err
	}
	logger.Debug("Resolved %s%s in %v", path, walker.LocalRef(pointer), time.Since(start))
	return s, nil
}

func (e *Engine) inline(path, pointer string) (Schema, error) {
	doc, err := e.loader.Load(path)
	if err != nil {
		return nil, err
	}

	uri := e.resolver.URIFor(path)
	v, err := e.inliner.Inline(uri, doc, pointer)
	if err != nil {
		return nil, err
	}

	s, ok := v.(map[string]any)
	if !ok {
		return nil, fw.NewResolutionError(fw.KindSchemaNotFound, uri+walker.LocalRef(pointer), errors.New("not a schema object"))
	}
	return s, nil
}
