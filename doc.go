// Package flockwave validates Flockwave protocol messages against the
// versioned JSON Schema bundle of the protocol.
//
// The schema documents refer to each other through the private URI prefix
// http://collmot.com/schemas/flockwave/1.0. References under that prefix
// are resolved against the embedded bundle; any other reference fails
// with ErrUnresolvableReference, so validation never touches the network.
//
// # Quick Start
//
//	import (
//	    fw "github.com/collmot/flockwave-spec"
//	    "github.com/collmot/flockwave-spec/pkg/validator"
//	)
//
//	v, err := validator.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = v.Validate("message.json", message)
//	if fw.IsValidationError(err) {
//	    fmt.Println("invalid message:", err)
//	}
//
// # Pipeline
//
// Validation is performed in stages, each with its own package:
//
//   - loader: reads and parses bundled resources, once per resource
//   - registry: maps private URIs to bundled resources
//   - schema: resolves a (resource, JSON Pointer) pair into a fully
//     dereferenced schema object
//   - engine: compiles resolved schemas into reusable validators
//   - worker: validates single messages, arrays of messages and batches
//     of files
//   - stream: validates long recorded message logs incrementally
//
// Every stage memoizes its results with the cache package; the caches are
// owned by a validator.Validator and discarded together with Reset.
//
// # Functional Options
//
//	v, err := validator.New(
//	    fw.WithBackend(fw.BackendGoJSONSchema),
//	    fw.WithCacheSize(256),
//	    fw.WithMetrics(fw.NewMetrics()),
//	)
package flockwave
