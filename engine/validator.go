package engine

import (
	"time"

	fw "github.com/collmot/flockwave-spec"
)

// checker is a schema compiled by one of the back ends.
type checker interface {
	check(candidate any) *fw.ValidationError
}

// Validator checks candidate documents against a compiled schema. It is
// stateless and safe for concurrent use.
type Validator struct {
	url     string
	backend fw.Backend
	impl    checker
	metrics *fw.Metrics
}

// Validate returns nil if candidate conforms to the schema and a
// *flockwave.ValidationError otherwise.
//
// candidate is a decoded JSON value: maps, slices, strings, numbers,
// booleans and nil.
func (v *Validator) Validate(candidate any) error {
	start := time.Now()
	verr := v.impl.check(candidate)
	if v.metrics != nil {
		v.metrics.RecordValidation(time.Since(start), verr == nil)
	}
	if verr != nil {
		return verr
	}
	return nil
}

// URL returns the URL of the compiled schema.
func (v *Validator) URL() string {
	return v.url
}

// Backend returns the back end that compiled the schema.
func (v *Validator) Backend() fw.Backend {
	return v.backend
}
