package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/schema"
)

type santhoshChecker struct {
	schema *jsonschema.Schema
}

func compileSanthosh(url string, s schema.Schema, l jsonschema.URLLoader, assertFormat bool) (checker, error) {
	doc, err := normalize(s)
	if err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	if l != nil {
		c.UseLoader(l)
	}
	if assertFormat {
		c.AssertFormat()
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}

	compiled, err := c.Compile(url)
	if err != nil {
		return nil, err
	}
	return &santhoshChecker{schema: compiled}, nil
}

func (c *santhoshChecker) check(candidate any) *fw.ValidationError {
	err := c.schema.Validate(candidate)
	if err == nil {
		return nil
	}

	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return &fw.ValidationError{Message: verr.Error()}
	}
	return &fw.ValidationError{Message: fmt.Sprintf("cannot validate document: %v", err)}
}

// normalize copies s into the value types produced by the JSON decoder of
// the compiler, with numbers as json.Number.
func normalize(s schema.Schema) (any, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema is not valid JSON: %w", err)
	}
	return jsonschema.UnmarshalJSON(bytes.NewReader(data))
}
