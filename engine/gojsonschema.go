package engine

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	fw "github.com/collmot/flockwave-spec"
	"github.com/collmot/flockwave-spec/schema"
	"github.com/collmot/flockwave-spec/walker"
)

type goJSONSchemaChecker struct {
	schema *gojsonschema.Schema
}

func compileGoJSONSchema(s schema.Schema) (checker, error) {
	// The schema loader fetches remote references on its own, so only
	// self-contained schemas are accepted.
	for _, ref := range walker.Refs(s) {
		if !strings.HasPrefix(ref, "#") {
			return nil, fw.NewResolutionError(fw.KindUnresolvableReference, ref, nil)
		}
	}

	// Local references of a resolved schema point into the schema itself;
	// without an "$id" they resolve against the loaded document.
	root := make(map[string]any, len(s))
	for k, v := range s {
		if k != "$id" {
			root[k] = v
		}
	}

	sl := gojsonschema.NewSchemaLoader()
	sl.Draft = gojsonschema.Draft7
	compiled, err := sl.Compile(gojsonschema.NewGoLoader(root))
	if err != nil {
		return nil, err
	}
	return &goJSONSchemaChecker{schema: compiled}, nil
}

func (c *goJSONSchemaChecker) check(candidate any) *fw.ValidationError {
	result, err := c.schema.Validate(gojsonschema.NewGoLoader(candidate))
	if err != nil {
		return &fw.ValidationError{Message: fmt.Sprintf("cannot validate document: %v", err)}
	}
	if result.Valid() {
		return nil
	}

	var b strings.Builder
	b.WriteString("document does not match the schema")
	for _, e := range result.Errors() {
		b.WriteString("\n- ")
		b.WriteString(e.String())
	}
	return &fw.ValidationError{Message: b.String()}
}
