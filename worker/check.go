package worker

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"

	fw "github.com/collmot/flockwave-spec"
)

// Validator checks a single decoded message.
type Validator interface {
	Validate(candidate any) error
}

// Check validates doc with v and returns the number of messages it held.
//
// If allowMultiple is true and doc is a JSON array, each element is
// validated in order as a separate message and the length of the array is
// returned; an empty array holds no messages. Validation stops at the first
// invalid element. Any other document is validated as a single message.
func Check(doc any, v Validator, allowMultiple bool) (int, error) {
	items, ok := doc.([]any)
	if !ok || !allowMultiple {
		if err := v.Validate(doc); err != nil {
			return 0, err
		}
		return 1, nil
	}

	for i, item := range items {
		if err := v.Validate(item); err != nil {
			var verr *fw.ValidationError
			if errors.As(err, &verr) {
				return 0, &fw.ValidationError{Message: fmt.Sprintf("item %d: %s", i, verr.Message)}
			}
			return 0, err
		}
	}
	return len(items), nil
}

// CheckBytes parses data as a single JSON value and validates it with
// Check.
func CheckBytes(data []byte, v Validator, allowMultiple bool) (int, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("failed to parse document: %w", err)
	}
	return Check(doc, v, allowMultiple)
}
