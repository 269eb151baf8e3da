package flockwave

import (
	"fmt"
	"time"
)

// Report describes the outcome of checking one source of Flockwave
// messages, typically a file holding a single message or a JSON array of
// messages.
type Report struct {
	// Source names the checked document (usually a file name)
	Source string `json:"source"`

	// Count is the number of messages validated in the source
	Count int `json:"count"`

	// Err is nil if every message was valid
	Err error `json:"-"`

	// Duration is the time taken to check the source
	Duration time.Duration `json:"duration"`
}

// Valid returns true if every message in the source was valid.
func (r *Report) Valid() bool {
	return r.Err == nil
}

// Invalid returns true if the source failed schema validation, as opposed
// to failing to load or parse.
func (r *Report) Invalid() bool {
	return IsValidationError(r.Err)
}

// Summary returns the one-line verdict for the source.
func (r *Report) Summary() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("%s is not a valid Flockwave message.", r.Source)
	case r.Count == 0:
		return fmt.Sprintf("%s contains no objects at all.", r.Source)
	case r.Count == 1:
		return fmt.Sprintf("%s is a valid Flockwave message.", r.Source)
	default:
		return fmt.Sprintf("%s contains valid Flockwave messages.", r.Source)
	}
}
