package flockwave

import (
	"errors"
)

// ErrorKind classifies the failures raised while loading and resolving
// schema documents.
type ErrorKind int

const (
	// KindResourceNotFound indicates that a resource path does not exist
	// in the bundle.
	KindResourceNotFound ErrorKind = iota + 1
	// KindMalformedDocument indicates that a resource is not valid JSON.
	KindMalformedDocument
	// KindUnresolvableReference indicates a reference outside the bundled
	// namespace or a reference that cannot be parsed.
	KindUnresolvableReference
	// KindSchemaNotFound indicates that a JSON Pointer does not select a
	// schema object in its document.
	KindSchemaNotFound
)

// Sentinel errors matched by errors.Is against a *ResolutionError of the
// corresponding kind.
var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrMalformedDocument     = errors.New("malformed document")
	ErrUnresolvableReference = errors.New("unresolvable reference")
	ErrSchemaNotFound        = errors.New("schema not found")
)

// String returns the human-readable name of the kind.
func (k ErrorKind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindResourceNotFound:
		return ErrResourceNotFound
	case KindMalformedDocument:
		return ErrMalformedDocument
	case KindUnresolvableReference:
		return ErrUnresolvableReference
	case KindSchemaNotFound:
		return ErrSchemaNotFound
	default:
		return nil
	}
}

// ResolutionError reports a failure to load or resolve a schema.
type ResolutionError struct {
	// Kind classifies the failure
	Kind ErrorKind

	// Subject is the resource path, URI or path#pointer that failed
	Subject string

	// Err is the underlying cause, if any
	Err error
}

// NewResolutionError creates a ResolutionError.
func NewResolutionError(kind ErrorKind, subject string, cause error) *ResolutionError {
	return &ResolutionError{Kind: kind, Subject: subject, Err: cause}
}

// Error implements the error interface.
func (e *ResolutionError) Error() string {
	msg := e.Kind.String() + ": " + e.Subject
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *ResolutionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel of the error's kind.
func (e *ResolutionError) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the kind of the first ResolutionError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var re *ResolutionError
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// ValidationError reports that a candidate document does not conform to a
// schema. It is the only failure shape produced by compiled validators,
// whatever back end compiled them.
type ValidationError struct {
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError returns true if err's chain contains a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
