package internalerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrInvalidConfig       = errors.New("invalid configuration")
	ErrResourceUnavailable = errors.New("resource unavailable")
)

// ResourceError reports a failure of an external lexical resource
// (tokenizer, tagger, lemmatizer, stopword list, number converter,
// spelling dictionary). It always matches ErrResourceUnavailable.
type ResourceError struct {
	Resource string
	Op       string
	Err      error
}

func (e *ResourceError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %v", e.Resource, e.Op, ErrResourceUnavailable)
	}
	return fmt.Sprintf("%s: %s: %v", e.Resource, e.Op, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// Is makes every ResourceError match ErrResourceUnavailable.
func (e *ResourceError) Is(target error) bool {
	return target == ErrResourceUnavailable
}

// Resource wraps err as a ResourceError. A nil err yields nil.
func Resource(resource, op string, err error) error {
	if err == nil {
		return nil
	}
	var re *ResourceError
	if errors.As(err, &re) {
		return err
	}
	return &ResourceError{Resource: resource, Op: op, Err: err}
}

// Missing reports a resource that was never configured.
func Missing(resource string) error {
	return &ResourceError{Resource: resource, Op: "load"}
}
