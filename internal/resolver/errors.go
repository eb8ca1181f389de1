package resolver

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
)

var (
	// ErrInvalidInput: the query is empty or no directory backend is configured.
	ErrInvalidInput = errors.New("invalid contact query")

	// ErrNotFound: every directory query succeeded but none matched.
	ErrNotFound = errors.New("contact not found")

	// ErrDirectoryFailure matches any *AggregateQueryError via errors.Is.
	ErrDirectoryFailure = errors.New("directory query failed")
)

// QueryError is the failure of one fanned-out directory query.
type QueryError struct {
	Filter directory.Filter
	Err    error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s: %v", e.Filter, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// AggregateQueryError collects every failed query of one resolution, in the
// order the failures arrived. Successful matches from the same call are
// discarded when this error is returned.
type AggregateQueryError struct {
	Errors []error
}

func (e *AggregateQueryError) Error() string {
	reasons := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		reasons[i] = err.Error()
	}
	return ErrDirectoryFailure.Error() + ": " + strings.Join(reasons, "; ")
}

func (e *AggregateQueryError) Unwrap() []error { return e.Errors }

func (e *AggregateQueryError) Is(target error) bool {
	return target == ErrDirectoryFailure
}
