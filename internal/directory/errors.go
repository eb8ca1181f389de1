package directory

import "errors"

var (
	// ErrUnsupportedFilter: the filter names a field/operator pair the backend cannot run.
	ErrUnsupportedFilter = errors.New("unsupported directory filter")

	// ErrBackend: the directory store failed while answering a query.
	ErrBackend = errors.New("directory backend error")
)
