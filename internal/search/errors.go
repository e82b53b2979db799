package search

import "errors"

// Error taxonomy: configuration errors mean the dataset schema cannot be
// indexed and must be fixed, usage errors mean the caller built an invalid
// request, backend errors wrap transport or backend-side failures unmodified.
var (
	// ErrConfiguration marks unsupported field/property types and
	// unresolvable filter or sort scopes.
	ErrConfiguration = errors.New("search: invalid index configuration")
	// ErrUsage marks invalid call parameters detected before any backend
	// request is issued.
	ErrUsage = errors.New("search: invalid request")
)

// Op constants name backend primitives for error context and metrics.
const (
	OpCreateIndex      = "create_index"
	OpDeleteIndex      = "delete_index"
	OpIndexExists      = "index_exists"
	OpPutMapping       = "put_mapping"
	OpGetMapping       = "get_mapping"
	OpUpdateDocument   = "update_document"
	OpBulk             = "bulk"
	OpRefresh          = "refresh"
	OpSearch           = "search"
	OpSimilaritySearch = "similarity_search"
	OpPing             = "ping"
)

// BackendError wraps an underlying backend failure with the operation name.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string { return e.Backend + " " + e.Op + ": " + e.Err.Error() }
func (e *BackendError) Unwrap() error { return e.Err }
