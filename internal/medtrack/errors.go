package medtrack

import "errors"

// Sentinel errors shared across the store and service layers. Any store
// failure not matching one of these is a generic storage error and is
// propagated as a wrapped error chain.
var (
	// ErrStorageUnavailable indicates the embedded database could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrSchemaUpgradeFailed indicates the forward schema migration did not complete.
	ErrSchemaUpgradeFailed = errors.New("schema upgrade failed")

	// ErrDuplicateID indicates an insert collided with an existing primary key.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
