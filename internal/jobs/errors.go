package jobs

import "errors"

var (
	// ErrValidation indicates a missing or malformed field.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound indicates the id addresses no record.
	ErrNotFound = errors.New("job not found")

	// ErrPersistence indicates the record store failed.
	ErrPersistence = errors.New("persistence failure")

	// ErrUpload indicates an attachment could not be written.
	ErrUpload = errors.New("upload failure")
)
