package fhirclient

import "errors"

var (
	// ErrPreconditionFailed is returned before any I/O when an operation is
	// missing required arguments, such as a resourceType on create.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidBaseURL is returned by New for a base URL that is not an
	// absolute http(s) URL.
	ErrInvalidBaseURL = errors.New("invalid base URL")
)
