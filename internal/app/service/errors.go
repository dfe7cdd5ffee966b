package service

import "errors"

var (
	ErrInvalidURL    = errors.New("invalid URL")
	ErrInvalidFormat = errors.New("code must be 6-8 alphanumeric characters")
	ErrCodeConflict  = errors.New("code already exists")
	// ErrAllocationExhausted is transient; the caller may retry the request.
	ErrAllocationExhausted = errors.New("could not allocate a free code, try again")
	ErrNotFound            = errors.New("not found")
)
