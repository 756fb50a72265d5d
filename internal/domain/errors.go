package domain

import "errors"

var (
	// ErrNotFound signals a missing catalog document.
	ErrNotFound = errors.New("not found")
	// ErrIndexNotBuilt signals a search attempted before any index build.
	ErrIndexNotBuilt = errors.New("index not built")
	// ErrInvalidArgument signals a structurally invalid caller argument,
	// such as a non-positive evaluation cutoff.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidConfig signals an invalid configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrMalformedCatalog signals an unreadable catalog file.
	ErrMalformedCatalog = errors.New("malformed catalog")
)
