package errors

// Package errors provides sentinel errors for documentation discovery and reading.

import "errors"

var (
	// ErrContentPathNotFound indicates a version content directory does not exist.
	ErrContentPathNotFound = errors.New("content path not found")

	// ErrInvalidPattern indicates an include or exclude glob pattern is malformed.
	ErrInvalidPattern = errors.New("invalid glob pattern")

	// ErrDocsDirWalkFailed indicates filesystem traversal of a content directory failed.
	ErrDocsDirWalkFailed = errors.New("documentation directory walk failed")

	// ErrFileReadFailed indicates reading content from a discovered documentation file failed.
	ErrFileReadFailed = errors.New("documentation file read failed")

	// ErrSourceNotFound indicates a discovered source exists in none of the content roots.
	ErrSourceNotFound = errors.New("source not found in any content path")

	// ErrLastUpdateFailed indicates the last-update lookup for a file failed.
	ErrLastUpdateFailed = errors.New("last update lookup failed")
)
