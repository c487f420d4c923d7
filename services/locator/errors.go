package locator

import "errors"

// File size constants for extraction limits.
const (
	// DefaultMaxFileSize is the maximum file size the extractor will accept (10MB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// WarnFileSize is the threshold at which a warning is logged (1MB).
	WarnFileSize = 1 * 1024 * 1024
)

// ErrFileTooLarge is returned when input content exceeds the maximum file size.
var ErrFileTooLarge = errors.New("file exceeds maximum size limit")

// ErrInvalidContent is returned when input content is not valid UTF-8.
var ErrInvalidContent = errors.New("content is not valid UTF-8")

// ErrPathNotExist is returned when a scan root does not exist.
var ErrPathNotExist = errors.New("path does not exist")

// ErrPathNotDirectory is returned when a scan root is not a directory.
var ErrPathNotDirectory = errors.New("path is not a directory")
