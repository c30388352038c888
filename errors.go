package mjbuild

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingEnv indicates a required environment variable is not set
	ErrMissingEnv = errors.New("environment variable is not set")

	// ErrNotFound indicates a required file pattern matched nothing
	ErrNotFound = errors.New("not found")

	// ErrUnbalancedQuotes indicates an odd number of unescaped quote characters
	ErrUnbalancedQuotes = errors.New("unbalanced quotes")

	// ErrInvalidModule indicates an extension module name outside the package
	ErrInvalidModule = errors.New("invalid extension module")

	// ErrInvalidMetadata indicates package metadata failed validation
	ErrInvalidMetadata = errors.New("invalid package metadata")

	// ErrSameFile indicates a copy whose source and destination are one file
	ErrSameFile = errors.New("source and destination are the same file")
)

// Error wraps an error with the operation and path it happened on
type Error struct {
	Op   string // Operation that failed
	Path string // File or directory involved, if any
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
