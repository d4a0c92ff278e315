package convert

import (
	"errors"
	"fmt"
)

// Sentinel errors for request validation.
var (
	// ErrUnknownOperation indicates an operation name that ParseOperation does not recognize.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrMissingInput indicates no input file was given.
	ErrMissingInput = errors.New("no input file specified")
	// ErrNotFound indicates a path parameter names nothing on disk.
	ErrNotFound = errors.New("path not found")
	// ErrNotFile indicates a path parameter that must be a file is a directory.
	ErrNotFile = errors.New("path is not a file")
	// ErrNotDir indicates a path parameter that must be a directory is not one.
	ErrNotDir = errors.New("path is not a directory")
)

// ParameterError reports an invalid operation parameter. It is returned
// before any document is read.
type ParameterError struct {
	Param string
	Value string
	Err   error
}

// Error names the parameter, its value and the problem.
func (e *ParameterError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Param, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Param, e.Value, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParameterError) Unwrap() error {
	return e.Err
}
