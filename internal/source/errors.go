package source

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Sentinel errors for document loading and linking.
var (
	// ErrDuplicateKey indicates a mapping defines the same key twice.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrFileNotFound indicates a scenario-set reference could not be resolved.
	ErrFileNotFound = errors.New("scenario set file not found")
	// ErrInvalidReference indicates a scenario-set list entry is not a plain path.
	ErrInvalidReference = errors.New("invalid scenario set file specification")
	// ErrReferenceOutside indicates a confined resolver was given an absolute
	// reference or one that climbs out of its directory.
	ErrReferenceOutside = errors.New("scenario set file must be a relative path inside the catalog directory")
	// ErrMissingKey indicates a required document key is absent.
	ErrMissingKey = errors.New("required key missing")
	// ErrUnknownDocument indicates the root carries neither the catalog nor the
	// scenario-set marker key.
	ErrUnknownDocument = errors.New("document is neither a use case catalog nor a scenario set")
)

// SyntaxError wraps a decoder diagnostic with the file it came from.
type SyntaxError struct {
	File string
	Err  error
}

// Error returns the file name followed by the decoder's own message.
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: invalid document format: %v", e.File, e.Err)
}

// Unwrap returns the decoder error.
func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// DuplicateKeyError reports the second occurrence of a key within one mapping.
type DuplicateKeyError struct {
	File   string
	Key    string
	Line   int
	Column int
}

// Error returns a message locating the repeated key.
func (e *DuplicateKeyError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %v %q", e.File, e.Line, e.Column, ErrDuplicateKey, e.Key)
	}
	return fmt.Sprintf("%s: %v %q", e.File, ErrDuplicateKey, e.Key)
}

// Is makes errors.Is(err, ErrDuplicateKey) match.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// ReferenceError reports a scenario-set reference that no candidate path
// satisfied. Searched lists the directories that were tried.
type ReferenceError struct {
	Reference string
	Searched  []string
}

// Error names the unresolved reference and the directories searched.
func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%v: %s (searched %s)", ErrFileNotFound, e.Reference, strings.Join(e.Searched, ", "))
}

// Candidates returns every path the reference was looked up at.
func (e *ReferenceError) Candidates() []string {
	if filepath.IsAbs(e.Reference) {
		return []string{e.Reference}
	}
	out := make([]string, 0, len(e.Searched))
	for _, dir := range e.Searched {
		out = append(out, filepath.Join(dir, e.Reference))
	}
	return out
}

// Is makes the error match both ErrFileNotFound and fs.ErrNotExist.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrFileNotFound || target == fs.ErrNotExist
}
