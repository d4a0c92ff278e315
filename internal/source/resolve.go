package source

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/text/unicode/norm"
)

// normForms are tried in order when the literal path does not exist. Files
// written on one platform and copied to another can carry a differently
// composed byte sequence for the same visible name.
var normForms = []norm.Form{norm.NFC, norm.NFD, norm.NFKC, norm.NFKD}

// Resolver locates scenario-set files named by a catalog. BaseDir is the
// directory of the referencing document; ReferenceDir is an optional
// fallback. Paths are joined explicitly and the process working directory is
// never consulted or changed, except when BaseDir itself is relative.
// A Confined resolver accepts only local references: relative paths that stay
// inside the directory they are joined to.
type Resolver struct {
	BaseDir      string
	ReferenceDir string
	Confined     bool
}

// Resolve returns the path of an existing regular file for ref. Absolute
// references are only checked as-is (plus normalization forms).
func (r Resolver) Resolve(ref string) (string, error) {
	if r.Confined && !filepath.IsLocal(ref) {
		return "", fmt.Errorf("%w: %s", ErrReferenceOutside, ref)
	}
	dirs := r.searchDirs(ref)
	for _, dir := range dirs {
		if p, ok := locate(dir, ref); ok {
			return p, nil
		}
	}
	return "", &ReferenceError{Reference: ref, Searched: dirs}
}

func (r Resolver) searchDirs(ref string) []string {
	if filepath.IsAbs(ref) {
		return []string{filepath.Dir(ref)}
	}
	base := r.BaseDir
	if base == "" {
		base = "."
	}
	dirs := []string{base}
	if r.ReferenceDir != "" && filepath.Clean(r.ReferenceDir) != filepath.Clean(base) {
		dirs = append(dirs, r.ReferenceDir)
	}
	return dirs
}

// locate tries ref under dir, first verbatim and then under each Unicode
// normalization form.
func locate(dir, ref string) (string, bool) {
	candidate := ref
	if !filepath.IsAbs(ref) {
		candidate = filepath.Join(dir, ref)
	}
	if isFile(candidate) {
		return candidate, true
	}
	for _, form := range normForms {
		alt := form.String(candidate)
		if alt == candidate {
			continue
		}
		if isFile(alt) {
			return alt, true
		}
	}
	return "", false
}

// NormalizedPath returns path itself when it names an existing regular file,
// otherwise the first Unicode normalization form of it that does.
func NormalizedPath(path string) (string, bool) {
	return locate("", path)
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
