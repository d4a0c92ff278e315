package model

import (
	"path/filepath"
	"strings"
)

// SafeFileName replaces path separators in name with underscores so a title
// can be used as a single path element.
func SafeFileName(name string) string {
	return strings.NewReplacer("/", "_", `\`, "_").Replace(name)
}

// WithExtension returns the safe base of name with its extension replaced by ext.
func WithExtension(name, ext string) string {
	name = SafeFileName(name)
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext
}
