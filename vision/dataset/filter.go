package dataset

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultImageExtensions matches the file types the loaders in this module can decode.
var DefaultImageExtensions = []string{".jpg", ".jpeg", ".png", ".bmp"}

// FilterSpec selects which files under a class directory count as samples.
// Exactly one of Extensions or IsValid must be set.
type FilterSpec struct {
	Extensions []string
	IsValid    func(path string) bool
}

// ExtensionFilter builds a FilterSpec that accepts files by extension
// (case-insensitive).
func ExtensionFilter(extensions ...string) FilterSpec {
	return FilterSpec{Extensions: extensions}
}

// PredicateFilter builds a FilterSpec that accepts files by a custom predicate.
func PredicateFilter(isValid func(path string) bool) FilterSpec {
	return FilterSpec{IsValid: isValid}
}

// validate checks the exactly-one rule and returns the effective predicate.
func (f FilterSpec) validate() (func(string) bool, error) {
	hasExt := len(f.Extensions) > 0
	hasFunc := f.IsValid != nil

	if hasExt == hasFunc {
		return nil, fmt.Errorf("%w: exactly one of an extension set or a validity predicate must be given", ErrFilterSpec)
	}

	if hasFunc {
		return f.IsValid, nil
	}

	exts := make(map[string]bool, len(f.Extensions))
	for _, ext := range f.Extensions {
		exts[strings.ToLower(ext)] = true
	}
	return func(path string) bool {
		return exts[strings.ToLower(filepath.Ext(path))]
	}, nil
}
