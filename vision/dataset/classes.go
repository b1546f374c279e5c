package dataset

import (
	"fmt"
	"os"
)

// FindClasses lists the immediate subdirectories of root and keeps those named
// in chosen. Retained order follows chosen, not directory-scan order, so the
// caller controls which class gets which index. Indices are dense, 0..k-1.
//
// A chosen name with no matching subdirectory is silently dropped; if nothing
// matches, the error wraps ErrNoMatchingClass. A name repeated in chosen would
// alias two indices to one directory, so duplicates are rejected up front.
func FindClasses(root string, chosen []string) ([]string, map[string]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list class folders in %s: %w", root, err)
	}

	dirNames := make(map[string]bool, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			dirNames[entry.Name()] = true
		}
	}

	seen := make(map[string]bool, len(chosen))
	var classes []string
	for _, name := range chosen {
		if seen[name] {
			return nil, nil, fmt.Errorf("%w: class %q requested twice", ErrFilterSpec, name)
		}
		seen[name] = true
		if dirNames[name] {
			classes = append(classes, name)
		}
	}

	if len(classes) == 0 {
		return nil, nil, fmt.Errorf("%w in %s", ErrNoMatchingClass, root)
	}

	classToIdx := make(map[string]int, len(classes))
	for i, name := range classes {
		classToIdx[name] = i
	}
	return classes, classToIdx, nil
}
