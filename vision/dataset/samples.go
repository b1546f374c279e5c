package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Sample is one (file path, class index) pair produced by the folder scan.
type Sample struct {
	Path  string
	Class int
}

// MakeSamples walks each retained class's subdirectory of directory and
// collects every file accepted by filter, paired with the class's index.
// Classes are processed in lexicographic order and directory entries in sorted
// order, so the result is deterministic for a given tree. Symbolic links to
// directories are followed.
//
// A retained class whose subtree yields no accepted file is an error wrapping
// ErrEmptyClass: an empty class silently shrinking the label space is almost
// always a typo in the class list or the wrong extension set.
func MakeSamples(directory string, classToIdx map[string]int, filter FilterSpec) ([]Sample, error) {
	if len(classToIdx) == 0 {
		return nil, ErrEmptyClassIndex
	}

	isValid, err := filter.validate()
	if err != nil {
		return nil, err
	}

	classNames := make([]string, 0, len(classToIdx))
	for name := range classToIdx {
		classNames = append(classNames, name)
	}
	sort.Strings(classNames)

	var samples []Sample
	var empty []string
	for _, className := range classNames {
		classIdx := classToIdx[className]
		classDir := filepath.Join(directory, className)

		info, err := os.Stat(classDir)
		if err != nil || !info.IsDir() {
			empty = append(empty, className)
			continue
		}

		found := false
		err = walkFollowingLinks(classDir, func(path string) {
			if isValid(path) {
				samples = append(samples, Sample{Path: path, Class: classIdx})
				found = true
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan class folder %s: %w", classDir, err)
		}
		if !found {
			empty = append(empty, className)
		}
	}

	if len(empty) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyClass, strings.Join(empty, ", "))
	}
	return samples, nil
}

// walkFollowingLinks visits every regular file under dir in sorted order,
// descending into symlinked directories as well. filepath.WalkDir does not
// follow links, so the recursion is done by hand; os.ReadDir keeps entries
// sorted by name.
func walkFollowingLinks(dir string, visit func(path string)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat (not the entry's own type) so links resolve to their target.
		info, err := os.Stat(path)
		if err != nil {
			// Broken link or vanished file; skip it.
			continue
		}

		if info.IsDir() {
			if err := walkFollowingLinks(path, visit); err != nil {
				return err
			}
			continue
		}
		visit(path)
	}
	return nil
}
