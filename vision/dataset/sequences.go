package dataset

import "path/filepath"

// SequenceOf returns the grouping label for an image path: the base name of
// the directory immediately containing it. For DAVIS-style layouts that is
// the video clip name.
func SequenceOf(imagePath string) string {
	return filepath.Base(filepath.Dir(imagePath))
}

// CountSequences tallies how many of the given image paths fall in each
// sequence. Sequence names are returned in first-appearance order alongside
// the counts.
func CountSequences(imagePaths []string) ([]string, map[string]int) {
	counts := make(map[string]int, len(imagePaths))
	var names []string
	for _, path := range imagePaths {
		seq := SequenceOf(path)
		if _, seen := counts[seq]; !seen {
			names = append(names, seq)
		}
		counts[seq]++
	}
	return names, counts
}
