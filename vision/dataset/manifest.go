package dataset

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// ManifestRow pairs one image path with its annotation path, as listed in a
// manifest file.
type ManifestRow struct {
	Image      string
	Annotation string
}

// ReadManifest parses a plain-text manifest: one record per line, fields
// separated by runs of whitespace, first field the image path, second the
// annotation path. Extra fields are ignored and blank lines skipped. Row
// order is preserved; it defines the dataset's index positions.
//
// A non-blank line with fewer than two fields fails with an error wrapping
// ErrManifestParse and naming the line number.
func ReadManifest(path string) ([]ManifestRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest %s: %w", path, err)
	}
	defer file.Close()

	var rows []ManifestRow
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d of %s has %d field(s), want 2", ErrManifestParse, lineNo, path, len(fields))
		}
		rows = append(rows, ManifestRow{Image: fields[0], Annotation: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}
	return rows, nil
}
