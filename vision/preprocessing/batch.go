package preprocessing

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// PreprocessBatch decodes and processes the given images concurrently, at
// most maxWorkers at a time, each task with its own processor so buffer
// reuse stays contention-free. Results are in input order. The first failure
// fails the whole batch.
func PreprocessBatch(imagePaths []string, targetSize int, maxWorkers int) ([]*ProcessedImage, error) {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	results := make([]*ProcessedImage, len(imagePaths))

	var g errgroup.Group
	g.SetLimit(maxWorkers)

	for i, path := range imagePaths {
		g.Go(func() error {
			processor := NewImageProcessor(targetSize)
			img, err := processor.LoadAndProcess(path)
			if err != nil {
				return fmt.Errorf("failed to process image %d: %w", i, err)
			}
			results[i] = img
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
