package dataloader

import (
	"image"
	"math/rand"
	"sync"

	"github.com/seqlab/visiondata/vision/preprocessing"
)

// PairDataset is the contract a segmentation-style dataset exposes: random
// access to (image, annotation, sequence) triples.
type PairDataset interface {
	Len() int
	Get(index int) (img, annotation image.Image, sequence string, err error)
}

// PairBatch is one batch of images with their annotation masks, both in CHW
// float32 layout, plus the sequence name of each item.
type PairBatch struct {
	Images      []float32
	Annotations []float32
	Sequences   []string
	Size        int
}

// PairLoader drains a PairDataset in batches, processing image and mask
// through the same resize pipeline so their pixels stay aligned.
type PairLoader struct {
	dataset   PairDataset
	batchSize int
	shuffle   bool
	indices   []int
	position  int
	mu        sync.Mutex

	processor *preprocessing.ImageProcessor
	imageSize int
}

// NewPairLoader creates a loader over dataset. Caching is left to the
// dataset's own loader; mask pairs rarely repeat within an epoch.
func NewPairLoader(dataset PairDataset, config Config) *PairLoader {
	indices := make([]int, dataset.Len())
	for i := range indices {
		indices[i] = i
	}
	if config.Shuffle {
		rand.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	return &PairLoader{
		dataset:   dataset,
		batchSize: config.BatchSize,
		shuffle:   config.Shuffle,
		indices:   indices,
		processor: preprocessing.NewImageProcessor(config.ImageSize),
		imageSize: config.ImageSize,
	}
}

// Reset rewinds the loader to the start of the dataset, reshuffling if the
// loader was built with shuffling.
func (pl *PairLoader) Reset() {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	pl.position = 0
	if pl.shuffle {
		rand.Shuffle(len(pl.indices), func(i, j int) {
			pl.indices[i], pl.indices[j] = pl.indices[j], pl.indices[i]
		})
	}
}

// NextBatch loads the next batch of image/annotation pairs. It returns nil
// once the epoch is exhausted. Items that fail to load are skipped; the
// training loop decides how to react to a short batch.
func (pl *PairLoader) NextBatch() (*PairBatch, error) {
	pl.mu.Lock()
	defer pl.mu.Unlock()

	remaining := len(pl.indices) - pl.position
	if remaining <= 0 {
		return nil, nil
	}

	batchSize := pl.batchSize
	if remaining < batchSize {
		batchSize = remaining
	}

	pixelsPerImage := 3 * pl.imageSize * pl.imageSize
	batch := &PairBatch{
		Images:      make([]float32, batchSize*pixelsPerImage),
		Annotations: make([]float32, batchSize*pixelsPerImage),
		Sequences:   make([]string, 0, batchSize),
	}

	for i := 0; i < batchSize; i++ {
		if pl.position >= len(pl.indices) {
			break
		}

		idx := pl.indices[pl.position]
		img, annotation, sequence, err := pl.dataset.Get(idx)
		if err != nil {
			pl.position++
			continue
		}

		processedImg, err := pl.processor.Process(img)
		if err != nil {
			pl.position++
			continue
		}
		processedAnn, err := pl.processor.Process(annotation)
		if err != nil {
			pl.position++
			continue
		}

		copy(batch.Images[batch.Size*pixelsPerImage:(batch.Size+1)*pixelsPerImage], processedImg.Data)
		copy(batch.Annotations[batch.Size*pixelsPerImage:(batch.Size+1)*pixelsPerImage], processedAnn.Data)
		batch.Sequences = append(batch.Sequences, sequence)

		batch.Size++
		pl.position++
	}

	batch.Images = batch.Images[:batch.Size*pixelsPerImage]
	batch.Annotations = batch.Annotations[:batch.Size*pixelsPerImage]
	return batch, nil
}

// Progress returns the current position through the dataset.
func (pl *PairLoader) Progress() (current, total int) {
	pl.mu.Lock()
	defer pl.mu.Unlock()
	return pl.position, len(pl.indices)
}
