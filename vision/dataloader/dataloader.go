package dataloader

import (
	"math/rand"
	"sync"

	"github.com/seqlab/visiondata/vision/preprocessing"
)

// Dataset is the contract a class-labeled dataset exposes to the loader:
// a known length and random access to (file path, class index) samples.
type Dataset interface {
	Len() int
	GetItem(index int) (imagePath string, label int, err error)
}

// DataLoader drains a Dataset in shuffled or sequential batches of
// preprocessed image tensors.
type DataLoader struct {
	dataset   Dataset
	batchSize int
	shuffle   bool
	indices   []int
	position  int
	mu        sync.Mutex

	imageDataBuffer []float32
	labelDataBuffer []int32

	cache      *Cache
	ownedCache bool

	processor *preprocessing.ImageProcessor
	imageSize int
}

// Config holds configuration for DataLoader.
type Config struct {
	BatchSize    int
	Shuffle      bool
	ImageSize    int
	MaxCacheSize int    // Maximum number of images to cache
	Cache        *Cache // Optional cache shared between loaders
}

// NewDataLoader creates a loader over dataset.
func NewDataLoader(dataset Dataset, config Config) *DataLoader {
	if config.MaxCacheSize == 0 {
		config.MaxCacheSize = 1000
	}

	indices := make([]int, dataset.Len())
	for i := range indices {
		indices[i] = i
	}
	if config.Shuffle {
		rand.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	cache := config.Cache
	ownedCache := false
	if cache == nil {
		cache = NewCache(config.MaxCacheSize)
		ownedCache = true
	}

	return &DataLoader{
		dataset:    dataset,
		batchSize:  config.BatchSize,
		shuffle:    config.Shuffle,
		indices:    indices,
		cache:      cache,
		ownedCache: ownedCache,
		processor:  preprocessing.NewImageProcessor(config.ImageSize),
		imageSize:  config.ImageSize,
	}
}

// Reset rewinds the loader to the start of the dataset, reshuffling if the
// loader was built with shuffling.
func (dl *DataLoader) Reset() {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	dl.position = 0
	if dl.shuffle {
		rand.Shuffle(len(dl.indices), func(i, j int) {
			dl.indices[i], dl.indices[j] = dl.indices[j], dl.indices[i]
		})
	}
}

// NextBatch loads the next batch of images in CHW float32 layout. It returns
// a zero batch size once the epoch is exhausted. Samples that fail to load
// are skipped rather than failing the batch; the training loop decides how
// to react to a short batch.
func (dl *DataLoader) NextBatch() (imageData []float32, labelData []int32, actualBatchSize int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	remaining := len(dl.indices) - dl.position
	if remaining <= 0 {
		return nil, nil, 0, nil
	}

	batchSize := dl.batchSize
	if remaining < batchSize {
		batchSize = remaining
	}

	pixelsPerImage := 3 * dl.imageSize * dl.imageSize
	requiredImageSize := batchSize * pixelsPerImage

	if len(dl.imageDataBuffer) < requiredImageSize {
		dl.imageDataBuffer = make([]float32, requiredImageSize)
	}
	if len(dl.labelDataBuffer) < batchSize {
		dl.labelDataBuffer = make([]int32, batchSize)
	}

	imageData = dl.imageDataBuffer[:requiredImageSize]
	labelData = dl.labelDataBuffer[:batchSize]

	for i := 0; i < batchSize; i++ {
		if dl.position >= len(dl.indices) {
			break
		}

		idx := dl.indices[dl.position]
		imagePath, label, err := dl.dataset.GetItem(idx)
		if err != nil {
			dl.position++
			continue
		}

		imgData, err := dl.loadImageWithCache(imagePath)
		if err != nil {
			dl.position++
			continue
		}

		copy(imageData[actualBatchSize*pixelsPerImage:(actualBatchSize+1)*pixelsPerImage], imgData)
		labelData[actualBatchSize] = int32(label)

		actualBatchSize++
		dl.position++
	}

	return imageData, labelData, actualBatchSize, nil
}

// loadImageWithCache loads a preprocessed image, consulting the cache first.
func (dl *DataLoader) loadImageWithCache(imagePath string) ([]float32, error) {
	if cached, exists := dl.cache.Get(imagePath); exists {
		return cached, nil
	}

	processed, err := dl.processor.LoadAndProcess(imagePath)
	if err != nil {
		return nil, err
	}

	dl.cache.Put(imagePath, processed.Data)
	return processed.Data, nil
}

// Progress returns the current position through the dataset.
func (dl *DataLoader) Progress() (current, total int) {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	return dl.position, len(dl.indices)
}

// Stats returns cache statistics.
func (dl *DataLoader) Stats() string {
	return dl.cache.Stats().String()
}

// ClearCache clears the image cache when this loader owns it. Shared caches
// are left alone.
func (dl *DataLoader) ClearCache() {
	if dl.ownedCache {
		dl.cache.Clear()
	}
}

// GetCache returns the cache for sharing with another loader.
func (dl *DataLoader) GetCache() *Cache {
	return dl.cache
}

// NewSharedLoaders creates train and validation loaders over one cache, so
// images common to both splits are decoded once. The train loader shuffles,
// the validation loader does not.
func NewSharedLoaders(trainDataset, valDataset Dataset, config Config) (*DataLoader, *DataLoader) {
	cacheSize := config.MaxCacheSize
	if cacheSize == 0 {
		cacheSize = trainDataset.Len() + valDataset.Len()
	}
	shared := NewCache(cacheSize)

	trainConfig := config
	trainConfig.Cache = shared
	trainConfig.Shuffle = true

	valConfig := config
	valConfig.Cache = shared
	valConfig.Shuffle = false

	return NewDataLoader(trainDataset, trainConfig), NewDataLoader(valDataset, valConfig)
}
