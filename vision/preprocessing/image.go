package preprocessing

import (
	"fmt"
	"image"
	"os"
	"sync"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
)

// Transform maps an image to another image. Datasets apply transforms to
// samples at lookup time; a nil Transform means identity.
type Transform func(image.Image) (image.Image, error)

// LoadImage opens and decodes the image at path. JPEG, PNG, GIF and BMP are
// supported. A missing file or undecodable content fails the single lookup
// that asked for it.
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// ImageProcessor converts decoded images to fixed-size CHW float32 data with
// buffer reuse across calls.
type ImageProcessor struct {
	mu            sync.Mutex
	processBuffer []float32
	targetSize    int
}

// NewImageProcessor creates a processor that resizes to targetSize x targetSize.
func NewImageProcessor(targetSize int) *ImageProcessor {
	return &ImageProcessor{targetSize: targetSize}
}

// ProcessedImage is an image resized and flattened for neural network input.
type ProcessedImage struct {
	Data     []float32
	Width    int
	Height   int
	Channels int
}

// TargetSize returns the processor's output edge length.
func (p *ImageProcessor) TargetSize() int {
	return p.targetSize
}

// Process resizes img with nearest-neighbor sampling and converts it to CHW
// float32 data normalized to [0, 1].
func (p *ImageProcessor) Process(img image.Image) (*ProcessedImage, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("cannot process empty %dx%d image", width, height)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	requiredSize := 3 * p.targetSize * p.targetSize
	if len(p.processBuffer) < requiredSize {
		p.processBuffer = make([]float32, requiredSize)
	}
	data := p.processBuffer[:requiredSize]

	scaleX := float64(width) / float64(p.targetSize)
	scaleY := float64(height) / float64(p.targetSize)
	plane := p.targetSize * p.targetSize

	for y := 0; y < p.targetSize; y++ {
		srcY := bounds.Min.Y + int(float64(y)*scaleY)
		if srcY >= bounds.Max.Y {
			srcY = bounds.Max.Y - 1
		}
		for x := 0; x < p.targetSize; x++ {
			srcX := bounds.Min.X + int(float64(x)*scaleX)
			if srcX >= bounds.Max.X {
				srcX = bounds.Max.X - 1
			}

			r, g, b, _ := img.At(srcX, srcY).RGBA()
			idx := y*p.targetSize + x
			data[0*plane+idx] = float32(r) / 65535.0
			data[1*plane+idx] = float32(g) / 65535.0
			data[2*plane+idx] = float32(b) / 65535.0
		}
	}

	// Copy out: data aliases the reusable buffer.
	result := make([]float32, len(data))
	copy(result, data)

	return &ProcessedImage{
		Data:     result,
		Width:    p.targetSize,
		Height:   p.targetSize,
		Channels: 3,
	}, nil
}

// LoadAndProcess decodes the image at path and runs Process on it.
func (p *ImageProcessor) LoadAndProcess(path string) (*ProcessedImage, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return p.Process(img)
}
