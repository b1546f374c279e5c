package dataset

import (
	"fmt"
	"image"

	"github.com/seqlab/visiondata/vision/preprocessing"
)

// DavisConfig holds the optional collaborators of a DavisDataset.
type DavisConfig struct {
	// Transform is applied to the image at lookup time; nil means identity.
	Transform preprocessing.Transform
	// TargetTransform is applied to the annotation mask; nil means identity.
	TargetTransform preprocessing.Transform
	// Loader decodes a path into an image. Defaults to preprocessing.LoadImage.
	Loader func(path string) (image.Image, error)
}

// DavisDataset indexes a DAVIS-style manifest of image/annotation path pairs.
// Each lookup loads one image and its mask from disk and derives the sequence
// (clip) name from the image's parent directory.
//
// Full paths are built by plain string concatenation of the base directory
// and the manifest-relative path. The manifest carries any separator needed,
// so the usual base directories end in "/". Path-joining instead would
// silently change which files rows without a leading separator resolve to.
type DavisDataset struct {
	rows          []ManifestRow
	imageDir      string
	annotationDir string
	classes       []string
	labelCount    map[string]int
	cfg           DavisConfig
}

// NewDavisDataset reads the manifest at manifestPath and prepares lookups
// against imageDir and annotationDir. Construction fails on an unreadable or
// malformed manifest; no image is touched until Get.
func NewDavisDataset(manifestPath, imageDir, annotationDir string, cfg DavisConfig) (*DavisDataset, error) {
	rows, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	if cfg.Loader == nil {
		cfg.Loader = preprocessing.LoadImage
	}

	// Sequence census over the raw manifest paths. When imageDir ends in a
	// separator this agrees with the per-lookup labels from Get.
	imagePaths := make([]string, len(rows))
	for i, row := range rows {
		imagePaths[i] = row.Image
	}
	classes, labelCount := CountSequences(imagePaths)

	return &DavisDataset{
		rows:          rows,
		imageDir:      imageDir,
		annotationDir: annotationDir,
		classes:       classes,
		labelCount:    labelCount,
		cfg:           cfg,
	}, nil
}

// Len returns the number of manifest rows.
func (d *DavisDataset) Len() int {
	return len(d.rows)
}

// ImagePath returns the resolved image path for the given row.
func (d *DavisDataset) ImagePath(index int) (string, error) {
	if index < 0 || index >= len(d.rows) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(d.rows))
	}
	return d.imageDir + d.rows[index].Image, nil
}

// AnnotationPath returns the resolved annotation path for the given row.
func (d *DavisDataset) AnnotationPath(index int) (string, error) {
	if index < 0 || index >= len(d.rows) {
		return "", fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(d.rows))
	}
	return d.annotationDir + d.rows[index].Annotation, nil
}

// Get loads the row at index and returns the image, its annotation mask, and
// the sequence name. A failed load or decode fails only this lookup; the
// dataset and its other rows stay usable.
func (d *DavisDataset) Get(index int) (img, annotation image.Image, sequence string, err error) {
	imagePath, err := d.ImagePath(index)
	if err != nil {
		return nil, nil, "", err
	}
	annotationPath := d.annotationDir + d.rows[index].Annotation

	img, err = d.cfg.Loader(imagePath)
	if err != nil {
		return nil, nil, "", err
	}
	annotation, err = d.cfg.Loader(annotationPath)
	if err != nil {
		return nil, nil, "", err
	}

	sequence = SequenceOf(imagePath)

	if d.cfg.Transform != nil {
		img, err = d.cfg.Transform(img)
		if err != nil {
			return nil, nil, "", fmt.Errorf("transform failed for %s: %w", imagePath, err)
		}
	}
	if d.cfg.TargetTransform != nil {
		annotation, err = d.cfg.TargetTransform(annotation)
		if err != nil {
			return nil, nil, "", fmt.Errorf("target transform failed for %s: %w", annotationPath, err)
		}
	}

	return img, annotation, sequence, nil
}

// ClassSummary returns the sequence names found in the manifest, in
// first-appearance order, and the row count per sequence.
func (d *DavisDataset) ClassSummary() ([]string, map[string]int) {
	return d.classes, d.labelCount
}

// String returns a human-readable summary of the dataset.
func (d *DavisDataset) String() string {
	return fmt.Sprintf("DavisDataset: %d rows, %d sequences", len(d.rows), len(d.classes))
}
