package dataset

import (
	"fmt"
	"math/rand"
	"strings"
)

// SelectedFolderDataset indexes a labeled-image directory tree, restricted to
// a caller-chosen subset of the class subdirectories. It composes FindClasses
// and MakeSamples rather than wrapping a generic folder scan, so classes the
// caller did not ask for never appear in the label space.
type SelectedFolderDataset struct {
	root       string
	samples    []Sample
	targets    []int
	classNames []string
	classToIdx map[string]int
}

// NewSelectedFolder scans root for the chosen class subdirectories and
// collects their sample files. A zero FilterSpec selects by
// DefaultImageExtensions; otherwise exactly one of Extensions or IsValid
// must be set.
func NewSelectedFolder(root string, chosenClasses []string, filter FilterSpec) (*SelectedFolderDataset, error) {
	if len(filter.Extensions) == 0 && filter.IsValid == nil {
		filter.Extensions = DefaultImageExtensions
	}

	classes, classToIdx, err := FindClasses(root, chosenClasses)
	if err != nil {
		return nil, err
	}

	samples, err := MakeSamples(root, classToIdx, filter)
	if err != nil {
		return nil, err
	}

	targets := make([]int, len(samples))
	for i, s := range samples {
		targets[i] = s.Class
	}

	return &SelectedFolderDataset{
		root:       root,
		samples:    samples,
		targets:    targets,
		classNames: classes,
		classToIdx: classToIdx,
	}, nil
}

// Len returns the number of samples in the dataset.
func (d *SelectedFolderDataset) Len() int {
	return len(d.samples)
}

// GetItem returns the file path and class index at the given position.
func (d *SelectedFolderDataset) GetItem(index int) (string, int, error) {
	if index < 0 || index >= len(d.samples) {
		return "", 0, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(d.samples))
	}
	s := d.samples[index]
	return s.Path, s.Class, nil
}

// Classes returns the retained class names in index order.
func (d *SelectedFolderDataset) Classes() []string {
	return d.classNames
}

// ClassToIndex returns the class name to dense index mapping.
func (d *SelectedFolderDataset) ClassToIndex() map[string]int {
	return d.classToIdx
}

// Targets returns the class index of every sample, in sample order.
func (d *SelectedFolderDataset) Targets() []int {
	return d.targets
}

// NumClasses returns the number of retained classes.
func (d *SelectedFolderDataset) NumClasses() int {
	return len(d.classNames)
}

// ClassDistribution returns the number of samples per class name.
func (d *SelectedFolderDataset) ClassDistribution() map[string]int {
	dist := make(map[string]int, len(d.classNames))
	for _, name := range d.classNames {
		dist[name] = 0
	}
	for _, target := range d.targets {
		dist[d.classNames[target]]++
	}
	return dist
}

// Split splits the dataset into train and validation subsets. Class metadata
// is shared with the parent; only the sample lists differ.
func (d *SelectedFolderDataset) Split(trainRatio float64, shuffle bool) (*SelectedFolderDataset, *SelectedFolderDataset) {
	n := len(d.samples)
	trainSize := int(float64(n) * trainRatio)

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if shuffle {
		rand.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	return d.Subset(indices[:trainSize]), d.Subset(indices[trainSize:])
}

// Subset creates a new dataset holding the samples at the given indices, in
// the given order. Duplicate indices are allowed.
func (d *SelectedFolderDataset) Subset(indices []int) *SelectedFolderDataset {
	subset := &SelectedFolderDataset{
		root:       d.root,
		samples:    make([]Sample, len(indices)),
		targets:    make([]int, len(indices)),
		classNames: d.classNames,
		classToIdx: d.classToIdx,
	}
	for i, idx := range indices {
		subset.samples[i] = d.samples[idx]
		subset.targets[i] = d.samples[idx].Class
	}
	return subset
}

// String returns a human-readable summary of the dataset.
func (d *SelectedFolderDataset) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SelectedFolderDataset: %d samples, %d classes\n", len(d.samples), len(d.classNames)))
	sb.WriteString("Class distribution:\n")

	dist := d.ClassDistribution()
	for _, className := range d.classNames {
		sb.WriteString(fmt.Sprintf("  %s: %d samples\n", className, dist[className]))
	}
	return sb.String()
}
