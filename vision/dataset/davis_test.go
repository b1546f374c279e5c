package dataset

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeTestPNG writes a small solid-color PNG at path.
func writeTestPNG(t *testing.T, path string, c color.Color) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer file.Close()
	if err := png.Encode(file, img); err != nil {
		t.Fatalf("Failed to encode PNG %s: %v", path, err)
	}
}

// createDavisFixture lays out images, annotations, and a manifest for the
// given sequences and returns (manifestPath, imageDir, annotationDir), the
// base dirs ending in a separator as DAVIS image sets expect.
func createDavisFixture(t *testing.T, framesPerSequence map[string]int) (string, string, string) {
	t.Helper()
	tempDir := t.TempDir()
	imageDir := filepath.Join(tempDir, "JPEGImages") + string(filepath.Separator)
	annotationDir := filepath.Join(tempDir, "Annotations") + string(filepath.Separator)

	var lines []string
	for seq, frames := range framesPerSequence {
		for i := 0; i < frames; i++ {
			imgRel := fmt.Sprintf("%s/%05d.png", seq, i)
			annRel := fmt.Sprintf("%s/%05d.png", seq, i)
			writeTestPNG(t, imageDir+imgRel, color.RGBA{R: 200, A: 255})
			writeTestPNG(t, annotationDir+annRel, color.RGBA{G: 255, A: 255})
			lines = append(lines, imgRel+" "+annRel)
		}
	}

	manifestPath := filepath.Join(tempDir, "train.txt")
	if err := os.WriteFile(manifestPath, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("Failed to write manifest: %v", err)
	}
	return manifestPath, imageDir, annotationDir
}

func TestNewDavisDataset(t *testing.T) {
	t.Run("LengthMatchesManifest", func(t *testing.T) {
		manifest, imageDir, annotationDir := createDavisFixture(t, map[string]int{"bear": 3, "boat": 2})

		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if ds.Len() != 5 {
			t.Errorf("Expected 5 rows, got %d", ds.Len())
		}
	})

	t.Run("MalformedManifest", func(t *testing.T) {
		path := writeManifest(t, "only_one_field.png\n")

		_, err := NewDavisDataset(path, "/img/", "/ann/", DavisConfig{})
		if !errors.Is(err, ErrManifestParse) {
			t.Errorf("Expected ErrManifestParse, got: %v", err)
		}
	})

	t.Run("MissingManifest", func(t *testing.T) {
		_, err := NewDavisDataset("/nonexistent/train.txt", "/img/", "/ann/", DavisConfig{})
		if err == nil {
			t.Error("Expected error for missing manifest")
		}
	})
}

func TestDavisPathResolution(t *testing.T) {
	path := writeManifest(t, "a/x.png b/x.png\na/y.png b/y.png\n")

	ds, err := NewDavisDataset(path, "/img/", "/ann/", DavisConfig{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	t.Run("PlainConcatenation", func(t *testing.T) {
		imgPath, err := ds.ImagePath(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if imgPath != "/img/a/x.png" {
			t.Errorf("Expected /img/a/x.png, got %s", imgPath)
		}

		annPath, err := ds.AnnotationPath(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if annPath != "/ann/b/x.png" {
			t.Errorf("Expected /ann/b/x.png, got %s", annPath)
		}
	})

	t.Run("NoSeparatorInserted", func(t *testing.T) {
		// The base dir carries the separator; none is added.
		ds2, err := NewDavisDataset(path, "/img", "/ann", DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		imgPath, _ := ds2.ImagePath(0)
		if imgPath != "/imga/x.png" {
			t.Errorf("Expected plain concatenation /imga/x.png, got %s", imgPath)
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		for _, idx := range []int{-1, ds.Len(), ds.Len() + 7} {
			if _, err := ds.ImagePath(idx); !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Expected ErrIndexOutOfRange for index %d, got: %v", idx, err)
			}
		}
	})
}

func TestDavisGet(t *testing.T) {
	manifest, imageDir, annotationDir := createDavisFixture(t, map[string]int{"bear": 2})

	t.Run("ReturnsTriple", func(t *testing.T) {
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		img, annotation, sequence, err := ds.Get(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if img == nil || annotation == nil {
			t.Fatal("Expected both images decoded")
		}
		if sequence != "bear" {
			t.Errorf("Expected sequence bear, got %s", sequence)
		}
		if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 4 {
			t.Errorf("Unexpected image bounds: %v", img.Bounds())
		}
	})

	t.Run("OutOfRange", func(t *testing.T) {
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		for _, idx := range []int{-1, ds.Len()} {
			_, _, _, err := ds.Get(idx)
			if !errors.Is(err, ErrIndexOutOfRange) {
				t.Errorf("Expected ErrIndexOutOfRange for index %d, got: %v", idx, err)
			}
		}
	})

	t.Run("TransformsApplied", func(t *testing.T) {
		cropped := image.NewRGBA(image.Rect(0, 0, 2, 2))
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{
			Transform: func(img image.Image) (image.Image, error) {
				return cropped, nil
			},
			TargetTransform: func(img image.Image) (image.Image, error) {
				return cropped, nil
			},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		img, annotation, _, err := ds.Get(0)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if img != image.Image(cropped) || annotation != image.Image(cropped) {
			t.Error("Expected transforms applied to image and annotation")
		}
	})

	t.Run("TransformError", func(t *testing.T) {
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{
			Transform: func(img image.Image) (image.Image, error) {
				return nil, errors.New("boom")
			},
		})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		if _, _, _, err := ds.Get(0); err == nil {
			t.Error("Expected transform error to propagate")
		}
	})

	t.Run("MissingImageFailsOnlyThatLookup", func(t *testing.T) {
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		imgPath, _ := ds.ImagePath(1)
		if err := os.Remove(imgPath); err != nil {
			t.Fatalf("Failed to remove image: %v", err)
		}

		if _, _, _, err := ds.Get(1); err == nil {
			t.Error("Expected error for missing image")
		}

		// Other rows stay usable.
		if _, _, _, err := ds.Get(0); err != nil {
			t.Errorf("Expected row 0 to remain loadable, got: %v", err)
		}
	})

	t.Run("UndecodableImage", func(t *testing.T) {
		ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		imgPath, _ := ds.ImagePath(0)
		if err := os.WriteFile(imgPath, []byte("not an image"), 0644); err != nil {
			t.Fatalf("Failed to corrupt image: %v", err)
		}

		if _, _, _, err := ds.Get(0); err == nil {
			t.Error("Expected decode error for corrupt image")
		}
	})
}

func TestDavisClassSummary(t *testing.T) {
	t.Run("CountsPerSequence", func(t *testing.T) {
		path := writeManifest(t, "a/1.png m/1.png\na/2.png m/2.png\nb/1.png m/3.png\n")

		ds, err := NewDavisDataset(path, "/img/", "/ann/", DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		sequences, counts := ds.ClassSummary()
		if len(sequences) != 2 {
			t.Fatalf("Expected 2 sequences, got %v", sequences)
		}
		if counts["a"] != 2 || counts["b"] != 1 {
			t.Errorf("Expected counts a=2 b=1, got %v", counts)
		}
	})

	t.Run("RawManifestPathsUsed", func(t *testing.T) {
		// Summary labels come from the manifest paths alone; the base dir
		// plays no part even when it would change the parent directory.
		path := writeManifest(t, "x.png m/x.png\n")

		ds, err := NewDavisDataset(path, "/img/frames/", "/ann/", DavisConfig{})
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}

		sequences, _ := ds.ClassSummary()
		if len(sequences) != 1 || sequences[0] != "." {
			t.Errorf("Expected summary over raw paths, got %v", sequences)
		}
	})
}

func BenchmarkDavisGet(b *testing.B) {
	tempDir := b.TempDir()
	imageDir := filepath.Join(tempDir, "img") + string(filepath.Separator)
	annotationDir := filepath.Join(tempDir, "ann") + string(filepath.Separator)

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	writePNG := func(path string) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			b.Fatalf("Failed to create directory: %v", err)
		}
		file, err := os.Create(path)
		if err != nil {
			b.Fatalf("Failed to create %s: %v", path, err)
		}
		defer file.Close()
		if err := png.Encode(file, img); err != nil {
			b.Fatalf("Failed to encode PNG: %v", err)
		}
	}

	var lines []string
	for i := 0; i < 8; i++ {
		rel := fmt.Sprintf("seq/%05d.png", i)
		writePNG(imageDir + rel)
		writePNG(annotationDir + rel)
		lines = append(lines, rel+" "+rel)
	}
	manifest := filepath.Join(tempDir, "train.txt")
	if err := os.WriteFile(manifest, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		b.Fatalf("Failed to write manifest: %v", err)
	}

	ds, err := NewDavisDataset(manifest, imageDir, annotationDir, DavisConfig{})
	if err != nil {
		b.Fatalf("Failed to create dataset: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := ds.Get(i % ds.Len()); err != nil {
			b.Fatalf("Failed to get item: %v", err)
		}
	}
}
