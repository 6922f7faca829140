package mnist

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// IDX magic numbers from the original MNIST distribution.
const (
	imagesMagic = 2051
	labelsMagic = 2049
)

// maxIDXCount caps the sample count read from an IDX header. The full MNIST
// training set has 60,000 samples; anything far beyond that is a corrupt or
// hostile file, not a dataset.
const maxIDXCount = 1_000_000

// readIDXImages parses an idx3-ubyte image file into normalized [0,1]
// float32 rows of PixelCount values each.
func readIDXImages(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mnist: %w", err)
	}
	defer f.Close()

	var header struct {
		Magic, Count, Rows, Cols int32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("mnist: read image header: %w", err)
	}
	if header.Magic != imagesMagic {
		return nil, fmt.Errorf("mnist: %s: bad image magic %d (want %d)", path, header.Magic, imagesMagic)
	}
	if header.Rows != ImageSize || header.Cols != ImageSize {
		return nil, fmt.Errorf("mnist: %s: unexpected image size %dx%d", path, header.Rows, header.Cols)
	}
	if header.Count < 0 || header.Count > maxIDXCount {
		return nil, fmt.Errorf("mnist: %s: implausible image count %d", path, header.Count)
	}

	pixels := make([]byte, PixelCount)
	images := make([][]float32, header.Count)
	for i := range images {
		if _, err := io.ReadFull(f, pixels); err != nil {
			return nil, fmt.Errorf("mnist: image %d: %w", i, err)
		}
		row := make([]float32, PixelCount)
		for j, p := range pixels {
			row[j] = float32(p) / 255.0
		}
		images[i] = row
	}

	return images, nil
}

// readIDXLabels parses an idx1-ubyte label file into int32 class indices.
func readIDXLabels(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mnist: %w", err)
	}
	defer f.Close()

	var header struct {
		Magic, Count int32
	}
	if err := binary.Read(f, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("mnist: read label header: %w", err)
	}
	if header.Magic != labelsMagic {
		return nil, fmt.Errorf("mnist: %s: bad label magic %d (want %d)", path, header.Magic, labelsMagic)
	}
	if header.Count < 0 || header.Count > maxIDXCount {
		return nil, fmt.Errorf("mnist: %s: implausible label count %d", path, header.Count)
	}

	raw := make([]byte, header.Count)
	if _, err := io.ReadFull(f, raw); err != nil {
		return nil, fmt.Errorf("mnist: read labels: %w", err)
	}

	labels := make([]int32, header.Count)
	for i, b := range raw {
		if b > 9 {
			return nil, fmt.Errorf("mnist: label %d out of range at index %d", b, i)
		}
		labels[i] = int32(b)
	}
	return labels, nil
}
