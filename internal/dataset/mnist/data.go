// Package mnist loads the MNIST handwritten digit dataset from IDX or CSV
// files and prepares it as batched NCHW tensors.
package mnist

import (
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/primer-ml/primer/internal/tensor"
)

const (
	// ImageSize is the side length of one digit image.
	ImageSize = 28
	// PixelCount is the flattened image length.
	PixelCount = ImageSize * ImageSize
	// NumClasses is the digit class count.
	NumClasses = 10
)

// Dataset holds normalized images and their labels.
type Dataset struct {
	Images [][]float32 // each row has PixelCount values in [0,1]
	Labels []int32     // class indices 0..9
}

// Len returns the sample count.
func (d *Dataset) Len() int { return len(d.Images) }

// Load reads the standard IDX file pair from dir. train selects the
// train-* or t10k-* pair.
func Load(dir string, train bool) (*Dataset, error) {
	imagesName, labelsName := "t10k-images-idx3-ubyte", "t10k-labels-idx1-ubyte"
	if train {
		imagesName, labelsName = "train-images-idx3-ubyte", "train-labels-idx1-ubyte"
	}

	images, err := readIDXImages(filepath.Join(dir, imagesName))
	if err != nil {
		return nil, err
	}
	labels, err := readIDXLabels(filepath.Join(dir, labelsName))
	if err != nil {
		return nil, err
	}
	if len(images) != len(labels) {
		return nil, fmt.Errorf("mnist: %d images but %d labels", len(images), len(labels))
	}

	return &Dataset{Images: images, Labels: labels}, nil
}

// LoadCSV reads the Kaggle-style CSV layout: one row per sample, label in
// the first column followed by 784 pixel values in 0..255. A non-numeric
// first row is treated as a header and skipped.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mnist: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("mnist: parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("mnist: %s is empty", path)
	}

	if _, err := strconv.Atoi(records[0][0]); err != nil {
		records = records[1:]
	}

	d := &Dataset{
		Images: make([][]float32, 0, len(records)),
		Labels: make([]int32, 0, len(records)),
	}
	for i, record := range records {
		if len(record) != PixelCount+1 {
			return nil, fmt.Errorf("mnist: row %d has %d columns, want %d", i, len(record), PixelCount+1)
		}
		label, err := strconv.Atoi(record[0])
		if err != nil || label < 0 || label > 9 {
			return nil, fmt.Errorf("mnist: row %d: bad label %q", i, record[0])
		}

		row := make([]float32, PixelCount)
		for j, cell := range record[1:] {
			pixel, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("mnist: row %d col %d: %w", i, j+1, err)
			}
			row[j] = float32(pixel) / 255.0
		}

		d.Images = append(d.Images, row)
		d.Labels = append(d.Labels, int32(label))
	}

	return d, nil
}

// Subsample returns the first n samples, or the whole dataset when n is
// zero or exceeds its size. Rows are shared, not copied.
func (d *Dataset) Subsample(n int) *Dataset {
	if n <= 0 || n >= d.Len() {
		return d
	}
	return &Dataset{Images: d.Images[:n], Labels: d.Labels[:n]}
}

// Split divides the dataset into train and validation parts; ratio is the
// validation fraction.
func (d *Dataset) Split(ratio float64) (train, val *Dataset) {
	if ratio <= 0 || ratio >= 1 {
		return d, &Dataset{}
	}
	cut := d.Len() - int(float64(d.Len())*ratio)
	train = &Dataset{Images: d.Images[:cut], Labels: d.Labels[:cut]}
	val = &Dataset{Images: d.Images[cut:], Labels: d.Labels[cut:]}
	return train, val
}

// OneHot encodes class indices as a flat [len(labels), numClasses] row-major
// matrix of 0/1 values.
func OneHot(labels []int32, numClasses int) []float32 {
	out := make([]float32, len(labels)*numClasses)
	for i, label := range labels {
		out[i*numClasses+int(label)] = 1
	}
	return out
}

// Batch is one training batch in tensor form.
type Batch[B tensor.Backend] struct {
	Images *tensor.Tensor[float32, B] // [size, 1, 28, 28]
	Labels *tensor.Tensor[int32, B]   // [size]
	Size   int
}

// Batches shuffles the dataset with rng (Fisher-Yates; nil keeps the input
// order) and packs it into NCHW batches. A short final batch is kept.
func Batches[B tensor.Backend](d *Dataset, batchSize int, rng *rand.Rand, backend B) []Batch[B] {
	if batchSize <= 0 {
		panic(fmt.Sprintf("mnist: batch size must be positive, got %d", batchSize))
	}

	order := make([]int, d.Len())
	for i := range order {
		order[i] = i
	}
	if rng != nil {
		rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	var batches []Batch[B]
	for start := 0; start < len(order); start += batchSize {
		end := min(start+batchSize, len(order))
		size := end - start

		images := tensor.Zeros[float32](tensor.Shape{size, 1, ImageSize, ImageSize}, backend)
		labels := tensor.Zeros[int32](tensor.Shape{size}, backend)

		imgData := images.Raw().AsFloat32()
		lblData := labels.Raw().AsInt32()
		for i, idx := range order[start:end] {
			copy(imgData[i*PixelCount:(i+1)*PixelCount], d.Images[idx])
			lblData[i] = d.Labels[idx]
		}

		batches = append(batches, Batch[B]{Images: images, Labels: labels, Size: size})
	}

	return batches
}

// Synthetic builds a deterministic stand-in dataset so training demos run
// without the real files. Each class gets a distinct stripe pattern plus a
// little index-derived variation.
func Synthetic(n int) *Dataset {
	d := &Dataset{
		Images: make([][]float32, n),
		Labels: make([]int32, n),
	}
	for i := 0; i < n; i++ {
		label := int32(i % NumClasses)
		row := make([]float32, PixelCount)
		phase := (i / NumClasses) % 4
		for y := 0; y < ImageSize; y++ {
			for x := 0; x < ImageSize; x++ {
				// Stripe spacing encodes the class; phase shifts the pattern.
				if (x+y*int(label+1)+phase)%(int(label)+2) == 0 {
					row[y*ImageSize+x] = 1
				}
			}
		}
		d.Images[i] = row
		d.Labels[i] = label
	}
	return d
}
