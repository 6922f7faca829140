package pretrained

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
)

// Preprocess decodes a JPEG or PNG image and converts it to the flat CHW
// float32 layout the model expects, resizing to metadata.ImageSize with
// Lanczos resampling and normalizing pixel values to [0, 1].
func Preprocess(r io.Reader, metadata Metadata) ([]float32, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("pretrained: decode image: %w", err)
	}
	return PreprocessImage(img, metadata), nil
}

// PreprocessImage converts an already-decoded image.
func PreprocessImage(img image.Image, metadata Metadata) []float32 {
	size := metadata.ImageSize
	resized := resize.Resize(uint(size), uint(size), img, resize.Lanczos3)

	plane := size * size
	data := make([]float32, metadata.Channels*plane)

	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := resized.At(x, y).RGBA()
			idx := y*size + x
			if metadata.Channels == 1 {
				// ITU-R BT.601 luma weighting.
				gray := 0.299*float32(r) + 0.587*float32(g) + 0.114*float32(b)
				data[idx] = gray / 65535.0
				continue
			}
			data[idx] = float32(r) / 65535.0
			data[plane+idx] = float32(g) / 65535.0
			data[2*plane+idx] = float32(b) / 65535.0
		}
	}
	return data
}
