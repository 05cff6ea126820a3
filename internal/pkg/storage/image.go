package storage

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// ImageProcessor resizes uploaded images. All output is JPEG.
type ImageProcessor struct{}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{}
}

// Fit scales the image down to fit within the bounding box, keeping the
// aspect ratio. Images already inside the box pass through unscaled.
func (p *ImageProcessor) Fit(content io.Reader, maxWidth, maxHeight int, quality int) (io.Reader, error) {
	img, _, err := image.Decode(content)
	if err != nil {
		return nil, fmt.Errorf("decode image failed: %w", err)
	}

	resized := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, resized, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode image failed: %w", err)
	}
	return buf, nil
}

// GenerateThumbnail produces a small JPEG preview of the source image.
func (p *ImageProcessor) GenerateThumbnail(content io.Reader, maxWidth, maxHeight int) (io.Reader, error) {
	return p.Fit(content, maxWidth, maxHeight, 80)
}
