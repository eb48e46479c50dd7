package imageproc

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	maxImageWidth  = 1536
	maxImageHeight = 1024
	jpegQuality    = 85
)

// CompressImage downscales images larger than maxImageWidth x maxImageHeight
// to reduce upload size and vision-model token cost, preserving aspect ratio,
// and re-encodes them as JPEG. Images within both limits are returned
// unchanged.
func CompressImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if width <= maxImageWidth && height <= maxImageHeight {
		return data, nil
	}

	newWidth, newHeight := width, height
	if newHeight > maxImageHeight {
		newWidth = newWidth * maxImageHeight / newHeight
		newHeight = maxImageHeight
	}
	if newWidth > maxImageWidth {
		newHeight = newHeight * maxImageWidth / newWidth
		newWidth = maxImageWidth
	}

	scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}
