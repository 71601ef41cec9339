// Package imaging decodes uploaded images and crops face regions for the
// vision provider.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"math"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"

	"github.com/kozaktomas/face-attendance/internal/vision"
)

var (
	// ErrInvalidImage is returned when the submitted bytes cannot be
	// decoded as an image.
	ErrInvalidImage = errors.New("invalid image")

	// ErrInvalidRegion is returned when a bounding box maps to a
	// zero-or-negative pixel rectangle.
	ErrInvalidRegion = errors.New("invalid crop region")
)

// jpegQuality matches the encoder settings used elsewhere in the project.
const jpegQuality = 85

// Dimensions returns the pixel width and height of an encoded image without
// decoding the full pixel data.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return cfg.Width, cfg.Height, nil
}

// Crop extracts the sub-region of the source image described by the
// fractional bounding box and re-encodes it as JPEG. Coordinates are clamped
// to the image so boxes that extend past an edge due to rounding still
// produce a valid crop.
func Crop(data []byte, box vision.BoundingBox) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	imgW := bounds.Dx()
	imgH := bounds.Dy()

	left := max(0, int(math.Floor(box.Left*float64(imgW))))
	top := max(0, int(math.Floor(box.Top*float64(imgH))))
	width := min(imgW-left, int(math.Floor(box.Width*float64(imgW))))
	height := min(imgH-top, int(math.Floor(box.Height*float64(imgH))))

	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d at (%d,%d)", ErrInvalidRegion, width, height, left, top)
	}

	cropped := image.NewRGBA(image.Rect(0, 0, width, height))
	srcRect := image.Rect(left, top, left+width, top+height).Add(bounds.Min)
	draw.Draw(cropped, cropped.Bounds(), img, srcRect.Min, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, cropped, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}
	return buf.Bytes(), nil
}
