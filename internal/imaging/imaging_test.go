package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/kozaktomas/face-attendance/internal/vision"
)

// encodeTestImage produces an encoded width x height image with the left
// half red and the right half blue, so crops can be verified by color.
func encodeTestImage(t *testing.T, width, height int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := range height {
		for x := range width {
			if x < width/2 {
				img.Set(x, y, color.RGBA{R: 255, A: 255})
			} else {
				img.Set(x, y, color.RGBA{B: 255, A: 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: 90})
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func TestDimensions(t *testing.T) {
	data := encodeTestImage(t, 640, 480, encodeJPEG)

	w, h, err := Dimensions(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != 640 || h != 480 {
		t.Errorf("expected 640x480, got %dx%d", w, h)
	}
}

func TestDimensions_InvalidImage(t *testing.T) {
	_, _, err := Dimensions([]byte("definitely not an image"))
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestCrop_Basic(t *testing.T) {
	data := encodeTestImage(t, 100, 100, encodePNG)

	// Crop the left quarter: should be all red.
	crop, err := Crop(data, vision.BoundingBox{Left: 0, Top: 0, Width: 0.25, Height: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(crop))
	if err != nil {
		t.Fatalf("crop is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 25 || img.Bounds().Dy() != 100 {
		t.Errorf("expected 25x100 crop, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}

	r, _, b, _ := img.At(10, 50).RGBA()
	if r < 0xc000 || b > 0x4000 {
		t.Errorf("expected red pixels in left-quarter crop, got r=%d b=%d", r>>8, b>>8)
	}
}

func TestCrop_ClampsOverflowingBox(t *testing.T) {
	data := encodeTestImage(t, 100, 100, encodePNG)

	// Box extends past the right and bottom edges.
	crop, err := Crop(data, vision.BoundingBox{Left: 0.8, Top: 0.8, Width: 0.5, Height: 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(crop))
	if err != nil {
		t.Fatalf("crop is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 20 || img.Bounds().Dy() != 20 {
		t.Errorf("expected clamped 20x20 crop, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCrop_NegativeOriginClampsToZero(t *testing.T) {
	data := encodeTestImage(t, 100, 100, encodePNG)

	crop, err := Crop(data, vision.BoundingBox{Left: -0.1, Top: -0.1, Width: 0.3, Height: 0.3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, _, err := image.Decode(bytes.NewReader(crop))
	if err != nil {
		t.Fatalf("crop is not a decodable image: %v", err)
	}
	if img.Bounds().Dx() != 30 || img.Bounds().Dy() != 30 {
		t.Errorf("expected 30x30 crop from clamped origin, got %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestCrop_DegenerateRegion(t *testing.T) {
	data := encodeTestImage(t, 100, 100, encodePNG)

	tests := []struct {
		name string
		box  vision.BoundingBox
	}{
		{"zero width", vision.BoundingBox{Left: 0.5, Top: 0.5, Width: 0, Height: 0.2}},
		{"zero height", vision.BoundingBox{Left: 0.5, Top: 0.5, Width: 0.2, Height: 0}},
		{"origin past edge", vision.BoundingBox{Left: 1.5, Top: 0, Width: 0.2, Height: 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Crop(data, tt.box); !errors.Is(err, ErrInvalidRegion) {
				t.Errorf("expected ErrInvalidRegion, got %v", err)
			}
		})
	}
}

func TestCrop_InvalidImage(t *testing.T) {
	_, err := Crop([]byte("garbage"), vision.BoundingBox{Width: 0.5, Height: 0.5})
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("expected ErrInvalidImage, got %v", err)
	}
}

func TestMapToPixels(t *testing.T) {
	box := vision.BoundingBox{Left: 0.1, Top: 0.2, Width: 0.3, Height: 0.4}

	rect := MapToPixels(box, 800, 600)

	if rect.X != 80 {
		t.Errorf("expected x=80, got %v", rect.X)
	}
	if rect.Y != 120 {
		t.Errorf("expected y=120, got %v", rect.Y)
	}
	if rect.W != 240 {
		t.Errorf("expected w=240, got %v", rect.W)
	}
	if rect.H != 240 {
		t.Errorf("expected h=240, got %v", rect.H)
	}
}
