package imaging

import "github.com/kozaktomas/face-attendance/internal/vision"

// PixelRect is a bounding box in pixel coordinates over a rendering surface.
type PixelRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// MapToPixels converts a fractional bounding box to pixel coordinates over a
// rendering surface. The surface dimensions must be the *rendered* size of
// the image, not its native pixel size, so overlays line up with what the
// viewer actually sees.
func MapToPixels(box vision.BoundingBox, renderWidth, renderHeight float64) PixelRect {
	return PixelRect{
		X: box.Left * renderWidth,
		Y: box.Top * renderHeight,
		W: box.Width * renderWidth,
		H: box.Height * renderHeight,
	}
}
