// Package capture produces pixel buffers for the analysis pipeline from the
// machine's active displays.
package capture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/kbinani/screenshot"
	"github.com/nfnt/resize"

	"go-window-dimmer/internal/luminance"
)

// Frame is one captured display image, downscaled for analysis. The pixel
// buffer shares storage with Image; both are valid until the next capture of
// the same display and are never retained by the analysis engine.
type Frame struct {
	Display int
	Bounds  image.Rectangle // native display bounds, pre-downscale
	Image   *image.RGBA
	Buffer  *luminance.PixelBuffer
}

// Capturer acquires frames for the scan loop. The capture itself may be slow;
// callers should treat it as a blocking operation.
type Capturer interface {
	NumDisplays() int
	Capture(display int) (*Frame, error)
}

// screenCapturer captures via the platform screenshot API, downscaling each
// frame by a fixed integer factor before analysis. A factor of 2 yields
// quarter-resolution frames, which keeps full-screen analysis fast.
type screenCapturer struct {
	downscale int
}

// NewScreenCapturer creates a display capturer. downscale must be >= 1.
func NewScreenCapturer(downscale int) Capturer {
	if downscale < 1 {
		downscale = 1
	}
	return &screenCapturer{downscale: downscale}
}

func (c *screenCapturer) NumDisplays() int {
	return screenshot.NumActiveDisplays()
}

func (c *screenCapturer) Capture(display int) (*Frame, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("no active displays")
	}
	if display < 0 || display >= n {
		return nil, fmt.Errorf("display %d out of range (have %d)", display, n)
	}

	bounds := screenshot.GetDisplayBounds(display)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capturing display %d: %w", display, err)
	}

	scaled := Downscale(img, c.downscale)
	return &Frame{
		Display: display,
		Bounds:  bounds,
		Image:   scaled,
		Buffer:  luminance.FromRGBA(scaled),
	}, nil
}

// Downscale shrinks an image by an integer factor. Factor 1 passes the input
// through untouched.
func Downscale(img *image.RGBA, factor int) *image.RGBA {
	if factor <= 1 {
		return img
	}
	w := img.Rect.Dx() / factor
	h := img.Rect.Dy() / factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := resize.Resize(uint(w), uint(h), img, resize.Bilinear)
	if rgba, ok := out.(*image.RGBA); ok {
		return rgba
	}
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Rect, out, out.Bounds().Min, draw.Src)
	return rgba
}
