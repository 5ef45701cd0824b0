package luminance

import (
	"fmt"
	"image"
	"image/draw"
)

// PixelBuffer is a row-major grid of 8-bit RGBA pixels with an explicit row
// stride. Stride is in bytes and may exceed Width*4 when rows are padded for
// alignment. The buffer is read-only to the engine and is never retained past
// a single call.
type PixelBuffer struct {
	Pix    []byte
	Width  int
	Height int
	Stride int
}

// FromRGBA wraps an image.RGBA without copying its pixel data. Alpha is
// expected to be premultiplied or fully opaque; the engine ignores it either
// way, so non-premultiplied semi-transparent sources will read brighter than
// they appear on screen.
func FromRGBA(img *image.RGBA) *PixelBuffer {
	return &PixelBuffer{
		Pix:    img.Pix,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		Stride: img.Stride,
	}
}

// FromImage converts an arbitrary image into a tightly packed pixel buffer.
// It draws through an RGBA intermediate, so this path copies.
func FromImage(img image.Image) *PixelBuffer {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return FromRGBA(rgba)
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Rect, img, bounds.Min, draw.Src)
	return FromRGBA(rgba)
}

// Bounds returns the full-buffer region.
func (b *PixelBuffer) Bounds() Region {
	return Region{X: 0, Y: 0, Width: b.Width, Height: b.Height}
}

// mustBeValid panics when the buffer violates its layout contract. A
// malformed buffer indicates a bug in the capture layer, not a runtime
// condition worth recovering from.
func (b *PixelBuffer) mustBeValid() {
	if b == nil {
		panic("luminance: nil pixel buffer")
	}
	if b.Width < 0 || b.Height < 0 {
		panic(fmt.Sprintf("luminance: negative buffer dimensions %dx%d", b.Width, b.Height))
	}
	if b.Width == 0 || b.Height == 0 {
		return
	}
	if b.Stride < b.Width*4 {
		panic(fmt.Sprintf("luminance: stride %d too small for width %d", b.Stride, b.Width))
	}
	// The last row does not need trailing padding, only its pixel bytes.
	need := (b.Height-1)*b.Stride + b.Width*4
	if len(b.Pix) < need {
		panic(fmt.Sprintf("luminance: pixel data length %d, need at least %d", len(b.Pix), need))
	}
}

// Region is an axis-aligned sub-rectangle of a pixel buffer.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Empty reports whether the region contains no pixels.
func (r Region) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Intersect clips the region against another. The result always has
// non-negative dimensions; a disjoint pair intersects to an empty region,
// which is a valid "no pixels" input rather than an error.
func (r Region) Intersect(o Region) Region {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.Width, o.X+o.Width)
	y1 := min(r.Y+r.Height, o.Y+o.Height)
	if x1 <= x0 || y1 <= y0 {
		return Region{X: x0, Y: y0}
	}
	return Region{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}
