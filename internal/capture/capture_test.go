package capture

import (
	"image"
	"image/color"
	"math"
	"testing"

	"go-window-dimmer/internal/luminance"
)

func fillRGBA(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestDownscale_FactorOnePassesThrough(t *testing.T) {
	img := fillRGBA(10, 10, color.RGBA{100, 100, 100, 255})
	out := Downscale(img, 1)
	if out != img {
		t.Error("Expected factor 1 to return the input image unchanged")
	}
}

func TestDownscale_Halves(t *testing.T) {
	img := fillRGBA(64, 48, color.RGBA{200, 10, 30, 255})
	out := Downscale(img, 2)

	if out.Rect.Dx() != 32 || out.Rect.Dy() != 24 {
		t.Errorf("Expected 32x24 output, got %dx%d", out.Rect.Dx(), out.Rect.Dy())
	}
}

func TestDownscale_PreservesAverageLuminance(t *testing.T) {
	// Uniform content must keep its average through the resampler.
	img := fillRGBA(40, 40, color.RGBA{128, 128, 128, 255})
	out := Downscale(img, 4)

	engine := luminance.NewEngine()
	avg := engine.AverageLuminance(luminance.FromRGBA(out))
	if avg == nil {
		t.Fatal("Expected non-nil average")
	}
	expected := 128.0 / 255.0
	if math.Abs(*avg-expected) > 0.01 {
		t.Errorf("Expected average ~%f after downscale, got %f", expected, *avg)
	}
}

func TestDownscale_NeverProducesEmptyImage(t *testing.T) {
	img := fillRGBA(3, 3, color.RGBA{255, 255, 255, 255})
	out := Downscale(img, 8)
	if out.Rect.Dx() < 1 || out.Rect.Dy() < 1 {
		t.Errorf("Expected at least 1x1 output, got %dx%d", out.Rect.Dx(), out.Rect.Dy())
	}
}

func TestNewScreenCapturer_ClampsDownscale(t *testing.T) {
	c := NewScreenCapturer(0).(*screenCapturer)
	if c.downscale != 1 {
		t.Errorf("Expected downscale clamped to 1, got %d", c.downscale)
	}
}
