package luminance

import (
	"image"
	"image/color"
	"testing"
)

func TestRegionIntersect(t *testing.T) {
	bounds := Region{X: 0, Y: 0, Width: 100, Height: 100}

	tests := []struct {
		name   string
		region Region
		want   Region
	}{
		{
			name:   "fully inside",
			region: Region{X: 10, Y: 20, Width: 30, Height: 40},
			want:   Region{X: 10, Y: 20, Width: 30, Height: 40},
		},
		{
			name:   "overhangs bottom right",
			region: Region{X: 90, Y: 95, Width: 50, Height: 50},
			want:   Region{X: 90, Y: 95, Width: 10, Height: 5},
		},
		{
			name:   "overhangs top left",
			region: Region{X: -10, Y: -10, Width: 30, Height: 30},
			want:   Region{X: 0, Y: 0, Width: 20, Height: 20},
		},
		{
			name:   "fully outside",
			region: Region{X: 200, Y: 200, Width: 10, Height: 10},
			want:   Region{X: 200, Y: 200, Width: 0, Height: 0},
		},
		{
			name:   "zero area input",
			region: Region{X: 50, Y: 50, Width: 0, Height: 10},
			want:   Region{X: 50, Y: 50, Width: 0, Height: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.region.Intersect(bounds)
			if got.Width != tt.want.Width || got.Height != tt.want.Height {
				t.Errorf("Intersect dimensions = %dx%d, want %dx%d",
					got.Width, got.Height, tt.want.Width, tt.want.Height)
			}
			if !got.Empty() && (got.X != tt.want.X || got.Y != tt.want.Y) {
				t.Errorf("Intersect origin = (%d,%d), want (%d,%d)",
					got.X, got.Y, tt.want.X, tt.want.Y)
			}
		})
	}
}

func TestRegionEmpty(t *testing.T) {
	if (Region{Width: 10, Height: 10}).Empty() {
		t.Error("Expected 10x10 region to be non-empty")
	}
	if !(Region{Width: 0, Height: 10}).Empty() {
		t.Error("Expected zero-width region to be empty")
	}
	if !(Region{Width: 10, Height: -1}).Empty() {
		t.Error("Expected negative-height region to be empty")
	}
}

func TestFromRGBA_SharesPixels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	buf := FromRGBA(img)

	if buf.Width != 4 || buf.Height != 3 {
		t.Errorf("Expected 4x3 buffer, got %dx%d", buf.Width, buf.Height)
	}
	if buf.Stride != img.Stride {
		t.Errorf("Expected stride %d, got %d", img.Stride, buf.Stride)
	}
	if &buf.Pix[0] != &img.Pix[0] {
		t.Error("Expected FromRGBA to share pixel storage, not copy")
	}
}

func TestFromImage_ConvertsNonRGBA(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 5, 5))
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			gray.Set(x, y, color.Gray{Y: 200})
		}
	}

	buf := FromImage(gray)
	if buf.Width != 5 || buf.Height != 5 {
		t.Fatalf("Expected 5x5 buffer, got %dx%d", buf.Width, buf.Height)
	}
	if buf.Pix[0] != 200 || buf.Pix[1] != 200 || buf.Pix[2] != 200 {
		t.Errorf("Expected gray pixel channels 200, got %d/%d/%d", buf.Pix[0], buf.Pix[1], buf.Pix[2])
	}
}

func TestFromImage_OffsetBoundsNormalized(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 14, 14))
	for y := 10; y < 14; y++ {
		for x := 10; x < 14; x++ {
			img.Set(x, y, color.RGBA{50, 60, 70, 255})
		}
	}

	buf := FromImage(img)
	if buf.Width != 4 || buf.Height != 4 {
		t.Fatalf("Expected 4x4 buffer, got %dx%d", buf.Width, buf.Height)
	}
	if buf.Pix[0] != 50 || buf.Pix[1] != 60 || buf.Pix[2] != 70 {
		t.Errorf("Expected first pixel 50/60/70, got %d/%d/%d", buf.Pix[0], buf.Pix[1], buf.Pix[2])
	}
}

func TestMustBeValid_NilBufferPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for nil buffer")
		}
	}()
	var buf *PixelBuffer
	buf.mustBeValid()
}
