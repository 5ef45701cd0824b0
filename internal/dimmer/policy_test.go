package dimmer

import (
	"math"
	"testing"

	"go-window-dimmer/internal/luminance"
)

func resultWithAverage(avg float64) luminance.Result {
	return luminance.Result{Average: &avg, PixelCount: 100}
}

func TestOpacity_EmptyResultNeverDims(t *testing.T) {
	p := DefaultPolicy()
	if got := p.Opacity(luminance.Result{}); got != 0 {
		t.Errorf("Expected zero opacity for empty result, got %f", got)
	}
}

func TestOpacity_DarkContentNotDimmed(t *testing.T) {
	p := DefaultPolicy()

	for _, avg := range []float64{0, 0.2, p.Threshold} {
		if got := p.Opacity(resultWithAverage(avg)); got != 0 {
			t.Errorf("Expected no dimming at average %f, got opacity %f", avg, got)
		}
	}
}

func TestOpacity_BlackIsNotEmpty(t *testing.T) {
	// An all-black result carries Average = 0, which must behave like dark
	// content, identically to but distinct in kind from the nil-average case.
	p := DefaultPolicy()
	if got := p.Opacity(resultWithAverage(0)); got != 0 {
		t.Errorf("Expected zero opacity for black content, got %f", got)
	}
}

func TestOpacity_RampIsMonotonic(t *testing.T) {
	p := NewPolicy(0.5, 0.1, 0.8)

	prev := -1.0
	for avg := 0.5; avg <= 1.0; avg += 0.05 {
		got := p.Opacity(resultWithAverage(avg))
		if got < prev {
			t.Fatalf("Opacity decreased from %f to %f at average %f", prev, got, avg)
		}
		prev = got
	}
}

func TestOpacity_FullWhiteHitsMax(t *testing.T) {
	p := NewPolicy(0.5, 0.0, 0.6)
	got := p.Opacity(resultWithAverage(1.0))
	if math.Abs(got-0.6) > 1e-9 {
		t.Errorf("Expected max opacity 0.6 at full white, got %f", got)
	}
}

func TestOpacity_NeverExceedsBounds(t *testing.T) {
	p := NewPolicy(0.3, 0.2, 0.5)

	for avg := 0.0; avg <= 1.0; avg += 0.01 {
		res := resultWithAverage(avg)
		res.PercentVeryBright = 100 // always boosted
		got := p.Opacity(res)
		if got != 0 && (got < p.MinOpacity || got > p.MaxOpacity) {
			t.Fatalf("Opacity %f outside [%f,%f] at average %f", got, p.MinOpacity, p.MaxOpacity, avg)
		}
	}
}

func TestOpacity_VeryBrightBoost(t *testing.T) {
	p := NewPolicy(0.5, 0.0, 0.8)

	plain := resultWithAverage(0.6)
	boosted := resultWithAverage(0.6)
	boosted.PercentVeryBright = p.VeryBrightBoostPercent + 1

	if p.Opacity(boosted) <= p.Opacity(plain) {
		t.Error("Expected very-bright content to dim harder than plain content")
	}
}
