// Package dimmer maps brightness statistics to overlay opacity. The mapping
// is policy, deliberately separated from the numeric engine: the engine
// reports what a region looks like, this package decides what to do about it.
package dimmer

import (
	"go-window-dimmer/internal/luminance"
)

// Policy converts an analysis result into the opacity of a dimming overlay.
// Opacity 0 means no dimming at all.
type Policy struct {
	// Threshold is the average luminance at which dimming begins. Content
	// darker than this is left alone.
	Threshold float64

	// MinOpacity and MaxOpacity bound the output. The ramp runs linearly
	// from MinOpacity at Threshold to MaxOpacity at full white.
	MinOpacity float64
	MaxOpacity float64

	// VeryBrightBoostPercent adds an extra dimming step when more than this
	// share of pixels (0-100) exceeds the very-bright cutoff, so a mostly
	// dark window with a large white pane still gets taken down.
	VeryBrightBoostPercent float64
}

// DefaultPolicy returns a ramp that starts dimming above mid-gray and never
// exceeds 60% opacity.
func DefaultPolicy() Policy {
	return Policy{
		Threshold:              0.55,
		MinOpacity:             0.0,
		MaxOpacity:             0.6,
		VeryBrightBoostPercent: 30,
	}
}

// NewPolicy builds a policy with an explicit ramp and the default boost.
func NewPolicy(threshold, minOpacity, maxOpacity float64) Policy {
	p := DefaultPolicy()
	p.Threshold = threshold
	p.MinOpacity = minOpacity
	p.MaxOpacity = maxOpacity
	return p
}

// Opacity returns the overlay opacity for one analysis result. A result with
// no pixels never dims: an empty capture says nothing about brightness.
func (p Policy) Opacity(res luminance.Result) float64 {
	if res.Average == nil {
		return 0
	}
	avg := *res.Average
	if avg <= p.Threshold {
		return 0
	}

	span := 1 - p.Threshold
	t := (avg - p.Threshold) / span
	opacity := p.MinOpacity + t*(p.MaxOpacity-p.MinOpacity)

	if res.PercentVeryBright > p.VeryBrightBoostPercent {
		opacity += 0.1 * (p.MaxOpacity - p.MinOpacity)
	}

	if opacity > p.MaxOpacity {
		opacity = p.MaxOpacity
	}
	if opacity < p.MinOpacity {
		opacity = p.MinOpacity
	}
	return opacity
}
