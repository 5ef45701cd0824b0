package luminance

// Result summarizes the perceptual brightness of one analyzed region. It is
// produced fresh on every call and never mutated afterwards.
type Result struct {
	// Average is the mean luminance in [0,1]. It is nil only when zero
	// pixels were analyzed; callers must not read that as "dark", since 0
	// is a legitimate average for a black image.
	Average *float64 `json:"average,omitempty"`

	// Minimum and Maximum are in [0,1]; both 0 when no pixels were analyzed.
	Minimum float64 `json:"minimum"`
	Maximum float64 `json:"maximum"`

	// StandardDeviation is the population standard deviation of luminance.
	StandardDeviation float64 `json:"standard_deviation"`

	// PercentVeryBright and PercentBright are on a 0-100 scale, the share of
	// pixels with luminance above the very-bright and bright cutoffs. Every
	// very-bright pixel also counts as bright.
	PercentVeryBright float64 `json:"percent_very_bright"`
	PercentBright     float64 `json:"percent_bright"`

	// PixelCount is the number of pixels analyzed after clipping the region
	// to the buffer bounds.
	PixelCount int `json:"pixel_count"`

	// AnalysisTimeMillis is informational wall-clock time; it feeds no
	// decision logic.
	AnalysisTimeMillis float64 `json:"analysis_time_ms"`
}

// HasPixels reports whether any pixels were analyzed.
func (r Result) HasPixels() bool {
	return r.PixelCount > 0
}

// AverageOrZero returns the average luminance, or 0 when no pixels were
// analyzed. Decision code that must distinguish "empty" from "black" should
// check Average directly.
func (r Result) AverageOrZero() float64 {
	if r.Average == nil {
		return 0
	}
	return *r.Average
}
