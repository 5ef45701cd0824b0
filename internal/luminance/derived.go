package luminance

// AverageLuminance returns the mean luminance of the whole buffer, or nil
// when the buffer holds no pixels.
func (e *Engine) AverageLuminance(buf *PixelBuffer) *float64 {
	return e.Analyze(buf).Average
}

// AverageLuminanceRegion returns the mean luminance of a sub-rectangle, or
// nil when the clipped region holds no pixels.
func (e *Engine) AverageLuminanceRegion(buf *PixelBuffer, region Region) *float64 {
	return e.AnalyzeRegion(buf, region).Average
}

// IsBrighterThan reports whether the buffer's average luminance strictly
// exceeds threshold. An empty buffer is never brighter than anything, so a
// caller driving a dimmer will never dim on empty input.
func (e *Engine) IsBrighterThan(buf *PixelBuffer, threshold float64) bool {
	avg := e.AverageLuminance(buf)
	return avg != nil && *avg > threshold
}

// HasBrightAreas reports whether more than minPercent of the buffer's pixels
// exceed the default bright-area cutoff. minPercent is on the 0-100 scale.
func (e *Engine) HasBrightAreas(buf *PixelBuffer, minPercent float64) bool {
	return e.HasBrightAreasAbove(buf, minPercent, DefaultBrightAreaCutoff)
}

// HasBrightAreasAbove compares the share of pixels brighter than the given
// brightness against minPercent. The engine tracks two fixed buckets rather
// than arbitrary cutoffs: strictly above 0.85 the very-bright bucket (> 0.9)
// answers, at or below it the bright bucket (> 0.7) does. The flip at 0.85
// is discrete; callers asking about 0.84 and 0.86 consult different buckets.
func (e *Engine) HasBrightAreasAbove(buf *PixelBuffer, minPercent, brightness float64) bool {
	res := e.Analyze(buf)
	if brightness > DefaultBrightAreaCutoff {
		return res.PercentVeryBright > minPercent
	}
	return res.PercentBright > minPercent
}
