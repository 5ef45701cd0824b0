package luminance

// Options fixes the engine's numeric constants at construction time. They are
// never mutated during the engine's lifetime.
type Options struct {
	// Rec. 709 luma weights. Green contributes most to perceived brightness,
	// red next, blue least.
	RedCoefficient   float64
	GreenCoefficient float64
	BlueCoefficient  float64

	// Cutoffs for the two percentage buckets. A pixel is very bright when its
	// luminance exceeds VeryBrightThreshold, bright when it exceeds
	// BrightThreshold.
	VeryBrightThreshold float64
	BrightThreshold     float64
}

// DefaultOptions returns the standard Rec. 709 weighting with the 0.9 / 0.7
// brightness cutoffs.
func DefaultOptions() Options {
	return Options{
		RedCoefficient:      0.2126,
		GreenCoefficient:    0.7152,
		BlueCoefficient:     0.0722,
		VeryBrightThreshold: 0.9,
		BrightThreshold:     0.7,
	}
}

// DefaultBrightAreaCutoff selects which percentage bucket HasBrightAreas
// consults. Strictly above it the very-bright bucket applies, at or below it
// the bright bucket does.
const DefaultBrightAreaCutoff = 0.85

// DefaultHistogramBins is the bin count used when callers have no opinion.
const DefaultHistogramBins = 256

// DefaultGridSize is the cell count per axis for spatial grid averages.
const DefaultGridSize = 3
