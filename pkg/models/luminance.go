package models

import "time"

// LuminanceStats is the wire shape of one brightness analysis. Average is
// omitted entirely when no pixels were analyzed; consumers must not read a
// missing average as 0, since 0 means "black", not "empty".
type LuminanceStats struct {
	Average            *float64 `json:"average,omitempty"`
	Minimum            float64  `json:"minimum"`
	Maximum            float64  `json:"maximum"`
	StandardDeviation  float64  `json:"standard_deviation"`
	PercentBright      float64  `json:"percent_bright"`
	PercentVeryBright  float64  `json:"percent_very_bright"`
	PixelCount         int      `json:"pixel_count"`
	AnalysisTimeMillis float64  `json:"analysis_time_ms"`
}

// RegionSpec selects a rectangular subset of an image for analysis.
type RegionSpec struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// AnalysisRequest is the body of the analyze endpoint.
type AnalysisRequest struct {
	URL           string      `json:"url" binding:"required"`
	Region        *RegionSpec `json:"region,omitempty"`
	GridSize      int         `json:"grid_size,omitempty"`
	HistogramBins int         `json:"histogram_bins,omitempty"`
}

// AnalysisResponse is returned by the analyze endpoint for a fetched image.
type AnalysisResponse struct {
	ImageURL         string         `json:"image_url"`
	Timestamp        time.Time      `json:"timestamp"`
	Stats            LuminanceStats `json:"stats"`
	SuggestedOpacity float64        `json:"suggested_opacity"`
	Grid             [][]float64    `json:"grid,omitempty"`
	Histogram        []int          `json:"histogram,omitempty"`
}

// DisplayStatus is the latest scan outcome for one display.
type DisplayStatus struct {
	Display   int            `json:"display"`
	Width     int            `json:"width"`
	Height    int            `json:"height"`
	ScannedAt time.Time      `json:"scanned_at"`
	Skipped   bool           `json:"skipped"`
	Stats     LuminanceStats `json:"stats"`
	Opacity   float64        `json:"opacity"`
}

// StatusResponse aggregates the scan state of all displays.
type StatusResponse struct {
	Scanning bool            `json:"scanning"`
	Displays []DisplayStatus `json:"displays"`
}

// ScanRecord is one persisted scan outcome.
type ScanRecord struct {
	Display           int       `json:"display"`
	ScannedAt         time.Time `json:"scanned_at"`
	Average           *float64  `json:"average,omitempty"`
	StandardDeviation float64   `json:"standard_deviation"`
	PercentBright     float64   `json:"percent_bright"`
	PercentVeryBright float64   `json:"percent_very_bright"`
	PixelCount        int       `json:"pixel_count"`
	Opacity           float64   `json:"opacity"`
}
