// Package service implements on-demand image analysis for the HTTP API. It
// fetches an image, runs it through the brightness engine, and reports the
// opacity the dimming policy would pick for it.
package service

import (
	"context"
	"time"

	"go-window-dimmer/internal/dimmer"
	apperrors "go-window-dimmer/internal/errors"
	"go-window-dimmer/internal/luminance"
	"go-window-dimmer/internal/storage"
	"go-window-dimmer/pkg/models"
	"go-window-dimmer/pkg/validation"
)

const (
	maxGridSize      = 64
	maxHistogramBins = 4096
)

// AnalysisService analyzes remote images with the same engine the scan loop
// uses for captured frames.
type AnalysisService interface {
	AnalyzeImage(ctx context.Context, request models.AnalysisRequest) (*models.AnalysisResponse, error)
	ValidateImageURL(imageURL string) error
}

type analysisService struct {
	fetcher   storage.ImageFetcher
	engine    *luminance.Engine
	policy    dimmer.Policy
	validator *validation.URLValidator
}

// NewAnalysisService creates an analysis service.
func NewAnalysisService(fetcher storage.ImageFetcher, engine *luminance.Engine, policy dimmer.Policy) AnalysisService {
	return &analysisService{
		fetcher:   fetcher,
		engine:    engine,
		policy:    policy,
		validator: validation.NewURLValidator(),
	}
}

// AnalyzeImage fetches the requested image and returns its brightness
// statistics plus the opacity the dimming policy suggests for it. Grid and
// histogram breakdowns are included only when the request asks for them.
func (s *analysisService) AnalyzeImage(ctx context.Context, request models.AnalysisRequest) (*models.AnalysisResponse, error) {
	if err := s.ValidateImageURL(request.URL); err != nil {
		return nil, err
	}
	if request.GridSize < 0 || request.GridSize > maxGridSize {
		return nil, apperrors.NewValidationError("grid_size out of range", nil)
	}
	if request.HistogramBins < 0 || request.HistogramBins > maxHistogramBins {
		return nil, apperrors.NewValidationError("histogram_bins out of range", nil)
	}

	img, err := s.fetcher.FetchImage(ctx, request.URL)
	if err != nil {
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	buf := luminance.FromImage(img)

	var result luminance.Result
	if request.Region != nil {
		region := luminance.Region{
			X:      request.Region.X,
			Y:      request.Region.Y,
			Width:  request.Region.Width,
			Height: request.Region.Height,
		}
		result = s.engine.AnalyzeRegion(buf, region)
	} else {
		result = s.engine.Analyze(buf)
	}

	response := &models.AnalysisResponse{
		ImageURL:         request.URL,
		Timestamp:        time.Now().UTC(),
		Stats:            statsFrom(result),
		SuggestedOpacity: s.policy.Opacity(result),
	}

	// Grid and histogram always cover the full image; a region restricts
	// only the headline statistics.
	if request.GridSize > 0 {
		response.Grid = s.engine.Grid(buf, request.GridSize)
	}
	if request.HistogramBins > 0 {
		response.Histogram = s.engine.Histogram(buf, request.HistogramBins)
	}

	return response, nil
}

// ValidateImageURL checks a URL without fetching it.
func (s *analysisService) ValidateImageURL(imageURL string) error {
	return s.validator.ValidateImageURL(imageURL)
}

func statsFrom(result luminance.Result) models.LuminanceStats {
	return models.LuminanceStats{
		Average:            result.Average,
		Minimum:            result.Minimum,
		Maximum:            result.Maximum,
		StandardDeviation:  result.StandardDeviation,
		PercentBright:      result.PercentBright,
		PercentVeryBright:  result.PercentVeryBright,
		PixelCount:         result.PixelCount,
		AnalysisTimeMillis: result.AnalysisTimeMillis,
	}
}
