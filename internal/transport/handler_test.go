package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"go-window-dimmer/internal/capture"
	"go-window-dimmer/internal/config"
	"go-window-dimmer/internal/dimmer"
	"go-window-dimmer/internal/luminance"
	"go-window-dimmer/internal/observer"
	"go-window-dimmer/internal/scanner"
	"go-window-dimmer/internal/service"
	"go-window-dimmer/pkg/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type noDisplayCapturer struct{}

func (noDisplayCapturer) NumDisplays() int { return 0 }
func (noDisplayCapturer) Capture(display int) (*capture.Frame, error) {
	return nil, fmt.Errorf("no displays")
}

type fixedFetcher struct {
	img image.Image
	err error
}

func (f *fixedFetcher) FetchImage(ctx context.Context, imageURL string) (image.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.img, nil
}

func whiteImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func newTestHandler(t *testing.T, fetcher *fixedFetcher) (http.Handler, *observer.MetricsObserver) {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 1 << 20,
	}
	engine := luminance.NewEngine()
	policy := dimmer.DefaultPolicy()
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(metrics)

	scan := scanner.New(noDisplayCapturer{}, engine, policy,
		scanner.NewChangeDetector(2), publisher, time.Second)
	svc := service.NewAnalysisService(fetcher, engine, policy)

	return NewHandler(scan, svc, metrics, cfg), metrics
}

func TestHealthEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(2, 2)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode health response: %v", err)
	}
	if body["status"] != "available" {
		t.Errorf("Expected status available, got %v", body["status"])
	}
}

func TestStatusEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(2, 2)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/status", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body models.StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode status response: %v", err)
	}
	if body.Scanning {
		t.Error("Expected scanning to be false before Run")
	}
	if len(body.Displays) != 0 {
		t.Errorf("Expected no displays, got %d", len(body.Displays))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(2, 2)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode metrics response: %v", err)
	}
	if _, ok := body["total_scans"]; !ok {
		t.Error("Expected total_scans in metrics")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(8, 8)})

	payload := `{"url": "http://example.com/frame.png", "histogram_bins": 4}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var body models.AnalysisResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode analysis response: %v", err)
	}
	if body.Stats.Average == nil || *body.Stats.Average < 0.99 {
		t.Errorf("Expected white image average near 1, got %v", body.Stats.Average)
	}
	if len(body.Histogram) != 4 {
		t.Errorf("Expected 4 histogram bins, got %d", len(body.Histogram))
	}
	if body.SuggestedOpacity <= 0 {
		t.Errorf("Expected positive suggested opacity, got %f", body.SuggestedOpacity)
	}
}

func TestAnalyzeEndpointMissingURL(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(2, 2)})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing url, got %d", rec.Code)
	}
}

func TestAnalyzeEndpointInvalidURL(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{img: whiteImage(2, 2)})

	payload := `{"url": "ftp://example.com/frame.png"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for disallowed scheme, got %d", rec.Code)
	}
}

func TestAnalyzeEndpointFetchFailure(t *testing.T) {
	handler, _ := newTestHandler(t, &fixedFetcher{err: fmt.Errorf("connection refused")})

	payload := `{"url": "http://example.com/frame.png"}`
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for fetch failure, got %d", rec.Code)
	}
}

func TestRequestSizeLimit(t *testing.T) {
	cfg := &config.Config{
		RequestTimeout:     5 * time.Second,
		MaxRequestBodySize: 64,
	}
	engine := luminance.NewEngine()
	policy := dimmer.DefaultPolicy()
	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	scan := scanner.New(noDisplayCapturer{}, engine, policy,
		scanner.NewChangeDetector(2), publisher, time.Second)
	svc := service.NewAnalysisService(&fixedFetcher{img: whiteImage(2, 2)}, engine, policy)
	handler := NewHandler(scan, svc, metrics, cfg)

	big := bytes.Repeat([]byte("x"), 1024)
	payload := fmt.Sprintf(`{"url": "http://example.com/%s"}`, big)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/analyze", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for oversized body, got %d", rec.Code)
	}
}
