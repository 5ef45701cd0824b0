// Package scanner drives the periodic capture-analyze-decide loop across all
// active displays.
package scanner

import (
	"context"
	"fmt"
	"image"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-window-dimmer/internal/capture"
	"go-window-dimmer/internal/dimmer"
	"go-window-dimmer/internal/logger"
	"go-window-dimmer/internal/luminance"
	"go-window-dimmer/internal/observer"
	"go-window-dimmer/pkg/models"
)

// HistoryRecorder persists scan outcomes. Implementations must tolerate being
// called from multiple worker goroutines.
type HistoryRecorder interface {
	RecordScan(ctx context.Context, record models.ScanRecord) error
}

// FrameArchiver uploads frames that moved the dimming decision, for offline
// inspection of the pipeline.
type FrameArchiver interface {
	ArchiveFrame(ctx context.Context, name string, img image.Image) error
}

// opacityEpsilon is the smallest opacity move treated as a real change.
const opacityEpsilon = 0.01

// Scanner owns the scan loop: capture each display, skip unchanged frames,
// analyze the rest, and track the per-display dimming decision.
type Scanner struct {
	capturer  capture.Capturer
	engine    *luminance.Engine
	policy    dimmer.Policy
	detector  *ChangeDetector
	publisher observer.Subject
	history   HistoryRecorder // nil disables persistence
	archiver  FrameArchiver   // nil disables archiving
	interval  time.Duration
	pool      *WorkerPool

	mu      sync.RWMutex
	running bool
	states  map[int]models.DisplayStatus
}

// Option configures a Scanner beyond its required collaborators.
type Option func(*Scanner)

// WithHistory attaches a scan-history recorder.
func WithHistory(h HistoryRecorder) Option {
	return func(s *Scanner) { s.history = h }
}

// WithArchiver attaches a frame archiver.
func WithArchiver(a FrameArchiver) Option {
	return func(s *Scanner) { s.archiver = a }
}

// New creates a scanner. interval is the tick period; the detector decides
// which ticks actually re-analyze.
func New(capturer capture.Capturer, engine *luminance.Engine, policy dimmer.Policy,
	detector *ChangeDetector, publisher observer.Subject, interval time.Duration, opts ...Option) *Scanner {

	s := &Scanner{
		capturer:  capturer,
		engine:    engine,
		policy:    policy,
		detector:  detector,
		publisher: publisher,
		interval:  interval,
		pool:      NewWorkerPool(0),
		states:    make(map[int]models.DisplayStatus),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the scan loop until the context is cancelled. In-flight
// display scans on cancellation are allowed to finish; there is no abort
// protocol below the tick level.
func (s *Scanner) Run(ctx context.Context) {
	s.pool.Start()
	s.setRunning(true)
	defer s.setRunning(false)

	logger.WithFields(logrus.Fields{
		"interval": s.interval,
		"displays": s.capturer.NumDisplays(),
	}).Info("Starting scan loop")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.scanTick(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("Scan loop stopped")
			return
		case <-ticker.C:
			s.scanTick(ctx)
		}
	}
}

// scanTick scans every active display once, in parallel, and waits for all of
// them before returning.
func (s *Scanner) scanTick(ctx context.Context) {
	n := s.capturer.NumDisplays()
	for display := 0; display < n; display++ {
		display := display
		s.pool.Submit(func() {
			s.scanDisplay(ctx, display)
		})
	}
	s.pool.Wait()
}

func (s *Scanner) scanDisplay(ctx context.Context, display int) {
	start := time.Now()
	s.publish(ctx, observer.ScanEvent{
		EventType: observer.ScanStarted,
		Timestamp: start,
		Display:   display,
	})

	frame, err := s.capturer.Capture(display)
	if err != nil {
		logger.WithError(err).WithField("display", display).Error("Display capture failed")
		s.publish(ctx, observer.ScanEvent{
			EventType:    observer.ScanFailed,
			Timestamp:    time.Now(),
			Display:      display,
			ScanTime:     time.Since(start),
			ErrorMessage: err.Error(),
		})
		return
	}

	if !s.detector.Changed(display, frame.Image) {
		s.markSkipped(display)
		s.publish(ctx, observer.ScanEvent{
			EventType: observer.FrameSkipped,
			Timestamp: time.Now(),
			Display:   display,
			ScanTime:  time.Since(start),
		})
		return
	}

	result := s.engine.Analyze(frame.Buffer)
	opacity := s.policy.Opacity(result)
	prevOpacity, hadPrev := s.lastOpacity(display)
	opacityMoved := !hadPrev || math.Abs(opacity-prevOpacity) > opacityEpsilon

	s.setState(display, frame, result, opacity)

	if opacityMoved {
		s.publish(ctx, observer.ScanEvent{
			EventType: observer.OpacityChanged,
			Timestamp: time.Now(),
			Display:   display,
			Average:   result.Average,
			Opacity:   opacity,
		})
		s.archive(ctx, display, frame)
	}

	s.record(ctx, display, result, opacity)

	s.publish(ctx, observer.ScanEvent{
		EventType: observer.ScanCompleted,
		Timestamp: time.Now(),
		Display:   display,
		ScanTime:  time.Since(start),
		Average:   result.Average,
		Opacity:   opacity,
	})
}

func (s *Scanner) archive(ctx context.Context, display int, frame *capture.Frame) {
	if s.archiver == nil {
		return
	}
	name := fmt.Sprintf("display-%d/%s.png", display, time.Now().UTC().Format("20060102T150405.000"))
	if err := s.archiver.ArchiveFrame(ctx, name, frame.Image); err != nil {
		logger.WithError(err).WithField("display", display).Warn("Frame archive failed")
	}
}

func (s *Scanner) record(ctx context.Context, display int, result luminance.Result, opacity float64) {
	if s.history == nil {
		return
	}
	rec := models.ScanRecord{
		Display:           display,
		ScannedAt:         time.Now().UTC(),
		Average:           result.Average,
		StandardDeviation: result.StandardDeviation,
		PercentBright:     result.PercentBright,
		PercentVeryBright: result.PercentVeryBright,
		PixelCount:        result.PixelCount,
		Opacity:           opacity,
	}
	if err := s.history.RecordScan(ctx, rec); err != nil {
		logger.WithError(err).WithField("display", display).Warn("Scan history insert failed")
	}
}

// Status returns a snapshot of the latest per-display scan state.
func (s *Scanner) Status() models.StatusResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()

	displays := make([]models.DisplayStatus, 0, len(s.states))
	for _, st := range s.states {
		displays = append(displays, st)
	}
	sort.Slice(displays, func(i, j int) bool {
		return displays[i].Display < displays[j].Display
	})
	return models.StatusResponse{Scanning: s.running, Displays: displays}
}

// Opacity returns the current dimming opacity for a display, 0 when the
// display has never been scanned.
func (s *Scanner) Opacity(display int) float64 {
	op, _ := s.lastOpacity(display)
	return op
}

func (s *Scanner) publish(ctx context.Context, event observer.ScanEvent) {
	if s.publisher != nil {
		s.publisher.NotifyObservers(ctx, event)
	}
}

func (s *Scanner) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

func (s *Scanner) lastOpacity(display int) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[display]
	return st.Opacity, ok
}

func (s *Scanner) markSkipped(display int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[display]
	st.Display = display
	st.ScannedAt = time.Now()
	st.Skipped = true
	s.states[display] = st
}

func (s *Scanner) setState(display int, frame *capture.Frame, result luminance.Result, opacity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[display] = models.DisplayStatus{
		Display:   display,
		Width:     frame.Bounds.Dx(),
		Height:    frame.Bounds.Dy(),
		ScannedAt: time.Now(),
		Skipped:   false,
		Stats:     statsFrom(result),
		Opacity:   opacity,
	}
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
