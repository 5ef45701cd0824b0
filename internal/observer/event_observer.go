package observer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ScanEvent represents one event in the scan pipeline
type ScanEvent struct {
	EventType    EventType     `json:"event_type"`
	Timestamp    time.Time     `json:"timestamp"`
	Display      int           `json:"display"`
	ScanTime     time.Duration `json:"scan_time"`
	Average      *float64      `json:"average,omitempty"`
	Opacity      float64       `json:"opacity"`
	Success      bool          `json:"success"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

// EventType represents the type of scan event
type EventType string

const (
	// ScanStarted when a scan tick begins
	ScanStarted EventType = "scan_started"
	// ScanCompleted when a display was captured and analyzed
	ScanCompleted EventType = "scan_completed"
	// ScanFailed when capture or analysis failed
	ScanFailed EventType = "scan_failed"
	// FrameSkipped when change detection found the frame unchanged
	FrameSkipped EventType = "frame_skipped"
	// OpacityChanged when the dimming decision moved for a display
	OpacityChanged EventType = "opacity_changed"
)

// Observer defines the interface for event observers
type Observer interface {
	OnEvent(ctx context.Context, event ScanEvent)
	GetObserverName() string
}

// Subject defines the interface for event publishers
type Subject interface {
	Subscribe(observer Observer)
	Unsubscribe(observer Observer)
	NotifyObservers(ctx context.Context, event ScanEvent)
}

// LoggingObserver logs scan events
type LoggingObserver struct {
	logger *logrus.Logger
}

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver(logger *logrus.Logger) Observer {
	return &LoggingObserver{logger: logger}
}

// OnEvent handles scan events by logging them
func (o *LoggingObserver) OnEvent(ctx context.Context, event ScanEvent) {
	fields := logrus.Fields{
		"event_type": event.EventType,
		"display":    event.Display,
		"scan_time":  event.ScanTime,
		"opacity":    event.Opacity,
	}
	if event.Average != nil {
		fields["average"] = *event.Average
	}
	if event.ErrorMessage != "" {
		fields["error"] = event.ErrorMessage
	}

	switch event.EventType {
	case ScanStarted:
		o.logger.WithFields(fields).Debug("Scan tick started")
	case ScanCompleted:
		o.logger.WithFields(fields).Debug("Display scan completed")
	case ScanFailed:
		o.logger.WithFields(fields).Error("Display scan failed")
	case FrameSkipped:
		o.logger.WithFields(fields).Debug("Frame unchanged, analysis skipped")
	case OpacityChanged:
		o.logger.WithFields(fields).Info("Dimming opacity changed")
	default:
		o.logger.WithFields(fields).Info("Scan event occurred")
	}
}

// GetObserverName returns the observer name
func (o *LoggingObserver) GetObserverName() string {
	return "logging_observer"
}

// MetricsObserver collects counters from scan events
type MetricsObserver struct {
	mu             sync.RWMutex
	totalScans     int64
	completedScans int64
	failedScans    int64
	skippedFrames  int64
	opacityChanges int64
	totalScanTime  time.Duration
}

// NewMetricsObserver creates a new metrics observer
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent handles scan events by updating counters
func (o *MetricsObserver) OnEvent(ctx context.Context, event ScanEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.EventType {
	case ScanStarted:
		o.totalScans++
	case ScanCompleted:
		o.completedScans++
		o.totalScanTime += event.ScanTime
	case ScanFailed:
		o.failedScans++
	case FrameSkipped:
		o.skippedFrames++
	case OpacityChanged:
		o.opacityChanges++
	}
}

// GetObserverName returns the observer name
func (o *MetricsObserver) GetObserverName() string {
	return "metrics_observer"
}

// GetMetrics returns current counters
func (o *MetricsObserver) GetMetrics() map[string]interface{} {
	o.mu.RLock()
	defer o.mu.RUnlock()

	avgScanTime := time.Duration(0)
	if o.completedScans > 0 {
		avgScanTime = o.totalScanTime / time.Duration(o.completedScans)
	}

	return map[string]interface{}{
		"total_scans":     o.totalScans,
		"completed_scans": o.completedScans,
		"failed_scans":    o.failedScans,
		"skipped_frames":  o.skippedFrames,
		"opacity_changes": o.opacityChanges,
		"total_scan_time": o.totalScanTime.String(),
		"avg_scan_time":   avgScanTime.String(),
	}
}

// EventPublisher implements the Subject interface
type EventPublisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher() *EventPublisher {
	return &EventPublisher{observers: make([]Observer, 0)}
}

// Subscribe adds an observer
func (p *EventPublisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Unsubscribe removes an observer
func (p *EventPublisher) Unsubscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, obs := range p.observers {
		if obs.GetObserverName() == observer.GetObserverName() {
			p.observers = append(p.observers[:i], p.observers[i+1:]...)
			break
		}
	}
}

// NotifyObservers notifies all observers of an event
func (p *EventPublisher) NotifyObservers(ctx context.Context, event ScanEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		go func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logrus.WithField("observer", obs.GetObserverName()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
