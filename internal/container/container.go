// Package container wires the application dependency graph.
package container

import (
	"fmt"
	"net/http"

	"go-window-dimmer/internal/capture"
	"go-window-dimmer/internal/config"
	"go-window-dimmer/internal/dimmer"
	"go-window-dimmer/internal/logger"
	"go-window-dimmer/internal/luminance"
	"go-window-dimmer/internal/observer"
	"go-window-dimmer/internal/scanner"
	"go-window-dimmer/internal/service"
	"go-window-dimmer/internal/storage"
	"go-window-dimmer/internal/store"
	"go-window-dimmer/internal/transport"
)

// Container holds all application dependencies.
type Container struct {
	config    *config.Config
	engine    *luminance.Engine
	capturer  capture.Capturer
	publisher *observer.EventPublisher
	metrics   *observer.MetricsObserver
	history   *store.Client
	scanner   *scanner.Scanner
	handler   http.Handler
}

// NewContainer builds the dependency graph from configuration. The history
// store and frame archiver are attached only when configured.
func NewContainer(cfg *config.Config) (*Container, error) {
	engine := luminance.NewEngine()
	policy := dimmer.NewPolicy(cfg.DimThreshold, cfg.DimMinOpacity, cfg.DimMaxOpacity)
	capturer := capture.NewScreenCapturer(cfg.CaptureDownscale)
	detector := scanner.NewChangeDetector(cfg.HashMaxDistance)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	var opts []scanner.Option
	var history *store.Client

	if cfg.HistoryEnabled() {
		client, err := store.NewClient(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connecting to history store: %w", err)
		}
		history = client
		opts = append(opts, scanner.WithHistory(client))
		logger.Info("Scan history store enabled")
	}

	if cfg.ArchiveEnabled() {
		archiver, err := storage.NewAzureFrameArchiver(
			cfg.AzureStorageAccount, cfg.AzureStorageKey, cfg.AzureStorageContainer)
		if err != nil {
			if history != nil {
				history.Close()
			}
			return nil, fmt.Errorf("building frame archiver: %w", err)
		}
		opts = append(opts, scanner.WithArchiver(archiver))
		logger.Info("Frame archiving enabled")
	}

	scan := scanner.New(capturer, engine, policy, detector, publisher, cfg.ScanInterval, opts...)

	fetcher := storage.NewHTTPImageFetcher(cfg.ImageFetchTimeout)
	svc := service.NewAnalysisService(fetcher, engine, policy)
	handler := transport.NewHandler(scan, svc, metrics, cfg)

	return &Container{
		config:    cfg,
		engine:    engine,
		capturer:  capturer,
		publisher: publisher,
		metrics:   metrics,
		history:   history,
		scanner:   scan,
		handler:   handler,
	}, nil
}

// Handler returns the HTTP handler.
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Scanner returns the display scan loop.
func (c *Container) Scanner() *scanner.Scanner {
	return c.scanner
}

// Config returns the configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Close releases held resources.
func (c *Container) Close() error {
	if c.history != nil {
		return c.history.Close()
	}
	return nil
}
