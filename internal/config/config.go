package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Scan interval bounds. The analysis pipeline is tuned for a near-real-time
// polling loop; anything outside this window is a misconfiguration.
const (
	MinScanInterval = 500 * time.Millisecond
	MaxScanInterval = 5 * time.Second
)

type Config struct {
	Host string
	Port string

	// Scan loop
	ScanInterval     time.Duration
	CaptureDownscale int
	HashMaxDistance  int

	// Dimming policy
	DimThreshold  float64
	DimMinOpacity float64
	DimMaxOpacity float64

	// HTTP API
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	MaxRequestBodySize int64

	// Optional collaborators, disabled when empty
	DatabaseURL           string
	AzureStorageAccount   string
	AzureStorageKey       string
	AzureStorageContainer string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// HistoryEnabled reports whether scan results should be written to Postgres.
func (c *Config) HistoryEnabled() bool {
	return c.DatabaseURL != ""
}

// ArchiveEnabled reports whether decision-changing frames should be uploaded
// to blob storage.
func (c *Config) ArchiveEnabled() bool {
	return c.AzureStorageAccount != "" && c.AzureStorageKey != "" && c.AzureStorageContainer != ""
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "127.0.0.1"),
		Port:               getEnvOrDefault("PORT", "8750"),
		ScanInterval:       parseDurationOrDefault("SCAN_INTERVAL", 2*time.Second),
		CaptureDownscale:   int(parseIntOrDefault("CAPTURE_DOWNSCALE", 2)),
		HashMaxDistance:    int(parseIntOrDefault("FRAME_HASH_MAX_DISTANCE", 2)),
		DimThreshold:       parseFloatOrDefault("DIM_THRESHOLD", 0.55),
		DimMinOpacity:      parseFloatOrDefault("DIM_MIN_OPACITY", 0.0),
		DimMaxOpacity:      parseFloatOrDefault("DIM_MAX_OPACITY", 0.6),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 10*1024*1024), // 10MB

		DatabaseURL:           os.Getenv("DATABASE_URL"),
		AzureStorageAccount:   os.Getenv("AZURE_STORAGE_ACCOUNT"),
		AzureStorageKey:       os.Getenv("AZURE_STORAGE_KEY"),
		AzureStorageContainer: os.Getenv("AZURE_STORAGE_CONTAINER"),
	}

	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.ScanInterval < MinScanInterval || cfg.ScanInterval > MaxScanInterval {
		return nil, fmt.Errorf("SCAN_INTERVAL must be between %s and %s (got %s)",
			MinScanInterval, MaxScanInterval, cfg.ScanInterval)
	}
	if cfg.CaptureDownscale < 1 || cfg.CaptureDownscale > 8 {
		return nil, fmt.Errorf("CAPTURE_DOWNSCALE must be between 1 and 8 (got %d)", cfg.CaptureDownscale)
	}
	if cfg.HashMaxDistance < 0 {
		return nil, fmt.Errorf("FRAME_HASH_MAX_DISTANCE must be >= 0 (got %d)", cfg.HashMaxDistance)
	}
	if cfg.DimThreshold < 0 || cfg.DimThreshold > 1 {
		return nil, fmt.Errorf("DIM_THRESHOLD must be in [0,1] (got %g)", cfg.DimThreshold)
	}
	if cfg.DimMinOpacity < 0 || cfg.DimMaxOpacity > 1 || cfg.DimMinOpacity > cfg.DimMaxOpacity {
		return nil, fmt.Errorf("dim opacity range [%g,%g] must satisfy 0 <= min <= max <= 1",
			cfg.DimMinOpacity, cfg.DimMaxOpacity)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout)
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
