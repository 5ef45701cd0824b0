package store

import (
	"testing"
	"time"

	"go-window-dimmer/pkg/models"
)

func validRecord() models.ScanRecord {
	avg := 0.42
	return models.ScanRecord{
		Display:           0,
		ScannedAt:         time.Now(),
		Average:           &avg,
		StandardDeviation: 0.1,
		PercentBright:     12.5,
		PercentVeryBright: 3.0,
		PixelCount:        518400,
		Opacity:           0.25,
	}
}

func TestValidateRecordAcceptsValid(t *testing.T) {
	if err := ValidateRecord(validRecord()); err != nil {
		t.Errorf("Expected valid record to pass, got %v", err)
	}
}

func TestValidateRecordAcceptsEmptyScan(t *testing.T) {
	rec := validRecord()
	rec.Average = nil
	rec.PixelCount = 0
	rec.Opacity = 0
	if err := ValidateRecord(rec); err != nil {
		t.Errorf("Expected empty scan record to pass, got %v", err)
	}
}

func TestValidateRecordRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*models.ScanRecord)
	}{
		{"negative display", func(r *models.ScanRecord) { r.Display = -1 }},
		{"zero timestamp", func(r *models.ScanRecord) { r.ScannedAt = time.Time{} }},
		{"negative pixel count", func(r *models.ScanRecord) { r.PixelCount = -1 }},
		{"average above one", func(r *models.ScanRecord) { v := 1.5; r.Average = &v }},
		{"negative average", func(r *models.ScanRecord) { v := -0.1; r.Average = &v }},
		{"missing average with pixels", func(r *models.ScanRecord) { r.Average = nil }},
		{"opacity above one", func(r *models.ScanRecord) { r.Opacity = 1.2 }},
		{"negative opacity", func(r *models.ScanRecord) { r.Opacity = -0.2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := validRecord()
			tt.mutate(&rec)
			if err := ValidateRecord(rec); err == nil {
				t.Error("Expected validation error, got nil")
			}
		})
	}
}

func TestNewClientRequiresConnectionString(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Error("Expected error for empty connection string")
	}
}
