package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	if cfg.Addr != DefaultAddr {
		t.Errorf("Addr: got %q, want %q", cfg.Addr, DefaultAddr)
	}
	if cfg.SampleInterval != DefaultSampleInterval {
		t.Errorf("SampleInterval: got %d, want %d", cfg.SampleInterval, DefaultSampleInterval)
	}
	if cfg.VideoStep != DefaultVideoStep {
		t.Errorf("VideoStep: got %v, want %v", cfg.VideoStep, DefaultVideoStep)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ADDR", ":9999")
	t.Setenv("DEVICE_ID", "2")
	t.Setenv("CONFIDENCE_THRESH", "0.75")
	t.Setenv("SAMPLE_INTERVAL", "10")
	t.Setenv("VIDEO_STEP_MS", "100")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}

	if cfg.Addr != ":9999" {
		t.Errorf("Addr: got %q, want %q", cfg.Addr, ":9999")
	}
	if cfg.DeviceID != 2 {
		t.Errorf("DeviceID: got %d, want 2", cfg.DeviceID)
	}
	if cfg.ConfidenceThresh != 0.75 {
		t.Errorf("ConfidenceThresh: got %v, want 0.75", cfg.ConfidenceThresh)
	}
	if cfg.SampleInterval != 10 {
		t.Errorf("SampleInterval: got %d, want 10", cfg.SampleInterval)
	}
	if cfg.VideoStep != 100*time.Millisecond {
		t.Errorf("VideoStep: got %v, want 100ms", cfg.VideoStep)
	}
	if !cfg.Debug {
		t.Error("Debug: got false, want true")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "non-numeric device", key: "DEVICE_ID", value: "cam0"},
		{name: "confidence out of range", key: "CONFIDENCE_THRESH", value: "1.5"},
		{name: "zero sample interval", key: "SAMPLE_INTERVAL", value: "0"},
		{name: "negative video step", key: "VIDEO_STEP_MS", value: "-5"},
		{name: "non-boolean debug", key: "DEBUG", value: "maybe"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(tc.key, tc.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load: expected error for %s=%s", tc.key, tc.value)
			}
		})
	}
}
