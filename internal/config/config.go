// Package config loads objectdeck configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Defaults used when the corresponding environment variable is unset.
const (
	DefaultAddr             = ":8080"
	DefaultModelPath        = "models/yolov8n.onnx"
	DefaultDeviceID         = 0
	DefaultConfidenceThresh = 0.5
	DefaultSampleInterval   = 5
	DefaultVideoStep        = time.Second / 30
)

// Config holds runtime configuration for the server and CLI tools.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// ModelPath is the path to the ONNX detection model.
	ModelPath string

	// DeviceID selects the capture device for the live pipeline.
	DeviceID int

	// ConfidenceThresh is the minimum detection confidence (0-1).
	ConfidenceThresh float64

	// SampleInterval is the stride in decoded frames at which batch
	// video processing re-invokes the detector.
	SampleInterval int

	// VideoStep is the playback-time increment per decoded video frame.
	VideoStep time.Duration

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// Debug enables verbose detector tracing.
	Debug bool
}

// Load reads configuration from the environment. A missing .env file is
// not an error; invalid values are.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Addr:             getEnv("ADDR", DefaultAddr),
		ModelPath:        getEnv("MODEL_PATH", DefaultModelPath),
		DeviceID:         DefaultDeviceID,
		ConfidenceThresh: DefaultConfidenceThresh,
		SampleInterval:   DefaultSampleInterval,
		VideoStep:        DefaultVideoStep,
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	if v := os.Getenv("DEVICE_ID"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid DEVICE_ID %q: %w", v, err)
		}
		cfg.DeviceID = id
	}

	if v := os.Getenv("CONFIDENCE_THRESH"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid CONFIDENCE_THRESH %q: %w", v, err)
		}
		if f < 0 || f > 1 {
			return nil, fmt.Errorf("config: CONFIDENCE_THRESH must be in [0,1], got %v", f)
		}
		cfg.ConfidenceThresh = f
	}

	if v := os.Getenv("SAMPLE_INTERVAL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid SAMPLE_INTERVAL %q: %w", v, err)
		}
		if n < 1 {
			return nil, fmt.Errorf("config: SAMPLE_INTERVAL must be >= 1, got %d", n)
		}
		cfg.SampleInterval = n
	}

	if v := os.Getenv("DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid DEBUG %q: %w", v, err)
		}
		cfg.Debug = b
	}

	if v := os.Getenv("VIDEO_STEP_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: invalid VIDEO_STEP_MS %q: %w", v, err)
		}
		if ms < 1 {
			return nil, fmt.Errorf("config: VIDEO_STEP_MS must be >= 1, got %d", ms)
		}
		cfg.VideoStep = time.Duration(ms) * time.Millisecond
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
