package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings holds the user-tunable parts of the configuration. Anything not
// present in the YAML file keeps the value from Default.
type Settings struct {
	Waveform WaveformSettings `yaml:"waveform"`
	Player   PlayerSettings   `yaml:"player"`
	Logging  LoggingSettings  `yaml:"logging"`
	Metrics  MetricsSettings  `yaml:"metrics"`
}

// WaveformSettings controls extraction
type WaveformSettings struct {
	Bars             int `yaml:"bars"`
	ChunkFrames      int `yaml:"chunk_frames"`
	DequeueTimeoutMs int `yaml:"dequeue_timeout_ms"`
}

// PlayerSettings controls the transport
type PlayerSettings struct {
	PollIntervalMs int `yaml:"poll_interval_ms"`
	SkipSeconds    int `yaml:"skip_seconds"`
	SampleRate     int `yaml:"sample_rate"`
}

// LoggingSettings controls the slog handler
type LoggingSettings struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsSettings controls the Prometheus endpoint. An empty address disables it.
type MetricsSettings struct {
	Address string `yaml:"address"`
}

// Default returns the built-in settings
func Default() *Settings {
	return &Settings{
		Waveform: WaveformSettings{
			Bars:             NumBars,
			ChunkFrames:      ChunkFrames,
			DequeueTimeoutMs: int(DequeueTimeout / time.Millisecond),
		},
		Player: PlayerSettings{
			PollIntervalMs: int(PollInterval / time.Millisecond),
			SkipSeconds:    SkipSeconds,
			SampleRate:     SpeakerSampleRate,
		},
		Logging: LoggingSettings{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads a YAML settings file on top of Default
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	settings := Default()
	if err := yaml.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return settings, nil
}

// Validate checks every section
func (s *Settings) Validate() error {
	if err := s.Waveform.Validate(); err != nil {
		return fmt.Errorf("waveform config: %w", err)
	}
	if err := s.Player.Validate(); err != nil {
		return fmt.Errorf("player config: %w", err)
	}
	if err := s.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate validates waveform settings
func (w *WaveformSettings) Validate() error {
	if w.Bars < 1 {
		return fmt.Errorf("bars must be at least 1, got %d", w.Bars)
	}
	if w.ChunkFrames < 1 {
		return fmt.Errorf("chunk_frames must be at least 1, got %d", w.ChunkFrames)
	}
	if w.DequeueTimeoutMs < 1 {
		return fmt.Errorf("dequeue_timeout_ms must be at least 1, got %d", w.DequeueTimeoutMs)
	}
	return nil
}

// DequeueTimeout returns the dequeue bound as a duration
func (w *WaveformSettings) DequeueTimeout() time.Duration {
	return time.Duration(w.DequeueTimeoutMs) * time.Millisecond
}

// Validate validates player settings
func (p *PlayerSettings) Validate() error {
	if p.PollIntervalMs < 10 {
		return fmt.Errorf("poll_interval_ms must be at least 10, got %d", p.PollIntervalMs)
	}
	if p.SkipSeconds < 1 {
		return fmt.Errorf("skip_seconds must be at least 1, got %d", p.SkipSeconds)
	}
	if p.SampleRate < 8000 || p.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", p.SampleRate)
	}
	return nil
}

// PollInterval returns the position polling period as a duration
func (p *PlayerSettings) PollInterval() time.Duration {
	return time.Duration(p.PollIntervalMs) * time.Millisecond
}

// Validate validates logging settings
func (l *LoggingSettings) Validate() error {
	switch l.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be one of debug, info, warn, error, got %q", l.Level)
	}
	switch l.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", l.Format)
	}
	return nil
}
