// Package waveform turns an audio file into a fixed number of normalised
// peak amplitude bars for seek-bar rendering.
package waveform

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/linuxmatters/jivewave/internal/audio"
	"github.com/linuxmatters/jivewave/internal/config"
	"github.com/linuxmatters/jivewave/internal/logging"
	"github.com/linuxmatters/jivewave/internal/metrics"
)

var (
	// ErrFileNotFound is returned when the path does not exist
	ErrFileNotFound = errors.New("audio file not found")

	// ErrUnknownDuration is returned when the track reports no positive duration
	ErrUnknownDuration = errors.New("audio duration unknown")

	// ErrDecoderStalled is returned when the decoder produces nothing for StallTimeout
	ErrDecoderStalled = errors.New("decoder stalled")
)

// Upper bound on the mono sample buffer reserved up front
const maxPrealloc = 1 << 24

// Config controls extraction
type Config struct {
	Bars           int           // Bars per waveform
	ChunkFrames    int           // Frames requested per decoder read
	QueueDepth     int           // Decoded buffers queued ahead of the downsampler
	DequeueTimeout time.Duration // Bound on each wait for a decoded buffer
	StallTimeout   time.Duration // Give up after this long without a buffer
}

// DefaultConfig returns the built-in extraction settings
func DefaultConfig() Config {
	return Config{
		Bars:           config.NumBars,
		ChunkFrames:    config.ChunkFrames,
		QueueDepth:     config.QueueDepth,
		DequeueTimeout: config.DequeueTimeout,
		StallTimeout:   config.StallTimeout,
	}
}

// ConfigFromSettings applies the waveform section of a settings file
func ConfigFromSettings(s config.WaveformSettings) Config {
	cfg := DefaultConfig()
	cfg.Bars = s.Bars
	cfg.ChunkFrames = s.ChunkFrames
	cfg.DequeueTimeout = s.DequeueTimeout()
	return cfg
}

// OpenFunc opens a decoder for a path
type OpenFunc func(path string) (audio.Decoder, error)

// ProgressFunc reports decoded frames against the track length
type ProgressFunc func(framesDecoded, totalFrames int64)

// Extractor computes waveforms. It holds no per-file state and may be used
// from several goroutines at once.
type Extractor struct {
	cfg      Config
	open     OpenFunc
	logger   *slog.Logger
	metrics  *metrics.Metrics
	progress ProgressFunc
}

// Option configures an Extractor
type Option func(*Extractor)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(e *Extractor) { e.logger = logging.OrDiscard(l) }
}

// WithMetrics records extraction outcomes into m
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Extractor) { e.metrics = m }
}

// WithOpener replaces the decoding backend
func WithOpener(open OpenFunc) Option {
	return func(e *Extractor) { e.open = open }
}

// WithProgress registers a progress callback, called from the extracting goroutine
func WithProgress(fn ProgressFunc) Option {
	return func(e *Extractor) { e.progress = fn }
}

// NewExtractor returns an extractor using the built-in decoders
func NewExtractor(cfg Config, opts ...Option) *Extractor {
	e := &Extractor{
		cfg:    cfg,
		open:   audio.Open,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractWaveform computes the waveform of filePath with default settings.
// It never fails: any problem yields an empty, non-nil slice.
func ExtractWaveform(filePath string) []float64 {
	return NewExtractor(DefaultConfig()).ExtractWaveform(filePath)
}

// ExtractWaveform computes the waveform of filePath. It never fails: any
// problem is logged and yields an empty, non-nil slice.
func (e *Extractor) ExtractWaveform(filePath string) []float64 {
	bars, err := e.Extract(context.Background(), filePath)
	if err != nil {
		e.logger.Warn("waveform extraction failed", "path", filePath, "error", err)
		return []float64{}
	}
	return bars
}

// Extract computes the waveform of filePath, blocking until the whole file is
// decoded or ctx is done. It returns as soon as ctx is done or the decoder
// stalls, even if a read is still blocked; the decoder is then closed in the
// background once that read returns.
func (e *Extractor) Extract(ctx context.Context, filePath string) (bars []float64, err error) {
	start := time.Now()
	var decoded int
	defer func() {
		e.metrics.RecordExtraction(resultLabel(bars, err), time.Since(start), decoded)
	}()

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, filePath)
		}
		return nil, err
	}

	dec, err := e.open(filePath)
	if err != nil {
		return nil, err
	}

	format := dec.Format()
	if format.Duration() <= 0 {
		dec.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnknownDuration, filePath)
	}

	e.logger.Debug("extracting waveform",
		"path", filePath,
		"media_type", format.MediaType,
		"sample_rate", format.SampleRate,
		"channels", format.Channels,
		"duration", format.Duration())

	mono, err := e.drain(ctx, dec, format)
	decoded = len(mono)
	if err != nil {
		return nil, err
	}

	bars = FromSamples(mono, e.cfg.Bars)
	e.logger.Debug("waveform extracted", "path", filePath, "samples", len(mono), "bars", len(bars))
	return bars, nil
}

// drain pulls decoded buffers until end of stream, keeping the first channel.
// The pump takes ownership of dec.
func (e *Extractor) drain(ctx context.Context, dec audio.Decoder, format audio.Format) ([]int16, error) {
	pump := audio.NewPump(dec, e.cfg.ChunkFrames, e.cfg.QueueDepth)
	defer pump.Stop()

	channels := max(format.Channels, 1)
	mono := make([]int16, 0, min(format.NumFrames, maxPrealloc))
	var frames int64
	var stalled time.Duration

	for {
		buf, err := pump.Dequeue(ctx, e.cfg.DequeueTimeout)
		if errors.Is(err, audio.ErrDequeueTimeout) {
			stalled += e.cfg.DequeueTimeout
			if e.cfg.StallTimeout > 0 && stalled >= e.cfg.StallTimeout {
				return mono, fmt.Errorf("%w after %v", ErrDecoderStalled, stalled)
			}
			continue
		}
		if err != nil {
			return mono, err
		}
		stalled = 0

		mono = FirstChannel(mono, buf.PCM, channels)
		frames += int64(len(buf.PCM) / channels)
		if e.progress != nil {
			e.progress(frames, format.NumFrames)
		}

		if buf.EndOfStream {
			return mono, nil
		}
	}
}

func resultLabel(bars []float64, err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.ResultCancelled
	case err != nil:
		return metrics.ResultError
	case len(bars) == 0:
		return metrics.ResultEmpty
	default:
		return metrics.ResultOK
	}
}
