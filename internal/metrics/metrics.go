// Package metrics exposes Prometheus instrumentation for waveform extraction
// and playback transitions.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Extraction results
const (
	ResultOK        = "ok"
	ResultEmpty     = "empty"
	ResultError     = "error"
	ResultCancelled = "cancelled"
)

// Metrics holds every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Waveform metrics
	Extractions        *prometheus.CounterVec
	ExtractionDuration prometheus.Histogram
	DecodedSamples     prometheus.Counter

	// Player metrics
	PlayerEvents   *prometheus.CounterVec
	StaleEvents    prometheus.Counter
	FilesStarted   prometheus.Counter
	PlaybackErrors prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Extractions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jivewave_waveform_extractions_total",
			Help: "Total number of waveform extractions by result",
		}, []string{"result"}),
		ExtractionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "jivewave_waveform_extraction_duration_seconds",
			Help:    "Time spent decoding and downsampling one file",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		DecodedSamples: factory.NewCounter(prometheus.CounterOpts{
			Name: "jivewave_waveform_decoded_samples_total",
			Help: "Total number of mono PCM samples fed into the downsampler",
		}),

		PlayerEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "jivewave_player_events_total",
			Help: "Total number of backend events applied to playback state, by kind",
		}, []string{"kind"}),
		StaleEvents: factory.NewCounter(prometheus.CounterOpts{
			Name: "jivewave_player_stale_events_total",
			Help: "Total number of backend events dropped because their session was superseded",
		}),
		FilesStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "jivewave_player_files_started_total",
			Help: "Total number of playback sessions started",
		}),
		PlaybackErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "jivewave_player_errors_total",
			Help: "Total number of files that failed to prepare or play",
		}),
	}
}

// RecordExtraction records one extraction outcome
func (m *Metrics) RecordExtraction(result string, duration time.Duration, samples int) {
	if m == nil {
		return
	}
	m.Extractions.WithLabelValues(result).Inc()
	m.ExtractionDuration.Observe(duration.Seconds())
	if samples > 0 {
		m.DecodedSamples.Add(float64(samples))
	}
}

// RecordPlayerEvent records an applied backend event
func (m *Metrics) RecordPlayerEvent(kind string) {
	if m == nil {
		return
	}
	m.PlayerEvents.WithLabelValues(kind).Inc()
}

// RecordStaleEvent records a dropped backend event
func (m *Metrics) RecordStaleEvent() {
	if m == nil {
		return
	}
	m.StaleEvents.Inc()
}

// RecordFileStarted records a new playback session
func (m *Metrics) RecordFileStarted() {
	if m == nil {
		return
	}
	m.FilesStarted.Inc()
}

// RecordPlaybackError records a prepare or playback failure
func (m *Metrics) RecordPlaybackError() {
	if m == nil {
		return
	}
	m.PlaybackErrors.Inc()
}

// Serve exposes gatherer on addr at /metrics until ctx is cancelled
func Serve(ctx context.Context, addr string, gatherer prometheus.Gatherer, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}()

	logger.Info("metrics server listening", "address", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
