// Package metrics exposes the frame loop's counters in Prometheus format.
package metrics

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the detector's counters
type Metrics struct {
	// Frame counters
	FramesRead      atomic.Uint64
	FramesProcessed atomic.Uint64
	FramesRendered  atomic.Uint64

	// Box counters
	Candidates atomic.Uint64
	Boxes      atomic.Uint64

	// Error counters
	ReadErrors   atomic.Uint64
	DetectErrors atomic.Uint64
	RenderErrors atomic.Uint64

	// Configuration reloads applied
	Reloads atomic.Uint64

	detectLatency prometheus.Histogram
	registry      *prometheus.Registry
}

// New creates a Metrics instance with its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		detectLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "motion_detect_duration_seconds",
			Help:    "Time spent detecting motion in one frame pair",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}

	m.registerPrometheusMetrics()

	return m
}

func (m *Metrics) registerPrometheusMetrics() {
	counters := []struct {
		name, help string
		value      *atomic.Uint64
	}{
		{"motion_frames_read_total", "Total frames read from the source", &m.FramesRead},
		{"motion_frames_processed_total", "Total frame pairs passed to the detector", &m.FramesProcessed},
		{"motion_frames_rendered_total", "Total annotated frames rendered", &m.FramesRendered},
		{"motion_candidates_total", "Total candidate boxes before suppression", &m.Candidates},
		{"motion_boxes_total", "Total boxes kept after suppression", &m.Boxes},
		{"motion_read_errors_total", "Total frame source errors", &m.ReadErrors},
		{"motion_detect_errors_total", "Total detection errors", &m.DetectErrors},
		{"motion_render_errors_total", "Total render errors", &m.RenderErrors},
		{"motion_config_reloads_total", "Total configuration reloads applied", &m.Reloads},
	}

	for _, c := range counters {
		value := c.value
		m.registry.MustRegister(prometheus.NewCounterFunc(
			prometheus.CounterOpts{Name: c.name, Help: c.help},
			func() float64 { return float64(value.Load()) },
		))
	}

	m.registry.MustRegister(m.detectLatency)
}

// ObserveDetection records one detector call
func (m *Metrics) ObserveDetection(duration time.Duration, candidates, boxes int) {
	m.FramesProcessed.Add(1)
	m.Candidates.Add(uint64(candidates))
	m.Boxes.Add(uint64(boxes))
	m.detectLatency.Observe(duration.Seconds())
}

// Suppressed returns the number of candidates removed by suppression so far.
func (m *Metrics) Suppressed() uint64 {
	return m.Candidates.Load() - m.Boxes.Load()
}

// Registry returns the registry the metrics are registered with
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrapf(err, "metrics server on %s", addr)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown metrics server")
		}
		return nil
	}
}
