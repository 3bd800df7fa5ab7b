// Package profiler samples runtime statistics and per-stage timings of the
// frame loop and logs a periodic summary.
package profiler

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvr-ai/go-motion/logger"
)

// Collector is polled on every sample for gauge-like values, such as the
// number of boxes found in the last frame.
type Collector interface {
	CollectMetrics() map[string]float64
}

// Options configures a Profiler.
type Options struct {
	// ReportInterval specifies how often to log a summary (default: 10s)
	ReportInterval time.Duration
	// SampleInterval specifies how often collectors are polled (default: 500ms)
	SampleInterval time.Duration
	// Window is the number of most recent values kept per series (default: 600)
	Window int
}

// Series summarises the most recent values of one metric.
type Series struct {
	Name    string
	Last    float64
	Min     float64
	Max     float64
	Mean    float64
	Samples int
}

// Timing summarises the most recent durations of one operation.
type Timing struct {
	Name  string
	Mean  time.Duration
	Min   time.Duration
	Max   time.Duration
	Count int64
}

// Snapshot is a point-in-time copy of everything the profiler tracks.
type Snapshot struct {
	Uptime     time.Duration
	Goroutines int
	HeapAlloc  uint64
	NumGC      uint32
	Metrics    []Series
	Timings    []Timing
}

// Profiler tracks custom metrics and operation timings. It is safe for
// concurrent use.
type Profiler struct {
	opts Options

	mu         sync.Mutex
	started    time.Time
	series     map[string]*window[float64]
	timings    map[string]*window[time.Duration]
	collectors []Collector

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// window keeps the last n values of a series along with lifetime extremes.
type window[T int64 | float64 | time.Duration] struct {
	values   []T
	sum      T
	min, max T
	count    int64
}

func (w *window[T]) add(v T, n int) {
	if w.count == 0 || v < w.min {
		w.min = v
	}
	if w.count == 0 || v > w.max {
		w.max = v
	}
	w.count++
	w.values = append(w.values, v)
	w.sum += v
	if len(w.values) > n {
		w.sum -= w.values[0]
		w.values = w.values[1:]
	}
}

func (w *window[T]) mean() T {
	if len(w.values) == 0 {
		return 0
	}
	return w.sum / T(len(w.values))
}

// New creates a Profiler. Zero options take their defaults.
//
// Arguments:
//   - opts: Intervals and window size.
//
// Returns:
//   - *Profiler: A stopped profiler; call Start to begin sampling.
func New(opts Options) *Profiler {
	if opts.ReportInterval <= 0 {
		opts.ReportInterval = 10 * time.Second
	}
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = 500 * time.Millisecond
	}
	if opts.Window <= 0 {
		opts.Window = 600
	}
	return &Profiler{
		opts:    opts,
		started: time.Now(),
		series:  make(map[string]*window[float64]),
		timings: make(map[string]*window[time.Duration]),
	}
}

// Start launches the sampling and reporting goroutines. They stop when ctx is
// cancelled or Stop is called. Calling Start on a running profiler has no
// effect; after Stop it may be started again.
func (p *Profiler) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)
	p.started = time.Now()

	p.wg.Add(2)
	go p.every(ctx, p.opts.SampleInterval, p.sample)
	go p.every(ctx, p.opts.ReportInterval, p.report)
}

// Stop halts the background goroutines and waits for them to exit.
func (p *Profiler) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	p.wg.Wait()
}

func (p *Profiler) every(ctx context.Context, interval time.Duration, fn func()) {
	defer p.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}

// AddCollector registers a collector polled on every sample.
func (p *Profiler) AddCollector(c Collector) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.collectors = append(p.collectors, c)
}

// RecordMetric adds a value to the named series.
func (p *Profiler) RecordMetric(name string, value float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.recordLocked(name, value)
}

func (p *Profiler) recordLocked(name string, value float64) {
	w, ok := p.series[name]
	if !ok {
		w = &window[float64]{}
		p.series[name] = w
	}
	w.add(value, p.opts.Window)
}

// StartOperation begins timing an operation.
//
// Returns:
//   - func(): Call it when the operation completes.
//
// @example
// done := prof.StartOperation("detect")
// boxes, err := detector.Detect(prev, curr)
// done()
func (p *Profiler) StartOperation(name string) func() {
	start := time.Now()
	return func() {
		p.RecordDuration(name, time.Since(start))
	}
}

// RecordDuration adds one completed operation to the named timing.
func (p *Profiler) RecordDuration(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	w, ok := p.timings[name]
	if !ok {
		w = &window[time.Duration]{}
		p.timings[name] = w
	}
	w.add(d, p.opts.Window)
}

// sample polls every collector once.
func (p *Profiler) sample() {
	p.mu.Lock()
	collectors := append([]Collector(nil), p.collectors...)
	p.mu.Unlock()

	for _, c := range collectors {
		values := c.CollectMetrics()
		p.mu.Lock()
		for name, v := range values {
			p.recordLocked(name, v)
		}
		p.mu.Unlock()
	}
}

// Snapshot returns the current statistics, sorted by name.
func (p *Profiler) Snapshot() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	p.mu.Lock()
	defer p.mu.Unlock()

	snap := Snapshot{
		Uptime:     time.Since(p.started),
		Goroutines: runtime.NumGoroutine(),
		HeapAlloc:  mem.HeapAlloc,
		NumGC:      mem.NumGC,
		Metrics:    make([]Series, 0, len(p.series)),
		Timings:    make([]Timing, 0, len(p.timings)),
	}
	for name, w := range p.series {
		snap.Metrics = append(snap.Metrics, Series{
			Name:    name,
			Last:    w.values[len(w.values)-1],
			Min:     w.min,
			Max:     w.max,
			Mean:    w.mean(),
			Samples: len(w.values),
		})
	}
	for name, w := range p.timings {
		snap.Timings = append(snap.Timings, Timing{
			Name:  name,
			Mean:  w.mean(),
			Min:   w.min,
			Max:   w.max,
			Count: w.count,
		})
	}
	sort.Slice(snap.Metrics, func(i, j int) bool { return snap.Metrics[i].Name < snap.Metrics[j].Name })
	sort.Slice(snap.Timings, func(i, j int) bool { return snap.Timings[i].Name < snap.Timings[j].Name })
	return snap
}

func (p *Profiler) report() {
	logger.Info("profiler", "%s", p.Snapshot())
}

// String renders the snapshot on a single line.
func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "uptime=%v goroutines=%d heap=%s gc=%d",
		s.Uptime.Truncate(time.Millisecond), s.Goroutines, formatBytes(s.HeapAlloc), s.NumGC)
	for _, m := range s.Metrics {
		fmt.Fprintf(&b, " %s[last=%.2f avg=%.2f max=%.2f]", m.Name, m.Last, m.Mean, m.Max)
	}
	for _, t := range s.Timings {
		fmt.Fprintf(&b, " %s[avg=%v max=%v n=%d]", t.Name,
			t.Mean.Truncate(time.Microsecond), t.Max.Truncate(time.Microsecond), t.Count)
	}
	return b.String()
}

// formatBytes formats byte counts in human-readable format.
func formatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
