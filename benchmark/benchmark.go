// Package benchmark measures the latency of the motion detection pipeline
// over synthetic scenes at different resolutions and settings.
package benchmark

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"image"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nvr-ai/go-motion/logger"
	"github.com/nvr-ai/go-motion/motion"
	"github.com/nvr-ai/go-motion/test"
	"github.com/pkg/errors"
)

// Resolution represents frame dimensions for benchmarking
type Resolution struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Name   string `json:"name" yaml:"name"`
}

// Common camera resolutions for benchmarking
var CommonResolutions = []Resolution{
	{Width: 320, Height: 240, Name: "QVGA"},
	{Width: 640, Height: 480, Name: "VGA"},
	{Width: 1280, Height: 720, Name: "HD720p"},
	{Width: 1920, Height: 1080, Name: "FHD1080p"},
}

// Scenario defines a specific benchmark configuration
type Scenario struct {
	Name       string        `json:"name" yaml:"name"`
	Resolution Resolution    `json:"resolution" yaml:"resolution"`
	Detection  motion.Config `json:"detection" yaml:"detection"`
	// Regions is the number of moving rectangles in each synthetic scene.
	Regions    int `json:"regions" yaml:"regions"`
	Iterations int `json:"iterations" yaml:"iterations"`
	WarmupRuns int `json:"warmup_runs" yaml:"warmup_runs"`
}

// PerformanceMetrics captures the outcome of one scenario
type PerformanceMetrics struct {
	Scenario        Scenario      `json:"scenario"`
	Timestamp       time.Time     `json:"timestamp"`
	TotalDuration   time.Duration `json:"total_duration"`
	MeanLatency     time.Duration `json:"mean_latency"`
	P95Latency      time.Duration `json:"p95_latency"`
	MaxLatency      time.Duration `json:"max_latency"`
	FramesPerSecond float64       `json:"frames_per_second"`
	MemoryStats     MemoryMetrics `json:"memory_stats"`
	CandidateCount  int           `json:"candidate_count"`
	BoxCount        int           `json:"box_count"`
	ErrorRate       float64       `json:"error_rate"`
}

// MemoryMetrics captures memory usage statistics
type MemoryMetrics struct {
	AllocBytes      uint64 `json:"alloc_bytes"`
	TotalAllocBytes uint64 `json:"total_alloc_bytes"`
	NumGC           uint32 `json:"num_gc"`
	HeapAllocBytes  uint64 `json:"heap_alloc_bytes"`
}

// framePair is one synthetic input to the detector.
type framePair struct {
	prev, curr *image.Gray
}

// scenePairs is the number of distinct frame pairs cycled through per scenario.
const scenePairs = 8

// Suite manages and executes benchmark scenarios
type Suite struct {
	outputDir string

	mu        sync.RWMutex
	scenarios []Scenario
	results   []PerformanceMetrics
}

// NewSuite creates a new benchmark suite writing its reports to outputDir
func NewSuite(outputDir string) *Suite {
	return &Suite{
		outputDir: outputDir,
		scenarios: make([]Scenario, 0),
		results:   make([]PerformanceMetrics, 0),
	}
}

// AddScenario adds a scenario to the suite
func (s *Suite) AddScenario(scenario Scenario) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenarios = append(s.scenarios, scenario)
}

// Scenarios returns the scenarios added so far
func (s *Suite) Scenarios() []Scenario {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Scenario(nil), s.scenarios...)
}

// RunScenario executes a single benchmark scenario.
//
// Arguments:
//   - ctx: Cancels the run between iterations.
//   - scenario: The scenario to run.
//
// Returns:
//   - *PerformanceMetrics: Latency, throughput and box statistics.
//   - error: An invalid detection config, or ctx's error when cancelled.
func (s *Suite) RunScenario(ctx context.Context, scenario Scenario) (*PerformanceMetrics, error) {
	if scenario.Iterations <= 0 {
		return nil, errors.Errorf("scenario %s: iterations must be positive", scenario.Name)
	}
	detector, err := motion.NewDetector(scenario.Detection)
	if err != nil {
		return nil, errors.Wrapf(err, "scenario %s", scenario.Name)
	}

	pairs := syntheticScenes(scenario.Resolution, scenario.Regions)

	for i := 0; i < scenario.WarmupRuns; i++ {
		p := pairs[i%len(pairs)]
		_, _ = detector.Run(p.prev, p.curr)
	}

	var startMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&startMem)

	metrics := &PerformanceMetrics{
		Scenario:  scenario,
		Timestamp: time.Now(),
	}
	latencies := make([]time.Duration, 0, scenario.Iterations)
	failures := 0

	start := time.Now()
	for i := 0; i < scenario.Iterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := pairs[i%len(pairs)]
		t0 := time.Now()
		result, err := detector.Run(p.prev, p.curr)
		latencies = append(latencies, time.Since(t0))
		if err != nil {
			failures++
			continue
		}
		metrics.CandidateCount += result.Candidates
		metrics.BoxCount += len(result.Boxes)
	}
	metrics.TotalDuration = time.Since(start)

	var endMem runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&endMem)

	metrics.FramesPerSecond = float64(scenario.Iterations) / metrics.TotalDuration.Seconds()
	metrics.ErrorRate = float64(failures) / float64(scenario.Iterations)
	metrics.MeanLatency, metrics.P95Latency, metrics.MaxLatency = summarize(latencies)
	metrics.MemoryStats = MemoryMetrics{
		AllocBytes:      endMem.Alloc,
		TotalAllocBytes: endMem.TotalAlloc - startMem.TotalAlloc,
		NumGC:           endMem.NumGC - startMem.NumGC,
		HeapAllocBytes:  endMem.HeapAlloc,
	}

	return metrics, nil
}

// syntheticScenes builds frame pairs in which each of n rectangles moves by
// half its width. The scenes are the same for every run of a resolution.
func syntheticScenes(res Resolution, n int) []framePair {
	gen := test.NewMockFrameGenerator(res.Width, res.Height)
	rng := rand.New(rand.NewSource(int64(res.Width*res.Height + n)))
	size := max(4, min(res.Width, res.Height)/12)

	pairs := make([]framePair, scenePairs)
	for i := range pairs {
		before := make([]image.Rectangle, n)
		after := make([]image.Rectangle, n)
		for j := range before {
			x := rng.Intn(max(1, res.Width-size))
			y := rng.Intn(max(1, res.Height-size))
			before[j] = image.Rect(x, y, x+size, y+size)
			after[j] = before[j].Add(image.Pt(size/2, 0))
		}
		pairs[i] = framePair{
			prev: gen.GenerateRegionsFrame(before...),
			curr: gen.GenerateRegionsFrame(after...),
		}
	}
	return pairs
}

// summarize returns the mean, 95th percentile and maximum of d.
func summarize(d []time.Duration) (mean, p95, maxLatency time.Duration) {
	if len(d) == 0 {
		return 0, 0, 0
	}
	sorted := append([]time.Duration(nil), d...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var total time.Duration
	for _, v := range sorted {
		total += v
	}
	idx := (len(sorted)*95+99)/100 - 1
	return total / time.Duration(len(sorted)), sorted[idx], sorted[len(sorted)-1]
}

// RunAllScenarios executes all configured scenarios and saves the results.
// A failing scenario is logged and skipped.
func (s *Suite) RunAllScenarios(ctx context.Context) error {
	for _, scenario := range s.Scenarios() {
		metrics, err := s.RunScenario(ctx, scenario)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("benchmark", "scenario %s failed: %v", scenario.Name, err)
			continue
		}

		s.mu.Lock()
		s.results = append(s.results, *metrics)
		s.mu.Unlock()

		logger.Info("benchmark", "scenario %s: %.1f FPS, mean %v, p95 %v",
			scenario.Name, metrics.FramesPerSecond, metrics.MeanLatency, metrics.P95Latency)
	}

	return s.SaveResults()
}

// SaveResults writes the results as a JSON report and a CSV summary.
func (s *Suite) SaveResults() error {
	results := s.GetResults()

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return errors.Wrap(err, "create output directory")
	}

	timestamp := time.Now().Format("2006-01-02_15-04-05")
	resultsFile := filepath.Join(s.outputDir, fmt.Sprintf("benchmark_results_%s.json", timestamp))

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(resultsFile, data, 0o644); err != nil {
		return errors.Wrap(err, "write results file")
	}

	summaryFile := filepath.Join(s.outputDir, fmt.Sprintf("benchmark_summary_%s.csv", timestamp))
	if err := saveSummaryCSV(summaryFile, results); err != nil {
		return errors.Wrap(err, "save summary CSV")
	}

	logger.Info("benchmark", "results saved to %s and %s", resultsFile, summaryFile)
	return nil
}

func saveSummaryCSV(filename string, results []PerformanceMetrics) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{
		"Scenario", "Resolution", "Strategy", "Regions", "FPS",
		"Mean_ms", "P95_ms", "Max_ms", "Candidates", "Boxes", "Error_Rate",
	}); err != nil {
		return err
	}

	ms := func(d time.Duration) string {
		return strconv.FormatFloat(float64(d.Nanoseconds())/1e6, 'f', 3, 64)
	}
	for _, r := range results {
		if err := w.Write([]string{
			r.Scenario.Name,
			r.Scenario.Resolution.Name,
			string(r.Scenario.Detection.Strategy),
			strconv.Itoa(r.Scenario.Regions),
			strconv.FormatFloat(r.FramesPerSecond, 'f', 2, 64),
			ms(r.MeanLatency),
			ms(r.P95Latency),
			ms(r.MaxLatency),
			strconv.Itoa(r.CandidateCount),
			strconv.Itoa(r.BoxCount),
			strconv.FormatFloat(r.ErrorRate, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// GetResults returns all benchmark results
func (s *Suite) GetResults() []PerformanceMetrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]PerformanceMetrics, len(s.results))
	copy(results, s.results)
	return results
}
