package benchmark

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvr-ai/go-motion/motion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarioBuilder(t *testing.T) {
	scenario := NewScenarioBuilder("test_scenario").
		WithResolution(416, 416).
		WithStrategy(motion.StrategyContours).
		WithIoUThreshold(0.1).
		WithRegions(7).
		WithIterations(50).
		WithWarmupRuns(5).
		Build()

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, Resolution{Width: 416, Height: 416, Name: "416x416"}, scenario.Resolution)
	assert.Equal(t, motion.StrategyContours, scenario.Detection.Strategy)
	assert.Equal(t, float32(0.1), scenario.Detection.IoUThreshold)
	assert.Equal(t, 25, scenario.Detection.MaskThreshold)
	assert.Equal(t, 7, scenario.Regions)
	assert.Equal(t, 50, scenario.Iterations)
	assert.Equal(t, 5, scenario.WarmupRuns)
}

func TestAddScenario(t *testing.T) {
	suite := NewSuite(t.TempDir())
	scenario := NewScenarioBuilder("test").Build()

	suite.AddScenario(scenario)

	require.Len(t, suite.Scenarios(), 1)
	assert.Equal(t, scenario, suite.Scenarios()[0])
}

func TestPredefinedScenarios(t *testing.T) {
	predefined := &PredefinedScenarios{}

	quick := predefined.GetQuickScenarios()
	assert.Len(t, quick.Scenarios, 4)
	assert.Equal(t, "Quick Performance Test", quick.Name)

	resolution := predefined.GetResolutionComparisonScenarios(motion.StrategyComponents)
	assert.Len(t, resolution.Scenarios, len(CommonResolutions))
	assert.Contains(t, resolution.Name, "Resolution Comparison")

	density := predefined.GetDensityScenarios(CommonResolutions[0])
	assert.Len(t, density.Scenarios, 8)

	for _, set := range []*ScenarioSet{quick, resolution, density} {
		for _, s := range set.Scenarios {
			assert.NoError(t, s.Detection.Validate(), s.Name)
		}
	}
}

func TestRunScenario(t *testing.T) {
	suite := NewSuite(t.TempDir())
	scenario := NewScenarioBuilder("small").
		WithNamedResolution(CommonResolutions[0]).
		WithRegions(2).
		WithIterations(10).
		WithWarmupRuns(1).
		Build()

	metrics, err := suite.RunScenario(context.Background(), scenario)
	require.NoError(t, err)

	assert.Equal(t, scenario, metrics.Scenario)
	assert.Zero(t, metrics.ErrorRate)
	assert.Positive(t, metrics.FramesPerSecond)
	assert.Positive(t, metrics.BoxCount)
	assert.LessOrEqual(t, metrics.BoxCount, metrics.CandidateCount)
	assert.LessOrEqual(t, metrics.MeanLatency, metrics.MaxLatency)
	assert.LessOrEqual(t, metrics.P95Latency, metrics.MaxLatency)
}

func TestRunScenario_Rejects(t *testing.T) {
	suite := NewSuite(t.TempDir())

	bad := NewScenarioBuilder("bad").WithIoUThreshold(2).Build()
	_, err := suite.RunScenario(context.Background(), bad)
	assert.Error(t, err)

	empty := NewScenarioBuilder("empty").WithIterations(0).Build()
	_, err = suite.RunScenario(context.Background(), empty)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = suite.RunScenario(ctx, NewScenarioBuilder("cancelled").Build())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunAllScenarios_SavesReports(t *testing.T) {
	dir := t.TempDir()
	suite := NewSuite(dir)
	suite.AddScenario(NewScenarioBuilder("a").WithNamedResolution(CommonResolutions[0]).WithIterations(3).Build())
	suite.AddScenario(NewScenarioBuilder("broken").WithIoUThreshold(-1).Build())

	require.NoError(t, suite.RunAllScenarios(context.Background()))
	require.Len(t, suite.GetResults(), 1)

	csvFiles, err := filepath.Glob(filepath.Join(dir, "benchmark_summary_*.csv"))
	require.NoError(t, err)
	require.Len(t, csvFiles, 1)
	data, err := os.ReadFile(csvFiles[0])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "a,QVGA,components,3,"))

	jsonFiles, err := filepath.Glob(filepath.Join(dir, "benchmark_results_*.json"))
	require.NoError(t, err)
	assert.Len(t, jsonFiles, 1)
}

func TestScenarioSet_RoundTripWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: custom
scenarios:
  - name: contours_hd
    resolution: {width: 1280, height: 720, name: HD720p}
    detection:
      strategy: contours
`), 0o600))

	set, err := LoadScenarioSet(path)
	require.NoError(t, err)
	require.Len(t, set.Scenarios, 1)

	s := set.Scenarios[0]
	assert.Equal(t, "contours_hd", s.Name)
	assert.Equal(t, motion.StrategyContours, s.Detection.Strategy)
	assert.Equal(t, 10, s.Detection.Padding)
	assert.Equal(t, 100, s.Iterations)

	out := filepath.Join(t.TempDir(), "saved.yaml")
	require.NoError(t, SaveScenarioSet(set, out))
	again, err := LoadScenarioSet(out)
	require.NoError(t, err)
	assert.Equal(t, set, again)
}

func TestSummarize(t *testing.T) {
	d := make([]time.Duration, 0, 20)
	for i := 20; i >= 1; i-- {
		d = append(d, time.Duration(i)*time.Millisecond)
	}
	mean, p95, maxLatency := summarize(d)
	assert.Equal(t, 10500*time.Microsecond, mean)
	assert.Equal(t, 19*time.Millisecond, p95)
	assert.Equal(t, 20*time.Millisecond, maxLatency)

	mean, p95, maxLatency = summarize(nil)
	assert.Zero(t, mean+p95+maxLatency)
}

func BenchmarkScenarioBuilder(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = NewScenarioBuilder("test").
			WithResolution(416, 416).
			WithStrategy(motion.StrategyContours).
			WithIterations(100).
			Build()
	}
}
