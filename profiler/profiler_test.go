package profiler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticCollector map[string]float64

func (c staticCollector) CollectMetrics() map[string]float64 { return c }

func TestRecordMetric_Window(t *testing.T) {
	p := New(Options{Window: 3})
	for _, v := range []float64{10, 1, 2, 3} {
		p.RecordMetric("boxes", v)
	}

	snap := p.Snapshot()
	require.Len(t, snap.Metrics, 1)
	m := snap.Metrics[0]
	assert.Equal(t, "boxes", m.Name)
	assert.Equal(t, 3, m.Samples)
	assert.Equal(t, 3.0, m.Last)
	assert.Equal(t, 2.0, m.Mean)
	// Extremes cover the whole lifetime, not just the window.
	assert.Equal(t, 1.0, m.Min)
	assert.Equal(t, 10.0, m.Max)
}

func TestRecordDuration(t *testing.T) {
	p := New(Options{})
	p.RecordDuration("detect", 2*time.Millisecond)
	p.RecordDuration("detect", 4*time.Millisecond)
	p.RecordDuration("render", time.Millisecond)

	snap := p.Snapshot()
	require.Len(t, snap.Timings, 2)
	assert.Equal(t, Timing{Name: "detect", Mean: 3 * time.Millisecond, Min: 2 * time.Millisecond, Max: 4 * time.Millisecond, Count: 2}, snap.Timings[0])
	assert.Equal(t, "render", snap.Timings[1].Name)
}

func TestStartOperation(t *testing.T) {
	p := New(Options{})
	done := p.StartOperation("read")
	time.Sleep(time.Millisecond)
	done()

	snap := p.Snapshot()
	require.Len(t, snap.Timings, 1)
	assert.GreaterOrEqual(t, snap.Timings[0].Min, time.Millisecond)
	assert.Contains(t, snap.String(), "read[")
}

func TestStart_PollsCollectors(t *testing.T) {
	p := New(Options{SampleInterval: 5 * time.Millisecond, ReportInterval: 10 * time.Millisecond})
	p.AddCollector(staticCollector{"fps": 25})

	p.Start(context.Background())
	p.Start(context.Background())
	defer p.Stop()

	require.Eventually(t, func() bool {
		snap := p.Snapshot()
		return len(snap.Metrics) == 1 && snap.Metrics[0].Samples >= 2
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStop_WithoutStart(t *testing.T) {
	p := New(Options{})
	p.Stop()
	assert.Empty(t, p.Snapshot().Metrics)
}

func TestStart_AfterStopRestarts(t *testing.T) {
	p := New(Options{SampleInterval: 5 * time.Millisecond, ReportInterval: time.Hour, Window: 1000})
	p.AddCollector(staticCollector{"fps": 25})

	p.Start(context.Background())
	require.Eventually(t, func() bool {
		snap := p.Snapshot()
		return len(snap.Metrics) == 1 && snap.Metrics[0].Samples >= 1
	}, 2*time.Second, 5*time.Millisecond)
	p.Stop()

	stopped := p.Snapshot().Metrics[0].Samples

	p.Start(context.Background())
	defer p.Stop()
	require.Eventually(t, func() bool {
		return p.Snapshot().Metrics[0].Samples > stopped
	}, 2*time.Second, 5*time.Millisecond)
}
