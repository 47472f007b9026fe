package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
)

type countingProc struct {
	mu        sync.Mutex
	processed []string
	fail      map[string]int // remaining failures per station
}

func (p *countingProc) Process(_ context.Context, _ models.Indicator, stationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n := p.fail[stationID]; n > 0 {
		p.fail[stationID] = n - 1
		return errBoom
	}
	p.processed = append(p.processed, stationID)
	return nil
}

func (p *countingProc) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.processed)
}

var errBoom = errors.New("boom")

type noopMetrics struct{}

func (noopMetrics) RecordSeriesIngested(string, string)     {}
func (noopMetrics) RecordError(string)                      {}
func (noopMetrics) RecordLastIndex(string, string, float64) {}
func (noopMetrics) RecordLatency(string, float64)           {}
func (noopMetrics) RecordStationGated(string)               {}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	require.Fail(t, "condition not met in time")
}

func TestPipelineProcessesSubmittedStations(t *testing.T) {
	proc := &countingProc{}
	p := NewStationPipeline(proc, noopMetrics{}, WithWorkers(2))
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), models.IndicatorGroundwater, "s1"))
	require.NoError(t, p.Submit(context.Background(), models.IndicatorGroundwater, "s2"))

	waitFor(t, func() bool { return proc.count() == 2 })
}

func TestPipelineSkipsBlacklistedStations(t *testing.T) {
	proc := &countingProc{}
	p := NewStationPipeline(proc, noopMetrics{}, WithWorkers(1), WithBlacklist([]string{"bad"}))
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), models.IndicatorGroundwater, "bad"))
	require.NoError(t, p.Submit(context.Background(), models.IndicatorGroundwater, "good"))

	waitFor(t, func() bool { return proc.count() == 1 })
	assert.Equal(t, []string{"good"}, proc.processed)
}

func TestPipelineRejectsEmptyStation(t *testing.T) {
	p := NewStationPipeline(&countingProc{}, noopMetrics{})
	err := p.Submit(context.Background(), models.IndicatorGroundwater, "")
	assert.Error(t, err)
}

func TestPipelineRetriesOnce(t *testing.T) {
	proc := &countingProc{fail: map[string]int{"flaky": 1}}
	p := NewStationPipeline(proc, noopMetrics{},
		WithWorkers(1),
		WithRetryWait(10*time.Millisecond),
	)
	p.Start(context.Background())
	defer p.Stop()

	require.NoError(t, p.Submit(context.Background(), models.IndicatorGroundwater, "flaky"))

	waitFor(t, func() bool { return proc.count() == 1 })
}
