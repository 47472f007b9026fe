package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/wafa-bouzouita/water-tracker/internal/domain/models"
	domrepo "github.com/wafa-bouzouita/water-tracker/internal/domain/repository"
)

// StationProc is the minimal per-station processor the pipeline drives.
type StationProc interface {
	Process(ctx context.Context, indicator models.Indicator, stationID string) error
}

// StationPipeline fans station work out over a bounded worker pool. It
// validates and filters blacklisted stations up front and retries failed
// stations once with backoff before giving up.
type StationPipeline struct {
	proc    StationProc
	metrics domrepo.Metrics

	workers   int
	queueSize int
	retryWait time.Duration
	blacklist map[string]struct{}

	jobCh   chan stationJob
	stopCh  chan struct{}
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

type stationJob struct {
	indicator models.Indicator
	stationID string
	attempt   int
}

type PipelineOption func(*StationPipeline)

// WithWorkers sets the number of concurrent station workers.
func WithWorkers(n int) PipelineOption {
	return func(p *StationPipeline) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithQueueSize sets the pending station queue capacity.
func WithQueueSize(n int) PipelineOption {
	return func(p *StationPipeline) {
		if n > 0 {
			p.queueSize = n
		}
	}
}

// WithBlacklist excludes stations from processing entirely.
func WithBlacklist(ids []string) PipelineOption {
	return func(p *StationPipeline) {
		for _, id := range ids {
			p.blacklist[id] = struct{}{}
		}
	}
}

// WithRetryWait sets the delay before a failed station is retried.
func WithRetryWait(d time.Duration) PipelineOption {
	return func(p *StationPipeline) {
		if d > 0 {
			p.retryWait = d
		}
	}
}

// NewStationPipeline creates a station worker pipeline.
func NewStationPipeline(proc StationProc, metrics domrepo.Metrics, opts ...PipelineOption) *StationPipeline {
	p := &StationPipeline{
		proc:      proc,
		metrics:   metrics,
		workers:   4,
		queueSize: 1000,
		retryWait: 2 * time.Second,
		blacklist: make(map[string]struct{}),
		stopCh:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.jobCh = make(chan stationJob, p.queueSize)
	return p
}

// Start launches the worker pool.
func (p *StationPipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
}

// Stop stops the workers and waits for in-flight stations to finish.
func (p *StationPipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
	p.wg.Wait()
}

// Submit queues one station for processing. Blacklisted stations are dropped
// silently; a full queue is an error the caller can surface.
func (p *StationPipeline) Submit(ctx context.Context, indicator models.Indicator, stationID string) error {
	if stationID == "" {
		p.metrics.RecordError("pipeline_validate")
		return fmt.Errorf("station id empty")
	}
	if _, skip := p.blacklist[stationID]; skip {
		return nil
	}
	select {
	case p.jobCh <- stationJob{indicator: indicator, stationID: stationID}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		p.metrics.RecordError("pipeline_queue_full")
		return fmt.Errorf("pipeline queue full, dropped %s", stationID)
	}
}

func (p *StationPipeline) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case j := <-p.jobCh:
			p.run(ctx, j)
		}
	}
}

func (p *StationPipeline) run(ctx context.Context, j stationJob) {
	start := time.Now()
	err := p.proc.Process(ctx, j.indicator, j.stationID)
	if err == nil {
		p.metrics.RecordLatency("pipeline_station", time.Since(start).Seconds())
		return
	}

	p.metrics.RecordError("pipeline_station")
	if j.attempt >= 1 {
		return
	}
	select {
	case <-ctx.Done():
	case <-p.stopCh:
	case <-time.After(p.retryWait):
		j.attempt++
		select {
		case p.jobCh <- j:
		default:
			p.metrics.RecordError("pipeline_retry_drop")
		}
	}
}
