// Package worker scores queued records concurrently.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/xpoints/internal/adapters/mq/queue"
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/pkg/logger"
	"github.com/okian/xpoints/pkg/metrics"
)

const poolShutdownTimeout = 30 * time.Second

// Scorer computes a result for one record.
type Scorer interface {
	Score(ctx context.Context, rec *model.PlayerMatchRecord) (model.PointsResult, error)
}

// Sink receives results keyed by the job's batch index.
type Sink interface {
	Store(ctx context.Context, index int, res model.PointsResult) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until its queue closes or ctx ends.
type Worker interface {
	Run(ctx context.Context)
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue  Queue
	scorer Scorer
	sink   Sink
	name   string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, scorer Scorer, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		scorer:   scorer,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, j); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Int("index", j.Index), logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after its current job.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) error { //nolint:gocritic // hugeParam: jobs travel by value
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	scoreStart := time.Now()
	res, err := w.scorer.Score(ctx, &j.Record)
	metrics.RecordScoringLatency(float64(time.Since(scoreStart).Microseconds()) / 1000)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "scoring_error")
		return fmt.Errorf("score record %s: %w", j.Record.Key(), err)
	}

	if err := w.sink.Store(ctx, j.Index, res); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "sink_error")
		return fmt.Errorf("store result %d: %w", j.Index, err)
	}

	metrics.RecordRecordScored()
	if res.DefensiveContributionPoints > 0 {
		metrics.RecordDefensiveAward()
	}
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a pool. workerCount below 1 means one worker per CPU.
func NewPool(workerCount int, q Queue, scorer Scorer, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewInMemoryWorker(q, scorer, sink, WithName("worker-"+strconv.Itoa(i)))
	}
	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, normally because the queue was
// closed and drained.
func (p *Pool) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown closes the queue and stops every worker.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		if err := w.Shutdown(shutdownCtx); err != nil {
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}

// SliceSink stores results in a preallocated slice indexed by job.
type SliceSink struct {
	mu      sync.Mutex
	results []model.PointsResult
	filled  []bool
}

// NewSliceSink creates a sink for a batch of n records.
func NewSliceSink(n int) *SliceSink {
	return &SliceSink{results: make([]model.PointsResult, n), filled: make([]bool, n)}
}

// Store implements Sink.
func (s *SliceSink) Store(_ context.Context, index int, res model.PointsResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index < 0 || index >= len(s.results) {
		return fmt.Errorf("index %d out of range [0,%d)", index, len(s.results))
	}
	s.results[index] = res
	s.filled[index] = true
	return nil
}

// Results returns the stored results in index order and the number of slots
// never filled.
func (s *SliceSink) Results() ([]model.PointsResult, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.PointsResult, 0, len(s.results))
	missing := 0
	for i, ok := range s.filled {
		if !ok {
			missing++
			continue
		}
		out = append(out, s.results[i])
	}
	return out, missing
}
