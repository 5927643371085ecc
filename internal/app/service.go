// Package service runs analysis batches and serves the latest report to the
// HTTP API and the CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/xpoints/internal/adapters/mq/queue"
	"github.com/okian/xpoints/internal/adapters/mq/worker"
	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/bonus"
	"github.com/okian/xpoints/internal/domain/dedupe"
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
	"github.com/okian/xpoints/internal/domain/scoring"
	"github.com/okian/xpoints/pkg/logger"
	"github.com/okian/xpoints/pkg/metrics"
)

// Analysis statuses recorded in metrics.
const (
	statusOK    = "ok"
	statusError = "error"
)

// Exporter writes a run's results to external sinks.
type Exporter interface {
	Export(ctx context.Context, runID string, results []model.PointsResult) error
}

// Report is the outcome of one analysis run.
type Report struct {
	RunID       string
	RuleVersion string
	CreatedAt   time.Time
	Duplicates  int
	// MinMinutes is the cut applied to Results; ShortAppearances counts the
	// records it removed.
	MinMinutes       int
	ShortAppearances int

	// Results holds one entry per unique input record that reached MinMinutes,
	// in input order, with estimated bonus filled in.
	Results   []model.PointsResult
	Summary   aggregate.Summary
	Positions []aggregate.PositionSummary
}

// Service scores batches of records and keeps the latest report.
type Service struct {
	mu     sync.RWMutex
	latest *Report

	rules      rules.RuleSet
	scorer     *scoring.RuleScorer
	exporter   Exporter
	newRunID   func() string
	now        func() time.Time
	logger     logger.Logger
	minMinutes int
	tolerance  float64

	// Configuration
	workerCount int
	queueSize   int
	dedupeSize  int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRuleSet sets the rule set records are scored under.
func WithRuleSet(rs rules.RuleSet) Option {
	return func(s *Service) { s.rules = rs }
}

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the scoring job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize bounds the per-run dedupe cache. 0 leaves it unbounded.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithExporter sets the exporter used by Export.
func WithExporter(e Exporter) Option {
	return func(s *Service) { s.exporter = e }
}

// WithMinMinutes sets the minutes cut. Shorter appearances are scored for
// bonus ranking but left out of the report and the export. 0 keeps everything.
func WithMinMinutes(minutes int) Option {
	return func(s *Service) {
		if minutes >= 0 {
			s.minMinutes = minutes
		}
	}
}

// WithTolerance sets the over/underperformance band.
func WithTolerance(tol float64) Option {
	return func(s *Service) {
		if tol >= 0 {
			s.tolerance = tol
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRunIDFunc overrides run id generation.
func WithRunIDFunc(fn func() string) Option {
	return func(s *Service) {
		if fn != nil {
			s.newRunID = fn
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		rules:       rules.Season2024(),
		newRunID:    uuid.NewString,
		now:         time.Now,
		minMinutes:  aggregate.DefaultMinMinutes,
		tolerance:   aggregate.DefaultTolerance,
		workerCount: runtime.NumCPU(),
		queueSize:   1024,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	s.scorer = scoring.NewRuleScorer(scoring.WithRuleSet(s.rules))
	return s
}

// Rules returns the rule set the service scores under.
func (s *Service) Rules() rules.RuleSet { return s.rules }

// Analyze dedupes records, scores them on the worker pool, estimates bonus per
// match and stores the resulting report as the latest one.
func (s *Service) Analyze(ctx context.Context, records []model.PlayerMatchRecord) (*Report, error) {
	start := time.Now()
	runID := s.newRunID()
	log := s.logger.With(logger.String("run_id", runID))

	var opts []dedupe.Option
	if s.dedupeSize > 0 {
		opts = append(opts, dedupe.WithMaxSize(s.dedupeSize))
	}
	unique, dropped := dedupe.Filter(ctx, dedupe.NewInMemoryDeduper(opts...), records)
	if dropped > 0 {
		metrics.RecordRecordsSkipped("duplicate", dropped)
		log.Warn(ctx, "dropped duplicate records", logger.Int("duplicates", dropped))
	}

	results, err := s.score(ctx, unique)
	if err != nil {
		metrics.RecordAnalysis(statusError, time.Since(start))
		log.Error(ctx, "analysis failed", logger.Error(err))
		return nil, err
	}

	// Bonus ranks against every player of a match, short appearances included.
	results = bonus.Apply(results)
	scored := len(results)
	results = aggregate.FilterMinMinutes(results, s.minMinutes)
	short := scored - len(results)
	if short > 0 {
		metrics.RecordRecordsSkipped("short_appearance", short)
		log.Debug(ctx, "left out short appearances",
			logger.Int("records", short),
			logger.Int("min_minutes", s.minMinutes),
		)
	}
	for i := range results {
		metrics.RecordBonusAward(results[i].EstimatedBonusPoints)
	}

	report := &Report{
		RunID:            runID,
		RuleVersion:      s.rules.Version,
		CreatedAt:        s.now().UTC(),
		Duplicates:       dropped,
		MinMinutes:       s.minMinutes,
		ShortAppearances: short,
		Results:          results,
		Summary:          aggregate.Summarize(results),
		Positions:        aggregate.ByPosition(results),
	}

	s.mu.Lock()
	s.latest = report
	s.mu.Unlock()

	metrics.UpdateResultsCurrent(len(results))
	metrics.RecordAnalysis(statusOK, time.Since(start))
	log.Info(ctx, "analysis complete",
		logger.Int("records", len(records)),
		logger.Int("scored", scored),
		logger.Int("reported", len(results)),
		logger.String("rule_version", report.RuleVersion),
		logger.Duration("took", time.Since(start)),
	)
	return report, nil
}

// score runs recs through the queue and worker pool. Results come back in
// input order because workers write by job index.
func (s *Service) score(ctx context.Context, recs []model.PlayerMatchRecord) ([]model.PointsResult, error) {
	if len(recs) == 0 {
		return []model.PointsResult{}, nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	q := queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	sink := worker.NewSliceSink(len(recs))
	pool := worker.NewPool(min(s.workerCount, len(recs)), q, s.scorer, sink)
	pool.Start(runCtx)

	for i := range recs {
		if err := q.EnqueueWait(runCtx, queue.Job{Index: i, Record: recs[i]}); err != nil {
			cancel()
			_ = q.Close()
			return nil, fmt.Errorf("enqueue: %w", err)
		}
	}
	_ = q.Close()

	if err := pool.Wait(ctx); err != nil {
		return nil, err
	}
	results, missing := sink.Results()
	if missing > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrIncompleteRun, err)
		}
		return nil, fmt.Errorf("%w: %d of %d records not scored", ErrIncompleteRun, missing, len(recs))
	}
	return results, nil
}

// Export writes report to the configured exporter.
func (s *Service) Export(ctx context.Context, report *Report) error {
	if s.exporter == nil {
		return ErrNoExporter
	}
	if err := s.exporter.Export(ctx, report.RunID, report.Results); err != nil {
		return fmt.Errorf("export run %s: %w", report.RunID, err)
	}
	return nil
}

// Latest returns the most recent report.
func (s *Service) Latest() (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoReport
	}
	return s.latest, nil
}
