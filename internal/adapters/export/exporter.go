package export

import (
	"context"
	"fmt"

	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/pkg/logger"
	"github.com/okian/xpoints/pkg/metrics"
)

// ResultsFile is the file name of the per-record export.
const ResultsFile = "points_results.csv"

// TableWriter is implemented by TableSink.
type TableWriter interface {
	Write(ctx context.Context, runID string, results []model.PointsResult) error
	Name() string
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithBlobSink adds a blob destination for the CSV file.
func WithBlobSink(s BlobSink) Option {
	return func(e *Exporter) {
		if s != nil {
			e.blobs = append(e.blobs, s)
		}
	}
}

// WithTableSink adds a table destination.
func WithTableSink(s TableWriter) Option {
	return func(e *Exporter) {
		if s != nil {
			e.tables = append(e.tables, s)
		}
	}
}

// WithPrefix sets the key prefix for blob sinks.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) { e.prefix = prefix }
}

// Exporter fans one run's results out to every configured sink.
type Exporter struct {
	blobs  []BlobSink
	tables []TableWriter
	prefix string
	logger logger.Logger
}

// NewExporter creates an Exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{logger: logger.Get().Named("export")}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export writes results for runID to all sinks. It stops at the first failure.
func (e *Exporter) Export(ctx context.Context, runID string, results []model.PointsResult) error {
	if len(e.blobs) == 0 && len(e.tables) == 0 {
		return ErrNoSink
	}

	if len(e.blobs) > 0 {
		data, err := EncodeCSV(results)
		if err != nil {
			return err
		}
		key := Key(e.prefix, runID, ResultsFile)
		for _, b := range e.blobs {
			if err := b.Put(ctx, key, data); err != nil {
				metrics.RecordExportError(b.Name())
				return fmt.Errorf("export to %s: %w", b.Name(), err)
			}
			metrics.RecordExportRows(b.Name(), len(results))
			e.logger.Info(ctx, "exported results", logger.String("sink", b.Name()), logger.String("key", key), logger.Int("rows", len(results)))
		}
	}

	for _, t := range e.tables {
		if err := t.Write(ctx, runID, results); err != nil {
			metrics.RecordExportError(t.Name())
			return fmt.Errorf("export to %s: %w", t.Name(), err)
		}
		metrics.RecordExportRows(t.Name(), len(results))
		e.logger.Info(ctx, "exported results", logger.String("sink", t.Name()), logger.String("run_id", runID), logger.Int("rows", len(results)))
	}
	return nil
}
