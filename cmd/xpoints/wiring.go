package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/okian/xpoints/internal/adapters/export"
	"github.com/okian/xpoints/internal/adapters/ingest"
	service "github.com/okian/xpoints/internal/app"
	"github.com/okian/xpoints/internal/config"
	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/internal/domain/rules"
	"github.com/okian/xpoints/pkg/logger"
)

var errNoInput = errors.New("no input: set --input or source_dsn")

// loadRecords reads records from Postgres when a source DSN is configured,
// from the CSV input otherwise, then merges gameweek player stats if a
// stats directory is set.
func loadRecords(ctx context.Context, cfg *config.Config) ([]model.PlayerMatchRecord, error) {
	log := logger.Get().Named("cli")

	var (
		records []model.PlayerMatchRecord
		err     error
	)
	switch {
	case cfg.SourceDSN != "":
		src, err := ingest.NewPostgresSource(ctx, cfg.SourceDSN)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		records, _, err = src.Records(ctx)
		if err != nil {
			return nil, err
		}
	case cfg.InputPath != "":
		records, _, err = ingest.ReadCSVFile(ctx, cfg.InputPath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, errNoInput
	}

	if cfg.PlayerStatsDir == "" {
		return records, nil
	}
	paths, err := ingest.FindPlayerStatsFiles(cfg.PlayerStatsDir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		log.Warn(ctx, "no player stats files found, bonus data unavailable", logger.String("dir", cfg.PlayerStatsDir))
		return records, nil
	}
	stats, err := ingest.ReadPlayerStatsFiles(ctx, paths...)
	if err != nil {
		return nil, err
	}
	merged, matched := ingest.MergePlayerStats(records, stats, cfg.Gameweek)
	log.Info(ctx, "merged player stats",
		logger.Int("files", len(paths)),
		logger.Int("matched", matched),
		logger.Int("gameweek", cfg.Gameweek),
	)
	return merged, nil
}

// buildExporter creates the configured sinks. The returned close function
// releases them and is never nil.
func buildExporter(ctx context.Context, cfg *config.Config, ruleVersion string) (*export.Exporter, func(), error) {
	var (
		opts    = []export.Option{export.WithPrefix(cfg.ExportPrefix)}
		closers []io.Closer
	)
	closeAll := func() {
		for _, c := range closers {
			_ = c.Close()
		}
	}

	if backend := strings.ToLower(cfg.ExportBackend); backend != config.BackendNone {
		sink, err := export.NewBlobSink(ctx, export.BlobConfig{
			Backend:  backend,
			LocalDir: cfg.ExportDir,
			Bucket:   cfg.ExportBucket,
			S3: export.S3Config{
				Region:    cfg.S3Region,
				Endpoint:  cfg.S3Endpoint,
				AccessKey: cfg.S3AccessKey,
				SecretKey: cfg.S3SecretKey,
			},
		})
		if err != nil {
			return nil, closeAll, fmt.Errorf("export sink: %w", err)
		}
		if c, ok := sink.(io.Closer); ok {
			closers = append(closers, c)
		}
		opts = append(opts, export.WithBlobSink(sink))
	}

	var (
		table *export.TableSink
		err   error
	)
	switch strings.ToLower(cfg.TableBackend) {
	case config.BackendPostgres:
		table, err = export.NewPostgresTableSink(ctx, cfg.PostgresDSN, export.WithRuleVersion(ruleVersion))
	case config.BackendSQLite:
		table, err = export.NewSQLiteTableSink(ctx, cfg.SQLitePath, export.WithRuleVersion(ruleVersion))
	}
	if err != nil {
		closeAll()
		return nil, func() {}, fmt.Errorf("table sink: %w", err)
	}
	if table != nil {
		closers = append(closers, table)
		opts = append(opts, export.WithTableSink(table))
	}

	return export.NewExporter(opts...), closeAll, nil
}

func newService(cfg *config.Config, rs rules.RuleSet, exporter service.Exporter) *service.Service {
	return service.New(
		service.WithRuleSet(rs),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithQueueSize(cfg.QueueSize),
		service.WithDedupeSize(cfg.DedupeSize),
		service.WithMinMinutes(cfg.MinMinutes),
		service.WithTolerance(cfg.Tolerance),
		service.WithExporter(exporter),
		service.WithLogger(logger.Get().Named("service")),
	)
}

// analyzeOnce loads, scores and optionally exports one batch.
func analyzeOnce(ctx context.Context, cfg *config.Config) (*service.Service, *service.Report, error) {
	rs, err := rules.Resolve(cfg.RulesVersion, cfg.RulesPath)
	if err != nil {
		return nil, nil, err
	}
	records, err := loadRecords(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	var exporter service.Exporter
	exportEnabled := !strings.EqualFold(cfg.ExportBackend, config.BackendNone) || !strings.EqualFold(cfg.TableBackend, config.BackendNone)
	if exportEnabled {
		e, closeSinks, err := buildExporter(ctx, cfg, rs.Version)
		if err != nil {
			return nil, nil, err
		}
		defer closeSinks()
		exporter = e
	}

	svc := newService(cfg, rs, exporter)
	report, err := svc.Analyze(ctx, records)
	if err != nil {
		return nil, nil, err
	}
	if exporter != nil {
		if err := svc.Export(ctx, report); err != nil {
			return nil, nil, err
		}
	}
	return svc, report, nil
}
