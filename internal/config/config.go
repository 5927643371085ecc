// Package config defines process configuration and how it is loaded.
//
// Values are layered: defaults from New, then an optional YAML file named by
// XPOINTS_CONFIG, then XPOINTS_* environment variables. Keys are flat; the env
// variable XPOINTS_WORKER_COUNT sets worker_count.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/xpoints/internal/domain/aggregate"
	"github.com/okian/xpoints/internal/domain/rules"
)

// Export and table backends.
const (
	BackendNone     = "none"
	BackendLocal    = "local"
	BackendS3       = "s3"
	BackendGCS      = "gcs"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// DefaultGameweek is the player stats gameweek merged when none is configured.
const DefaultGameweek = 1

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// RulesVersion names the built-in rule set. RulesPath, when set, points at
	// a YAML rule set document and wins over RulesVersion.
	RulesVersion string `koanf:"rules_version"`
	RulesPath    string `koanf:"rules_path"`

	// QueueSize bounds the in-memory scoring job queue.
	QueueSize int `koanf:"queue_size"`
	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`
	// DedupeSize bounds the (player, match) dedupe cache; 0 means unbounded.
	DedupeSize int `koanf:"dedupe_size"`

	// InputPath is a player-match CSV file.
	InputPath string `koanf:"input_path"`
	// SourceDSN reads records from Postgres instead of InputPath.
	SourceDSN string `koanf:"source_dsn"`
	// PlayerStatsDir is searched for playerstats.csv files to merge bonus data.
	PlayerStatsDir string `koanf:"player_stats_dir"`
	// Gameweek selects the player stats merged onto records. 0 joins each
	// record on its own gameweek column instead.
	Gameweek int `koanf:"gameweek"`

	ExportBackend string `koanf:"export_backend"`
	ExportDir     string `koanf:"export_dir"`
	ExportBucket  string `koanf:"export_bucket"`
	ExportPrefix  string `koanf:"export_prefix"`

	S3Region    string `koanf:"s3_region"`
	S3Endpoint  string `koanf:"s3_endpoint"`
	S3AccessKey string `koanf:"s3_access_key"`
	S3SecretKey string `koanf:"s3_secret_key"`

	TableBackend string `koanf:"table_backend"`
	PostgresDSN  string `koanf:"postgres_dsn"`
	SQLitePath   string `koanf:"sqlite_path"`

	// MinMinutes drops shorter appearances from the report and the export.
	// They still count towards each match's bonus ranking. 0 keeps every record.
	MinMinutes int `koanf:"min_minutes"`
	// Tolerance is the over/underperformance band.
	Tolerance float64 `koanf:"tolerance"`
	// TopN sizes the report lists.
	TopN int `koanf:"top_n"`
	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		RulesVersion:        rules.DefaultVersion,
		QueueSize:           1024,
		WorkerCount:         runtime.NumCPU(),
		ExportBackend:       BackendLocal,
		ExportDir:           "exports",
		TableBackend:        BackendNone,
		Gameweek:            DefaultGameweek,
		MinMinutes:          aggregate.DefaultMinMinutes,
		Tolerance:           aggregate.DefaultTolerance,
		TopN:                10,
		MaxLeaderboardLimit: 100,
	}
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.WorkerCount <= 0:
		return invalid("worker_count must be positive, got %d", c.WorkerCount)
	case c.QueueSize <= 0:
		return invalid("queue_size must be positive, got %d", c.QueueSize)
	case c.DedupeSize < 0:
		return invalid("dedupe_size must not be negative, got %d", c.DedupeSize)
	case c.Gameweek < 0:
		return invalid("gameweek must not be negative, got %d", c.Gameweek)
	case c.MinMinutes < 0:
		return invalid("min_minutes must not be negative, got %d", c.MinMinutes)
	case c.Tolerance < 0:
		return invalid("tolerance must not be negative, got %g", c.Tolerance)
	case c.TopN <= 0:
		return invalid("top_n must be positive, got %d", c.TopN)
	case c.MaxLeaderboardLimit <= 0:
		return invalid("max_leaderboard_limit must be positive, got %d", c.MaxLeaderboardLimit)
	}

	if c.RulesPath == "" {
		if _, err := rules.ForVersion(c.RulesVersion); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}

	switch strings.ToLower(c.ExportBackend) {
	case BackendNone, BackendLocal:
	case BackendS3, BackendGCS:
		if c.ExportBucket == "" {
			return invalid("export_bucket is required for the %s backend", c.ExportBackend)
		}
	default:
		return invalid("unknown export_backend %q", c.ExportBackend)
	}

	switch strings.ToLower(c.TableBackend) {
	case BackendNone:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return invalid("postgres_dsn is required for the postgres table backend")
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			return invalid("sqlite_path is required for the sqlite table backend")
		}
	default:
		return invalid("unknown table_backend %q", c.TableBackend)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
