package export

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"  // postgres driver
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/okian/xpoints/internal/domain/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const tableName = "points_results"

type dialect int

const (
	dialectPostgres dialect = iota
	dialectSQLite
)

func (d dialect) String() string {
	if d == dialectSQLite {
		return "sqlite"
	}
	return "postgres"
}

func (d dialect) placeholder(i int) string {
	if d == dialectSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(i)
}

// TableOption configures a TableSink.
type TableOption func(*TableSink)

// WithRuleVersion stamps rows with the rule set version they were scored under.
func WithRuleVersion(version string) TableOption {
	return func(s *TableSink) {
		if version != "" {
			s.ruleVersion = version
		}
	}
}

// TableSink writes result rows into the points_results table.
type TableSink struct {
	db          *sql.DB
	dialect     dialect
	ruleVersion string
	insertSQL   string
}

// NewPostgresTableSink opens dsn with lib/pq and applies the embedded migrations.
func NewPostgresTableSink(ctx context.Context, dsn string, opts ...TableOption) (*TableSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	return newTableSink(db, dialectPostgres, driver, opts)
}

// NewSQLiteTableSink opens the SQLite file at path and applies the embedded
// migrations.
func NewSQLiteTableSink(ctx context.Context, path string, opts ...TableOption) (*TableSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps :memory: databases shared and avoids writer locks
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create migration driver: %w", err)
	}
	return newTableSink(db, dialectSQLite, driver, opts)
}

func newTableSink(db *sql.DB, d dialect, driver database.Driver, opts []TableOption) (*TableSink, error) {
	if err := migrateUp(driver, d.String()); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &TableSink{db: db, dialect: d, ruleVersion: "unknown"}
	for _, opt := range opts {
		opt(s)
	}
	s.insertSQL = s.buildInsert()
	return s, nil
}

func migrateUp(driver database.Driver, name string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, name, driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *TableSink) buildInsert() string {
	cols := append([]string{"run_id", "row_index", "rule_version"}, Columns...)
	cols = append(cols, "estimated_bonus_points")
	marks := make([]string, len(cols))
	for i := range cols {
		marks[i] = s.dialect.placeholder(i + 1)
	}
	return "INSERT INTO " + tableName + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(marks, ", ") + ")"
}

// Name identifies the sink in logs and metrics.
func (s *TableSink) Name() string { return s.dialect.String() }

// Write inserts results for runID in one transaction.
func (s *TableSink) Write(ctx context.Context, runID string, results []model.PointsResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.insertSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range results {
		if _, err := stmt.ExecContext(ctx, rowArgs(runID, i, s.ruleVersion, &results[i])...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func rowArgs(runID string, index int, version string, r *model.PointsResult) []any {
	rec := &r.Record
	return []any{
		runID, index, version,
		rec.PlayerName, rec.PositionName(), rec.TeamCode, rec.MatchID,
		rec.MinutesPlayed, rec.Goals, rec.Assists, rec.XG, rec.XA,
		rec.Saves, rec.TeamGoalsConceded,
		rec.Clearances, rec.Blocks, rec.Interceptions, rec.TacklesWon, rec.Recoveries,
		r.DefensiveContributionPoints,
		nullInt(rec.Bonus), nullInt(rec.BPS), nullInt(rec.EventPoints),
		r.ActualBasePoints, r.ExpectedBasePoints, r.ActualTotalPoints, r.BasePointsDifference,
		r.EstimatedBonusPoints,
	}
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

// StoredRow is a row read back from the table.
type StoredRow struct {
	RowIndex           int
	PlayerName         string
	Position           string
	ActualBasePoints   int
	ExpectedBasePoints float64
	Bonus              sql.NullInt64
	RuleVersion        string
}

// ReadRun returns the stored rows of runID ordered by row index.
func (s *TableSink) ReadRun(ctx context.Context, runID string) ([]StoredRow, error) {
	q := "SELECT row_index, player_name, position, actual_base_points, expected_base_points, actual_bonus_points, rule_version FROM " +
		tableName + " WHERE run_id = " + s.dialect.placeholder(1) + " ORDER BY row_index"
	rows, err := s.db.QueryContext(ctx, q, runID)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var out []StoredRow
	for rows.Next() {
		var r StoredRow
		if err := rows.Scan(&r.RowIndex, &r.PlayerName, &r.Position, &r.ActualBasePoints, &r.ExpectedBasePoints, &r.Bonus, &r.RuleVersion); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close closes the database handle.
func (s *TableSink) Close() error { return s.db.Close() }
