package ingest

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // postgres driver

	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/pkg/logger"
)

// playerMatchQuery joins match stats with the player table for names,
// positions and teams. Columns are mapped by name like CSV headers.
const playerMatchQuery = `SELECT pms.*, p.web_name, p.position, p.team_code
FROM playermatchstats pms
JOIN players p ON pms.player_id = p.player_id
ORDER BY p.web_name, pms.match_id`

// PostgresSource loads player-match records from a Postgres database.
type PostgresSource struct {
	db     *sql.DB
	owned  bool
	logger logger.Logger
}

// NewPostgresSource opens dsn with lib/pq and checks the connection.
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := NewPostgresSourceFromDB(db)
	s.owned = true
	return s, nil
}

// NewPostgresSourceFromDB wraps an existing handle. Close leaves it open.
func NewPostgresSourceFromDB(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db, logger: logger.Get().Named("ingest")}
}

// Records runs the player-match query and returns the rows in query order.
func (s *PostgresSource) Records(ctx context.Context) ([]model.PlayerMatchRecord, Report, error) {
	rows, err := s.db.QueryContext(ctx, playerMatchQuery)
	if err != nil {
		return nil, Report{}, fmt.Errorf("query player match stats: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, Report{}, fmt.Errorf("columns: %w", err)
	}
	p := newRowParser(cols)

	raw := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range raw {
		dest[i] = &raw[i]
	}
	cells := make([]string, len(cols))

	var out []model.PlayerMatchRecord
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, Report{}, fmt.Errorf("scan row %d: %w", p.row+1, err)
		}
		p.row++
		for i := range raw {
			cells[i] = raw[i].String // NULL scans as ""
		}
		out = append(out, p.record(cells))
	}
	if err := rows.Err(); err != nil {
		return nil, Report{}, fmt.Errorf("iterate rows: %w", err)
	}

	rep := Report{Rows: len(out), Warnings: p.warnings}
	logWarnings(ctx, "records", rep)
	s.logger.Info(ctx, "loaded player match stats", logger.Int("rows", rep.Rows))
	return out, rep, nil
}

// Close closes the database handle when the source opened it.
func (s *PostgresSource) Close() error {
	if !s.owned {
		return nil
	}
	return s.db.Close()
}
