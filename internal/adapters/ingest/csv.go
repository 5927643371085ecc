// Package ingest reads player-match records from CSV files and Postgres.
//
// Columns are matched by header name, with the aliases used by common fantasy
// data dumps (web_name, element_type, goals_scored, expected_goals and so on).
// Missing columns read as zero. Blank and NaN cells read as zero, or as null
// for the nullable bonus fields. Cells that fail to parse fall back to the same
// default and are reported as warnings; they never abort a batch.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/okian/xpoints/internal/domain/model"
	"github.com/okian/xpoints/pkg/logger"
)

// Report summarizes one read.
type Report struct {
	Rows     int
	Warnings []Warning
}

func newCSVReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true
	return cr
}

// readRows streams every data row of r through fn. The header slice handed to
// newParser is owned by the caller.
func readRows(ctx context.Context, r io.Reader, fn func(p *rowParser, cells []string)) (*rowParser, error) {
	cr := newCSVReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	p := newRowParser(append([]string(nil), header...))

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return p, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", p.row+2, err)
		}
		p.row++
		if blankRow(cells) {
			continue
		}
		fn(p, cells)
	}
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

// ReadCSV reads player-match records from r in row order.
func ReadCSV(ctx context.Context, r io.Reader) ([]model.PlayerMatchRecord, Report, error) {
	var out []model.PlayerMatchRecord
	p, err := readRows(ctx, r, func(p *rowParser, cells []string) {
		out = append(out, p.record(cells))
	})
	if err != nil {
		return nil, Report{}, err
	}
	rep := Report{Rows: len(out), Warnings: p.warnings}
	logWarnings(ctx, "records", rep)
	return out, rep, nil
}

// ReadCSVFile opens path and reads it with ReadCSV.
func ReadCSVFile(ctx context.Context, path string) ([]model.PlayerMatchRecord, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	recs, rep, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, Report{}, fmt.Errorf("read %s: %w", path, err)
	}
	return recs, rep, nil
}

func logWarnings(ctx context.Context, kind string, rep Report) {
	log := logger.Get().Named("ingest")
	for _, w := range rep.Warnings {
		log.Debug(ctx, "unparsable cell, using default",
			logger.Int("row", w.Row),
			logger.String("column", w.Column),
			logger.String("value", w.Value),
		)
	}
	if len(rep.Warnings) > 0 {
		log.Warn(ctx, "cells fell back to defaults",
			logger.String("kind", kind),
			logger.Int("rows", rep.Rows),
			logger.Int("warnings", len(rep.Warnings)),
		)
	}
}
