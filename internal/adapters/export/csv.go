package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/xpoints/internal/domain/model"
)

// CSVWriter streams result rows as CSV.
type CSVWriter struct {
	w           *csv.Writer
	wroteHeader bool
	rows        int
}

// NewCSVWriter creates a writer on w. The header is written with the first row.
func NewCSVWriter(w io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(w)}
}

// Write appends one row.
func (c *CSVWriter) Write(r *model.PointsResult) error {
	if !c.wroteHeader {
		if err := c.w.Write(Columns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		c.wroteHeader = true
	}
	if err := c.w.Write(Row(r)); err != nil {
		return fmt.Errorf("write csv row: %w", err)
	}
	c.rows++
	return nil
}

// Flush writes buffered data. An empty export still gets its header.
func (c *CSVWriter) Flush() error {
	if !c.wroteHeader {
		if err := c.w.Write(Columns); err != nil {
			return fmt.Errorf("write csv header: %w", err)
		}
		c.wroteHeader = true
	}
	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Rows returns the number of data rows written.
func (c *CSVWriter) Rows() int { return c.rows }

// WriteCSV writes results to w with a header.
func WriteCSV(w io.Writer, results []model.PointsResult) error {
	cw := NewCSVWriter(w)
	for i := range results {
		if err := cw.Write(&results[i]); err != nil {
			return err
		}
	}
	return cw.Flush()
}

// EncodeCSV returns results as CSV bytes.
func EncodeCSV(results []model.PointsResult) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
