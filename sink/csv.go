// Package sink writes extracted roast records to their destinations.
package sink

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/carlodf/roastetl/roast"
)

// CSVWriter writes records as CSV rows restricted to a fixed column list.
// The header row is written before the first record, or by Flush when no
// record was written. Rows end in CRLF.
type CSVWriter struct {
	w       *csv.Writer
	columns []string
	header  bool
	row     []string
}

// NewCSVWriter returns a CSVWriter emitting columns in the given order.
func NewCSVWriter(w io.Writer, columns []string) *CSVWriter {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return &CSVWriter{
		w:       cw,
		columns: append([]string(nil), columns...),
		row:     make([]string, len(columns)),
	}
}

// Write appends one record. A column the record does not carry is a
// caller error wrapping roast.ErrUnknownColumn.
func (c *CSVWriter) Write(rec roast.Record) error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	vals, err := rec.Select(c.columns)
	if err != nil {
		return fmt.Errorf("csv row for %s: %w", rec.Source(), err)
	}
	for i, v := range vals {
		c.row[i] = v.String()
	}
	return c.w.Write(c.row)
}

// Flush writes any buffered data, including a lone header.
func (c *CSVWriter) Flush() error {
	if err := c.writeHeader(); err != nil {
		return err
	}
	c.w.Flush()
	return c.w.Error()
}

func (c *CSVWriter) writeHeader() error {
	if c.header {
		return nil
	}
	c.header = true
	return c.w.Write(c.columns)
}

// WriteCSV writes a header and one row per record, then flushes.
func WriteCSV(w io.Writer, columns []string, recs []roast.Record) error {
	cw := NewCSVWriter(w, columns)
	for _, rec := range recs {
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	return cw.Flush()
}
