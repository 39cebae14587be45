package roast

import (
	"errors"
	"fmt"
)

// ErrUnknownColumn is returned when a caller asks for a column the table
// does not produce.
var ErrUnknownColumn = errors.New("unknown column")

// Record is the flat output for one document, in table column order.
type Record struct {
	table  *Table
	source string
	values []Value
}

// Source returns the name of the document the record was built from.
func (r Record) Source() string { return r.source }

// Columns returns the column names of the record.
func (r Record) Columns() []string { return r.table.Columns() }

// Values returns a copy of the cells in column order.
func (r Record) Values() []Value {
	return append([]Value(nil), r.values...)
}

// Get returns the cell for column.
func (r Record) Get(column string) (Value, bool) {
	if r.table == nil {
		return Value{}, false
	}
	i, ok := r.table.index[column]
	if !ok {
		return Value{}, false
	}
	return r.values[i], true
}

// Select returns the cells for columns, in the order requested. An
// unknown name is a caller error wrapping ErrUnknownColumn.
func (r Record) Select(columns []string) ([]Value, error) {
	out := make([]Value, len(columns))
	for i, c := range columns {
		v, ok := r.Get(c)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, c)
		}
		out[i] = v
	}
	return out, nil
}
